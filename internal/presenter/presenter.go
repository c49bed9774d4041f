// Package presenter turns the raw analysis output into span-indexed node
// views: every expression's best-known type, hole states with provenance,
// match coverage, and human-rendered diagnostics, ready for a CLI or
// editor front end.
package presenter

import (
	"sort"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/pipeline"
	"github.com/quill-lang/quill/internal/solver"
	"github.com/quill-lang/quill/internal/typesystem"
)

// PartialTypeKind says how much the solver learned about a node.
type PartialTypeKind int

const (
	// PartialUnknown means the node's type is an unsolved or conflicted
	// hole; Provenance says why.
	PartialUnknown PartialTypeKind = iota
	// PartialConcrete means a usable type is known, possibly polymorphic.
	PartialConcrete
)

// PartialType is the presenter's view of one node's type.
type PartialType struct {
	Kind       PartialTypeKind
	Type       typesystem.Type // set when concrete
	Provenance string          // set when unknown
	Hole       int             // tracked hole id, -1 when the node is not a hole
}

// NodeView is everything the front end needs about one node.
type NodeView struct {
	ID       ast.NodeID
	Span     ast.Span
	Type     PartialType
	Display  string
	Conflict *diagnostics.Conflict // non-nil for conflicted holes
}

// Note is a rendered diagnostic or flow warning anchored to a span.
type Note struct {
	Node    ast.NodeID
	Span    ast.Span
	Reason  diagnostics.Reason
	Message string
	Warning bool
}

// CoverageView is the presentable coverage summary for one match.
type CoverageView struct {
	Match      ast.NodeID
	Span       ast.Span
	Handled    []string
	Missing    []string
	Discharges bool
	Row        string // formatted residual row, empty for plain matches
}

// Report is the span-indexed Layer 3 output for one module.
type Report struct {
	Views    map[ast.NodeID]*NodeView
	Notes    []Note
	Coverage []CoverageView

	index []ast.NodeID // view ids sorted by span start, ties widest first
	fmt   *typesystem.Formatter
}

// Present builds the report from both layers' output.
func Present(res *pipeline.AnalysisResult) *Report {
	layer1 := res.Layer1
	layer2 := res.Layer2
	f := typesystem.NewFormatter(layer1.Adts)

	spans := make(map[ast.NodeID]ast.Span)
	r := &Report{Views: make(map[ast.NodeID]*NodeView), fmt: f}

	layer1.Program.Walk(func(id ast.NodeID, span ast.Span, t typesystem.Type) {
		spans[id] = span
		if t == nil {
			return
		}
		r.Views[id] = r.buildView(id, span, t, layer2)
	})

	r.buildIndex()
	r.buildNotes(layer2, spans)
	r.buildCoverage(layer2, spans)
	return r
}

func (r *Report) buildView(id ast.NodeID, span ast.Span, t typesystem.Type, layer2 *solver.Result) *NodeView {
	resolved := typesystem.Apply(t, layer2.Subst)
	if final, ok := layer2.NodeTypes[id]; ok {
		resolved = final
	}

	view := &NodeView{ID: id, Span: span}
	view.Type = PartialType{Kind: PartialConcrete, Type: resolved, Hole: -1}

	holeID, isHole := typesystem.HoleID(resolved)
	if isHole {
		if _, tracked := layer2.Holes[holeID]; !tracked {
			isHole = false
		}
	}
	if isHole {
		view.Type.Hole = holeID
		info := layer2.Holes[holeID]
		switch sol := layer2.HoleSolutions[info.Node]; sol.State {
		case solver.HolePartial:
			view.Type = PartialType{Kind: PartialConcrete, Type: sol.Known, Hole: holeID}
		case solver.HoleConflicted:
			view.Type = PartialType{Kind: PartialUnknown, Provenance: info.Origin.String(), Hole: holeID}
			for i := range layer2.Conflicts {
				if layer2.Conflicts[i].Hole == holeID {
					view.Conflict = &layer2.Conflicts[i]
					break
				}
			}
		default:
			view.Type = PartialType{Kind: PartialUnknown, Provenance: info.Origin.String(), Hole: holeID}
		}
	}

	switch view.Type.Kind {
	case PartialConcrete:
		view.Display = r.fmt.Format(view.Type.Type)
	default:
		view.Display = "? (" + view.Type.Provenance + ")"
	}
	return view
}

func (r *Report) buildIndex() {
	for id := range r.Views {
		r.index = append(r.index, id)
	}
	sort.Slice(r.index, func(i, j int) bool {
		a, b := r.Views[r.index[i]].Span, r.Views[r.index[j]].Span
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Width() != b.Width() {
			return a.Width() > b.Width()
		}
		return r.index[i] < r.index[j]
	})
}

func (r *Report) buildNotes(layer2 *solver.Result, spans map[ast.NodeID]ast.Span) {
	for _, d := range layer2.Diagnostics {
		r.Notes = append(r.Notes, Note{
			Node:    d.Origin,
			Span:    spans[d.Origin],
			Reason:  d.Reason,
			Message: diagnostics.Message(d, r.fmt),
		})
	}
	for _, c := range layer2.Conflicts {
		r.Notes = append(r.Notes, Note{
			Node:    c.Origin,
			Span:    spans[c.Origin],
			Reason:  diagnostics.ReasonTypeMismatch,
			Message: diagnostics.ConflictMessage(c, r.fmt),
		})
	}
}

func (r *Report) buildCoverage(layer2 *solver.Result, spans map[ast.NodeID]ast.Span) {
	ids := make([]ast.NodeID, 0, len(layer2.Coverage))
	for id := range layer2.Coverage {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		cov := layer2.Coverage[id]
		view := CoverageView{
			Match:      id,
			Span:       spans[id],
			Handled:    cov.Handled,
			Missing:    cov.Missing,
			Discharges: cov.Discharges,
		}
		if cov.Row != nil {
			view.Row = r.fmt.Format(typesystem.Apply(cov.Row, layer2.Subst))
		}
		r.Coverage = append(r.Coverage, view)

		if cov.Row != nil && !cov.Discharges && len(cov.Missing) > 0 {
			r.Notes = append(r.Notes, Note{
				Node:    id,
				Span:    spans[id],
				Reason:  diagnostics.ReasonMatchErrorRowPartial,
				Message: diagnostics.Message(diagnostics.Diagnostic{
					Reason: diagnostics.ReasonMatchErrorRowPartial,
					Origin: id,
					Detail: diagnostics.NonExhaustiveMatch{Missing: cov.Missing},
				}, r.fmt),
				Warning: true,
			})
		}
	}
}

// FindNodeAtOffset returns the view whose span most tightly contains the
// byte offset.
func (r *Report) FindNodeAtOffset(off int) (*NodeView, bool) {
	var best *NodeView
	for _, id := range r.index {
		v := r.Views[id]
		if v.Span.Start > off {
			break
		}
		if !v.Span.Contains(off) {
			continue
		}
		if best == nil || v.Span.Width() < best.Span.Width() {
			best = v
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}
