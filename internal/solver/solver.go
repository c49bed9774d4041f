package solver

import (
	"sort"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/typesystem"
)

// HoleInfo is the generator's side-table entry for one hole: the node that
// produced it and why it exists.
type HoleInfo struct {
	Node   ast.NodeID
	Origin typesystem.Provenance
}

// HoleState classifies a hole after solving.
type HoleState int

const (
	HoleUnsolved HoleState = iota
	HolePartial
	HoleConflicted
)

// HoleSolution is the solver's best knowledge about one hole.
type HoleSolution struct {
	State      HoleState
	Known      typesystem.Type         // best-known type when partial
	Candidates []diagnostics.Candidate // forced types when conflicted
}

// MatchCoverage records the error-row coverage decision for one match.
type MatchCoverage struct {
	Row        typesystem.Type // row being discharged, nil for plain matches
	Handled    []string
	HasTail    bool
	Missing    []string
	Discharges bool
}

// Options configures one solving run. Alloc must be the allocator the
// generator used so fresh row tails never collide with generated variables.
type Options struct {
	Alloc     *typesystem.VarAlloc
	Adts      *typesystem.AdtEnv
	Holes     map[int]HoleInfo
	NodeTypes map[ast.NodeID]typesystem.Type
	Tolerant  bool
}

// Result is the Layer 2 output.
type Result struct {
	Subst         typesystem.Subst
	NodeTypes     map[ast.NodeID]typesystem.Type
	HoleSolutions map[ast.NodeID]HoleSolution
	Holes         map[int]HoleInfo
	Diagnostics   []diagnostics.Diagnostic
	Conflicts     []diagnostics.Conflict
	Coverage      map[ast.NodeID]MatchCoverage
}

// Solver consumes a constraint stream in order, extending a running
// substitution and collecting diagnostics without ever aborting: a failed
// constraint keeps the earlier-established type and records the later
// requirement as a hole candidate where one is involved.
type Solver struct {
	subst      typesystem.Subst
	alloc      *typesystem.VarAlloc
	adts       *typesystem.AdtEnv
	holes      map[int]HoleInfo
	nodeTypes  map[ast.NodeID]typesystem.Type
	tolerant   bool
	diags      []diagnostics.Diagnostic
	candidates map[int][]diagnostics.Candidate
	coverage   map[ast.NodeID]MatchCoverage
	why        string
}

func New(opts Options) *Solver {
	alloc := opts.Alloc
	if alloc == nil {
		alloc = typesystem.NewVarAlloc()
	}
	adts := opts.Adts
	if adts == nil {
		adts = typesystem.NewAdtEnv()
	}
	holes := opts.Holes
	if holes == nil {
		holes = make(map[int]HoleInfo)
	}
	return &Solver{
		subst:      make(typesystem.Subst),
		alloc:      alloc,
		adts:       adts,
		holes:      holes,
		nodeTypes:  opts.NodeTypes,
		tolerant:   opts.Tolerant,
		candidates: make(map[int][]diagnostics.Candidate),
		coverage:   make(map[ast.NodeID]MatchCoverage),
	}
}

// Solve runs the whole stream and finishes.
func Solve(cs []Constraint, opts Options) *Result {
	s := New(opts)
	for _, c := range cs {
		s.Add(c)
	}
	return s.Finish()
}

// Add processes one constraint immediately. Coverage constraints are
// expected to arrive after the unifications that settle their scrutinee;
// the generator orders the stream that way.
func (s *Solver) Add(c Constraint) {
	s.why = c.describe()
	switch ct := c.(type) {
	case Unify:
		s.solveUnify(ct)
	case Call:
		s.solveCall(ct)
	case Op:
		s.solveOp(ct)
	case Field:
		s.solveField(ct)
	case RecordMatch:
		s.solveRecordMatch(ct)
	case Coverage:
		s.solveCoverage(ct)
	}
}

// Resolve applies the running substitution.
func (s *Solver) Resolve(t typesystem.Type) typesystem.Type {
	return typesystem.Apply(t, s.subst)
}

// Subst exposes the running substitution; the generator reads it when
// generalizing let bindings.
func (s *Solver) Subst() typesystem.Subst {
	return s.subst
}

func (s *Solver) resolve(t typesystem.Type) typesystem.Type {
	return typesystem.Apply(t, s.subst)
}

func (s *Solver) reportErr(origin ast.NodeID, err *unifyErr) {
	s.diags = append(s.diags, diagnostics.Diagnostic{Reason: err.reason, Origin: origin, Detail: err.detail})
}

func (s *Solver) report(origin ast.NodeID, reason diagnostics.Reason, detail diagnostics.Detail) {
	s.diags = append(s.diags, diagnostics.Diagnostic{Reason: reason, Origin: origin, Detail: detail})
}

func (s *Solver) addCandidate(id int, t typesystem.Type) {
	s.candidates[id] = append(s.candidates[id], diagnostics.Candidate{Type: t, Reason: s.why})
}

// holeVarCandidate records t against side if side is a tracked hole var.
func (s *Solver) holeVarCandidate(side, t typesystem.Type) {
	v, ok := side.(typesystem.TVar)
	if !ok {
		return
	}
	if _, tracked := s.holes[v.ID]; tracked {
		s.addCandidate(v.ID, t)
	}
}

func isResult(t typesystem.Type) (typesystem.TCon, bool) {
	con, ok := t.(typesystem.TCon)
	if ok && con.Name == config.ResultTypeName && len(con.Args) == 2 {
		return con, true
	}
	return typesystem.TCon{}, false
}

// mergeRows joins two error rows: case union, tails unified when both are
// present.
func (s *Solver) mergeRows(a, b typesystem.Type) typesystem.Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	asRow := func(t typesystem.Type) typesystem.TRow {
		if r, ok := s.resolve(t).(typesystem.TRow); ok {
			return r
		}
		return typesystem.TRow{Tail: t}
	}
	ra, rb := asRow(a), asRow(b)
	cases := append(append([]typesystem.RowCase{}, ra.Cases...), rb.Cases...)
	var tail typesystem.Type
	switch {
	case ra.Tail == nil:
		tail = rb.Tail
	case rb.Tail == nil:
		tail = ra.Tail
	default:
		// Both open: the tails must describe the same remainder.
		if err := s.unify(ra.Tail, rb.Tail); err != nil {
			s.diags = append(s.diags, diagnostics.Diagnostic{Reason: err.reason, Origin: ast.NoNode, Detail: err.detail})
		}
		tail = ra.Tail
	}
	return typesystem.NormalizeRow(cases, tail)
}

// liftResult wraps t in Result carrying row, merging rows when t already is
// a Result.
func (s *Solver) liftResult(t typesystem.Type, row typesystem.Type) typesystem.Type {
	t = s.resolve(t)
	if con, ok := isResult(t); ok {
		return typesystem.TCon{Name: config.ResultTypeName, Args: []typesystem.Type{con.Args[0], s.mergeRows(con.Args[1], row)}}
	}
	return typesystem.TCon{Name: config.ResultTypeName, Args: []typesystem.Type{t, row}}
}

func (s *Solver) solveUnify(c Unify) {
	err := s.unify(c.Left, c.Right)
	if err == nil {
		return
	}
	// Keep the earlier type; a hole on either side records the rejected
	// requirement as a candidate so the fixpoint can report the conflict.
	s.holeVarCandidate(c.Left, s.resolve(c.Right))
	s.holeVarCandidate(c.Right, s.resolve(c.Left))

	if err.reason != diagnostics.ReasonTypeMismatch || c.Why == "" {
		s.reportErr(c.Origin, err)
		return
	}
	switch c.Why {
	case diagnostics.ReasonBranchMismatch:
		s.report(c.Origin, c.Why, diagnostics.BranchMismatch{First: s.resolve(c.Left), Other: s.resolve(c.Right)})
	case diagnostics.ReasonNotBoolean:
		s.report(c.Origin, c.Why, diagnostics.NotBoolean{Actual: s.resolve(c.Left)})
	default:
		s.diags = append(s.diags, diagnostics.Diagnostic{Reason: c.Why, Origin: c.Origin, Detail: err.detail})
	}
}

func (s *Solver) solveCall(c Call) {
	callee := s.resolve(c.Callee)
	var row typesystem.Type
	if con, ok := isResult(callee); ok {
		row = s.mergeRows(row, con.Args[1])
		callee = s.resolve(con.Args[0])
	}

	f, ok := callee.(typesystem.TFunc)
	if !ok {
		switch callee.(type) {
		case typesystem.TVar, typesystem.THole:
			// Unknown callee: commit it to a function shape.
			if err := s.unify(callee, typesystem.TFunc{From: c.Arg, To: c.Result}); err != nil {
				s.reportErr(c.Origin, err)
			}
		default:
			s.report(c.Origin, diagnostics.ReasonNotFunction, diagnostics.NotFunction{Actual: callee})
			if rv, ok := c.Result.(typesystem.TVar); ok {
				s.holes[rv.ID] = HoleInfo{
					Node:   c.Origin,
					Origin: typesystem.ErrorNotFunction{Inner: typesystem.Incomplete{Node: int(c.Origin), Reason: "called value is not a function"}},
				}
			}
		}
		return
	}

	arg := s.resolve(c.Arg)
	if err := s.unify(arg, f.From); err != nil {
		if con, ok := isResult(arg); ok {
			// Infected argument: retry against the payload and lift the row.
			if err2 := s.unify(con.Args[0], f.From); err2 == nil {
				row = s.mergeRows(row, con.Args[1])
			} else {
				s.reportErr(c.Origin, err)
			}
		} else {
			s.reportErr(c.Origin, err)
		}
	}

	out := typesystem.Type(f.To)
	if row != nil {
		out = s.liftResult(f.To, row)
	}
	if err := s.unify(c.Result, out); err != nil {
		if row != nil {
			s.report(c.Origin, diagnostics.ReasonInfectiousCallResultMismatch,
				diagnostics.InfectiousMismatch{Expected: s.resolve(c.Result), Row: row})
		} else {
			s.reportErr(c.Origin, err)
		}
	}
}

func (s *Solver) solveOp(c Op) {
	var row typesystem.Type
	strip := func(t typesystem.Type) typesystem.Type {
		r := s.resolve(t)
		if con, ok := isResult(r); ok {
			row = s.mergeRows(row, con.Args[1])
			return s.resolve(con.Args[0])
		}
		return r
	}

	l := strip(c.Left)
	var r typesystem.Type
	if c.Right != nil {
		r = strip(c.Right)
	}

	requireOperand := func(operand typesystem.Type, want typesystem.TPrim) {
		if err := s.unify(operand, want); err != nil {
			actual := s.resolve(operand)
			if want.Kind == typesystem.PrimBool {
				s.report(c.Origin, diagnostics.ReasonNotBoolean, diagnostics.NotBoolean{Actual: actual})
			} else {
				s.report(c.Origin, diagnostics.ReasonNotNumeric, diagnostics.NotNumeric{Op: c.Op, Actual: actual})
			}
		}
	}

	var res typesystem.Type
	switch c.Class {
	case OpArith, OpNegate:
		requireOperand(l, typesystem.Int)
		if r != nil {
			requireOperand(r, typesystem.Int)
		}
		res = typesystem.Int
	case OpCompare:
		requireOperand(l, typesystem.Int)
		requireOperand(r, typesystem.Int)
		res = typesystem.Bool
	case OpLogic:
		requireOperand(l, typesystem.Bool)
		if r != nil {
			requireOperand(r, typesystem.Bool)
		}
		res = typesystem.Bool
	case OpEquality:
		if err := s.unify(l, r); err != nil {
			s.reportErr(c.Origin, err)
		}
		res = typesystem.Bool
	}

	out := res
	if row != nil {
		out = s.liftResult(res, row)
	}
	if err := s.unify(c.Result, out); err != nil {
		if row != nil {
			s.report(c.Origin, diagnostics.ReasonInfectiousCallResultMismatch,
				diagnostics.InfectiousMismatch{Expected: s.resolve(c.Result), Row: row})
		} else {
			s.reportErr(c.Origin, err)
		}
	}
}

func (s *Solver) solveField(c Field) {
	target := s.resolve(c.Target)
	var row typesystem.Type
	if con, ok := isResult(target); ok {
		row = con.Args[1]
		target = s.resolve(con.Args[0])
	}

	switch t := target.(type) {
	case typesystem.TRecord:
		ft, ok := t.FieldType(c.Name)
		if !ok {
			s.report(c.Origin, diagnostics.ReasonMissingField, diagnostics.MissingField{Record: t, Field: c.Name})
			return
		}
		out := ft
		if row != nil {
			out = s.liftResult(ft, row)
		}
		if err := s.unify(c.Result, out); err != nil {
			if row != nil {
				s.report(c.Origin, diagnostics.ReasonInfectiousCallResultMismatch,
					diagnostics.InfectiousMismatch{Expected: s.resolve(c.Result), Row: row})
			} else {
				s.reportErr(c.Origin, err)
			}
		}
	case typesystem.TVar:
		// Unknown target: commit to a record with just this field.
		if err := s.unify(target, typesystem.TRecord{Fields: []typesystem.Field{{Name: c.Name, Type: c.Result}}}); err != nil {
			s.reportErr(c.Origin, err)
		}
	case typesystem.THole:
		s.noteHoleContact(t, typesystem.TRecord{Fields: []typesystem.Field{{Name: c.Name, Type: c.Result}}})
	default:
		s.report(c.Origin, diagnostics.ReasonNotRecord, diagnostics.NotRecord{Actual: target, Field: c.Name})
	}
}

func (s *Solver) solveRecordMatch(c RecordMatch) {
	scr := s.resolve(c.Scrutinee)
	switch t := scr.(type) {
	case typesystem.TRecord:
		s.matchRecordFields(c, t)
	case typesystem.TVar:
		names := s.aliasCandidates(c.Fields)
		switch len(names) {
		case 0:
			fields := make([]typesystem.Field, len(c.Fields))
			for i, name := range c.Fields {
				fields[i] = typesystem.Field{Name: name, Type: c.Elems[i]}
			}
			if err := s.unify(scr, typesystem.TRecord{Fields: fields}); err != nil {
				s.reportErr(c.Origin, err)
			}
		case 1:
			inst := typesystem.Instantiate(s.adts.Aliases[names[0]], s.alloc)
			if err := s.unify(scr, inst); err != nil {
				s.reportErr(c.Origin, err)
				return
			}
			if rec, ok := s.resolve(scr).(typesystem.TRecord); ok {
				s.matchRecordFields(c, rec)
			}
		default:
			s.report(c.Origin, diagnostics.ReasonAmbiguousRecord,
				diagnostics.AmbiguousRecord{Fields: c.Fields, Candidates: names})
		}
	case typesystem.THole:
		// Nothing to commit to.
	default:
		field := ""
		if len(c.Fields) > 0 {
			field = c.Fields[0]
		}
		s.report(c.Origin, diagnostics.ReasonNotRecord, diagnostics.NotRecord{Actual: scr, Field: field})
	}
}

func (s *Solver) matchRecordFields(c RecordMatch, rec typesystem.TRecord) {
	for i, name := range c.Fields {
		ft, ok := rec.FieldType(name)
		if !ok {
			s.report(c.Origin, diagnostics.ReasonMissingField, diagnostics.MissingField{Record: rec, Field: name})
			continue
		}
		if err := s.unify(c.Elems[i], ft); err != nil {
			s.reportErr(c.Origin, err)
		}
	}
}

// aliasCandidates returns the record aliases whose field sets exactly match
// the pattern's, sorted for deterministic reporting.
func (s *Solver) aliasCandidates(fields []string) []string {
	want := append([]string{}, fields...)
	sort.Strings(want)
	var names []string
	for name, scheme := range s.adts.Aliases {
		rec, ok := scheme.Body.(typesystem.TRecord)
		if !ok || len(rec.Fields) != len(want) {
			continue
		}
		got := make([]string, len(rec.Fields))
		for i, f := range rec.Fields {
			got[i] = f.Name
		}
		sort.Strings(got)
		same := true
		for i := range got {
			if got[i] != want[i] {
				same = false
				break
			}
		}
		if same {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (s *Solver) solveCoverage(c Coverage) {
	s.why = c.describe()
	cov := MatchCoverage{Handled: c.Handled, HasTail: c.HasTail}

	if c.Plain {
		if !c.HasTail {
			scr := s.resolve(c.Scrutinee)
			handled := make(map[string]bool, len(c.Handled))
			for _, h := range c.Handled {
				handled[h] = true
			}
			if con, ok := scr.(typesystem.TCon); ok {
				if info, known := s.adts.Types[con.Name]; known {
					for _, name := range info.CtorNames() {
						if !handled[name] {
							cov.Missing = append(cov.Missing, name)
						}
					}
				}
			} else {
				// Literal match over an unbounded domain.
				cov.Missing = []string{"_"}
			}
		}
		s.coverage[c.Match] = cov
		if len(cov.Missing) > 0 && !s.tolerant {
			s.report(c.Origin, diagnostics.ReasonNonExhaustiveMatch, diagnostics.NonExhaustiveMatch{Missing: cov.Missing})
		}
		return
	}

	scr := s.resolve(c.Scrutinee)
	var rowT typesystem.Type
	if con, ok := isResult(scr); ok {
		rowT = con.Args[1]
	}
	cov.Row = rowT

	var residualCases []typesystem.RowCase
	var residualTail typesystem.Type
	if !c.HasErr && !c.HasTail && rowT != nil {
		handled := make(map[string]bool, len(c.Handled))
		for _, h := range c.Handled {
			handled[h] = true
		}
		switch rt := rowT.(type) {
		case typesystem.TRow:
			for _, rc := range rt.Cases {
				if !handled[rc.Label] {
					cov.Missing = append(cov.Missing, rc.Label)
					residualCases = append(residualCases, rc)
				}
			}
			if rt.Tail != nil {
				cov.Missing = append(cov.Missing, config.ErrCtorName)
				residualTail = rt.Tail
			}
		default:
			// Opaque row: nothing is known to be handled.
			cov.Missing = []string{config.ErrCtorName}
			residualTail = rowT
		}
	}
	cov.Discharges = len(cov.Missing) == 0
	s.coverage[c.Match] = cov

	if cov.Discharges {
		if err := s.unify(c.Out, c.Result); err != nil {
			s.reportErr(c.Origin, err)
		}
		return
	}

	residual := typesystem.NormalizeRow(residualCases, residualTail)
	out := s.liftResult(c.Result, residual)
	if err := s.unify(c.Out, out); err != nil {
		s.report(c.Origin, diagnostics.ReasonInfectiousMatchResultMismatch,
			diagnostics.InfectiousMismatch{Expected: s.resolve(c.Out), Row: residual})
	}
	if !s.tolerant {
		s.report(c.Origin, diagnostics.ReasonNonExhaustiveMatch, diagnostics.NonExhaustiveMatch{Missing: cov.Missing})
	}
}

// Finish classifies holes and produces the Layer 2 result.
func (s *Solver) Finish() *Result {
	res := &Result{
		Subst:         s.subst,
		Diagnostics:   s.diags,
		Coverage:      s.coverage,
		Holes:         s.holes,
		HoleSolutions: make(map[ast.NodeID]HoleSolution),
	}

	if s.nodeTypes != nil {
		res.NodeTypes = make(map[ast.NodeID]typesystem.Type, len(s.nodeTypes))
		for id, t := range s.nodeTypes {
			res.NodeTypes[id] = s.resolve(t)
		}
	}

	ids := make([]int, 0, len(s.holes))
	for id := range s.holes {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		info := s.holes[id]
		var distinct []diagnostics.Candidate
		for _, cand := range s.candidates[id] {
			t := s.resolve(cand.Type)
			if _, bare := t.(typesystem.TVar); bare {
				continue
			}
			dup := false
			for _, d := range distinct {
				if typesystem.Equal(d.Type, t) {
					dup = true
					break
				}
			}
			if !dup {
				distinct = append(distinct, diagnostics.Candidate{Type: t, Reason: cand.Reason})
			}
		}

		var sol HoleSolution
		switch {
		case len(distinct) == 0:
			final := s.resolve(typesystem.TVar{ID: id})
			if _, unbound := final.(typesystem.TVar); unbound {
				sol = HoleSolution{State: HoleUnsolved}
			} else {
				sol = HoleSolution{State: HolePartial, Known: final}
			}
		case len(distinct) == 1:
			sol = HoleSolution{State: HolePartial, Known: distinct[0].Type}
		default:
			sol = HoleSolution{State: HoleConflicted, Candidates: distinct}
			res.Conflicts = append(res.Conflicts, diagnostics.Conflict{Hole: id, Origin: info.Node, Candidates: distinct})
		}
		res.HoleSolutions[info.Node] = sol
	}

	return res
}
