package analyzer

import (
	"fmt"
	"sort"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/solver"
	"github.com/quill-lang/quill/internal/typesystem"
)

// Options configures one generation run. Env and Adts seed the initial
// scope with everything visible from dependencies; both may be nil.
type Options struct {
	Tolerant bool
	Env      *typesystem.Env
	Adts     *typesystem.AdtEnv
}

// Layer1Result is the constraint-generation output: the marked program, the
// ordered constraint stream, the final environment, and the side tables the
// solver and presenter key off NodeID and hole variable id.
type Layer1Result struct {
	Program      *ast.MProgram
	Constraints  []solver.Constraint
	Env          *typesystem.Env
	Adts         *typesystem.AdtEnv
	NodeTypeByID map[ast.NodeID]typesystem.Type
	Holes        map[int]solver.HoleInfo
	Alloc        *typesystem.VarAlloc
	Diagnostics  []diagnostics.Diagnostic // tolerant-mode generation diagnostics
}

// marker carries the generation state through the syntax-directed walk. It
// runs an eager solver over the constraints it emits so let generalization
// sees solved types; Layer 2 re-solves the same stream independently.
type marker struct {
	alloc     *typesystem.VarAlloc
	env       *typesystem.Env
	adts      *typesystem.AdtEnv
	eager     *solver.Solver
	cons      []solver.Constraint
	holes     map[int]solver.HoleInfo
	nodeTypes map[ast.NodeID]typesystem.Type
	diags     []diagnostics.Diagnostic
	tolerant  bool

	// pendingCov holds coverage constraints until the enclosing binding's
	// unifications are all in the stream, so the solver sees a settled
	// scrutinee row.
	pendingCov []solver.Coverage
}

// flushCoverage emits the coverage constraints gathered while marking the
// current binding.
func (m *marker) flushCoverage() {
	for _, c := range m.pendingCov {
		m.emit(c)
	}
	m.pendingCov = nil
}

// Analyze walks the program and produces the Layer 1 result. In strict mode
// the returned error is a typed InferError for the first generation-time
// semantic error; tolerant mode converts those to provenance-carrying holes
// and keeps going.
func Analyze(prog *ast.Program, opts Options) (*Layer1Result, error) {
	alloc := typesystem.NewVarAlloc()

	var adts *typesystem.AdtEnv
	if opts.Adts != nil {
		adts = opts.Adts.Clone()
	} else {
		adts = typesystem.NewAdtEnv()
	}
	registerBuiltins(adts, alloc)

	env := typesystem.NewEnv()
	if opts.Env != nil {
		env = opts.Env.Child()
	}

	holes := make(map[int]solver.HoleInfo)
	m := &marker{
		alloc:     alloc,
		env:       env,
		adts:      adts,
		eager:     solver.New(solver.Options{Alloc: alloc, Adts: adts, Holes: holes, Tolerant: true}),
		holes:     holes,
		nodeTypes: make(map[ast.NodeID]typesystem.Type),
		tolerant:  opts.Tolerant,
	}

	marked, err := m.markProgram(prog)
	if err != nil {
		return nil, err
	}

	return &Layer1Result{
		Program:      marked,
		Constraints:  m.cons,
		Env:          m.env,
		Adts:         m.adts,
		NodeTypeByID: m.nodeTypes,
		Holes:        m.holes,
		Alloc:        m.alloc,
		Diagnostics:  m.diags,
	}, nil
}

// emit appends a constraint to the stream and feeds the eager solver.
func (m *marker) emit(c solver.Constraint) {
	m.cons = append(m.cons, c)
	m.eager.Add(c)
}

func (m *marker) resolve(t typesystem.Type) typesystem.Type {
	return m.eager.Resolve(t)
}

func (m *marker) setType(id ast.NodeID, t typesystem.Type) {
	m.nodeTypes[id] = t
}

// registerHole tracks a fresh variable as a hole with the given provenance.
func (m *marker) registerHole(v typesystem.TVar, node ast.NodeID, origin typesystem.Provenance) {
	m.holes[v.ID] = solver.HoleInfo{Node: node, Origin: origin}
}

// failType reports a generation-time semantic error. Strict mode returns a
// typed InferError; tolerant mode records a diagnostic and hands back a
// fresh hole so the rest of the module still analyzes.
func (m *marker) failType(id ast.NodeID, span ast.Span, reason diagnostics.Reason, detail diagnostics.Detail) (typesystem.Type, error) {
	msg := diagnostics.Message(diagnostics.Diagnostic{Reason: reason, Origin: id, Detail: detail}, typesystem.NewFormatter(m.adts))
	if !m.tolerant {
		return nil, &diagnostics.InferError{Span: span, Reason: reason, Msg: msg}
	}
	v := m.alloc.Fresh()
	m.registerHole(v, id, typesystem.Incomplete{Node: int(id), Reason: msg})
	m.diags = append(m.diags, diagnostics.Diagnostic{Reason: reason, Origin: id, Detail: detail})
	return v, nil
}

// generalize quantifies t over its solved free variables not free in the
// current environment.
func (m *marker) generalize(t typesystem.Type, env *typesystem.Env) typesystem.Scheme {
	applied := m.resolve(t)
	envFree := make(map[int]bool)
	for id := range env.FreeVars() {
		for _, v := range m.resolve(typesystem.TVar{ID: id}).FreeVars() {
			envFree[v] = true
		}
	}
	var vars []int
	for _, v := range applied.FreeVars() {
		if !envFree[v] {
			vars = append(vars, v)
		}
	}
	sort.Ints(vars)
	return typesystem.Scheme{Vars: vars, Body: applied}
}

// markProgram registers type declarations, groups let declarations into
// mutually recursive components and infers them component by component.
func (m *marker) markProgram(prog *ast.Program) (*ast.MProgram, error) {
	marked := &ast.MProgram{File: prog.File}
	declFor := make(map[ast.NodeID]*ast.MDecl)

	var lets []*ast.LetDecl
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.TypeDecl:
			md, err := m.registerTypeDecl(decl)
			if err != nil {
				return nil, err
			}
			if md != nil {
				declFor[decl.ID] = md
			}
		case *ast.LetDecl:
			lets = append(lets, decl)
		default:
			return nil, internalErr(d.GetSpan(), "unknown declaration node %T", d)
		}
	}

	for _, group := range letGroups(lets) {
		if err := m.markLetGroup(group, declFor); err != nil {
			return nil, err
		}
	}

	// Keep declaration order in the marked program.
	for _, d := range prog.Decls {
		if md, ok := declFor[d.GetID()]; ok {
			marked.Decls = append(marked.Decls, md)
		}
	}
	return marked, nil
}

// markLetGroup infers one mutually recursive component: every member is
// pre-bound to a fresh monomorphic variable, the bodies are inferred against
// that shared frame, and generalization runs against the outer environment
// only.
func (m *marker) markLetGroup(group []*ast.LetDecl, declFor map[ast.NodeID]*ast.MDecl) error {
	outer := m.env
	frame := outer.Child()
	frameVars := make([]typesystem.TVar, len(group))
	for i, d := range group {
		v := m.alloc.Fresh()
		frameVars[i] = v
		frame.Bind(d.Name, typesystem.MonoScheme(v))
	}

	m.env = frame
	marked := make([]*ast.MDecl, len(group))
	for i, d := range group {
		md, t, err := m.markLetDecl(d, frame)
		if err != nil {
			m.env = outer
			return err
		}
		m.emit(solver.Unify{Left: typesystem.Type(frameVars[i]), Right: t, Origin: d.ID})
		marked[i] = md
	}
	m.flushCoverage()
	m.env = outer

	for i, d := range group {
		scheme := m.generalize(frameVars[i], outer)
		outer.Bind(d.Name, scheme)
		marked[i].Scheme = scheme
		m.setType(d.ID, scheme.Body)
		declFor[d.ID] = marked[i]
	}
	return nil
}

// letGroups orders top-level lets into strongly connected components, each
// component in first-declaration order, dependencies before dependents.
func letGroups(lets []*ast.LetDecl) [][]*ast.LetDecl {
	index := make(map[string]int, len(lets))
	for i, d := range lets {
		index[d.Name] = i
	}
	edges := make([][]int, len(lets))
	for i, d := range lets {
		seen := make(map[int]bool)
		for _, name := range referencedNames(d) {
			if j, ok := index[name]; ok && !seen[j] {
				seen[j] = true
				edges[i] = append(edges[i], j)
			}
		}
		sort.Ints(edges[i])
	}

	// Tarjan; components pop dependencies-first.
	state := &sccState{
		edges:   edges,
		indexOf: make([]int, len(lets)),
		lowlink: make([]int, len(lets)),
		onStack: make([]bool, len(lets)),
	}
	for i := range state.indexOf {
		state.indexOf[i] = -1
	}
	for i := range lets {
		if state.indexOf[i] < 0 {
			state.visit(i)
		}
	}

	groups := make([][]*ast.LetDecl, len(state.comps))
	for gi, comp := range state.comps {
		sort.Ints(comp)
		for _, i := range comp {
			groups[gi] = append(groups[gi], lets[i])
		}
	}
	return groups
}

type sccState struct {
	edges   [][]int
	indexOf []int
	lowlink []int
	onStack []bool
	stack   []int
	next    int
	comps   [][]int
}

func (s *sccState) visit(v int) {
	s.indexOf[v] = s.next
	s.lowlink[v] = s.next
	s.next++
	s.stack = append(s.stack, v)
	s.onStack[v] = true

	for _, w := range s.edges[v] {
		if s.indexOf[w] < 0 {
			s.visit(w)
			if s.lowlink[w] < s.lowlink[v] {
				s.lowlink[v] = s.lowlink[w]
			}
		} else if s.onStack[w] && s.indexOf[w] < s.lowlink[v] {
			s.lowlink[v] = s.indexOf[w]
		}
	}

	if s.lowlink[v] == s.indexOf[v] {
		var comp []int
		for {
			w := s.stack[len(s.stack)-1]
			s.stack = s.stack[:len(s.stack)-1]
			s.onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		s.comps = append(s.comps, comp)
	}
}

// referencedNames collects every identifier mentioned in the declaration's
// body and parameter defaults; shadowing is ignored, which can only merge
// components, never split one.
func referencedNames(d *ast.LetDecl) []string {
	var names []string
	var walkExpr func(ast.Expr)
	var walkPattern func(ast.Pattern)

	walkPattern = func(p ast.Pattern) {
		switch pt := p.(type) {
		case *ast.CtorPat:
			for _, a := range pt.Args {
				walkPattern(a)
			}
		case *ast.TuplePat:
			for _, e := range pt.Elems {
				walkPattern(e)
			}
		}
	}

	walkExpr = func(e ast.Expr) {
		switch et := e.(type) {
		case *ast.Ident:
			names = append(names, et.Name)
		case *ast.Lambda:
			walkExpr(et.Body)
		case *ast.Call:
			walkExpr(et.Callee)
			for _, a := range et.Args {
				walkExpr(a)
			}
		case *ast.Binary:
			walkExpr(et.Left)
			walkExpr(et.Right)
		case *ast.Unary:
			walkExpr(et.Operand)
		case *ast.If:
			walkExpr(et.Cond)
			walkExpr(et.Then)
			walkExpr(et.Else)
		case *ast.Block:
			for _, item := range et.Items {
				switch it := item.(type) {
				case *ast.LetDecl:
					walkExpr(it.Body)
				case ast.Expr:
					walkExpr(it)
				}
			}
		case *ast.Record:
			for _, f := range et.Fields {
				walkExpr(f.Value)
			}
		case *ast.FieldAccess:
			walkExpr(et.Target)
		case *ast.Tuple:
			for _, el := range et.Elems {
				walkExpr(el)
			}
		case *ast.Match:
			walkExpr(et.Scrutinee)
			for _, arm := range et.Arms {
				walkPattern(arm.Pattern)
				walkExpr(arm.Body)
			}
		}
	}

	if d.Body != nil {
		walkExpr(d.Body)
	}
	return names
}

// internalErr is used for invariant violations that indicate a bug, not bad
// user input.
func internalErr(span ast.Span, format string, args ...any) error {
	return &diagnostics.InferError{
		Span:   span,
		Reason: diagnostics.ReasonInternalError,
		Msg:    fmt.Sprintf(format, args...),
	}
}
