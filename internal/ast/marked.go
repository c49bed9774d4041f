package ast

import (
	"github.com/quill-lang/quill/internal/typesystem"
)

// The marked AST is the Layer 1 output: a parallel copy of the parsed tree
// in which every node carries its NodeID, its span, and the (possibly still
// unresolved) type handle assigned during constraint generation. It is
// never mutated after generation; the solver publishes per-node results
// through side tables keyed by NodeID.

// MExprKind discriminates marked expression nodes.
type MExprKind int

const (
	MIdent MExprKind = iota
	MInt
	MBool
	MChar
	MString
	MUnit
	MHole
	MLambda
	MCall
	MBinary
	MUnary
	MIf
	MBlock
	MLet
	MRecord
	MFieldAccess
	MTuple
	MMatch
)

// MExpr is a marked expression. Children holds sub-expressions in source
// order; Match arms and local let bindings keep their extra structure in
// dedicated fields.
type MExpr struct {
	ID       NodeID
	Span     Span
	Kind     MExprKind
	Type     typesystem.Type
	Name     string // ident, field or bound name
	Op       string // binary/unary operator
	Children []*MExpr
	Params   []*MPattern // lambda / local let params
	Arms     []*MArm     // match only
}

// MArm is one marked match arm.
type MArm struct {
	ID      NodeID
	Span    Span
	Pattern *MPattern
	Body    *MExpr
}

// MPatKind discriminates marked patterns.
type MPatKind int

const (
	MPatWildcard MPatKind = iota
	MPatAllErrors
	MPatIdent
	MPatLiteral
	MPatCtor
	MPatTuple
	MPatRecord
)

// MPattern is a marked pattern; its Type is the type the pattern matches.
type MPattern struct {
	ID       NodeID
	Span     Span
	Kind     MPatKind
	Type     typesystem.Type
	Name     string
	Children []*MPattern
}

// MDeclKind discriminates top-level marked declarations.
type MDeclKind int

const (
	MDeclLet MDeclKind = iota
	MDeclType
)

// MCtor is a marked constructor declaration.
type MCtor struct {
	ID   NodeID
	Span Span
	Name string
}

// MDecl is a marked top-level declaration. For lets, Scheme is the
// generalized scheme entered into the environment and Body the marked body;
// for type declarations only the ctor list is kept.
type MDecl struct {
	ID       NodeID
	Span     Span
	Kind     MDeclKind
	Name     string
	NameSpan Span
	Scheme   typesystem.Scheme
	Params   []*MPattern
	Body     *MExpr
	Ctors    []*MCtor
}

// MProgram is the marked module root.
type MProgram struct {
	File  string
	Decls []*MDecl
}

// VisitNode receives every marked node's identity, span and type handle.
// Type is nil for nodes without a type of their own (e.g. type decls).
type VisitNode func(id NodeID, span Span, t typesystem.Type)

// Walk traverses the whole marked program in source order.
func (p *MProgram) Walk(visit VisitNode) {
	for _, d := range p.Decls {
		d.walk(visit)
	}
}

func (d *MDecl) walk(visit VisitNode) {
	visit(d.ID, d.Span, d.Scheme.Body)
	for _, p := range d.Params {
		p.walk(visit)
	}
	if d.Body != nil {
		d.Body.walk(visit)
	}
	for _, c := range d.Ctors {
		visit(c.ID, c.Span, nil)
	}
}

func (e *MExpr) walk(visit VisitNode) {
	if e == nil {
		return
	}
	visit(e.ID, e.Span, e.Type)
	for _, p := range e.Params {
		p.walk(visit)
	}
	for _, c := range e.Children {
		c.walk(visit)
	}
	for _, arm := range e.Arms {
		visit(arm.ID, arm.Span, nil)
		if arm.Pattern != nil {
			arm.Pattern.walk(visit)
		}
		arm.Body.walk(visit)
	}
}

func (p *MPattern) walk(visit VisitNode) {
	if p == nil {
		return
	}
	visit(p.ID, p.Span, p.Type)
	for _, c := range p.Children {
		c.walk(visit)
	}
}
