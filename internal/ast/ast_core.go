package ast

// Node is the base interface for all AST nodes. Every node carries a stable
// NodeID and a source span; nodes are immutable once the parser returns.
type Node interface {
	GetID() NodeID
	GetSpan() Span
}

// Decl is a top-level or block-local declaration.
type Decl interface {
	Node
	declNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Pattern is a match or binding pattern.
type Pattern interface {
	Node
	patternNode()
}

// TypeExpr is a written type annotation.
type TypeExpr interface {
	Node
	typeExprNode()
}

// Meta is the header embedded in every node: identity plus source range.
type Meta struct {
	ID   NodeID
	Span Span
}

func (m Meta) GetID() NodeID { return m.ID }
func (m Meta) GetSpan() Span { return m.Span }

// Program is the root node of every parsed module.
type Program struct {
	File  string
	Decls []Decl
}

func (p *Program) GetID() NodeID {
	if len(p.Decls) > 0 {
		return p.Decls[0].GetID()
	}
	return NoNode
}

func (p *Program) GetSpan() Span {
	if len(p.Decls) == 0 {
		return Span{}
	}
	return p.Decls[0].GetSpan().Join(p.Decls[len(p.Decls)-1].GetSpan())
}

// Param is a function parameter with an optional type annotation.
type Param struct {
	Meta
	Name string
	Ann  TypeExpr // nil when unannotated
}

// LetDecl binds a name to a value or function. With Params it is a function
// declaration; recursive references to Name inside Body are legal.
type LetDecl struct {
	Meta
	Name     string
	NameSpan Span
	Params   []*Param
	Ret      TypeExpr // optional declared return type
	Body     Expr
}

func (d *LetDecl) declNode() {}

// CtorDecl is one data constructor of an ADT declaration.
type CtorDecl struct {
	Meta
	Name string
	Args []TypeExpr
}

// TypeDecl declares an algebraic data type or a named record alias:
// type Name a b = Ctor1(T) | Ctor2
// type Point = { x: Int, y: Int }
type TypeDecl struct {
	Meta
	Name   string
	Params []string
	Ctors  []*CtorDecl
	Alias  TypeExpr // non-nil for record aliases; Ctors is then empty
}

func (d *TypeDecl) declNode() {}
