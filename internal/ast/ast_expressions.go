package ast

// Ident is a variable or constructor reference.
type Ident struct {
	Meta
	Name string
}

func (e *Ident) exprNode() {}

// IntLit is an integer literal.
type IntLit struct {
	Meta
	Value int64
}

func (e *IntLit) exprNode() {}

// BoolLit is true or false.
type BoolLit struct {
	Meta
	Value bool
}

func (e *BoolLit) exprNode() {}

// CharLit is a character literal.
type CharLit struct {
	Meta
	Value rune
}

func (e *CharLit) exprNode() {}

// StringLit is a string literal.
type StringLit struct {
	Meta
	Value string
}

func (e *StringLit) exprNode() {}

// UnitLit is the unit value ().
type UnitLit struct {
	Meta
}

func (e *UnitLit) exprNode() {}

// HoleExpr is a user-written ? placeholder.
type HoleExpr struct {
	Meta
}

func (e *HoleExpr) exprNode() {}

// Lambda is an anonymous function: fn(x, y) { body }.
type Lambda struct {
	Meta
	Params []*Param
	Body   Expr
}

func (e *Lambda) exprNode() {}

// Call applies a callee to arguments.
type Call struct {
	Meta
	Callee Expr
	Args   []Expr
}

func (e *Call) exprNode() {}

// Binary is an infix operator application.
type Binary struct {
	Meta
	Op    string
	Left  Expr
	Right Expr
}

func (e *Binary) exprNode() {}

// Unary is a prefix operator application (- or !).
type Unary struct {
	Meta
	Op      string
	Operand Expr
}

func (e *Unary) exprNode() {}

// If is a two-armed conditional. Else is never nil; the parser requires it
// because if is an expression.
type If struct {
	Meta
	Cond Expr
	Then Expr
	Else Expr
}

func (e *If) exprNode() {}

// Block is a brace-delimited sequence. Items are local LetDecls or
// expressions; the block's value is the last expression (unit if none).
type Block struct {
	Meta
	Items []Node
}

func (e *Block) exprNode() {}

// RecordField is one name: value pair in a record literal.
type RecordField struct {
	Meta
	Name  string
	Value Expr
}

// Record is a record literal { x: 1, y: true }.
type Record struct {
	Meta
	Fields []*RecordField
}

func (e *Record) exprNode() {}

// FieldAccess projects a record field: target.name.
type FieldAccess struct {
	Meta
	Target   Expr
	Name     string
	NameSpan Span
}

func (e *FieldAccess) exprNode() {}

// Tuple is a tuple literal (a, b).
type Tuple struct {
	Meta
	Elems []Expr
}

func (e *Tuple) exprNode() {}

// MatchArm is one pattern -> body arm of a match.
type MatchArm struct {
	Meta
	Pattern Pattern
	Body    Expr
}

// Match scrutinizes a value against ordered arms.
type Match struct {
	Meta
	Scrutinee Expr
	Arms      []*MatchArm
}

func (e *Match) exprNode() {}
