package ast

// NamedTypeExpr references a named type, possibly applied: Int, List<a>,
// Result<Int, IoError>. Lowercase names are type variables.
type NamedTypeExpr struct {
	Meta
	Name string
	Args []TypeExpr
}

func (t *NamedTypeExpr) typeExprNode() {}

// FuncTypeExpr is a written function type: (A, B) -> C. Multiple parameters
// curry left to right during elaboration.
type FuncTypeExpr struct {
	Meta
	Params []TypeExpr
	Ret    TypeExpr
}

func (t *FuncTypeExpr) typeExprNode() {}

// TupleTypeExpr is a written tuple type: (A, B).
type TupleTypeExpr struct {
	Meta
	Elems []TypeExpr
}

func (t *TupleTypeExpr) typeExprNode() {}

// RecordTypeExpr is a written record type: { x: Int, y: Bool }.
type RecordTypeExpr struct {
	Meta
	Fields []*RecordTypeField
}

// RecordTypeField is one field of a written record type.
type RecordTypeField struct {
	Meta
	Name string
	Type TypeExpr
}

func (t *RecordTypeExpr) typeExprNode() {}

// UnitTypeExpr is the written unit type ().
type UnitTypeExpr struct {
	Meta
}

func (t *UnitTypeExpr) typeExprNode() {}

// HoleTypeExpr is a written ? in type position.
type HoleTypeExpr struct {
	Meta
}

func (t *HoleTypeExpr) typeExprNode() {}
