package ast

// WildcardPat matches anything without binding: _.
type WildcardPat struct {
	Meta
}

func (p *WildcardPat) patternNode() {}

// AllErrorsPat matches every remaining error case of a row, covering the
// tail the way a wildcard does but only on the error side.
type AllErrorsPat struct {
	Meta
}

func (p *AllErrorsPat) patternNode() {}

// IdentPat binds the scrutinee to a name.
type IdentPat struct {
	Meta
	Name string
}

func (p *IdentPat) patternNode() {}

// LiteralPat matches a literal expression (int, bool, char, string, unit).
type LiteralPat struct {
	Meta
	Value Expr
}

func (p *LiteralPat) patternNode() {}

// CtorPat matches a data constructor and its payload.
type CtorPat struct {
	Meta
	Name     string
	NameSpan Span
	Args     []Pattern
}

func (p *CtorPat) patternNode() {}

// TuplePat destructures a tuple.
type TuplePat struct {
	Meta
	Elems []Pattern
}

func (p *TuplePat) patternNode() {}

// RecordPatField is one bound field of a record pattern.
type RecordPatField struct {
	Meta
	Name string
}

// RecordPat destructures a record by field names: { x, y }.
type RecordPat struct {
	Meta
	Fields []*RecordPatField
}

func (p *RecordPat) patternNode() {}
