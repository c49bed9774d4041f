package typesystem

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the closed algebra of Quill types. Variants: type variable,
// primitive, function, constructor application, tuple, record, error row
// and hole. Everything is immutable; Apply returns rewritten copies.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeVars() []int
}

// TVar is a type variable identified by an allocator-unique integer.
type TVar struct {
	ID int
}

func (t TVar) String() string     { return fmt.Sprintf("t%d", t.ID) }
func (t TVar) Apply(s Subst) Type { return applyWithSeen(t, s, nil) }
func (t TVar) FreeVars() []int    { return []int{t.ID} }

// PrimKind enumerates the primitive types.
type PrimKind int

const (
	PrimUnit PrimKind = iota
	PrimInt
	PrimBool
	PrimChar
	PrimString
)

var primNames = map[PrimKind]string{
	PrimUnit:   "Unit",
	PrimInt:    "Int",
	PrimBool:   "Bool",
	PrimChar:   "Char",
	PrimString: "String",
}

// TPrim is a builtin primitive type.
type TPrim struct {
	Kind PrimKind
}

func (t TPrim) String() string     { return primNames[t.Kind] }
func (t TPrim) Apply(s Subst) Type { return t }
func (t TPrim) FreeVars() []int    { return nil }

// Convenience singletons.
var (
	Unit   = TPrim{Kind: PrimUnit}
	Int    = TPrim{Kind: PrimInt}
	Bool   = TPrim{Kind: PrimBool}
	Char   = TPrim{Kind: PrimChar}
	String = TPrim{Kind: PrimString}
)

// TFunc is a single-argument function type; multi-parameter functions curry.
type TFunc struct {
	From Type
	To   Type
}

func (t TFunc) String() string {
	from := t.From.String()
	if _, ok := t.From.(TFunc); ok {
		from = "(" + from + ")"
	}
	return from + " -> " + t.To.String()
}

func (t TFunc) Apply(s Subst) Type { return applyWithSeen(t, s, nil) }

func (t TFunc) FreeVars() []int {
	return uniqueInts(append(t.From.FreeVars(), t.To.FreeVars()...))
}

// TCon is a named type constructor application, used for ADTs including the
// builtin Result.
type TCon struct {
	Name string
	Args []Type
}

func (t TCon) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(parts, ", "))
}

func (t TCon) Apply(s Subst) Type { return applyWithSeen(t, s, nil) }

func (t TCon) FreeVars() []int {
	var vars []int
	for _, a := range t.Args {
		vars = append(vars, a.FreeVars()...)
	}
	return uniqueInts(vars)
}

// TTuple is a fixed-arity tuple type.
type TTuple struct {
	Elems []Type
}

func (t TTuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t TTuple) Apply(s Subst) Type { return applyWithSeen(t, s, nil) }

func (t TTuple) FreeVars() []int {
	var vars []int
	for _, e := range t.Elems {
		vars = append(vars, e.FreeVars()...)
	}
	return uniqueInts(vars)
}

// Field is one named field of a record type. Order is kept for display;
// equality ignores it.
type Field struct {
	Name string
	Type Type
}

// TRecord is a record type with named fields.
type TRecord struct {
	Fields []Field
}

func (t TRecord) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (t TRecord) Apply(s Subst) Type { return applyWithSeen(t, s, nil) }

func (t TRecord) FreeVars() []int {
	var vars []int
	for _, f := range t.Fields {
		vars = append(vars, f.Type.FreeVars()...)
	}
	return uniqueInts(vars)
}

// FieldType returns the type of the named field.
func (t TRecord) FieldType(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// RowCase is one labeled case of an error row. Payload is nil for nullary
// constructors.
type RowCase struct {
	Label   string
	Payload Type
}

// TRow is an open or closed error row: labeled cases plus an optional tail
// standing for "any other unlisted error". A row with zero cases and a tail
// is display-equivalent to the tail alone.
type TRow struct {
	Cases []RowCase
	Tail  Type
}

func (t TRow) String() string {
	if len(t.Cases) == 0 && t.Tail != nil {
		return t.Tail.String()
	}
	parts := make([]string, len(t.Cases))
	for i, c := range t.Cases {
		if c.Payload != nil {
			parts[i] = c.Label + "(" + c.Payload.String() + ")"
		} else {
			parts[i] = c.Label
		}
	}
	body := strings.Join(parts, ", ")
	if t.Tail != nil {
		return "{" + body + " | " + t.Tail.String() + "}"
	}
	return "{" + body + "}"
}

func (t TRow) Apply(s Subst) Type { return applyWithSeen(t, s, nil) }

func (t TRow) FreeVars() []int {
	var vars []int
	for _, c := range t.Cases {
		if c.Payload != nil {
			vars = append(vars, c.Payload.FreeVars()...)
		}
	}
	if t.Tail != nil {
		vars = append(vars, t.Tail.FreeVars()...)
	}
	return uniqueInts(vars)
}

// Labels returns the explicit case labels in row order.
func (t TRow) Labels() []string {
	out := make([]string, len(t.Cases))
	for i, c := range t.Cases {
		out[i] = c.Label
	}
	return out
}

// Case returns the case with the given label.
func (t TRow) Case(label string) (RowCase, bool) {
	for _, c := range t.Cases {
		if c.Label == label {
			return c, true
		}
	}
	return RowCase{}, false
}

// NormalizeRow sorts cases by label and collapses a transparent wrapper
// (no cases, tail only) to its tail. Label order is kept deterministic so
// structural comparison and display are stable.
func NormalizeRow(cases []RowCase, tail Type) Type {
	if inner, ok := tail.(TRow); ok {
		cases = append(append([]RowCase{}, cases...), inner.Cases...)
		tail = inner.Tail
	}
	if len(cases) == 0 && tail != nil {
		return tail
	}
	sorted := append([]RowCase{}, cases...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Label < sorted[j].Label })
	// Drop duplicate labels, first occurrence wins.
	out := sorted[:0]
	seen := map[string]bool{}
	for _, c := range sorted {
		if !seen[c.Label] {
			seen[c.Label] = true
			out = append(out, c)
		}
	}
	return TRow{Cases: out, Tail: tail}
}

// THole is an unresolved type carrying provenance describing why it is
// unresolved. Holes are produced for user-written ? and for tolerant-mode
// error recovery.
type THole struct {
	Origin Provenance
}

func (t THole) String() string {
	return "?"
}

func (t THole) Apply(s Subst) Type { return applyWithSeen(t, s, nil) }

func (t THole) FreeVars() []int { return nil }

func uniqueInts(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
