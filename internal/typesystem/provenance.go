package typesystem

import "fmt"

// Provenance records why a hole is unresolved. Error-derived provenance
// wraps the provenance it supersedes, so the underlying hole id survives
// any number of wrappings.
type Provenance interface {
	provenance()
	String() string
}

// ExprHole marks a hole introduced by the generator for an expression it
// could not type yet (e.g. an unannotated parameter). ID is the fresh
// variable tracked for this hole.
type ExprHole struct {
	ID int
}

// UserHole marks a hole the user wrote explicitly (?).
type UserHole struct {
	ID int
}

// Incomplete marks a hole caused by tolerated incompleteness; Reason is the
// human-readable cause.
type Incomplete struct {
	Node   int
	Reason string
}

// ErrorNotFunction wraps the provenance of a callee that turned out not to
// be a function.
type ErrorNotFunction struct {
	Inner Provenance
}

// ErrorInconsistent wraps a hole whose requirements contradict Expected.
type ErrorInconsistent struct {
	Expected Type
	Inner    Provenance
}

func (ExprHole) provenance()          {}
func (UserHole) provenance()          {}
func (Incomplete) provenance()        {}
func (ErrorNotFunction) provenance()  {}
func (ErrorInconsistent) provenance() {}

func (p ExprHole) String() string   { return fmt.Sprintf("hole(t%d)", p.ID) }
func (p UserHole) String() string   { return fmt.Sprintf("?t%d", p.ID) }
func (p Incomplete) String() string { return "incomplete: " + p.Reason }
func (p ErrorNotFunction) String() string {
	return "not-a-function(" + p.Inner.String() + ")"
}
func (p ErrorInconsistent) String() string {
	return "inconsistent(" + p.Inner.String() + ")"
}

// UnwrapHoleID walks error wrappers to the underlying hole id. A direct
// lookup on the wrapper would always miss; callers must use this.
func UnwrapHoleID(p Provenance) (int, bool) {
	for {
		switch v := p.(type) {
		case ExprHole:
			return v.ID, true
		case UserHole:
			return v.ID, true
		case ErrorNotFunction:
			p = v.Inner
		case ErrorInconsistent:
			p = v.Inner
		default:
			return 0, false
		}
	}
}

// HoleID extracts the tracked hole id from a type, unwrapping provenance
// wrappers. Returns false for non-hole types.
func HoleID(t Type) (int, bool) {
	switch v := t.(type) {
	case THole:
		return UnwrapHoleID(v.Origin)
	case TVar:
		return v.ID, true
	default:
		return 0, false
	}
}
