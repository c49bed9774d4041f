package diagnostics

import (
	"github.com/quill-lang/quill/internal/typesystem"
)

// Detail carries the strongly typed payload of one diagnostic. One struct
// per reason; message formatting switches over these exhaustively instead
// of digging through an untyped details bag.
type Detail interface {
	detail()
}

// TypeMismatch reports two rigid types that would not unify.
type TypeMismatch struct {
	Expected typesystem.Type
	Actual   typesystem.Type
}

// NotFunction reports a call whose callee is not a function.
type NotFunction struct {
	Actual typesystem.Type
}

// NotNumeric reports an arithmetic operand that is not Int (nor a Result
// carrying an Int payload).
type NotNumeric struct {
	Op     string
	Actual typesystem.Type
}

// NotBoolean reports a logical operand or condition that is not Bool.
type NotBoolean struct {
	Actual typesystem.Type
}

// BranchMismatch reports diverging branch/arm types.
type BranchMismatch struct {
	First typesystem.Type
	Other typesystem.Type
}

// MissingField reports a record projection or pattern on an absent field.
type MissingField struct {
	Record typesystem.Type
	Field  string
}

// NotRecord reports a projection into a non-record.
type NotRecord struct {
	Actual typesystem.Type
	Field  string
}

// OccursCycle reports a rejected infinite-type binding.
type OccursCycle struct {
	Var int
	In  typesystem.Type
}

// ArityMismatch reports a constructor applied to the wrong argument count.
type ArityMismatch struct {
	Ctor string
	Want int
	Got  int
}

// FreeVariable reports an unbound identifier.
type FreeVariable struct {
	Name string
}

// UnsupportedExpr reports a construct the generator cannot type.
type UnsupportedExpr struct {
	Kind string
}

// NonExhaustiveMatch reports residual uncovered constructors. Shared by
// the strict diagnostic and the tolerant flow warning.
type NonExhaustiveMatch struct {
	Missing []string
}

// AmbiguousRecord reports a record pattern whose field set matches several
// declared record types.
type AmbiguousRecord struct {
	Fields     []string
	Candidates []string
}

// TypeExprUnknown reports a reference to an undeclared type name.
type TypeExprUnknown struct {
	Name string
}

// TypeExprArity reports a type applied to the wrong number of arguments.
type TypeExprArity struct {
	Name string
	Want int
	Got  int
}

// TypeDeclDup reports duplicate type or constructor declarations.
type TypeDeclDup struct {
	Name string
}

// InfectiousMismatch reports a Result-row propagation that conflicts with
// a narrower already-established expectation. Used for both the call and
// match flavors.
type InfectiousMismatch struct {
	Expected typesystem.Type
	Row      typesystem.Type
}

// PatternBindingRequired reports a pattern position that must bind a name.
type PatternBindingRequired struct {
	Ctor string
}

// Internal reports an invariant violation not attributable to user input.
type Internal struct {
	Message string
}

func (TypeMismatch) detail()           {}
func (NotFunction) detail()            {}
func (NotNumeric) detail()             {}
func (NotBoolean) detail()             {}
func (BranchMismatch) detail()         {}
func (MissingField) detail()           {}
func (NotRecord) detail()              {}
func (OccursCycle) detail()            {}
func (ArityMismatch) detail()          {}
func (FreeVariable) detail()           {}
func (UnsupportedExpr) detail()        {}
func (NonExhaustiveMatch) detail()     {}
func (AmbiguousRecord) detail()        {}
func (TypeExprUnknown) detail()        {}
func (TypeExprArity) detail()          {}
func (TypeDeclDup) detail()            {}
func (InfectiousMismatch) detail()     {}
func (PatternBindingRequired) detail() {}
func (Internal) detail()               {}
