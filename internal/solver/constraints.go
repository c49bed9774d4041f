package solver

import (
	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/typesystem"
)

// Constraint is one deferred typing obligation produced by the generator.
// The solver consumes the stream in generation order.
type Constraint interface {
	constraint()
	OriginID() ast.NodeID
	// describe tags hole candidates with the obligation that forced them.
	describe() string
}

// Unify requires two types to be equal. Why selects the diagnostic reason
// on failure; empty means plain type_mismatch.
type Unify struct {
	Left   typesystem.Type
	Right  typesystem.Type
	Origin ast.NodeID
	Why    diagnostics.Reason
}

// Call requires Callee to accept Arg and produce Result. An infected
// argument or callee lifts its error row onto Result.
type Call struct {
	Callee typesystem.Type
	Arg    typesystem.Type
	Result typesystem.Type
	Origin ast.NodeID
}

// OpClass groups operators by their typing rule.
type OpClass int

const (
	OpArith   OpClass = iota // + - * / : Int operands, Int result
	OpCompare                // < > <= >= : Int operands, Bool result
	OpEquality               // == != : equal operands, Bool result
	OpLogic                  // && || ! : Bool operands, Bool result
	OpNegate                 // unary - : Int operand, Int result
)

// Op requires the operands of a built-in operator to fit its class. Right
// is nil for unary operators. Infected operands lift their row onto Result.
type Op struct {
	Class  OpClass
	Op     string
	Left   typesystem.Type
	Right  typesystem.Type
	Result typesystem.Type
	Origin ast.NodeID
}

// Field requires Target to be a record with the named field and binds
// Result to the field's type, lifting a row when the target is infected.
type Field struct {
	Target typesystem.Type
	Name   string
	Result typesystem.Type
	Origin ast.NodeID
}

// RecordMatch requires Scrutinee to be a record carrying the pattern's
// fields; Elems receive the field types. Nominal ambiguity against record
// aliases is resolved here, not in the generator.
type RecordMatch struct {
	Scrutinee typesystem.Type
	Fields    []string
	Elems     []typesystem.Type
	Origin    ast.NodeID
}

// Coverage asks for exhaustiveness analysis of one match expression. For a
// Result scrutinee it also decides whether the match discharges the error
// row or re-infects Out with the residual.
type Coverage struct {
	Match     ast.NodeID
	Scrutinee typesystem.Type
	Result    typesystem.Type // unified type of the arm bodies
	Out       typesystem.Type // the match expression's own type
	Handled   []string        // explicitly handled constructor labels
	HasTail   bool            // wildcard / all_errors / binding arm present
	HasErr    bool            // an Err(_) arm present
	Plain     bool            // ordinary ADT match, no row discharge
	Origin    ast.NodeID
}

func (Unify) constraint()       {}
func (Call) constraint()        {}
func (Op) constraint()          {}
func (Field) constraint()       {}
func (RecordMatch) constraint() {}
func (Coverage) constraint()    {}

func (c Unify) OriginID() ast.NodeID       { return c.Origin }
func (c Call) OriginID() ast.NodeID        { return c.Origin }
func (c Op) OriginID() ast.NodeID          { return c.Origin }
func (c Field) OriginID() ast.NodeID       { return c.Origin }
func (c RecordMatch) OriginID() ast.NodeID { return c.Origin }
func (c Coverage) OriginID() ast.NodeID    { return c.Origin }

func (c Unify) describe() string {
	switch c.Why {
	case diagnostics.ReasonBranchMismatch:
		return "branch result"
	case diagnostics.ReasonNotBoolean:
		return "condition"
	default:
		return "unification"
	}
}

func (c Call) describe() string        { return "call" }
func (c Op) describe() string          { return "operand of " + c.Op }
func (c Field) describe() string       { return "access of field " + c.Name }
func (c RecordMatch) describe() string { return "record pattern" }
func (c Coverage) describe() string    { return "match result" }
