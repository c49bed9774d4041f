package diagnostics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/typesystem"
)

// Diagnostic is a solver-level structured error: a closed reason tag, the
// node that anchors it, and a typed detail payload. Diagnostics are values,
// never Go errors; the solver collects them and keeps going.
type Diagnostic struct {
	Reason Reason
	Origin ast.NodeID
	Detail Detail
}

// Candidate is one of the mutually incompatible types forced on a hole.
type Candidate struct {
	Type   typesystem.Type
	Reason string
}

// Conflict reports an unfillable hole: the hole id plus every distinct
// type forced onto it.
type Conflict struct {
	Hole       int
	Origin     ast.NodeID
	Candidates []Candidate
}

// Message renders a diagnostic for humans using the given formatter (which
// supplies ADT-aware row display).
func Message(d Diagnostic, f *typesystem.Formatter) string {
	switch det := d.Detail.(type) {
	case TypeMismatch:
		return fmt.Sprintf("type mismatch: expected %s, got %s", f.Format(det.Expected), f.Format(det.Actual))
	case NotFunction:
		return fmt.Sprintf("cannot call a value of type %s", f.Format(det.Actual))
	case NotNumeric:
		return fmt.Sprintf("operator %s needs Int operands, got %s", det.Op, f.Format(det.Actual))
	case NotBoolean:
		return fmt.Sprintf("expected Bool, got %s", f.Format(det.Actual))
	case BranchMismatch:
		return fmt.Sprintf("branches disagree: %s vs %s", f.Format(det.First), f.Format(det.Other))
	case MissingField:
		return fmt.Sprintf("record %s has no field %q", f.Format(det.Record), det.Field)
	case NotRecord:
		return fmt.Sprintf("cannot project field %q from %s", det.Field, f.Format(det.Actual))
	case OccursCycle:
		return fmt.Sprintf("infinite type: t%d occurs in %s", det.Var, f.Format(det.In))
	case ArityMismatch:
		return fmt.Sprintf("constructor %s takes %d argument(s), got %d", det.Ctor, det.Want, det.Got)
	case FreeVariable:
		return fmt.Sprintf("unbound name %q", det.Name)
	case UnsupportedExpr:
		return fmt.Sprintf("cannot infer a type for %s", det.Kind)
	case NonExhaustiveMatch:
		return fmt.Sprintf("match does not cover: %s", strings.Join(det.Missing, ", "))
	case AmbiguousRecord:
		return fmt.Sprintf("record pattern {%s} matches several types: %s",
			strings.Join(det.Fields, ", "), strings.Join(det.Candidates, ", "))
	case TypeExprUnknown:
		return fmt.Sprintf("unknown type %q", det.Name)
	case TypeExprArity:
		return fmt.Sprintf("type %s takes %d argument(s), got %d", det.Name, det.Want, det.Got)
	case TypeDeclDup:
		return fmt.Sprintf("duplicate declaration of %q", det.Name)
	case InfectiousMismatch:
		return fmt.Sprintf("result carries unhandled errors %s but %s was expected",
			f.Format(det.Row), f.Format(det.Expected))
	case PatternBindingRequired:
		return fmt.Sprintf("constructor %s requires a binding pattern", det.Ctor)
	case Internal:
		return "internal error: " + det.Message
	default:
		return string(d.Reason)
	}
}

// ConflictMessage renders a conflict: the forced candidate types in a
// deterministic order with their reasons.
func ConflictMessage(c Conflict, f *typesystem.Formatter) string {
	parts := make([]string, len(c.Candidates))
	for i, cand := range c.Candidates {
		parts[i] = fmt.Sprintf("%s (%s)", f.Format(cand.Type), cand.Reason)
	}
	sort.Strings(parts)
	return "conflicting inferred types: " + strings.Join(parts, " vs ")
}
