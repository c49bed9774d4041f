package solver

import (
	"testing"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/typesystem"
)

func newTestSolver(t *testing.T) (*Solver, *typesystem.VarAlloc) {
	t.Helper()
	alloc := typesystem.NewVarAlloc()
	s := New(Options{Alloc: alloc, Adts: typesystem.NewAdtEnv(), Tolerant: true})
	return s, alloc
}

func hasReason(diags []diagnostics.Diagnostic, reason diagnostics.Reason) bool {
	for _, d := range diags {
		if d.Reason == reason {
			return true
		}
	}
	return false
}

func resultOf(payload typesystem.Type, cases []typesystem.RowCase, tail typesystem.Type) typesystem.TCon {
	return typesystem.TCon{
		Name: "Result",
		Args: []typesystem.Type{payload, typesystem.NormalizeRow(cases, tail)},
	}
}

func TestUnify_BindsVariable(t *testing.T) {
	s, alloc := newTestSolver(t)
	v := alloc.Fresh()
	s.Add(Unify{Left: v, Right: typesystem.Int, Origin: 1})
	if !typesystem.Equal(s.Resolve(v), typesystem.Int) {
		t.Fatalf("expected Int, got %s", s.Resolve(v))
	}
	if len(s.Finish().Diagnostics) != 0 {
		t.Fatal("expected no diagnostics")
	}
}

func TestUnify_MismatchKeepsEarlierType(t *testing.T) {
	s, alloc := newTestSolver(t)
	v := alloc.Fresh()
	s.Add(Unify{Left: v, Right: typesystem.Int, Origin: 1})
	s.Add(Unify{Left: v, Right: typesystem.Bool, Origin: 2})

	if !typesystem.Equal(s.Resolve(v), typesystem.Int) {
		t.Fatalf("the first binding must survive, got %s", s.Resolve(v))
	}
	res := s.Finish()
	if !hasReason(res.Diagnostics, diagnostics.ReasonTypeMismatch) {
		t.Fatalf("expected type_mismatch, got %+v", res.Diagnostics)
	}
	if res.Diagnostics[0].Origin != ast.NodeID(2) {
		t.Fatalf("diagnostic must anchor at the failing constraint, got %v", res.Diagnostics[0].Origin)
	}
}

func TestUnify_OccursCycle(t *testing.T) {
	s, alloc := newTestSolver(t)
	v := alloc.Fresh()
	s.Add(Unify{Left: v, Right: typesystem.TFunc{From: v, To: typesystem.Int}, Origin: 1})
	if !hasReason(s.Finish().Diagnostics, diagnostics.ReasonOccursCycle) {
		t.Fatal("expected occurs_cycle")
	}
}

func TestUnifyRows_ExtensionThroughTails(t *testing.T) {
	s, alloc := newTestSolver(t)
	ta := alloc.Fresh()
	tb := alloc.Fresh()
	a := typesystem.TRow{Cases: []typesystem.RowCase{{Label: "Timeout"}}, Tail: ta}
	b := typesystem.TRow{Cases: []typesystem.RowCase{{Label: "Refused"}}, Tail: tb}

	s.Add(Unify{Left: a, Right: b, Origin: 1})
	if len(s.Finish().Diagnostics) != 0 {
		t.Fatal("open rows with disjoint labels must unify")
	}
	// Each side's tail absorbed the other's labels.
	got, ok := s.Resolve(ta).(typesystem.TRow)
	if !ok {
		t.Fatalf("expected a row in the tail, got %s", s.Resolve(ta))
	}
	if _, ok := got.Case("Refused"); !ok {
		t.Fatalf("expected Refused pushed into the tail, got %s", got)
	}
}

func TestUnifyRows_ClosedRejectsExtraLabel(t *testing.T) {
	s, _ := newTestSolver(t)
	a := typesystem.TRow{Cases: []typesystem.RowCase{{Label: "Timeout"}}}
	b := typesystem.TRow{Cases: []typesystem.RowCase{{Label: "Timeout"}, {Label: "Refused"}}}
	s.Add(Unify{Left: a, Right: b, Origin: 1})
	if !hasReason(s.Finish().Diagnostics, diagnostics.ReasonTypeMismatch) {
		t.Fatal("a closed row must reject extra labels")
	}
}

func TestCall_Plain(t *testing.T) {
	s, alloc := newTestSolver(t)
	res := alloc.Fresh()
	s.Add(Call{
		Callee: typesystem.TFunc{From: typesystem.Int, To: typesystem.Bool},
		Arg:    typesystem.Int,
		Result: res,
		Origin: 1,
	})
	if !typesystem.Equal(s.Resolve(res), typesystem.Bool) {
		t.Fatalf("expected Bool, got %s", s.Resolve(res))
	}
}

func TestCall_NotFunction(t *testing.T) {
	s, alloc := newTestSolver(t)
	res := alloc.Fresh()
	s.Add(Call{Callee: typesystem.Int, Arg: typesystem.Int, Result: res, Origin: 7})

	out := s.Finish()
	if !hasReason(out.Diagnostics, diagnostics.ReasonNotFunction) {
		t.Fatalf("expected not_function, got %+v", out.Diagnostics)
	}
	// The result variable becomes an error-derived hole.
	info, ok := out.Holes[res.ID]
	if !ok {
		t.Fatal("expected the result variable tracked as a hole")
	}
	if _, ok := info.Origin.(typesystem.ErrorNotFunction); !ok {
		t.Fatalf("expected not-a-function provenance, got %T", info.Origin)
	}
}

func TestCall_InfectedArgumentLifts(t *testing.T) {
	s, alloc := newTestSolver(t)
	res := alloc.Fresh()
	arg := resultOf(typesystem.Int, []typesystem.RowCase{{Label: "Timeout"}}, nil)
	s.Add(Call{
		Callee: typesystem.TFunc{From: typesystem.Int, To: typesystem.Int},
		Arg:    arg,
		Result: res,
		Origin: 1,
	})
	if len(s.Finish().Diagnostics) != 0 {
		t.Fatal("lifting must not produce diagnostics")
	}
	con, ok := s.Resolve(res).(typesystem.TCon)
	if !ok || con.Name != "Result" {
		t.Fatalf("expected an infected result, got %s", s.Resolve(res))
	}
	row, ok := con.Args[1].(typesystem.TRow)
	if !ok {
		t.Fatalf("expected a row, got %s", con.Args[1])
	}
	if _, ok := row.Case("Timeout"); !ok {
		t.Fatalf("expected Timeout carried over, got %s", row)
	}
}

func TestCall_InfectedCalleeAndArgumentMergeRows(t *testing.T) {
	s, alloc := newTestSolver(t)
	res := alloc.Fresh()
	callee := resultOf(
		typesystem.TFunc{From: typesystem.Int, To: typesystem.Int},
		[]typesystem.RowCase{{Label: "Timeout"}}, nil,
	)
	arg := resultOf(typesystem.Int, []typesystem.RowCase{{Label: "Refused"}}, nil)
	s.Add(Call{Callee: callee, Arg: arg, Result: res, Origin: 1})

	con, ok := s.Resolve(res).(typesystem.TCon)
	if !ok || con.Name != "Result" {
		t.Fatalf("expected an infected result, got %s", s.Resolve(res))
	}
	row := con.Args[1].(typesystem.TRow)
	if len(row.Cases) != 2 {
		t.Fatalf("expected the union of both rows, got %s", row)
	}
}

func TestInfectiousArithmeticLifts(t *testing.T) {
	s, alloc := newTestSolver(t)
	res := alloc.Fresh()
	left := resultOf(typesystem.Int, []typesystem.RowCase{{Label: "Timeout"}}, nil)
	s.Add(Op{Class: OpArith, Op: "+", Left: left, Right: typesystem.Int, Result: res, Origin: 1})

	if len(s.Finish().Diagnostics) != 0 {
		t.Fatal("infected arithmetic lifts without diagnostics")
	}
	con, ok := s.Resolve(res).(typesystem.TCon)
	if !ok || con.Name != "Result" || !typesystem.Equal(con.Args[0], typesystem.Int) {
		t.Fatalf("expected Result<Int, ...>, got %s", s.Resolve(res))
	}
}

func TestOp_NotNumeric(t *testing.T) {
	s, alloc := newTestSolver(t)
	res := alloc.Fresh()
	s.Add(Op{Class: OpArith, Op: "+", Left: typesystem.Bool, Right: typesystem.Int, Result: res, Origin: 1})
	if !hasReason(s.Finish().Diagnostics, diagnostics.ReasonNotNumeric) {
		t.Fatal("expected not_numeric")
	}
}

func TestOp_InfectedNonNumericPayloadStillReports(t *testing.T) {
	s, alloc := newTestSolver(t)
	res := alloc.Fresh()
	left := resultOf(typesystem.Bool, []typesystem.RowCase{{Label: "Timeout"}}, nil)
	s.Add(Op{Class: OpArith, Op: "+", Left: left, Right: typesystem.Int, Result: res, Origin: 1})
	if !hasReason(s.Finish().Diagnostics, diagnostics.ReasonNotNumeric) {
		t.Fatal("a non-numeric payload must still report not_numeric")
	}
}

func TestOp_LogicWantsBool(t *testing.T) {
	s, alloc := newTestSolver(t)
	res := alloc.Fresh()
	s.Add(Op{Class: OpLogic, Op: "&&", Left: typesystem.Int, Right: typesystem.Bool, Result: res, Origin: 1})
	if !hasReason(s.Finish().Diagnostics, diagnostics.ReasonNotBoolean) {
		t.Fatal("expected not_boolean")
	}
}

func TestField_Access(t *testing.T) {
	s, alloc := newTestSolver(t)
	res := alloc.Fresh()
	rec := typesystem.TRecord{Fields: []typesystem.Field{{Name: "x", Type: typesystem.Int}}}
	s.Add(Field{Target: rec, Name: "x", Result: res, Origin: 1})
	if !typesystem.Equal(s.Resolve(res), typesystem.Int) {
		t.Fatalf("expected Int, got %s", s.Resolve(res))
	}
}

func TestField_Missing(t *testing.T) {
	s, alloc := newTestSolver(t)
	res := alloc.Fresh()
	rec := typesystem.TRecord{Fields: []typesystem.Field{{Name: "x", Type: typesystem.Int}}}
	s.Add(Field{Target: rec, Name: "y", Result: res, Origin: 1})
	if !hasReason(s.Finish().Diagnostics, diagnostics.ReasonMissingField) {
		t.Fatal("expected missing_field")
	}
}

func TestField_UnknownTargetCommitsToRecord(t *testing.T) {
	s, alloc := newTestSolver(t)
	target := alloc.Fresh()
	res := alloc.Fresh()
	s.Add(Field{Target: target, Name: "x", Result: res, Origin: 1})
	rec, ok := s.Resolve(target).(typesystem.TRecord)
	if !ok {
		t.Fatalf("expected a record, got %s", s.Resolve(target))
	}
	if _, ok := rec.FieldType("x"); !ok {
		t.Fatalf("expected field x, got %s", rec)
	}
}
