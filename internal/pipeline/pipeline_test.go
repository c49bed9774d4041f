package pipeline

import (
	"testing"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/parser"
	"github.com/quill-lang/quill/internal/solver"
	"github.com/quill-lang/quill/internal/typesystem"
)

func analyze(t *testing.T, src string, tolerant bool) *AnalysisResult {
	t.Helper()
	prog, _, err := parser.Parse("test.ql", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := Analyze(prog, Options{Tolerant: tolerant})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return res
}

func analyzeStrictErr(t *testing.T, src string) error {
	t.Helper()
	prog, _, err := parser.Parse("test.ql", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = Analyze(prog, Options{})
	if err == nil {
		t.Fatal("expected a strict-mode error, got none")
	}
	return err
}

func topScheme(t *testing.T, res *AnalysisResult, name string) string {
	t.Helper()
	for _, d := range res.Layer1.Program.Decls {
		if d.Kind == ast.MDeclLet && d.Name == name {
			return typesystem.NewFormatter(res.Layer1.Adts).FormatScheme(d.Scheme)
		}
	}
	t.Fatalf("no top-level let %q", name)
	return ""
}

func topDecl(t *testing.T, res *AnalysisResult, name string) *ast.MDecl {
	t.Helper()
	for _, d := range res.Layer1.Program.Decls {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("no declaration %q", name)
	return nil
}

func hasDiag(res *AnalysisResult, reason diagnostics.Reason) bool {
	for _, d := range res.Layer2.Diagnostics {
		if d.Reason == reason {
			return true
		}
	}
	return false
}

func TestInfer_AnnotatedFunction(t *testing.T) {
	res := analyze(t, `let add(x: Int, y: Int) = x + y`, false)
	if got := topScheme(t, res, "add"); got != "Int -> Int -> Int" {
		t.Fatalf("add: got %q", got)
	}
	if len(res.Layer2.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Layer2.Diagnostics)
	}
}

func TestInfer_OperatorConstrainsParam(t *testing.T) {
	res := analyze(t, `let inc(x) = x + 1`, false)
	if got := topScheme(t, res, "inc"); got != "Int -> Int" {
		t.Fatalf("inc: got %q", got)
	}
}

func TestInfer_Polymorphism(t *testing.T) {
	res := analyze(t, `
		let id(x) = x
		let a = id(1)
		let b = id(true)
	`, false)
	if got := topScheme(t, res, "id"); got != "forall a. a -> a" {
		t.Fatalf("id: got %q", got)
	}
	if got := topScheme(t, res, "a"); got != "Int" {
		t.Fatalf("a: got %q", got)
	}
	if got := topScheme(t, res, "b"); got != "Bool" {
		t.Fatalf("b: got %q", got)
	}
	if len(res.Layer2.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Layer2.Diagnostics)
	}
}

func TestInfer_MonomorphicUseBeforeGeneralization(t *testing.T) {
	// Inside its own recursion frame the binding stays monomorphic.
	res := analyze(t, `
		let isEven(n) = if n == 0 { true } else { isOdd(n - 1) }
		let isOdd(n) = if n == 0 { false } else { isEven(n - 1) }
	`, false)
	if got := topScheme(t, res, "isEven"); got != "Int -> Bool" {
		t.Fatalf("isEven: got %q", got)
	}
	if got := topScheme(t, res, "isOdd"); got != "Int -> Bool" {
		t.Fatalf("isOdd: got %q", got)
	}
}

func TestInfer_BranchMismatch(t *testing.T) {
	res := analyze(t, `let x = if true { 1 } else { false }`, true)
	if !hasDiag(res, diagnostics.ReasonBranchMismatch) {
		t.Fatalf("expected branch_mismatch, got %v", res.Layer2.Diagnostics)
	}
}

func TestInfer_ConditionNotBoolean(t *testing.T) {
	res := analyze(t, `let x = if 1 { 2 } else { 3 }`, true)
	if !hasDiag(res, diagnostics.ReasonNotBoolean) {
		t.Fatalf("expected not_boolean, got %v", res.Layer2.Diagnostics)
	}
}

func TestInfer_NotFunction(t *testing.T) {
	res := analyze(t, `let y = 1(2)`, true)
	if !hasDiag(res, diagnostics.ReasonNotFunction) {
		t.Fatalf("expected not_function, got %v", res.Layer2.Diagnostics)
	}
}

func TestInfer_FreeVariableStrict(t *testing.T) {
	err := analyzeStrictErr(t, `let x = y`)
	ie, ok := err.(*diagnostics.InferError)
	if !ok {
		t.Fatalf("expected InferError, got %T: %v", err, err)
	}
	if ie.Reason != diagnostics.ReasonFreeVariable {
		t.Fatalf("expected free_variable, got %s", ie.Reason)
	}
}

func TestInfer_FreeVariableTolerant(t *testing.T) {
	res := analyze(t, `let x = y`, true)
	if !hasDiag(res, diagnostics.ReasonFreeVariable) {
		t.Fatalf("expected free_variable diagnostic, got %v", res.Layer2.Diagnostics)
	}
}

func TestInfer_AdtAndPlainMatch(t *testing.T) {
	res := analyze(t, `
		type Shape = Circle(Int) | Square(Int)
		let area(s) = match s {
			Circle(r) -> r * r * 3,
			Square(w) -> w * w
		}
	`, false)
	if got := topScheme(t, res, "area"); got != "Shape -> Int" {
		t.Fatalf("area: got %q", got)
	}
	decl := topDecl(t, res, "area")
	cov, ok := res.Layer2.Coverage[decl.Body.ID]
	if !ok {
		t.Fatal("expected coverage entry for the match")
	}
	if len(cov.Missing) != 0 {
		t.Fatalf("match is exhaustive, missing %v", cov.Missing)
	}
}

func TestInfer_PlainMatchNonExhaustive(t *testing.T) {
	src := `
		type Shape = Circle(Int) | Square(Int)
		let f(s) = match s {
			Circle(r) -> r
		}
	`
	res := analyze(t, src, false)
	if !hasDiag(res, diagnostics.ReasonNonExhaustiveMatch) {
		t.Fatalf("strict mode must flag the missing ctor, got %v", res.Layer2.Diagnostics)
	}

	res = analyze(t, src, true)
	if hasDiag(res, diagnostics.ReasonNonExhaustiveMatch) {
		t.Fatal("tolerant mode must not emit non_exhaustive_match")
	}
	decl := topDecl(t, res, "f")
	cov := res.Layer2.Coverage[decl.Body.ID]
	if len(cov.Missing) != 1 || cov.Missing[0] != "Square" {
		t.Fatalf("expected missing [Square], got %v", cov.Missing)
	}
}

func TestInfer_ResultMatchDischarges(t *testing.T) {
	res := analyze(t, `
		type NetErr = Timeout | Refused
		let handle(r: Result<Int, NetErr>) = match r {
			Ok(v) -> v,
			Err(e) -> 0
		}
	`, false)
	if got := topScheme(t, res, "handle"); got != "Result<Int, NetErr> -> Int" {
		t.Fatalf("handle: got %q", got)
	}
	decl := topDecl(t, res, "handle")
	cov := res.Layer2.Coverage[decl.Body.ID]
	if !cov.Discharges || len(cov.Missing) != 0 {
		t.Fatalf("expected full discharge, got %+v", cov)
	}
}

func TestInfer_ResultMatchResidualRow(t *testing.T) {
	res := analyze(t, `
		type NetErr = Timeout | Refused
		let handle(r: Result<Int, NetErr>) = match r {
			Ok(v) -> v,
			Timeout -> 0
		}
	`, true)
	if got := topScheme(t, res, "handle"); got != "Result<Int, NetErr> -> Result<Int, {Refused}>" {
		t.Fatalf("handle: got %q", got)
	}
	decl := topDecl(t, res, "handle")
	cov := res.Layer2.Coverage[decl.Body.ID]
	if cov.Discharges {
		t.Fatal("partial handling must not discharge")
	}
	if len(cov.Missing) != 1 || cov.Missing[0] != "Refused" {
		t.Fatalf("expected missing [Refused], got %v", cov.Missing)
	}
}

func TestInfer_AllErrorsCoversTail(t *testing.T) {
	res := analyze(t, `
		type NetErr = Timeout | Refused
		let handle(r: Result<Int, NetErr>) = match r {
			Ok(v) -> v,
			all_errors -> 0
		}
	`, false)
	if got := topScheme(t, res, "handle"); got != "Result<Int, NetErr> -> Int" {
		t.Fatalf("handle: got %q", got)
	}
}

func TestInfer_InfectiousCallPropagation(t *testing.T) {
	res := analyze(t, `
		type NetErr = Timeout | Refused
		let get(x: Int): Result<Int, NetErr> = Ok(x)
		let use(n) = get(n) + 1
	`, false)
	if got := topScheme(t, res, "use"); got != "Int -> Result<Int, NetErr>" {
		t.Fatalf("use: got %q", got)
	}
}

func TestInfer_ErrBindingRequired(t *testing.T) {
	res := analyze(t, `
		let f(r) = match r {
			Ok(v) -> v,
			Err(0) -> 1
		}
	`, true)
	if !hasDiag(res, diagnostics.ReasonPatternBindingRequired) {
		t.Fatalf("expected pattern_binding_required, got %v", res.Layer2.Diagnostics)
	}
}

func TestInfer_RecordAliasResolution(t *testing.T) {
	res := analyze(t, `
		type Point = { x: Int, y: Int }
		let norm(p) = match p {
			{ x, y } -> x + y,
			_ -> 0
		}
	`, false)
	if got := topScheme(t, res, "norm"); got != "{ x: Int, y: Int } -> Int" {
		t.Fatalf("norm: got %q", got)
	}
}

func TestInfer_AmbiguousRecordPattern(t *testing.T) {
	res := analyze(t, `
		type A = { x: Int, y: Int }
		type B = { x: Int, y: Int }
		let f(p) = match p {
			{ x, y } -> x,
			_ -> 0
		}
	`, true)
	if !hasDiag(res, diagnostics.ReasonAmbiguousRecord) {
		t.Fatalf("expected ambiguous_record, got %v", res.Layer2.Diagnostics)
	}
}

func TestHoles_UserHolePartial(t *testing.T) {
	res := analyze(t, `let x: Int = ?`, false)
	decl := topDecl(t, res, "x")
	hole, ok := res.Layer2.HoleSolutions[decl.Body.ID]
	if !ok {
		t.Fatal("expected a hole solution for ?")
	}
	if hole.State != solver.HolePartial || !typesystem.Equal(hole.Known, typesystem.Int) {
		t.Fatalf("expected partial Int, got %+v", hole)
	}
}

func TestHoles_UnannotatedParamPartial(t *testing.T) {
	res := analyze(t, `let inc(x) = x + 1`, false)
	decl := topDecl(t, res, "inc")
	param := decl.Params[0]
	hole, ok := res.Layer2.HoleSolutions[param.ID]
	if !ok {
		t.Fatal("expected a hole solution for the parameter")
	}
	if hole.State != solver.HolePartial || !typesystem.Equal(hole.Known, typesystem.Int) {
		t.Fatalf("expected partial Int, got %+v", hole)
	}
}

func TestHoles_PolymorphicParamUnsolved(t *testing.T) {
	res := analyze(t, `let id(x) = x`, false)
	decl := topDecl(t, res, "id")
	hole, ok := res.Layer2.HoleSolutions[decl.Params[0].ID]
	if !ok {
		t.Fatal("expected a hole solution for the parameter")
	}
	if hole.State != solver.HoleUnsolved {
		t.Fatalf("expected unsolved, got %+v", hole)
	}
}

func TestHoles_ConflictingRequirements(t *testing.T) {
	res := analyze(t, `
		let f(x) = {
			let a: Int = x;
			let b: Bool = x;
			a
		}
	`, true)
	if len(res.Layer2.Conflicts) == 0 {
		t.Fatal("expected a hole conflict")
	}
	c := res.Layer2.Conflicts[0]
	if len(c.Candidates) < 2 {
		t.Fatalf("expected at least two candidates, got %+v", c.Candidates)
	}
}

func TestInfer_FieldAccess(t *testing.T) {
	res := analyze(t, `let getX(p: { x: Int, y: Bool }) = p.x`, false)
	if got := topScheme(t, res, "getX"); got != "{ x: Int, y: Bool } -> Int" {
		t.Fatalf("getX: got %q", got)
	}
}

func TestInfer_MissingField(t *testing.T) {
	res := analyze(t, `let f(p: { x: Int }) = p.z`, true)
	if !hasDiag(res, diagnostics.ReasonMissingField) {
		t.Fatalf("expected missing_field, got %v", res.Layer2.Diagnostics)
	}
}

func TestInfer_DuplicateTypeDeclStrict(t *testing.T) {
	err := analyzeStrictErr(t, `
		type T = A | B
		type T = C
	`)
	ie := err.(*diagnostics.InferError)
	if ie.Reason != diagnostics.ReasonTypeDeclDupType {
		t.Fatalf("expected duplicate type reason, got %s", ie.Reason)
	}
}

func TestInfer_OccursCheck(t *testing.T) {
	res := analyze(t, `let f(x) = x(x)`, true)
	if !hasDiag(res, diagnostics.ReasonOccursCycle) {
		t.Fatalf("expected occurs_cycle, got %v", res.Layer2.Diagnostics)
	}
}

func TestLayerReplay_SameDiagnostics(t *testing.T) {
	// The generator solves eagerly; Layer 2 re-solves the identical stream.
	// Both must agree on the final node types.
	res := analyze(t, `
		let inc(x) = x + 1
		let y = inc(41)
	`, false)
	decl := topDecl(t, res, "y")
	got := res.Layer2.NodeTypes[decl.ID]
	if !typesystem.Equal(got, typesystem.Int) {
		t.Fatalf("expected Int for y, got %v", got)
	}
}
