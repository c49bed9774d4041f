package analyzer

import (
	"testing"

	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/parser"
	"github.com/quill-lang/quill/internal/solver"
	"github.com/quill-lang/quill/internal/typesystem"
)

func generate(t *testing.T, src string, tolerant bool) *Layer1Result {
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

func TestAnalyze_EmitsConstraints(t *testing.T) {
	res := generate(t, `let x = 1 + 2`, false)
	if len(res.Constraints) == 0 {
		t.Fatal("expected a non-empty constraint stream")
	}
	hasOp := false
	for _, c := range res.Constraints {
		if _, ok := c.(solver.Op); ok {
			hasOp = true
		}
	}
	if !hasOp {
		t.Fatal("expected an operator constraint for +")
	}
}

func TestAnalyze_UserHoleRegistered(t *testing.T) {
	res := generate(t, `let x: Int = ?`, false)
	if len(res.Holes) != 1 {
		t.Fatalf("expected one hole, got %d", len(res.Holes))
	}
	for _, info := range res.Holes {
		if _, ok := info.Origin.(typesystem.UserHole); !ok {
			t.Fatalf("expected user-hole provenance, got %T", info.Origin)
		}
	}
}

func TestAnalyze_UnannotatedParamBecomesHole(t *testing.T) {
	res := generate(t, `let inc(x) = x + 1`, false)
	found := false
	for _, info := range res.Holes {
		if _, ok := info.Origin.(typesystem.ExprHole); ok {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an expression-hole for the parameter, got %+v", res.Holes)
	}
}

func TestAnalyze_TolerantRecordsDiagnostic(t *testing.T) {
	res := generate(t, `let x = missing`, true)
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Reason != diagnostics.ReasonFreeVariable {
		t.Fatalf("expected one free_variable diagnostic, got %+v", res.Diagnostics)
	}
	// The failure site is a hole with incompleteness provenance.
	found := false
	for _, info := range res.Holes {
		if _, ok := info.Origin.(typesystem.Incomplete); ok {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an incompleteness hole for the unbound name")
	}
}

func TestAnalyze_StrictFailsFast(t *testing.T) {
	prog, _, err := parser.Parse("test.ql", `let x = missing`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = Analyze(prog, Options{Tolerant: false})
	ie, ok := err.(*diagnostics.InferError)
	if !ok || ie.Reason != diagnostics.ReasonFreeVariable {
		t.Fatalf("expected a free_variable InferError, got %v", err)
	}
}

func TestAnalyze_CoverageAfterBindingUnifications(t *testing.T) {
	src := `
		type Color = Red | Blue
		let pick(c: Color) = match c {
			Red -> 1,
			Blue -> 2
		}
	`
	res := generate(t, src, false)

	covAt := -1
	lastUnify := -1
	for i, c := range res.Constraints {
		switch c.(type) {
		case solver.Coverage:
			covAt = i
		case solver.Unify:
			if covAt < 0 {
				lastUnify = i
			}
		}
	}
	if covAt < 0 {
		t.Fatal("expected a coverage constraint")
	}
	if lastUnify < 0 || lastUnify > covAt {
		t.Fatal("coverage must trail the binding's unifications")
	}
}

func TestAnalyze_ReplayMatchesEagerResult(t *testing.T) {
	src := `
		let id(x: Int) = x
		let y = id(7)
	`
	res := generate(t, src, false)

	replay := solver.Solve(res.Constraints, solver.Options{
		Alloc:     res.Alloc,
		Adts:      res.Adts,
		Holes:     res.Holes,
		NodeTypes: res.NodeTypeByID,
		Tolerant:  false,
	})
	if len(replay.Diagnostics) != 0 {
		t.Fatalf("replaying a clean stream must stay clean, got %+v", replay.Diagnostics)
	}
}

func TestAnalyze_SeededEnvVisible(t *testing.T) {
	env := typesystem.NewEnv()
	env.Bind("double", typesystem.MonoScheme(typesystem.TFunc{From: typesystem.Int, To: typesystem.Int}))

	prog, _, err := parser.Parse("test.ql", `let y = double(21)`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := Analyze(prog, Options{Env: env})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("expected a clean module, got %+v", res.Diagnostics)
	}
}
