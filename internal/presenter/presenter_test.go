package presenter

import (
	"strings"
	"testing"

	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/parser"
	"github.com/quill-lang/quill/internal/pipeline"
)

func present(t *testing.T, src string, tolerant bool) *Report {
	t.Helper()
	prog, _, err := parser.Parse("test.ql", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := pipeline.Analyze(prog, pipeline.Options{Tolerant: tolerant})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return Present(res)
}

func TestFindNodeAtOffset_Tightest(t *testing.T) {
	src := `let x = 1 + 2`
	r := present(t, src, false)

	// Offset of the literal 1: the tightest typed node is the literal.
	view, ok := r.FindNodeAtOffset(strings.Index(src, "1"))
	if !ok {
		t.Fatal("expected a node at the literal")
	}
	if view.Display != "Int" {
		t.Fatalf("expected Int at literal, got %q", view.Display)
	}

	// Offset of the operator: the binary expression is the tightest cover.
	view, ok = r.FindNodeAtOffset(strings.Index(src, "+"))
	if !ok {
		t.Fatal("expected a node at the operator")
	}
	if view.Display != "Int" {
		t.Fatalf("expected Int at operator, got %q", view.Display)
	}
}

func TestFindNodeAtOffset_Miss(t *testing.T) {
	r := present(t, `let x = 1`, false)
	if _, ok := r.FindNodeAtOffset(10000); ok {
		t.Fatal("expected no node past the end of source")
	}
}

func TestViews_HoleDisplay(t *testing.T) {
	src := `let x: Int = ?`
	r := present(t, src, false)
	view, ok := r.FindNodeAtOffset(strings.Index(src, "?"))
	if !ok {
		t.Fatal("expected a node at the hole")
	}
	// Partial hole: the solver pinned it to Int.
	if view.Display != "Int" {
		t.Fatalf("expected Int for the filled hole, got %q", view.Display)
	}
	if view.Type.Hole < 0 {
		t.Fatal("expected the view to keep its hole id")
	}
}

func TestViews_UnsolvedHoleKeepsProvenance(t *testing.T) {
	src := `let id(x) = x`
	r := present(t, src, false)
	view, ok := r.FindNodeAtOffset(strings.Index(src, "(x") + 1)
	if !ok {
		t.Fatal("expected a node at the parameter")
	}
	if view.Type.Kind != PartialUnknown {
		t.Fatalf("expected unknown type for polymorphic param, got %+v", view.Type)
	}
	if !strings.Contains(view.Display, "hole") {
		t.Fatalf("expected provenance in display, got %q", view.Display)
	}
}

func TestNotes_ErrorAnchored(t *testing.T) {
	src := `let x = if true { 1 } else { false }`
	r := present(t, src, true)
	found := false
	for _, n := range r.Notes {
		if n.Reason == diagnostics.ReasonBranchMismatch {
			found = true
			if n.Warning {
				t.Fatal("branch mismatch is an error, not a warning")
			}
			if n.Message == "" {
				t.Fatal("expected a rendered message")
			}
		}
	}
	if !found {
		t.Fatalf("expected a branch_mismatch note, got %+v", r.Notes)
	}
}

func TestNotes_PartialCoverageWarning(t *testing.T) {
	src := `
		type NetErr = Timeout | Refused
		let handle(r: Result<Int, NetErr>) = match r {
			Ok(v) -> v,
			Timeout -> 0
		}
	`
	r := present(t, src, true)
	found := false
	for _, n := range r.Notes {
		if n.Reason == diagnostics.ReasonMatchErrorRowPartial {
			found = true
			if !n.Warning {
				t.Fatal("partial coverage must be a warning")
			}
			if !strings.Contains(n.Message, "Refused") {
				t.Fatalf("expected the missing case in the message, got %q", n.Message)
			}
		}
	}
	if !found {
		t.Fatalf("expected a coverage warning, got %+v", r.Notes)
	}
}

func TestCoverageViews(t *testing.T) {
	src := `
		type NetErr = Timeout | Refused
		let handle(r: Result<Int, NetErr>) = match r {
			Ok(v) -> v,
			Err(e) -> 0
		}
	`
	r := present(t, src, false)
	if len(r.Coverage) != 1 {
		t.Fatalf("expected one coverage view, got %d", len(r.Coverage))
	}
	cov := r.Coverage[0]
	if !cov.Discharges || len(cov.Missing) != 0 {
		t.Fatalf("expected discharged coverage, got %+v", cov)
	}
}
