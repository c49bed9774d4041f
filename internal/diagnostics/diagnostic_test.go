package diagnostics

import (
	"strings"
	"testing"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/typesystem"
)

func TestMessage_TypeMismatch(t *testing.T) {
	f := typesystem.NewFormatter(nil)
	d := Diagnostic{
		Reason: ReasonTypeMismatch,
		Detail: TypeMismatch{Expected: typesystem.Int, Actual: typesystem.Bool},
	}
	got := Message(d, f)
	if got != "type mismatch: expected Int, got Bool" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestMessage_NonExhaustiveMatch(t *testing.T) {
	f := typesystem.NewFormatter(nil)
	d := Diagnostic{
		Reason: ReasonNonExhaustiveMatch,
		Detail: NonExhaustiveMatch{Missing: []string{"Refused", "Timeout"}},
	}
	got := Message(d, f)
	if !strings.Contains(got, "Refused") || !strings.Contains(got, "Timeout") {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestMessage_RowGroupsToAdtName(t *testing.T) {
	adts := typesystem.NewAdtEnv()
	adts.Register(typesystem.TypeInfo{
		Name: "NetErr",
		Ctors: []typesystem.ConstructorInfo{
			{Name: "Timeout", Owner: "NetErr"},
			{Name: "Refused", Owner: "NetErr"},
		},
	})
	f := typesystem.NewFormatter(adts)
	row := typesystem.TRow{Cases: []typesystem.RowCase{{Label: "Refused"}, {Label: "Timeout"}}}
	d := Diagnostic{
		Reason: ReasonInfectiousCallResultMismatch,
		Detail: InfectiousMismatch{Expected: typesystem.Int, Row: row},
	}
	got := Message(d, f)
	if !strings.Contains(got, "NetErr") {
		t.Fatalf("expected the row grouped to its ADT name, got %q", got)
	}
}

func TestMessage_UnknownDetailFallsBackToReason(t *testing.T) {
	f := typesystem.NewFormatter(nil)
	d := Diagnostic{Reason: ReasonFreeVariable}
	if got := Message(d, f); got != string(ReasonFreeVariable) {
		t.Fatalf("expected the bare reason, got %q", got)
	}
}

func TestConflictMessage_Deterministic(t *testing.T) {
	c := Conflict{
		Hole:   3,
		Origin: ast.NodeID(1),
		Candidates: []Candidate{
			{Type: typesystem.Bool, Reason: "used as condition"},
			{Type: typesystem.Int, Reason: "used as operand"},
		},
	}
	a := ConflictMessage(c, typesystem.NewFormatter(nil))
	// Reversed candidate order renders identically.
	c.Candidates[0], c.Candidates[1] = c.Candidates[1], c.Candidates[0]
	b := ConflictMessage(c, typesystem.NewFormatter(nil))
	if a != b {
		t.Fatalf("rendering depends on candidate order: %q vs %q", a, b)
	}
	if !strings.Contains(a, "Bool") || !strings.Contains(a, "Int") {
		t.Fatalf("expected both candidates, got %q", a)
	}
}

func TestLineCol(t *testing.T) {
	src := "ab\ncde\nf"
	cases := []struct {
		offset, line, col int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{5, 2, 3},
		{7, 3, 1},
	}
	for _, tc := range cases {
		line, col := LineCol(src, tc.offset)
		if line != tc.line || col != tc.col {
			t.Fatalf("offset %d: expected %d:%d, got %d:%d", tc.offset, tc.line, tc.col, line, col)
		}
	}
}

func TestLineCol_ClampsPastEnd(t *testing.T) {
	line, col := LineCol("ab", 100)
	if line != 1 || col != 3 {
		t.Fatalf("expected clamp to end, got %d:%d", line, col)
	}
}

func TestInferError_Format(t *testing.T) {
	src := "let x = y"
	e := &InferError{
		Span:   ast.Span{Start: 8, End: 9},
		Reason: ReasonFreeVariable,
		Msg:    `unbound name "y"`,
	}
	got := e.Format(src)
	if !strings.Contains(got, "1:9") {
		t.Fatalf("expected position 1:9, got %q", got)
	}
	if !strings.Contains(got, "let x = y") {
		t.Fatalf("expected a source excerpt, got %q", got)
	}
	if !strings.Contains(got, "        ^") {
		t.Fatalf("expected a caret under the offending name, got %q", got)
	}
}

func TestParseError_Format(t *testing.T) {
	src := "let x =\nlet y = 1"
	e := &ParseError{Span: ast.Span{Start: 8, End: 11}, Msg: "expected expression"}
	got := e.Format(src)
	if !strings.Contains(got, "parse error at 2:1") {
		t.Fatalf("unexpected header: %q", got)
	}
	if !strings.Contains(got, "let y = 1") {
		t.Fatalf("expected the second line excerpt, got %q", got)
	}
}
