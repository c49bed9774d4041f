package diagnostics

import (
	"fmt"
	"strings"

	"github.com/quill-lang/quill/internal/ast"
)

// LexError is a fatal lexical error with a source span.
type LexError struct {
	Span ast.Span
	Msg  string
}

func (e *LexError) Error() string {
	return "lex error: " + e.Msg
}

// Format renders the error against the original source text.
func (e *LexError) Format(source string) string {
	return formatAt(source, e.Span, "lex error", e.Msg)
}

// ParseError is a fatal syntactic error with a source span.
type ParseError struct {
	Span ast.Span
	Msg  string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Msg
}

func (e *ParseError) Format(source string) string {
	return formatAt(source, e.Span, "parse error", e.Msg)
}

// InferError is a strict-mode generation error: the tolerant path would
// have produced a provenance-carrying hole instead.
type InferError struct {
	Span   ast.Span
	Reason Reason
	Msg    string
}

func (e *InferError) Error() string {
	return fmt.Sprintf("infer error [%s]: %s", e.Reason, e.Msg)
}

func (e *InferError) Format(source string) string {
	return formatAt(source, e.Span, fmt.Sprintf("infer error [%s]", e.Reason), e.Msg)
}

// LineCol converts a byte offset into 1-based line and column.
func LineCol(source string, offset int) (int, int) {
	if offset > len(source) {
		offset = len(source)
	}
	line, col := 1, 1
	for _, r := range source[:offset] {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func formatAt(source string, span ast.Span, kind, msg string) string {
	line, col := LineCol(source, span.Start)
	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s", kind, line, col, msg)
	excerpt := sourceLine(source, span.Start)
	if excerpt != "" {
		fmt.Fprintf(&b, "\n  %s\n  %s^", excerpt, strings.Repeat(" ", col-1))
	}
	return b.String()
}

func sourceLine(source string, offset int) string {
	if offset > len(source) {
		offset = len(source)
	}
	start := strings.LastIndexByte(source[:offset], '\n') + 1
	end := strings.IndexByte(source[offset:], '\n')
	if end < 0 {
		end = len(source)
	} else {
		end += offset
	}
	return source[start:end]
}
