package token

// Type identifies the lexical class of a token.
type Type string

const (
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"

	IDENT  Type = "IDENT"  // x, fetchUser
	INT    Type = "INT"    // 123
	STRING Type = "STRING" // "abc"
	CHAR   Type = "CHAR"   // 'a'

	ASSIGN   Type = "="
	PLUS     Type = "+"
	MINUS    Type = "-"
	ASTERISK Type = "*"
	SLASH    Type = "/"
	BANG     Type = "!"

	EQ     Type = "=="
	NOT_EQ Type = "!="
	LT     Type = "<"
	GT     Type = ">"
	LT_EQ  Type = "<="
	GT_EQ  Type = ">="
	AND    Type = "&&"
	OR     Type = "||"

	COMMA     Type = ","
	SEMICOLON Type = ";"
	COLON     Type = ":"
	DOT       Type = "."
	ARROW     Type = "->"
	PIPE      Type = "|"
	QUESTION  Type = "?"

	LPAREN   Type = "("
	RPAREN   Type = ")"
	LBRACE   Type = "{"
	RBRACE   Type = "}"
	LBRACKET Type = "["
	RBRACKET Type = "]"

	LET   Type = "LET"
	TYPE  Type = "TYPE"
	FN    Type = "FN"
	MATCH Type = "MATCH"
	IF    Type = "IF"
	ELSE  Type = "ELSE"
	TRUE  Type = "TRUE"
	FALSE Type = "FALSE"
)

// Token is a single lexeme with its source position. Pos/End are byte
// offsets into the original source; Line/Column are 1-based and used only
// for human-facing messages.
type Token struct {
	Type    Type
	Lexeme  string
	Pos     int
	End     int
	Line    int
	Column  int
}

var keywords = map[string]Type{
	"let":   LET,
	"type":  TYPE,
	"fn":    FN,
	"match": MATCH,
	"if":    IF,
	"else":  ELSE,
	"true":  TRUE,
	"false": FALSE,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) Type {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return IDENT
}
