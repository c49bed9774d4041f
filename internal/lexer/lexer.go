package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/quill-lang/quill/internal/token"
)

// Lexer produces tokens from Quill source. Newlines are whitespace; the
// grammar is newline-insensitive.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position (after current char)
	ch           rune // current char under examination
	line         int
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// NextToken scans and returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.position
	line, column := l.line, l.column

	make1 := func(t token.Type) token.Token {
		lex := ""
		if pos < len(l.input) {
			lex = l.input[pos:l.readPosition]
			if l.readPosition > len(l.input) {
				lex = l.input[pos:]
			}
		}
		tok := token.Token{Type: t, Lexeme: lex, Pos: pos, End: pos + len(lex), Line: line, Column: column}
		l.readChar()
		return tok
	}
	make2 := func(t token.Type, lex string) token.Token {
		l.readChar()
		l.readChar()
		return token.Token{Type: t, Lexeme: lex, Pos: pos, End: pos + len(lex), Line: line, Column: column}
	}

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Pos: pos, End: pos, Line: line, Column: column}
	case '=':
		if l.peekChar() == '=' {
			return make2(token.EQ, "==")
		}
		return make1(token.ASSIGN)
	case '+':
		return make1(token.PLUS)
	case '-':
		if l.peekChar() == '>' {
			return make2(token.ARROW, "->")
		}
		return make1(token.MINUS)
	case '*':
		return make1(token.ASTERISK)
	case '/':
		return make1(token.SLASH)
	case '!':
		if l.peekChar() == '=' {
			return make2(token.NOT_EQ, "!=")
		}
		return make1(token.BANG)
	case '<':
		if l.peekChar() == '=' {
			return make2(token.LT_EQ, "<=")
		}
		return make1(token.LT)
	case '>':
		if l.peekChar() == '=' {
			return make2(token.GT_EQ, ">=")
		}
		return make1(token.GT)
	case '&':
		if l.peekChar() == '&' {
			return make2(token.AND, "&&")
		}
		return make1(token.ILLEGAL)
	case '|':
		if l.peekChar() == '|' {
			return make2(token.OR, "||")
		}
		return make1(token.PIPE)
	case ',':
		return make1(token.COMMA)
	case ';':
		return make1(token.SEMICOLON)
	case ':':
		return make1(token.COLON)
	case '.':
		return make1(token.DOT)
	case '?':
		return make1(token.QUESTION)
	case '(':
		return make1(token.LPAREN)
	case ')':
		return make1(token.RPAREN)
	case '{':
		return make1(token.LBRACE)
	case '}':
		return make1(token.RBRACE)
	case '[':
		return make1(token.LBRACKET)
	case ']':
		return make1(token.RBRACKET)
	case '"':
		return l.readString(pos, line, column)
	case '\'':
		return l.readCharLit(pos, line, column)
	}

	if isLetter(l.ch) {
		lex := l.readIdentifier()
		return token.Token{Type: token.LookupIdent(lex), Lexeme: lex, Pos: pos, End: pos + len(lex), Line: line, Column: column}
	}
	if unicode.IsDigit(l.ch) {
		lex := l.readNumber()
		return token.Token{Type: token.INT, Lexeme: lex, Pos: pos, End: pos + len(lex), Line: line, Column: column}
	}
	return make1(token.ILLEGAL)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		// # line comment
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		return
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || unicode.IsDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() string {
	start := l.position
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readString(pos, line, column int) token.Token {
	l.readChar() // consume opening quote
	start := l.position
	for l.ch != '"' && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	if l.ch == 0 {
		return token.Token{Type: token.ILLEGAL, Lexeme: l.input[pos:l.position], Pos: pos, End: l.position, Line: line, Column: column}
	}
	lit := l.input[start:l.position]
	l.readChar() // consume closing quote
	return token.Token{Type: token.STRING, Lexeme: lit, Pos: pos, End: l.position, Line: line, Column: column}
}

func (l *Lexer) readCharLit(pos, line, column int) token.Token {
	l.readChar() // consume opening quote
	start := l.position
	if l.ch == '\\' {
		l.readChar()
	}
	if l.ch == 0 {
		return token.Token{Type: token.ILLEGAL, Pos: pos, End: l.position, Line: line, Column: column}
	}
	l.readChar()
	if l.ch != '\'' {
		return token.Token{Type: token.ILLEGAL, Lexeme: l.input[pos:l.position], Pos: pos, End: l.position, Line: line, Column: column}
	}
	lit := l.input[start:l.position]
	l.readChar() // consume closing quote
	return token.Token{Type: token.CHAR, Lexeme: lit, Pos: pos, End: l.position, Line: line, Column: column}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}
