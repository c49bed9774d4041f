package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/lexer"
	"github.com/quill-lang/quill/internal/token"
)

// Operator precedence, lowest first.
const (
	_ int = iota
	LOWEST
	LOGICOR     // ||
	LOGICAND    // &&
	EQUALS      // == !=
	LESSGREATER // < > <= >=
	SUM         // + -
	PRODUCT     // * /
	PREFIX      // -x !x
	CALL        // f(x) x.field
)

var precedences = map[token.Type]int{
	token.OR:       LOGICOR,
	token.AND:      LOGICAND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.LT_EQ:    LESSGREATER,
	token.GT_EQ:    LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.LPAREN:   CALL,
	token.DOT:      CALL,
}

// Parser is a recursive-descent parser over the token stream. Every node it
// builds carries a fresh NodeID from the allocator and a byte-offset span.
type Parser struct {
	l   *lexer.Lexer
	ids *ast.IDAllocator

	cur   token.Token
	peek  token.Token
	peek2 token.Token
}

func New(l *lexer.Lexer, ids *ast.IDAllocator) *Parser {
	p := &Parser{l: l, ids: ids}
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// Parse runs the whole front end over source and returns the program plus
// the allocator used to stamp its nodes.
func Parse(file, source string) (*ast.Program, *ast.IDAllocator, error) {
	ids := ast.NewIDAllocator()
	p := New(lexer.New(source), ids)
	prog, err := p.ParseProgram(file)
	if err != nil {
		return nil, nil, err
	}
	return prog, ids, nil
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.peek2
	p.peek2 = p.l.NextToken()
}

// meta stamps a node that began at byte offset start and ends at the
// current token.
func (p *Parser) meta(start int) ast.Meta {
	return ast.Meta{ID: p.ids.Next(), Span: ast.Span{Start: start, End: p.cur.End}}
}

func spanOf(t token.Token) ast.Span {
	return ast.Span{Start: t.Pos, End: t.End}
}

func (p *Parser) unexpected(t token.Token, want string) error {
	if t.Type == token.ILLEGAL {
		return &diagnostics.LexError{Span: spanOf(t), Msg: fmt.Sprintf("illegal character %q", t.Lexeme)}
	}
	got := string(t.Type)
	if t.Type == token.IDENT || t.Type == token.INT {
		got = t.Lexeme
	}
	return &diagnostics.ParseError{Span: spanOf(t), Msg: fmt.Sprintf("expected %s, found %q", want, got)}
}

func (p *Parser) expectPeek(t token.Type) error {
	if p.peek.Type != t {
		return p.unexpected(p.peek, string(t))
	}
	p.nextToken()
	return nil
}

func (p *Parser) peekPrecedence() int {
	return precedences[p.peek.Type]
}

// ParseProgram parses a whole source file: a sequence of let and type
// declarations, optionally separated by semicolons.
func (p *Parser) ParseProgram(file string) (*ast.Program, error) {
	prog := &ast.Program{File: file}
	for p.cur.Type != token.EOF {
		switch p.cur.Type {
		case token.SEMICOLON:
			p.nextToken()
			continue
		case token.LET:
			d, err := p.parseLetDecl()
			if err != nil {
				return nil, err
			}
			prog.Decls = append(prog.Decls, d)
		case token.TYPE:
			d, err := p.parseTypeDecl()
			if err != nil {
				return nil, err
			}
			prog.Decls = append(prog.Decls, d)
		default:
			return nil, p.unexpected(p.cur, "declaration")
		}
		p.nextToken()
	}
	return prog, nil
}

// parseLetDecl parses `let name(params): ret = body`; params and the
// return annotation are optional. cur is LET on entry, the last body token
// on exit.
func (p *Parser) parseLetDecl() (*ast.LetDecl, error) {
	start := p.cur.Pos
	if err := p.expectPeek(token.IDENT); err != nil {
		return nil, err
	}
	name := p.cur.Lexeme
	nameSpan := spanOf(p.cur)

	var params []*ast.Param
	if p.peek.Type == token.LPAREN {
		p.nextToken()
		ps, err := p.parseParams()
		if err != nil {
			return nil, err
		}
		// Non-nil empty slice keeps `let f() = e` a thunk, distinct from a
		// plain value binding.
		params = ps
		if params == nil {
			params = []*ast.Param{}
		}
	}

	var ret ast.TypeExpr
	if p.peek.Type == token.COLON {
		p.nextToken()
		p.nextToken()
		t, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		ret = t
	}

	if err := p.expectPeek(token.ASSIGN); err != nil {
		return nil, err
	}
	p.nextToken()
	body, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.LetDecl{Meta: p.meta(start), Name: name, NameSpan: nameSpan, Params: params, Ret: ret, Body: body}, nil
}

/// parseParams parses `(a, b: Int, ...)`. cur is LPAREN on entry, RPAREN on
// exit.
func (p *Parser) parseParams() ([]*ast.Param, error) {
	var params []*ast.Param
	for p.peek.Type != token.RPAREN {
		if err := p.expectPeek(token.IDENT); err != nil {
			return nil, err
		}
		start := p.cur.Pos
		name := p.cur.Lexeme
		var ann ast.TypeExpr
		if p.peek.Type == token.COLON {
			p.nextToken()
			p.nextToken()
			t, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			ann = t
		}
		params = append(params, &ast.Param{Meta: p.meta(start), Name: name, Ann: ann})
		if p.peek.Type == token.COMMA {
			p.nextToken()
		}
	}
	p.nextToken()
	return params, nil
}

// parseTypeDecl parses `type Name a b = Ctor(T) | Other`. cur is TYPE on
// entry, the last constructor token on exit.
func (p *Parser) parseTypeDecl() (*ast.TypeDecl, error) {
	start := p.cur.Pos
	if err := p.expectPeek(token.IDENT); err != nil {
		return nil, err
	}
	name := p.cur.Lexeme
	var params []string
	for p.peek.Type == token.IDENT {
		p.nextToken()
		params = append(params, p.cur.Lexeme)
	}
	if err := p.expectPeek(token.ASSIGN); err != nil {
		return nil, err
	}
	if p.peek.Type == token.LBRACE {
		p.nextToken()
		alias, err := p.parseRecordType()
		if err != nil {
			return nil, err
		}
		return &ast.TypeDecl{Meta: p.meta(start), Name: name, Params: params, Alias: alias}, nil
	}
	var ctors []*ast.CtorDecl
	for {
		if err := p.expectPeek(token.IDENT); err != nil {
			return nil, err
		}
		c, err := p.parseCtorDecl()
		if err != nil {
			return nil, err
		}
		ctors = append(ctors, c)
		if p.peek.Type != token.PIPE {
			break
		}
		p.nextToken()
	}
	return &ast.TypeDecl{Meta: p.meta(start), Name: name, Params: params, Ctors: ctors}, nil
}

func (p *Parser) parseCtorDecl() (*ast.CtorDecl, error) {
	start := p.cur.Pos
	name := p.cur.Lexeme
	var args []ast.TypeExpr
	if p.peek.Type == token.LPAREN {
		p.nextToken()
		for p.peek.Type != token.RPAREN {
			p.nextToken()
			t, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, t)
			if p.peek.Type == token.COMMA {
				p.nextToken()
			}
		}
		p.nextToken()
	}
	return &ast.CtorDecl{Meta: p.meta(start), Name: name, Args: args}, nil
}

// --- expressions ---

func (p *Parser) parseExpression(prec int) (ast.Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for prec < p.peekPrecedence() {
		p.nextToken()
		switch p.cur.Type {
		case token.LPAREN:
			left, err = p.parseCall(left)
		case token.DOT:
			left, err = p.parseFieldAccess(left)
		default:
			left, err = p.parseBinary(left)
		}
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parsePrefix() (ast.Expr, error) {
	switch p.cur.Type {
	case token.IDENT:
		return &ast.Ident{Meta: p.meta(p.cur.Pos), Name: p.cur.Lexeme}, nil
	case token.INT:
		v, err := strconv.ParseInt(p.cur.Lexeme, 10, 64)
		if err != nil {
			return nil, &diagnostics.ParseError{Span: spanOf(p.cur), Msg: "integer literal out of range"}
		}
		return &ast.IntLit{Meta: p.meta(p.cur.Pos), Value: v}, nil
	case token.TRUE, token.FALSE:
		return &ast.BoolLit{Meta: p.meta(p.cur.Pos), Value: p.cur.Type == token.TRUE}, nil
	case token.STRING:
		return &ast.StringLit{Meta: p.meta(p.cur.Pos), Value: unescape(p.cur.Lexeme)}, nil
	case token.CHAR:
		r, err := decodeChar(p.cur.Lexeme)
		if err != nil {
			return nil, &diagnostics.ParseError{Span: spanOf(p.cur), Msg: err.Error()}
		}
		return &ast.CharLit{Meta: p.meta(p.cur.Pos), Value: r}, nil
	case token.QUESTION:
		return &ast.HoleExpr{Meta: p.meta(p.cur.Pos)}, nil
	case token.BANG, token.MINUS:
		return p.parseUnary()
	case token.LPAREN:
		return p.parseParenExpr()
	case token.LBRACE:
		return p.parseBraceExpr()
	case token.FN:
		return p.parseLambda()
	case token.IF:
		return p.parseIf()
	case token.MATCH:
		return p.parseMatch()
	default:
		return nil, p.unexpected(p.cur, "expression")
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	start := p.cur.Pos
	op := p.cur.Lexeme
	p.nextToken()
	operand, err := p.parseExpression(PREFIX)
	if err != nil {
		return nil, err
	}
	return &ast.Unary{Meta: p.meta(start), Op: op, Operand: operand}, nil
}

func (p *Parser) parseBinary(left ast.Expr) (ast.Expr, error) {
	op := p.cur.Lexeme
	prec := precedences[p.cur.Type]
	p.nextToken()
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	m := ast.Meta{ID: p.ids.Next(), Span: left.GetSpan().Join(right.GetSpan())}
	return &ast.Binary{Meta: m, Op: op, Left: left, Right: right}, nil
}

// parseCall parses the argument list of a call. cur is LPAREN on entry,
// RPAREN on exit. `f()` is a unit-argument call.
func (p *Parser) parseCall(callee ast.Expr) (ast.Expr, error) {
	var args []ast.Expr
	for p.peek.Type != token.RPAREN {
		p.nextToken()
		a, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.peek.Type == token.COMMA {
			p.nextToken()
		}
	}
	p.nextToken()
	m := ast.Meta{ID: p.ids.Next(), Span: ast.Span{Start: callee.GetSpan().Start, End: p.cur.End}}
	return &ast.Call{Meta: m, Callee: callee, Args: args}, nil
}

func (p *Parser) parseFieldAccess(target ast.Expr) (ast.Expr, error) {
	if err := p.expectPeek(token.IDENT); err != nil {
		return nil, err
	}
	m := ast.Meta{ID: p.ids.Next(), Span: ast.Span{Start: target.GetSpan().Start, End: p.cur.End}}
	return &ast.FieldAccess{Meta: m, Target: target, Name: p.cur.Lexeme, NameSpan: spanOf(p.cur)}, nil
}

// parseParenExpr parses `()`, `(e)` or a tuple `(a, b)`.
func (p *Parser) parseParenExpr() (ast.Expr, error) {
	start := p.cur.Pos
	if p.peek.Type == token.RPAREN {
		p.nextToken()
		return &ast.UnitLit{Meta: p.meta(start)}, nil
	}
	p.nextToken()
	first, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if p.peek.Type != token.COMMA {
		if err := p.expectPeek(token.RPAREN); err != nil {
			return nil, err
		}
		return first, nil
	}
	elems := []ast.Expr{first}
	for p.peek.Type == token.COMMA {
		p.nextToken()
		p.nextToken()
		e, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if err := p.expectPeek(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.Tuple{Meta: p.meta(start), Elems: elems}, nil
}

// parseBraceExpr decides between a record literal and a block: `{` followed
// by `ident :` opens a record, anything else a block.
func (p *Parser) parseBraceExpr() (ast.Expr, error) {
	if p.peek.Type == token.IDENT && p.peek2.Type == token.COLON {
		return p.parseRecord()
	}
	return p.parseBlock()
}

func (p *Parser) parseRecord() (ast.Expr, error) {
	start := p.cur.Pos
	var fields []*ast.RecordField
	for p.peek.Type != token.RBRACE {
		if err := p.expectPeek(token.IDENT); err != nil {
			return nil, err
		}
		fstart := p.cur.Pos
		name := p.cur.Lexeme
		if err := p.expectPeek(token.COLON); err != nil {
			return nil, err
		}
		p.nextToken()
		v, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		fields = append(fields, &ast.RecordField{Meta: p.meta(fstart), Name: name, Value: v})
		if p.peek.Type == token.COMMA {
			p.nextToken()
		}
	}
	p.nextToken()
	return &ast.Record{Meta: p.meta(start), Fields: fields}, nil
}

// parseBlock parses `{ item; item }` where items are let declarations or
// expressions. The block's value is its last expression, unit if none.
func (p *Parser) parseBlock() (*ast.Block, error) {
	start := p.cur.Pos
	var items []ast.Node
	for p.peek.Type != token.RBRACE {
		if p.peek.Type == token.EOF {
			return nil, &diagnostics.ParseError{Span: spanOf(p.peek), Msg: "unterminated block"}
		}
		p.nextToken()
		if p.cur.Type == token.SEMICOLON {
			continue
		}
		if p.cur.Type == token.LET {
			d, err := p.parseLetDecl()
			if err != nil {
				return nil, err
			}
			items = append(items, d)
			continue
		}
		e, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	p.nextToken()
	return &ast.Block{Meta: p.meta(start), Items: items}, nil
}

// parseLambda parses `fn(a, b) { body }`. The body is always a block.
func (p *Parser) parseLambda() (ast.Expr, error) {
	start := p.cur.Pos
	if err := p.expectPeek(token.LPAREN); err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{Meta: p.meta(start), Params: params, Body: body}, nil
}

// parseIf parses `if cond { ... } else { ... }`; the else branch is
// mandatory and may be another if.
func (p *Parser) parseIf() (ast.Expr, error) {
	start := p.cur.Pos
	p.nextToken()
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.LBRACE); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.ELSE); err != nil {
		return nil, err
	}
	var els ast.Expr
	if p.peek.Type == token.IF {
		p.nextToken()
		els, err = p.parseIf()
	} else {
		if err := p.expectPeek(token.LBRACE); err != nil {
			return nil, err
		}
		els, err = p.parseBlock()
	}
	if err != nil {
		return nil, err
	}
	return &ast.If{Meta: p.meta(start), Cond: cond, Then: then, Else: els}, nil
}

// parseMatch parses `match scrutinee { pat -> body, ... }`.
func (p *Parser) parseMatch() (ast.Expr, error) {
	start := p.cur.Pos
	p.nextToken()
	scrutinee, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.LBRACE); err != nil {
		return nil, err
	}
	var arms []*ast.MatchArm
	for p.peek.Type != token.RBRACE {
		if p.peek.Type == token.EOF {
			return nil, &diagnostics.ParseError{Span: spanOf(p.peek), Msg: "unterminated match"}
		}
		p.nextToken()
		astart := p.cur.Pos
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if err := p.expectPeek(token.ARROW); err != nil {
			return nil, err
		}
		p.nextToken()
		body, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		arms = append(arms, &ast.MatchArm{Meta: p.meta(astart), Pattern: pat, Body: body})
		if p.peek.Type == token.COMMA {
			p.nextToken()
		}
	}
	p.nextToken()
	if len(arms) == 0 {
		return nil, &diagnostics.ParseError{Span: spanOf(p.cur), Msg: "match needs at least one arm"}
	}
	return &ast.Match{Meta: p.meta(start), Scrutinee: scrutinee, Arms: arms}, nil
}

// --- patterns ---

func (p *Parser) parsePattern() (ast.Pattern, error) {
	switch p.cur.Type {
	case token.IDENT:
		name := p.cur.Lexeme
		switch {
		case name == "_":
			return &ast.WildcardPat{Meta: p.meta(p.cur.Pos)}, nil
		case name == config.AllErrorsPattern:
			return &ast.AllErrorsPat{Meta: p.meta(p.cur.Pos)}, nil
		case isUpperIdent(name):
			return p.parseCtorPattern()
		default:
			return &ast.IdentPat{Meta: p.meta(p.cur.Pos), Name: name}, nil
		}
	case token.INT, token.TRUE, token.FALSE, token.STRING, token.CHAR:
		lit, err := p.parsePrefix()
		if err != nil {
			return nil, err
		}
		m := ast.Meta{ID: p.ids.Next(), Span: lit.GetSpan()}
		return &ast.LiteralPat{Meta: m, Value: lit}, nil
	case token.MINUS:
		start := p.cur.Pos
		if err := p.expectPeek(token.INT); err != nil {
			return nil, err
		}
		v, err := strconv.ParseInt(p.cur.Lexeme, 10, 64)
		if err != nil {
			return nil, &diagnostics.ParseError{Span: spanOf(p.cur), Msg: "integer literal out of range"}
		}
		lit := &ast.IntLit{Meta: p.meta(start), Value: -v}
		m := ast.Meta{ID: p.ids.Next(), Span: lit.Span}
		return &ast.LiteralPat{Meta: m, Value: lit}, nil
	case token.LPAREN:
		return p.parseTuplePattern()
	case token.LBRACE:
		return p.parseRecordPattern()
	default:
		return nil, p.unexpected(p.cur, "pattern")
	}
}

// parseCtorPattern parses `Ctor` or `Ctor(p1, p2)`. cur is the constructor
// identifier on entry.
func (p *Parser) parseCtorPattern() (ast.Pattern, error) {
	start := p.cur.Pos
	name := p.cur.Lexeme
	nameSpan := spanOf(p.cur)
	var args []ast.Pattern
	if p.peek.Type == token.LPAREN {
		p.nextToken()
		for p.peek.Type != token.RPAREN {
			p.nextToken()
			a, err := p.parsePattern()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.peek.Type == token.COMMA {
				p.nextToken()
			}
		}
		p.nextToken()
	}
	return &ast.CtorPat{Meta: p.meta(start), Name: name, NameSpan: nameSpan, Args: args}, nil
}

func (p *Parser) parseTuplePattern() (ast.Pattern, error) {
	start := p.cur.Pos
	var elems []ast.Pattern
	for p.peek.Type != token.RPAREN {
		p.nextToken()
		e, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.peek.Type == token.COMMA {
			p.nextToken()
		}
	}
	p.nextToken()
	if len(elems) == 1 {
		return elems[0], nil
	}
	return &ast.TuplePat{Meta: p.meta(start), Elems: elems}, nil
}

// parseRecordPattern parses `{ field, field }`: field names only, each
// binding a variable of the same name.
func (p *Parser) parseRecordPattern() (ast.Pattern, error) {
	start := p.cur.Pos
	var fields []*ast.RecordPatField
	for p.peek.Type != token.RBRACE {
		if err := p.expectPeek(token.IDENT); err != nil {
			return nil, err
		}
		fields = append(fields, &ast.RecordPatField{Meta: p.meta(p.cur.Pos), Name: p.cur.Lexeme})
		if p.peek.Type == token.COMMA {
			p.nextToken()
		}
	}
	p.nextToken()
	return &ast.RecordPat{Meta: p.meta(start), Fields: fields}, nil
}

// --- type expressions ---

// parseTypeExpr parses a type; `->` is right associative.
func (p *Parser) parseTypeExpr() (ast.TypeExpr, error) {
	if p.cur.Type == token.LPAREN {
		return p.parseParenType()
	}
	atom, err := p.parseTypeAtom()
	if err != nil {
		return nil, err
	}
	if p.peek.Type == token.ARROW {
		p.nextToken()
		p.nextToken()
		ret, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		m := ast.Meta{ID: p.ids.Next(), Span: atom.GetSpan().Join(ret.GetSpan())}
		return &ast.FuncTypeExpr{Meta: m, Params: []ast.TypeExpr{atom}, Ret: ret}, nil
	}
	return atom, nil
}

func (p *Parser) parseTypeAtom() (ast.TypeExpr, error) {
	switch p.cur.Type {
	case token.IDENT:
		start := p.cur.Pos
		name := p.cur.Lexeme
		var args []ast.TypeExpr
		if p.peek.Type == token.LT {
			p.nextToken()
			for p.peek.Type != token.GT {
				p.nextToken()
				a, err := p.parseTypeExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if p.peek.Type == token.COMMA {
					p.nextToken()
				}
			}
			p.nextToken()
		}
		return &ast.NamedTypeExpr{Meta: p.meta(start), Name: name, Args: args}, nil
	case token.LBRACE:
		return p.parseRecordType()
	case token.QUESTION:
		return &ast.HoleTypeExpr{Meta: p.meta(p.cur.Pos)}, nil
	default:
		return nil, p.unexpected(p.cur, "type")
	}
}

// parseParenType parses `()`, `(T)`, a tuple type `(A, B)`, or function
// parameters `(A, B) -> R`.
func (p *Parser) parseParenType() (ast.TypeExpr, error) {
	start := p.cur.Pos
	var elems []ast.TypeExpr
	for p.peek.Type != token.RPAREN {
		p.nextToken()
		t, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, t)
		if p.peek.Type == token.COMMA {
			p.nextToken()
		}
	}
	p.nextToken()
	if p.peek.Type == token.ARROW {
		p.nextToken()
		p.nextToken()
		ret, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		m := ast.Meta{ID: p.ids.Next(), Span: ast.Span{Start: start, End: ret.GetSpan().End}}
		return &ast.FuncTypeExpr{Meta: m, Params: elems, Ret: ret}, nil
	}
	switch len(elems) {
	case 0:
		return &ast.UnitTypeExpr{Meta: p.meta(start)}, nil
	case 1:
		return elems[0], nil
	default:
		return &ast.TupleTypeExpr{Meta: p.meta(start), Elems: elems}, nil
	}
}

func (p *Parser) parseRecordType() (ast.TypeExpr, error) {
	start := p.cur.Pos
	var fields []*ast.RecordTypeField
	for p.peek.Type != token.RBRACE {
		if err := p.expectPeek(token.IDENT); err != nil {
			return nil, err
		}
		fstart := p.cur.Pos
		name := p.cur.Lexeme
		if err := p.expectPeek(token.COLON); err != nil {
			return nil, err
		}
		p.nextToken()
		t, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		fields = append(fields, &ast.RecordTypeField{Meta: p.meta(fstart), Name: name, Type: t})
		if p.peek.Type == token.COMMA {
			p.nextToken()
		}
	}
	p.nextToken()
	return &ast.RecordTypeExpr{Meta: p.meta(start), Fields: fields}, nil
}

// --- literal helpers ---

func isUpperIdent(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func unescape(raw string) string {
	if !strings.ContainsRune(raw, '\\') {
		return raw
	}
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == '\\' && i+1 < len(raw) {
			i++
			switch raw[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			default:
				b.WriteByte(raw[i])
			}
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func decodeChar(raw string) (rune, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty character literal")
	}
	if raw[0] == '\\' {
		if len(raw) != 2 {
			return 0, fmt.Errorf("bad escape in character literal")
		}
		switch raw[1] {
		case 'n':
			return '\n', nil
		case 't':
			return '\t', nil
		case 'r':
			return '\r', nil
		case '0':
			return 0, nil
		case '\\', '\'', '"':
			return rune(raw[1]), nil
		default:
			return 0, fmt.Errorf("bad escape in character literal")
		}
	}
	r, size := utf8.DecodeRuneInString(raw)
	if size != len(raw) {
		return 0, fmt.Errorf("character literal must be a single character")
	}
	return r, nil
}
