// Package parser implements the hand-written recursive-descent parser
// that turns a token stream into a Program.
package parser

import (
	"fmt"
	"strings"

	"github.com/dn2d-project/dn2d/internal/ast"
	"github.com/dn2d-project/dn2d/internal/lexer"
)

// Parser consumes a fully materialized token vector (rather than the
// lexer's streaming iter.Seq) with one-token lookahead; literal parsing
// peeks one token further to tell an atom from a condition. A rule and a
// fact are told apart by parsing the head atom and then committing on
// ':-' or '.'.
type Parser struct {
	source string
	lines  []string
	tokens []lexer.Token
	pos    int
}

// New materializes l's token stream and returns a Parser over it. If l
// reports a lexical error, that error is returned instead.
func New(source string, l *lexer.Lexer) (*Parser, error) {
	var tokens []lexer.Token
	for tok := range l.Tokens() {
		if tok.Kind == lexer.KindIllegal {
			break
		}
		tokens = append(tokens, tok)
		if tok.Kind == lexer.KindEOF {
			break
		}
	}
	if err := l.Err(); err != nil {
		return nil, err
	}
	return &Parser{source: source, lines: strings.Split(source, "\n"), tokens: tokens}, nil
}

// Tokens returns the fully materialized token vector this Parser was
// constructed over, for callers (e.g. the CLI's --lex-as-json dump) that
// need the stream without re-running the lexer.
func (p *Parser) Tokens() []lexer.Token {
	return p.tokens
}

func (p *Parser) current() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek() lexer.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1] // EOF
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) atEOF() bool {
	return p.current().Kind == lexer.KindEOF
}

func (p *Parser) span(tok lexer.Token) ast.Span {
	return ast.Span{Line: tok.Span.Line, StartCol: tok.Span.StartCol, EndCol: tok.Span.EndCol}
}

func (p *Parser) sourceLine(span ast.Span) string {
	idx := span.Line - 1
	if idx >= 0 && idx < len(p.lines) {
		return p.lines[idx]
	}
	return ""
}

func (p *Parser) errorf(tok lexer.Token, expected string) *Error {
	span := p.span(tok)
	return &Error{
		Message:    fmt.Sprintf("unexpected token %s, expected %s", tok, expected),
		Span:       span,
		SourceLine: p.sourceLine(span),
	}
}

func (p *Parser) eofError(message string) *Error {
	span := p.span(p.current())
	return &Error{Message: message, Span: span, SourceLine: p.sourceLine(span)}
}

func (p *Parser) expect(kind lexer.Kind, description string) (lexer.Token, *Error) {
	tok := p.current()
	if tok.Kind != kind {
		return tok, p.errorf(tok, description)
	}
	p.advance()
	return tok, nil
}

func (p *Parser) expectString(description string) (string, *Error) {
	tok, err := p.expect(lexer.KindString, description)
	if err != nil {
		return "", err
	}
	return tok.Text, nil
}

func (p *Parser) expectIdentifier(description string) (ast.Identifier, *Error) {
	tok, err := p.expect(lexer.KindIdentifier, description)
	if err != nil {
		return "", err
	}
	return ast.Identifier(tok.Text), nil
}

// ParseProgram parses the entire token vector into a Program, or
// returns the first parse error encountered.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	var program ast.Program
	for !p.atEOF() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
	}
	return &program, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	tok := p.current()

	switch tok.Kind {
	case lexer.KindRead:
		d, err := p.parseReadDirective()
		if err != nil {
			return nil, err
		}
		return ast.ReadStatement{Directive: *d}, nil

	case lexer.KindWrite:
		d, err := p.parseWriteDirective()
		if err != nil {
			return nil, err
		}
		return ast.WriteStatement{Directive: *d}, nil

	case lexer.KindIterate:
		b, err := p.parseIterationBlock()
		if err != nil {
			return nil, err
		}
		return ast.IterateStatement{Block: *b}, nil

	case lexer.KindIdentifier:
		rof, err := p.parseRuleOrFact()
		if err != nil {
			return nil, err
		}
		switch v := rof.(type) {
		case ast.Rule:
			return ast.RuleStatement{Rule: v}, nil
		case ast.Fact:
			return ast.FactStatement{Fact: v}, nil
		}
		panic("unreachable: parseRuleOrFact returned neither Rule nor Fact")

	default:
		return nil, p.errorf(tok, "a statement keyword or identifier")
	}
}

func (p *Parser) parseReadDirective() (*ast.ReadDirective, *Error) {
	if _, err := p.expect(lexer.KindRead, "'.read'"); err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier("a relation name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindLParen, "'('"); err != nil {
		return nil, err
	}
	columns, err := p.parseIdentifierList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindRParen, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindFrom, "'from'"); err != nil {
		return nil, err
	}
	path, err := p.expectString("a path string")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindAs, "'as'"); err != nil {
		return nil, err
	}
	format, err := p.expectString("a format string")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindDot, "'.'"); err != nil {
		return nil, err
	}
	return &ast.ReadDirective{Name: name, Columns: columns, Path: path, Format: format}, nil
}

func (p *Parser) parseWriteDirective() (*ast.WriteDirective, *Error) {
	if _, err := p.expect(lexer.KindWrite, "'.write'"); err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier("a relation name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindTo, "'to'"); err != nil {
		return nil, err
	}
	path, err := p.expectString("a path string")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindAs, "'as'"); err != nil {
		return nil, err
	}
	format, err := p.expectString("a format string")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindDot, "'.'"); err != nil {
		return nil, err
	}
	return &ast.WriteDirective{Name: name, Path: path, Format: format}, nil
}

func (p *Parser) parseIdentifierList() ([]ast.Identifier, *Error) {
	var ids []ast.Identifier
	id, err := p.expectIdentifier("an identifier")
	if err != nil {
		return nil, err
	}
	ids = append(ids, id)
	for p.current().Kind == lexer.KindComma {
		p.advance()
		id, err := p.expectIdentifier("an identifier")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (p *Parser) parseIterationBlock() (*ast.IterationBlock, *Error) {
	if _, err := p.expect(lexer.KindIterate, "'.iterate'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindLBrace, "'{'"); err != nil {
		return nil, err
	}
	var rules []ast.RuleOrFact
	for p.current().Kind != lexer.KindRBrace {
		if p.atEOF() {
			return nil, p.eofError("unexpected end of input inside '.iterate' block")
		}
		rof, err := p.parseRuleOrFact()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rof)
	}
	if _, err := p.expect(lexer.KindRBrace, "'}'"); err != nil {
		return nil, err
	}
	return &ast.IterationBlock{Rules: rules}, nil
}

// parseRuleOrFact parses an atom followed by either ':- body.' (a Rule)
// or a bare '.' (a Fact). Used both inside iterate blocks and at the
// top level; the token after the head atom decides which shape it
// returns.
func (p *Parser) parseRuleOrFact() (ast.RuleOrFact, *Error) {
	startTok := p.current()
	head, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	if p.current().Kind == lexer.KindColonDash {
		p.advance()
		var body []ast.Literal
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		body = append(body, lit)
		for p.current().Kind == lexer.KindComma {
			p.advance()
			lit, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			body = append(body, lit)
		}
		dotTok := p.current()
		if _, err := p.expect(lexer.KindDot, "'.'"); err != nil {
			return nil, err
		}
		return ast.Rule{
			Head: head,
			Body: body,
			Span: ast.RuleSpan{LineStart: startTok.Span.Line, LineEnd: dotTok.Span.Line},
		}, nil
	}

	if _, err := p.expect(lexer.KindDot, "':-' or '.'"); err != nil {
		return nil, err
	}
	return ast.Fact{Head: head}, nil
}

func (p *Parser) parseAtom() (ast.Atom, *Error) {
	name, err := p.expectIdentifier("a relation name")
	if err != nil {
		return ast.Atom{}, err
	}
	if _, err := p.expect(lexer.KindLParen, "'('"); err != nil {
		return ast.Atom{}, err
	}
	var terms []ast.Expression
	if p.current().Kind != lexer.KindRParen {
		expr, err := p.parseExpression()
		if err != nil {
			return ast.Atom{}, err
		}
		terms = append(terms, expr)
		for p.current().Kind == lexer.KindComma {
			p.advance()
			expr, err := p.parseExpression()
			if err != nil {
				return ast.Atom{}, err
			}
			terms = append(terms, expr)
		}
	}
	if _, err := p.expect(lexer.KindRParen, "')'"); err != nil {
		return ast.Atom{}, err
	}
	return ast.Atom{Name: name, Terms: terms}, nil
}

func (p *Parser) parseLiteral() (ast.Literal, *Error) {
	tok := p.current()
	if tok.Kind == lexer.KindNot || tok.Kind == lexer.KindBang {
		p.advance()
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		return ast.NegativeLiteral{Atom: atom}, nil
	}

	if tok.Kind == lexer.KindIdentifier && p.peek().Kind == lexer.KindLParen {
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		return ast.PositiveLiteral{Atom: atom}, nil
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.ConditionLiteral{Expr: expr}, nil
}

func (p *Parser) parseExpression() (ast.Expression, *Error) {
	return p.parseComparison()
}

func (p *Parser) parseComparison() (ast.Expression, *Error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := binaryOpFor(p.current().Kind, comparisonOps)
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpr{Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseAdditive() (ast.Expression, *Error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := binaryOpFor(p.current().Kind, additiveOps)
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpr{Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseMultiplicative() (ast.Expression, *Error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := binaryOpFor(p.current().Kind, multiplicativeOps)
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpr{Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseUnary() (ast.Expression, *Error) {
	if p.current().Kind == lexer.KindMinus {
		p.advance()
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.UnaryExpr{Op: ast.OpNeg, Expr: expr}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expression, *Error) {
	tok := p.current()

	switch tok.Kind {
	case lexer.KindInteger:
		p.advance()
		return ast.ConstantExpr{Value: ast.IntegerConstant{Value: tok.Int}}, nil
	case lexer.KindFloat:
		p.advance()
		return ast.ConstantExpr{Value: ast.FloatConstant{Value: tok.Float}}, nil
	case lexer.KindString:
		p.advance()
		return ast.ConstantExpr{Value: ast.StringConstant{Value: tok.Text}}, nil
	case lexer.KindBoolean:
		p.advance()
		return ast.ConstantExpr{Value: ast.BooleanConstant{Value: tok.Bool}}, nil
	case lexer.KindWildcard:
		p.advance()
		return ast.WildcardExpr{}, nil
	case lexer.KindLParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.KindRParen, "')'"); err != nil {
			return nil, err
		}
		return ast.ParenExpr{Expr: expr}, nil
	case lexer.KindIdentifier:
		p.advance()
		name := tok.Text
		if p.current().Kind == lexer.KindLParen {
			p.advance()
			argTok, err := p.expect(lexer.KindIdentifier, "an identifier argument")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.KindRParen, "')'"); err != nil {
				return nil, err
			}
			fn, ok := ast.AggregateFunctionFromName(name)
			if !ok {
				span := p.span(tok)
				return nil, &Error{
					Message:    fmt.Sprintf("unknown aggregate function %q", name),
					Span:       span,
					SourceLine: p.sourceLine(span),
				}
			}
			return ast.AggregateExpr{Aggregate: ast.Aggregate{Func: fn, Arg: ast.Identifier(argTok.Text)}}, nil
		}
		return ast.VariableExpr{Name: ast.Identifier(name)}, nil
	default:
		return nil, p.errorf(tok, "a literal, identifier, or expression")
	}
}

type opEntry struct {
	kind lexer.Kind
	op   ast.BinaryOperator
}

var comparisonOps = []opEntry{
	{lexer.KindEq, ast.OpEq},
	{lexer.KindNotEq, ast.OpNotEq},
	{lexer.KindLt, ast.OpLt},
	{lexer.KindLtEq, ast.OpLtEq},
	{lexer.KindGt, ast.OpGt},
	{lexer.KindGtEq, ast.OpGtEq},
}

var additiveOps = []opEntry{
	{lexer.KindPlus, ast.OpAdd},
	{lexer.KindMinus, ast.OpSub},
}

var multiplicativeOps = []opEntry{
	{lexer.KindStar, ast.OpMul},
	{lexer.KindSlash, ast.OpDiv},
	{lexer.KindPercent, ast.OpMod},
}

func binaryOpFor(kind lexer.Kind, table []opEntry) (ast.BinaryOperator, bool) {
	for _, e := range table {
		if e.kind == kind {
			return e.op, true
		}
	}
	return 0, false
}
