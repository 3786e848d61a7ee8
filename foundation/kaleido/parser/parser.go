// File: parser.go
// Title: Kaleido Parser
// Description: Recursive descent parser with operator-precedence climbing
//              for binary expressions. Holds one token of lookahead and
//              recovers from errors at top level by discarding one token.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial parser implementation

package parser

import (
	"io"

	mdwlog "github.com/anemortalkid/kaleido/foundation/core/log"
	"github.com/anemortalkid/kaleido/foundation/kaleido/ast"
	"github.com/anemortalkid/kaleido/foundation/kaleido/lexer"
)

// Options configures a parser
type Options struct {
	// Logger receives trace output for parsed units and recoveries.
	// Nil disables logging.
	Logger *mdwlog.Logger
}

// Parser turns the token stream of one lexer into top-level units.
// A Parser is not safe for concurrent use.
type Parser struct {
	lx     *lexer.Lexer
	tok    lexer.Token
	logger *mdwlog.Logger
}

// New creates a parser reading tokens from lx and primes the lookahead
func New(lx *lexer.Lexer, opts Options) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = mdwlog.NewNop()
	}
	p := &Parser{lx: lx, logger: logger.WithName("parser")}
	p.advance()
	return p
}

// NewString creates a parser over an in-memory source
func NewString(src string, opts Options) *Parser {
	return New(lexer.NewString(src), opts)
}

// advance replaces the lookahead with the next token
func (p *Parser) advance() {
	p.tok = p.lx.Next()
}

// Current returns the lookahead token
func (p *Parser) Current() lexer.Token {
	return p.tok
}

// Next parses and returns the next top-level unit. It returns io.EOF at the
// end of input and a *ParseError for a recoverable failure, after which the
// offending token has been discarded and Next may be called again. Any other
// error comes from the lexer and is final.
func (p *Parser) Next() (Unit, error) {
	for {
		if err := p.lx.Err(); err != nil {
			return Unit{}, err
		}

		switch {
		case p.tok.Kind == lexer.KindEOF:
			return Unit{}, io.EOF
		case p.tok.Is(';'):
			p.advance()
			continue
		}

		unit, perr := p.parseUnit()
		if err := p.lx.Err(); err != nil {
			return Unit{}, err
		}
		if perr != nil {
			p.logger.Debug("recovering from parse error", mdwlog.Fields{
				"expected": perr.Expected,
				"found":    perr.Found.String(),
				"skipped":  p.tok.String(),
			})
			p.advance()
			return Unit{}, perr
		}

		p.logger.Trace("parsed unit", mdwlog.Fields{
			"kind": unit.Kind.String(),
			"name": unit.Name(),
		})
		return unit, nil
	}
}

// Parse drives Next to the end of input, forwarding units and diagnostics to
// sink. It returns nil at the end of input, the lexer's fatal error, or the
// first error returned by sink.Unit.
func (p *Parser) Parse(sink Sink) error {
	for {
		unit, err := p.Next()
		if err == nil {
			if err := sink.Unit(unit); err != nil {
				return err
			}
			continue
		}
		if err == io.EOF {
			return nil
		}
		if perr, ok := err.(*ParseError); ok {
			sink.Diagnostic(perr)
			continue
		}
		return err
	}
}

func (p *Parser) parseUnit() (Unit, *ParseError) {
	switch p.tok.Kind {
	case lexer.KindDef:
		fn, err := p.parseDefinition()
		if err != nil {
			return Unit{}, err
		}
		return Unit{Kind: KindDefinition, Function: fn}, nil

	case lexer.KindExtern:
		proto, err := p.parseExtern()
		if err != nil {
			return Unit{}, err
		}
		return Unit{Kind: KindExtern, Prototype: proto}, nil

	default:
		fn, err := p.parseTopLevel()
		if err != nil {
			return Unit{}, err
		}
		return Unit{Kind: KindTopLevel, Function: fn}, nil
	}
}

func (p *Parser) errorf(expected string) *ParseError {
	return &ParseError{
		Expected: expected,
		Found:    p.tok,
		Consumed: p.lx.Consumed(),
	}
}

// expect consumes the symbol ch or fails naming expected
func (p *Parser) expect(ch rune, expected string) *ParseError {
	if !p.tok.Is(ch) {
		return p.errorf(expected)
	}
	p.advance()
	return nil
}

// definition ::= 'def' prototype expression
func (p *Parser) parseDefinition() (*ast.Function, *ParseError) {
	p.advance() // def
	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewFunction(proto, body), nil
}

// external ::= 'extern' prototype
func (p *Parser) parseExtern() (*ast.Prototype, *ParseError) {
	p.advance() // extern
	return p.parsePrototype()
}

// toplevelexpr ::= expression
func (p *Parser) parseTopLevel() (*ast.Function, *ParseError) {
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewAnonymous(body), nil
}

// prototype ::= identifier '(' identifier* ')'
func (p *Parser) parsePrototype() (*ast.Prototype, *ParseError) {
	if p.tok.Kind != lexer.KindIdentifier {
		return nil, p.errorf("function name in prototype")
	}
	name := p.tok.Name
	p.advance()

	if err := p.expect('(', "'(' in prototype"); err != nil {
		return nil, err
	}

	params := make([]string, 0)
	for p.tok.Kind == lexer.KindIdentifier {
		params = append(params, p.tok.Name)
		p.advance()
	}

	if err := p.expect(')', "')' in prototype"); err != nil {
		return nil, err
	}
	return ast.NewPrototype(name, params), nil
}

// expression ::= primary binoprhs
func (p *Parser) parseExpression() (ast.Expr, *ParseError) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parseBinOpRHS(0, lhs)
}

// precedence returns the binding strength of the lookahead as an infix
// operator, or ast.NoPrecedence
func (p *Parser) precedence() int {
	if p.tok.Kind != lexer.KindSymbol {
		return ast.NoPrecedence
	}
	return ast.Precedence(p.tok.Char)
}

// binoprhs ::= (binop primary)*
//
// Operators binding at least minPrec are folded into lhs. A following
// operator that binds tighter takes the right operand first, so equal
// precedence associates to the left.
func (p *Parser) parseBinOpRHS(minPrec int, lhs ast.Expr) (ast.Expr, *ParseError) {
	for {
		prec := p.precedence()
		if prec < minPrec {
			return lhs, nil
		}

		op := p.tok.Char
		p.advance()

		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}

		if next := p.precedence(); prec < next {
			rhs, err = p.parseBinOpRHS(prec+1, rhs)
			if err != nil {
				return nil, err
			}
		}

		lhs = ast.NewBinary(op, lhs, rhs)
	}
}

// primary ::= identifierexpr | numberexpr | parenexpr | ifexpr | forexpr
func (p *Parser) parsePrimary() (ast.Expr, *ParseError) {
	switch {
	case p.tok.Kind == lexer.KindIdentifier:
		return p.parseIdentifier()
	case p.tok.Kind == lexer.KindNumber:
		return p.parseNumber()
	case p.tok.Kind == lexer.KindIf:
		return p.parseIf()
	case p.tok.Kind == lexer.KindFor:
		return p.parseFor()
	case p.tok.Is('('):
		return p.parseParen()
	default:
		return nil, p.errorf("an expression")
	}
}

// numberexpr ::= number
func (p *Parser) parseNumber() (ast.Expr, *ParseError) {
	expr := ast.NewNumber(p.tok.Value)
	p.advance()
	return expr, nil
}

// parenexpr ::= '(' expression ')'
func (p *Parser) parseParen() (ast.Expr, *ParseError) {
	p.advance() // (
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')', "')'"); err != nil {
		return nil, err
	}
	return expr, nil
}

// identifierexpr ::= identifier | identifier '(' (expression (',' expression)*)? ')'
func (p *Parser) parseIdentifier() (ast.Expr, *ParseError) {
	name := p.tok.Name
	p.advance()

	if !p.tok.Is('(') {
		return ast.NewVariable(name), nil
	}
	p.advance() // (

	args := make([]ast.Expr, 0)
	if !p.tok.Is(')') {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.tok.Is(')') {
				break
			}
			if err := p.expect(',', "')' or ',' in argument list"); err != nil {
				return nil, err
			}
		}
	}
	p.advance() // )

	return ast.NewCall(name, args), nil
}

// ifexpr ::= 'if' expression 'then' expression 'else' expression
func (p *Parser) parseIf() (ast.Expr, *ParseError) {
	p.advance() // if

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.tok.Kind != lexer.KindThen {
		return nil, p.errorf("'then'")
	}
	p.advance()

	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.tok.Kind != lexer.KindElse {
		return nil, p.errorf("'else'")
	}
	p.advance()

	els, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return ast.NewIf(cond, then, els), nil
}

// forexpr ::= 'for' identifier '=' expression ',' expression (',' expression)? expression
func (p *Parser) parseFor() (ast.Expr, *ParseError) {
	p.advance() // for

	if p.tok.Kind != lexer.KindIdentifier {
		return nil, p.errorf("identifier after 'for'")
	}
	name := p.tok.Name
	p.advance()

	if err := p.expect('=', "'=' after loop variable"); err != nil {
		return nil, err
	}

	start, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if err := p.expect(',', "',' after loop start value"); err != nil {
		return nil, err
	}

	end, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	var step ast.Expr
	if p.tok.Is(',') {
		p.advance()
		if step, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}

	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return ast.NewFor(name, start, end, step, body), nil
}
