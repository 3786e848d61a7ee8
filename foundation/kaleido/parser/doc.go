// Package parser implements the kaleido recursive descent parser.
//
// Package: parser
// Title: Kaleido Parser
// Description: Builds AST units from the token stream of a lexer using
//              recursive descent for structured forms and precedence
//              climbing for binary operator chains.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation
//
// Grammar:
//
//	toplevel   ::= definition | external | expression | ';'
//	definition ::= 'def' prototype expression
//	external   ::= 'extern' prototype
//	prototype  ::= identifier '(' identifier* ')'
//	expression ::= primary (binop primary)*
//	primary    ::= identifier | identifier '(' args? ')' | number
//	             | '(' expression ')' | ifexpr | forexpr
//	args       ::= expression (',' expression)*
//	ifexpr     ::= 'if' expression 'then' expression 'else' expression
//	forexpr    ::= 'for' identifier '=' expression ',' expression
//	               (',' expression)? expression
//
// Prototype parameters are separated by whitespace while call arguments are
// separated by commas.
//
// The parser never prints. A failed production returns a *ParseError; the
// top-level driver discards one token and resumes, so a malformed statement
// does not stop the rest of the input from being parsed. Resynchronization
// is best effort and may produce follow-up errors.
//
// Usage:
//
//	p := parser.NewString("def inc(x) x+1; inc(2)", parser.Options{})
//	err := p.Parse(parser.SinkFuncs{
//		OnUnit: func(u parser.Unit) error {
//			fmt.Println(u.Kind, u)
//			return nil
//		},
//		OnDiagnostic: func(perr *parser.ParseError) {
//			fmt.Fprint(os.Stderr, parser.FormatDiagnostic(perr))
//		},
//	})
package parser
