// File: doc.go
// Title: Kaleido Package Documentation
// Description: Front end of the kaleido toy language: tokenizer, parser,
//              AST and the engine that runs sources through them.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation

/*
Package kaleido converts kaleido source text into abstract syntax trees.

Package: kaleido
Title: Kaleido Language Front End
Description: Ties the lexer, parser and AST packages together. The engine
             parses a source unit by unit and forwards each definition,
             extern and top-level expression to a sink as soon as it is
             complete. Nothing is evaluated.
Author: anemortalkid
Version: v0.1.0
Created: 2026-10-14
Modified: 2026-10-14

Change History:
- 2026-10-14 v0.1.0: Initial implementation

# Language Overview

	# compute Fibonacci numbers
	def fib(n)
	  if n < 3 then 1 else fib(n-1) + fib(n-2);

	extern putchard(c);

	for i = 1, i < 10 putchard(42);

	fib(10);

Keywords are def, extern, if, then, else and for. The binary operators are
'<' and '>' (precedence 10), '+' and '-' (20) and '*' (40), all left
associative. Prototype parameters are separated by whitespace; call
arguments by commas. '#' starts a comment that runs to the end of the line.

# Subpackages

  - lexer: tokens and the tokenizer
  - ast: node types, visitors, map encoding
  - parser: recursive descent and precedence climbing

# Errors

A malformed statement produces a *parser.ParseError diagnostic and parsing
resumes one token later. A malformed numeral such as "1.2.3" is fatal and
stops the run with an INVALID_NUMBER error.

# Usage

	engine, err := kaleido.New(kaleido.Options{MaxErrors: 10})
	if err != nil {
		return err
	}
	result, err := engine.ParseString(ctx, "def inc(x) x+1; inc(41)")
	if err != nil {
		return err
	}
	for _, unit := range result.Units {
		fmt.Println(unit.Kind, unit)
	}
*/
package kaleido
