// Package lexer implements tokenization for the kaleido language.
//
// Package: lexer
// Title: Kaleido Lexical Analyzer
// Description: The lexer turns a character stream into tokens on demand.
//              Whitespace and '#' line comments are skipped. Identifiers
//              start with a letter or '_' and continue with letters or
//              digits; def, extern, if, then, else and for are keywords.
//              A maximal run of digits and '.' is a number. Every other
//              character is a single-character symbol.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation
//
// A numeral the decimal parser rejects, such as "1.2.3", stops the lexer:
// Next returns EOF from then on and Err reports an INVALID_NUMBER error.
//
// Usage:
//
//	lx := lexer.NewString("def fib(n) fib(n-1)+fib(n-2)")
//	for tok := lx.Next(); tok.Kind != lexer.KindEOF; tok = lx.Next() {
//		fmt.Println(tok)
//	}
//	if err := lx.Err(); err != nil {
//		return err
//	}
package lexer
