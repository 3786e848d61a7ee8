// Package ast defines the abstract syntax tree of the kaleido language.
//
// Package: ast
// Title: Kaleido Abstract Syntax Tree
// Description: Expression nodes (number, variable, binary, call, if, for),
//              prototypes and function definitions. Nodes print in a form
//              that parses back to the same tree, validate their own shape,
//              and support the visitor pattern for traversal.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation
//
// Binary operators come from a fixed table: '<' and '>' bind at 10, '+'
// and '-' at 20, '*' at 40. All of them are left-associative.
//
// Usage:
//
//	fn := ast.NewFunction(
//		ast.NewPrototype("inc", []string{"x"}),
//		ast.NewBinary('+', ast.NewVariable("x"), ast.NewNumber(mathx.NewDecimalFromInt(1))),
//	)
//	fmt.Println(fn)            // def inc(x) (x + 1)
//	fmt.Print(ast.Print(fn))   // indented tree
//	m := ast.ToMap(fn)         // generic form for JSON, YAML and protobuf
package ast
