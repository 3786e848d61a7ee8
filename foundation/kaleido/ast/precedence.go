// File: precedence.go
// Title: Binary Operator Precedence
// Description: The fixed precedence table of infix operators. Higher values
//              bind tighter.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial table

package ast

import "sort"

// NoPrecedence is returned for characters that are not infix operators
const NoPrecedence = -1

// binaryPrecedence is initialized once and never written afterwards
var binaryPrecedence = map[rune]int{
	'<': 10,
	'>': 10,
	'+': 20,
	'-': 20,
	'*': 40,
}

// Precedence returns the binding strength of op, or NoPrecedence
func Precedence(op rune) int {
	if p, ok := binaryPrecedence[op]; ok {
		return p
	}
	return NoPrecedence
}

// IsBinaryOp reports whether op is an infix operator
func IsBinaryOp(op rune) bool {
	_, ok := binaryPrecedence[op]
	return ok
}

// BinaryOps returns the infix operators ordered by ascending precedence,
// then by character
func BinaryOps() []rune {
	ops := make([]rune, 0, len(binaryPrecedence))
	for op := range binaryPrecedence {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool {
		pi, pj := binaryPrecedence[ops[i]], binaryPrecedence[ops[j]]
		if pi != pj {
			return pi < pj
		}
		return ops[i] < ops[j]
	})
	return ops
}
