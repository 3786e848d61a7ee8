// File: visitor.go
// Title: Kaleido AST Visitor Pattern Implementation
// Description: Implements the visitor pattern for AST nodes together with
//              a tree printer, a validator that checks every node and a
//              collector for commonly needed node kinds.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial visitor implementation

package ast

import (
	"fmt"
	"strings"
)

// Visitor has one method per node kind. Adding a node kind adds a method,
// so every visitor in the tree has to handle it.
type Visitor interface {
	VisitNumber(expr *NumberExpr) interface{}
	VisitVariable(expr *VariableExpr) interface{}
	VisitBinary(expr *BinaryExpr) interface{}
	VisitCall(expr *CallExpr) interface{}
	VisitIf(expr *IfExpr) interface{}
	VisitFor(expr *ForExpr) interface{}
	VisitPrototype(proto *Prototype) interface{}
	VisitFunction(fn *Function) interface{}
}

// BaseVisitor returns nil for every node. Embed it in visitors that only
// care about some kinds and use Inspect for traversal.
type BaseVisitor struct{}

func (BaseVisitor) VisitNumber(*NumberExpr) interface{}     { return nil }
func (BaseVisitor) VisitVariable(*VariableExpr) interface{} { return nil }
func (BaseVisitor) VisitBinary(*BinaryExpr) interface{}     { return nil }
func (BaseVisitor) VisitCall(*CallExpr) interface{}         { return nil }
func (BaseVisitor) VisitIf(*IfExpr) interface{}             { return nil }
func (BaseVisitor) VisitFor(*ForExpr) interface{}           { return nil }
func (BaseVisitor) VisitPrototype(*Prototype) interface{}   { return nil }
func (BaseVisitor) VisitFunction(*Function) interface{}     { return nil }

// childrenVisitor lists a node's direct children in source order
type childrenVisitor struct{}

func (childrenVisitor) VisitNumber(*NumberExpr) interface{}     { return []Node(nil) }
func (childrenVisitor) VisitVariable(*VariableExpr) interface{} { return []Node(nil) }

func (childrenVisitor) VisitBinary(expr *BinaryExpr) interface{} {
	return nonNil(expr.Left, expr.Right)
}

func (childrenVisitor) VisitCall(expr *CallExpr) interface{} {
	nodes := make([]Node, 0, len(expr.Args))
	for _, arg := range expr.Args {
		if arg != nil {
			nodes = append(nodes, arg)
		}
	}
	return nodes
}

func (childrenVisitor) VisitIf(expr *IfExpr) interface{} {
	return nonNil(expr.Cond, expr.Then, expr.Else)
}

func (childrenVisitor) VisitFor(expr *ForExpr) interface{} {
	return nonNil(expr.Start, expr.End, expr.Step, expr.Body)
}

func (childrenVisitor) VisitPrototype(*Prototype) interface{} { return []Node(nil) }

func (childrenVisitor) VisitFunction(fn *Function) interface{} {
	nodes := make([]Node, 0, 2)
	if fn.Proto != nil {
		nodes = append(nodes, fn.Proto)
	}
	if fn.Body != nil {
		nodes = append(nodes, fn.Body)
	}
	return nodes
}

func nonNil(exprs ...Expr) []Node {
	nodes := make([]Node, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			nodes = append(nodes, e)
		}
	}
	return nodes
}

// Children returns the direct children of node in source order
func Children(node Node) []Node {
	if node == nil {
		return nil
	}
	return node.Accept(childrenVisitor{}).([]Node)
}

// Inspect traverses the tree depth-first in source order, calling fn for
// each node. Children are skipped when fn returns false.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, child := range Children(node) {
		Inspect(child, fn)
	}
}

// PrintVisitor renders a node as an indented tree, one node per line
type PrintVisitor struct {
	buffer strings.Builder
	indent string
	depth  int
	role   string
}

// NewPrintVisitor creates a printer indenting with two spaces per level
func NewPrintVisitor() *PrintVisitor {
	return &PrintVisitor{indent: "  "}
}

// String returns the rendered tree
func (pv *PrintVisitor) String() string {
	return pv.buffer.String()
}

// Reset clears the rendered output
func (pv *PrintVisitor) Reset() {
	pv.buffer.Reset()
	pv.depth = 0
	pv.role = ""
}

func (pv *PrintVisitor) line(format string, args ...interface{}) {
	pv.buffer.WriteString(strings.Repeat(pv.indent, pv.depth))
	if pv.role != "" {
		pv.buffer.WriteString(pv.role)
		pv.buffer.WriteString(": ")
		pv.role = ""
	}
	fmt.Fprintf(&pv.buffer, format, args...)
	pv.buffer.WriteByte('\n')
}

func (pv *PrintVisitor) child(role string, node Node) {
	if node == nil {
		return
	}
	pv.depth++
	pv.role = role
	node.Accept(pv)
	pv.depth--
}

func (pv *PrintVisitor) VisitNumber(expr *NumberExpr) interface{} {
	pv.line("number %s", expr.Value)
	return nil
}

func (pv *PrintVisitor) VisitVariable(expr *VariableExpr) interface{} {
	pv.line("variable %s", expr.Name)
	return nil
}

func (pv *PrintVisitor) VisitBinary(expr *BinaryExpr) interface{} {
	pv.line("binary %c", expr.Op)
	pv.child("", expr.Left)
	pv.child("", expr.Right)
	return nil
}

func (pv *PrintVisitor) VisitCall(expr *CallExpr) interface{} {
	pv.line("call %s", expr.Callee)
	for _, arg := range expr.Args {
		pv.child("", arg)
	}
	return nil
}

func (pv *PrintVisitor) VisitIf(expr *IfExpr) interface{} {
	pv.line("if")
	pv.child("cond", expr.Cond)
	pv.child("then", expr.Then)
	pv.child("else", expr.Else)
	return nil
}

func (pv *PrintVisitor) VisitFor(expr *ForExpr) interface{} {
	pv.line("for %s", expr.Var)
	pv.child("start", expr.Start)
	pv.child("end", expr.End)
	if expr.Step != nil {
		pv.child("step", expr.Step)
	}
	pv.child("body", expr.Body)
	return nil
}

func (pv *PrintVisitor) VisitPrototype(proto *Prototype) interface{} {
	pv.line("prototype %s", proto)
	return nil
}

func (pv *PrintVisitor) VisitFunction(fn *Function) interface{} {
	if fn.IsAnonymous() {
		pv.line("function <anonymous>")
	} else if fn.Proto != nil {
		pv.line("function %s", fn.Proto.Name)
	} else {
		pv.line("function")
	}
	pv.child("", fn.Proto)
	pv.child("body", fn.Body)
	return nil
}

// ValidationVisitor validates nodes and collects errors
type ValidationVisitor struct {
	BaseVisitor
	errors []error
}

// NewValidationVisitor creates a new validation visitor
func NewValidationVisitor() *ValidationVisitor {
	return &ValidationVisitor{errors: make([]error, 0)}
}

// Errors returns all validation errors found
func (vv *ValidationVisitor) Errors() []error {
	return vv.errors
}

// HasErrors returns true if any validation errors were found
func (vv *ValidationVisitor) HasErrors() bool {
	return len(vv.errors) > 0
}

func (vv *ValidationVisitor) check(kind string, node Node) interface{} {
	if err := node.Validate(); err != nil {
		vv.errors = append(vv.errors, fmt.Errorf("%s validation failed: %w", kind, err))
	}
	return nil
}

func (vv *ValidationVisitor) VisitNumber(expr *NumberExpr) interface{} {
	return vv.check("number", expr)
}

func (vv *ValidationVisitor) VisitVariable(expr *VariableExpr) interface{} {
	return vv.check("variable", expr)
}

func (vv *ValidationVisitor) VisitBinary(expr *BinaryExpr) interface{} {
	return vv.check("binary expression", expr)
}

func (vv *ValidationVisitor) VisitCall(expr *CallExpr) interface{} {
	return vv.check("call", expr)
}

func (vv *ValidationVisitor) VisitIf(expr *IfExpr) interface{} {
	return vv.check("if expression", expr)
}

func (vv *ValidationVisitor) VisitFor(expr *ForExpr) interface{} {
	return vv.check("for expression", expr)
}

func (vv *ValidationVisitor) VisitPrototype(proto *Prototype) interface{} {
	return vv.check("prototype", proto)
}

func (vv *ValidationVisitor) VisitFunction(fn *Function) interface{} {
	return vv.check("function", fn)
}

// CollectorVisitor collects specific kinds of nodes from the tree
type CollectorVisitor struct {
	BaseVisitor
	Variables []*VariableExpr
	Calls     []*CallExpr
	Numbers   []*NumberExpr
	Operators map[rune]int
}

// NewCollectorVisitor creates a new collector visitor
func NewCollectorVisitor() *CollectorVisitor {
	return &CollectorVisitor{
		Variables: make([]*VariableExpr, 0),
		Calls:     make([]*CallExpr, 0),
		Numbers:   make([]*NumberExpr, 0),
		Operators: make(map[rune]int),
	}
}

func (cv *CollectorVisitor) VisitVariable(expr *VariableExpr) interface{} {
	cv.Variables = append(cv.Variables, expr)
	return nil
}

func (cv *CollectorVisitor) VisitCall(expr *CallExpr) interface{} {
	cv.Calls = append(cv.Calls, expr)
	return nil
}

func (cv *CollectorVisitor) VisitNumber(expr *NumberExpr) interface{} {
	cv.Numbers = append(cv.Numbers, expr)
	return nil
}

func (cv *CollectorVisitor) VisitBinary(expr *BinaryExpr) interface{} {
	cv.Operators[expr.Op]++
	return nil
}

// Callees returns the distinct called function names in first-seen order
func (cv *CollectorVisitor) Callees() []string {
	seen := make(map[string]bool, len(cv.Calls))
	names := make([]string, 0, len(cv.Calls))
	for _, c := range cv.Calls {
		if !seen[c.Callee] {
			seen[c.Callee] = true
			names = append(names, c.Callee)
		}
	}
	return names
}

// Utility functions for working with visitors

func visitAll(node Node, v Visitor) {
	Inspect(node, func(n Node) bool {
		n.Accept(v)
		return true
	})
}

// ValidateAST validates every node of the tree and returns all errors
func ValidateAST(node Node) []error {
	visitor := NewValidationVisitor()
	visitAll(node, visitor)
	return visitor.Errors()
}

// Print renders the tree with one node per line
func Print(node Node) string {
	if node == nil {
		return ""
	}
	visitor := NewPrintVisitor()
	node.Accept(visitor)
	return visitor.String()
}

// CollectNodes collects variables, calls, numbers and operator counts
func CollectNodes(node Node) *CollectorVisitor {
	visitor := NewCollectorVisitor()
	visitAll(node, visitor)
	return visitor
}
