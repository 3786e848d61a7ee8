// File: nodes.go
// Title: Kaleido AST Node Definitions
// Description: Defines the closed set of AST nodes: six expression kinds,
//              prototypes and function definitions. Provides string forms
//              that parse back to the same tree, and structural validation.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial AST node definitions

package ast

import (
	"errors"
	"fmt"
	"strings"

	mdwmathx "github.com/anemortalkid/kaleido/foundation/utils/mathx"
	mdwstringx "github.com/anemortalkid/kaleido/foundation/utils/stringx"
)

// Node represents the base interface for all AST nodes
type Node interface {
	// String returns the source form of the node
	String() string

	// Accept implements the visitor pattern
	Accept(visitor Visitor) interface{}

	// Validate checks the node itself, not its children
	Validate() error
}

// Expr represents the base interface for all expressions. The marker
// method keeps the set of expression kinds closed to this package.
type Expr interface {
	Node
	exprNode()
}

// NumberExpr is a numeric literal
type NumberExpr struct {
	Value mdwmathx.Decimal
}

// VariableExpr is a reference to a named value
type VariableExpr struct {
	Name string
}

// BinaryExpr applies an infix operator from the precedence table
type BinaryExpr struct {
	Op    rune
	Left  Expr
	Right Expr
}

// CallExpr calls a function by name. Args is never nil.
type CallExpr struct {
	Callee string
	Args   []Expr
}

// IfExpr is a conditional expression with mandatory else
type IfExpr struct {
	Cond Expr
	Then Expr
	Else Expr
}

// ForExpr is a loop expression. Var is the loop variable bound to Start;
// Step is nil when the source omits it.
type ForExpr struct {
	Var   string
	Start Expr
	End   Expr
	Step  Expr
	Body  Expr
}

// Prototype is a function signature. Params is never nil.
type Prototype struct {
	Name   string
	Params []string
}

// Function is a definition: a prototype with a body. Anonymous top-level
// expressions are functions whose prototype has an empty name and no
// parameters.
type Function struct {
	Proto *Prototype
	Body  Expr
}

// NewNumber returns a number node
func NewNumber(value mdwmathx.Decimal) *NumberExpr {
	return &NumberExpr{Value: value}
}

// NewVariable returns a variable node
func NewVariable(name string) *VariableExpr {
	return &VariableExpr{Name: name}
}

// NewBinary returns a binary node
func NewBinary(op rune, left, right Expr) *BinaryExpr {
	return &BinaryExpr{Op: op, Left: left, Right: right}
}

// NewCall returns a call node; a nil args slice becomes empty
func NewCall(callee string, args []Expr) *CallExpr {
	if args == nil {
		args = []Expr{}
	}
	return &CallExpr{Callee: callee, Args: args}
}

// NewIf returns a conditional node
func NewIf(cond, then, els Expr) *IfExpr {
	return &IfExpr{Cond: cond, Then: then, Else: els}
}

// NewFor returns a loop node; step may be nil
func NewFor(name string, start, end, step, body Expr) *ForExpr {
	return &ForExpr{Var: name, Start: start, End: end, Step: step, Body: body}
}

// NewPrototype returns a prototype; a nil params slice becomes empty
func NewPrototype(name string, params []string) *Prototype {
	if params == nil {
		params = []string{}
	}
	return &Prototype{Name: name, Params: params}
}

// NewFunction returns a function definition
func NewFunction(proto *Prototype, body Expr) *Function {
	return &Function{Proto: proto, Body: body}
}

// NewAnonymous wraps a top-level expression as a nameless function
func NewAnonymous(body Expr) *Function {
	return NewFunction(NewPrototype("", nil), body)
}

// Implementation of Node interface for NumberExpr

func (n *NumberExpr) String() string {
	return n.Value.String()
}

func (n *NumberExpr) Accept(visitor Visitor) interface{} {
	return visitor.VisitNumber(n)
}

func (n *NumberExpr) Validate() error {
	return nil
}

func (n *NumberExpr) exprNode() {}

// Implementation of Node interface for VariableExpr

func (v *VariableExpr) String() string {
	return v.Name
}

func (v *VariableExpr) Accept(visitor Visitor) interface{} {
	return visitor.VisitVariable(v)
}

func (v *VariableExpr) Validate() error {
	if mdwstringx.IsBlank(v.Name) {
		return errors.New("variable name cannot be empty")
	}
	return nil
}

func (v *VariableExpr) exprNode() {}

// Implementation of Node interface for BinaryExpr

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %c %s)", b.Left, b.Op, b.Right)
}

func (b *BinaryExpr) Accept(visitor Visitor) interface{} {
	return visitor.VisitBinary(b)
}

func (b *BinaryExpr) Validate() error {
	if !IsBinaryOp(b.Op) {
		return fmt.Errorf("operator %q is not in the precedence table", b.Op)
	}
	if b.Left == nil {
		return errors.New("binary expression missing left operand")
	}
	if b.Right == nil {
		return errors.New("binary expression missing right operand")
	}
	return nil
}

func (b *BinaryExpr) exprNode() {}

// Implementation of Node interface for CallExpr

func (c *CallExpr) String() string {
	args := make([]string, len(c.Args))
	for i, arg := range c.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee, strings.Join(args, ", "))
}

func (c *CallExpr) Accept(visitor Visitor) interface{} {
	return visitor.VisitCall(c)
}

func (c *CallExpr) Validate() error {
	if mdwstringx.IsBlank(c.Callee) {
		return errors.New("callee name cannot be empty")
	}
	if c.Args == nil {
		return errors.New("call arguments must not be nil")
	}
	for i, arg := range c.Args {
		if arg == nil {
			return fmt.Errorf("call argument %d is nil", i)
		}
	}
	return nil
}

func (c *CallExpr) exprNode() {}

// Implementation of Node interface for IfExpr

func (i *IfExpr) String() string {
	return fmt.Sprintf("(if %s then %s else %s)", i.Cond, i.Then, i.Else)
}

func (i *IfExpr) Accept(visitor Visitor) interface{} {
	return visitor.VisitIf(i)
}

func (i *IfExpr) Validate() error {
	if i.Cond == nil || i.Then == nil || i.Else == nil {
		return errors.New("if expression requires condition, then and else")
	}
	return nil
}

func (i *IfExpr) exprNode() {}

// Implementation of Node interface for ForExpr

func (f *ForExpr) String() string {
	if f.Step == nil {
		return fmt.Sprintf("(for %s = %s, %s %s)", f.Var, f.Start, f.End, f.Body)
	}
	return fmt.Sprintf("(for %s = %s, %s, %s %s)", f.Var, f.Start, f.End, f.Step, f.Body)
}

func (f *ForExpr) Accept(visitor Visitor) interface{} {
	return visitor.VisitFor(f)
}

func (f *ForExpr) Validate() error {
	if mdwstringx.IsBlank(f.Var) {
		return errors.New("loop variable name cannot be empty")
	}
	if f.Start == nil || f.End == nil || f.Body == nil {
		return errors.New("for expression requires start, end and body")
	}
	return nil
}

// HasStep reports whether the loop has an explicit step
func (f *ForExpr) HasStep() bool {
	return f.Step != nil
}

func (f *ForExpr) exprNode() {}

// Implementation of Node interface for Prototype

func (p *Prototype) String() string {
	return fmt.Sprintf("%s(%s)", p.Name, strings.Join(p.Params, " "))
}

func (p *Prototype) Accept(visitor Visitor) interface{} {
	return visitor.VisitPrototype(p)
}

func (p *Prototype) Validate() error {
	if p.Params == nil {
		return errors.New("prototype parameters must not be nil")
	}
	if p.Name == "" && len(p.Params) > 0 {
		return errors.New("anonymous prototype cannot have parameters")
	}
	for i, param := range p.Params {
		if mdwstringx.IsBlank(param) {
			return fmt.Errorf("parameter %d has an empty name", i)
		}
	}
	return nil
}

// IsAnonymous reports whether the prototype belongs to a top-level expression
func (p *Prototype) IsAnonymous() bool {
	return p.Name == ""
}

// Implementation of Node interface for Function

func (fn *Function) String() string {
	if fn.IsAnonymous() {
		return fn.Body.String()
	}
	return fmt.Sprintf("def %s %s", fn.Proto, fn.Body)
}

func (fn *Function) Accept(visitor Visitor) interface{} {
	return visitor.VisitFunction(fn)
}

func (fn *Function) Validate() error {
	if fn.Proto == nil {
		return errors.New("function requires a prototype")
	}
	if fn.Body == nil {
		return errors.New("function requires a body")
	}
	return nil
}

// IsAnonymous reports whether fn wraps a top-level expression
func (fn *Function) IsAnonymous() bool {
	return fn.Proto != nil && fn.Proto.IsAnonymous()
}
