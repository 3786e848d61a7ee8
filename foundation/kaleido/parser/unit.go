// File: unit.go
// Title: Top-Level Units
// Description: The values the top-level driver forwards, one per parsed
//              definition, extern or top-level expression, and the sink
//              contract for receiving them.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial unit and sink definitions

package parser

import (
	"fmt"

	"github.com/anemortalkid/kaleido/foundation/kaleido/ast"
)

// Kind classifies a top-level unit
type Kind int

const (
	// KindDefinition is a "def" with prototype and body
	KindDefinition Kind = iota + 1

	// KindExtern is an "extern" prototype without body
	KindExtern

	// KindTopLevel is a bare expression wrapped as an anonymous function
	KindTopLevel
)

// String returns a string representation of the unit kind
func (k Kind) String() string {
	switch k {
	case KindDefinition:
		return "definition"
	case KindExtern:
		return "extern"
	case KindTopLevel:
		return "top-level"
	default:
		return "unknown"
	}
}

// ParseKind parses the String form of a kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "definition", "def":
		return KindDefinition, nil
	case "extern":
		return KindExtern, nil
	case "top-level", "toplevel", "expr":
		return KindTopLevel, nil
	default:
		return 0, fmt.Errorf("unknown unit kind: %q", s)
	}
}

// Unit is one parsed top-level construct. Function is set for definitions
// and top-level expressions, Prototype for externs.
type Unit struct {
	Kind      Kind
	Function  *ast.Function
	Prototype *ast.Prototype
}

// Node returns the unit's tree
func (u Unit) Node() ast.Node {
	if u.Kind == KindExtern {
		return u.Prototype
	}
	return u.Function
}

// Proto returns the unit's prototype; anonymous for top-level expressions
func (u Unit) Proto() *ast.Prototype {
	if u.Kind == KindExtern {
		return u.Prototype
	}
	if u.Function != nil {
		return u.Function.Proto
	}
	return nil
}

// Name returns the declared function name, empty for top-level expressions
func (u Unit) Name() string {
	if p := u.Proto(); p != nil {
		return p.Name
	}
	return ""
}

// String returns the source form of the unit
func (u Unit) String() string {
	switch u.Kind {
	case KindExtern:
		return "extern " + u.Prototype.String()
	case KindDefinition, KindTopLevel:
		return u.Function.String()
	default:
		return "<invalid unit>"
	}
}

// Sink receives the units and diagnostics of a parse, in source order
type Sink interface {
	// Unit receives a parsed unit; a non-nil error stops parsing
	Unit(unit Unit) error

	// Diagnostic receives a recoverable parse error
	Diagnostic(err *ParseError)
}

// SinkFuncs adapts plain functions to Sink. Nil fields are ignored.
type SinkFuncs struct {
	OnUnit       func(Unit) error
	OnDiagnostic func(*ParseError)
}

// Unit implements Sink
func (s SinkFuncs) Unit(unit Unit) error {
	if s.OnUnit == nil {
		return nil
	}
	return s.OnUnit(unit)
}

// Diagnostic implements Sink
func (s SinkFuncs) Diagnostic(err *ParseError) {
	if s.OnDiagnostic != nil {
		s.OnDiagnostic(err)
	}
}
