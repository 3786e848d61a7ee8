// File: encode.go
// Title: AST Map Encoding
// Description: Converts AST nodes to and from generic maps built from
//              map[string]interface{}, []interface{} and strings. JSON,
//              YAML and protobuf Struct encoders all consume this form.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial encoder and decoder

package ast

import (
	"fmt"
	"unicode/utf8"

	mdwmathx "github.com/anemortalkid/kaleido/foundation/utils/mathx"
)

// Node type names used in the "type" key of encoded maps
const (
	TypeNumber    = "number"
	TypeVariable  = "variable"
	TypeBinary    = "binary"
	TypeCall      = "call"
	TypeIf        = "if"
	TypeFor       = "for"
	TypePrototype = "prototype"
	TypeFunction  = "function"
)

// mapVisitor encodes nodes; numbers are kept as exact decimal strings
type mapVisitor struct{}

func (mv mapVisitor) encode(e Expr) interface{} {
	if e == nil {
		return nil
	}
	return e.Accept(mv)
}

func (mapVisitor) VisitNumber(expr *NumberExpr) interface{} {
	return map[string]interface{}{"type": TypeNumber, "value": expr.Value.String()}
}

func (mapVisitor) VisitVariable(expr *VariableExpr) interface{} {
	return map[string]interface{}{"type": TypeVariable, "name": expr.Name}
}

func (mv mapVisitor) VisitBinary(expr *BinaryExpr) interface{} {
	return map[string]interface{}{
		"type":  TypeBinary,
		"op":    string(expr.Op),
		"left":  mv.encode(expr.Left),
		"right": mv.encode(expr.Right),
	}
}

func (mv mapVisitor) VisitCall(expr *CallExpr) interface{} {
	args := make([]interface{}, len(expr.Args))
	for i, arg := range expr.Args {
		args[i] = mv.encode(arg)
	}
	return map[string]interface{}{"type": TypeCall, "callee": expr.Callee, "args": args}
}

func (mv mapVisitor) VisitIf(expr *IfExpr) interface{} {
	return map[string]interface{}{
		"type": TypeIf,
		"cond": mv.encode(expr.Cond),
		"then": mv.encode(expr.Then),
		"else": mv.encode(expr.Else),
	}
}

func (mv mapVisitor) VisitFor(expr *ForExpr) interface{} {
	m := map[string]interface{}{
		"type":  TypeFor,
		"var":   expr.Var,
		"start": mv.encode(expr.Start),
		"end":   mv.encode(expr.End),
		"body":  mv.encode(expr.Body),
	}
	if expr.Step != nil {
		m["step"] = mv.encode(expr.Step)
	}
	return m
}

func (mapVisitor) VisitPrototype(proto *Prototype) interface{} {
	params := make([]interface{}, len(proto.Params))
	for i, p := range proto.Params {
		params[i] = p
	}
	return map[string]interface{}{"type": TypePrototype, "name": proto.Name, "params": params}
}

func (mv mapVisitor) VisitFunction(fn *Function) interface{} {
	m := map[string]interface{}{"type": TypeFunction, "body": mv.encode(fn.Body)}
	if fn.Proto != nil {
		m["prototype"] = mv.VisitPrototype(fn.Proto)
	}
	return m
}

// ToMap encodes node as nested generic maps
func ToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}
	return node.Accept(mapVisitor{}).(map[string]interface{})
}

// FromMap decodes a map produced by ToMap, or by decoding its JSON or YAML
// form, back into a node
func FromMap(m map[string]interface{}) (Node, error) {
	typ, err := stringField(m, "type")
	if err != nil {
		return nil, err
	}

	switch typ {
	case TypePrototype:
		return protoFromMap(m)
	case TypeFunction:
		protoMap, ok := m["prototype"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("function: missing prototype")
		}
		proto, err := protoFromMap(protoMap)
		if err != nil {
			return nil, fmt.Errorf("function: %w", err)
		}
		body, err := exprField(m, "body")
		if err != nil {
			return nil, fmt.Errorf("function: %w", err)
		}
		return NewFunction(proto, body), nil
	default:
		return ExprFromMap(m)
	}
}

// ExprFromMap decodes an encoded expression
func ExprFromMap(m map[string]interface{}) (Expr, error) {
	typ, err := stringField(m, "type")
	if err != nil {
		return nil, err
	}

	switch typ {
	case TypeNumber:
		text, err := stringField(m, "value")
		if err != nil {
			return nil, err
		}
		value, err := mdwmathx.NewDecimal(text)
		if err != nil {
			return nil, fmt.Errorf("number: %w", err)
		}
		return NewNumber(value), nil

	case TypeVariable:
		name, err := stringField(m, "name")
		if err != nil {
			return nil, err
		}
		return NewVariable(name), nil

	case TypeBinary:
		opText, err := stringField(m, "op")
		if err != nil {
			return nil, err
		}
		op, size := utf8.DecodeRuneInString(opText)
		if size != len(opText) || !IsBinaryOp(op) {
			return nil, fmt.Errorf("binary: unknown operator %q", opText)
		}
		left, err := exprField(m, "left")
		if err != nil {
			return nil, fmt.Errorf("binary: %w", err)
		}
		right, err := exprField(m, "right")
		if err != nil {
			return nil, fmt.Errorf("binary: %w", err)
		}
		return NewBinary(op, left, right), nil

	case TypeCall:
		callee, err := stringField(m, "callee")
		if err != nil {
			return nil, err
		}
		rawArgs, _ := m["args"].([]interface{})
		args := make([]Expr, 0, len(rawArgs))
		for i, raw := range rawArgs {
			am, ok := raw.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("call: argument %d is not an object", i)
			}
			arg, err := ExprFromMap(am)
			if err != nil {
				return nil, fmt.Errorf("call: argument %d: %w", i, err)
			}
			args = append(args, arg)
		}
		return NewCall(callee, args), nil

	case TypeIf:
		cond, err := exprField(m, "cond")
		if err != nil {
			return nil, fmt.Errorf("if: %w", err)
		}
		then, err := exprField(m, "then")
		if err != nil {
			return nil, fmt.Errorf("if: %w", err)
		}
		els, err := exprField(m, "else")
		if err != nil {
			return nil, fmt.Errorf("if: %w", err)
		}
		return NewIf(cond, then, els), nil

	case TypeFor:
		name, err := stringField(m, "var")
		if err != nil {
			return nil, err
		}
		start, err := exprField(m, "start")
		if err != nil {
			return nil, fmt.Errorf("for: %w", err)
		}
		end, err := exprField(m, "end")
		if err != nil {
			return nil, fmt.Errorf("for: %w", err)
		}
		var step Expr
		if _, ok := m["step"]; ok && m["step"] != nil {
			if step, err = exprField(m, "step"); err != nil {
				return nil, fmt.Errorf("for: %w", err)
			}
		}
		body, err := exprField(m, "body")
		if err != nil {
			return nil, fmt.Errorf("for: %w", err)
		}
		return NewFor(name, start, end, step, body), nil

	default:
		return nil, fmt.Errorf("unknown expression type %q", typ)
	}
}

func protoFromMap(m map[string]interface{}) (*Prototype, error) {
	if typ, _ := m["type"].(string); typ != TypePrototype {
		return nil, fmt.Errorf("expected prototype, got %q", typ)
	}
	name, _ := m["name"].(string)
	rawParams, _ := m["params"].([]interface{})
	params := make([]string, 0, len(rawParams))
	for i, raw := range rawParams {
		p, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("prototype: parameter %d is not a string", i)
		}
		params = append(params, p)
	}
	return NewPrototype(name, params), nil
}

func stringField(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key].(string)
	if !ok {
		return "", fmt.Errorf("missing string field %q", key)
	}
	return v, nil
}

func exprField(m map[string]interface{}, key string) (Expr, error) {
	sub, ok := m[key].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing expression field %q", key)
	}
	return ExprFromMap(sub)
}
