package server

import (
	"fmt"
	"time"

	"github.com/anemortalkid/kaleido/foundation/kaleido"
	"github.com/anemortalkid/kaleido/foundation/kaleido/ast"
	"github.com/anemortalkid/kaleido/foundation/kaleido/lexer"
	"github.com/anemortalkid/kaleido/foundation/kaleido/parser"
	mdwmathx "github.com/anemortalkid/kaleido/foundation/utils/mathx"
	"github.com/anemortalkid/kaleido/internal/emit"
)

// tokenKinds maps Kind.String back to the kind
var tokenKinds = func() map[string]lexer.Kind {
	kinds := make(map[string]lexer.Kind)
	for k := lexer.KindEOF; k <= lexer.KindSymbol; k++ {
		kinds[k.String()] = k
	}
	return kinds
}()

func tokenFromMap(m map[string]interface{}) (lexer.Token, error) {
	name, _ := m["kind"].(string)
	kind, ok := tokenKinds[name]
	if !ok {
		return lexer.Token{}, fmt.Errorf("unknown token kind %q", name)
	}

	switch kind {
	case lexer.KindIdentifier:
		s, _ := m["name"].(string)
		return lexer.Ident(s), nil
	case lexer.KindNumber:
		s, _ := m["value"].(string)
		d, err := mdwmathx.NewDecimal(s)
		if err != nil {
			return lexer.Token{}, fmt.Errorf("token value: %w", err)
		}
		return lexer.Number(d), nil
	case lexer.KindSymbol:
		s, _ := m["char"].(string)
		r := []rune(s)
		if len(r) != 1 {
			return lexer.Token{}, fmt.Errorf("symbol token must hold one character, got %q", s)
		}
		return lexer.Symbol(r[0]), nil
	case lexer.KindEOF:
		return lexer.EOF, nil
	default:
		return lexer.Keyword(kind), nil
	}
}

func diagnosticMap(perr *parser.ParseError) map[string]interface{} {
	return map[string]interface{}{
		"message":  perr.Error(),
		"expected": perr.Expected,
		"found":    emit.TokenMap(perr.Found),
		"consumed": perr.Consumed,
	}
}

func diagnosticFromMap(m map[string]interface{}) (*parser.ParseError, error) {
	found, ok := m["found"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("diagnostic: missing found token")
	}
	tok, err := tokenFromMap(found)
	if err != nil {
		return nil, fmt.Errorf("diagnostic: %w", err)
	}
	expected, _ := m["expected"].(string)
	consumed, _ := m["consumed"].(string)
	return &parser.ParseError{Expected: expected, Found: tok, Consumed: consumed}, nil
}

func unitFromMap(m map[string]interface{}) (parser.Unit, error) {
	kindName, _ := m["kind"].(string)
	kind, err := parser.ParseKind(kindName)
	if err != nil {
		return parser.Unit{}, err
	}
	node, err := ast.FromMap(m)
	if err != nil {
		return parser.Unit{}, fmt.Errorf("%s unit: %w", kind, err)
	}

	switch n := node.(type) {
	case *ast.Prototype:
		if kind != parser.KindExtern {
			return parser.Unit{}, fmt.Errorf("%s unit holds a prototype", kind)
		}
		return parser.Unit{Kind: kind, Prototype: n}, nil
	case *ast.Function:
		if kind == parser.KindExtern {
			return parser.Unit{}, fmt.Errorf("extern unit holds a function")
		}
		return parser.Unit{Kind: kind, Function: n}, nil
	default:
		return parser.Unit{}, fmt.Errorf("%s unit holds a bare expression", kind)
	}
}

func statsMap(s kaleido.Stats) map[string]interface{} {
	return map[string]interface{}{
		"units":       s.Units,
		"definitions": s.Definitions,
		"externs":     s.Externs,
		"top_level":   s.TopLevel,
		"diagnostics": s.Diagnostics,
		"duration_ms": float64(s.Duration) / float64(time.Millisecond),
	}
}

func statsFromMap(m map[string]interface{}) kaleido.Stats {
	n := func(key string) int {
		f, _ := m[key].(float64)
		return int(f)
	}
	ms, _ := m["duration_ms"].(float64)
	return kaleido.Stats{
		Units:       n("units"),
		Definitions: n("definitions"),
		Externs:     n("externs"),
		TopLevel:    n("top_level"),
		Diagnostics: n("diagnostics"),
		Duration:    time.Duration(ms * float64(time.Millisecond)),
	}
}

// resultMap encodes a parse result for the gRPC response
func resultMap(r *kaleido.Result) map[string]interface{} {
	units := make([]interface{}, len(r.Units))
	for i, u := range r.Units {
		units[i] = emit.UnitMap(u)
	}
	diags := make([]interface{}, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		diags[i] = diagnosticMap(d)
	}
	return map[string]interface{}{
		"units":       units,
		"diagnostics": diags,
		"stats":       statsMap(r.Stats),
	}
}

// resultFromMap decodes a gRPC response back into a parse result
func resultFromMap(m map[string]interface{}) (*kaleido.Result, error) {
	result := &kaleido.Result{}

	rawUnits, _ := m["units"].([]interface{})
	for i, raw := range rawUnits {
		um, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("unit %d is not an object", i)
		}
		unit, err := unitFromMap(um)
		if err != nil {
			return nil, fmt.Errorf("unit %d: %w", i, err)
		}
		result.Units = append(result.Units, unit)
	}

	rawDiags, _ := m["diagnostics"].([]interface{})
	for i, raw := range rawDiags {
		dm, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("diagnostic %d is not an object", i)
		}
		perr, err := diagnosticFromMap(dm)
		if err != nil {
			return nil, fmt.Errorf("diagnostic %d: %w", i, err)
		}
		result.Diagnostics = append(result.Diagnostics, perr)
	}

	if sm, ok := m["stats"].(map[string]interface{}); ok {
		result.Stats = statsFromMap(sm)
	}
	return result, nil
}
