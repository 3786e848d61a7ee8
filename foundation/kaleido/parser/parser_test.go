// File: parser_test.go
// Title: Kaleido Parser Tests
// Description: Tests for expressions, precedence climbing, top-level units
//              and error recovery.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial parser tests

package parser

import (
	"errors"
	"io"
	"strings"
	"testing"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	"github.com/anemortalkid/kaleido/foundation/kaleido/ast"
)

// collect parses src and returns all units and diagnostics
func collect(t *testing.T, src string) ([]Unit, []*ParseError) {
	t.Helper()
	var units []Unit
	var diags []*ParseError
	err := NewString(src, Options{}).Parse(SinkFuncs{
		OnUnit: func(u Unit) error {
			units = append(units, u)
			return nil
		},
		OnDiagnostic: func(perr *ParseError) {
			diags = append(diags, perr)
		},
	})
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	return units, diags
}

// parseExpr parses src as a single top-level expression
func parseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	units, diags := collect(t, src)
	if len(diags) != 0 {
		t.Fatalf("Parse(%q) diagnostics = %v", src, diags)
	}
	if len(units) != 1 || units[0].Kind != KindTopLevel {
		t.Fatalf("Parse(%q) units = %v, want one top-level expression", src, units)
	}
	return units[0].Function.Body
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1", "1"},
		{"x", "x"},
		{"1+2*3", "(1 + (2 * 3))"},
		{"1*2+3", "((1 * 2) + 3)"},
		{"1-2-3", "((1 - 2) - 3)"},
		{"1<2>3", "((1 < 2) > 3)"},
		{"a+b*c-d", "((a + (b * c)) - d)"},
		{"a<b+c*d", "(a < (b + (c * d)))"},
		{"a*b*c+d<e", "((((a * b) * c) + d) < e)"},
		{"(1+2)*3", "((1 + 2) * 3)"},
		{"((x))", "x"},
		{"foo(1, 2)", "foo(1, 2)"},
		{"foo()", "foo()"},
		{"foo", "foo"},
		{"f(g(x), y+1)", "f(g(x), (y + 1))"},
		{"if 1 then 2 else 3", "(if 1 then 2 else 3)"},
		{"if x < 3 then 1 else fib(x-1)+fib(x-2)", "(if (x < 3) then 1 else (fib((x - 1)) + fib((x - 2))))"},
		{"for i = 1, 2, 1 body(i)", "(for i = 1, 2, 1 body(i))"},
		{"for i = 1, i < n putchard(42)", "(for i = 1, (i < n) putchard(42))"},
		{"2.50 * y", "(2.5 * y)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseExpr(t, tt.input).String(); got != tt.want {
				t.Errorf("parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestPrecedenceClimbingShape(t *testing.T) {
	top, ok := parseExpr(t, "1+2*3").(*ast.BinaryExpr)
	if !ok || top.Op != '+' {
		t.Fatalf("root = %v, want '+'", top)
	}
	if _, ok := top.Left.(*ast.NumberExpr); !ok {
		t.Errorf("left = %v, want number", top.Left)
	}
	right, ok := top.Right.(*ast.BinaryExpr)
	if !ok || right.Op != '*' {
		t.Errorf("right = %v, want '*'", top.Right)
	}

	top, _ = parseExpr(t, "1-2-3").(*ast.BinaryExpr)
	left, ok := top.Left.(*ast.BinaryExpr)
	if !ok || left.Op != '-' || top.Right.String() != "3" {
		t.Errorf("1-2-3 should lean left, got %v", top)
	}
}

func TestParseCalls(t *testing.T) {
	call, ok := parseExpr(t, "foo(1, 2)").(*ast.CallExpr)
	if !ok || call.Callee != "foo" || len(call.Args) != 2 {
		t.Fatalf("foo(1, 2) = %v", call)
	}

	empty, ok := parseExpr(t, "foo()").(*ast.CallExpr)
	if !ok || empty.Args == nil || len(empty.Args) != 0 {
		t.Errorf("foo() args = %#v, want empty non-nil", empty)
	}

	if _, ok := parseExpr(t, "foo").(*ast.VariableExpr); !ok {
		t.Error("bare identifier should be a variable")
	}
}

func TestParseForStep(t *testing.T) {
	with, ok := parseExpr(t, "for i = 1, 2, 1 x").(*ast.ForExpr)
	if !ok || !with.HasStep() || with.Var != "i" {
		t.Fatalf("for with step = %v", with)
	}
	without, ok := parseExpr(t, "for i = 1, 2 x").(*ast.ForExpr)
	if !ok || without.HasStep() {
		t.Fatalf("for without step = %v", without)
	}
	if with.Start.String() != without.Start.String() ||
		with.End.String() != without.End.String() ||
		with.Body.String() != without.Body.String() {
		t.Error("loops should differ only in the step")
	}
}

func TestParseUnits(t *testing.T) {
	src := `
# library
extern sin(a);
extern rand();
def fib(n)
  if n < 3 then 1 else fib(n-1) + fib(n-2);
def add(a b) a+b
fib(10);
;;
`
	units, diags := collect(t, src)
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %v", diags)
	}

	want := []struct {
		kind Kind
		name string
		text string
	}{
		{KindExtern, "sin", "extern sin(a)"},
		{KindExtern, "rand", "extern rand()"},
		{KindDefinition, "fib", "def fib(n) (if (n < 3) then 1 else (fib((n - 1)) + fib((n - 2))))"},
		{KindDefinition, "add", "def add(a b) (a + b)"},
		{KindTopLevel, "", "fib(10)"},
	}
	if len(units) != len(want) {
		t.Fatalf("got %d units, want %d: %v", len(units), len(want), units)
	}
	for i, w := range want {
		u := units[i]
		if u.Kind != w.kind || u.Name() != w.name || u.String() != w.text {
			t.Errorf("unit %d = %s %q %q, want %s %q %q", i, u.Kind, u.Name(), u, w.kind, w.name, w.text)
		}
	}

	sin := units[0].Prototype
	if sin == nil || len(sin.Params) != 1 || sin.Params[0] != "a" {
		t.Errorf("extern sin(a) = %v", sin)
	}
	if units[0].Function != nil {
		t.Error("extern should have no body")
	}
	if !units[4].Function.IsAnonymous() {
		t.Error("top-level expression should be anonymous")
	}
}

func TestRecoveryAtTopLevel(t *testing.T) {
	units, diags := collect(t, "def f( ; 1+1")

	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
	if diags[0].Expected != "')' in prototype" || !diags[0].Found.Is(';') {
		t.Errorf("diagnostic = %v", diags[0])
	}
	if len(units) != 1 || units[0].Kind != KindTopLevel || units[0].String() != "(1 + 1)" {
		t.Errorf("units = %v, want the trailing 1+1", units)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		found    string
	}{
		{")", "an expression", "symbol(')')"},
		{"(1+2", "')'", "EOF"},
		{"f(1 2)", "')' or ',' in argument list", "number(2)"},
		{"if 1 2", "'then'", "number(2)"},
		{"if 1 then 2 3", "'else'", "number(3)"},
		{"for = 1, 2 x", "identifier after 'for'", "symbol('=')"},
		{"for i 1, 2 x", "'=' after loop variable", "number(1)"},
		{"for i = 1 2 x", "',' after loop start value", "number(2)"},
		{"def 1", "function name in prototype", "number(1)"},
		{"extern sin a", "'(' in prototype", "identifier(a)"},
		{"extern f(a, b)", "')' in prototype", "symbol(',')"},
		{"1 + ", "an expression", "EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := NewString(tt.input, Options{}).Next()
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Next() error = %v, want *ParseError", err)
			}
			if perr.Expected != tt.expected {
				t.Errorf("Expected = %q, want %q", perr.Expected, tt.expected)
			}
			if got := perr.Found.String(); got != tt.found {
				t.Errorf("Found = %s, want %s", got, tt.found)
			}
		})
	}
}

func TestNextAfterError(t *testing.T) {
	p := NewString("extern ; foo", Options{})

	if _, err := p.Next(); err == nil {
		t.Fatal("Next() should fail on extern without prototype")
	}
	unit, err := p.Next()
	if err != nil || unit.String() != "foo" {
		t.Errorf("Next() after recovery = %v, %v; want foo", unit, err)
	}
	for i := 0; i < 3; i++ {
		if _, err := p.Next(); err != io.EOF {
			t.Errorf("Next() at end = %v, want io.EOF", err)
		}
	}
}

func TestFatalNumberStopsParsing(t *testing.T) {
	tests := []string{"1.2.3", "x + 1..2", "def f(x) x; 3 + 4.4.4; 5"}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			var units []Unit
			err := NewString(src, Options{}).Parse(SinkFuncs{
				OnUnit: func(u Unit) error {
					units = append(units, u)
					return nil
				},
			})
			if !mdwerror.HasCode(err, mdwerror.CodeInvalidNumber) {
				t.Fatalf("Parse() error = %v, want INVALID_NUMBER", err)
			}
			var perr *ParseError
			if errors.As(err, &perr) {
				t.Error("fatal error should not be a ParseError")
			}
		})
	}
}

func TestSinkErrorStopsParsing(t *testing.T) {
	stop := errors.New("stop")
	count := 0
	err := NewString("1; 2; 3", Options{}).Parse(SinkFuncs{
		OnUnit: func(Unit) error {
			count++
			if count == 2 {
				return stop
			}
			return nil
		},
	})
	if !errors.Is(err, stop) {
		t.Errorf("Parse() error = %v, want %v", err, stop)
	}
	if count != 2 {
		t.Errorf("sink saw %d units, want 2", count)
	}
}

func TestStringFormsReparse(t *testing.T) {
	sources := []string{
		"def fib(n) if n < 3 then 1 else fib(n-1)+fib(n-2)",
		"extern atan2(y x)",
		"for i = 1, i < 10, 2 f(i, 2*i)",
		"a+b*c-d<e",
		"(a+b)*(c-d)",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			first, _ := collect(t, src)
			if len(first) != 1 {
				t.Fatalf("units = %v", first)
			}
			again, diags := collect(t, first[0].String())
			if len(diags) != 0 || len(again) != 1 {
				t.Fatalf("reparse of %q: units %v diagnostics %v", first[0], again, diags)
			}
			if again[0].String() != first[0].String() {
				t.Errorf("reparse = %q, want %q", again[0], first[0])
			}
		})
	}
}

func TestFormatDiagnostic(t *testing.T) {
	_, err := NewString("def f( ; 1", Options{}).Next()
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("Next() error = %v", err)
	}

	got := FormatDiagnostic(perr)
	lines := strings.Split(got, "\n")
	if lines[0] != "expected ')' in prototype, found symbol(';')" {
		t.Errorf("first line = %q", lines[0])
	}
	if lines[1] != "\tConsumed:" {
		t.Errorf("second line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "def f( ;") {
		t.Errorf("consumed log = %q", lines[2])
	}
	if !strings.HasSuffix(got, "\n") {
		t.Error("diagnostic should end with a newline")
	}

	e := perr.AsError()
	if e.Code() != mdwerror.CodeSyntaxError {
		t.Errorf("AsError() code = %v", e.Code())
	}
	if found, _ := e.Detail("found"); found != "symbol(';')" {
		t.Errorf("found detail = %v", found)
	}
}

func TestUnitKind(t *testing.T) {
	for _, k := range []Kind{KindDefinition, KindExtern, KindTopLevel} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("macro"); err == nil {
		t.Error("ParseKind() should reject unknown kinds")
	}
}
