// ============================================================================
// Kaleido - Toy language front end
// ============================================================================
//
// Package:     emit
// Description: Display sinks writing parsed units as text, trees, JSON or
//              YAML, and diagnostics to a separate writer
// Author:      anemortalkid
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	"github.com/anemortalkid/kaleido/foundation/kaleido/ast"
	"github.com/anemortalkid/kaleido/foundation/kaleido/parser"
)

// Format selects how units are rendered
type Format string

const (
	FormatText Format = "text"
	FormatTree Format = "tree"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists every supported format
var Formats = []Format{FormatText, FormatTree, FormatJSON, FormatYAML}

// ParseFormat parses a format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", mdwerror.Newf("unknown output format: %q", s).
		WithCode(mdwerror.CodeInvalidInput).
		WithOperation("emit.ParseFormat")
}

// Options configures a Writer
type Options struct {
	Format Format
	Color  bool
}

// Writer is a parser.Sink rendering units to out and diagnostics to diag.
// It is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	diag   io.Writer
	format Format
	color  bool
	docs   int
}

// New creates a Writer. A nil diag discards diagnostics; an empty format
// means text.
func New(out, diag io.Writer, opts Options) *Writer {
	if diag == nil {
		diag = io.Discard
	}
	if opts.Format == "" {
		opts.Format = FormatText
	}
	return &Writer{out: out, diag: diag, format: opts.Format, color: opts.Color}
}

// Heading returns the text-mode heading for a unit kind
func Heading(kind parser.Kind) string {
	switch kind {
	case parser.KindDefinition:
		return "Parsed def:"
	case parser.KindExtern:
		return "Parsed extern:"
	default:
		return "Parsed top-level expr:"
	}
}

// UnitMap encodes a unit as the generic map written by the JSON and YAML
// formats: the node encoding of ast.ToMap plus "kind" and "source"
func UnitMap(unit parser.Unit) map[string]interface{} {
	m := ast.ToMap(unit.Node())
	if m == nil {
		m = map[string]interface{}{}
	}
	m["kind"] = unit.Kind.String()
	m["source"] = unit.String()
	return m
}

// Unit implements parser.Sink
func (w *Writer) Unit(unit parser.Unit) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var err error
	switch w.format {
	case FormatTree:
		_, err = fmt.Fprintf(w.out, "%s\n%s", w.heading(unit.Kind), ast.Print(unit.Node()))
	case FormatJSON:
		err = json.NewEncoder(w.out).Encode(UnitMap(unit))
	case FormatYAML:
		err = w.writeYAML(UnitMap(unit))
	default:
		_, err = fmt.Fprintf(w.out, "%s %s\n", w.heading(unit.Kind), unit)
	}
	if err != nil {
		return mdwerror.Wrap(err, "failed to write unit").
			WithCode(mdwerror.CodeIOError).
			WithOperation("emit.Unit")
	}
	return nil
}

func (w *Writer) writeYAML(doc map[string]interface{}) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	if w.docs > 0 {
		if _, err := io.WriteString(w.out, "---\n"); err != nil {
			return err
		}
	}
	w.docs++
	_, err = w.out.Write(data)
	return err
}

func (w *Writer) heading(kind parser.Kind) string {
	h := Heading(kind)
	if w.color {
		return HeadingStyle(kind.String()).Render(h)
	}
	return h
}

// Diagnostic implements parser.Sink
func (w *Writer) Diagnostic(err *parser.ParseError) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.color {
		fmt.Fprint(w.diag, parser.FormatDiagnostic(err))
		return
	}
	fmt.Fprintf(w.diag, "%s\n\t%s\n%s",
		DiagnosticStyle.Render(err.Error()),
		ConsumedStyle.Render("Consumed:"),
		strings.TrimSuffix(err.Consumed, "\n")+"\n")
}
