// File: kaleido.go
// Title: Kaleido Engine
// Description: High-level interface tying lexer, parser and AST validation
//              together. Runs a whole source through the parser, forwards
//              units to a sink and enforces run limits.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial engine implementation

package kaleido

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	mdwlog "github.com/anemortalkid/kaleido/foundation/core/log"
	"github.com/anemortalkid/kaleido/foundation/kaleido/ast"
	"github.com/anemortalkid/kaleido/foundation/kaleido/lexer"
	"github.com/anemortalkid/kaleido/foundation/kaleido/parser"
)

// Engine runs sources through the parser. Each run uses its own lexer and
// parser, so an Engine is safe for concurrent use.
type Engine struct {
	logger  *mdwlog.Logger
	options Options
}

// Options configures the engine behavior
type Options struct {
	// Logger for engine operations (optional, defaults to default logger)
	Logger *mdwlog.Logger

	// MaxErrors stops a run after that many diagnostics (0: unlimited)
	MaxErrors int

	// ValidateAST checks every parsed unit with ast.ValidateAST
	ValidateAST bool

	// MaxSourceBytes rejects larger sources (0: unlimited)
	MaxSourceBytes int64
}

// Stats summarizes one run
type Stats struct {
	Units       int           `json:"units"`
	Definitions int           `json:"definitions"`
	Externs     int           `json:"externs"`
	TopLevel    int           `json:"top_level"`
	Diagnostics int           `json:"diagnostics"`
	Duration    time.Duration `json:"duration"`
}

func (s *Stats) count(unit parser.Unit) {
	s.Units++
	switch unit.Kind {
	case parser.KindDefinition:
		s.Definitions++
	case parser.KindExtern:
		s.Externs++
	case parser.KindTopLevel:
		s.TopLevel++
	}
}

// Result collects everything a run forwarded
type Result struct {
	Units       []parser.Unit
	Diagnostics []*parser.ParseError
	Stats       Stats
}

// HasErrors reports whether any diagnostic was produced
func (r *Result) HasErrors() bool {
	return len(r.Diagnostics) > 0
}

// Unit implements parser.Sink
func (r *Result) Unit(unit parser.Unit) error {
	r.Units = append(r.Units, unit)
	return nil
}

// Diagnostic implements parser.Sink
func (r *Result) Diagnostic(err *parser.ParseError) {
	r.Diagnostics = append(r.Diagnostics, err)
}

// New creates a new engine
func New(opts Options) (*Engine, error) {
	if opts.MaxErrors < 0 {
		return nil, mdwerror.Newf("max errors must not be negative: %d", opts.MaxErrors).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("kaleido.New")
	}
	if opts.MaxSourceBytes < 0 {
		return nil, mdwerror.Newf("max source bytes must not be negative: %d", opts.MaxSourceBytes).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("kaleido.New")
	}
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}

	logger := opts.Logger.WithField("component", "kaleido-engine")
	logger.Debug("Kaleido engine initialized", mdwlog.Fields{
		"maxErrors":      opts.MaxErrors,
		"validateAST":    opts.ValidateAST,
		"maxSourceBytes": opts.MaxSourceBytes,
	})

	return &Engine{logger: logger, options: opts}, nil
}

// Options returns the engine configuration
func (e *Engine) Options() Options {
	return e.options
}

// Run parses r to the end, forwarding units and diagnostics to sink in
// source order. The context is checked between units. It returns the run
// statistics together with the first error that stopped the run: the
// context error, a fatal lexer error, an INVALID_AST or TOO_MANY_ERRORS
// error, an INVALID_INPUT error for oversized sources, or a sink error.
func (e *Engine) Run(ctx context.Context, r io.Reader, sink parser.Sink) (Stats, error) {
	var stats Stats
	start := time.Now()
	timer := e.logger.StartTimer("kaleido.Run")

	err := e.run(ctx, r, sink, &stats)
	stats.Duration = time.Since(start)

	if err != nil {
		timer.StopWithError(err)
		return stats, err
	}
	timer.WithField("units", stats.Units).WithField("diagnostics", stats.Diagnostics).Stop()
	return stats, nil
}

func (e *Engine) run(ctx context.Context, r io.Reader, sink parser.Sink, stats *Stats) error {
	limited := &limitReader{r: r, remaining: e.options.MaxSourceBytes}
	if e.options.MaxSourceBytes <= 0 {
		limited.remaining = -1
	}

	p := parser.New(lexer.New(limited), parser.Options{Logger: e.logger})

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		unit, err := p.Next()
		if err == io.EOF {
			return nil
		}

		var perr *parser.ParseError
		switch {
		case err == nil:
			if verr := e.validate(unit); verr != nil {
				return verr
			}
			stats.count(unit)
			if serr := sink.Unit(unit); serr != nil {
				return fmt.Errorf("sink rejected %s unit: %w", unit.Kind, serr)
			}

		case errors.As(err, &perr):
			stats.Diagnostics++
			sink.Diagnostic(perr)
			if limit := e.options.MaxErrors; limit > 0 && stats.Diagnostics >= limit {
				return mdwerror.Newf("stopped after %d parse errors", stats.Diagnostics).
					WithCode(mdwerror.CodeTooManyErrors).
					WithOperation("kaleido.Run").
					WithDetail("max_errors", limit)
			}

		default:
			if limited.exceeded {
				return e.tooLarge()
			}
			return err
		}
	}
}

func (e *Engine) validate(unit parser.Unit) error {
	if !e.options.ValidateAST {
		return nil
	}
	errs := ast.ValidateAST(unit.Node())
	if len(errs) == 0 {
		return nil
	}

	violations := make([]string, len(errs))
	for i, err := range errs {
		violations[i] = err.Error()
	}
	return mdwerror.New("parser produced an invalid tree").
		WithCode(mdwerror.CodeInvalidAST).
		WithOperation("kaleido.Run").
		WithDetail("unit", unit.String()).
		WithDetail("violations", strings.Join(violations, "; "))
}

func (e *Engine) tooLarge() error {
	return mdwerror.Newf("source exceeds %d bytes", e.options.MaxSourceBytes).
		WithCode(mdwerror.CodeInvalidInput).
		WithOperation("kaleido.Run").
		WithDetail("max_source_bytes", e.options.MaxSourceBytes)
}

// ParseString parses src and collects its units and diagnostics. The
// returned result is non-nil even when err is, and holds what was forwarded
// before the run stopped.
func (e *Engine) ParseString(ctx context.Context, src string) (*Result, error) {
	result := &Result{}
	if limit := e.options.MaxSourceBytes; limit > 0 && int64(len(src)) > limit {
		return result, e.tooLarge()
	}

	stats, err := e.Run(ctx, strings.NewReader(src), result)
	result.Stats = stats
	return result, err
}

// Tokenize returns the tokens of src up to and including EOF
func (e *Engine) Tokenize(src string) ([]lexer.Token, error) {
	if limit := e.options.MaxSourceBytes; limit > 0 && int64(len(src)) > limit {
		return nil, e.tooLarge()
	}
	return lexer.Tokenize(src)
}

// errSourceTooLarge is what the lexer sees once the limit is crossed
var errSourceTooLarge = errors.New("source too large")

// limitReader fails reads past remaining bytes; remaining < 0 means no limit
type limitReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return l.r.Read(p)
	}
	if l.exceeded {
		return 0, errSourceTooLarge
	}

	// read one byte past the limit to tell "exactly at limit" from "over"
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	if int64(n) > l.remaining {
		l.exceeded = true
		n = int(l.remaining)
		l.remaining = 0
		return n, errSourceTooLarge
	}
	l.remaining -= int64(n)
	return n, err
}
