// Package log provides structured logging for the kaleido toolchain.
//
// Package: log
// Title: Structured Logging
// Description: Leveled, field-based logging with JSON, text and console
//              formatters, immutable With* derivation, performance timers
//              and severity-aware logging of coded errors.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation
//
// Usage:
//
//	import mdwlog "github.com/anemortalkid/kaleido/foundation/core/log"
//
//	logger := mdwlog.NewWithConfig(mdwlog.Config{
//		Level:  mdwlog.LevelInfo,
//		Format: mdwlog.FormatText,
//		Output: os.Stderr,
//		Name:   "kaleido",
//	}).WithField("component", "parser")
//
//	logger.Info("parsed unit", mdwlog.Fields{"kind": "definition", "name": "fib"})
//
//	timer := logger.StartTimer("parse")
//	// ... parse
//	timer.Stop()
//
// Logging never writes to stdout unless asked to: the CLI sends logs to
// stderr so that AST output on stdout stays machine readable.
package log
