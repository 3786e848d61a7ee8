// Package error provides structured error handling for the kaleido front end.
//
// Package: error
// Title: Kaleido Error Handling Framework
// Description: Implements coded, severity-tagged errors with contextual details
//              and operation names. Used for every failure that leaves a
//              package boundary: fatal lexer errors, configuration problems,
//              storage and transport failures.
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
//	import mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
//
//	err := mdwerror.New("malformed numeric literal").
//		WithCode(mdwerror.CodeInvalidNumber).
//		WithOperation("lexer.Next").
//		WithDetail("text", "1.2.3")
//
//	if mdwerror.HasCode(err, mdwerror.CodeInvalidNumber) {
//		// fatal: stop parsing
//	}
package error
