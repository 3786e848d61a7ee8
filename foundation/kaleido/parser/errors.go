// File: errors.go
// Title: Parse Errors
// Description: The recoverable parse error value and its standard
//              diagnostic rendering.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial error type

package parser

import (
	"fmt"
	"strings"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	"github.com/anemortalkid/kaleido/foundation/kaleido/lexer"
)

// ParseError is a recoverable failure of a grammar production. It names the
// construct that was expected and the token actually found, and carries the
// characters consumed up to the failure.
type ParseError struct {
	Expected string
	Found    lexer.Token
	Consumed string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
}

// Code returns the foundation error code for parse errors
func (e *ParseError) Code() mdwerror.Code {
	return mdwerror.CodeSyntaxError
}

// AsError converts the parse error to a foundation error carrying the
// expected construct, the found token and the consumed input as details
func (e *ParseError) AsError() *mdwerror.Error {
	return mdwerror.New(e.Error()).
		WithCode(mdwerror.CodeSyntaxError).
		WithOperation("parser.Next").
		WithDetail("expected", e.Expected).
		WithDetail("found", e.Found.String()).
		WithDetail("consumed", e.Consumed)
}

// FormatDiagnostic renders err as one line naming the expected construct and
// the found token, followed by the consumed-character log
func FormatDiagnostic(err *ParseError) string {
	var b strings.Builder
	b.WriteString(err.Error())
	b.WriteString("\n\tConsumed:\n")
	b.WriteString(err.Consumed)
	if !strings.HasSuffix(err.Consumed, "\n") {
		b.WriteByte('\n')
	}
	return b.String()
}
