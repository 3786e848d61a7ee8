// File: severity.go
// Title: Error Severity Levels
// Description: Defines severity levels for errors so that loggers can pick a
//              level and callers can decide whether to continue.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial severity levels

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow indicates bad user input that the caller reports and moves past
	SeverityLow Severity = iota

	// SeverityMedium indicates a failed operation with no lasting effect
	SeverityMedium

	// SeverityHigh indicates a failure of a backing resource (disk, database, network)
	SeverityHigh

	// SeverityCritical indicates a broken internal invariant
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should be surfaced loudly
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines the default severity for an error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeInvalidAST, CodeInternal:
		return SeverityCritical
	case CodeDatabaseError, CodeNetworkError, CodeIOError:
		return SeverityHigh
	case CodeInvalidInput, CodeNotFound, CodeSyntaxError, CodeInvalidNumber,
		CodeTooManyErrors, CodeCanceled:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
