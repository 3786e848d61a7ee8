// File: codes.go
// Title: Error Code Definitions
// Description: Defines the error codes used across the kaleido front end and
//              its supporting services, with category and exit status mapping.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial code set

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeCanceled     Code = "CANCELED"

	// Front end
	CodeSyntaxError   Code = "SYNTAX_ERROR"
	CodeInvalidNumber Code = "INVALID_NUMBER"
	CodeInvalidAST    Code = "INVALID_AST"
	CodeTooManyErrors Code = "TOO_MANY_ERRORS"

	// Environment
	CodeIOError       Code = "IO_ERROR"
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// Storage and transport
	CodeDatabaseError Code = "DATABASE_ERROR"
	CodeNetworkError  Code = "NETWORK_ERROR"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeInvalidInput, CodeNotFound, CodeCanceled,
		CodeSyntaxError, CodeInvalidNumber, CodeInvalidAST, CodeTooManyErrors,
		CodeIOError, CodeConfigError, CodeInvalidConfig,
		CodeDatabaseError, CodeNetworkError:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeSyntaxError, CodeInvalidNumber, CodeInvalidAST, CodeTooManyErrors:
		return "frontend"
	case CodeIOError, CodeConfigError, CodeInvalidConfig:
		return "environment"
	case CodeDatabaseError, CodeNetworkError:
		return "service"
	case CodeInvalidInput, CodeNotFound:
		return "validation"
	default:
		return "generic"
	}
}

// ExitStatus returns the process exit status a CLI should use for this code
func (c Code) ExitStatus() int {
	switch c {
	case CodeSyntaxError, CodeInvalidNumber, CodeTooManyErrors:
		return 1
	case CodeInvalidInput, CodeConfigError, CodeInvalidConfig:
		return 2
	case CodeCanceled:
		return 130
	default:
		return 3
	}
}
