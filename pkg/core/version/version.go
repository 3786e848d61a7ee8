// ============================================================================
// Kaleido - Toy language front end
// ============================================================================
//
// Package:     version
// Description: Central version management for the CLI and services
// Author:      anemortalkid
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants for all kaleido components
const (
	// Platform version
	Platform = "0.1.0"

	// Component versions
	Lexer  = "0.1.0"
	Parser = "0.1.0"
	Server = "0.1.0"
	Store  = "0.1.0"

	// Protocol is the version of the WebSocket and gRPC wire formats
	Protocol = "v1"
)

// Commit and BuildDate are set at link time with -ldflags "-X ..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ServiceVersion returns the version for a given component name
func ServiceVersion(name string) string {
	switch name {
	case "lexer":
		return Lexer
	case "parser":
		return Parser
	case "server":
		return Server
	case "store":
		return Store
	default:
		return Platform
	}
}

// String returns the full version line printed by "kaleido version"
func String() string {
	return fmt.Sprintf("kaleido %s (commit %s, built %s, %s %s/%s)",
		Platform, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
