// ============================================================================
// Kaleido - Toy language front end
// ============================================================================
//
// Package:     emit
// Description: Lipgloss styles for terminal output
// Author:      anemortalkid
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package emit

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorSecondary = lipgloss.Color("#10B981")
	ColorAccent    = lipgloss.Color("#F59E0B")
	ColorError     = lipgloss.Color("#EF4444")
	ColorMuted     = lipgloss.Color("#6B7280")
)

// Styles
var (
	DefinitionStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	ExternStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	TopLevelStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	DiagnosticStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	ConsumedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)
)

// HeadingStyle returns the style used for the heading of a unit kind
func HeadingStyle(kind string) lipgloss.Style {
	switch kind {
	case "definition":
		return DefinitionStyle
	case "extern":
		return ExternStyle
	default:
		return TopLevelStyle
	}
}
