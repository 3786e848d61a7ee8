package repl

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/anemortalkid/kaleido/internal/emit"
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(emit.ColorPrimary).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(emit.ColorMuted).
			Italic(true)

	PromptStyle = lipgloss.NewStyle().
			Foreground(emit.ColorSecondary).
			Bold(true)

	InputEchoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9FAFB"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(emit.ColorError)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(emit.ColorMuted)

	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(lipgloss.Color("#F9FAFB")).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(emit.ColorMuted)
)
