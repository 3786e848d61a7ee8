// ============================================================================
// Kaleido - Toy language front end
// ============================================================================
//
// Package:     repl
// Description: Bubbletea model for the interactive parser
// Author:      anemortalkid
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package repl

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/anemortalkid/kaleido/foundation/kaleido"
	"github.com/anemortalkid/kaleido/internal/emit"
	"github.com/anemortalkid/kaleido/pkg/core/version"
)

// Entry is one submitted input with its rendered output
type Entry struct {
	Input  string
	Output string
	Err    error
}

// parsedMsg carries the result of parsing one input
type parsedMsg struct {
	entry Entry
	stats kaleido.Stats
}

// Model is the main Bubbletea model for the REPL
type Model struct {
	// State
	width  int
	height int
	ready  bool

	// Components
	input    textinput.Model
	viewport viewport.Model

	// Session
	engine  *kaleido.Engine
	format  emit.Format
	entries []Entry
	history []string
	histPos int
	totals  kaleido.Stats
}

// New creates a REPL model parsing with engine and rendering in format
func New(engine *kaleido.Engine, format emit.Format) Model {
	ti := textinput.New()
	ti.Placeholder = "def fib(n) if n < 3 then 1 else fib(n-1)+fib(n-2)"
	ti.Prompt = PromptStyle.Render("ready> ")
	ti.CharLimit = 4096
	ti.Focus()

	if format == "" {
		format = emit.FormatText
	}

	return Model{
		input:  ti,
		engine: engine,
		format: format,
	}
}

// Entries returns the submitted inputs and their output
func (m Model) Entries() []Entry {
	return m.entries
}

// Totals returns the statistics summed over all inputs
func (m Model) Totals() kaleido.Stats {
	return m.totals
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.history = append(m.history, line)
			m.histPos = len(m.history)
			m.input.Reset()
			return m, m.parse(line)

		case tea.KeyUp:
			if m.histPos > 0 {
				m.histPos--
				m.input.SetValue(m.history[m.histPos])
				m.input.CursorEnd()
			}
			return m, nil

		case tea.KeyDown:
			if m.histPos < len(m.history)-1 {
				m.histPos++
				m.input.SetValue(m.history[m.histPos])
				m.input.CursorEnd()
			} else {
				m.histPos = len(m.history)
				m.input.Reset()
			}
			return m, nil

		case tea.KeyPgUp, tea.KeyPgDown:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2 // Title + blank line
		footerHeight := 4 // Input + status bar + help
		viewportHeight := msg.Height - headerHeight - footerHeight - 2
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = viewportHeight
		}
		m.input.Width = msg.Width - 10
		m.refresh()

	case parsedMsg:
		m.entries = append(m.entries, msg.entry)
		m.totals.Units += msg.stats.Units
		m.totals.Definitions += msg.stats.Definitions
		m.totals.Externs += msg.stats.Externs
		m.totals.TopLevel += msg.stats.TopLevel
		m.totals.Diagnostics += msg.stats.Diagnostics
		m.refresh()
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// parse runs the engine off the update loop; units and diagnostics are
// rendered in source order by one emit writer
func (m Model) parse(line string) tea.Cmd {
	engine, format := m.engine, m.format
	return func() tea.Msg {
		var buf bytes.Buffer
		w := emit.New(&buf, &buf, emit.Options{Format: format, Color: true})
		stats, err := engine.Run(context.Background(), strings.NewReader(line), w)
		return parsedMsg{
			entry: Entry{Input: line, Output: buf.String(), Err: err},
			stats: stats,
		}
	}
}

// refresh renders the entries into the viewport
func (m *Model) refresh() {
	if !m.ready {
		return
	}

	var b strings.Builder
	for _, e := range m.entries {
		b.WriteString(PromptStyle.Render("ready> "))
		b.WriteString(InputEchoStyle.Render(e.Input))
		b.WriteByte('\n')
		b.WriteString(e.Output)
		if e.Err != nil {
			b.WriteString(ErrorStyle.Render("error: " + e.Err.Error()))
			b.WriteByte('\n')
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	title := TitleStyle.Render("Kaleido REPL") + " " + SubtitleStyle.Render("v"+version.Platform)
	status := StatusBarStyle.Render(fmt.Sprintf("units %d  defs %d  externs %d  exprs %d  errors %d",
		m.totals.Units, m.totals.Definitions, m.totals.Externs, m.totals.TopLevel, m.totals.Diagnostics))
	help := HelpStyle.Render("enter parse • ↑/↓ history • pgup/pgdn scroll • esc quit")

	return strings.Join([]string{
		title,
		"",
		PanelStyle.Width(m.width - 2).Render(m.viewport.View()),
		m.input.View(),
		status,
		help,
	}, "\n")
}

// Run starts the REPL on the terminal
func Run(engine *kaleido.Engine, format emit.Format) error {
	p := tea.NewProgram(New(engine, format), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
