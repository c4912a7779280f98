// Package style provides consistent terminal styling using Lipgloss.
package style

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// plain is true when stdout is not a terminal; rendering is skipped then
// so piped output stays clean.
var plain = !term.IsTerminal(int(os.Stdout.Fd()))

var (
	// Success style for positive outcomes
	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10")). // Green
		Bold(true)

	// Warning style for cautionary messages
	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("11")). // Yellow
		Bold(true)

	// Error style for failures
	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")). // Red
		Bold(true)

	// Dim style for secondary information
	Dim = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")) // Gray

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().
		Bold(true)

	// Section style for registry section headings
	Section = lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")). // Blue
		Bold(true)
)

// Render applies s unless stdout is piped.
func Render(s lipgloss.Style, text string) string {
	if plain {
		return text
	}
	return s.Render(text)
}

// OK returns the checkmark prefix for success messages.
func OK() string { return Render(Success, "✓") }

// Fail returns the cross prefix for failures.
func Fail() string { return Render(Error, "✗") }

// Warn returns the warning prefix.
func Warn() string { return Render(Warning, "⚠") }

// Arrow returns the action-indicator prefix.
func Arrow() string { return Render(Dim, "→") }
