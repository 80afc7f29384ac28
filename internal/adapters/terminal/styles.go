// Package terminal renders boards as tables for the command line.
package terminal

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the renderers.
type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
	Rank   lipgloss.Style
	Muted  lipgloss.Style
	Border lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a017")).
			Bold(true),

		Header: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1),

		Cell: lipgloss.NewStyle().
			Padding(0, 1),

		Rank: lipgloss.NewStyle().
			Padding(0, 1).
			Align(lipgloss.Right),

		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080")).
			Italic(true),

		Border: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4f81bd")),
	}
}
