package ui

import "github.com/charmbracelet/lipgloss"

// ScrollThreshold is how many rows the list must scroll before the
// header switches to its compact look.
const ScrollThreshold = 2

// Scrolled reports whether offset is past ScrollThreshold.
func Scrolled(offset int) bool { return offset > ScrollThreshold }

// RenderHeader draws the app title. The scrolled variant is a single line.
func RenderHeader(scrolled bool, width int) string {
	t := Current()
	title := t.Title.Render("✦ tada")
	if scrolled {
		return lipgloss.NewStyle().
			Width(width).
			BorderStyle(t.Border).
			BorderBottom(true).
			BorderForeground(t.BorderColor).
			Render(title + t.Muted.Render("  remote task viewer"))
	}
	sub := t.Subtitle.Render("Tasks from your todo API, filtered and sorted")
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 0, 0, 0).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, sub))
}
