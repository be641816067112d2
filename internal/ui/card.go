package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/model"
)

// CardWidth is the outer width of one card, border included.
const CardWidth = 36

// RenderCard draws one todo: status badge, id, assignee, title and a
// status line. It has no state and performs no I/O.
func RenderCard(td model.Todo) string {
	t := Current()

	badge := t.Pending.Render("[In progress]")
	indicator := t.Pending.Render(t.SymPending + " Needs doing")
	if td.Completed {
		badge = t.Success.Render("[Done]")
		indicator = t.Success.Render(t.SymDone + " Task completed")
	}
	meta := t.Muted.Render(fmt.Sprintf("#%d · User %d", td.ID, td.AssigneeID))

	inner := CardWidth - 4 // border + padding
	head := lipgloss.JoinHorizontal(lipgloss.Top, badge, " ", meta)
	title := t.Title.Width(inner).Render(td.Title)

	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Width(CardWidth - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, head, title, indicator))
}
