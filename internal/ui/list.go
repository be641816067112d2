package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/model"
)

// View is one of the four mutually exclusive list views.
type View int

const (
	ViewLoading View = iota
	ViewError
	ViewEmpty
	ViewList
)

func (v View) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewError:
		return "error"
	case ViewEmpty:
		return "empty"
	}
	return "list"
}

// ViewFor picks the view for a result.
func ViewFor(res model.Result) View {
	switch res.Kind() {
	case model.KindLoading:
		return ViewLoading
	case model.KindFailed:
		return ViewError
	}
	if len(res.Items()) == 0 {
		return ViewEmpty
	}
	return ViewList
}

// ListOptions tweak RenderList for the surface it draws on.
type ListOptions struct {
	Width   int    // available columns; cards wrap into a grid
	Spinner string // current spinner frame for the loading view
	Retry   string // retry hint under the error message; empty hides it
}

// RenderList renders exactly one of the loading, error, empty or
// populated views for res.
func RenderList(res model.Result, opt ListOptions) string {
	t := Current()
	switch ViewFor(res) {
	case ViewLoading:
		sp := opt.Spinner
		if sp == "" {
			sp = "…"
		}
		return stateBox(opt.Width, t.Accent.Render(sp)+" Loading tasks...")

	case ViewError:
		lines := []string{
			t.Error.Render(t.SymError + " Failed to load"),
			res.Message(),
		}
		if opt.Retry != "" {
			lines = append(lines, "", t.Muted.Render(opt.Retry))
		}
		return stateBox(opt.Width, lines...)

	case ViewEmpty:
		return stateBox(opt.Width,
			t.Muted.Render(t.SymEmpty)+" "+t.Title.Render("No tasks found"),
			t.Muted.Render("Try changing the filters"),
		)
	}

	items := res.Items()
	done := 0
	for _, it := range items {
		if it.Completed {
			done++
		}
	}
	header := fmt.Sprintf("%s %s   %s",
		t.Title.Render("Tasks found:"),
		t.Accent.Render(fmt.Sprint(len(items))),
		t.Muted.Render(ProgressBar(done, len(items), 20)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, "", grid(items, opt.Width))
}

func stateBox(width int, lines ...string) string {
	s := lipgloss.NewStyle().Padding(1, 2)
	if width > 0 {
		s = s.Width(width).Align(lipgloss.Center)
	}
	return s.Render(strings.Join(lines, "\n"))
}

// Columns is how many cards fit side by side in width.
func Columns(width int) int {
	n := (width + 1) / (CardWidth + 1)
	if n < 1 {
		n = 1
	}
	return n
}

func grid(items []model.Todo, width int) string {
	cols := Columns(width)
	rows := make([]string, 0, (len(items)+cols-1)/cols)
	for i := 0; i < len(items); i += cols {
		end := min(i+cols, len(items))
		cells := make([]string, 0, 2*(end-i))
		for j, td := range items[i:end] {
			if j > 0 {
				cells = append(cells, " ")
			}
			cells = append(cells, RenderCard(td))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}
