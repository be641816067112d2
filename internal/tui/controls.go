package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

type control int

const (
	controlAssignee control = iota
	controlStatus
	controlSort
	numControls
)

// Controls is the filter panel. Its filter is only a mirror that drives
// the selected look; the root model owns the real one.
type Controls struct {
	mirror  model.Filter
	users   []model.Option[*int]
	focused control
}

func NewControls(f model.Filter, users int) Controls {
	return Controls{mirror: f, users: model.AssigneeOptions(users)}
}

// Focus moves focus by delta controls, wrapping around.
func (c Controls) Focus(delta int) Controls {
	n := int(numControls)
	c.focused = control(((int(c.focused)+delta)%n + n) % n)
	return c
}

// Step moves the focused control's selection by delta and returns the
// new filter: the mirror with only that control's key replaced.
func (c Controls) Step(delta int) (Controls, model.Filter) {
	switch c.focused {
	case controlAssignee:
		i := step(indexOfAssignee(c.users, c.mirror.AssigneeID), delta, len(c.users))
		c.mirror = c.mirror.WithAssignee(c.users[i].Value)
	case controlStatus:
		i := step(indexOf(model.StatusOptions, c.mirror.Status), delta, len(model.StatusOptions))
		c.mirror = c.mirror.WithStatus(model.StatusOptions[i].Value)
	case controlSort:
		i := step(indexOf(model.SortOptions, c.mirror.Sort), delta, len(model.SortOptions))
		c.mirror = c.mirror.WithSort(model.SortOptions[i].Value)
	}
	return c, c.mirror
}

func step(i, delta, n int) int {
	if n == 0 {
		return 0
	}
	return ((i+delta)%n + n) % n
}

func indexOf[T comparable](opts []model.Option[T], v T) int {
	for i, o := range opts {
		if o.Value == v {
			return i
		}
	}
	return 0
}

func indexOfAssignee(opts []model.Option[*int], id *int) int {
	for i, o := range opts {
		if o.Value == nil && id == nil || o.Value != nil && id != nil && *o.Value == *id {
			return i
		}
	}
	return 0
}

func (c Controls) View() string {
	t := ui.Current()

	label := func(ctl control, text string) string {
		s := fmt.Sprintf("%-7s", text)
		if c.focused == ctl {
			return t.Accent.Render("› " + s)
		}
		return t.Muted.Render("  " + s)
	}

	users := c.users[indexOfAssignee(c.users, c.mirror.AssigneeID)].Label
	userRow := label(controlAssignee, "User") + " ‹ " + t.Title.Render(users) + " ›"

	segs := make([]string, 0, len(model.StatusOptions))
	for _, o := range model.StatusOptions {
		if o.Value == c.mirror.Status {
			segs = append(segs, t.Selected.Render(" "+o.Label+" "))
		} else {
			segs = append(segs, " "+o.Label+" ")
		}
	}
	statusRow := label(controlStatus, "Status") + " " + strings.Join(segs, "│")

	radios := make([]string, 0, len(model.SortOptions))
	for _, o := range model.SortOptions {
		mark := t.RadioOff
		if o.Value == c.mirror.Sort {
			mark = t.Accent.Render(t.RadioOn)
		}
		radios = append(radios, mark+" "+o.Label)
	}
	sortRow := label(controlSort, "Sort") + " " + strings.Join(radios, "  ")

	return lipgloss.JoinVertical(lipgloss.Left, userRow, statusRow, sortRow)
}
