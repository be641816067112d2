package tui

import (
	"strings"
	"testing"

	"github.com/Makepad-fr/tada/internal/model"
)

func TestControlsAssigneeCycle(t *testing.T) {
	c := NewControls(model.DefaultFilter(), 3)

	c, f := c.Step(1)
	if f.AssigneeID == nil || *f.AssigneeID != 1 {
		t.Fatalf("step right: got %s, want user 1", f)
	}
	c, f = c.Step(-1)
	if f.AssigneeID != nil {
		t.Errorf("back to the placeholder should mean all users (nil), got %d", *f.AssigneeID)
	}
	_, f = c.Step(-1)
	if f.AssigneeID == nil || *f.AssigneeID != 3 {
		t.Errorf("wrap left: got %s, want user 3", f)
	}
}

func TestControlsChangeOnlyFocusedKey(t *testing.T) {
	start := model.DefaultFilter().WithSort(model.SortAsc)
	c := NewControls(start, 5).Focus(1)

	c, f := c.Step(1)
	if f.Status != model.StatusCompleted {
		t.Errorf("status: got %s, want completed", f.Status)
	}
	if f.Sort != model.SortAsc || f.AssigneeID != nil {
		t.Errorf("other keys changed: %s", f)
	}

	c = c.Focus(1)
	_, f = c.Step(1)
	if f.Sort != model.SortDesc || f.Status != model.StatusCompleted {
		t.Errorf("sort step: got %s", f)
	}
}

func TestControlsFocusWraps(t *testing.T) {
	c := NewControls(model.DefaultFilter(), 1)
	if c.Focus(-1).focused != controlSort {
		t.Error("focus before the first control should wrap to the last")
	}
	if c.Focus(3).focused != controlAssignee {
		t.Error("focus past the last control should wrap to the first")
	}
}

func TestControlsView(t *testing.T) {
	id := 2
	c := NewControls(model.DefaultFilter().WithAssignee(&id).WithStatus(model.StatusActive), 4)
	v := c.View()
	for _, w := range []string{"User 2", "Active", "Newest first", "Oldest first"} {
		if !strings.Contains(v, w) {
			t.Errorf("view missing %q:\n%s", w, v)
		}
	}
}
