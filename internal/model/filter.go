package model

import (
	"fmt"
	"strings"
)

// Status selects todos by completion.
type Status string

const (
	StatusAll       Status = "all"
	StatusCompleted Status = "completed"
	StatusActive    Status = "active"
)

// Sort orders todos by id.
type Sort string

const (
	SortAsc  Sort = "asc"
	SortDesc Sort = "desc"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusAll, StatusCompleted, StatusActive:
		return st, nil
	}
	return "", fmt.Errorf("invalid status %q (want all|completed|active)", s)
}

func ParseSort(s string) (Sort, error) {
	switch so := Sort(strings.ToLower(strings.TrimSpace(s))); so {
	case SortAsc, SortDesc:
		return so, nil
	}
	return "", fmt.Errorf("invalid sort %q (want asc|desc)", s)
}

// Matches reports whether a todo passes the status part of a filter.
func (s Status) Matches(t Todo) bool {
	switch s {
	case StatusCompleted:
		return t.Completed
	case StatusActive:
		return !t.Completed
	}
	return true
}

// Filter is the (assignee, status, sort) triple driving a fetch.
// It is a value: every change builds a new Filter.
type Filter struct {
	AssigneeID *int
	Status     Status
	Sort       Sort
}

func DefaultFilter() Filter {
	return Filter{Status: StatusAll, Sort: SortDesc}
}

// WithAssignee returns a copy with the assignee replaced. Nil means all users.
func (f Filter) WithAssignee(id *int) Filter {
	if id != nil {
		v := *id
		id = &v
	}
	f.AssigneeID = id
	return f
}

func (f Filter) WithStatus(s Status) Filter {
	f.Status = s
	return f
}

func (f Filter) WithSort(s Sort) Filter {
	f.Sort = s
	return f
}

// Equal compares by value, including the assignee pointer's target.
func (f Filter) Equal(o Filter) bool {
	if f.Status != o.Status || f.Sort != o.Sort {
		return false
	}
	switch {
	case f.AssigneeID == nil && o.AssigneeID == nil:
		return true
	case f.AssigneeID == nil || o.AssigneeID == nil:
		return false
	}
	return *f.AssigneeID == *o.AssigneeID
}

// Query builds the server-side query: userId only when set,
// completed only when the status is not "all".
func (f Filter) Query() Query {
	var q Query
	if f.AssigneeID != nil {
		v := *f.AssigneeID
		q.UserID = &v
	}
	if f.Status != StatusAll && f.Status != "" {
		c := f.Status == StatusCompleted
		q.Completed = &c
	}
	return q
}

func (f Filter) String() string {
	user := "all"
	if f.AssigneeID != nil {
		user = fmt.Sprint(*f.AssigneeID)
	}
	return fmt.Sprintf("user=%s status=%s sort=%s", user, f.Status, f.Sort)
}

// Option is one selectable value of a control.
type Option[T any] struct {
	Label string
	Value T
}

// AssigneeOptions lists "All users" followed by users 1..n.
func AssigneeOptions(n int) []Option[*int] {
	opts := []Option[*int]{{Label: "All users", Value: nil}}
	for i := 1; i <= n; i++ {
		id := i
		opts = append(opts, Option[*int]{Label: fmt.Sprintf("User %d", i), Value: &id})
	}
	return opts
}

var StatusOptions = []Option[Status]{
	{Label: "All", Value: StatusAll},
	{Label: "Completed", Value: StatusCompleted},
	{Label: "Active", Value: StatusActive},
}

var SortOptions = []Option[Sort]{
	{Label: "Newest first", Value: SortDesc},
	{Label: "Oldest first", Value: SortAsc},
}
