package model

import "testing"

func intp(v int) *int { return &v }

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"all", StatusAll, false},
		{"Completed", StatusCompleted, false},
		{" active ", StatusActive, false},
		{"done", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q): got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSort(t *testing.T) {
	if s, err := ParseSort("DESC"); err != nil || s != SortDesc {
		t.Errorf("ParseSort(DESC): got %q, %v", s, err)
	}
	if _, err := ParseSort("newest"); err == nil {
		t.Error("ParseSort(newest): expected error")
	}
}

func TestFilterQuery(t *testing.T) {
	tests := []struct {
		name          string
		filter        Filter
		wantUser      *int
		wantCompleted *bool
	}{
		{"defaults", DefaultFilter(), nil, nil},
		{"user only", DefaultFilter().WithAssignee(intp(3)), intp(3), nil},
		{"completed", DefaultFilter().WithStatus(StatusCompleted), nil, boolp(true)},
		{"active", DefaultFilter().WithStatus(StatusActive), nil, boolp(false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.filter.Query()
			if !eqIntPtr(q.UserID, tt.wantUser) {
				t.Errorf("UserID: got %v, want %v", q.UserID, tt.wantUser)
			}
			if (q.Completed == nil) != (tt.wantCompleted == nil) ||
				(q.Completed != nil && *q.Completed != *tt.wantCompleted) {
				t.Errorf("Completed: got %v, want %v", q.Completed, tt.wantCompleted)
			}
		})
	}
}

func TestFilterEqualByValue(t *testing.T) {
	a := DefaultFilter().WithAssignee(intp(4))
	b := DefaultFilter().WithAssignee(intp(4))
	if !a.Equal(b) {
		t.Error("filters with equal assignee values should be equal")
	}
	if a.Equal(DefaultFilter()) {
		t.Error("assignee 4 should differ from all users")
	}
	if DefaultFilter().Equal(DefaultFilter().WithSort(SortAsc)) {
		t.Error("sort change should make filters differ")
	}
}

func TestFilterWithDoesNotMutate(t *testing.T) {
	id := 2
	f := DefaultFilter().WithAssignee(&id)
	id = 9
	if *f.AssigneeID != 2 {
		t.Errorf("WithAssignee kept caller pointer: got %d", *f.AssigneeID)
	}
	g := f.WithStatus(StatusActive)
	if f.Status != StatusAll || g.Status != StatusActive {
		t.Errorf("WithStatus mutated the receiver: f=%s g=%s", f, g)
	}
}

func TestAssigneeOptions(t *testing.T) {
	opts := AssigneeOptions(10)
	if len(opts) != 11 {
		t.Fatalf("len: got %d, want 11", len(opts))
	}
	if opts[0].Value != nil {
		t.Error("first option should be all users (nil)")
	}
	if *opts[10].Value != 10 {
		t.Errorf("last option: got %d, want 10", *opts[10].Value)
	}
}

func TestResultVariants(t *testing.T) {
	if r := Loading(); !r.IsLoading() || r.Items() != nil || r.Message() != "" {
		t.Errorf("Loading: unexpected %+v", r)
	}
	f := Failed("boom")
	if f.Kind() != KindFailed || f.Message() != "boom" || len(f.Items()) != 0 {
		t.Errorf("Failed: unexpected %+v", f)
	}
	s := Succeeded(nil)
	if s.Kind() != KindSucceeded || s.Items() == nil || len(s.Items()) != 0 {
		t.Errorf("Succeeded(nil): unexpected %+v", s)
	}
}

func boolp(v bool) *bool { return &v }

func eqIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
