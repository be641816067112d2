package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Makepad-fr/tada/internal/api"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	online := func() bool { return true }
	offline := func() bool { return false }
	status := func(code int) error {
		return fmt.Errorf("get todos: %w", &api.StatusError{Code: code})
	}

	tests := []struct {
		name          string
		err           error
		online        func() bool
		want          string
		wantCancelled bool
	}{
		{"cancelled", fmt.Errorf("get todos: %w", context.Canceled), offline, "", true},
		{"deadline", context.DeadlineExceeded, online, MsgTimeout, false},
		{"net timeout", fmt.Errorf("get todos: %w", timeoutErr{}), online, MsgTimeout, false},
		{"500", status(http.StatusInternalServerError), online, MsgServer, false},
		{"503 while offline", status(http.StatusServiceUnavailable), offline, MsgServer, false},
		{"404", status(http.StatusNotFound), online, MsgNotFound, false},
		{"400", status(http.StatusBadRequest), online, MsgInvalid, false},
		{"429", status(http.StatusTooManyRequests), online, MsgInvalid, false},
		{"offline", errors.New("dial tcp: no route to host"), offline, MsgOffline, false},
		{"unknown", errors.New("boom"), online, MsgUnknown, false},
		{"payload", api.ErrInvalidPayload, online, MsgUnknown, false},
		{"nil probe", errors.New("boom"), nil, MsgUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cancelled := Classify(tt.err, tt.online)
			if got != tt.want || cancelled != tt.wantCancelled {
				t.Errorf("Classify(%v): got (%q, %v), want (%q, %v)",
					tt.err, got, cancelled, tt.want, tt.wantCancelled)
			}
		})
	}
}
