package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/Makepad-fr/tada/internal/api"
)

// User-facing messages, one per failure class.
const (
	MsgTimeout  = "request timed out"
	MsgServer   = "server error, try later"
	MsgNotFound = "data not found"
	MsgInvalid  = "invalid request"
	MsgOffline  = "no internet connection"
	MsgUnknown  = "error occurred while loading tasks"
)

// Classify maps a fetch error to its user-facing message. Cancelled
// reports a deliberate abort, which is not an error and has no message.
// online is consulted only when nothing more specific matched.
func Classify(err error, online func() bool) (msg string, cancelled bool) {
	if errors.Is(err, context.Canceled) {
		return "", true
	}
	if isTimeout(err) {
		return MsgTimeout, false
	}
	if code, ok := api.StatusCode(err); ok {
		switch {
		case code >= http.StatusInternalServerError:
			return MsgServer, false
		case code == http.StatusNotFound:
			return MsgNotFound, false
		case code >= http.StatusBadRequest:
			return MsgInvalid, false
		}
		return MsgUnknown, false
	}
	if online != nil && !online() {
		return MsgOffline, false
	}
	return MsgUnknown, false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Online reports whether any non-loopback interface is up.
func Online() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return true
	}
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagUp != 0 && ifc.Flags&net.FlagLoopback == 0 {
			return true
		}
	}
	return false
}
