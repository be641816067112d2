// Package fetch turns a Filter into a fetch Result.
//
// A Hook keeps one outstanding request at a time. Applying a new filter
// cancels the previous request before the next one starts, and Resolve
// refuses results whose request was cancelled, so only the most recent
// filter's result is ever stored. A Hook is driven from a single
// goroutine (the Bubble Tea update loop); the commands it returns run
// elsewhere but never touch the Hook.
package fetch

import (
	"cmp"
	"context"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
)

// Source loads todos for a server-side query.
type Source interface {
	Todos(ctx context.Context, q model.Query) ([]model.Todo, error)
}

// ResultMsg carries one request's outcome back to the update loop.
type ResultMsg struct {
	ctx    context.Context
	filter model.Filter
	items  []model.Todo
	err    error
}

// Filter is the filter the request was issued for.
func (m ResultMsg) Filter() model.Filter { return m.filter }

// Err is the raw request error, if any.
func (m ResultMsg) Err() error { return m.err }

type Hook struct {
	src     Source
	timeout time.Duration
	online  func() bool
	logger  *log.Logger

	cancel  context.CancelFunc
	filter  model.Filter
	started bool
	state   model.Result
}

type Option func(*Hook)

// WithTimeout bounds each request. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(h *Hook) { h.timeout = d }
}

// WithConnectivity replaces the connectivity probe used to tell
// "offline" apart from other failures.
func WithConnectivity(online func() bool) Option {
	return func(h *Hook) { h.online = online }
}

func WithLogger(l *log.Logger) Option {
	return func(h *Hook) { h.logger = l }
}

func New(src Source, opts ...Option) *Hook {
	h := &Hook{
		src:    src,
		online: Online,
		state:  model.Loading(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logging.Discard()
	}
	return h
}

// State is the current Result.
func (h *Hook) State() model.Result { return h.state }

// Filter is the last applied filter.
func (h *Hook) Filter() model.Filter { return h.filter }

// Pending reports whether a request is outstanding.
func (h *Hook) Pending() bool { return h.cancel != nil }

// Apply starts a fetch for f and returns the command that performs it.
// It returns nil when f equals the last applied filter.
func (h *Hook) Apply(f model.Filter) tea.Cmd {
	return h.apply(context.Background(), f)
}

func (h *Hook) apply(parent context.Context, f model.Filter) tea.Cmd {
	if h.started && h.filter.Equal(f) {
		return nil
	}
	if h.cancel != nil {
		h.logger.Debug("cancel superseded fetch", "filter", h.filter)
		h.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	h.cancel = cancel
	h.filter = f
	h.started = true
	h.state = model.Loading()

	q := f.Query()
	src, timeout := h.src, h.timeout
	h.logger.Info("fetching todos", "filter", f)

	return func() tea.Msg {
		rctx := ctx
		if timeout > 0 {
			var stop context.CancelFunc
			rctx, stop = context.WithTimeout(ctx, timeout)
			defer stop()
		}
		items, err := src.Todos(rctx, q)
		return ResultMsg{ctx: ctx, filter: f, items: items, err: err}
	}
}

// Resolve stores msg's outcome and reports whether state changed.
// Results of cancelled requests are dropped. A source that reports
// cancellation on its own, while its request is live, counts as a failure.
func (h *Hook) Resolve(msg ResultMsg) bool {
	if msg.ctx == nil || msg.ctx.Err() != nil {
		h.logger.Debug("drop cancelled fetch", "filter", msg.filter)
		return false
	}
	if msg.err != nil {
		text, cancelled := Classify(msg.err, h.online)
		if cancelled {
			// The request itself is still live, so no caller asked for this.
			text = MsgUnknown
		}
		h.logger.Error("fetch todos", "filter", msg.filter, "err", msg.err)
		h.state = model.Failed(text)
	} else {
		items := Arrange(msg.items, msg.filter)
		h.logger.Info("fetched todos", "filter", msg.filter, "count", len(items))
		h.state = model.Succeeded(items)
	}
	h.release()
	return true
}

// Close cancels any outstanding request. Call it when the owner goes away.
func (h *Hook) Close() {
	h.release()
}

func (h *Hook) release() {
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// Load runs a fetch for f to completion on the calling goroutine.
// Cancelling ctx aborts the request and leaves the state Loading.
func (h *Hook) Load(ctx context.Context, f model.Filter) model.Result {
	h.started = false
	cmd := h.apply(ctx, f)
	if msg, ok := cmd().(ResultMsg); ok {
		h.Resolve(msg)
	}
	return h.state
}

// Arrange applies the client-side status filter to items and orders them
// by id: descending for SortDesc, ascending otherwise. items is not modified.
func Arrange(items []model.Todo, f model.Filter) []model.Todo {
	out := make([]model.Todo, 0, len(items))
	for _, t := range items {
		if f.Status.Matches(t) {
			out = append(out, t)
		}
	}
	if f.Sort == model.SortDesc {
		slices.SortStableFunc(out, func(a, b model.Todo) int { return cmp.Compare(b.ID, a.ID) })
	} else {
		slices.SortStableFunc(out, func(a, b model.Todo) int { return cmp.Compare(a.ID, b.ID) })
	}
	return out
}
