package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Makepad-fr/tada/internal/fixtures"
	"github.com/Makepad-fr/tada/internal/model"
)

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func newClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"ftp://example.com", "::nope", "example.com"} {
		if _, err := New(raw); err == nil {
			t.Errorf("New(%q): expected error", raw)
		}
	}
}

func TestTodosQuery(t *testing.T) {
	fx := fixtures.New(fixtures.Generate(40, 4))
	c := newClient(t, fx)

	todos, err := c.Todos(context.Background(), model.Query{UserID: intp(2), Completed: boolp(false)})
	if err != nil {
		t.Fatalf("Todos: %v", err)
	}
	if len(todos) == 0 {
		t.Fatal("expected todos")
	}
	for _, td := range todos {
		if td.AssigneeID != 2 || td.Completed {
			t.Errorf("unexpected todo %+v", td)
		}
	}
	q := fx.LastQuery()
	if q.Get("userId") != "2" || q.Get("completed") != "false" {
		t.Errorf("query: got %v", q)
	}
}

func TestTodosOmitsUnsetParams(t *testing.T) {
	fx := fixtures.New(fixtures.Generate(3, 1))
	c := newClient(t, fx)
	if _, err := c.Todos(context.Background(), model.Query{}); err != nil {
		t.Fatalf("Todos: %v", err)
	}
	if len(fx.LastQuery()) != 0 {
		t.Errorf("query: got %v, want empty", fx.LastQuery())
	}
}

func TestTodosHeaders(t *testing.T) {
	var got http.Header
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	c := newClient(t, h, WithToken("abc"))
	todos, err := c.Todos(context.Background(), model.Query{})
	if err != nil {
		t.Fatalf("Todos: %v", err)
	}
	if todos == nil || len(todos) != 0 {
		t.Errorf("todos: got %v, want empty non-nil", todos)
	}
	if got.Get("Authorization") != "Bearer abc" {
		t.Errorf("Authorization: got %q", got.Get("Authorization"))
	}
	if got.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestTodosStatusError(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusBadRequest, http.StatusInternalServerError} {
		c := newClient(t, fixtures.New(nil, fixtures.WithStatus(code)))
		_, err := c.Todos(context.Background(), model.Query{})
		got, ok := StatusCode(err)
		if !ok || got != code {
			t.Errorf("StatusCode: got %d (%v), want %d; err=%v", got, ok, code, err)
		}
	}
}

func TestTodosInvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"object", `{"id":1}`},
		{"missing field", `[{"id":1,"title":"x","completed":false}]`},
		{"wrong type", `[{"id":"1","title":"x","completed":false,"userId":1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			c := newClient(t, h)
			_, err := c.Todos(context.Background(), model.Query{})
			if !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("err: got %v, want ErrInvalidPayload", err)
			}
		})
	}
}

func TestTodosCancelled(t *testing.T) {
	fx := fixtures.New(fixtures.Generate(3, 1), fixtures.WithDelay(2*time.Second))
	c := newClient(t, fx)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := c.Todos(ctx, model.Query{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err: got %v, want context.Canceled", err)
	}
}

func TestTodosDeadline(t *testing.T) {
	fx := fixtures.New(fixtures.Generate(3, 1), fixtures.WithDelay(2*time.Second))
	c := newClient(t, fx)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Todos(ctx, model.Query{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err: got %v, want context.DeadlineExceeded", err)
	}
}

func TestTodosTraced(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	c := newClient(t, fixtures.New(fixtures.Generate(3, 1)), WithTracerProvider(tp))
	if _, err := c.Todos(context.Background(), model.Query{}); err != nil {
		t.Fatalf("Todos: %v", err)
	}
	if n := len(rec.Ended()); n == 0 {
		t.Error("expected a client span")
	}
}
