// Package fixtures serves a fake todos API with the same query contract
// as the real one. Tests and `tada fixtures` use it.
package fixtures

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
)

// Server is an in-memory todos API.
type Server struct {
	e *echo.Echo

	mu            sync.RWMutex
	todos         []model.Todo
	status        int
	delay         time.Duration
	ignoreFilters bool
	lastQuery     url.Values

	hits atomic.Int64
}

type Option func(*Server)

// WithStatus makes every request fail with code.
func WithStatus(code int) Option {
	return func(s *Server) { s.status = code }
}

// WithDelay holds each response for d, or until the client goes away.
func WithDelay(d time.Duration) Option {
	return func(s *Server) { s.delay = d }
}

// IgnoringFilters answers every request with the full dataset.
func IgnoringFilters() Option {
	return func(s *Server) { s.ignoreFilters = true }
}

// WithLogger logs each request.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.e.Use(requestLogger(l))
	}
}

func New(todos []model.Todo, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{e: e, todos: append([]model.Todo(nil), todos...)}
	for _, opt := range opts {
		opt(s)
	}
	e.GET("/todos", s.listTodos)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.e.ServeHTTP(w, r) }

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error { return s.e.Start(addr) }

func (s *Server) Close() error { return s.e.Close() }

func (s *Server) SetStatus(code int) {
	s.mu.Lock()
	s.status = code
	s.mu.Unlock()
}

func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

func (s *Server) SetTodos(todos []model.Todo) {
	s.mu.Lock()
	s.todos = append([]model.Todo(nil), todos...)
	s.mu.Unlock()
}

// Hits counts requests served, including failed ones.
func (s *Server) Hits() int64 { return s.hits.Load() }

// LastQuery is the query string of the most recent request.
func (s *Server) LastQuery() url.Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastQuery
}

func (s *Server) listTodos(c echo.Context) error {
	s.hits.Add(1)
	s.mu.Lock()
	s.lastQuery = c.QueryParams()
	status, delay, ignore := s.status, s.delay, s.ignoreFilters
	todos := append([]model.Todo(nil), s.todos...)
	s.mu.Unlock()

	if delay > 0 {
		ctx := c.Request().Context()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if status != 0 {
		return c.JSON(status, map[string]string{"error": http.StatusText(status)})
	}
	if ignore {
		return c.JSON(http.StatusOK, todos)
	}

	userID, completed, err := parseQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if userID != nil && t.AssigneeID != *userID {
			continue
		}
		if completed != nil && t.Completed != *completed {
			continue
		}
		out = append(out, t)
	}
	return c.JSON(http.StatusOK, out)
}

func parseQuery(c echo.Context) (*int, *bool, error) {
	var (
		userID    *int
		completed *bool
	)
	if raw := c.QueryParam("userId"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("userId: not a number: %s", raw)
		}
		userID = &n
	}
	if raw := c.QueryParam("completed"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("completed: not a boolean: %s", raw)
		}
		completed = &b
	}
	return userID, completed, nil
}

func requestLogger(l *log.Logger) echo.MiddlewareFunc {
	if l == nil {
		l = logging.Discard()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			l.Info("request",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", c.Response().Status,
				"request_id", c.Request().Header.Get("X-Request-ID"),
				"elapsed", time.Since(start).Round(time.Millisecond),
			)
			return nil
		}
	}
}

// Generate builds n todos spread evenly over users, like the public
// placeholder API: consecutive ids per user, every third one completed.
func Generate(n, users int) []model.Todo {
	if users <= 0 {
		users = 1
	}
	per := n / users
	if per == 0 {
		per = 1
	}
	out := make([]model.Todo, 0, n)
	for i := 1; i <= n; i++ {
		user := (i-1)/per + 1
		if user > users {
			user = users
		}
		out = append(out, model.Todo{
			ID:         i,
			Title:      fmt.Sprintf("task %d for user %d", i, user),
			Completed:  i%3 == 0,
			AssigneeID: user,
		})
	}
	return out
}
