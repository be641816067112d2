// Package api talks to the remote todos resource.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
)

const (
	todosPath    = "/todos"
	maxBodyBytes = 8 << 20
)

// Client is a read-only client for GET /todos.
type Client struct {
	base   *url.URL
	http   *http.Client
	token  string
	logger *log.Logger
	tp     trace.TracerProvider
}

type Option func(*Client)

// WithHTTPClient replaces the default client. Its transport gets wrapped
// for tracing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tp = tp }
}

// New builds a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q: scheme must be http or https", baseURL)
	}
	c := &Client{base: u}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	var topts []otelhttp.Option
	if c.tp != nil {
		topts = append(topts, otelhttp.WithTracerProvider(c.tp))
	}
	hc := *c.http
	hc.Transport = otelhttp.NewTransport(base, topts...)
	c.http = &hc
	return c, nil
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string { return c.base.String() }

// Todos fetches todos matching q. The request is bound to ctx; cancelling
// ctx aborts it and the returned error wraps ctx.Err().
func (c *Client) Todos(ctx context.Context, q model.Query) ([]model.Todo, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + todosPath
	u.RawQuery = encodeQuery(q).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get todos: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("todos response",
		"request_id", reqID,
		"status", resp.StatusCode,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{Code: resp.StatusCode, URL: u.String()}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return decodeTodos(body)
}

func encodeQuery(q model.Query) url.Values {
	v := url.Values{}
	if q.UserID != nil {
		v.Set("userId", strconv.Itoa(*q.UserID))
	}
	if q.Completed != nil {
		v.Set("completed", strconv.FormatBool(*q.Completed))
	}
	return v
}

func decodeTodos(body []byte) ([]model.Todo, error) {
	if err := validatePayload(body); err != nil {
		return nil, err
	}
	var todos []model.Todo
	if err := sonic.Unmarshal(body, &todos); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}
