package todos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Service is the remote collaborator the cache layer talks to.
// This interface is implemented by *Client and can be faked in tests.
type Service interface {
	FetchAll(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, text string) (Item, error)
	Update(ctx context.Context, id uuid.UUID, done bool) (Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Ensure Client implements Service at compile time.
var _ Service = (*Client)(nil)

// ErrNotFound is returned when an update or delete matched no row.
var ErrNotFound = errors.New("todo not found")

// Client talks to the todos GraphQL endpoint.
type Client struct {
	endpoint  *url.URL
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// Options tune the HTTP client. The zero value is usable.
type Options struct {
	Timeout   time.Duration // per request; zero uses requestTimeout
	RateLimit float64       // requests per second; zero disables limiting
}

const (
	defaultEndpoint  = "http://127.0.0.1:8080/v1/graphql"
	defaultPath      = "/v1/graphql"
	defaultUserAgent = "checklist/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client for the given GraphQL endpoint URL. A bare
// host:port is accepted and gets the default scheme and path.
func NewClient(endpoint string, opts Options) (*Client, error) {
	u, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	c := &Client{
		endpoint: u,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c, nil
}

// Endpoint returns the resolved GraphQL endpoint.
func (c *Client) Endpoint() string {
	if c == nil || c.endpoint == nil {
		return ""
	}
	return c.endpoint.String()
}

// FetchAll retrieves the whole collection.
func (c *Client) FetchAll(ctx context.Context) ([]Item, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload struct {
		Todos []Item `json:"todos"`
	}
	if err := c.do(ctx, getTodos, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Todos == nil {
		return []Item{}, nil
	}
	return payload.Todos, nil
}

// Create inserts a new item. The server assigns its id.
func (c *Client) Create(ctx context.Context, text string) (Item, error) {
	if c == nil {
		return Item{}, fmt.Errorf("client is nil")
	}
	var payload struct {
		InsertTodos returning `json:"insert_todos"`
	}
	vars := map[string]any{"text": text}
	if err := c.do(ctx, addTodo, vars, &payload); err != nil {
		return Item{}, err
	}
	item, ok := payload.InsertTodos.first()
	if !ok {
		return Item{}, fmt.Errorf("%s: empty returning set", addTodo.name)
	}
	return item, nil
}

// Update sets the done flag and returns the item as stored by the server.
func (c *Client) Update(ctx context.Context, id uuid.UUID, done bool) (Item, error) {
	if c == nil {
		return Item{}, fmt.Errorf("client is nil")
	}
	var payload struct {
		UpdateTodos returning `json:"update_todos"`
	}
	vars := map[string]any{"id": id, "done": done}
	if err := c.do(ctx, toggleTodo, vars, &payload); err != nil {
		return Item{}, err
	}
	item, ok := payload.UpdateTodos.first()
	if !ok {
		return Item{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	return item, nil
}

// Delete removes an item by id.
func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var payload struct {
		DeleteTodos returning `json:"delete_todos"`
	}
	vars := map[string]any{"id": id}
	if err := c.do(ctx, deleteTodo, vars, &payload); err != nil {
		return err
	}
	if _, ok := payload.DeleteTodos.first(); !ok {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	return nil
}

func (c *Client) do(ctx context.Context, op operation, vars map[string]any, dest any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	body, err := json.Marshal(request{
		Query:         op.query,
		OperationName: op.name,
		Variables:     vars,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("graphql %s returned status %d", op.name, resp.StatusCode)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(payload.Errors) > 0 {
		return &ResponseError{Operation: op.name, Errors: payload.Errors}
	}
	if dest == nil {
		return nil
	}
	if len(payload.Data) == 0 || string(payload.Data) == "null" {
		return fmt.Errorf("decode response: %s returned no data", op.name)
	}
	if err := json.Unmarshal(payload.Data, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseEndpoint(endpoint string) (*url.URL, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		trimmed = defaultEndpoint
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse endpoint %q: missing host", endpoint)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = defaultPath
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
