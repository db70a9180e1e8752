// Package client implements a client of the tasks JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sanLimbu/taskflow/internal/rest"
)

// Client calls the tasks JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// New instantiates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Error is returned when the server responds with a non-2xx status.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// Dashboard returns the tasks matching filter plus every count.
func (c *Client) Dashboard(ctx context.Context, filter string) (rest.DashboardResponse, error) {
	var res rest.DashboardResponse

	if err := c.do(ctx, http.MethodGet, "/dashboard?"+url.Values{"filter": {filter}}.Encode(), nil, &res); err != nil {
		return rest.DashboardResponse{}, err
	}

	return res, nil
}

// Tasks returns the incomplete tasks matching filter.
func (c *Client) Tasks(ctx context.Context, filter string) ([]rest.Task, error) {
	var res rest.TasksResponse

	if err := c.do(ctx, http.MethodGet, "/tasks?"+url.Values{"filter": {filter}}.Encode(), nil, &res); err != nil {
		return nil, err
	}

	return res.Tasks, nil
}

// Create creates a task.
func (c *Client) Create(ctx context.Context, req rest.CreateTasksRequest) (rest.Task, error) {
	var res rest.CreateTasksResponse

	if err := c.do(ctx, http.MethodPost, "/tasks", req, &res); err != nil {
		return rest.Task{}, err
	}

	return res.Task, nil
}

// SetCompleted completes or reopens the task identified by id.
func (c *Client) SetCompleted(ctx context.Context, id string, completed bool) (rest.Task, error) {
	var res rest.SetCompletedResponse

	path := "/tasks/" + url.PathEscape(id) + "/completed"

	if err := c.do(ctx, http.MethodPut, path, rest.SetCompletedRequest{Completed: completed}, &res); err != nil {
		return rest.Task{}, err
	}

	return res.Task, nil
}

// Search returns the incomplete tasks matching q.
func (c *Client) Search(ctx context.Context, q string) ([]rest.Task, error) {
	var res rest.SearchTasksResponse

	if err := c.do(ctx, http.MethodGet, "/tasks/search?"+url.Values{"q": {q}}.Encode(), nil, &res); err != nil {
		return nil, err
	}

	return res.Tasks, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, target interface{}) error {
	var r io.Reader

	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("json.Encode: %w", err)
		}

		r = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("http.NewRequest: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp rest.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)

		return &Error{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("json.Decode: %w", err)
	}

	return nil
}
