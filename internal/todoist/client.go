// Package todoist is a thin client for the Todoist REST and Sync APIs plus
// the date helpers and text rendering used by the assistant tools.
package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the Todoist REST API used for tasks and projects.
	DefaultBaseURL = "https://api.todoist.com/rest/v2"
	// DefaultSyncURL is the Sync API, used only for completed-task history.
	DefaultSyncURL = "https://api.todoist.com/sync/v9"

	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 10 << 20
)

// APIError is returned when Todoist answers with an unexpected status.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("todoist: status %d", e.Status)
	}
	return fmt.Sprintf("todoist: status %d: %s", e.Status, body)
}

// Client talks to the Todoist API with a bearer token.
type Client struct {
	token   string
	baseURL string
	syncURL string
	http    *http.Client
}

// Options configures a Client. Zero values fall back to the public endpoints.
type Options struct {
	BaseURL    string
	SyncURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewClient creates a new Todoist client.
func NewClient(token string, opts Options) *Client {
	c := &Client{
		token:   token,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		syncURL: strings.TrimRight(opts.SyncURL, "/"),
		http:    opts.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.syncURL == "" {
		c.syncURL = DefaultSyncURL
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	return c
}

// ListTasks returns the active tasks matching a Todoist filter query.
// An empty filter lists every active task.
func (c *Client) ListTasks(ctx context.Context, filter string) ([]Task, error) {
	endpoint := c.baseURL + "/tasks"
	if filter != "" {
		endpoint += "?" + url.Values{"filter": {filter}}.Encode()
	}

	var tasks []Task
	if err := c.do(ctx, http.MethodGet, endpoint, nil, http.StatusOK, &tasks); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// AddTask creates a task.
func (c *Client) AddTask(ctx context.Context, t NewTask) (*Task, error) {
	if strings.TrimSpace(t.Content) == "" {
		return nil, fmt.Errorf("add task: content is required")
	}

	var task Task
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/tasks", t, http.StatusOK, &task); err != nil {
		return nil, fmt.Errorf("add task: %w", err)
	}
	return &task, nil
}

// CloseTask marks a task as completed.
func (c *Client) CloseTask(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("close task: id is required")
	}
	endpoint := c.baseURL + "/tasks/" + url.PathEscape(id) + "/close"
	if err := c.do(ctx, http.MethodPost, endpoint, nil, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("close task %s: %w", id, err)
	}
	return nil
}

// ListCompleted returns recently completed tasks, newest first.
func (c *Client) ListCompleted(ctx context.Context, limit int) ([]CompletedTask, error) {
	if limit <= 0 {
		limit = 20
	}
	endpoint := c.syncURL + "/completed/get_all?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()

	var resp struct {
		Items []CompletedTask `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, http.StatusOK, &resp); err != nil {
		return nil, fmt.Errorf("list completed: %w", err)
	}
	return resp.Items, nil
}

// do sends a request and decodes the JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, endpoint string, payload any, want int, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != want {
		return &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
