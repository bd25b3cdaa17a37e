// Package remote implements the service.Service interface against a running
// nztodo server.
package remote

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"nztodo/internal/config"
	"nztodo/internal/service"
)

// APITimeout is the timeout for a single API call.
const APITimeout = 5 * time.Second

// APIError is an error response from the server. Message is the server's
// sentence, e.g. "List not found.".
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Status returns the HTTP status of the response.
func (e *APIError) Status() int {
	return e.Code
}

// Client implements service.Service over HTTP.
type Client struct {
	rest *resty.Client
}

// New creates a client for cfg.Server. cfg.Insecure disables certificate
// verification, for servers using a self-signed certificate.
func New(cfg *config.Config) (*Client, error) {
	base := strings.TrimRight(cfg.Server, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url: %q", cfg.Server)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return NewWithHTTPClient(base, &http.Client{Transport: transport}), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	rest := resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")
	return &Client{rest: rest}
}

// ListLists implements service.Service.
func (c *Client) ListLists(ctx context.Context, q service.Query) ([]service.List, error) {
	params := map[string]string{}
	if q.Skip != 0 {
		params["skip"] = strconv.Itoa(q.Skip)
	}
	if q.Limit >= 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	}
	if q.Search != "" {
		params["search"] = q.Search
	}

	var lists []service.List
	err := c.do(ctx, http.MethodGet, "/lists", func(r *resty.Request) {
		r.SetQueryParams(params)
	}, &lists)
	if err != nil {
		return nil, err
	}
	return lists, nil
}

// GetList implements service.Service.
func (c *Client) GetList(ctx context.Context, listID string) (service.List, error) {
	var l service.List
	err := c.do(ctx, http.MethodGet, "/list/{list_id}", pathParams(listID, ""), &l)
	return l, err
}

// CreateList implements service.Service.
func (c *Client) CreateList(ctx context.Context, name, description string) (string, error) {
	body := struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}{name, description}

	var resp struct {
		ID      string   `json:"id"`
		TaskIDs []string `json:"task_ids"`
	}
	err := c.do(ctx, http.MethodPost, "/lists", func(r *resty.Request) {
		r.SetBody(body)
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, listID, name string) (string, error) {
	body := struct {
		Name string `json:"name"`
	}{name}

	var id string
	err := c.do(ctx, http.MethodPost, "/list/{list_id}/tasks", func(r *resty.Request) {
		pathParams(listID, "")(r)
		r.SetBody(body)
	}, &id)
	return id, err
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, listID, taskID string) (service.Task, error) {
	var t service.Task
	err := c.do(ctx, http.MethodGet, "/list/{list_id}/task/{task_id}", pathParams(listID, taskID), &t)
	return t, err
}

// CompleteTask implements service.Service. The server answers with id and
// completed only, so Name is left empty.
func (c *Client) CompleteTask(ctx context.Context, listID, taskID string, completed bool) (service.Task, error) {
	body := struct {
		Completed bool `json:"completed"`
	}{completed}

	var t service.Task
	err := c.do(ctx, http.MethodPost, "/list/{list_id}/task/{task_id}/complete", func(r *resty.Request) {
		pathParams(listID, taskID)(r)
		r.SetBody(body)
	}, &t)
	return t, err
}

// pathParams fills the {list_id} and {task_id} placeholders; resty escapes
// the values.
func pathParams(listID, taskID string) func(*resty.Request) {
	return func(r *resty.Request) {
		r.SetPathParam("list_id", listID)
		if taskID != "" {
			r.SetPathParam("task_id", taskID)
		}
	}
}

// do runs one request under APITimeout. A 2xx JSON response is decoded into
// out; anything else becomes *APIError.
func (c *Client) do(ctx context.Context, method, path string, build func(*resty.Request), out any) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var msg string
	req := c.rest.R().
		SetContext(ctx).
		SetResult(out).
		SetError(&msg)
	if build != nil {
		build(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return wrapError(err)
	}
	if !resp.IsSuccess() {
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return &APIError{Code: resp.StatusCode(), Message: msg}
	}
	return nil
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}
	if strings.Contains(err.Error(), "certificate") {
		return fmt.Errorf("%w (set insecure = true for self-signed certificates)", err)
	}
	return err
}
