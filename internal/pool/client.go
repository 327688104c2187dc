package pool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/browsermux/mediator/internal/resilience"
	"github.com/go-resty/resty/v2"
)

// StartResponse is the decoded body of a successful POST /start.
type StartResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Token string `json:"token"`
	} `json:"data"`
	Message string `json:"message,omitempty"`
}

// ListResponse is the decoded body of a successful GET /list.
type ListResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Browsers []string `json:"browsers"`
	} `json:"data"`
	Message string `json:"message,omitempty"`
}

type stopResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Client is a thin HTTP client against the upstream browser pool's
// /start, /stop, /list endpoints (§6.1). No other package in this
// module calls it, cmd/server and the Session/Registry included.
type Client struct {
	http    *resty.Client
	breaker *resilience.Breaker
}

// New creates a pool client addressing baseURL (e.g. "http://localhost:9222").
func New(baseURL string, breaker *resilience.Breaker) *Client {
	return &Client{
		http:    resty.New().SetBaseURL(baseURL),
		breaker: breaker,
	}
}

// Start requests a new browser instance and returns its opaque token.
func (c *Client) Start(ctx context.Context) (string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var out StartResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetResult(&out).
			Post("/start")
		if err != nil {
			return nil, fmt.Errorf("pool start request failed: %w", err)
		}
		if resp.IsError() {
			_ = json.Unmarshal(resp.Body(), &out)
		}
		if resp.IsError() || !out.Success {
			return nil, fmt.Errorf("pool start failed: %s", describeFailure(resp.StatusCode(), out.Message))
		}
		return out.Data.Token, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// Stop releases a browser instance. Callers must ensure the session has
// no attached clients before calling this — the pool itself also
// refuses to stop a token still in use.
func (c *Client) Stop(ctx context.Context, token string) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		var out stopResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(map[string]string{"token": token}).
			SetResult(&out).
			Post("/stop")
		if err != nil {
			return nil, fmt.Errorf("pool stop request failed: %w", err)
		}
		if resp.IsError() {
			_ = json.Unmarshal(resp.Body(), &out)
		}
		if resp.IsError() || !out.Success {
			return nil, fmt.Errorf("pool stop failed: %s", describeFailure(resp.StatusCode(), out.Message))
		}
		return nil, nil
	})
	return err
}

// List returns the tokens of every browser instance the pool currently
// manages.
func (c *Client) List(ctx context.Context) ([]string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var out ListResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetResult(&out).
			Get("/list")
		if err != nil {
			return nil, fmt.Errorf("pool list request failed: %w", err)
		}
		if resp.IsError() {
			_ = json.Unmarshal(resp.Body(), &out)
		}
		if resp.IsError() || !out.Success {
			return nil, fmt.Errorf("pool list failed: %s", describeFailure(resp.StatusCode(), out.Message))
		}
		return out.Data.Browsers, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

func describeFailure(status int, message string) string {
	if message != "" {
		return message
	}
	return fmt.Sprintf("unexpected status %d", status)
}
