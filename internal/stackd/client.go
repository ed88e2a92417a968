package stackd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API defines the interface for talking to the stackd daemon.
// This interface is implemented by *Client and can be used for testing.
type API interface {
	FetchStacks(ctx context.Context) ([]Stack, error)
	RedeployStack(ctx context.Context, id string) error
	RedeployAll(ctx context.Context) error
	RedeploySubset(ctx context.Context, ids []string) error
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the stackd HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:7466"
	defaultUserAgent = "restack/0.1"
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client using the provided apiBind host:port value.
func NewClient(apiBind string) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchStacks retrieves the full stack collection.
func (c *Client) FetchStacks(ctx context.Context) ([]Stack, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload StackListResponse
	if err := c.do(ctx, http.MethodGet, "/api/stacks", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Stacks, nil
}

// RedeployStack asks the daemon to redeploy a single stack.
func (c *Client) RedeployStack(ctx context.Context, id string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("stack id required")
	}
	path := "/api/stacks/" + url.PathEscape(id) + "/redeploy"
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// RedeployAll asks the daemon to redeploy every outdated stack it manages.
// This is the cheaper server-side path when the subset would cover everything.
func (c *Client) RedeployAll(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodPost, "/api/redeploy/all", nil, nil)
}

// RedeploySubset asks the daemon to redeploy an explicit list of stacks.
func (c *Client) RedeploySubset(ctx context.Context, ids []string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if len(ids) == 0 {
		return fmt.Errorf("stack ids required")
	}
	return c.do(ctx, http.MethodPost, "/api/redeploy", RedeploySubsetRequest{IDs: ids}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
