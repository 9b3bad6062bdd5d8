package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a JSON API client for end-to-end tests.
type Client struct {
	client *http.Client
	url    string
	token  string
}

// NewClient creates a client. token is sent as a bearer token on every
// request when non-empty, matching the server's mutating-endpoint guard.
func NewClient(url, token string) *Client {
	return &Client{
		client: &http.Client{},
		url:    url,
		token:  token,
	}
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			c.url+urlPath,
			nil,
		); err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		if resp, err = c.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return fmt.Errorf("close response body: %w", err)
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return fmt.Errorf("close response body: %w", err)
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, urlPath, nil)
}

// GetJSON fetches a URL and decodes the 200 response body into out.
func (c *Client) GetJSON(ctx context.Context, urlPath string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, urlPath, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, http.StatusOK, out)
}

// PostJSON posts the payload as JSON and decodes the response body into out
// when the status matches wantStatus. A nil payload sends an empty body; a
// nil out discards the body.
func (c *Client) PostJSON(ctx context.Context, urlPath string, payload any, wantStatus int, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	resp, err := c.do(ctx, http.MethodPost, urlPath, body)
	if err != nil {
		return err
	}
	return decodeJSON(resp, wantStatus, out)
}

// Delete issues a DELETE request and checks the status.
func (c *Client) Delete(ctx context.Context, urlPath string, wantStatus int) error {
	resp, err := c.do(ctx, http.MethodDelete, urlPath, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, wantStatus, nil)
}

func (c *Client) do(ctx context.Context, method, urlPath string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

func decodeJSON(resp *http.Response, wantStatus int, out any) error {
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != wantStatus {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:mnd // enough for error bodies.
		return fmt.Errorf("unexpected status code: %d (body: %s)", resp.StatusCode, bodyBytes)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
