// Package client talks to the restaurant backend REST API. Every call checks the
// HTTP status before decoding and reports failures through the error taxonomy in
// errors.go.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Credentials carry the staff session to the backend: the session cookie as
// issued at login and the bearer token mirrored from the login payload.
type Credentials struct {
	Cookie string
	Token  string
}

func (c Credentials) apply(req *http.Request) {
	if c.Cookie != "" {
		req.Header.Set("Cookie", c.Cookie)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Stream serves long-lived server-push connections and has no timeout.
	Stream *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
		Stream:  &http.Client{},
	}
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, creds Credentials, method, path string, query url.Values, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	creds.apply(req)
	return req, nil
}

// raw performs a request and returns the response body after the status check.
func (c *Client) raw(ctx context.Context, creds Credentials, op, method, path string, query url.Values, body any) ([]byte, *http.Response, error) {
	req, err := c.newRequest(ctx, creds, method, path, query, body)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w: %v", op, ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, fmt.Errorf("%s: %w: %v", op, ErrTransport, err)
	}
	if err := statusError(op, resp.StatusCode, data); err != nil {
		return data, resp, err
	}
	return data, resp, nil
}

// do performs a request and decodes a JSON body into out. A nil out, or an
// empty body, skips decoding.
func (c *Client) do(ctx context.Context, creds Credentials, op, method, path string, query url.Values, body, out any) error {
	data, _, err := c.raw(ctx, creds, op, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrDecode, err)
	}
	return nil
}

// decodeList accepts either a bare JSON array or an object wrapping it in "data".
func decodeList[T any](op string, data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []T{}, nil
	}
	if data[0] == '{' {
		var wrapped struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", op, ErrDecode, err)
		}
		data = wrapped.Data
		if len(data) == 0 {
			return []T{}, nil
		}
	}
	items := []T{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrDecode, err)
	}
	return items, nil
}
