package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yeremiapane/restaurant-backoffice/models"
)

// LoginResponse is the decoded login answer plus the cookies the backend set.
type LoginResponse struct {
	Result  models.LoginResult
	Cookies []*http.Cookie
	// JSON is false when the backend answered plain text.
	JSON bool
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	const op = "login"
	body := models.LoginRequest{Email: email, Password: password}

	data, resp, err := c.raw(ctx, Credentials{}, op, http.MethodPost, "/auth/authenticate", nil, body)
	if err != nil {
		return nil, err
	}

	out := &LoginResponse{Cookies: resp.Cookies()}
	if err := json.Unmarshal(bytes.TrimSpace(data), &out.Result); err != nil {
		out.Result = models.LoginResult{Success: true, Message: string(data)}
		return out, nil
	}
	out.JSON = true
	return out, nil
}

// VerifyAuth checks session liveness. 401/403 mean logged out and are not errors.
func (c *Client) VerifyAuth(ctx context.Context, creds Credentials) (bool, error) {
	err := c.do(ctx, creds, "verify auth", http.MethodGet, "/verifyAuth", nil, nil, nil)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrUnauthorized):
		return false, nil
	case errors.Is(err, ErrTransport):
		return false, err
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false, nil
	}
	return false, fmt.Errorf("verify auth: %w", err)
}
