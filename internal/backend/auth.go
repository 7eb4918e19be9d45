package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tillpoint/posadmin/internal/throttle"
)

var errMissingRole = errors.New("login response did not include a role")

// loginResponse is the 200 body of POST /login. The token and user record are
// read but not kept; session handling belongs to the backend.
type loginResponse struct {
	Role  string         `json:"role"`
	Token string         `json:"token"`
	User  map[string]any `json:"user"`
}

var _ throttle.Authenticator = (*Client)(nil)

// Authenticate posts credentials to /login.
//
// 4xx answers are credential rejections and count towards the lockout.
// Network failures, 5xx answers and bodies that cannot be decoded are
// transport errors.
func (c *Client) Authenticate(ctx context.Context, creds throttle.Credentials) (throttle.Role, error) {
	payload, err := json.Marshal(creds)
	if err != nil {
		return "", &throttle.TransportError{Err: err}
	}

	resp, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/login",
		label:       "login",
		body:        bytes.NewReader(payload),
		contentType: "application/json",
	})
	if err != nil {
		return "", &throttle.TransportError{Err: err}
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	switch {
	case isSuccess(resp.StatusCode):
		var body loginResponse
		if err := decodeJSON(resp.Body, &body); err != nil {
			return "", &throttle.TransportError{Err: err}
		}
		role := throttle.ParseRole(body.Role)
		if role == "" {
			return "", &throttle.TransportError{Err: errMissingRole}
		}
		return role, nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var body messageBody
		if err := decodeJSON(resp.Body, &body); err != nil {
			return "", &throttle.TransportError{Err: err}
		}
		return "", &throttle.AuthenticationFailure{Status: resp.StatusCode, Message: body.text()}

	default:
		return "", &throttle.TransportError{Err: fmt.Errorf("login: unexpected status %d", resp.StatusCode)}
	}
}
