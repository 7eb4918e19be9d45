package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// User is an admin-panel account as listed by the backend.
type User struct {
	ID           int64  `json:"id" yaml:"id"`
	FullName     string `json:"full_name" yaml:"full_name"`
	EmailAddress string `json:"email_address" yaml:"email_address"`
	Username     string `json:"username" yaml:"username"`
	UserTitle    string `json:"user_title" yaml:"user_title"`
	UserLevel    string `json:"user_level" yaml:"user_level"`
}

// UserInput is the body of add and update requests.
type UserInput struct {
	FullName     string `json:"full_name"`
	EmailAddress string `json:"email_address"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	UserTitle    string `json:"user_title"`
	UserLevel    string `json:"user_level"`
}

// Validate checks the columns the backend stores as NOT NULL.
func (u UserInput) Validate() error {
	var missing []string
	if strings.TrimSpace(u.EmailAddress) == "" {
		missing = append(missing, "email_address")
	}
	if strings.TrimSpace(u.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(u.Password) == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !strings.Contains(u.EmailAddress, "@") {
		return errors.New("email_address must contain @")
	}
	return nil
}

func (u UserInput) form() url.Values {
	values := url.Values{}
	values.Set("full_name", u.FullName)
	values.Set("email_address", u.EmailAddress)
	values.Set("username", u.Username)
	values.Set("password", u.Password)
	values.Set("user_title", u.UserTitle)
	values.Set("user_level", u.UserLevel)
	return values
}

type addUserResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

type updateUserResponse struct {
	Success bool `json:"success"`
}

// ListUsers fetches every user (GET /get_users).
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.getJSON(ctx, "/get_users", "get_users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches one user (GET /get_user/{id}). A missing user matches
// ErrNotFound.
func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	path := "/get_user/" + strconv.FormatInt(id, 10)
	if err := c.getJSON(ctx, path, "get_user", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AddUser creates a user (POST /add_user, JSON body).
func (c *Client) AddUser(ctx context.Context, input UserInput) (*User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var resp addUserResponse
	if err := c.sendJSON(ctx, "/add_user", "add_user", input, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateUser replaces a user's fields (POST /update_user/{id}, form body).
func (c *Client) UpdateUser(ctx context.Context, id int64, input UserInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	resp, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/update_user/" + strconv.FormatInt(id, 10),
		label:       "update_user",
		body:        strings.NewReader(input.form().Encode()),
		contentType: "application/x-www-form-urlencoded",
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if !isSuccess(resp.StatusCode) {
		return readAPIError(resp, "update_user")
	}

	var body updateUserResponse
	if err := decodeJSON(resp.Body, &body); err != nil {
		return err
	}
	if !body.Success {
		return &APIError{Endpoint: "update_user", Status: resp.StatusCode, Message: "update was not acknowledged"}
	}
	return nil
}
