package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// StaffKind selects the manager or cashier roster.
type StaffKind string

const (
	StaffManager StaffKind = "manager"
	StaffCashier StaffKind = "cashier"
)

// ParseStaffKind accepts singular or plural forms.
func ParseStaffKind(value string) (StaffKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "manager", "managers":
		return StaffManager, nil
	case "cashier", "cashiers":
		return StaffCashier, nil
	default:
		return "", fmt.Errorf("unknown staff kind %q (use manager or cashier)", value)
	}
}

func (k StaffKind) plural() string {
	return string(k) + "s"
}

// StaffMember is a manager or cashier. Backend listings also carry the
// passcode, which is never decoded.
type StaffMember struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	LastName    string `json:"last_name" yaml:"last_name"`
	Username    string `json:"username" yaml:"username"`
	DateCreated string `json:"date_created" yaml:"date_created"`
}

// StaffInput is the body of create_manager and create_cashier.
type StaffInput struct {
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Username string `json:"username"`
	Passcode string `json:"passcode"`
}

// Validate mirrors the backend's required-field check.
func (s StaffInput) Validate() error {
	if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.LastName) == "" ||
		strings.TrimSpace(s.Username) == "" || strings.TrimSpace(s.Passcode) == "" {
		return fmt.Errorf("missing required fields: name, last_name, username and passcode are all required")
	}
	return nil
}

// ListStaff fetches the roster for kind (GET /get_managers or /get_cashiers).
func (c *Client) ListStaff(ctx context.Context, kind StaffKind) ([]StaffMember, error) {
	label := "get_" + kind.plural()

	var body map[string]json.RawMessage
	if err := c.getJSON(ctx, "/"+label, label, &body); err != nil {
		return nil, err
	}

	raw, ok := body[kind.plural()]
	if !ok {
		return nil, fmt.Errorf("decoding response: missing %q", kind.plural())
	}

	var members []StaffMember
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return members, nil
}

// CreateStaff adds a manager or cashier. The backend answers 400 for
// duplicate usernames, which surfaces as an *APIError.
func (c *Client) CreateStaff(ctx context.Context, kind StaffKind, input StaffInput) (*StaffMember, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	label := "create_" + string(kind)

	var body map[string]json.RawMessage
	if err := c.sendJSON(ctx, "/"+label, label, input, &body); err != nil {
		return nil, err
	}

	var success bool
	if raw, ok := body["success"]; ok {
		_ = json.Unmarshal(raw, &success)
	}
	if !success {
		var message string
		if raw, ok := body["message"]; ok {
			_ = json.Unmarshal(raw, &message)
		}
		return nil, &APIError{Endpoint: label, Status: http.StatusOK, Message: message}
	}

	var member StaffMember
	if raw, ok := body[string(kind)]; ok {
		if err := json.Unmarshal(raw, &member); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
	}
	return &member, nil
}
