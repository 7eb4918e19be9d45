package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrNotFound matches APIErrors carrying a 404 status.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer from a management endpoint.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("backend %s: %d %s", e.Endpoint, e.Status, msg)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// messageBody covers both error shapes the backend uses.
type messageBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (m messageBody) text() string {
	if strings.TrimSpace(m.Message) != "" {
		return m.Message
	}
	return m.Error
}

func readAPIError(resp *http.Response, endpoint string) error {
	apiErr := &APIError{Endpoint: endpoint, Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body messageBody
	if json.Unmarshal(data, &body) == nil {
		apiErr.Message = body.text()
	}
	return apiErr
}
