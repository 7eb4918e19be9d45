package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	gferrors "github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/posadmin/internal/backend"
	"github.com/tillpoint/posadmin/internal/requestid"
	"github.com/tillpoint/posadmin/internal/throttle"
)

func TestFromErrorClassifiesThrottleErrors(t *testing.T) {
	ctx := requestid.With(context.Background(), "req-7")

	tests := []struct {
		name    string
		err     error
		code    string
		message string
		exit    foundry.ExitCode
	}{
		{
			name:    "validation",
			err:     throttle.ValidatePasscode("12ab"),
			code:    CodeValidation,
			message: "Passcode should only contain numbers.",
			exit:    foundry.ExitFailure,
		},
		{
			name:    "rejection",
			err:     &throttle.AuthenticationFailure{Status: http.StatusUnauthorized, Message: "Invalid Credentials"},
			code:    CodeUnauthorized,
			message: "Invalid Credentials",
			exit:    foundry.ExitFailure,
		},
		{
			name:    "locked",
			err:     &throttle.LockedError{Until: time.Date(2024, 11, 5, 9, 5, 0, 0, time.UTC), Remaining: 299 * time.Second},
			code:    CodeLockedOut,
			message: "Too many failed attempts. Please wait 4:59 before trying again.",
			exit:    foundry.ExitFailure,
		},
		{
			name:    "transport",
			err:     &throttle.TransportError{Err: fmt.Errorf("connection refused")},
			code:    CodeExternalService,
			message: throttle.GenericErrorMessage,
			exit:    foundry.ExitExternalServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := FromError(ctx, tt.err)
			require.NotNil(t, env)
			assert.Equal(t, tt.code, env.Code)
			assert.Equal(t, tt.message, env.Message)
			assert.Equal(t, "req-7", env.CorrelationID)
			assert.Equal(t, tt.exit, ExitCode(env))
		})
	}
}

func TestFromErrorClassifiesBackendErrors(t *testing.T) {
	env := FromError(context.Background(), fmt.Errorf("lookup: %w", &backend.APIError{Endpoint: "get_user", Status: http.StatusNotFound, Message: "User not found"}))
	assert.Equal(t, CodeNotFound, env.Code)
	assert.Equal(t, "get_user", env.Context["endpoint"])
	assert.NotEmpty(t, env.CorrelationID)

	env = FromError(context.Background(), &backend.APIError{Endpoint: "create_cashier", Status: http.StatusBadRequest, Message: "Username already exists"})
	assert.Equal(t, CodeInvalidInput, env.Code)
	assert.Contains(t, env.Message, "Username already exists")

	env = FromError(context.Background(), &backend.APIError{Endpoint: "get_users", Status: http.StatusBadGateway})
	assert.Equal(t, CodeExternalService, env.Code)
	assert.Equal(t, foundry.ExitExternalServiceUnavailable, ExitCode(env))
}

func TestFromErrorContextErrors(t *testing.T) {
	env := FromError(context.Background(), context.DeadlineExceeded)
	assert.Equal(t, CodeTimeout, env.Code)

	env = FromError(context.Background(), context.Canceled)
	assert.Equal(t, CodeLoginCancelled, env.Code)
}

func TestFromErrorPassesEnvelopesThrough(t *testing.T) {
	original := WrapConfigInvalid(requestid.With(context.Background(), "req-1"), fmt.Errorf("backend.url missing"), "configuration rejected")
	env := FromError(context.Background(), original)
	assert.Same(t, original, env)
	assert.Equal(t, CodeConfigInvalid, env.Code)
	assert.Equal(t, "req-1", env.CorrelationID)
	assert.Equal(t, gferrors.SeverityCritical, env.Severity)
	assert.Equal(t, foundry.ExitConfigInvalid, ExitCode(env))
}

func TestFromErrorUnknown(t *testing.T) {
	env := FromError(context.Background(), fmt.Errorf("boom"))
	assert.Equal(t, CodeInternal, env.Code)
	assert.Equal(t, "boom", env.Message)
	assert.Equal(t, gferrors.SeverityHigh, env.Severity)
}

func TestEnsureEnvelope(t *testing.T) {
	env := EnsureEnvelope(nil)
	assert.Equal(t, CodeInternal, env.Code)

	wrapped := EnsureEnvelope(fmt.Errorf("disk full"))
	assert.Equal(t, "disk full", wrapped.Context["wrapped_error"])

	existing := Wrap(context.Background(), CodeNotFound, nil, "missing")
	assert.Same(t, existing, EnsureEnvelope(existing))
}

func TestEnsureCorrelationID(t *testing.T) {
	env := EnsureCorrelationID(gferrors.NewErrorEnvelope(CodeInternal, "x"), context.Background())
	assert.NotEmpty(t, env.CorrelationID)
	assert.Nil(t, EnsureCorrelationID(nil, context.Background()))
}

func TestReportWithoutLogger(t *testing.T) {
	require.NotPanics(t, func() {
		Report(FromError(context.Background(), &throttle.AuthenticationFailure{Status: http.StatusUnauthorized}))
		Report(nil)
	})
}
