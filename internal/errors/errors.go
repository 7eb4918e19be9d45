package errors

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"go.uber.org/zap"

	"github.com/tillpoint/posadmin/internal/backend"
	"github.com/tillpoint/posadmin/internal/metrics"
	"github.com/tillpoint/posadmin/internal/observability"
	"github.com/tillpoint/posadmin/internal/requestid"
	"github.com/tillpoint/posadmin/internal/throttle"
)

// Error codes
const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeValidation      = "VALIDATION_FAILED"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeLockedOut       = "LOCKED_OUT"
	CodeNotFound        = "NOT_FOUND"
	CodeTimeout         = "TIMEOUT"
	CodeExternalService = "EXTERNAL_SERVICE_ERROR"
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeInternal        = "INTERNAL_ERROR"
	CodeLoginCancelled  = "LOGIN_CANCELLED"
)

// Wrap builds an envelope for err carrying the request ID from ctx.
func Wrap(ctx context.Context, code string, err error, message string) *errors.ErrorEnvelope {
	envelope := errors.NewErrorEnvelope(code, message)
	correlationID := extractCorrelationID(ctx)
	envelope = envelope.WithCorrelationID(correlationID)
	envelope = envelope.WithTraceID(correlationID)
	envelope = withWrappedError(envelope, err)
	if err != nil {
		envelope.Original = err
	}
	return envelope
}

func WrapExternalService(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return high(Wrap(ctx, CodeExternalService, err, message))
}

// WrapConfigInvalid marks a rejected configuration; it exits with
// ExitConfigInvalid.
func WrapConfigInvalid(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return critical(Wrap(ctx, CodeConfigInvalid, err, message))
}

// FromError classifies err into an envelope. Throttle and backend errors
// keep their display message; anything unrecognised becomes INTERNAL_ERROR.
func FromError(ctx context.Context, err error) *errors.ErrorEnvelope {
	if err == nil {
		return EnsureEnvelope(nil)
	}

	var envelope *errors.ErrorEnvelope
	if stderrors.As(err, &envelope) && envelope != nil {
		return EnsureCorrelationID(envelope, ctx)
	}

	var (
		validation *throttle.ValidationError
		locked     *throttle.LockedError
		failure    *throttle.AuthenticationFailure
		transport  *throttle.TransportError
		apiErr     *backend.APIError
	)

	switch {
	case stderrors.As(err, &validation):
		env := Wrap(ctx, CodeValidation, err, validation.Message)
		env = withContext(env, map[string]interface{}{"reason": string(validation.Reason)})
		return medium(env)

	case stderrors.As(err, &locked):
		env := Wrap(ctx, CodeLockedOut, err, "Too many failed attempts. Please wait "+throttle.FormatRemaining(locked.Remaining)+" before trying again.")
		env = withContext(env, map[string]interface{}{
			"lockout_until":     locked.Until.UTC().Format(time.RFC3339),
			"remaining_seconds": int64(locked.Remaining.Seconds()),
		})
		return medium(env)

	case stderrors.As(err, &failure):
		env := Wrap(ctx, CodeUnauthorized, err, failure.DisplayMessage())
		env = withContext(env, map[string]interface{}{"status": failure.Status})
		return medium(env)

	case stderrors.As(err, &transport):
		return WrapExternalService(ctx, err, throttle.GenericErrorMessage)

	case stderrors.As(err, &apiErr):
		code := CodeExternalService
		switch {
		case apiErr.Status == http.StatusNotFound:
			code = CodeNotFound
		case apiErr.Status >= 400 && apiErr.Status < 500:
			code = CodeInvalidInput
		}
		env := Wrap(ctx, code, err, apiErr.Error())
		env = withContext(env, map[string]interface{}{
			"endpoint": apiErr.Endpoint,
			"status":   apiErr.Status,
		})
		if code == CodeExternalService {
			return high(env)
		}
		return medium(env)

	case stderrors.Is(err, context.DeadlineExceeded):
		return high(Wrap(ctx, CodeTimeout, err, "backend did not answer in time"))

	case stderrors.Is(err, context.Canceled):
		return medium(Wrap(ctx, CodeLoginCancelled, err, "cancelled"))
	}

	return high(Wrap(ctx, CodeInternal, err, err.Error()))
}

// ExitCode maps an envelope to the process exit code.
func ExitCode(envelope *errors.ErrorEnvelope) foundry.ExitCode {
	if envelope == nil {
		return foundry.ExitFailure
	}
	switch envelope.Code {
	case CodeConfigInvalid:
		return foundry.ExitConfigInvalid
	case CodeExternalService, CodeTimeout:
		return foundry.ExitExternalServiceUnavailable
	default:
		return foundry.ExitFailure
	}
}

// extractCorrelationID gets the request ID from context, falls back to generating a new one
func extractCorrelationID(ctx context.Context) string {
	_, id := requestid.Ensure(ctx)
	return id
}

// EnsureEnvelope normalizes any error into a gofulmen ErrorEnvelope.
func EnsureEnvelope(err error) *errors.ErrorEnvelope {
	if err == nil {
		env := errors.NewErrorEnvelope(CodeInternal, "unexpected nil error")
		env, _ = env.WithSeverity(errors.SeverityCritical)
		return env
	}

	if envelope, ok := err.(*errors.ErrorEnvelope); ok && envelope != nil {
		return envelope
	}

	env := errors.NewErrorEnvelope(CodeInternal, "unexpected error")
	env, _ = env.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	env, _ = env.WithSeverity(errors.SeverityHigh)
	return env
}

// EnsureCorrelationID attaches a correlation ID to the envelope using the context when available.
func EnsureCorrelationID(envelope *errors.ErrorEnvelope, ctx context.Context) *errors.ErrorEnvelope {
	if envelope == nil {
		return nil
	}

	if envelope.CorrelationID != "" {
		return envelope
	}

	correlationID := requestid.FromContext(ctx)
	if correlationID == "" {
		correlationID = "fallback-" + errors.GenerateCorrelationID()
	}

	return envelope.WithCorrelationID(correlationID)
}

// Report logs the envelope at a level matching its severity and counts it.
func Report(envelope *errors.ErrorEnvelope) {
	if envelope == nil {
		return
	}

	metrics.RecordError(envelope.Code, int(ExitCode(envelope)))

	logger := observability.CLILogger
	if logger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", envelope.Code),
	}

	if envelope.Severity != "" {
		fields = append(fields, zap.String("severity", string(envelope.Severity)))
	}

	for key, value := range envelope.Context {
		fields = append(fields, zap.Any(key, value))
	}

	if envelope.CorrelationID != "" {
		fields = append(fields, zap.String("request_id", envelope.CorrelationID))
	}

	switch envelope.Severity {
	case errors.SeverityCritical, errors.SeverityHigh:
		logger.Error(envelope.Message, fields...)
	case errors.SeverityMedium:
		logger.Warn(envelope.Message, fields...)
	default:
		logger.Info(envelope.Message, fields...)
	}
}

func withWrappedError(envelope *errors.ErrorEnvelope, err error) *errors.ErrorEnvelope {
	if err == nil {
		return envelope
	}
	return withContext(envelope, map[string]interface{}{
		"wrapped_error": err.Error(),
	})
}

func withContext(envelope *errors.ErrorEnvelope, fields map[string]interface{}) *errors.ErrorEnvelope {
	if envelope == nil {
		return envelope
	}

	merged := make(map[string]interface{}, len(envelope.Context)+len(fields))
	for key, value := range envelope.Context {
		merged[key] = value
	}
	for key, value := range fields {
		merged[key] = value
	}

	updated, err := envelope.WithContext(merged)
	if err != nil {
		return envelope
	}
	return updated
}

func critical(envelope *errors.ErrorEnvelope) *errors.ErrorEnvelope {
	if updated, err := envelope.WithSeverity(errors.SeverityCritical); err == nil {
		return updated
	}
	return envelope
}

func high(envelope *errors.ErrorEnvelope) *errors.ErrorEnvelope {
	if updated, err := envelope.WithSeverity(errors.SeverityHigh); err == nil {
		return updated
	}
	return envelope
}

func medium(envelope *errors.ErrorEnvelope) *errors.ErrorEnvelope {
	if updated, err := envelope.WithSeverity(errors.SeverityMedium); err == nil {
		return updated
	}
	return envelope
}
