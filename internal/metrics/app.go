package metrics

import (
	"strconv"
	"time"

	"github.com/tillpoint/posadmin/internal/observability"
)

// Client-side metrics following Prometheus conventions
const (
	LoginAttemptsTotal = "login_attempts_total"
	LoginLockoutsTotal = "login_lockouts_total"

	BackendRequestsTotal   = "backend_requests_total"
	BackendRequestDuration = "backend_request_duration_ms"
)

// RecordLoginOutcome counts a login submission by its throttle outcome.
func RecordLoginOutcome(outcome string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			LoginAttemptsTotal,
			1,
			map[string]string{
				"outcome": outcome,
			},
		)
	}
}

// RecordLockout counts a session entering the locked state.
func RecordLockout() {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			LoginLockoutsTotal,
			1,
			nil,
		)
	}
}

// RecordBackendRequest records one call to the POS backend. A zero status
// means the request never got a response.
func RecordBackendRequest(endpoint string, status int, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}

	statusLabel := "transport_error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}

	_ = observability.TelemetrySystem.Counter(
		BackendRequestsTotal,
		1,
		map[string]string{
			"endpoint": endpoint,
			"status":   statusLabel,
		},
	)

	_ = observability.TelemetrySystem.Histogram(
		BackendRequestDuration,
		duration,
		map[string]string{
			"endpoint": endpoint,
		},
	)
}
