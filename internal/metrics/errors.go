package metrics

import (
	"strconv"

	"github.com/tillpoint/posadmin/internal/observability"
)

// Metric names
const (
	ErrorsTotalName = "errors_total"
)

// RecordError records a command failure by error code and exit code
func RecordError(errorCode string, exitCode int) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ErrorsTotalName,
			1,
			map[string]string{
				"error_code": errorCode,
				"exit_code":  strconv.Itoa(exitCode),
			},
		)
	}
}
