package observability

import (
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
)

// Logging profiles accepted in configuration.
const (
	ProfileSimple     = "simple"
	ProfileStructured = "structured"
)

// CLILogger is the process-wide logger for commands. It is nil until one of
// the Init functions has run.
var CLILogger *logging.Logger

// InitCLILogger initializes the CLI logger with SIMPLE profile
func InitCLILogger(serviceName string, verbose bool) {
	logger, err := logging.NewCLI(serviceName)
	if err != nil {
		exitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize CLI logger", err)
	}

	if verbose {
		logger.SetLevel(logging.DEBUG)
	}

	CLILogger = logger
}

// InitStructuredLogger replaces the CLI logger with a JSON logger on stderr.
// Kiosk deployments use it so login events can be shipped to a collector.
func InitStructuredLogger(serviceName string, logLevel string, sessionID string) {
	staticFields := make(map[string]any)
	if sessionID != "" {
		staticFields["session_id"] = sessionID
	}

	config := &logging.LoggerConfig{
		Profile:      logging.ProfileStructured,
		DefaultLevel: parseLogLevel(logLevel),
		Service:      serviceName,
		Environment:  "kiosk",
		StaticFields: staticFields,
		Sinks: []logging.SinkConfig{
			{
				Type:   "console",
				Format: "json",
				Console: &logging.ConsoleSinkConfig{
					Stream:   "stderr",
					Colorize: false,
				},
			},
		},
		EnableCaller: true,
	}

	logger, err := logging.New(config)
	if err != nil {
		exitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize structured logger", err)
	}

	CLILogger = logger
}

// InitLogger picks the logger for a profile. Unknown profiles fall back to
// the simple CLI logger.
func InitLogger(serviceName, profile, logLevel string, verbose bool, sessionID string) {
	if strings.EqualFold(strings.TrimSpace(profile), ProfileStructured) {
		if verbose {
			logLevel = "debug"
		}
		InitStructuredLogger(serviceName, logLevel, sessionID)
		return
	}

	InitCLILogger(serviceName, verbose || strings.EqualFold(strings.TrimSpace(logLevel), "debug"))
}

// parseLogLevel converts string log level to logging severity string
func parseLogLevel(levelStr string) string {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "trace":
		return "TRACE"
	case "debug":
		return "DEBUG"
	case "info":
		return "INFO"
	case "warn", "warning":
		return "WARN"
	case "error":
		return "ERROR"
	default:
		return "INFO"
	}
}

// exitWithCodeStderr exits with a semantic exit code, writing to stderr.
// Used for logger initialization failures, before any logger exists.
func exitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %s: %v (exit code: %d)\n", msg, err, exitCode)
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: %s (exit code: %d)\n", msg, exitCode)
		}
		os.Exit(int(exitCode))
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	}
	fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)

	os.Exit(info.Code)
}
