package cmd

import (
	"context"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tillpoint/posadmin/internal/backend"
	"github.com/tillpoint/posadmin/internal/config"
	apperrors "github.com/tillpoint/posadmin/internal/errors"
	"github.com/tillpoint/posadmin/internal/observability"
)

var (
	cfgFile string
	verbose bool

	// session tags every log line of one process run.
	session = uuid.New().String()

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "POS back-office console",
	Long: `posadmin - POS back-office console

Log in to the POS backend with lockout protection and manage users and staff.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Disable global telemetry early to prevent config loading from emitting
	// metrics to stdout. initConfig enables it when metrics are configured.
	observability.DisableTelemetry()

	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/posadmin/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	rootCmd.PersistentFlags().String("backend-url", "", "POS backend base URL (overrides backend.url)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("backend.url", rootCmd.PersistentFlags().Lookup("backend-url"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Initialize CLI logger early so we can use it in config loading
	observability.InitCLILogger(config.AppName, verbose)

	v := viper.GetViper()
	config.SetDefaults(v)
	config.ConfigureEnv(v)

	if cfgFile != "" {
		// Use config file from flag
		v.SetConfigFile(cfgFile)
	} else {
		config.AddConfigPaths(v)
	}

	// If a config file is found, read it in
	if err := v.ReadInConfig(); err == nil {
		observability.CLILogger.Debug("Using config file", zap.String("path", v.ConfigFileUsed()))
	} else {
		// It's OK if config file doesn't exist, we have defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			observability.CLILogger.Debug("No config file found, using defaults and environment variables")
		} else if cfgFile != "" {
			ExitWithCode(observability.CLILogger, foundry.ExitFileNotFound, "Failed to read config file", err)
		} else {
			observability.CLILogger.Warn("Error reading config file", zap.Error(err))
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		envelope := apperrors.WrapConfigInvalid(context.Background(), err, "configuration rejected")
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Invalid configuration", envelope)
	}

	observability.InitLogger(config.AppName, cfg.Logging.Profile, cfg.Logging.Level, verbose, session)

	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(config.AppName, cfg.Metrics.Port); err != nil {
			observability.CLILogger.Warn("Metrics exporter not started", zap.Error(err))
		} else {
			observability.CLILogger.Debug("Metrics exporter listening", zap.Int("port", observability.GetMetricsPort()))
		}
	}
}

// currentConfig returns the loaded config, or defaults when initConfig has
// not run (tests invoking helpers directly).
func currentConfig() *config.Config {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg
	}
	v := viper.New()
	config.SetDefaults(v)
	cfg, err := config.Load(v)
	if err != nil {
		return &config.Config{}
	}
	return cfg
}

func newBackendClient(cfg *config.Config) (*backend.Client, error) {
	userAgent := cfg.Backend.UserAgent
	if userAgent != "" && versionInfo.Version != "" {
		userAgent += "/" + versionInfo.Version
	}
	return backend.New(backend.Config{
		BaseURL:           cfg.Backend.URL,
		Timeout:           cfg.Backend.Timeout,
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		Burst:             cfg.Backend.Burst,
		UserAgent:         userAgent,
	})
}
