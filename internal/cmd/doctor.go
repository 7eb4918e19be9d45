package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tillpoint/posadmin/internal/config"
	"github.com/tillpoint/posadmin/internal/observability"
)

const doctorPingTimeout = 5 * time.Second

var errChecksFailed = errors.New("some diagnostic checks failed")

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long:  "Run diagnostic checks on the runtime, configuration and backend connection.",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "=== %s doctor ===\n\n", config.AppName)

		ok := runDoctorChecks(cmd.Context(), out)

		fmt.Fprintln(out)
		if !ok {
			fmt.Fprintln(out, "⚠️  Some checks failed. Review the output above for details.")
			return errChecksFailed
		}
		fmt.Fprintf(out, "✅ All checks passed! Your %s installation is healthy.\n", config.AppName)
		return nil
	},
}

func runDoctorChecks(ctx context.Context, out io.Writer) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	const total = 5
	healthy := true

	goVersion := runtime.Version()
	fmt.Fprintf(out, "[1/%d] Checking Go version... ✅ %s (%s/%s)\n", total, goVersion, runtime.GOOS, runtime.GOARCH)

	version := crucible.GetVersion()
	if version.Gofulmen != "" {
		fmt.Fprintf(out, "[2/%d] Checking Gofulmen access... ✅ v%s (crucible v%s)\n", total, version.Gofulmen, version.Crucible)
	} else {
		fmt.Fprintf(out, "[2/%d] Checking Gofulmen access... ❌ version unavailable\n", total)
		healthy = false
	}

	configPath := config.DefaultConfigPath()
	switch {
	case configPath == "":
		fmt.Fprintf(out, "[3/%d] Checking config directory... ❌ cannot resolve config directory\n", total)
		healthy = false
	case fileExists(configPath):
		fmt.Fprintf(out, "[3/%d] Checking config directory... ✅ %s\n", total, configPath)
	default:
		fmt.Fprintf(out, "[3/%d] Checking config directory... ⚠️  %s (not created yet, run '%s doctor init')\n", total, configPath, config.AppName)
	}

	cfg := config.GetConfig()
	if cfg == nil {
		fmt.Fprintf(out, "[4/%d] Checking configuration... ❌ not loaded\n", total)
		fmt.Fprintf(out, "[5/%d] Checking backend... ⚠️  skipped (config not loaded)\n", total)
		return false
	}
	fmt.Fprintf(out, "[4/%d] Checking configuration... ✅ lockout after %d attempts for %s\n",
		total, cfg.Throttle.MaxAttempts, cfg.Throttle.LockoutDuration)

	client, err := newBackendClient(cfg)
	if err != nil {
		fmt.Fprintf(out, "[5/%d] Checking backend... ❌ %v\n", total, err)
		return false
	}
	client.Limiter = nil

	pingCtx, cancel := context.WithTimeout(ctx, doctorPingTimeout)
	defer cancel()
	status, err := client.Ping(pingCtx)
	if err != nil {
		observability.CLILogger.Debug("Backend ping failed", zap.String("url", cfg.Backend.URL), zap.Error(err))
		fmt.Fprintf(out, "[5/%d] Checking backend... ❌ %s unreachable\n", total, cfg.Backend.URL)
		return false
	}
	fmt.Fprintf(out, "[5/%d] Checking backend... ✅ %s (HTTP %d)\n", total, cfg.Backend.URL, status)

	return healthy
}

var doctorInitForce bool

var doctorInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.DefaultConfigPath()
		if configPath == "" {
			return fmt.Errorf("config path not resolved")
		}

		if _, err := os.Stat(configPath); err == nil && !doctorInitForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
		}

		data, err := buildInitConfig()
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
		if err := os.WriteFile(configPath, data, 0644); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		observability.CLILogger.Info("Config initialized", zap.String("path", configPath))
		fmt.Fprintln(cmd.OutOrStdout(), configPath)
		return nil
	},
}

var doctorConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration status and effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		configPath := config.DefaultConfigPath()

		fmt.Fprintln(out, "Configuration:")
		fmt.Fprintf(out, "  Config file:  %s (%s)\n", configPath, existenceStatus(fileExists(configPath)))
		if used := viper.ConfigFileUsed(); used != "" && used != configPath {
			fmt.Fprintf(out, "  Loaded from:  %s\n", used)
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Environment:")
		for _, name := range []string{"POSADMIN_BACKEND_URL", "POSADMIN_THROTTLE_MAX_ATTEMPTS", "POSADMIN_LOGGING_LEVEL"} {
			fmt.Fprintf(out, "  %s: %s\n", name, envStatus(name))
		}

		cfg := config.GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Effective Settings:")
		fmt.Fprintf(out, "  backend.url:               %s\n", cfg.Backend.URL)
		fmt.Fprintf(out, "  backend.timeout:           %s\n", cfg.Backend.Timeout)
		fmt.Fprintf(out, "  throttle.max_attempts:     %d\n", cfg.Throttle.MaxAttempts)
		fmt.Fprintf(out, "  throttle.lockout_duration: %s\n", cfg.Throttle.LockoutDuration)
		fmt.Fprintf(out, "  output.format:             %s\n", cfg.Output.Format)
		fmt.Fprintf(out, "  output.page_size:          %d\n", cfg.Output.PageSize)
		fmt.Fprintf(out, "  logging.level:             %s\n", cfg.Logging.Level)
		fmt.Fprintf(out, "  metrics.enabled:           %t\n", cfg.Metrics.Enabled)
		return nil
	},
}

var doctorValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a config file (default: the user config file)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.DefaultConfigPath()
		if len(args) == 1 {
			configPath = args[0]
		}
		if configPath == "" {
			return fmt.Errorf("config path not resolved")
		}
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return fmt.Errorf("config file not found: %s", configPath)
		}

		v := viper.New()
		config.SetDefaults(v)
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		if _, err := config.Load(v); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Config is valid: %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.AddCommand(doctorInitCmd)
	doctorCmd.AddCommand(doctorConfigCmd)
	doctorCmd.AddCommand(doctorValidateCmd)

	doctorInitCmd.Flags().BoolVar(&doctorInitForce, "force", false, "overwrite existing config file")
}

// buildInitConfig renders the built-in defaults as a commented YAML file.
func buildInitConfig() ([]byte, error) {
	v := viper.New()
	config.SetDefaults(v)

	body, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}

	header := fmt.Sprintf("# %s config - created by '%s doctor init'\n# Every key can be overridden with %s_<SECTION>_<KEY>.\n",
		config.AppName, config.AppName, config.EnvPrefix)
	return append([]byte(header), body...), nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func existenceStatus(exists bool) string {
	if exists {
		return "exists"
	}
	return "missing"
}

func envStatus(name string) string {
	if os.Getenv(name) != "" {
		return "(set)"
	}
	return "(not set)"
}
