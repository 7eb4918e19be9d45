// Package config loads posadmin settings from defaults, a YAML file and the
// environment through viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// AppName names the config directory and env prefix.
const AppName = "posadmin"

// EnvPrefix is prepended to environment overrides, e.g. POSADMIN_BACKEND_URL.
const EnvPrefix = "POSADMIN"

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// SetDefaults registers every key with its default so that environment
// overrides are visible to Load.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("backend.url", "http://localhost:5000")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("backend.requests_per_second", 5.0)
	v.SetDefault("backend.burst", 2)
	v.SetDefault("backend.user_agent", "posadmin")

	v.SetDefault("throttle.max_attempts", 3)
	v.SetDefault("throttle.lockout_duration", 5*time.Minute)
	v.SetDefault("throttle.tick_interval", time.Second)

	v.SetDefault("output.format", "table")
	v.SetDefault("output.page_size", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "SIMPLE")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9464)
}

// ConfigureEnv binds POSADMIN_* variables, mapping dots to underscores.
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// AddConfigPaths registers the search locations for config.yaml.
func AddConfigPaths(v *viper.Viper) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir := gfconfig.GetAppConfigDir(AppName); strings.TrimSpace(dir) != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configDir := gfconfig.GetAppConfigDir(AppName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// Load decodes v into a Config, validates it and makes it the current config.
//
// This function is safe to call multiple times (e.g., for config reload)
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, errors.New("config: nil viper instance")
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Backend.URL = strings.TrimRight(strings.TrimSpace(cfg.Backend.URL), "/")
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	cfg.Logging.Profile = strings.ToUpper(strings.TrimSpace(cfg.Logging.Profile))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Store the loaded config
	setConfig(cfg)

	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if parsed, err := url.Parse(c.Backend.URL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		problems = append(problems, fmt.Sprintf("backend.url %q is not an absolute URL", c.Backend.URL))
	}
	if c.Backend.Timeout <= 0 {
		problems = append(problems, "backend.timeout must be positive")
	}
	if c.Backend.RequestsPerSecond < 0 {
		problems = append(problems, "backend.requests_per_second must not be negative")
	}
	if c.Throttle.MaxAttempts <= 0 {
		problems = append(problems, "throttle.max_attempts must be positive")
	}
	if c.Throttle.LockoutDuration <= 0 {
		problems = append(problems, "throttle.lockout_duration must be positive")
	}
	if c.Throttle.TickInterval <= 0 {
		problems = append(problems, "throttle.tick_interval must be positive")
	}
	switch c.Output.PageSize {
	case 10, 25, 50, 100:
	default:
		problems = append(problems, fmt.Sprintf("output.page_size %d must be 10, 25, 50 or 100", c.Output.PageSize))
	}
	switch c.Logging.Profile {
	case "", "SIMPLE", "STRUCTURED":
	default:
		problems = append(problems, fmt.Sprintf("logging.profile %q must be SIMPLE or STRUCTURED", c.Logging.Profile))
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		problems = append(problems, fmt.Sprintf("metrics.port %d out of range", c.Metrics.Port))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}
