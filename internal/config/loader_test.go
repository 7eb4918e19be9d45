package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	ConfigureEnv(v)
	return v
}

func TestLoad(t *testing.T) {
	t.Run("LoadDefaults", func(t *testing.T) {
		cfg, err := Load(newViper())
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "http://localhost:5000", cfg.Backend.URL)
		assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, 3, cfg.Throttle.MaxAttempts)
		assert.Equal(t, 5*time.Minute, cfg.Throttle.LockoutDuration)
		assert.Equal(t, time.Second, cfg.Throttle.TickInterval)
		assert.Equal(t, "table", cfg.Output.Format)
		assert.Equal(t, 10, cfg.Output.PageSize)
		assert.Equal(t, "SIMPLE", cfg.Logging.Profile)
		assert.False(t, cfg.Metrics.Enabled)

		assert.Same(t, cfg, GetConfig())
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Setenv("POSADMIN_BACKEND_URL", "https://pos.example.com/")
		t.Setenv("POSADMIN_THROTTLE_LOCKOUT_DURATION", "90s")
		t.Setenv("POSADMIN_THROTTLE_MAX_ATTEMPTS", "5")
		t.Setenv("POSADMIN_OUTPUT_PAGE_SIZE", "25")
		t.Setenv("POSADMIN_LOGGING_PROFILE", "structured")

		cfg, err := Load(newViper())
		require.NoError(t, err)
		assert.Equal(t, "https://pos.example.com", cfg.Backend.URL)
		assert.Equal(t, 90*time.Second, cfg.Throttle.LockoutDuration)
		assert.Equal(t, 5, cfg.Throttle.MaxAttempts)
		assert.Equal(t, 25, cfg.Output.PageSize)
		assert.Equal(t, "STRUCTURED", cfg.Logging.Profile)
	})

	t.Run("ConfigFile", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		content := strings.Join([]string{
			"backend:",
			"  url: http://10.0.0.5:5000",
			"  requests_per_second: 0",
			"throttle:",
			"  lockout_duration: 2m",
			"output:",
			"  format: JSON",
		}, "\n")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		v := newViper()
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, "http://10.0.0.5:5000", cfg.Backend.URL)
		assert.Zero(t, cfg.Backend.RequestsPerSecond)
		assert.Equal(t, 2*time.Minute, cfg.Throttle.LockoutDuration)
		assert.Equal(t, "json", cfg.Output.Format)
		assert.Equal(t, 3, cfg.Throttle.MaxAttempts)
	})

	t.Run("Invalid", func(t *testing.T) {
		v := newViper()
		v.Set("backend.url", "localhost")
		v.Set("throttle.max_attempts", 0)
		v.Set("output.page_size", 7)

		_, err := Load(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "backend.url")
		assert.Contains(t, err.Error(), "throttle.max_attempts")
		assert.Contains(t, err.Error(), "output.page_size")
	})

	t.Run("NilViper", func(t *testing.T) {
		_, err := Load(nil)
		require.Error(t, err)
	})
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := DefaultConfigPath()
	if path == "" {
		t.Skip("no config dir on this platform")
	}
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Contains(t, path, AppName)
}
