package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_PORT", "LOG_LEVEL", "LOG_FORMAT", "MATCH_THRESHOLD", "HTTP_READ_TIMEOUT", "SEED_DEMO_DATA"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 0.5, cfg.Match.Threshold)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.True(t, cfg.Match.SeedDemoData)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "8081")
	t.Setenv("HTTP_HOST", "127.0.0.1")
	t.Setenv("MATCH_THRESHOLD", "0.75")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("WEIGHT_PROFILE", "contact")
	t.Setenv("SEED_DEMO_DATA", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8081", cfg.HTTP.Addr())
	assert.Equal(t, 0.75, cfg.Match.Threshold)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "contact", cfg.Match.Profile)
	assert.False(t, cfg.Match.SeedDemoData)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")
	_, err := Load()
	assert.ErrorContains(t, err, "HTTP_PORT")

	t.Setenv("HTTP_PORT", "")
	t.Setenv("HTTP_WRITE_TIMEOUT", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "HTTP_WRITE_TIMEOUT")
}

func TestValidate(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 70000},
		Logging: LoggingConfig{Level: "loud", Format: "xml"},
		Match:   MatchConfig{Threshold: 1.5},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port 70000")
	assert.Contains(t, err.Error(), "log level")
	assert.Contains(t, err.Error(), "log format")
	assert.Contains(t, err.Error(), "threshold")
}

func TestValidateThreshold(t *testing.T) {
	base := Config{HTTP: HTTPConfig{Port: 3000}, Logging: LoggingConfig{Level: "info", Format: "json"}}
	cases := []struct {
		threshold float64
		ok        bool
	}{
		{0, true},
		{0.5, true},
		{1, true},
		{-0.01, false},
		{1.01, false},
		{math.NaN(), false},
		{math.Inf(1), false},
	}
	for _, tc := range cases {
		cfg := base
		cfg.Match.Threshold = tc.threshold
		if tc.ok {
			assert.NoError(t, cfg.Validate(), "threshold %v", tc.threshold)
		} else {
			assert.ErrorContains(t, cfg.Validate(), "threshold", "threshold %v", tc.threshold)
		}
	}
}

func TestLoadedNaNThresholdFailsValidation(t *testing.T) {
	t.Setenv("MATCH_THRESHOLD", "NaN")
	cfg, err := Load()
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "threshold")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("RECORDLINK_TEST_KEY=from-file\n"), 0o600))
	t.Setenv("RECORDLINK_TEST_KEY", "")
	os.Unsetenv("RECORDLINK_TEST_KEY")

	LoadEnv(path)
	assert.Equal(t, "from-file", GetEnv("RECORDLINK_TEST_KEY", "none"))

	LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
}
