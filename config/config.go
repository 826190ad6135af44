package config

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values.
type Config struct {
	AppName string
	HTTP    HTTPConfig
	Logging LoggingConfig
	Match   MatchConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level  string
	Format string // json|console
}

// MatchConfig selects weights and thresholds for scoring.
type MatchConfig struct {
	ProfilesDir        string
	Profile            string
	Threshold          float64
	DefaultPhoneRegion string
	SeedDemoData       bool
}

const (
	defaultAppName         = "recordlink"
	defaultHost            = "0.0.0.0"
	defaultPort            = 3000
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultThreshold       = 0.5
)

// LoadEnv loads a .env file if one exists. A missing file is not an error.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("could not load .env file: %v", err)
	}
}

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		AppName: GetEnv("APP_NAME", defaultAppName),
		HTTP: HTTPConfig{
			Host: GetEnv("HTTP_HOST", defaultHost),
		},
		Logging: LoggingConfig{
			Level:  GetEnv("LOG_LEVEL", defaultLogLevel),
			Format: GetEnv("LOG_FORMAT", defaultLogFormat),
		},
		Match: MatchConfig{
			ProfilesDir:        GetEnv("WEIGHT_PROFILES_DIR", ""),
			Profile:            GetEnv("WEIGHT_PROFILE", ""),
			DefaultPhoneRegion: GetEnv("DEFAULT_PHONE_REGION", ""),
			SeedDemoData:       GetEnvBool("SEED_DEMO_DATA", true),
		},
	}

	var err error
	if cfg.HTTP.Port, err = getEnvInt("HTTP_PORT", defaultPort); err != nil {
		return Config{}, err
	}
	if cfg.HTTP.ReadTimeout, err = getEnvDuration("HTTP_READ_TIMEOUT", defaultReadTimeout); err != nil {
		return Config{}, err
	}
	if cfg.HTTP.WriteTimeout, err = getEnvDuration("HTTP_WRITE_TIMEOUT", defaultWriteTimeout); err != nil {
		return Config{}, err
	}
	if cfg.HTTP.ShutdownTimeout, err = getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Match.Threshold, err = getEnvFloat("MATCH_THRESHOLD", defaultThreshold); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that Load cannot.
func (c Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range", c.HTTP.Port))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Logging.Format))
	}
	if math.IsNaN(c.Match.Threshold) || c.Match.Threshold < 0 || c.Match.Threshold > 1 {
		errs = append(errs, fmt.Errorf("match threshold %v is outside [0,1]", c.Match.Threshold))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return d, nil
}
