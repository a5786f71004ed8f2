// Package config loads the runtime configuration of the valuation binaries
// from an optional .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL   = "http://localhost:8000"
	DefaultTimeout  = 10 * time.Second
	DefaultLocale   = "en"
	DefaultHTTPAddr = ":8080"
	DefaultOrigin   = "http://localhost:3000"
	DefaultAppName  = "go-valuation"
)

// Config is the application configuration.
type Config struct {
	AppName          string
	APIURL           string
	Timeout          time.Duration
	Locale           string
	ValidateContract bool

	HTTPAddr    string
	CORSOrigins []string

	Log       LogConfig
	FluentBit FluentBitConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type FluentBitConfig struct {
	Enabled bool
	Host    string
	Port    int
	Tag     string
	Level   string
}

// Load reads envPath (default .env) when it exists, then the environment.
// Variables already set in the environment win over the file.
func Load(envPath ...string) (*Config, error) {
	var err error
	if len(envPath) > 0 && envPath[0] != "" {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		AppName:  getEnv("APP_NAME", DefaultAppName),
		APIURL:   getEnv("VALUATION_API_URL", getEnv("NEXT_PUBLIC_API_URL", DefaultAPIURL)),
		Locale:   getEnv("VALUATION_LOCALE", DefaultLocale),
		HTTPAddr: getEnv("HTTP_ADDR", DefaultHTTPAddr),
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
	}

	timeout, err := getEnvAsDuration("VALUATION_TIMEOUT", DefaultTimeout)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Timeout = timeout

	validate, err := getEnvAsBool("VALUATION_VALIDATE_CONTRACT", true)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.ValidateContract = validate

	cfg.CORSOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", DefaultOrigin))

	fluentEnabled, err := getEnvAsBool("FLUENTBIT_ENABLED", false)
	if err != nil {
		errs = append(errs, err)
	}
	if fluentEnabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		port, err := getEnvAsInt("FLUENTBIT_PORT", 24224)
		if err != nil {
			errs = append(errs, err)
		}
		cfg.FluentBit.Port = port
		cfg.FluentBit.Tag = getEnv("FLUENTBIT_TAG", cfg.AppName)
		cfg.FluentBit.Level = strings.ToLower(getEnv("FLUENTBIT_LOG_LEVEL", "info"))
		cfg.FluentBit.Enabled = cfg.FluentBit.Host != ""
		if !cfg.FluentBit.Enabled {
			errs = append(errs, errors.New("config: FLUENTBIT_ENABLED is set but FLUENTBIT_HOST is empty"))
		}
	}

	if cfg.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("config: VALUATION_TIMEOUT must be positive, got %s", cfg.Timeout))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultValue, fmt.Errorf("config: %s=%q is not an integer", key, raw)
	}
	return v, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return defaultValue, fmt.Errorf("config: %s=%q is not a boolean", key, raw)
	}
	return v, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return defaultValue, fmt.Errorf("config: %s=%q is not a duration", key, raw)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
