package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-valuation/internal/config"
)

var keys = []string{
	"APP_NAME", "VALUATION_API_URL", "NEXT_PUBLIC_API_URL", "VALUATION_TIMEOUT",
	"VALUATION_LOCALE", "VALUATION_VALIDATE_CONTRACT", "HTTP_ADDR",
	"CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT", "FLUENTBIT_ENABLED",
	"FLUENTBIT_HOST", "FLUENTBIT_PORT", "FLUENTBIT_TAG", "FLUENTBIT_LOG_LEVEL",
}

// clearEnv blanks every key for the test; blank values read as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaultsWithoutEnvFile(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &config.Config{
		AppName:          config.DefaultAppName,
		APIURL:           config.DefaultAPIURL,
		Timeout:          10 * time.Second,
		Locale:           "en",
		ValidateContract: true,
		HTTPAddr:         ":8080",
		CORSOrigins:      []string{"http://localhost:3000"},
		Log:              config.LogConfig{Level: "info", Format: "text"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvFileAndOverrides(t *testing.T) {
	// godotenv never overrides a variable that exists, even when blank.
	clearEnv(t)
	for _, k := range keys {
		os.Unsetenv(k)
	}

	path := filepath.Join(t.TempDir(), ".env")
	body := "NEXT_PUBLIC_API_URL=http://api.test:8000\nVALUATION_TIMEOUT=3s\nVALUATION_LOCALE=fr\nLOG_FORMAT=JSON\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test,")
	t.Setenv("VALUATION_VALIDATE_CONTRACT", "false")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://api.test:8000" || cfg.Timeout != 3*time.Second || cfg.Locale != "fr" {
		t.Fatalf("env file values not applied: %+v", cfg)
	}
	if cfg.Log.Format != "json" || cfg.ValidateContract {
		t.Fatalf("unexpected log/validate settings: %+v", cfg)
	}
	if diff := cmp.Diff([]string{"https://a.test", "https://b.test"}, cfg.CORSOrigins); diff != "" {
		t.Fatalf("origins mismatch (-want +got):\n%s", diff)
	}
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("VALUATION_TIMEOUT", "soon")
	t.Setenv("VALUATION_VALIDATE_CONTRACT", "maybe")

	if _, err := config.FromEnv(); err == nil {
		t.Fatalf("expected an error for invalid values")
	}
}

func TestFluentBitRequiresHost(t *testing.T) {
	clearEnv(t)
	t.Setenv("FLUENTBIT_ENABLED", "true")
	if _, err := config.FromEnv(); err == nil {
		t.Fatalf("expected an error without FLUENTBIT_HOST")
	}

	t.Setenv("FLUENTBIT_HOST", "fluent-bit")
	t.Setenv("FLUENTBIT_PORT", "24225")
	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	want := config.FluentBitConfig{Enabled: true, Host: "fluent-bit", Port: 24225, Tag: config.DefaultAppName, Level: "info"}
	if diff := cmp.Diff(want, cfg.FluentBit); diff != "" {
		t.Fatalf("fluent config mismatch (-want +got):\n%s", diff)
	}
}
