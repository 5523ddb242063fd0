package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.HTTP.BaseURL != DefaultBaseURL {
		t.Fatalf("expected %s, got %s", DefaultBaseURL, cfg.HTTP.BaseURL)
	}
	if cfg.HTTP.Timeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %s", cfg.HTTP.Timeout)
	}
	if cfg.Catalog.PosterPlaceholder != "/logo192.png" {
		t.Fatalf("unexpected placeholder: %s", cfg.Catalog.PosterPlaceholder)
	}
	if cfg.Catalog.CacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %s", cfg.Catalog.CacheTTL)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TICKETHUB_BASE_URL", "https://tickets.example.com/")
	t.Setenv("TICKETHUB_HTTP_TIMEOUT", "3s")
	t.Setenv("TICKETHUB_DEBUG", "true")
	t.Setenv("TICKETHUB_SANDBOX_SEATS_UNAVAILABLE", "true")

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.HTTP.BaseURL != "https://tickets.example.com" {
		t.Fatalf("expected trimmed base url, got %s", cfg.HTTP.BaseURL)
	}
	if cfg.HTTP.Timeout != 3*time.Second {
		t.Fatalf("expected 3s, got %s", cfg.HTTP.Timeout)
	}
	if !cfg.App.Debug {
		t.Fatal("expected debug enabled")
	}
	if !cfg.Sandbox.SeatsUnavailable {
		t.Fatal("expected sandbox seats toggle enabled")
	}
}

func TestLoad_RejectsInvalidBaseURL(t *testing.T) {
	v := New()
	v.Set(KeyBaseURL, "localhost:8080")
	if _, err := Load(v); err == nil {
		t.Fatal("expected error for base url without scheme")
	}
}

func TestLoad_NonPositiveTimeoutFallsBack(t *testing.T) {
	v := New()
	v.Set(KeyHTTPTimeout, "0s")
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.HTTP.Timeout != DefaultHTTPTimeout {
		t.Fatalf("expected default timeout, got %s", cfg.HTTP.Timeout)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TICKETHUB_MERCHANT_NAME=Box Office\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("TICKETHUB_MERCHANT_NAME", "")
	os.Unsetenv("TICKETHUB_MERCHANT_NAME")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.App.MerchantName != "Box Office" {
		t.Fatalf("expected merchant from .env, got %q", cfg.App.MerchantName)
	}
}
