// Package config loads runtime settings from defaults, an optional .env file,
// TICKETHUB_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "TICKETHUB"

	KeyBaseURL           = "base_url"
	KeyHTTPTimeout       = "http_timeout"
	KeyLogPath           = "log_path"
	KeyDebug             = "debug"
	KeyPosterPlaceholder = "poster_placeholder"
	KeyCatalogTTL        = "catalog_ttl"
	KeyMerchantName      = "merchant_name"
	KeySandboxAddr       = "sandbox_addr"
	KeySandboxSecret     = "sandbox_secret"
	KeySandboxNoSeats    = "sandbox_seats_unavailable"

	DefaultBaseURL           = "http://localhost:8080"
	DefaultHTTPTimeout       = 15 * time.Second
	DefaultPosterPlaceholder = "/logo192.png"
	DefaultCatalogTTL        = 5 * time.Minute
	DefaultMerchantName      = "TicketHub"
	DefaultSandboxAddr       = "127.0.0.1:8080"
)

type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Catalog CatalogConfig
	Sandbox SandboxConfig
}

type AppConfig struct {
	Debug        bool
	LogPath      string
	MerchantName string
}

type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
}

type CatalogConfig struct {
	PosterPlaceholder string
	CacheTTL          time.Duration
}

type SandboxConfig struct {
	Addr             string
	Secret           string
	SeatsUnavailable bool
}

// New returns a viper instance with defaults and environment binding set up.
// Callers bind flags onto it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyHTTPTimeout, DefaultHTTPTimeout)
	v.SetDefault(KeyLogPath, "")
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyPosterPlaceholder, DefaultPosterPlaceholder)
	v.SetDefault(KeyCatalogTTL, DefaultCatalogTTL)
	v.SetDefault(KeyMerchantName, DefaultMerchantName)
	v.SetDefault(KeySandboxAddr, DefaultSandboxAddr)
	v.SetDefault(KeySandboxSecret, "")
	v.SetDefault(KeySandboxNoSeats, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are ignored; existing variables are never overridden.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load resolves the configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = New()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(v.GetString(KeyBaseURL)), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid %s %q: must be an http(s) URL", KeyBaseURL, baseURL)
	}

	timeout := v.GetDuration(KeyHTTPTimeout)
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	ttl := v.GetDuration(KeyCatalogTTL)
	if ttl < 0 {
		ttl = 0
	}
	placeholder := strings.TrimSpace(v.GetString(KeyPosterPlaceholder))
	if placeholder == "" {
		placeholder = DefaultPosterPlaceholder
	}
	merchant := strings.TrimSpace(v.GetString(KeyMerchantName))
	if merchant == "" {
		merchant = DefaultMerchantName
	}

	return &Config{
		App: AppConfig{
			Debug:        v.GetBool(KeyDebug),
			LogPath:      v.GetString(KeyLogPath),
			MerchantName: merchant,
		},
		HTTP: HTTPConfig{
			BaseURL: baseURL,
			Timeout: timeout,
		},
		Catalog: CatalogConfig{
			PosterPlaceholder: placeholder,
			CacheTTL:          ttl,
		},
		Sandbox: SandboxConfig{
			Addr:             v.GetString(KeySandboxAddr),
			Secret:           v.GetString(KeySandboxSecret),
			SeatsUnavailable: v.GetBool(KeySandboxNoSeats),
		},
	}, nil
}
