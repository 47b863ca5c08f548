// Package config loads ScribbleForge settings from a config file and the
// environment.
//
// Values are layered: built-in defaults, then the config file (TOML or YAML,
// chosen by extension), then SCRIBBLEFORGE_* environment variables. Command
// line flags are applied by the caller on top of the result.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
	"github.com/Deva-here/ScribbleForge/pkg/integrations/gemini"
	"github.com/Deva-here/ScribbleForge/pkg/integrations/openai"
	"github.com/Deva-here/ScribbleForge/pkg/session"
)

// Supported providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config is the resolved application configuration.
type Config struct {
	Provider string `toml:"provider" yaml:"provider" env:"SCRIBBLEFORGE_PROVIDER" validate:"oneof=gemini openai"`
	APIKey   string `toml:"api_key" yaml:"api_key" env:"SCRIBBLEFORGE_API_KEY"`
	Model    string `toml:"model" yaml:"model" env:"SCRIBBLEFORGE_MODEL"`
	BaseURL  string `toml:"base_url" yaml:"base_url" env:"SCRIBBLEFORGE_BASE_URL" validate:"omitempty,http_url"`

	Addr           string        `toml:"addr" yaml:"addr" env:"SCRIBBLEFORGE_ADDR" validate:"required,hostname_port"`
	RequestTimeout time.Duration `toml:"request_timeout" yaml:"request_timeout" env:"SCRIBBLEFORGE_REQUEST_TIMEOUT" validate:"gte=0"`
	FlowTimeout    time.Duration `toml:"flow_timeout" yaml:"flow_timeout" env:"SCRIBBLEFORGE_FLOW_TIMEOUT" validate:"gte=0"`
	SessionTTL     time.Duration `toml:"session_ttl" yaml:"session_ttl" env:"SCRIBBLEFORGE_SESSION_TTL" validate:"gt=0"`
	MaxSessions    int           `toml:"max_sessions" yaml:"max_sessions" env:"SCRIBBLEFORGE_MAX_SESSIONS" validate:"gte=0"`
	SingleFlight   bool          `toml:"single_flight" yaml:"single_flight" env:"SCRIBBLEFORGE_SINGLE_FLIGHT"`

	CacheDir  string        `toml:"cache_dir" yaml:"cache_dir" env:"SCRIBBLEFORGE_CACHE_DIR"`
	CacheTTL  time.Duration `toml:"cache_ttl" yaml:"cache_ttl" env:"SCRIBBLEFORGE_CACHE_TTL" validate:"gte=0"`
	RedisAddr string        `toml:"redis_addr" yaml:"redis_addr" env:"SCRIBBLEFORGE_REDIS_ADDR"`
}

// Default returns the built-in configuration. Model and APIKey are left
// empty; Load fills them per provider.
func Default() Config {
	return Config{
		Provider:       ProviderGemini,
		Addr:           ":8080",
		RequestTimeout: 2 * time.Minute,
		FlowTimeout:    2 * time.Minute,
		SessionTTL:     session.DefaultTTL,
		MaxSessions:    1000,
		CacheTTL:       24 * time.Hour,
	}
}

// DefaultPath returns the config file looked up when none is given:
// $XDG_CONFIG_HOME/scribbleforge/config.toml or the platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "scribbleforge", "config.toml")
}

// Load resolves the configuration. An empty path means DefaultPath, which
// may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.resolve()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseEnv overlays SCRIBBLEFORGE_* environment variables onto target.
// Unset variables leave the existing value alone.
func ParseEnv(target *Config) error {
	if err := env.Parse(target); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "parse env")
	}
	return nil
}

// resolve fills provider-dependent defaults.
func (c *Config) resolve() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.APIKey == "" {
		switch c.Provider {
		case ProviderGemini:
			c.APIKey = os.Getenv("GEMINI_API_KEY")
		case ProviderOpenAI:
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if c.Model == "" {
		c.Model = DefaultModel(c.Provider)
	}
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return openai.DefaultModel
	default:
		return gemini.DefaultModel
	}
}

// MaskedAPIKey returns the API key with all but the last four characters
// hidden, for display.
func (c *Config) MaskedAPIKey() string {
	if c.APIKey == "" {
		return ""
	}
	if len(c.APIKey) <= 4 {
		return "****"
	}
	return "****" + c.APIKey[len(c.APIKey)-4:]
}
