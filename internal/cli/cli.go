package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Deva-here/ScribbleForge/internal/config"
	"github.com/Deva-here/ScribbleForge/pkg/cache"
	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
	"github.com/Deva-here/ScribbleForge/pkg/integrations"
	"github.com/Deva-here/ScribbleForge/pkg/integrations/gemini"
	"github.com/Deva-here/ScribbleForge/pkg/integrations/openai"
	"github.com/Deva-here/ScribbleForge/pkg/studio"
)

const (
	// appName is the application name used for directories and display.
	appName = "scribbleforge"

	// redisKeyPrefix scopes shared cache entries.
	redisKeyPrefix = appName + ":"

	// providerRetries is how often the openai SDK retries a request.
	providerRetries = 2
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Persistent flag values. Empty means "use the config".
	configPath string
	provider   string
	model      string
	noCache    bool
	verbose    bool

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig loads the configuration once and applies flag overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.provider != "" && c.provider != cfg.Provider {
		cfg.Provider = c.provider
		if c.model == "" {
			cfg.Model = config.DefaultModel(cfg.Provider)
		}
	}
	if c.model != "" {
		cfg.Model = c.model
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// services bundles the collaborators a controller needs and what must be
// closed afterwards.
type services struct {
	gen   studio.TextGenerator
	an    studio.StyleAnalyzer
	cache cache.Cache
}

func (s *services) Close() error { return s.cache.Close() }

// newServices builds the provider client and wraps its analyzer in the
// analysis cache.
func (c *CLI) newServices(ctx context.Context) (*services, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, errs.New(errs.ErrCodeUnauthorized,
			"no API key for %s: set SCRIBBLEFORGE_API_KEY or api_key in %s", cfg.Provider, config.DefaultPath())
	}

	var provider interface {
		studio.TextGenerator
		integrations.Analyzer
	}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		provider = openai.NewClient(openai.Config{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			MaxRetries: providerRetries,
		})
	default:
		provider = gemini.NewClient(gemini.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	}

	store := c.newCache(ctx, cfg)
	return &services{gen: provider, an: newAnalyzer(provider, store, cfg), cache: store}, nil
}

// newAnalyzer wraps an in the analysis cache. Keys are left unprefixed:
// a Redis cache namespaces them itself.
func newAnalyzer(an integrations.Analyzer, store cache.Cache, cfg *config.Config) studio.StyleAnalyzer {
	return integrations.NewCachedAnalyzer(an, store, cache.NewDefaultKeyer(),
		cache.AnalysisKeyOpts{Provider: cfg.Provider, Model: cfg.Model}, cfg.CacheTTL)
}

// newCache picks the analysis cache: none with --no-cache, Redis when an
// address is configured, the local file cache otherwise. A cache that
// cannot be opened degrades to none.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if c.noCache || cfg.CacheTTL == 0 {
		return cache.NewNullCache()
	}
	if cfg.RedisAddr != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rc, err := cache.NewRedisCache(dialCtx, cfg.RedisAddr, cache.WithKeyPrefix(redisKeyPrefix))
		if err != nil {
			c.Logger.Warn("redis cache unavailable, continuing without cache", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNullCache()
		}
		return rc
	}
	fc, err := cache.NewFileCache(cfg.CacheDir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, continuing without cache", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// newController creates a controller wired to svc with the configured
// options.
func (c *CLI) newController(svc *services, opts ...studio.Option) *studio.Controller {
	base := []studio.Option{studio.WithLogger(c.Logger)}
	if c.cfg != nil {
		base = append(base, studio.WithSingleFlight(c.cfg.SingleFlight))
	}
	return studio.New(svc.gen, svc.an, append(base, opts...)...)
}
