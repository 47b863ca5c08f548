package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Deva-here/ScribbleForge/pkg/cache"
	"github.com/Deva-here/ScribbleForge/pkg/observability"
	"github.com/Deva-here/ScribbleForge/pkg/style"
)

// Analyzer infers partial style settings from a handwriting image given as
// a data URI.
type Analyzer interface {
	AnalyzeHandwriting(ctx context.Context, image string) (style.Partial, error)
}

// Generator produces body text from a free-text prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// DecodeAnalysis extracts the JSON object from a model reply and decodes it
// into a sanitized Partial. Replies wrapped in markdown code fences or
// surrounded by prose are tolerated. Fields outside their domain are dropped
// and logged at debug level.
func DecodeAnalysis(ctx context.Context, reply string) (style.Partial, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return style.Partial{}, fmt.Errorf("%w: no JSON object in reply", ErrEmptyResponse)
	}

	p, dropped, err := style.ParsePartialJSON([]byte(reply[start : end+1]))
	if err != nil {
		return style.Partial{}, err
	}
	if len(dropped) > 0 {
		log.FromContext(ctx).Debug("dropped analyzer fields", "fields", dropped)
	}
	return p, nil
}

// CachedAnalyzer memoizes an Analyzer by image content. Two data URIs that
// decode to the same bytes share an entry.
type CachedAnalyzer struct {
	inner Analyzer
	cache cache.Cache
	keyer cache.Keyer
	opts  cache.AnalysisKeyOpts
	ttl   time.Duration
}

// NewCachedAnalyzer wraps inner. opts identify the provider and model so a
// configuration change never serves stale answers. A nil keyer uses
// cache.NewDefaultKeyer.
func NewCachedAnalyzer(inner Analyzer, c cache.Cache, keyer cache.Keyer, opts cache.AnalysisKeyOpts, ttl time.Duration) *CachedAnalyzer {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &CachedAnalyzer{inner: inner, cache: c, keyer: keyer, opts: opts, ttl: ttl}
}

// AnalyzeHandwriting returns a cached result when one exists, otherwise
// calls the wrapped analyzer and stores its result. Cache failures are
// logged and never fail the analysis. Failed analyses are not cached.
func (a *CachedAnalyzer) AnalyzeHandwriting(ctx context.Context, image string) (style.Partial, error) {
	img, err := ParseDataURI(image)
	if err != nil {
		return style.Partial{}, err
	}

	logger := log.FromContext(ctx)
	hooks := observability.Cache()
	key := a.keyer.AnalysisKey(cache.Hash(img.Data), a.opts)

	data, hit, err := a.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("analysis cache read failed", "err", err)
	}
	if hit {
		var p style.Partial
		if err := json.Unmarshal(data, &p); err == nil {
			hooks.OnCacheHit(ctx, "analysis")
			clean, _ := p.Sanitize()
			return clean, nil
		}
		_ = a.cache.Delete(ctx, key)
	}
	hooks.OnCacheMiss(ctx, "analysis")

	p, err := a.inner.AnalyzeHandwriting(ctx, image)
	if err != nil {
		return style.Partial{}, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := a.cache.Set(ctx, key, data, a.ttl); err != nil {
			logger.Warn("analysis cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, "analysis", len(data))
		}
	}
	return p, nil
}
