// Package redirectsvc implements the three-tier read-through lookup
// (spec.md §4.3): local LRU, shared cache, persistent store, with
// stampede control on the store tier. It is grounded on the teacher's
// urshortener/usecase/url.go Get method for the tiered-lookup shape,
// generalized from that method's single-cache fallback to this spec's
// three tiers, and on
// other_examples/O-tero-Distributed-Caching-System__singleflight.go for
// the stampede-control design, expressed with golang.org/x/sync/singleflight
// instead of that file's hand-rolled in-flight map.
package redirectsvc

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/shortnr/urlshort/internal/domain"
	"github.com/shortnr/urlshort/internal/logging"
	"github.com/shortnr/urlshort/internal/metrics"
	"github.com/shortnr/urlshort/pkg/slugalphabet"

	"github.com/go-kit/log/level"
)

// Config bounds the local LRU (spec.md §4.3, §6's CACHE_SIZE) and the
// per-call deadlines spec.md §5 "Timeouts" names for the store and
// cache tiers.
type Config struct {
	CacheSize    int
	SlugLen      int
	StoreTimeout time.Duration
	CacheTimeout time.Duration
}

// Service serves the lookup(slug) -> url operation. It owns the
// process-local LRU and the in-flight stampede group; both are
// per-instance state with no cross-process consistency contract
// (spec.md §3 "Ownership").
type Service struct {
	cfg     Config
	store   domain.Store
	cache   domain.Cache
	logger  logging.Logger
	metrics *metrics.Domain

	lru   *lru.Cache[string, string]
	flight singleflight.Group
}

// withTimeout bounds ctx by d, the same per-call deadline pattern used
// on both the store and cache calls below (spec.md §5 "Timeouts"). A
// non-positive d leaves ctx unbounded, so tests that build a Config
// without setting it keep running against the fake store/cache with no
// deadline.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func New(cfg Config, store domain.Store, cache domain.Cache, logger logging.Logger, domainMetrics *metrics.Domain) (*Service, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = 100
	}
	l, err := lru.New[string, string](size)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to allocate local LRU", err)
	}
	return &Service{cfg: cfg, store: store, cache: cache, logger: logger, metrics: domainMetrics, lru: l}, nil
}

// Resolve implements the three-tier lookup (spec.md §4.3). It returns
// domain.ErrNotFound if the slug is absent from every tier, or a
// KindValidation error if the slug is malformed (checked before any
// tier is touched, per spec.md §8 "Slug with invalid character set ->
// 400 ... without touching backing stores").
func (s *Service) Resolve(ctx context.Context, slug string) (string, error) {
	if !slugalphabet.ValidSlug(slug, s.cfg.SlugLen) {
		return "", domain.New(domain.KindValidation, "slug is malformed")
	}

	if url, ok := s.lru.Get(slug); ok {
		if s.metrics != nil {
			s.metrics.LRUHitTotal.Inc()
		}
		return url, nil
	}

	cacheCtx, cancel := withTimeout(ctx, s.cfg.CacheTimeout)
	url, ok, err := s.cache.Get(cacheCtx, slug)
	cancel()
	if err != nil {
		// A cache-layer failure (including a timeout) is demoted to a
		// miss, not surfaced (spec.md §5 "Timeouts", §7 "Cache
		// unreachable during redirect -> success still achievable via
		// store fallback").
		level.Warn(s.logger).Log("msg", "cache lookup failed, falling back to store", "slug", slug, "err", err)
	} else if ok {
		if s.metrics != nil {
			s.metrics.SharedCacheHitTotal.Inc()
		}
		s.lru.Add(slug, url)
		return url, nil
	}

	storeURL, err := s.resolveFromStore(ctx, slug)
	if err != nil {
		return "", err
	}
	return storeURL, nil
}

// resolveFromStore collapses concurrent misses for the same slug onto
// one store round trip (spec.md §4.3 "Stampede control"). Late
// arrivals share the first caller's result, success or failure alike.
func (s *Service) resolveFromStore(ctx context.Context, slug string) (string, error) {
	v, err, shared := s.flight.Do(slug, func() (interface{}, error) {
		storeCtx, cancel := withTimeout(ctx, s.cfg.StoreTimeout)
		mapping, err := s.store.Get(storeCtx, slug)
		cancel()
		if err != nil {
			if storeCtx.Err() == context.DeadlineExceeded {
				return "", domain.Wrap(domain.KindUnavailable, "store lookup timed out", err)
			}
			return "", err
		}
		if s.metrics != nil {
			s.metrics.StoreHitTotal.Inc()
		}

		// Best-effort write-back upward through both tiers (spec.md
		// §4.3 step 3); failure here never fails the lookup since the
		// store result is already in hand.
		cacheCtx, cancel := withTimeout(ctx, s.cfg.CacheTimeout)
		cacheErr := s.cache.Set(cacheCtx, slug, mapping.URL)
		cancel()
		if cacheErr != nil {
			if s.metrics != nil {
				s.metrics.CacheWriteFailTotal.Inc()
			}
			level.Warn(s.logger).Log("msg", "cache write-back failed", "slug", slug, "err", cacheErr)
		}
		s.lru.Add(slug, mapping.URL)

		return mapping.URL, nil
	})
	if shared && s.metrics != nil {
		s.metrics.StampedeCollapsedHits.Inc()
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
