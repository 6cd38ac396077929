// Package writesvc implements the shorten operation (spec.md §4.2): an
// atomic reservation that draws a slug from the pool (or takes a custom
// alias), persists it, and write-throughs the shared cache. It is
// grounded on the teacher's urshortener/usecase/url.go Save method,
// generalized from that file's snowflake-ID-as-slug scheme to this
// spec's pool-drawn/alias scheme (see DESIGN.md for why snowflake was
// repurposed rather than kept as the slug source).
package writesvc

import (
	"context"
	"net/url"
	"time"

	"github.com/go-kit/log/level"

	"github.com/shortnr/urlshort/internal/domain"
	"github.com/shortnr/urlshort/internal/logging"
	"github.com/shortnr/urlshort/internal/metrics"
	"github.com/shortnr/urlshort/pkg/slugalphabet"
)

// Config bounds validation and retry behavior (spec.md §4.2) and the
// per-call deadlines spec.md §5 "Timeouts" names for the store and
// cache tiers.
type Config struct {
	PoolDrawRetries int
	MaxURLBytes     int
	AliasMinLen     int
	AliasMaxLen     int
	StoreTimeout    time.Duration
	CacheTimeout    time.Duration
}

// withTimeout bounds ctx by d, the same per-call deadline pattern used
// on every store and cache call below. A non-positive d leaves ctx
// unbounded, so tests that build a Config without setting it keep
// running against the fake store/cache with no deadline.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

type Service struct {
	cfg     Config
	store   domain.Store
	cache   domain.Cache
	logger  logging.Logger
	metrics *metrics.Domain
	now     func() time.Time
}

func New(cfg Config, store domain.Store, cache domain.Cache, logger logging.Logger, domainMetrics *metrics.Domain) *Service {
	return &Service{cfg: cfg, store: store, cache: cache, logger: logger, metrics: domainMetrics, now: time.Now}
}

// Result is the shorten operation's success shape. The HTTP layer
// sends Slug on the wire as "alias" (internal/transport/writesvc.go).
type Result struct {
	Slug string
	URL  string
}

// Shorten reserves a slug for rawURL: alias if non-empty, otherwise one
// drawn from slug_pool. owner is opaque and never validated (spec.md
// §4.2).
func (s *Service) Shorten(ctx context.Context, rawURL, alias, owner string) (Result, error) {
	cleanURL, err := s.validateURL(rawURL)
	if err != nil {
		return Result{}, err
	}

	if alias != "" {
		return s.shortenWithAlias(ctx, cleanURL, alias, owner)
	}
	return s.shortenFromPool(ctx, cleanURL, owner)
}

func (s *Service) validateURL(rawURL string) (string, error) {
	if rawURL == "" {
		return "", domain.New(domain.KindValidation, "url is required")
	}
	if len(rawURL) > s.cfg.MaxURLBytes {
		return "", domain.New(domain.KindValidation, "url exceeds maximum size")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", domain.New(domain.KindValidation, "url must be an absolute http or https URL")
	}
	// The URL is treated as an opaque byte string past this check
	// (spec.md §9: no normalization policy is stated, so none is
	// applied) — rawURL is returned, not parsed.String().
	return rawURL, nil
}

// shortenWithAlias implements spec.md §4.2 Case B: a direct insert of
// the caller-chosen alias, 409 on collision.
func (s *Service) shortenWithAlias(ctx context.Context, cleanURL, alias, owner string) (Result, error) {
	if !slugalphabet.ValidAlias(alias, s.cfg.AliasMinLen, s.cfg.AliasMaxLen) {
		return Result{}, domain.New(domain.KindValidation, "alias is malformed")
	}

	mapping := domain.NewMapping(alias, cleanURL, owner, s.now())
	storeCtx, cancel := withTimeout(ctx, s.cfg.StoreTimeout)
	err := s.store.Insert(storeCtx, mapping)
	cancel()
	if domain.KindOf(err) == domain.KindConflict {
		return Result{}, domain.ErrDuplicateKey
	}
	if err != nil {
		if storeCtx.Err() == context.DeadlineExceeded {
			return Result{}, domain.Wrap(domain.KindUnavailable, "store insert timed out", err)
		}
		return Result{}, err
	}

	s.writeThroughCache(ctx, alias, cleanURL)
	return Result{Slug: alias, URL: cleanURL}, nil
}

// shortenFromPool implements spec.md §4.2 Case A: pop, insert, retry on
// unique-violation up to PoolDrawRetries, 503 on exhaustion.
func (s *Service) shortenFromPool(ctx context.Context, cleanURL, owner string) (Result, error) {
	attempts := s.cfg.PoolDrawRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		cacheCtx, cancel := withTimeout(ctx, s.cfg.CacheTimeout)
		slug, ok, err := s.cache.QueuePop(cacheCtx, domain.SlugPoolKey)
		cancel()
		if err != nil {
			return Result{}, domain.Wrap(domain.KindUnavailable, "pool pop failed", err)
		}
		if !ok {
			return Result{}, domain.ErrPoolEmpty
		}

		mapping := domain.NewMapping(slug, cleanURL, owner, s.now())
		storeCtx, storeCancel := withTimeout(ctx, s.cfg.StoreTimeout)
		err = s.store.Insert(storeCtx, mapping)
		storeCancel()
		if err == nil {
			s.writeThroughCache(ctx, slug, cleanURL)
			return Result{Slug: slug, URL: cleanURL}, nil
		}
		if storeCtx.Err() == context.DeadlineExceeded {
			return Result{}, domain.Wrap(domain.KindUnavailable, "store insert timed out", err)
		}
		if domain.KindOf(err) != domain.KindConflict {
			return Result{}, err
		}

		// The popped slug was stale (it raced with a direct insert, e.g.
		// a concurrent custom alias claiming the same string) — discard
		// it and re-draw (spec.md §4.2 step 3, §4.1 "Correctness note").
		if s.metrics != nil {
			s.metrics.PoolDrawRetryTotal.Inc()
		}
		level.Debug(s.logger).Log("msg", "pool-drawn slug was stale, retrying", "slug", slug, "attempt", attempt)
	}

	return Result{}, domain.ErrPoolEmpty
}

// writeThroughCache is best-effort: failures are logged and counted,
// never surfaced, because the redirect path backfills on miss (spec.md
// §4.2 step 4, §7).
func (s *Service) writeThroughCache(ctx context.Context, slug, url string) {
	setCtx, cancel := withTimeout(ctx, s.cfg.CacheTimeout)
	if err := s.cache.Set(setCtx, slug, url); err != nil {
		if s.metrics != nil {
			s.metrics.CacheWriteFailTotal.Inc()
		}
		level.Warn(s.logger).Log("msg", "cache write-through failed", "slug", slug, "err", err)
	}
	cancel()

	bloomCtx, bloomCancel := withTimeout(ctx, s.cfg.CacheTimeout)
	if err := s.cache.BloomAdd(bloomCtx, domain.BloomFilterKey, slug); err != nil {
		level.Warn(s.logger).Log("msg", "bloom filter seed failed", "slug", slug, "err", err)
	}
	bloomCancel()
}
