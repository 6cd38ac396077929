package redirectsvc

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cachemem "github.com/shortnr/urlshort/internal/cache/memory"
	"github.com/shortnr/urlshort/internal/domain"
	"github.com/shortnr/urlshort/internal/logging"
	storemem "github.com/shortnr/urlshort/internal/store/memory"
)

func newTestService(t *testing.T, cfg Config) (*Service, *storemem.Store, *cachemem.Cache) {
	if cfg.SlugLen == 0 {
		cfg.SlugLen = 6
	}
	store := storemem.New()
	cache := cachemem.New()
	svc, err := New(cfg, store, cache, logging.New("test"), nil)
	require.NoError(t, err)
	return svc, store, cache
}

func TestResolve_MalformedSlug_NeverTouchesStores(t *testing.T) {
	svc, store, cache := newTestService(t, Config{CacheSize: 10})

	_, err := svc.Resolve(context.Background(), "!!!")
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, cache.Len(domain.SlugPoolKey))
}

func TestResolve_StoreHit_BackfillsCacheAndLRU(t *testing.T) {
	svc, store, cache := newTestService(t, Config{CacheSize: 10})
	store.Seed(domain.NewMapping("abc123", "https://ex.com", "", time.Now()))

	url, err := svc.Resolve(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://ex.com", url)

	cached, ok, err := cache.Get(context.Background(), "abc123")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://ex.com", cached)

	cachedURL, ok := svc.lru.Get("abc123")
	assert.True(t, ok)
	assert.Equal(t, "https://ex.com", cachedURL)
}

func TestResolve_SharedCacheHit_PromotesToLRU(t *testing.T) {
	svc, _, cache := newTestService(t, Config{CacheSize: 10})
	require.NoError(t, cache.Set(context.Background(), "abc123", "https://ex.com"))

	url, err := svc.Resolve(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://ex.com", url)

	_, ok := svc.lru.Get("abc123")
	assert.True(t, ok, "shared cache hit should promote into the local LRU")
}

func TestResolve_LocalLRUHit_SkipsCacheAndStore(t *testing.T) {
	svc, store, cache := newTestService(t, Config{CacheSize: 10})
	svc.lru.Add("abc123", "https://ex.com")
	cache.FailGet = true // if the cache were consulted, this would surface

	url, err := svc.Resolve(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://ex.com", url)
	assert.Equal(t, 0, store.Len())
}

func TestResolve_NotFoundInAnyTier(t *testing.T) {
	svc, _, _ := newTestService(t, Config{CacheSize: 10})

	_, err := svc.Resolve(context.Background(), "abc123")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolve_CacheErrorFallsBackToStore(t *testing.T) {
	svc, store, cache := newTestService(t, Config{CacheSize: 10})
	store.Seed(domain.NewMapping("abc123", "https://ex.com", "", time.Now()))
	cache.FailGet = true

	url, err := svc.Resolve(context.Background(), "abc123")
	require.NoError(t, err, "a cache error must be demoted to a miss, not surfaced")
	assert.Equal(t, "https://ex.com", url)
}

func TestResolve_StoreUnavailable_Returns503Kind(t *testing.T) {
	svc, _, _ := newTestService(t, Config{CacheSize: 10})
	svc.store = failingStore{}

	_, err := svc.Resolve(context.Background(), "abc123")
	require.Error(t, err)
	assert.Equal(t, domain.KindUnavailable, domain.KindOf(err))
}

// TestResolve_Stampede covers spec.md §8 scenario 6: many concurrent
// misses for the same not-yet-cached slug collapse onto one store
// round trip.
func TestResolve_Stampede(t *testing.T) {
	svc, store, _ := newTestService(t, Config{CacheSize: 10})
	counting := &countingStore{Store: store}
	store.Seed(domain.NewMapping("abc123", "https://ex.com", "", time.Now()))
	svc.store = counting

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			url, err := svc.Resolve(context.Background(), "abc123")
			assert.NoError(t, err)
			assert.Equal(t, "https://ex.com", url)
		}()
	}
	wg.Wait()

	// singleflight collapses all 200 concurrent misses onto one store
	// round trip; allow a little slack for a second wave that arrives
	// after the first flight.Do call has already returned.
	assert.LessOrEqual(t, counting.gets.Load(), int64(5), "singleflight should collapse nearly all concurrent misses onto one store call")
	assert.GreaterOrEqual(t, counting.gets.Load(), int64(1))
}

type failingStore struct{}

func (failingStore) Insert(context.Context, domain.Mapping) error { return assertUnused() }
func (failingStore) Get(context.Context, string) (domain.Mapping, error) {
	return domain.Mapping{}, domain.New(domain.KindUnavailable, "store unavailable")
}
func (failingStore) ExistingSlugs(context.Context, []string) (map[string]bool, error) {
	return nil, assertUnused()
}

func assertUnused() error { return domain.New(domain.KindUnavailable, "not used in this test") }

type countingStore struct {
	domain.Store
	gets atomic.Int64
}

func (c *countingStore) Get(ctx context.Context, slug string) (domain.Mapping, error) {
	c.gets.Add(1)
	return c.Store.Get(ctx, slug)
}
