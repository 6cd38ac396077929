package writesvc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cachemem "github.com/shortnr/urlshort/internal/cache/memory"
	"github.com/shortnr/urlshort/internal/domain"
	"github.com/shortnr/urlshort/internal/logging"
	storemem "github.com/shortnr/urlshort/internal/store/memory"
)

func newTestService() (*Service, *storemem.Store, *cachemem.Cache) {
	store := storemem.New()
	cache := cachemem.New()
	svc := New(Config{
		PoolDrawRetries: 3,
		MaxURLBytes:     2048,
		AliasMinLen:     3,
		AliasMaxLen:     64,
	}, store, cache, logging.New("test"), nil)
	return svc, store, cache
}

func TestShorten_PoolDrawn_Success(t *testing.T) {
	svc, store, cache := newTestService()
	require.NoError(t, cache.QueuePushBatch(context.Background(), domain.SlugPoolKey, []string{"abc123"}))

	res, err := svc.Shorten(context.Background(), "https://ex.com", "", "")
	require.NoError(t, err)
	assert.Equal(t, "abc123", res.Slug)
	assert.Equal(t, "https://ex.com", res.URL)

	stored, err := store.Get(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://ex.com", stored.URL)
	assert.Equal(t, byte('a'), stored.FirstChar)

	cached, ok, err := cache.Get(context.Background(), "abc123")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://ex.com", cached)
}

func TestShorten_PoolEmpty_NoAlias_Returns503Kind(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Shorten(context.Background(), "https://ex.com", "", "")
	require.Error(t, err)
	assert.Equal(t, domain.KindExhausted, domain.KindOf(err))
}

func TestShorten_CustomAlias_Success(t *testing.T) {
	svc, store, _ := newTestService()

	res, err := svc.Shorten(context.Background(), "https://a", "myalias", "bob")
	require.NoError(t, err)
	assert.Equal(t, "myalias", res.Slug)

	stored, err := store.Get(context.Background(), "myalias")
	require.NoError(t, err)
	assert.Equal(t, "bob", stored.Owner)
}

func TestShorten_CustomAlias_Collision_Returns409Kind(t *testing.T) {
	svc, store, _ := newTestService()
	store.Seed(domain.NewMapping("taken0", "https://old", "", time.Now()))

	_, err := svc.Shorten(context.Background(), "https://a", "taken0", "")
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	// Store row unchanged.
	row, err := store.Get(context.Background(), "taken0")
	require.NoError(t, err)
	assert.Equal(t, "https://old", row.URL)
}

func TestShorten_MalformedURL_Returns400Kind(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []string{"", "not-a-url", "ftp://example.com/file"}
	for _, raw := range tests {
		_, err := svc.Shorten(context.Background(), raw, "", "")
		require.Error(t, err)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	}
}

func TestShorten_MalformedAlias_Returns400Kind(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Shorten(context.Background(), "https://a", "a!", "")
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

// TestShorten_RaceBetweenPoolAndCustomAlias covers spec.md §8 scenario
// 4: a pool-drawn slug races with a concurrent custom-alias insert of
// the same string; the pool-draw path must detect the resulting
// unique-violation and re-draw rather than erroring out.
func TestShorten_RaceBetweenPoolAndCustomAlias(t *testing.T) {
	svc, store, cache := newTestService()
	require.NoError(t, cache.QueuePushBatch(context.Background(), domain.SlugPoolKey, []string{"racez1", "racez2"}))

	// Simulate the custom alias winning the race before the pool-draw
	// insert runs.
	store.Seed(domain.NewMapping("racez1", "https://b", "", time.Now()))

	res, err := svc.Shorten(context.Background(), "https://pool-draw", "", "")
	require.NoError(t, err)
	assert.Equal(t, "racez2", res.Slug, "stale pool entry must be discarded and re-drawn")
}

// TestShorten_ConcurrentSameAlias covers spec.md §8: two concurrent
// calls with the same alias produce exactly one 201 and one 409.
func TestShorten_ConcurrentSameAlias(t *testing.T) {
	svc, _, _ := newTestService()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Shorten(context.Background(), "https://a", "sharedalias", "")
			results[i] = err
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range results {
		if err == nil {
			successes++
		} else if domain.KindOf(err) == domain.KindConflict {
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
}

func TestShorten_CacheWriteFailure_DoesNotFailRequest(t *testing.T) {
	svc, _, cache := newTestService()
	require.NoError(t, cache.QueuePushBatch(context.Background(), domain.SlugPoolKey, []string{"abc123"}))
	cache.FailSet = true

	res, err := svc.Shorten(context.Background(), "https://ex.com", "", "")
	require.NoError(t, err, "cache write-through failure must not fail the request")
	assert.Equal(t, "abc123", res.Slug)
}
