package slugfiller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cachemem "github.com/shortnr/urlshort/internal/cache/memory"
	"github.com/shortnr/urlshort/internal/domain"
	"github.com/shortnr/urlshort/internal/logging"
	storemem "github.com/shortnr/urlshort/internal/store/memory"
)

func newTestFiller(cfg Config) (*Filler, *storemem.Store, *cachemem.Cache) {
	store := storemem.New()
	cache := cachemem.New()
	f := New(cfg, store, cache, logging.New("test"), nil)
	return f, store, cache
}

func TestTick_RefillsToTargetDepth(t *testing.T) {
	f, store, cache := newTestFiller(Config{
		TargetDepth:    100,
		SlugLen:        6,
		BatchSize:      1000,
		RefillInterval: time.Millisecond,
	})
	_ = store

	require.NoError(t, f.Tick(context.Background()))

	n, err := cache.QueueLen(context.Background(), domain.SlugPoolKey)
	require.NoError(t, err)
	assert.Equal(t, int64(100), n)
	assert.Equal(t, StateIdle, f.state)
}

func TestTick_NoOpWhenPoolAtHighWaterMark(t *testing.T) {
	f, _, cache := newTestFiller(Config{
		TargetDepth:    10,
		SlugLen:        6,
		BatchSize:      1000,
		RefillInterval: time.Millisecond,
	})
	require.NoError(t, cache.QueuePushBatch(context.Background(), domain.SlugPoolKey, []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}))

	require.NoError(t, f.Tick(context.Background()))

	n, _ := cache.QueueLen(context.Background(), domain.SlugPoolKey)
	assert.Equal(t, int64(10), n, "tick should not have generated or pushed anything")
}

func TestTick_OnlyEnqueuesSlugsAbsentFromStore(t *testing.T) {
	f, store, cache := newTestFiller(Config{
		TargetDepth:    5,
		SlugLen:        6,
		BatchSize:      5,
		RefillInterval: time.Millisecond,
	})

	// Seed the store so at least one freshly generated candidate will
	// very likely collide is impractical to force deterministically, so
	// instead verify the invariant directly: every slug enqueued must be
	// absent from the store at the moment of the check.
	require.NoError(t, f.Tick(context.Background()))

	n, _ := cache.QueueLen(context.Background(), domain.SlugPoolKey)
	for i := int64(0); i < n; i++ {
		slug, ok, err := cache.QueuePop(context.Background(), domain.SlugPoolKey)
		require.NoError(t, err)
		require.True(t, ok)
		_, err = store.Get(context.Background(), slug)
		assert.ErrorIs(t, err, domain.ErrNotFound, "enqueued slug must have been absent from the store")
	}
}

func TestTick_BloomPreFilterSkipsStoreCheckForDefiniteAbsences(t *testing.T) {
	f, store, cache := newTestFiller(Config{
		TargetDepth:    0, // force need==0 path to be skipped; we call verifyAbsent directly
		SlugLen:        6,
		BatchSize:      10,
		RefillInterval: time.Millisecond,
		BloomPreFilter: true,
	})
	_ = store

	candidates := []string{"aaaaaa", "bbbbbb", "cccccc"}
	// Mark "bbbbbb" as possibly present in the bloom filter; the other
	// two are definitely absent from it.
	require.NoError(t, cache.BloomAdd(context.Background(), domain.BloomFilterKey, "bbbbbb"))
	store.Seed(domain.NewMapping("bbbbbb", "https://example.com", "", time.Now()))
	recording := &recordingStore{Store: store}
	f.store = recording

	absent, err := f.verifyAbsent(context.Background(), candidates)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"aaaaaa", "cccccc"}, absent)
	assert.Equal(t, []string{"bbbbbb"}, recording.checked, "only the bloom-positive candidate should reach the store")
}

type recordingStore struct {
	domain.Store
	checked []string
}

func (r *recordingStore) ExistingSlugs(ctx context.Context, candidates []string) (map[string]bool, error) {
	r.checked = append(r.checked, candidates...)
	return r.Store.ExistingSlugs(ctx, candidates)
}

func TestTick_AbandonsOnStoreError(t *testing.T) {
	f, _, cache := newTestFiller(Config{
		TargetDepth:    10,
		SlugLen:        6,
		BatchSize:      10,
		RefillInterval: time.Millisecond,
	})
	f.store = failingStore{}

	err := f.Tick(context.Background())
	assert.Error(t, err)

	n, _ := cache.QueueLen(context.Background(), domain.SlugPoolKey)
	assert.Equal(t, int64(0), n, "a failed tick must not partially enqueue")
}

type failingStore struct{}

func (failingStore) Insert(context.Context, domain.Mapping) error { return assertUnused() }
func (failingStore) Get(context.Context, string) (domain.Mapping, error) {
	return domain.Mapping{}, assertUnused()
}
func (failingStore) ExistingSlugs(context.Context, []string) (map[string]bool, error) {
	return nil, domain.New(domain.KindUnavailable, "store unavailable")
}

func assertUnused() error { return domain.New(domain.KindUnavailable, "not used in this test") }
