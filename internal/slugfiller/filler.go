// Package slugfiller implements the background producer that keeps the
// shared slug_pool at or above a target depth (spec.md §4.1). It is
// grounded on the teacher's kit/util/rate-limit-token-bucket.go for the
// shape of an explicit state loop driven by a ticker with bounded,
// abandon-on-error ticks, generalized from that file's token-bucket
// refill to this spec's measure/generate/verify/enqueue cycle.
package slugfiller

import (
	"context"
	"time"

	"github.com/go-kit/log/level"

	"github.com/shortnr/urlshort/internal/domain"
	"github.com/shortnr/urlshort/internal/logging"
	"github.com/shortnr/urlshort/internal/metrics"
	"github.com/shortnr/urlshort/pkg/slugalphabet"
)

// State is the slug-filler's state machine (spec.md §4.1): IDLE ->
// MEASURING -> GENERATING -> VERIFYING -> ENQUEUING -> IDLE. Any error
// transitions back to IDLE and is logged by Run; no metric counts
// failed ticks.
type State int

const (
	StateIdle State = iota
	StateMeasuring
	StateGenerating
	StateVerifying
	StateEnqueuing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateMeasuring:
		return "MEASURING"
	case StateGenerating:
		return "GENERATING"
	case StateVerifying:
		return "VERIFYING"
	case StateEnqueuing:
		return "ENQUEUING"
	default:
		return "UNKNOWN"
	}
}

// Config controls the filler's target depth, slug length, batch size
// and refill interval (spec.md §4.1's "Configuration").
type Config struct {
	TargetDepth    int
	SlugLen        int
	BatchSize      int
	RefillInterval time.Duration
	BloomPreFilter bool
}

type Filler struct {
	cfg     Config
	store   domain.Store
	cache   domain.Cache
	logger  logging.Logger
	metrics *metrics.Domain

	// state is unexported; tests in this package read it to assert the
	// machine returned to IDLE after a tick.
	state State
}

func New(cfg Config, store domain.Store, cache domain.Cache, logger logging.Logger, domainMetrics *metrics.Domain) *Filler {
	return &Filler{cfg: cfg, store: store, cache: cache, logger: logger, metrics: domainMetrics, state: StateIdle}
}

// Run loops forever, ticking every cfg.RefillInterval until ctx is
// cancelled. Store or cache errors abandon the current tick; no partial
// enqueue is retried within the tick (spec.md §4.1 "Failure semantics").
func (f *Filler) Run(ctx context.Context) {
	ticker := time.NewTicker(f.cfg.RefillInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.Tick(ctx); err != nil {
				level.Warn(f.logger).Log("msg", "refill tick failed", "err", err, "state", f.state.String())
			}
			f.state = StateIdle
		}
	}
}

// Tick runs one measure/generate/verify/enqueue cycle. It is exported
// so tests can drive the state machine deterministically instead of
// waiting on a ticker.
func (f *Filler) Tick(ctx context.Context) error {
	f.state = StateMeasuring
	n, err := f.cache.QueueLen(ctx, domain.SlugPoolKey)
	if err != nil {
		return err
	}
	if n >= int64(f.cfg.TargetDepth) {
		return nil
	}

	need := int(int64(f.cfg.TargetDepth) - n)
	batchSize := f.cfg.BatchSize
	if need < batchSize {
		batchSize = need
	}
	if batchSize <= 0 {
		return nil
	}

	f.state = StateGenerating
	candidates := slugalphabet.GenerateBatch(batchSize, f.cfg.SlugLen)

	f.state = StateVerifying
	absent, err := f.verifyAbsent(ctx, candidates)
	if err != nil {
		return err
	}

	collisions := len(candidates) - len(absent)
	if collisions > 0 && f.metrics != nil {
		f.metrics.CollisionTotal.Add(float64(collisions))
	}
	if len(absent) == 0 {
		f.state = StateIdle
		return nil
	}

	f.state = StateEnqueuing
	if err := f.cache.QueuePushBatch(ctx, domain.SlugPoolKey, absent); err != nil {
		return err
	}

	f.state = StateIdle
	return nil
}

// verifyAbsent checks candidates against the persistent store with one
// grouped query (spec.md §4.1 step 4). When BloomPreFilter is set,
// candidates the Bloom filter reports as definitely absent (a false
// result, which the filter never gets wrong) skip the store round trip
// entirely; only candidates the filter flags as "maybe present" — which
// may be a false positive — are sent to the store to be checked
// authoritatively (SPEC_FULL.md §4.1).
func (f *Filler) verifyAbsent(ctx context.Context, candidates []string) ([]string, error) {
	toCheck := candidates
	var bloomAbsent []string
	if f.cfg.BloomPreFilter {
		toCheck = make([]string, 0, len(candidates))
		bloomAbsent = make([]string, 0, len(candidates))
		for _, c := range candidates {
			mayExist, err := f.cache.BloomMayContain(ctx, domain.BloomFilterKey, c)
			if err != nil {
				// Bloom filter errors are cache-layer errors; degrade to
				// "always check the store" rather than fail the tick.
				toCheck = candidates
				bloomAbsent = nil
				break
			}
			if mayExist {
				toCheck = append(toCheck, c)
			} else {
				bloomAbsent = append(bloomAbsent, c)
			}
		}
	}

	existing, err := f.store.ExistingSlugs(ctx, toCheck)
	if err != nil {
		return nil, err
	}

	absent := make([]string, 0, len(candidates))
	absent = append(absent, bloomAbsent...)
	for _, c := range toCheck {
		if existing[c] {
			continue
		}
		absent = append(absent, c)
	}
	return absent, nil
}
