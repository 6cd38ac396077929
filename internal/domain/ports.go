package domain

import "context"

// Store is the abstract, partitioned persistence port spec.md §1
// describes: durable slug -> URL mapping with unique-key insert
// semantics. The Postgres adapter (internal/store/postgres) and the
// in-memory fake used by tests both satisfy it.
type Store interface {
	// Insert persists m under the (FirstChar, Slug) key. It returns
	// ErrDuplicateKey (check with errors.Is/KindOf) if the key already
	// exists; the store's own unique constraint is the arbiter of races,
	// not any check this method performs beforehand.
	Insert(ctx context.Context, m Mapping) error

	// Get looks up a mapping by slug, querying only the partition keyed
	// by slug[0]. Returns ErrNotFound if absent.
	Get(ctx context.Context, slug string) (Mapping, error)

	// ExistingSlugs reports which of candidates are already present in
	// the store, via a single grouped query (or bounded parallel
	// per-partition queries) rather than one round trip per candidate.
	ExistingSlugs(ctx context.Context, candidates []string) (map[string]bool, error)
}

// Cache is the abstract shared remote map plus FIFO work queue spec.md
// §1 describes. The Redis adapter (internal/cache/redis) and the
// in-memory fake both satisfy it.
type Cache interface {
	// Get returns the cached URL for slug, and whether it was present.
	// A cache error is never surfaced as an error to callers on the read
	// path (SPEC_FULL.md §7) — callers demote an error return to a miss.
	Get(ctx context.Context, slug string) (url string, ok bool, err error)

	// Set write-through/backfills slug -> url into the shared cache.
	Set(ctx context.Context, slug, url string) error

	// QueueLen returns the current length of the named FIFO queue.
	QueueLen(ctx context.Context, queue string) (int64, error)

	// QueuePushBatch appends values to the tail of the named FIFO queue.
	QueuePushBatch(ctx context.Context, queue string, values []string) error

	// QueuePop removes and returns one value from the head of the named
	// FIFO queue. ok is false if the queue was empty.
	QueuePop(ctx context.Context, queue string) (value string, ok bool, err error)

	// BloomAdd records value as present in the named Bloom filter.
	BloomAdd(ctx context.Context, filter, value string) error

	// BloomMayContain reports whether value might be a member of the
	// named Bloom filter. A false result is authoritative (no false
	// negatives); a true result is not (false positives are possible)
	// and must never be treated as proof of existence on its own.
	BloomMayContain(ctx context.Context, filter, value string) (bool, error)
}
