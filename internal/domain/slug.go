// Package domain holds the types and error kinds shared by all three
// services: the mapping record, the store/cache ports they are read and
// written through, and the small set of error kinds the propagation
// policy (SPEC_FULL.md §7) converts to HTTP status at the outermost layer.
package domain

import "time"

// Mapping is the persisted slug -> URL record. FirstChar is always
// Slug[0]; it is derived, never independently supplied by a caller.
type Mapping struct {
	FirstChar byte
	Slug      string
	URL       string
	Owner     string
	CreatedAt time.Time
}

// NewMapping builds a Mapping, deriving FirstChar from Slug; callers never
// supply FirstChar, so the two cannot disagree. An empty slug has no first
// character: that is a programmer error, not a runtime condition, and
// NewMapping panics on it.
func NewMapping(slug, url, owner string, createdAt time.Time) Mapping {
	if slug == "" {
		panic("domain: empty slug")
	}
	return Mapping{
		FirstChar: slug[0],
		Slug:      slug,
		URL:       url,
		Owner:     owner,
		CreatedAt: createdAt,
	}
}

const (
	// SlugPoolKey is the shared cache's FIFO queue of pre-verified,
	// likely-unused slugs fed by slug-filler and drained by write-svc.
	SlugPoolKey = "slug_pool"

	// BloomFilterKey is the shared Bloom filter recording slugs known to
	// be present in the store. Its membership test is consulted as a
	// negative-existence hint only: a positive never proves anything.
	BloomFilterKey = "slug_bloom"
)
