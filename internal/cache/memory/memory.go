// Package memory is an in-process fake of domain.Cache: a flat map plus
// a slice-backed FIFO queue and a bloom "filter" that is really just a
// set (no false positives, which is fine for tests — any component
// relying on Bloom-style false positives for correctness would be a
// bug, and these tests would not catch it by accident since the fake
// never produces one).
package memory

import (
	"context"
	"sync"

	"github.com/shortnr/urlshort/internal/domain"
)

type Cache struct {
	mu      sync.Mutex
	kv      map[string]string
	queues  map[string][]string
	filters map[string]map[string]struct{}

	// While set, FailGet/FailSet make every Get/Set call return an error,
	// for exercising the "cache-only failure demoted to miss" paths.
	FailGet bool
	FailSet bool
}

func New() *Cache {
	return &Cache{
		kv:      make(map[string]string),
		queues:  make(map[string][]string),
		filters: make(map[string]map[string]struct{}),
	}
}

var _ domain.Cache = (*Cache)(nil)

var errInjected = errInjectedType{}

type errInjectedType struct{}

func (errInjectedType) Error() string { return "injected cache failure" }

func (c *Cache) Get(_ context.Context, slug string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailGet {
		return "", false, errInjected
	}
	url, ok := c.kv[slug]
	return url, ok, nil
}

func (c *Cache) Set(_ context.Context, slug, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailSet {
		return errInjected
	}
	c.kv[slug] = url
	return nil
}

func (c *Cache) QueueLen(_ context.Context, queue string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.queues[queue])), nil
}

func (c *Cache) QueuePushBatch(_ context.Context, queue string, values []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queues[queue] = append(c.queues[queue], values...)
	return nil
}

func (c *Cache) QueuePop(_ context.Context, queue string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.queues[queue]
	if len(q) == 0 {
		return "", false, nil
	}
	val := q[0]
	c.queues[queue] = q[1:]
	return val, true, nil
}

func (c *Cache) BloomAdd(_ context.Context, filter, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.filters[filter]
	if !ok {
		set = make(map[string]struct{})
		c.filters[filter] = set
	}
	set[value] = struct{}{}
	return nil
}

func (c *Cache) BloomMayContain(_ context.Context, filter, value string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.filters[filter][value]
	return ok, nil
}

// Len reports the current queue length directly, for test assertions
// that don't want to go through the context-taking port method.
func (c *Cache) Len(queue string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queues[queue])
}
