// Package cache holds fetched catalog snapshots in a bounded LRU keyed by
// row limit.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"exodash/internal/domain"
)

// DefaultSize is the default number of snapshots kept.
const DefaultSize = 4

// Recorder observes cache lookups. Implemented by observability.Collector.
type Recorder interface {
	ObserveCache(hit bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCache(bool) {}

// SnapshotCache is a concurrency-safe LRU of snapshots. When full, the least
// recently used limit is evicted.
type SnapshotCache struct {
	entries  *lru.Cache[int, *domain.Snapshot]
	recorder Recorder
}

// New creates a cache holding at most size snapshots.
func New(size int, recorder Recorder) (*SnapshotCache, error) {
	if size < 1 {
		return nil, fmt.Errorf("snapshot cache size must be positive, got %d", size)
	}
	entries, err := lru.New[int, *domain.Snapshot](size)
	if err != nil {
		return nil, fmt.Errorf("create snapshot cache: %w", err)
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &SnapshotCache{entries: entries, recorder: recorder}, nil
}

// Get returns the snapshot for limit and marks it recently used.
func (c *SnapshotCache) Get(limit int) (*domain.Snapshot, bool) {
	snap, ok := c.entries.Get(limit)
	c.recorder.ObserveCache(ok)
	return snap, ok
}

// Peek returns the snapshot for limit without touching recency or metrics.
func (c *SnapshotCache) Peek(limit int) (*domain.Snapshot, bool) {
	return c.entries.Peek(limit)
}

// Put stores snap under its limit, replacing any previous entry.
func (c *SnapshotCache) Put(snap *domain.Snapshot) {
	if snap == nil {
		return
	}
	c.entries.Add(snap.Limit, snap)
}

// Evict removes the snapshot for limit and reports whether one was present.
func (c *SnapshotCache) Evict(limit int) bool {
	return c.entries.Remove(limit)
}

// Len returns the number of cached snapshots.
func (c *SnapshotCache) Len() int {
	return c.entries.Len()
}

// Limits returns the cached limits from oldest to newest.
func (c *SnapshotCache) Limits() []int {
	return c.entries.Keys()
}
