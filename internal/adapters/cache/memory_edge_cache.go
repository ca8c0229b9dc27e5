package cache

import (
	"freight-route-optimizer/internal/domain"
	"freight-route-optimizer/internal/ports"
	"sync"
	"sync/atomic"
)

var _ ports.EdgeCache = (*MemoryEdgeCache)(nil)

// MemoryEdgeCache is an in-process memo of outgoing edges per time-expanded node.
// Reads never block each other; concurrent first populations of the same node
// resolve to the value stored first.
type MemoryEdgeCache struct {
	m      sync.Map
	hits   atomic.Int64
	misses atomic.Int64
	size   atomic.Int64
}

func NewMemoryEdgeCache() *MemoryEdgeCache {
	return &MemoryEdgeCache{}
}

// Look up the edges cached for node.
func (c *MemoryEdgeCache) Load(node domain.TimeNode) ([]domain.TimeEdge, bool) {
	v, ok := c.m.Load(node)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return v.([]domain.TimeEdge), true
}

// Store edges for node unless another caller got there first, and return the
// cached value either way.
func (c *MemoryEdgeCache) LoadOrStore(node domain.TimeNode, edges []domain.TimeEdge) []domain.TimeEdge {
	v, loaded := c.m.LoadOrStore(node, edges)
	if !loaded {
		c.size.Add(1)
	}
	return v.([]domain.TimeEdge)
}

// Snapshot of cache counters.
type EdgeCacheStats struct {
	Hits    int64
	Misses  int64
	Entries int64
}

func (c *MemoryEdgeCache) Stats() EdgeCacheStats {
	return EdgeCacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.size.Load(),
	}
}
