// Package memocache implements a classification memoization cache: since
// Classify is pure (spec.md invariant P1), the same (name, type, catalog
// version) key always yields the same Result, so repeated names across a
// large zone export need only be scored once. The sharded, lock-per-shard
// design generalises the teacher's DNS response cache (internal/cache in
// the source), with the wire-format/TTL/DNSSEC fields stripped since a
// memoized classification never expires on its own — it is only ever
// invalidated by loading a different pattern catalog.
package memocache

import (
	"hash/fnv"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/dnsscience/dnsriskscan/internal/classifier"
)

const (
	// defaultShardCount is a power of 2 for fast modulo via bitmasking.
	defaultShardCount = 64

	// defaultShardSize bounds memory use per shard before eviction kicks in.
	defaultShardSize = 4096
)

type shard struct {
	mu      sync.RWMutex
	entries map[string]classifier.Result
	order   []string // insertion order, for FIFO eviction when full
	maxSize int
}

// Cache is a thread-safe, sharded memoization cache keyed by a caller-built
// string key (typically normalized record name + type + catalog version).
type Cache struct {
	shards    []*shard
	shardMask uint64

	hits   atomic.Uint64
	misses atomic.Uint64
	evicts atomic.Uint64
}

// Config holds cache sizing.
type Config struct {
	// MaxEntries bounds total entries across all shards (default
	// defaultShardSize per shard, i.e. ShardCount * defaultShardSize).
	MaxEntries int

	// ShardCount, rounded up to the next power of 2 (default 64).
	ShardCount int
}

// New creates a classification memoization cache.
func New(cfg Config) *Cache {
	if cfg.ShardCount == 0 {
		cfg.ShardCount = defaultShardCount
	}
	if cfg.ShardCount&(cfg.ShardCount-1) != 0 {
		n := 1
		for n < cfg.ShardCount {
			n <<= 1
		}
		cfg.ShardCount = n
	}
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = defaultShardSize * cfg.ShardCount
	}

	shardSize := cfg.MaxEntries / cfg.ShardCount
	if shardSize < 1 {
		shardSize = 1
	}

	c := &Cache{
		shards:    make([]*shard, cfg.ShardCount),
		shardMask: uint64(cfg.ShardCount - 1),
	}
	for i := range c.shards {
		c.shards[i] = &shard{
			entries: make(map[string]classifier.Result, shardSize),
			maxSize: shardSize,
		}
	}
	return c
}

// Key builds the memoization key for a normalized record name, its type,
// and the loaded catalog's version string — changing the catalog version
// invalidates every previously memoized entry implicitly, since it changes
// every subsequent key.
func Key(normalizedName string, typ uint16, catalogVersion string) string {
	return catalogVersion + "|" + strconv.FormatUint(uint64(typ), 10) + "|" + normalizedName
}

func (c *Cache) shardFor(key string) *shard {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum64()&c.shardMask]
}

// Get returns the memoized result for key, if present.
func (c *Cache) Get(key string) (classifier.Result, bool) {
	s := c.shardFor(key)

	s.mu.RLock()
	result, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return classifier.Result{}, false
	}
	c.hits.Add(1)
	return result, true
}

// Set memoizes result under key, evicting the oldest entry in its shard
// (FIFO) if the shard is already full.
func (c *Cache) Set(key string, result classifier.Result) {
	s := c.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxSize {
		c.evictOldest(s)
	}
	if _, exists := s.entries[key]; !exists {
		s.order = append(s.order, key)
	}
	s.entries[key] = result
}

func (c *Cache) evictOldest(s *shard) {
	for len(s.order) > 0 {
		oldest := s.order[0]
		s.order = s.order[1:]
		if _, ok := s.entries[oldest]; ok {
			delete(s.entries, oldest)
			c.evicts.Add(1)
			return
		}
	}
}

// Stats summarizes cache effectiveness for --verbose output.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
	HitRate   float64
}

// GetStats returns current cache statistics.
func (c *Cache) GetStats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	size := 0
	for _, s := range c.shards {
		s.mu.RLock()
		size += len(s.entries)
		s.mu.RUnlock()
	}

	return Stats{
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evicts.Load(),
		Size:      size,
		HitRate:   hitRate,
	}
}

// Flush clears every shard, e.g. after loading a new pattern catalog.
func (c *Cache) Flush() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[string]classifier.Result, s.maxSize)
		s.order = nil
		s.mu.Unlock()
	}
}
