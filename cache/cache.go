// Package cache provides the bounded LRU result cache used by the Skillet
// servers. Keys are content fingerprints of the expression text plus the
// canonical serialization of its arguments, so logically equal requests hit
// the same entry regardless of argument ordering.
package cache

import (
	"container/list"
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/zenbakiak/skillet/vm"
)

// DefaultCapacity bounds the cache when no explicit capacity is given.
const DefaultCapacity = 1000

// cborEncMode is CBOR in canonical mode: deterministic map ordering and
// number encoding, so equal argument maps always fingerprint identically.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cache: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Key is the cache key: a SHA-256 over the canonical request encoding.
type Key [sha256.Size]byte

type fingerprintEnvelope struct {
	Source string                 `cbor:"1,keyasint"`
	Args   map[string]interface{} `cbor:"2,keyasint"`
}

// Fingerprint derives the cache key for an expression and its variables.
func Fingerprint(source string, vars map[string]vm.Value) (Key, error) {
	args := make(map[string]interface{}, len(vars))
	for name, v := range vars {
		conv, err := v.ToJSONInterface()
		if err != nil {
			return Key{}, fmt.Errorf("canonicalizing variable %q: %w", name, err)
		}
		args[name] = conv
	}
	raw, err := cborEncMode.Marshal(fingerprintEnvelope{Source: source, Args: args})
	if err != nil {
		return Key{}, fmt.Errorf("encoding cache key: %w", err)
	}
	return sha256.Sum256(raw), nil
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Entries     int     `json:"entries"`
	Evictions   uint64  `json:"evictions"`
	TimeSavedMS float64 `json:"time_saved_ms"`
}

type entry struct {
	key    Key
	value  vm.Value
	costMS float64
}

// Cache is a bounded LRU over evaluation results. Reads take the same
// mutex as writes (a hit reorders the recency list), which keeps the eviction
// order exact; lookups are cheap enough that this is not a bottleneck
// below the capacity bound.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	index    map[Key]*list.Element

	hits      uint64
	misses    uint64
	evictions uint64
	savedMS   float64
}

// New creates a cache with the given capacity; zero or negative means
// DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[Key]*list.Element, capacity),
	}
}

// Get returns the cached result for key, marking the entry most recently
// used. The second result reports whether the lookup hit.
func (c *Cache) Get(key Key) (vm.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if !ok {
		c.misses++
		return vm.Null, false
	}
	c.order.MoveToFront(el)
	e := el.Value.(*entry)
	c.hits++
	c.savedMS += e.costMS
	return e.value, true
}

// Put stores a successful evaluation result with the time it took to
// compute (credited to time-saved on later hits). Failed evaluations must
// never be stored; callers enforce that by only calling Put on success.
func (c *Cache) Put(key Key, value vm.Value, costMS float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		// A concurrent miss computed the same key; the later write wins.
		c.order.MoveToFront(el)
		e := el.Value.(*entry)
		e.value = value
		e.costMS = costMS
		return
	}
	el := c.order.PushFront(&entry{key: key, value: value, costMS: costMS})
	c.index[key] = el
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(*entry).key)
		c.evictions++
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear drops every entry. Counters are preserved; entries reflect the
// post-clear state. Callers mutating the plugin registry must clear the
// cache, since cached results assume an unchanged registry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.index = make(map[Key]*list.Element, c.capacity)
}

// Snapshot returns the current counters.
func (c *Cache) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		Entries:     c.order.Len(),
		Evictions:   c.evictions,
		TimeSavedMS: c.savedMS,
	}
}
