package acorn

import (
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Signature describes the constructor chosen to build an unmapped type: the
// ordered parameter types it needs and how to invoke it with their values.
type Signature struct {
	Type   reflect.Type
	Params []reflect.Type

	invoke func(args []reflect.Value) (reflect.Value, error)
}

type cacheEntry struct {
	sig Signature

	// consulted lists every type whose resolvability was examined while
	// selecting sig. A change to any of them makes the entry stale.
	consulted []reflect.Type
}

// signatureCache memoizes constructor selection per unmapped type.
type signatureCache struct {
	mu sync.RWMutex

	entries map[reflect.Type]cacheEntry

	// dependents maps a consulted type to the cached types whose selection
	// examined it.
	dependents map[reflect.Type]map[reflect.Type]struct{}

	// gen increases on every invalidation so that a selection computed
	// against an older registry state is never stored.
	gen uint64

	log     *zap.Logger
	metrics *Metrics
}

func newSignatureCache(log *zap.Logger, metrics *Metrics) *signatureCache {
	return &signatureCache{
		entries:    make(map[reflect.Type]cacheEntry),
		dependents: make(map[reflect.Type]map[reflect.Type]struct{}),
		log:        log,
		metrics:    metrics,
	}
}

func (c *signatureCache) lookup(t reflect.Type) (Signature, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[t]
	return e.sig, ok
}

func (c *signatureCache) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// store caches sig for t unless the cache was invalidated after gen was
// observed. It reports whether the entry was stored.
func (c *signatureCache) store(t reflect.Type, sig Signature, consulted []reflect.Type, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return false
	}

	c.dropLocked(t)
	c.entries[t] = cacheEntry{sig: sig, consulted: consulted}
	for _, d := range consulted {
		set, ok := c.dependents[d]
		if !ok {
			set = make(map[reflect.Type]struct{})
			c.dependents[d] = set
		}
		set[t] = struct{}{}
	}
	return true
}

// invalidate drops the entry for t and every entry that consulted t. It
// returns the number of entries dropped.
func (c *signatureCache) invalidate(t reflect.Type) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	dropped := 0
	if c.dropLocked(t) {
		dropped++
	}
	for dep := range c.dependents[t] {
		if c.dropLocked(dep) {
			dropped++
		}
	}
	delete(c.dependents, t)

	c.metrics.observeInvalidation()
	if dropped > 0 {
		c.log.Debug("signature cache invalidated",
			zap.Stringer("type", t),
			zap.Int("dropped", dropped),
		)
	}
	return dropped
}

func (c *signatureCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	dropped := len(c.entries)
	c.entries = make(map[reflect.Type]cacheEntry)
	c.dependents = make(map[reflect.Type]map[reflect.Type]struct{})

	c.metrics.observeInvalidation()
	c.log.Debug("signature cache cleared", zap.Int("dropped", dropped))
}

func (c *signatureCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// dropLocked removes t's entry and its reverse-index links. Caller must hold
// c.mu for writing.
func (c *signatureCache) dropLocked(t reflect.Type) bool {
	e, ok := c.entries[t]
	if !ok {
		return false
	}
	delete(c.entries, t)
	for _, d := range e.consulted {
		if set, ok := c.dependents[d]; ok {
			delete(set, t)
			if len(set) == 0 {
				delete(c.dependents, d)
			}
		}
	}
	return true
}
