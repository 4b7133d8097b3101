package router

import (
	"sync"
	"time"

	"github.com/benwelker/terse/internal/domain"
)

// decisionCache memoizes hook decisions per core command so repeated
// invocations of the same command skip classification and health probes.
// Entries expire after a TTL; a zero TTL disables caching entirely.
type decisionCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	decision domain.HookDecision
	expires  time.Time
}

func newDecisionCache(ttl time.Duration) *decisionCache {
	return &decisionCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *decisionCache) get(key string) (domain.HookDecision, bool) {
	if c.ttl <= 0 {
		return domain.HookDecision{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		delete(c.entries, key)
		return domain.HookDecision{}, false
	}
	return e.decision, true
}

func (c *decisionCache) put(key string, decision domain.HookDecision) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{decision: decision, expires: time.Now().Add(c.ttl)}
}
