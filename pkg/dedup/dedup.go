// Package dedup drops QoS1 redeliveries by remembering recently seen
// payload hashes for a bounded time.
package dedup

import (
	"sync"
	"time"
)

const (
	defaultTTL   = 10 * time.Minute
	defaultLimit = 20000
)

// Deduper remembers ids until their TTL passes. Safe for concurrent use.
type Deduper struct {
	mu      sync.Mutex
	ttl     time.Duration
	limit   int
	expires map[string]time.Time
}

// New builds a deduper; non-positive arguments fall back to the defaults.
func New(ttl time.Duration, limit int) *Deduper {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Deduper{ttl: ttl, limit: limit, expires: make(map[string]time.Time, limit)}
}

// ShouldProcess reports whether id was not seen within the TTL, recording
// it as seen. Empty ids are always processed.
func (d *Deduper) ShouldProcess(id string) bool {
	if id == "" {
		return true
	}
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.expires[id]; ok && now.Before(exp) {
		return false
	}
	d.expires[id] = now.Add(d.ttl)
	if len(d.expires) > d.limit {
		d.sweep(now)
	}
	return true
}

// sweep drops expired entries. Caller holds the lock.
func (d *Deduper) sweep(now time.Time) {
	for id, exp := range d.expires {
		if now.After(exp) {
			delete(d.expires, id)
		}
	}
}
