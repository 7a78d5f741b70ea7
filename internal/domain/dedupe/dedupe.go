// Package dedupe suppresses repeated delivery of the same result.
package dedupe

import (
	"container/list"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
)

// Deduper remembers the last fingerprint observed per key so that a result
// fetched repeatedly is only processed once.
type Deduper interface {
	// SeenAndRecord reports whether fingerprint equals the last one recorded
	// for key. When it differs it becomes the new last-seen value.
	SeenAndRecord(ctx context.Context, key, fingerprint string) bool

	// Unrecord forgets key, so the next fingerprint for it counts as new.
	// Used when a result was recorded but could not be applied.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

type entry struct {
	key         string
	fingerprint string
}

// inMemoryDeduper keeps one fingerprint per key. In bounded mode the key
// updated least recently is evicted first.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front = most recently updated
	maxSize int        // 0 or negative = unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 1024,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key, fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		e := el.Value.(*entry)
		if e.fingerprint == fingerprint {
			return true
		}
		e.fingerprint = fingerprint
		d.order.MoveToFront(el)
		return false
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = d.order.PushFront(&entry{key: key, fingerprint: fingerprint})
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
		d.size.Add(-1)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	el := d.order.Back()
	if el == nil {
		return
	}
	d.order.Remove(el)
	delete(d.seen, el.Value.(*entry).key)
	d.size.Add(-1)
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// Fingerprint serializes v into a stable comparison key. Struct fields are
// encoded in declaration order, so equal values give equal fingerprints.
func Fingerprint(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return string(b), nil
}

// Key builds the dedupe key for a player and optional session.
func Key(playerID, sessionID string) string {
	return playerID + "|" + sessionID
}
