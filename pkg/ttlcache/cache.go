package ttlcache

import (
	"strings"
	"sync"
	"time"
)

// Entry значение с моментом записи. Протухшая запись не удаляется при чтении:
// вызывающий сам решает, использовать ли ее как деградированный fallback.
type Entry[V any] struct {
	Value    V
	StoredAt time.Time
	TTL      time.Duration
}

// FreshAt запись свежая, пока now - StoredAt <= TTL.
func (e Entry[V]) FreshAt(now time.Time) bool {
	return now.Sub(e.StoredAt) <= e.TTL
}

type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[V]
	ttl     time.Duration
	now     func() time.Time
}

func New[V any](ttl time.Duration, now func() time.Time) *Cache[V] {
	if now == nil {
		now = time.Now
	}
	return &Cache[V]{
		entries: make(map[string]Entry[V]),
		ttl:     ttl,
		now:     now,
	}
}

// GetFresh возвращает значение только если запись еще не протухла.
func (c *Cache[V]) GetFresh(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !e.FreshAt(c.now()) {
		var zero V
		return zero, false
	}
	return e.Value, true
}

// GetAny возвращает запись независимо от свежести.
func (c *Cache[V]) GetAny(key string) (Entry[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	return e, ok
}

func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry[V]{
		Value:    value,
		StoredAt: c.now(),
		TTL:      c.ttl,
	}
}

// Update атомарно меняет значение существующей записи, сохраняя StoredAt.
// fn не вызывается для отсутствующего ключа.
func (c *Cache[V]) Update(key string, fn func(V) V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	e.Value = fn(e.Value)
	c.entries[key] = e
	return true
}

// UpdatePrefix применяет fn ко всем записям с префиксом ключа.
func (c *Cache[V]) UpdatePrefix(prefix string, fn func(V) V) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key, e := range c.entries {
		if strings.HasPrefix(key, prefix) {
			e.Value = fn(e.Value)
			c.entries[key] = e
			n++
		}
	}
	return n
}

// Range обходит записи с префиксом ключа под блокировкой чтения, пока fn возвращает true.
func (c *Cache[V]) Range(prefix string, fn func(key string, e Entry[V]) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for key, e := range c.entries {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if !fn(key, e) {
			return
		}
	}
}

func (c *Cache[V]) Delete(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.entries, key)
	}
}

// DeletePrefix удаляет все записи с префиксом и возвращает их количество.
func (c *Cache[V]) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			n++
		}
	}
	return n
}

func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
