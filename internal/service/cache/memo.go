package cache

import (
	"context"
	"sync"
	"time"

	"github.com/kapu/courtside-go/internal/domain"
)

type memoEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memo is a process-local TTL map. Entries are served until they expire and
// are never refreshed early.
type Memo[V any] struct {
	mu      sync.RWMutex
	entries map[string]memoEntry[V]
	ttl     time.Duration
	now     func() time.Time
}

func NewMemo[V any](ttl time.Duration) *Memo[V] {
	return &Memo[V]{
		entries: make(map[string]memoEntry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memo[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}

	if !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		if current, still := m.entries[key]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return zero, false
	}

	return entry.value, true
}

func (m *Memo[V]) Set(key string, value V) {
	m.SetWithTTL(key, value, m.ttl)
}

func (m *Memo[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	m.mu.Lock()
	m.entries[key] = memoEntry[V]{value: value, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
}

func (m *Memo[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// GamesMemo keeps games listings in process memory. It satisfies the same
// GetGames/SetGames contract as CacheService.
type GamesMemo struct {
	memo *Memo[*domain.GameListing]
}

func NewGamesMemo(ttl time.Duration) *GamesMemo {
	return &GamesMemo{memo: NewMemo[*domain.GameListing](ttl)}
}

func (g *GamesMemo) GetGames(_ context.Context, date string) (*domain.GameListing, bool) {
	return g.memo.Get(date)
}

func (g *GamesMemo) SetGames(_ context.Context, date string, listing *domain.GameListing, ttl time.Duration) {
	g.memo.SetWithTTL(date, listing, ttl)
}
