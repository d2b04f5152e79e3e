package dedup

import (
	"context"
	"sync"
	"time"
)

type MemoryLedger struct {
	mu        sync.Mutex
	entries   map[Key]Entry
	retention time.Duration
}

func NewMemoryLedger(retention time.Duration) *MemoryLedger {
	return &MemoryLedger{
		entries:   make(map[Key]Entry),
		retention: retention,
	}
}

func (l *MemoryLedger) Seen(_ context.Context, key Key) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[key]
	return ok, nil
}

func (l *MemoryLedger) Mark(_ context.Context, entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[entry.Key]; !ok {
		l.entries[entry.Key] = entry
	}
	return nil
}

func (l *MemoryLedger) Sweep(_ context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-l.retention)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, entry := range l.entries {
		if entry.PostedAt.Before(cutoff) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
