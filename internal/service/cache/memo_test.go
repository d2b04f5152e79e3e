package cache

import (
	"context"
	"testing"
	"time"

	"github.com/kapu/courtside-go/internal/domain"
)

func TestMemoExpires(t *testing.T) {
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	memo := NewMemo[string](5 * time.Minute)
	memo.now = func() time.Time { return now }

	memo.Set("2024-01-02", "listing")

	now = now.Add(4*time.Minute + 59*time.Second)
	if v, ok := memo.Get("2024-01-02"); !ok || v != "listing" {
		t.Fatalf("expected fresh entry, got %q %v", v, ok)
	}

	now = now.Add(time.Second)
	if _, ok := memo.Get("2024-01-02"); ok {
		t.Fatal("entry should expire at the TTL boundary")
	}
	if memo.Len() != 0 {
		t.Fatalf("expired entry should be dropped, len=%d", memo.Len())
	}
}

func TestMemoClear(t *testing.T) {
	memo := NewMemo[int](time.Minute)
	memo.Set("a", 1)
	memo.Clear("a")
	if _, ok := memo.Get("a"); ok {
		t.Fatal("cleared entry still present")
	}
}

func TestGamesMemo(t *testing.T) {
	g := NewGamesMemo(time.Minute)
	ctx := context.Background()

	if _, ok := g.GetGames(ctx, "2024-01-02"); ok {
		t.Fatal("empty memo should miss")
	}

	listing := &domain.GameListing{Date: "2024-01-02", Data: []domain.Game{{ID: 1, Home: "Boston Celtics"}}}
	g.SetGames(ctx, "2024-01-02", listing, time.Minute)

	got, ok := g.GetGames(ctx, "2024-01-02")
	if !ok || got != listing {
		t.Fatalf("expected cached listing")
	}
}
