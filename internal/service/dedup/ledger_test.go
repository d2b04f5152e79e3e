package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kapu/courtside-go/internal/service/cache"
	"github.com/kapu/courtside-go/internal/util"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewKeyNormalizes(t *testing.T) {
	at := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	k := NewKey("@NBA_Fan", "  LeBron James ", at)
	assert.Equal(t, Key{Handle: "nba_fan", Subject: "lebron james", Day: "2024-03-02"}, k)
	assert.Equal(t, "nba_fan|lebron james|2024-03-02", k.String())
}

func TestNewKeyUsesEasternDay(t *testing.T) {
	// 03:00 UTC is still the previous evening in New York.
	at := time.Date(2024, 3, 3, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-02", NewKey("fan", "kobe", at).Day)

	midnightET := time.Date(2024, 3, 3, 0, 0, 0, 0, util.EasternLocation())
	assert.NotEqual(t, NewKey("fan", "kobe", midnightET.Add(-time.Second)).Day, NewKey("fan", "kobe", midnightET).Day)
}

func ledgers(t *testing.T) map[string]Ledger {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]Ledger{
		"memory": NewMemoryLedger(48 * time.Hour),
		"redis":  NewRedisLedger(cache.NewCacheServiceWithClient(client, zap.NewNop()), 48*time.Hour),
	}
}

func TestLedgerOncePerDay(t *testing.T) {
	ctx := context.Background()
	day1 := time.Date(2024, 3, 2, 17, 0, 0, 0, time.UTC)

	for name, ledger := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			key := NewKey("fan", "LeBron James", day1)

			seen, err := ledger.Seen(ctx, key)
			require.NoError(t, err)
			assert.False(t, seen)

			require.NoError(t, ledger.Mark(ctx, Entry{Key: key, PostedAt: day1, TweetID: "1"}))

			seen, err = ledger.Seen(ctx, NewKey("@FAN", "lebron james", day1.Add(2*time.Hour)))
			require.NoError(t, err)
			assert.True(t, seen, "same handle and subject later that day must be seen")

			seen, err = ledger.Seen(ctx, NewKey("fan", "Kobe Bryant", day1))
			require.NoError(t, err)
			assert.False(t, seen, "other subjects are independent")

			seen, err = ledger.Seen(ctx, NewKey("fan", "LeBron James", day1.Add(24*time.Hour)))
			require.NoError(t, err)
			assert.False(t, seen, "next day starts fresh")
		})
	}
}

func TestMemoryLedgerSweep(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger(48 * time.Hour)
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	old := Entry{Key: NewKey("fan", "a", now.Add(-72*time.Hour)), PostedAt: now.Add(-72 * time.Hour)}
	recent := Entry{Key: NewKey("fan", "b", now.Add(-time.Hour)), PostedAt: now.Add(-time.Hour)}
	require.NoError(t, ledger.Mark(ctx, old))
	require.NoError(t, ledger.Mark(ctx, recent))

	removed, err := ledger.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, ledger.Len())

	seen, _ := ledger.Seen(ctx, recent.Key)
	assert.True(t, seen)
}

func TestMemoryLedgerMarkKeepsFirst(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger(time.Hour)
	at := time.Now()
	key := NewKey("fan", "x", at)

	require.NoError(t, ledger.Mark(ctx, Entry{Key: key, PostedAt: at, TweetID: "first"}))
	require.NoError(t, ledger.Mark(ctx, Entry{Key: key, PostedAt: at.Add(time.Minute), TweetID: "second"}))
	assert.Equal(t, "first", ledger.entries[key].TweetID)
}

func TestRedisLedgerExpires(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ledger := NewRedisLedger(cache.NewCacheServiceWithClient(client, zap.NewNop()), 48*time.Hour)
	key := NewKey("fan", "x", time.Now())
	require.NoError(t, ledger.Mark(ctx, Entry{Key: key, PostedAt: time.Now()}))

	mr.FastForward(48 * time.Hour)
	seen, err := ledger.Seen(ctx, key)
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRunSweeperStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ledger := NewMemoryLedger(time.Millisecond)
	require.NoError(t, ledger.Mark(ctx, Entry{Key: NewKey("fan", "x", time.Now()), PostedAt: time.Now().Add(-time.Hour)}))

	done := make(chan struct{})
	go func() {
		RunSweeper(ctx, ledger, 5*time.Millisecond, zap.NewNop())
		close(done)
	}()

	require.Eventually(t, func() bool { return ledger.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
