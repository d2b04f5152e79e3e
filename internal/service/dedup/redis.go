package dedup

import (
	"context"
	"time"

	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/service/cache"
)

// RedisLedger stores one key per slot with the retention window as its TTL,
// so Redis does the eviction.
type RedisLedger struct {
	cache     *cache.CacheService
	retention time.Duration
}

func NewRedisLedger(c *cache.CacheService, retention time.Duration) *RedisLedger {
	return &RedisLedger{cache: c, retention: retention}
}

func (l *RedisLedger) key(k Key) string {
	return constants.DedupConfig.KeyPrefix + k.String()
}

func (l *RedisLedger) Seen(ctx context.Context, key Key) (bool, error) {
	return l.cache.Exists(ctx, l.key(key))
}

type redisEntry struct {
	PostedAt time.Time `json:"posted_at"`
	TweetID  string    `json:"tweet_id"`
}

func (l *RedisLedger) Mark(ctx context.Context, entry Entry) error {
	_, err := l.cache.SetNX(ctx, l.key(entry.Key), redisEntry{PostedAt: entry.PostedAt, TweetID: entry.TweetID}, l.retention)
	return err
}

func (l *RedisLedger) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}
