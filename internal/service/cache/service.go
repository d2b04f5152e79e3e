package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/kapu/courtside-go/internal/domain"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const gamesKeyPrefix = "courtside:games:"

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c CacheConfig) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// CacheService is the Redis store shared by the games listing cache and the
// post ledger. Values are stored as JSON.
type CacheService struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewCacheService connects and pings once; an unreachable Redis is an error.
func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.NewCacheError("failed to connect to Redis", "ping", cfg.addr(), err)
	}

	logger.Info("Redis connected", zap.String("addr", cfg.addr()), zap.Int("db", cfg.DB))
	return NewCacheServiceWithClient(client, logger), nil
}

// NewCacheServiceWithClient wraps an existing client without pinging it.
func NewCacheServiceWithClient(client redis.UniversalClient, logger *zap.Logger) *CacheService {
	return &CacheService{client: client, logger: logger}
}

// Get decodes the value at key into dest. A missing key is found=false with
// no error.
func (c *CacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, c.fail("get", key, err)
	}
	if dest == nil {
		return true, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, c.fail("decode", key, err)
	}
	return true, nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return apperrors.NewCacheError("encode failed", "set", key, err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return c.fail("set", key, err)
	}
	return nil
}

// SetNX stores value only when key is absent and reports whether it did.
func (c *CacheService) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, apperrors.NewCacheError("encode failed", "setnx", key, err)
	}
	stored, err := c.client.SetNX(ctx, key, raw, ttl).Result()
	if err != nil {
		return false, c.fail("setnx", key, err)
	}
	return stored, nil
}

func (c *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, c.fail("exists", key, err)
	}
	return n > 0, nil
}

func (c *CacheService) IsConnected(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}

func (c *CacheService) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
		return err
	}
	c.logger.Info("Redis disconnected")
	return nil
}

// GetGames returns the cached listing for a YYYY-MM-DD day. Redis errors count
// as a miss.
func (c *CacheService) GetGames(ctx context.Context, date string) (*domain.GameListing, bool) {
	var listing domain.GameListing
	if found, err := c.Get(ctx, gamesKeyPrefix+date, &listing); err != nil || !found {
		return nil, false
	}
	return &listing, true
}

// SetGames is best effort; a failed write is logged by Set.
func (c *CacheService) SetGames(ctx context.Context, date string, listing *domain.GameListing, ttl time.Duration) {
	_ = c.Set(ctx, gamesKeyPrefix+date, listing, ttl)
}

func (c *CacheService) fail(op, key string, err error) error {
	c.logger.Error("Redis "+op+" failed", zap.String("key", key), zap.Error(err))
	return apperrors.NewCacheError(op+" failed", op, key, err)
}
