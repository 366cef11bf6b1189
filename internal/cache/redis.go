package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/aeroluxe/config"
	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// unlockScript deletes the lock only when it still carries the caller's token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type RedisCache struct {
	client    redis.UniversalClient
	searchTTL time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisCache(client redis.UniversalClient, searchTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, searchTTL: searchTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) GetSearch(ctx context.Context, key string) (*domain.FlightPage, bool, error) {
	data, err := c.client.Get(ctx, searchKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var page domain.FlightPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, false, err
	}
	return &page, true, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, key string, page domain.FlightPage) error {
	payload, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(key), payload, c.searchTTL).Err()
}

func (c *RedisCache) AcquirePaymentLock(ctx context.Context, bookingID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, paymentLockKey(bookingID), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (c *RedisCache) ReleasePaymentLock(ctx context.Context, bookingID, token string) error {
	return unlockScript.Run(ctx, c.client, []string{paymentLockKey(bookingID)}, token).Err()
}

func (c *RedisCache) RevokeSession(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err()
}

func (c *RedisCache) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func searchKey(key string) string {
	return "cache:flights:search:" + key
}

func paymentLockKey(bookingID string) string {
	return fmt.Sprintf("lock:booking:%s:payment", bookingID)
}

func revokedKey(tokenID string) string {
	return "auth:revoked:" + tokenID
}
