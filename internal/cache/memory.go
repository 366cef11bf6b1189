package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/google/uuid"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// MemoryCache offers the RedisCache operations inside one process. It is used
// when no Redis address is configured.
type MemoryCache struct {
	mu        sync.Mutex
	entries   map[string]entry
	searchTTL time.Duration
	now       func() time.Time
}

func NewMemoryCache(searchTTL time.Duration) *MemoryCache {
	return &MemoryCache{entries: make(map[string]entry), searchTTL: searchTTL, now: time.Now}
}

func (c *MemoryCache) Ping(context.Context) error {
	return nil
}

func (c *MemoryCache) get(key string) (any, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *MemoryCache) set(key string, value any, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = e
}

func (c *MemoryCache) GetSearch(_ context.Context, key string) (*domain.FlightPage, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.get(searchKey(key))
	if !ok {
		return nil, false, nil
	}
	page := v.(domain.FlightPage)
	page.Flights = append([]domain.Flight(nil), page.Flights...)
	return &page, true, nil
}

func (c *MemoryCache) SetSearch(_ context.Context, key string, page domain.FlightPage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	page.Flights = append([]domain.Flight(nil), page.Flights...)
	c.set(searchKey(key), page, c.searchTTL)
	return nil
}

func (c *MemoryCache) AcquirePaymentLock(_ context.Context, bookingID string, ttl time.Duration) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := paymentLockKey(bookingID)
	if _, held := c.get(key); held {
		return "", false, nil
	}
	token := uuid.NewString()
	c.set(key, token, ttl)
	return token, true, nil
}

func (c *MemoryCache) ReleasePaymentLock(_ context.Context, bookingID, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := paymentLockKey(bookingID)
	if v, ok := c.get(key); ok && v == token {
		delete(c.entries, key)
	}
	return nil
}

func (c *MemoryCache) RevokeSession(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(revokedKey(tokenID), true, ttl)
	return nil
}

func (c *MemoryCache) IsSessionRevoked(_ context.Context, tokenID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.get(revokedKey(tokenID))
	return ok, nil
}
