package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/google/uuid"
)

type counter struct {
	capacity  int
	available int
}

// Memory is an in-process ledger. A single mutex makes each Reserve and
// Release a conditional read-modify-write that cannot interleave.
type Memory struct {
	mu      sync.Mutex
	flights map[string]*counter
}

func NewMemory() *Memory {
	return &Memory{flights: make(map[string]*counter)}
}

// Register adds a flight or refreshes its capacity. The available count of an
// existing flight is kept, shifted by the capacity change.
func (m *Memory) Register(flightID string, capacity, available int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.flights[flightID]; ok {
		held := c.capacity - c.available
		c.capacity = capacity
		c.available = max(capacity-held, 0)
		return
	}
	m.flights[flightID] = &counter{capacity: capacity, available: available}
}

func (m *Memory) Reserve(_ context.Context, flightID string) (Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.flights[flightID]
	if !ok {
		return Token{}, fmt.Errorf("flight %s: %w", flightID, domain.ErrNotFound)
	}
	if c.available <= 0 {
		return Token{}, domain.ErrSoldOut
	}
	c.available--
	return Token{ID: uuid.NewString(), FlightID: flightID, Remaining: c.available, ReservedAt: time.Now().UTC()}, nil
}

func (m *Memory) Release(_ context.Context, flightID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.flights[flightID]
	if !ok {
		return fmt.Errorf("flight %s: %w", flightID, domain.ErrNotFound)
	}
	if c.available >= c.capacity {
		return fmt.Errorf("flight %s: %w", flightID, ErrOverRelease)
	}
	c.available++
	return nil
}

func (m *Memory) Available(_ context.Context, flightID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.flights[flightID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return c.available, nil
}

var _ Ledger = (*Memory)(nil)
