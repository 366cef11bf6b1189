// Package memory keeps every repository in process memory. It backs the
// "memory" database driver and the service tests; seat accounting goes
// through ledger.Memory exactly like the PostgreSQL store goes through the
// conditional UPDATE.
package memory

import (
	"sync"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/ledger"
)

type seatState struct {
	seat      domain.Seat
	bookingID string
}

type bookingRecord struct {
	booking domain.Booking
	seq     int64
}

type Store struct {
	mu       sync.RWMutex
	ledger   *ledger.Memory
	now      func() time.Time
	seq      int64
	flights  map[string]*domain.Flight
	numbers  map[string]string
	seats    map[string][]*seatState
	bookings map[string]*bookingRecord
	users    map[string]*domain.User
	emails   map[string]string
	profiles map[string]*domain.Profile
	cities   map[string]domain.City
}

type Option func(*Store)

// WithClock replaces time.Now for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		ledger:   ledger.NewMemory(),
		now:      time.Now,
		flights:  make(map[string]*domain.Flight),
		numbers:  make(map[string]string),
		seats:    make(map[string][]*seatState),
		bookings: make(map[string]*bookingRecord),
		users:    make(map[string]*domain.User),
		emails:   make(map[string]string),
		profiles: make(map[string]*domain.Profile),
		cities:   make(map[string]domain.City),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Flights() *FlightRepository   { return &FlightRepository{s: s} }
func (s *Store) Bookings() *BookingRepository { return &BookingRepository{s: s} }
func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Profiles() *ProfileRepository { return &ProfileRepository{s: s} }
func (s *Store) Cities() *CityRepository      { return &CityRepository{s: s} }

// Ledger exposes the seat counter for inspection.
func (s *Store) Ledger() ledger.Ledger { return s.ledger }

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}
