package flights

import (
	"context"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/repository"
	"github.com/Domenick1991/aeroluxe/internal/retry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type FlightUseCase interface {
	Search(ctx context.Context, filter domain.FlightFilter) (domain.FlightPage, error)
	Board(ctx context.Context, page, pageSize int) (domain.FlightPage, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	Seats(ctx context.Context, flightID string) ([]domain.Seat, error)
	Cities(ctx context.Context) ([]domain.City, error)
}

// SearchCache stores search result pages by filter key.
type SearchCache interface {
	GetSearch(ctx context.Context, key string) (*domain.FlightPage, bool, error)
	SetSearch(ctx context.Context, key string, page domain.FlightPage) error
}

type FlightService struct {
	flights repository.FlightRepository
	cities  repository.CityRepository
	cache   SearchCache
	group   singleflight.Group
	retry   retry.Config
	now     func() time.Time
	log     *zap.Logger
}

type Option func(*FlightService)

func WithCache(cache SearchCache) Option {
	return func(s *FlightService) {
		s.cache = cache
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *FlightService) {
		s.now = now
	}
}

func WithRetry(cfg retry.Config) Option {
	return func(s *FlightService) {
		s.retry = cfg
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *FlightService) {
		if log != nil {
			s.log = log
		}
	}
}

func NewFlightService(flights repository.FlightRepository, cities repository.CityRepository, opts ...Option) *FlightService {
	s := &FlightService{
		flights: flights,
		cities:  cities,
		retry:   retry.ReadConfig(),
		now:     time.Now,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// read retries transient store failures. Only used for queries.
func (s *FlightService) read(ctx context.Context, op func(ctx context.Context) error) error {
	return retry.Do(ctx, s.retry, domain.IsStoreError, op)
}

// Search returns one page of flights matching filter. Flights that have
// already departed are never returned.
func (s *FlightService) Search(ctx context.Context, filter domain.FlightFilter) (domain.FlightPage, error) {
	if err := filter.Normalize(); err != nil {
		return domain.FlightPage{}, err
	}
	filter.DepartedAfter = s.now().UTC()
	key := filter.CacheKey()

	if s.cache != nil {
		page, ok, err := s.cache.GetSearch(ctx, key)
		if err != nil {
			s.log.Warn("search cache read", zap.String("key", key), zap.Error(err))
		} else if ok {
			fresh, err := s.withLiveSeats(ctx, *page)
			if err == nil {
				return fresh, nil
			}
			s.log.Warn("refresh cached availability", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		var page domain.FlightPage
		err := s.read(ctx, func(ctx context.Context) error {
			var err error
			page, err = s.flights.Search(ctx, filter)
			return err
		})
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.SetSearch(ctx, key, page); err != nil {
				s.log.Warn("search cache write", zap.String("key", key), zap.Error(err))
			}
		}
		return page, nil
	})
	if err != nil {
		return domain.FlightPage{}, err
	}
	if shared {
		s.log.Debug("search result shared", zap.String("key", key))
	}
	return v.(domain.FlightPage), nil
}

// withLiveSeats replaces the seat counters of a cached page with the current
// ones. Only the schedule part of a page is served from cache.
func (s *FlightService) withLiveSeats(ctx context.Context, page domain.FlightPage) (domain.FlightPage, error) {
	if len(page.Flights) == 0 {
		return page, nil
	}
	ids := make([]string, 0, len(page.Flights))
	for _, f := range page.Flights {
		ids = append(ids, f.ID)
	}
	var live map[string]int
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		live, err = s.flights.Availability(ctx, ids)
		return err
	})
	if err != nil {
		return domain.FlightPage{}, err
	}
	flights := make([]domain.Flight, len(page.Flights))
	copy(flights, page.Flights)
	for i := range flights {
		if n, ok := live[flights[i].ID]; ok {
			flights[i].AvailableSeats = n
		}
	}
	page.Flights = flights
	return page, nil
}

// Board lists flights departing on the current UTC day, including the ones
// that already left.
func (s *FlightService) Board(ctx context.Context, page, pageSize int) (domain.FlightPage, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	filter := domain.FlightFilter{DepartureDate: &today, Page: page, PageSize: pageSize}
	if err := filter.Normalize(); err != nil {
		return domain.FlightPage{}, err
	}

	var out domain.FlightPage
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.flights.Search(ctx, filter)
		return err
	})
	return out, err
}

func checkFlightID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.NewValidationError("flight_id", "must be a valid id")
	}
	return nil
}

func (s *FlightService) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	if err := checkFlightID(id); err != nil {
		return nil, err
	}
	var flight *domain.Flight
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		flight, err = s.flights.GetByID(ctx, id)
		return err
	})
	return flight, err
}

func (s *FlightService) Seats(ctx context.Context, flightID string) ([]domain.Seat, error) {
	if err := checkFlightID(flightID); err != nil {
		return nil, err
	}
	var seats []domain.Seat
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		seats, err = s.flights.Seats(ctx, flightID)
		return err
	})
	return seats, err
}

func (s *FlightService) Cities(ctx context.Context) ([]domain.City, error) {
	var cities []domain.City
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		cities, err = s.cities.List(ctx)
		return err
	})
	return cities, err
}

var _ FlightUseCase = (*FlightService)(nil)
