package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/aeroluxe/config"
	"github.com/Domenick1991/aeroluxe/internal/cache"
	"github.com/Domenick1991/aeroluxe/internal/database"
	"github.com/Domenick1991/aeroluxe/internal/identity"
	"github.com/Domenick1991/aeroluxe/internal/repository"
	"github.com/Domenick1991/aeroluxe/internal/repository/memory"
	"github.com/Domenick1991/aeroluxe/internal/schedule"
	"github.com/Domenick1991/aeroluxe/internal/service/booking"
	"github.com/Domenick1991/aeroluxe/internal/service/flights"
	"go.uber.org/zap"
)

// Cache is everything the services keep in Redis.
type Cache interface {
	flights.SearchCache
	booking.PaymentLock
	identity.Revocations
	Ping(ctx context.Context) error
}

var (
	_ Cache = (*cache.RedisCache)(nil)
	_ Cache = (*cache.MemoryCache)(nil)
)

type Stores struct {
	Flights  repository.FlightRepository
	Bookings repository.BookingRepository
	Users    repository.UserRepository
	Profiles repository.ProfileRepository
	Cities   repository.CityRepository
	Ping     func(ctx context.Context) error
	Close    func()
}

// demoDays is how far ahead the in-memory store is filled with flights.
const demoDays = 14

// OpenStores connects the configured driver. The memory driver starts with a
// generated timetable so a local instance has something to search.
func OpenStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Stores, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		store := memory.New()
		s := &Stores{
			Flights:  store.Flights(),
			Bookings: store.Bookings(),
			Users:    store.Users(),
			Profiles: store.Profiles(),
			Cities:   store.Cities(),
			Ping:     func(context.Context) error { return nil },
			Close:    func() {},
		}
		now := time.Now()
		timetable, err := schedule.NewGenerator(schedule.DefaultRoutes(), uint64(now.UnixNano())).Generate(now, demoDays)
		if err != nil {
			return nil, fmt.Errorf("generate demo schedule: %w", err)
		}
		if _, err := schedule.NewLoader(s.Flights, s.Cities, log).Load(ctx, schedule.DefaultCities(), timetable); err != nil {
			return nil, fmt.Errorf("load demo schedule: %w", err)
		}
		log.Warn("using in-memory store, data is lost on restart")
		return s, nil

	case config.DriverPostgres:
		pool, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if cfg.Database.Migrate {
			if err := database.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			log.Info("database schema applied")
		}
		return &Stores{
			Flights:  repository.NewFlightRepository(pool),
			Bookings: repository.NewBookingRepository(pool),
			Users:    repository.NewUserRepository(pool),
			Profiles: repository.NewProfileRepository(pool),
			Cities:   repository.NewCityRepository(pool),
			Ping:     pool.Ping,
			Close:    pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

// OpenCache returns Redis when an address is configured and a process-local
// cache otherwise.
func OpenCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (Cache, func() error, error) {
	if cfg.Redis.Addr == "" {
		log.Warn("redis address not set, using in-process cache")
		return cache.NewMemoryCache(cfg.Booking.SearchCacheTTL), func() error { return nil }, nil
	}
	client := cache.NewRedisClient(cfg.Redis)
	c := cache.NewRedisCache(client, cfg.Booking.SearchCacheTTL)
	if err := c.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, client.Close, nil
}
