package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/aeroluxe/api"
	"github.com/Domenick1991/aeroluxe/config"
	"github.com/Domenick1991/aeroluxe/internal/bootstrap"
	"github.com/Domenick1991/aeroluxe/internal/identity"
	"github.com/Domenick1991/aeroluxe/internal/kafka"
	"github.com/Domenick1991/aeroluxe/internal/logger"
	"github.com/Domenick1991/aeroluxe/internal/payment"
	"github.com/Domenick1991/aeroluxe/internal/service/booking"
	"github.com/Domenick1991/aeroluxe/internal/service/flights"
	"github.com/Domenick1991/aeroluxe/internal/service/profile"
	"github.com/Domenick1991/aeroluxe/internal/telemetry"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments pass the environment directly.
	_ = godotenv.Load()

	cfgPath := pflag.String("config", config.Path(), "path to the YAML config")
	pflag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("app stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			lg.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	stores, err := bootstrap.OpenStores(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer stores.Close()

	cache, closeCache, err := bootstrap.OpenCache(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer func() { _ = closeCache() }()

	gateway, err := payment.NewGateway(cfg.Payment, cfg.Booking.Currency)
	if err != nil {
		return err
	}

	checks := map[string]api.Check{
		"database": stores.Ping,
		"cache":    cache.Ping,
	}

	bookingOpts := []booking.BookingServiceOption{booking.WithLogger(lg)}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, kafka.Topics{
			BookingEvents: cfg.Kafka.BookingEventsTopic,
			Notifications: cfg.Kafka.NotificationsTopic,
		}, lg)
		defer func() { _ = producer.Close() }()
		bookingOpts = append(bookingOpts, booking.WithEvents(producer))
		checks["kafka"] = producer.CheckConnection
	} else {
		lg.Warn("kafka brokers not configured, booking events are not published")
	}

	provider := identity.NewService(stores.Users, cache, cfg.Auth, lg)
	bookingService := booking.NewBookingService(
		stores.Bookings,
		stores.Flights,
		gateway,
		cache,
		booking.Config{
			HoldTTL:        cfg.Booking.HoldTTL,
			PaymentLockTTL: cfg.Booking.PaymentLockTTL,
			Currency:       cfg.Booking.Currency,
			Tiers:          cfg.Tiers,
		},
		bookingOpts...,
	)
	flightService := flights.NewFlightService(stores.Flights, stores.Cities,
		flights.WithCache(cache),
		flights.WithLogger(lg),
	)
	profileService := profile.NewProfileService(stores.Profiles, lg)

	router := api.NewRouter(api.Handlers{
		Auth:     api.NewAuthHandler(provider),
		Flights:  api.NewFlightHandler(flightService, cfg.Booking.DefaultPageSize),
		Bookings: api.NewBookingHandler(bookingService),
		Profile:  api.NewProfileHandler(profileService),
		Health:   api.NewHealthHandler(checks),
	}, provider, lg)

	// The in-memory store lives in this process, so no worker can reach its holds.
	if cfg.Database.Driver == config.DriverMemory {
		go bootstrap.SweepHolds(ctx, cfg.Worker.ExpirationSweep, bookingService, lg)
	}

	grpcSrv := bootstrap.NewGRPCServer(bookingService, flightService, provider, lg)
	return bootstrap.Run(ctx, cfg, router, grpcSrv, lg)
}
