package main

import (
	"context"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Domenick1991/aeroluxe/config"
	"github.com/Domenick1991/aeroluxe/internal/bootstrap"
	"github.com/Domenick1991/aeroluxe/internal/email"
	"github.com/Domenick1991/aeroluxe/internal/kafka"
	"github.com/Domenick1991/aeroluxe/internal/logger"
	"github.com/Domenick1991/aeroluxe/internal/payment"
	"github.com/Domenick1991/aeroluxe/internal/service/booking"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
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
		lg.Fatal("worker stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	if cfg.Database.Driver == config.DriverMemory {
		lg.Warn("memory driver: the app sweeps its own holds, this worker only sees its private store")
	}
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

	opts := []booking.BookingServiceOption{booking.WithLogger(lg)}
	var wg sync.WaitGroup
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, kafka.Topics{
			BookingEvents: cfg.Kafka.BookingEventsTopic,
			Notifications: cfg.Kafka.NotificationsTopic,
		}, lg)
		defer func() { _ = producer.Close() }()
		opts = append(opts, booking.WithEvents(producer))

		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, lg)
		defer func() { _ = consumer.Close() }()
		notifier := email.NewNotifier(stores.Users, email.NewSender(lg))

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Consume(ctx, notifier.Handle); err != nil {
				lg.Error("notification consumer stopped", zap.Error(err))
			}
		}()
	} else {
		lg.Warn("kafka brokers not configured, notifications are disabled")
	}

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
		opts...,
	)

	bootstrap.SweepHolds(ctx, cfg.Worker.ExpirationSweep, bookingService, lg)
	wg.Wait()
	lg.Info("worker stopped")
	return nil
}
