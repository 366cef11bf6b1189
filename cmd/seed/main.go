package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/aeroluxe/config"
	"github.com/Domenick1991/aeroluxe/internal/bootstrap"
	"github.com/Domenick1991/aeroluxe/internal/logger"
	"github.com/Domenick1991/aeroluxe/internal/schedule"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfgPath := pflag.String("config", config.Path(), "path to the YAML config")
	days := pflag.Int("days", 30, "number of days to generate, starting today")
	seed := pflag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed for the timetable")
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

	if cfg.Database.Driver != config.DriverPostgres {
		lg.Fatal("seed needs the postgres driver", zap.String("driver", cfg.Database.Driver))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg, *days, *seed); err != nil {
		lg.Fatal("seed failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger, days int, seed uint64) error {
	stores, err := bootstrap.OpenStores(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer stores.Close()

	timetable, err := schedule.NewGenerator(schedule.DefaultRoutes(), seed).Generate(time.Now(), days)
	if err != nil {
		return err
	}
	res, err := schedule.NewLoader(stores.Flights, stores.Cities, lg).Load(ctx, schedule.DefaultCities(), timetable)
	if err != nil {
		return err
	}
	lg.Info("schedule seeded",
		zap.Int("cities", res.Cities),
		zap.Int("flights", res.Flights),
		zap.Int("inserted", res.Inserted),
		zap.Uint64("seed", seed),
	)
	return nil
}
