package bootstrap

import (
	"context"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"go.uber.org/zap"
)

type HoldExpirer interface {
	ExpireHolds(ctx context.Context) ([]domain.Booking, error)
}

// SweepHolds releases expired holds every interval until ctx is done.
func SweepHolds(ctx context.Context, every time.Duration, holds HoldExpirer, log *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	log.Info("hold sweep started", zap.Duration("every", every))

	for {
		select {
		case <-ctx.Done():
			log.Info("hold sweep stopped")
			return
		case <-ticker.C:
			expired, err := holds.ExpireHolds(ctx)
			if err != nil {
				log.Error("expire holds", zap.Error(err))
				continue
			}
			if len(expired) > 0 {
				log.Info("released expired holds", zap.Int("count", len(expired)))
			}
		}
	}
}
