package schedule

import (
	"context"
	"fmt"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/repository"
	"go.uber.org/zap"
)

const DefaultBatchSize = 100

type Loader struct {
	flights   repository.FlightRepository
	cities    repository.CityRepository
	batchSize int
	log       *zap.Logger
}

func NewLoader(flights repository.FlightRepository, cities repository.CityRepository, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{flights: flights, cities: cities, batchSize: DefaultBatchSize, log: log}
}

type Result struct {
	Cities   int
	Flights  int
	Inserted int
}

// Load upserts the city catalog and then the flights in batches. Flights are
// matched on flight number; existing ones keep their seat counters.
func (l *Loader) Load(ctx context.Context, cities []domain.City, flights []domain.Flight) (Result, error) {
	var res Result
	if len(cities) > 0 {
		if err := l.cities.Upsert(ctx, cities); err != nil {
			return res, fmt.Errorf("upsert cities: %w", err)
		}
		res.Cities = len(cities)
		l.log.Info("cities loaded", zap.Int("count", len(cities)))
	}

	for start := 0; start < len(flights); start += l.batchSize {
		end := min(start+l.batchSize, len(flights))
		inserted, err := l.flights.Upsert(ctx, flights[start:end])
		if err != nil {
			return res, fmt.Errorf("upsert flights %d-%d: %w", start, end, err)
		}
		res.Flights += end - start
		res.Inserted += inserted
	}
	l.log.Info("flights loaded", zap.Int("count", res.Flights), zap.Int("inserted", res.Inserted))
	return res, nil
}
