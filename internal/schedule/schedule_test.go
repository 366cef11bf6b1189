package schedule

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)

func TestGenerate_Shape(t *testing.T) {
	routes := DefaultRoutes()
	flights, err := NewGenerator(routes, 42).Generate(start, 3)
	require.NoError(t, err)

	outbound := map[string]int{}
	numbers := map[string]bool{}
	for _, f := range flights {
		require.NoError(t, f.Validate(), f.FlightNumber)
		assert.Regexp(t, `^AL\d{4}$`, f.FlightNumber)
		assert.False(t, numbers[f.FlightNumber], "duplicate %s", f.FlightNumber)
		numbers[f.FlightNumber] = true

		assert.GreaterOrEqual(t, f.Capacity, 100)
		assert.Less(t, f.Capacity, 150)
		assert.Equal(t, f.Capacity, f.AvailableSeats)
		assert.Less(t, f.DepartureTime.Hour(), 22)
		assert.GreaterOrEqual(t, f.DepartureTime.Hour(), 6)
		assert.False(t, f.DepartureTime.Before(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
		assert.True(t, f.DepartureTime.Before(time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)))

		for _, r := range routes {
			if r.From == f.DepartureCity && r.To == f.ArrivalCity {
				outbound[f.DepartureTime.Format("2006-01-02")+r.From+r.To]++
				assert.Equal(t, r.Duration, f.ArrivalTime.Sub(f.DepartureTime))
				assert.InDelta(t, r.BasePrice, f.Price.Float(), priceVariance)
			}
		}
	}
	assert.Len(t, outbound, 3*len(routes))
	for key, n := range outbound {
		assert.True(t, n >= 3 && n <= 5, "%s has %d departures", key, n)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := NewGenerator(DefaultRoutes(), 7).Generate(start, 2)
	require.NoError(t, err)
	b, err := NewGenerator(DefaultRoutes(), 7).Generate(start, 2)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerate_ReservedNumbersAreSkipped(t *testing.T) {
	g := NewGenerator([]Route{{From: "MSQ", To: "VNO", Duration: time.Hour, BasePrice: 120}}, 1)
	for n := firstNumber; n < firstNumber+numberRange-1; n++ {
		g.Reserve(fmt.Sprintf("AL%04d", n))
	}
	_, err := g.Generate(start, 10)
	assert.True(t, errors.Is(err, ErrNumbersExhausted))
}

func TestLoader_Load(t *testing.T) {
	store := memory.New()
	flights, err := NewGenerator(DefaultRoutes(), 3).Generate(start, 1)
	require.NoError(t, err)

	loader := NewLoader(store.Flights(), store.Cities(), nil)
	loader.batchSize = 7
	res, err := loader.Load(context.Background(), DefaultCities(), flights)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Cities)
	assert.Equal(t, len(flights), res.Flights)
	assert.Equal(t, len(flights), res.Inserted)

	res, err = loader.Load(context.Background(), nil, flights)
	require.NoError(t, err)
	assert.Zero(t, res.Inserted)

	cities, err := store.Cities().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, cities, 6)

	page, err := store.Flights().Search(context.Background(), domain.FlightFilter{Page: 1, PageSize: domain.MaxPageSize})
	require.NoError(t, err)
	assert.Equal(t, len(flights), page.Total)
}
