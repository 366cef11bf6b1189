package repository

import (
	"testing"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFlightRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewFlightRepository(pool)
	assert.NotNil(t, repo)
}

func TestFlightWhere_Empty(t *testing.T) {
	where, args := flightWhere(domain.FlightFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestFlightWhere_AllConstraints(t *testing.T) {
	now := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)
	dep, err := domain.ParseDate("departure_date", "2024-06-01")
	require.NoError(t, err)
	ret, err := domain.ParseDate("return_date", "2024-06-03")
	require.NoError(t, err)

	where, args := flightWhere(domain.FlightFilter{
		Origin:        "MSQ",
		Destination:   "MOW",
		DepartureDate: dep,
		ReturnDate:    ret,
		DepartedAfter: now,
	})

	assert.Equal(t, " WHERE departure_city = $1 AND arrival_city = $2 AND departure_time >= $3"+
		" AND departure_time < $4 AND arrival_time < $5", where)
	require.Len(t, args, 5)
	assert.Equal(t, "MSQ", args[0])
	assert.Equal(t, *dep, args[2])
	assert.Equal(t, dep.Add(24*time.Hour), args[3])
	assert.Equal(t, ret.Add(24*time.Hour), args[4])
}

func TestFlightColumns_Alias(t *testing.T) {
	assert.Contains(t, flightColumns("f"), "ROUND(f.price * 100)::bigint")
	assert.NotContains(t, flightColumns(""), "$.")
}
