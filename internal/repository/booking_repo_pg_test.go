package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewBookingRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRepository(pool)
	assert.NotNil(t, repo)
}

func TestBookingColumns(t *testing.T) {
	cols := bookingColumns("b")
	assert.Contains(t, cols, "b.booking_status")
	assert.Contains(t, cols, "ROUND(b.total_price * 100)::bigint")
	assert.NotContains(t, bookingColumns(""), "$.")
}
