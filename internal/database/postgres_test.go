package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema_DeclaresLedgerInvariant(t *testing.T) {
	assert.Contains(t, schema, "CHECK (available_seats >= 0 AND available_seats <= capacity)")
	assert.Contains(t, schema, "flight_number   text NOT NULL UNIQUE")
	for _, table := range []string{"users", "profiles", "cities", "flights", "flight_seats", "bookings"} {
		assert.True(t, strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table+" "), table)
	}
}
