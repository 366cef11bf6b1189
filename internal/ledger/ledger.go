// Package ledger owns the authoritative count of sellable seats per flight.
//
// Every mutation of available_seats goes through Reserve or Release, each a
// single atomic conditional update. Callers that need the reservation to be
// part of a larger unit of work bind the ledger to that transaction.
package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrOverRelease is returned when a release would push the count above the
// flight's capacity, which means a seat unit was released twice.
var ErrOverRelease = errors.New("ledger: release would exceed capacity")

// Token proves that one seat unit was claimed.
type Token struct {
	ID         string
	FlightID   string
	Remaining  int
	ReservedAt time.Time
}

type Ledger interface {
	Reserve(ctx context.Context, flightID string) (Token, error)
	Release(ctx context.Context, flightID string) error
	Available(ctx context.Context, flightID string) (int, error)
}
