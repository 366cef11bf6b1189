package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Querier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGLedger struct {
	q Querier
}

func NewPG(q Querier) *PGLedger {
	return &PGLedger{q: q}
}

var tracer = otel.Tracer("github.com/Domenick1991/aeroluxe/internal/ledger")

func (l *PGLedger) Reserve(ctx context.Context, flightID string) (Token, error) {
	ctx, span := tracer.Start(ctx, "ledger.Reserve")
	defer span.End()
	span.SetAttributes(attribute.String("flight.id", flightID))

	var remaining int
	err := l.q.QueryRow(ctx, `UPDATE flights SET available_seats = available_seats - 1
		WHERE id = $1 AND available_seats > 0 RETURNING available_seats`, flightID).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		if err := l.mustExist(ctx, flightID); err != nil {
			return Token{}, err
		}
		return Token{}, domain.ErrSoldOut
	}
	if err != nil {
		span.RecordError(err)
		return Token{}, domain.NewStoreError("reserve seat", err)
	}
	return Token{
		ID:         uuid.NewString(),
		FlightID:   flightID,
		Remaining:  remaining,
		ReservedAt: time.Now().UTC(),
	}, nil
}

func (l *PGLedger) Release(ctx context.Context, flightID string) error {
	ctx, span := tracer.Start(ctx, "ledger.Release")
	defer span.End()
	span.SetAttributes(attribute.String("flight.id", flightID))

	tag, err := l.q.Exec(ctx, `UPDATE flights SET available_seats = available_seats + 1
		WHERE id = $1 AND available_seats < capacity`, flightID)
	if err != nil {
		span.RecordError(err)
		return domain.NewStoreError("release seat", err)
	}
	if tag.RowsAffected() == 0 {
		if err := l.mustExist(ctx, flightID); err != nil {
			return err
		}
		return fmt.Errorf("flight %s: %w", flightID, ErrOverRelease)
	}
	return nil
}

func (l *PGLedger) Available(ctx context.Context, flightID string) (int, error) {
	var available int
	err := l.q.QueryRow(ctx, `SELECT available_seats FROM flights WHERE id = $1`, flightID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, domain.NewStoreError("read available seats", err)
	}
	return available, nil
}

func (l *PGLedger) mustExist(ctx context.Context, flightID string) error {
	var exists bool
	if err := l.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE id = $1)`, flightID).Scan(&exists); err != nil {
		return domain.NewStoreError("lookup flight", err)
	}
	if !exists {
		return fmt.Errorf("flight %s: %w", flightID, domain.ErrNotFound)
	}
	return nil
}

var _ Ledger = (*PGLedger)(nil)
