package ledger_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/database"
	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/ledger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDSNEnv names a disposable Postgres database. The PG ledger tests are
// skipped when it is unset.
const testDSNEnv = "AEROLUXE_TEST_DSN"

func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDSNEnv)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx))
	require.NoError(t, database.Migrate(ctx, pool))
	return pool
}

func insertFlight(t *testing.T, pool *pgxpool.Pool, capacity int) string {
	t.Helper()
	ctx := context.Background()
	departs := time.Now().Add(48 * time.Hour).UTC()

	var id string
	err := pool.QueryRow(ctx, `INSERT INTO flights
		(flight_number, departure_city, arrival_city, departure_time, arrival_time, price, capacity, available_seats)
		VALUES ($1, 'SVO', 'LED', $2, $3, 100.00, $4, $4) RETURNING id`,
		"IT"+uuid.NewString()[:8], departs, departs.Add(90*time.Minute), capacity).Scan(&id)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM flights WHERE id = $1`, id)
	})
	return id
}

func TestPGLedger_ConcurrentReserve(t *testing.T) {
	pool := openTestPool(t)
	const capacity, callers = 5, 40
	flightID := insertFlight(t, pool, capacity)
	l := ledger.NewPG(pool)

	var ok, soldOut, other atomic.Int32
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Reserve(context.Background(), flightID)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrSoldOut):
				soldOut.Add(1)
			default:
				other.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, capacity, ok.Load())
	assert.EqualValues(t, callers-capacity, soldOut.Load())
	assert.Zero(t, other.Load())

	available, err := l.Available(context.Background(), flightID)
	require.NoError(t, err)
	assert.Zero(t, available)
}

func TestPGLedger_ReleaseBounds(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	flightID := insertFlight(t, pool, 2)
	l := ledger.NewPG(pool)

	err := l.Release(ctx, flightID)
	assert.ErrorIs(t, err, ledger.ErrOverRelease)

	tok, err := l.Reserve(ctx, flightID)
	require.NoError(t, err)
	assert.Equal(t, 1, tok.Remaining)
	require.NoError(t, l.Release(ctx, flightID))

	available, err := l.Available(ctx, flightID)
	require.NoError(t, err)
	assert.Equal(t, 2, available)
}

func TestPGLedger_UnknownFlight(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	l := ledger.NewPG(pool)
	missing := uuid.NewString()

	_, err := l.Reserve(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, l.Release(ctx, missing), domain.ErrNotFound)
	_, err = l.Available(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
