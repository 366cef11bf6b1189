package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/ledger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingRepository persists bookings. Every transition that moves a seat
// unit runs the ledger operation in the same transaction as the status write.
type BookingRepository interface {
	CreateDraft(ctx context.Context, booking *domain.Booking) error
	CreateConfirmed(ctx context.Context, booking *domain.Booking) (ledger.Token, error)
	ConfirmDraft(ctx context.Context, id, userID string, expiresAt *time.Time) (*domain.Booking, ledger.Token, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.BookingView, error)
	MarkPaid(ctx context.Context, payment domain.Payment) (*domain.Booking, error)
	Cancel(ctx context.Context, id, userID string) (*domain.Booking, error)
	ExpireHolds(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func bookingColumns(alias string) string {
	p := ""
	if alias != "" {
		p = alias + "."
	}
	return strings.NewReplacer("$.", p).Replace(`$.id, $.user_id, $.flight_id, $.booking_status, $.payment_status,
	$.seat_number, $.service_tier, ROUND($.service_price * 100)::bigint, ROUND($.total_price * 100)::bigint,
	$.payment_reference, $.expires_at, $.created_at, $.updated_at`)
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b               domain.Booking
		seat, tier, ref *string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.FlightID, &b.Status, &b.PaymentStatus,
		&seat, &tier, &b.ServicePrice, &b.TotalPrice, &ref, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.SeatNumber, b.ServiceTier, b.PaymentReference = deref(seat), deref(tier), deref(ref)
	return &b, nil
}

func (r *PGBookingRepository) CreateDraft(ctx context.Context, booking *domain.Booking) error {
	booking.Status = domain.BookingStatusDraft
	booking.PaymentStatus = domain.PaymentStatusPending
	booking.ExpiresAt = nil
	return r.insert(ctx, r.db, booking)
}

func (r *PGBookingRepository) CreateConfirmed(ctx context.Context, booking *domain.Booking) (ledger.Token, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ledger.Token{}, storeErr("begin booking", err)
	}
	defer tx.Rollback(ctx)

	token, err := ledger.NewPG(tx).Reserve(ctx, booking.FlightID)
	if err != nil {
		return ledger.Token{}, err
	}

	booking.Status = domain.BookingStatusConfirmed
	booking.PaymentStatus = domain.PaymentStatusPending
	if err := r.insert(ctx, tx, booking); err != nil {
		return ledger.Token{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return ledger.Token{}, storeErr("commit booking", err)
	}
	return token, nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PGBookingRepository) insert(ctx context.Context, q queryRower, b *domain.Booking) error {
	err := q.QueryRow(ctx, `INSERT INTO bookings (user_id, flight_id, booking_status, payment_status, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		b.UserID, b.FlightID, string(b.Status), string(b.PaymentStatus), b.ExpiresAt).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return storeErr("insert booking", err)
	}
	return nil
}

func (r *PGBookingRepository) ConfirmDraft(ctx context.Context, id, userID string, expiresAt *time.Time) (*domain.Booking, ledger.Token, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, ledger.Token{}, storeErr("begin confirm", err)
	}
	defer tx.Rollback(ctx)

	b, err := lockBooking(ctx, tx, id)
	if err != nil {
		return nil, ledger.Token{}, err
	}
	if err := b.OwnedBy(userID); err != nil {
		return nil, ledger.Token{}, err
	}
	if err := domain.CheckTransition(b.Status, domain.BookingStatusConfirmed); err != nil {
		return nil, ledger.Token{}, err
	}

	token, err := ledger.NewPG(tx).Reserve(ctx, b.FlightID)
	if err != nil {
		return nil, ledger.Token{}, err
	}

	b, err = scanBooking(tx.QueryRow(ctx, `UPDATE bookings
		SET booking_status = 'confirmed', payment_status = 'pending', expires_at = $2, updated_at = now()
		WHERE id = $1 RETURNING `+bookingColumns(""), id, expiresAt))
	if err != nil {
		return nil, ledger.Token{}, storeErr("confirm booking", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, ledger.Token{}, storeErr("commit confirm", err)
	}
	return b, token, nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns("")+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return nil, storeErr("load booking", err)
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.BookingView, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns("b")+`, `+flightColumns("f")+`
		FROM bookings b JOIN flights f ON f.id = b.flight_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id`, userID)
	if err != nil {
		return nil, storeErr("list bookings", err)
	}
	defer rows.Close()

	views := make([]domain.BookingView, 0)
	for rows.Next() {
		var (
			v               domain.BookingView
			f               domain.Flight
			seat, tier, ref *string
		)
		if err := rows.Scan(&v.ID, &v.UserID, &v.FlightID, &v.Status, &v.PaymentStatus,
			&seat, &tier, &v.ServicePrice, &v.TotalPrice, &ref, &v.ExpiresAt, &v.CreatedAt, &v.UpdatedAt,
			&f.ID, &f.FlightNumber, &f.DepartureCity, &f.ArrivalCity, &f.DepartureTime, &f.ArrivalTime,
			&f.Price, &f.Capacity, &f.AvailableSeats, &f.AircraftType, &f.Gate, &f.Terminal, &f.Status,
			&f.CreatedAt); err != nil {
			return nil, storeErr("scan booking", err)
		}
		v.SeatNumber, v.ServiceTier, v.PaymentReference = deref(seat), deref(tier), deref(ref)
		v.Flight = &f
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list bookings", err)
	}
	return views, nil
}

func (r *PGBookingRepository) MarkPaid(ctx context.Context, p domain.Payment) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, storeErr("begin payment", err)
	}
	defer tx.Rollback(ctx)

	b, err := lockBooking(ctx, tx, p.BookingID)
	if err != nil {
		return nil, err
	}
	if err := b.CanPay(p.UserID); err != nil {
		return nil, err
	}
	if p.SeatNumber != "" {
		if err := claimSeat(ctx, tx, b.FlightID, p.SeatNumber, b.ID); err != nil {
			return nil, err
		}
	}

	b, err = scanBooking(tx.QueryRow(ctx, `UPDATE bookings SET
			booking_status = 'paid', payment_status = 'completed',
			seat_number = $2, service_tier = $3,
			service_price = $4::bigint / 100.0, total_price = $5::bigint / 100.0,
			payment_reference = $6, expires_at = NULL, updated_at = now()
		WHERE id = $1 AND booking_status = 'confirmed' AND payment_status = 'pending'
		RETURNING `+bookingColumns(""),
		b.ID, nullString(p.SeatNumber), nullString(p.ServiceTier), int64(p.ServicePrice),
		int64(p.TotalPrice), nullString(p.Reference)))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrSeatTaken
		}
		return nil, storeErr("mark booking paid", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit payment", err)
	}
	return b, nil
}

// claimSeat assigns a seat to the booking only while it is unassigned.
func claimSeat(ctx context.Context, tx pgx.Tx, flightID, seat, bookingID string) error {
	tag, err := tx.Exec(ctx, `UPDATE flight_seats SET booking_id = $3
		WHERE flight_id = $1 AND seat_number = $2 AND booking_id IS NULL`, flightID, seat, bookingID)
	if err != nil {
		return storeErr("claim seat", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flight_seats WHERE flight_id = $1 AND seat_number = $2)`,
		flightID, seat).Scan(&exists); err != nil {
		return storeErr("lookup seat", err)
	}
	if !exists {
		return domain.NewValidationError("seat_number", fmt.Sprintf("%s does not exist on this flight", seat))
	}
	return domain.ErrSeatTaken
}

func (r *PGBookingRepository) Cancel(ctx context.Context, id, userID string) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, storeErr("begin cancel", err)
	}
	defer tx.Rollback(ctx)

	b, err := lockBooking(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := b.OwnedBy(userID); err != nil {
		return nil, err
	}
	if err := domain.CheckTransition(b.Status, domain.BookingStatusCancelled); err != nil {
		return nil, err
	}
	if err := cancelLocked(ctx, tx, b); err != nil {
		return nil, err
	}

	b, err = scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns("")+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return nil, storeErr("reload booking", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit cancel", err)
	}
	return b, nil
}

// cancelLocked returns the seat unit and the seat assignment of a booking
// already locked by the transaction, then marks it cancelled.
func cancelLocked(ctx context.Context, tx pgx.Tx, b *domain.Booking) error {
	if b.Status.HoldsSeat() {
		if err := ledger.NewPG(tx).Release(ctx, b.FlightID); err != nil {
			return err
		}
	}
	if b.SeatNumber != "" {
		if _, err := tx.Exec(ctx, `UPDATE flight_seats SET booking_id = NULL
			WHERE flight_id = $1 AND booking_id = $2`, b.FlightID, b.ID); err != nil {
			return storeErr("free seat", err)
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE bookings SET booking_status = 'cancelled', expires_at = NULL, updated_at = now()
		WHERE id = $1`, b.ID); err != nil {
		return storeErr("cancel booking", err)
	}
	return nil
}

func (r *PGBookingRepository) ExpireHolds(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, storeErr("begin expiry", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT `+bookingColumns("")+` FROM bookings
		WHERE booking_status = 'confirmed' AND payment_status = 'pending' AND expires_at <= $1
		ORDER BY expires_at
		FOR UPDATE SKIP LOCKED`, deadline)
	if err != nil {
		return nil, storeErr("select expired holds", err)
	}
	held, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Booking, error) {
		return scanBooking(row)
	})
	if err != nil {
		return nil, storeErr("scan expired holds", err)
	}

	expired := make([]domain.Booking, 0, len(held))
	for _, b := range held {
		if err := cancelLocked(ctx, tx, b); err != nil {
			return nil, err
		}
		b.Status = domain.BookingStatusCancelled
		b.ExpiresAt = nil
		expired = append(expired, *b)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit expiry", err)
	}
	return expired, nil
}

func lockBooking(ctx context.Context, tx pgx.Tx, id string) (*domain.Booking, error) {
	b, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns("")+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, storeErr("lock booking", err)
	}
	return b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
