package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/seatmap"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	Search(ctx context.Context, filter domain.FlightFilter) (domain.FlightPage, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	Seats(ctx context.Context, flightID string) ([]domain.Seat, error)
	Seat(ctx context.Context, flightID, number string) (*domain.Seat, error)
	// Availability returns the live seat counters of the given flights.
	// Unknown ids are absent from the result.
	Availability(ctx context.Context, ids []string) (map[string]int, error)
	// Upsert inserts new flights with their seat maps and refreshes schedule
	// fields of existing ones. Seat counters of existing flights are left alone.
	Upsert(ctx context.Context, flights []domain.Flight) (inserted int, err error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func flightColumns(alias string) string {
	p := ""
	if alias != "" {
		p = alias + "."
	}
	return strings.NewReplacer("$.", p).Replace(`$.id, $.flight_number, $.departure_city, $.arrival_city,
	$.departure_time, $.arrival_time, ROUND($.price * 100)::bigint, $.capacity, $.available_seats,
	COALESCE($.aircraft_type, ''), COALESCE($.gate, ''), COALESCE($.terminal, ''), COALESCE($.status, ''), $.created_at`)
}

func scanFlight(row pgx.Row) (domain.Flight, error) {
	var f domain.Flight
	err := row.Scan(&f.ID, &f.FlightNumber, &f.DepartureCity, &f.ArrivalCity,
		&f.DepartureTime, &f.ArrivalTime, &f.Price, &f.Capacity, &f.AvailableSeats,
		&f.AircraftType, &f.Gate, &f.Terminal, &f.Status, &f.CreatedAt)
	return f, err
}

// flightWhere renders the filter as a WHERE clause with positional arguments.
func flightWhere(f domain.FlightFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Origin != "" {
		add("departure_city = $%d", f.Origin)
	}
	if f.Destination != "" {
		add("arrival_city = $%d", f.Destination)
	}
	from, to := f.DepartureWindow()
	if !from.IsZero() {
		add("departure_time >= $%d", from)
	}
	if !to.IsZero() {
		add("departure_time < $%d", to)
	}
	if deadline := f.ArrivalDeadline(); !deadline.IsZero() {
		add("arrival_time < $%d", deadline)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PGFlightRepository) Search(ctx context.Context, filter domain.FlightFilter) (domain.FlightPage, error) {
	where, args := flightWhere(filter)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM flights`+where, args...).Scan(&total); err != nil {
		return domain.FlightPage{}, storeErr("count flights", err)
	}

	n := len(args)
	query := `SELECT ` + flightColumns("") + ` FROM flights` + where +
		fmt.Sprintf(` ORDER BY departure_time, flight_number LIMIT $%d OFFSET $%d`, n+1, n+2)
	rows, err := r.db.Query(ctx, query, append(args, filter.PageSize, filter.Offset())...)
	if err != nil {
		return domain.FlightPage{}, storeErr("search flights", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0, filter.PageSize)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return domain.FlightPage{}, storeErr("scan flight", err)
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return domain.FlightPage{}, storeErr("search flights", err)
	}
	return domain.NewFlightPage(flights, total, filter.Page, filter.PageSize), nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns("")+` FROM flights WHERE id = $1`, id))
	if err != nil {
		return nil, storeErr("load flight", err)
	}
	return &f, nil
}

func (r *PGFlightRepository) Availability(ctx context.Context, ids []string) (map[string]int, error) {
	out := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, available_seats FROM flights WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, storeErr("load availability", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id        string
			available int
		)
		if err := rows.Scan(&id, &available); err != nil {
			return nil, storeErr("load availability", err)
		}
		out[id] = available
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("load availability", err)
	}
	return out, nil
}

func (r *PGFlightRepository) Seats(ctx context.Context, flightID string) ([]domain.Seat, error) {
	rows, err := r.db.Query(ctx, `SELECT seat_number, class, price::float8, booking_id IS NULL
		FROM flight_seats WHERE flight_id = $1 ORDER BY seat_row, seat_number`, flightID)
	if err != nil {
		return nil, storeErr("load seats", err)
	}
	seats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Seat, error) {
		var s domain.Seat
		err := row.Scan(&s.Number, &s.Class, &s.Price, &s.Available)
		return s, err
	})
	if err != nil {
		return nil, storeErr("load seats", err)
	}
	if len(seats) == 0 {
		if _, err := r.GetByID(ctx, flightID); err != nil {
			return nil, err
		}
	}
	return seats, nil
}

func (r *PGFlightRepository) Seat(ctx context.Context, flightID, number string) (*domain.Seat, error) {
	var s domain.Seat
	err := r.db.QueryRow(ctx, `SELECT seat_number, class, price::float8, booking_id IS NULL
		FROM flight_seats WHERE flight_id = $1 AND seat_number = $2`, flightID, number).
		Scan(&s.Number, &s.Class, &s.Price, &s.Available)
	if err != nil {
		return nil, storeErr("load seat", err)
	}
	return &s, nil
}

func (r *PGFlightRepository) Upsert(ctx context.Context, flights []domain.Flight) (int, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, storeErr("begin upsert", err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, f := range flights {
		if err := f.Validate(); err != nil {
			return 0, fmt.Errorf("flight %s: %w", f.FlightNumber, err)
		}
		var (
			id    string
			isNew bool
		)
		err := tx.QueryRow(ctx, `INSERT INTO flights (flight_number, departure_city, arrival_city, departure_time,
				arrival_time, price, capacity, available_seats, aircraft_type, gate, terminal, status)
			VALUES ($1, $2, $3, $4, $5, $6::bigint / 100.0, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (flight_number) DO UPDATE SET
				departure_city = EXCLUDED.departure_city,
				arrival_city = EXCLUDED.arrival_city,
				departure_time = EXCLUDED.departure_time,
				arrival_time = EXCLUDED.arrival_time,
				price = EXCLUDED.price,
				aircraft_type = EXCLUDED.aircraft_type,
				gate = EXCLUDED.gate,
				terminal = EXCLUDED.terminal,
				status = EXCLUDED.status,
				updated_at = now()
			RETURNING id, (xmax = 0)`,
			f.FlightNumber, f.DepartureCity, f.ArrivalCity, f.DepartureTime, f.ArrivalTime, int64(f.Price),
			f.Capacity, f.AvailableSeats, nullString(f.AircraftType), nullString(f.Gate),
			nullString(f.Terminal), nullString(f.Status)).Scan(&id, &isNew)
		if err != nil {
			return 0, storeErr("upsert flight", err)
		}
		if !isNew {
			continue
		}
		inserted++

		batch := &pgx.Batch{}
		for _, s := range seatmap.Layout(f.Capacity) {
			batch.Queue(`INSERT INTO flight_seats (flight_id, seat_number, seat_row, class, price)
				VALUES ($1, $2, $3, $4, $5)`, id, s.Number, seatmap.Row(s.Number), string(s.Class), s.Price)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, storeErr("insert seat map", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, storeErr("commit upsert", err)
	}
	return inserted, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
