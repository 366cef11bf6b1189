package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/repository"
	"github.com/Domenick1991/aeroluxe/internal/seatmap"
	"github.com/google/uuid"
)

type FlightRepository struct {
	s *Store
}

// flight returns a copy of the flight with its live seat counter. Callers hold s.mu.
func (r *FlightRepository) flight(ctx context.Context, id string) (domain.Flight, error) {
	f, ok := r.s.flights[id]
	if !ok {
		return domain.Flight{}, domain.ErrNotFound
	}
	out := *f
	available, err := r.s.ledger.Available(ctx, id)
	if err != nil {
		return domain.Flight{}, err
	}
	out.AvailableSeats = available
	return out, nil
}

func (r *FlightRepository) Search(ctx context.Context, filter domain.FlightFilter) (domain.FlightPage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]domain.Flight, 0)
	for id, f := range r.s.flights {
		if !filter.Matches(*f) {
			continue
		}
		fl, err := r.flight(ctx, id)
		if err != nil {
			return domain.FlightPage{}, err
		}
		matched = append(matched, fl)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].DepartureTime.Equal(matched[j].DepartureTime) {
			return matched[i].DepartureTime.Before(matched[j].DepartureTime)
		}
		return matched[i].FlightNumber < matched[j].FlightNumber
	})

	total := len(matched)
	start := filter.Offset()
	if start < 0 || start > total {
		start = total
	}
	end := min(start+filter.PageSize, total)
	return domain.NewFlightPage(matched[start:end], total, filter.Page, filter.PageSize), nil
}

func (r *FlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, err := r.flight(ctx, id)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FlightRepository) Availability(ctx context.Context, ids []string) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]int, len(ids))
	for _, id := range ids {
		if _, ok := r.s.flights[id]; !ok {
			continue
		}
		available, err := r.s.ledger.Available(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = available
	}
	return out, nil
}

func (r *FlightRepository) Seats(_ context.Context, flightID string) ([]domain.Seat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if _, ok := r.s.flights[flightID]; !ok {
		return nil, domain.ErrNotFound
	}
	states := r.s.seats[flightID]
	seats := make([]domain.Seat, 0, len(states))
	for _, st := range states {
		seat := st.seat
		seat.Available = st.bookingID == ""
		seats = append(seats, seat)
	}
	return seats, nil
}

func (r *FlightRepository) Seat(_ context.Context, flightID, number string) (*domain.Seat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st := r.s.findSeat(flightID, number)
	if st == nil {
		return nil, domain.ErrNotFound
	}
	seat := st.seat
	seat.Available = st.bookingID == ""
	return &seat, nil
}

func (r *FlightRepository) Upsert(_ context.Context, flights []domain.Flight) (int, error) {
	for _, f := range flights {
		if err := f.Validate(); err != nil {
			return 0, fmt.Errorf("flight %s: %w", f.FlightNumber, err)
		}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inserted := 0
	for _, f := range flights {
		if id, ok := r.s.numbers[f.FlightNumber]; ok {
			existing := r.s.flights[id]
			existing.DepartureCity = f.DepartureCity
			existing.ArrivalCity = f.ArrivalCity
			existing.DepartureTime = f.DepartureTime
			existing.ArrivalTime = f.ArrivalTime
			existing.Price = f.Price
			existing.AircraftType = f.AircraftType
			existing.Gate = f.Gate
			existing.Terminal = f.Terminal
			existing.Status = f.Status
			continue
		}

		stored := f
		if stored.ID == "" {
			stored.ID = uuid.NewString()
		}
		stored.CreatedAt = r.s.timestamp()
		r.s.flights[stored.ID] = &stored
		r.s.numbers[stored.FlightNumber] = stored.ID
		r.s.ledger.Register(stored.ID, stored.Capacity, stored.AvailableSeats)

		layout := seatmap.Layout(stored.Capacity)
		states := make([]*seatState, 0, len(layout))
		for _, seat := range layout {
			states = append(states, &seatState{seat: seat})
		}
		r.s.seats[stored.ID] = states
		inserted++
	}
	return inserted, nil
}

func (s *Store) findSeat(flightID, number string) *seatState {
	for _, st := range s.seats[flightID] {
		if st.seat.Number == number {
			return st
		}
	}
	return nil
}

var _ repository.FlightRepository = (*FlightRepository)(nil)
