package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/ledger"
	"github.com/Domenick1991/aeroluxe/internal/repository"
	"github.com/google/uuid"
)

// BookingRepository mutates bookings under the store's write lock, so a
// status change and the ledger call it depends on are observed together.
type BookingRepository struct {
	s *Store
}

func (r *BookingRepository) CreateDraft(_ context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkRefs(booking); err != nil {
		return err
	}
	booking.Status = domain.BookingStatusDraft
	booking.PaymentStatus = domain.PaymentStatusPending
	booking.ExpiresAt = nil
	r.insert(booking)
	return nil
}

func (r *BookingRepository) CreateConfirmed(ctx context.Context, booking *domain.Booking) (ledger.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkRefs(booking); err != nil {
		return ledger.Token{}, err
	}
	token, err := r.s.ledger.Reserve(ctx, booking.FlightID)
	if err != nil {
		return ledger.Token{}, err
	}
	booking.Status = domain.BookingStatusConfirmed
	booking.PaymentStatus = domain.PaymentStatusPending
	r.insert(booking)
	return token, nil
}

func (r *BookingRepository) checkRefs(b *domain.Booking) error {
	if _, ok := r.s.flights[b.FlightID]; !ok {
		return fmt.Errorf("flight %s: %w", b.FlightID, domain.ErrNotFound)
	}
	if _, ok := r.s.users[b.UserID]; !ok {
		return fmt.Errorf("user %s: %w", b.UserID, domain.ErrNotFound)
	}
	return nil
}

func (r *BookingRepository) insert(b *domain.Booking) {
	now := r.s.timestamp()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.s.seq++
	r.s.bookings[b.ID] = &bookingRecord{booking: *b, seq: r.s.seq}
}

func (r *BookingRepository) ConfirmDraft(ctx context.Context, id, userID string, expiresAt *time.Time) (*domain.Booking, ledger.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.bookings[id]
	if !ok {
		return nil, ledger.Token{}, domain.ErrNotFound
	}
	b := &rec.booking
	if err := b.OwnedBy(userID); err != nil {
		return nil, ledger.Token{}, err
	}
	if err := domain.CheckTransition(b.Status, domain.BookingStatusConfirmed); err != nil {
		return nil, ledger.Token{}, err
	}
	token, err := r.s.ledger.Reserve(ctx, b.FlightID)
	if err != nil {
		return nil, ledger.Token{}, err
	}
	b.Status = domain.BookingStatusConfirmed
	b.PaymentStatus = domain.PaymentStatusPending
	b.ExpiresAt = expiresAt
	b.UpdatedAt = r.s.timestamp()
	out := *b
	return &out, token, nil
}

func (r *BookingRepository) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := rec.booking
	return &out, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.BookingView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := make([]*bookingRecord, 0)
	for _, rec := range r.s.bookings {
		if rec.booking.UserID == userID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i].booking.CreatedAt, recs[j].booking.CreatedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return recs[i].seq > recs[j].seq
	})

	flights := &FlightRepository{s: r.s}
	views := make([]domain.BookingView, 0, len(recs))
	for _, rec := range recs {
		f, err := flights.flight(ctx, rec.booking.FlightID)
		if err != nil {
			return nil, err
		}
		views = append(views, domain.BookingView{Booking: rec.booking, Flight: &f})
	}
	return views, nil
}

func (r *BookingRepository) MarkPaid(_ context.Context, p domain.Payment) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.bookings[p.BookingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b := &rec.booking
	if err := b.CanPay(p.UserID); err != nil {
		return nil, err
	}
	if p.SeatNumber != "" {
		st := r.s.findSeat(b.FlightID, p.SeatNumber)
		if st == nil {
			return nil, domain.NewValidationError("seat_number", p.SeatNumber+" does not exist on this flight")
		}
		if st.bookingID != "" {
			return nil, domain.ErrSeatTaken
		}
		st.bookingID = b.ID
	}
	b.ApplyPayment(p, r.s.timestamp())
	out := *b
	return &out, nil
}

func (r *BookingRepository) Cancel(ctx context.Context, id, userID string) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b := &rec.booking
	if err := b.OwnedBy(userID); err != nil {
		return nil, err
	}
	if err := domain.CheckTransition(b.Status, domain.BookingStatusCancelled); err != nil {
		return nil, err
	}
	if err := r.cancelLocked(ctx, b); err != nil {
		return nil, err
	}
	out := *b
	return &out, nil
}

func (r *BookingRepository) cancelLocked(ctx context.Context, b *domain.Booking) error {
	if b.Status.HoldsSeat() {
		if err := r.s.ledger.Release(ctx, b.FlightID); err != nil {
			return err
		}
	}
	if b.SeatNumber != "" {
		if st := r.s.findSeat(b.FlightID, b.SeatNumber); st != nil && st.bookingID == b.ID {
			st.bookingID = ""
		}
	}
	b.Status = domain.BookingStatusCancelled
	b.ExpiresAt = nil
	b.UpdatedAt = r.s.timestamp()
	return nil
}

// ExpireHolds cancels every due hold or none of them: if one release fails,
// the ones already applied are rolled back.
func (r *BookingRepository) ExpireHolds(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var (
		done    []*domain.Booking
		before  []domain.Booking
		expired = make([]domain.Booking, 0)
	)
	for _, rec := range r.s.bookings {
		b := &rec.booking
		if b.Status != domain.BookingStatusConfirmed || b.PaymentStatus != domain.PaymentStatusPending {
			continue
		}
		if b.ExpiresAt == nil || b.ExpiresAt.After(deadline) {
			continue
		}
		snapshot := *b
		if err := r.cancelLocked(ctx, b); err != nil {
			r.undoCancels(ctx, done, before)
			return nil, err
		}
		done = append(done, b)
		before = append(before, snapshot)
		expired = append(expired, *b)
	}
	return expired, nil
}

// undoCancels restores bookings cancelled by cancelLocked. Callers hold s.mu,
// so the seats released a moment ago are still free to take back.
func (r *BookingRepository) undoCancels(ctx context.Context, done []*domain.Booking, before []domain.Booking) {
	for i := len(done) - 1; i >= 0; i-- {
		prev := before[i]
		if prev.Status.HoldsSeat() {
			_, _ = r.s.ledger.Reserve(ctx, prev.FlightID)
		}
		if prev.SeatNumber != "" {
			if st := r.s.findSeat(prev.FlightID, prev.SeatNumber); st != nil && st.bookingID == "" {
				st.bookingID = prev.ID
			}
		}
		*done[i] = prev
	}
}

var _ repository.BookingRepository = (*BookingRepository)(nil)
