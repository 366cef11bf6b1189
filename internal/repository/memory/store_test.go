package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func testFlight(number string, dep time.Time, capacity int) domain.Flight {
	return domain.Flight{
		FlightNumber:   number,
		DepartureCity:  "MSQ",
		ArrivalCity:    "MOW",
		DepartureTime:  dep,
		ArrivalTime:    dep.Add(90 * time.Minute),
		Price:          15000,
		Capacity:       capacity,
		AvailableSeats: capacity,
	}
}

func seed(t *testing.T, s *Store, capacity int) (flightID string, userIDs []string) {
	t.Helper()
	ctx := context.Background()
	_, err := s.Flights().Upsert(ctx, []domain.Flight{testFlight("AL1000", base.Add(10*time.Hour), capacity)})
	require.NoError(t, err)
	page, err := s.Flights().Search(ctx, domain.FlightFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Flights, 1)

	for i := 0; i < 3; i++ {
		u := &domain.User{Email: string(rune('a'+i)) + "@example.com", PasswordHash: "x"}
		require.NoError(t, s.Users().Create(ctx, u, nil))
		userIDs = append(userIDs, u.ID)
	}
	return page.Flights[0].ID, userIDs
}

func heldBookings(t *testing.T, s *Store, flightID string) int {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()
	held := 0
	for _, rec := range s.bookings {
		if rec.booking.FlightID == flightID && rec.booking.Status.HoldsSeat() {
			held++
		}
	}
	return held
}

func TestBookings_ConcurrentConfirmNeverOversells(t *testing.T) {
	s := New()
	ctx := context.Background()
	flightID, users := seed(t, s, 10)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		soldOut int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Bookings().CreateConfirmed(ctx, &domain.Booking{UserID: users[i%len(users)], FlightID: flightID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, domain.ErrSoldOut):
				soldOut++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 30, soldOut)
	f, err := s.Flights().GetByID(ctx, flightID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.AvailableSeats)
	assert.Equal(t, f.Capacity, f.AvailableSeats+heldBookings(t, s, flightID))
}

func TestBookings_DraftConfirmPayCancel(t *testing.T) {
	s := New()
	ctx := context.Background()
	flightID, users := seed(t, s, 6)
	repo := s.Bookings()

	draft := &domain.Booking{UserID: users[0], FlightID: flightID}
	require.NoError(t, repo.CreateDraft(ctx, draft))
	assert.Equal(t, domain.BookingStatusDraft, draft.Status)

	f, _ := s.Flights().GetByID(ctx, flightID)
	assert.Equal(t, 6, f.AvailableSeats)

	expires := base.Add(time.Hour)
	_, _, err := repo.ConfirmDraft(ctx, draft.ID, users[1], &expires)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	confirmed, token, err := repo.ConfirmDraft(ctx, draft.ID, users[0], &expires)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, confirmed.Status)
	assert.Equal(t, 5, token.Remaining)

	paid, err := repo.MarkPaid(ctx, domain.Payment{
		BookingID: draft.ID, UserID: users[0], SeatNumber: "1A", ServiceTier: "standard",
		ServicePrice: 3480, TotalPrice: 5980, Reference: "pi_1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPaid, paid.Status)
	assert.Equal(t, domain.PaymentStatusCompleted, paid.PaymentStatus)
	assert.Nil(t, paid.ExpiresAt)

	_, err = repo.MarkPaid(ctx, domain.Payment{BookingID: draft.ID, UserID: users[0]})
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)

	seat, err := s.Flights().Seat(ctx, flightID, "1A")
	require.NoError(t, err)
	assert.False(t, seat.Available)

	cancelled, err := repo.Cancel(ctx, draft.ID, users[0])
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)

	f, _ = s.Flights().GetByID(ctx, flightID)
	assert.Equal(t, 6, f.AvailableSeats)
	seat, _ = s.Flights().Seat(ctx, flightID, "1A")
	assert.True(t, seat.Available)

	_, err = repo.Cancel(ctx, draft.ID, users[0])
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestBookings_CancelDraftDoesNotRelease(t *testing.T) {
	s := New()
	ctx := context.Background()
	flightID, users := seed(t, s, 2)

	draft := &domain.Booking{UserID: users[0], FlightID: flightID}
	require.NoError(t, s.Bookings().CreateDraft(ctx, draft))
	_, err := s.Bookings().Cancel(ctx, draft.ID, users[0])
	require.NoError(t, err)

	available, err := s.Ledger().Available(ctx, flightID)
	require.NoError(t, err)
	assert.Equal(t, 2, available)
}

func TestBookings_SeatClaimIsExclusive(t *testing.T) {
	s := New()
	ctx := context.Background()
	flightID, users := seed(t, s, 6)

	a := &domain.Booking{UserID: users[0], FlightID: flightID}
	b := &domain.Booking{UserID: users[1], FlightID: flightID}
	_, err := s.Bookings().CreateConfirmed(ctx, a)
	require.NoError(t, err)
	_, err = s.Bookings().CreateConfirmed(ctx, b)
	require.NoError(t, err)

	_, err = s.Bookings().MarkPaid(ctx, domain.Payment{BookingID: a.ID, UserID: users[0], SeatNumber: "2C"})
	require.NoError(t, err)
	_, err = s.Bookings().MarkPaid(ctx, domain.Payment{BookingID: b.ID, UserID: users[1], SeatNumber: "2C"})
	assert.ErrorIs(t, err, domain.ErrSeatTaken)

	_, err = s.Bookings().MarkPaid(ctx, domain.Payment{BookingID: b.ID, UserID: users[1], SeatNumber: "40A"})
	assert.True(t, domain.IsValidation(err))

	got, err := s.Bookings().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, got.Status)
}

func TestBookings_ExpireHolds(t *testing.T) {
	s := New()
	ctx := context.Background()
	flightID, users := seed(t, s, 3)

	soon, later := base.Add(time.Minute), base.Add(time.Hour)
	stale := &domain.Booking{UserID: users[0], FlightID: flightID, ExpiresAt: &soon}
	fresh := &domain.Booking{UserID: users[1], FlightID: flightID, ExpiresAt: &later}
	_, err := s.Bookings().CreateConfirmed(ctx, stale)
	require.NoError(t, err)
	_, err = s.Bookings().CreateConfirmed(ctx, fresh)
	require.NoError(t, err)

	expired, err := s.Bookings().ExpireHolds(ctx, base.Add(10*time.Minute))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.ID, expired[0].ID)
	assert.Equal(t, domain.BookingStatusCancelled, expired[0].Status)

	available, _ := s.Ledger().Available(ctx, flightID)
	assert.Equal(t, 2, available)
}

func TestBookings_ListByUserNewestFirst(t *testing.T) {
	clock := base
	s := New(WithClock(func() time.Time { return clock }))
	ctx := context.Background()
	flightID, users := seed(t, s, 5)

	first := &domain.Booking{UserID: users[0], FlightID: flightID}
	require.NoError(t, s.Bookings().CreateDraft(ctx, first))
	clock = clock.Add(time.Minute)
	second := &domain.Booking{UserID: users[0], FlightID: flightID}
	_, err := s.Bookings().CreateConfirmed(ctx, second)
	require.NoError(t, err)
	require.NoError(t, s.Bookings().CreateDraft(ctx, &domain.Booking{UserID: users[1], FlightID: flightID}))

	views, err := s.Bookings().ListByUser(ctx, users[0])
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, second.ID, views[0].ID)
	assert.Equal(t, first.ID, views[1].ID)
	require.NotNil(t, views[0].Flight)
	assert.Equal(t, "AL1000", views[0].Flight.FlightNumber)
	assert.Equal(t, 4, views[0].Flight.AvailableSeats)
}

func TestBookings_UnknownReferences(t *testing.T) {
	s := New()
	ctx := context.Background()
	flightID, users := seed(t, s, 1)

	_, err := s.Bookings().CreateConfirmed(ctx, &domain.Booking{UserID: users[0], FlightID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	err = s.Bookings().CreateDraft(ctx, &domain.Booking{UserID: "ghost", FlightID: flightID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Bookings().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFlights_SearchOrdersAndPaginates(t *testing.T) {
	s := New()
	ctx := context.Background()
	late := testFlight("AL2000", base.Add(18*time.Hour), 6)
	early := testFlight("AL1000", base.Add(7*time.Hour), 6)
	other := testFlight("AL3000", base.Add(9*time.Hour), 6)
	other.ArrivalCity = "LED"
	nextDay := testFlight("AL4000", base.Add(30*time.Hour), 6)
	n, err := s.Flights().Upsert(ctx, []domain.Flight{late, early, other, nextDay})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	dep, _ := domain.ParseDate("departure_date", "2024-06-01")
	filter := domain.FlightFilter{Origin: "MSQ", Destination: "MOW", DepartureDate: dep}
	require.NoError(t, filter.Normalize())

	page, err := s.Flights().Search(ctx, filter)
	require.NoError(t, err)
	require.Len(t, page.Flights, 2)
	assert.Equal(t, "AL1000", page.Flights[0].FlightNumber)
	assert.Equal(t, "AL2000", page.Flights[1].FlightNumber)

	filter.PageSize, filter.Page = 1, 2
	page, err = s.Flights().Search(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Flights, 1)
	assert.Equal(t, "AL2000", page.Flights[0].FlightNumber)

	filter.Page = 5
	page, err = s.Flights().Search(ctx, filter)
	require.NoError(t, err)
	assert.Empty(t, page.Flights)
}

func TestFlights_UpsertKeepsSeatCounter(t *testing.T) {
	s := New()
	ctx := context.Background()
	flightID, users := seed(t, s, 6)
	_, err := s.Bookings().CreateConfirmed(ctx, &domain.Booking{UserID: users[0], FlightID: flightID})
	require.NoError(t, err)

	moved := testFlight("AL1000", base.Add(12*time.Hour), 6)
	n, err := s.Flights().Upsert(ctx, []domain.Flight{moved})
	require.NoError(t, err)
	assert.Zero(t, n)

	f, err := s.Flights().GetByID(ctx, flightID)
	require.NoError(t, err)
	assert.Equal(t, base.Add(12*time.Hour), f.DepartureTime)
	assert.Equal(t, 5, f.AvailableSeats)

	seats, err := s.Flights().Seats(ctx, flightID)
	require.NoError(t, err)
	assert.Len(t, seats, 6)
}

func TestUsersAndProfiles(t *testing.T) {
	s := New()
	ctx := context.Background()
	name := "Ada Lovelace"

	u := &domain.User{Email: "ada@example.com", PasswordHash: "hash"}
	require.NoError(t, s.Users().Create(ctx, u, &domain.Profile{FullName: &name}))
	assert.ErrorIs(t, s.Users().Create(ctx, &domain.User{Email: "ADA@example.com"}, nil), domain.ErrEmailTaken)

	got, err := s.Users().GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	p, err := s.Profiles().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, name, *p.FullName)

	phone := "+375 29 123-45-67"
	p, err = s.Profiles().Update(ctx, u.ID, domain.ProfileUpdate{PhoneNumber: &phone}, base)
	require.NoError(t, err)
	assert.Equal(t, name, *p.FullName)
	assert.Equal(t, phone, *p.PhoneNumber)

	_, err = s.Profiles().Update(ctx, "ghost", domain.ProfileUpdate{}, base)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCities(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Cities().Upsert(ctx, []domain.City{
		{Name: "Warsaw", Code: "WAW", Country: "Poland"},
		{Name: "Minsk", Code: "MSQ", Country: "Belarus"},
	}))
	require.NoError(t, s.Cities().Upsert(ctx, []domain.City{{Name: "Minsk", Code: "MSQ", Country: "BY"}}))
	assert.Error(t, s.Cities().Upsert(ctx, []domain.City{{Name: "x", Code: "x"}}))

	cities, err := s.Cities().List(ctx)
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "Minsk", cities[0].Name)
	assert.Equal(t, "BY", cities[0].Country)
}

func TestFlights_SearchOverflowingOffset(t *testing.T) {
	s := New()
	seed(t, s, 10)

	page, err := s.Flights().Search(context.Background(), domain.FlightFilter{Page: 92233720368547760, PageSize: 100})
	require.NoError(t, err)
	assert.Empty(t, page.Flights)
	assert.Equal(t, 1, page.Total)
}

func TestBookings_ExpireHoldsIsAllOrNothing(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.Flights().Upsert(ctx, []domain.Flight{
		testFlight("AL1000", base.Add(10*time.Hour), 3),
		testFlight("AL2000", base.Add(12*time.Hour), 3),
	})
	require.NoError(t, err)
	page, err := s.Flights().Search(ctx, domain.FlightFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Flights, 2)
	healthy, broken := page.Flights[0].ID, page.Flights[1].ID

	u := &domain.User{Email: "a@example.com", PasswordHash: "x"}
	require.NoError(t, s.Users().Create(ctx, u, nil))

	due := base.Add(time.Minute)
	a := &domain.Booking{UserID: u.ID, FlightID: healthy, ExpiresAt: &due}
	b := &domain.Booking{UserID: u.ID, FlightID: broken, ExpiresAt: &due}
	_, err = s.Bookings().CreateConfirmed(ctx, a)
	require.NoError(t, err)
	_, err = s.Bookings().CreateConfirmed(ctx, b)
	require.NoError(t, err)

	// Drift the second counter back to full so its release is refused.
	require.NoError(t, s.Ledger().Release(ctx, broken))

	expired, err := s.Bookings().ExpireHolds(ctx, base.Add(time.Hour))
	require.ErrorIs(t, err, ledger.ErrOverRelease)
	assert.Empty(t, expired)

	for _, id := range []string{a.ID, b.ID} {
		got, err := s.Bookings().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusConfirmed, got.Status)
		assert.NotNil(t, got.ExpiresAt)
	}
	available, _ := s.Ledger().Available(ctx, healthy)
	assert.Equal(t, 2, available)
}
