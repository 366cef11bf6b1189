package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/fare"
	"github.com/Domenick1991/aeroluxe/internal/identity"
	"github.com/Domenick1991/aeroluxe/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ConfirmBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context, userID string) ([]domain.BookingView, error) {
	args := m.Called(ctx, userID)
	views, _ := args.Get(0).([]domain.BookingView)
	return views, args.Error(1)
}

func (m *MockBookingUseCase) PayBooking(ctx context.Context, input booking.PayBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) QuoteFare(ctx context.Context, input booking.QuoteInput) (*fare.Quote, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fare.Quote), args.Error(1)
}

func (m *MockBookingUseCase) ExpireHolds(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]domain.Booking)
	return b, args.Error(1)
}

func (m *MockBookingUseCase) Tiers() domain.TierCatalog {
	return m.Called().Get(0).(domain.TierCatalog)
}

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) Search(ctx context.Context, filter domain.FlightFilter) (domain.FlightPage, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.FlightPage), args.Error(1)
}

func (m *MockFlightUseCase) Board(ctx context.Context, page, pageSize int) (domain.FlightPage, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).(domain.FlightPage), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Seats(ctx context.Context, flightID string) ([]domain.Seat, error) {
	args := m.Called(ctx, flightID)
	seats, _ := args.Get(0).([]domain.Seat)
	return seats, args.Error(1)
}

func (m *MockFlightUseCase) Cities(ctx context.Context) ([]domain.City, error) {
	args := m.Called(ctx)
	cities, _ := args.Get(0).([]domain.City)
	return cities, args.Error(1)
}

type MockProfileUseCase struct {
	mock.Mock
}

func (m *MockProfileUseCase) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileUseCase) Update(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.Profile, error) {
	args := m.Called(ctx, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) SignUp(ctx context.Context, in identity.SignUpInput) (*domain.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockProvider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockProvider) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockProvider) Authenticate(ctx context.Context, token string) (*identity.Principal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Principal), args.Error(1)
}

func (m *MockProvider) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

const (
	testToken  = "token-123"
	testUserID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
)

type testServer struct {
	router   *gin.Engine
	bookings *MockBookingUseCase
	flights  *MockFlightUseCase
	profiles *MockProfileUseCase
	provider *MockProvider
}

func newTestServer(t *testing.T, checks map[string]Check) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := &testServer{
		bookings: &MockBookingUseCase{},
		flights:  &MockFlightUseCase{},
		profiles: &MockProfileUseCase{},
		provider: &MockProvider{},
	}
	s.provider.On("Authenticate", mock.Anything, testToken).Return(&identity.Principal{UserID: testUserID, TokenID: "jti"}, nil).Maybe()
	s.provider.On("Authenticate", mock.Anything, mock.Anything).Return(nil, domain.ErrAuthRequired).Maybe()

	s.router = NewRouter(Handlers{
		Auth:     NewAuthHandler(s.provider),
		Flights:  NewFlightHandler(s.flights, 10),
		Bookings: NewBookingHandler(s.bookings),
		Profile:  NewProfileHandler(s.profiles),
		Health:   NewHealthHandler(checks),
	}, s.provider, zap.NewNop())
	return s
}

func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return resp
}
