package flights_service_api

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/api/rpc"
	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/identity"
	"github.com/Domenick1991/aeroluxe/internal/service/flights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

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
	f, _ := args.Get(0).(*domain.Flight)
	return f, args.Error(1)
}

func (m *MockFlightUseCase) Seats(ctx context.Context, flightID string) ([]domain.Seat, error) {
	args := m.Called(ctx, flightID)
	s, _ := args.Get(0).([]domain.Seat)
	return s, args.Error(1)
}

func (m *MockFlightUseCase) Cities(ctx context.Context) ([]domain.City, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]domain.City)
	return c, args.Error(1)
}

// denyAll rejects every token, so only public methods can succeed.
type denyAll struct {
	identity.Provider
}

func (denyAll) Authenticate(context.Context, string) (*identity.Principal, error) {
	return nil, domain.ErrAuthRequired
}

func dial(t *testing.T, svc flights.FlightUseCase) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(rpc.AuthInterceptor(denyAll{}, PublicMethods...)))
	Register(srv, NewServer(svc))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

func TestServer_SearchFlights(t *testing.T) {
	svc := &MockFlightUseCase{}
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	dep := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.On("Search", mock.Anything, mock.MatchedBy(func(f domain.FlightFilter) bool {
		return f.Origin == "MSQ" && f.Destination == "MOW" &&
			f.DepartureDate != nil && f.DepartureDate.Equal(day) &&
			f.ReturnDate == nil && f.Page == 2 && f.PageSize == 5
	})).Return(domain.FlightPage{
		Flights: []domain.Flight{{
			ID: "f1", FlightNumber: "AL1234", DepartureCity: "MSQ", ArrivalCity: "MOW",
			DepartureTime: dep, ArrivalTime: dep.Add(90 * time.Minute), Price: 15000, Capacity: 120, AvailableSeats: 118,
		}},
		Total: 6, Page: 2, PageSize: 5, TotalPages: 2,
	}, nil)

	page, err := dial(t, svc).SearchFlights(context.Background(), &SearchFlightsRequest{
		From: "MSQ", To: "MOW", DepartureDate: "2024-06-01", Page: 2, PageSize: 5,
	})
	require.NoError(t, err)
	require.Len(t, page.Flights, 1)
	assert.Equal(t, "AL1234", page.Flights[0].FlightNumber)
	assert.Equal(t, domain.Money(15000), page.Flights[0].Price)
	assert.True(t, page.Flights[0].DepartureTime.Equal(dep))
	assert.Equal(t, 2, page.TotalPages)
	svc.AssertExpectations(t)
}

func TestServer_SearchFlightsBadDate(t *testing.T) {
	svc := &MockFlightUseCase{}

	_, err := dial(t, svc).SearchFlights(context.Background(), &SearchFlightsRequest{DepartureDate: "01.06.2024"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	svc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestServer_GetFlight(t *testing.T) {
	svc := &MockFlightUseCase{}
	svc.On("GetByID", mock.Anything, "f1").Return(&domain.Flight{ID: "f1", FlightNumber: "AL1234"}, nil)
	svc.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrNotFound)
	client := dial(t, svc)

	f, err := client.GetFlight(context.Background(), &GetFlightRequest{FlightID: "f1"})
	require.NoError(t, err)
	assert.Equal(t, "AL1234", f.FlightNumber)

	_, err = client.GetFlight(context.Background(), &GetFlightRequest{FlightID: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_ListDepartures(t *testing.T) {
	svc := &MockFlightUseCase{}
	svc.On("Board", mock.Anything, 1, domain.MaxPageSize).Return(domain.FlightPage{Total: 0, Page: 1, PageSize: domain.MaxPageSize}, nil)

	page, err := dial(t, svc).ListDepartures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Empty(t, page.Flights)
	svc.AssertExpectations(t)
}
