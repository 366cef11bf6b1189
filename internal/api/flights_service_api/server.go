package flights_service_api

import (
	"context"

	"github.com/Domenick1991/aeroluxe/internal/api/rpc"
	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/service/flights"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "aeroluxe.v1.FlightsService"

// PublicMethods need no bearer token.
var PublicMethods = []string{
	"/" + ServiceName + "/SearchFlights",
	"/" + ServiceName + "/GetFlight",
	"/" + ServiceName + "/ListDepartures",
}

type SearchFlightsRequest struct {
	From          string `json:"from"`
	To            string `json:"to"`
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date"`
	Page          int    `json:"page"`
	PageSize      int    `json:"page_size"`
}

type GetFlightRequest struct {
	FlightID string `json:"flight_id"`
}

type FlightsServiceServer interface {
	SearchFlights(ctx context.Context, req *SearchFlightsRequest) (*domain.FlightPage, error)
	GetFlight(ctx context.Context, req *GetFlightRequest) (*domain.Flight, error)
	ListDepartures(ctx context.Context, req *emptypb.Empty) (*domain.FlightPage, error)
}

type Server struct {
	flights flights.FlightUseCase
}

func NewServer(flights flights.FlightUseCase) *Server {
	return &Server{flights: flights}
}

func (s *Server) SearchFlights(ctx context.Context, req *SearchFlightsRequest) (*domain.FlightPage, error) {
	departure, err := domain.ParseDate("departure_date", req.DepartureDate)
	if err != nil {
		return nil, err
	}
	ret, err := domain.ParseDate("return_date", req.ReturnDate)
	if err != nil {
		return nil, err
	}
	page, err := s.flights.Search(ctx, domain.FlightFilter{
		Origin:        req.From,
		Destination:   req.To,
		DepartureDate: departure,
		ReturnDate:    ret,
		Page:          req.Page,
		PageSize:      req.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Server) GetFlight(ctx context.Context, req *GetFlightRequest) (*domain.Flight, error) {
	return s.flights.GetByID(ctx, req.FlightID)
}

// ListDepartures returns the first page of today's board.
func (s *Server) ListDepartures(ctx context.Context, _ *emptypb.Empty) (*domain.FlightPage, error) {
	page, err := s.flights.Board(ctx, 1, domain.MaxPageSize)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func Register(srv grpc.ServiceRegistrar, impl FlightsServiceServer) {
	srv.RegisterService(&ServiceDesc, impl)
}

func unary[Req any, Resp any](method string, call func(FlightsServiceServer, context.Context, *Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			impl := srv.(FlightsServiceServer)
			if interceptor == nil {
				return call(impl, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(impl, ctx, req.(*Req))
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FlightsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SearchFlights", FlightsServiceServer.SearchFlights),
		unary("GetFlight", FlightsServiceServer.GetFlight),
		unary("ListDepartures", FlightsServiceServer.ListDepartures),
	},
	Streams: []grpc.StreamDesc{},
}

type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[T any](ctx context.Context, c *Client, method string, in any) (*T, error) {
	out := new(T)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, rpc.CallOption()); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchFlights(ctx context.Context, req *SearchFlightsRequest) (*domain.FlightPage, error) {
	return invoke[domain.FlightPage](ctx, c, "SearchFlights", req)
}

func (c *Client) GetFlight(ctx context.Context, req *GetFlightRequest) (*domain.Flight, error) {
	return invoke[domain.Flight](ctx, c, "GetFlight", req)
}

func (c *Client) ListDepartures(ctx context.Context) (*domain.FlightPage, error) {
	return invoke[domain.FlightPage](ctx, c, "ListDepartures", &emptypb.Empty{})
}

var _ FlightsServiceServer = (*Server)(nil)
