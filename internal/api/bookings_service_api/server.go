package bookings_service_api

import (
	"context"

	"github.com/Domenick1991/aeroluxe/internal/api/rpc"
	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/service/booking"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "aeroluxe.v1.BookingService"

type CreateBookingRequest struct {
	FlightID string `json:"flight_id"`
	Draft    bool   `json:"draft"`
}

type BookingRequest struct {
	BookingID string `json:"booking_id"`
}

type PayBookingRequest struct {
	BookingID     string `json:"booking_id"`
	ServiceTier   string `json:"service_tier"`
	SeatNumber    string `json:"seat_number"`
	PaymentMethod string `json:"payment_method"`
}

type ListBookingsResponse struct {
	Bookings []domain.BookingView `json:"bookings"`
}

type BookingServiceServer interface {
	CreateBooking(ctx context.Context, req *CreateBookingRequest) (*domain.Booking, error)
	GetBooking(ctx context.Context, req *BookingRequest) (*domain.Booking, error)
	ListBookings(ctx context.Context, req *emptypb.Empty) (*ListBookingsResponse, error)
	PayBooking(ctx context.Context, req *PayBookingRequest) (*domain.Booking, error)
	CancelBooking(ctx context.Context, req *BookingRequest) (*domain.Booking, error)
}

// Server exposes the booking use cases over gRPC. The caller is taken from
// the context populated by rpc.AuthInterceptor.
type Server struct {
	bookings booking.BookingUseCase
}

func NewServer(bookings booking.BookingUseCase) *Server {
	return &Server{bookings: bookings}
}

func (s *Server) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*domain.Booking, error) {
	return s.bookings.CreateBooking(ctx, booking.CreateBookingInput{
		UserID:   rpc.UserID(ctx),
		FlightID: req.FlightID,
		Draft:    req.Draft,
	})
}

func (s *Server) GetBooking(ctx context.Context, req *BookingRequest) (*domain.Booking, error) {
	return s.bookings.GetBooking(ctx, rpc.UserID(ctx), req.BookingID)
}

func (s *Server) ListBookings(ctx context.Context, _ *emptypb.Empty) (*ListBookingsResponse, error) {
	views, err := s.bookings.ListBookings(ctx, rpc.UserID(ctx))
	if err != nil {
		return nil, err
	}
	return &ListBookingsResponse{Bookings: views}, nil
}

func (s *Server) PayBooking(ctx context.Context, req *PayBookingRequest) (*domain.Booking, error) {
	return s.bookings.PayBooking(ctx, booking.PayBookingInput{
		UserID:        rpc.UserID(ctx),
		BookingID:     req.BookingID,
		TierID:        req.ServiceTier,
		SeatNumber:    req.SeatNumber,
		PaymentMethod: req.PaymentMethod,
	})
}

func (s *Server) CancelBooking(ctx context.Context, req *BookingRequest) (*domain.Booking, error) {
	return s.bookings.CancelBooking(ctx, rpc.UserID(ctx), req.BookingID)
}

func Register(srv grpc.ServiceRegistrar, impl BookingServiceServer) {
	srv.RegisterService(&ServiceDesc, impl)
}

func unary[Req any, Resp any](method string, call func(BookingServiceServer, context.Context, *Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			impl := srv.(BookingServiceServer)
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
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateBooking", BookingServiceServer.CreateBooking),
		unary("GetBooking", BookingServiceServer.GetBooking),
		unary("ListBookings", BookingServiceServer.ListBookings),
		unary("PayBooking", BookingServiceServer.PayBooking),
		unary("CancelBooking", BookingServiceServer.CancelBooking),
	},
	Streams: []grpc.StreamDesc{},
}

// Client calls BookingService with the JSON codec.
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

func (c *Client) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*domain.Booking, error) {
	return invoke[domain.Booking](ctx, c, "CreateBooking", req)
}

func (c *Client) GetBooking(ctx context.Context, req *BookingRequest) (*domain.Booking, error) {
	return invoke[domain.Booking](ctx, c, "GetBooking", req)
}

func (c *Client) ListBookings(ctx context.Context) (*ListBookingsResponse, error) {
	return invoke[ListBookingsResponse](ctx, c, "ListBookings", &emptypb.Empty{})
}

func (c *Client) PayBooking(ctx context.Context, req *PayBookingRequest) (*domain.Booking, error) {
	return invoke[domain.Booking](ctx, c, "PayBooking", req)
}

func (c *Client) CancelBooking(ctx context.Context, req *BookingRequest) (*domain.Booking, error) {
	return invoke[domain.Booking](ctx, c, "CancelBooking", req)
}

var _ BookingServiceServer = (*Server)(nil)
