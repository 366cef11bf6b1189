package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/fare"
	"github.com/Domenick1991/aeroluxe/internal/kafka"
	"github.com/Domenick1991/aeroluxe/internal/payment"
	"github.com/Domenick1991/aeroluxe/internal/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error)
	GetBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error)
	ListBookings(ctx context.Context, userID string) ([]domain.BookingView, error)
	PayBooking(ctx context.Context, input PayBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error)
	QuoteFare(ctx context.Context, input QuoteInput) (*fare.Quote, error)
	ExpireHolds(ctx context.Context) ([]domain.Booking, error)
	Tiers() domain.TierCatalog
}

type PaymentLock interface {
	AcquirePaymentLock(ctx context.Context, bookingID string, ttl time.Duration) (token string, ok bool, err error)
	ReleasePaymentLock(ctx context.Context, bookingID, token string) error
}

type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, event kafka.BookingEvent) error
}

type CreateBookingInput struct {
	UserID   string
	FlightID string `json:"flight_id"`
	// Draft creates the booking without holding a seat.
	Draft bool `json:"draft"`
}

type PayBookingInput struct {
	UserID        string
	BookingID     string
	TierID        string `json:"service_tier"`
	SeatNumber    string `json:"seat_number"`
	PaymentMethod string `json:"payment_method"`
}

type QuoteInput struct {
	FlightID   string `json:"flight_id"`
	TierID     string `json:"service_tier"`
	SeatNumber string `json:"seat_number"`
}

type Config struct {
	HoldTTL        time.Duration
	PaymentLockTTL time.Duration
	Currency       string
	Tiers          domain.TierCatalog
}

type BookingService struct {
	bookings repository.BookingRepository
	flights  repository.FlightRepository
	payments payment.Gateway
	locks    PaymentLock
	events   EventPublisher
	cfg      Config
	now      func() time.Time
	log      *zap.Logger
}

type BookingServiceOption func(*BookingService)

func WithEvents(events EventPublisher) BookingServiceOption {
	return func(s *BookingService) {
		s.events = events
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithLogger(log *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if log != nil {
			s.log = log
		}
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	payments payment.Gateway,
	locks PaymentLock,
	cfg Config,
	opts ...BookingServiceOption,
) *BookingService {
	if len(cfg.Tiers) == 0 {
		cfg.Tiers = domain.DefaultTiers()
	}
	service := &BookingService{
		bookings: bookings,
		flights:  flights,
		payments: payments,
		locks:    locks,
		cfg:      cfg,
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

var tracer = otel.Tracer("github.com/Domenick1991/aeroluxe/internal/service/booking")

func checkID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.NewValidationError(field, "must be a valid id")
	}
	return nil
}

func (s *BookingService) Tiers() domain.TierCatalog {
	return s.cfg.Tiers
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.Create")
	defer span.End()
	span.SetAttributes(attribute.String("flight.id", input.FlightID), attribute.Bool("booking.draft", input.Draft))

	if input.UserID == "" {
		return nil, domain.ErrAuthRequired
	}
	if err := checkID("flight_id", input.FlightID); err != nil {
		return nil, err
	}
	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := notDeparted(flight, now); err != nil {
		return nil, err
	}

	booking := &domain.Booking{UserID: input.UserID, FlightID: input.FlightID}
	if input.Draft {
		if err := s.bookings.CreateDraft(ctx, booking); err != nil {
			return nil, err
		}
		s.log.Info("draft booking created", zap.String("booking_id", booking.ID), zap.String("flight_id", booking.FlightID))
		return booking, nil
	}

	expires := now.Add(s.cfg.HoldTTL).UTC()
	booking.ExpiresAt = &expires
	token, err := s.bookings.CreateConfirmed(ctx, booking)
	if err != nil {
		if errors.Is(err, domain.ErrSoldOut) {
			s.log.Info("flight sold out", zap.String("flight_id", input.FlightID))
		}
		span.RecordError(err)
		return nil, err
	}
	s.log.Info("booking confirmed",
		zap.String("booking_id", booking.ID),
		zap.String("flight_id", booking.FlightID),
		zap.Int("seats_left", token.Remaining))
	s.publish(ctx, kafka.EventBookingConfirmed, booking)
	return booking, nil
}

func (s *BookingService) ConfirmBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.Confirm")
	defer span.End()

	if userID == "" {
		return nil, domain.ErrAuthRequired
	}
	if err := checkID("booking_id", bookingID); err != nil {
		return nil, err
	}
	draft, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := draft.OwnedBy(userID); err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.checkDeparture(ctx, draft.FlightID, now); err != nil {
		return nil, err
	}
	expires := now.Add(s.cfg.HoldTTL).UTC()
	booking, token, err := s.bookings.ConfirmDraft(ctx, bookingID, userID, &expires)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.log.Info("draft confirmed", zap.String("booking_id", booking.ID), zap.Int("seats_left", token.Remaining))
	s.publish(ctx, kafka.EventBookingConfirmed, booking)
	return booking, nil
}

func notDeparted(flight *domain.Flight, now time.Time) error {
	if !flight.DepartureTime.After(now) {
		return domain.NewValidationError("flight_id", "flight has already departed")
	}
	return nil
}

// checkDeparture refuses holds and payments for flights that already left.
func (s *BookingService) checkDeparture(ctx context.Context, flightID string, now time.Time) error {
	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return err
	}
	return notDeparted(flight, now)
}

func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	if userID == "" {
		return nil, domain.ErrAuthRequired
	}
	if err := checkID("booking_id", bookingID); err != nil {
		return nil, err
	}
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := booking.OwnedBy(userID); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, userID string) ([]domain.BookingView, error) {
	if userID == "" {
		return nil, domain.ErrAuthRequired
	}
	return s.bookings.ListByUser(ctx, userID)
}

// seat resolves an optional seat choice on a flight.
func (s *BookingService) seat(ctx context.Context, flightID, number string) (*domain.Seat, error) {
	if number == "" {
		return nil, nil
	}
	number, err := domain.NormalizeSeatNumber(number)
	if err != nil {
		return nil, err
	}
	seat, err := s.flights.Seat(ctx, flightID, number)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewValidationError("seat_number", number+" does not exist on this flight")
	}
	if err != nil {
		return nil, err
	}
	return seat, nil
}

func (s *BookingService) tier(id string) (domain.ServiceTier, error) {
	tier, ok := s.cfg.Tiers.Find(id)
	if !ok {
		return domain.ServiceTier{}, domain.NewValidationError("service_tier", fmt.Sprintf("unknown tier %q", id))
	}
	return tier, nil
}

func (s *BookingService) QuoteFare(ctx context.Context, input QuoteInput) (*fare.Quote, error) {
	tier, err := s.tier(input.TierID)
	if err != nil {
		return nil, err
	}
	var seat *domain.Seat
	if input.SeatNumber != "" {
		if err := checkID("flight_id", input.FlightID); err != nil {
			return nil, err
		}
		if seat, err = s.seat(ctx, input.FlightID, input.SeatNumber); err != nil {
			return nil, err
		}
	}
	quote, err := fare.NewQuote(tier, seat)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// PayBooking captures the fare and moves the booking from confirmed to paid.
// A declined capture leaves the booking confirmed so the user can retry until
// the hold expires. If the capture succeeds but the booking cannot be marked
// paid, the capture is refunded.
func (s *BookingService) PayBooking(ctx context.Context, input PayBookingInput) (*domain.Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.Pay")
	defer span.End()
	span.SetAttributes(attribute.String("booking.id", input.BookingID))

	if input.UserID == "" {
		return nil, domain.ErrAuthRequired
	}
	if err := checkID("booking_id", input.BookingID); err != nil {
		return nil, err
	}
	tier, err := s.tier(input.TierID)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if err := booking.CanPay(input.UserID); err != nil {
		return nil, err
	}
	if err := s.checkDeparture(ctx, booking.FlightID, s.now()); err != nil {
		return nil, err
	}
	seat, err := s.seat(ctx, booking.FlightID, input.SeatNumber)
	if err != nil {
		return nil, err
	}
	if seat != nil && !seat.Available {
		return nil, domain.ErrSeatTaken
	}
	total, err := fare.Total(tier, seat)
	if err != nil {
		return nil, err
	}
	servicePrice, err := domain.MoneyFromFloat("service_price", tier.Price)
	if err != nil {
		return nil, err
	}

	lockToken, ok, err := s.locks.AcquirePaymentLock(ctx, booking.ID, s.cfg.PaymentLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire payment lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrPaymentInProgress
	}
	defer func() {
		if err := s.locks.ReleasePaymentLock(context.WithoutCancel(ctx), booking.ID, lockToken); err != nil {
			s.log.Warn("release payment lock", zap.String("booking_id", booking.ID), zap.Error(err))
		}
	}()

	result, err := s.payments.Capture(ctx, &payment.CaptureRequest{
		BookingID:     booking.ID,
		UserID:        booking.UserID,
		Amount:        total,
		Currency:      s.cfg.Currency,
		PaymentMethod: input.PaymentMethod,
		Description:   fmt.Sprintf("Booking %s, %s tier", booking.ID, tier.Name),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "capture failed")
		s.log.Warn("payment capture failed", zap.String("booking_id", booking.ID), zap.Error(err))
		if errors.Is(err, domain.ErrPaymentDeclined) {
			attempt := *booking
			attempt.PaymentStatus = domain.PaymentStatusFailed
			attempt.TotalPrice = total
			s.publish(ctx, kafka.EventPaymentFailed, &attempt)
			return nil, err
		}
		if domain.IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("capture payment: %w", err)
	}

	var seatNumber string
	if seat != nil {
		seatNumber = seat.Number
	}
	paid, err := s.bookings.MarkPaid(ctx, domain.Payment{
		BookingID:    booking.ID,
		UserID:       input.UserID,
		SeatNumber:   seatNumber,
		ServiceTier:  tier.ID,
		ServicePrice: servicePrice,
		TotalPrice:   total,
		Reference:    result.Reference,
	})
	if err != nil {
		span.RecordError(err)
		if rerr := s.payments.Refund(context.WithoutCancel(ctx), result.Reference, total); rerr != nil {
			s.log.Error("refund after failed payment write",
				zap.String("booking_id", booking.ID),
				zap.String("reference", result.Reference),
				zap.Error(rerr))
			return nil, errors.Join(err, fmt.Errorf("refund %s: %w", result.Reference, rerr))
		}
		s.log.Warn("payment refunded", zap.String("booking_id", booking.ID), zap.Error(err))
		return nil, err
	}

	s.log.Info("booking paid",
		zap.String("booking_id", paid.ID),
		zap.String("seat", paid.SeatNumber),
		zap.Stringer("total", paid.TotalPrice))
	s.publish(ctx, kafka.EventBookingPaid, paid)
	return paid, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.Cancel")
	defer span.End()

	if userID == "" {
		return nil, domain.ErrAuthRequired
	}
	if err := checkID("booking_id", bookingID); err != nil {
		return nil, err
	}
	booking, err := s.bookings.Cancel(ctx, bookingID, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.log.Info("booking cancelled", zap.String("booking_id", booking.ID))
	s.publish(ctx, kafka.EventBookingCancelled, booking)
	return booking, nil
}

// ExpireHolds cancels confirmed bookings whose payment window has passed and
// returns their seats to the flight.
func (s *BookingService) ExpireHolds(ctx context.Context) ([]domain.Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.ExpireHolds")
	defer span.End()

	expired, err := s.bookings.ExpireHolds(ctx, s.now())
	// Holds reported alongside an error were still released.
	for i := range expired {
		s.publish(ctx, kafka.EventBookingExpired, &expired[i])
	}
	if err != nil {
		span.RecordError(err)
		return expired, err
	}
	if len(expired) > 0 {
		s.log.Info("expired booking holds", zap.Int("count", len(expired)))
	}
	return expired, nil
}

// publish runs after the transition committed; failures are logged only.
func (s *BookingService) publish(ctx context.Context, t kafka.EventType, booking *domain.Booking) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishBookingEvent(ctx, kafka.NewBookingEvent(t, booking, s.now())); err != nil {
		s.log.Warn("publish booking event",
			zap.String("type", string(t)),
			zap.String("booking_id", booking.ID),
			zap.Error(err))
	}
}

var _ BookingUseCase = (*BookingService)(nil)
