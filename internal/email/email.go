package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Message is a rendered booking email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages. The bundled implementation writes them to the log.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sender{log: log}
}

func (s *Sender) Send(_ context.Context, msg Message) error {
	s.log.Info("send email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body))
	return nil
}

// Render builds the email for a booking event.
func Render(to string, e kafka.BookingEvent) (Message, error) {
	var subject, body string
	switch e.Type {
	case kafka.EventBookingConfirmed:
		subject = "Your booking is confirmed"
		body = fmt.Sprintf("Booking %s holds a seat on flight %s. Complete payment to keep it.", e.BookingID, e.FlightID)
		if e.ExpiresAt != nil {
			body += fmt.Sprintf(" The hold expires at %s.", e.ExpiresAt.Format("2006-01-02 15:04 MST"))
		}
	case kafka.EventBookingPaid:
		subject = "Payment received"
		body = fmt.Sprintf("Booking %s is paid: %s EUR.", e.BookingID, e.TotalPrice)
		if e.SeatNumber != "" {
			body += " Seat " + e.SeatNumber + "."
		}
	case kafka.EventBookingCancelled:
		subject = "Your booking was cancelled"
		body = fmt.Sprintf("Booking %s was cancelled.", e.BookingID)
	case kafka.EventPaymentFailed:
		subject = "Your payment was declined"
		body = fmt.Sprintf("The payment for booking %s was declined. Your seat stays held, you can try another card.", e.BookingID)
		if e.ExpiresAt != nil {
			body += fmt.Sprintf(" The hold expires at %s.", e.ExpiresAt.Format("2006-01-02 15:04 MST"))
		}
	case kafka.EventBookingExpired:
		subject = "Your booking hold expired"
		body = fmt.Sprintf("Booking %s was not paid in time and has been released.", e.BookingID)
	default:
		return Message{}, fmt.Errorf("unknown event type %q", e.Type)
	}
	return Message{To: to, Subject: subject, Body: body}, nil
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type sender interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier turns notification messages into emails for the booking's user.
type Notifier struct {
	users  UserLookup
	sender sender
}

func NewNotifier(users UserLookup, s *Sender) *Notifier {
	return &Notifier{users: users, sender: s}
}

func (n *Notifier) Handle(ctx context.Context, msg kafkago.Message) error {
	note, err := kafka.DecodeNotification(msg)
	if err != nil {
		return err
	}
	user, err := n.users.GetByID(ctx, note.Event.UserID)
	if err != nil {
		return fmt.Errorf("lookup user %s: %w", note.Event.UserID, err)
	}
	m, err := Render(user.Email, note.Event)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, m)
}
