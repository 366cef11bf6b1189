package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type EventType string

const (
	EventBookingConfirmed EventType = "booking_confirmed"
	EventBookingPaid      EventType = "booking_paid"
	EventBookingCancelled EventType = "booking_cancelled"
	EventBookingExpired   EventType = "booking_expired"
	// EventPaymentFailed records a declined capture. The booking itself stays
	// confirmed and pending, so the event carries payment status failed.
	EventPaymentFailed EventType = "payment_failed"
)

type BookingEvent struct {
	Type          EventType            `json:"type"`
	BookingID     string               `json:"booking_id"`
	UserID        string               `json:"user_id"`
	FlightID      string               `json:"flight_id"`
	SeatNumber    string               `json:"seat_number,omitempty"`
	Status        domain.BookingStatus `json:"booking_status"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	TotalPrice    domain.Money         `json:"total_price"`
	ExpiresAt     *time.Time           `json:"expires_at,omitempty"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

// NewBookingEvent snapshots a booking after a committed transition.
func NewBookingEvent(t EventType, b *domain.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:          t,
		BookingID:     b.ID,
		UserID:        b.UserID,
		FlightID:      b.FlightID,
		SeatNumber:    b.SeatNumber,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		TotalPrice:    b.TotalPrice,
		ExpiresAt:     b.ExpiresAt,
		OccurredAt:    at.UTC(),
	}
}

// Notification asks the notifier to tell a user about a booking.
type Notification struct {
	Event BookingEvent `json:"event"`
}

type Topics struct {
	BookingEvents string
	Notifications string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	brokers []string
	topics  Topics
	writer  messageWriter
	log     *zap.Logger
}

func NewProducer(brokers []string, topics Topics, log *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Producer{brokers: brokers, topics: topics, writer: writer, log: log}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	p.log.Debug("published", zap.String("topic", topic), zap.String("key", key))
	return nil
}

// PublishBookingEvent writes the event to the booking events topic and queues
// the matching notification. Messages are keyed by booking id so a booking's
// events stay ordered within a partition.
func (p *Producer) PublishBookingEvent(ctx context.Context, event BookingEvent) error {
	if err := p.Publish(ctx, p.topics.BookingEvents, event.BookingID, event); err != nil {
		return err
	}
	return p.Publish(ctx, p.topics.Notifications, event.BookingID, Notification{Event: event})
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and lists partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}
	p.log.Info("connected to kafka", zap.Int("partitions", len(partitions)))
	return nil
}
