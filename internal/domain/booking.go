package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusDraft     BookingStatus = "draft"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusPaid      BookingStatus = "paid"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	// PaymentStatusFailed is never stored on a booking: a declined capture keeps
	// the booking pending and is recorded as a payment_failed event instead.
	PaymentStatusFailed PaymentStatus = "failed"
)

// HoldsSeat reports whether a booking in this state owns a seat unit on its flight.
func (s BookingStatus) HoldsSeat() bool {
	return s == BookingStatusConfirmed || s == BookingStatusPaid
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusDraft, BookingStatusConfirmed, BookingStatusPaid, BookingStatusCancelled:
		return true
	}
	return false
}

// transitions lists the allowed edges of the booking lifecycle.
var transitions = map[BookingStatus][]BookingStatus{
	"":                     {BookingStatusDraft, BookingStatusConfirmed},
	BookingStatusDraft:     {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusPaid, BookingStatusCancelled},
	BookingStatusPaid:      {BookingStatusCancelled},
}

// CheckTransition validates a move from one status to another.
func CheckTransition(from, to BookingStatus) error {
	if from == BookingStatusPaid && to == BookingStatusPaid {
		return ErrAlreadyPaid
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, displayStatus(from), to)
}

func displayStatus(s BookingStatus) string {
	if s == "" {
		return "none"
	}
	return string(s)
}

type Booking struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	FlightID         string        `json:"flight_id"`
	Status           BookingStatus `json:"booking_status"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	SeatNumber       string        `json:"seat_number,omitempty"`
	ServiceTier      string        `json:"service_tier,omitempty"`
	ServicePrice     Money         `json:"service_price"`
	TotalPrice       Money         `json:"total_price"`
	PaymentReference string        `json:"payment_reference,omitempty"`
	ExpiresAt        *time.Time    `json:"expires_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// OwnedBy enforces that only the booking's user may act on it.
func (b *Booking) OwnedBy(userID string) error {
	if userID == "" {
		return ErrAuthRequired
	}
	if b.UserID != userID {
		return ErrForbidden
	}
	return nil
}

// CanPay checks the confirmed -> paid preconditions except the external capture.
func (b *Booking) CanPay(userID string) error {
	if err := b.OwnedBy(userID); err != nil {
		return err
	}
	if err := CheckTransition(b.Status, BookingStatusPaid); err != nil {
		return err
	}
	if b.PaymentStatus != PaymentStatusPending {
		return fmt.Errorf("%w: payment status is %s", ErrInvalidTransition, b.PaymentStatus)
	}
	return nil
}

// Payment carries everything the confirmed -> paid transition persists.
type Payment struct {
	BookingID    string
	UserID       string
	SeatNumber   string
	ServiceTier  string
	ServicePrice Money
	TotalPrice   Money
	Reference    string
}

// ApplyPayment moves the booking to paid in memory.
func (b *Booking) ApplyPayment(p Payment, now time.Time) {
	b.Status = BookingStatusPaid
	b.PaymentStatus = PaymentStatusCompleted
	b.SeatNumber = p.SeatNumber
	b.ServiceTier = p.ServiceTier
	b.ServicePrice = p.ServicePrice
	b.TotalPrice = p.TotalPrice
	b.PaymentReference = p.Reference
	b.ExpiresAt = nil
	b.UpdatedAt = now
}

// BookingView is a booking together with the flight it references, used for
// the booking history.
type BookingView struct {
	Booking
	Flight *Flight `json:"flight,omitempty"`
}
