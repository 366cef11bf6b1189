package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/aeroluxe/config"
	"github.com/Domenick1991/aeroluxe/internal/domain"
)

// Gateway captures and refunds money for bookings. Capture returns an error
// wrapping domain.ErrPaymentDeclined when the provider refuses the charge.
type Gateway interface {
	Capture(ctx context.Context, req *CaptureRequest) (*CaptureResult, error)
	Refund(ctx context.Context, reference string, amount domain.Money) error
	Name() string
}

type CaptureRequest struct {
	BookingID     string
	UserID        string
	Amount        domain.Money
	Currency      string
	PaymentMethod string
	Description   string
}

// IdempotencyKey is stable for one booking, amount and payment method, so a
// retried request cannot charge twice.
func (r *CaptureRequest) IdempotencyKey() string {
	return fmt.Sprintf("booking:%s:%d:%s", r.BookingID, int64(r.Amount), r.PaymentMethod)
}

func (r *CaptureRequest) Validate() error {
	if r.BookingID == "" {
		return domain.NewValidationError("booking_id", "is required")
	}
	if r.Amount <= 0 {
		return domain.NewValidationError("amount", "must be positive")
	}
	if strings.TrimSpace(r.PaymentMethod) == "" {
		return domain.NewValidationError("payment_method", "is required")
	}
	return nil
}

type CaptureResult struct {
	Reference string
	Status    string
}

// NewGateway picks the provider named in config.
func NewGateway(cfg config.PaymentConfig, currency string) (Gateway, error) {
	switch strings.ToLower(cfg.Provider) {
	case config.PaymentFake, "":
		return NewFakeGateway(), nil
	case config.PaymentStripe:
		return NewStripeGateway(cfg.SecretKey, currency)
	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", cfg.Provider)
	}
}
