package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/google/uuid"
)

// Payment methods the fake gateway refuses, named after Stripe's test cards.
const (
	DeclinedCard          = "pm_card_visa_chargeDeclined"
	InsufficientFundsCard = "pm_card_visa_chargeDeclinedInsufficientFunds"
)

// FakeGateway approves every payment method except the declined test cards.
// Captures are idempotent per request key.
type FakeGateway struct {
	mu       sync.Mutex
	captures map[string]*CaptureResult
	refunds  map[string]domain.Money
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		captures: make(map[string]*CaptureResult),
		refunds:  make(map[string]domain.Money),
	}
}

func (g *FakeGateway) Capture(ctx context.Context, req *CaptureRequest) (*CaptureResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch req.PaymentMethod {
	case DeclinedCard:
		return nil, fmt.Errorf("%w: card_declined", domain.ErrPaymentDeclined)
	case InsufficientFundsCard:
		return nil, fmt.Errorf("%w: insufficient_funds", domain.ErrPaymentDeclined)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	key := req.IdempotencyKey()
	if res, ok := g.captures[key]; ok {
		return res, nil
	}
	res := &CaptureResult{Reference: "fake_" + uuid.NewString(), Status: "succeeded"}
	g.captures[key] = res
	return res, nil
}

func (g *FakeGateway) Refund(_ context.Context, reference string, amount domain.Money) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunds[reference] += amount
	return nil
}

// Refunded reports the amount refunded against a reference.
func (g *FakeGateway) Refunded(reference string) domain.Money {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refunds[reference]
}

func (g *FakeGateway) Name() string {
	return "fake"
}

var _ Gateway = (*FakeGateway)(nil)
