package payment

import (
	"context"
	"testing"

	"github.com/Domenick1991/aeroluxe/config"
	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeGateway_Capture(t *testing.T) {
	g := NewFakeGateway()
	ctx := context.Background()
	req := &CaptureRequest{BookingID: "b1", Amount: 4980, PaymentMethod: "pm_card_visa"}

	first, err := g.Capture(ctx, req)
	require.NoError(t, err)
	again, err := g.Capture(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.Reference, again.Reference)

	_, err = g.Capture(ctx, &CaptureRequest{BookingID: "b1", Amount: 4980, PaymentMethod: DeclinedCard})
	assert.ErrorIs(t, err, domain.ErrPaymentDeclined)

	_, err = g.Capture(ctx, &CaptureRequest{BookingID: "b1", Amount: 0, PaymentMethod: "pm_card_visa"})
	assert.True(t, domain.IsValidation(err))
}

func TestFakeGateway_Refund(t *testing.T) {
	g := NewFakeGateway()
	require.NoError(t, g.Refund(context.Background(), "fake_1", 4980))
	assert.Equal(t, domain.Money(4980), g.Refunded("fake_1"))
}

func TestCaptureRequest_IdempotencyKey(t *testing.T) {
	req := &CaptureRequest{BookingID: "b1", Amount: 4980, PaymentMethod: "pm_card_visa"}
	assert.Equal(t, "booking:b1:4980:pm_card_visa", req.IdempotencyKey())
}

func TestNewGateway(t *testing.T) {
	g, err := NewGateway(config.PaymentConfig{Provider: "fake"}, "eur")
	require.NoError(t, err)
	assert.Equal(t, "fake", g.Name())

	_, err = NewGateway(config.PaymentConfig{Provider: "stripe"}, "eur")
	assert.Error(t, err)

	g, err = NewGateway(config.PaymentConfig{Provider: "stripe", SecretKey: "sk_test_123"}, "eur")
	require.NoError(t, err)
	assert.Equal(t, "stripe", g.Name())

	_, err = NewGateway(config.PaymentConfig{Provider: "paypal"}, "eur")
	assert.Error(t, err)
}

func TestStripeGateway_RejectsInvalidRequest(t *testing.T) {
	g, err := NewStripeGateway("sk_test_123", "eur")
	require.NoError(t, err)
	_, err = g.Capture(context.Background(), &CaptureRequest{BookingID: "b1", Amount: 100})
	assert.True(t, domain.IsValidation(err))
	assert.Error(t, g.Refund(context.Background(), "", 100))
}

type ctxKey struct{}

func TestStripeGateway_PassesContext(t *testing.T) {
	g, err := NewStripeGateway("sk_test_123", "eur")
	require.NoError(t, err)
	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	req := &CaptureRequest{BookingID: "b1", UserID: "u1", Amount: 4980, PaymentMethod: "pm_card_visa"}

	params := g.captureParams(ctx, req)
	assert.Equal(t, ctx, params.Context)
	assert.Equal(t, "eur", *params.Currency)
	require.NotNil(t, params.IdempotencyKey)
	assert.Equal(t, req.IdempotencyKey(), *params.IdempotencyKey)

	rp := refundParams(ctx, "pi_1", 4980)
	assert.Equal(t, ctx, rp.Context)
	assert.Equal(t, int64(4980), *rp.Amount)
}

func TestStripeGateway_CanceledContext(t *testing.T) {
	g, err := NewStripeGateway("sk_test_123", "eur")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = g.Capture(ctx, &CaptureRequest{BookingID: "b1", UserID: "u1", Amount: 4980, PaymentMethod: "pm_card_visa"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, g.Refund(ctx, "pi_1", 4980), context.Canceled)
}
