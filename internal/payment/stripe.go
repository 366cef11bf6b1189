package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
)

// StripeGateway confirms a PaymentIntent server side with the payment method
// collected by the storefront.
type StripeGateway struct {
	currency string
}

func NewStripeGateway(secretKey, currency string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	stripe.Key = secretKey
	return &StripeGateway{currency: currency}, nil
}

func (g *StripeGateway) Capture(ctx context.Context, req *CaptureRequest) (*CaptureResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pi, err := paymentintent.New(g.captureParams(ctx, req))
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.Type == stripe.ErrorTypeCard {
			return nil, fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, serr.Msg)
		}
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment intent %s is %s", domain.ErrPaymentDeclined, pi.ID, pi.Status)
	}
	return &CaptureResult{Reference: pi.ID, Status: string(pi.Status)}, nil
}

// captureParams binds the request to ctx so cancellation reaches the API call.
func (g *StripeGateway) captureParams(ctx context.Context, req *CaptureRequest) *stripe.PaymentIntentParams {
	currency := req.Currency
	if currency == "" {
		currency = g.currency
	}
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(req.Amount)),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(req.PaymentMethod),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
		Metadata: map[string]string{
			"booking_id": req.BookingID,
			"user_id":    req.UserID,
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey())
	return params
}

func (g *StripeGateway) Refund(ctx context.Context, reference string, amount domain.Money) error {
	if reference == "" {
		return errors.New("payment reference is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := refund.New(refundParams(ctx, reference, amount)); err != nil {
		return fmt.Errorf("failed to create refund: %w", err)
	}
	return nil
}

func refundParams(ctx context.Context, reference string, amount domain.Money) *stripe.RefundParams {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(reference),
		Amount:        stripe.Int64(int64(amount)),
	}
	params.Context = ctx
	params.SetIdempotencyKey("refund:" + reference)
	return params
}

func (g *StripeGateway) Name() string {
	return "stripe"
}

var _ Gateway = (*StripeGateway)(nil)
