// Package fare computes the payable amount for a booking.
package fare

import "github.com/Domenick1991/aeroluxe/internal/domain"

// Total returns tier.Price plus the seat upgrade price, if a seat is chosen.
// Prices are rounded to cents before they are added.
func Total(tier domain.ServiceTier, seat *domain.Seat) (domain.Money, error) {
	base, err := domain.MoneyFromFloat("tier.price", tier.Price)
	if err != nil {
		return 0, err
	}
	if seat == nil {
		return base, nil
	}
	upgrade, err := domain.MoneyFromFloat("seat.price", seat.Price)
	if err != nil {
		return 0, err
	}
	return base + upgrade, nil
}

// Quote is the breakdown shown on the payment form.
type Quote struct {
	TierID       string       `json:"tier_id"`
	ServicePrice domain.Money `json:"service_price"`
	SeatNumber   string       `json:"seat_number,omitempty"`
	SeatPrice    domain.Money `json:"seat_price"`
	Total        domain.Money `json:"total"`
}

func NewQuote(tier domain.ServiceTier, seat *domain.Seat) (Quote, error) {
	total, err := Total(tier, seat)
	if err != nil {
		return Quote{}, err
	}
	service, _ := domain.MoneyFromFloat("tier.price", tier.Price)
	q := Quote{TierID: tier.ID, ServicePrice: service, SeatPrice: total - service, Total: total}
	if seat != nil {
		q.SeatNumber = seat.Number
	}
	return q, nil
}
