package domain

import (
	"strings"
	"unicode"
)

type ServiceTier struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Price       float64  `json:"price" yaml:"price"`
	Features    []string `json:"features" yaml:"features"`
}

type SeatClass string

const (
	SeatClassPremium      SeatClass = "premium"
	SeatClassExtraLegroom SeatClass = "extra-legroom"
	SeatClassNormal       SeatClass = "normal"
)

type Seat struct {
	Number    string    `json:"number"`
	Class     SeatClass `json:"class"`
	Price     float64   `json:"price"`
	Available bool      `json:"available"`
}

// NormalizeSeatNumber upper-cases and validates a seat identifier such as "12C".
func NormalizeSeatNumber(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 || len(s) > 4 {
		return "", NewValidationError("seat_number", "must look like 12C")
	}
	letter := rune(s[len(s)-1])
	if letter < 'A' || letter > 'Z' {
		return "", NewValidationError("seat_number", "must end with a seat letter")
	}
	digits := s[:len(s)-1]
	if digits[0] == '0' {
		return "", NewValidationError("seat_number", "row must not start with 0")
	}
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return "", NewValidationError("seat_number", "row must be numeric")
		}
	}
	return s, nil
}

// TierCatalog is the list of purchasable service tiers.
type TierCatalog []ServiceTier

func (c TierCatalog) Find(id string) (ServiceTier, bool) {
	for _, t := range c {
		if t.ID == id {
			return t, true
		}
	}
	return ServiceTier{}, false
}

// DefaultTiers mirrors the storefront's tier card.
func DefaultTiers() TierCatalog {
	return TierCatalog{
		{
			ID:          "basic",
			Name:        "BASIC",
			Description: "Economy",
			Price:       33.66,
			Features: []string{
				"Cabin bag (40 x 30 x 20 cm)",
				"Standard seat selection",
				"Checked bag up to 10 kg",
				"Online check-in 30 days ahead",
				"Priority boarding",
			},
		},
		{
			ID:          "standard",
			Name:        "STANDARD",
			Description: "Optimal",
			Price:       34.80,
			Features: []string{
				"Cabin bag (40 x 30 x 20 cm)",
				"Standard seat selection",
				"Checked bag up to 20 kg",
				"Airport check-in",
				"Online check-in 30 days ahead",
			},
		},
		{
			ID:          "premium",
			Name:        "PREMIUM",
			Description: "Business",
			Price:       94.04,
			Features: []string{
				"Cabin bag (40 x 30 x 20 cm)",
				"Premium seat selection",
				"Checked bag up to 32 kg",
				"Airport check-in",
				"Online check-in 30 days ahead",
				"Extra 10 kg baggage",
				"Free flight change",
				"Refund to AeroLuxe account",
			},
		},
	}
}
