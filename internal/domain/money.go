package domain

import (
	"fmt"
	"math"
	"strconv"
)

// Money is an amount in minor currency units (cents).
type Money int64

// MoneyFromFloat converts a decimal amount to minor units, rounding half away
// from zero to two decimal places.
func MoneyFromFloat(field string, v float64) (Money, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, NewValidationError(field, "must be a finite number")
	}
	if v < 0 {
		return 0, NewValidationError(field, "must not be negative")
	}
	cents := math.Round(v * 100)
	if cents > math.MaxInt64/2 {
		return 0, NewValidationError(field, "is too large")
	}
	return Money(cents), nil
}

func (m Money) Float() float64 {
	return float64(m) / 100
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	v, err := MoneyFromFloat("amount", f)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
