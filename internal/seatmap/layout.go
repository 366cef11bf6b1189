package seatmap

import (
	"fmt"

	"github.com/Domenick1991/aeroluxe/internal/domain"
)

const SeatsPerRow = 6

const (
	premiumRows      = 4
	extraLegroomRows = 12

	PremiumPrice      = 25.0
	ExtraLegroomPrice = 15.0
	NormalPrice       = 10.0
)

// ClassForRow returns the seat class and upgrade price of a cabin row (1-based).
func ClassForRow(row int) (domain.SeatClass, float64) {
	switch {
	case row <= premiumRows:
		return domain.SeatClassPremium, PremiumPrice
	case row <= extraLegroomRows:
		return domain.SeatClassExtraLegroom, ExtraLegroomPrice
	default:
		return domain.SeatClassNormal, NormalPrice
	}
}

// Layout builds the cabin for a flight with the given capacity: rows of six
// seats A-F, the last row possibly partial. All seats start available.
func Layout(capacity int) []domain.Seat {
	if capacity <= 0 {
		return nil
	}
	seats := make([]domain.Seat, 0, capacity)
	for i := 0; i < capacity; i++ {
		row := i/SeatsPerRow + 1
		class, price := ClassForRow(row)
		seats = append(seats, domain.Seat{
			Number:    fmt.Sprintf("%d%c", row, 'A'+rune(i%SeatsPerRow)),
			Class:     class,
			Price:     price,
			Available: true,
		})
	}
	return seats
}

// Row extracts the row number from a seat identifier such as "12C". It
// returns 0 when the identifier has no numeric prefix.
func Row(number string) int {
	row := 0
	for _, r := range number {
		if r < '0' || r > '9' {
			break
		}
		row = row*10 + int(r-'0')
	}
	return row
}
