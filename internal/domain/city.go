package domain

import "time"

type City struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
}

// IsCityCode reports whether s looks like an IATA city code (three upper-case letters).
func IsCityCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
