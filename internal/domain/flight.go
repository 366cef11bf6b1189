package domain

import "time"

type Flight struct {
	ID             string    `json:"id"`
	FlightNumber   string    `json:"flight_number"`
	DepartureCity  string    `json:"departure_city"`
	ArrivalCity    string    `json:"arrival_city"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	Price          Money     `json:"price"`
	Capacity       int       `json:"capacity"`
	AvailableSeats int       `json:"available_seats"`
	AircraftType   string    `json:"aircraft_type,omitempty"`
	Gate           string    `json:"gate,omitempty"`
	Terminal       string    `json:"terminal,omitempty"`
	Status         string    `json:"status,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// HeldSeats is the number of seat units currently held by committed bookings.
func (f Flight) HeldSeats() int {
	return f.Capacity - f.AvailableSeats
}

func (f Flight) Validate() error {
	if f.FlightNumber == "" {
		return NewValidationError("flight_number", "is required")
	}
	if !IsCityCode(f.DepartureCity) {
		return NewValidationError("departure_city", "must be a 3-letter city code")
	}
	if !IsCityCode(f.ArrivalCity) {
		return NewValidationError("arrival_city", "must be a 3-letter city code")
	}
	if f.DepartureCity == f.ArrivalCity {
		return NewValidationError("arrival_city", "must differ from departure_city")
	}
	if !f.ArrivalTime.After(f.DepartureTime) {
		return NewValidationError("arrival_time", "must be after departure_time")
	}
	if f.Price <= 0 {
		return NewValidationError("price", "must be positive")
	}
	if f.Capacity <= 0 {
		return NewValidationError("capacity", "must be positive")
	}
	if f.AvailableSeats < 0 || f.AvailableSeats > f.Capacity {
		return NewValidationError("available_seats", "must be within [0, capacity]")
	}
	return nil
}

// FlightPage is one page of search results.
type FlightPage struct {
	Flights    []Flight `json:"flights"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}

func NewFlightPage(flights []Flight, total, page, pageSize int) FlightPage {
	if flights == nil {
		flights = []Flight{}
	}
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return FlightPage{Flights: flights, Total: total, Page: page, PageSize: pageSize, TotalPages: pages}
}
