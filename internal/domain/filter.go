package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps Offset far away from int overflow.
	MaxPage = 100_000
	dateLayout      = "2006-01-02"
)

// FlightFilter selects flights for search and the departures board. Zero
// values mean "no constraint".
type FlightFilter struct {
	Origin        string
	Destination   string
	DepartureDate *time.Time
	ReturnDate    *time.Time
	// DepartedAfter hides flights that already left.
	DepartedAfter time.Time
	Page          int
	PageSize      int
}

// ParseDate parses a YYYY-MM-DD calendar date as a UTC midnight.
func ParseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return nil, NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return &t, nil
}

func (f *FlightFilter) Normalize() error {
	f.Origin = strings.ToUpper(strings.TrimSpace(f.Origin))
	f.Destination = strings.ToUpper(strings.TrimSpace(f.Destination))
	if f.Origin != "" && !IsCityCode(f.Origin) {
		return NewValidationError("from", "must be a 3-letter city code")
	}
	if f.Destination != "" && !IsCityCode(f.Destination) {
		return NewValidationError("to", "must be a 3-letter city code")
	}
	if f.Origin != "" && f.Origin == f.Destination {
		return NewValidationError("to", "must differ from origin")
	}
	if f.DepartureDate != nil && f.ReturnDate != nil && f.ReturnDate.Before(*f.DepartureDate) {
		return NewValidationError("return_date", "must not be before departure_date")
	}
	if f.Page < 0 || f.PageSize < 0 {
		return NewValidationError("page", "must not be negative")
	}
	if f.Page > MaxPage {
		return NewValidationError("page", fmt.Sprintf("must not exceed %d", MaxPage))
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.PageSize == 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return nil
}

// DepartureWindow returns the half-open interval [from, to) the departure time
// must fall into. A zero bound means unbounded.
func (f FlightFilter) DepartureWindow() (from, to time.Time) {
	from = f.DepartedAfter
	if f.DepartureDate != nil {
		dayStart := f.DepartureDate.UTC()
		if dayStart.After(from) {
			from = dayStart
		}
		to = dayStart.Add(24 * time.Hour)
	}
	return from, to
}

// ArrivalDeadline is the exclusive upper bound for the arrival time, set when
// a return date is given.
func (f FlightFilter) ArrivalDeadline() time.Time {
	if f.ReturnDate == nil {
		return time.Time{}
	}
	return f.ReturnDate.UTC().Add(24 * time.Hour)
}

func (f FlightFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Matches applies the filter to a single flight. Pagination is not considered.
func (f FlightFilter) Matches(fl Flight) bool {
	if f.Origin != "" && fl.DepartureCity != f.Origin {
		return false
	}
	if f.Destination != "" && fl.ArrivalCity != f.Destination {
		return false
	}
	from, to := f.DepartureWindow()
	if !from.IsZero() && fl.DepartureTime.Before(from) {
		return false
	}
	if !to.IsZero() && !fl.DepartureTime.Before(to) {
		return false
	}
	if deadline := f.ArrivalDeadline(); !deadline.IsZero() && !fl.ArrivalTime.Before(deadline) {
		return false
	}
	return true
}

// CacheKey identifies the filter for the search cache. DepartedAfter is
// truncated to the minute so concurrent searches share an entry.
func (f FlightFilter) CacheKey() string {
	date := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format(dateLayout)
	}
	return fmt.Sprintf("%s:%s:%s:%s:%d:%d:%d",
		f.Origin, f.Destination, date(f.DepartureDate), date(f.ReturnDate),
		f.DepartedAfter.Truncate(time.Minute).Unix(), f.Page, f.PageSize)
}
