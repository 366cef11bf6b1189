// Package schedule generates the flight timetable and loads it into the store.
package schedule

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
)

type Route struct {
	From      string
	To        string
	Duration  time.Duration
	BasePrice float64
}

func DefaultRoutes() []Route {
	h := func(hours float64) time.Duration { return time.Duration(hours * float64(time.Hour)) }
	return []Route{
		{From: "MSQ", To: "MOW", Duration: h(1.5), BasePrice: 150},
		{From: "MSQ", To: "LED", Duration: h(2), BasePrice: 180},
		{From: "MSQ", To: "WAW", Duration: h(1.5), BasePrice: 160},
		{From: "MSQ", To: "VNO", Duration: h(1), BasePrice: 120},
		{From: "MOW", To: "LED", Duration: h(1.5), BasePrice: 130},
		{From: "MOW", To: "WAW", Duration: h(2.5), BasePrice: 200},
		{From: "MOW", To: "VNO", Duration: h(2), BasePrice: 180},
		{From: "LED", To: "WAW", Duration: h(2.5), BasePrice: 190},
		{From: "LED", To: "VNO", Duration: h(2), BasePrice: 170},
		{From: "WAW", To: "VNO", Duration: h(1), BasePrice: 110},
	}
}

func DefaultCities() []domain.City {
	return []domain.City{
		{Name: "Minsk", Code: "MSQ", Country: "Belarus"},
		{Name: "Moscow", Code: "MOW", Country: "Russia"},
		{Name: "Saint Petersburg", Code: "LED", Country: "Russia"},
		{Name: "Kyiv", Code: "IEV", Country: "Ukraine"},
		{Name: "Warsaw", Code: "WAW", Country: "Poland"},
		{Name: "Vilnius", Code: "VNO", Country: "Lithuania"},
	}
}

const (
	firstNumber   = 1000
	numberRange   = 9000
	priceVariance = 50
	minCapacity   = 100
	capacitySpan  = 50
	// Departures are spread between 06:00 and 21:45 UTC.
	firstHour = 6
	hourSpan  = 16
	// Return legs leaving at or after this hour are dropped.
	lastReturnHour = 22
)

var ErrNumbersExhausted = errors.New("schedule: ran out of unique flight numbers")

// Generator builds flights from a route table. The same seed always yields
// the same timetable.
type Generator struct {
	routes []Route
	rng    *rand.Rand
	used   map[string]struct{}
}

func NewGenerator(routes []Route, seed uint64) *Generator {
	return &Generator{
		routes: routes,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		used:   make(map[string]struct{}),
	}
}

// Reserve marks flight numbers that already exist so they are not reissued.
func (g *Generator) Reserve(numbers ...string) {
	for _, n := range numbers {
		g.used[n] = struct{}{}
	}
}

func (g *Generator) number() (string, error) {
	if len(g.used) >= numberRange {
		return "", ErrNumbersExhausted
	}
	for {
		n := fmt.Sprintf("AL%04d", firstNumber+g.rng.IntN(numberRange))
		if _, ok := g.used[n]; !ok {
			g.used[n] = struct{}{}
			return n, nil
		}
	}
}

func (g *Generator) price(base float64) domain.Money {
	v := base + (g.rng.Float64()-0.5)*priceVariance*2
	m, _ := domain.MoneyFromFloat("price", v)
	return m
}

func (g *Generator) flight(from, to string, dep time.Time, d time.Duration, base float64) (domain.Flight, error) {
	number, err := g.number()
	if err != nil {
		return domain.Flight{}, err
	}
	capacity := minCapacity + g.rng.IntN(capacitySpan)
	return domain.Flight{
		FlightNumber:   number,
		DepartureCity:  from,
		ArrivalCity:    to,
		DepartureTime:  dep,
		ArrivalTime:    dep.Add(d),
		Price:          g.price(base),
		Capacity:       capacity,
		AvailableSeats: capacity,
		Status:         "scheduled",
	}, nil
}

// Generate returns 3 to 5 departures per route per day for days days starting
// on start's UTC date, each followed by a return leg when it still leaves
// before 22:00.
func (g *Generator) Generate(start time.Time, days int) ([]domain.Flight, error) {
	start = start.UTC()
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	var out []domain.Flight
	for day := 0; day < days; day++ {
		date := first.AddDate(0, 0, day)
		for _, r := range g.routes {
			perDay := 3 + g.rng.IntN(3)
			for i := 0; i < perDay; i++ {
				dep := date.Add(time.Duration(firstHour+g.rng.IntN(hourSpan))*time.Hour +
					time.Duration(g.rng.IntN(4)*15)*time.Minute)
				outbound, err := g.flight(r.From, r.To, dep, r.Duration, r.BasePrice)
				if err != nil {
					return nil, err
				}
				out = append(out, outbound)

				turnaround := time.Hour + time.Duration(g.rng.Float64()*float64(2*time.Hour)).Truncate(time.Minute)
				back := outbound.ArrivalTime.Add(turnaround)
				if back.Hour() >= lastReturnHour || back.YearDay() != dep.YearDay() {
					continue
				}
				inbound, err := g.flight(r.To, r.From, back, r.Duration, r.BasePrice)
				if err != nil {
					return nil, err
				}
				out = append(out, inbound)
			}
		}
	}
	return out, nil
}
