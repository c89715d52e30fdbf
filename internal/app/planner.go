package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/domain"
	"trip_planner/internal/sources"
)

const (
	leadDays         = 7
	defaultDriverAge = 30
	dateLayout       = "2006-01-02"
)

type Planner struct {
	sources *sources.Set
	origin  string
	now     func() time.Time
}

// NewPlanner plans trips departing from origin (an IATA code).
func NewPlanner(set *sources.Set, origin string) *Planner {
	if origin == "" {
		origin = "DEL"
	}
	return &Planner{sources: set, origin: origin, now: time.Now}
}

// WithClock replaces the time source; check-in dates derive from it.
func (p *Planner) WithClock(now func() time.Time) *Planner {
	p.now = now
	return p
}

type gathered struct {
	flights, hotels, cars, places, activities, food domain.Offers
}

// Plan queries every source concurrently, filters each list against its
// share of the budget and trims the whole set when it still overruns.
func (p *Planner) Plan(ctx context.Context, req domain.TripRequest) (domain.PlannedTrip, error) {
	// 1) Validate.
	if err := req.Validate(); err != nil {
		return domain.PlannedTrip{}, err
	}

	// 2) Budget split.
	pct := Allocate(req.Experience)
	ceil := pct.Ceilings(req.Budget)

	// 3) Dates and codes.
	checkIn := p.now().UTC().AddDate(0, 0, leadDays)
	checkOut := checkIn.AddDate(0, 0, req.Days)
	in, out := checkIn.Format(dateLayout), checkOut.Format(dateLayout)

	// 4) Fan out.
	g := p.gather(ctx, req, in, out, ceil)

	// 5) Filter and price.
	trip := domain.PlannedTrip{
		Flights:       FilterFlights(g.flights, ceil.Flights, req.Experience),
		Hotels:        FilterHotels(g.hotels, ceil.Hotels, req.Experience),
		CarRentals:    FilterCarRentals(g.cars, ceil.CarRentals, req.Experience),
		Places:        FilterPlaces(concat(g.places, g.activities), ceil.Activities, req.Experience, req.People),
		Food:          FilterFood(g.food, ceil.Food, req.Experience, req.People, req.Days),
		AllocationPct: pct,
		CheckIn:       in,
		CheckOut:      out,
	}
	pool := concat(trip.Flights, trip.Hotels, trip.CarRentals, trip.Places, trip.Food)
	est := Rollup(pool, req.People, req.Days)

	// 6) Trim on overrun.
	if est.Total > req.Budget {
		kept := GreedyTrim(pool, req.Budget, req.People, req.Days)
		log.Info().
			Str("destination", req.Destination).
			Float64("total", est.Total).
			Float64("budget", req.Budget).
			Int("dropped", len(pool)-len(kept)).
			Msg("plan over budget; trimmed")
		trip.Flights = kept.OfType(domain.CategoryFlight)
		trip.Hotels = kept.OfType(domain.CategoryHotel)
		trip.CarRentals = kept.OfType(domain.CategoryCarRental)
		trip.Places = concat(kept.OfType(domain.CategoryAttraction), kept.OfType(domain.CategoryActivity))
		trip.Food = kept.OfType(domain.CategoryFood)
		trip.Trimmed = true
		est = Rollup(kept, req.People, req.Days)
	}

	trip.Estimate = est
	trip.TotalEstimatedCost = est.Total
	trip.BudgetRemaining = req.Budget - est.Total
	trip.BudgetAllocation = domain.Allocation{
		Flights:    est.Breakdown.Flights,
		Hotels:     est.Breakdown.Hotels,
		CarRentals: est.Breakdown.CarRentals,
		Activities: est.Breakdown.Attractions + est.Breakdown.Activities,
		Food:       est.Breakdown.Food,
	}

	observability.ObservePlan(profileLabel(req.Experience), trip.Trimmed)
	log.Debug().
		Str("destination", req.Destination).
		Str("experience", string(req.Experience)).
		Int("offers", trip.Count()).
		Float64("total", trip.TotalEstimatedCost).
		Msg("trip planned")
	return trip, nil
}

// gather runs the six searches in parallel. A panicking search yields an
// empty list for its category; the others are unaffected.
func (p *Planner) gather(ctx context.Context, req domain.TripRequest, in, out string, ceil domain.Allocation) gathered {
	var (
		r   gathered
		eg  errgroup.Group
		loc = req.Destination
	)
	run := func(name string, dst *domain.Offers, search func() domain.Offers) {
		eg.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().Str("category", name).Interface("panic", rec).Msg("source search panicked")
					*dst = nil
				}
			}()
			*dst = search()
			return nil
		})
	}

	s := p.sources
	run("flights", &r.flights, func() domain.Offers {
		return s.Flights.Search(ctx, sources.FlightQuery{
			From: p.origin, To: destinationCode(loc), Date: in, ReturnDate: out, Adults: req.People,
		})
	})
	run("hotels", &r.hotels, func() domain.Offers {
		return s.Hotels.Search(ctx, sources.HotelQuery{
			Location: loc, CheckIn: in, CheckOut: out, Guests: req.People, Budget: ceil.Hotels,
		})
	})
	run("car_rentals", &r.cars, func() domain.Offers {
		return s.CarRentals.Search(ctx, sources.CarRentalQuery{
			Location: loc, PickUpDate: in, DropOffDate: out, DriverAge: defaultDriverAge, Budget: ceil.CarRentals,
		})
	})
	run("places", &r.places, func() domain.Offers {
		return s.Places.Search(ctx, sources.PlacesQuery{Location: loc, Budget: ceil.Activities})
	})
	run("activities", &r.activities, func() domain.Offers {
		return s.Activities.Search(ctx, sources.ActivitiesQuery{Location: loc, Budget: ceil.Activities})
	})
	run("food", &r.food, func() domain.Offers {
		return s.Food.Search(ctx, sources.FoodQuery{Location: loc, Budget: ceil.Food})
	})

	_ = eg.Wait() // goroutines never return errors
	return r
}

func concat(lists ...domain.Offers) domain.Offers {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make(domain.Offers, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// destinationCode derives a pseudo IATA code from the destination name.
func destinationCode(dest string) string {
	d := []rune(strings.ToUpper(strings.TrimSpace(dest)))
	if len(d) > 3 {
		d = d[:3]
	}
	return string(d)
}
