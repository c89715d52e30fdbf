package sources

import (
	"context"

	"trip_planner/internal/adapters/providers"
	"trip_planner/internal/domain"
)

const (
	defaultPickUpTime = "10:00"
	defaultDriverAge  = 30
)

type CarRentalQuery struct {
	Location    string
	PickUpDate  string
	DropOffDate string
	PickUpTime  string
	DropOffTime string
	DriverAge   int
	Budget      float64
}

func (q CarRentalQuery) Params() map[string]any {
	return map[string]any{
		"location":    q.Location,
		"pickUpDate":  q.PickUpDate,
		"dropOffDate": q.DropOffDate,
		"pickUpTime":  opt(q.PickUpTime),
		"dropOffTime": opt(q.DropOffTime),
		"driverAge":   opt(q.DriverAge),
		"budget":      opt(q.Budget),
	}
}

// withDefaults fills in the times and driver age the provider requires.
func (q CarRentalQuery) withDefaults() CarRentalQuery {
	if q.PickUpTime == "" {
		q.PickUpTime = defaultPickUpTime
	}
	if q.DropOffTime == "" {
		q.DropOffTime = defaultPickUpTime
	}
	if q.DriverAge == 0 {
		q.DriverAge = defaultDriverAge
	}
	return q
}

type CarSearcher interface {
	SearchCarRentals(ctx context.Context, q providers.CarQuery) ([]providers.CarResult, error)
}

type CarRentals struct {
	api     CarSearcher
	catalog []CatalogEntry
}

func NewCarRentals(api CarSearcher, cat *Catalog) *CarRentals {
	return &CarRentals{api: api, catalog: cat.CarRentals}
}

func (*CarRentals) Name() string { return "car_rentals" }

// Fetch searches a round trip from the destination's pickup point.
func (c *CarRentals) Fetch(ctx context.Context, q CarRentalQuery) (domain.Offers, error) {
	q = q.withDefaults()
	at := Coordinates(q.Location)
	res, err := c.api.SearchCarRentals(ctx, providers.CarQuery{
		Lat: at.Lat, Lng: at.Lng,
		PickUpDate: q.PickUpDate, DropOffDate: q.DropOffDate,
		PickUpTime: q.PickUpTime, DropOffTime: q.DropOffTime,
		DriverAge: q.DriverAge,
	})
	if err != nil {
		return nil, err
	}
	out := make(domain.Offers, 0, len(res))
	for _, r := range res {
		carType, supplier := r.CarType, r.Supplier
		desc := firstOr(carType, "Car") + " - " + firstOr(supplier, "Rental Company")
		out = append(out, c.offer(q, at, domain.OfferBase{
			Name:          r.Name,
			Description:   desc,
			EstimatedCost: ToINR(r.Price, r.Currency),
			Rating:        r.Rating,
			ImageURL:      r.ImageURL,
			Source:        domain.SourceBooking,
		}, carType, supplier))
	}
	return out, nil
}

func (c *CarRentals) Mock(q CarRentalQuery) domain.Offers {
	q = q.withDefaults()
	at := Coordinates(q.Location)
	out := make(domain.Offers, 0, len(c.catalog))
	for _, e := range c.catalog {
		out = append(out, c.offer(q, at, mockBase(e), e.CarType, e.Supplier))
	}
	return out
}

func (*CarRentals) offer(q CarRentalQuery, at domain.GeoPoint, b domain.OfferBase, carType, supplier string) domain.CarRental {
	return domain.CarRental{
		OfferBase:       b,
		PickUpLocation:  at,
		DropOffLocation: at,
		PickUpDate:      q.PickUpDate,
		DropOffDate:     q.DropOffDate,
		PickUpTime:      q.PickUpTime,
		DropOffTime:     q.DropOffTime,
		CarType:         carType,
		Supplier:        supplier,
		DriverAge:       q.DriverAge,
	}
}

func firstOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
