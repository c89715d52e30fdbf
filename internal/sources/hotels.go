package sources

import (
	"context"
	"time"

	"trip_planner/internal/adapters/providers"
	"trip_planner/internal/domain"
)

type HotelQuery struct {
	Location string
	CheckIn  string
	CheckOut string
	Guests   int
	Budget   float64
}

func (q HotelQuery) Params() map[string]any {
	return map[string]any{
		"location": q.Location,
		"checkIn":  q.CheckIn,
		"checkOut": q.CheckOut,
		"guests":   q.Guests,
		"budget":   opt(q.Budget),
	}
}

func (q HotelQuery) guests() int {
	if q.Guests < 1 {
		return 1
	}
	return q.Guests
}

// nights is the stay length in whole days, at least 1.
func (q HotelQuery) nights() int {
	in, err1 := time.Parse(time.DateOnly, q.CheckIn)
	out, err2 := time.Parse(time.DateOnly, q.CheckOut)
	if err1 != nil || err2 != nil {
		return 1
	}
	n := int(out.Sub(in).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

type HotelSearcher interface {
	SearchHotels(ctx context.Context, q providers.HotelQuery) ([]providers.HotelResult, error)
}

type Hotels struct {
	api     HotelSearcher
	catalog []CatalogEntry
}

func NewHotels(api HotelSearcher, cat *Catalog) *Hotels {
	return &Hotels{api: api, catalog: cat.Hotels}
}

func (*Hotels) Name() string { return "hotels" }

// Fetch prices each hotel for the whole party: the provider's room price
// times guests.
func (h *Hotels) Fetch(ctx context.Context, q HotelQuery) (domain.Offers, error) {
	guests := q.guests()
	res, err := h.api.SearchHotels(ctx, providers.HotelQuery{
		Location: q.Location, CheckIn: q.CheckIn, CheckOut: q.CheckOut, Guests: guests,
	})
	if err != nil {
		return nil, err
	}
	out := make(domain.Offers, 0, len(res))
	for _, r := range res {
		o := domain.Hotel{
			OfferBase: domain.OfferBase{
				Name:          r.Name,
				Description:   r.Description,
				EstimatedCost: ToINR(r.Price, r.Currency) * float64(guests),
				ImageURL:      r.PhotoURL,
				Source:        domain.SourceBooking,
			},
			CheckIn:  q.CheckIn,
			CheckOut: q.CheckOut,
			Guests:   guests,
		}
		if r.ReviewScore != nil {
			stars := *r.ReviewScore / 2
			o.Rating = &stars
		}
		if r.Lat != nil && r.Lng != nil {
			o.Location = &domain.GeoPoint{Lat: *r.Lat, Lng: *r.Lng}
		}
		out = append(out, o)
	}
	return out, nil
}

// Mock prices catalog hotels as nightly rate x nights x guests.
func (h *Hotels) Mock(q HotelQuery) domain.Offers {
	guests, nights := q.guests(), q.nights()
	out := make(domain.Offers, 0, len(h.catalog))
	for _, e := range h.catalog {
		b := mockBase(e)
		b.EstimatedCost = e.Cost * float64(nights*guests)
		out = append(out, domain.Hotel{
			OfferBase: b,
			CheckIn:   q.CheckIn,
			CheckOut:  q.CheckOut,
			Guests:    guests,
			Amenities: append([]string(nil), e.Amenities...),
		})
	}
	return out
}
