package sources

import (
	"context"
	"fmt"

	"trip_planner/internal/adapters/providers"
	"trip_planner/internal/domain"
)

type FlightQuery struct {
	From       string
	To         string
	Date       string
	ReturnDate string
	Adults     int
}

func (q FlightQuery) Params() map[string]any {
	return map[string]any{
		"from":       q.From,
		"to":         q.To,
		"date":       q.Date,
		"returnDate": opt(q.ReturnDate),
		"adults":     opt(q.Adults),
	}
}

type FlightSearcher interface {
	SearchFlights(ctx context.Context, q providers.FlightQuery) ([]providers.FlightOffer, error)
}

type Flights struct {
	api     FlightSearcher
	catalog []CatalogEntry
}

func NewFlights(api FlightSearcher, cat *Catalog) *Flights {
	return &Flights{api: api, catalog: cat.Flights}
}

func (*Flights) Name() string { return "flights" }

func (f *Flights) Fetch(ctx context.Context, q FlightQuery) (domain.Offers, error) {
	res, err := f.api.SearchFlights(ctx, providers.FlightQuery{
		From: q.From, To: q.To, Date: q.Date, ReturnDate: q.ReturnDate, Adults: q.Adults,
	})
	if err != nil {
		return nil, err
	}
	out := make(domain.Offers, 0, len(res))
	for _, r := range res {
		out = append(out, domain.Flight{
			OfferBase: domain.OfferBase{
				Name:          fmt.Sprintf("%s to %s", r.From, r.To),
				Description:   fmt.Sprintf("%s - %s", r.Airline, stopsLabel(r.Stops)),
				EstimatedCost: ToINR(r.Price, r.Currency),
				Source:        domain.SourceAmadeus,
			},
			From:          r.From,
			To:            r.To,
			DepartureDate: r.DepartureAt,
			ReturnDate:    q.ReturnDate,
			Duration:      r.Duration,
			Airline:       r.Airline,
		})
	}
	return out, nil
}

func (f *Flights) Mock(q FlightQuery) domain.Offers {
	out := make(domain.Offers, 0, len(f.catalog))
	for _, e := range f.catalog {
		b := mockBase(e)
		b.Name = fmt.Sprintf("%s to %s", q.From, q.To)
		out = append(out, domain.Flight{
			OfferBase:     b,
			From:          q.From,
			To:            q.To,
			DepartureDate: q.Date,
			ReturnDate:    q.ReturnDate,
			Duration:      e.Duration,
			Airline:       e.Airline,
		})
	}
	return out
}

func stopsLabel(n int) string {
	switch n {
	case 0:
		return "Direct"
	case 1:
		return "1 stop"
	}
	return fmt.Sprintf("%d stops", n)
}

// mockBase copies the shared fields of a catalog entry. Rating is copied
// so offers never share a pointer with the catalog.
func mockBase(e CatalogEntry) domain.OfferBase {
	b := domain.OfferBase{
		Name:          e.Name,
		Description:   e.Description,
		EstimatedCost: e.Cost,
		Source:        domain.SourceMock,
	}
	if e.Rating != nil {
		r := *e.Rating
		b.Rating = &r
	}
	return b
}
