package sources

import (
	"context"

	"trip_planner/internal/adapters/providers"
	"trip_planner/internal/domain"
)

type ActivitiesQuery struct {
	Location string
	Budget   float64
}

func (q ActivitiesQuery) Params() map[string]any {
	return map[string]any{
		"location": q.Location,
		"budget":   opt(q.Budget),
	}
}

type AttractionSearcher interface {
	SearchAttractions(ctx context.Context, location string) ([]providers.AttractionResult, error)
}

// Activities serves bookable experiences from Booking.com attractions.
type Activities struct {
	api     AttractionSearcher
	catalog []CatalogEntry
}

func NewActivities(api AttractionSearcher, cat *Catalog) *Activities {
	return &Activities{api: api, catalog: cat.Activities}
}

func (*Activities) Name() string { return "activities" }

func (a *Activities) Fetch(ctx context.Context, q ActivitiesQuery) (domain.Offers, error) {
	res, err := a.api.SearchAttractions(ctx, q.Location)
	if err != nil {
		return nil, err
	}
	out := make(domain.Offers, 0, len(res))
	for _, r := range res {
		out = append(out, domain.Activity{
			OfferBase: domain.OfferBase{
				Name:          r.Name,
				Description:   r.Description,
				EstimatedCost: ToINR(r.Price, r.Currency),
				Location:      geo(r.Lat, r.Lng),
				Rating:        r.Rating,
				ImageURL:      r.ImageURL,
				Source:        domain.SourceBooking,
			},
			OpeningHours: r.OpeningHours,
			Address:      r.Address,
		})
	}
	return out, nil
}

func (a *Activities) Mock(ActivitiesQuery) domain.Offers {
	out := make(domain.Offers, 0, len(a.catalog))
	for _, e := range a.catalog {
		out = append(out, domain.Activity{OfferBase: mockBase(e)})
	}
	return out
}
