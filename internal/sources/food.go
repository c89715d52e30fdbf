package sources

import (
	"context"
	"strings"

	"trip_planner/internal/adapters/providers"
	"trip_planner/internal/domain"
)

const restaurantFields = "name,formatted_address,rating,price_level,geometry,photos,types"

// Per-person meal price by Google price level 0..4.
var mealCost = [...]float64{0, 200, 500, 1000, 2000}

const defaultPriceLevel = 2

type FoodQuery struct {
	Location string
	Budget   float64
}

func (q FoodQuery) Params() map[string]any {
	return map[string]any{
		"location": q.Location,
		"budget":   opt(q.Budget),
	}
}

type Food struct {
	api     PlaceSearcher
	catalog []CatalogEntry
}

func NewFood(api PlaceSearcher, cat *Catalog) *Food {
	return &Food{api: api, catalog: cat.Food}
}

func (*Food) Name() string { return "food" }

func (f *Food) Fetch(ctx context.Context, q FoodQuery) (domain.Offers, error) {
	res, err := f.api.Search(ctx, providers.PlaceQuery{
		Text:   "restaurants in " + q.Location,
		Type:   "restaurant",
		Fields: restaurantFields,
	})
	if err != nil {
		return nil, err
	}
	out := make(domain.Offers, 0, len(res))
	for _, d := range res {
		level := defaultPriceLevel
		if d.PriceLevel != nil && *d.PriceLevel >= 0 && *d.PriceLevel < len(mealCost) {
			level = *d.PriceLevel
		}
		out = append(out, domain.Food{
			OfferBase: domain.OfferBase{
				Name:          d.Name,
				Description:   firstOr(d.Address, "Restaurant"),
				EstimatedCost: mealCost[level],
				Location:      geo(d.Lat, d.Lng),
				Rating:        d.Rating,
				ImageURL:      f.api.PhotoURL(d.PhotoRef),
				Source:        domain.SourceGoogle,
			},
			Cuisine:    cuisine(d.Types),
			PriceLevel: &level,
		})
	}
	return out, nil
}

func (f *Food) Mock(FoodQuery) domain.Offers {
	out := make(domain.Offers, 0, len(f.catalog))
	for _, e := range f.catalog {
		o := domain.Food{OfferBase: mockBase(e), Cuisine: e.Cuisine}
		if e.PriceLevel != nil {
			l := *e.PriceLevel
			o.PriceLevel = &l
		}
		out = append(out, o)
	}
	return out
}

// generic place types that say nothing about the cuisine
var genericTypes = map[string]bool{
	"restaurant": true, "food": true, "meal_takeaway": true, "cafe": true,
	"point_of_interest": true, "establishment": true,
}

func cuisine(types []string) string {
	for _, t := range types {
		if !genericTypes[t] {
			return strings.ReplaceAll(t, "_", " ")
		}
	}
	return "Restaurant"
}
