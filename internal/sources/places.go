package sources

import (
	"context"
	"hash/fnv"
	"strings"

	"trip_planner/internal/adapters/providers"
	"trip_planner/internal/domain"
)

const attractionFields = "name,formatted_address,rating,opening_hours,geometry,photos,types"

type PlacesQuery struct {
	Location string
	Type     string
	Budget   float64
}

func (q PlacesQuery) Params() map[string]any {
	return map[string]any{
		"location": q.Location,
		"type":     opt(q.Type),
		"budget":   opt(q.Budget),
	}
}

type PlaceSearcher interface {
	Search(ctx context.Context, q providers.PlaceQuery) ([]providers.PlaceDetail, error)
	PhotoURL(ref string) string
}

// Places serves attractions from Google Places.
type Places struct {
	api     PlaceSearcher
	catalog []CatalogEntry
}

func NewPlaces(api PlaceSearcher, cat *Catalog) *Places {
	return &Places{api: api, catalog: cat.Places}
}

func (*Places) Name() string { return "places" }

func (p *Places) Fetch(ctx context.Context, q PlacesQuery) (domain.Offers, error) {
	typ := q.Type
	if typ == "" {
		typ = "tourist_attraction"
	}
	res, err := p.api.Search(ctx, providers.PlaceQuery{
		Text:   "tourist attractions in " + q.Location,
		Type:   typ,
		Fields: attractionFields,
	})
	if err != nil {
		return nil, err
	}
	out := make(domain.Offers, 0, len(res))
	for _, d := range res {
		out = append(out, domain.Attraction{
			OfferBase: domain.OfferBase{
				Name:          d.Name,
				Description:   firstOr(d.Address, "Tourist attraction"),
				EstimatedCost: attractionCost(d),
				Location:      geo(d.Lat, d.Lng),
				Rating:        d.Rating,
				ImageURL:      p.api.PhotoURL(d.PhotoRef),
				Source:        domain.SourceGoogle,
			},
			OpeningHours: strings.Join(d.OpeningHours, ", "),
			Address:      d.Address,
		})
	}
	return out, nil
}

func (p *Places) Mock(PlacesQuery) domain.Offers {
	out := make(domain.Offers, 0, len(p.catalog))
	for _, e := range p.catalog {
		out = append(out, domain.Attraction{OfferBase: mockBase(e)})
	}
	return out
}

// attractionCost estimates an entry price: a tier by rating (>4: 500,
// >3: 200, else free) plus a surcharge below 500 derived from the place id,
// so the same place is always priced the same.
func attractionCost(d providers.PlaceDetail) float64 {
	var rating float64
	if d.Rating != nil {
		rating = *d.Rating
	}
	var base float64
	switch {
	case rating > 4:
		base = 500
	case rating > 3:
		base = 200
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(d.PlaceID))
	return base + float64(h.Sum32()%500)
}

func geo(lat, lng *float64) *domain.GeoPoint {
	if lat == nil || lng == nil {
		return nil
	}
	return &domain.GeoPoint{Lat: *lat, Lng: *lng}
}
