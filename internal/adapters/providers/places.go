package providers

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"golang.org/x/sync/errgroup"
)

// Places uses Google Places text search followed by one details lookup
// per hit.
type Places struct {
	c   *Client
	key string
}

func NewPlaces(base, key string, rps int) *Places {
	return &Places{c: NewClient("google_places", base, rps, nil), key: key}
}

// PlaceQuery is a text search; Fields lists the details fields to fetch.
type PlaceQuery struct {
	Text   string
	Type   string
	Fields string
}

type PlaceDetail struct {
	PlaceID      string
	Name         string
	Address      string
	Rating       *float64
	PriceLevel   *int
	Lat, Lng     *float64
	OpeningHours []string
	PhotoRef     string
	Types        []string
}

const maxPlaceDetails = 10

type placesStatus struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// check maps a non-OK Places status to an error. ZERO_RESULTS is a valid
// empty answer.
func (s placesStatus) check(endpoint string) error {
	switch s.Status {
	case "", "OK", "ZERO_RESULTS":
		return nil
	case "REQUEST_DENIED":
		return fmt.Errorf("%w: places %s: %s", ErrForbidden, endpoint, s.ErrorMessage)
	case "NOT_FOUND":
		return ErrNotFound
	}
	return fmt.Errorf("places %s: status %s: %s", endpoint, s.Status, s.ErrorMessage)
}

func (p *Places) Search(ctx context.Context, q PlaceQuery) ([]PlaceDetail, error) {
	if p.key == "" {
		return nil, ErrNoCredentials
	}
	params := url.Values{}
	params.Set("query", q.Text)
	params.Set("key", p.key)
	if q.Type != "" {
		params.Set("type", q.Type)
	}

	var hits struct {
		placesStatus
		Results *[]struct {
			PlaceID string `json:"place_id"`
		} `json:"results"`
	}
	if err := p.c.Get(ctx, "/textsearch/json", params, nil, &hits); err != nil {
		return nil, err
	}
	if err := hits.check("textsearch"); err != nil {
		return nil, err
	}
	if hits.Results == nil {
		return nil, fmt.Errorf("%w: places textsearch: missing results", ErrMalformed)
	}

	ids := make([]string, 0, maxPlaceDetails)
	for _, r := range *hits.Results {
		if len(ids) == maxPlaceDetails {
			break
		}
		if r.PlaceID != "" {
			ids = append(ids, r.PlaceID)
		}
	}

	out := make([]PlaceDetail, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			d, err := p.details(gctx, id, q.Fields)
			if err != nil {
				return err
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Places) details(ctx context.Context, placeID, fields string) (PlaceDetail, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("key", p.key)
	params.Set("fields", fields)

	var raw struct {
		placesStatus
		Result *struct {
			Name             string   `json:"name"`
			FormattedAddress string   `json:"formatted_address"`
			Rating           *float64 `json:"rating"`
			PriceLevel       *int     `json:"price_level"`
			Types            []string `json:"types"`
			Geometry         *struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
			OpeningHours *struct {
				WeekdayText []string `json:"weekday_text"`
			} `json:"opening_hours"`
			Photos []struct {
				PhotoReference string `json:"photo_reference"`
			} `json:"photos"`
		} `json:"result"`
	}
	if err := p.c.Get(ctx, "/details/json", params, nil, &raw); err != nil {
		return PlaceDetail{}, err
	}
	if err := raw.check("details"); err != nil {
		return PlaceDetail{}, err
	}
	if raw.Result == nil {
		return PlaceDetail{}, fmt.Errorf("%w: places details %s: missing result", ErrMalformed, placeID)
	}

	r := raw.Result
	d := PlaceDetail{
		PlaceID:    placeID,
		Name:       r.Name,
		Address:    r.FormattedAddress,
		Rating:     r.Rating,
		PriceLevel: r.PriceLevel,
		Types:      r.Types,
	}
	if r.Geometry != nil {
		lat, lng := r.Geometry.Location.Lat, r.Geometry.Location.Lng
		d.Lat, d.Lng = &lat, &lng
	}
	if r.OpeningHours != nil {
		d.OpeningHours = r.OpeningHours.WeekdayText
	}
	if len(r.Photos) > 0 {
		d.PhotoRef = r.Photos[0].PhotoReference
	}
	return d, nil
}

// PhotoPath is where the API serves place photos. The Google key stays
// server-side; clients only ever see the photo reference.
const PhotoPath = "/v1/places/photo"

// PhotoURL is the API-relative image URL for a reference; empty ref gives "".
func (p *Places) PhotoURL(ref string) string {
	if ref == "" {
		return ""
	}
	return PhotoPath + "?" + url.Values{"ref": {ref}}.Encode()
}

// Photo streams the image for ref from Google. The caller closes the body.
func (p *Places) Photo(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	if p.key == "" {
		return nil, "", ErrNoCredentials
	}
	if ref == "" {
		return nil, "", ErrNotFound
	}
	params := url.Values{}
	params.Set("maxwidth", "400")
	params.Set("photoreference", ref)
	params.Set("key", p.key)
	return p.c.Open(ctx, "/photo", params)
}
