package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"sync"
	"time"
)

// Amadeus talks to the Self-Service flight offers API with the OAuth2
// client-credentials flow.
type Amadeus struct {
	c      *Client
	key    string
	secret string
	now    func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewAmadeus(base, key, secret string, rps int) *Amadeus {
	return &Amadeus{
		c:      NewClient("amadeus", base, rps, nil),
		key:    key,
		secret: secret,
		now:    time.Now,
	}
}

type FlightQuery struct {
	From       string
	To         string
	Date       string
	ReturnDate string
	Adults     int
}

// FlightOffer is one priced itinerary as Amadeus reports it; Price is in Currency.
type FlightOffer struct {
	From        string
	To          string
	DepartureAt string
	Duration    string
	Airline     string
	Stops       int
	Price       float64
	Currency    string
}

const maxFlightOffers = 5

type amadeusToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type amadeusOffers struct {
	Data *[]struct {
		Price struct {
			Total    string `json:"total"`
			Currency string `json:"currency"`
		} `json:"price"`
		ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
		Itineraries            []struct {
			Duration string `json:"duration"`
			Segments []struct {
				Departure struct {
					IATACode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					IATACode string `json:"iataCode"`
				} `json:"arrival"`
				NumberOfStops int `json:"numberOfStops"`
			} `json:"segments"`
		} `json:"itineraries"`
	} `json:"data"`
}

func (a *Amadeus) SearchFlights(ctx context.Context, q FlightQuery) ([]FlightOffer, error) {
	if a.key == "" || a.secret == "" {
		return nil, ErrNoCredentials
	}
	tok, err := a.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("amadeus auth: %w", err)
	}

	adults := q.Adults
	if adults < 1 {
		adults = 1
	}
	params := url.Values{}
	params.Set("originLocationCode", q.From)
	params.Set("destinationLocationCode", q.To)
	params.Set("departureDate", q.Date)
	if q.ReturnDate != "" {
		params.Set("returnDate", q.ReturnDate)
	}
	params.Set("adults", strconv.Itoa(adults))
	params.Set("max", "10")

	var raw amadeusOffers
	err = a.c.Get(ctx, "/v2/shopping/flight-offers", params, http.Header{"Authorization": {"Bearer " + tok}}, &raw)
	if errors.Is(err, ErrUnauthorized) {
		a.dropToken()
	}
	if err != nil {
		return nil, err
	}
	if raw.Data == nil {
		return nil, fmt.Errorf("%w: amadeus: missing data", ErrMalformed)
	}

	out := make([]FlightOffer, 0, maxFlightOffers)
	for _, o := range *raw.Data {
		if len(out) == maxFlightOffers {
			break
		}
		if len(o.Itineraries) == 0 || len(o.Itineraries[0].Segments) == 0 {
			continue
		}
		it := o.Itineraries[0]
		first, last := it.Segments[0], it.Segments[len(it.Segments)-1]
		price, err := strconv.ParseFloat(o.Price.Total, 64)
		if err != nil || !finite(price) || price < 0 {
			return nil, fmt.Errorf("%w: amadeus price %q", ErrMalformed, o.Price.Total)
		}
		fo := FlightOffer{
			From:        first.Departure.IATACode,
			To:          last.Arrival.IATACode,
			DepartureAt: first.Departure.At,
			Duration:    humanDuration(it.Duration),
			Stops:       len(it.Segments) - 1 + first.NumberOfStops,
			Price:       price,
			Currency:    o.Price.Currency,
		}
		if len(o.ValidatingAirlineCodes) > 0 {
			fo.Airline = o.ValidatingAirlineCodes[0]
		}
		out = append(out, fo)
	}
	return out, nil
}

// accessToken returns the cached token, refreshing it 30s before expiry.
func (a *Amadeus) accessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token != "" && a.now().Before(a.expiry) {
		return a.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", a.key)
	form.Set("client_secret", a.secret)
	var t amadeusToken
	if err := a.c.PostForm(ctx, "/v1/security/oauth2/token", form, &t); err != nil {
		return "", err
	}
	if t.AccessToken == "" {
		return "", fmt.Errorf("%w: amadeus: empty access token", ErrMalformed)
	}
	a.token = t.AccessToken
	a.expiry = a.now().Add(time.Duration(t.ExpiresIn-30) * time.Second)
	return a.token, nil
}

func (a *Amadeus) dropToken() {
	a.mu.Lock()
	a.token = ""
	a.mu.Unlock()
}

var isoDuration = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?`)

// humanDuration turns "PT1H30M" into "1h 30m"; anything else is returned as is.
func humanDuration(d string) string {
	m := isoDuration.FindStringSubmatch(d)
	if m == nil {
		return d
	}
	h, mins := m[1], m[2]
	if h == "" {
		h = "0"
	}
	if mins == "" {
		mins = "0"
	}
	return h + "h " + mins + "m"
}
