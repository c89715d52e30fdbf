package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Booking wraps the Booking.com endpoints published through RapidAPI.
// Payload shapes there are loose, so each result type tries a few field
// names before giving up.
type Booking struct {
	c   *Client
	key string
}

func NewBooking(base, key string, rps int) *Booking {
	host := base
	if u, err := url.Parse(base); err == nil && u.Host != "" {
		host = u.Host
	}
	h := http.Header{}
	h.Set("x-rapidapi-host", host)
	if key != "" {
		h.Set("x-rapidapi-key", key)
	}
	return &Booking{c: NewClient("booking", base, rps, h), key: key}
}

type HotelQuery struct {
	Location string
	CheckIn  string
	CheckOut string
	Guests   int
}

type HotelResult struct {
	Name        string
	Description string
	Price       float64 // per room for the stay, in Currency
	Currency    string
	ReviewScore *float64 // 0..10
	Lat, Lng    *float64
	PhotoURL    string
}

type CarQuery struct {
	Lat, Lng    float64
	PickUpDate  string
	DropOffDate string
	PickUpTime  string
	DropOffTime string
	DriverAge   int
}

type CarResult struct {
	Name     string
	CarType  string
	Supplier string
	Price    float64
	Currency string
	Rating   *float64
	ImageURL string
}

type AttractionResult struct {
	Name         string
	Description  string
	Price        float64
	Currency     string
	Lat, Lng     *float64
	Rating       *float64
	Address      string
	OpeningHours string
	ImageURL     string
}

const (
	maxHotels      = 10
	maxCars        = 10
	maxAttractions = 15
)

func (b *Booking) SearchHotels(ctx context.Context, q HotelQuery) ([]HotelResult, error) {
	if b.key == "" {
		return nil, ErrNoCredentials
	}
	params := url.Values{}
	params.Set("location", q.Location)
	params.Set("checkin_date", q.CheckIn)
	params.Set("checkout_date", q.CheckOut)
	params.Set("adults_number", strconv.Itoa(q.Guests))
	params.Set("room_number", "1")
	params.Set("currency", "INR")
	params.Set("order_by", "popularity")

	var raw struct {
		Result *[]struct {
			HotelName      string  `json:"hotel_name"`
			DistanceToCC   string  `json:"distance_to_cc"`
			ReviewWord     string  `json:"review_score_word"`
			ReviewScore    flexNum `json:"review_score"`
			MinTotalPrice  flexNum `json:"min_total_price"`
			Currency       string  `json:"currencycode"`
			Latitude       flexNum `json:"latitude"`
			Longitude      flexNum `json:"longitude"`
			MainPhotoURL   string  `json:"main_photo_url"`
			PriceBreakdown struct {
				GrossPrice struct {
					Value    flexNum `json:"value"`
					Currency string  `json:"currency"`
				} `json:"gross_price"`
			} `json:"price_breakdown"`
		} `json:"result"`
	}
	if err := b.c.Get(ctx, "/api/v1/hotels/searchHotels", params, nil, &raw); err != nil {
		return nil, err
	}
	if raw.Result == nil {
		return nil, fmt.Errorf("%w: booking hotels: missing result", ErrMalformed)
	}

	out := make([]HotelResult, 0, maxHotels)
	for _, h := range *raw.Result {
		if len(out) == maxHotels {
			break
		}
		r := HotelResult{
			Name:        firstNonEmpty(h.HotelName, "Unknown Hotel"),
			Description: firstNonEmpty(h.DistanceToCC, h.ReviewWord, "Hotel"),
			Price:       h.PriceBreakdown.GrossPrice.Value.or(h.MinTotalPrice),
			Currency:    firstNonEmpty(h.PriceBreakdown.GrossPrice.Currency, h.Currency, "INR"),
			ReviewScore: h.ReviewScore.ptr(),
			PhotoURL:    h.MainPhotoURL,
		}
		if h.Latitude.ok && h.Longitude.ok {
			r.Lat, r.Lng = h.Latitude.ptr(), h.Longitude.ptr()
		}
		out = append(out, r)
	}
	return out, nil
}

func (b *Booking) SearchCarRentals(ctx context.Context, q CarQuery) ([]CarResult, error) {
	if b.key == "" {
		return nil, ErrNoCredentials
	}
	lat := strconv.FormatFloat(q.Lat, 'f', -1, 64)
	lng := strconv.FormatFloat(q.Lng, 'f', -1, 64)
	params := url.Values{}
	params.Set("pick_up_latitude", lat)
	params.Set("pick_up_longitude", lng)
	params.Set("drop_off_latitude", lat)
	params.Set("drop_off_longitude", lng)
	params.Set("pick_up_date", q.PickUpDate)
	params.Set("drop_off_date", q.DropOffDate)
	params.Set("pick_up_time", q.PickUpTime)
	params.Set("drop_off_time", q.DropOffTime)
	params.Set("driver_age", strconv.Itoa(q.DriverAge))
	params.Set("currency_code", "INR")
	params.Set("location", "IN")

	var raw struct {
		Data *[]struct {
			CarName         string  `json:"car_name"`
			VehicleName     string  `json:"vehicle_name"`
			Name            string  `json:"name"`
			CarType         string  `json:"car_type"`
			VehicleCategory string  `json:"vehicle_category"`
			SupplierName    string  `json:"supplier_name"`
			Provider        string  `json:"provider"`
			Price           flexNum `json:"price"`
			TotalPrice      flexNum `json:"total_price"`
			PricePerDay     flexNum `json:"price_per_day"`
			Currency        string  `json:"currency"`
			Rating          flexNum `json:"rating"`
			Score           flexNum `json:"score"`
			ImageURL        string  `json:"image_url"`
			PhotoURL        string  `json:"photo_url"`
		} `json:"data"`
	}
	if err := b.c.Get(ctx, "/api/v1/cars/searchCarRentals", params, nil, &raw); err != nil {
		return nil, err
	}
	if raw.Data == nil {
		return nil, fmt.Errorf("%w: booking cars: missing data", ErrMalformed)
	}

	out := make([]CarResult, 0, maxCars)
	for _, c := range *raw.Data {
		if len(out) == maxCars {
			break
		}
		out = append(out, CarResult{
			Name:     firstNonEmpty(c.CarName, c.VehicleName, c.Name, "Car Rental"),
			CarType:  firstNonEmpty(c.CarType, c.VehicleCategory),
			Supplier: firstNonEmpty(c.SupplierName, c.Provider),
			Price:    c.Price.or(c.TotalPrice, c.PricePerDay),
			Currency: firstNonEmpty(c.Currency, "INR"),
			Rating:   firstNum(c.Rating, c.Score).ptr(),
			ImageURL: firstNonEmpty(c.ImageURL, c.PhotoURL),
		})
	}
	return out, nil
}

func (b *Booking) SearchAttractions(ctx context.Context, location string) ([]AttractionResult, error) {
	if b.key == "" {
		return nil, ErrNoCredentials
	}
	params := url.Values{}
	params.Set("location", location)
	params.Set("currency", "INR")

	var raw struct {
		Data *[]struct {
			Name             string  `json:"name"`
			Title            string  `json:"title"`
			Description      string  `json:"description"`
			ShortDescription string  `json:"short_description"`
			Price            flexNum `json:"price"`
			TicketPrice      flexNum `json:"ticket_price"`
			Currency         string  `json:"currency"`
			Latitude         flexNum `json:"latitude"`
			Longitude        flexNum `json:"longitude"`
			Rating           flexNum `json:"rating"`
			Score            flexNum `json:"score"`
			Address          string  `json:"address"`
			Location         string  `json:"location"`
			OpeningHours     string  `json:"opening_hours"`
			Hours            string  `json:"hours"`
			ImageURL         string  `json:"image_url"`
			PhotoURL         string  `json:"photo_url"`
			Image            string  `json:"image"`
		} `json:"data"`
	}
	if err := b.c.Get(ctx, "/api/v1/attractions/searchAttractions", params, nil, &raw); err != nil {
		return nil, err
	}
	if raw.Data == nil {
		return nil, fmt.Errorf("%w: booking attractions: missing data", ErrMalformed)
	}

	out := make([]AttractionResult, 0, maxAttractions)
	for _, a := range *raw.Data {
		if len(out) == maxAttractions {
			break
		}
		r := AttractionResult{
			Name:         firstNonEmpty(a.Name, a.Title, "Activity"),
			Description:  firstNonEmpty(a.Description, a.ShortDescription, "Tourist attraction"),
			Price:        a.Price.or(a.TicketPrice),
			Currency:     firstNonEmpty(a.Currency, "INR"),
			Rating:       firstNum(a.Rating, a.Score).ptr(),
			Address:      firstNonEmpty(a.Address, a.Location),
			OpeningHours: firstNonEmpty(a.OpeningHours, a.Hours),
			ImageURL:     firstNonEmpty(a.ImageURL, a.PhotoURL, a.Image),
		}
		if a.Latitude.ok && a.Longitude.ok {
			r.Lat, r.Lng = a.Latitude.ptr(), a.Longitude.ptr()
		}
		out = append(out, r)
	}
	return out, nil
}

// flexNum accepts a JSON number, a numeric string, or an object carrying
// the number under amount, total or value. Anything else, NaN and Inf
// included, decodes as absent.
type flexNum struct {
	v  float64
	ok bool
}

func (n *flexNum) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && finite(f) {
			n.v, n.ok = f, true
		}
		return nil
	case b[0] == '{':
		var obj struct {
			Amount flexNum `json:"amount"`
			Total  flexNum `json:"total"`
			Value  flexNum `json:"value"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*n = firstNum(obj.Amount, obj.Total, obj.Value)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return nil
	}
	n.v, n.ok = f, true
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// or returns the first present value, treating zero as absent the way
// the upstream payloads do.
func (n flexNum) or(alts ...flexNum) float64 {
	if n.ok && n.v != 0 {
		return n.v
	}
	for _, a := range alts {
		if a.ok && a.v != 0 {
			return a.v
		}
	}
	return 0
}

func (n flexNum) ptr() *float64 {
	if !n.ok {
		return nil
	}
	v := n.v
	return &v
}

func firstNum(ns ...flexNum) flexNum {
	for _, n := range ns {
		if n.ok && n.v != 0 {
			return n
		}
	}
	return flexNum{}
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
