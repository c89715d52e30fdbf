package domain

import (
	"encoding/json"
	"fmt"
)

type Category string

const (
	CategoryFlight     Category = "flight"
	CategoryHotel      Category = "hotel"
	CategoryCarRental  Category = "car_rental"
	CategoryAttraction Category = "attraction"
	CategoryFood       Category = "food"
	CategoryActivity   Category = "activity"
)

// Source tags where an offer came from. SourceMock marks the fallback catalog.
type Source string

const (
	SourceAmadeus Source = "amadeus"
	SourceBooking Source = "booking"
	SourceGoogle  Source = "google"
	SourceMock    Source = "mock"
)

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OfferBase holds the fields every offer carries.
// EstimatedCost is always in INR and never negative.
type OfferBase struct {
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	EstimatedCost float64   `json:"estimated_cost"`
	Location      *GeoPoint `json:"location,omitempty"`
	Rating        *float64  `json:"rating,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	Source        Source    `json:"source"`
}

func (b OfferBase) Common() OfferBase { return b }

// RatingOrZero treats a missing rating as 0.
func (b OfferBase) RatingOrZero() float64 {
	if b.Rating == nil {
		return 0
	}
	return *b.Rating
}

// Offer is a closed set of priced candidates, one case per category.
// Consumers switch on the concrete type; adding a case means visiting
// every such switch (Rollup, trimPriority, filters, DecodeOffer).
type Offer interface {
	Category() Category
	Common() OfferBase
	isOffer()
}

type Flight struct {
	OfferBase
	From          string `json:"from"`
	To            string `json:"to"`
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date,omitempty"`
	Duration      string `json:"duration"`
	Airline       string `json:"airline,omitempty"`
}

type Hotel struct {
	OfferBase
	CheckIn   string   `json:"check_in"`
	CheckOut  string   `json:"check_out"`
	Guests    int      `json:"guests"`
	Amenities []string `json:"amenities,omitempty"`
}

type Attraction struct {
	OfferBase
	OpeningHours string `json:"opening_hours,omitempty"`
	Address      string `json:"address,omitempty"`
}

// Activity is a bookable experience (tour, cruise, show). It is priced and
// ranked like an attraction but rolled up in its own bucket.
type Activity struct {
	OfferBase
	OpeningHours string `json:"opening_hours,omitempty"`
	Address      string `json:"address,omitempty"`
}

type Food struct {
	OfferBase
	Cuisine    string `json:"cuisine,omitempty"`
	PriceLevel *int   `json:"price_level,omitempty"` // 0..4
}

type CarRental struct {
	OfferBase
	PickUpLocation  GeoPoint `json:"pick_up_location"`
	DropOffLocation GeoPoint `json:"drop_off_location"`
	PickUpDate      string   `json:"pick_up_date"`
	DropOffDate     string   `json:"drop_off_date"`
	PickUpTime      string   `json:"pick_up_time"`
	DropOffTime     string   `json:"drop_off_time"`
	CarType         string   `json:"car_type,omitempty"`
	Supplier        string   `json:"supplier,omitempty"`
	DriverAge       int      `json:"driver_age,omitempty"`
}

func (Flight) Category() Category     { return CategoryFlight }
func (Hotel) Category() Category      { return CategoryHotel }
func (Attraction) Category() Category { return CategoryAttraction }
func (Activity) Category() Category   { return CategoryActivity }
func (Food) Category() Category       { return CategoryFood }
func (CarRental) Category() Category  { return CategoryCarRental }

func (Flight) isOffer()     {}
func (Hotel) isOffer()      {}
func (Attraction) isOffer() {}
func (Activity) isOffer()   {}
func (Food) isOffer()       {}
func (CarRental) isOffer()  {}

/********** tagged JSON **********/

// The alias types drop the MarshalJSON method so the embedded struct is
// encoded field by field.
func (f Flight) MarshalJSON() ([]byte, error) {
	type flight Flight
	return marshalTagged(CategoryFlight, flight(f))
}

func (h Hotel) MarshalJSON() ([]byte, error) {
	type hotel Hotel
	return marshalTagged(CategoryHotel, hotel(h))
}

func (a Attraction) MarshalJSON() ([]byte, error) {
	type attraction Attraction
	return marshalTagged(CategoryAttraction, attraction(a))
}

func (a Activity) MarshalJSON() ([]byte, error) {
	type activity Activity
	return marshalTagged(CategoryActivity, activity(a))
}

func (f Food) MarshalJSON() ([]byte, error) {
	type food Food
	return marshalTagged(CategoryFood, food(f))
}

func (c CarRental) MarshalJSON() ([]byte, error) {
	type carRental CarRental
	return marshalTagged(CategoryCarRental, carRental(c))
}

// marshalTagged encodes v and splices "type" in as the first key.
func marshalTagged(c Category, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	head, _ := json.Marshal(c)
	out := make([]byte, 0, len(body)+len(head)+10)
	out = append(out, `{"type":`...)
	out = append(out, head...)
	if len(body) > 2 { // body is at least "{}"
		out = append(out, ',')
		out = append(out, body[1:]...)
	} else {
		out = append(out, '}')
	}
	return out, nil
}

// Offers is a list of offers that survives a JSON round trip.
type Offers []Offer

func (list *Offers) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}
	out := make(Offers, 0, len(raws))
	for i, raw := range raws {
		o, err := DecodeOffer(raw)
		if err != nil {
			return fmt.Errorf("offer %d: %w", i, err)
		}
		out = append(out, o)
	}
	*list = out
	return nil
}

// DecodeOffer picks the concrete case from the "type" field.
func DecodeOffer(raw []byte) (Offer, error) {
	var head struct {
		Type Category `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case CategoryFlight:
		var v Flight
		err := json.Unmarshal(raw, &v)
		return v, err
	case CategoryHotel:
		var v Hotel
		err := json.Unmarshal(raw, &v)
		return v, err
	case CategoryAttraction:
		var v Attraction
		err := json.Unmarshal(raw, &v)
		return v, err
	case CategoryActivity:
		var v Activity
		err := json.Unmarshal(raw, &v)
		return v, err
	case CategoryFood:
		var v Food
		err := json.Unmarshal(raw, &v)
		return v, err
	case CategoryCarRental:
		var v CarRental
		err := json.Unmarshal(raw, &v)
		return v, err
	default:
		return nil, fmt.Errorf("unknown offer type %q", head.Type)
	}
}

// OfType keeps the offers of one category, preserving order.
func (list Offers) OfType(c Category) Offers {
	out := make(Offers, 0, len(list))
	for _, o := range list {
		if o.Category() == c {
			out = append(out, o)
		}
	}
	return out
}
