package httpserver_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"trip_planner/internal/adapters/cache"
	httpserver "trip_planner/internal/adapters/http_server"
	"trip_planner/internal/adapters/providers"
	"trip_planner/internal/app"
	"trip_planner/internal/domain"
	"trip_planner/internal/shared"
	"trip_planner/internal/sources"
)

// ---- fakes ----

type fakeTrips struct {
	created []domain.TripRequest
	stored  map[string]domain.Itinerary
}

func (f *fakeTrips) Create(_ context.Context, req domain.TripRequest) (app.TripResult, error) {
	f.created = append(f.created, req)
	return app.TripResult{ID: "it-1", TripRequestID: "tr-1", Status: "completed"}, nil
}

func (f *fakeTrips) Get(_ context.Context, id string) (domain.Itinerary, error) {
	it, ok := f.stored[id]
	if !ok {
		return domain.Itinerary{}, domain.ErrNotFound
	}
	return it, nil
}

func (f *fakeTrips) List(context.Context, int) ([]domain.Itinerary, error) {
	out := []domain.Itinerary{}
	for _, it := range f.stored {
		out = append(out, it)
	}
	return out, nil
}

type fakePhotos map[string]string

func (f fakePhotos) Photo(_ context.Context, ref string) (io.ReadCloser, string, error) {
	b, ok := f[ref]
	if !ok {
		return nil, "", providers.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(b)), "image/jpeg", nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeTrips) {
	t.Helper()
	cfg := shared.Config{
		AmadeusBase: "http://127.0.0.1:1",
		BookingBase: "http://127.0.0.1:1",
		PlacesBase:  "http://127.0.0.1:1",
		ProviderRPS: 100,
	}
	set, err := sources.NewSet(sources.ClientsFromConfig(cfg), cache.NewMemory(0), time.Second)
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	trips := &fakeTrips{stored: map[string]domain.Itinerary{}}
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{
		Planner: app.NewPlanner(set, "DEL"),
		Trips:   trips,
		Sources: set,
		Photos:  fakePhotos{"ref-a": "jpegbytes"},
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts, trips
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	res, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func get(t *testing.T, url string, hdr http.Header) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	for k, v := range hdr {
		req.Header[k] = v
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func problemDetail(t *testing.T, res *http.Response) string {
	t.Helper()
	if ct := res.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content-type = %q, want problem+json", ct)
	}
	var p struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	return p.Detail
}

// ---- tests ----

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	if res := get(t, ts.URL+"/healthz", nil); res.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", res.StatusCode)
	}
}

func TestFilter_PlansWithoutPersisting(t *testing.T) {
	ts, trips := newTestServer(t)
	res := post(t, ts.URL+"/v1/orchestrator/filter",
		`{"destination":"Bali","days":5,"people_count":2,"budget":50000,"experience":"adventure"}`)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Flights []json.RawMessage `json:"flights"`
			Total   float64           `json:"totalEstimatedCost"`
			Trimmed bool              `json:"trimmed"`
		} `json:"data"`
		Summary domain.TripSummary `json:"summary"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data.Total > 50000 || !body.Data.Trimmed || len(body.Data.Flights) == 0 {
		t.Fatalf("unexpected plan: %+v", body)
	}
	if body.Summary.TotalCost != body.Data.Total {
		t.Fatalf("summary total %v != plan total %v", body.Summary.TotalCost, body.Data.Total)
	}
	if len(trips.created) != 0 {
		t.Fatalf("filter must not persist")
	}
}

func TestFilter_MissingParams(t *testing.T) {
	ts, _ := newTestServer(t)
	res := post(t, ts.URL+"/v1/orchestrator/filter", `{"destination":"Bali","days":5}`)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if d := problemDetail(t, res); d != "Missing required parameters: people_count, budget, experience" {
		t.Fatalf("detail = %q", d)
	}

	res = post(t, ts.URL+"/v1/orchestrator/filter", `not json`)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad body status = %d", res.StatusCode)
	}
}

func TestCreateTrip_Validation(t *testing.T) {
	ts, trips := newTestServer(t)
	cases := map[string]string{
		"short destination": `{"destination":"B","days":5,"people_count":2,"budget":50000,"experience":"adventure"}`,
		"fractional days":   `{"destination":"Bali","days":2.5,"people_count":2,"budget":50000,"experience":"adventure"}`,
		"negative budget":   `{"destination":"Bali","days":5,"people_count":2,"budget":-1,"experience":"adventure"}`,
		"unknown profile":   `{"destination":"Bali","days":5,"people_count":2,"budget":50000,"experience":"glamping"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if res := post(t, ts.URL+"/v1/trips", body); res.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d", res.StatusCode)
			}
		})
	}
	if len(trips.created) != 0 {
		t.Fatalf("invalid requests reached the service: %+v", trips.created)
	}

	res := post(t, ts.URL+"/v1/trips", `{"destination":" Bali ","days":5,"people_count":2,"budget":50000,"experience":"Adventure"}`)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if len(trips.created) != 1 || trips.created[0].Destination != "Bali" || trips.created[0].Experience != domain.ExperienceAdventure {
		t.Fatalf("unexpected request: %+v", trips.created)
	}
}

func TestGetTrip_ETagAndNotFound(t *testing.T) {
	ts, trips := newTestServer(t)
	id := uuid.NewString()
	trips.stored[id] = domain.Itinerary{ID: id, TripRequestID: "tr", TotalEstimate: 100}

	res := get(t, ts.URL+"/v1/trips/"+id, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	etag := res.Header.Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}
	if res := get(t, ts.URL+"/v1/trips/"+id, http.Header{"If-None-Match": {etag}}); res.StatusCode != http.StatusNotModified {
		t.Fatalf("conditional status = %d", res.StatusCode)
	}
	if res := get(t, ts.URL+"/v1/trips/"+uuid.NewString(), nil); res.StatusCode != http.StatusNotFound {
		t.Fatalf("missing itinerary status = %d", res.StatusCode)
	}

	res = get(t, ts.URL+"/v1/trips", nil)
	var list []domain.Itinerary
	if err := json.NewDecoder(res.Body).Decode(&list); err != nil || len(list) != 1 {
		t.Fatalf("list: %v (%d)", err, len(list))
	}
}

func TestAggregator(t *testing.T) {
	ts, _ := newTestServer(t)

	res := get(t, ts.URL+"/v1/aggregator/hotels?location=Bali&checkIn=2026-10-21", nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if d := problemDetail(t, res); d != "Missing required parameters: location, checkIn, checkOut, guests" {
		t.Fatalf("detail = %q", d)
	}

	res = get(t, ts.URL+"/v1/aggregator/food", nil)
	if d := problemDetail(t, res); d != "Missing required parameter: location" {
		t.Fatalf("detail = %q", d)
	}

	res = get(t, ts.URL+"/v1/aggregator/car-rentals?location=Goa&pickUpDate=2026-10-21&dropOffDate=2026-10-26", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	var offers domain.Offers
	if err := json.NewDecoder(res.Body).Decode(&offers); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(offers) != 3 || offers[0].Category() != domain.CategoryCarRental {
		t.Fatalf("unexpected offers: %+v", offers)
	}

	if res := get(t, ts.URL+"/v1/aggregator/spaceships?location=x", nil); res.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown category status = %d", res.StatusCode)
	}
}

func TestPlacePhoto(t *testing.T) {
	ts, _ := newTestServer(t)

	res := get(t, ts.URL+"/v1/places/photo?ref=ref-a", nil)
	if res.StatusCode != http.StatusOK || res.Header.Get("Content-Type") != "image/jpeg" {
		t.Fatalf("status = %d, content-type = %q", res.StatusCode, res.Header.Get("Content-Type"))
	}
	if b, _ := io.ReadAll(res.Body); string(b) != "jpegbytes" {
		t.Fatalf("body = %q", b)
	}

	if res := get(t, ts.URL+"/v1/places/photo?ref=nope", nil); res.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown ref status = %d", res.StatusCode)
	}
	res = get(t, ts.URL+"/v1/places/photo", nil)
	if d := problemDetail(t, res); d != "Missing required parameter: ref" {
		t.Fatalf("detail = %q", d)
	}
}
