// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/providers"
	"trip_planner/internal/app"
	"trip_planner/internal/domain"
	"trip_planner/internal/sources"
)

// Trips is the persisted trip workflow.
type Trips interface {
	Create(ctx context.Context, req domain.TripRequest) (app.TripResult, error)
	Get(ctx context.Context, id string) (domain.Itinerary, error)
	List(ctx context.Context, limit int) ([]domain.Itinerary, error)
}

type Handlers struct {
	Planner app.TripPlanner
	Trips   Trips
	Sources *sources.Set
	// Photos is optional; without it the photo route answers 404.
	Photos Photos
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/orchestrator/filter", h.filter)
	s.mux.Route("/v1/trips", func(r chi.Router) {
		r.Post("/", h.createTrip)
		r.Get("/", h.listTrips)
		r.Get("/{id}", h.getTrip)
	})
	s.mux.Get("/v1/aggregator/{category}", h.aggregate)
	s.mux.Get(providers.PhotoPath, h.photo)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

/********** request bodies **********/

// tripBody keeps numbers loose so fractional values can be reported
// instead of failing the decode.
type tripBody struct {
	Destination string  `json:"destination"`
	Days        float64 `json:"days"`
	People      float64 `json:"people_count"`
	Budget      float64 `json:"budget"`
	Experience  string  `json:"experience"`
}

func (b tripBody) request() domain.TripRequest {
	return domain.TripRequest{
		Destination: strings.TrimSpace(b.Destination),
		Days:        int(b.Days),
		People:      int(b.People),
		Budget:      b.Budget,
		Experience:  domain.Experience(strings.ToLower(strings.TrimSpace(b.Experience))),
	}
}

// missing names the absent fields, in request order.
func (b tripBody) missing() []string {
	var out []string
	if strings.TrimSpace(b.Destination) == "" {
		out = append(out, "destination")
	}
	if b.Days == 0 {
		out = append(out, "days")
	}
	if b.People == 0 {
		out = append(out, "people_count")
	}
	if b.Budget == 0 {
		out = append(out, "budget")
	}
	if strings.TrimSpace(b.Experience) == "" {
		out = append(out, "experience")
	}
	return out
}

// validate applies the stored-trip rules: a 2..120 character destination,
// positive whole numbers and a known experience.
func (b tripBody) validate() []string {
	var errs []string
	if n := len([]rune(strings.TrimSpace(b.Destination))); n < 2 || n > 120 {
		errs = append(errs, "destination must be 2 to 120 characters")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"people_count", b.People}, {"days", b.Days}, {"budget", b.Budget}} {
		if f.v <= 0 || f.v != math.Trunc(f.v) {
			errs = append(errs, f.name+" must be a positive integer")
		}
	}
	if _, err := domain.ParseExperience(b.Experience); err != nil {
		errs = append(errs, "experience must be one of adventure, offbeat, staycation, default")
	}
	return errs
}

func decodeTrip(w http.ResponseWriter, r *http.Request) (tripBody, bool) {
	var b tripBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&b); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "request body must be a JSON object")
		return b, false
	}
	return b, true
}

/********** handlers **********/

type filterResponse struct {
	Success bool               `json:"success"`
	Data    domain.PlannedTrip `json:"data"`
	Summary domain.TripSummary `json:"summary"`
}

func (h *Handlers) filter(w http.ResponseWriter, r *http.Request) {
	b, ok := decodeTrip(w, r)
	if !ok {
		return
	}
	if miss := b.missing(); len(miss) > 0 {
		writeProblem(w, http.StatusBadRequest, "Missing parameters",
			"Missing required parameters: "+strings.Join(miss, ", "))
		return
	}
	req := b.request()
	trip, err := h.Planner.Plan(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, filterResponse{Success: true, Data: trip, Summary: domain.Summarize(trip, req.Budget)})
}

func (h *Handlers) createTrip(w http.ResponseWriter, r *http.Request) {
	b, ok := decodeTrip(w, r)
	if !ok {
		return
	}
	if errs := b.validate(); len(errs) > 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid trip request", strings.Join(errs, "; "))
		return
	}
	res, err := h.Trips.Create(r.Context(), b.request())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) listTrips(w http.ResponseWriter, r *http.Request) {
	list, err := h.Trips.List(r.Context(), 0)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) getTrip(w http.ResponseWriter, r *http.Request) {
	it, err := h.Trips.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	// itineraries never change once written
	etag, body := calcETagAndBody(it)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write itinerary body")
	}
}

func (h *Handlers) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeProblem(w, http.StatusBadRequest, "Invalid input", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "itinerary not found")
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal error", "request failed")
	}
}
