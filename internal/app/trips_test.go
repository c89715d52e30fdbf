package app_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip_planner/internal/app"
	"trip_planner/internal/domain"
)

// ---- fakes ----

type memRepo struct {
	mu          sync.Mutex
	requests    map[string]domain.StoredTripRequest
	itineraries map[string]domain.Itinerary
	failSave    error
}

func newMemRepo() *memRepo {
	return &memRepo{requests: map[string]domain.StoredTripRequest{}, itineraries: map[string]domain.Itinerary{}}
}

func (r *memRepo) SaveTripRequest(_ context.Context, tr domain.StoredTripRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[tr.ID] = tr
	return nil
}

func (r *memRepo) LinkItinerary(_ context.Context, reqID, itID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.requests[reqID]
	if !ok {
		return domain.ErrNotFound
	}
	tr.ItineraryID = &itID
	r.requests[reqID] = tr
	return nil
}

func (r *memRepo) SaveItinerary(_ context.Context, it domain.Itinerary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave != nil {
		return r.failSave
	}
	r.itineraries[it.ID] = it
	return nil
}

func (r *memRepo) GetTripRequest(_ context.Context, id string) (domain.StoredTripRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.requests[id]
	if !ok {
		return domain.StoredTripRequest{}, domain.ErrNotFound
	}
	return tr, nil
}

func (r *memRepo) GetItinerary(_ context.Context, id string) (domain.Itinerary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.itineraries[id]
	if !ok {
		return domain.Itinerary{}, domain.ErrNotFound
	}
	return it, nil
}

func (r *memRepo) ListItineraries(_ context.Context, limit int) ([]domain.Itinerary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Itinerary, 0, len(r.itineraries))
	for _, it := range r.itineraries {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubPlanner struct {
	trip domain.PlannedTrip
	err  error
}

func (s stubPlanner) Plan(context.Context, domain.TripRequest) (domain.PlannedTrip, error) {
	return s.trip, s.err
}

// ---- tests ----

func TestTripService_CreatePersistsAndLinks(t *testing.T) {
	repo := newMemRepo()
	planned := domain.PlannedTrip{
		Flights:            domain.Offers{domain.Flight{OfferBase: base("DEL to BAL", 12000, nil)}},
		TotalEstimatedCost: 12000,
		BudgetRemaining:    38000,
	}
	svc := app.NewTripService(stubPlanner{trip: planned}, repo)

	res, err := svc.Create(context.Background(), baliTrip())
	require.NoError(t, err)

	assert.Equal(t, "completed", res.Status)
	_, err = uuid.Parse(res.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.TripSummary{
		TotalActivities: 1, TotalCost: 12000, BudgetRemaining: 38000, BudgetUtilization: "24.00%",
	}, res.Summary)

	stored, err := repo.GetTripRequest(context.Background(), res.TripRequestID)
	require.NoError(t, err)
	require.NotNil(t, stored.ItineraryID)
	assert.Equal(t, res.ID, *stored.ItineraryID)
	assert.Equal(t, "Bali", stored.Destination)

	it, err := svc.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, 12000.0, it.TotalEstimate)
	assert.Equal(t, res.TripRequestID, it.TripRequestID)

	list, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTripService_Errors(t *testing.T) {
	ctx := context.Background()

	svc := app.NewTripService(stubPlanner{}, newMemRepo())
	_, err := svc.Create(ctx, domain.TripRequest{Destination: "Goa"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	boom := errors.New("db down")
	repo := newMemRepo()
	repo.failSave = boom
	_, err = app.NewTripService(stubPlanner{}, repo).Create(ctx, baliTrip())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, repo.requests, 1, "the request row is kept unlinked")
}
