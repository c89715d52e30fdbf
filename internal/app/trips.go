package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trip_planner/internal/domain"
)

const defaultListLimit = 100

// TripPlanner is the slice of Planner the trip service needs.
type TripPlanner interface {
	Plan(ctx context.Context, req domain.TripRequest) (domain.PlannedTrip, error)
}

type TripService struct {
	planner TripPlanner
	repo    domain.TripRepository
	now     func() time.Time
}

func NewTripService(p TripPlanner, r domain.TripRepository) *TripService {
	return &TripService{planner: p, repo: r, now: time.Now}
}

type TripResult struct {
	ID            string             `json:"id"`
	TripRequestID string             `json:"trip_request_id"`
	Status        string             `json:"status"`
	Data          domain.PlannedTrip `json:"data"`
	Summary       domain.TripSummary `json:"summary"`
}

// Create stores the request, plans it and stores the itinerary. The request
// row exists before planning starts, so a failed plan leaves an unlinked
// request behind.
func (s *TripService) Create(ctx context.Context, req domain.TripRequest) (TripResult, error) {
	if err := req.Validate(); err != nil {
		return TripResult{}, err
	}
	now := s.now().UTC()

	stored := domain.StoredTripRequest{ID: uuid.NewString(), TripRequest: req, CreatedAt: now}
	if err := s.repo.SaveTripRequest(ctx, stored); err != nil {
		return TripResult{}, fmt.Errorf("save trip request: %w", err)
	}

	plan, err := s.planner.Plan(ctx, req)
	if err != nil {
		return TripResult{}, fmt.Errorf("plan trip: %w", err)
	}

	it := domain.Itinerary{
		ID:            uuid.NewString(),
		TripRequestID: stored.ID,
		Summary:       plan,
		TotalEstimate: plan.TotalEstimatedCost,
		CreatedAt:     now,
	}
	if err := s.repo.SaveItinerary(ctx, it); err != nil {
		return TripResult{}, fmt.Errorf("save itinerary: %w", err)
	}
	if err := s.repo.LinkItinerary(ctx, stored.ID, it.ID); err != nil {
		return TripResult{}, fmt.Errorf("link itinerary: %w", err)
	}

	return TripResult{
		ID:            it.ID,
		TripRequestID: stored.ID,
		Status:        "completed",
		Data:          plan,
		Summary:       domain.Summarize(plan, req.Budget),
	}, nil
}

func (s *TripService) Get(ctx context.Context, id string) (domain.Itinerary, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Itinerary{}, fmt.Errorf("%w: itinerary id %q", domain.ErrInvalidInput, id)
	}
	return s.repo.GetItinerary(ctx, id)
}

// List returns the newest itineraries first.
func (s *TripService) List(ctx context.Context, limit int) ([]domain.Itinerary, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.repo.ListItineraries(ctx, limit)
}
