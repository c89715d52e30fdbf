package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Experience string

const (
	ExperienceAdventure  Experience = "adventure"
	ExperienceOffbeat    Experience = "offbeat"
	ExperienceStaycation Experience = "staycation"
	ExperienceDefault    Experience = "default"
)

// ParseExperience accepts the four known profiles, case-insensitively.
func ParseExperience(s string) (Experience, error) {
	switch e := Experience(strings.ToLower(strings.TrimSpace(s))); e {
	case ExperienceAdventure, ExperienceOffbeat, ExperienceStaycation, ExperienceDefault:
		return e, nil
	}
	return "", fmt.Errorf("%w: unknown experience %q", ErrInvalidInput, s)
}

// Allocation splits a budget across the five planning buckets.
// It holds percentages when returned by the allocator and absolute INR
// amounts once Ceilings has been applied (or when it reports realized cost).
type Allocation struct {
	Flights    float64 `json:"flights"`
	Hotels     float64 `json:"hotels"`
	CarRentals float64 `json:"car_rentals"`
	Activities float64 `json:"activities"`
	Food       float64 `json:"food"`
}

func (a Allocation) Total() float64 {
	return a.Flights + a.Hotels + a.CarRentals + a.Activities + a.Food
}

// Ceilings turns percentages into per-bucket amounts of budget.
func (a Allocation) Ceilings(budget float64) Allocation {
	pct := func(p float64) float64 { return budget * p / 100 }
	return Allocation{
		Flights:    pct(a.Flights),
		Hotels:     pct(a.Hotels),
		CarRentals: pct(a.CarRentals),
		Activities: pct(a.Activities),
		Food:       pct(a.Food),
	}
}

type Breakdown struct {
	Flights     float64 `json:"flights"`
	Hotels      float64 `json:"hotels"`
	Attractions float64 `json:"attractions"`
	Food        float64 `json:"food"`
	Activities  float64 `json:"activities"`
	CarRentals  float64 `json:"car_rentals"`
}

func (b Breakdown) Sum() float64 {
	return b.Flights + b.Hotels + b.Attractions + b.Food + b.Activities + b.CarRentals
}

// CostEstimate is derived from an offer set; it is never stored on its own.
type CostEstimate struct {
	Total     float64   `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
	PerPerson float64   `json:"per_person"`
	PerDay    float64   `json:"per_day"`
}

type TripRequest struct {
	Destination string     `json:"destination"`
	Days        int        `json:"days"`
	People      int        `json:"people_count"`
	Budget      float64    `json:"budget"`
	Experience  Experience `json:"experience"`
}

// Validate rejects structurally invalid requests. Experience is not checked
// here: an unknown profile plans with the default split.
func (r TripRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Destination) == "":
		return fmt.Errorf("%w: destination is required", ErrInvalidInput)
	case r.Days < 1:
		return fmt.Errorf("%w: days must be >= 1, got %d", ErrInvalidInput, r.Days)
	case r.People < 1:
		return fmt.Errorf("%w: people_count must be >= 1, got %d", ErrInvalidInput, r.People)
	case !(r.Budget > 0) || math.IsInf(r.Budget, 1):
		return fmt.Errorf("%w: budget must be positive, got %v", ErrInvalidInput, r.Budget)
	}
	return nil
}

type PlannedTrip struct {
	Flights    Offers `json:"flights"`
	Hotels     Offers `json:"hotels"`
	CarRentals Offers `json:"car_rentals"`
	Places     Offers `json:"places"`
	Food       Offers `json:"food"`

	TotalEstimatedCost float64 `json:"totalEstimatedCost"`
	BudgetRemaining    float64 `json:"budgetRemaining"`
	// BudgetAllocation is the realized cost per bucket; activities covers
	// attractions and bookable activities together.
	BudgetAllocation Allocation   `json:"budgetAllocation"`
	AllocationPct    Allocation   `json:"allocationPercent"`
	Estimate         CostEstimate `json:"estimate"`
	Trimmed          bool         `json:"trimmed"`
	CheckIn          string       `json:"checkIn"`
	CheckOut         string       `json:"checkOut"`
}

// Count is the number of offers across all lists.
func (p PlannedTrip) Count() int {
	return len(p.Flights) + len(p.Hotels) + len(p.CarRentals) + len(p.Places) + len(p.Food)
}

/********** persisted records **********/

type StoredTripRequest struct {
	ID string `json:"id"`
	TripRequest
	CreatedAt   time.Time `json:"created_at"`
	ItineraryID *string   `json:"itinerary_id,omitempty"`
}

type Itinerary struct {
	ID            string      `json:"id"`
	TripRequestID string      `json:"trip_request_id"`
	Summary       PlannedTrip `json:"summary_json"`
	TotalEstimate float64     `json:"total_estimate"`
	CreatedAt     time.Time   `json:"created_at"`
}

type TripSummary struct {
	TotalActivities   int     `json:"totalActivities"`
	TotalCost         float64 `json:"totalCost"`
	BudgetRemaining   float64 `json:"budgetRemaining"`
	BudgetUtilization string  `json:"budgetUtilization"`
}

// Summarize reports how much of budget the plan uses.
func Summarize(p PlannedTrip, budget float64) TripSummary {
	return TripSummary{
		TotalActivities:   p.Count(),
		TotalCost:         p.TotalEstimatedCost,
		BudgetRemaining:   p.BudgetRemaining,
		BudgetUtilization: fmt.Sprintf("%.2f%%", p.TotalEstimatedCost/budget*100),
	}
}
