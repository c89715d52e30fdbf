package app

import "trip_planner/internal/domain"

// allocations is the budget split per experience, in percent. This is
// product policy: changing a row changes what travelers get.
var allocations = map[domain.Experience]domain.Allocation{
	domain.ExperienceAdventure:  {Flights: 25, Hotels: 15, CarRentals: 15, Activities: 30, Food: 15},
	domain.ExperienceOffbeat:    {Flights: 20, Hotels: 25, CarRentals: 15, Activities: 25, Food: 15},
	domain.ExperienceStaycation: {Flights: 15, Hotels: 45, CarRentals: 10, Activities: 15, Food: 15},
	domain.ExperienceDefault:    {Flights: 25, Hotels: 25, CarRentals: 15, Activities: 20, Food: 15},
}

// Allocate returns the percentage split for exp; unknown profiles get the
// default split.
func Allocate(exp domain.Experience) domain.Allocation {
	if a, ok := allocations[exp]; ok {
		return a
	}
	return allocations[domain.ExperienceDefault]
}

// profileLabel keeps metric labels to the known profiles.
func profileLabel(exp domain.Experience) string {
	if _, ok := allocations[exp]; ok {
		return string(exp)
	}
	return string(domain.ExperienceDefault)
}
