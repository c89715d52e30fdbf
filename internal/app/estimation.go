package app

import (
	"fmt"
	"sort"

	"trip_planner/internal/domain"
)

// Rollup prices an offer set for a party. Flights, hotels and car rentals
// are already quoted for the whole trip; attractions, food and activities
// are per person. people and days must be >= 1.
func Rollup(offers domain.Offers, people, days int) domain.CostEstimate {
	var b domain.Breakdown
	party := float64(people)
	for _, o := range offers {
		c := o.Common().EstimatedCost
		switch o.(type) {
		case domain.Flight:
			b.Flights += c
		case domain.Hotel:
			b.Hotels += c
		case domain.CarRental:
			b.CarRentals += c
		case domain.Attraction:
			b.Attractions += c * party
		case domain.Food:
			b.Food += c * party
		case domain.Activity:
			b.Activities += c * party
		default:
			panic(fmt.Sprintf("rollup: unhandled offer %T", o))
		}
	}
	total := b.Sum()
	return domain.CostEstimate{
		Total:     total,
		Breakdown: b,
		PerPerson: total / party,
		PerDay:    total / float64(days),
	}
}

// trimPriority orders categories from most to least essential.
var trimPriority = map[domain.Category]int{
	domain.CategoryFlight:     1,
	domain.CategoryHotel:      2,
	domain.CategoryCarRental:  3,
	domain.CategoryAttraction: 4,
	domain.CategoryFood:       5,
	domain.CategoryActivity:   6,
}

// GreedyTrim keeps offers in priority order while they fit the budget. It is
// a single greedy pass: an offer that does not fit is skipped and later,
// cheaper ones may still be taken. It does not search for the best subset.
// The input is never modified.
func GreedyTrim(offers domain.Offers, budget float64, people, days int) domain.Offers {
	if Rollup(offers, people, days).Total <= budget {
		return offers
	}
	ordered := make(domain.Offers, len(offers))
	copy(ordered, offers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return trimPriority[ordered[i].Category()] < trimPriority[ordered[j].Category()]
	})

	kept := make(domain.Offers, 0, len(ordered))
	spent := 0.0
	for _, o := range ordered {
		c := Rollup(domain.Offers{o}, people, days).Total
		if spent+c <= budget {
			kept = append(kept, o)
			spent += c
		}
	}
	return kept
}
