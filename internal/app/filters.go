package app

import (
	"sort"
	"strings"

	"trip_planner/internal/domain"
)

// Category caps.
const (
	maxFlights       = 3
	maxHotels        = 5
	maxCarRentals    = 5
	maxPlaces        = 10
	maxPlacesRelaxed = 8
	maxFood          = 15
	maxFoodRelaxed   = 12
	mealsPerDay      = 3
)

// The filters below drop offers over their ceiling, order the rest for the
// experience, and cap the list. Sorting is stable, so input order breaks
// any remaining tie. Staycation and default share the last branch.

func FilterFlights(offers domain.Offers, ceiling float64, exp domain.Experience) domain.Offers {
	out := within(offers, func(o domain.Offer) bool { return cost(o) <= ceiling })
	switch exp {
	case domain.ExperienceAdventure, domain.ExperienceOffbeat:
		sortBy(out, func(a, b domain.Offer) bool { return cost(a) < cost(b) })
	}
	return limit(out, maxFlights)
}

func FilterHotels(offers domain.Offers, ceiling float64, exp domain.Experience) domain.Offers {
	out := within(offers, func(o domain.Offer) bool { return cost(o) <= ceiling })
	if exp == domain.ExperienceAdventure {
		sortBy(out, func(a, b domain.Offer) bool { return cost(a) < cost(b) })
	} else {
		sortBy(out, byRatingDesc)
	}
	return limit(out, maxHotels)
}

func FilterCarRentals(offers domain.Offers, ceiling float64, exp domain.Experience) domain.Offers {
	out := within(offers, func(o domain.Offer) bool { return cost(o) <= ceiling })
	switch exp {
	case domain.ExperienceAdventure:
		suv := func(o domain.Offer) bool { return carTypeHas(o, "suv") }
		sortBy(out, func(a, b domain.Offer) bool {
			if sa, sb := suv(a), suv(b); sa != sb {
				return sa
			}
			return cost(a) < cost(b)
		})
	case domain.ExperienceOffbeat:
		sortBy(out, byRatingDesc)
	default:
		comfy := func(o domain.Offer) bool { return carTypeHas(o, "luxury") || carTypeHas(o, "sedan") }
		sortBy(out, func(a, b domain.Offer) bool {
			if ca, cb := comfy(a), comfy(b); ca != cb {
				return ca
			}
			return rating(a) > rating(b)
		})
	}
	return limit(out, maxCarRentals)
}

// FilterPlaces ranks the pooled attractions and activities. Their cost is
// per person, so the check compares party totals.
func FilterPlaces(offers domain.Offers, ceiling float64, exp domain.Experience, people int) domain.Offers {
	party := float64(people)
	out := within(offers, func(o domain.Offer) bool { return cost(o)*party <= ceiling*party })
	free := func(o domain.Offer) bool { return cost(o) == 0 }
	switch exp {
	case domain.ExperienceAdventure:
		sortBy(out, func(a, b domain.Offer) bool {
			if fa, fb := free(a), free(b); fa != fb {
				return fb
			}
			return rating(a) > rating(b)
		})
		return limit(out, maxPlaces)
	case domain.ExperienceOffbeat:
		// free places with good ratings read as hidden gems
		uniqueness := func(o domain.Offer) float64 {
			if free(o) {
				return rating(o) * 1.2
			}
			return rating(o)
		}
		sortBy(out, func(a, b domain.Offer) bool { return uniqueness(a) > uniqueness(b) })
		return limit(out, maxPlaces)
	default:
		sortBy(out, func(a, b domain.Offer) bool {
			if fa, fb := free(a), free(b); fa != fb {
				return fa
			}
			return rating(a) > rating(b)
		})
		return limit(out, maxPlacesRelaxed)
	}
}

// FilterFood spreads the food share over three meals a day for the whole
// party and keeps places whose per-person price fits one meal.
func FilterFood(offers domain.Offers, ceiling float64, exp domain.Experience, people, days int) domain.Offers {
	perMeal := ceiling * float64(people) / float64(days*mealsPerDay)
	out := within(offers, func(o domain.Offer) bool { return cost(o) <= perMeal })
	switch exp {
	case domain.ExperienceAdventure:
		sortBy(out, func(a, b domain.Offer) bool { return priceLevel(a) < priceLevel(b) })
		return limit(out, maxFood)
	case domain.ExperienceOffbeat:
		score := func(o domain.Offer) float64 {
			s := rating(o)
			if f, ok := o.(domain.Food); ok && strings.Contains(strings.ToLower(f.Cuisine), "local") {
				s++
			}
			return s
		}
		sortBy(out, func(a, b domain.Offer) bool { return score(a) > score(b) })
		return limit(out, maxFood)
	default:
		sortBy(out, byRatingDesc)
		return limit(out, maxFoodRelaxed)
	}
}

/********** helpers **********/

func within(offers domain.Offers, keep func(domain.Offer) bool) domain.Offers {
	out := make(domain.Offers, 0, len(offers))
	for _, o := range offers {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func sortBy(list domain.Offers, less func(a, b domain.Offer) bool) {
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}

func limit(list domain.Offers, n int) domain.Offers {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func byRatingDesc(a, b domain.Offer) bool { return rating(a) > rating(b) }

func cost(o domain.Offer) float64   { return o.Common().EstimatedCost }
func rating(o domain.Offer) float64 { return o.Common().RatingOrZero() }

func carTypeHas(o domain.Offer, word string) bool {
	c, ok := o.(domain.CarRental)
	return ok && strings.Contains(strings.ToLower(c.CarType), word)
}

// priceLevel treats a missing level as moderate (2).
func priceLevel(o domain.Offer) int {
	if f, ok := o.(domain.Food); ok && f.PriceLevel != nil {
		return *f.PriceLevel
	}
	return 2
}
