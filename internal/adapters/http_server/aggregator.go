package httpserver

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"trip_planner/internal/domain"
	"trip_planner/internal/sources"
)

// aggregate serves one source directly, with the same cache and fallback
// the planner uses.
func (h *Handlers) aggregate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx := r.Context()
	s := h.Sources

	var (
		offers   domain.Offers
		required []string
	)
	switch chi.URLParam(r, "category") {
	case "flights":
		required = []string{"from", "to", "date"}
		if !hasAll(w, q, required) {
			return
		}
		offers = s.Flights.Search(ctx, sources.FlightQuery{
			From: q.Get("from"), To: q.Get("to"), Date: q.Get("date"),
			ReturnDate: q.Get("returnDate"), Adults: atoi(q.Get("adults")),
		})
	case "hotels":
		required = []string{"location", "checkIn", "checkOut", "guests"}
		if !hasAll(w, q, required) {
			return
		}
		offers = s.Hotels.Search(ctx, sources.HotelQuery{
			Location: q.Get("location"), CheckIn: q.Get("checkIn"), CheckOut: q.Get("checkOut"),
			Guests: atoi(q.Get("guests")), Budget: atof(q.Get("budget")),
		})
	case "car-rentals":
		required = []string{"location", "pickUpDate", "dropOffDate"}
		if !hasAll(w, q, required) {
			return
		}
		offers = s.CarRentals.Search(ctx, sources.CarRentalQuery{
			Location: q.Get("location"), PickUpDate: q.Get("pickUpDate"), DropOffDate: q.Get("dropOffDate"),
			PickUpTime: q.Get("pickUpTime"), DropOffTime: q.Get("dropOffTime"),
			DriverAge: atoi(q.Get("driverAge")), Budget: atof(q.Get("budget")),
		})
	case "places":
		if !hasAll(w, q, []string{"location"}) {
			return
		}
		offers = s.Places.Search(ctx, sources.PlacesQuery{
			Location: q.Get("location"), Type: q.Get("type"), Budget: atof(q.Get("budget")),
		})
	case "activities":
		if !hasAll(w, q, []string{"location"}) {
			return
		}
		offers = s.Activities.Search(ctx, sources.ActivitiesQuery{Location: q.Get("location"), Budget: atof(q.Get("budget"))})
	case "food":
		if !hasAll(w, q, []string{"location"}) {
			return
		}
		offers = s.Food.Search(ctx, sources.FoodQuery{Location: q.Get("location"), Budget: atof(q.Get("budget"))})
	default:
		writeProblem(w, http.StatusNotFound, "Not Found", "unknown category")
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

// hasAll writes a 400 naming every required parameter when one is absent.
func hasAll(w http.ResponseWriter, q url.Values, names []string) bool {
	for _, n := range names {
		if strings.TrimSpace(q.Get(n)) == "" {
			label := "parameter"
			if len(names) > 1 {
				label = "parameters"
			}
			writeProblem(w, http.StatusBadRequest, "Missing parameters",
				"Missing required "+label+": "+strings.Join(names, ", "))
			return false
		}
	}
	return true
}

// atoi and atof treat unparseable input as absent.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
