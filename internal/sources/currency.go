package sources

import (
	"math"
	"strings"
)

// inrPer is the fixed conversion table into INR. Unknown currencies are
// taken as already being INR.
var inrPer = map[string]float64{
	"INR": 1,
	"USD": 83,
	"EUR": 90,
}

// ToINR converts amount and rounds to whole rupees. Negative and
// non-finite amounts clamp to 0.
func ToINR(amount float64, currency string) float64 {
	rate, ok := inrPer[strings.ToUpper(strings.TrimSpace(currency))]
	if !ok {
		rate = 1
	}
	v := math.Round(amount * rate)
	if !(v >= 0) || math.IsInf(v, 1) {
		return 0
	}
	return v
}
