// README: Fare request/quote definitions and the rate card.
package fare

import "vtc/internal/types"

// Rule names which branch produced the base fare.
type Rule string

const (
	RuleCDGFixed      Rule = "cdg_fixed"
	RuleOrlyFixed     Rule = "orly_fixed"
	RuleStandardLong  Rule = "standard_long"
	RuleStandardShort Rule = "standard_short"
)

type AddOns struct {
	ChildSeat    bool `json:"child_seat"`
	Wheelchair   bool `json:"wheelchair"`
	ExtraWaiting bool `json:"extra_waiting"`
}

type Request struct {
	Origin      string
	Destination string
	Passengers  int
	AddOns      AddOns
}

type Quote struct {
	Total     types.Money      `json:"total"`
	Rule      Rule             `json:"rule"`
	Breakdown map[string]int64 `json:"breakdown"`
}

// Rates is the rate card in currency minor units. Distances are in km.
type Rates struct {
	Currency string

	CDGFixed  int64
	OrlyFixed int64

	Base              int64
	PerKm             int64
	LongTripKm        int64
	ShortTripKm       int64
	IncludedSeats     int
	PerExtraPassenger int64

	ChildSeat    int64
	Wheelchair   int64
	ExtraWaiting int64
}

func DefaultRates() Rates {
	return Rates{
		Currency:          "EUR",
		CDGFixed:          7500,
		OrlyFixed:         6500,
		Base:              1000,
		PerKm:             200,
		LongTripKm:        40,
		ShortTripKm:       15,
		IncludedSeats:     4,
		PerExtraPassenger: 500,
		ChildSeat:         1000,
		Wheelchair:        1500,
		ExtraWaiting:      2000,
	}
}

const (
	MinPassengers = 1
	MaxPassengers = 8
	MinLuggage    = 0
	MaxLuggage    = 10
)

// ClampPassengers bounds a passenger count to what a single vehicle carries.
func ClampPassengers(n int) int {
	return clamp(n, MinPassengers, MaxPassengers)
}

func ClampLuggage(n int) int {
	return clamp(n, MinLuggage, MaxLuggage)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
