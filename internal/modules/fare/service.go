// README: Fare calculator: fixed airport routes, bucketed standard fare, additive add-ons.
package fare

import (
	"regexp"
	"strings"

	"vtc/internal/types"
)

var (
	cdgPattern     = regexp.MustCompile(`\b(cdg|roissy)\b|charles[\s-]*de[\s-]*gaulle`)
	orlyPattern    = regexp.MustCompile(`\b(orly|ory)\b`)
	parisPostal    = regexp.MustCompile(`\b75(0(0[1-9]|1[0-9]|20)|116)\b`)
	airportKeyword = regexp.MustCompile(`airport|a[ée]roport`)
)

// Calculator prices trip requests. It holds no mutable state and is safe
// for concurrent use.
type Calculator struct {
	rates Rates
}

func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Price returns the total fare for a trip.
func (c *Calculator) Price(origin, destination string, passengers int, addOns AddOns) types.Money {
	return c.Quote(Request{
		Origin:      origin,
		Destination: destination,
		Passengers:  passengers,
		AddOns:      addOns,
	}).Total
}

// Quote prices a trip and itemises how the total was reached. A fixed-route
// fare replaces the whole standard computation, passenger surcharge included;
// add-ons apply on top of whichever base was selected.
func (c *Calculator) Quote(req Request) Quote {
	from := normalize(req.Origin)
	to := normalize(req.Destination)
	passengers := ClampPassengers(req.Passengers)

	breakdown := make(map[string]int64)
	var rule Rule

	switch {
	case eitherMatches(cdgPattern, from, to) && eitherMatches(parisPostal, from, to):
		rule = RuleCDGFixed
		breakdown["fixed"] = c.rates.CDGFixed
	case eitherMatches(orlyPattern, from, to) && eitherMatches(parisPostal, from, to):
		rule = RuleOrlyFixed
		breakdown["fixed"] = c.rates.OrlyFixed
	default:
		km := c.rates.ShortTripKm
		rule = RuleStandardShort
		if eitherMatches(airportKeyword, from, to) {
			km = c.rates.LongTripKm
			rule = RuleStandardLong
		}
		breakdown["base"] = c.rates.Base
		breakdown["distance"] = km * c.rates.PerKm
		if extra := passengers - c.rates.IncludedSeats; extra > 0 {
			breakdown["passenger_surcharge"] = int64(extra) * c.rates.PerExtraPassenger
		}
	}

	if req.AddOns.ChildSeat {
		breakdown["child_seat"] = c.rates.ChildSeat
	}
	if req.AddOns.Wheelchair {
		breakdown["wheelchair"] = c.rates.Wheelchair
	}
	if req.AddOns.ExtraWaiting {
		breakdown["extra_waiting"] = c.rates.ExtraWaiting
	}

	total := types.Money{Currency: c.rates.Currency}
	for _, v := range breakdown {
		total.Amount += v
	}
	return Quote{Total: total, Rule: rule, Breakdown: breakdown}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func eitherMatches(re *regexp.Regexp, a, b string) bool {
	return re.MatchString(a) || re.MatchString(b)
}
