package fare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	cdg     = "Charles de Gaulle Airport (CDG)"
	orly    = "Aéroport d'Orly, Terminal 4"
	rivoli  = "10 Rue de Rivoli, 75001 Paris"
	champs  = "Avenue des Champs-Élysées, 75008 Paris"
	lille   = "Gare Lille Flandres, 59000 Lille"
	versail = "Château de Versailles, 78000 Versailles"
)

func TestCalculator_Quote(t *testing.T) {
	calc := NewCalculator(DefaultRates())

	tests := []struct {
		name     string
		req      Request
		wantRule Rule
		wantFare int64
	}{
		{
			name:     "CDG to Paris is fixed",
			req:      Request{Origin: cdg, Destination: rivoli, Passengers: 2},
			wantRule: RuleCDGFixed,
			wantFare: 7500,
		},
		{
			name:     "Paris to CDG is fixed in either direction",
			req:      Request{Origin: champs, Destination: "Roissy terminal 2E", Passengers: 1},
			wantRule: RuleCDGFixed,
			wantFare: 7500,
		},
		{
			name:     "Orly to Paris is fixed",
			req:      Request{Origin: orly, Destination: "12 Rue Oberkampf 75011", Passengers: 3},
			wantRule: RuleOrlyFixed,
			wantFare: 6500,
		},
		{
			name:     "Paris 16e bis postal code counts as Paris",
			req:      Request{Origin: "ORY", Destination: "Avenue Foch, 75116 Paris", Passengers: 1},
			wantRule: RuleOrlyFixed,
			wantFare: 6500,
		},
		{
			name:     "airport outside Paris uses the long bucket",
			req:      Request{Origin: cdg, Destination: lille, Passengers: 2},
			wantRule: RuleStandardLong,
			// 1000 + 40 * 200
			wantFare: 9000,
		},
		{
			name:     "no airport uses the short bucket",
			req:      Request{Origin: rivoli, Destination: versail, Passengers: 4},
			wantRule: RuleStandardShort,
			// 1000 + 15 * 200
			wantFare: 4000,
		},
		{
			name:     "unknown places fall through to standard",
			req:      Request{Origin: "somewhere", Destination: "elsewhere", Passengers: 1},
			wantRule: RuleStandardShort,
			wantFare: 4000,
		},
		{
			name:     "passengers beyond four pay a surcharge",
			req:      Request{Origin: rivoli, Destination: versail, Passengers: 6},
			wantRule: RuleStandardShort,
			wantFare: 4000 + 2*500,
		},
		{
			name:     "passenger count above eight is clamped",
			req:      Request{Origin: rivoli, Destination: versail, Passengers: 20},
			wantRule: RuleStandardShort,
			wantFare: 4000 + 4*500,
		},
		{
			name:     "add-ons stack on a fixed fare",
			req:      Request{Origin: cdg, Destination: rivoli, Passengers: 6, AddOns: AddOns{ChildSeat: true, Wheelchair: true}},
			wantRule: RuleCDGFixed,
			wantFare: 7500 + 1000 + 1500,
		},
		{
			name:     "add-ons stack on a standard fare",
			req:      Request{Origin: cdg, Destination: lille, Passengers: 5, AddOns: AddOns{ExtraWaiting: true}},
			wantRule: RuleStandardLong,
			wantFare: 9000 + 500 + 2000,
		},
		{
			name:     "empty endpoints still price",
			req:      Request{},
			wantRule: RuleStandardShort,
			wantFare: 4000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Quote(tt.req)
			assert.Equal(t, tt.wantRule, got.Rule)
			assert.Equal(t, tt.wantFare, got.Total.Amount)
			assert.Equal(t, "EUR", got.Total.Currency)
		})
	}
}

func TestCalculator_Price_FixedFareIgnoresPassengers(t *testing.T) {
	calc := NewCalculator(DefaultRates())

	six := calc.Price(cdg, rivoli, 6, AddOns{})
	two := calc.Price(cdg, rivoli, 2, AddOns{})

	assert.Equal(t, int64(7500), six.Amount)
	assert.Equal(t, two, six)
}

func TestCalculator_Price_SurchargeStepIsExact(t *testing.T) {
	calc := NewCalculator(DefaultRates())

	four := calc.Price(rivoli, lille, 4, AddOns{})
	five := calc.Price(rivoli, lille, 5, AddOns{})

	assert.Equal(t, DefaultRates().PerExtraPassenger, five.Amount-four.Amount)
}

func TestCalculator_Price_Idempotent(t *testing.T) {
	calc := NewCalculator(DefaultRates())
	addOns := AddOns{ChildSeat: true}

	first := calc.Price(orly, champs, 3, addOns)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, calc.Price(orly, champs, 3, addOns))
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, ClampPassengers(0))
	assert.Equal(t, 8, ClampPassengers(9))
	assert.Equal(t, 5, ClampPassengers(5))
	assert.Equal(t, 0, ClampLuggage(-3))
	assert.Equal(t, 10, ClampLuggage(11))
}
