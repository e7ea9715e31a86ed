// README: Common money value object used across modules.
package types

// Money holds an amount in currency minor units (cents for EUR).
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (m Money) Add(amount int64) Money {
	return Money{Amount: m.Amount + amount, Currency: m.Currency}
}
