package models

import "github.com/shopspring/decimal"

func init() {
	// Totals travel as JSON numbers, both from the backend and to the browser.
	decimal.MarshalJSONWithoutQuotes = true
}

// Money is a monetary amount. The backend sends either numbers or numeric strings.
type Money = decimal.Decimal

// NewMoney builds a Money value from a float, rounded to cents.
func NewMoney(v float64) Money {
	return decimal.NewFromFloat(v).Round(2)
}
