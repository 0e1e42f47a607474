// Package optimization provides shared data structures for optimization results.
package optimization

import "github.com/shopspring/decimal"

// Summary captures the result of a single break-even search.
type Summary struct {
	Field          string          `json:"field"`
	Original       decimal.Decimal `json:"original"`
	Value          decimal.Decimal `json:"value"`
	Lower          decimal.Decimal `json:"lower"`
	Upper          decimal.Decimal `json:"upper"`
	Profit         decimal.Decimal `json:"profit"`
	RequiredProfit decimal.Decimal `json:"requiredProfit"`
	Headroom       decimal.Decimal `json:"headroom"`
	Iterations     int             `json:"iterations"`
	Converged      bool            `json:"converged"`
	Notes          []string        `json:"notes,omitempty"`
}
