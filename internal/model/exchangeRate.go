package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is one stored ECB daily reference rate: the EUR value of one
// unit of Currency on Date.
type ExchangeRate struct {
	ID       string
	Currency string
	Date     time.Time
	Rate     decimal.Decimal
}
