package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EventKind is the closed set of financial event types the engine processes.
// Dispatch is an exhaustive switch over these values; an unknown kind is a
// recoverable, logged error rather than a silent fallthrough.
type EventKind string

const (
	KindTrade              EventKind = "trade"
	KindSplit              EventKind = "split"
	KindCashMerger         EventKind = "cash_merger"
	KindStockDividend      EventKind = "stock_dividend"
	KindStockMerger        EventKind = "stock_merger"
	KindOptionExercise     EventKind = "option_exercise"
	KindOptionAssignment   EventKind = "option_assignment"
	KindOptionExpiration   EventKind = "option_expiration"
	KindDividend           EventKind = "dividend"
	KindInterest           EventKind = "interest"
	KindWithholdingTax     EventKind = "withholding_tax"
	KindFee                EventKind = "fee"
	KindCurrencyConversion EventKind = "currency_conversion"
	KindCapitalRepayment   EventKind = "capital_repayment"
	KindFundDistribution   EventKind = "fund_distribution"
	KindVorabpauschale     EventKind = "vorabpauschale"
	KindAccruedInterest    EventKind = "accrued_interest"
)

// ParseEventKind parses a stored event kind string.
func ParseEventKind(s string) (EventKind, error) {
	switch EventKind(s) {
	case KindTrade, KindSplit, KindCashMerger, KindStockDividend, KindStockMerger,
		KindOptionExercise, KindOptionAssignment, KindOptionExpiration,
		KindDividend, KindInterest, KindWithholdingTax, KindFee,
		KindCurrencyConversion, KindCapitalRepayment, KindFundDistribution,
		KindVorabpauschale, KindAccruedInterest:
		return EventKind(s), nil
	}
	return "", fmt.Errorf("unknown event kind %q", s)
}

// TradeSide distinguishes the four trade directions.
type TradeSide string

const (
	SideBuy   TradeSide = "buy"
	SideSell  TradeSide = "sell"
	SideShort TradeSide = "short"
	SideCover TradeSide = "cover"
)

// ParseTradeSide parses a stored trade side string.
func ParseTradeSide(s string) (TradeSide, error) {
	switch TradeSide(s) {
	case SideBuy, SideSell, SideShort, SideCover:
		return TradeSide(s), nil
	case "":
		return "", nil
	}
	return "", fmt.Errorf("unknown trade side %q", s)
}

// Event is one already-parsed financial event from the broker history.
// Kind decides which of the optional fields are meaningful.
type Event struct {
	ID string `json:"id"`

	// TransactionID is the broker-assigned transaction identifier. Brokers
	// assign these sequentially, so they approximate true intra-day order
	// and serve as the primary same-date tiebreak.
	TransactionID string `json:"transactionId"`

	AssetID string    `json:"assetId"`
	Date    time.Time `json:"date"`
	Kind    EventKind `json:"kind"`
	Side    TradeSide `json:"side,omitempty"`

	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`

	// Amount is the event's gross monetary amount in the reporting
	// currency (EUR): trade net consideration including commission,
	// dividend/interest amount, merger consideration, and so on.
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
	Fees     decimal.Decimal `json:"fees"`

	// Ratio carries the split ratio for KindSplit and the share exchange
	// ratio for KindStockMerger.
	Ratio decimal.Decimal `json:"ratio"`

	// CashPerShare is the per-unit cash consideration for KindCashMerger.
	CashPerShare decimal.Decimal `json:"cashPerShare"`

	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// LedgerLess reports whether the event kind is processed without a position
// ledger (plain income and cash movements).
func (k EventKind) LedgerLess() bool {
	switch k {
	case KindDividend, KindInterest, KindWithholdingTax, KindFee,
		KindCurrencyConversion, KindFundDistribution, KindVorabpauschale,
		KindAccruedInterest:
		return true
	}
	return false
}
