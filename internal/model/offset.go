package model

import "github.com/shopspring/decimal"

// OffsetResult is the output of the loss-offsetting engine for one run:
// gross reporting-category totals plus the conceptual net summary figures.
// It is rebuilt from scratch on every run and never mutated afterwards.
type OffsetResult struct {
	// Categories maps each reporting category to its gross (uncapped)
	// total, exactly as it would appear on the form.
	Categories map[TaxCategory]decimal.Decimal `json:"categories"`

	// CombinedIncome is the single combined line: equity gains plus
	// derivative gains plus other income, minus equity losses and other
	// losses. Derivative losses are deliberately excluded from this line.
	CombinedIncome decimal.Decimal `json:"combinedIncome"`

	// Per-category conceptual nets (gain minus loss).
	NetEquity decimal.Decimal `json:"netEquity"`
	NetOther  decimal.Decimal `json:"netOther"`

	// NetDerivativesUncapped is the raw derivative net; NetDerivatives is
	// the same figure floored at the configured loss cap when negative.
	NetDerivativesUncapped decimal.Decimal `json:"netDerivativesUncapped"`
	NetDerivatives         decimal.Decimal `json:"netDerivatives"`

	// FundIncomeNet is the exemption-adjusted fund total (sale results,
	// distributions, Vorabpauschale). Tracked separately and excluded
	// from CombinedIncome.
	FundIncomeNet decimal.Decimal `json:"fundIncomeNet"`

	// PrivateNet is the taxable net of private-sale disposals inside the
	// one-year window.
	PrivateNet decimal.Decimal `json:"privateNet"`
}
