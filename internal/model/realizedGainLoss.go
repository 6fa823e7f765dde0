package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RealizationKind describes how a lot slice was closed out.
type RealizationKind string

const (
	RealizationSaleOfLong         RealizationKind = "sale_of_long"
	RealizationCoverOfShort       RealizationKind = "cover_of_short"
	RealizationCashMerger         RealizationKind = "cash_merger_disposal"
	RealizationOptionExpiredLong  RealizationKind = "option_expired_long"
	RealizationOptionExpiredShort RealizationKind = "option_expired_short"
	RealizationTradeCloseLong     RealizationKind = "trade_close_long"
	RealizationTradeCloseShort    RealizationKind = "trade_close_short"
)

// ParseRealizationKind parses a stored realization kind string.
func ParseRealizationKind(s string) (RealizationKind, error) {
	switch RealizationKind(s) {
	case RealizationSaleOfLong, RealizationCoverOfShort, RealizationCashMerger,
		RealizationOptionExpiredLong, RealizationOptionExpiredShort,
		RealizationTradeCloseLong, RealizationTradeCloseShort:
		return RealizationKind(s), nil
	}
	return "", fmt.Errorf("unknown realization kind %q", s)
}

// TaxCategory is the jurisdiction reporting bucket a realized amount or
// income item is assigned to.
type TaxCategory string

const (
	TaxEquityGain     TaxCategory = "equity_gain"
	TaxEquityLoss     TaxCategory = "equity_loss"
	TaxDerivativeGain TaxCategory = "derivative_gain"
	TaxDerivativeLoss TaxCategory = "derivative_loss"
	TaxOtherIncome    TaxCategory = "other_income"
	TaxOtherLoss      TaxCategory = "other_loss"
	TaxFundIncome     TaxCategory = "fund_income"
	TaxPrivateSale    TaxCategory = "private_sale"
	TaxPrivateExempt  TaxCategory = "private_exempt"
)

// ParseTaxCategory parses a stored tax category string.
func ParseTaxCategory(s string) (TaxCategory, error) {
	switch TaxCategory(s) {
	case TaxEquityGain, TaxEquityLoss, TaxDerivativeGain, TaxDerivativeLoss,
		TaxOtherIncome, TaxOtherLoss, TaxFundIncome, TaxPrivateSale, TaxPrivateExempt:
		return TaxCategory(s), nil
	}
	return "", fmt.Errorf("unknown tax category %q", s)
}

// RealizedGainLoss is the immutable result of closing one lot slice. Exactly
// one record is created per consumed slice and never mutated afterwards.
type RealizedGainLoss struct {
	ID      string `json:"id"`
	RunID   string `json:"runId,omitempty"`
	EventID string `json:"eventId"`
	AssetID string `json:"assetId"`

	// Category is the asset category at realization time.
	Category AssetCategory `json:"category"`

	AcquisitionDate time.Time       `json:"acquisitionDate"`
	RealizationDate time.Time       `json:"realizationDate"`
	Kind            RealizationKind `json:"kind"`

	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unitCost"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	UnitProceeds  decimal.Decimal `json:"unitProceeds"`
	TotalProceeds decimal.Decimal `json:"totalProceeds"`
	Gross         decimal.Decimal `json:"gross"`

	HoldingDays int         `json:"holdingDays"`
	TaxCategory TaxCategory `json:"taxCategory"`

	// ExemptionRate and Net are populated only for fund-category assets:
	// Net is the gross amount reduced by the partial exemption.
	ExemptionRate decimal.Decimal `json:"exemptionRate"`
	Net           decimal.Decimal `json:"net"`

	// WriterIncome marks a short-option cover that nets positive
	// (option premium earned as writer).
	WriterIncome bool `json:"writerIncome,omitempty"`

	// PeriodExempt marks a private-sale disposal held longer than a year,
	// which falls outside the taxable window.
	PeriodExempt bool `json:"periodExempt,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
}
