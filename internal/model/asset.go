package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AssetCategory classifies an asset for tax purposes. The category decides
// which reporting bucket a realized gain or loss lands in.
type AssetCategory string

const (
	CategoryEquity  AssetCategory = "equity"
	CategoryBond    AssetCategory = "bond"
	CategoryFund    AssetCategory = "fund"
	CategoryOption  AssetCategory = "option"
	CategoryCFD     AssetCategory = "cfd"
	CategoryPrivate AssetCategory = "private"
)

// ParseAssetCategory parses a stored category string.
func ParseAssetCategory(s string) (AssetCategory, error) {
	switch AssetCategory(s) {
	case CategoryEquity, CategoryBond, CategoryFund, CategoryOption, CategoryCFD, CategoryPrivate:
		return AssetCategory(s), nil
	}
	return "", fmt.Errorf("unknown asset category %q", s)
}

// IsDerivative reports whether gains/losses of this category belong to the
// derivative (Termingeschäfte) reporting bucket.
func (c AssetCategory) IsDerivative() bool {
	return c == CategoryOption || c == CategoryCFD
}

// FundSubtype determines the partial-exemption rate applied to fund gains,
// losses, distributions and Vorabpauschale amounts.
type FundSubtype string

const (
	FundEquity             FundSubtype = "equity_fund"
	FundMixed              FundSubtype = "mixed_fund"
	FundDomesticRealEstate FundSubtype = "domestic_real_estate_fund"
	FundForeignRealEstate  FundSubtype = "foreign_real_estate_fund"
	FundOther              FundSubtype = "other_fund"
)

// ExemptionRate returns the partial-exemption rate for the subtype.
// Unclassified subtypes get no exemption.
func (f FundSubtype) ExemptionRate() decimal.Decimal {
	switch f {
	case FundEquity:
		return decimal.RequireFromString("0.30")
	case FundMixed:
		return decimal.RequireFromString("0.15")
	case FundDomesticRealEstate:
		return decimal.RequireFromString("0.60")
	case FundForeignRealEstate:
		return decimal.RequireFromString("0.80")
	default:
		return decimal.Zero
	}
}

// Asset represents one logical instrument (master data plus the broker's
// reported start-of-year and end-of-year positions).
type Asset struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Isin     string        `json:"isin,omitempty"`
	Symbol   string        `json:"symbol,omitempty"`
	Category AssetCategory `json:"category"`

	// Multiplier is the per-unit contract multiplier for contract-based
	// instruments (e.g. 100 for standard equity options). One otherwise.
	Multiplier decimal.Decimal `json:"multiplier"`

	// FundSubtype is set only for CategoryFund assets.
	FundSubtype FundSubtype `json:"fundSubtype,omitempty"`

	// Broker-reported positions used for ledger seeding and reconciliation.
	SOYQuantity          decimal.Decimal `json:"soyQuantity"`
	SOYCostBasis         decimal.Decimal `json:"soyCostBasis"`
	SOYCostBasisCurrency string          `json:"soyCostBasisCurrency,omitempty"`
	EOYQuantity          decimal.Decimal `json:"eoyQuantity"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// EffectiveMultiplier returns the contract multiplier, defaulting to one
// when the stored value is missing or zero.
func (a Asset) EffectiveMultiplier() decimal.Decimal {
	if a.Multiplier.IsZero() {
		return decimal.NewFromInt(1)
	}
	return a.Multiplier
}
