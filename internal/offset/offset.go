// Package offset implements the loss-offsetting aggregation: it buckets
// realized results and ancillary income into jurisdiction reporting
// categories and computes the conceptual net summary figures, including the
// capped derivative-loss rule.
package offset

import (
	"github.com/shopspring/decimal"

	"github.com/mvdbosch/kapgains/internal/model"
)

// IncomeItem is one ancillary income amount feeding the "other income" /
// "other loss" pot: interest, non-fund dividends, taxable stock-dividend
// income, accrued interest paid, capital-repayment excess.
type IncomeItem struct {
	EventID string
	Source  model.EventKind
	Amount  decimal.Decimal
}

// FundItem is one fund distribution or Vorabpauschale amount with its
// partial exemption already applied.
type FundItem struct {
	EventID       string
	AssetID       string
	Gross         decimal.Decimal
	ExemptionRate decimal.Decimal
	Net           decimal.Decimal
}

// Config controls the derivative-loss cap. The cap is a negative floor
// applied to the conceptual derivative net; the form-reported gross loss
// stays uncapped.
type Config struct {
	CapEnabled        bool
	DerivativeLossCap decimal.Decimal
}

// DefaultConfig enables the statutory 20,000 EUR derivative-loss floor.
func DefaultConfig() Config {
	return Config{
		CapEnabled:        true,
		DerivativeLossCap: decimal.NewFromInt(-20000),
	}
}

// Aggregate rebuilds the offsetting result from scratch for one run.
func Aggregate(records []model.RealizedGainLoss, income []IncomeItem, distributions, vorab []FundItem, cfg Config) model.OffsetResult {
	categories := map[model.TaxCategory]decimal.Decimal{
		model.TaxEquityGain:     decimal.Zero,
		model.TaxEquityLoss:     decimal.Zero,
		model.TaxDerivativeGain: decimal.Zero,
		model.TaxDerivativeLoss: decimal.Zero,
		model.TaxOtherIncome:    decimal.Zero,
		model.TaxOtherLoss:      decimal.Zero,
		model.TaxFundIncome:     decimal.Zero,
		model.TaxPrivateSale:    decimal.Zero,
		model.TaxPrivateExempt:  decimal.Zero,
	}

	fundNet := decimal.Zero
	privateNet := decimal.Zero
	for _, rec := range records {
		switch rec.TaxCategory {
		case model.TaxEquityGain, model.TaxDerivativeGain, model.TaxOtherIncome:
			categories[rec.TaxCategory] = categories[rec.TaxCategory].Add(rec.Gross)
		case model.TaxEquityLoss, model.TaxDerivativeLoss, model.TaxOtherLoss:
			// Loss categories accumulate as positive (absolute) totals,
			// the way they appear on the form.
			categories[rec.TaxCategory] = categories[rec.TaxCategory].Add(rec.Gross.Abs())
		case model.TaxFundIncome:
			// Fund results enter exemption-adjusted and stay out of the
			// combined line.
			categories[rec.TaxCategory] = categories[rec.TaxCategory].Add(rec.Net)
			fundNet = fundNet.Add(rec.Net)
		case model.TaxPrivateSale:
			categories[rec.TaxCategory] = categories[rec.TaxCategory].Add(rec.Gross)
			privateNet = privateNet.Add(rec.Gross)
		case model.TaxPrivateExempt:
			categories[rec.TaxCategory] = categories[rec.TaxCategory].Add(rec.Gross)
		}
	}

	for _, item := range income {
		if item.Amount.IsNegative() {
			categories[model.TaxOtherLoss] = categories[model.TaxOtherLoss].Add(item.Amount.Abs())
		} else {
			categories[model.TaxOtherIncome] = categories[model.TaxOtherIncome].Add(item.Amount)
		}
	}

	for _, item := range distributions {
		categories[model.TaxFundIncome] = categories[model.TaxFundIncome].Add(item.Net)
		fundNet = fundNet.Add(item.Net)
	}
	for _, item := range vorab {
		categories[model.TaxFundIncome] = categories[model.TaxFundIncome].Add(item.Net)
		fundNet = fundNet.Add(item.Net)
	}

	result := model.OffsetResult{
		Categories:    categories,
		FundIncomeNet: fundNet,
		PrivateNet:    privateNet,
	}

	result.NetEquity = categories[model.TaxEquityGain].Sub(categories[model.TaxEquityLoss])
	result.NetOther = categories[model.TaxOtherIncome].Sub(categories[model.TaxOtherLoss])
	result.NetDerivativesUncapped = categories[model.TaxDerivativeGain].Sub(categories[model.TaxDerivativeLoss])

	// One combined line sums equity gains, derivative gains and other
	// income, minus equity losses and other losses. Derivative losses are
	// deliberately excluded here: they offset only within their own
	// bucket.
	result.CombinedIncome = categories[model.TaxEquityGain].
		Add(categories[model.TaxDerivativeGain]).
		Add(categories[model.TaxOtherIncome]).
		Sub(categories[model.TaxEquityLoss]).
		Sub(categories[model.TaxOtherLoss])

	result.NetDerivatives = result.NetDerivativesUncapped
	if cfg.CapEnabled && result.NetDerivativesUncapped.LessThan(cfg.DerivativeLossCap) {
		result.NetDerivatives = cfg.DerivativeLossCap
	}

	return result
}
