// Package fifo implements the per-asset lot ledger. Each ledger holds the
// ordered long and short lots of one asset and consumes them oldest-first
// on disposal and cover events, producing one realized gain/loss record per
// consumed lot slice.
package fifo

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/model"
	"github.com/mvdbosch/kapgains/internal/numeric"
)

// Ledger tracks the open long and short lots of a single non-cash asset.
// It is created once per asset for a processing run, seeded from start-of-
// year state, mutated by every relevant event in chronological order, and
// read once more at year end for reconciliation.
type Ledger struct {
	asset model.Asset
	ctx   numeric.Context

	longs  []model.Lot
	shorts []model.ShortLot
}

// NewLedger creates an empty ledger for the given asset.
func NewLedger(asset model.Asset, ctx numeric.Context) *Ledger {
	return &Ledger{asset: asset, ctx: ctx}
}

// Asset returns the asset this ledger belongs to.
func (l *Ledger) Asset() model.Asset {
	return l.asset
}

// Longs returns a copy of the ordered long-lot list.
func (l *Ledger) Longs() []model.Lot {
	out := make([]model.Lot, len(l.longs))
	copy(out, l.longs)
	return out
}

// Shorts returns a copy of the ordered short-lot list.
func (l *Ledger) Shorts() []model.ShortLot {
	out := make([]model.ShortLot, len(l.shorts))
	copy(out, l.shorts)
	return out
}

// Lots are kept sorted by (date, source transaction ID) ascending. This
// total order is the FIFO consumption order and must be reproducible
// across runs.
func (l *Ledger) sortLongs() {
	sort.SliceStable(l.longs, func(i, j int) bool {
		a, b := l.longs[i], l.longs[j]
		if !a.AcquisitionDate.Equal(b.AcquisitionDate) {
			return a.AcquisitionDate.Before(b.AcquisitionDate)
		}
		return a.SourceTxID < b.SourceTxID
	})
}

func (l *Ledger) sortShorts() {
	sort.SliceStable(l.shorts, func(i, j int) bool {
		a, b := l.shorts[i], l.shorts[j]
		if !a.OpenDate.Equal(b.OpenDate) {
			return a.OpenDate.Before(b.OpenDate)
		}
		return a.SourceTxID < b.SourceTxID
	})
}

// tradeTotal derives the total consideration of a trade: the gross amount
// when present, otherwise quantity x unit price x contract multiplier plus
// fees.
func (l *Ledger) tradeTotal(ev model.Event) decimal.Decimal {
	if !ev.Amount.IsZero() {
		return ev.Amount
	}
	total := ev.Quantity.Mul(ev.UnitPrice).Mul(l.asset.EffectiveMultiplier())
	return total.Add(ev.Fees)
}

// AddLongLot appends a new acquisition lot for a buy trade. Zero-quantity
// trades are skipped. The trade must carry a source transaction ID, since
// the (date, tx-id) pair is the FIFO order.
func (l *Ledger) AddLongLot(ev model.Event) error {
	if ev.Quantity.IsZero() {
		return nil
	}
	if ev.TransactionID == "" {
		return fmt.Errorf("%w: event %s", apperrors.ErrMissingTransactionID, ev.ID)
	}
	total := l.tradeTotal(ev)
	l.longs = append(l.longs, model.Lot{
		AcquisitionDate: ev.Date,
		Quantity:        ev.Quantity,
		UnitCost:        l.ctx.Div(total, ev.Quantity),
		TotalCost:       total,
		SourceTxID:      ev.TransactionID,
	})
	l.sortLongs()
	return nil
}

// AddShortLot appends a new short-opening lot for a short-sell trade.
func (l *Ledger) AddShortLot(ev model.Event) error {
	if ev.Quantity.IsZero() {
		return nil
	}
	if ev.TransactionID == "" {
		return fmt.Errorf("%w: event %s", apperrors.ErrMissingTransactionID, ev.ID)
	}
	total := l.tradeTotal(ev)
	l.shorts = append(l.shorts, model.ShortLot{
		OpenDate:      ev.Date,
		Quantity:      ev.Quantity,
		UnitProceeds:  l.ctx.Div(total, ev.Quantity),
		TotalProceeds: total,
		SourceTxID:    ev.TransactionID,
	})
	l.sortShorts()
	return nil
}

// longAvailable returns the total long quantity currently held.
func (l *Ledger) longAvailable() decimal.Decimal {
	total := decimal.Zero
	for _, lot := range l.longs {
		total = total.Add(lot.Quantity)
	}
	return total
}

func (l *Ledger) shortAvailable() decimal.Decimal {
	total := decimal.Zero
	for _, lot := range l.shorts {
		total = total.Add(lot.Quantity)
	}
	return total
}

// ConsumeLongLotsForSale consumes the sale quantity from the long lots
// oldest-first, splitting the last lot touched if it is only partially
// consumed. One record is emitted per consumed slice, pairing the slice's
// original unit cost against the sale's unit proceeds.
func (l *Ledger) ConsumeLongLotsForSale(ev model.Event) ([]model.RealizedGainLoss, error) {
	unitProceeds := l.ctx.Div(l.tradeTotal(ev), ev.Quantity)
	kind := model.RealizationSaleOfLong
	if l.asset.Category.IsDerivative() {
		kind = model.RealizationTradeCloseLong
	}
	return l.consumeLong(ev, ev.Quantity, unitProceeds, kind)
}

// ConsumeShortLotsForCover consumes the cover quantity from the short lots
// oldest-first, pairing each slice's original unit proceeds against the
// cover's unit cost. Gain equals proceeds minus cost.
func (l *Ledger) ConsumeShortLotsForCover(ev model.Event) ([]model.RealizedGainLoss, error) {
	unitCost := l.ctx.Div(l.tradeTotal(ev), ev.Quantity)
	kind := model.RealizationCoverOfShort
	if l.asset.Category.IsDerivative() {
		kind = model.RealizationTradeCloseShort
	}
	return l.consumeShort(ev, ev.Quantity, unitCost, kind)
}

// ExpireLongLots closes out every remaining long lot at zero proceeds
// (a long option position expiring worthless).
func (l *Ledger) ExpireLongLots(ev model.Event) ([]model.RealizedGainLoss, error) {
	return l.consumeLong(ev, l.longAvailable(), decimal.Zero, model.RealizationOptionExpiredLong)
}

// ExpireShortLots closes out every remaining short lot at zero cost
// (a written option expiring worthless; the premium stays as gain).
func (l *Ledger) ExpireShortLots(ev model.Event) ([]model.RealizedGainLoss, error) {
	return l.consumeShort(ev, l.shortAvailable(), decimal.Zero, model.RealizationOptionExpiredShort)
}

// ConsumeAllForCashMerger liquidates every remaining long lot at the
// merger's per-unit cash consideration and clears the long-lot list.
func (l *Ledger) ConsumeAllForCashMerger(ev model.Event) ([]model.RealizedGainLoss, error) {
	return l.consumeLong(ev, l.longAvailable(), ev.CashPerShare, model.RealizationCashMerger)
}

// RemoveLongQuantity silently consumes quantity from the long lots without
// emitting realized records and returns the consumed cost basis. Used for
// option exercises, where the premium is reflected in the broker-reported
// consideration of the paired underlying trade.
func (l *Ledger) RemoveLongQuantity(ev model.Event, qty decimal.Decimal) (decimal.Decimal, error) {
	records, err := l.consumeLong(ev, qty, decimal.Zero, model.RealizationSaleOfLong)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.TotalCost)
	}
	return total, nil
}

// RemoveShortQuantity is the short-side counterpart of RemoveLongQuantity,
// used for option assignments. It returns the consumed opening proceeds.
func (l *Ledger) RemoveShortQuantity(ev model.Event, qty decimal.Decimal) (decimal.Decimal, error) {
	records, err := l.consumeShort(ev, qty, decimal.Zero, model.RealizationCoverOfShort)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.TotalProceeds)
	}
	return total, nil
}

func (l *Ledger) consumeLong(ev model.Event, qty, unitProceeds decimal.Decimal, kind model.RealizationKind) ([]model.RealizedGainLoss, error) {
	if qty.IsZero() {
		return nil, nil
	}
	available := l.longAvailable()
	if qty.Sub(available).Cmp(numeric.Tolerance()) > 0 {
		return nil, fmt.Errorf("%w: asset %s needs %s long, has %s",
			apperrors.ErrInsufficientLots, l.asset.ID, qty, available)
	}

	var records []model.RealizedGainLoss
	remaining := qty
	for len(l.longs) > 0 && remaining.Cmp(numeric.Tolerance()) > 0 {
		lot := l.longs[0]
		sliceQty := decimal.Min(lot.Quantity, remaining)
		sliceCost := l.ctx.Div(lot.TotalCost.Mul(sliceQty), lot.Quantity)

		sliceProceeds := unitProceeds.Mul(sliceQty)
		rec := model.RealizedGainLoss{
			ID:              uuid.New().String(),
			EventID:         ev.ID,
			AssetID:         l.asset.ID,
			Category:        l.asset.Category,
			AcquisitionDate: lot.AcquisitionDate,
			RealizationDate: ev.Date,
			Kind:            kind,
			Quantity:        l.ctx.Quantity(sliceQty),
			UnitCost:        l.ctx.Unit(lot.UnitCost),
			TotalCost:       l.ctx.Cents(sliceCost),
			UnitProceeds:    l.ctx.Unit(unitProceeds),
			TotalProceeds:   l.ctx.Cents(sliceProceeds),
			Gross:           l.ctx.Cents(sliceProceeds.Sub(sliceCost)),
			HoldingDays:     holdingDays(lot.AcquisitionDate, ev.Date),
		}
		l.tagRecord(&rec)
		records = append(records, rec)

		if lot.Quantity.Sub(sliceQty).Cmp(numeric.Tolerance()) > 0 {
			// Partial consumption: the remainder keeps its original unit
			// cost, only quantity and total shrink.
			l.longs[0].Quantity = lot.Quantity.Sub(sliceQty)
			l.longs[0].TotalCost = lot.TotalCost.Sub(sliceCost)
		} else {
			l.longs = l.longs[1:]
		}
		remaining = remaining.Sub(sliceQty)
	}
	return records, nil
}

func (l *Ledger) consumeShort(ev model.Event, qty, unitCost decimal.Decimal, kind model.RealizationKind) ([]model.RealizedGainLoss, error) {
	if qty.IsZero() {
		return nil, nil
	}
	available := l.shortAvailable()
	if qty.Sub(available).Cmp(numeric.Tolerance()) > 0 {
		return nil, fmt.Errorf("%w: asset %s needs %s short, has %s",
			apperrors.ErrInsufficientLots, l.asset.ID, qty, available)
	}

	var records []model.RealizedGainLoss
	remaining := qty
	for len(l.shorts) > 0 && remaining.Cmp(numeric.Tolerance()) > 0 {
		lot := l.shorts[0]
		sliceQty := decimal.Min(lot.Quantity, remaining)
		sliceProceeds := l.ctx.Div(lot.TotalProceeds.Mul(sliceQty), lot.Quantity)

		sliceCost := unitCost.Mul(sliceQty)
		rec := model.RealizedGainLoss{
			ID:              uuid.New().String(),
			EventID:         ev.ID,
			AssetID:         l.asset.ID,
			Category:        l.asset.Category,
			AcquisitionDate: lot.OpenDate,
			RealizationDate: ev.Date,
			Kind:            kind,
			Quantity:        l.ctx.Quantity(sliceQty),
			UnitCost:        l.ctx.Unit(unitCost),
			TotalCost:       l.ctx.Cents(sliceCost),
			UnitProceeds:    l.ctx.Unit(lot.UnitProceeds),
			TotalProceeds:   l.ctx.Cents(sliceProceeds),
			Gross:           l.ctx.Cents(sliceProceeds.Sub(sliceCost)),
			HoldingDays:     holdingDays(lot.OpenDate, ev.Date),
		}
		l.tagRecord(&rec)
		records = append(records, rec)

		if lot.Quantity.Sub(sliceQty).Cmp(numeric.Tolerance()) > 0 {
			l.shorts[0].Quantity = lot.Quantity.Sub(sliceQty)
			l.shorts[0].TotalProceeds = lot.TotalProceeds.Sub(sliceProceeds)
		} else {
			l.shorts = l.shorts[1:]
		}
		remaining = remaining.Sub(sliceQty)
	}
	return records, nil
}

// tagRecord assigns the jurisdiction tax category and category-specific
// figures at realization time.
func (l *Ledger) tagRecord(rec *model.RealizedGainLoss) {
	switch {
	case l.asset.Category == model.CategoryEquity:
		if rec.Gross.IsNegative() {
			rec.TaxCategory = model.TaxEquityLoss
		} else {
			rec.TaxCategory = model.TaxEquityGain
		}
	case l.asset.Category.IsDerivative():
		if rec.Gross.IsNegative() {
			rec.TaxCategory = model.TaxDerivativeLoss
		} else {
			rec.TaxCategory = model.TaxDerivativeGain
			if rec.Kind == model.RealizationTradeCloseShort || rec.Kind == model.RealizationOptionExpiredShort {
				// Written-option cover netting positive: premium income
				// in the writer's hands.
				rec.WriterIncome = true
			}
		}
	case l.asset.Category == model.CategoryFund:
		rec.TaxCategory = model.TaxFundIncome
		rec.ExemptionRate = l.asset.FundSubtype.ExemptionRate()
		exempt := rec.Gross.Abs().Mul(rec.ExemptionRate)
		if rec.Gross.IsNegative() {
			rec.Net = l.ctx.Cents(rec.Gross.Add(exempt))
		} else {
			rec.Net = l.ctx.Cents(rec.Gross.Sub(exempt))
		}
	case l.asset.Category == model.CategoryPrivate:
		// Private-sale assets are taxable only inside the one-year window.
		if rec.HoldingDays > 365 {
			rec.TaxCategory = model.TaxPrivateExempt
			rec.PeriodExempt = true
		} else {
			rec.TaxCategory = model.TaxPrivateSale
		}
	default: // bonds and anything unclassified
		if rec.Gross.IsNegative() {
			rec.TaxCategory = model.TaxOtherLoss
		} else {
			rec.TaxCategory = model.TaxOtherIncome
		}
	}
}

// AdjustForSplit multiplies every lot's quantity by the split ratio and
// divides the per-unit figure by the same ratio. Total cost and proceeds
// are invariant under splitting.
func (l *Ledger) AdjustForSplit(ev model.Event) error {
	if !ev.Ratio.IsPositive() {
		return fmt.Errorf("%w: got %s on event %s", apperrors.ErrInvalidSplitRatio, ev.Ratio, ev.ID)
	}
	for i := range l.longs {
		l.longs[i].Quantity = l.ctx.Quantity(l.longs[i].Quantity.Mul(ev.Ratio))
		l.longs[i].UnitCost = l.ctx.Div(l.longs[i].UnitCost, ev.Ratio)
	}
	for i := range l.shorts {
		l.shorts[i].Quantity = l.ctx.Quantity(l.shorts[i].Quantity.Mul(ev.Ratio))
		l.shorts[i].UnitProceeds = l.ctx.Div(l.shorts[i].UnitProceeds, ev.Ratio)
	}
	return nil
}

// AddStockDividendLot creates a new long lot for distributed shares, dated
// at the event date. The attributed value per new unit may be zero
// (tax-free stock-dividend treatment).
func (l *Ledger) AddStockDividendLot(ev model.Event) error {
	if ev.Quantity.IsZero() {
		return nil
	}
	txID := ev.TransactionID
	if txID == "" {
		txID = ev.ID
	}
	l.longs = append(l.longs, model.Lot{
		AcquisitionDate: ev.Date,
		Quantity:        ev.Quantity,
		UnitCost:        ev.UnitPrice,
		TotalCost:       ev.Quantity.Mul(ev.UnitPrice),
		SourceTxID:      txID,
	})
	l.sortLongs()
	return nil
}

// ReduceCostBasisForCapitalRepayment walks the long lots oldest-first,
// reducing each lot's total cost basis by up to amount (floored at zero)
// and recomputing its unit cost. The returned excess is whatever is left
// after every lot's basis reached zero; the caller reports it as ordinary
// taxable income.
func (l *Ledger) ReduceCostBasisForCapitalRepayment(amount decimal.Decimal) decimal.Decimal {
	remaining := amount
	for i := range l.longs {
		if !remaining.IsPositive() {
			break
		}
		reduce := decimal.Min(l.longs[i].TotalCost, remaining)
		l.longs[i].TotalCost = l.longs[i].TotalCost.Sub(reduce)
		l.longs[i].UnitCost = l.ctx.Div(l.longs[i].TotalCost, l.longs[i].Quantity)
		remaining = remaining.Sub(reduce)
	}
	return remaining
}

// CurrentPositionQuantity returns the net position: all long minus all
// short quantities, quantized to quantity precision.
func (l *Ledger) CurrentPositionQuantity() decimal.Decimal {
	return l.ctx.Quantity(l.longAvailable().Sub(l.shortAvailable()))
}

func holdingDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
