package fifo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mvdbosch/kapgains/internal/model"
	"github.com/mvdbosch/kapgains/internal/numeric"
)

// SourceTxID marker for synthetic start-of-year fallback lots.
const fallbackTxID = "soy-fallback"

// TruncateToQuantity prorates the reconstructed lots down to the broker-
// reported start-of-year quantity. Excess quantity is consumed from the
// oldest lots, exactly as FIFO would have consumed it; the remainder keeps
// its true historical acquisition dates and unit costs. A zero target
// clears the ledger.
func (l *Ledger) TruncateToQuantity(target decimal.Decimal) {
	switch target.Sign() {
	case 0:
		l.longs = nil
		l.shorts = nil
	case 1:
		l.shorts = nil
		excess := l.longAvailable().Sub(target)
		l.dropLongQuantity(excess)
	case -1:
		l.longs = nil
		excess := l.shortAvailable().Sub(target.Abs())
		l.dropShortQuantity(excess)
	}
}

func (l *Ledger) dropLongQuantity(excess decimal.Decimal) {
	for len(l.longs) > 0 && excess.Cmp(numeric.Tolerance()) > 0 {
		lot := l.longs[0]
		if lot.Quantity.Sub(excess).Cmp(numeric.Tolerance()) > 0 {
			consumedCost := l.ctx.Div(lot.TotalCost.Mul(excess), lot.Quantity)
			l.longs[0].Quantity = lot.Quantity.Sub(excess)
			l.longs[0].TotalCost = lot.TotalCost.Sub(consumedCost)
			return
		}
		l.longs = l.longs[1:]
		excess = excess.Sub(lot.Quantity)
	}
}

func (l *Ledger) dropShortQuantity(excess decimal.Decimal) {
	for len(l.shorts) > 0 && excess.Cmp(numeric.Tolerance()) > 0 {
		lot := l.shorts[0]
		if lot.Quantity.Sub(excess).Cmp(numeric.Tolerance()) > 0 {
			consumedProceeds := l.ctx.Div(lot.TotalProceeds.Mul(excess), lot.Quantity)
			l.shorts[0].Quantity = lot.Quantity.Sub(excess)
			l.shorts[0].TotalProceeds = lot.TotalProceeds.Sub(consumedProceeds)
			return
		}
		l.shorts = l.shorts[1:]
		excess = excess.Sub(lot.Quantity)
	}
}

// SeedFallbackLot discards any reconstructed state and seeds the ledger
// with a single synthetic lot dated asOf (December 31 of the prior year),
// costed from the broker-reported start-of-year basis, already converted
// to EUR. A negative quantity seeds a short lot whose proceeds are the
// reported basis amount.
func (l *Ledger) SeedFallbackLot(asOf time.Time, quantity, totalEUR decimal.Decimal) {
	l.longs = nil
	l.shorts = nil

	switch quantity.Sign() {
	case 1:
		l.longs = append(l.longs, model.Lot{
			AcquisitionDate: asOf,
			Quantity:        quantity,
			UnitCost:        l.ctx.Div(totalEUR, quantity),
			TotalCost:       totalEUR,
			SourceTxID:      fallbackTxID,
		})
	case -1:
		qty := quantity.Abs()
		l.shorts = append(l.shorts, model.ShortLot{
			OpenDate:      asOf,
			Quantity:      qty,
			UnitProceeds:  l.ctx.Div(totalEUR, qty),
			TotalProceeds: totalEUR,
			SourceTxID:    fallbackTxID,
		})
	}
}
