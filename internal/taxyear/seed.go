package taxyear

import (
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/fifo"
	"github.com/mvdbosch/kapgains/internal/model"
	"github.com/mvdbosch/kapgains/internal/numeric"
)

// seedLedger establishes the start-of-year lot state of one asset. The
// pre-year history is replayed through the normal dispatch first; when the
// replay is clean and consistent with the broker-reported opening position,
// the reconstructed lots are prorated down to the reported quantity and
// keep their true acquisition dates. Any replay gap degrades to a single
// synthetic lot costed from the reported opening basis.
func (o *Orchestrator) seedLedger(led *fifo.Ledger, asset model.Asset, history []model.Event, assets map[string]model.Asset, yearStart time.Time) error {
	reported := asset.SOYQuantity

	clean := true
	ordered, err := sortEvents(history, assets)
	if err != nil {
		log.Printf("replay ordering failed for asset %s, using fallback basis: %v", asset.ID, err)
		clean = false
		ordered = nil
	}
	for _, ev := range ordered {
		if err := o.process(ev, nil); err != nil {
			// Missing history manifests as consuming more than the
			// reconstruction holds. Any replay failure means the history
			// is incomplete, not that the run is broken.
			if !errors.Is(err, apperrors.ErrInsufficientLots) {
				log.Printf("replay of event %s for asset %s failed: %v", ev.ID, asset.ID, err)
			}
			clean = false
			break
		}
	}

	if clean && consistent(led.CurrentPositionQuantity(), reported) {
		led.TruncateToQuantity(reported)
		return nil
	}

	asOf := yearStart.AddDate(0, 0, -1)
	led.SeedFallbackLot(asOf, reported, o.openingBasisEUR(asset, asOf))
	return nil
}

// consistent reports whether the reconstructed position can be prorated
// down to the reported one: same sign and at least as large in magnitude,
// within tolerance.
func consistent(reconstructed, reported decimal.Decimal) bool {
	if reported.IsZero() {
		return true
	}
	if reconstructed.Sign() != reported.Sign() {
		return false
	}
	return reconstructed.Abs().Sub(reported.Abs()).Cmp(numeric.Tolerance().Neg()) >= 0
}

// openingBasisEUR converts the broker-reported opening basis to EUR at the
// prior year-end date. Conversion failure degrades to a zero basis so the
// position still exists for FIFO purposes.
func (o *Orchestrator) openingBasisEUR(asset model.Asset, asOf time.Time) decimal.Decimal {
	basis := asset.SOYCostBasis
	cur := asset.SOYCostBasisCurrency
	if cur == "" || cur == "EUR" || basis.IsZero() {
		return basis
	}
	converted, err := o.fx.ConvertToEUR(basis, cur, asOf)
	if err != nil {
		log.Printf("opening basis conversion failed for asset %s (%s %s), using zero: %v",
			asset.ID, basis, cur, err)
		return decimal.Zero
	}
	return converted
}
