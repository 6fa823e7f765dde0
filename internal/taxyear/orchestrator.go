// Package taxyear orchestrates one tax-year calculation: it partitions the
// event stream into history and current year, seeds one FIFO ledger per
// asset from start-of-year state, dispatches current-year events in
// deterministic order, and reconciles end-of-year positions against the
// broker-reported figures.
package taxyear

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/fifo"
	"github.com/mvdbosch/kapgains/internal/model"
	"github.com/mvdbosch/kapgains/internal/numeric"
	"github.com/mvdbosch/kapgains/internal/offset"
)

// AssetSource resolves asset master data. Implementations must return a
// stable identity per logical instrument for the duration of a run.
type AssetSource interface {
	GetAsset(id string) (model.Asset, error)
	ListAssets() ([]model.Asset, error)
}

// Converter converts a foreign-currency amount into EUR at a given date.
// A failure is a local, per-event condition: callers degrade to zero and
// log a warning.
type Converter interface {
	ConvertToEUR(amount decimal.Decimal, currency string, date time.Time) (decimal.Decimal, error)
}

// Config carries the settings of one engine run.
type Config struct {
	Year    int
	Numeric numeric.Context
}

// RunResult is the engine output handed to the loss-offsetting engine and
// the reporting layer.
type RunResult struct {
	Records       []model.RealizedGainLoss
	Processed     []model.Event
	Income        []offset.IncomeItem
	Distributions []offset.FundItem
	Vorab         []offset.FundItem
	MismatchCount int
}

// Orchestrator owns the per-asset ledgers for the duration of one run.
// It is single-threaded: every event runs to completion before the next
// one is dispatched.
type Orchestrator struct {
	cfg     Config
	assets  AssetSource
	fx      Converter
	ledgers map[string]*fifo.Ledger
}

// New creates an orchestrator for one run.
func New(cfg Config, assets AssetSource, fx Converter) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		assets:  assets,
		fx:      fx,
		ledgers: make(map[string]*fifo.Ledger),
	}
}

// Run processes the full event stream for the configured tax year.
func (o *Orchestrator) Run(events []model.Event) (*RunResult, error) {
	start, end, err := o.yearBoundaries()
	if err != nil {
		return nil, err
	}

	historical, current, err := partition(events, start, end)
	if err != nil {
		return nil, err
	}

	assetMap, err := o.resolveAssets(events)
	if err != nil {
		return nil, err
	}

	for id, asset := range assetMap {
		o.ledgers[id] = fifo.NewLedger(asset, o.cfg.Numeric)
	}
	for _, id := range sortedKeys(o.ledgers) {
		if err := o.seedLedger(o.ledgers[id], assetMap[id], historical[id], assetMap, start); err != nil {
			return nil, fmt.Errorf("%w: asset %s: %v", apperrors.ErrSeedingFailed, id, err)
		}
	}

	ordered, err := sortEvents(current, assetMap)
	if err != nil {
		return nil, err
	}

	result := &RunResult{}
	for _, ev := range ordered {
		if err := o.process(ev, result); err != nil {
			switch {
			case isRecoverable(err):
				log.Printf("skipping event %s (%s on %s): %v", ev.ID, ev.Kind, ev.Date.Format("2006-01-02"), err)
				continue
			default:
				return nil, err
			}
		}
		result.Processed = append(result.Processed, ev)
	}

	result.MismatchCount = o.Reconcile()
	return result, nil
}

// Reconcile compares each ledger's computed end-of-year quantity against
// the broker-reported figure and returns the number of mismatches. It only
// reads ledger state, so repeated calls yield the same count.
func (o *Orchestrator) Reconcile() int {
	mismatches := 0
	for _, id := range sortedKeys(o.ledgers) {
		led := o.ledgers[id]
		computed := led.CurrentPositionQuantity()
		reported := led.Asset().EOYQuantity
		if !numeric.WithinTolerance(computed, reported) {
			log.Printf("end-of-year mismatch for asset %s: computed %s, broker reports %s", id, computed, reported)
			mismatches++
		}
	}
	return mismatches
}

func (o *Orchestrator) yearBoundaries() (time.Time, time.Time, error) {
	if o.cfg.Year < 1900 || o.cfg.Year > 9999 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %d", apperrors.ErrInvalidTaxYear, o.cfg.Year)
	}
	start := time.Date(o.cfg.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(o.cfg.Year, time.December, 31, 23, 59, 59, 0, time.UTC)
	return start, end, nil
}

// partition splits events into per-asset history and the current year.
// Events dated after year end are dropped.
func partition(events []model.Event, start, end time.Time) (map[string][]model.Event, []model.Event, error) {
	historical := make(map[string][]model.Event)
	var current []model.Event
	for _, ev := range events {
		if ev.Date.IsZero() {
			return nil, nil, fmt.Errorf("%w: event %s has no date", apperrors.ErrInvalidDate, ev.ID)
		}
		switch {
		case ev.Date.After(end):
			continue
		case ev.Date.Before(start):
			historical[ev.AssetID] = append(historical[ev.AssetID], ev)
		default:
			current = append(current, ev)
		}
	}
	return historical, current, nil
}

// resolveAssets builds the asset map for the run: every asset referenced by
// an event plus every asset carrying a reported position, so that
// positions without current-year activity still reconcile.
func (o *Orchestrator) resolveAssets(events []model.Event) (map[string]model.Asset, error) {
	assetMap := make(map[string]model.Asset)

	all, err := o.assets.ListAssets()
	if err != nil {
		return nil, err
	}
	for _, a := range all {
		assetMap[a.ID] = a
	}

	for _, ev := range events {
		if ev.AssetID == "" {
			if ev.Kind.LedgerLess() {
				continue
			}
			return nil, fmt.Errorf("%w: event %s has no asset", apperrors.ErrUnresolvableAsset, ev.ID)
		}
		if _, ok := assetMap[ev.AssetID]; ok {
			continue
		}
		asset, err := o.assets.GetAsset(ev.AssetID)
		if err != nil {
			return nil, fmt.Errorf("%w: event %s references %q", apperrors.ErrUnresolvableAsset, ev.ID, ev.AssetID)
		}
		assetMap[asset.ID] = asset
	}
	return assetMap, nil
}

// amountEUR returns the event amount in the reporting currency, degrading
// to zero with a logged warning when conversion fails.
func (o *Orchestrator) amountEUR(ev model.Event) decimal.Decimal {
	if ev.Currency == "" || ev.Currency == "EUR" {
		return ev.Amount
	}
	converted, err := o.fx.ConvertToEUR(ev.Amount, ev.Currency, ev.Date)
	if err != nil {
		log.Printf("conversion failed for event %s (%s %s on %s), using zero: %v",
			ev.ID, ev.Amount, ev.Currency, ev.Date.Format("2006-01-02"), err)
		return decimal.Zero
	}
	return converted
}

func isRecoverable(err error) bool {
	return errors.Is(err, apperrors.ErrUnclassifiedEvent) || errors.Is(err, apperrors.ErrMissingLedger)
}

func sortedKeys(m map[string]*fifo.Ledger) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
