package taxyear

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/model"
)

// Same-date events are processed in a fixed kind-group precedence:
// corporate actions first, then option lifecycle events, then trades and
// currency conversions, then cash-flow-like events. Unknown kinds sort last.
const (
	groupCorporateAction = 0
	groupOptionLifecycle = 1
	groupTrade           = 2
	groupCashFlow        = 3
	groupUnknown         = 9
)

func kindGroup(kind model.EventKind) int {
	switch kind {
	case model.KindSplit, model.KindCashMerger, model.KindStockDividend,
		model.KindStockMerger, model.KindCapitalRepayment:
		return groupCorporateAction
	case model.KindOptionExercise, model.KindOptionAssignment, model.KindOptionExpiration:
		return groupOptionLifecycle
	case model.KindTrade, model.KindCurrencyConversion:
		return groupTrade
	case model.KindDividend, model.KindInterest, model.KindWithholdingTax,
		model.KindFee, model.KindFundDistribution, model.KindVorabpauschale,
		model.KindAccruedInterest:
		return groupCashFlow
	}
	return groupUnknown
}

func categoryRank(c model.AssetCategory) int {
	switch c {
	case model.CategoryEquity:
		return 0
	case model.CategoryBond:
		return 1
	case model.CategoryFund:
		return 2
	case model.CategoryOption:
		return 3
	case model.CategoryCFD:
		return 4
	case model.CategoryPrivate:
		return 5
	}
	return 9
}

// sortKey is the canonical ordering key of one event. Primary order is
// strictly the event date; the remaining fields break same-date ties so
// that FIFO results are reproducible regardless of input row order.
type sortKey struct {
	date    time.Time
	group   int
	txID    string
	catRank int
	detail  string
	amount  decimal.Decimal
	eventID string
}

// keyFor maps an event and its resolved asset to a sort key. An event with
// no date, or a ledger-bound event whose asset could not be resolved, makes
// deterministic ordering impossible and must fail explicitly.
func keyFor(ev model.Event, asset model.Asset, resolved bool) (sortKey, error) {
	if ev.Date.IsZero() {
		return sortKey{}, fmt.Errorf("%w: event %s has no date", apperrors.ErrInvalidDate, ev.ID)
	}
	if !resolved && !ev.Kind.LedgerLess() {
		return sortKey{}, fmt.Errorf("%w: event %s references %q", apperrors.ErrUnresolvableAsset, ev.ID, ev.AssetID)
	}
	return sortKey{
		date:    ev.Date,
		group:   kindGroup(ev.Kind),
		txID:    ev.TransactionID,
		catRank: categoryRank(asset.Category),
		detail:  ev.Description,
		amount:  ev.Amount.Abs(),
		eventID: ev.ID,
	}, nil
}

func (k sortKey) less(other sortKey) bool {
	if !k.date.Equal(other.date) {
		return k.date.Before(other.date)
	}
	if k.group != other.group {
		return k.group < other.group
	}
	// Broker transaction IDs are assigned sequentially by the source
	// system, so they best approximate true intra-day order.
	if c := compareTxIDs(k.txID, other.txID); c != 0 {
		return c < 0
	}
	if k.catRank != other.catRank {
		return k.catRank < other.catRank
	}
	if k.detail != other.detail {
		return k.detail < other.detail
	}
	if c := k.amount.Cmp(other.amount); c != 0 {
		return c < 0
	}
	// The event's own unique ID is the absolute tiebreak.
	return k.eventID < other.eventID
}

// compareTxIDs orders two broker transaction IDs. Purely numeric IDs
// compare by value, so "999" precedes "1000"; anything else falls back to
// byte order.
func compareTxIDs(a, b string) int {
	if isDigits(a) && isDigits(b) {
		an := strings.TrimLeft(a, "0")
		bn := strings.TrimLeft(b, "0")
		if len(an) != len(bn) {
			if len(an) < len(bn) {
				return -1
			}
			return 1
		}
		// Equal-width digit strings compare correctly byte-wise. Keep the
		// raw strings as a final tiebreak so "007" and "7" stay distinct.
		if c := strings.Compare(an, bn); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// sortEvents returns the events in canonical processing order. It fails if
// any event cannot be keyed.
func sortEvents(events []model.Event, assets map[string]model.Asset) ([]model.Event, error) {
	type keyed struct {
		ev  model.Event
		key sortKey
	}
	keyedEvents := make([]keyed, 0, len(events))
	for _, ev := range events {
		asset, ok := assets[ev.AssetID]
		key, err := keyFor(ev, asset, ok)
		if err != nil {
			return nil, err
		}
		keyedEvents = append(keyedEvents, keyed{ev: ev, key: key})
	}
	sort.SliceStable(keyedEvents, func(i, j int) bool {
		return keyedEvents[i].key.less(keyedEvents[j].key)
	})
	out := make([]model.Event, len(keyedEvents))
	for i, ke := range keyedEvents {
		out[i] = ke.ev
	}
	return out, nil
}
