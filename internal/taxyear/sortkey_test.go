package taxyear

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSortEvents(t *testing.T) {
	assets := map[string]model.Asset{
		"aapl": {ID: "aapl", Category: model.CategoryEquity},
		"opt":  {ID: "opt", Category: model.CategoryOption},
	}

	t.Run("date is the primary order", func(t *testing.T) {
		events := []model.Event{
			{ID: "e2", AssetID: "aapl", Date: day(2024, 3, 2), Kind: model.KindTrade},
			{ID: "e1", AssetID: "aapl", Date: day(2024, 3, 1), Kind: model.KindTrade},
		}
		ordered, err := sortEvents(events, assets)
		if err != nil {
			t.Fatalf("sortEvents: %v", err)
		}
		if ordered[0].ID != "e1" || ordered[1].ID != "e2" {
			t.Errorf("order = %s, %s; want e1, e2", ordered[0].ID, ordered[1].ID)
		}
	})

	t.Run("same-date kind groups", func(t *testing.T) {
		d := day(2024, 6, 14)
		events := []model.Event{
			{ID: "div", AssetID: "aapl", Date: d, Kind: model.KindDividend},
			{ID: "sell", AssetID: "aapl", Date: d, Kind: model.KindTrade},
			{ID: "exercise", AssetID: "opt", Date: d, Kind: model.KindOptionExercise},
			{ID: "split", AssetID: "aapl", Date: d, Kind: model.KindSplit},
		}
		ordered, err := sortEvents(events, assets)
		if err != nil {
			t.Fatalf("sortEvents: %v", err)
		}
		want := []string{"split", "exercise", "sell", "div"}
		for i, id := range want {
			if ordered[i].ID != id {
				t.Errorf("position %d = %s, want %s", i, ordered[i].ID, id)
			}
		}
	})

	t.Run("transaction id breaks ties within a group", func(t *testing.T) {
		d := day(2024, 6, 14)
		events := []model.Event{
			{ID: "b", AssetID: "aapl", Date: d, Kind: model.KindTrade, TransactionID: "tx-200"},
			{ID: "a", AssetID: "aapl", Date: d, Kind: model.KindTrade, TransactionID: "tx-100"},
		}
		ordered, err := sortEvents(events, assets)
		if err != nil {
			t.Fatalf("sortEvents: %v", err)
		}
		if ordered[0].ID != "a" {
			t.Errorf("first = %s, want a", ordered[0].ID)
		}
	})

	t.Run("numeric transaction ids compare by value", func(t *testing.T) {
		// Sequentially assigned numeric IDs must not invert when their
		// widths differ.
		d := day(2024, 6, 14)
		events := []model.Event{
			{ID: "b", AssetID: "aapl", Date: d, Kind: model.KindTrade, TransactionID: "1000"},
			{ID: "a", AssetID: "aapl", Date: d, Kind: model.KindTrade, TransactionID: "999"},
		}
		ordered, err := sortEvents(events, assets)
		if err != nil {
			t.Fatalf("sortEvents: %v", err)
		}
		if ordered[0].ID != "a" || ordered[1].ID != "b" {
			t.Errorf("order = %s, %s; want a, b", ordered[0].ID, ordered[1].ID)
		}
	})

	t.Run("compareTxIDs", func(t *testing.T) {
		cases := []struct {
			a, b string
			want int
		}{
			{"999", "1000", -1},
			{"1000", "999", 1},
			{"42", "42", 0},
			{"007", "8", -1},
			{"007", "7", -1}, // zero-padded sorts first, stays distinct
			{"tx-100", "tx-200", -1},
			{"100", "tx-100", -1}, // mixed falls back to byte order
		}
		for _, c := range cases {
			got := compareTxIDs(c.a, c.b)
			if (got < 0) != (c.want < 0) || (got == 0) != (c.want == 0) {
				t.Errorf("compareTxIDs(%q, %q) = %d, want sign of %d", c.a, c.b, got, c.want)
			}
		}
	})

	t.Run("event id is the absolute tiebreak", func(t *testing.T) {
		d := day(2024, 6, 14)
		events := []model.Event{
			{ID: "z", AssetID: "aapl", Date: d, Kind: model.KindTrade, Amount: decimal.NewFromInt(100)},
			{ID: "a", AssetID: "aapl", Date: d, Kind: model.KindTrade, Amount: decimal.NewFromInt(100)},
		}
		ordered, err := sortEvents(events, assets)
		if err != nil {
			t.Fatalf("sortEvents: %v", err)
		}
		if ordered[0].ID != "a" {
			t.Errorf("first = %s, want a", ordered[0].ID)
		}
	})

	t.Run("zero date fails", func(t *testing.T) {
		events := []model.Event{{ID: "e1", AssetID: "aapl", Kind: model.KindTrade}}
		if _, err := sortEvents(events, assets); !errors.Is(err, apperrors.ErrInvalidDate) {
			t.Errorf("err = %v, want ErrInvalidDate", err)
		}
	})

	t.Run("unresolved ledger event fails", func(t *testing.T) {
		events := []model.Event{{ID: "e1", AssetID: "ghost", Date: day(2024, 1, 2), Kind: model.KindTrade}}
		if _, err := sortEvents(events, assets); !errors.Is(err, apperrors.ErrUnresolvableAsset) {
			t.Errorf("err = %v, want ErrUnresolvableAsset", err)
		}
	})

	t.Run("ledger-less events need no asset", func(t *testing.T) {
		events := []model.Event{{ID: "e1", Date: day(2024, 1, 2), Kind: model.KindInterest}}
		if _, err := sortEvents(events, assets); err != nil {
			t.Errorf("sortEvents: %v", err)
		}
	})
}
