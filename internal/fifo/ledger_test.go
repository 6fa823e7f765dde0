package fifo

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/model"
	"github.com/mvdbosch/kapgains/internal/numeric"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func equityAsset() model.Asset {
	return model.Asset{ID: "asset-1", Name: "Test AG", Category: model.CategoryEquity}
}

func buyEvent(id, txID, date, qty, amount string) model.Event {
	return model.Event{
		ID:            id,
		TransactionID: txID,
		AssetID:       "asset-1",
		Date:          day(date),
		Kind:          model.KindTrade,
		Side:          model.SideBuy,
		Quantity:      d(qty),
		Amount:        d(amount),
	}
}

func sellEvent(id, txID, date, qty, amount string) model.Event {
	ev := buyEvent(id, txID, date, qty, amount)
	ev.Side = model.SideSell
	return ev
}

func TestAddLongLot(t *testing.T) {
	t.Run("skips zero quantity", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		if err := l.AddLongLot(buyEvent("e1", "t1", "2024-01-10", "0", "100")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(l.Longs()) != 0 {
			t.Errorf("expected no lots, got %d", len(l.Longs()))
		}
	})

	t.Run("rejects missing transaction ID", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		err := l.AddLongLot(buyEvent("e1", "", "2024-01-10", "10", "1000"))
		if !errors.Is(err, apperrors.ErrMissingTransactionID) {
			t.Errorf("expected ErrMissingTransactionID, got %v", err)
		}
	})

	t.Run("keeps lots sorted by date then tx id", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e2", "900", "2024-03-01", "5", "500"))
		mustAdd(t, l, buyEvent("e1", "100", "2024-01-01", "5", "400"))
		mustAdd(t, l, buyEvent("e3", "200", "2024-01-01", "5", "450"))

		lots := l.Longs()
		wantTx := []string{"100", "200", "900"}
		for i, want := range wantTx {
			if lots[i].SourceTxID != want {
				t.Errorf("lot %d: got tx %s, want %s", i, lots[i].SourceTxID, want)
			}
		}
	})

	t.Run("derives total from unit price and multiplier", func(t *testing.T) {
		asset := model.Asset{ID: "asset-1", Category: model.CategoryOption, Multiplier: d("100")}
		l := NewLedger(asset, numeric.DefaultContext())
		ev := buyEvent("e1", "t1", "2024-01-10", "2", "0")
		ev.UnitPrice = d("1.50")
		ev.Fees = d("2")
		mustAdd(t, l, ev)

		lot := l.Longs()[0]
		if !lot.TotalCost.Equal(d("302")) { // 2 * 1.50 * 100 + 2
			t.Errorf("total cost = %s, want 302", lot.TotalCost)
		}
	})
}

func TestConsumeLongLotsForSale(t *testing.T) {
	t.Run("two buys one sale splits second lot", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2024-01-10", "10", "1001"))
		mustAdd(t, l, buyEvent("e2", "t2", "2024-02-10", "10", "1101"))

		records, err := l.ConsumeLongLotsForSale(sellEvent("e3", "t3", "2024-06-10", "15", "1799"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}

		first, second := records[0], records[1]
		if !first.Quantity.Equal(d("10")) || !first.TotalCost.Equal(d("1001")) {
			t.Errorf("first slice: qty %s cost %s, want 10 / 1001", first.Quantity, first.TotalCost)
		}
		if !first.Gross.Equal(d("198.33")) {
			t.Errorf("first slice gross = %s, want 198.33", first.Gross)
		}
		if !second.Quantity.Equal(d("5")) || !second.TotalCost.Equal(d("550.5")) {
			t.Errorf("second slice: qty %s cost %s, want 5 / 550.5", second.Quantity, second.TotalCost)
		}
		if !second.Gross.Equal(d("49.17")) {
			t.Errorf("second slice gross = %s, want 49.17", second.Gross)
		}
		if got := first.Gross.Add(second.Gross); !got.Equal(d("247.5")) {
			t.Errorf("total gross = %s, want 247.5", got)
		}
		if !first.AcquisitionDate.Equal(day("2024-01-10")) {
			t.Errorf("first slice keeps original acquisition date, got %s", first.AcquisitionDate)
		}

		// Remaining half-lot keeps its original unit cost.
		lots := l.Longs()
		if len(lots) != 1 {
			t.Fatalf("expected 1 remaining lot, got %d", len(lots))
		}
		if !lots[0].Quantity.Equal(d("5")) || !lots[0].UnitCost.Equal(d("110.1")) {
			t.Errorf("remaining lot: qty %s unit %s, want 5 @ 110.1", lots[0].Quantity, lots[0].UnitCost)
		}
		if !lots[0].TotalCost.Equal(d("550.5")) {
			t.Errorf("remaining lot total = %s, want 550.5", lots[0].TotalCost)
		}
	})

	t.Run("consumes oldest lots first", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e2", "t2", "2024-02-01", "10", "2000"))
		mustAdd(t, l, buyEvent("e1", "t1", "2024-01-01", "10", "1000"))

		records, err := l.ConsumeLongLotsForSale(sellEvent("e3", "t3", "2024-03-01", "10", "1500"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if !records[0].AcquisitionDate.Equal(day("2024-01-01")) {
			t.Errorf("expected oldest lot consumed first, got %s", records[0].AcquisitionDate)
		}
	})

	t.Run("conservation of quantity and cost", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2024-01-10", "7", "701.4"))
		mustAdd(t, l, buyEvent("e2", "t2", "2024-02-10", "3", "333"))

		before := l.CurrentPositionQuantity()
		records, err := l.ConsumeLongLotsForSale(sellEvent("e3", "t3", "2024-06-10", "8.5", "1000"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		consumed := decimal.Zero
		for _, r := range records {
			consumed = consumed.Add(r.Quantity)
		}
		after := l.CurrentPositionQuantity()
		if !after.Add(consumed).Equal(before) {
			t.Errorf("quantity not conserved: %s + %s != %s", after, consumed, before)
		}

		// Split lot's consumed cost is proportional to consumed quantity.
		var sliceCost decimal.Decimal
		for _, r := range records {
			if r.AcquisitionDate.Equal(day("2024-02-10")) {
				sliceCost = r.TotalCost
			}
		}
		want := d("333").Mul(d("1.5")).Div(d("3"))
		if !sliceCost.Equal(want.Round(2)) {
			t.Errorf("slice cost = %s, want %s", sliceCost, want)
		}
	})

	t.Run("insufficient lots", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2024-01-10", "5", "500"))

		_, err := l.ConsumeLongLotsForSale(sellEvent("e2", "t2", "2024-02-10", "6", "700"))
		if !errors.Is(err, apperrors.ErrInsufficientLots) {
			t.Errorf("expected ErrInsufficientLots, got %v", err)
		}
	})

	t.Run("tiny overshoot within tolerance passes", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2024-01-10", "5", "500"))

		_, err := l.ConsumeLongLotsForSale(sellEvent("e2", "t2", "2024-02-10", "5.00000000000001", "600"))
		if err != nil {
			t.Errorf("overshoot below tolerance should pass, got %v", err)
		}
		if len(l.Longs()) != 0 {
			t.Errorf("expected all lots consumed, got %d", len(l.Longs()))
		}
	})
}

func TestConsumeShortLotsForCover(t *testing.T) {
	l := NewLedger(equityAsset(), numeric.DefaultContext())
	short := buyEvent("e1", "t1", "2024-01-10", "10", "1200")
	short.Side = model.SideShort
	if err := l.AddShortLot(short); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cover := buyEvent("e2", "t2", "2024-03-10", "10", "1000")
	cover.Side = model.SideCover
	records, err := l.ConsumeShortLotsForCover(cover)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Kind != model.RealizationCoverOfShort {
		t.Errorf("kind = %s, want cover_of_short", rec.Kind)
	}
	// Gain is opening proceeds minus cover cost.
	if !rec.Gross.Equal(d("200")) {
		t.Errorf("gross = %s, want 200", rec.Gross)
	}
	if !l.CurrentPositionQuantity().IsZero() {
		t.Errorf("position = %s, want 0", l.CurrentPositionQuantity())
	}
}

func TestAdjustForSplit(t *testing.T) {
	t.Run("rejects non-positive ratio", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		ev := model.Event{ID: "e1", Kind: model.KindSplit, Ratio: decimal.Zero}
		if err := l.AdjustForSplit(ev); !errors.Is(err, apperrors.ErrInvalidSplitRatio) {
			t.Errorf("expected ErrInvalidSplitRatio, got %v", err)
		}
	})

	t.Run("total cost invariant", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2024-01-10", "10", "1001"))
		mustAdd(t, l, buyEvent("e2", "t2", "2024-02-10", "3", "333"))

		ev := model.Event{ID: "e3", Kind: model.KindSplit, Ratio: d("4")}
		if err := l.AdjustForSplit(ev); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lots := l.Longs()
		if !lots[0].Quantity.Equal(d("40")) {
			t.Errorf("quantity = %s, want 40", lots[0].Quantity)
		}
		for i, lot := range lots {
			product := lot.Quantity.Mul(lot.UnitCost)
			if !product.Sub(lot.TotalCost).Abs().LessThan(d("0.0000001")) {
				t.Errorf("lot %d: qty*unit = %s, total = %s", i, product, lot.TotalCost)
			}
		}
		if !lots[0].TotalCost.Equal(d("1001")) || !lots[1].TotalCost.Equal(d("333")) {
			t.Errorf("totals changed: %s, %s", lots[0].TotalCost, lots[1].TotalCost)
		}
	})
}

func TestConsumeAllForCashMerger(t *testing.T) {
	l := NewLedger(equityAsset(), numeric.DefaultContext())
	mustAdd(t, l, buyEvent("e1", "t1", "2024-01-10", "10", "1000"))
	mustAdd(t, l, buyEvent("e2", "t2", "2024-02-10", "5", "600"))

	ev := model.Event{
		ID:           "e3",
		AssetID:      "asset-1",
		Date:         day("2024-05-01"),
		Kind:         model.KindCashMerger,
		CashPerShare: d("130"),
	}
	records, err := l.ConsumeAllForCashMerger(ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected one record per lot, got %d", len(records))
	}
	if !records[0].TotalProceeds.Equal(d("1300")) || !records[1].TotalProceeds.Equal(d("650")) {
		t.Errorf("proceeds = %s / %s, want 1300 / 650", records[0].TotalProceeds, records[1].TotalProceeds)
	}
	if records[0].Kind != model.RealizationCashMerger {
		t.Errorf("kind = %s, want cash_merger_disposal", records[0].Kind)
	}
	if len(l.Longs()) != 0 {
		t.Errorf("expected long list cleared, got %d lots", len(l.Longs()))
	}
}

func TestRemoveQuantity(t *testing.T) {
	t.Run("long removal consumes oldest lots and returns the basis", func(t *testing.T) {
		asset := model.Asset{ID: "o1", Category: model.CategoryOption, Multiplier: d("100")}
		l := NewLedger(asset, numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2024-01-10", "10", "1000"))
		mustAdd(t, l, buyEvent("e2", "t2", "2024-02-10", "5", "600"))

		ev := model.Event{ID: "e3", AssetID: "o1", Date: day("2024-03-15"), Kind: model.KindOptionExercise}
		basis, err := l.RemoveLongQuantity(ev, d("12"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Full first lot plus 2 of 5 from the second: 1000 + 240.
		if !basis.Equal(d("1240")) {
			t.Errorf("basis = %s, want 1240", basis)
		}
		if !l.CurrentPositionQuantity().Equal(d("3")) {
			t.Errorf("position = %s, want 3", l.CurrentPositionQuantity())
		}
		lots := l.Longs()
		if len(lots) != 1 || !lots[0].TotalCost.Equal(d("360")) {
			t.Errorf("remaining lot = %+v, want 3 units at total 360", lots)
		}
	})

	t.Run("short removal returns the opening proceeds", func(t *testing.T) {
		asset := model.Asset{ID: "o1", Category: model.CategoryOption, Multiplier: d("100")}
		l := NewLedger(asset, numeric.DefaultContext())
		short := buyEvent("e1", "t1", "2024-01-10", "10", "1200")
		short.Side = model.SideShort
		if err := l.AddShortLot(short); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ev := model.Event{ID: "e2", AssetID: "o1", Date: day("2024-03-15"), Kind: model.KindOptionAssignment}
		proceeds, err := l.RemoveShortQuantity(ev, d("4"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !proceeds.Equal(d("480")) {
			t.Errorf("proceeds = %s, want 480", proceeds)
		}
		if !l.CurrentPositionQuantity().Equal(d("-6")) {
			t.Errorf("position = %s, want -6", l.CurrentPositionQuantity())
		}
	})

	t.Run("removal beyond the open position fails", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2024-01-10", "5", "500"))

		ev := model.Event{ID: "e2", AssetID: "asset-1", Date: day("2024-03-15"), Kind: model.KindOptionExercise}
		if _, err := l.RemoveLongQuantity(ev, d("6")); !errors.Is(err, apperrors.ErrInsufficientLots) {
			t.Errorf("expected ErrInsufficientLots, got %v", err)
		}
	})
}

func TestAddStockDividendLot(t *testing.T) {
	l := NewLedger(equityAsset(), numeric.DefaultContext())
	ev := model.Event{
		ID:        "e1",
		AssetID:   "asset-1",
		Date:      day("2024-04-01"),
		Kind:      model.KindStockDividend,
		Quantity:  d("2"),
		UnitPrice: d("0"), // tax-free treatment
	}
	if err := l.AddStockDividendLot(ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lots := l.Longs()
	if len(lots) != 1 {
		t.Fatalf("expected 1 lot, got %d", len(lots))
	}
	if !lots[0].TotalCost.IsZero() {
		t.Errorf("expected zero cost basis, got %s", lots[0].TotalCost)
	}
	if !lots[0].AcquisitionDate.Equal(day("2024-04-01")) {
		t.Errorf("lot date = %s, want event date", lots[0].AcquisitionDate)
	}
}

func TestReduceCostBasisForCapitalRepayment(t *testing.T) {
	t.Run("reduces oldest lot first and floors at zero", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2024-01-10", "10", "1000"))
		mustAdd(t, l, buyEvent("e2", "t2", "2024-02-10", "10", "500"))

		excess := l.ReduceCostBasisForCapitalRepayment(d("1200"))
		if !excess.IsZero() {
			t.Errorf("excess = %s, want 0", excess)
		}

		lots := l.Longs()
		if !lots[0].TotalCost.IsZero() {
			t.Errorf("oldest lot basis = %s, want 0", lots[0].TotalCost)
		}
		if !lots[1].TotalCost.Equal(d("300")) {
			t.Errorf("second lot basis = %s, want 300", lots[1].TotalCost)
		}
		if !lots[1].UnitCost.Equal(d("30")) {
			t.Errorf("second lot unit = %s, want 30", lots[1].UnitCost)
		}
	})

	t.Run("returns excess once every basis is zero", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2024-01-10", "10", "1000"))

		excess := l.ReduceCostBasisForCapitalRepayment(d("1400"))
		if !excess.Equal(d("400")) {
			t.Errorf("excess = %s, want 400", excess)
		}
	})
}

func TestTagging(t *testing.T) {
	t.Run("fund sale gets partial exemption", func(t *testing.T) {
		asset := model.Asset{ID: "f1", Category: model.CategoryFund, FundSubtype: model.FundEquity}
		l := NewLedger(asset, numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2024-01-10", "10", "1000"))

		records, err := l.ConsumeLongLotsForSale(sellEvent("e2", "t2", "2024-06-10", "10", "1500"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rec := records[0]
		if rec.TaxCategory != model.TaxFundIncome {
			t.Errorf("category = %s, want fund_income", rec.TaxCategory)
		}
		if !rec.ExemptionRate.Equal(d("0.30")) {
			t.Errorf("exemption rate = %s, want 0.30", rec.ExemptionRate)
		}
		// 500 gross, 30% exempt -> 350 net.
		if !rec.Net.Equal(d("350")) {
			t.Errorf("net = %s, want 350", rec.Net)
		}
	})

	t.Run("fund loss exemption shrinks the loss", func(t *testing.T) {
		asset := model.Asset{ID: "f1", Category: model.CategoryFund, FundSubtype: model.FundMixed}
		l := NewLedger(asset, numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2024-01-10", "10", "1000"))

		records, err := l.ConsumeLongLotsForSale(sellEvent("e2", "t2", "2024-06-10", "10", "800"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// -200 gross, 15% exempt -> -170 net.
		if !records[0].Net.Equal(d("-170")) {
			t.Errorf("net = %s, want -170", records[0].Net)
		}
	})

	t.Run("bond sale maps to other income", func(t *testing.T) {
		asset := model.Asset{ID: "b1", Category: model.CategoryBond}
		l := NewLedger(asset, numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2024-01-10", "10", "1000"))

		records, err := l.ConsumeLongLotsForSale(sellEvent("e2", "t2", "2024-06-10", "10", "900"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if records[0].TaxCategory != model.TaxOtherLoss {
			t.Errorf("category = %s, want other_loss", records[0].TaxCategory)
		}
	})

	t.Run("private sale beyond a year is period exempt", func(t *testing.T) {
		asset := model.Asset{ID: "p1", Category: model.CategoryPrivate}
		l := NewLedger(asset, numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2023-01-10", "1", "1000"))

		records, err := l.ConsumeLongLotsForSale(sellEvent("e2", "t2", "2024-06-10", "1", "1500"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !records[0].PeriodExempt || records[0].TaxCategory != model.TaxPrivateExempt {
			t.Errorf("expected period-exempt private sale, got %s", records[0].TaxCategory)
		}
	})

	t.Run("private sale inside a year is taxable", func(t *testing.T) {
		asset := model.Asset{ID: "p1", Category: model.CategoryPrivate}
		l := NewLedger(asset, numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2024-01-10", "1", "1000"))

		records, err := l.ConsumeLongLotsForSale(sellEvent("e2", "t2", "2024-06-10", "1", "1500"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if records[0].TaxCategory != model.TaxPrivateSale {
			t.Errorf("category = %s, want private_sale", records[0].TaxCategory)
		}
	})

	t.Run("short option expiring worthless is writer income", func(t *testing.T) {
		asset := model.Asset{ID: "o1", Category: model.CategoryOption, Multiplier: d("100")}
		l := NewLedger(asset, numeric.DefaultContext())
		short := buyEvent("e1", "t1", "2024-01-10", "1", "150")
		short.Side = model.SideShort
		if err := l.AddShortLot(short); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ev := model.Event{ID: "e2", AssetID: "o1", Date: day("2024-02-16"), Kind: model.KindOptionExpiration}
		records, err := l.ExpireShortLots(ev)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rec := records[0]
		if rec.Kind != model.RealizationOptionExpiredShort {
			t.Errorf("kind = %s, want option_expired_short", rec.Kind)
		}
		if !rec.WriterIncome {
			t.Error("expected writer income flag")
		}
		if !rec.Gross.Equal(d("150")) {
			t.Errorf("gross = %s, want 150", rec.Gross)
		}
	})

	t.Run("long option expiring worthless is a derivative loss", func(t *testing.T) {
		asset := model.Asset{ID: "o1", Category: model.CategoryOption, Multiplier: d("100")}
		l := NewLedger(asset, numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2024-01-10", "1", "250"))

		ev := model.Event{ID: "e2", AssetID: "o1", Date: day("2024-02-16"), Kind: model.KindOptionExpiration}
		records, err := l.ExpireLongLots(ev)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rec := records[0]
		if rec.Kind != model.RealizationOptionExpiredLong {
			t.Errorf("kind = %s, want option_expired_long", rec.Kind)
		}
		if rec.TaxCategory != model.TaxDerivativeLoss {
			t.Errorf("category = %s, want derivative_loss", rec.TaxCategory)
		}
		if !rec.Gross.Equal(d("-250")) {
			t.Errorf("gross = %s, want -250", rec.Gross)
		}
	})
}

func TestSeedHelpers(t *testing.T) {
	t.Run("truncate drops excess from oldest lots", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2023-01-10", "10", "1000"))
		mustAdd(t, l, buyEvent("e2", "t2", "2023-06-10", "10", "1200"))

		l.TruncateToQuantity(d("12"))

		lots := l.Longs()
		if len(lots) != 2 {
			t.Fatalf("expected 2 lots, got %d", len(lots))
		}
		if !lots[0].Quantity.Equal(d("2")) {
			t.Errorf("oldest lot truncated to %s, want 2", lots[0].Quantity)
		}
		if !lots[0].TotalCost.Equal(d("200")) {
			t.Errorf("oldest lot cost = %s, want 200", lots[0].TotalCost)
		}
		if !l.CurrentPositionQuantity().Equal(d("12")) {
			t.Errorf("position = %s, want 12", l.CurrentPositionQuantity())
		}
	})

	t.Run("truncate to zero clears the ledger", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		mustAdd(t, l, buyEvent("e1", "t1", "2023-01-10", "10", "1000"))

		l.TruncateToQuantity(decimal.Zero)
		if len(l.Longs()) != 0 {
			t.Errorf("expected no lots, got %d", len(l.Longs()))
		}
	})

	t.Run("fallback lot carries reported basis", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		l.SeedFallbackLot(day("2023-12-31"), d("20"), d("2000"))

		lots := l.Longs()
		if len(lots) != 1 {
			t.Fatalf("expected 1 lot, got %d", len(lots))
		}
		if !lots[0].AcquisitionDate.Equal(day("2023-12-31")) {
			t.Errorf("lot date = %s, want 2023-12-31", lots[0].AcquisitionDate)
		}
		if !lots[0].UnitCost.Equal(d("100")) {
			t.Errorf("unit cost = %s, want 100", lots[0].UnitCost)
		}
	})

	t.Run("negative fallback seeds a short lot", func(t *testing.T) {
		l := NewLedger(equityAsset(), numeric.DefaultContext())
		l.SeedFallbackLot(day("2023-12-31"), d("-5"), d("600"))

		if len(l.Shorts()) != 1 {
			t.Fatalf("expected 1 short lot, got %d", len(l.Shorts()))
		}
		if !l.CurrentPositionQuantity().Equal(d("-5")) {
			t.Errorf("position = %s, want -5", l.CurrentPositionQuantity())
		}
	})
}

func mustAdd(t *testing.T, l *Ledger, ev model.Event) {
	t.Helper()
	if err := l.AddLongLot(ev); err != nil {
		t.Fatalf("AddLongLot: %v", err)
	}
}
