package taxyear

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/fifo"
	"github.com/mvdbosch/kapgains/internal/model"
	"github.com/mvdbosch/kapgains/internal/offset"
)

// process routes one event to its ledger operation or income collection.
// During start-of-year replay res is nil: lot state still mutates, but no
// realized records or income items are collected.
func (o *Orchestrator) process(ev model.Event, res *RunResult) error {
	switch ev.Kind {
	case model.KindTrade:
		return o.processTrade(ev, res)

	case model.KindSplit, model.KindStockMerger:
		led, err := o.ledgerFor(ev)
		if err != nil {
			return err
		}
		return led.AdjustForSplit(ev)

	case model.KindCashMerger:
		led, err := o.ledgerFor(ev)
		if err != nil {
			return err
		}
		records, err := led.ConsumeAllForCashMerger(ev)
		if err != nil {
			return err
		}
		collectRecords(res, records)
		return nil

	case model.KindStockDividend:
		led, err := o.ledgerFor(ev)
		if err != nil {
			return err
		}
		if err := led.AddStockDividendLot(ev); err != nil {
			return err
		}
		// A non-zero attributed unit value makes the distribution taxable
		// income at receipt.
		if ev.UnitPrice.IsPositive() && res != nil {
			res.Income = append(res.Income, offset.IncomeItem{
				EventID: ev.ID,
				Source:  ev.Kind,
				Amount:  ev.Quantity.Mul(ev.UnitPrice),
			})
		}
		return nil

	case model.KindOptionExercise:
		led, err := o.ledgerFor(ev)
		if err != nil {
			return err
		}
		_, err = led.RemoveLongQuantity(ev, ev.Quantity)
		return err

	case model.KindOptionAssignment:
		led, err := o.ledgerFor(ev)
		if err != nil {
			return err
		}
		_, err = led.RemoveShortQuantity(ev, ev.Quantity)
		return err

	case model.KindOptionExpiration:
		return o.processExpiration(ev, res)

	case model.KindCapitalRepayment:
		led, err := o.ledgerFor(ev)
		if err != nil {
			return err
		}
		excess := led.ReduceCostBasisForCapitalRepayment(o.amountEUR(ev))
		if excess.IsPositive() && res != nil {
			res.Income = append(res.Income, offset.IncomeItem{
				EventID: ev.ID,
				Source:  ev.Kind,
				Amount:  excess,
			})
		}
		return nil

	case model.KindDividend:
		return o.processDividend(ev, res)

	case model.KindFundDistribution:
		if res != nil {
			res.Distributions = append(res.Distributions, o.fundItem(ev))
		}
		return nil

	case model.KindVorabpauschale:
		if res != nil {
			res.Vorab = append(res.Vorab, o.fundItem(ev))
		}
		return nil

	case model.KindInterest, model.KindAccruedInterest:
		if res != nil {
			res.Income = append(res.Income, offset.IncomeItem{
				EventID: ev.ID,
				Source:  ev.Kind,
				Amount:  o.amountEUR(ev),
			})
		}
		return nil

	case model.KindWithholdingTax, model.KindFee, model.KindCurrencyConversion:
		// Recorded for completeness; no lot or income effect.
		return nil
	}

	return fmt.Errorf("%w: event %s has kind %q", apperrors.ErrUnclassifiedEvent, ev.ID, ev.Kind)
}

func (o *Orchestrator) processTrade(ev model.Event, res *RunResult) error {
	led, err := o.ledgerFor(ev)
	if err != nil {
		return err
	}
	switch ev.Side {
	case model.SideBuy:
		return led.AddLongLot(ev)
	case model.SideSell:
		records, err := led.ConsumeLongLotsForSale(ev)
		if err != nil {
			return err
		}
		collectRecords(res, records)
		return nil
	case model.SideShort:
		return led.AddShortLot(ev)
	case model.SideCover:
		records, err := led.ConsumeShortLotsForCover(ev)
		if err != nil {
			return err
		}
		collectRecords(res, records)
		return nil
	}
	return fmt.Errorf("%w: event %s has trade side %q", apperrors.ErrUnclassifiedEvent, ev.ID, ev.Side)
}

// processExpiration closes out whichever side of the position is open.
// A flat position expires to nothing.
func (o *Orchestrator) processExpiration(ev model.Event, res *RunResult) error {
	led, err := o.ledgerFor(ev)
	if err != nil {
		return err
	}
	var records []model.RealizedGainLoss
	switch led.CurrentPositionQuantity().Sign() {
	case 1:
		records, err = led.ExpireLongLots(ev)
	case -1:
		records, err = led.ExpireShortLots(ev)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	collectRecords(res, records)
	return nil
}

// processDividend routes fund dividends into the partial-exemption stream
// and everything else into ordinary income.
func (o *Orchestrator) processDividend(ev model.Event, res *RunResult) error {
	if res == nil {
		return nil
	}
	if ev.AssetID != "" {
		if led, ok := o.ledgers[ev.AssetID]; ok && led.Asset().Category == model.CategoryFund {
			res.Distributions = append(res.Distributions, o.fundItem(ev))
			return nil
		}
	}
	res.Income = append(res.Income, offset.IncomeItem{
		EventID: ev.ID,
		Source:  ev.Kind,
		Amount:  o.amountEUR(ev),
	})
	return nil
}

// fundItem applies the asset's partial exemption to a fund cash flow.
// Without a resolvable fund asset the exemption rate is zero.
func (o *Orchestrator) fundItem(ev model.Event) offset.FundItem {
	rate := decimal.Zero
	if led, ok := o.ledgers[ev.AssetID]; ok {
		rate = led.Asset().FundSubtype.ExemptionRate()
	}
	gross := o.amountEUR(ev)
	exempt := gross.Abs().Mul(rate)
	net := gross.Sub(exempt)
	if gross.IsNegative() {
		net = gross.Add(exempt)
	}
	return offset.FundItem{
		EventID:       ev.ID,
		AssetID:       ev.AssetID,
		Gross:         o.cfg.Numeric.Cents(gross),
		ExemptionRate: rate,
		Net:           o.cfg.Numeric.Cents(net),
	}
}

func (o *Orchestrator) ledgerFor(ev model.Event) (*fifo.Ledger, error) {
	led, ok := o.ledgers[ev.AssetID]
	if !ok {
		return nil, fmt.Errorf("%w: event %s references %q", apperrors.ErrMissingLedger, ev.ID, ev.AssetID)
	}
	return led, nil
}

func collectRecords(res *RunResult, records []model.RealizedGainLoss) {
	if res == nil {
		return
	}
	res.Records = append(res.Records, records...)
}
