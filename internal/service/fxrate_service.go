package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/ecb"
	"github.com/mvdbosch/kapgains/internal/model"
	"github.com/mvdbosch/kapgains/internal/repository"
)

// rateLookbackDays bounds how stale a stored rate may be when no rate
// exists for the exact date (weekends, ECB holidays).
const rateLookbackDays = 7

// FxRateService resolves EUR conversion rates from the local store, falling
// back to the ECB API for missing dates. It implements the engine's
// converter surface.
type FxRateService struct {
	repo   *repository.ExchangeRateRepository
	client *ecb.Client
}

func NewFxRateService(repo *repository.ExchangeRateRepository, client *ecb.Client) *FxRateService {
	return &FxRateService{repo: repo, client: client}
}

// ConvertToEUR converts an amount of foreign currency into EUR at the
// ECB reference rate for the given date.
func (s *FxRateService) ConvertToEUR(amount decimal.Decimal, currency string, date time.Time) (decimal.Decimal, error) {
	if currency == "" || currency == "EUR" {
		return amount, nil
	}
	rate, err := s.rateFor(currency, date)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s on %s: %v",
			apperrors.ErrConversionFailed, currency, date.Format("2006-01-02"), err)
	}
	return amount.Mul(rate), nil
}

func (s *FxRateService) rateFor(currency string, date time.Time) (decimal.Decimal, error) {
	if stored, err := s.repo.Get(currency, date); err == nil {
		return stored.Rate, nil
	}

	// A recent earlier rate covers non-trading days.
	if stored, err := s.repo.GetMostRecent(currency, date); err == nil {
		if date.Sub(stored.Date) <= rateLookbackDays*24*time.Hour {
			return stored.Rate, nil
		}
	}

	if s.client == nil {
		return decimal.Zero, apperrors.ErrExchangeRateNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	rate, published, err := s.client.FetchRate(ctx, currency, date)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.repo.Upsert(model.ExchangeRate{Currency: currency, Date: published, Rate: rate}); err != nil {
		log.Printf("failed to store fetched rate %s %s: %v", currency, published.Format("2006-01-02"), err)
	}
	return rate, nil
}

// Backfill fetches and stores daily rates for every currency over the date
// range, one goroutine per currency.
func (s *FxRateService) Backfill(ctx context.Context, currencies []string, from, to time.Time) error {
	if s.client == nil {
		return apperrors.ErrExchangeRateNotFound
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, currency := range currencies {
		g.Go(func() error {
			for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
				if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
					continue
				}
				rate, published, err := s.client.FetchRate(ctx, currency, day)
				if err != nil {
					return fmt.Errorf("backfill %s on %s: %w", currency, day.Format("2006-01-02"), err)
				}
				err = s.repo.Upsert(model.ExchangeRate{Currency: currency, Date: published, Rate: rate})
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// RefreshLatest fetches today's rate for every currency already present in
// the store. Ran daily by the scheduler.
func (s *FxRateService) RefreshLatest(ctx context.Context) error {
	currencies, err := s.repo.ListCurrencies()
	if err != nil {
		return err
	}
	if len(currencies) == 0 {
		return nil
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	g, ctx := errgroup.WithContext(ctx)
	for _, currency := range currencies {
		g.Go(func() error {
			rate, published, err := s.client.FetchRate(ctx, currency, today)
			if err != nil {
				return fmt.Errorf("refresh %s: %w", currency, err)
			}
			return s.repo.Upsert(model.ExchangeRate{Currency: currency, Date: published, Rate: rate})
		})
	}
	return g.Wait()
}
