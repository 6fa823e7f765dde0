package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/model"
)

type ExchangeRateRepository struct {
	db *sql.DB
}

func NewExchangeRateRepository(db *sql.DB) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

// Upsert stores a rate, replacing any existing rate for the same currency
// and date.
func (r *ExchangeRateRepository) Upsert(rate model.ExchangeRate) error {
	if rate.ID == "" {
		rate.ID = uuid.New().String()
	}
	query := `
		INSERT INTO exchange_rate (id, currency, date, rate)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(currency, date) DO UPDATE SET rate = excluded.rate
	`
	_, err := r.db.Exec(query, rate.ID, rate.Currency, FormatDate(rate.Date), rate.Rate.String())
	if err != nil {
		return fmt.Errorf("failed to upsert exchange rate: %w", err)
	}
	return nil
}

// Get returns the rate stored for the exact currency and date.
func (r *ExchangeRateRepository) Get(currency string, date time.Time) (model.ExchangeRate, error) {
	query := `
		SELECT id, currency, date, rate FROM exchange_rate
		WHERE currency = ? AND date = ?
	`
	rate, err := scanExchangeRate(r.db.QueryRow(query, currency, FormatDate(date)))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ExchangeRate{}, fmt.Errorf("%w: %s on %s",
			apperrors.ErrExchangeRateNotFound, currency, FormatDate(date))
	}
	return rate, err
}

// GetMostRecent returns the newest stored rate on or before the given date,
// covering weekends and holidays on which the ECB publishes no rate.
func (r *ExchangeRateRepository) GetMostRecent(currency string, date time.Time) (model.ExchangeRate, error) {
	query := `
		SELECT id, currency, date, rate FROM exchange_rate
		WHERE currency = ? AND date <= ?
		ORDER BY date DESC
		LIMIT 1
	`
	rate, err := scanExchangeRate(r.db.QueryRow(query, currency, FormatDate(date)))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ExchangeRate{}, fmt.Errorf("%w: %s on or before %s",
			apperrors.ErrExchangeRateNotFound, currency, FormatDate(date))
	}
	return rate, err
}

// ListCurrencies returns the distinct currencies with stored rates.
func (r *ExchangeRateRepository) ListCurrencies() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT currency FROM exchange_rate ORDER BY currency ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveRates, err)
	}
	defer rows.Close()

	var currencies []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange_rate table: %w", err)
	}
	return currencies, nil
}

func scanExchangeRate(row rowScanner) (model.ExchangeRate, error) {
	var rate model.ExchangeRate
	var dateStr, rateStr string
	err := row.Scan(&rate.ID, &rate.Currency, &dateStr, &rateStr)
	if err != nil {
		return model.ExchangeRate{}, err
	}
	if rate.Date, err = ParseTime(dateStr); err != nil {
		return model.ExchangeRate{}, fmt.Errorf("failed to scan exchange rate %s: %w", rate.ID, err)
	}
	if rate.Rate, err = ParseDecimal(rateStr); err != nil {
		return model.ExchangeRate{}, fmt.Errorf("failed to scan exchange rate %s: %w", rate.ID, err)
	}
	return rate, nil
}
