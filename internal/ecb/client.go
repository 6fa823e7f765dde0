// Package ecb fetches ECB daily reference rates through the Frankfurter
// API. Rates are expressed as the EUR value of one unit of foreign
// currency, matching how they are stored and applied.
package ecb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public Frankfurter endpoint. Override in Client for
// testing or a self-hosted instance.
const DefaultBaseURL = "https://api.frankfurter.app"

// MaxBacktrackDays is how many days the client walks backwards when the
// requested date is a weekend or ECB holiday.
const MaxBacktrackDays = 5

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type rateResponse struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// FetchRate returns the EUR value of one unit of currency on the given
// date, together with the publication date actually used. Non-trading days
// backtrack up to MaxBacktrackDays.
func (c *Client) FetchRate(ctx context.Context, currency string, date time.Time) (decimal.Decimal, time.Time, error) {
	target := date
	for i := 0; i <= MaxBacktrackDays; i++ {
		rate, published, err := c.fetchDay(ctx, currency, target)
		if err == nil {
			return rate, published, nil
		}
		if err != errNoRateForDay {
			return decimal.Zero, time.Time{}, err
		}
		target = target.AddDate(0, 0, -1)
	}
	return decimal.Zero, time.Time{}, fmt.Errorf("no ECB rate for %s within %d days of %s",
		currency, MaxBacktrackDays, date.Format("2006-01-02"))
}

var errNoRateForDay = fmt.Errorf("no rate published for requested day")

func (c *Client) fetchDay(ctx context.Context, currency string, date time.Time) (decimal.Decimal, time.Time, error) {
	// Frankfurter quotes from=EUR as units of foreign currency per EUR;
	// asking from=<currency>&to=EUR yields EUR per unit directly.
	url := fmt.Sprintf("%s/%s?from=%s&to=EUR", c.BaseURL, date.Format("2006-01-02"), currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("failed to build rate request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("failed to fetch rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return decimal.Zero, time.Time{}, errNoRateForDay
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, time.Time{}, fmt.Errorf("rate API returned status %d", resp.StatusCode)
	}

	var result rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("failed to decode rate response: %w", err)
	}
	rate, ok := result.Rates["EUR"]
	if !ok {
		return decimal.Zero, time.Time{}, errNoRateForDay
	}

	published, err := time.Parse("2006-01-02", result.Date)
	if err != nil {
		published = date
	}
	return rate, published.UTC(), nil
}
