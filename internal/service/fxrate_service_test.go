package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/ecb"
	"github.com/mvdbosch/kapgains/internal/testutil"
)

// newRateServer returns an httptest server answering Frankfurter-style rate
// queries with a fixed rate, and the ecb client pointed at it.
func newRateServer(t *testing.T, rate string) (*httptest.Server, *ecb.Client) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Path[1:]
		fmt.Fprintf(w, `{"base":"%s","date":"%s","rates":{"EUR":%s}}`,
			r.URL.Query().Get("from"), date, rate)
	}))
	t.Cleanup(server.Close)

	client := ecb.NewClient()
	client.BaseURL = server.URL
	return server, client
}

// TestFxRateService_ConvertToEUR tests currency conversion resolution.
//
// WHY: Every foreign-currency figure in a tax run flows through this
// conversion. The fallback chain (stored rate, recent stored rate, live
// fetch) decides whether a run can complete at all.
func TestFxRateService_ConvertToEUR(t *testing.T) {
	t.Run("passes EUR amounts through unchanged", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFxRateService(t, db)

		// Execute
		converted, err := svc.ConvertToEUR(mustDecimal("123.45"), "EUR", mustDate("2024-03-01"))

		// Assert
		if err != nil {
			t.Fatalf("ConvertToEUR() returned unexpected error: %v", err)
		}
		if !converted.Equal(mustDecimal("123.45")) {
			t.Errorf("Expected 123.45, got %s", converted)
		}
	})

	t.Run("uses the stored rate for the exact date", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFxRateService(t, db)
		testutil.CreateExchangeRate(t, db, "USD", "2024-03-01", "0.92")

		// Execute
		converted, err := svc.ConvertToEUR(mustDecimal("100"), "USD", mustDate("2024-03-01"))

		// Assert
		if err != nil {
			t.Fatalf("ConvertToEUR() returned unexpected error: %v", err)
		}
		if !converted.Equal(mustDecimal("92")) {
			t.Errorf("Expected 92, got %s", converted)
		}
	})

	t.Run("falls back to a recent stored rate over a weekend", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFxRateService(t, db)
		// Friday rate; requested date is the following Sunday
		testutil.CreateExchangeRate(t, db, "USD", "2024-03-01", "0.9")

		// Execute
		converted, err := svc.ConvertToEUR(mustDecimal("200"), "USD", mustDate("2024-03-03"))

		// Assert
		if err != nil {
			t.Fatalf("ConvertToEUR() returned unexpected error: %v", err)
		}
		if !converted.Equal(mustDecimal("180")) {
			t.Errorf("Expected 180, got %s", converted)
		}
	})

	t.Run("fetches and stores a missing rate from the API", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		_, client := newRateServer(t, "0.85")
		svc := testutil.NewTestFxRateServiceWithClient(t, db, client)

		// Execute
		converted, err := svc.ConvertToEUR(mustDecimal("100"), "GBP", mustDate("2024-03-01"))

		// Assert
		if err != nil {
			t.Fatalf("ConvertToEUR() returned unexpected error: %v", err)
		}
		if !converted.Equal(mustDecimal("85")) {
			t.Errorf("Expected 85, got %s", converted)
		}
		// Fetched rate is cached for subsequent conversions
		testutil.AssertRowCount(t, db, "exchange_rate", 1)
	})

	t.Run("wraps resolution failures in ErrConversionFailed", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)
		client := ecb.NewClient()
		client.BaseURL = server.URL
		svc := testutil.NewTestFxRateServiceWithClient(t, db, client)

		// Execute
		_, err := svc.ConvertToEUR(mustDecimal("100"), "USD", mustDate("2024-03-01"))

		// Assert
		if !errors.Is(err, apperrors.ErrConversionFailed) {
			t.Errorf("Expected ErrConversionFailed, got %v", err)
		}
	})
}

// TestFxRateService_Backfill tests the date-range backfill.
//
// WHY: Backfill seeds the local store ahead of a run so the engine never
// blocks on the network mid-calculation.
func TestFxRateService_Backfill(t *testing.T) {
	t.Run("stores one rate per weekday per currency", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		_, client := newRateServer(t, "0.9")
		svc := testutil.NewTestFxRateServiceWithClient(t, db, client)

		// Mon 2024-03-04 through Sun 2024-03-10: five weekdays
		from := mustDate("2024-03-04")
		to := mustDate("2024-03-10")

		// Execute
		err := svc.Backfill(context.Background(), []string{"USD", "GBP"}, from, to)

		// Assert
		if err != nil {
			t.Fatalf("Backfill() returned unexpected error: %v", err)
		}
		testutil.AssertRowCount(t, db, "exchange_rate", 10)
	})
}
