package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/mvdbosch/kapgains/internal/ecb"
	"github.com/mvdbosch/kapgains/internal/numeric"
	"github.com/mvdbosch/kapgains/internal/offset"
	"github.com/mvdbosch/kapgains/internal/repository"
	"github.com/mvdbosch/kapgains/internal/service"
)

func NewTestAssetService(t *testing.T, db *sql.DB) *service.AssetService {
	t.Helper()

	assetRepo := repository.NewAssetRepository(db)

	return service.NewAssetService(assetRepo)
}

func NewTestEventService(t *testing.T, db *sql.DB) *service.EventService {
	t.Helper()

	eventRepo := repository.NewEventRepository(db)

	return service.NewEventService(eventRepo)
}

func NewTestFxRateService(t *testing.T, db *sql.DB) *service.FxRateService {
	t.Helper()

	rateRepo := repository.NewExchangeRateRepository(db)

	return service.NewFxRateService(rateRepo, ecb.NewClient())
}

// NewTestFxRateServiceWithClient creates an FxRateService backed by a custom
// ECB client. This is useful for testing conversions against an httptest
// server instead of the real API.
func NewTestFxRateServiceWithClient(t *testing.T, db *sql.DB, client *ecb.Client) *service.FxRateService {
	t.Helper()

	rateRepo := repository.NewExchangeRateRepository(db)

	return service.NewFxRateService(rateRepo, client)
}

func NewTestSettingsService(t *testing.T, db *sql.DB) *service.SettingsService {
	t.Helper()

	settingsRepo := repository.NewSettingsRepository(db)

	var key fernet.Key
	if err := key.Generate(); err != nil {
		t.Fatalf("Failed to generate fernet key: %v", err)
	}

	return service.NewSettingsService(settingsRepo, &key)
}

func NewTestTaxRunService(t *testing.T, db *sql.DB) *service.TaxRunService {
	t.Helper()

	taxRunRepo := repository.NewTaxRunRepository(db)
	assetService := NewTestAssetService(t, db)
	eventService := NewTestEventService(t, db)
	fxService := NewTestFxRateService(t, db)

	return service.NewTaxRunService(
		taxRunRepo,
		assetService,
		eventService,
		fxService,
		numeric.DefaultContext(),
		offset.DefaultConfig(),
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeISIN generates a realistic ISIN code for testing.
//
// Example usage:
//
//	isin := testutil.MakeISIN("US")
//	// Returns: "US1A2B3C4D5E"
func MakeISIN(prefix string) string {
	if prefix == "" {
		prefix = "US"
	}
	return prefix + randomAlphanumeric(10)
}

// MakeSymbol generates a stock ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("AAPL")
//	// Returns: "AAPL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakeAssetName generates a unique asset name for testing.
//
// Example usage:
//
//	name := testutil.MakeAssetName("Tech Corp")
//	// Returns: "Tech Corp XYZ789"
func MakeAssetName(base string) string {
	if base == "" {
		base = "Asset"
	}
	return base + " " + randomAlphanumeric(6)
}

// MakeTransactionID generates a broker-style numeric transaction identifier.
//
// Example usage:
//
//	txID := testutil.MakeTransactionID()
//	// Returns: "48273615"
func MakeTransactionID() string {
	const digits = "0123456789"
	result := make([]byte, 8)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = digits[rand.Intn(len(digits))]
	}
	return string(result)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// Common test constants

var (
	// CommonCurrencies contains frequently used currency codes
	CommonCurrencies = []string{"USD", "EUR", "GBP", "JPY", "CAD", "CHF", "AUD"}

	// CommonCountryPrefixes contains common ISIN country prefixes
	CommonCountryPrefixes = []string{"US", "GB", "DE", "FR", "JP", "CA", "CH", "AU"}
)

// RandomCurrency returns a random currency from CommonCurrencies.
func RandomCurrency() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return CommonCurrencies[rand.Intn(len(CommonCurrencies))]
}

// RandomCountryPrefix returns a random country prefix from CommonCountryPrefixes.
func RandomCountryPrefix() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return CommonCountryPrefixes[rand.Intn(len(CommonCountryPrefixes))]
}
