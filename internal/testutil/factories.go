package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mvdbosch/kapgains/internal/model"
)

// AssetBuilder provides a fluent interface for creating test assets.
//
// Example usage:
//
//	// Simple creation with defaults
//	asset := testutil.NewAsset().Build(t, db)
//
//	// Customized asset
//	asset := testutil.NewAsset().
//	    WithName("Custom Corp").
//	    WithCategory(model.CategoryFund).
//	    WithFundSubtype(model.FundEquity).
//	    Build(t, db)
type AssetBuilder struct {
	ID                   string
	Name                 string
	Isin                 string
	Symbol               string
	Category             model.AssetCategory
	Multiplier           decimal.Decimal
	FundSubtype          model.FundSubtype
	SOYQuantity          decimal.Decimal
	SOYCostBasis         decimal.Decimal
	SOYCostBasisCurrency string
	EOYQuantity          decimal.Decimal
}

// NewAsset creates an AssetBuilder with sensible defaults.
func NewAsset() *AssetBuilder {
	return &AssetBuilder{
		ID:         MakeID(),
		Name:       MakeAssetName("Test Asset"),
		Isin:       MakeISIN("DE"),
		Symbol:     MakeSymbol("TST"),
		Category:   model.CategoryEquity,
		Multiplier: decimal.NewFromInt(1),
	}
}

// WithID sets a custom ID.
func (b *AssetBuilder) WithID(id string) *AssetBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *AssetBuilder) WithName(name string) *AssetBuilder {
	b.Name = name
	return b
}

// WithCategory sets the tax category.
func (b *AssetBuilder) WithCategory(category model.AssetCategory) *AssetBuilder {
	b.Category = category
	return b
}

// WithMultiplier sets the contract multiplier.
func (b *AssetBuilder) WithMultiplier(multiplier int64) *AssetBuilder {
	b.Multiplier = decimal.NewFromInt(multiplier)
	return b
}

// WithFundSubtype sets the fund subtype and switches the category to fund.
func (b *AssetBuilder) WithFundSubtype(subtype model.FundSubtype) *AssetBuilder {
	b.Category = model.CategoryFund
	b.FundSubtype = subtype
	return b
}

// WithSOY sets the broker-reported start-of-year position.
func (b *AssetBuilder) WithSOY(quantity, costBasis string) *AssetBuilder {
	b.SOYQuantity = decimal.RequireFromString(quantity)
	b.SOYCostBasis = decimal.RequireFromString(costBasis)
	return b
}

// WithSOYCurrency sets the currency of the reported start-of-year cost basis.
func (b *AssetBuilder) WithSOYCurrency(currency string) *AssetBuilder {
	b.SOYCostBasisCurrency = currency
	return b
}

// WithEOY sets the broker-reported end-of-year quantity.
func (b *AssetBuilder) WithEOY(quantity string) *AssetBuilder {
	b.EOYQuantity = decimal.RequireFromString(quantity)
	return b
}

// Build creates the asset in the database and returns it.
func (b *AssetBuilder) Build(t *testing.T, db *sql.DB) model.Asset {
	t.Helper()

	query := `
		INSERT INTO asset (
			id, name, isin, symbol, category, multiplier, fund_subtype,
			soy_quantity, soy_cost_basis, soy_cost_basis_currency, eoy_quantity
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID, b.Name, b.Isin, b.Symbol, string(b.Category),
		b.Multiplier.String(), string(b.FundSubtype),
		b.SOYQuantity.String(), b.SOYCostBasis.String(),
		b.SOYCostBasisCurrency, b.EOYQuantity.String(),
	)
	if err != nil {
		t.Fatalf("Failed to create test asset: %v", err)
	}

	return model.Asset{
		ID:                   b.ID,
		Name:                 b.Name,
		Isin:                 b.Isin,
		Symbol:               b.Symbol,
		Category:             b.Category,
		Multiplier:           b.Multiplier,
		FundSubtype:          b.FundSubtype,
		SOYQuantity:          b.SOYQuantity,
		SOYCostBasis:         b.SOYCostBasis,
		SOYCostBasisCurrency: b.SOYCostBasisCurrency,
		EOYQuantity:          b.EOYQuantity,
	}
}

// EventBuilder provides a fluent interface for creating test events.
//
// Example usage:
//
//	event := testutil.NewEvent(asset.ID).
//	    AsTrade(model.SideBuy).
//	    OnDate("2024-03-01").
//	    WithQuantity("10").
//	    WithAmount("1500").
//	    Build(t, db)
type EventBuilder struct {
	ID            string
	TransactionID string
	AssetID       string
	Date          time.Time
	Kind          model.EventKind
	Side          model.TradeSide
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Amount        decimal.Decimal
	Currency      string
	Fees          decimal.Decimal
	Ratio         decimal.Decimal
	CashPerShare  decimal.Decimal
	Description   string
}

// NewEvent creates an EventBuilder with sensible defaults. An empty assetID
// produces a ledger-less event with no asset reference.
func NewEvent(assetID string) *EventBuilder {
	return &EventBuilder{
		ID:            MakeID(),
		TransactionID: MakeTransactionID(),
		AssetID:       assetID,
		Date:          time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Kind:          model.KindTrade,
		Side:          model.SideBuy,
		Quantity:      decimal.NewFromInt(10),
		UnitPrice:     decimal.NewFromInt(100),
		Amount:        decimal.NewFromInt(1000),
		Currency:      "EUR",
	}
}

// WithID sets a custom ID.
func (b *EventBuilder) WithID(id string) *EventBuilder {
	b.ID = id
	return b
}

// WithTransactionID sets the broker transaction identifier.
func (b *EventBuilder) WithTransactionID(txID string) *EventBuilder {
	b.TransactionID = txID
	return b
}

// OnDate sets the event date from a YYYY-MM-DD string.
func (b *EventBuilder) OnDate(date string) *EventBuilder {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic("testutil: invalid event date " + date)
	}
	b.Date = t
	return b
}

// AsTrade sets the kind to trade with the given side.
func (b *EventBuilder) AsTrade(side model.TradeSide) *EventBuilder {
	b.Kind = model.KindTrade
	b.Side = side
	return b
}

// AsKind sets a non-trade event kind and clears the side.
func (b *EventBuilder) AsKind(kind model.EventKind) *EventBuilder {
	b.Kind = kind
	b.Side = ""
	return b
}

// WithQuantity sets the quantity.
func (b *EventBuilder) WithQuantity(quantity string) *EventBuilder {
	b.Quantity = decimal.RequireFromString(quantity)
	return b
}

// WithUnitPrice sets the unit price.
func (b *EventBuilder) WithUnitPrice(price string) *EventBuilder {
	b.UnitPrice = decimal.RequireFromString(price)
	return b
}

// WithAmount sets the gross monetary amount.
func (b *EventBuilder) WithAmount(amount string) *EventBuilder {
	b.Amount = decimal.RequireFromString(amount)
	return b
}

// WithCurrency sets the currency.
func (b *EventBuilder) WithCurrency(currency string) *EventBuilder {
	b.Currency = currency
	return b
}

// WithFees sets the fee component.
func (b *EventBuilder) WithFees(fees string) *EventBuilder {
	b.Fees = decimal.RequireFromString(fees)
	return b
}

// WithRatio sets the split or share exchange ratio.
func (b *EventBuilder) WithRatio(ratio string) *EventBuilder {
	b.Ratio = decimal.RequireFromString(ratio)
	return b
}

// WithCashPerShare sets the per-unit merger consideration.
func (b *EventBuilder) WithCashPerShare(cash string) *EventBuilder {
	b.CashPerShare = decimal.RequireFromString(cash)
	return b
}

// WithDescription sets the description.
func (b *EventBuilder) WithDescription(desc string) *EventBuilder {
	b.Description = desc
	return b
}

// Build creates the event in the database and returns it.
func (b *EventBuilder) Build(t *testing.T, db *sql.DB) model.Event {
	t.Helper()

	query := `
		INSERT INTO event (
			id, transaction_id, asset_id, date, kind, side,
			quantity, unit_price, amount, currency, fees, ratio,
			cash_per_share, description
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var assetID interface{}
	if b.AssetID != "" {
		assetID = b.AssetID
	}

	_, err := db.Exec(query,
		b.ID, b.TransactionID, assetID, b.Date.Format("2006-01-02"),
		string(b.Kind), string(b.Side),
		b.Quantity.String(), b.UnitPrice.String(), b.Amount.String(),
		b.Currency, b.Fees.String(), b.Ratio.String(),
		b.CashPerShare.String(), b.Description,
	)
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	return model.Event{
		ID:            b.ID,
		TransactionID: b.TransactionID,
		AssetID:       b.AssetID,
		Date:          b.Date,
		Kind:          b.Kind,
		Side:          b.Side,
		Quantity:      b.Quantity,
		UnitPrice:     b.UnitPrice,
		Amount:        b.Amount,
		Currency:      b.Currency,
		Fees:          b.Fees,
		Ratio:         b.Ratio,
		CashPerShare:  b.CashPerShare,
		Description:   b.Description,
	}
}

// Convenience functions

// CreateAsset creates an asset with the given name and default values.
func CreateAsset(t *testing.T, db *sql.DB, name string) model.Asset {
	t.Helper()
	return NewAsset().WithName(name).Build(t, db)
}

// CreateBuy creates a buy trade for an asset on the given date.
func CreateBuy(t *testing.T, db *sql.DB, assetID, date, quantity, amount string) model.Event {
	t.Helper()
	return NewEvent(assetID).
		AsTrade(model.SideBuy).
		OnDate(date).
		WithQuantity(quantity).
		WithAmount(amount).
		Build(t, db)
}

// CreateSell creates a sell trade for an asset on the given date.
func CreateSell(t *testing.T, db *sql.DB, assetID, date, quantity, amount string) model.Event {
	t.Helper()
	return NewEvent(assetID).
		AsTrade(model.SideSell).
		OnDate(date).
		WithQuantity(quantity).
		WithAmount(amount).
		Build(t, db)
}

// CreateExchangeRate inserts a stored ECB rate for a currency and date.
func CreateExchangeRate(t *testing.T, db *sql.DB, currency, date, rate string) {
	t.Helper()

	query := `
		INSERT INTO exchange_rate (id, currency, date, rate)
		VALUES (?, ?, ?, ?)
	`
	_, err := db.Exec(query, MakeID(), currency, date, rate)
	if err != nil {
		t.Fatalf("Failed to create test exchange rate: %v", err)
	}
}
