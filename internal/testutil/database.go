package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE asset (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			isin VARCHAR(12),
			symbol VARCHAR(30),
			category VARCHAR(10) NOT NULL,
			multiplier TEXT NOT NULL DEFAULT '1',
			fund_subtype VARCHAR(30),
			soy_quantity TEXT NOT NULL DEFAULT '0',
			soy_cost_basis TEXT NOT NULL DEFAULT '0',
			soy_cost_basis_currency VARCHAR(3),
			eoy_quantity TEXT NOT NULL DEFAULT '0',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE event (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			transaction_id VARCHAR(100),
			asset_id VARCHAR(36),
			date DATE NOT NULL,
			kind VARCHAR(25) NOT NULL,
			side VARCHAR(6),
			quantity TEXT NOT NULL DEFAULT '0',
			unit_price TEXT NOT NULL DEFAULT '0',
			amount TEXT NOT NULL DEFAULT '0',
			currency VARCHAR(3),
			fees TEXT NOT NULL DEFAULT '0',
			ratio TEXT NOT NULL DEFAULT '0',
			cash_per_share TEXT NOT NULL DEFAULT '0',
			description TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(asset_id) REFERENCES asset(id) ON DELETE CASCADE
		);

		CREATE TABLE tax_run (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			year INTEGER NOT NULL,
			ran_at DATETIME NOT NULL,
			event_count INTEGER NOT NULL,
			record_count INTEGER NOT NULL,
			mismatch_count INTEGER NOT NULL
		);

		CREATE TABLE realized_gain_loss (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			run_id VARCHAR(36) NOT NULL,
			event_id VARCHAR(36) NOT NULL,
			asset_id VARCHAR(36) NOT NULL,
			category VARCHAR(10) NOT NULL,
			acquisition_date DATE NOT NULL,
			realization_date DATE NOT NULL,
			kind VARCHAR(25) NOT NULL,
			quantity TEXT NOT NULL,
			unit_cost TEXT NOT NULL,
			total_cost TEXT NOT NULL,
			unit_proceeds TEXT NOT NULL,
			total_proceeds TEXT NOT NULL,
			gross TEXT NOT NULL,
			holding_days INTEGER NOT NULL,
			tax_category VARCHAR(20) NOT NULL,
			exemption_rate TEXT NOT NULL DEFAULT '0',
			net TEXT NOT NULL DEFAULT '0',
			writer_income BOOLEAN NOT NULL DEFAULT FALSE,
			period_exempt BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(run_id) REFERENCES tax_run(id) ON DELETE CASCADE,
			FOREIGN KEY(asset_id) REFERENCES asset(id)
		);

		CREATE TABLE offset_result (
			run_id VARCHAR(36) NOT NULL PRIMARY KEY,
			combined_income TEXT NOT NULL,
			net_equity TEXT NOT NULL,
			net_other TEXT NOT NULL,
			net_derivatives_uncapped TEXT NOT NULL,
			net_derivatives TEXT NOT NULL,
			fund_income_net TEXT NOT NULL,
			private_net TEXT NOT NULL,
			FOREIGN KEY(run_id) REFERENCES tax_run(id) ON DELETE CASCADE
		);

		CREATE TABLE offset_category (
			run_id VARCHAR(36) NOT NULL,
			category VARCHAR(20) NOT NULL,
			amount TEXT NOT NULL,
			PRIMARY KEY (run_id, category),
			FOREIGN KEY(run_id) REFERENCES tax_run(id) ON DELETE CASCADE
		);

		CREATE TABLE exchange_rate (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			currency VARCHAR(3) NOT NULL,
			date DATE NOT NULL,
			rate TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_exchange_rate UNIQUE (currency, date)
		);

		CREATE TABLE broker_config (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			flex_query_id VARCHAR(100) NOT NULL,
			flex_token VARCHAR(500) NOT NULL,
			token_expires_at DATETIME,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX ix_event_date ON event(date);
		CREATE INDEX ix_event_asset_id ON event(asset_id);
		CREATE INDEX ix_rgl_run_id ON realized_gain_loss(run_id);
		CREATE INDEX ix_exchange_rate_currency_date ON exchange_rate(currency, date);
	`

	_, err := db.Exec(schema)
	return err
}

// CleanDatabase truncates all tables in dependency order.
// Useful for reusing the same database across multiple tests.
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	// Order matters: delete children before parents due to foreign keys
	tables := []string{
		"offset_category",
		"offset_result",
		"realized_gain_loss",
		"tax_run",
		"event",
		"asset",
		"exchange_rate",
		"broker_config",
	}

	for _, table := range tables {
		query := "DELETE FROM " + table
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	query := "SELECT COUNT(*) FROM " + table
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
