package service_test

import (
	"errors"
	"testing"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/model"
	"github.com/mvdbosch/kapgains/internal/testutil"
)

// TestAssetService_CreateAsset tests asset creation.
//
// WHY: Assets are the anchor of every calculation; an asset that round-trips
// incorrectly corrupts every downstream ledger. This verifies ID assignment,
// required-field validation and field fidelity through the database.
func TestAssetService_CreateAsset(t *testing.T) {
	t.Run("assigns an ID when none given", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAssetService(t, db)

		// Execute
		created, err := svc.CreateAsset(model.Asset{
			Name:     "Siemens AG",
			Category: model.CategoryEquity,
		})

		// Assert
		if err != nil {
			t.Fatalf("CreateAsset() returned unexpected error: %v", err)
		}
		if created.ID == "" {
			t.Error("Expected generated ID, got empty string")
		}
	})

	t.Run("rejects missing name", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAssetService(t, db)

		// Execute
		_, err := svc.CreateAsset(model.Asset{Category: model.CategoryEquity})

		// Assert
		if !errors.Is(err, apperrors.ErrMissingRequiredField) {
			t.Errorf("Expected ErrMissingRequiredField, got %v", err)
		}
	})

	t.Run("round-trips fund subtype and positions", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAssetService(t, db)

		created, err := svc.CreateAsset(model.Asset{
			Name:                 "Global Equity ETF",
			Category:             model.CategoryFund,
			FundSubtype:          model.FundEquity,
			SOYQuantity:          mustDecimal("120.5"),
			SOYCostBasis:         mustDecimal("8400.25"),
			SOYCostBasisCurrency: "USD",
			EOYQuantity:          mustDecimal("80"),
		})
		if err != nil {
			t.Fatalf("CreateAsset() returned unexpected error: %v", err)
		}

		// Execute
		loaded, err := svc.GetAsset(created.ID)

		// Assert
		if err != nil {
			t.Fatalf("GetAsset() returned unexpected error: %v", err)
		}
		if loaded.FundSubtype != model.FundEquity {
			t.Errorf("Expected fund subtype %q, got %q", model.FundEquity, loaded.FundSubtype)
		}
		if !loaded.SOYQuantity.Equal(mustDecimal("120.5")) {
			t.Errorf("Expected SOY quantity 120.5, got %s", loaded.SOYQuantity)
		}
		if !loaded.SOYCostBasis.Equal(mustDecimal("8400.25")) {
			t.Errorf("Expected SOY cost basis 8400.25, got %s", loaded.SOYCostBasis)
		}
		if loaded.SOYCostBasisCurrency != "USD" {
			t.Errorf("Expected SOY currency USD, got %q", loaded.SOYCostBasisCurrency)
		}
		if !loaded.EOYQuantity.Equal(mustDecimal("80")) {
			t.Errorf("Expected EOY quantity 80, got %s", loaded.EOYQuantity)
		}
	})
}

// TestAssetService_GetAsset tests asset lookup error behavior.
func TestAssetService_GetAsset(t *testing.T) {
	t.Run("returns ErrAssetNotFound for unknown id", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAssetService(t, db)

		// Execute
		_, err := svc.GetAsset(testutil.MakeID())

		// Assert
		if !errors.Is(err, apperrors.ErrAssetNotFound) {
			t.Errorf("Expected ErrAssetNotFound, got %v", err)
		}
	})
}

// TestAssetService_ListAssets tests listing.
func TestAssetService_ListAssets(t *testing.T) {
	t.Run("returns empty slice when no assets exist", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAssetService(t, db)

		// Execute
		assets, err := svc.ListAssets()

		// Assert
		if err != nil {
			t.Fatalf("ListAssets() returned unexpected error: %v", err)
		}
		if len(assets) != 0 {
			t.Errorf("Expected empty slice, got %d assets", len(assets))
		}
	})

	t.Run("returns all assets sorted by name", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAssetService(t, db)

		testutil.NewAsset().WithName("Zeta Corp").Build(t, db)
		testutil.NewAsset().WithName("Alpha Corp").Build(t, db)

		// Execute
		assets, err := svc.ListAssets()

		// Assert
		if err != nil {
			t.Fatalf("ListAssets() returned unexpected error: %v", err)
		}
		if len(assets) != 2 {
			t.Fatalf("Expected 2 assets, got %d", len(assets))
		}
		if assets[0].Name != "Alpha Corp" || assets[1].Name != "Zeta Corp" {
			t.Errorf("Expected name order [Alpha Corp, Zeta Corp], got [%s, %s]",
				assets[0].Name, assets[1].Name)
		}
	})
}

// TestAssetService_UpdateAsset tests updates.
func TestAssetService_UpdateAsset(t *testing.T) {
	t.Run("persists changed fields", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAssetService(t, db)
		asset := testutil.NewAsset().WithName("Before").Build(t, db)

		asset.Name = "After"
		asset.EOYQuantity = mustDecimal("42")

		// Execute
		if err := svc.UpdateAsset(asset); err != nil {
			t.Fatalf("UpdateAsset() returned unexpected error: %v", err)
		}

		// Assert
		loaded, err := svc.GetAsset(asset.ID)
		if err != nil {
			t.Fatalf("GetAsset() returned unexpected error: %v", err)
		}
		if loaded.Name != "After" {
			t.Errorf("Expected name After, got %q", loaded.Name)
		}
		if !loaded.EOYQuantity.Equal(mustDecimal("42")) {
			t.Errorf("Expected EOY quantity 42, got %s", loaded.EOYQuantity)
		}
	})

	t.Run("returns ErrAssetNotFound for unknown id", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAssetService(t, db)

		// Execute
		err := svc.UpdateAsset(model.Asset{
			ID:       testutil.MakeID(),
			Name:     "Ghost",
			Category: model.CategoryEquity,
		})

		// Assert
		if !errors.Is(err, apperrors.ErrAssetNotFound) {
			t.Errorf("Expected ErrAssetNotFound, got %v", err)
		}
	})
}

// TestAssetService_DeleteAsset tests deletion and its cascade to events.
func TestAssetService_DeleteAsset(t *testing.T) {
	t.Run("removes the asset and its events", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAssetService(t, db)
		asset := testutil.NewAsset().Build(t, db)
		testutil.CreateBuy(t, db, asset.ID, "2024-03-01", "10", "1000")

		// Execute
		if err := svc.DeleteAsset(asset.ID); err != nil {
			t.Fatalf("DeleteAsset() returned unexpected error: %v", err)
		}

		// Assert
		testutil.AssertRowCount(t, db, "asset", 0)
		testutil.AssertRowCount(t, db, "event", 0)
	})

	t.Run("returns ErrAssetNotFound for unknown id", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAssetService(t, db)

		// Execute
		err := svc.DeleteAsset(testutil.MakeID())

		// Assert
		if !errors.Is(err, apperrors.ErrAssetNotFound) {
			t.Errorf("Expected ErrAssetNotFound, got %v", err)
		}
	})
}
