package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/model"
)

type AssetRepository struct {
	db *sql.DB
}

func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

const assetColumns = `id, name, isin, symbol, category, multiplier, fund_subtype,
	soy_quantity, soy_cost_basis, soy_cost_basis_currency, eoy_quantity, created_at`

func (r *AssetRepository) Create(asset model.Asset) error {
	query := `
		INSERT INTO asset (` + assetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	_, err := r.db.Exec(query,
		asset.ID,
		asset.Name,
		asset.Isin,
		asset.Symbol,
		string(asset.Category),
		asset.Multiplier.String(),
		string(asset.FundSubtype),
		asset.SOYQuantity.String(),
		asset.SOYCostBasis.String(),
		asset.SOYCostBasisCurrency,
		asset.EOYQuantity.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}
	return nil
}

func (r *AssetRepository) Update(asset model.Asset) error {
	query := `
		UPDATE asset
		SET name = ?, isin = ?, symbol = ?, category = ?, multiplier = ?,
			fund_subtype = ?, soy_quantity = ?, soy_cost_basis = ?,
			soy_cost_basis_currency = ?, eoy_quantity = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query,
		asset.Name,
		asset.Isin,
		asset.Symbol,
		string(asset.Category),
		asset.Multiplier.String(),
		string(asset.FundSubtype),
		asset.SOYQuantity.String(),
		asset.SOYCostBasis.String(),
		asset.SOYCostBasisCurrency,
		asset.EOYQuantity.String(),
		asset.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrAssetNotFound, asset.ID)
	}
	return nil
}

func (r *AssetRepository) GetByID(id string) (model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM asset WHERE id = ?`
	asset, err := scanAsset(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Asset{}, fmt.Errorf("%w: %s", apperrors.ErrAssetNotFound, id)
	}
	return asset, err
}

func (r *AssetRepository) List() ([]model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM asset ORDER BY name ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset table: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset table: %w", err)
	}
	return assets, nil
}

func (r *AssetRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM asset WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrAssetNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (model.Asset, error) {
	var a model.Asset
	var isin, symbol, category, multiplier, fundSubtype sql.NullString
	var soyQty, soyBasis, soyCurrency, eoyQty sql.NullString
	var createdAt sql.NullString

	err := row.Scan(
		&a.ID,
		&a.Name,
		&isin,
		&symbol,
		&category,
		&multiplier,
		&fundSubtype,
		&soyQty,
		&soyBasis,
		&soyCurrency,
		&eoyQty,
		&createdAt,
	)
	if err != nil {
		return model.Asset{}, err
	}

	a.Isin = isin.String
	a.Symbol = symbol.String
	a.SOYCostBasisCurrency = soyCurrency.String

	a.Category, err = model.ParseAssetCategory(category.String)
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to scan asset %s: %w", a.ID, err)
	}
	if fundSubtype.String != "" {
		a.FundSubtype = model.FundSubtype(fundSubtype.String)
	}

	if a.Multiplier, err = ParseDecimal(multiplier.String); err != nil {
		return model.Asset{}, fmt.Errorf("failed to scan asset %s: %w", a.ID, err)
	}
	if a.SOYQuantity, err = ParseDecimal(soyQty.String); err != nil {
		return model.Asset{}, fmt.Errorf("failed to scan asset %s: %w", a.ID, err)
	}
	if a.SOYCostBasis, err = ParseDecimal(soyBasis.String); err != nil {
		return model.Asset{}, fmt.Errorf("failed to scan asset %s: %w", a.ID, err)
	}
	if a.EOYQuantity, err = ParseDecimal(eoyQty.String); err != nil {
		return model.Asset{}, fmt.Errorf("failed to scan asset %s: %w", a.ID, err)
	}

	if createdAt.String != "" {
		a.CreatedAt, _ = ParseTime(createdAt.String)
	}
	return a, nil
}
