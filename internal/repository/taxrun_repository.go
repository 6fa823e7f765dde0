package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/model"
)

type TaxRunRepository struct {
	db *sql.DB
}

func NewTaxRunRepository(db *sql.DB) *TaxRunRepository {
	return &TaxRunRepository{db: db}
}

// SaveRun persists a run together with its realized records and offsetting
// result in a single transaction.
func (r *TaxRunRepository) SaveRun(run model.TaxRun, records []model.RealizedGainLoss, offset model.OffsetResult) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO tax_run (id, year, ran_at, event_count, record_count, mismatch_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Year, run.RanAt.UTC().Format(time.RFC3339), run.EventCount, run.RecordCount, run.MismatchCount)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToPersistRun, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO realized_gain_loss (
			id, run_id, event_id, asset_id, category, acquisition_date,
			realization_date, kind, quantity, unit_cost, total_cost,
			unit_proceeds, total_proceeds, gross, holding_days, tax_category,
			exemption_rate, net, writer_income, period_exempt, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(
			rec.ID,
			run.ID,
			rec.EventID,
			rec.AssetID,
			string(rec.Category),
			FormatDate(rec.AcquisitionDate),
			FormatDate(rec.RealizationDate),
			string(rec.Kind),
			rec.Quantity.String(),
			rec.UnitCost.String(),
			rec.TotalCost.String(),
			rec.UnitProceeds.String(),
			rec.TotalProceeds.String(),
			rec.Gross.String(),
			rec.HoldingDays,
			string(rec.TaxCategory),
			rec.ExemptionRate.String(),
			rec.Net.String(),
			rec.WriterIncome,
			rec.PeriodExempt,
		)
		if err != nil {
			return fmt.Errorf("%w: record %s: %v", apperrors.ErrFailedToPersistRun, rec.ID, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO offset_result (
			run_id, combined_income, net_equity, net_other,
			net_derivatives_uncapped, net_derivatives, fund_income_net, private_net
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		offset.CombinedIncome.String(),
		offset.NetEquity.String(),
		offset.NetOther.String(),
		offset.NetDerivativesUncapped.String(),
		offset.NetDerivatives.String(),
		offset.FundIncomeNet.String(),
		offset.PrivateNet.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: offset result: %v", apperrors.ErrFailedToPersistRun, err)
	}

	for category, amount := range offset.Categories {
		_, err := tx.Exec(`
			INSERT INTO offset_category (run_id, category, amount) VALUES (?, ?, ?)
		`, run.ID, string(category), amount.String())
		if err != nil {
			return fmt.Errorf("%w: category %s: %v", apperrors.ErrFailedToPersistRun, category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToPersistRun, err)
	}
	return nil
}

func (r *TaxRunRepository) GetRun(id string) (model.TaxRun, error) {
	query := `
		SELECT id, year, ran_at, event_count, record_count, mismatch_count
		FROM tax_run WHERE id = ?
	`
	run, err := scanTaxRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.TaxRun{}, fmt.Errorf("%w: %s", apperrors.ErrTaxRunNotFound, id)
	}
	return run, err
}

func (r *TaxRunRepository) ListRuns() ([]model.TaxRun, error) {
	query := `
		SELECT id, year, ran_at, event_count, record_count, mismatch_count
		FROM tax_run ORDER BY ran_at DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveTaxRuns, err)
	}
	defer rows.Close()

	var runs []model.TaxRun
	for rows.Next() {
		run, err := scanTaxRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tax_run table: %w", err)
	}
	return runs, nil
}

func (r *TaxRunRepository) GetRecords(runID string) ([]model.RealizedGainLoss, error) {
	query := `
		SELECT id, run_id, event_id, asset_id, category, acquisition_date,
			realization_date, kind, quantity, unit_cost, total_cost,
			unit_proceeds, total_proceeds, gross, holding_days, tax_category,
			exemption_rate, net, writer_income, period_exempt, created_at
		FROM realized_gain_loss
		WHERE run_id = ?
		ORDER BY realization_date ASC, asset_id ASC, id ASC
	`
	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveRecords, err)
	}
	defer rows.Close()

	var records []model.RealizedGainLoss
	for rows.Next() {
		rec, err := scanRealizedGainLoss(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating realized_gain_loss table: %w", err)
	}
	return records, nil
}

func (r *TaxRunRepository) GetOffsetResult(runID string) (model.OffsetResult, error) {
	var result model.OffsetResult
	var combined, netEquity, netOther, uncapped, capped, fundNet, privateNet string

	err := r.db.QueryRow(`
		SELECT combined_income, net_equity, net_other, net_derivatives_uncapped,
			net_derivatives, fund_income_net, private_net
		FROM offset_result WHERE run_id = ?
	`, runID).Scan(&combined, &netEquity, &netOther, &uncapped, &capped, &fundNet, &privateNet)
	if errors.Is(err, sql.ErrNoRows) {
		return model.OffsetResult{}, fmt.Errorf("%w: %s", apperrors.ErrTaxRunNotFound, runID)
	}
	if err != nil {
		return model.OffsetResult{}, fmt.Errorf("failed to query offset_result table: %w", err)
	}

	fields := []struct {
		dst *decimal.Decimal
		str string
	}{
		{&result.CombinedIncome, combined},
		{&result.NetEquity, netEquity},
		{&result.NetOther, netOther},
		{&result.NetDerivativesUncapped, uncapped},
		{&result.NetDerivatives, capped},
		{&result.FundIncomeNet, fundNet},
		{&result.PrivateNet, privateNet},
	}
	for _, f := range fields {
		v, err := ParseDecimal(f.str)
		if err != nil {
			return model.OffsetResult{}, fmt.Errorf("failed to scan offset result %s: %w", runID, err)
		}
		*f.dst = v
	}

	result.Categories = make(map[model.TaxCategory]decimal.Decimal)
	rows, err := r.db.Query(`SELECT category, amount FROM offset_category WHERE run_id = ?`, runID)
	if err != nil {
		return model.OffsetResult{}, fmt.Errorf("failed to query offset_category table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var categoryStr, amountStr string
		if err := rows.Scan(&categoryStr, &amountStr); err != nil {
			return model.OffsetResult{}, fmt.Errorf("failed to scan offset category: %w", err)
		}
		category, err := model.ParseTaxCategory(categoryStr)
		if err != nil {
			return model.OffsetResult{}, fmt.Errorf("failed to scan offset category: %w", err)
		}
		amount, err := ParseDecimal(amountStr)
		if err != nil {
			return model.OffsetResult{}, fmt.Errorf("failed to scan offset category: %w", err)
		}
		result.Categories[category] = amount
	}
	if err = rows.Err(); err != nil {
		return model.OffsetResult{}, fmt.Errorf("error iterating offset_category table: %w", err)
	}
	return result, nil
}

func (r *TaxRunRepository) DeleteRun(id string) error {
	result, err := r.db.Exec(`DELETE FROM tax_run WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tax run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrTaxRunNotFound, id)
	}
	return nil
}

func scanTaxRun(row rowScanner) (model.TaxRun, error) {
	var run model.TaxRun
	var ranAt string
	err := row.Scan(&run.ID, &run.Year, &ranAt, &run.EventCount, &run.RecordCount, &run.MismatchCount)
	if err != nil {
		return model.TaxRun{}, err
	}
	run.RanAt, err = ParseTime(ranAt)
	if err != nil {
		return model.TaxRun{}, fmt.Errorf("failed to scan tax run %s: %w", run.ID, err)
	}
	return run, nil
}

func scanRealizedGainLoss(row rowScanner) (model.RealizedGainLoss, error) {
	var rec model.RealizedGainLoss
	var category, acquisition, realization, kind, taxCategory, createdAt string
	var quantity, unitCost, totalCost, unitProceeds, totalProceeds, gross, exemptionRate, net string

	err := row.Scan(
		&rec.ID,
		&rec.RunID,
		&rec.EventID,
		&rec.AssetID,
		&category,
		&acquisition,
		&realization,
		&kind,
		&quantity,
		&unitCost,
		&totalCost,
		&unitProceeds,
		&totalProceeds,
		&gross,
		&rec.HoldingDays,
		&taxCategory,
		&exemptionRate,
		&net,
		&rec.WriterIncome,
		&rec.PeriodExempt,
		&createdAt,
	)
	if err != nil {
		return model.RealizedGainLoss{}, err
	}

	if rec.Category, err = model.ParseAssetCategory(category); err != nil {
		return model.RealizedGainLoss{}, fmt.Errorf("failed to scan record %s: %w", rec.ID, err)
	}
	if rec.Kind, err = model.ParseRealizationKind(kind); err != nil {
		return model.RealizedGainLoss{}, fmt.Errorf("failed to scan record %s: %w", rec.ID, err)
	}
	if rec.TaxCategory, err = model.ParseTaxCategory(taxCategory); err != nil {
		return model.RealizedGainLoss{}, fmt.Errorf("failed to scan record %s: %w", rec.ID, err)
	}
	if rec.AcquisitionDate, err = ParseTime(acquisition); err != nil {
		return model.RealizedGainLoss{}, fmt.Errorf("failed to scan record %s: %w", rec.ID, err)
	}
	if rec.RealizationDate, err = ParseTime(realization); err != nil {
		return model.RealizedGainLoss{}, fmt.Errorf("failed to scan record %s: %w", rec.ID, err)
	}

	decimals := []struct {
		dst *decimal.Decimal
		str string
	}{
		{&rec.Quantity, quantity},
		{&rec.UnitCost, unitCost},
		{&rec.TotalCost, totalCost},
		{&rec.UnitProceeds, unitProceeds},
		{&rec.TotalProceeds, totalProceeds},
		{&rec.Gross, gross},
		{&rec.ExemptionRate, exemptionRate},
		{&rec.Net, net},
	}
	for _, d := range decimals {
		v, err := ParseDecimal(d.str)
		if err != nil {
			return model.RealizedGainLoss{}, fmt.Errorf("failed to scan record %s: %w", rec.ID, err)
		}
		*d.dst = v
	}

	rec.CreatedAt, _ = ParseTime(createdAt)
	return rec, nil
}
