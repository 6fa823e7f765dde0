package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/model"
)

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, transaction_id, asset_id, date, kind, side, quantity,
	unit_price, amount, currency, fees, ratio, cash_per_share, description, created_at`

const insertEventQuery = `
	INSERT INTO event (` + eventColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
`

func (r *EventRepository) Create(ev model.Event) error {
	_, err := r.db.Exec(insertEventQuery, eventArgs(ev)...)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// CreateBatch inserts all events in one transaction; either every event is
// stored or none is.
func (r *EventRepository) CreateBatch(events []model.Event) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertEventQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(eventArgs(ev)...); err != nil {
			return fmt.Errorf("failed to insert event %s: %w", ev.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event batch: %w", err)
	}
	return nil
}

func (r *EventRepository) GetByID(id string) (model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM event WHERE id = ?`
	ev, err := scanEvent(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, fmt.Errorf("%w: %s", apperrors.ErrEventNotFound, id)
	}
	return ev, err
}

// ListUpTo returns every event dated on or before the end of the given
// year, the full input of one engine run.
func (r *EventRepository) ListUpTo(year int) ([]model.Event, error) {
	query := `
		SELECT ` + eventColumns + ` FROM event
		WHERE date <= ?
		ORDER BY date ASC, transaction_id ASC
	`
	cutoff := fmt.Sprintf("%04d-12-31", year)
	return r.queryEvents(query, cutoff)
}

func (r *EventRepository) List() ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM event ORDER BY date ASC, transaction_id ASC`
	return r.queryEvents(query)
}

func (r *EventRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM event WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrEventNotFound, id)
	}
	return nil
}

// ExistingTransactionIDs returns which of the given broker transaction IDs
// are already stored. Used to deduplicate imports.
func (r *EventRepository) ExistingTransactionIDs(txIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(txIDs) == 0 {
		return existing, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(txIDs)), ",")
	query := `SELECT DISTINCT transaction_id FROM event WHERE transaction_id IN (` + placeholders + `)`

	args := make([]any, len(txIDs))
	for i, id := range txIDs {
		args[i] = id
	}
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing transaction IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan transaction ID: %w", err)
		}
		existing[id] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction IDs: %w", err)
	}
	return existing, nil
}

func (r *EventRepository) queryEvents(query string, args ...any) ([]model.Event, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event table: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event table: %w", err)
	}
	return events, nil
}

func eventArgs(ev model.Event) []any {
	return []any{
		ev.ID,
		ev.TransactionID,
		nullableString(ev.AssetID),
		FormatDate(ev.Date),
		string(ev.Kind),
		string(ev.Side),
		ev.Quantity.String(),
		ev.UnitPrice.String(),
		ev.Amount.String(),
		ev.Currency,
		ev.Fees.String(),
		ev.Ratio.String(),
		ev.CashPerShare.String(),
		ev.Description,
	}
}

func scanEvent(row rowScanner) (model.Event, error) {
	var ev model.Event
	var txID, assetID, side, currency, description sql.NullString
	var dateStr, kind, createdAt string
	var quantity, unitPrice, amount, fees, ratio, cashPerShare string

	err := row.Scan(
		&ev.ID,
		&txID,
		&assetID,
		&dateStr,
		&kind,
		&side,
		&quantity,
		&unitPrice,
		&amount,
		&currency,
		&fees,
		&ratio,
		&cashPerShare,
		&description,
		&createdAt,
	)
	if err != nil {
		return model.Event{}, err
	}

	ev.TransactionID = txID.String
	ev.AssetID = assetID.String
	ev.Currency = currency.String
	ev.Description = description.String

	ev.Date, err = ParseTime(dateStr)
	if err != nil {
		return model.Event{}, fmt.Errorf("failed to scan event %s: %w", ev.ID, err)
	}
	ev.Kind, err = model.ParseEventKind(kind)
	if err != nil {
		return model.Event{}, fmt.Errorf("failed to scan event %s: %w", ev.ID, err)
	}
	ev.Side, err = model.ParseTradeSide(side.String)
	if err != nil {
		return model.Event{}, fmt.Errorf("failed to scan event %s: %w", ev.ID, err)
	}

	decimals := []struct {
		dst *decimal.Decimal
		str string
	}{
		{&ev.Quantity, quantity},
		{&ev.UnitPrice, unitPrice},
		{&ev.Amount, amount},
		{&ev.Fees, fees},
		{&ev.Ratio, ratio},
		{&ev.CashPerShare, cashPerShare},
	}
	for _, d := range decimals {
		v, err := ParseDecimal(d.str)
		if err != nil {
			return model.Event{}, fmt.Errorf("failed to scan event %s: %w", ev.ID, err)
		}
		*d.dst = v
	}

	ev.CreatedAt, _ = ParseTime(createdAt)
	return ev, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
