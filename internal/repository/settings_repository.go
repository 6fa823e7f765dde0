package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mvdbosch/kapgains/internal/apperrors"
)

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// StoredBrokerConfig is the at-rest form of the broker configuration: the
// token column holds the fernet-sealed value.
type StoredBrokerConfig struct {
	ID             string
	FlexQueryID    string
	SealedToken    string
	TokenExpiresAt *time.Time
	UpdatedAt      time.Time
}

// Get returns the single broker configuration row.
func (r *SettingsRepository) Get() (StoredBrokerConfig, error) {
	var cfg StoredBrokerConfig
	var expiresAt sql.NullString
	var updatedAt string

	err := r.db.QueryRow(`
		SELECT id, flex_query_id, flex_token, token_expires_at, updated_at
		FROM broker_config
		LIMIT 1
	`).Scan(&cfg.ID, &cfg.FlexQueryID, &cfg.SealedToken, &expiresAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredBrokerConfig{}, apperrors.ErrBrokerConfigNotFound
	}
	if err != nil {
		return StoredBrokerConfig{}, fmt.Errorf("failed to query broker_config table: %w", err)
	}

	if expiresAt.Valid && expiresAt.String != "" {
		t, err := ParseTime(expiresAt.String)
		if err != nil {
			return StoredBrokerConfig{}, fmt.Errorf("failed to scan broker config: %w", err)
		}
		cfg.TokenExpiresAt = &t
	}
	cfg.UpdatedAt, _ = ParseTime(updatedAt)
	return cfg, nil
}

// Save replaces the broker configuration. There is at most one row.
func (r *SettingsRepository) Save(cfg StoredBrokerConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	var expiresAt any
	if cfg.TokenExpiresAt != nil {
		expiresAt = cfg.TokenExpiresAt.UTC().Format(time.RFC3339)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM broker_config`); err != nil {
		return fmt.Errorf("failed to clear broker config: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO broker_config (id, flex_query_id, flex_token, token_expires_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, cfg.ID, cfg.FlexQueryID, cfg.SealedToken, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert broker config: %w", err)
	}
	return tx.Commit()
}
