package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mindtide/mindtide/internal/models"
)

const defaultNudgeConfigKey = "default"

// NudgeConfigRepository stores the nudge rules document in the database.
// The document is the same YAML accepted on disk, so the configure CLI
// can validate and upload a local file unchanged.
type NudgeConfigRepository struct {
	db *DB
}

// NewNudgeConfigRepository creates a new nudge config repository.
func NewNudgeConfigRepository(db *DB) *NudgeConfigRepository {
	return &NudgeConfigRepository{db: db}
}

// Get retrieves the stored nudge config, nil when none has been set.
func (r *NudgeConfigRepository) Get(ctx context.Context) (*models.NudgeConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT config_key, rules_yaml, created_at, updated_at
		FROM nudge_config WHERE config_key = $1
	`, defaultNudgeConfigKey)
	c := &models.NudgeConfig{}
	err := row.Scan(
		&c.ConfigKey,
		&c.RulesYAML,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get nudge config: %w", err)
	}
	return c, nil
}

// Set upserts the stored nudge rules document. Callers are expected to
// have validated the YAML first.
func (r *NudgeConfigRepository) Set(ctx context.Context, rulesYAML string) error {
	if rulesYAML == "" {
		return fmt.Errorf("rules document cannot be empty")
	}
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO nudge_config (config_key, rules_yaml, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (config_key) DO UPDATE SET
			rules_yaml = EXCLUDED.rules_yaml,
			updated_at = EXCLUDED.updated_at
	`, defaultNudgeConfigKey, rulesYAML, now, now)
	if err != nil {
		return fmt.Errorf("set nudge config: %w", err)
	}
	return nil
}
