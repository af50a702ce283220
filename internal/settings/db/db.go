package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"ms-tombola/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// GetTenantConfig loads one guild's configuration, or nil when the
// guild was never configured.
func (d *DB) GetTenantConfig(ctx context.Context, guildID string) (*models.TenantConfig, error) {
	var cfg models.TenantConfig
	err := d.Bun.NewSelect().
		Model(&cfg).
		Where("guild_id = ?", guildID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpsertTenantConfig writes the configuration, inserting or replacing
// on the guild key.
func (d *DB) UpsertTenantConfig(ctx context.Context, cfg models.TenantConfig) error {
	cfg.UpdatedAt = time.Now()
	_, err := d.Bun.NewInsert().
		Model(&cfg).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("logs_topic = EXCLUDED.logs_topic").
		Set("ticket_price = EXCLUDED.ticket_price").
		Set("seller_rate = EXCLUDED.seller_rate").
		Set("company_rate = EXCLUDED.company_rate").
		Set("recap_hour = EXCLUDED.recap_hour").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// GetObjective loads the guild's monthly ticket goal, nil when unset.
func (d *DB) GetObjective(ctx context.Context, guildID string) (*models.Objective, error) {
	var obj models.Objective
	err := d.Bun.NewSelect().
		Model(&obj).
		Where("guild_id = ?", guildID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

// ListAlertRules returns the guild's alert rules ordered by type.
func (d *DB) ListAlertRules(ctx context.Context, guildID string) ([]models.AlertRule, error) {
	rules := make([]models.AlertRule, 0)
	err := d.Bun.NewSelect().
		Model(&rules).
		Where("guild_id = ?", guildID).
		Order("type").
		Scan(ctx)
	return rules, err
}

func (d *DB) InsertAlertRule(ctx context.Context, rule models.AlertRule) error {
	rule.UpdatedAt = time.Now()
	_, err := d.Bun.NewInsert().Model(&rule).Exec(ctx)
	return err
}

// UpdateAlertRule rewrites an existing rule's threshold and enabled
// flag. The rule's type never changes after creation.
func (d *DB) UpdateAlertRule(ctx context.Context, id int64, threshold int, enabled bool) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.AlertRule)(nil)).
		Set("threshold = ?", threshold).
		Set("enabled = ?", enabled).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) UpsertObjective(ctx context.Context, obj models.Objective) error {
	obj.UpdatedAt = time.Now()
	_, err := d.Bun.NewInsert().
		Model(&obj).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("monthly_ticket_goal = EXCLUDED.monthly_ticket_goal").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
