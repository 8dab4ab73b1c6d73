package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/tuskdash/internal/core"
)

type MarketRepo struct {
	db *sql.DB
}

func NewMarketRepo(db *sql.DB) *MarketRepo {
	return &MarketRepo{db: db}
}

func (r *MarketRepo) AddPriceSample(ctx context.Context, sample core.PriceSample) error {
	createdAt := sample.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO price_samples (symbol, price, created_at) VALUES (?, ?, ?)`,
		sample.Symbol, sample.Price, utc(createdAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert price sample: %w", err)
	}
	return nil
}

// RecentPriceSamples returns up to limit samples for symbol, oldest first.
func (r *MarketRepo) RecentPriceSamples(ctx context.Context, symbol string, limit int) ([]core.PriceSample, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, symbol, price, created_at
		FROM price_samples
		WHERE symbol = ?
		ORDER BY id DESC
		LIMIT ?
	`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query price samples: %w", err)
	}
	defer rows.Close()

	var samples []core.PriceSample
	for rows.Next() {
		var s core.PriceSample
		if err := rows.Scan(&s.ID, &s.Symbol, &s.Price, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price sample: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}
	return samples, nil
}

func (r *MarketRepo) DeletePriceSamplesBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM price_samples WHERE created_at < ?`, utc(before))
	if err != nil {
		return 0, fmt.Errorf("failed to prune price samples: %w", err)
	}
	return res.RowsAffected()
}

// GetOrCreateSetting returns the setting for defaults.Symbol, inserting
// defaults when none exists yet.
func (r *MarketRepo) GetOrCreateSetting(ctx context.Context, defaults core.AlertSetting) (core.AlertSetting, error) {
	if defaults.Symbol == "" {
		return core.AlertSetting{}, errors.New("setting symbol is required")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO alert_settings (symbol, threshold_percent, is_active, updated_at)
		VALUES (?, ?, ?, ?)
	`, defaults.Symbol, defaults.ThresholdPercent, defaults.Active, utc(time.Now()))
	if err != nil {
		return core.AlertSetting{}, fmt.Errorf("failed to seed alert setting: %w", err)
	}

	return r.getSetting(ctx, defaults.Symbol)
}

func (r *MarketRepo) getSetting(ctx context.Context, symbol string) (core.AlertSetting, error) {
	var s core.AlertSetting
	var lastAlert sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, symbol, threshold_percent, is_active, last_alert_at, updated_at
		FROM alert_settings
		WHERE symbol = ?
	`, symbol).Scan(&s.ID, &s.Symbol, &s.ThresholdPercent, &s.Active, &lastAlert, &s.UpdatedAt)
	if err != nil {
		return core.AlertSetting{}, fmt.Errorf("failed to load alert setting: %w", err)
	}

	if lastAlert.Valid {
		t := lastAlert.Time
		s.LastAlertAt = &t
	}
	return s, nil
}

// UpdateSetting persists threshold and activity. The cooldown marker is left alone.
func (r *MarketRepo) UpdateSetting(ctx context.Context, setting core.AlertSetting) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE alert_settings
		SET threshold_percent = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, setting.ThresholdPercent, setting.Active, utc(time.Now()), setting.ID)
	if err != nil {
		return fmt.Errorf("failed to update alert setting: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("alert setting %d not found", setting.ID)
	}
	return nil
}

func (r *MarketRepo) MarkAlerted(ctx context.Context, settingID int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE alert_settings SET last_alert_at = ? WHERE id = ?`,
		utc(at), settingID,
	)
	if err != nil {
		return fmt.Errorf("failed to record alert time: %w", err)
	}
	return nil
}
