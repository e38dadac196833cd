package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oshilab/oshiagent/internal/model"
)

// PostgresSettingsRepo はPostgreSQLを使用したユーザー設定リポジトリ。
// settingsテーブルはuser_idを主キーとするユーザーあたり1件の構造。
type PostgresSettingsRepo struct {
	db *sql.DB
}

// NewPostgresSettingsRepo はPostgresSettingsRepoを生成する。
func NewPostgresSettingsRepo(db *sql.DB) *PostgresSettingsRepo {
	return &PostgresSettingsRepo{db: db}
}

// FindByUserID は指定ユーザーの設定を取得する。見つからない場合はnilを返す。
func (r *PostgresSettingsRepo) FindByUserID(ctx context.Context, userID string) (*model.Settings, error) {
	settings := &model.Settings{}
	var budgetLimit, budgetAlertThreshold sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, notification_enabled, email_notification, priority_threshold,
		        budget_limit, budget_alert_threshold, calendar_sync, created_at, updated_at
		 FROM settings
		 WHERE user_id = $1`,
		userID,
	).Scan(
		&settings.UserID, &settings.NotificationEnabled, &settings.EmailNotification,
		&settings.PriorityThreshold,
		&budgetLimit, &budgetAlertThreshold,
		&settings.CalendarSync,
		&settings.CreatedAt, &settings.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("設定の取得に失敗しました: %w", err)
	}

	if budgetLimit.Valid {
		settings.BudgetLimit = &budgetLimit.Int64
	}
	if budgetAlertThreshold.Valid {
		settings.BudgetAlertThreshold = &budgetAlertThreshold.Int64
	}

	return settings, nil
}

// Create は設定を新規作成する。
func (r *PostgresSettingsRepo) Create(ctx context.Context, settings *model.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (user_id, notification_enabled, email_notification, priority_threshold,
		                       budget_limit, budget_alert_threshold, calendar_sync, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		settings.UserID, settings.NotificationEnabled, settings.EmailNotification,
		string(settings.PriorityThreshold),
		settings.BudgetLimit, settings.BudgetAlertThreshold,
		settings.CalendarSync,
		settings.CreatedAt, settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("設定の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は設定を上書き更新する。
func (r *PostgresSettingsRepo) Update(ctx context.Context, settings *model.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE settings SET
		    notification_enabled = $2, email_notification = $3, priority_threshold = $4,
		    budget_limit = $5, budget_alert_threshold = $6, calendar_sync = $7, updated_at = $8
		 WHERE user_id = $1`,
		settings.UserID,
		settings.NotificationEnabled, settings.EmailNotification,
		string(settings.PriorityThreshold),
		settings.BudgetLimit, settings.BudgetAlertThreshold,
		settings.CalendarSync,
		settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("設定の更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserID は指定ユーザーの設定を削除する。
func (r *PostgresSettingsRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM settings WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("ユーザーの設定の削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SettingsRepository = (*PostgresSettingsRepo)(nil)
