package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oshilab/oshiagent/internal/model"
)

// PostgresEventRepo はPostgreSQLを使用したイベントリポジトリ。
type PostgresEventRepo struct {
	db *sql.DB
}

// NewPostgresEventRepo はPostgresEventRepoを生成する。
func NewPostgresEventRepo(db *sql.DB) *PostgresEventRepo {
	return &PostgresEventRepo{db: db}
}

// List はユーザーのイベントをstart_date昇順で返す。
// 開催日程順の一覧のため、活動フィードと異なり昇順で並べる。
func (r *PostgresEventRepo) List(ctx context.Context, userID string, filter EventFilter) ([]*model.Event, error) {
	var sb strings.Builder
	sb.WriteString(
		`SELECT id, user_id, oshi_id, title, description, start_date, end_date, location, url, is_registered, created_at, updated_at
		 FROM events
		 WHERE user_id = $1`)
	args := []any{userID}

	if filter.OshiID != "" {
		args = append(args, filter.OshiID)
		sb.WriteString(" AND oshi_id = $" + strconv.Itoa(len(args)))
	}
	if filter.From != "" {
		args = append(args, filter.From)
		sb.WriteString(" AND start_date >= $" + strconv.Itoa(len(args)))
	}
	if filter.To != "" {
		args = append(args, filter.To)
		sb.WriteString(" AND start_date <= $" + strconv.Itoa(len(args)))
	}

	sb.WriteString(" ORDER BY start_date ASC")

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("イベント一覧の走査に失敗しました: %w", err)
	}

	return events, nil
}

// FindByID は指定IDかつ指定ユーザー所有のイベントを取得する。
// 存在しない場合・所有者が異なる場合はいずれもnilを返す。
func (r *PostgresEventRepo) FindByID(ctx context.Context, id, userID string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, oshi_id, title, description, start_date, end_date, location, url, is_registered, created_at, updated_at
		 FROM events
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return event, nil
}

// UpdateRegistration はイベントのカレンダー登録状態を更新する。
// 所有者が異なる行は更新しない。
func (r *PostgresEventRepo) UpdateRegistration(ctx context.Context, id, userID string, isRegistered bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE events SET is_registered = $3, updated_at = $4 WHERE id = $1 AND user_id = $2`,
		id, userID, isRegistered, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("イベントの登録状態の更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserID はユーザーの全イベントを削除する。
func (r *PostgresEventRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM events WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("ユーザーのイベントの削除に失敗しました: %w", err)
	}
	return nil
}

// scanner は*sql.Rowと*sql.Rowsの共通スキャンインターフェース。
type scanner interface {
	Scan(dest ...any) error
}

// scanEvent は1行分のイベントを読み取る。sql.ErrNoRowsはそのまま返す。
func scanEvent(s scanner) (*model.Event, error) {
	event := &model.Event{}
	var description, endDate, location, url sql.NullString
	err := s.Scan(
		&event.ID, &event.UserID, &event.OshiID,
		&event.Title, &description,
		&event.StartDate, &endDate, &location, &url,
		&event.IsRegistered,
		&event.CreatedAt, &event.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("イベントの読み取りに失敗しました: %w", err)
	}

	event.Description = description.String
	event.EndDate = endDate.String
	event.Location = location.String
	event.URL = url.String

	return event, nil
}

// compile-time interface check
var _ EventRepository = (*PostgresEventRepo)(nil)
