package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/oshilab/oshiagent/internal/model"
)

// PostgresOshiRepo はPostgreSQLを使用した推しリポジトリ。
type PostgresOshiRepo struct {
	db *sql.DB
}

// NewPostgresOshiRepo はPostgresOshiRepoを生成する。
func NewPostgresOshiRepo(db *sql.DB) *PostgresOshiRepo {
	return &PostgresOshiRepo{db: db}
}

// ListByUserID はユーザーの推し一覧をcreated_at降順で返す。
func (r *PostgresOshiRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Oshi, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, category, keywords, sources, created_at, updated_at
		 FROM oshis
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("推し一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var oshis []*model.Oshi
	for rows.Next() {
		oshi := &model.Oshi{}
		if err := rows.Scan(
			&oshi.ID, &oshi.UserID, &oshi.Name, &oshi.Category,
			pq.Array(&oshi.Keywords), pq.Array(&oshi.Sources),
			&oshi.CreatedAt, &oshi.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("推しの読み取りに失敗しました: %w", err)
		}
		oshis = append(oshis, oshi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("推し一覧の走査に失敗しました: %w", err)
	}

	return oshis, nil
}

// FindByID は指定IDかつ指定ユーザー所有の推しを取得する。
// 存在しない場合・所有者が異なる場合はいずれもnilを返す。
func (r *PostgresOshiRepo) FindByID(ctx context.Context, id, userID string) (*model.Oshi, error) {
	oshi := &model.Oshi{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, category, keywords, sources, created_at, updated_at
		 FROM oshis
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(
		&oshi.ID, &oshi.UserID, &oshi.Name, &oshi.Category,
		pq.Array(&oshi.Keywords), pq.Array(&oshi.Sources),
		&oshi.CreatedAt, &oshi.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("推しの取得に失敗しました: %w", err)
	}

	return oshi, nil
}

// Create は推しを作成する。
func (r *PostgresOshiRepo) Create(ctx context.Context, oshi *model.Oshi) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO oshis (id, user_id, name, category, keywords, sources, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		oshi.ID, oshi.UserID, oshi.Name, oshi.Category,
		pq.Array(oshi.Keywords), pq.Array(oshi.Sources),
		oshi.CreatedAt, oshi.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("推しの作成に失敗しました: %w", err)
	}
	return nil
}

// Update は推しの全フィールドを上書き更新する。
func (r *PostgresOshiRepo) Update(ctx context.Context, oshi *model.Oshi) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE oshis SET
		    name = $3, category = $4, keywords = $5, sources = $6, updated_at = $7
		 WHERE id = $1 AND user_id = $2`,
		oshi.ID, oshi.UserID,
		oshi.Name, oshi.Category,
		pq.Array(oshi.Keywords), pq.Array(oshi.Sources),
		oshi.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("推しの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDかつ指定ユーザー所有の推しを削除する。
// 依存する収集情報・イベント・支出は削除しない。
func (r *PostgresOshiRepo) Delete(ctx context.Context, id, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM oshis WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("推しの削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserID はユーザーの全推しを削除する。
func (r *PostgresOshiRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM oshis WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("ユーザーの推しの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ OshiRepository = (*PostgresOshiRepo)(nil)
