package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/oshilab/oshiagent/internal/model"
)

// PostgresInfoRepo はPostgreSQLを使用した収集情報リポジトリ。
type PostgresInfoRepo struct {
	db *sql.DB
}

// NewPostgresInfoRepo はPostgresInfoRepoを生成する。
func NewPostgresInfoRepo(db *sql.DB) *PostgresInfoRepo {
	return &PostgresInfoRepo{db: db}
}

// List はユーザーの収集情報をcollected_at降順で返す。
// フィルタはuser_idの等価条件を先頭に、指定された条件のみを追加する。
func (r *PostgresInfoRepo) List(ctx context.Context, userID string, filter InfoFilter) ([]*model.CollectedInfo, error) {
	var sb strings.Builder
	sb.WriteString(
		`SELECT id, user_id, oshi_id, title, content, source, url, priority, collected_at, created_at
		 FROM collected_infos
		 WHERE user_id = $1`)
	args := []any{userID}

	if filter.OshiID != "" {
		args = append(args, filter.OshiID)
		sb.WriteString(" AND oshi_id = $" + strconv.Itoa(len(args)))
	}
	if filter.Priority != "" {
		args = append(args, string(filter.Priority))
		sb.WriteString(" AND priority = $" + strconv.Itoa(len(args)))
	}

	sb.WriteString(" ORDER BY collected_at DESC")

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sb.WriteString(" OFFSET $" + strconv.Itoa(len(args)))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("収集情報一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var infos []*model.CollectedInfo
	for rows.Next() {
		info := &model.CollectedInfo{}
		var url sql.NullString
		if err := rows.Scan(
			&info.ID, &info.UserID, &info.OshiID,
			&info.Title, &info.Content, &info.Source, &url,
			&info.Priority, &info.CollectedAt, &info.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("収集情報の読み取りに失敗しました: %w", err)
		}
		if url.Valid {
			info.URL = url.String
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("収集情報一覧の走査に失敗しました: %w", err)
	}

	return infos, nil
}

// CountByUserID はユーザーの収集情報の総数を返す。
func (r *PostgresInfoRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM collected_infos WHERE user_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("収集情報数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// CountByPriority はユーザーの指定優先度の収集情報数を返す。
func (r *PostgresInfoRepo) CountByPriority(ctx context.Context, userID string, priority model.Priority) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM collected_infos WHERE user_id = $1 AND priority = $2`,
		userID, string(priority),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("優先度別の収集情報数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// DeleteByUserID はユーザーの全収集情報を削除する。
func (r *PostgresInfoRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM collected_infos WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("ユーザーの収集情報の削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ InfoRepository = (*PostgresInfoRepo)(nil)
