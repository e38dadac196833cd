package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/oshilab/oshiagent/internal/model"
)

// PostgresExpenseRepo はPostgreSQLを使用した支出リポジトリ。
type PostgresExpenseRepo struct {
	db *sql.DB
}

// NewPostgresExpenseRepo はPostgresExpenseRepoを生成する。
func NewPostgresExpenseRepo(db *sql.DB) *PostgresExpenseRepo {
	return &PostgresExpenseRepo{db: db}
}

// List はユーザーの支出をdate降順で返す。
func (r *PostgresExpenseRepo) List(ctx context.Context, userID string, filter ExpenseFilter) ([]*model.Expense, error) {
	var sb strings.Builder
	sb.WriteString(
		`SELECT id, user_id, oshi_id, event_id, category, amount, description, date, created_at, updated_at
		 FROM expenses
		 WHERE user_id = $1`)
	args := []any{userID}

	if filter.OshiID != "" {
		args = append(args, filter.OshiID)
		sb.WriteString(" AND oshi_id = $" + strconv.Itoa(len(args)))
	}
	if filter.EventID != "" {
		args = append(args, filter.EventID)
		sb.WriteString(" AND event_id = $" + strconv.Itoa(len(args)))
	}
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		sb.WriteString(" AND category = $" + strconv.Itoa(len(args)))
	}
	if filter.From != "" {
		args = append(args, filter.From)
		sb.WriteString(" AND date >= $" + strconv.Itoa(len(args)))
	}
	if filter.To != "" {
		args = append(args, filter.To)
		sb.WriteString(" AND date <= $" + strconv.Itoa(len(args)))
	}

	sb.WriteString(" ORDER BY date DESC")

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("支出一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var expenses []*model.Expense
	for rows.Next() {
		expense := &model.Expense{}
		var oshiID, eventID sql.NullString
		if err := rows.Scan(
			&expense.ID, &expense.UserID, &oshiID, &eventID,
			&expense.Category, &expense.Amount, &expense.Description, &expense.Date,
			&expense.CreatedAt, &expense.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("支出の読み取りに失敗しました: %w", err)
		}
		expense.OshiID = oshiID.String
		expense.EventID = eventID.String
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("支出一覧の走査に失敗しました: %w", err)
	}

	return expenses, nil
}

// Create は支出を作成する。
func (r *PostgresExpenseRepo) Create(ctx context.Context, expense *model.Expense) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, oshi_id, event_id, category, amount, description, date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		expense.ID, expense.UserID,
		nullIfEmpty(expense.OshiID), nullIfEmpty(expense.EventID),
		string(expense.Category), expense.Amount, expense.Description, expense.Date,
		expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("支出の作成に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserID はユーザーの全支出を削除する。
func (r *PostgresExpenseRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("ユーザーの支出の削除に失敗しました: %w", err)
	}
	return nil
}

// nullIfEmpty は空文字列をNULLとして保存するための変換。
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// compile-time interface check
var _ ExpenseRepository = (*PostgresExpenseRepo)(nil)
