package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/oshilab/oshiagent/internal/model"
)

// PostgresTripPlanRepo はPostgreSQLを使用した遠征プランリポジトリ。
type PostgresTripPlanRepo struct {
	db *sql.DB
}

// NewPostgresTripPlanRepo はPostgresTripPlanRepoを生成する。
func NewPostgresTripPlanRepo(db *sql.DB) *PostgresTripPlanRepo {
	return &PostgresTripPlanRepo{db: db}
}

// FindByUserAndEvent はユーザーIDとイベントIDで遠征プランを検索する。見つからない場合はnilを返す。
func (r *PostgresTripPlanRepo) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*model.TripPlan, error) {
	plan := &model.TripPlan{}
	var notes sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, event_id, destination, departure_date, return_date,
		        transportation_suggestions, accommodation_suggestions, estimated_budget, notes,
		        created_at, updated_at
		 FROM trip_plans
		 WHERE user_id = $1 AND event_id = $2
		 LIMIT 1`,
		userID, eventID,
	).Scan(
		&plan.ID, &plan.UserID, &plan.EventID,
		&plan.Destination, &plan.DepartureDate, &plan.ReturnDate,
		pq.Array(&plan.TransportationSuggestions), pq.Array(&plan.AccommodationSuggestions),
		&plan.EstimatedBudget, &notes,
		&plan.CreatedAt, &plan.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("遠征プランの取得に失敗しました: %w", err)
	}

	plan.Notes = notes.String
	return plan, nil
}

// Create は遠征プランを作成する。
func (r *PostgresTripPlanRepo) Create(ctx context.Context, plan *model.TripPlan) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO trip_plans (id, user_id, event_id, destination, departure_date, return_date,
		                         transportation_suggestions, accommodation_suggestions, estimated_budget, notes,
		                         created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		plan.ID, plan.UserID, plan.EventID,
		plan.Destination, plan.DepartureDate, plan.ReturnDate,
		pq.Array(plan.TransportationSuggestions), pq.Array(plan.AccommodationSuggestions),
		plan.EstimatedBudget, plan.Notes,
		plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("遠征プランの作成に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserID はユーザーの全遠征プランを削除する。
func (r *PostgresTripPlanRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM trip_plans WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("ユーザーの遠征プランの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TripPlanRepository = (*PostgresTripPlanRepo)(nil)
