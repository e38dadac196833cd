// Package expense は支出管理のドメインロジックを提供する。
// フィルタ付き一覧取得、記録作成、月次レポートの集計を含む。
package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oshilab/oshiagent/internal/format"
	"github.com/oshilab/oshiagent/internal/model"
	"github.com/oshilab/oshiagent/internal/repository"
	"github.com/oshilab/oshiagent/internal/validation"
)

// reportExpenseLimit は月次レポートが対象にする支出の最大件数。
const reportExpenseLimit = 1000

// Service は支出管理のサービス層。
type Service struct {
	repo repository.ExpenseRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ExpenseRepository) *Service {
	return &Service{repo: repo}
}

// List はユーザーの支出を日付の降順で返す。
func (s *Service) List(ctx context.Context, userID string, filter repository.ExpenseFilter) ([]*model.Expense, error) {
	expenses, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("支出一覧の取得に失敗しました: %w", err)
	}
	return expenses, nil
}

// Create は支出を記録する。
func (s *Service) Create(ctx context.Context, userID string, data *validation.ExpenseData) (*model.Expense, error) {
	now := time.Now().UTC()
	expense := &model.Expense{
		ID:          uuid.New().String(),
		UserID:      userID,
		OshiID:      data.OshiID,
		EventID:     data.EventID,
		Category:    data.Category,
		Amount:      data.Amount,
		Description: data.Description,
		Date:        data.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("支出の記録に失敗しました: %w", err)
	}

	return expense, nil
}

// MonthlyReport は指定月の支出レポートを集計する。
// カテゴリ別集計は全カテゴリをゼロ埋めして返す。
// 推し別集計のNameには推しIDをそのまま格納する（表示名の解決は呼び出し側）。
func (s *Service) MonthlyReport(ctx context.Context, userID string, month time.Time) (*model.ExpenseReport, error) {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	expenses, err := s.repo.List(ctx, userID, repository.ExpenseFilter{
		From:  first.Format("2006-01-02"),
		To:    last.Format("2006-01-02"),
		Limit: reportExpenseLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("月次レポートの集計に失敗しました: %w", err)
	}

	report := &model.ExpenseReport{
		Month:      first.Format("2006-01"),
		MonthLabel: format.Month(first),
		ByCategory: make(map[model.Category]int64, len(model.Categories)),
		ByOshi:     make(map[string]model.OshiAmount),
		Expenses:   expenses,
	}
	for _, c := range model.Categories {
		report.ByCategory[c] = 0
	}

	for _, e := range expenses {
		report.TotalAmount += e.Amount
		report.ByCategory[e.Category] += e.Amount

		if e.OshiID != "" {
			entry, ok := report.ByOshi[e.OshiID]
			if !ok {
				entry = model.OshiAmount{Name: e.OshiID}
			}
			entry.Amount += e.Amount
			report.ByOshi[e.OshiID] = entry
		}
	}
	report.TotalLabel = format.Currency(float64(report.TotalAmount))

	return report, nil
}
