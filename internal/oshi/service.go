// Package oshi は推し管理のドメインロジックを提供する。
// CRUD操作と、作成直後のサマリー生成エージェントの起動を含む。
package oshi

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/oshilab/oshiagent/internal/agent"
	"github.com/oshilab/oshiagent/internal/model"
	"github.com/oshilab/oshiagent/internal/repository"
	"github.com/oshilab/oshiagent/internal/validation"
)

// SummaryTrigger はサマリー生成エージェントの起動インターフェース。
type SummaryTrigger interface {
	TriggerSummary(ctx context.Context, userID, oshiID string) (*agent.TriggerResponse, error)
}

// Service は推し管理のサービス層。
type Service struct {
	repo    repository.OshiRepository
	summary SummaryTrigger
	logger  *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.OshiRepository, summary SummaryTrigger, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		summary: summary,
		logger:  logger,
	}
}

// List はユーザーの推し一覧を作成日時の降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Oshi, error) {
	oshis, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("推し一覧の取得に失敗しました: %w", err)
	}
	return oshis, nil
}

// Get は指定した推しを返す。
// 存在しない場合と他ユーザーの所有の場合は区別せずNotFoundを返す。
func (s *Service) Get(ctx context.Context, id, userID string) (*model.Oshi, error) {
	oshi, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("推しの取得に失敗しました: %w", err)
	}
	if oshi == nil {
		return nil, model.NewNotFoundError("推しが見つかりません")
	}
	return oshi, nil
}

// Create は推しを作成する。
// 作成成功後、サマリー生成エージェントを非同期で起動する。
// エージェント起動の失敗はログに記録するのみで、作成自体は成功として扱う。
func (s *Service) Create(ctx context.Context, userID string, data *validation.OshiData) (*model.Oshi, error) {
	now := time.Now().UTC()
	oshi := &model.Oshi{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      data.Name,
		Category:  data.Category,
		Keywords:  data.Keywords,
		Sources:   data.Sources,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, oshi); err != nil {
		return nil, fmt.Errorf("推しの作成に失敗しました: %w", err)
	}

	// リクエストのライフタイムから切り離して起動する
	go func() {
		if _, err := s.summary.TriggerSummary(context.Background(), userID, oshi.ID); err != nil {
			s.logger.Warn("サマリー生成エージェントの起動に失敗しました",
				slog.String("oshi_id", oshi.ID),
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}()

	return oshi, nil
}

// Update は指定した推しを更新する。更新後の状態を返す。
func (s *Service) Update(ctx context.Context, id, userID string, data *validation.OshiData) (*model.Oshi, error) {
	oshi, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("推しの取得に失敗しました: %w", err)
	}
	if oshi == nil {
		return nil, model.NewNotFoundError("推しが見つかりません")
	}

	oshi.Name = data.Name
	oshi.Category = data.Category
	oshi.Keywords = data.Keywords
	oshi.Sources = data.Sources
	oshi.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, oshi); err != nil {
		return nil, fmt.Errorf("推しの更新に失敗しました: %w", err)
	}

	return oshi, nil
}

// Delete は指定した推しを削除する。
// 収集情報やイベントなどの関連データは削除しない。
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	oshi, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("推しの取得に失敗しました: %w", err)
	}
	if oshi == nil {
		return model.NewNotFoundError("推しが見つかりません")
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("推しの削除に失敗しました: %w", err)
	}

	return nil
}
