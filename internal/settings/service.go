// Package settings はユーザー設定のドメインロジックを提供する。
// 設定はユーザーあたり1件で、初回更新時に遅延作成される。
package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/oshilab/oshiagent/internal/model"
	"github.com/oshilab/oshiagent/internal/repository"
	"github.com/oshilab/oshiagent/internal/validation"
)

// Service はユーザー設定のサービス層。
type Service struct {
	repo repository.SettingsRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.SettingsRepository) *Service {
	return &Service{repo: repo}
}

// Get はユーザーの設定を返す。未作成の場合はnilを返す。
func (s *Service) Get(ctx context.Context, userID string) (*model.Settings, error) {
	settings, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("設定の取得に失敗しました: %w", err)
	}
	return settings, nil
}

// Update はユーザーの設定を更新する。
// 設定が未作成の場合はデフォルト値に入力を重ねて新規作成する。
func (s *Service) Update(ctx context.Context, userID string, data *validation.SettingsData) (*model.Settings, error) {
	existing, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("設定の取得に失敗しました: %w", err)
	}

	now := time.Now().UTC()

	if existing == nil {
		settings := model.DefaultSettings(userID)
		applyData(settings, data)
		settings.CreatedAt = now
		settings.UpdatedAt = now

		if err := s.repo.Create(ctx, settings); err != nil {
			return nil, fmt.Errorf("設定の作成に失敗しました: %w", err)
		}
		return settings, nil
	}

	applyData(existing, data)
	existing.UpdatedAt = now

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("設定の更新に失敗しました: %w", err)
	}
	return existing, nil
}

func applyData(s *model.Settings, data *validation.SettingsData) {
	s.NotificationEnabled = data.NotificationEnabled
	s.EmailNotification = data.EmailNotification
	s.PriorityThreshold = data.PriorityThreshold
	s.BudgetLimit = data.BudgetLimit
	s.BudgetAlertThreshold = data.BudgetAlertThreshold
	s.CalendarSync = data.CalendarSync
}
