// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oshilab/oshiagent/internal/model"
	"github.com/oshilab/oshiagent/internal/repository"
)

// Deleter はユーザー所有データの一括削除インターフェース。
type Deleter interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// Deleters は退会処理で削除するユーザー所有データのリポジトリ群。
type Deleters struct {
	Sessions  Deleter
	Settings  Deleter
	TripPlans Deleter
	Expenses  Deleter
	Events    Deleter
	Infos     Deleter
	Oshis     Deleter
}

// Service はユーザー管理のサービス層。
// 退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	deleters Deleters
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, deleters Deleters) *Service {
	return &Service{
		userRepo: userRepo,
		deleters: deleters,
	}
}

// Get は指定したユーザーを返す。
func (s *Service) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError("ユーザーが見つかりません")
	}
	return user, nil
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: セッション → 設定 → 遠征プラン → 支出 → イベント → 収集情報 → 推し → ユーザー
// （identitiesはユーザー削除時にCASCADE削除される）
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	// ユーザー存在確認
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewNotFoundError("ユーザーが見つかりません")
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	steps := []struct {
		name    string
		deleter Deleter
	}{
		{"セッション", s.deleters.Sessions},
		{"設定", s.deleters.Settings},
		{"遠征プラン", s.deleters.TripPlans},
		{"支出", s.deleters.Expenses},
		{"イベント", s.deleters.Events},
		{"収集情報", s.deleters.Infos},
		{"推し", s.deleters.Oshis},
	}

	for _, step := range steps {
		if step.deleter == nil {
			continue
		}
		if err := step.deleter.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("%sの削除に失敗しました: %w", step.name, err)
		}
	}

	// ユーザーを削除（identitiesはCASCADE削除）
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}
