// Package event はイベント管理のドメインロジックを提供する。
package event

import (
	"context"
	"fmt"

	"github.com/oshilab/oshiagent/internal/agent"
	"github.com/oshilab/oshiagent/internal/model"
	"github.com/oshilab/oshiagent/internal/repository"
)

// CalendarTrigger はカレンダー登録エージェントの起動インターフェース。
type CalendarTrigger interface {
	TriggerCalendar(ctx context.Context, userID, eventID string) (*agent.TriggerResponse, error)
}

// Service はイベント管理のサービス層。
type Service struct {
	repo     repository.EventRepository
	calendar CalendarTrigger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.EventRepository, calendar CalendarTrigger) *Service {
	return &Service{
		repo:     repo,
		calendar: calendar,
	}
}

// List はユーザーのイベントを開始日の昇順で返す。
func (s *Service) List(ctx context.Context, userID string, filter repository.EventFilter) ([]*model.Event, error) {
	events, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧の取得に失敗しました: %w", err)
	}
	return events, nil
}

// Get は指定したイベントを返す。
// 存在しない場合と他ユーザーの所有の場合は区別せずNotFoundを返す。
func (s *Service) Get(ctx context.Context, id, userID string) (*model.Event, error) {
	event, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("イベントの取得に失敗しました: %w", err)
	}
	if event == nil {
		return nil, model.NewNotFoundError("イベントが見つかりません")
	}
	return event, nil
}

// RegisterCalendar はイベントをカレンダーに登録する。
// すでに登録済みの場合はエージェントを呼ばずにその旨のメッセージを返す（冪等）。
// 未登録の場合はカレンダー登録エージェントを起動し、成功後に登録済みフラグを立てる。
func (s *Service) RegisterCalendar(ctx context.Context, userID, eventID string) (string, error) {
	event, err := s.Get(ctx, eventID, userID)
	if err != nil {
		return "", err
	}

	if event.IsRegistered {
		return "すでに登録済みです", nil
	}

	if _, err := s.calendar.TriggerCalendar(ctx, userID, eventID); err != nil {
		return "", err
	}

	if err := s.repo.UpdateRegistration(ctx, eventID, userID, true); err != nil {
		return "", fmt.Errorf("イベントの登録状態の更新に失敗しました: %w", err)
	}

	return "カレンダーに登録しました", nil
}
