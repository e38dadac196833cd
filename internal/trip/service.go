// Package trip は遠征プランのドメインロジックを提供する。
// エージェントによる生成と、イベントあたり1件の永続化を含む。
package trip

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oshilab/oshiagent/internal/agent"
	"github.com/oshilab/oshiagent/internal/model"
	"github.com/oshilab/oshiagent/internal/repository"
)

// PlanGenerator は遠征プラン生成エージェントの呼び出しインターフェース。
type PlanGenerator interface {
	GenerateTripPlan(ctx context.Context, userID string, req *agent.TripPlanRequest) (*agent.TripPlanResponse, error)
}

// Service は遠征プランのサービス層。
type Service struct {
	tripRepo  repository.TripPlanRepository
	eventRepo repository.EventRepository
	generator PlanGenerator
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(tripRepo repository.TripPlanRepository, eventRepo repository.EventRepository, generator PlanGenerator) *Service {
	return &Service{
		tripRepo:  tripRepo,
		eventRepo: eventRepo,
		generator: generator,
	}
}

// Get は指定イベントの遠征プランを返す。存在しない場合はnilを返す。
func (s *Service) Get(ctx context.Context, userID, eventID string) (*model.TripPlan, error) {
	plan, err := s.tripRepo.FindByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("遠征プランの取得に失敗しました: %w", err)
	}
	return plan, nil
}

// Generate は指定イベントの遠征プランを生成して永続化する。
// すでにプランが存在する場合はエージェントを呼ばずに既存プランを返す（冪等）。
// 戻り値のcreatedは新規生成されたかどうかを示す。
func (s *Service) Generate(ctx context.Context, userID, eventID string) (*model.TripPlan, bool, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID, userID)
	if err != nil {
		return nil, false, fmt.Errorf("イベントの取得に失敗しました: %w", err)
	}
	if event == nil {
		return nil, false, model.NewNotFoundError("イベントが見つかりません")
	}

	existing, err := s.tripRepo.FindByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return nil, false, fmt.Errorf("遠征プランの取得に失敗しました: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	destination := event.Location
	if destination == "" {
		destination = "未定"
	}
	endDate := event.EndDate
	if endDate == "" {
		endDate = event.StartDate
	}

	result, err := s.generator.GenerateTripPlan(ctx, userID, &agent.TripPlanRequest{
		EventID:     eventID,
		Destination: destination,
		StartDate:   event.StartDate,
		EndDate:     endDate,
	})
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	plan := &model.TripPlan{
		ID:                        uuid.New().String(),
		UserID:                    userID,
		EventID:                   eventID,
		Destination:               result.TripPlan.Destination,
		DepartureDate:             result.TripPlan.DepartureDate,
		ReturnDate:                result.TripPlan.ReturnDate,
		TransportationSuggestions: result.TripPlan.TransportationSuggestions,
		AccommodationSuggestions:  result.TripPlan.AccommodationSuggestions,
		EstimatedBudget:           result.TripPlan.EstimatedBudget,
		Notes:                     result.TripPlan.Notes,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	if err := s.tripRepo.Create(ctx, plan); err != nil {
		return nil, false, fmt.Errorf("遠征プランの作成に失敗しました: %w", err)
	}

	return plan, true, nil
}
