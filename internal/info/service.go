// Package info は収集情報のドメインロジックを提供する。
// フィルタ付き一覧取得と、ダッシュボード用の集約読み取りを含む。
package info

import (
	"context"
	"fmt"
	"sync"

	"github.com/oshilab/oshiagent/internal/model"
	"github.com/oshilab/oshiagent/internal/repository"
)

const (
	// alertLimit はアラート一覧の優先度ごとの最大件数。
	alertLimit = 10
	// recentLimit はダッシュボードの新着一覧の最大件数。
	recentLimit = 10
)

// AlertInfos は優先度別のアラート一覧。
type AlertInfos struct {
	Urgent    []*model.CollectedInfo
	Important []*model.CollectedInfo
}

// InfoCounts は収集情報の件数集計。
type InfoCounts struct {
	Total     int
	Urgent    int
	Important int
}

// Dashboard はダッシュボード表示用の集約データ。
type Dashboard struct {
	Alerts AlertInfos
	Counts InfoCounts
	Recent []*model.CollectedInfo
}

// Service は収集情報のサービス層。
type Service struct {
	repo repository.InfoRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.InfoRepository) *Service {
	return &Service{repo: repo}
}

// List はユーザーの収集情報を収集日時の降順で返す。
func (s *Service) List(ctx context.Context, userID string, filter repository.InfoFilter) ([]*model.CollectedInfo, error) {
	infos, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("収集情報の取得に失敗しました: %w", err)
	}
	return infos, nil
}

// DashboardSummary はダッシュボード用のデータをまとめて取得する。
// アラート・件数・新着の読み取りを並行して発行し、結果を結合する。
// いずれかが失敗した場合は最初のエラーを返す。
func (s *Service) DashboardSummary(ctx context.Context, userID string) (*Dashboard, error) {
	d := &Dashboard{}
	errs := make([]error, 6)

	var wg sync.WaitGroup
	wg.Add(6)

	go func() {
		defer wg.Done()
		d.Alerts.Urgent, errs[0] = s.repo.List(ctx, userID, repository.InfoFilter{
			Priority: model.PriorityUrgent,
			Limit:    alertLimit,
		})
	}()
	go func() {
		defer wg.Done()
		d.Alerts.Important, errs[1] = s.repo.List(ctx, userID, repository.InfoFilter{
			Priority: model.PriorityImportant,
			Limit:    alertLimit,
		})
	}()
	go func() {
		defer wg.Done()
		d.Counts.Total, errs[2] = s.repo.CountByUserID(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		d.Counts.Urgent, errs[3] = s.repo.CountByPriority(ctx, userID, model.PriorityUrgent)
	}()
	go func() {
		defer wg.Done()
		d.Counts.Important, errs[4] = s.repo.CountByPriority(ctx, userID, model.PriorityImportant)
	}()
	go func() {
		defer wg.Done()
		d.Recent, errs[5] = s.repo.List(ctx, userID, repository.InfoFilter{Limit: recentLimit})
	}()

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("ダッシュボードデータの取得に失敗しました: %w", err)
		}
	}

	return d, nil
}
