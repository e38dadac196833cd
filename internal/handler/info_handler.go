package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/oshilab/oshiagent/internal/info"
	"github.com/oshilab/oshiagent/internal/middleware"
	"github.com/oshilab/oshiagent/internal/model"
	"github.com/oshilab/oshiagent/internal/repository"
)

// defaultInfoLimit は収集情報一覧のデフォルト取得件数。
const defaultInfoLimit = 50

// InfoServiceInterface は収集情報ハンドラーが必要とするサービスインターフェース。
type InfoServiceInterface interface {
	// List は絞り込み条件に合致する収集情報を返す。
	List(ctx context.Context, userID string, filter repository.InfoFilter) ([]*model.CollectedInfo, error)
	// DashboardSummary はダッシュボード表示用の集計を並行取得して返す。
	DashboardSummary(ctx context.Context, userID string) (*info.Dashboard, error)
}

// InfoHandler は収集情報のHTTPハンドラー。
type InfoHandler struct {
	service InfoServiceInterface
}

// NewInfoHandler はInfoHandlerを生成する。
func NewInfoHandler(service InfoServiceInterface) *InfoHandler {
	return &InfoHandler{service: service}
}

// infoResponse は収集情報のAPIレスポンス。
type infoResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	OshiID      string    `json:"oshiId"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Priority    string    `json:"priority"`
	CollectedAt time.Time `json:"collectedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// dashboardResponse はダッシュボード集計のAPIレスポンス。
type dashboardResponse struct {
	Alerts struct {
		Urgent    []infoResponse `json:"urgent"`
		Important []infoResponse `json:"important"`
	} `json:"alerts"`
	Counts struct {
		Total     int `json:"total"`
		Urgent    int `json:"urgent"`
		Important int `json:"important"`
	} `json:"counts"`
	Recent []infoResponse `json:"recent"`
}

// toInfoResponse はドメインのCollectedInfoをAPIレスポンス型に変換する。
func toInfoResponse(ci *model.CollectedInfo) infoResponse {
	return infoResponse{
		ID:          ci.ID,
		UserID:      ci.UserID,
		OshiID:      ci.OshiID,
		Title:       ci.Title,
		Content:     ci.Content,
		Source:      ci.Source,
		URL:         ci.URL,
		Priority:    string(ci.Priority),
		CollectedAt: ci.CollectedAt,
		CreatedAt:   ci.CreatedAt,
	}
}

// toInfoResponses はCollectedInfoのスライスを変換する。nilではなく空スライスを返す。
func toInfoResponses(infos []*model.CollectedInfo) []infoResponse {
	results := make([]infoResponse, len(infos))
	for i, ci := range infos {
		results[i] = toInfoResponse(ci)
	}
	return results
}

// List は収集情報の一覧を取得する。
// GET /api/info?oshiId&priority&limit&offset
func (h *InfoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	query := r.URL.Query()

	filter := repository.InfoFilter{
		OshiID: query.Get("oshiId"),
		Limit:  defaultInfoLimit,
	}

	if p := query.Get("priority"); p != "" {
		if !model.ValidPriority(model.Priority(p)) {
			writeError(w, model.NewValidationError("優先度が不正です", nil))
			return
		}
		filter.Priority = model.Priority(p)
	}

	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			writeError(w, model.NewValidationError("limitが不正です", nil))
			return
		}
		filter.Limit = limit
	}

	if v := query.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			writeError(w, model.NewValidationError("offsetが不正です", nil))
			return
		}
		filter.Offset = offset
	}

	infos, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, toInfoResponses(infos))
}

// Dashboard はダッシュボード表示用の集計を取得する。
// GET /api/dashboard
func (h *InfoHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	summary, err := h.service.DashboardSummary(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	var resp dashboardResponse
	resp.Alerts.Urgent = toInfoResponses(summary.Alerts.Urgent)
	resp.Alerts.Important = toInfoResponses(summary.Alerts.Important)
	resp.Counts.Total = summary.Counts.Total
	resp.Counts.Urgent = summary.Counts.Urgent
	resp.Counts.Important = summary.Counts.Important
	resp.Recent = toInfoResponses(summary.Recent)

	writeData(w, http.StatusOK, resp)
}
