package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oshilab/oshiagent/internal/middleware"
	"github.com/oshilab/oshiagent/internal/model"
	"github.com/oshilab/oshiagent/internal/repository"
)

// defaultEventLimit はイベント一覧のデフォルト取得件数。
const defaultEventLimit = 100

// EventServiceInterface はイベントハンドラーが必要とするサービスインターフェース。
type EventServiceInterface interface {
	// List は絞り込み条件に合致するイベントを開催日順で返す。
	List(ctx context.Context, userID string, filter repository.EventFilter) ([]*model.Event, error)
	// RegisterCalendar はイベントをカレンダーに登録し、結果メッセージを返す。
	// 登録済みの場合はエージェントバックエンドを呼ばずに冪等に完了する。
	RegisterCalendar(ctx context.Context, userID, eventID string) (string, error)
}

// EventHandler はイベント管理のHTTPハンドラー。
type EventHandler struct {
	service EventServiceInterface
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(service EventServiceInterface) *EventHandler {
	return &EventHandler{service: service}
}

// eventResponse はイベント情報のAPIレスポンス。
type eventResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	OshiID       string    `json:"oshiId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartDate    string    `json:"startDate"`
	EndDate      string    `json:"endDate"`
	Location     string    `json:"location"`
	URL          string    `json:"url"`
	IsRegistered bool      `json:"isRegistered"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// toEventResponse はドメインのEventをAPIレスポンス型に変換する。
func toEventResponse(e *model.Event) eventResponse {
	return eventResponse{
		ID:           e.ID,
		UserID:       e.UserID,
		OshiID:       e.OshiID,
		Title:        e.Title,
		Description:  e.Description,
		StartDate:    e.StartDate,
		EndDate:      e.EndDate,
		Location:     e.Location,
		URL:          e.URL,
		IsRegistered: e.IsRegistered,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// List はイベント一覧を取得する。
// GET /api/events?oshiId&from&to&limit
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	query := r.URL.Query()

	filter := repository.EventFilter{
		OshiID: query.Get("oshiId"),
		From:   query.Get("from"),
		To:     query.Get("to"),
		Limit:  defaultEventLimit,
	}

	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			writeError(w, model.NewValidationError("limitが不正です", nil))
			return
		}
		filter.Limit = limit
	}

	events, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	results := make([]eventResponse, len(events))
	for i, e := range events {
		results[i] = toEventResponse(e)
	}
	writeData(w, http.StatusOK, results)
}

// RegisterCalendar はイベントをカレンダーに登録する。冪等な操作。
// POST /api/events/{id}/calendar
func (h *EventHandler) RegisterCalendar(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	eventID := chi.URLParam(r, "id")

	message, err := h.service.RegisterCalendar(r.Context(), userID, eventID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"message": message})
}
