package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/oshilab/oshiagent/internal/middleware"
	"github.com/oshilab/oshiagent/internal/model"
	"github.com/oshilab/oshiagent/internal/validation"
)

// SettingsServiceInterface は設定ハンドラーが必要とするサービスインターフェース。
type SettingsServiceInterface interface {
	// Get はユーザーの設定を取得する。未作成の場合はnilを返す。
	Get(ctx context.Context, userID string) (*model.Settings, error)
	// Update は設定を更新する。未作成の場合はデフォルト値から新規作成する。
	Update(ctx context.Context, userID string, data *validation.SettingsData) (*model.Settings, error)
}

// SettingsHandler はユーザー設定のHTTPハンドラー。
type SettingsHandler struct {
	service SettingsServiceInterface
}

// NewSettingsHandler はSettingsHandlerを生成する。
func NewSettingsHandler(service SettingsServiceInterface) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// settingsResponse は設定情報のAPIレスポンス。
type settingsResponse struct {
	UserID               string    `json:"userId"`
	NotificationEnabled  bool      `json:"notificationEnabled"`
	EmailNotification    bool      `json:"emailNotification"`
	PriorityThreshold    string    `json:"priorityThreshold"`
	BudgetLimit          *int64    `json:"budgetLimit"`
	BudgetAlertThreshold *int64    `json:"budgetAlertThreshold"`
	CalendarSync         bool      `json:"calendarSync"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// toSettingsResponse はドメインのSettingsをAPIレスポンス型に変換する。
func toSettingsResponse(s *model.Settings) settingsResponse {
	return settingsResponse{
		UserID:               s.UserID,
		NotificationEnabled:  s.NotificationEnabled,
		EmailNotification:    s.EmailNotification,
		PriorityThreshold:    string(s.PriorityThreshold),
		BudgetLimit:          s.BudgetLimit,
		BudgetAlertThreshold: s.BudgetAlertThreshold,
		CalendarSync:         s.CalendarSync,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

// Get はユーザー設定を取得する。未作成の場合はdataにnullを返す。
// GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	settings, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	if settings == nil {
		writeData(w, http.StatusOK, nil)
		return
	}
	writeData(w, http.StatusOK, toSettingsResponse(settings))
}

// Update はユーザー設定を更新する。バリデーションは永続化より前に実行する。
// PUT /api/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	var input validation.SettingsInput
	if appErr := decodeBody(r, &input); appErr != nil {
		writeError(w, appErr)
		return
	}

	data, appErr := validation.ValidateSettings(input)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	settings, err := h.service.Update(r.Context(), userID, data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, toSettingsResponse(settings))
}
