package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/oshilab/oshiagent/internal/agent"
	"github.com/oshilab/oshiagent/internal/model"
)

// JobTriggerInterface はジョブハンドラーが必要とするエージェント操作。
type JobTriggerInterface interface {
	// TriggerScout は指定推しの情報収集をエージェントバックエンドに指示する。
	TriggerScout(ctx context.Context, userID, oshiID string) (*agent.TriggerResponse, error)
	// TriggerPriority はユーザーの収集情報の優先度再評価を指示する。
	TriggerPriority(ctx context.Context, userID string) (*agent.TriggerResponse, error)
}

// JobHandler はスケジューラから起動される特権ジョブのHTTPハンドラー。
// セッション認証の外に置かれ、Bearerトークンの完全一致で保護する。
type JobHandler struct {
	trigger        JobTriggerInterface
	schedulerToken string
}

// NewJobHandler はJobHandlerを生成する。
// schedulerTokenが空の場合、すべてのリクエストはサーバー設定不備として失敗する。
func NewJobHandler(trigger JobTriggerInterface, schedulerToken string) *JobHandler {
	return &JobHandler{
		trigger:        trigger,
		schedulerToken: schedulerToken,
	}
}

// scoutJobRequest はスカウトジョブリクエストのボディ。
type scoutJobRequest struct {
	UserID string `json:"userId"`
	OshiID string `json:"oshiId"`
}

// priorityJobRequest は優先度再評価ジョブリクエストのボディ。
type priorityJobRequest struct {
	UserID string `json:"userId"`
}

// authorize はAuthorizationヘッダーのBearerトークンを検証する。
// トークン未設定はクライアント起因ではないため認証エラーにしない。
func (h *JobHandler) authorize(r *http.Request) error {
	if h.schedulerToken == "" {
		return errors.New("scheduler token is not configured")
	}

	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token != h.schedulerToken {
		return model.NewUnauthorizedError("無効な認証トークンです")
	}
	return nil
}

// Scout は指定ユーザー・推しの情報収集ジョブを起動する。
// POST /api/jobs/scout
func (h *JobHandler) Scout(w http.ResponseWriter, r *http.Request) {
	if err := h.authorize(r); err != nil {
		writeError(w, err)
		return
	}

	var req scoutJobRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}
	if req.UserID == "" || req.OshiID == "" {
		writeError(w, model.NewValidationError("userIdとoshiIdを指定してください", nil))
		return
	}

	resp, err := h.trigger.TriggerScout(r.Context(), req.UserID, req.OshiID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, resp)
}

// Priority は指定ユーザーの優先度再評価ジョブを起動する。
// POST /api/jobs/priority
func (h *JobHandler) Priority(w http.ResponseWriter, r *http.Request) {
	if err := h.authorize(r); err != nil {
		writeError(w, err)
		return
	}

	var req priorityJobRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}
	if req.UserID == "" {
		writeError(w, model.NewValidationError("userIdを指定してください", nil))
		return
	}

	resp, err := h.trigger.TriggerPriority(r.Context(), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, resp)
}
