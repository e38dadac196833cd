package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oshilab/oshiagent/internal/middleware"
	"github.com/oshilab/oshiagent/internal/model"
	"github.com/oshilab/oshiagent/internal/validation"
)

// OshiServiceInterface は推しハンドラーが必要とするサービスインターフェース。
type OshiServiceInterface interface {
	// List はユーザーの推し一覧を返す。
	List(ctx context.Context, userID string) ([]*model.Oshi, error)
	// Create は検証済みデータから推しを作成する。
	Create(ctx context.Context, userID string, data *validation.OshiData) (*model.Oshi, error)
	// Update は推しを更新する。
	Update(ctx context.Context, id, userID string, data *validation.OshiData) (*model.Oshi, error)
	// Delete は推しを削除する。
	Delete(ctx context.Context, id, userID string) error
}

// OshiHandler は推し管理のHTTPハンドラー。
type OshiHandler struct {
	service OshiServiceInterface
}

// NewOshiHandler はOshiHandlerを生成する。
func NewOshiHandler(service OshiServiceInterface) *OshiHandler {
	return &OshiHandler{service: service}
}

// oshiResponse は推し情報のAPIレスポンス。
type oshiResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Keywords  []string  `json:"keywords"`
	Sources   []string  `json:"sources"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// toOshiResponse はドメインのOshiをAPIレスポンス型に変換する。
func toOshiResponse(o *model.Oshi) oshiResponse {
	return oshiResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Name:      o.Name,
		Category:  o.Category,
		Keywords:  o.Keywords,
		Sources:   o.Sources,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// List は推し一覧を取得する。
// GET /api/oshi
func (h *OshiHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	oshis, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	results := make([]oshiResponse, len(oshis))
	for i, o := range oshis {
		results[i] = toOshiResponse(o)
	}
	writeData(w, http.StatusOK, results)
}

// Create は推しを登録する。バリデーションは永続化より前に実行する。
// POST /api/oshi
func (h *OshiHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	var input validation.OshiInput
	if appErr := decodeBody(r, &input); appErr != nil {
		writeError(w, appErr)
		return
	}

	data, appErr := validation.ValidateOshi(input)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	oshi, err := h.service.Create(r.Context(), userID, data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, toOshiResponse(oshi))
}

// Update は推しを更新する。
// PUT /api/oshi/{id}
func (h *OshiHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	oshiID := chi.URLParam(r, "id")

	var input validation.OshiInput
	if appErr := decodeBody(r, &input); appErr != nil {
		writeError(w, appErr)
		return
	}

	data, appErr := validation.ValidateOshi(input)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	oshi, err := h.service.Update(r.Context(), oshiID, userID, data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, toOshiResponse(oshi))
}

// Delete は推しを削除する。関連する収集情報やイベントは削除しない。
// DELETE /api/oshi/{id}
func (h *OshiHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	oshiID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), oshiID, userID); err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"message": "推しを削除しました"})
}
