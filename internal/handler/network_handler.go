package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oshilab/oshiagent/internal/agent"
	"github.com/oshilab/oshiagent/internal/middleware"
	"github.com/oshilab/oshiagent/internal/model"
)

// NetworkProxyInterface は監視ネットワークハンドラーが必要とするエージェント操作。
// レスポンスはエージェントバックエンドの返却値をそのまま転送する。
type NetworkProxyInterface interface {
	// DiscoverNetwork は推しの監視ネットワークを探索する。
	DiscoverNetwork(ctx context.Context, userID, oshiID string) (*agent.NetworkDiscoverResponse, error)
	// GetNetwork は推しの監視ネットワークを取得する。
	GetNetwork(ctx context.Context, userID, oshiID string) (*agent.NetworkListResponse, error)
	// RunNetworkScout はネットワーク横断の情報収集を実行する。
	RunNetworkScout(ctx context.Context, userID, oshiID string) (*agent.NetworkScoutResponse, error)
}

// NetworkHandler は監視ネットワークのHTTPハンドラー。エージェントバックエンドへの薄いプロキシ。
type NetworkHandler struct {
	proxy NetworkProxyInterface
}

// NewNetworkHandler はNetworkHandlerを生成する。
func NewNetworkHandler(proxy NetworkProxyInterface) *NetworkHandler {
	return &NetworkHandler{proxy: proxy}
}

// networkRequest はネットワーク操作リクエストのボディ。
type networkRequest struct {
	OshiID string `json:"oshiId"`
}

// Discover は推しの監視ネットワーク探索を実行する。
// POST /api/network/discover
func (h *NetworkHandler) Discover(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	var req networkRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}
	if req.OshiID == "" {
		writeError(w, model.NewValidationError("oshiIdを指定してください", nil))
		return
	}

	resp, err := h.proxy.DiscoverNetwork(r.Context(), userID, req.OshiID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, resp)
}

// Get は推しの監視ネットワークを取得する。
// GET /api/network/{oshiId}
func (h *NetworkHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	oshiID := chi.URLParam(r, "oshiId")

	resp, err := h.proxy.GetNetwork(r.Context(), userID, oshiID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, resp)
}

// Scout はネットワーク横断の情報収集を実行する。
// POST /api/network/scout
func (h *NetworkHandler) Scout(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	var req networkRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}
	if req.OshiID == "" {
		writeError(w, model.NewValidationError("oshiIdを指定してください", nil))
		return
	}

	resp, err := h.proxy.RunNetworkScout(r.Context(), userID, req.OshiID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, resp)
}
