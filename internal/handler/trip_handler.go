package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oshilab/oshiagent/internal/middleware"
	"github.com/oshilab/oshiagent/internal/model"
)

// TripServiceInterface は遠征プランハンドラーが必要とするサービスインターフェース。
type TripServiceInterface interface {
	// Get はイベントに対する遠征プランを取得する。未作成の場合はnilを返す。
	Get(ctx context.Context, userID, eventID string) (*model.TripPlan, error)
	// Generate は遠征プランを生成して永続化する。既存プランがある場合は
	// エージェントバックエンドを呼ばずにそれを返す。createdは新規作成時にtrue。
	Generate(ctx context.Context, userID, eventID string) (*model.TripPlan, bool, error)
}

// TripHandler は遠征プランのHTTPハンドラー。
type TripHandler struct {
	service TripServiceInterface
}

// NewTripHandler はTripHandlerを生成する。
func NewTripHandler(service TripServiceInterface) *TripHandler {
	return &TripHandler{service: service}
}

// tripPlanResponse は遠征プランのAPIレスポンス。
type tripPlanResponse struct {
	ID                        string    `json:"id"`
	UserID                    string    `json:"userId"`
	EventID                   string    `json:"eventId"`
	Destination               string    `json:"destination"`
	DepartureDate             string    `json:"departureDate"`
	ReturnDate                string    `json:"returnDate"`
	TransportationSuggestions []string  `json:"transportationSuggestions"`
	AccommodationSuggestions  []string  `json:"accommodationSuggestions"`
	EstimatedBudget           int64     `json:"estimatedBudget"`
	Notes                     string    `json:"notes"`
	CreatedAt                 time.Time `json:"createdAt"`
	UpdatedAt                 time.Time `json:"updatedAt"`
}

// toTripPlanResponse はドメインのTripPlanをAPIレスポンス型に変換する。
func toTripPlanResponse(p *model.TripPlan) tripPlanResponse {
	return tripPlanResponse{
		ID:                        p.ID,
		UserID:                    p.UserID,
		EventID:                   p.EventID,
		Destination:               p.Destination,
		DepartureDate:             p.DepartureDate,
		ReturnDate:                p.ReturnDate,
		TransportationSuggestions: p.TransportationSuggestions,
		AccommodationSuggestions:  p.AccommodationSuggestions,
		EstimatedBudget:           p.EstimatedBudget,
		Notes:                     p.Notes,
		CreatedAt:                 p.CreatedAt,
		UpdatedAt:                 p.UpdatedAt,
	}
}

// Get はイベントに対する遠征プランを取得する。未作成の場合はdataにnullを返す。
// GET /api/trip-plans/{eventId}
func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	eventID := chi.URLParam(r, "eventId")

	plan, err := h.service.Get(r.Context(), userID, eventID)
	if err != nil {
		writeError(w, err)
		return
	}

	if plan == nil {
		writeData(w, http.StatusOK, nil)
		return
	}
	writeData(w, http.StatusOK, toTripPlanResponse(plan))
}

// Generate は遠征プランを生成する。冪等な操作で、既存プランがあれば200で返す。
// POST /api/trip-plans/{eventId}
func (h *TripHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	eventID := chi.URLParam(r, "eventId")

	plan, created, err := h.service.Generate(r.Context(), userID, eventID)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeData(w, status, toTripPlanResponse(plan))
}
