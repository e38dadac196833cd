package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/oshilab/oshiagent/internal/middleware"
	"github.com/oshilab/oshiagent/internal/model"
	"github.com/oshilab/oshiagent/internal/repository"
	"github.com/oshilab/oshiagent/internal/validation"
)

// defaultExpenseLimit は支出一覧のデフォルト取得件数。
const defaultExpenseLimit = 100

// ExpenseServiceInterface は支出ハンドラーが必要とするサービスインターフェース。
type ExpenseServiceInterface interface {
	// List は絞り込み条件に合致する支出を日付降順で返す。
	List(ctx context.Context, userID string, filter repository.ExpenseFilter) ([]*model.Expense, error)
	// Create は検証済みデータから支出を作成する。
	Create(ctx context.Context, userID string, data *validation.ExpenseData) (*model.Expense, error)
	// MonthlyReport は指定月の支出レポートを集計する。
	MonthlyReport(ctx context.Context, userID string, month time.Time) (*model.ExpenseReport, error)
}

// ExpenseHandler は支出管理のHTTPハンドラー。
type ExpenseHandler struct {
	service ExpenseServiceInterface
}

// NewExpenseHandler はExpenseHandlerを生成する。
func NewExpenseHandler(service ExpenseServiceInterface) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// expenseResponse は支出情報のAPIレスポンス。
type expenseResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	OshiID      string    `json:"oshiId"`
	EventID     string    `json:"eventId"`
	Category    string    `json:"category"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// oshiAmountResponse は推し別集計のAPIレスポンス。
type oshiAmountResponse struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// expenseReportResponse は月次レポートのAPIレスポンス。
type expenseReportResponse struct {
	Month       string                        `json:"month"`
	MonthLabel  string                        `json:"monthLabel"`
	TotalAmount int64                         `json:"totalAmount"`
	TotalLabel  string                        `json:"totalLabel"`
	ByCategory  map[string]int64              `json:"byCategory"`
	ByOshi      map[string]oshiAmountResponse `json:"byOshi"`
	Expenses    []expenseResponse             `json:"expenses"`
}

// toExpenseResponse はドメインのExpenseをAPIレスポンス型に変換する。
func toExpenseResponse(e *model.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		OshiID:      e.OshiID,
		EventID:     e.EventID,
		Category:    string(e.Category),
		Amount:      e.Amount,
		Description: e.Description,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// toExpenseReportResponse はドメインのExpenseReportをAPIレスポンス型に変換する。
func toExpenseReportResponse(report *model.ExpenseReport) expenseReportResponse {
	byCategory := make(map[string]int64, len(report.ByCategory))
	for category, amount := range report.ByCategory {
		byCategory[string(category)] = amount
	}

	byOshi := make(map[string]oshiAmountResponse, len(report.ByOshi))
	for oshiID, oa := range report.ByOshi {
		byOshi[oshiID] = oshiAmountResponse{Name: oa.Name, Amount: oa.Amount}
	}

	expenses := make([]expenseResponse, len(report.Expenses))
	for i, e := range report.Expenses {
		expenses[i] = toExpenseResponse(e)
	}

	return expenseReportResponse{
		Month:       report.Month,
		MonthLabel:  report.MonthLabel,
		TotalAmount: report.TotalAmount,
		TotalLabel:  report.TotalLabel,
		ByCategory:  byCategory,
		ByOshi:      byOshi,
		Expenses:    expenses,
	}
}

// List は支出一覧を取得する。
// GET /api/expenses?oshiId&eventId&category&from&to&limit
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	query := r.URL.Query()

	filter := repository.ExpenseFilter{
		OshiID:  query.Get("oshiId"),
		EventID: query.Get("eventId"),
		From:    query.Get("from"),
		To:      query.Get("to"),
		Limit:   defaultExpenseLimit,
	}

	if c := query.Get("category"); c != "" {
		if !model.ValidCategory(model.Category(c)) {
			writeError(w, model.NewValidationError("カテゴリが不正です", nil))
			return
		}
		filter.Category = model.Category(c)
	}

	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			writeError(w, model.NewValidationError("limitが不正です", nil))
			return
		}
		filter.Limit = limit
	}

	expenses, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	results := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		results[i] = toExpenseResponse(e)
	}
	writeData(w, http.StatusOK, results)
}

// Create は支出を登録する。バリデーションは永続化より前に実行する。
// POST /api/expenses
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	var input validation.ExpenseInput
	if appErr := decodeBody(r, &input); appErr != nil {
		writeError(w, appErr)
		return
	}

	data, appErr := validation.ValidateExpense(input)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	expense, err := h.service.Create(r.Context(), userID, data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, toExpenseResponse(expense))
}

// MonthlyReport は月次の支出レポートを取得する。
// GET /api/expenses/report?month（未指定は当月）
func (h *ExpenseHandler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewUnauthorizedError(""))
		return
	}

	month, appErr := parseMonthParam(r.URL.Query().Get("month"))
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	report, err := h.service.MonthlyReport(r.Context(), userID, month)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, toExpenseReportResponse(report))
}

// parseMonthParam はmonthクエリパラメータを解釈する。
// "2006-01" 形式を優先し、"2006-01-02" 形式も受け付ける。未指定は現在時刻。
func parseMonthParam(value string) (time.Time, *model.AppError) {
	if value == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse("2006-01", value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, model.NewValidationError("monthの形式が不正です", nil)
}
