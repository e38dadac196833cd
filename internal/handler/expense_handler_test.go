package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oshilab/oshiagent/internal/model"
	"github.com/oshilab/oshiagent/internal/repository"
	"github.com/oshilab/oshiagent/internal/validation"
)

// mockExpenseService はExpenseServiceInterfaceのモック実装。
type mockExpenseService struct {
	listFn   func(ctx context.Context, userID string, filter repository.ExpenseFilter) ([]*model.Expense, error)
	createFn func(ctx context.Context, userID string, data *validation.ExpenseData) (*model.Expense, error)
	reportFn func(ctx context.Context, userID string, month time.Time) (*model.ExpenseReport, error)
}

func (m *mockExpenseService) List(ctx context.Context, userID string, filter repository.ExpenseFilter) ([]*model.Expense, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, filter)
	}
	return nil, nil
}

func (m *mockExpenseService) Create(ctx context.Context, userID string, data *validation.ExpenseData) (*model.Expense, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, data)
	}
	return nil, nil
}

func (m *mockExpenseService) MonthlyReport(ctx context.Context, userID string, month time.Time) (*model.ExpenseReport, error) {
	if m.reportFn != nil {
		return m.reportFn(ctx, userID, month)
	}
	return &model.ExpenseReport{}, nil
}

// --- GET /api/expenses テスト ---

func TestExpenseHandler_List_ParsesFilter(t *testing.T) {
	var gotFilter repository.ExpenseFilter
	svc := &mockExpenseService{
		listFn: func(ctx context.Context, userID string, filter repository.ExpenseFilter) ([]*model.Expense, error) {
			gotFilter = filter
			return nil, nil
		},
	}
	h := NewExpenseHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet,
		"/api/expenses?oshiId=oshi-1&eventId=event-1&category=ticket&from=2026-01-01&to=2026-01-31&limit=20", nil), "user-123")
	w := httptest.NewRecorder()

	h.List(w, req)

	if gotFilter.OshiID != "oshi-1" || gotFilter.EventID != "event-1" {
		t.Errorf("filter ids = %q/%q, want oshi-1/event-1", gotFilter.OshiID, gotFilter.EventID)
	}
	if gotFilter.Category != model.CategoryTicket {
		t.Errorf("category = %q, want %q", gotFilter.Category, model.CategoryTicket)
	}
	if gotFilter.Limit != 20 {
		t.Errorf("limit = %d, want 20", gotFilter.Limit)
	}
}

// TestExpenseHandler_List_NoLimitParam_AppliesDefault はlimit未指定時に
// デフォルトの取得件数が適用されることを検証する（無制限の一覧を防ぐ）。
func TestExpenseHandler_List_NoLimitParam_AppliesDefault(t *testing.T) {
	var gotFilter repository.ExpenseFilter
	svc := &mockExpenseService{
		listFn: func(ctx context.Context, userID string, filter repository.ExpenseFilter) ([]*model.Expense, error) {
			gotFilter = filter
			return nil, nil
		},
	}
	h := NewExpenseHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/expenses", nil), "user-123")
	w := httptest.NewRecorder()

	h.List(w, req)

	if gotFilter.Limit != defaultExpenseLimit {
		t.Errorf("limit = %d, want %d", gotFilter.Limit, defaultExpenseLimit)
	}
}

func TestExpenseHandler_List_InvalidCategory_Returns400(t *testing.T) {
	h := NewExpenseHandler(&mockExpenseService{})

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/expenses?category=food", nil), "user-123")
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

// --- POST /api/expenses テスト ---

func TestExpenseHandler_Create_Returns201(t *testing.T) {
	svc := &mockExpenseService{
		createFn: func(ctx context.Context, userID string, data *validation.ExpenseData) (*model.Expense, error) {
			return &model.Expense{
				ID:       "expense-new",
				UserID:   userID,
				Category: data.Category,
				Amount:   data.Amount,
				Date:     data.Date,
			}, nil
		},
	}
	h := NewExpenseHandler(svc)

	body := bytes.NewBufferString(`{
		"category": "ticket",
		"amount": 9800,
		"description": "ライブチケット",
		"date": "2026-04-10"
	}`)
	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/expenses", body), "user-123")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Result().StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusCreated)
	}

	var result expenseResponse
	parseDataResponse(t, w, &result)
	if result.Amount != 9800 {
		t.Errorf("amount = %d, want 9800", result.Amount)
	}
}

// 金額超過のボディは永続化より前に拒否されること
func TestExpenseHandler_Create_AmountTooLarge_ServiceNotCalled(t *testing.T) {
	serviceCalled := false
	svc := &mockExpenseService{
		createFn: func(ctx context.Context, userID string, data *validation.ExpenseData) (*model.Expense, error) {
			serviceCalled = true
			return nil, nil
		},
	}
	h := NewExpenseHandler(svc)

	body := bytes.NewBufferString(`{
		"category": "ticket",
		"amount": 10000001,
		"description": "チケット",
		"date": "2026-04-10"
	}`)
	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/expenses", body), "user-123")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
	if serviceCalled {
		t.Error("service should not be called on validation failure")
	}

	errBody := parseErrorResponse(t, w)
	if errBody.Message != "金額が大きすぎます" {
		t.Errorf("message = %q, want %q", errBody.Message, "金額が大きすぎます")
	}
}

// --- GET /api/expenses/report テスト ---

func TestExpenseHandler_MonthlyReport_ParsesMonthParam(t *testing.T) {
	var gotMonth time.Time
	svc := &mockExpenseService{
		reportFn: func(ctx context.Context, userID string, month time.Time) (*model.ExpenseReport, error) {
			gotMonth = month
			return &model.ExpenseReport{Month: month.Format("2006-01")}, nil
		},
	}
	h := NewExpenseHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/expenses/report?month=2026-02", nil), "user-123")
	w := httptest.NewRecorder()

	h.MonthlyReport(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if gotMonth.Year() != 2026 || gotMonth.Month() != time.February {
		t.Errorf("month = %v, want 2026-02", gotMonth)
	}
}

func TestExpenseHandler_MonthlyReport_AcceptsFullDateFormat(t *testing.T) {
	var gotMonth time.Time
	svc := &mockExpenseService{
		reportFn: func(ctx context.Context, userID string, month time.Time) (*model.ExpenseReport, error) {
			gotMonth = month
			return &model.ExpenseReport{}, nil
		},
	}
	h := NewExpenseHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/expenses/report?month=2026-02-15", nil), "user-123")
	w := httptest.NewRecorder()

	h.MonthlyReport(w, req)

	if gotMonth.Year() != 2026 || gotMonth.Month() != time.February || gotMonth.Day() != 15 {
		t.Errorf("month = %v, want 2026-02-15", gotMonth)
	}
}

func TestExpenseHandler_MonthlyReport_NoParam_DefaultsToNow(t *testing.T) {
	var gotMonth time.Time
	svc := &mockExpenseService{
		reportFn: func(ctx context.Context, userID string, month time.Time) (*model.ExpenseReport, error) {
			gotMonth = month
			return &model.ExpenseReport{}, nil
		},
	}
	h := NewExpenseHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/expenses/report", nil), "user-123")
	w := httptest.NewRecorder()

	h.MonthlyReport(w, req)

	now := time.Now()
	if gotMonth.Year() != now.Year() || gotMonth.Month() != now.Month() {
		t.Errorf("month = %v, want current month %v", gotMonth, now)
	}
}

func TestExpenseHandler_MonthlyReport_InvalidMonth_Returns400(t *testing.T) {
	h := NewExpenseHandler(&mockExpenseService{})

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/expenses/report?month=令和8年2月", nil), "user-123")
	w := httptest.NewRecorder()

	h.MonthlyReport(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestExpenseHandler_MonthlyReport_SerializesCategories(t *testing.T) {
	svc := &mockExpenseService{
		reportFn: func(ctx context.Context, userID string, month time.Time) (*model.ExpenseReport, error) {
			return &model.ExpenseReport{
				Month:       "2026-02",
				MonthLabel:  "2026年02月",
				TotalAmount: 15000,
				TotalLabel:  "¥15,000",
				ByCategory: map[model.Category]int64{
					model.CategoryTicket: 9800,
					model.CategoryGoods:  5200,
					model.CategoryTrip:   0,
					model.CategoryOther:  0,
				},
				ByOshi: map[string]model.OshiAmount{
					"oshi-1": {Name: "oshi-1", Amount: 15000},
				},
				Expenses: []*model.Expense{{ID: "e-1", Amount: 9800}},
			}, nil
		},
	}
	h := NewExpenseHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/expenses/report?month=2026-02", nil), "user-123")
	w := httptest.NewRecorder()

	h.MonthlyReport(w, req)

	var result expenseReportResponse
	parseDataResponse(t, w, &result)
	if result.TotalAmount != 15000 {
		t.Errorf("totalAmount = %d, want 15000", result.TotalAmount)
	}
	if result.MonthLabel != "2026年02月" {
		t.Errorf("monthLabel = %q, want 2026年02月", result.MonthLabel)
	}
	if result.TotalLabel != "¥15,000" {
		t.Errorf("totalLabel = %q, want ¥15,000", result.TotalLabel)
	}
	if len(result.ByCategory) != 4 {
		t.Errorf("len(byCategory) = %d, want 4", len(result.ByCategory))
	}
	if result.ByCategory["ticket"] != 9800 {
		t.Errorf("byCategory[ticket] = %d, want 9800", result.ByCategory["ticket"])
	}
	if result.ByOshi["oshi-1"].Amount != 15000 {
		t.Errorf("byOshi[oshi-1] = %d, want 15000", result.ByOshi["oshi-1"].Amount)
	}
}
