package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oshilab/oshiagent/internal/model"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func newTestClient(serverURL string) *Client {
	var buf bytes.Buffer
	return NewClient(serverURL, "test-api-key", http.DefaultClient, newTestLogger(&buf), nil)
}

func TestNewClient_ReturnsNonNil(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	c := NewClient("http://localhost:8000", "key", http.DefaultClient, logger, nil)
	if c == nil {
		t.Fatal("NewClient は nil を返してはならない")
	}
}

// TestClient_TriggerScout_SendsHeaders は内部APIキーとユーザーIDが
// ヘッダーで送信されることを検証する。
func TestClient_TriggerScout_SendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("HTTPメソッド = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/agents/scout" {
			t.Errorf("パス = %s, want /api/agents/scout", r.URL.Path)
		}
		if got := r.Header.Get("X-Internal-Api-Key"); got != "test-api-key" {
			t.Errorf("X-Internal-Api-Key = %q, want %q", got, "test-api-key")
		}
		if got := r.Header.Get("X-User-Id"); got != "user-1" {
			t.Errorf("X-User-Id = %q, want %q", got, "user-1")
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}

		var body map[string]string
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			t.Fatalf("リクエストボディのパースに失敗: %v", err)
		}
		if body["oshiId"] != "oshi-1" {
			t.Errorf("oshiId = %q, want %q", body["oshiId"], "oshi-1")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "scout started", "taskId": "task-1"})
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	resp, err := c.TriggerScout(context.Background(), "user-1", "oshi-1")
	if err != nil {
		t.Fatalf("TriggerScout がエラーを返した: %v", err)
	}
	if resp.Message != "scout started" {
		t.Errorf("Message = %q, want %q", resp.Message, "scout started")
	}
	if resp.TaskID != "task-1" {
		t.Errorf("TaskID = %q, want %q", resp.TaskID, "task-1")
	}
}

// TestClient_ErrorResponse_ParsesErrorField はエラーレスポンスのerrorフィールドが
// ExternalApiErrorのメッセージに引き継がれることを検証する。
func TestClient_ErrorResponse_ParsesErrorField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "agent unavailable"})
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.TriggerPriority(context.Background(), "user-1")
	if err == nil {
		t.Fatal("エラーを返すべき")
	}

	var appErr *model.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("AppErrorであるべき: %T", err)
	}
	if appErr.Name != "ExternalApiError" {
		t.Errorf("Name = %q, want ExternalApiError", appErr.Name)
	}
	if appErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want %d", appErr.StatusCode, http.StatusBadGateway)
	}
	if appErr.Message != "agent unavailable" {
		t.Errorf("Message = %q, want %q", appErr.Message, "agent unavailable")
	}
}

// TestClient_ErrorResponse_FallsBackToMessageField はerrorフィールドがない場合に
// messageフィールドが使用されることを検証する。
func TestClient_ErrorResponse_FallsBackToMessageField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"message": "internal failure"})
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.TriggerCalendar(context.Background(), "user-1", "event-1")
	var appErr *model.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("AppErrorであるべき: %T", err)
	}
	if appErr.Message != "internal failure" {
		t.Errorf("Message = %q, want %q", appErr.Message, "internal failure")
	}
}

// TestClient_ErrorResponse_NonJSONBody はエラーボディがJSONでない場合に
// 既定メッセージへフォールバックすることを検証する。
func TestClient_ErrorResponse_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("gateway timeout"))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.TriggerPriority(context.Background(), "user-1")
	var appErr *model.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("AppErrorであるべき: %T", err)
	}
	if appErr.Message != "API request failed" {
		t.Errorf("Message = %q, want %q", appErr.Message, "API request failed")
	}
	if appErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want %d", appErr.StatusCode, http.StatusServiceUnavailable)
	}
}

// TestClient_NetworkFailure_ReturnsExternalAPIError500 は通信障害が
// ステータス500のExternalApiErrorに正規化されることを検証する。
func TestClient_NetworkFailure_ReturnsExternalAPIError500(t *testing.T) {
	// 即座に閉じたサーバーで接続エラーを発生させる
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := newTestClient(server.URL)

	_, err := c.TriggerScout(context.Background(), "user-1", "oshi-1")
	if err == nil {
		t.Fatal("エラーを返すべき")
	}

	var appErr *model.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("AppErrorであるべき: %T", err)
	}
	if appErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", appErr.StatusCode)
	}
	if appErr.Code != model.CodeExternalAPI {
		t.Errorf("Code = %q, want %q", appErr.Code, model.CodeExternalAPI)
	}
}

// TestClient_GenerateTripPlan_DecodesResponse は遠征プラン生成のレスポンスが
// 正しくデコードされることを検証する。
func TestClient_GenerateTripPlan_DecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/agents/trip-plan" {
			t.Errorf("パス = %s, want /api/agents/trip-plan", r.URL.Path)
		}

		var req TripPlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("リクエストのパースに失敗: %v", err)
		}
		if req.EventID != "event-1" {
			t.Errorf("EventID = %q, want event-1", req.EventID)
		}
		if req.Destination != "東京" {
			t.Errorf("Destination = %q, want 東京", req.Destination)
		}

		json.NewEncoder(w).Encode(TripPlanResponse{
			TripPlan: TripPlanData{
				Destination:               "東京",
				DepartureDate:             "2026-10-01",
				ReturnDate:                "2026-10-02",
				TransportationSuggestions: []string{"新幹線"},
				AccommodationSuggestions:  []string{"ビジネスホテル"},
				EstimatedBudget:           45000,
				Notes:                     "早割がおすすめ",
			},
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	resp, err := c.GenerateTripPlan(context.Background(), "user-1", &TripPlanRequest{
		EventID:     "event-1",
		Destination: "東京",
		StartDate:   "2026-10-01",
		EndDate:     "2026-10-02",
	})
	if err != nil {
		t.Fatalf("GenerateTripPlan がエラーを返した: %v", err)
	}
	if resp.TripPlan.EstimatedBudget != 45000 {
		t.Errorf("EstimatedBudget = %d, want 45000", resp.TripPlan.EstimatedBudget)
	}
	if len(resp.TripPlan.TransportationSuggestions) != 1 {
		t.Errorf("TransportationSuggestions数 = %d, want 1", len(resp.TripPlan.TransportationSuggestions))
	}
}

// TestClient_GetNetwork_UsesGETWithPathParam はネットワーク取得がGETで
// 推しIDをパスに含めることを検証する。
func TestClient_GetNetwork_UsesGETWithPathParam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("HTTPメソッド = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/agents/network/oshi-7" {
			t.Errorf("パス = %s, want /api/agents/network/oshi-7", r.URL.Path)
		}

		json.NewEncoder(w).Encode(NetworkListResponse{
			OshiID: "oshi-7",
			Nodes: []NetworkNode{
				{ID: "n1", Name: "関係者A", NodeType: "member", Ring: 1, Relationship: "同グループ", IsActive: true},
			},
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	resp, err := c.GetNetwork(context.Background(), "user-1", "oshi-7")
	if err != nil {
		t.Fatalf("GetNetwork がエラーを返した: %v", err)
	}
	if resp.OshiID != "oshi-7" {
		t.Errorf("OshiID = %q, want oshi-7", resp.OshiID)
	}
	if len(resp.Nodes) != 1 || !resp.Nodes[0].IsActive {
		t.Errorf("ノードのデコード結果が不正: %+v", resp.Nodes)
	}
}

// TestClient_TriggerPriority_NoBody は優先度付けトリガーがボディなしで
// 送信されることを検証する。
func TestClient_TriggerPriority_NoBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		if len(data) != 0 {
			t.Errorf("ボディは空であるべき: %q", string(data))
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "priority started"})
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	resp, err := c.TriggerPriority(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("TriggerPriority がエラーを返した: %v", err)
	}
	if resp.Message != "priority started" {
		t.Errorf("Message = %q, want %q", resp.Message, "priority started")
	}
}
