// Package agent はAIエージェントバックエンドのHTTPクライアントを提供する。
// 低レベルのリクエスト送信処理と、操作ごとの薄いラッパーを含む。
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/oshilab/oshiagent/internal/metrics"
	"github.com/oshilab/oshiagent/internal/model"
)

// Client はエージェントバックエンドAPIのクライアント。
// すべてのリクエストに内部APIキーと対象ユーザーIDをヘッダーで付与する。
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	collector  metrics.MetricsCollector
}

// NewClient はClientの新しいインスタンスを生成する。
// collectorはnil可。nilの場合メトリクスは記録しない。
func NewClient(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger, collector metrics.MetricsCollector) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
		collector:  collector,
	}
}

// TriggerResponse はエージェントのトリガー系エンドポイントの共通レスポンス。
type TriggerResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"taskId,omitempty"`
}

// TripPlanRequest は遠征プラン生成のリクエスト。
type TripPlanRequest struct {
	EventID     string `json:"eventId"`
	Destination string `json:"destination"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// TripPlanResponse は遠征プラン生成のレスポンス。
type TripPlanResponse struct {
	TripPlan TripPlanData `json:"tripPlan"`
}

// TripPlanData はエージェントが生成した遠征プランの内容。
type TripPlanData struct {
	Destination               string   `json:"destination"`
	DepartureDate             string   `json:"departureDate"`
	ReturnDate                string   `json:"returnDate"`
	TransportationSuggestions []string `json:"transportationSuggestions"`
	AccommodationSuggestions  []string `json:"accommodationSuggestions"`
	EstimatedBudget           int64    `json:"estimatedBudget"`
	Notes                     string   `json:"notes,omitempty"`
}

// BudgetReportResponse は予算レポート生成のレスポンス。
type BudgetReportResponse struct {
	Report BudgetReportData `json:"report"`
}

// BudgetReportData はエージェントが生成した予算レポートの内容。
type BudgetReportData struct {
	TotalAmount int64                    `json:"totalAmount"`
	ByCategory  map[string]int64         `json:"byCategory"`
	ByOshi      map[string]BudgetByOshi  `json:"byOshi"`
	Insights    []string                 `json:"insights"`
}

// BudgetByOshi は推し別の予算集計。
type BudgetByOshi struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// NetworkNode は関係者ネットワークのノード。
type NetworkNode struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	NodeType     string `json:"node_type"`
	Ring         int    `json:"ring"`
	Relationship string `json:"relationship"`
	IsActive     bool   `json:"is_active"`
}

// NetworkDiscoverNode はネットワーク探索で発見されたノード。
type NetworkDiscoverNode struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	NodeType     string `json:"node_type"`
	Ring         int    `json:"ring"`
	Relationship string `json:"relationship"`
}

// NetworkDiscoverResponse はネットワーク探索のレスポンス。
type NetworkDiscoverResponse struct {
	OshiID          string                `json:"oshi_id"`
	OshiName        string                `json:"oshi_name"`
	DiscoveredCount int                   `json:"discovered_count"`
	Nodes           []NetworkDiscoverNode `json:"nodes"`
}

// NetworkListResponse はネットワーク一覧取得のレスポンス。
type NetworkListResponse struct {
	OshiID string        `json:"oshi_id"`
	Nodes  []NetworkNode `json:"nodes"`
}

// NetworkScoutResponse はネットワーク巡回スカウトのレスポンス。
type NetworkScoutResponse struct {
	OshiID          string            `json:"oshi_id"`
	OshiName        string            `json:"oshi_name"`
	DirectCount     int               `json:"direct_count"`
	NetworkCount    int               `json:"network_count"`
	TotalCount      int               `json:"total_count"`
	NewInfoIDs      []string          `json:"new_info_ids"`
	PriorityResults map[string]string `json:"priority_results"`
}

// errorBody はエージェントバックエンドのエラーレスポンス。
// errorとmessageのどちらかに詳細が入る。
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do はエージェントバックエンドにHTTPリクエストを送信する。
// 通信障害はステータス500のExternalApiErrorに、エラーレスポンスは
// そのステータスを保持したExternalApiErrorに正規化する。
// outがnilでない場合はレスポンスボディをJSONデコードする。
func (c *Client) do(ctx context.Context, operation, method, path, userID string, reqBody, out any) error {
	start := time.Now()
	err := c.send(ctx, method, path, userID, reqBody, out)
	if c.collector != nil {
		c.collector.RecordAgentCall(operation, err == nil)
		c.collector.RecordAgentLatency(operation, time.Since(start))
	}
	return err
}

func (c *Client) send(ctx context.Context, method, path, userID string, reqBody, out any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("リクエストボディのエンコードに失敗しました: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Api-Key", c.apiKey)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("エージェントバックエンドの呼び出しに失敗しました",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return model.NewExternalAPIError(
			fmt.Sprintf("エージェントバックエンドとの通信に失敗しました: %s", err.Error()),
			http.StatusInternalServerError,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "API request failed"
		var eb errorBody
		if data, readErr := io.ReadAll(resp.Body); readErr == nil {
			if json.Unmarshal(data, &eb) == nil {
				if eb.Error != "" {
					msg = eb.Error
				} else if eb.Message != "" {
					msg = eb.Message
				}
			}
		}
		c.logger.Error("エージェントバックエンドがエラーステータスを返しました",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("http_status", resp.StatusCode),
			slog.String("message", msg),
		)
		return model.NewExternalAPIError(msg, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.logger.Error("エージェントバックエンドのレスポンスのパースに失敗しました",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return model.NewExternalAPIError(
				fmt.Sprintf("レスポンスJSONのパースに失敗しました: %s", err.Error()),
				http.StatusInternalServerError,
			)
		}
	}

	return nil
}

// TriggerScout は指定した推しの情報収集エージェントを起動する。
func (c *Client) TriggerScout(ctx context.Context, userID, oshiID string) (*TriggerResponse, error) {
	out := &TriggerResponse{}
	err := c.do(ctx, "scout", http.MethodPost, "/api/agents/scout", userID, map[string]string{"oshiId": oshiID}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TriggerPriority は優先度付けエージェントを起動する。
func (c *Client) TriggerPriority(ctx context.Context, userID string) (*TriggerResponse, error) {
	out := &TriggerResponse{}
	err := c.do(ctx, "priority", http.MethodPost, "/api/agents/priority", userID, nil, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TriggerCalendar は指定したイベントのカレンダー登録エージェントを起動する。
func (c *Client) TriggerCalendar(ctx context.Context, userID, eventID string) (*TriggerResponse, error) {
	out := &TriggerResponse{}
	err := c.do(ctx, "calendar", http.MethodPost, "/api/agents/calendar", userID, map[string]string{"eventId": eventID}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateTripPlan は遠征プランを生成する。
func (c *Client) GenerateTripPlan(ctx context.Context, userID string, req *TripPlanRequest) (*TripPlanResponse, error) {
	out := &TripPlanResponse{}
	err := c.do(ctx, "trip-plan", http.MethodPost, "/api/agents/trip-plan", userID, req, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateBudgetReport は指定月の予算レポートを生成する。monthは "yyyy-MM" 形式。
func (c *Client) GenerateBudgetReport(ctx context.Context, userID, month string) (*BudgetReportResponse, error) {
	out := &BudgetReportResponse{}
	err := c.do(ctx, "budget-report", http.MethodPost, "/api/agents/budget-report", userID, map[string]string{"month": month}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TriggerSummary は指定した推しのサマリー生成エージェントを起動する。
func (c *Client) TriggerSummary(ctx context.Context, userID, oshiID string) (*TriggerResponse, error) {
	out := &TriggerResponse{}
	err := c.do(ctx, "summary", http.MethodPost, "/api/agents/summary", userID, map[string]string{"oshiId": oshiID}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DiscoverNetwork は指定した推しの関係者ネットワークを探索する。
func (c *Client) DiscoverNetwork(ctx context.Context, userID, oshiID string) (*NetworkDiscoverResponse, error) {
	out := &NetworkDiscoverResponse{}
	err := c.do(ctx, "network-discover", http.MethodPost, "/api/agents/network/discover", userID, map[string]string{"oshiId": oshiID}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetNetwork は指定した推しの関係者ネットワークを取得する。
func (c *Client) GetNetwork(ctx context.Context, userID, oshiID string) (*NetworkListResponse, error) {
	out := &NetworkListResponse{}
	err := c.do(ctx, "network-list", http.MethodGet, "/api/agents/network/"+oshiID, userID, nil, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RunNetworkScout はネットワーク全体を巡回する情報収集エージェントを起動する。
func (c *Client) RunNetworkScout(ctx context.Context, userID, oshiID string) (*NetworkScoutResponse, error) {
	out := &NetworkScoutResponse{}
	err := c.do(ctx, "network-scout", http.MethodPost, "/api/agents/network/scout", userID, map[string]string{"oshiId": oshiID}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
