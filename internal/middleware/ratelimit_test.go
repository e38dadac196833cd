package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/oshilab/oshiagent/internal/model"
)

// newTestRateLimiter はテスト用のレート設定でRateLimiterを生成する。
// 停止はt.Cleanupに登録する。
func newTestRateLimiter(t *testing.T, cfg RateLimiterConfig) *RateLimiter {
	t.Helper()
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = 1 * time.Minute
	}
	rl := NewRateLimiter(cfg)
	t.Cleanup(rl.Stop)
	return rl
}

// doLimited は認証済みユーザーとしてミドルウェア越しにリクエストを実行する。
func doLimited(mw func(http.Handler) http.Handler, userID, path string) *httptest.ResponseRecorder {
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(ContextWithUserID(req.Context(), userID))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// --- レート制限テスト ---

// TestRateLimiter_BurstWindow はAPI全般・エージェントプロキシ系それぞれで
// バースト内のリクエストが通り、超過分が429になることを検証する。
func TestRateLimiter_BurstWindow(t *testing.T) {
	tests := []struct {
		name  string
		mw    func(rl *RateLimiter) func(http.Handler) http.Handler
		burst int
		path  string
	}{
		{
			name:  "API全般",
			mw:    (*RateLimiter).GeneralMiddleware,
			burst: 3,
			path:  "/api/oshi",
		},
		{
			name:  "エージェントプロキシ",
			mw:    (*RateLimiter).AgentProxyMiddleware,
			burst: 3,
			path:  "/api/network/discover",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := newTestRateLimiter(t, RateLimiterConfig{
				GeneralRate:  1,
				GeneralBurst: tt.burst,
				AgentRate:    1,
				AgentBurst:   tt.burst,
			})
			mw := tt.mw(rl)

			for i := 0; i < tt.burst; i++ {
				if w := doLimited(mw, "user-burst", tt.path); w.Result().StatusCode != http.StatusOK {
					t.Errorf("request %d: status = %d, want %d", i+1, w.Result().StatusCode, http.StatusOK)
				}
			}

			w := doLimited(mw, "user-burst", tt.path)
			if w.Result().StatusCode != http.StatusTooManyRequests {
				t.Errorf("バースト超過: status = %d, want %d", w.Result().StatusCode, http.StatusTooManyRequests)
			}
		})
	}
}

// ユーザーごとに独立したバケットを持つこと
func TestRateLimiter_IsolatesUsers(t *testing.T) {
	rl := newTestRateLimiter(t, RateLimiterConfig{
		GeneralRate:  1,
		GeneralBurst: 1,
		AgentRate:    1,
		AgentBurst:   10,
	})
	mw := rl.GeneralMiddleware()

	if w := doLimited(mw, "user-A", "/api/oshi"); w.Result().StatusCode != http.StatusOK {
		t.Fatalf("user-A 1回目: status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if w := doLimited(mw, "user-A", "/api/oshi"); w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("user-A 2回目: status = %d, want %d", w.Result().StatusCode, http.StatusTooManyRequests)
	}
	// ユーザーAの消費はユーザーBに影響しない
	if w := doLimited(mw, "user-B", "/api/oshi"); w.Result().StatusCode != http.StatusOK {
		t.Errorf("user-B 1回目: status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

// API全般とエージェントプロキシ系のバケットは独立していること
func TestRateLimiter_AgentPoolIndependentFromGeneral(t *testing.T) {
	rl := newTestRateLimiter(t, RateLimiterConfig{
		GeneralRate:  1,
		GeneralBurst: 1,
		AgentRate:    1,
		AgentBurst:   1,
	})

	if w := doLimited(rl.GeneralMiddleware(), "user-indep", "/api/oshi"); w.Result().StatusCode != http.StatusOK {
		t.Fatalf("general: status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	// API全般のバーストを使い切ってもエージェントプロキシ系はまだ通る
	if w := doLimited(rl.AgentProxyMiddleware(), "user-indep", "/api/network/discover"); w.Result().StatusCode != http.StatusOK {
		t.Errorf("agent proxy: status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestRateLimiter_NoUserID_Returns401(t *testing.T) {
	rl := newTestRateLimiter(t, RateLimiterConfig{
		GeneralRate:  2,
		GeneralBurst: 5,
		AgentRate:    1,
		AgentBurst:   10,
	})

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("ユーザーID未設定のリクエストはハンドラーに到達してはならない")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/oshi", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// --- 429レスポンス形式テスト ---

func TestRateLimiter_429ResponseFormat(t *testing.T) {
	rl := newTestRateLimiter(t, RateLimiterConfig{
		GeneralRate:  1,
		GeneralBurst: 1,
		AgentRate:    1,
		AgentBurst:   10,
	})
	mw := rl.GeneralMiddleware()

	doLimited(mw, "user-format", "/api/oshi")
	w := doLimited(mw, "user-format", "/api/oshi")

	resp := w.Result()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	// Retry-Afterは1以上の秒数
	retrySeconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil {
		t.Errorf("Retry-After = %q, 秒数であるべき", resp.Header.Get("Retry-After"))
	}
	if retrySeconds < 1 {
		t.Errorf("Retry-After = %d, 1以上であるべき", retrySeconds)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスの解析に失敗した: %v", err)
	}
	if body.Error != "TooManyRequestsError" {
		t.Errorf("error = %q, want %q", body.Error, "TooManyRequestsError")
	}
	if body.Code != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("code = %q, want %q", body.Code, "RATE_LIMIT_EXCEEDED")
	}
	if body.StatusCode != http.StatusTooManyRequests {
		t.Errorf("statusCode = %d, want %d", body.StatusCode, http.StatusTooManyRequests)
	}
	if body.Message == "" {
		t.Error("メッセージが空であってはならない")
	}
}

// --- クリーンアップテスト ---

func TestRateLimiter_CleanupEvictsIdleEntries(t *testing.T) {
	rl := newTestRateLimiter(t, RateLimiterConfig{
		GeneralRate:     2,
		GeneralBurst:    5,
		AgentRate:       1,
		AgentBurst:      10,
		CleanupInterval: 50 * time.Millisecond,
	})

	doLimited(rl.GeneralMiddleware(), "user-idle", "/api/oshi")
	if rl.GeneralLimiterCount() == 0 {
		t.Fatal("リクエスト後はエントリが存在すべき")
	}

	// TTLはCleanupIntervalの2倍（100ms）。200ms待てば回収される。
	time.Sleep(200 * time.Millisecond)
	if count := rl.GeneralLimiterCount(); count != 0 {
		t.Errorf("放置エントリが回収されるべき: count = %d", count)
	}
}

// --- セッションミドルウェアとの連携テスト ---

// Session -> RateLimit の順で並べたときにCookie認証のユーザー単位で制限されること
func TestRateLimiter_BehindSessionMiddleware(t *testing.T) {
	finder := &mockSessionFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			if id == "sess-rate" {
				return &model.Session{
					ID:        "sess-rate",
					UserID:    "user-chain",
					ExpiresAt: time.Now().Add(1 * time.Hour),
				}, nil
			}
			return nil, nil
		},
	}

	rl := newTestRateLimiter(t, RateLimiterConfig{
		GeneralRate:  1,
		GeneralBurst: 2,
		AgentRate:    1,
		AgentBurst:   10,
	})

	handler := NewSessionMiddleware(finder)(rl.GeneralMiddleware()(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	))

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-rate"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Result().StatusCode
	}

	for i := 0; i < 2; i++ {
		if got := send(); got != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i+1, got, http.StatusOK)
		}
	}
	if got := send(); got != http.StatusTooManyRequests {
		t.Errorf("request 3: status = %d, want %d", got, http.StatusTooManyRequests)
	}
}

// --- デフォルト設定テスト ---

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig()

	if cfg.GeneralRate != 2.0 { // 120 req/min
		t.Errorf("GeneralRate = %f, want 2.0", cfg.GeneralRate)
	}
	if cfg.GeneralBurst != 120 {
		t.Errorf("GeneralBurst = %d, want 120", cfg.GeneralBurst)
	}
	if cfg.AgentRate == 0 {
		t.Error("AgentRateは0であってはならない")
	}
	if cfg.AgentBurst != 10 { // 10 req/min
		t.Errorf("AgentBurst = %d, want 10", cfg.AgentBurst)
	}
}
