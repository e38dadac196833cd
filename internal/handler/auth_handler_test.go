package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oshilab/oshiagent/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	getLoginURLFn    func(state string) string
	handleCallbackFn func(ctx context.Context, code string) (*model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return ""
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, code)
	}
	return nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, nil
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		BaseURL:       "http://localhost:3000",
		CookieSecure:  false,
		SessionMaxAge: 86400,
	}
}

// sessionCookieFrom はレスポンスからセッションCookieを探す。
func sessionCookieFrom(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}

// --- ログイン開始テスト ---

// TestAuthHandler_Login_RedirectsWithStateCookie はOAuthフロー開始時に
// stateがCookieに保存され、同じstateで認可URLへリダイレクトされることを検証する。
func TestAuthHandler_Login_RedirectsWithStateCookie(t *testing.T) {
	svc := &mockAuthService{
		getLoginURLFn: func(state string) string {
			return "https://accounts.google.com/o/oauth2/auth?state=" + state
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/login", nil)
	w := httptest.NewRecorder()
	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}

	var stateCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == oauthStateCookie {
			stateCookie = c
		}
	}
	if stateCookie == nil {
		t.Fatal("stateがCookieに保存されるべき")
	}
	if stateCookie.Value == "" {
		t.Fatal("stateが空であってはならない")
	}
	if !stateCookie.HttpOnly {
		t.Error("stateのCookieはHttpOnlyであるべき")
	}

	// リダイレクト先のURLにCookieと同じstateが含まれること
	location := resp.Header.Get("Location")
	if !strings.Contains(location, "accounts.google.com") {
		t.Errorf("Location = %q, 認可URLへリダイレクトすべき", location)
	}
	if !strings.Contains(location, "state="+stateCookie.Value) {
		t.Errorf("Location = %q, Cookieのstate %q を含むべき", location, stateCookie.Value)
	}
}

// --- コールバックテスト ---

func TestAuthHandler_Callback_Success_SetsSessionCookie(t *testing.T) {
	svc := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			if code != "auth-code-xyz" {
				t.Errorf("code = %q, want %q", code, "auth-code-xyz")
			}
			return &model.Session{
				ID:        "sess-new",
				UserID:    "user-1",
				ExpiresAt: time.Now().Add(24 * time.Hour),
			}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code-xyz&state=state-ok", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "state-ok"})
	w := httptest.NewRecorder()
	h.Callback(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}
	if location := resp.Header.Get("Location"); location != "http://localhost:3000" {
		t.Errorf("Location = %q, フロントエンドへ戻るべき", location)
	}

	cookie := sessionCookieFrom(resp)
	if cookie == nil {
		t.Fatal("セッションCookieが設定されるべき")
	}
	if cookie.Value != "sess-new" {
		t.Errorf("session cookie = %q, want %q", cookie.Value, "sess-new")
	}
	if !cookie.HttpOnly {
		t.Error("セッションCookieはHttpOnlyであるべき")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", cookie.SameSite)
	}
	if cookie.MaxAge != 86400 {
		t.Errorf("MaxAge = %d, want 86400", cookie.MaxAge)
	}

	// 使用済みのstate Cookieは破棄されること
	for _, c := range resp.Cookies() {
		if c.Name == oauthStateCookie && c.MaxAge != -1 {
			t.Error("state Cookieは削除されるべき")
		}
	}
}

// TestAuthHandler_Callback_InvalidRequest_Returns400 はstate不一致や
// 認可コード欠落のコールバックが拒否されることを検証する。
func TestAuthHandler_Callback_InvalidRequest_Returns400(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		stateCookie string
	}{
		{"認可コードなし", "/auth/google/callback?state=state-ok", "state-ok"},
		{"state不一致", "/auth/google/callback?code=c&state=forged", "state-ok"},
		{"state Cookieなし", "/auth/google/callback?code=c&state=state-ok", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{
				handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
					t.Error("不正なコールバックで認証処理を実行してはならない")
					return nil, nil
				},
			}, testAuthConfig())

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.stateCookie != "" {
				req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: tt.stateCookie})
			}
			w := httptest.NewRecorder()
			h.Callback(w, req)

			if w.Result().StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
			}
		})
	}
}

func TestAuthHandler_Callback_ServiceError_Returns500(t *testing.T) {
	svc := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			return nil, errors.New("token exchange failed")
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=bad-code&state=state-ok", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "state-ok"})
	w := httptest.NewRecorder()
	h.Callback(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}
}

// --- ログアウトテスト ---

func TestAuthHandler_Logout_DestroysSessionAndClearsCookie(t *testing.T) {
	loggedOut := ""
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			loggedOut = sessionID
			return nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-to-destroy"})
	w := httptest.NewRecorder()
	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}
	if loggedOut != "sess-to-destroy" {
		t.Errorf("logged out session = %q, want %q", loggedOut, "sess-to-destroy")
	}

	cookie := sessionCookieFrom(resp)
	if cookie == nil {
		t.Fatal("セッションCookieのクリアが設定されるべき")
	}
	if cookie.MaxAge != -1 {
		t.Errorf("MaxAge = %d, want -1（削除）", cookie.MaxAge)
	}
}

// DB側の削除に失敗してもCookieはクリアすること
func TestAuthHandler_Logout_ServiceError_StillClearsCookie(t *testing.T) {
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			return errors.New("db unavailable")
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-any"})
	w := httptest.NewRecorder()
	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}
	cookie := sessionCookieFrom(resp)
	if cookie == nil || cookie.MaxAge != -1 {
		t.Error("削除失敗時もCookieはクリアされるべき")
	}
}

func TestAuthHandler_Logout_NoSession_StillRedirects(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()
	h.Logout(w, req)

	if w.Result().StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusTemporaryRedirect)
	}
}

// --- ログインユーザー取得テスト ---

func TestAuthHandler_Me_ReturnsProfileWithPicture(t *testing.T) {
	svc := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			if sessionID != "sess-me" {
				t.Errorf("session ID = %q, want %q", sessionID, "sess-me")
			}
			return &model.User{
				ID:      "user-me",
				Email:   "fan@example.com",
				Name:    "推し活ユーザー",
				Picture: "https://lh3.googleusercontent.com/a/fan-photo",
			}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-me"})
	w := httptest.NewRecorder()
	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスの解析に失敗した: %v", err)
	}
	if body.ID != "user-me" {
		t.Errorf("id = %q, want %q", body.ID, "user-me")
	}
	if body.Email != "fan@example.com" {
		t.Errorf("email = %q, want %q", body.Email, "fan@example.com")
	}
	if body.Name != "推し活ユーザー" {
		t.Errorf("name = %q, want %q", body.Name, "推し活ユーザー")
	}
	if body.Picture != "https://lh3.googleusercontent.com/a/fan-photo" {
		t.Errorf("picture = %q, プロフィール画像URLを返すべき", body.Picture)
	}
}

func TestAuthHandler_Me_NoSession_Returns401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestAuthHandler_Me_InvalidSession_Returns401(t *testing.T) {
	svc := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			return nil, errors.New("session not found")
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-stale"})
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}
