package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oshilab/oshiagent/internal/metrics"
	"github.com/oshilab/oshiagent/internal/middleware"
)

// HealthChecker はDB疎通確認に必要なインターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	Collector         metrics.MetricsCollector
	MetricsGatherer   prometheus.Gatherer

	HealthChecker HealthChecker

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ドメインサービス
	OshiService     OshiServiceInterface
	InfoService     InfoServiceInterface
	EventService    EventServiceInterface
	ExpenseService  ExpenseServiceInterface
	SettingsService SettingsServiceInterface
	TripService     TripServiceInterface
	UserService     UserServiceInterface

	// エージェントプロキシ
	NetworkProxy NetworkProxyInterface
	JobTrigger   JobTriggerInterface

	// スケジューラ認証トークン。空の場合、ジョブエンドポイントは常に失敗する。
	SchedulerToken string
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Session → CSRF → RateLimit(General)
//
// 認証ルート（/auth/*）、ジョブルート（/api/jobs/*）、/healthz、/metricsは
// セッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Collector))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	oshiHandler := NewOshiHandler(deps.OshiService)
	infoHandler := NewInfoHandler(deps.InfoService)
	eventHandler := NewEventHandler(deps.EventService)
	expenseHandler := NewExpenseHandler(deps.ExpenseService)
	settingsHandler := NewSettingsHandler(deps.SettingsService)
	tripHandler := NewTripHandler(deps.TripService)
	networkHandler := NewNetworkHandler(deps.NetworkProxy)
	jobHandler := NewJobHandler(deps.JobTrigger, deps.SchedulerToken)
	userHandler := NewUserHandler(deps.UserService)

	// --- 認証不要のルート ---

	r.Get("/healthz", newHealthzHandler(deps.HealthChecker))

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.SetupMetricsRoute(deps.MetricsGatherer))
	}

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// CSRFトークン取得
	r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

	// スケジューラジョブ（Bearerトークンで保護、セッション認証外）
	r.Route("/api/jobs", func(r chi.Router) {
		r.Post("/scout", jobHandler.Scout)
		r.Post("/priority", jobHandler.Priority)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 推し管理
		r.Route("/api/oshi", func(r chi.Router) {
			r.Get("/", oshiHandler.List)
			r.Post("/", oshiHandler.Create)
			r.Put("/{id}", oshiHandler.Update)
			r.Delete("/{id}", oshiHandler.Delete)
		})

		// 収集情報
		r.Get("/api/info", infoHandler.List)
		r.Get("/api/dashboard", infoHandler.Dashboard)

		// イベント管理
		r.Route("/api/events", func(r chi.Router) {
			r.Get("/", eventHandler.List)

			// カレンダー登録はエージェントバックエンドを呼ぶためプロキシ用レート制限を追加
			r.With(deps.RateLimiter.AgentProxyMiddleware()).
				Post("/{id}/calendar", eventHandler.RegisterCalendar)
		})

		// 支出管理
		r.Route("/api/expenses", func(r chi.Router) {
			r.Get("/", expenseHandler.List)
			r.Post("/", expenseHandler.Create)
			r.Get("/report", expenseHandler.MonthlyReport)
		})

		// ユーザー設定
		r.Route("/api/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.Get)
			r.Put("/", settingsHandler.Update)
		})

		// 遠征プラン
		r.Route("/api/trip-plans/{eventId}", func(r chi.Router) {
			r.Get("/", tripHandler.Get)
			r.With(deps.RateLimiter.AgentProxyMiddleware()).Post("/", tripHandler.Generate)
		})

		// 監視ネットワーク（エージェントプロキシ）
		r.Route("/api/network", func(r chi.Router) {
			r.Use(deps.RateLimiter.AgentProxyMiddleware())

			r.Post("/discover", networkHandler.Discover)
			r.Post("/scout", networkHandler.Scout)
			r.Get("/{oshiId}", networkHandler.Get)
		})

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Delete("/me", userHandler.Withdraw)
		})
	})

	return r
}

// newHealthzHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthzHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("unhealthy"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
