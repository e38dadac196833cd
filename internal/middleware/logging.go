package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/oshilab/oshiagent/internal/metrics"
)

// statusRecorder はhttp.ResponseWriterをラップし、最初に確定したステータスコードを記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

// Write はWriteHeader未呼び出しの場合に200を確定させてから書き込む。
func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// NewLoggingMiddleware はリクエストごとのアクセスログを出力するミドルウェアを返す。
// ログにはmethod、path、status、duration_msを含み、認証済みの場合はuser_idも付く。
// collectorがnilでない場合、リクエスト数とレイテンシをメトリクスに記録する。
func NewLoggingMiddleware(logger *slog.Logger, collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			if collector != nil {
				collector.RecordHTTPRequest(r.Method, r.URL.Path, rec.statusCode)
				collector.RecordHTTPLatency(elapsed)
			}
			logRequest(logger, r, rec.statusCode, elapsed)
		})
	}
}

func logRequest(logger *slog.Logger, r *http.Request, status int, elapsed time.Duration) {
	args := []any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Float64("duration_ms", float64(elapsed.Nanoseconds())/float64(time.Millisecond)),
	}
	if userID, err := UserIDFromContext(r.Context()); err == nil && userID != "" {
		args = append(args, slog.String("user_id", userID))
	}

	logger.Log(r.Context(), levelForStatus(status), "http_request", args...)
}

// levelForStatus はステータスコードに応じたログレベルを返す。
// 5xxはサーバー側の障害なのでERROR、4xxはクライアント起因なのでWARNに落とす。
func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
