package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/oshilab/oshiagent/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// errorフィールドにはエラー種別名、codeにはクライアント分岐用の安定コードを格納する。
type ErrorResponseBody struct {
	Error      string              `json:"error"`
	Message    string              `json:"message"`
	StatusCode int                 `json:"statusCode"`
	Code       string              `json:"code,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

// WriteAppError は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteAppError(w http.ResponseWriter, appErr *model.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Error:      appErr.Name,
		Message:    appErr.Message,
		StatusCode: appErr.StatusCode,
		Code:       appErr.Code,
		Errors:     appErr.FieldErrors,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 未分類のエラーにはクライアント分岐用のcodeを付けない。
func WriteInternalServerError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "サーバー内部でエラーが発生しました"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Error:      "InternalServerError",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	})
}
