// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/oshilab/oshiagent/internal/middleware"
	"github.com/oshilab/oshiagent/internal/model"
)

// dataEnvelope は成功レスポンスの統一フォーマット。
type dataEnvelope struct {
	Data any `json:"data"`
}

// writeData は成功レスポンスを {"data": ...} 形式で書き込む。
func writeData(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(dataEnvelope{Data: v})
}

// writeError はサービス層から返されたエラーを統一フォーマットのレスポンスに変換する。
// AppError以外のエラーはログに記録した上で、そのメッセージを500レスポンスとして返す。
func writeError(w http.ResponseWriter, err error) {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		middleware.WriteAppError(w, appErr)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w, err.Error())
}

// decodeBody はリクエストボディをJSONとしてデコードする。
// 失敗した場合はValidationErrorを返す。
func decodeBody(r *http.Request, v any) *model.AppError {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewValidationError("リクエストボディの解析に失敗しました", nil)
	}
	return nil
}
