// Package model はドメインモデルを定義する。
package model

import "fmt"

// AppError はAPIレスポンスに変換可能な業務エラーを表す。
// Nameはレスポンスのerrorフィールドに、StatusCodeはHTTPステータスに対応する。
type AppError struct {
	Name        string              // エラー種別名（例: NotFoundError）
	Message     string              // エラーメッセージ
	StatusCode  int                 // HTTPステータスコード
	Code        string              // クライアント分岐用の安定コード
	FieldErrors map[string][]string // フィールド別のバリデーションエラー（ValidationErrorのみ）
}

// Error はerrorインターフェースを実装する。
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeValidation   = "VALIDATION_ERROR"
	CodeExternalAPI  = "EXTERNAL_API_ERROR"
)

// NewNotFoundError はリソース未検出エラーを生成する。
// messageが空の場合はデフォルトメッセージを使用する。
func NewNotFoundError(message string) *AppError {
	if message == "" {
		message = "リソースが見つかりません"
	}
	return &AppError{
		Name:       "NotFoundError",
		Message:    message,
		StatusCode: 404,
		Code:       CodeNotFound,
	}
}

// NewUnauthorizedError は認証エラーを生成する。
// messageが空の場合はデフォルトメッセージを使用する。
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "認証が必要です"
	}
	return &AppError{
		Name:       "UnauthorizedError",
		Message:    message,
		StatusCode: 401,
		Code:       CodeUnauthorized,
	}
}

// NewValidationError はバリデーションエラーを生成する。
// fieldErrorsにはフィールド名からメッセージ一覧へのマッピングを渡す（省略可）。
func NewValidationError(message string, fieldErrors map[string][]string) *AppError {
	if message == "" {
		message = "入力値が不正です"
	}
	return &AppError{
		Name:        "ValidationError",
		Message:     message,
		StatusCode:  400,
		Code:        CodeValidation,
		FieldErrors: fieldErrors,
	}
}

// NewExternalAPIError は外部API通信エラーを生成する。
// statusCodeが0の場合は500を使用する。上流のステータスをそのまま伝播する場合に指定する。
func NewExternalAPIError(message string, statusCode int) *AppError {
	if message == "" {
		message = "外部APIとの通信に失敗しました"
	}
	if statusCode == 0 {
		statusCode = 500
	}
	return &AppError{
		Name:       "ExternalApiError",
		Message:    message,
		StatusCode: statusCode,
		Code:       CodeExternalAPI,
	}
}
