// Package validation はAPIリクエストボディの入力契約を定義する。
// 各スキーマはフィールド宣言順に制約を検査し、違反はすべて収集した上で
// 最初の違反メッセージを代表メッセージとするValidationErrorに変換する。
package validation

import (
	"math"
	"unicode/utf8"

	"github.com/oshilab/oshiagent/internal/model"
)

// issue は1件のバリデーション違反を表す。
type issue struct {
	path    string
	message string
}

// toError は違反一覧をValidationErrorに変換する。違反がない場合はnil。
// 代表メッセージにはフィールド宣言順で最初の違反のメッセージを使用する。
func toError(issues []issue) *model.AppError {
	if len(issues) == 0 {
		return nil
	}
	fieldErrors := make(map[string][]string)
	for _, is := range issues {
		fieldErrors[is.path] = append(fieldErrors[is.path], is.message)
	}
	return model.NewValidationError(issues[0].message, fieldErrors)
}

// OshiInput は推し登録・更新リクエストのボディ。
type OshiInput struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
	Sources  []string `json:"sources"`
}

// OshiData は検証済みの推しデータ。
type OshiData struct {
	Name     string
	Category string
	Keywords []string
	Sources  []string
}

// ValidateOshi は推しスキーマを検証する。
func ValidateOshi(in OshiInput) (*OshiData, *model.AppError) {
	var issues []issue

	if in.Name == "" {
		issues = append(issues, issue{"name", "推しの名前を入力してください"})
	} else if utf8.RuneCountInString(in.Name) > 100 {
		issues = append(issues, issue{"name", "名前は100文字以内で入力してください"})
	}

	if in.Category == "" {
		issues = append(issues, issue{"category", "カテゴリを入力してください"})
	} else if utf8.RuneCountInString(in.Category) > 50 {
		issues = append(issues, issue{"category", "カテゴリは50文字以内で入力してください"})
	}

	if len(in.Keywords) == 0 {
		issues = append(issues, issue{"keywords", "少なくとも1つのキーワードを入力してください"})
	}

	if len(in.Sources) == 0 {
		issues = append(issues, issue{"sources", "少なくとも1つの情報源を入力してください"})
	}

	if err := toError(issues); err != nil {
		return nil, err
	}

	return &OshiData{
		Name:     in.Name,
		Category: in.Category,
		Keywords: in.Keywords,
		Sources:  in.Sources,
	}, nil
}

// ExpenseInput は支出登録リクエストのボディ。
// Amountは未指定検出のためポインタで受ける。
type ExpenseInput struct {
	OshiID      string   `json:"oshiId"`
	EventID     string   `json:"eventId"`
	Category    string   `json:"category"`
	Amount      *float64 `json:"amount"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
}

// ExpenseData は検証済みの支出データ。
type ExpenseData struct {
	OshiID      string
	EventID     string
	Category    model.Category
	Amount      int64
	Description string
	Date        string
}

// maxExpenseAmount は1件あたりの支出上限（円）。
const maxExpenseAmount = 10_000_000

// ValidateExpense は支出スキーマを検証する。
func ValidateExpense(in ExpenseInput) (*ExpenseData, *model.AppError) {
	var issues []issue

	if !model.ValidCategory(model.Category(in.Category)) {
		issues = append(issues, issue{"category", "カテゴリを選択してください"})
	}

	if in.Amount == nil || *in.Amount < 1 {
		issues = append(issues, issue{"amount", "金額を入力してください"})
	} else if *in.Amount > maxExpenseAmount {
		issues = append(issues, issue{"amount", "金額が大きすぎます"})
	} else if *in.Amount != math.Trunc(*in.Amount) {
		issues = append(issues, issue{"amount", "金額は整数で入力してください"})
	}

	if in.Description == "" {
		issues = append(issues, issue{"description", "説明を入力してください"})
	} else if utf8.RuneCountInString(in.Description) > 200 {
		issues = append(issues, issue{"description", "説明は200文字以内で入力してください"})
	}

	if in.Date == "" {
		issues = append(issues, issue{"date", "日付を選択してください"})
	}

	if err := toError(issues); err != nil {
		return nil, err
	}

	return &ExpenseData{
		OshiID:      in.OshiID,
		EventID:     in.EventID,
		Category:    model.Category(in.Category),
		Amount:      int64(*in.Amount),
		Description: in.Description,
		Date:        in.Date,
	}, nil
}

// SettingsInput は設定更新リクエストのボディ。
// 必須のbool項目は未指定検出のためポインタで受ける。
type SettingsInput struct {
	NotificationEnabled  *bool    `json:"notificationEnabled"`
	EmailNotification    *bool    `json:"emailNotification"`
	PriorityThreshold    string   `json:"priorityThreshold"`
	BudgetLimit          *float64 `json:"budgetLimit"`
	BudgetAlertThreshold *float64 `json:"budgetAlertThreshold"`
	CalendarSync         *bool    `json:"calendarSync"`
}

// SettingsData は検証済みの設定データ。
type SettingsData struct {
	NotificationEnabled  bool
	EmailNotification    bool
	PriorityThreshold    model.Priority
	BudgetLimit          *int64
	BudgetAlertThreshold *int64
	CalendarSync         bool
}

// ValidateSettings は設定スキーマを検証する。
func ValidateSettings(in SettingsInput) (*SettingsData, *model.AppError) {
	var issues []issue

	if in.NotificationEnabled == nil {
		issues = append(issues, issue{"notificationEnabled", "通知設定を指定してください"})
	}

	if in.EmailNotification == nil {
		issues = append(issues, issue{"emailNotification", "メール通知設定を指定してください"})
	}

	if !model.ValidPriority(model.Priority(in.PriorityThreshold)) {
		issues = append(issues, issue{"priorityThreshold", "通知しきい値が不正です"})
	}

	if in.BudgetLimit != nil && *in.BudgetLimit < 0 {
		issues = append(issues, issue{"budgetLimit", "予算上限は0以上で設定してください"})
	}

	if in.BudgetAlertThreshold != nil && (*in.BudgetAlertThreshold < 0 || *in.BudgetAlertThreshold > 100) {
		issues = append(issues, issue{"budgetAlertThreshold", "警告閾値は0-100%で設定してください"})
	}

	if in.CalendarSync == nil {
		issues = append(issues, issue{"calendarSync", "カレンダー同期設定を指定してください"})
	}

	if err := toError(issues); err != nil {
		return nil, err
	}

	data := &SettingsData{
		NotificationEnabled: *in.NotificationEnabled,
		EmailNotification:   *in.EmailNotification,
		PriorityThreshold:   model.Priority(in.PriorityThreshold),
		CalendarSync:        *in.CalendarSync,
	}
	if in.BudgetLimit != nil {
		v := int64(*in.BudgetLimit)
		data.BudgetLimit = &v
	}
	if in.BudgetAlertThreshold != nil {
		v := int64(*in.BudgetAlertThreshold)
		data.BudgetAlertThreshold = &v
	}
	return data, nil
}
