// Package model はドメインモデルを定義する。
package model

import "time"

// Settings はユーザーごとの通知・予算設定を表す。
// ユーザーあたり必ず1件で、初回更新時に遅延作成される。
// BudgetLimitとBudgetAlertThresholdは未設定の場合nil。
type Settings struct {
	UserID               string
	NotificationEnabled  bool
	EmailNotification    bool
	PriorityThreshold    Priority
	BudgetLimit          *int64
	BudgetAlertThreshold *int64
	CalendarSync         bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DefaultSettings は初回作成時のデフォルト設定を返す。
func DefaultSettings(userID string) *Settings {
	return &Settings{
		UserID:              userID,
		NotificationEnabled: true,
		EmailNotification:   false,
		PriorityThreshold:   PriorityImportant,
		CalendarSync:        false,
	}
}
