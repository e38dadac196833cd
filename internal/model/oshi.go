// Package model はドメインモデルを定義する。
package model

import "time"

// Oshi はユーザーが登録した推し（監視対象）を表す。
// キーワードと情報源はそれぞれ1件以上を常に保持する。
type Oshi struct {
	ID        string
	UserID    string
	Name      string
	Category  string
	Keywords  []string
	Sources   []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Priority は収集情報の優先度を表す。
type Priority string

const (
	// PriorityUrgent は緊急の優先度。
	PriorityUrgent Priority = "urgent"
	// PriorityImportant は重要の優先度。
	PriorityImportant Priority = "important"
	// PriorityNormal は通常の優先度。
	PriorityNormal Priority = "normal"
)

// ValidPriority はpが定義済みの優先度かどうかを返す。
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityUrgent, PriorityImportant, PriorityNormal:
		return true
	}
	return false
}

// CollectedInfo はエージェントバックエンドが収集した推し関連情報を表す。
// OshiIDの参照整合性はアプリケーション層でのみ保証される。
type CollectedInfo struct {
	ID          string
	UserID      string
	OshiID      string
	Title       string
	Content     string
	Source      string
	URL         string
	Priority    Priority
	CollectedAt time.Time
	CreatedAt   time.Time
}
