// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/oshilab/oshiagent/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// DeleteByID は指定IDのユーザーを削除する。identitiesはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// OshiRepository は推しデータの永続化インターフェース。
// 全操作がユーザー所有権を前提とし、他ユーザーの文書は存在しないものとして扱う。
type OshiRepository interface {
	// ListByUserID はユーザーの推し一覧をcreated_at降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Oshi, error)

	// FindByID は指定IDかつ指定ユーザー所有の推しを取得する。
	// 存在しない場合・所有者が異なる場合はいずれもnilを返す。
	FindByID(ctx context.Context, id, userID string) (*model.Oshi, error)

	// Create は推しを作成する。
	Create(ctx context.Context, oshi *model.Oshi) error

	// Update は推しの全フィールドを上書き更新する。
	Update(ctx context.Context, oshi *model.Oshi) error

	// Delete は指定IDかつ指定ユーザー所有の推しを削除する。
	// 依存する収集情報・イベント・支出は削除しない。
	Delete(ctx context.Context, id, userID string) error

	// DeleteByUserID はユーザーの全推しを削除する。退会処理で使用する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// InfoFilter は収集情報一覧の絞り込み条件。
type InfoFilter struct {
	OshiID   string
	Priority model.Priority
	Limit    int // 0以下は上限なし
	Offset   int
}

// InfoRepository は収集情報の永続化インターフェース。
type InfoRepository interface {
	// List はユーザーの収集情報をcollected_at降順で返す。
	List(ctx context.Context, userID string, filter InfoFilter) ([]*model.CollectedInfo, error)

	// CountByUserID はユーザーの収集情報の総数を返す。
	CountByUserID(ctx context.Context, userID string) (int, error)

	// CountByPriority はユーザーの指定優先度の収集情報数を返す。
	CountByPriority(ctx context.Context, userID string, priority model.Priority) (int, error)

	// DeleteByUserID はユーザーの全収集情報を削除する。退会処理で使用する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// EventFilter はイベント一覧の絞り込み条件。From/Toはstart_dateに対するISO 8601文字列の範囲。
type EventFilter struct {
	OshiID string
	From   string
	To     string
	Limit  int
}

// EventRepository はイベントデータの永続化インターフェース。
type EventRepository interface {
	// List はユーザーのイベントをstart_date昇順で返す。
	List(ctx context.Context, userID string, filter EventFilter) ([]*model.Event, error)

	// FindByID は指定IDかつ指定ユーザー所有のイベントを取得する。
	// 存在しない場合・所有者が異なる場合はいずれもnilを返す。
	FindByID(ctx context.Context, id, userID string) (*model.Event, error)

	// UpdateRegistration はイベントのカレンダー登録状態を更新する。
	// idとuserIDの両方が一致する行のみを対象とする。
	UpdateRegistration(ctx context.Context, id, userID string, isRegistered bool) error

	// DeleteByUserID はユーザーの全イベントを削除する。退会処理で使用する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// TripPlanRepository は遠征プランの永続化インターフェース。
type TripPlanRepository interface {
	// FindByUserAndEvent はユーザーIDとイベントIDで遠征プランを検索する。
	// 見つからない場合はnilを返す。(userId, eventId)あたり最大1件の前提。
	FindByUserAndEvent(ctx context.Context, userID, eventID string) (*model.TripPlan, error)

	// Create は遠征プランを作成する。
	Create(ctx context.Context, plan *model.TripPlan) error

	// DeleteByUserID はユーザーの全遠征プランを削除する。退会処理で使用する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// ExpenseFilter は支出一覧の絞り込み条件。From/Toはdateに対するISO 8601文字列の範囲。
type ExpenseFilter struct {
	OshiID   string
	EventID  string
	Category model.Category
	From     string
	To       string
	Limit    int
}

// ExpenseRepository は支出データの永続化インターフェース。
type ExpenseRepository interface {
	// List はユーザーの支出をdate降順で返す。
	List(ctx context.Context, userID string, filter ExpenseFilter) ([]*model.Expense, error)

	// Create は支出を作成する。
	Create(ctx context.Context, expense *model.Expense) error

	// DeleteByUserID はユーザーの全支出を削除する。退会処理で使用する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// SettingsRepository はユーザー設定の永続化インターフェース。ユーザーあたり1件。
type SettingsRepository interface {
	// FindByUserID は指定ユーザーの設定を取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.Settings, error)

	// Create は設定を新規作成する。
	Create(ctx context.Context, settings *model.Settings) error

	// Update は設定を上書き更新する。
	Update(ctx context.Context, settings *model.Settings) error

	// DeleteByUserID は指定ユーザーの設定を削除する。退会処理で使用する。
	DeleteByUserID(ctx context.Context, userID string) error
}
