// Package model はドメインモデルを定義する。
package model

import "time"

// Category は支出のカテゴリを表す。
type Category string

const (
	// CategoryTicket はチケット代。
	CategoryTicket Category = "ticket"
	// CategoryGoods はグッズ代。
	CategoryGoods Category = "goods"
	// CategoryTrip は遠征費。
	CategoryTrip Category = "trip"
	// CategoryOther はその他の支出。
	CategoryOther Category = "other"
)

// Categories は全カテゴリの固定順リスト。月次レポートのゼロ埋めに使用する。
var Categories = []Category{CategoryTicket, CategoryGoods, CategoryTrip, CategoryOther}

// ValidCategory はcが定義済みのカテゴリかどうかを返す。
func ValidCategory(c Category) bool {
	switch c {
	case CategoryTicket, CategoryGoods, CategoryTrip, CategoryOther:
		return true
	}
	return false
}

// Expense は推し活の支出を表す。
// Dateは "yyyy-MM-dd" 形式の文字列。Amountは常に正の整数（円）。
type Expense struct {
	ID          string
	UserID      string
	OshiID      string
	EventID     string
	Category    Category
	Amount      int64
	Description string
	Date        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExpenseReport は月次の支出レポートを表す。
// MonthLabelとTotalLabelは画面表示用の日本語表記。
type ExpenseReport struct {
	Month       string
	MonthLabel  string
	TotalAmount int64
	TotalLabel  string
	ByCategory  map[Category]int64
	ByOshi      map[string]OshiAmount
	Expenses    []*Expense
}

// OshiAmount は推し別の支出集計を表す。
// Nameには推しIDをプレースホルダーとして格納し、表示名の解決は呼び出し側が行う。
type OshiAmount struct {
	Name   string
	Amount int64
}
