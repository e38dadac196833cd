// Package model はドメインモデルを定義する。
package model

import "time"

// Event は推しに関連するイベントを表す。
// StartDate/EndDateはエージェントバックエンドとやり取りするISO 8601形式の文字列。
// IsRegisteredは通常フローではfalse→trueの一方向にのみ遷移する。
type Event struct {
	ID           string
	UserID       string
	OshiID       string
	Title        string
	Description  string
	StartDate    string
	EndDate      string
	Location     string
	URL          string
	IsRegistered bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TripPlan はイベントへの遠征プランを表す。
// (UserID, EventID)あたり最大1件。一意制約ではなく作成前クエリで保証する。
type TripPlan struct {
	ID                        string
	UserID                    string
	EventID                   string
	Destination               string
	DepartureDate             string
	ReturnDate                string
	TransportationSuggestions []string
	AccommodationSuggestions  []string
	EstimatedBudget           int64
	Notes                     string
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}
