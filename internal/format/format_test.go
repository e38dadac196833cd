package format

import (
	"testing"
	"time"
)

// --- 金額表記テスト ---

func TestCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "¥0"},
		{100, "¥100"},
		{1000, "¥1,000"},
		{1234567, "¥1,234,567"},
		{1000.99, "¥1,000"},   // 小数点以下はゼロ方向に切り捨て
		{-5000, "¥-5,000"},    // 符号は円記号の後
		{-1000.99, "¥-1,000"}, // 負値もゼロ方向に切り捨て
	}

	for _, tt := range tests {
		if got := Currency(tt.amount); got != tt.want {
			t.Errorf("Currency(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

// --- 日付表記テスト ---

func TestDate_DefaultLayout(t *testing.T) {
	d := time.Date(2026, 4, 5, 10, 30, 0, 0, time.UTC)
	if got := Date(d, ""); got != "2026年04月05日" {
		t.Errorf("Date = %q, want 2026年04月05日", got)
	}
}

func TestDate_CustomLayout(t *testing.T) {
	d := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	if got := Date(d, "2006/01/02"); got != "2026/04/05" {
		t.Errorf("Date = %q, want 2026/04/05", got)
	}
}

func TestDateTime(t *testing.T) {
	d := time.Date(2026, 4, 5, 9, 5, 0, 0, time.UTC)
	if got := DateTime(d); got != "2026年04月05日 09:05" {
		t.Errorf("DateTime = %q, want 2026年04月05日 09:05", got)
	}
}

// TestMonth_SameForAllDaysInMonth は同月内のどの日付でも同一の年月表記になることを検証する。
func TestMonth_SameForAllDaysInMonth(t *testing.T) {
	first := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	mid := time.Date(2026, 4, 15, 23, 59, 0, 0, time.UTC)
	last := time.Date(2026, 4, 30, 12, 0, 0, 0, time.UTC)

	want := "2026年04月"
	for _, d := range []time.Time{first, mid, last} {
		if got := Month(d); got != want {
			t.Errorf("Month(%v) = %q, want %q", d, got, want)
		}
	}
}

// --- 相対時刻表記テスト ---

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"1分未満", now.Add(-30 * time.Second), "たった今"},
		{"分単位", now.Add(-5 * time.Minute), "5分前"},
		{"時間単位", now.Add(-3 * time.Hour), "3時間前"},
		{"日単位", now.Add(-2 * 24 * time.Hour), "2日前"},
		{"30日超は日付表記", now.Add(-40 * 24 * time.Hour), "2026年03月06日"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativeTime(tt.t, now); got != tt.want {
				t.Errorf("RelativeTime = %q, want %q", got, tt.want)
			}
		})
	}
}
