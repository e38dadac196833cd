// Package format は金額・日付の日本語表記フォーマットを提供する。
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 既定の日付・日時・年月レイアウト。
const (
	DateLayout     = "2006年01月02日"
	DateTimeLayout = "2006年01月02日 15:04"
	MonthLayout    = "2006年01月"
)

// Date は日付を指定レイアウトで整形する。layoutが空の場合はDateLayoutを使用する。
func Date(t time.Time, layout string) string {
	if layout == "" {
		layout = DateLayout
	}
	return t.Format(layout)
}

// DateTime は日時を "yyyy年MM月dd日 HH:mm" 形式で整形する。
func DateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// Month は年月を "yyyy年MM月" 形式で整形する。同月内の日付は同一の出力になる。
func Month(t time.Time) string {
	return t.Format(MonthLayout)
}

// Currency は金額を日本円表記（例: ¥1,234,567）で整形する。
// 小数点以下はゼロ方向に切り捨て、負値は "¥-5,000" のように円記号の後に符号を置く。
func Currency(amount float64) string {
	n := int64(amount)
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return "¥" + sign + groupThousands(strconv.FormatInt(n, 10))
}

// groupThousands は数字文字列を3桁ごとにカンマ区切りにする。
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// RelativeTime は基準時刻nowからの経過を相対表記（例: 5分前）で返す。
// 30日を超える場合は日付表記にフォールバックする。
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "たった今"
	case d < time.Hour:
		return fmt.Sprintf("%d分前", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d時間前", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%d日前", int(d.Hours()/24))
	default:
		return Date(t, "")
	}
}
