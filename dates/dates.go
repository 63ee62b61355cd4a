package dates

import (
	"strconv"
	"strings"
	"time"
)

// Layout 规范日期格式
const Layout = "2006-01-02"

// Parse 解析 MM/YY、MM/YYYY、YYYY-MM-DD 三种格式，YYYY-MM-DD 后可带任意时间部分
// MM/YY 的两位年份一律视为 20xx
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if strings.Contains(s, "/") {
		return parseMonthYear(s)
	}

	// 带时间部分的时间戳只取前 10 位日期
	if strings.Contains(s, "-") && len(s) >= len(Layout) {
		if t, err := time.Parse(Layout, s[:len(Layout)]); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseMonthYear(s string) (time.Time, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return time.Time{}, false
	}

	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}

	ys := strings.TrimSpace(parts[1])
	year, err := strconv.Atoi(ys)
	if err != nil || year < 0 {
		return time.Time{}, false
	}
	switch len(ys) {
	case 2:
		year += 2000
	case 4:
	default:
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}

// Format 输出 YYYY-MM-DD
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Normalize 将任意支持的格式转换为 YYYY-MM-DD，无法解析时原样返回
func Normalize(s string) string {
	t, ok := Parse(s)
	if !ok {
		return s
	}
	return Format(t)
}

// Day 截断到当天零点(UTC)
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay 当天最后一毫秒，用于包含结束日期
func EndOfDay(t time.Time) time.Time {
	return Day(t).Add(24*time.Hour - time.Millisecond)
}

// MonthStart 当月第一天
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
