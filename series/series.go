package series

import (
	"sort"
	"strings"
	"time"

	"econdash/dates"
	"econdash/model"
)

// RangeMonths 图表区间对应的月数
var RangeMonths = map[string]int{
	"3M":  3,
	"1Y":  12,
	"3Y":  36,
	"5Y":  60,
	"10Y": 120,
}

// Normalize 解析日期、剔除无法解析的行、按日期升序排序
// 同一日期出现多次时保留最后一个值
func Normalize(raw []model.RawObservation) []model.Observation {
	obs := make([]model.Observation, 0, len(raw))
	for _, r := range raw {
		t, ok := dates.Parse(r.Date)
		if !ok {
			continue
		}
		obs = append(obs, model.Observation{Date: t, Value: r.Value})
	}

	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })

	out := obs[:0]
	for _, o := range obs {
		if n := len(out); n > 0 && out[n-1].Date.Equal(o.Date) {
			out[n-1] = o
			continue
		}
		out = append(out, o)
	}
	return out
}

// FilterRange 按日期区间过滤，两端包含，结束日期按当天 23:59:59.999 处理
// 零值 start/end 表示不限
func FilterRange(raw []model.RawObservation, start, end time.Time) []model.Observation {
	return Slice(Normalize(raw), start, end)
}

// Slice 对已排序序列按区间截取，返回新切片
func Slice(obs []model.Observation, start, end time.Time) []model.Observation {
	var until time.Time
	if !end.IsZero() {
		until = dates.EndOfDay(end)
	}

	out := make([]model.Observation, 0, len(obs))
	for _, o := range obs {
		if !start.IsZero() && o.Date.Before(start) {
			continue
		}
		if !until.IsZero() && o.Date.After(until) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Tail 返回最后 n 个观测值
func Tail(obs []model.Observation, n int) []model.Observation {
	if n <= 0 || n >= len(obs) {
		return model.Clone(obs)
	}
	return model.Clone(obs[len(obs)-n:])
}

// TailRange 按区间标识 (3M/1Y/3Y/5Y/10Y) 截取；未知标识返回 false
func TailRange(obs []model.Observation, key string) ([]model.Observation, bool) {
	n, ok := RangeMonths[strings.ToUpper(strings.TrimSpace(key))]
	if !ok {
		return nil, false
	}
	return Tail(obs, n), true
}

// Placeholder 生成截至 now 所在月份的 months 个月占位数据（数值为 0）
func Placeholder(now time.Time, months int) []model.Observation {
	if months <= 0 {
		return nil
	}
	first := dates.MonthStart(now).AddDate(0, -(months - 1), 0)
	out := make([]model.Observation, 0, months)
	for i := 0; i < months; i++ {
		out = append(out, model.Observation{Date: first.AddDate(0, i, 0)})
	}
	return out
}
