package model

import (
	"encoding/json"
	"fmt"
	"time"

	"econdash/dates"
)

// RawObservation 数据源返回的原始观测值，日期格式不统一
type RawObservation struct {
	Date  string  `json:"date"`  // 原始日期 (MM/YY, MM/YYYY, YYYY-MM-DD)
	Value float64 `json:"value"` // 指标数值
}

// Observation 规范化后的观测值
type Observation struct {
	Date  time.Time // 报告期首日 (UTC 零点)
	Value float64   // 指标数值
}

type observationJSON struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// MarshalJSON 日期输出为 YYYY-MM-DD
func (o Observation) MarshalJSON() ([]byte, error) {
	return json.Marshal(observationJSON{Date: dates.Format(o.Date), Value: o.Value})
}

// UnmarshalJSON 接受任意 dates.Parse 支持的日期格式
func (o *Observation) UnmarshalJSON(b []byte) error {
	var v observationJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	t, ok := dates.Parse(v.Date)
	if !ok {
		return fmt.Errorf("invalid observation date: %q", v.Date)
	}
	o.Date = t
	o.Value = v.Value
	return nil
}

// Clone 复制观测序列
func Clone(obs []Observation) []Observation {
	if obs == nil {
		return nil
	}
	out := make([]Observation, len(obs))
	copy(out, obs)
	return out
}
