package fetcher

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownIndicator 未知指标
var ErrUnknownIndicator = errors.New("unknown indicator")

// Indicator 指标配置：代理接口路径、数值字段名、FRED 序列ID、展示名称
type Indicator struct {
	Key      string `json:"key"`       // 指标标识 (gdp, inflation, ...)
	Endpoint string `json:"endpoint"`  // 代理接口路径
	Field    string `json:"field"`     // 返回数据中的数值字段名
	SeriesID string `json:"series_id"` // FRED 序列ID
	Label    string `json:"label"`     // 展示名称
}

var catalog = map[string]Indicator{
	"gdp": {
		Key:      "gdp",
		Endpoint: "/api/fred-gdp",
		Field:    "gdp",
		SeriesID: "GDP",
		Label:    "GDP (Trillions of 2017 $)",
	},
	"inflation": {
		Key:      "inflation",
		Endpoint: "/api/fred-inflation",
		Field:    "inflation",
		SeriesID: "CPIAUCSL",
		Label:    "Inflation Rate (%)",
	},
	"unemployment": {
		Key:      "unemployment",
		Endpoint: "/api/fred-unemployment",
		Field:    "unemployment",
		SeriesID: "UNRATE",
		Label:    "Unemployment Rate (%)",
	},
	"fed-funds": {
		Key:      "fed-funds",
		Endpoint: "/api/fred-fedfunds",
		Field:    "rate",
		SeriesID: "FEDFUNDS",
		Label:    "Federal Funds Rate (%)",
	},
	"payrolls": {
		Key:      "payrolls",
		Endpoint: "/api/fred-payrolls",
		Field:    "payrolls",
		SeriesID: "PAYNSA",
		Label:    "Payrolls (k)",
	},
	"retail-sales": {
		Key:      "retail-sales",
		Endpoint: "/api/fred-retailsales",
		Field:    "retail",
		SeriesID: "RSXFS",
		Label:    "Retail Sales (M$)",
	},
	"industrial-production": {
		Key:      "industrial-production",
		Endpoint: "/api/fred-industrial",
		Field:    "ip",
		SeriesID: "INDPRO",
		Label:    "Industrial Production",
	},
}

// Lookup 按标识查找指标（大小写不敏感）
func Lookup(key string) (Indicator, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	ind, ok := catalog[k]
	if !ok {
		return Indicator{}, fmt.Errorf("%w: %q", ErrUnknownIndicator, key)
	}
	return ind, nil
}

// Indicators 返回全部指标，按标识排序
func Indicators() []Indicator {
	out := make([]Indicator, 0, len(catalog))
	for _, ind := range catalog {
		out = append(out, ind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Keys 返回全部指标标识
func Keys() []string {
	inds := Indicators()
	keys := make([]string, 0, len(inds))
	for _, ind := range inds {
		keys = append(keys, ind.Key)
	}
	return keys
}
