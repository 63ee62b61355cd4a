package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"econdash/model"
)

// ProxyFetcher 统计数据代理拉取器
// 每个指标一个接口，返回 [{"date": "...", "<field>": n}, ...]
type ProxyFetcher struct {
	baseURL string
	client  *http.Client
}

// NewProxyFetcher 创建代理拉取器
func NewProxyFetcher(baseURL string, timeout time.Duration) *ProxyFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return NewProxyFetcherWithClient(baseURL, &http.Client{Timeout: timeout})
}

// NewProxyFetcherWithClient 使用自定义 http.Client 创建拉取器
func NewProxyFetcherWithClient(baseURL string, client *http.Client) *ProxyFetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &ProxyFetcher{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  client,
	}
}

// Fetch 拉取单个指标的全部历史数据
func (f *ProxyFetcher) Fetch(ctx context.Context, ind Indicator) ([]model.RawObservation, error) {
	url := f.baseURL + ind.Endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求 %s 失败: %w", ind.Key, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(decodeBody(resp))
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s http %d: %s", ind.Key, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return parseRows(body, ind.Field)
}

// decodeBody 按 Content-Type 声明的字符集转为 UTF-8
// 未声明或无法识别的字符集按 UTF-8 处理
func decodeBody(resp *http.Response) io.Reader {
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return resp.Body
	}
	cs := strings.ToLower(strings.TrimSpace(params["charset"]))
	if cs == "" || cs == "utf-8" || cs == "utf8" {
		return resp.Body
	}
	enc, err := htmlindex.Get(cs)
	if err != nil {
		return resp.Body
	}
	return transform.NewReader(resp.Body, enc.NewDecoder())
}

// parseRows 解析代理返回的数组
// 缺少日期或数值为空的行直接跳过
func parseRows(data []byte, field string) ([]model.RawObservation, error) {
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("解析数据失败: %w", err)
	}

	out := make([]model.RawObservation, 0, len(rows))
	for _, row := range rows {
		var date string
		if raw, ok := row["date"]; !ok || json.Unmarshal(raw, &date) != nil || date == "" {
			continue
		}

		raw, ok := row[field]
		if !ok {
			continue
		}
		v, ok := parseValue(raw)
		if !ok {
			continue
		}

		out = append(out, model.RawObservation{Date: date, Value: v})
	}

	return out, nil
}

// parseValue 数值可能是数字、数字字符串或 null
func parseValue(raw json.RawMessage) (float64, bool) {
	if t := strings.TrimSpace(string(raw)); t == "" || t == "null" {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
