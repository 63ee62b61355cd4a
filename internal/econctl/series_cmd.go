package econctl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"econdash/dates"
	"econdash/fetcher"
	"econdash/internal/app"
	"econdash/model"
	"econdash/series"
)

type seriesOptions struct {
	indicator string
	rng       string
	start     string
	end       string
	server    string
	out       string
	format    string
}

// seriesPayload mirrors the data field of GET /api/series/:indicator.
type seriesPayload struct {
	Indicator    fetcher.Indicator   `json:"indicator"`
	Observations []model.Observation `json:"observations"`
	Count        int                 `json:"count"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Stale        bool                `json:"stale"`
	Placeholder  bool                `json:"placeholder"`
}

func newSeriesCmd(opts *rootOptions) *cobra.Command {
	so := &seriesOptions{}
	cmd := &cobra.Command{
		Use:   "series",
		Short: "输出指标历史序列（直连数据源，或通过 --server 调用 serve）",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeries(cmd.Context(), opts, so)
		},
	}
	f := cmd.Flags()
	f.StringVar(&so.indicator, "indicator", "", "指标")
	f.StringVar(&so.rng, "range", "", "区间 3M|1Y|3Y|5Y|10Y（优先于 --start/--end）")
	f.StringVar(&so.start, "start", "", "开始日期 YYYY-MM-DD")
	f.StringVar(&so.end, "end", "", "结束日期 YYYY-MM-DD")
	f.StringVar(&so.server, "server", "", "serve 的 HTTP Base URL（如 http://localhost:8787）")
	f.StringVar(&so.out, "out", "", "输出文件路径（默认stdout）")
	f.StringVar(&so.format, "format", "text", "输出格式 text|json")
	_ = cmd.MarkFlagRequired("indicator")
	return cmd
}

func runSeries(ctx context.Context, opts *rootOptions, so *seriesOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if so.format != "text" && so.format != "json" {
		return fmt.Errorf("unknown --format %q", so.format)
	}

	var (
		p   seriesPayload
		err error
	)
	if so.server != "" {
		p, err = fetchSeries(ctx, &http.Client{Timeout: 15 * time.Second}, so)
	} else {
		p, err = loadSeries(ctx, opts, so)
	}
	if err != nil {
		return err
	}

	w, closeOut, err := openOutput(so.out)
	if err != nil {
		return err
	}
	defer closeOut()

	if so.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	switch {
	case p.Placeholder:
		fmt.Fprintln(w, "# 数据源不可用，以下为占位数据")
	case p.Stale:
		fmt.Fprintf(w, "# 数据源不可用，使用缓存数据 (%s)\n", p.UpdatedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "# %s (%s) %d points\n", p.Indicator.Label, p.Indicator.Key, len(p.Observations))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, o := range p.Observations {
		fmt.Fprintf(tw, "%s\t%g\n", dates.Format(o.Date), o.Value)
	}
	return tw.Flush()
}

func loadSeries(ctx context.Context, opts *rootOptions, so *seriesOptions) (seriesPayload, error) {
	cfg, logger, err := opts.load()
	if err != nil {
		return seriesPayload{}, err
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return seriesPayload{}, err
	}
	defer a.Close()

	var res series.Result
	if so.rng != "" {
		res, err = a.Loader.Load(ctx, so.indicator)
		if err != nil {
			return seriesPayload{}, err
		}
		data, ok := series.TailRange(res.Data, so.rng)
		if !ok {
			return seriesPayload{}, fmt.Errorf("unknown --range %q", so.rng)
		}
		res.Data = data
	} else {
		start, end, err := parseBounds(so.start, so.end)
		if err != nil {
			return seriesPayload{}, err
		}
		res, err = a.Loader.LoadRange(ctx, so.indicator, start, end)
		if err != nil {
			return seriesPayload{}, err
		}
	}
	return seriesPayload{
		Indicator:    res.Indicator,
		Observations: res.Data,
		Count:        len(res.Data),
		UpdatedAt:    res.UpdatedAt,
		Stale:        res.Stale,
		Placeholder:  res.Placeholder,
	}, nil
}

func fetchSeries(ctx context.Context, client *http.Client, so *seriesOptions) (seriesPayload, error) {
	q := url.Values{}
	if so.rng != "" {
		q.Set("range", so.rng)
	} else {
		if so.start != "" {
			q.Set("start", so.start)
		}
		if so.end != "" {
			q.Set("end", so.end)
		}
	}
	u := strings.TrimRight(so.server, "/") + "/api/series/" + url.PathEscape(so.indicator)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var resp struct {
		Code int           `json:"code"`
		Data seriesPayload `json:"data"`
	}
	if err := getJSON(ctx, client, u, &resp); err != nil {
		return seriesPayload{}, err
	}
	return resp.Data, nil
}

func parseBounds(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	if startStr != "" {
		t, ok := dates.Parse(startStr)
		if !ok {
			return start, end, fmt.Errorf("invalid --start %q", startStr)
		}
		start = t
	}
	if endStr != "" {
		t, ok := dates.Parse(endStr)
		if !ok {
			return start, end, fmt.Errorf("invalid --end %q", endStr)
		}
		end = t
	}
	return start, end, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("%s: http %d: %s", url, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%s: http %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
