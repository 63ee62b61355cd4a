package econctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"econdash/backtest"
	"econdash/internal/app"
)

type backtestOptions struct {
	indicator  string
	start      string
	end        string
	days       int
	sampleSize int
	request    string
	out        string
	format     string
}

func newBacktestCmd(opts *rootOptions) *cobra.Command {
	bo := &backtestOptions{}
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "对指标历史数据运行预测回测并输出结果",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBacktest(cmd.Context(), opts, bo)
		},
	}
	f := cmd.Flags()
	f.StringVar(&bo.indicator, "indicator", "", "指标 (gdp, inflation, unemployment, fed-funds, payrolls, retail-sales, industrial-production)")
	f.StringVar(&bo.start, "start", "", "开始日期 YYYY-MM-DD")
	f.StringVar(&bo.end, "end", "", "结束日期 YYYY-MM-DD（默认今天）")
	f.IntVar(&bo.days, "days", 0, "最近 N 个自然日窗口（覆盖 --start）")
	f.IntVar(&bo.sampleSize, "sample-size", 0, "采样点数 1-15（0 使用配置值）")
	f.StringVar(&bo.request, "request", "", "回测请求文件(YAML)，命令行参数优先")
	f.StringVar(&bo.out, "out", "", "输出文件路径（默认stdout）")
	f.StringVar(&bo.format, "format", "text", "输出格式 text|json")
	return cmd
}

func (bo *backtestOptions) build(now time.Time, defaultSample int) (backtest.Request, string, error) {
	var req backtest.Request
	if bo.request != "" {
		r, err := backtest.LoadRequest(bo.request, now)
		if err != nil {
			return backtest.Request{}, "", err
		}
		req = r
	}
	if bo.indicator != "" {
		req.Indicator = bo.indicator
	}
	if bo.start != "" {
		req.Start = bo.start
	}
	if bo.end != "" {
		req.End = bo.end
	}
	if bo.sampleSize > 0 {
		req.SampleSize = bo.sampleSize
	}
	if req.SampleSize == 0 {
		req.SampleSize = defaultSample
	}
	desc := applyDays(&req, bo.days, now)

	if req.Indicator == "" {
		return backtest.Request{}, "", errors.New("--indicator is required")
	}
	if req.Start == "" {
		return backtest.Request{}, "", errors.New("--start or --days is required")
	}
	if req.End == "" {
		req.End = now.Format("2006-01-02")
	}
	return req, desc, nil
}

func runBacktest(ctx context.Context, opts *rootOptions, bo *backtestOptions) error {
	if bo.format != "text" && bo.format != "json" {
		return fmt.Errorf("unknown --format %q", bo.format)
	}
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}

	req, desc, err := bo.build(time.Now(), cfg.SampleSize)
	if err != nil {
		return err
	}
	// validate before opening caches or dialing anything
	if _, _, _, err := backtest.Validate(req); err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if desc != "" {
		fmt.Fprintln(os.Stderr, desc)
	}
	progress := func(done, total int) {
		fmt.Fprintf(os.Stderr, "[BACKTEST] %d/%d\n", done, total)
	}

	run, runErr := a.Backtests.RunIndicator(ctx, req, progress)
	if run == nil {
		return runErr
	}

	w, closeOut, err := openOutput(bo.out)
	if err != nil {
		return err
	}
	defer closeOut()

	if bo.format == "json" {
		err = backtest.WriteRunJSON(w, run)
	} else {
		err = backtest.WriteRunText(w, run)
	}
	if err != nil {
		return err
	}
	return runErr
}
