package backtest

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func WriteRunJSON(w io.Writer, run *Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

// WriteRunText prints a per-point table followed by the metrics, with
// English digit grouping for large indicators such as payrolls.
func WriteRunText(w io.Writer, run *Run) error {
	p := message.NewPrinter(language.English)

	if _, err := p.Fprintf(w, "%s (%s) %s..%s  forecaster=%s\n\n",
		run.Label, run.Indicator, run.Start, run.End, run.Forecaster); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "date\tactual\tpredicted\terror\terror %\tsource\t")
	for _, r := range run.Results {
		p.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t\n",
			r.Date, round2(r.Actual), round2(r.Predicted), round2(r.Error), round2(r.ErrorPercent), r.Source)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	m := run.Metrics
	_, err := p.Fprintf(w, "\nMAE %.2f  MAPE %.2f%%  RMSE %.2f  R² %.4f  points %d  fallbacks %d\n",
		m.MAE, m.MAPE, m.RMSE, m.RSquared, len(run.Results), run.Fallbacks)
	if err == nil && run.Cancelled {
		_, err = fmt.Fprintln(w, "run was cancelled before completion")
	}
	return err
}
