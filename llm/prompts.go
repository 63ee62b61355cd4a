package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"econdash/model"
)

func SystemForecast() string {
	return strings.TrimSpace(`
You are an AI Economist Assistant. You forecast a single value of a macroeconomic time series.
Output MUST be one number and nothing else. No units, no explanation, no Markdown.
`)
}

// ForecastPrompt builds the user prompt for a one-step forecast of label at
// target, given the observations that precede it.
func ForecastPrompt(label, target string, history []model.Observation) string {
	ctx, err := json.MarshalIndent(history, "", "  ")
	if err != nil || len(history) == 0 {
		ctx = []byte("[]")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the historical %s data provided, predict the value for %s.\n\n", label, target)
	fmt.Fprintf(&sb, "Historical Data (last %d observations before %s):\n", len(history), target)
	sb.Write(ctx)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Provide ONLY a numeric prediction value for %s. Do not include any explanation, text, or formatting. Just the number.\n\n", target)
	fmt.Fprintf(&sb, "Prediction for %s:", target)
	return sb.String()
}
