package llm

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrNoNumber is returned when a model reply carries no numeric token.
var ErrNoNumber = errors.New("no numeric value in response")

var numberRe = regexp.MustCompile(`-?(?:\d+(?:\.\d+)?|\.\d+)`)

// ExtractFirstNumber returns the first floating-point number found in text.
// Thousands separators are not understood: "1,234" yields 1.
func ExtractFirstNumber(text string) (float64, error) {
	m := numberRe.FindString(text)
	if m == "" {
		return 0, ErrNoNumber
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", m, err)
	}
	return v, nil
}
