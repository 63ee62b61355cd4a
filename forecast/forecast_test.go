package forecast

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"econdash/dates"
	"econdash/llm"
	"econdash/model"
)

func obs(pairs ...any) []model.Observation {
	out := make([]model.Observation, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		t, ok := dates.Parse(pairs[i].(string))
		if !ok {
			panic(pairs[i])
		}
		out = append(out, model.Observation{Date: t, Value: float64(pairs[i+1].(int))})
	}
	return out
}

func day(s string) time.Time {
	t, _ := dates.Parse(s)
	return t
}

func TestTrendForecast(t *testing.T) {
	assert.Equal(t, 130.0, TrendForecast(obs("1/24", 100, "2/24", 110, "3/24", 120)))
	assert.Equal(t, 42.0, TrendForecast(obs("1/24", 42)))
	assert.Equal(t, 0.0, TrendForecast(nil))
	assert.Equal(t, 30.0, TrendForecast(obs("1/24", 10, "2/24", 20)))
	// only the last three values count
	assert.Equal(t, 130.0, TrendForecast(obs("12/23", 0, "1/24", 100, "2/24", 110, "3/24", 120)))
}

func TestContextWindowStrictlyPrior(t *testing.T) {
	h := obs("1/24", 1, "2/24", 2, "3/24", 3, "4/24", 4)

	w := ContextWindow(h, day("3/24"), 12)
	require.Len(t, w, 2)
	assert.Equal(t, 2.0, w[1].Value)

	w = ContextWindow(h, day("2024-05-01"), 2)
	require.Len(t, w, 2)
	assert.Equal(t, 3.0, w[0].Value)

	assert.Empty(t, ContextWindow(h, day("1/24"), 12))
}

type fakeGen struct {
	reply string
	err   error
	seen  string
}

func (g *fakeGen) Name() string { return "fake" }

func (g *fakeGen) Generate(_ context.Context, _, prompt string) (string, error) {
	g.seen = prompt
	return g.reply, g.err
}

func TestRemoteModel(t *testing.T) {
	gen := &fakeGen{reply: "Prediction: 3.7%"}
	r := RemoteModel{Generator: gen, Label: "Inflation Rate (%)"}
	h := obs("1/24", 3, "2/24", 3, "3/24", 4, "4/24", 9)

	v, err := r.Forecast(context.Background(), h, day("4/24"))
	require.NoError(t, err)
	assert.Equal(t, 3.7, v)
	assert.Contains(t, gen.seen, "2024-04-01")
	assert.Contains(t, gen.seen, "Inflation Rate (%)")
	assert.False(t, strings.Contains(gen.seen, `"value": 9`), "target and later points are not sent")

	gen.reply = "I cannot say"
	_, err = r.Forecast(context.Background(), h, day("4/24"))
	assert.True(t, errors.Is(err, llm.ErrNoNumber))

	_, err = RemoteModel{}.Forecast(context.Background(), h, day("4/24"))
	assert.True(t, errors.Is(err, ErrNoGenerator))
}

func TestFallbackUsesTrendOnError(t *testing.T) {
	gen := &fakeGen{err: errors.New("quota exceeded")}
	f := Fallback{Primary: RemoteModel{Generator: gen, Label: "x"}}
	h := obs("1/24", 100, "2/24", 110, "3/24", 120)

	v, src, err := Predict(context.Background(), f, h, day("4/24"))
	require.NoError(t, err)
	assert.Equal(t, 130.0, v)
	assert.Equal(t, SourceTrend, src)

	gen.err = nil
	gen.reply = "125"
	v, src, err = Predict(context.Background(), f, h, day("4/24"))
	require.NoError(t, err)
	assert.Equal(t, 125.0, v)
	assert.Equal(t, "fake", src)
}

func TestPredictPlainForecaster(t *testing.T) {
	v, src, err := Predict(context.Background(), LinearTrend{}, obs("1/24", 5), day("2/24"))
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)
	assert.Equal(t, SourceTrend, src)
}

func TestProvider(t *testing.T) {
	p := NewProvider(nil, nil)
	assert.False(t, p.Remote())
	assert.IsType(t, LinearTrend{}, p.For("GDP"))

	p = NewProvider(&fakeGen{reply: "1"}, nil)
	assert.True(t, p.Remote())
	f := p.For("GDP")
	assert.Equal(t, "fake", f.Name())
}
