package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceSeries_ClosesIsCopy(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s := PriceSeries{
		Ticker: "AAPL",
		Points: []PricePoint{
			{Date: day, Close: 10},
			{Date: day.AddDate(0, 0, 1), Close: 11},
		},
	}

	closes := s.Closes()
	closes[0] = 99

	assert.Equal(t, 10.0, s.Points[0].Close)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, day, s.Dates()[0])
}

func TestFunctionSpec_JSONSchema(t *testing.T) {
	spec := FunctionSpec{
		Name: "calculate_SMA",
		Args: []ArgSpec{
			{Name: "ticker", Type: ArgString, Required: true},
			{Name: "window", Type: ArgInteger, Required: true, Positive: true},
			{Name: "period", Type: ArgInteger, Default: 14},
		},
	}

	schema := spec.JSONSchema()
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"ticker", "window"}, schema["required"])

	props := spec.Properties()
	require.Contains(t, props, "window")
	window := props["window"].(map[string]any)
	assert.Equal(t, "integer", window["type"])
	assert.Equal(t, 1, window["minimum"])

	period := props["period"].(map[string]any)
	assert.Equal(t, 14, period["default"])

	_, ok := spec.Arg("window")
	assert.True(t, ok)
	_, ok = spec.Arg("missing")
	assert.False(t, ok)
}

func TestParseDirective(t *testing.T) {
	d, err := ParseDirective("calculate_SMA", []byte(`{"ticker":"AAPL","window":20}`))
	require.NoError(t, err)
	assert.Equal(t, "calculate_SMA", d.Name)
	assert.Equal(t, "AAPL", d.Arguments["ticker"])
	assert.Equal(t, "20", d.Arguments["window"].(interface{ String() string }).String())

	empty, err := ParseDirective("news", nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Arguments)

	_, err = ParseDirective("news", []byte(`{not json`))
	assert.Error(t, err)
}

func TestResult_Text(t *testing.T) {
	text, err := Scalar(67.3012).Text()
	require.NoError(t, err)
	assert.Equal(t, "67.3", text)

	text, _ = Scalar(150).Text()
	assert.Equal(t, "150", text)

	text, _ = MACDResult{MACD: 1.23456, Signal: 1.0, Histogram: 0.23456}.Text()
	assert.Equal(t, "1.2346,1,0.2346", text)

	text, err = HolderTable{{Name: "Vanguard Group Inc", Shares: 100}}.Text()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, `[{"holder":"Vanguard Group Inc"`))

	text, _ = NewsList(nil).Text()
	assert.Equal(t, "[]", text)

	text, _ = ChartRef{URI: "/tmp/charts/a.png"}.Text()
	assert.Equal(t, "/tmp/charts/a.png", text)
}
