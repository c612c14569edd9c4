package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/tickertalk/internal/collector/mocks"
	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/dispatch"
	llmmocks "github.com/newthinker/tickertalk/internal/llm/mocks"
	"github.com/newthinker/tickertalk/internal/registry"
	"github.com/newthinker/tickertalk/internal/session"
)

func TestChatLoop(t *testing.T) {
	completer := llmmocks.NewScripted(
		llmmocks.Reply("Hello! Ask me about a stock."),
		llmmocks.Call("get_stock_price", map[string]any{"ticker": "AAPL"}),
		llmmocks.Reply("AAPL last closed at 14."),
	)
	router := dispatch.NewRouter(dispatch.Config{
		Completer: completer,
		Env:       registry.Env{Series: mocks.NewSeriesProvider().With("AAPL", []float64{12, 13, 14})},
	})
	sess := session.New("chat-test", session.Config{Router: router, Completer: completer})

	in := strings.NewReader("hi\n\nprice of AAPL\nexit\nnever read\n")
	var out bytes.Buffer

	err := chatLoop(context.Background(), sess, in, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Hello! Ask me about a stock.")
	assert.Contains(t, text, "AAPL last closed at 14.")
	assert.Equal(t, 0, completer.Remaining())
	assert.Len(t, sess.Messages(), 5)
}

func TestChatLoop_EOF(t *testing.T) {
	sess := session.New("eof", session.Config{Router: dispatch.NewRouter(dispatch.Config{})})
	var out bytes.Buffer

	err := chatLoop(context.Background(), sess, strings.NewReader(""), &out)

	require.NoError(t, err)
	assert.Empty(t, sess.Messages())
}

func TestConsole_ShowImage(t *testing.T) {
	var out bytes.Buffer
	console{out: &out}.ShowImage(core.ChartRef{Ticker: "MSFT", URI: "/data/charts/x/MSFT-1.png"})

	assert.Contains(t, out.String(), "MSFT price chart saved to /data/charts/x/MSFT-1.png")
}

func TestPrintFunctions(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, printFunctions(cmd, registry.Default()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 10)
	assert.True(t, strings.HasPrefix(lines[1], "get_stock_price"))
	assert.Contains(t, out.String(), "ticker,period?")
}

func TestSweepInterval(t *testing.T) {
	assert.Equal(t, 15*time.Minute, sweepInterval(time.Hour))
	assert.Equal(t, time.Second, sweepInterval(2*time.Second))
}
