package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/newthinker/tickertalk/internal/api/handler"
	"github.com/newthinker/tickertalk/internal/api/response"
	"github.com/newthinker/tickertalk/internal/chart"
	"github.com/newthinker/tickertalk/internal/collector/mocks"
	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/dispatch"
	llmmocks "github.com/newthinker/tickertalk/internal/llm/mocks"
	"github.com/newthinker/tickertalk/internal/metrics"
	"github.com/newthinker/tickertalk/internal/registry"
	"github.com/newthinker/tickertalk/internal/session"
	"github.com/newthinker/tickertalk/internal/storage/archive"
)

type fixture struct {
	srv      *Server
	store    *session.Store
	renderer *chart.Renderer
}

func newFixture(t *testing.T, apiKey string, steps ...llmmocks.Step) *fixture {
	t.Helper()

	storage, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	renderer := chart.NewRenderer(storage, chart.Config{}, zap.NewNop())

	reg := registry.Default()
	completer := llmmocks.NewScripted(steps...)
	series := mocks.NewSeriesProvider().With("AAPL", []float64{10, 11, 12, 13, 14})
	m := metrics.NewRegistry()

	router := dispatch.NewRouter(dispatch.Config{
		Registry:  reg,
		Completer: completer,
		Env:       registry.Env{Series: series, Charts: renderer},
		Metrics:   m,
	})
	store := session.NewStore(session.Config{
		Router:    router,
		Completer: completer,
		Metrics:   m,
	}, 10, 0, func(ctx context.Context, id string) error {
		_, err := renderer.Purge(ctx, id)
		return err
	})

	srv, err := NewServer(Config{
		Host:        "localhost",
		Port:        0,
		APIKey:      apiKey,
		MetricsPath: "/metrics",
	}, Dependencies{
		Sessions:  store,
		Functions: reg,
		Charts:    renderer,
		Metrics:   m,
	}, zap.NewNop())
	require.NoError(t, err)

	return &fixture{srv: srv, store: store, renderer: renderer}
}

func (f *fixture) do(method, path, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func (f *fixture) createSession(t *testing.T) string {
	t.Helper()
	w := f.do(http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data handler.SessionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.ID)
	assert.Equal(t, "idle", resp.Data.State)
	return resp.Data.ID
}

func decodeTurn(t *testing.T, w *httptest.ResponseRecorder) handler.TurnResponse {
	t.Helper()
	var resp struct {
		Data handler.TurnResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestServer_NewServerRequiresStore(t *testing.T) {
	_, err := NewServer(Config{}, Dependencies{}, nil)
	assert.Error(t, err)
}

func TestServer_Health(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestServer_APIAuth(t *testing.T) {
	f := newFixture(t, "test-key")

	w := f.do(http.MethodGet, "/api/v1/functions", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodGet, "/api/v1/functions", "", "X-API-Key", "test-key")
	assert.Equal(t, http.StatusOK, w.Code)

	// Health stays open.
	w = f.do(http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_Functions(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(http.MethodGet, "/api/v1/functions", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Functions []core.FunctionSpec `json:"functions"`
			Count     int                 `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 9, resp.Data.Count)
	assert.Equal(t, "get_stock_price", resp.Data.Functions[0].Name)
}

func TestServer_TextTurn(t *testing.T) {
	f := newFixture(t, "",
		llmmocks.Call("calculate_SMA", map[string]any{"ticker": "aapl", "window": 5}),
		llmmocks.Reply("AAPL's 5-day SMA is 12."),
	)
	id := f.createSession(t)

	w := f.do(http.MethodPost, "/api/v1/sessions/"+id+"/messages", `{"input":"SMA of AAPL over 5 days?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	turn := decodeTurn(t, w)
	assert.Equal(t, id, turn.SessionID)
	assert.Nil(t, turn.Error)
	require.Len(t, turn.Outputs, 1)
	assert.Equal(t, "text", turn.Outputs[0].Type)
	assert.Equal(t, "AAPL's 5-day SMA is 12.", turn.Outputs[0].Text)

	w = f.do(http.MethodGet, "/api/v1/sessions/"+id+"/messages", "")
	require.Equal(t, http.StatusOK, w.Code)
	var msgs struct {
		Data struct {
			Messages []core.Message `json:"messages"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msgs))
	require.Len(t, msgs.Data.Messages, 3)
	assert.Equal(t, core.RoleFunction, msgs.Data.Messages[1].Role)
	assert.Equal(t, "12", msgs.Data.Messages[1].Content)
}

func TestServer_ChartTurnAndFetch(t *testing.T) {
	f := newFixture(t, "",
		llmmocks.Call("plot_stock_price", map[string]any{"ticker": "AAPL"}),
	)
	id := f.createSession(t)

	w := f.do(http.MethodPost, "/api/v1/sessions/"+id+"/messages", `{"input":"Plot AAPL"}`)
	require.Equal(t, http.StatusOK, w.Code)

	turn := decodeTurn(t, w)
	require.Len(t, turn.Outputs, 1)
	out := turn.Outputs[0]
	assert.Equal(t, "image", out.Type)
	assert.Equal(t, "AAPL", out.Ticker)
	require.True(t, strings.HasPrefix(out.URL, handler.ChartRoute+id+"/"), out.URL)

	w = f.do(http.MethodGet, out.URL, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestServer_ChartNotFound(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(http.MethodGet, "/api/v1/charts/nobody/AAPL-1.png", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CHART_NOT_FOUND", resp.Error.Code)
}

func TestServer_FailedTurnReportsError(t *testing.T) {
	f := newFixture(t, "",
		llmmocks.Call("get_stock_price", map[string]any{"ticker": "ZZZZ"}),
	)
	id := f.createSession(t)

	w := f.do(http.MethodPost, "/api/v1/sessions/"+id+"/messages", `{"input":"price of ZZZZ"}`)
	require.Equal(t, http.StatusOK, w.Code)

	turn := decodeTurn(t, w)
	require.NotNil(t, turn.Error)
	assert.Equal(t, "UNKNOWN_TICKER", turn.Error.Code)
	require.Len(t, turn.Outputs, 1)
	assert.Equal(t, core.UserMessage(core.ErrUnknownTicker), turn.Outputs[0].Text)
}

func TestServer_BadInput(t *testing.T) {
	f := newFixture(t, "")
	id := f.createSession(t)

	w := f.do(http.MethodPost, "/api/v1/sessions/"+id+"/messages", `{"input":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/v1/sessions/"+id+"/messages", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_UnknownSession(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(http.MethodGet, "/api/v1/sessions/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodPost, "/api/v1/sessions/missing/messages", `{"input":"hi"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodDelete, "/api/v1/sessions/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_DeletePurgesCharts(t *testing.T) {
	f := newFixture(t, "",
		llmmocks.Call("plot_stock_price", map[string]any{"ticker": "AAPL"}),
	)
	id := f.createSession(t)

	w := f.do(http.MethodPost, "/api/v1/sessions/"+id+"/messages", `{"input":"Plot AAPL"}`)
	require.Equal(t, http.StatusOK, w.Code)
	url := decodeTurn(t, w).Outputs[0].URL

	w = f.do(http.MethodDelete, "/api/v1/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, f.store.Len())

	w = f.do(http.MethodGet, "/api/v1/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodGet, url, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Metrics(t *testing.T) {
	f := newFixture(t, "")
	f.do(http.MethodGet, "/api/health", "")

	w := f.do(http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
