package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newthinker/tickertalk/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const holdersPage = `<html><body>
<section><h3>Top Mutual Fund Holders</h3>
<table><thead><tr><th>Holder</th><th>Shares</th><th>Date Reported</th><th>% Out</th><th>Value</th></tr></thead>
<tbody><tr><td>Vanguard Total Stock Market Index Fund</td><td>1</td><td>Sep 30, 2024</td><td>0.01%</td><td>1</td></tr></tbody></table>
</section>
<section><h3>Top Institutional Holders</h3>
<table><thead><tr><th>Holder</th><th>Shares</th><th>Date Reported</th><th>% Out</th><th>Value</th></tr></thead>
<tbody>
<tr><td>Vanguard Group Inc</td><td>1,364,003,520</td><td>Sep 30, 2024</td><td>8.97%</td><td>317,812,820,160</td></tr>
<tr><td>Blackrock Inc.</td><td>1,046,827,931</td><td>Sep 30, 2024</td><td>6.88%</td><td>243,911,000,000</td></tr>
</tbody></table>
</section>
</body></html>`

func TestClient_FetchHolders(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, holdersPage)
	}))
	defer srv.Close()

	y := New(Config{QuotePage: srv.URL})
	holders, err := y.FetchHolders(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "/AAPL/holders", gotPath)
	require.Len(t, holders, 2)
	assert.Equal(t, "Vanguard Group Inc", holders[0].Name)
	assert.Equal(t, int64(1364003520), holders[0].Shares)
	assert.InDelta(t, 8.97, holders[0].PercentOut, 1e-9)
	assert.InDelta(t, 317812820160.0, holders[0].Value, 1)
	assert.Equal(t, time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC), holders[0].DateReported)
}

func TestClient_FetchHolders_NoTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>nothing here</p></body></html>`)
	}))
	defer srv.Close()

	y := New(Config{QuotePage: srv.URL})
	_, err := y.FetchHolders(context.Background(), "AAPL")
	assert.True(t, errors.Is(err, core.ErrUnknownTicker))
}
