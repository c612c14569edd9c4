package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchFixture = `{"news":[
{"uuid":"1","title":"Microsoft beats estimates","publisher":"Reuters","link":"https://example.com/a","providerPublishTime":1717200000,"relatedTickers":["MSFT"]},
{"uuid":"2","title":"","publisher":"Blank","link":"https://example.com/b","providerPublishTime":1717200000},
{"uuid":"3","title":"Cloud growth slows","publisher":"Bloomberg","link":"https://example.com/c","providerPublishTime":1717100000}
]}`

func TestClient_GetNews(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("q")
		fmt.Fprint(w, searchFixture)
	}))
	defer srv.Close()

	y := New(Config{SearchURL: srv.URL})
	items, err := y.GetNews(context.Background(), "msft", 5)
	require.NoError(t, err)

	assert.Equal(t, "MSFT", query)
	require.Len(t, items, 2, "items without a title are dropped")
	assert.Equal(t, "Microsoft beats estimates", items[0].Title)
	assert.Equal(t, "Reuters", items[0].Publisher)
	assert.Equal(t, time.Unix(1717200000, 0).UTC(), items[0].PublishedAt)
}

func TestClient_GetNews_Limit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchFixture)
	}))
	defer srv.Close()

	y := New(Config{SearchURL: srv.URL})
	items, err := y.GetNews(context.Background(), "MSFT", 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
