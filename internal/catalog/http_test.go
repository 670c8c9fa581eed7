package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"MiniCart/internal/catalog"
	"MiniCart/pkg/kit"
)

func newTS(t *testing.T, store catalog.Store, deps catalog.HTTPDeps) *httptest.Server {
	t.Helper()

	deps.Log = zap.NewNop()
	deps.Service = "api"
	ts := httptest.NewServer(catalog.NewHandler(&catalog.Server{Store: store}, deps))
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestAPI_ListProductsSorted(t *testing.T) {
	ts := newTS(t, catalog.NewMemStore(catalog.DefaultSeed()), catalog.HTTPDeps{})

	resp, raw := get(t, ts.URL+"/products", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []catalog.Product
	require.NoError(t, json.Unmarshal(raw, &products))
	require.Len(t, products, 6)
	for i := 1; i < len(products); i++ {
		assert.Less(t, products[i-1].ID, products[i].ID)
	}
}

func TestAPI_ProductAndStock(t *testing.T) {
	ts := newTS(t, catalog.NewMemStore(catalog.DefaultSeed()), catalog.HTTPDeps{})

	resp, raw := get(t, ts.URL+"/products/3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p catalog.Product
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, int64(3), p.ID)
	assert.Equal(t, "219.9", p.Price.String())

	resp, raw = get(t, ts.URL+"/stock/3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st catalog.Stock
	require.NoError(t, json.Unmarshal(raw, &st))
	assert.Equal(t, catalog.Stock{ID: 3, Amount: 2}, st)
}

func TestAPI_Errors(t *testing.T) {
	ts := newTS(t, catalog.NewMemStore(catalog.DefaultSeed()), catalog.HTTPDeps{})

	cases := []struct {
		path string
		want int
		msg  string
	}{
		{"/products/42", http.StatusNotFound, "not found"},
		{"/stock/42", http.StatusNotFound, "not found"},
		{"/products/abc", http.StatusBadRequest, "invalid id"},
		{"/stock/-1", http.StatusBadRequest, "invalid id"},
	}
	for _, tc := range cases {
		resp, raw := get(t, ts.URL+tc.path, nil)
		assert.Equal(t, tc.want, resp.StatusCode, tc.path)

		var e kit.ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &e), tc.path)
		assert.Equal(t, tc.msg, e.Error, tc.path)
		assert.NotEmpty(t, e.RequestID, tc.path)
	}
}

type downStore struct{ catalog.Store }

func (downStore) Ping(context.Context) error { return errors.New("db down") }

func TestAPI_Readyz(t *testing.T) {
	up := newTS(t, catalog.NewMemStore(catalog.Seed{}), catalog.HTTPDeps{})
	resp, _ := get(t, up.URL+"/readyz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := newTS(t, downStore{catalog.NewMemStore(catalog.Seed{})}, catalog.HTTPDeps{})
	resp, _ = get(t, down.URL+"/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAPI_MetricsRequiresToken(t *testing.T) {
	ts := newTS(t, catalog.NewMemStore(catalog.DefaultSeed()), catalog.HTTPDeps{
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: true,
		MetricsToken:   "tok",
	})

	get(t, ts.URL+"/stock/1", nil)

	resp, _ := get(t, ts.URL+"/metrics", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := get(t, ts.URL+"/metrics", map[string]string{"Authorization": "Bearer tok"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `minicart_http_requests_total{method="GET",path="/stock/{id}",service="api",status="200"} 1`)
}

func TestAPI_RateLimit(t *testing.T) {
	ts := newTS(t, catalog.NewMemStore(catalog.DefaultSeed()), catalog.HTTPDeps{RateLimitPerMin: 2})

	for i := 0; i < 2; i++ {
		resp, _ := get(t, ts.URL+"/healthz", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, _ := get(t, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"products": [{"id": 1, "title": "Shoe", "price": 100, "image": "u"}],
		"stock": [{"id": 1, "amount": 4}]
	}`), 0o600))

	seed, err := catalog.LoadSeed(path)
	require.NoError(t, err)

	store := catalog.NewMemStore(seed)
	p, ok, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Shoe", p.Title)
	assert.Equal(t, "100", p.Price.String())

	st, ok, err := store.Stock(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, st.Amount)

	_, ok, err = store.Stock(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, ok)
}
