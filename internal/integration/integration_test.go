package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/production-ledger/internal/catalog"
	"github.com/fairyhunter13/production-ledger/internal/config"
	httpapi "github.com/fairyhunter13/production-ledger/internal/http"
	"github.com/fairyhunter13/production-ledger/internal/model"
	"github.com/fairyhunter13/production-ledger/internal/production"
	"github.com/fairyhunter13/production-ledger/internal/store"
)

func newServer(t *testing.T, st store.Backend) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.GinMode = "test"
	app := httpapi.NewApp(cfg,
		catalog.NewService(st, cfg.StoreTimeout),
		production.NewService(st, cfg.StoreTimeout),
		st,
	)
	srv := httptest.NewServer(httpapi.NewRouter(app))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func runCatalogThenProduction(t *testing.T, st store.Backend) {
	srv := newServer(t, st)

	resp := post(t, srv.URL+"/api/products", map[string]any{
		"productName": "Wheat Flour",
		"weights":     []model.WeightVariant{{Value: 25, Unit: "kg"}, {Value: 50, Unit: "kg"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p model.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))

	var total int64
	for i := 1; i <= 10; i++ {
		total += int64(i)
		resp := post(t, srv.URL+"/api/production", model.ProductionEvent{
			ProductID: p.ID,
			Weight:    &p.Weights[0],
			Quantity:  int64(i),
		})
		want := http.StatusOK
		if i == 1 {
			want = http.StatusCreated
		}
		require.Equal(t, want, resp.StatusCode)
	}
	resp = post(t, srv.URL+"/api/production", model.ProductionEvent{ProductID: p.ID, Weight: &p.Weights[1], Quantity: 3})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	lr, err := http.Get(fmt.Sprintf("%s/api/production?productId=%s", srv.URL, p.ID))
	require.NoError(t, err)
	defer lr.Body.Close()
	var recs []model.ProductionRecord
	require.NoError(t, json.NewDecoder(lr.Body).Decode(&recs))
	require.Len(t, recs, 2)
	byValue := map[float64]int64{}
	for _, r := range recs {
		byValue[r.Weight.Value] = r.Quantity
	}
	require.Equal(t, total, byValue[25])
	require.EqualValues(t, 3, byValue[50])
}

func TestIntegration_MemoryBackend(t *testing.T) {
	runCatalogThenProduction(t, store.NewMemory())
}

func TestIntegration_MongoBackend(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx := t.Context()
	db := fmt.Sprintf("ledger_it_%d", time.Now().UnixNano())
	st, err := store.OpenMongo(ctx, store.MongoConfig{URI: uri, Database: db, ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	require.NoError(t, st.EnsureIndexes(ctx))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = st.Drop(ctx)
		_ = st.Close(ctx)
	})
	runCatalogThenProduction(t, st)
}
