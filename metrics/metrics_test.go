package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/bikedash/dashboard"
	"github.com/YuminosukeSato/bikedash/dataset"
)

var (
	_ dataset.Observer   = (*Metrics)(nil)
	_ dashboard.Observer = (*Metrics)(nil)
)

func TestWrapHandler(t *testing.T) {
	m := NewMetrics()
	h := m.WrapHandler("/api/views/{view}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fail") != "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))

	for _, target := range []string{"/api/views/time", "/api/views/time", "/api/views/x?fail=1"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("/api/views/{view}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("/api/views/{view}", "400")))
}

func TestObservers(t *testing.T) {
	m := NewMetrics()
	m.CacheMiss()
	m.CacheHit()
	m.CacheHit()
	m.DatasetLoaded("all_data.csv", 17379)
	m.PageRendered(dashboard.ViewFactors, 10, 5*time.Millisecond)
	m.ChartRendered("heatmap", "svg", nil)
	m.ChartRendered("heatmap", "svg", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheMisses))
	assert.Equal(t, 17379.0, testutil.ToFloat64(m.datasetRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pagesRendered.WithLabelValues("factors")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chartsRendered.WithLabelValues("heatmap", "svg")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.renderErrors.WithLabelValues("heatmap")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics()
	m.CacheHit()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bikedash_dataset_cache_hits_total 1")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheHit()
		m.CacheMiss()
		m.DatasetLoaded("x", 1)
		m.PageRendered(dashboard.ViewTime, 0, 0)
		m.ChartRendered("line", "png", nil)
		rec := httptest.NewRecorder()
		m.WrapHandler("/", http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
