package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstrumentedRouter(m *Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(m.HTTPMiddleware())
	r.GET("/weather/", func(c *gin.Context) {
		if c.Query("city") == "Nowhere" {
			c.JSON(http.StatusNotFound, gin.H{"error": "City not found or API error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"temperature": 1})
	})
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	return r
}

func TestHTTPMiddleware_CountsByRouteAndStatusClass(t *testing.T) {
	m := NewMetrics("metrics_test")
	r := newInstrumentedRouter(m)

	for _, target := range []string{"/weather/?city=Lviv", "/weather/?city=Nowhere", "/health", "/missing"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/weather/", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/weather/", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", unmatchedRoute, "4xx")))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.WeatherRequestsTotal.WithLabelValues("/weather/")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WeatherErrorsTotal.WithLabelValues("/weather/", "client_error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.WeatherErrorsTotal))
}

func TestInstrumentRoundTripper(t *testing.T) {
	m := NewMetrics("metrics_test")

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(upstream.Close)

	client := &http.Client{Transport: m.InstrumentRoundTripper(http.DefaultTransport)}
	resp, err := client.Get(upstream.URL)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequestsTotal.WithLabelValues("502", "get")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.UpstreamRequestDuration))
}

func TestHandler_ServesRegistry(t *testing.T) {
	m := NewMetrics("metrics_test")
	m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "2xx").Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `metrics_test_http_requests_total{endpoint="/health",method="GET",status_class="2xx"} 1`))
	assert.Contains(t, body, "go_goroutines")
}
