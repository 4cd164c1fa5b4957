//go:build integration

package app_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-aggregator-api/internal/app"
	"github.com/Nazarious-ucu/weather-aggregator-api/internal/config"
	"github.com/Nazarious-ucu/weather-aggregator-api/internal/services/metrics"
)

// Runs against the real OpenWeatherMap API:
//
//	OPENWEATHERMAP_API_KEY=... go test -tags integration ./internal/app/...
func newLiveServer(t *testing.T) *httptest.Server {
	t.Helper()

	if os.Getenv("OPENWEATHERMAP_API_KEY") == "" {
		t.Skip("OPENWEATHERMAP_API_KEY not set")
	}

	cfg, err := config.NewConfig()
	require.NoError(t, err)
	cfg.HTTPLogsPath = filepath.Join(t.TempDir(), "upstream.log")

	container := app.New(*cfg, zerolog.New(zerolog.NewTestWriter(t)), metrics.NewMetrics("integration")).Build()

	srv := httptest.NewServer(container.Srv.Handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestLiveFlow(t *testing.T) {
	srv := newLiveServer(t)

	testCases := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{name: "weather valid city", path: "/weather/?city=London", wantCode: http.StatusOK},
		{name: "air quality valid city", path: "/air-quality/?city=London", wantCode: http.StatusOK},
		{name: "forecast valid city", path: "/weather/forecast/?city=London", wantCode: http.StatusOK},
		{
			name:     "air quality unknown city",
			path:     "/air-quality/?city=Nonexistentville",
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"City not found"}`,
		},
		{
			name:     "uv index unknown city",
			path:     "/uv-index/?city=Nonexistentville",
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"An error occurred while fetching UV index data"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+tc.path, nil)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer func(body io.ReadCloser) {
				assert.NoError(t, body.Close(), "Failed to close response body")
			}(resp.Body)

			assert.Equal(t, tc.wantCode, resp.StatusCode)

			bodyBytes, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "failed reading response body")

			if tc.wantBody != "" {
				assert.JSONEq(t, tc.wantBody, string(bodyBytes))
				return
			}

			var obj map[string]any
			assert.NoError(t, json.Unmarshal(bodyBytes, &obj), "body should be a JSON object")
		})
	}
}
