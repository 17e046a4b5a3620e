package envdata

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-claims-analysis/internal/observability"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

const snapshotJSON = `{
	"satellite": {"indices": {"ndvi": 0.62, "moisture": 0.35, "nbr": 0.5}},
	"weather": {
		"current": {"temperature": 31, "humidity": 70, "windSpeed": 22},
		"forecast": {"precipitationRisk": 0.6, "stormProbability": 0.4},
		"historical": {"extremeEvents": ["hurricane_2021"], "avgPrecipitation": 110, "avgTemperature": 24}
	}
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, testToken, 5*time.Second, discardLogger(), observability.NewMetricsForTesting())
}

func TestClient_Snapshot_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/snapshot", r.URL.Path)
		assert.Equal(t, "29.760400", r.URL.Query().Get("lat"))
		assert.Equal(t, "-95.369800", r.URL.Query().Get("lon"))
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(snapshotJSON))
	}))
	defer srv.Close()

	snap, err := testClient(srv.URL+"/").Snapshot(context.Background(), 29.7604, -95.3698)
	require.NoError(t, err)

	require.NotNil(t, snap.Satellite.Indices.NDVI)
	assert.Equal(t, 0.62, *snap.Satellite.Indices.NDVI)
	assert.Equal(t, 22.0, *snap.Weather.Current.WindSpeed)
	assert.Equal(t, 0.4, *snap.Weather.Forecast.StormProbability)
	assert.Equal(t, []string{"hurricane_2021"}, snap.Weather.Historical.ExtremeEvents)
}

func TestClient_Snapshot_NoTokenHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, discardLogger(), observability.NewMetricsForTesting())
	_, err := c.Snapshot(context.Background(), 1, 2)
	require.NoError(t, err)
}

func TestClient_Snapshot_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Snapshot(context.Background(), 30, -97)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestClient_Snapshot_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Snapshot(context.Background(), 30, -97)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_Snapshot_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testToken, 50*time.Millisecond, discardLogger(), observability.NewMetricsForTesting())
	_, err := c.Snapshot(context.Background(), 30, -97)
	require.Error(t, err)
}

func TestClient_Snapshot_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).Snapshot(ctx, 30, -97)
	require.Error(t, err)
}
