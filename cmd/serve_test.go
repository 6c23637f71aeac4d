package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benxu001/NYC-Rent-Map/internal/config"
)

func setTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := cfg
	cfg = &config.Config{
		Data: config.DataConfig{
			OutGeoJSON:    filepath.Join(dir, "rents.geojson"),
			OutTimeseries: filepath.Join(dir, "timeseries.json"),
		},
		Store:  config.StoreConfig{Driver: "sqlite"},
		Server: config.ServerConfig{Port: 8080, RateLimit: 100},
	}
	t.Cleanup(func() { cfg = prev })
	return dir
}

func TestRouter_Health(t *testing.T) {
	setTestConfig(t)
	srv := httptest.NewServer(newRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestRouter_DataNotProcessedYet(t *testing.T) {
	setTestConfig(t)
	srv := httptest.NewServer(newRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/rents.geojson")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_ServesProcessedGeoJSON(t *testing.T) {
	setTestConfig(t)
	require.NoError(t, os.WriteFile(cfg.Data.OutGeoJSON, []byte(`{"type":"FeatureCollection","features":[]}`), 0o644))

	srv := httptest.NewServer(newRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/rents.geojson")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))
}

func TestRouter_RunsDisabled(t *testing.T) {
	setTestConfig(t)
	srv := httptest.NewServer(newRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/runs")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_RunsWithStore(t *testing.T) {
	dir := setTestConfig(t)
	cfg.Store.Path = filepath.Join(dir, "runs.db")

	srv := httptest.NewServer(newRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/runs")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	setTestConfig(t)
	cfg.Server.RateLimit = 1

	srv := httptest.NewServer(newRouter())
	defer srv.Close()

	first, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	first.Body.Close()
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	second.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}
