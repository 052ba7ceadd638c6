package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/city-traffic/internal/config"
	"github.com/ukydev/city-traffic/internal/models"
)

func TestConfigureLogging(t *testing.T) {
	defer configureLogging("info", "text")

	configureLogging("debug", "json")
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	configureLogging("nonsense", "")
	assert.Equal(t, log.InfoLevel, log.GetLevel())
	assert.IsType(t, &log.TextFormatter{}, log.StandardLogger().Formatter)
}

func TestNewApp_WithoutSinks(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.Seed = 3

	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.close()

	for i := 0; i < 5; i++ {
		a.runner.Tick()
	}

	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, a.runID, snap.RunID)
	assert.Equal(t, uint64(5), snap.Stats.Tick)

	w = httptest.NewRecorder()
	a.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/accidents/history", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "no journal without MONGO_URI")
}

func TestNewApp_BadMongoURI(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MongoURI = "mongodb://bad:uri"

	_, err := newApp(context.Background(), cfg)
	assert.ErrorContains(t, err, "MongoDB")
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.CycleLength = 0

	_, err := newApp(context.Background(), cfg)
	assert.Error(t, err)
}
