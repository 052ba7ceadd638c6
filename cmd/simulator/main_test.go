package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/city-traffic/internal/config"
)

func batchConfig(seed int64) config.Config {
	cfg := config.Default()
	cfg.Simulation.Seed = seed
	cfg.Simulation.Intensity = make([]float64, 24)
	for i := range cfg.Simulation.Intensity {
		cfg.Simulation.Intensity[i] = 0.05
	}
	return cfg
}

func TestRunBatch(t *testing.T) {
	logger, _ := test.NewNullLogger()

	s, err := runBatch(batchConfig(11), 600, logger.WithField("test", true))
	require.NoError(t, err)

	assert.Equal(t, 600, s.Ticks)
	assert.Equal(t, uint64(600), s.Stats.Tick)
	assert.NotEmpty(t, s.RunID)
	assert.Positive(t, s.Stats.Spawned)
	assert.GreaterOrEqual(t, s.PeakActive, s.Stats.Active)
	assert.True(t, s.EndTime.After(s.StartTime))
	assert.GreaterOrEqual(t, s.MeanSpeedKmh, 0.0)
	assert.Len(t, s.Accidents, int(s.Stats.Accidents))

	total := 0
	for _, n := range s.Severities {
		total += n
	}
	assert.Equal(t, len(s.Accidents), total)
}

func TestRunBatch_Reproducible(t *testing.T) {
	logger, _ := test.NewNullLogger()
	entry := logger.WithField("test", true)

	a, err := runBatch(batchConfig(42), 400, entry)
	require.NoError(t, err)
	b, err := runBatch(batchConfig(42), 400, entry)
	require.NoError(t, err)

	assert.Equal(t, a.Stats, b.Stats)
	assert.Equal(t, a.PeakActive, b.PeakActive)
	assert.InDelta(t, a.MeanSpeedKmh, b.MeanSpeedKmh, 1e-9)
	assert.Equal(t, a.Severities, b.Severities)
}

func TestRunBatch_InvalidConfig(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := batchConfig(1)
	cfg.Simulation.FPS = 0

	_, err := runBatch(cfg, 10, logger.WithField("test", true))
	assert.Error(t, err)
}

func TestTicksFromEnv(t *testing.T) {
	t.Setenv("SIM_TICKS", "")
	n, err := ticksFromEnv()
	require.NoError(t, err)
	assert.Equal(t, defaultTicks, n)

	t.Setenv("SIM_TICKS", "250")
	n, err = ticksFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 250, n)

	for _, bad := range []string{"abc", "0", "-5"} {
		t.Setenv("SIM_TICKS", bad)
		_, err = ticksFromEnv()
		assert.Error(t, err, bad)
	}
}

func TestWriteSummary(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s, err := runBatch(batchConfig(5), 30, logger.WithField("test", true))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeSummary(&buf, s))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, s.RunID, decoded["run_id"])
	assert.EqualValues(t, 30, decoded["ticks"])
	assert.Contains(t, decoded, "stats")
	assert.Contains(t, decoded, "severities")
}
