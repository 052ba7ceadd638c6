package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/city-traffic/internal/config"
	"github.com/ukydev/city-traffic/internal/driver/drivertest"
	"github.com/ukydev/city-traffic/internal/models"
)

func TestNewWorld_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.Intensity = cfg.Simulation.Intensity[:12]

	_, err := NewWorld(cfg, &drivertest.Script{})
	assert.Error(t, err)
}

func TestNewWorld_SignalsFromRandom(t *testing.T) {
	r := &drivertest.Script{Ints: []int{5, 1, 7, 0}}
	w, err := NewWorld(config.Default(), r, WithLogger(quietLogger()))
	require.NoError(t, err)

	require.Len(t, w.signals, 20)
	assert.Equal(t, 5, w.signals[0].Timer())
	assert.Equal(t, models.PhaseVerticalGreen, w.signals[0].Phase())
	assert.Equal(t, 7, w.signals[1].Timer())
	assert.Equal(t, models.PhaseHorizontalGreen, w.signals[1].Phase())
	assert.Equal(t, 40, r.IntCalls)
	assert.NotEmpty(t, w.RunID())
}

func TestAdvance_PhaseFlipsAtCycleEnd(t *testing.T) {
	r := &drivertest.Script{DefaultInt: 119, DefaultFloat: 0.99}
	w, err := NewWorld(config.Default(), r, WithLogger(quietLogger()))
	require.NoError(t, err)
	for _, s := range w.Intersections() {
		require.Equal(t, models.PhaseVerticalGreen, s.Phase)
		require.Equal(t, 119, s.PhaseTimer)
	}

	w.Step()

	for _, s := range w.Intersections() {
		assert.Equal(t, models.PhaseHorizontalGreen, s.Phase)
		assert.Zero(t, s.PhaseTimer)
	}
	assert.Equal(t, uint64(1), w.Stats().Tick)
	assert.Equal(t, 6, w.Now().Hour())
	assert.Equal(t, 10, w.Now().Minute())
}

func TestToggleSignal(t *testing.T) {
	w := newTestWorld(t)

	require.NoError(t, w.ToggleSignal(3))
	assert.Equal(t, models.PhaseVerticalGreen, w.Intersections()[3].Phase)
	assert.Equal(t, models.PhaseHorizontalGreen, w.Intersections()[4].Phase)

	assert.ErrorIs(t, w.ToggleSignal(20), ErrUnknownIntersection)
	assert.ErrorIs(t, w.ToggleSignal(-1), ErrUnknownIntersection)
}

func TestSelection(t *testing.T) {
	w := newTestWorld(t)
	a := place(w, models.DirectionRight, 0, 500, 100, 1)
	b := place(w, models.DirectionLeft, 2, 500, 900, 1)

	require.NoError(t, w.SetSelected(a.id))
	require.NoError(t, w.SetSelected(b.id))
	assert.False(t, a.selected)
	assert.True(t, b.selected)

	view, ok := w.Vehicle(b.id)
	require.True(t, ok)
	assert.True(t, view.Selected)

	assert.ErrorIs(t, w.SetSelected(999), ErrUnknownVehicle)
	assert.True(t, b.selected, "a failed selection keeps the current one")

	sel, ok := w.Selected()
	require.True(t, ok)
	assert.Equal(t, b.id, sel.ID)

	w.ClearSelection()
	_, ok = w.Selected()
	assert.False(t, ok)
	for _, v := range w.Vehicles() {
		assert.False(t, v.Selected)
	}
}

func TestVehicleView(t *testing.T) {
	w := newTestWorld(t)
	v := place(w, models.DirectionDown, 1, 750, 300, 0.9)

	view, ok := w.Vehicle(v.id)
	require.True(t, ok)
	assert.Equal(t, models.Point{X: 745, Y: 300}, view.Position)
	assert.Equal(t, models.DirectionDown, view.Direction)
	assert.InDelta(t, 40.0, view.SpeedKmh, 1e-9)
	assert.Equal(t, 40, view.Driver.Age)

	_, ok = w.Vehicle(12345)
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *Vehicle)
	}{
		{"negative speed", func(v *Vehicle) { v.speed = -0.1 }},
		{"above max speed", func(v *Vehicle) { v.speed = v.kin.MaxSpeed + 0.01 }},
		{"lane of the other group", func(v *Vehicle) { v.lane = 2 }},
		{"moving while in accident", func(v *Vehicle) { v.inAccident = true; v.speed = 1 }},
		{"lane change target of the other group", func(v *Vehicle) { v.changingLane = true; v.targetLane = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			v := place(w, models.DirectionRight, 0, 500, 100, 1)
			require.NoError(t, w.Validate())

			tt.mutate(v)

			assert.ErrorIs(t, w.Validate(), ErrInvariant)
		})
	}
}

func TestAdvance_StrictPanicsOnInvariant(t *testing.T) {
	w := newTestWorld(t, func(c *config.Config) { c.Simulation.Strict = true })
	w.rng = script()
	v := place(w, models.DirectionRight, 0, 500, 100, 1)
	v.inAccident = true
	v.accidentTimer = 10

	assert.Panics(t, func() { w.Step() })
}

func TestAdvance_RemovesDepartedVehicles(t *testing.T) {
	w := newTestWorld(t)
	w.rng = script()
	place(w, models.DirectionRight, 1, 500, w.net.Width()+99.5, 1.8)
	stay := place(w, models.DirectionRight, 1, 500, 1800, 1)

	w.Step()
	w.Step()

	require.Len(t, w.vehicles, 1)
	assert.Same(t, stay, w.vehicles[0])
	stats := w.Stats()
	assert.Equal(t, uint64(1), stats.Despawned)
	assert.Equal(t, 1, stats.Active)
}

func TestSnapshot(t *testing.T) {
	w := newTestWorld(t)
	place(w, models.DirectionRight, 0, 500, 100, 1)

	snap := w.Snapshot()

	assert.Equal(t, "test-run", snap.RunID)
	assert.Len(t, snap.Vehicles, 1)
	assert.Len(t, snap.Intersections, 20)
	assert.Empty(t, snap.Accidents)
	assert.Equal(t, 1400, snap.Stats.Capacity)
	assert.Equal(t, w.Now(), snap.SimTime)
}

func runSeeded(t *testing.T, seed int64, ticks int) *World {
	t.Helper()
	cfg := config.Default()
	cfg.Simulation.Seed = seed
	cfg.Simulation.Strict = true
	w, err := NewWorld(cfg, rand.New(rand.NewSource(seed)), WithLogger(quietLogger()), WithRunID("seeded"))
	require.NoError(t, err)
	for i := 0; i < ticks; i++ {
		w.Step()
	}
	return w
}

func TestAdvance_SeededRunKeepsInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("long run")
	}

	w := runSeeded(t, 7, 3000)

	stats := w.Stats()
	assert.Positive(t, stats.Spawned)
	assert.Positive(t, stats.Despawned)
	assert.Equal(t, int(stats.Spawned-stats.Despawned), stats.Active)
	for _, v := range w.vehicles {
		assert.GreaterOrEqual(t, v.speed, 0.0)
		assert.LessOrEqual(t, v.speed, v.kin.MaxSpeed)
		assert.True(t, v.lane.ValidFor(v.dir))
	}
}

func TestAdvance_SeededRunIsReproducible(t *testing.T) {
	a := runSeeded(t, 42, 400)
	b := runSeeded(t, 42, 400)

	assert.Equal(t, a.Snapshot(), b.Snapshot())
}
