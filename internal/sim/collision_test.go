package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/city-traffic/internal/config"
	"github.com/ukydev/city-traffic/internal/driver/drivertest"
	"github.com/ukydev/city-traffic/internal/models"
)

// ordinaryPairProbability is the collision chance of two ordinary drivers at a
// close gap with the follower at 1.0 and the lead stopped.
func ordinaryPairProbability() float64 {
	return 0.01 * 0.5 * (0.5 + 1.0/3.6) * 0.02
}

func TestCollisionProbability(t *testing.T) {
	w := newTestWorld(t)
	a := place(w, models.DirectionRight, 0, roadY500, 100, 1.0)
	b := place(w, models.DirectionRight, 0, roadY500, 105, 0)

	assert.InDelta(t, ordinaryPairProbability(), w.collisionProbability(a, b, 5), 1e-15)

	t.Run("no base risk beyond close gap", func(t *testing.T) {
		assert.Zero(t, w.collisionProbability(a, b, 7.2))
	})

	t.Run("defects and mood raise risk", func(t *testing.T) {
		a.condition.BadBrakes = true
		b.condition.BadTires = true
		b.driver.Mood = models.MoodAngry
		a.driver.Experience = 2
		defer func() {
			a.condition.BadBrakes = false
			b.condition.BadTires = false
			b.driver.Mood = models.MoodRelaxed
			a.driver.Experience = 22
		}()
		want := ordinaryPairProbability() * 1.2 * 1.1 * 1.05 * 1.1
		assert.InDelta(t, want, w.collisionProbability(a, b, 5), 1e-15)
	})

	t.Run("frozen vehicles never collide", func(t *testing.T) {
		b.inAccident = true
		defer func() { b.inAccident = false }()
		assert.Zero(t, w.collisionProbability(a, b, 1))
	})
}

func TestCollides_AlwaysDraws(t *testing.T) {
	w := newTestWorld(t)
	r := script(0)
	w.rng = r
	a := place(w, models.DirectionRight, 0, roadY500, 100, 1.0)
	b := place(w, models.DirectionRight, 0, roadY500, 110, 0)

	assert.False(t, w.collides(a, b, 10), "zero probability never collides")
	assert.Equal(t, 1, r.FloatCalls)
}

func TestResolveCollision(t *testing.T) {
	var records []models.AccidentRecord
	w := newTestWorld(t)
	w.onAccident = func(r models.AccidentRecord) { records = append(records, r) }
	w.rng = &drivertest.Script{Ints: []int{2}}
	a := place(w, models.DirectionRight, 0, roadY500, 100, 1.0)
	b := place(w, models.DirectionRight, 0, roadY500, 105, 0.4)

	acc := w.resolveCollision(a, b, models.AccidentReasonCollision)

	for _, v := range []*Vehicle{a, b} {
		assert.True(t, v.inAccident)
		assert.Zero(t, v.speed)
		assert.Equal(t, w.cfg.Simulation.AccidentDuration, v.accidentTimer)
	}
	assert.Equal(t, models.Point{X: 102.5, Y: 515}, acc.pos)
	assert.Equal(t, models.SeveritySevere, acc.severity)
	assert.Equal(t, uint64(1), w.Stats().Accidents)

	require.Len(t, records, 1)
	assert.Equal(t, "test-run", records[0].RunID)
	assert.Equal(t, models.AccidentReasonCollision, records[0].Reason)
	require.Len(t, records[0].Vehicles, 2)
	assert.Equal(t, a.id, records[0].Vehicles[0].VehicleID)
	assert.Equal(t, b.id, records[0].Vehicles[1].VehicleID)
	assert.Equal(t, 1.0, records[0].Vehicles[0].Speed, "speed at impact, not after freezing")
	assert.Equal(t, 0.4, records[0].Vehicles[1].Speed)
}

// TestAdvance_RearEndCollision replays a tick in which an ordinary driver
// closes to five pixels behind a stopped car and the collision draw succeeds.
func TestAdvance_RearEndCollision(t *testing.T) {
	var records []models.AccidentRecord
	cfg := config.Default()
	w, err := NewWorld(cfg, &drivertest.Script{},
		WithLogger(quietLogger()),
		WithAccidentHandler(func(r models.AccidentRecord) { records = append(records, r) }))
	require.NoError(t, err)

	follower := place(w, models.DirectionRight, 0, roadY500, 100, 1.0)
	lead := place(w, models.DirectionRight, 0, roadY500, 105, 0)

	// one miss per entry point, then the collision draw
	floats := make([]float64, len(w.entries), len(w.entries)+1)
	for i := range floats {
		floats[i] = 0.99
	}
	floats = append(floats, ordinaryPairProbability()/2)
	w.rng = &drivertest.Script{Floats: floats, DefaultFloat: 0.99}

	w.Step()

	require.Len(t, w.Accidents(), 1)
	assert.True(t, follower.inAccident)
	assert.True(t, lead.inAccident)
	assert.Zero(t, follower.speed)
	assert.Zero(t, lead.speed)
	assert.Equal(t, 100.0, follower.pos.X)
	assert.Equal(t, 105.0, lead.pos.X)
	assert.Len(t, records, 1)

	// the lead was frozen before its own update and has already counted down once
	assert.Equal(t, cfg.Simulation.AccidentDuration, follower.accidentTimer)
	assert.Equal(t, cfg.Simulation.AccidentDuration-1, lead.accidentTimer)

	for i := 1; i < cfg.Simulation.AccidentDuration; i++ {
		w.Step()
	}
	assert.Empty(t, w.Accidents())
	assert.False(t, lead.inAccident)
	assert.True(t, follower.inAccident)

	w.Step()
	assert.False(t, follower.inAccident)
	assert.Equal(t, follower.kin.MaxSpeed*0.5, follower.speed)
	assert.NoError(t, w.Validate())
}

func TestAdvance_CollisionDrawMisses(t *testing.T) {
	w := newTestWorld(t)
	follower := place(w, models.DirectionRight, 0, roadY500, 100, 1.0)
	place(w, models.DirectionRight, 0, roadY500, 105, 0)
	w.rng = script(ordinaryPairProbability())

	require.True(t, w.updateVehicle(follower))

	assert.False(t, follower.inAccident)
	assert.Empty(t, w.accidents)
	assert.InDelta(t, 0.85, follower.speed, 1e-12)
}
