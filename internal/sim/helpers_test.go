package sim

import (
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/city-traffic/internal/config"
	"github.com/ukydev/city-traffic/internal/driver/drivertest"
	"github.com/ukydev/city-traffic/internal/models"
	"github.com/ukydev/city-traffic/internal/signal"
)

func quietLogger() *log.Entry {
	l := log.New()
	l.SetOutput(io.Discard)
	return log.NewEntry(l)
}

// newTestWorld builds a world whose signals all start horizontal green with
// a zero timer.
func newTestWorld(t *testing.T, mutate ...func(*config.Config)) *World {
	t.Helper()
	cfg := config.Default()
	for _, m := range mutate {
		m(&cfg)
	}
	w, err := NewWorld(cfg, &drivertest.Script{}, WithLogger(quietLogger()), WithRunID("test-run"))
	require.NoError(t, err)
	return w
}

func ordinaryDriver() models.DriverProfile {
	return models.DriverProfile{
		Age:         40,
		Experience:  22,
		Mood:        models.MoodRelaxed,
		Aggression:  0.5,
		Attention:   1.0,
		Reaction:    1.0,
		SpeedFactor: 1.0,
	}
}

// place adds a vehicle with an ordinary driver and a healthy car.
func place(w *World, dir models.Direction, lane models.Lane, baseRoad, along, speed float64) *Vehicle {
	w.nextVehicleID++
	d := ordinaryDriver()
	c := models.VehicleCondition{Age: 5, EnginePower: 1.0}
	v := &Vehicle{
		id:         w.nextVehicleID,
		dir:        dir,
		lane:       lane,
		baseRoad:   baseRoad,
		speed:      speed,
		driver:     d,
		condition:  c,
		kin:        w.gen.Kinematics(d, c),
		targetLane: lane,
	}
	v.pos = w.net.LanePosition(dir, lane, baseRoad, along)
	w.vehicles = append(w.vehicles, v)
	return v
}

// setPhase replaces the signal at id with one in phase.
func setPhase(w *World, id int, phase models.Phase, timer int) *signal.Controller {
	old := w.signals[id]
	c := signal.New(id, old.Position(), phase, timer, old.CycleLength(), w.net.StopLineDistance())
	w.signals[id] = c
	return c
}

func script(floats ...float64) *drivertest.Script {
	return &drivertest.Script{Floats: floats, DefaultFloat: 0.99}
}
