package sim

import (
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/city-traffic/internal/grid"
	"github.com/ukydev/city-traffic/internal/models"
)

// spawnProbability is the per-entry-point chance of a new vehicle this tick.
// It halves once the population reaches the soft cap.
func (w *World) spawnProbability() float64 {
	sc := w.cfg.Simulation
	p := sc.Intensity[w.clock.Hour()]
	if float64(len(w.vehicles)) >= float64(sc.MaxVehicles)*sc.SoftCap {
		p *= 0.5
	}
	return p
}

// spawn samples every entry point once. There is no hard ceiling; the cap
// only dampens the probability.
func (w *World) spawn() int {
	p := w.spawnProbability()
	n := 0
	for _, e := range w.entries {
		if w.rng.Float64() < p {
			w.addVehicle(e, e.Lanes[w.rng.Intn(len(e.Lanes))])
			n++
		}
	}
	return n
}

// addVehicle creates a vehicle at entry e on lane.
func (w *World) addVehicle(e grid.EntryPoint, lane models.Lane) *Vehicle {
	w.nextVehicleID++
	p := w.gen.Generate(w.rng)
	v := &Vehicle{
		id:         w.nextVehicleID,
		dir:        e.Direction,
		lane:       lane,
		baseRoad:   e.BaseRoad,
		driver:     p.Driver,
		condition:  p.Condition,
		kin:        p.Kinematics,
		targetLane: lane,
		color: models.Color{
			R: uint8(180 + w.rng.Intn(76)),
			G: uint8(100 + w.rng.Intn(121)),
			B: uint8(100 + w.rng.Intn(121)),
		},
	}
	v.pos = w.net.LanePosition(e.Direction, lane, e.BaseRoad, e.Along)
	w.vehicles = append(w.vehicles, v)
	w.stats.spawned++

	w.logger.WithFields(log.Fields{
		"vehicle_id": v.id,
		"direction":  v.dir,
		"lane":       v.lane,
		"age":        v.driver.Age,
		"mood":       v.driver.Mood,
	}).Debug("Spawned vehicle")
	return v
}
