// Package sim is the traffic simulation core: vehicle agents, collision
// resolution, lane changes, turns and the population lifecycle, driven one
// tick at a time by a World.
//
// Vehicles are updated in sequence against the live population, so a vehicle
// updated later in a tick sees neighbours that have already moved. Spawns
// and removals take effect between ticks.
package sim

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/city-traffic/internal/config"
	"github.com/ukydev/city-traffic/internal/driver"
	"github.com/ukydev/city-traffic/internal/grid"
	"github.com/ukydev/city-traffic/internal/models"
	"github.com/ukydev/city-traffic/internal/signal"
)

type counters struct {
	spawned   uint64
	despawned uint64
	accidents uint64
}

// World owns all mutable simulation state.
type World struct {
	cfg     config.Config
	net     *grid.Network
	gen     *driver.Generator
	rng     driver.Rand
	logger  *log.Entry
	clock   *Clock
	entries []grid.EntryPoint
	runID   string

	signals   []*signal.Controller
	vehicles  []*Vehicle
	accidents []*Accident

	tick           uint64
	nextVehicleID  uint64
	nextAccidentID uint64
	stats          counters

	onAccident func(models.AccidentRecord)
}

// Option customises a World.
type Option func(*World)

// WithLogger sets the logger the world reports accidents and spawns to.
func WithLogger(l *log.Entry) Option {
	return func(w *World) { w.logger = l }
}

// WithRunID tags snapshots and accident records with id instead of a random one.
func WithRunID(id string) Option {
	return func(w *World) { w.runID = id }
}

// WithAccidentHandler registers fn to receive a record for every new accident.
// fn runs synchronously inside the tick.
func WithAccidentHandler(fn func(models.AccidentRecord)) Option {
	return func(w *World) { w.onAccident = fn }
}

// NewWorld builds the road network and its signals. Initial signal phases and
// timers are drawn from rng.
func NewWorld(cfg config.Config, rng driver.Rand, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	net := grid.New(cfg.Grid)
	w := &World{
		cfg:     cfg,
		net:     net,
		gen:     driver.NewGenerator(cfg.Driver, cfg.Vehicle),
		rng:     rng,
		logger:  log.WithField("component", "sim"),
		clock:   NewClock(cfg.Simulation.StartTime),
		entries: net.EntryPoints(),
		runID:   uuid.NewString(),
	}
	for _, o := range opts {
		o(w)
	}

	cycle := cfg.Simulation.CycleLength
	for id, p := range net.Intersections() {
		timer := rng.Intn(cycle)
		phase := models.PhaseHorizontalGreen
		if rng.Intn(2) == 1 {
			phase = models.PhaseVerticalGreen
		}
		w.signals = append(w.signals, signal.New(id, p, phase, timer, cycle, net.StopLineDistance()))
	}
	return w, nil
}

// Step advances one tick with the configured simulated minutes per tick.
func (w *World) Step() {
	w.Advance(w.cfg.Simulation.TimeSpeed)
}

// Advance runs one tick: clock, spawns, signals, vehicles, accident purge.
func (w *World) Advance(elapsed time.Duration) {
	w.tick++
	w.clock.Advance(elapsed)
	w.spawn()

	for _, s := range w.signals {
		s.Advance()
	}

	w.vehicles = lo.Filter(w.vehicles, func(v *Vehicle, _ int) bool {
		if w.updateVehicle(v) {
			return true
		}
		w.stats.despawned++
		w.logger.WithField("vehicle_id", v.id).Debug("Vehicle left the city")
		return false
	})

	w.accidents = lo.Filter(w.accidents, func(a *Accident, _ int) bool {
		return a.countdown()
	})

	if w.cfg.Simulation.Strict {
		if err := w.Validate(); err != nil {
			panic(err)
		}
	}
}

// Validate reports the first vehicle that breaks a state invariant.
func (w *World) Validate() error {
	for _, v := range w.vehicles {
		switch {
		case v.speed < 0 || v.speed > v.kin.MaxSpeed:
			return fmt.Errorf("%w: vehicle %d speed %v outside [0,%v]", ErrInvariant, v.id, v.speed, v.kin.MaxSpeed)
		case !v.dir.IsValid():
			return fmt.Errorf("%w: vehicle %d has direction %q", ErrInvariant, v.id, v.dir)
		case !v.lane.ValidFor(v.dir):
			return fmt.Errorf("%w: vehicle %d lane %d invalid for %s", ErrInvariant, v.id, v.lane, v.dir)
		case v.inAccident && v.speed != 0:
			return fmt.Errorf("%w: vehicle %d moving at %v while in an accident", ErrInvariant, v.id, v.speed)
		case v.changingLane && !v.targetLane.ValidFor(v.dir):
			return fmt.Errorf("%w: vehicle %d changing into lane %d invalid for %s", ErrInvariant, v.id, v.targetLane, v.dir)
		}
	}
	return nil
}

// ToggleSignal flips the phase of intersection id immediately.
func (w *World) ToggleSignal(id int) error {
	if id < 0 || id >= len(w.signals) {
		return fmt.Errorf("%w: %d", ErrUnknownIntersection, id)
	}
	w.signals[id].Toggle()
	w.logger.WithFields(log.Fields{
		"intersection_id": id,
		"phase":           w.signals[id].Phase(),
	}).Info("Signal toggled")
	return nil
}

// SetSelected marks vehicle id as selected and clears every other selection.
func (w *World) SetSelected(id uint64) error {
	if _, ok := w.find(id); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownVehicle, id)
	}
	for _, v := range w.vehicles {
		v.selected = v.id == id
	}
	return nil
}

// ClearSelection deselects every vehicle.
func (w *World) ClearSelection() {
	for _, v := range w.vehicles {
		v.selected = false
	}
}

// Selected returns the view of the selected vehicle, if any.
func (w *World) Selected() (models.VehicleView, bool) {
	v, ok := lo.Find(w.vehicles, func(v *Vehicle) bool { return v.selected })
	if !ok {
		return models.VehicleView{}, false
	}
	return v.view(w.cfg.Vehicle.MaxSpeed, w.cfg.Vehicle.MaxSpeedKmh), true
}

func (w *World) find(id uint64) (*Vehicle, bool) {
	return lo.Find(w.vehicles, func(v *Vehicle) bool { return v.id == id })
}

// Vehicle returns the view of vehicle id.
func (w *World) Vehicle(id uint64) (models.VehicleView, bool) {
	v, ok := w.find(id)
	if !ok {
		return models.VehicleView{}, false
	}
	return v.view(w.cfg.Vehicle.MaxSpeed, w.cfg.Vehicle.MaxSpeedKmh), true
}

// Vehicles returns the views of all active vehicles.
func (w *World) Vehicles() []models.VehicleView {
	return lo.Map(w.vehicles, func(v *Vehicle, _ int) models.VehicleView {
		return v.view(w.cfg.Vehicle.MaxSpeed, w.cfg.Vehicle.MaxSpeedKmh)
	})
}

// Intersections returns the views of all signals.
func (w *World) Intersections() []models.IntersectionView {
	return lo.Map(w.signals, func(s *signal.Controller, _ int) models.IntersectionView {
		return s.View()
	})
}

// Accidents returns the views of all live accidents.
func (w *World) Accidents() []models.AccidentView {
	return lo.Map(w.accidents, func(a *Accident, _ int) models.AccidentView {
		return a.view()
	})
}

// Stats returns the running counters.
func (w *World) Stats() models.Stats {
	return models.Stats{
		Tick:          w.tick,
		Active:        len(w.vehicles),
		Capacity:      w.cfg.Simulation.MaxVehicles,
		Spawned:       w.stats.spawned,
		Despawned:     w.stats.despawned,
		Accidents:     w.stats.accidents,
		LiveAccidents: len(w.accidents),
	}
}

// Snapshot returns the complete visible state of the world.
func (w *World) Snapshot() models.Snapshot {
	return models.Snapshot{
		RunID:         w.runID,
		SimTime:       w.clock.Now(),
		Stats:         w.Stats(),
		Vehicles:      w.Vehicles(),
		Intersections: w.Intersections(),
		Accidents:     w.Accidents(),
	}
}

// Network returns the static road layout.
func (w *World) Network() *grid.Network { return w.net }

// Now returns the simulated time.
func (w *World) Now() time.Time { return w.clock.Now() }

// RunID identifies this run in snapshots and accident records.
func (w *World) RunID() string { return w.runID }
