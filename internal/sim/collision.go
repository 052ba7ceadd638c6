package sim

import (
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/city-traffic/internal/models"
)

// Accident is a live collision between two vehicles.
type Accident struct {
	id       uint64
	pos      models.Point
	vehicles [2]*Vehicle
	// impact holds each vehicle's speed at the moment of the collision.
	impact   [2]float64
	reason   string
	severity models.Severity
	timer    int
	duration int
}

// countdown ticks the accident timer and reports whether it is still alive.
func (a *Accident) countdown() bool {
	a.timer--
	return a.timer > 0
}

func (a *Accident) view() models.AccidentView {
	return models.AccidentView{
		ID:       a.id,
		Position: a.pos,
		Vehicles: []uint64{a.vehicles[0].id, a.vehicles[1].id},
		Reason:   a.reason,
		Severity: a.severity,
		Timer:    a.timer,
		Duration: a.duration,
	}
}

// collisionProbability is the chance that follower a strikes lead b at the given gap.
func (w *World) collisionProbability(a, b *Vehicle, gap float64) float64 {
	if a.inAccident || b.inAccident {
		return 0
	}
	sc := w.cfg.Simulation

	base := 0.0
	if gap < w.cfg.Vehicle.FollowDistance*0.3 {
		base = sc.CollisionBase
	}

	risk := 1.5 - math.Min(a.driver.Attention, b.driver.Attention)
	if a.condition.BadBrakes || b.condition.BadBrakes {
		risk *= 1.2
	}
	if a.condition.BadTires || b.condition.BadTires {
		risk *= 1.1
	}
	risk *= 0.5 + (a.speed+b.speed)/(w.cfg.Vehicle.MaxSpeed*2)
	if a.driver.Experience < 3 || b.driver.Experience < 3 {
		risk *= 1.05
	}
	if a.driver.Mood == models.MoodAngry || b.driver.Mood == models.MoodAngry {
		risk *= 1.1
	}

	return base * risk * sc.CollisionDampener
}

// collides draws once against the collision probability. The draw is made
// even when the probability is zero so the random stream does not depend on
// the outcome.
func (w *World) collides(a, b *Vehicle, gap float64) bool {
	p := w.collisionProbability(a, b, gap)
	return w.rng.Float64() < p
}

// resolveCollision freezes both vehicles and records the accident.
func (w *World) resolveCollision(a, b *Vehicle, reason string) *Accident {
	d := w.cfg.Simulation.AccidentDuration
	impact := [2]float64{a.speed, b.speed}
	for _, v := range []*Vehicle{a, b} {
		v.inAccident = true
		v.accidentTimer = d
		v.speed = 0
	}

	w.nextAccidentID++
	acc := &Accident{
		id:       w.nextAccidentID,
		pos:      a.pos.Midpoint(b.pos),
		vehicles: [2]*Vehicle{a, b},
		impact:   impact,
		reason:   reason,
		severity: models.Severities[w.rng.Intn(len(models.Severities))],
		timer:    d,
		duration: d,
	}
	w.accidents = append(w.accidents, acc)
	w.stats.accidents++

	w.logger.WithFields(log.Fields{
		"accident_id": acc.id,
		"vehicles":    []uint64{a.id, b.id},
		"severity":    acc.severity,
		"x":           acc.pos.X,
		"y":           acc.pos.Y,
		"sim_time":    w.clock.Now().Format("15:04"),
	}).Info("Accident")

	if w.onAccident != nil {
		w.onAccident(w.record(acc))
	}
	return acc
}

func (w *World) record(acc *Accident) models.AccidentRecord {
	parties := make([]models.AccidentParty, 0, len(acc.vehicles))
	for i, v := range acc.vehicles {
		parties = append(parties, models.AccidentParty{
			VehicleID: v.id,
			Direction: v.dir,
			Lane:      v.lane,
			Speed:     acc.impact[i],
			Driver:    v.driver,
			Condition: v.condition,
		})
	}
	return models.AccidentRecord{
		RunID:      w.runID,
		AccidentID: acc.id,
		Tick:       w.tick,
		SimTime:    w.clock.Now(),
		Location:   acc.pos,
		Reason:     acc.reason,
		Severity:   acc.severity,
		Vehicles:   parties,
		CreatedAt:  time.Now(),
	}
}
