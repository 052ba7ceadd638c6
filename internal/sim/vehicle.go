package sim

import (
	"math"

	"github.com/ukydev/city-traffic/internal/driver"
	"github.com/ukydev/city-traffic/internal/grid"
	"github.com/ukydev/city-traffic/internal/models"
	"github.com/ukydev/city-traffic/internal/signal"
)

// Vehicle is one car agent. It is owned and mutated only by its World.
type Vehicle struct {
	id       uint64
	pos      models.Point
	dir      models.Direction
	lane     models.Lane
	baseRoad float64
	speed    float64
	color    models.Color

	driver    models.DriverProfile
	condition models.VehicleCondition
	kin       driver.Kinematics

	turning        bool
	turn           models.TurnDecision
	passedStopLine bool

	changingLane bool
	laneProgress float64
	targetLane   models.Lane
	laneCooldown int

	inAccident    bool
	accidentTimer int

	selected bool
}

func (v *Vehicle) ID() uint64 { return v.id }
func (v *Vehicle) Position() models.Point { return v.pos }
func (v *Vehicle) Direction() models.Direction { return v.dir }
func (v *Vehicle) Lane() models.Lane { return v.lane }
func (v *Vehicle) BaseRoad() float64 { return v.baseRoad }
func (v *Vehicle) Speed() float64 { return v.speed }
func (v *Vehicle) MaxSpeed() float64 { return v.kin.MaxSpeed }
func (v *Vehicle) InAccident() bool { return v.inAccident }

func (v *Vehicle) along() float64 {
	return grid.Along(v.dir, v.pos)
}

// snap puts the vehicle back on the centre of its lane.
func (v *Vehicle) snap(n *grid.Network) {
	v.pos = n.LanePosition(v.dir, v.lane, v.baseRoad, v.along())
}

func (v *Vehicle) safeFollowDistance(base float64) float64 {
	return base * (1.0 + (1.0-v.driver.Attention)*0.5)
}

func (v *Vehicle) view(maxSpeed, maxKmh float64) models.VehicleView {
	return models.VehicleView{
		ID:         v.id,
		Position:   v.pos,
		Direction:  v.dir,
		Lane:       v.lane,
		Speed:      v.speed,
		SpeedKmh:   v.speed / maxSpeed * maxKmh,
		Color:      v.color,
		Selected:   v.selected,
		InAccident: v.inAccident,
		Blinking:   v.inAccident,
		Turning:    v.turning,
		Changing:   v.changingLane,
		Driver:     v.driver,
		Condition:  v.condition,
	}
}

// updateVehicle runs one tick of the agent state machine. It returns false
// when the vehicle has left the canvas and must be removed.
func (w *World) updateVehicle(v *Vehicle) bool {
	vc := w.cfg.Vehicle

	if v.inAccident {
		v.accidentTimer--
		if v.accidentTimer <= 0 {
			v.accidentTimer = 0
			v.inAccident = false
			v.speed = v.kin.MaxSpeed * 0.5
		}
		return true
	}

	// Turns are a discrete transition and never outlive the tick that started them.
	if v.turning {
		v.turning = false
		return true
	}

	if v.changingLane {
		w.advanceLaneChange(v)
	} else {
		v.snap(w.net)
	}

	if v.laneCooldown > 0 {
		v.laneCooldown--
	}

	if w.net.OutOfBounds(v.pos) {
		return false
	}

	next, dist, hasNext := w.nextIntersection(v)
	if hasNext && !v.passedStopLine && next.DistanceToStopLine(v.dir, v.along()) < 0 {
		v.passedStopLine = true
	}

	lead, gap, hasLead := w.leadVehicle(v)
	if hasLead && gap < vc.CarSize && w.collides(v, lead, gap) {
		w.resolveCollision(v, lead, models.AccidentReasonCollision)
		return true
	}

	lightOK := true
	if hasNext {
		lightOK = next.IsGreenFor(v.dir)
	}

	brake := false
	safe := v.safeFollowDistance(vc.FollowDistance)
	if hasLead && gap < safe {
		brake = true
		if !v.changingLane && v.laneCooldown == 0 && w.rng.Float64() < vc.LaneChangeRate*v.driver.Aggression {
			w.tryChangeLane(v)
		}
	}
	if hasNext && dist < w.net.StopLineDistance()*vc.RedLightZone && !lightOK && !v.passedStopLine {
		brake = true
		if dist < vc.HardStopDistance {
			v.speed = 0
		}
	}
	if hasLead && lead.speed == 0 && gap < safe*1.2 {
		brake = true
	}

	if brake {
		v.speed = math.Max(0, v.speed-v.kin.Deceleration*v.driver.Reaction)
	} else {
		v.speed = math.Min(v.kin.MaxSpeed, v.speed+v.kin.Acceleration)
	}

	if v.speed > 0 {
		if v.dir.Horizontal() {
			v.pos.X += v.speed * v.dir.Sign()
		} else {
			v.pos.Y += v.speed * v.dir.Sign()
		}
	}

	if !v.turning && !v.changingLane {
		v.snap(w.net)
	}

	if hasNext && dist < vc.PreTurnDistance && v.speed > vc.MovingSpeed && lightOK &&
		v.turn == models.TurnNone && !v.passedStopLine {
		w.decideTurn(v)
	}

	if v.turn != models.TurnNone && !v.turning && hasNext && dist < vc.TurnDistance &&
		lightOK && v.speed > vc.MovingSpeed {
		w.executeTurn(v, next)
	}

	return true
}

// nextIntersection finds the closest intersection on the vehicle's road whose
// stop line is still ahead. dist is the distance to that stop line.
func (w *World) nextIntersection(v *Vehicle) (*signal.Controller, float64, bool) {
	var best *signal.Controller
	bestDist := math.Inf(1)
	along := v.along()
	for _, c := range w.signals {
		if math.Abs(grid.Lateral(v.dir, c.Position())-v.baseRoad) >= w.net.RoadTolerance() {
			continue
		}
		d := c.DistanceToStopLine(v.dir, along)
		if d > 0 && d < bestDist {
			best, bestDist = c, d
		}
	}
	if best == nil {
		return nil, 0, false
	}
	return best, bestDist, true
}

// leadVehicle finds the nearest vehicle ahead on the same road, direction and
// lane. Turning vehicles and vehicles in an accident are not considered.
func (w *World) leadVehicle(v *Vehicle) (*Vehicle, float64, bool) {
	var lead *Vehicle
	best := math.Inf(1)
	along := v.along()
	for _, o := range w.vehicles {
		if o == v || o.turning || o.inAccident {
			continue
		}
		if o.dir != v.dir || o.lane != v.lane || o.baseRoad != v.baseRoad {
			continue
		}
		d := (o.along() - along) * v.dir.Sign()
		if d > 0 && d < best {
			lead, best = o, d
		}
	}
	if lead == nil {
		return nil, 0, false
	}
	return lead, best, true
}
