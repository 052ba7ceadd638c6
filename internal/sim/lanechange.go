package sim

import "math"

// tryChangeLane starts a lane change into the paired lane when no vehicle in
// that lane of the same road is within two following distances.
func (w *World) tryChangeLane(v *Vehicle) bool {
	if v.changingLane || v.laneCooldown > 0 {
		return false
	}

	target := v.lane.Pair()
	clearance := w.cfg.Vehicle.FollowDistance * 2
	along := v.along()
	for _, o := range w.vehicles {
		if o == v || o.inAccident || o.turning {
			continue
		}
		if o.dir != v.dir || o.lane != target || o.baseRoad != v.baseRoad {
			continue
		}
		if math.Abs(o.along()-along) < clearance {
			return false
		}
	}

	v.targetLane = target
	v.changingLane = true
	v.laneProgress = 0
	return true
}

// advanceLaneChange moves the vehicle sideways toward its target lane, and
// commits to the new lane once the change is complete.
func (w *World) advanceLaneChange(v *Vehicle) {
	v.laneProgress += w.cfg.Vehicle.LaneChangeStep
	if v.laneProgress >= 1 {
		v.lane = v.targetLane
		v.changingLane = false
		v.laneProgress = 0
		v.laneCooldown = w.cfg.Vehicle.LaneChangeCooldown
		return
	}

	from := w.net.LaneOffset(v.dir, v.lane)
	to := w.net.LaneOffset(v.dir, v.targetLane)
	lateral := v.baseRoad + from + (to-from)*v.laneProgress
	if v.dir.Horizontal() {
		v.pos.Y = lateral
	} else {
		v.pos.X = lateral
	}
}
