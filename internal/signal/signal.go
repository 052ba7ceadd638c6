// Package signal implements the two-phase traffic light at an intersection.
package signal

import "github.com/ukydev/city-traffic/internal/models"

// Controller owns the phase and phase timer of one intersection.
type Controller struct {
	id       int
	pos      models.Point
	phase    models.Phase
	timer    int
	cycle    int
	stopDist float64
}

// New returns a controller at pos starting in phase with timer ticks already elapsed.
func New(id int, pos models.Point, phase models.Phase, timer, cycle int, stopDist float64) *Controller {
	return &Controller{
		id:       id,
		pos:      pos,
		phase:    phase,
		timer:    timer,
		cycle:    cycle,
		stopDist: stopDist,
	}
}

func (c *Controller) ID() int { return c.id }
func (c *Controller) Position() models.Point { return c.pos }
func (c *Controller) Phase() models.Phase { return c.phase }
func (c *Controller) Timer() int { return c.timer }
func (c *Controller) CycleLength() int { return c.cycle }

// Advance moves the phase timer one tick and flips the phase when the cycle completes.
func (c *Controller) Advance() {
	c.timer++
	if c.timer >= c.cycle {
		c.timer = 0
		c.phase = c.phase.Flip()
	}
}

// IsGreenFor reports whether traffic travelling in dir may proceed.
func (c *Controller) IsGreenFor(dir models.Direction) bool {
	if dir.Horizontal() {
		return c.phase == models.PhaseHorizontalGreen
	}
	return c.phase == models.PhaseVerticalGreen
}

// Toggle is the operator override: flip the phase now and restart the cycle.
func (c *Controller) Toggle() {
	c.phase = c.phase.Flip()
	c.timer = 0
}

// StopLine returns the travel-axis coordinate where traffic in dir must halt.
func (c *Controller) StopLine(dir models.Direction) float64 {
	switch dir {
	case models.DirectionRight:
		return c.pos.X - c.stopDist
	case models.DirectionLeft:
		return c.pos.X + c.stopDist
	case models.DirectionDown:
		return c.pos.Y - c.stopDist
	case models.DirectionUp:
		return c.pos.Y + c.stopDist
	default:
		return 0
	}
}

// DistanceToStopLine is the signed distance along dir from coordinate along to
// the stop line; positive while the line is still ahead.
func (c *Controller) DistanceToStopLine(dir models.Direction, along float64) float64 {
	return (c.StopLine(dir) - along) * dir.Sign()
}

// View returns the read-only state of the controller.
func (c *Controller) View() models.IntersectionView {
	return models.IntersectionView{
		ID:          c.id,
		Position:    c.pos,
		Phase:       c.phase,
		PhaseTimer:  c.timer,
		CycleLength: c.cycle,
		StopLines: models.StopLines{
			Right: c.StopLine(models.DirectionRight),
			Left:  c.StopLine(models.DirectionLeft),
			Up:    c.StopLine(models.DirectionUp),
			Down:  c.StopLine(models.DirectionDown),
		},
	}
}
