package models

// Direction is the travel direction of a vehicle on the grid.
type Direction string

const (
	DirectionRight Direction = "right"
	DirectionLeft  Direction = "left"
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
)

// Directions lists every direction in a stable order.
var Directions = []Direction{DirectionRight, DirectionLeft, DirectionUp, DirectionDown}

// IsValid reports whether d is one of the four canonical directions.
func (d Direction) IsValid() bool {
	switch d {
	case DirectionRight, DirectionLeft, DirectionUp, DirectionDown:
		return true
	default:
		return false
	}
}

// Horizontal reports whether d travels along the X axis.
func (d Direction) Horizontal() bool {
	return d == DirectionRight || d == DirectionLeft
}

// Sign is +1 for directions that increase the travel coordinate, -1 otherwise.
func (d Direction) Sign() float64 {
	switch d {
	case DirectionRight, DirectionDown:
		return 1
	default:
		return -1
	}
}

// Lane is a discrete lane slot on a road, 0 through 3.
type Lane int

// LaneCount is the number of lanes on every road.
const LaneCount = 4

// IsValid reports whether l is a lane slot.
func (l Lane) IsValid() bool {
	return l >= 0 && l < LaneCount
}

// Pair returns the adjacent lane a vehicle may change into (0<->1, 2<->3).
func (l Lane) Pair() Lane {
	return l ^ 1
}

// ValidFor reports whether a vehicle travelling in d may occupy l.
// Right and Down traffic use lanes 0-1, Left and Up traffic use lanes 2-3.
func (l Lane) ValidFor(d Direction) bool {
	if !l.IsValid() {
		return false
	}
	switch d {
	case DirectionRight, DirectionDown:
		return l <= 1
	case DirectionLeft, DirectionUp:
		return l >= 2
	default:
		return false
	}
}

// TurnDecision is the manoeuvre a vehicle has committed to at the next intersection.
type TurnDecision string

const (
	TurnNone     TurnDecision = ""
	TurnStraight TurnDecision = "straight"
	TurnLeft     TurnDecision = "left"
	TurnRight    TurnDecision = "right"
	TurnUTurn    TurnDecision = "uturn"
)

// Phase is which perpendicular stream has right-of-way at an intersection.
type Phase string

const (
	PhaseHorizontalGreen Phase = "horizontal_green"
	PhaseVerticalGreen   Phase = "vertical_green"
)

// Flip returns the opposite phase.
func (p Phase) Flip() Phase {
	if p == PhaseHorizontalGreen {
		return PhaseVerticalGreen
	}
	return PhaseHorizontalGreen
}
