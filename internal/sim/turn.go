package sim

import (
	"github.com/ukydev/city-traffic/internal/models"
	"github.com/ukydev/city-traffic/internal/signal"
)

// turnOptions lists the manoeuvres each lane may choose. Lanes not listed go straight only.
var turnOptions = map[models.Direction]map[models.Lane][]models.TurnDecision{
	models.DirectionRight: {
		0: {models.TurnStraight, models.TurnLeft, models.TurnUTurn},
		1: {models.TurnStraight, models.TurnRight},
	},
	models.DirectionLeft: {
		3: {models.TurnStraight, models.TurnLeft, models.TurnUTurn},
		2: {models.TurnStraight, models.TurnRight},
	},
	models.DirectionDown: {
		0: {models.TurnStraight, models.TurnLeft, models.TurnUTurn},
		1: {models.TurnStraight, models.TurnRight},
	},
	models.DirectionUp: {
		3: {models.TurnStraight, models.TurnLeft, models.TurnUTurn},
		2: {models.TurnStraight, models.TurnRight},
	},
}

type turnKey struct {
	dir  models.Direction
	turn models.TurnDecision
	lane models.Lane
}

type turnTarget struct {
	dir  models.Direction
	lane models.Lane
}

// turnTable maps (direction, manoeuvre, lane) to the new direction and lane.
// The mapping is not symmetric across directions.
var turnTable = map[turnKey]turnTarget{
	{models.DirectionRight, models.TurnLeft, 0}: {models.DirectionUp, 2},
	{models.DirectionRight, models.TurnLeft, 1}: {models.DirectionUp, 2},
	{models.DirectionLeft, models.TurnLeft, 2}:  {models.DirectionDown, 0},
	{models.DirectionLeft, models.TurnLeft, 3}:  {models.DirectionDown, 0},
	{models.DirectionDown, models.TurnLeft, 0}:  {models.DirectionRight, 0},
	{models.DirectionDown, models.TurnLeft, 1}:  {models.DirectionRight, 0},
	{models.DirectionUp, models.TurnLeft, 2}:    {models.DirectionLeft, 2},
	{models.DirectionUp, models.TurnLeft, 3}:    {models.DirectionLeft, 2},

	{models.DirectionRight, models.TurnRight, 0}: {models.DirectionDown, 1},
	{models.DirectionRight, models.TurnRight, 1}: {models.DirectionDown, 1},
	{models.DirectionLeft, models.TurnRight, 2}:  {models.DirectionUp, 3},
	{models.DirectionLeft, models.TurnRight, 3}:  {models.DirectionUp, 3},
	{models.DirectionDown, models.TurnRight, 0}:  {models.DirectionLeft, 3},
	{models.DirectionDown, models.TurnRight, 1}:  {models.DirectionLeft, 3},
	{models.DirectionUp, models.TurnRight, 2}:    {models.DirectionRight, 1},
	{models.DirectionUp, models.TurnRight, 3}:    {models.DirectionRight, 1},

	{models.DirectionRight, models.TurnUTurn, 0}: {models.DirectionLeft, 2},
	{models.DirectionRight, models.TurnUTurn, 1}: {models.DirectionLeft, 3},
	{models.DirectionLeft, models.TurnUTurn, 2}:  {models.DirectionRight, 0},
	{models.DirectionLeft, models.TurnUTurn, 3}:  {models.DirectionRight, 1},
	{models.DirectionDown, models.TurnUTurn, 0}:  {models.DirectionUp, 2},
	{models.DirectionDown, models.TurnUTurn, 1}:  {models.DirectionUp, 3},
	{models.DirectionUp, models.TurnUTurn, 2}:    {models.DirectionDown, 0},
	{models.DirectionUp, models.TurnUTurn, 3}:    {models.DirectionDown, 1},
}

// decideTurn draws the manoeuvre for the upcoming intersection.
func (w *World) decideTurn(v *Vehicle) {
	opts, ok := turnOptions[v.dir][v.lane]
	if !ok {
		opts = []models.TurnDecision{models.TurnStraight}
	}
	if w.rng.Float64() < w.cfg.Vehicle.TurnProbability {
		v.turn = opts[w.rng.Intn(len(opts))]
		return
	}
	v.turn = models.TurnStraight
}

// executeTurn applies the pending decision at intersection c in a single step.
// Going straight only clears the decision.
func (w *World) executeTurn(v *Vehicle, c *signal.Controller) {
	target, ok := turnTable[turnKey{v.dir, v.turn, v.lane}]
	if v.turn == models.TurnStraight || !ok {
		v.turn = models.TurnNone
		return
	}

	v.turning = true
	v.passedStopLine = false
	// A lane change in progress is abandoned; its target belongs to the old direction.
	v.changingLane = false
	v.laneProgress = 0

	v.dir, v.lane = target.dir, target.lane
	if v.dir.Horizontal() {
		v.baseRoad = c.Position().Y
	} else {
		v.baseRoad = c.Position().X
	}

	v.turn = models.TurnNone
	v.turning = false
}
