package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/city-traffic/internal/driver/drivertest"
	"github.com/ukydev/city-traffic/internal/models"
)

func TestTurnTable(t *testing.T) {
	heading := map[models.Direction]map[models.TurnDecision]models.Direction{
		models.DirectionRight: {models.TurnLeft: models.DirectionUp, models.TurnRight: models.DirectionDown, models.TurnUTurn: models.DirectionLeft},
		models.DirectionLeft:  {models.TurnLeft: models.DirectionDown, models.TurnRight: models.DirectionUp, models.TurnUTurn: models.DirectionRight},
		models.DirectionDown:  {models.TurnLeft: models.DirectionRight, models.TurnRight: models.DirectionLeft, models.TurnUTurn: models.DirectionUp},
		models.DirectionUp:    {models.TurnLeft: models.DirectionLeft, models.TurnRight: models.DirectionRight, models.TurnUTurn: models.DirectionDown},
	}

	assert.Len(t, turnTable, 24)
	for k, target := range turnTable {
		assert.True(t, k.lane.ValidFor(k.dir), "%v", k)
		assert.True(t, target.lane.ValidFor(target.dir), "%v -> %v", k, target)
		assert.Equal(t, heading[k.dir][k.turn], target.dir, "%v", k)
	}
}

func TestTurnOptions(t *testing.T) {
	for dir, lanes := range turnOptions {
		for lane, opts := range lanes {
			assert.True(t, lane.ValidFor(dir), "%s lane %d", dir, lane)
			assert.Contains(t, opts, models.TurnStraight)
			for _, o := range opts {
				if o == models.TurnStraight {
					continue
				}
				_, ok := turnTable[turnKey{dir, o, lane}]
				assert.True(t, ok, "%s lane %d %s", dir, lane, o)
			}
		}
	}
}

func TestDecideTurn(t *testing.T) {
	tests := []struct {
		name string
		dir  models.Direction
		lane models.Lane
		roll float64
		pick int
		want models.TurnDecision
	}{
		{"roll above probability", models.DirectionRight, 0, 0.4, 1, models.TurnStraight},
		{"rightbound inner left", models.DirectionRight, 0, 0.1, 1, models.TurnLeft},
		{"rightbound inner u-turn", models.DirectionRight, 0, 0.1, 2, models.TurnUTurn},
		{"rightbound outer right", models.DirectionRight, 1, 0.1, 1, models.TurnRight},
		{"upbound offered straight", models.DirectionUp, 3, 0.1, 0, models.TurnStraight},
		{"leftbound outer right", models.DirectionLeft, 2, 0.39, 1, models.TurnRight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			w.rng = &drivertest.Script{Floats: []float64{tt.roll}, Ints: []int{tt.pick}}
			v := place(w, tt.dir, tt.lane, 500, 100, 1)

			w.decideTurn(v)

			assert.Equal(t, tt.want, v.turn)
		})
	}
}

func TestExecuteTurn(t *testing.T) {
	tests := []struct {
		name     string
		dir      models.Direction
		lane     models.Lane
		base     float64
		turn     models.TurnDecision
		at       int
		wantDir  models.Direction
		wantLane models.Lane
		wantBase float64
	}{
		{"down turns left onto road 500", models.DirectionDown, 0, 750, models.TurnLeft, 6, models.DirectionRight, 0, 500},
		{"right turns left onto road 250", models.DirectionRight, 0, 500, models.TurnLeft, 1, models.DirectionUp, 2, 250},
		{"right u-turn stays on road 500", models.DirectionRight, 1, 500, models.TurnUTurn, 1, models.DirectionLeft, 3, 500},
		{"up turns right onto road 800", models.DirectionUp, 2, 1050, models.TurnRight, 12, models.DirectionRight, 1, 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			v := place(w, tt.dir, tt.lane, tt.base, 100, 1)
			v.turn = tt.turn

			w.executeTurn(v, w.signals[tt.at])

			assert.Equal(t, tt.wantDir, v.dir)
			assert.Equal(t, tt.wantLane, v.lane)
			assert.Equal(t, tt.wantBase, v.baseRoad)
			assert.Equal(t, models.TurnNone, v.turn)
			assert.False(t, v.turning)
		})
	}
}

func TestExecuteTurn_Straight(t *testing.T) {
	w := newTestWorld(t)
	v := place(w, models.DirectionLeft, 3, 500, 800, 1)
	v.turn = models.TurnStraight

	w.executeTurn(v, w.signals[6])

	assert.Equal(t, models.DirectionLeft, v.dir)
	assert.Equal(t, models.Lane(3), v.lane)
	assert.Equal(t, 500.0, v.baseRoad)
	assert.Equal(t, models.TurnNone, v.turn)
}

func TestExecuteTurn_AbandonsLaneChange(t *testing.T) {
	w := newTestWorld(t)
	v := place(w, models.DirectionRight, 0, 500, 100, 1)
	require.True(t, w.tryChangeLane(v))
	v.turn = models.TurnLeft

	w.executeTurn(v, w.signals[1])

	assert.False(t, v.changingLane)
	assert.Equal(t, models.DirectionUp, v.dir)
	assert.NoError(t, w.Validate())
}
