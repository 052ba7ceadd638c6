package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLane_ValidFor(t *testing.T) {
	tests := []struct {
		dir   Direction
		lanes []Lane
	}{
		{DirectionRight, []Lane{0, 1}},
		{DirectionDown, []Lane{0, 1}},
		{DirectionLeft, []Lane{2, 3}},
		{DirectionUp, []Lane{2, 3}},
	}

	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			for l := Lane(-1); l <= LaneCount; l++ {
				assert.Equal(t, contains(tt.lanes, l), l.ValidFor(tt.dir), "lane %d", l)
			}
		})
	}
}

func TestLane_Pair(t *testing.T) {
	assert.Equal(t, Lane(1), Lane(0).Pair())
	assert.Equal(t, Lane(0), Lane(1).Pair())
	assert.Equal(t, Lane(3), Lane(2).Pair())
	assert.Equal(t, Lane(2), Lane(3).Pair())
}

func TestDirection_Axis(t *testing.T) {
	assert.True(t, DirectionRight.Horizontal())
	assert.True(t, DirectionLeft.Horizontal())
	assert.False(t, DirectionUp.Horizontal())
	assert.False(t, DirectionDown.Horizontal())

	assert.Equal(t, 1.0, DirectionRight.Sign())
	assert.Equal(t, -1.0, DirectionLeft.Sign())
	assert.Equal(t, -1.0, DirectionUp.Sign())
	assert.Equal(t, 1.0, DirectionDown.Sign())
	assert.False(t, Direction("north").IsValid())

	require.Len(t, Directions, 4)
	horizontal := 0
	for _, d := range Directions {
		assert.True(t, d.IsValid(), "direction %s", d)
		assert.NotZero(t, d.Sign(), "direction %s", d)
		if d.Horizontal() {
			horizontal++
		}
	}
	assert.Equal(t, 2, horizontal)
}

func TestPhase_Flip(t *testing.T) {
	assert.Equal(t, PhaseVerticalGreen, PhaseHorizontalGreen.Flip())
	assert.Equal(t, PhaseHorizontalGreen, PhaseVerticalGreen.Flip())
}

func TestMood_AttentionFactor(t *testing.T) {
	for _, m := range Moods {
		f := m.AttentionFactor()
		assert.GreaterOrEqual(t, f, 0.6, "mood %s", m)
		assert.LessOrEqual(t, f, 1.1, "mood %s", m)
	}
	assert.Equal(t, 0.6, MoodTired.AttentionFactor())
	assert.Equal(t, 1.1, MoodCalm.AttentionFactor())
}

func contains(lanes []Lane, l Lane) bool {
	for _, x := range lanes {
		if x == l {
			return true
		}
	}
	return false
}
