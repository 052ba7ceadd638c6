package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_Advance(t *testing.T) {
	c := NewClock(time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC))

	for i := 0; i < 6; i++ {
		c.Advance(10 * time.Minute)
	}
	assert.Equal(t, 7, c.Hour())

	c.Advance(17 * time.Hour)
	assert.Equal(t, 0, c.Hour())
	assert.Equal(t, 2, c.Now().Day())
}
