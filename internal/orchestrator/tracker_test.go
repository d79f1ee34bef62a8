package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerAveragesWeights(t *testing.T) {
	tr := newProgressTracker(3)

	assert.Equal(t, 3, tr.set(0, 10))  // floor(10/3)
	assert.Equal(t, 6, tr.set(1, 10))  // floor(20/3)
	assert.Equal(t, 20, tr.set(0, 40)) // floor(60/3)
	assert.Equal(t, 46, tr.set(2, 100))
	assert.Equal(t, 46, tr.current())
}

func TestTrackerFloorsFiveQuestionExample(t *testing.T) {
	tr := newProgressTracker(5)

	tr.set(0, 100)
	tr.set(1, 100)
	tr.set(2, 40)
	// floor((100+100+40+0+0)/5)
	assert.Equal(t, 48, tr.current())
}

func TestTrackerNeverRegresses(t *testing.T) {
	tr := newProgressTracker(2)

	assert.Equal(t, 50, tr.set(0, 100))
	// A stale lower weight for the same slot must not pull the total back.
	assert.Equal(t, 50, tr.set(0, 10))
	assert.Equal(t, 50, tr.current())
}

func TestTrackerIgnoresOutOfRangeSlots(t *testing.T) {
	tr := newProgressTracker(2)

	assert.Equal(t, 0, tr.set(-1, 100))
	assert.Equal(t, 0, tr.set(5, 100))
	assert.Equal(t, 0, tr.current())
}

func TestTrackerAllComplete(t *testing.T) {
	tr := newProgressTracker(4)
	for i := 0; i < 4; i++ {
		tr.set(i, 100)
	}
	assert.Equal(t, 100, tr.current())
}
