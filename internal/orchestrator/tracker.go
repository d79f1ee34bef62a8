package orchestrator

import "sync"

// progressTracker aggregates per-question stage weights into one job-level
// percentage: floor of the weight sum divided by the question count. Reported
// values never regress, even when stage events from concurrent pipelines
// interleave out of order.
type progressTracker struct {
	mu      sync.Mutex
	weights []int
	last    int
}

func newProgressTracker(questions int) *progressTracker {
	return &progressTracker{weights: make([]int, questions)}
}

// set records the weight reached by one question and returns the clamped
// overall percentage.
func (t *progressTracker) set(index, weight int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if index >= 0 && index < len(t.weights) && weight > t.weights[index] {
		t.weights[index] = weight
	}

	sum := 0
	for _, w := range t.weights {
		sum += w
	}
	overall := 0
	if len(t.weights) > 0 {
		overall = sum / len(t.weights)
	}
	if overall > t.last {
		t.last = overall
	}
	return t.last
}

// current returns the last reported percentage.
func (t *progressTracker) current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
