// Package analytics computes aggregate views over a normalized transaction
// set. Every operation is a pure, synchronous computation over the
// StreamData it is handed; numeric aggregates over empty sets resolve to 0
// instead of NaN.
package analytics

import (
	"math"
	"time"
)

// Engine evaluates analytics operations. The only state is the clock, which
// exists so time-windowed operations are testable.
type Engine struct {
	clock func() time.Time
}

// NewEngine creates an engine using the wall clock.
func NewEngine() *Engine {
	return &Engine{clock: time.Now}
}

// WithClock sets a custom clock function for deterministic output.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// successRate returns (count-failed)/count as a percentage, 0 when count is
// zero.
func successRate(count, failed int) float64 {
	if count == 0 {
		return 0
	}
	return float64(count-failed) / float64(count) * 100
}

// safeAverage returns sum/count, 0 when count is zero.
func safeAverage(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// abs is math.Abs spelled short; transfer amounts can be signed deltas.
func abs(v float64) float64 {
	return math.Abs(v)
}
