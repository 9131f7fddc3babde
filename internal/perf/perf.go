// Package perf collects coarse per-stage timing statistics for the frame
// pipeline: minimum, maximum, and mean over a window of recorded samples,
// logged periodically and reset.
package perf

import (
	"log/slog"
	"math"
	"time"
)

// TimingStats accumulates microsecond samples for one pipeline stage. The
// zero value is not ready to use; call Reset first (or use NewTimingStats).
type TimingStats struct {
	min   uint64
	max   uint64
	sum   uint64
	count uint64
}

// NewTimingStats returns an empty, ready-to-record TimingStats.
func NewTimingStats() *TimingStats {
	ts := &TimingStats{}
	ts.Reset()
	return ts
}

// Reset clears the accumulated window.
func (ts *TimingStats) Reset() {
	*ts = TimingStats{min: math.MaxUint64}
}

// Record adds one sample.
func (ts *TimingStats) Record(d time.Duration) {
	v := uint64(d.Microseconds())
	if v < ts.min {
		ts.min = v
	}
	if v > ts.max {
		ts.max = v
	}
	ts.sum += v
	ts.count++
}

// Count reports the number of samples recorded since the last Reset.
func (ts *TimingStats) Count() uint64 { return ts.count }

// Log emits one min/avg/max line for the window and resets it. A window
// with no samples logs nothing.
func (ts *TimingStats) Log(log *slog.Logger, name string) {
	if ts.count == 0 {
		return
	}
	log.Debug("timing", "stage", name,
		"min_us", ts.min, "avg_us", ts.sum/ts.count, "max_us", ts.max)
	ts.Reset()
}
