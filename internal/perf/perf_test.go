package perf

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordTracksMinAvgMax(t *testing.T) {
	ts := NewTimingStats()
	ts.Record(100 * time.Microsecond)
	ts.Record(300 * time.Microsecond)
	ts.Record(200 * time.Microsecond)

	assert.Equal(t, uint64(3), ts.Count())
	assert.Equal(t, uint64(100), ts.min)
	assert.Equal(t, uint64(300), ts.max)
	assert.Equal(t, uint64(600), ts.sum)
}

func TestLogResetsWindow(t *testing.T) {
	ts := NewTimingStats()
	ts.Record(50 * time.Microsecond)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts.Log(log, "encode")
	assert.Equal(t, uint64(0), ts.Count())

	// An empty window must stay empty after a second Log.
	ts.Log(log, "encode")
	assert.Equal(t, uint64(0), ts.Count())
}
