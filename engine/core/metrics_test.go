package core

import (
	"testing"
	"time"
)

func TestMetricsAverage(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(10 * time.Millisecond)
	}
	if got := m.FrameTime(); got < 9.999 || got > 10.001 {
		t.Errorf("FrameTime = %v, want 10", got)
	}
	if s := m.Snapshot(); s.Frames != uint64(AVG_COUNT) {
		t.Errorf("Frames = %d, want %d", s.Frames, AVG_COUNT)
	}
}

func TestMetricsFPS(t *testing.T) {
	m := NewMetrics()
	// 101 frames of 10ms crosses the one second boundary once.
	for i := 0; i < 101; i++ {
		m.Update(10 * time.Millisecond)
	}
	if got := m.FPS(); got != 100 {
		t.Errorf("FPS = %v, want 100", got)
	}
}
