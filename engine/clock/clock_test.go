package clock

import (
	"errors"
	"testing"
	"time"

	"github.com/spaghettifunk/cala/engine/core"
)

func newTestClock(t *testing.T) (*Clock, *time.Time) {
	t.Helper()
	wall := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := New(nil, WithWallClock(func() time.Time { return wall }))
	if err := c.Initialize(); err != nil {
		t.Fatal(err)
	}
	return c, &wall
}

func TestClockUpdate(t *testing.T) {
	c, wall := newTestClock(t)

	*wall = wall.Add(time.Second)
	if err := c.Update(16 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	c.Update(17 * time.Millisecond)

	if c.Elapsed() != 33*time.Millisecond {
		t.Errorf("Elapsed() = %v", c.Elapsed())
	}
	if c.Delta() != 17*time.Millisecond {
		t.Errorf("Delta() = %v", c.Delta())
	}
	if !c.Now().Equal(*wall) {
		t.Errorf("Now() = %v, want %v", c.Now(), *wall)
	}
	if c.Now().Sub(c.Started()) != time.Second {
		t.Errorf("Started() = %v", c.Started())
	}
}

func TestClockInitializeTwice(t *testing.T) {
	c, _ := newTestClock(t)
	if err := c.Initialize(); !errors.Is(err, core.ErrAlreadyInitialized) {
		t.Errorf("Initialize() = %v, want ErrAlreadyInitialized", err)
	}
}

func TestTimer(t *testing.T) {
	c, _ := newTestClock(t)
	timer := c.After(50 * time.Millisecond)

	c.Update(30 * time.Millisecond)
	if timer.Done() {
		t.Fatal("timer done too early")
	}
	if timer.Remaining() != 20*time.Millisecond {
		t.Errorf("Remaining() = %v", timer.Remaining())
	}
	c.Update(20 * time.Millisecond)
	if !timer.Done() {
		t.Fatal("timer should be done")
	}

	timer.Reset(10 * time.Millisecond)
	if timer.Done() {
		t.Error("reset timer should not be done")
	}
	c.Update(10 * time.Millisecond)
	timer.Stop()
	if timer.Done() {
		t.Error("stopped timer is never done")
	}
}

func TestTicker(t *testing.T) {
	c, _ := newTestClock(t)
	tk := c.Every(10 * time.Millisecond)

	tests := []struct {
		delta time.Duration
		want  int
	}{
		{5 * time.Millisecond, 0},
		{5 * time.Millisecond, 1},
		{25 * time.Millisecond, 2},
		{5 * time.Millisecond, 1}, // 5ms left over from the previous tick
		{0, 0},
	}
	for i, tt := range tests {
		c.Update(tt.delta)
		if got := tk.Ready(); got != tt.want {
			t.Errorf("step %d: Ready() = %d, want %d", i, got, tt.want)
		}
	}

	tk.Stop()
	c.Update(time.Second)
	if got := tk.Ready(); got != 0 {
		t.Errorf("stopped ticker Ready() = %d", got)
	}
}
