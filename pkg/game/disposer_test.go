package game

import (
	"testing"
	"time"
)

func TestDisposerReleasesEverything(t *testing.T) {
	c := NewClock()
	d := NewDisposer("test")

	spawned := 0
	d.Track(c.Every(100*time.Millisecond, func() { spawned++ }))
	d.Track(c.AfterFunc(time.Second, func() { spawned += 100 }))
	d.Track(c.OnFrame(func(time.Duration) {}))
	cleaned := 0
	d.Defer(func() { cleaned++ })

	c.Advance(250 * time.Millisecond)
	if spawned != 2 {
		t.Fatalf("spawned = %d, want 2", spawned)
	}
	if d.Live() != 3 {
		t.Errorf("Live = %d, want 3", d.Live())
	}

	if n := d.Dispose(); n != 3 {
		t.Errorf("Dispose cancelled %d handles, want 3", n)
	}
	if d.Dispose() != 0 {
		t.Error("second Dispose should be a no-op")
	}
	if cleaned != 1 {
		t.Errorf("cleanup ran %d times, want 1", cleaned)
	}
	if d.Live() != 0 {
		t.Errorf("Live after Dispose = %d, want 0", d.Live())
	}
	if c.Pending() != 0 {
		t.Errorf("clock still has %d pending registrations", c.Pending())
	}

	c.Advance(5 * time.Second)
	if spawned != 2 {
		t.Errorf("timer kept firing after Dispose, spawned = %d", spawned)
	}
}

func TestDisposerTrackAfterDispose(t *testing.T) {
	c := NewClock()
	d := NewDisposer("late")
	d.Dispose()

	timer := c.AfterFunc(time.Millisecond, func() { t.Error("late timer fired") })
	d.Track(timer)
	if timer.Active() {
		t.Error("handle tracked after Dispose should be cancelled immediately")
	}

	ran := false
	d.Defer(func() { ran = true })
	if !ran {
		t.Error("cleanup deferred after Dispose should run immediately")
	}
	c.Advance(time.Second)
}

func TestDisposerSkipsAlreadyCancelled(t *testing.T) {
	c := NewClock()
	d := NewDisposer("partial")
	a := c.AfterFunc(time.Second, func() {})
	d.Track(a)
	d.Track(c.AfterFunc(time.Second, func() {}))
	a.Cancel()

	if n := d.Dispose(); n != 1 {
		t.Errorf("Dispose cancelled %d handles, want 1", n)
	}
}
