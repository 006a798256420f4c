package systems

import (
	"math"
	"testing"
)

func TestPointerTrackerNormalizedOffset(t *testing.T) {
	tests := []struct {
		name         string
		x, y         float64
		wantX, wantY float64
	}{
		{"中心", 400, 300, 0, 0},
		{"左上角", 0, 0, -0.5, -0.5},
		{"右下角", 800, 600, 0.5, 0.5},
		{"超出视口被限制", 1600, -300, 0.5, -0.5},
		{"四分之一处", 200, 450, -0.25, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := NewPointerTracker(800, 600)
			pt.Move(tt.x, tt.y)
			s := pt.State()
			if !s.Valid {
				t.Fatal("state should be valid after Move")
			}
			if math.Abs(s.OffsetX-tt.wantX) > epsilon || math.Abs(s.OffsetY-tt.wantY) > epsilon {
				t.Errorf("offset = (%v, %v), want (%v, %v)", s.OffsetX, s.OffsetY, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestPointerTrackerResize(t *testing.T) {
	pt := NewPointerTracker(800, 600)
	pt.Move(400, 300)
	pt.Resize(1600, 600)
	if s := pt.State(); math.Abs(s.OffsetX+0.25) > epsilon {
		t.Errorf("offset after resize = %v, want -0.25", s.OffsetX)
	}

	zero := NewPointerTracker(0, 0)
	zero.Move(10, 10)
	if s := zero.State(); s.OffsetX != 0 || s.OffsetY != 0 {
		t.Errorf("unmeasured viewport should give zero offset, got (%v, %v)", s.OffsetX, s.OffsetY)
	}
}

func TestPointerTrackerSubscribe(t *testing.T) {
	pt := NewPointerTracker(100, 100)
	var got []PointerState
	sub := pt.Subscribe(func(s PointerState) { got = append(got, s) })

	var second *Subscription
	calls := 0
	second = pt.Subscribe(func(PointerState) {
		calls++
		second.Cancel()
	})
	if pt.SubscriberCount() != 2 {
		t.Fatalf("SubscriberCount = %d, want 2", pt.SubscriberCount())
	}

	pt.Move(25, 75)
	pt.Move(50, 50)
	if len(got) != 2 || got[0].X != 25 || got[1].X != 50 {
		t.Errorf("subscriber received %+v", got)
	}
	if calls != 1 {
		t.Errorf("self-cancelling subscriber called %d times, want 1", calls)
	}

	if !sub.Cancel() || sub.Cancel() {
		t.Error("Cancel should succeed exactly once")
	}
	if pt.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount after cancel = %d", pt.SubscriberCount())
	}
	pt.Move(1, 1)
	if len(got) != 2 {
		t.Error("cancelled subscriber still notified")
	}
}

func TestPointerTrackerLeave(t *testing.T) {
	pt := NewPointerTracker(100, 100)
	pt.Move(90, 90)
	pt.Leave()
	s := pt.State()
	if s.Valid || s.OffsetX != 0 || s.OffsetY != 0 {
		t.Errorf("state after Leave = %+v", s)
	}
}
