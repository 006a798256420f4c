package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/decker502/heartbloom/pkg/game"
)

func TestMagneticAttractor(t *testing.T) {
	button := game.Rect{X: 350, Y: 280, W: 100, H: 40} // 中心 (400, 300)
	bounds := func() (game.Rect, bool) { return button, true }

	tests := []struct {
		name         string
		px, py       float64
		wantEngaged  bool
		wantX, wantY float64
	}{
		{"半径内被吸引", 430, 320, true, 9, 6},
		{"半径外回到原位", 600, 300, false, 0, 0},
		{"正好在半径上不吸引", 500, 300, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := NewPointerTracker(800, 600)
			ma, err := NewMagneticAttractor(pt, bounds, 100, 0.3, 1)
			if err != nil {
				t.Fatal(err)
			}
			pt.Move(tt.px, tt.py)
			ma.Update(frame)
			if ma.Engaged() != tt.wantEngaged {
				t.Errorf("Engaged = %v, want %v", ma.Engaged(), tt.wantEngaged)
			}
			x, y := ma.Offset()
			if math.Abs(x-tt.wantX) > epsilon || math.Abs(y-tt.wantY) > epsilon {
				t.Errorf("offset = (%v, %v), want (%v, %v)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestMagneticAttractorEasesBack(t *testing.T) {
	button := game.Rect{X: 0, Y: 0, W: 100, H: 100}
	pt := NewPointerTracker(800, 600)
	ma, _ := NewMagneticAttractor(pt, func() (game.Rect, bool) { return button, true }, 80, 0.5, 0.2)

	pt.Move(90, 50)
	for i := 0; i < 200; i++ {
		ma.Update(frame)
	}
	if x, _ := ma.Offset(); x != 20 {
		t.Fatalf("engaged offset = %v, want 20", x)
	}

	pt.Move(500, 500)
	ma.Update(frame)
	x, _ := ma.Offset()
	if x <= 0 || x >= 20 {
		t.Errorf("offset should ease back, not snap: %v", x)
	}
	for i := 0; i < 200; i++ {
		ma.Update(frame)
	}
	if x, y := ma.Offset(); x != 0 || y != 0 {
		t.Errorf("offset = (%v, %v), want (0, 0)", x, y)
	}
}

func TestMagneticAttractorValidation(t *testing.T) {
	pt := NewPointerTracker(800, 600)
	bounds := func() (game.Rect, bool) { return game.Rect{W: 1, H: 1}, true }
	tests := []struct {
		name   string
		radius float64
		gain   float64
		smooth float64
		want   error
	}{
		{"半径为零", 0, 0.3, 0.1, ErrInvalidMagnet},
		{"增益不小于1", 50, 1, 0.1, ErrInvalidMagnet},
		{"平滑系数无效", 50, 0.3, 2, ErrInvalidSmoothing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMagneticAttractor(pt, bounds, tt.radius, tt.gain, tt.smooth); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMagneticAttractorSkipsUnmeasured(t *testing.T) {
	pt := NewPointerTracker(800, 600)
	ma, _ := NewMagneticAttractor(pt, func() (game.Rect, bool) { return game.Rect{}, false }, 50, 0.3, 0.1)
	pt.Move(0, 0)
	if ma.Update(frame) {
		t.Error("unmeasured bounds should skip the tick")
	}
}
