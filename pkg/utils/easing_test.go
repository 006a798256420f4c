package utils

import (
	"errors"
	"math"
	"testing"
)

// TestEaseLinear 测试线性缓动函数
func TestEaseLinear(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"起点", 0.0, 0.0},
		{"中点", 0.5, 0.5},
		{"终点", 1.0, 1.0},
		{"四分之一", 0.25, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EaseLinear(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("EaseLinear(%v) = %v, 期望 %v", tt.input, result, tt.expected)
			}
		})
	}
}

// TestEaseOutCubic 测试三次方缓出函数
func TestEaseOutCubic(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"起点", 0.0, 0.0},
		{"终点", 1.0, 1.0},
		{"中点", 0.5, 0.875}, // 1 - (1-0.5)^3 = 0.875
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EaseOutCubic(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("EaseOutCubic(%v) = %v, 期望 %v", tt.input, result, tt.expected)
			}
		})
	}
}

// TestLookupEase_Endpoints 所有已知缓动在端点处必须精确为 0 和 1
func TestLookupEase_Endpoints(t *testing.T) {
	ids := []string{
		"", "none", "linear",
		"power1.inOut", "power1.out", "power2.out", "power3.out", "power4.in",
		"expo.out", "expo.in", "expo.inOut",
		"back.out(1.7)", "back.out", "back.in(2)",
		"sine.inOut", "quad.out", "cubic.in",
		"power2",
	}

	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			fn, err := LookupEase(id)
			if err != nil {
				t.Fatalf("LookupEase(%q) error: %v", id, err)
			}
			if got := fn(0); math.Abs(got) > 0.001 {
				t.Errorf("%s(0) = %v, 期望 0", id, got)
			}
			if got := fn(1); math.Abs(got-1) > 0.001 {
				t.Errorf("%s(1) = %v, 期望 1", id, got)
			}
		})
	}
}

// TestLookupEase_Unknown 未知缓动ID必须报错
func TestLookupEase_Unknown(t *testing.T) {
	for _, id := range []string{"bounce.out", "power9.out", "power2.sideways", "back.out(abc)", "back.out(1.7", "power1.out(2)"} {
		t.Run(id, func(t *testing.T) {
			if _, err := LookupEase(id); !errors.Is(err, ErrUnknownEase) {
				t.Errorf("LookupEase(%q) err = %v, 期望 ErrUnknownEase", id, err)
			}
		})
	}
}

// TestBackOut_Overshoots back.out 应该在中途超过 1
func TestBackOut_Overshoots(t *testing.T) {
	fn, err := LookupEase("back.out(1.7)")
	if err != nil {
		t.Fatal(err)
	}
	peak := 0.0
	for p := 0.0; p <= 1.0; p += 0.01 {
		peak = math.Max(peak, fn(p))
	}
	if peak <= 1.0 {
		t.Errorf("back.out(1.7) 峰值 %v，期望 > 1（回弹）", peak)
	}
}

// TestPowerFamilies gsap 命名：power1 = 二次方，power2 = 三次方
func TestPowerFamilies(t *testing.T) {
	p1, _ := LookupEase("power1.out")
	if math.Abs(p1(0.5)-EaseOutQuad(0.5)) > 1e-9 {
		t.Errorf("power1.out(0.5) = %v, 期望 %v", p1(0.5), EaseOutQuad(0.5))
	}
	p2, _ := LookupEase("power2.out")
	if math.Abs(p2(0.5)-EaseOutCubic(0.5)) > 1e-9 {
		t.Errorf("power2.out(0.5) = %v, 期望 %v", p2(0.5), EaseOutCubic(0.5))
	}
	io, _ := LookupEase("power2.inOut")
	if math.Abs(io(0.3)-EaseInOutCubic(0.3)) > 1e-9 {
		t.Errorf("power2.inOut(0.3) = %v, 期望 %v", io(0.3), EaseInOutCubic(0.3))
	}
}

// TestLerp 测试线性插值
func TestLerp(t *testing.T) {
	tests := []struct {
		a, b, t, want float64
	}{
		{0, 100, 0, 0},
		{0, 100, 1, 100},
		{0, 100, 0.5, 50},
		{100, 50, 0.5, 75},
	}
	for _, tt := range tests {
		if got := Lerp(tt.a, tt.b, tt.t); math.Abs(got-tt.want) > 0.001 {
			t.Errorf("Lerp(%v, %v, %v) = %v, 期望 %v", tt.a, tt.b, tt.t, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-1, 0, 1) != 0 || Clamp(2, 0, 1) != 1 || Clamp(0.3, 0, 1) != 0.3 {
		t.Error("Clamp returned wrong value")
	}
}
