package systems

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/render"
	"github.com/decker502/heartbloom/pkg/utils"
)

// ErrInvalidSmoothing 平滑系数必须在 (0, 1] 内
var ErrInvalidSmoothing = errors.New("smoothing factor must be in (0, 1]")

// SettleEpsilon 当前值与目标差距小于该值时直接对齐目标，避免无限逼近
const SettleEpsilon = 1e-3

// referenceFrame 平滑系数以 60fps 的一帧为基准
const referenceFrame = time.Second / 60

// Smoothed 二维指数平滑：current += (target - current) * factor
//
// factor 定义为 60fps 下每帧的系数，其他帧时长按 1-(1-factor)^(dt/frame) 换算，
// 帧率变化时收敛速度保持一致。
type Smoothed struct {
	X, Y             float64
	targetX, targetY float64
	factor           float64
}

// NewSmoothed 创建平滑器，factor 必须在 (0, 1]
func NewSmoothed(factor float64) (*Smoothed, error) {
	if !(factor > 0 && factor <= 1) {
		return nil, fmt.Errorf("smoothing %v: %w", factor, ErrInvalidSmoothing)
	}
	return &Smoothed{factor: factor}, nil
}

// SetTarget 设置目标值
func (s *Smoothed) SetTarget(x, y float64) {
	s.targetX, s.targetY = x, y
}

// Target 返回目标值
func (s *Smoothed) Target() (float64, float64) {
	return s.targetX, s.targetY
}

// Step 向目标推进一步
func (s *Smoothed) Step(dt time.Duration) {
	if dt <= 0 {
		return
	}
	k := s.factor
	if dt != referenceFrame && k < 1 {
		k = 1 - math.Pow(1-k, float64(dt)/float64(referenceFrame))
	}
	s.X = approach(s.X, s.targetX, k)
	s.Y = approach(s.Y, s.targetY, k)
}

func approach(current, target, k float64) float64 {
	current += (target - current) * k
	if math.Abs(target-current) < SettleEpsilon {
		return target
	}
	return current
}

// Settled 是否已经与目标重合
func (s *Smoothed) Settled() bool {
	return s.X == s.targetX && s.Y == s.targetY
}

// Reset 立即回到原点
func (s *Smoothed) Reset() {
	*s = Smoothed{factor: s.factor}
}

// ParallaxController 把指针归一化偏移映射为背景图层平移
// target = offset * gain，每帧平滑逼近
type ParallaxController struct {
	pointer *PointerTracker
	gain    float64
	smooth  *Smoothed
}

// NewParallaxController 创建视差控制器
func NewParallaxController(pointer *PointerTracker, gain, smoothing float64) (*ParallaxController, error) {
	s, err := NewSmoothed(smoothing)
	if err != nil {
		return nil, fmt.Errorf("parallax: %w", err)
	}
	return &ParallaxController{pointer: pointer, gain: gain, smooth: s}, nil
}

// Update 读取指针快照并推进平滑
func (pc *ParallaxController) Update(dt time.Duration) {
	state := pc.pointer.State()
	if state.Valid {
		pc.smooth.SetTarget(state.OffsetX*pc.gain, state.OffsetY*pc.gain)
	} else {
		pc.smooth.SetTarget(0, 0)
	}
	pc.smooth.Step(dt)
}

// Offset 返回当前平移量
func (pc *ParallaxController) Offset() (float64, float64) {
	return pc.smooth.X, pc.smooth.Y
}

// Settled 是否已收敛到目标
func (pc *ParallaxController) Settled() bool {
	return pc.smooth.Settled()
}

// Transform 返回图层变换
func (pc *ParallaxController) Transform() render.Transform {
	t := render.Identity()
	t.OffsetX, t.OffsetY = pc.Offset()
	return t
}

// BoundsFunc 返回元素当前包围盒，ok=false 表示尚不可测量
type BoundsFunc func() (game.Rect, bool)

// TiltController 根据指针相对元素中心的位置计算 3D 倾斜角度
//
// 触屏设备上整体禁用（挂载时判断一次）；包围盒不可用时本帧跳过。
type TiltController struct {
	pointer  *PointerTracker
	bounds   BoundsFunc
	maxAngle float64
	smooth   *Smoothed
	disabled bool
}

// NewTiltController 创建倾斜控制器，touchOnly 为 true 时控制器永远保持零角度
func NewTiltController(pointer *PointerTracker, bounds BoundsFunc, maxAngle, smoothing float64, touchOnly bool) (*TiltController, error) {
	s, err := NewSmoothed(smoothing)
	if err != nil {
		return nil, fmt.Errorf("tilt: %w", err)
	}
	return &TiltController{
		pointer:  pointer,
		bounds:   bounds,
		maxAngle: maxAngle,
		smooth:   s,
		disabled: touchOnly,
	}, nil
}

// Disabled 是否因触屏设备被禁用
func (tc *TiltController) Disabled() bool {
	return tc.disabled
}

// Update 推进一帧，返回 false 表示本帧被跳过
func (tc *TiltController) Update(dt time.Duration) bool {
	if tc.disabled {
		return false
	}
	r, ok := tc.bounds()
	if !ok || r.Empty() {
		return false
	}

	state := tc.pointer.State()
	if !state.Valid {
		tc.smooth.SetTarget(0, 0)
	} else {
		cx, cy := r.Center()
		nx := utils.Clamp((state.X-cx)/r.W, -0.5, 0.5)
		ny := utils.Clamp((state.Y-cy)/r.H, -0.5, 0.5)
		// 指针在右侧时绕 Y 轴正转，在下方时绕 X 轴反转
		tc.smooth.SetTarget(-ny*tc.maxAngle, nx*tc.maxAngle)
	}
	tc.smooth.Step(dt)
	return true
}

// Angles 返回当前 (rotateX, rotateY) 角度
func (tc *TiltController) Angles() (float64, float64) {
	return tc.smooth.X, tc.smooth.Y
}

// Transform 返回以元素中心为原点的倾斜变换
func (tc *TiltController) Transform() render.Transform {
	t := render.Identity()
	t.RotateX, t.RotateY = tc.Angles()
	if r, ok := tc.bounds(); ok {
		t.OriginX, t.OriginY = r.Center()
	}
	return t
}
