package systems

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/decker502/heartbloom/pkg/render"
)

// ErrInvalidMagnet 磁吸参数不合法
var ErrInvalidMagnet = errors.New("invalid magnetic attractor")

// MagneticAttractor 指针靠近交互元素时把元素吸向指针
//
// 指针到包围盒中心距离小于 radius 时目标偏移为 位移 * gain（gain < 1），
// 否则目标为零；和视差一样用指数平滑逼近目标。
type MagneticAttractor struct {
	pointer *PointerTracker
	bounds  BoundsFunc
	radius  float64
	gain    float64
	smooth  *Smoothed
	engaged bool
}

// NewMagneticAttractor 创建磁吸效果
func NewMagneticAttractor(pointer *PointerTracker, bounds BoundsFunc, radius, gain, smoothing float64) (*MagneticAttractor, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("radius %v: %w", radius, ErrInvalidMagnet)
	}
	if gain <= 0 || gain >= 1 {
		return nil, fmt.Errorf("gain %v must be in (0, 1): %w", gain, ErrInvalidMagnet)
	}
	s, err := NewSmoothed(smoothing)
	if err != nil {
		return nil, fmt.Errorf("magnetic: %w", err)
	}
	return &MagneticAttractor{
		pointer: pointer,
		bounds:  bounds,
		radius:  radius,
		gain:    gain,
		smooth:  s,
	}, nil
}

// Update 推进一帧，包围盒不可用时跳过并返回 false
func (ma *MagneticAttractor) Update(dt time.Duration) bool {
	r, ok := ma.bounds()
	if !ok || r.Empty() {
		return false
	}

	state := ma.pointer.State()
	ma.engaged = false
	if state.Valid {
		cx, cy := r.Center()
		dx, dy := state.X-cx, state.Y-cy
		if math.Hypot(dx, dy) < ma.radius {
			ma.engaged = true
			ma.smooth.SetTarget(dx*ma.gain, dy*ma.gain)
		}
	}
	if !ma.engaged {
		ma.smooth.SetTarget(0, 0)
	}
	ma.smooth.Step(dt)
	return true
}

// Engaged 指针是否在吸附半径内
func (ma *MagneticAttractor) Engaged() bool {
	return ma.engaged
}

// Offset 返回元素当前偏移
func (ma *MagneticAttractor) Offset() (float64, float64) {
	return ma.smooth.X, ma.smooth.Y
}

// Transform 返回元素图层变换
func (ma *MagneticAttractor) Transform() render.Transform {
	t := render.Identity()
	t.OffsetX, t.OffsetY = ma.Offset()
	return t
}
