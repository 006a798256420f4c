package components

import "github.com/decker502/heartbloom/internal/particle"

// MotionLaw 粒子的运动规律
type MotionLaw int

const (
	// MotionDrift 匀速漂移，碰到视口边缘时速度反射（星星）
	MotionDrift MotionLaw = iota
	// MotionPath 沿单程路径上升或下落，带水平漂移和旋转（爱心、花瓣、流星、光斑）
	MotionPath
	// MotionFloat 围绕基准点的装饰性振荡（浮动光点）
	MotionFloat
)

func (m MotionLaw) String() string {
	switch m {
	case MotionDrift:
		return "drift"
	case MotionPath:
		return "path"
	case MotionFloat:
		return "float"
	default:
		return "unknown"
	}
}

// ParticleComponent 单个粒子的全部运行时状态
//
// 纯数据组件：运动规律只读写粒子自身的字段。
// 粒子退役后槽位被清零，所有字段回到零值。
type ParticleComponent struct {
	Motion MotionLaw

	// 当前位置（视口像素）
	X, Y float64

	// Drift: 速度（像素/秒）
	VX, VY float64

	// Path: 起点、终点 Y、总水平漂移、总旋转角度、路程时长（秒）
	StartX, StartY float64
	EndY           float64
	DriftX         float64
	Spin           float64
	Travel         float64

	// Float: 基准点、振幅、周期（秒）、初始相位（弧度）
	BaseX, BaseY float64
	AmpX, AmpY   float64
	Period       float64
	Phase        float64

	// 外观
	Size          float64
	Opacity       float64
	BaseOpacity   float64
	Rotation      float64 // 角度
	RotationSpeed float64 // 角度/秒
	Glyph         string
	Color         string

	// 透明度随生命周期变化的关键帧（乘在 BaseOpacity 上），为空时透明度不变
	OpacityKeyframes []particle.Keyframe
	OpacityInterp    string

	// 生命周期（秒），Lifetime 为 0 表示没有 TTL，只由边界条件退役
	Age      float64
	Lifetime float64

	// Retired 退役标记，设置后不再更新或绘制
	Retired bool
}
