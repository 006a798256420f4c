package systems

import (
	"math"

	particlePkg "github.com/decker502/heartbloom/internal/particle"
	"github.com/decker502/heartbloom/pkg/components"
	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/utils"
)

// RetireBoundFactor 超出视口高度该倍数的粒子被回收
const RetireBoundFactor = 1.2

// stepParticle 按粒子的运动规律推进 dt 秒
// 只修改粒子自身的字段；返回 true 表示粒子应当退役
func stepParticle(p *components.ParticleComponent, dt float64, vp game.Viewport) bool {
	p.Age += dt

	var progress float64
	retire := false

	switch p.Motion {
	case components.MotionDrift:
		stepDrift(p, dt, vp)
		p.Rotation += p.RotationSpeed * dt
		progress = lifeProgress(p)

	case components.MotionPath:
		progress = pathProgress(p)
		p.X = p.StartX + p.DriftX*progress
		p.Y = p.StartY + (p.EndY-p.StartY)*progress
		p.Rotation = p.Spin * progress
		if progress >= 1 {
			retire = true
		}
		if !vp.Empty() && p.Y > vp.Height*RetireBoundFactor {
			retire = true
		}

	case components.MotionFloat:
		stepFloat(p)
		p.Rotation += p.RotationSpeed * dt
		progress = lifeProgress(p)
	}

	if len(p.OpacityKeyframes) > 0 {
		p.Opacity = p.BaseOpacity * particlePkg.EvaluateKeyframes(p.OpacityKeyframes, progress, p.OpacityInterp)
	}

	if p.Lifetime > 0 && p.Age >= p.Lifetime {
		retire = true
	}
	return retire
}

// stepDrift 匀速移动，越过视口边缘时镜像回视口内并反转对应速度分量
func stepDrift(p *components.ParticleComponent, dt float64, vp game.Viewport) {
	p.X += p.VX * dt
	p.Y += p.VY * dt
	if vp.Empty() {
		return
	}
	p.X, p.VX = reflect(p.X, p.VX, vp.Width)
	p.Y, p.VY = reflect(p.Y, p.VY, vp.Height)
}

func reflect(pos, vel, limit float64) (float64, float64) {
	if pos < 0 {
		pos = -pos
		vel = math.Abs(vel)
	}
	if pos > limit {
		pos = 2*limit - pos
		vel = -math.Abs(vel)
	}
	// 单帧位移超过整个视口时直接夹紧
	if pos < 0 || pos > limit {
		pos = utils.Clamp(pos, 0, limit)
	}
	return pos, vel
}

// stepFloat 上下浮动：Y 方向按正弦缓动从基准点升起再回落，X 方向轻微摆动
func stepFloat(p *components.ParticleComponent) {
	if p.Period <= 0 {
		p.X, p.Y = p.BaseX, p.BaseY
		return
	}
	phase := 2*math.Pi*p.Age/p.Period + p.Phase
	p.X = p.BaseX + p.AmpX*math.Sin(phase)
	p.Y = p.BaseY - p.AmpY*(1-math.Cos(phase))/2
}

func pathProgress(p *components.ParticleComponent) float64 {
	if p.Travel <= 0 {
		return 1
	}
	return utils.Clamp(p.Age/p.Travel, 0, 1)
}

func lifeProgress(p *components.ParticleComponent) float64 {
	if p.Lifetime <= 0 {
		return 0
	}
	return utils.Clamp(p.Age/p.Lifetime, 0, 1)
}
