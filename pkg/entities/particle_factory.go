// Package entities 把配置中的粒子参数转换为粒子工厂
//
// 工厂在创建时解析并校验全部数值字符串，之后每次发射只做随机采样，不会失败。
package entities

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/decker502/heartbloom/internal/particle"
	"github.com/decker502/heartbloom/pkg/components"
	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/systems"
)

// 粒子路径的纵向端点（相对视口高度）
const (
	heartStartFactor = 1.1
	heartEndFactor   = -0.1
	petalStartY      = -50.0
	petalEndFactor   = 2.0
)

// 流星、星星、浮动光点的透明度曲线
const (
	meteorOpacityCurve = "0,0 0.1,1 0.7,1 1,0"
	starTwinkleCurve   = "0,0 0.2,1 0.8,1 1,0"
	dotOpacity         = 0.6
)

// Look 解析后的粒子外观
type Look struct {
	Glyph   string
	Size    particle.Range
	Opacity particle.Range
	Spin    particle.Range
	Colors  []string
}

// NewLook 解析外观配置
func NewLook(cfg config.ParticleLook) (Look, error) {
	var l Look
	var err error
	l.Glyph = cfg.Glyph
	if l.Size, err = particle.ParseRange(cfg.Size); err != nil {
		return Look{}, fmt.Errorf("size: %w", err)
	}
	if l.Opacity, err = particle.ParseRange(cfg.Opacity); err != nil {
		return Look{}, fmt.Errorf("opacity: %w", err)
	}
	if l.Spin, err = particle.ParseRange(cfg.Spin); err != nil {
		return Look{}, fmt.Errorf("spin: %w", err)
	}
	if len(cfg.Colors) == 0 {
		return Look{}, errors.New("colors: at least one color required")
	}
	l.Colors = append([]string(nil), cfg.Colors...)
	return l, nil
}

func (l Look) color(rng *rand.Rand) string {
	return l.Colors[rng.Intn(len(l.Colors))]
}

// Path 解析后的单程路径参数
type Path struct {
	Travel particle.Range // 秒
	Drift  particle.Range // 像素
}

// NewPath 解析发射配置中的路径参数
func NewPath(cfg config.EmitterConfig) (Path, error) {
	travel, err := particle.ParseRange(cfg.Travel)
	if err != nil {
		return Path{}, fmt.Errorf("travel: %w", err)
	}
	if travel.Min <= 0 {
		return Path{}, fmt.Errorf("travel: %w: must be positive, got %s", particle.ErrInvalidValue, travel)
	}
	drift, err := particle.ParseRange(cfg.Drift)
	if err != nil {
		return Path{}, fmt.Errorf("drift: %w", err)
	}
	return Path{Travel: travel, Drift: drift}, nil
}

// pathParticle 生成一个从 (x, startY) 到 endY 的路径粒子
func pathParticle(rng *rand.Rand, look Look, path Path, x, startY, endY float64) components.ParticleComponent {
	opacity := look.Opacity.Sample(rng)
	return components.ParticleComponent{
		Motion:      components.MotionPath,
		X:           x,
		Y:           startY,
		StartX:      x,
		StartY:      startY,
		EndY:        endY,
		DriftX:      path.Drift.Sample(rng),
		Spin:        look.Spin.Sample(rng),
		Travel:      path.Travel.Sample(rng),
		Size:        look.Size.Sample(rng),
		Opacity:     opacity,
		BaseOpacity: opacity,
		Glyph:       look.Glyph,
		Color:       look.color(rng),
	}
}

// NewLoadingParticleFactory 加载页：从视口底部下方升起的爱心，按比例混入光斑
func NewLoadingParticleFactory(cfg config.LoadingConfig) (systems.ParticleFactory, error) {
	path, err := NewPath(cfg.Emitter)
	if err != nil {
		return nil, fmt.Errorf("loading emitter: %w", err)
	}
	heart, err := NewLook(cfg.Heart)
	if err != nil {
		return nil, fmt.Errorf("loading heart: %w", err)
	}
	bokeh, err := NewLook(cfg.Bokeh)
	if err != nil {
		return nil, fmt.Errorf("loading bokeh: %w", err)
	}
	ratio := cfg.BokehRatio

	return func(vp game.Viewport, rng *rand.Rand) components.ParticleComponent {
		look := heart
		if rng.Float64() < ratio {
			look = bokeh
		}
		x := rng.Float64() * vp.Width
		return pathParticle(rng, look, path, x, vp.Height*heartStartFactor, vp.Height*heartEndFactor)
	}, nil
}

// NewPetalFactory 信件页：从视口上方飘落的花瓣
func NewPetalFactory(cfg config.LetterConfig) (systems.ParticleFactory, error) {
	path, err := NewPath(cfg.Petals)
	if err != nil {
		return nil, fmt.Errorf("petals: %w", err)
	}
	look, err := NewLook(cfg.Petal)
	if err != nil {
		return nil, fmt.Errorf("petal: %w", err)
	}

	return func(vp game.Viewport, rng *rand.Rand) components.ParticleComponent {
		x := rng.Float64() * vp.Width
		return pathParticle(rng, look, path, x, petalStartY, vp.Height*petalEndFactor)
	}, nil
}

// NewMeteorFactory 首屏：从右上方斜向划过的流星，淡入后淡出
func NewMeteorFactory(cfg config.HeroConfig) (systems.ParticleFactory, error) {
	path, err := NewPath(cfg.Meteors)
	if err != nil {
		return nil, fmt.Errorf("meteors: %w", err)
	}
	curve, interp, err := particle.ParseKeyframes(meteorOpacityCurve)
	if err != nil {
		return nil, err
	}
	color := cfg.Stars.Color

	return func(vp game.Viewport, rng *rand.Rand) components.ParticleComponent {
		x := vp.Width * (0.4 + 0.6*rng.Float64())
		y := vp.Height * 0.3 * rng.Float64()
		look := Look{Glyph: "meteor", Size: particle.Range{Min: 2, Max: 3}, Opacity: particle.Fixed(1), Spin: particle.Fixed(0), Colors: []string{color}}
		p := pathParticle(rng, look, path, x, y, y+vp.Height*0.5)
		p.OpacityKeyframes = curve
		p.OpacityInterp = interp
		return p
	}, nil
}

// NewStarFactory 首屏星空：匀速漂移并在生命周期内淡入淡出
func NewStarFactory(cfg config.StarConfig) (systems.ParticleFactory, error) {
	size, err := particle.ParseRange(cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("stars size: %w", err)
	}
	speed, err := particle.ParseRange(cfg.Speed)
	if err != nil {
		return nil, fmt.Errorf("stars speed: %w", err)
	}
	opacity, err := particle.ParseRange(cfg.Opacity)
	if err != nil {
		return nil, fmt.Errorf("stars opacity: %w", err)
	}
	lifetime, err := particle.ParseRange(cfg.Lifetime)
	if err != nil {
		return nil, fmt.Errorf("stars lifetime: %w", err)
	}
	if lifetime.Min <= 0 {
		return nil, fmt.Errorf("stars lifetime: %w: must be positive, got %s", particle.ErrInvalidValue, lifetime)
	}
	curve, interp, err := particle.ParseKeyframes(starTwinkleCurve)
	if err != nil {
		return nil, err
	}

	return func(vp game.Viewport, rng *rand.Rand) components.ParticleComponent {
		base := opacity.Sample(rng)
		return components.ParticleComponent{
			Motion:           components.MotionDrift,
			X:                rng.Float64() * vp.Width,
			Y:                rng.Float64() * vp.Height,
			VX:               speed.Sample(rng),
			VY:               speed.Sample(rng),
			Size:             size.Sample(rng),
			BaseOpacity:      base,
			OpacityKeyframes: curve,
			OpacityInterp:    interp,
			Lifetime:         lifetime.Sample(rng),
			Glyph:            "star",
			Color:            cfg.Color,
		}
	}, nil
}

// NewFloatingDotFactory 首屏浮动光点：围绕随机基准点上下浮动，没有寿命
func NewFloatingDotFactory(cfg config.HeroConfig) (systems.ParticleFactory, error) {
	size, err := particle.ParseRange(cfg.DotSize)
	if err != nil {
		return nil, fmt.Errorf("dot size: %w", err)
	}
	amp, err := particle.ParseRange(cfg.DotAmplitude)
	if err != nil {
		return nil, fmt.Errorf("dot amplitude: %w", err)
	}
	period, err := particle.ParseRange(cfg.DotPeriod)
	if err != nil {
		return nil, fmt.Errorf("dot period: %w", err)
	}

	return func(vp game.Viewport, rng *rand.Rand) components.ParticleComponent {
		x := rng.Float64() * vp.Width
		y := rng.Float64() * vp.Height
		a := amp.Sample(rng)
		return components.ParticleComponent{
			Motion:      components.MotionFloat,
			X:           x,
			Y:           y,
			BaseX:       x,
			BaseY:       y,
			AmpX:        a * 0.3,
			AmpY:        a,
			Period:      period.Sample(rng),
			Phase:       rng.Float64() * 2 * math.Pi,
			Size:        size.Sample(rng),
			Opacity:     dotOpacity,
			BaseOpacity: dotOpacity,
			Glyph:       "dot",
			Color:       cfg.DotColor,
		}
	}, nil
}
