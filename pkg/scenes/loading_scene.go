package scenes

import (
	"fmt"
	"log"

	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/entities"
	"github.com/decker502/heartbloom/pkg/render"
	"github.com/decker502/heartbloom/pkg/systems"
)

// 加载页图层
const (
	loadingParticleLayer = "loading.particles"
	loadingContentLayer  = "loading.content"
)

// 加载页布局
const (
	loadingCardWidth  = 560.0
	loadingCardHeight = 380.0
	loadingTitleSize  = 36.0
	loadingSubSize    = 20.0
	loadingTextRise   = 30.0
)

// LoadingStage 加载页：持续升起的爱心与光斑、跳动的爱心、淡入的文字，
// 停留片刻后整体淡出，淡出结束即阶段完成。
type LoadingStage struct {
	baseStage

	particles *systems.ParticleSystem
	timeline  *systems.Timeline
	pulse     *systems.Tween

	heart *element
	text  *element
	// fade 整个容器的透明度，淡出时 1→0
	fade float64
}

// NewLoadingStage 创建加载页
func NewLoadingStage(ctx *Context) *LoadingStage {
	return &LoadingStage{baseStage: newBaseStage(LoadingStageName, ctx)}
}

// Mount 启动粒子、脉动和加载时间轴
func (s *LoadingStage) Mount() error {
	s.begin()
	cfg := s.ctx.Config.Loading

	s.heart = newElement()
	s.heart.Scale = 0
	s.text = newElement()
	s.fade = 1

	factory, err := entities.NewLoadingParticleFactory(cfg)
	if err != nil {
		return fmt.Errorf("loading particles: %w", err)
	}
	if s.particles, err = s.newEmitter("hearts", loadingParticleLayer, cfg.Emitter, factory); err != nil {
		return err
	}

	s.pulse, err = s.newTween(1, cfg.PulseScale, config.Millis(cfg.PulseMs), cfg.PulseEase, systems.TweenOptions{
		Repeat: systems.RepeatForever,
		Yoyo:   true,
	})
	if err != nil {
		return err
	}

	s.timeline, err = s.newTimeline([]systems.TimelineStep{
		{
			ID:       "text",
			Effect:   "fade-in",
			Offset:   systems.AtOrigin(config.Millis(cfg.TextDelayMs)),
			Duration: config.Millis(cfg.TextMs),
			Ease:     cfg.TextEase,
			OnUpdate: s.text.fadeUp(loadingTextRise, 1),
		},
		{
			ID:       "heart",
			Effect:   "scale-in",
			Offset:   systems.WithPrevious(0),
			Duration: config.Millis(cfg.RevealMs),
			Ease:     cfg.RevealEase,
			OnUpdate: func(p float64) {
				s.heart.Scale = p
				s.heart.Opacity = p
			},
		},
		{
			ID:       "fade",
			Effect:   "fade-out",
			Offset:   systems.AfterStep("text", config.Millis(cfg.HoldMs)),
			Duration: config.Millis(cfg.FadeMs),
			Ease:     cfg.FadeEase,
			OnUpdate: func(p float64) { s.fade = 1 - p },
		},
	}, systems.TimelineOptions{Name: "loading", OnComplete: s.complete})
	if err != nil {
		return err
	}

	s.particles.Start()
	s.pulse.Start()
	s.play(s.timeline)
	log.Printf("[LoadingStage] 挂载完成，时间轴时长 %v", s.timeline.Duration())
	return nil
}

// HeartScale 爱心当前缩放（揭示 × 脉动）
func (s *LoadingStage) HeartScale() float64 {
	if s.heart == nil || s.pulse == nil {
		return 0
	}
	return s.heart.Scale * s.pulse.Value()
}

// Particles 粒子系统
func (s *LoadingStage) Particles() *systems.ParticleSystem {
	return s.particles
}

// Draw 输出加载页
func (s *LoadingStage) Draw(dl *render.DrawList) {
	if !s.mounted {
		return
	}
	cfg := s.ctx.Config.Loading
	vp := s.ctx.Viewport()
	cx, cy := vp.Width/2, vp.Height/2

	dl.Background = s.ctx.Config.Window.Background
	dl.SetLayer(loadingParticleLayer, render.Transform{Scale: 1, Opacity: s.fade})
	dl.SetLayer(loadingContentLayer, render.Transform{Scale: 1, Opacity: s.fade, OriginX: cx, OriginY: cy})

	s.particles.Draw(dl)

	cardW := min(loadingCardWidth, vp.Width-32)
	dl.AddPanel(render.Panel{
		Layer:   loadingContentLayer,
		X:       cx - cardW/2,
		Y:       cy - loadingCardHeight/2,
		W:       cardW,
		H:       loadingCardHeight,
		Opacity: 0.25,
		Color:   "white",
		Border:  "white",
	})

	if scale := s.HeartScale(); scale > 0 {
		dl.AddSprite(render.Sprite{
			Layer:   loadingContentLayer,
			Glyph:   "heart",
			X:       cx,
			Y:       cy - 70,
			Size:    cfg.PulseMaxSize / cfg.PulseScale,
			Opacity: s.heart.alpha(),
			Scale:   scale,
			Color:   cfg.HeartColor,
		})
	}

	title := layoutText(cfg.Title, loadingTitleSize, cardW-48, cx, cy+20)
	title.draw(dl, loadingContentLayer, s.text, 0, cfg.TextColor)
	sub := layoutText(cfg.Subtitle, loadingSubSize, cardW-48, cx, title.bottom()+8)
	sub.draw(dl, loadingContentLayer, s.text, 0, cfg.TextColor)
}
