package scenes

import (
	"fmt"
	"log"
	"time"

	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/entities"
	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/render"
	"github.com/decker502/heartbloom/pkg/systems"
	"github.com/decker502/heartbloom/pkg/utils"
)

// 首屏图层
const (
	heroBackgroundLayer = "hero.background"
	heroSkyLayer        = "hero.sky"
	heroDotLayer        = "hero.dots"
	heroContentLayer    = "hero.content"
	heroButtonLayer     = "hero.button"
)

// 首屏布局
const (
	heroMaxWidth      = 800.0
	heroSubtitleSize  = 20.0
	heroButtonSize    = 22.0
	heroButtonPadX    = 48.0
	heroButtonHeight  = 64.0
	heroTitleGap      = 16.0
	heroButtonGap     = 48.0
	heroTitleRise     = 100.0
	heroSubtextRise   = 40.0
	heroSubtextAlpha  = 0.8
	heroButtonFrom    = 0.8
	heroOpenGrowth    = 0.1
	heroHoverEase     = "power1.out"
	starRespawnPeriod = 250 * time.Millisecond
	dotFieldInterval  = time.Second
)

// HeroStage 首屏：入场时间轴、鼠标视差背景、星空与流星、浮动光点、
// 带磁吸和悬停缩放的按钮。点击按钮播放 "open" 时间轴，结束即阶段完成。
type HeroStage struct {
	baseStage

	intro *systems.Timeline
	open  *systems.Timeline

	parallax *systems.ParallaxController
	magnet   *systems.MagneticAttractor
	hover    *systems.Tween

	dots    *systems.ParticleSystem
	stars   *systems.ParticleSystem
	meteors *systems.ParticleSystem

	section *element
	title   *element
	subtext *element
	button  *element
	exit    float64

	opened  bool
	hovered bool
}

// NewHeroStage 创建首屏
func NewHeroStage(ctx *Context) *HeroStage {
	return &HeroStage{baseStage: newBaseStage(HeroStageName, ctx)}
}

type heroLayout struct {
	title    textBlock
	subtitle textBlock
	button   game.Rect
	label    textBlock
}

// layout 按当前视口居中排版标题、副标题和按钮
func (s *HeroStage) layout() heroLayout {
	cfg := s.ctx.Config.Hero
	vp := s.ctx.Viewport()
	cx, cy := vp.Width/2, vp.Height/2
	maxW := min(heroMaxWidth, vp.Width-64)
	titleSize := utils.Clamp(vp.Width*0.08, 40, 88)

	var l heroLayout
	l.title = layoutText(cfg.Title, titleSize, maxW, cx, 0)
	l.subtitle = layoutText(cfg.Subtitle, heroSubtitleSize, maxW, cx, 0)
	l.label = layoutText(cfg.Button, heroButtonSize, maxW, cx, 0)
	bw := l.label.width + 2*heroButtonPadX

	total := l.title.height() + heroTitleGap + l.subtitle.height() + heroButtonGap + heroButtonHeight
	l.title.y = cy - total/2
	l.subtitle.y = l.title.bottom() + heroTitleGap
	l.button = game.Rect{X: cx - bw/2, Y: l.subtitle.bottom() + heroButtonGap, W: bw, H: heroButtonHeight}
	l.label.y = l.button.Y + (heroButtonHeight-l.label.height())/2
	return l
}

// ButtonBounds 按钮未变换时的包围盒
func (s *HeroStage) ButtonBounds() (game.Rect, bool) {
	if !s.mounted {
		return game.Rect{}, false
	}
	return s.layout().button, true
}

// Mount 创建入场/打开时间轴、视差、磁吸、粒子场并开始入场
func (s *HeroStage) Mount() error {
	s.begin()
	cfg := s.ctx.Config.Hero

	s.section = newElement()
	s.title = newElement()
	s.subtext = newElement()
	s.button = newElement()
	s.button.Scale = heroButtonFrom
	s.exit = 0
	s.opened = false
	s.hovered = false

	var err error
	s.intro, err = s.newTimeline([]systems.TimelineStep{
		{
			ID:       "section",
			Effect:   "fade-in",
			Offset:   systems.AtOrigin(0),
			Duration: config.Millis(cfg.SectionMs),
			OnUpdate: func(p float64) { s.section.Opacity = p },
		},
		{
			ID:       "title",
			Effect:   "rise",
			Offset:   systems.AfterPrevious(-config.Millis(cfg.TitleOverlapMs)),
			Duration: config.Millis(cfg.TitleMs),
			OnUpdate: s.title.fadeUp(heroTitleRise, 1),
		},
		{
			ID:       "subtext",
			Effect:   "rise",
			Offset:   systems.AfterPrevious(-config.Millis(cfg.SubtextOverlapMs)),
			Duration: config.Millis(cfg.SubtextMs),
			OnUpdate: s.subtext.fadeUp(heroSubtextRise, heroSubtextAlpha),
		},
		{
			ID:       "button",
			Effect:   "pop",
			Offset:   systems.AfterPrevious(-config.Millis(cfg.ButtonOverlapMs)),
			Duration: config.Millis(cfg.ButtonMs),
			Ease:     cfg.ButtonEase,
			OnUpdate: func(p float64) {
				s.button.Opacity = p
				s.button.Scale = heroButtonFrom + (1-heroButtonFrom)*p
			},
		},
	}, systems.TimelineOptions{Name: "hero.intro", DefaultEase: cfg.DefaultEase})
	if err != nil {
		return err
	}

	s.open, err = s.newTimeline([]systems.TimelineStep{
		{
			ID:       "open",
			Effect:   "open-heart",
			Offset:   systems.AtOrigin(0),
			Duration: config.Millis(cfg.OpenMs),
			Ease:     cfg.OpenEase,
			OnUpdate: func(p float64) { s.exit = p },
		},
	}, systems.TimelineOptions{Name: "hero.open", OnComplete: s.complete})
	if err != nil {
		return err
	}

	if s.parallax, err = systems.NewParallaxController(s.ctx.Pointer, cfg.ParallaxGain, cfg.ParallaxSmoothing); err != nil {
		return err
	}
	s.onFrame(s.parallax.Update)

	s.magnet, err = systems.NewMagneticAttractor(s.ctx.Pointer, s.ButtonBounds, cfg.MagnetRadius, cfg.MagnetGain, cfg.MagnetSmoothing)
	if err != nil {
		return err
	}
	s.onFrame(func(dt time.Duration) { s.magnet.Update(dt) })

	if s.hover, err = s.newTween(1, 1, config.Millis(cfg.HoverMs), heroHoverEase, systems.TweenOptions{}); err != nil {
		return err
	}
	s.subscribePointer(s.onPointer)

	if err := s.mountParticles(cfg); err != nil {
		return err
	}

	s.play(s.intro)
	log.Printf("[HeroStage] 挂载完成，入场时间轴时长 %v", s.intro.Duration())
	return nil
}

func (s *HeroStage) mountParticles(cfg config.HeroConfig) error {
	if cfg.FloatingDots > 0 {
		factory, err := entities.NewFloatingDotFactory(cfg)
		if err != nil {
			return fmt.Errorf("hero dots: %w", err)
		}
		if s.dots, err = s.newParticles("dots", heroDotLayer, dotFieldInterval, cfg.FloatingDots, factory); err != nil {
			return err
		}
		// 静态粒子场：一次铺满，只推进不再发射
		s.dots.Prefill(cfg.FloatingDots)
		s.onFrame(s.dots.Tick)
	}

	if cfg.Stars.Count > 0 {
		factory, err := entities.NewStarFactory(cfg.Stars)
		if err != nil {
			return fmt.Errorf("hero stars: %w", err)
		}
		if s.stars, err = s.newParticles("stars", heroSkyLayer, starRespawnPeriod, cfg.Stars.Count, factory); err != nil {
			return err
		}
		s.stars.EnableLinks(s.ctx.Pointer, cfg.Stars.LinkThreshold, cfg.Stars.Color)
		s.stars.Prefill(cfg.Stars.Count)
		s.stars.Start()
	}

	factory, err := entities.NewMeteorFactory(cfg)
	if err != nil {
		return fmt.Errorf("hero meteors: %w", err)
	}
	if s.meteors, err = s.newEmitter("meteors", heroSkyLayer, cfg.Meteors, factory); err != nil {
		return err
	}
	s.meteors.Start()
	return nil
}

// onPointer 指针进出按钮时切换悬停缩放
func (s *HeroStage) onPointer(st systems.PointerState) {
	r, ok := s.ButtonBounds()
	inside := ok && st.Valid && r.Contains(st.X, st.Y)
	if inside == s.hovered {
		return
	}
	s.hovered = inside
	cfg := s.ctx.Config.Hero
	target := 1.0
	if inside {
		target = cfg.HoverScale
	}
	s.hover.Retarget(target, config.Millis(cfg.HoverMs))
}

// Click 点击按钮打开信件，只响应一次
func (s *HeroStage) Click(x, y float64) {
	if !s.mounted || s.opened || s.button.alpha() <= 0 {
		return
	}
	r, ok := s.ButtonBounds()
	if !ok || !r.Contains(x, y) {
		return
	}
	s.opened = true
	log.Printf("[HeroStage] 按钮点击，播放打开动画")
	s.play(s.open)
}

// Opened 按钮是否已被点击
func (s *HeroStage) Opened() bool {
	return s.opened
}

// Hovered 指针是否停留在按钮上
func (s *HeroStage) Hovered() bool {
	return s.hovered
}

// ButtonScale 按钮当前缩放（入场 × 悬停）
func (s *HeroStage) ButtonScale() float64 {
	if s.button == nil || s.hover == nil {
		return 0
	}
	return s.button.Scale * s.hover.Value()
}

// Parallax 背景视差控制器
func (s *HeroStage) Parallax() *systems.ParallaxController {
	return s.parallax
}

// Draw 输出首屏
func (s *HeroStage) Draw(dl *render.DrawList) {
	if !s.mounted {
		return
	}
	cfg := s.ctx.Config.Hero
	vp := s.ctx.Viewport()
	cx, cy := vp.Width/2, vp.Height/2
	l := s.layout()

	dl.Background = s.ctx.Config.Window.Background

	sky := s.parallax.Transform()
	sky.Opacity = s.section.alpha()
	dl.SetLayer(heroBackgroundLayer, sky)
	dl.SetLayer(heroSkyLayer, sky)

	contentAlpha := s.section.alpha() * (1 - s.exit)
	growth := 1 + heroOpenGrowth*s.exit
	dl.SetLayer(heroContentLayer, render.Transform{Scale: growth, Opacity: contentAlpha, OriginX: cx, OriginY: cy})
	dl.SetLayer(heroDotLayer, render.Transform{Scale: 1, Opacity: contentAlpha})

	btn := s.magnet.Transform()
	btn.Scale = s.ButtonScale() * growth
	btn.Opacity = contentAlpha * s.button.alpha()
	btn.OriginX, btn.OriginY = l.button.Center()
	dl.SetLayer(heroButtonLayer, btn)

	// 背景比视口大 20%，视差平移时不露边
	dl.AddPanel(render.Panel{
		Layer:   heroBackgroundLayer,
		X:       -0.1 * vp.Width,
		Y:       -0.1 * vp.Height,
		W:       1.2 * vp.Width,
		H:       1.2 * vp.Height,
		Opacity: 0.2,
		Color:   cfg.AccentColor,
	})
	if s.stars != nil {
		s.stars.Draw(dl)
	}
	s.meteors.Draw(dl)
	if s.dots != nil {
		s.dots.Draw(dl)
	}

	l.title.draw(dl, heroContentLayer, s.title, 0, cfg.TextColor)
	l.subtitle.draw(dl, heroContentLayer, s.subtext, 0, cfg.TextColor)

	dl.AddPanel(render.Panel{
		Layer:   heroButtonLayer,
		X:       l.button.X,
		Y:       l.button.Y,
		W:       l.button.W,
		H:       l.button.H,
		Opacity: 0.25,
		Color:   "white",
		Border:  "white",
	})
	l.label.draw(dl, heroButtonLayer, &element{Opacity: 1, Scale: 1}, 0, cfg.TextColor)
}
