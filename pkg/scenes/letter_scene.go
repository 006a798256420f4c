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
)

// 信件页图层
const (
	letterPetalLayer = "letter.petals"
	letterCardLayer  = "letter.card"
)

// 信件页布局（内容坐标系，滚动前）
const (
	letterMaxWidth      = 800.0
	letterMargin        = 32.0
	letterCardPadding   = 48.0
	letterHeadingSize   = 40.0
	letterBodySize      = 18.0
	letterSignatureSize = 22.0
	letterHeadingGap    = 32.0
	letterParagraphGap  = 20.0
	letterSignatureGap  = 12.0
	// 以视口高度为单位
	letterSectionPadding = 0.1
	letterSectionHeight  = 1.5
	letterCardMinHeight  = 0.8

	letterCardRise      = 100.0
	letterParagraphRise = 30.0
)

// LetterStage 信件页：滚动揭示的卡片与段落、飘落的花瓣、跟随指针倾斜的卡片
//
// 卡片和每个段落（含署名）各自观察一次滚动揭示；全部揭示动画播放结束后阶段完成。
type LetterStage struct {
	baseStage

	petals *systems.ParticleSystem
	tilt   *systems.TiltController

	card       *element
	paragraphs []*element

	cardTimeline *systems.Timeline
	timelines    []*systems.Timeline

	// revealed 已播放完揭示动画的元素数（卡片 + 段落）
	revealed int
	viewport game.Viewport
}

// NewLetterStage 创建信件页
func NewLetterStage(ctx *Context) *LetterStage {
	return &LetterStage{baseStage: newBaseStage(LetterStageName, ctx)}
}

type letterLayout struct {
	card    game.Rect
	heading textBlock
	// 正文段落，最后一项为署名
	paragraphs []textBlock
	content    float64
}

// blocks 段落和署名的文本
func (s *LetterStage) blocks() []string {
	cfg := s.ctx.Config.Letter
	texts := make([]string, 0, len(cfg.Paragraphs)+1)
	texts = append(texts, cfg.Paragraphs...)
	return append(texts, cfg.Signature)
}

func (s *LetterStage) layout() letterLayout {
	vp := s.ctx.Viewport()
	cx := vp.Width / 2
	cardW := min(letterMaxWidth, vp.Width-2*letterMargin)
	inner := cardW - 2*letterCardPadding
	top := letterSectionPadding * vp.Height

	var l letterLayout
	l.heading = layoutText(s.ctx.Config.Letter.Heading, letterHeadingSize, inner, cx, top+letterCardPadding)
	y := l.heading.bottom() + letterHeadingGap
	texts := s.blocks()
	for i, text := range texts {
		size := letterBodySize
		if i == len(texts)-1 {
			size = letterSignatureSize
			y += letterSignatureGap
		}
		tb := layoutText(text, size, inner, cx, y)
		l.paragraphs = append(l.paragraphs, tb)
		y = tb.bottom() + letterParagraphGap
	}

	cardH := max(letterCardMinHeight*vp.Height, y-letterParagraphGap+letterCardPadding-top)
	l.card = game.Rect{X: cx - cardW/2, Y: top, W: cardW, H: cardH}
	l.content = max(letterSectionHeight*vp.Height, l.card.Y+l.card.H+top)
	return l
}

// CardBounds 卡片在内容坐标系中的包围盒
func (s *LetterStage) CardBounds() (game.Rect, bool) {
	if !s.mounted {
		return game.Rect{}, false
	}
	return s.layout().card, true
}

// cardScreenBounds 卡片在视口中的包围盒（扣除滚动）
func (s *LetterStage) cardScreenBounds() (game.Rect, bool) {
	r, ok := s.CardBounds()
	if !ok {
		return r, false
	}
	r.Y -= s.ctx.Reveal.Scroll()
	return r, true
}

func (s *LetterStage) paragraphBounds(i int) systems.RevealFunc {
	return func() (game.Rect, bool) {
		if !s.mounted {
			return game.Rect{}, false
		}
		l := s.layout()
		if i >= len(l.paragraphs) {
			return game.Rect{}, false
		}
		return l.paragraphs[i].bounds(), true
	}
}

// Mount 设置滚动区域、注册揭示观察者、启动花瓣和倾斜
func (s *LetterStage) Mount() error {
	s.begin()
	cfg := s.ctx.Config.Letter

	s.card = newElement()
	s.revealed = 0
	s.viewport = game.Viewport{}
	s.timelines = s.timelines[:0]
	s.paragraphs = s.paragraphs[:0]

	var err error
	s.cardTimeline, err = s.newTimeline([]systems.TimelineStep{{
		ID:         "card",
		Effect:     "rise",
		Offset:     systems.AtOrigin(0),
		Duration:   config.Millis(cfg.CardMs),
		Ease:       cfg.CardEase,
		OnUpdate:   s.card.fadeUp(letterCardRise, 1),
		OnComplete: s.markRevealed,
	}}, systems.TimelineOptions{Name: "letter.card"})
	if err != nil {
		return err
	}

	for i := range s.blocks() {
		el := newElement()
		s.paragraphs = append(s.paragraphs, el)
		tl, err := s.newTimeline([]systems.TimelineStep{{
			ID:         "paragraph",
			Effect:     "rise",
			Offset:     systems.AtOrigin(time.Duration(i) * config.Millis(cfg.ParagraphStaggerMs)),
			Duration:   config.Millis(cfg.ParagraphMs),
			Ease:       cfg.ParagraphEase,
			OnUpdate:   el.fadeUp(letterParagraphRise, 1),
			OnComplete: s.markRevealed,
		}}, systems.TimelineOptions{Name: fmt.Sprintf("letter.paragraph.%d", i)})
		if err != nil {
			return err
		}
		s.timelines = append(s.timelines, tl)
	}

	// 滚动区域属于共享的揭示控制器，卸载时恢复
	s.disposer.Defer(func() {
		s.ctx.Reveal.SetContentHeight(0)
		s.ctx.Reveal.SetScroll(0)
	})
	s.syncViewport()
	s.ctx.Reveal.SetScroll(0)

	if err := s.observe(systems.RevealFunc(s.CardBounds), cfg.CardThreshold, s.cardTimeline); err != nil {
		return err
	}
	for i, tl := range s.timelines {
		if err := s.observe(s.paragraphBounds(i), cfg.ParagraphThreshold, tl); err != nil {
			return err
		}
	}

	factory, err := entities.NewPetalFactory(cfg)
	if err != nil {
		return fmt.Errorf("letter petals: %w", err)
	}
	if s.petals, err = s.newEmitter("petals", letterPetalLayer, cfg.Petals, factory); err != nil {
		return err
	}

	s.tilt, err = systems.NewTiltController(s.ctx.Pointer, s.cardScreenBounds, cfg.TiltMaxAngle, cfg.TiltSmoothing, s.ctx.TouchOnly)
	if err != nil {
		return err
	}
	s.onFrame(func(dt time.Duration) {
		s.syncViewport()
		s.tilt.Update(dt)
	})

	s.petals.Start()
	// 首屏内已经可见的元素立即揭示
	s.ctx.Reveal.Update()
	log.Printf("[LetterStage] 挂载完成，观察 %d 个元素，触屏=%v", len(s.timelines)+1, s.ctx.TouchOnly)
	return nil
}

func (s *LetterStage) observe(target systems.RevealTarget, threshold float64, tl *systems.Timeline) error {
	sub, err := s.ctx.Reveal.Observe(target, threshold, func() { s.play(tl) })
	if err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	s.track(sub)
	return nil
}

// syncViewport 视口变化后更新滚动区域高度并重新检查揭示
func (s *LetterStage) syncViewport() {
	vp := s.ctx.Viewport()
	if vp == s.viewport {
		return
	}
	s.viewport = vp
	s.ctx.Reveal.SetContentHeight(s.layout().content)
	s.ctx.Reveal.Update()
}

func (s *LetterStage) markRevealed() {
	s.revealed++
	if s.revealed == len(s.timelines)+1 {
		s.complete()
	}
}

// Revealed 已完成揭示的元素数
func (s *LetterStage) Revealed() int {
	return s.revealed
}

// Scroll 滚动信件，dy>0 向下
func (s *LetterStage) Scroll(dy float64) {
	if !s.mounted {
		return
	}
	s.ctx.Reveal.ScrollBy(dy)
}

// Tilt 卡片倾斜控制器
func (s *LetterStage) Tilt() *systems.TiltController {
	return s.tilt
}

// Draw 输出信件页，卡片内容随滚动上移，花瓣固定在视口上
func (s *LetterStage) Draw(dl *render.DrawList) {
	if !s.mounted {
		return
	}
	cfg := s.ctx.Config.Letter
	scroll := s.ctx.Reveal.Scroll()
	l := s.layout()

	dl.Background = s.ctx.Config.Window.Background
	dl.SetLayer(letterPetalLayer, render.Identity())
	card := s.tilt.Transform()
	card.OffsetY += s.card.OffsetY
	card.Opacity = s.card.alpha()
	dl.SetLayer(letterCardLayer, card)

	s.petals.Draw(dl)

	dl.AddPanel(render.Panel{
		Layer:   letterCardLayer,
		X:       l.card.X,
		Y:       l.card.Y - scroll,
		W:       l.card.W,
		H:       l.card.H,
		Opacity: 0.95,
		Color:   cfg.CardColor,
		Border:  cfg.InkColor,
	})
	l.heading.draw(dl, letterCardLayer, &element{Opacity: 1, Scale: 1}, -scroll, cfg.InkColor)
	for i, tb := range l.paragraphs {
		if i < len(s.paragraphs) {
			tb.draw(dl, letterCardLayer, s.paragraphs[i], -scroll, cfg.InkColor)
		}
	}
}
