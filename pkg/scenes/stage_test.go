package scenes

import (
	"math"
	"testing"
	"time"

	"github.com/decker502/heartbloom/pkg/components"
	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/ecs"
	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/render"
)

const frame = time.Second / 60

func newTestContext(t *testing.T) *Context {
	t.Helper()
	return NewContext(config.Default(), 42)
}

// advance 按 60fps 推进时钟
func advance(ctx *Context, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += frame {
		ctx.Clock.Advance(frame)
	}
}

func assertReleased(t *testing.T, ctx *Context, stage interface{ LiveHandles() int }) {
	t.Helper()
	if n := ctx.Clock.Pending(); n != 0 {
		t.Errorf("clock pending = %d, want 0", n)
	}
	if n := ctx.Pointer.SubscriberCount(); n != 0 {
		t.Errorf("pointer subscribers = %d, want 0", n)
	}
	if n := ctx.Reveal.Observed(); n != 0 {
		t.Errorf("reveal observers = %d, want 0", n)
	}
	if n := ctx.Director.ActiveCount(); n != 0 {
		t.Errorf("active timelines = %d, want 0", n)
	}
	if n := stage.LiveHandles(); n != 0 {
		t.Errorf("live handles = %d, want 0", n)
	}
}

func TestLoadingStageCompletes(t *testing.T) {
	ctx := newTestContext(t)
	stage := NewLoadingStage(ctx)
	done := 0
	stage.SetOnComplete(func() { done++ })
	if err := stage.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	advance(ctx, 3*time.Second)
	if stage.HeartScale() <= 0 {
		t.Errorf("heart scale = %v, want > 0 after reveal", stage.HeartScale())
	}
	if stage.Particles().Live() == 0 {
		t.Error("expected rising particles after 3s")
	}

	dl := render.NewDrawList()
	stage.Draw(dl)
	if render.Count[render.Text](dl) == 0 || render.Count[render.Panel](dl) != 1 {
		t.Errorf("draw: %d texts, %d panels", render.Count[render.Text](dl), render.Count[render.Panel](dl))
	}
	if dl.Background == "" {
		t.Error("background not set")
	}

	advance(ctx, 4*time.Second)
	if done != 0 {
		t.Fatalf("completed early at %v", ctx.Clock.Now())
	}
	advance(ctx, time.Second)
	if done != 1 || !stage.Completed() {
		t.Fatalf("done = %d after %v, want 1", done, ctx.Clock.Now())
	}

	advance(ctx, 10*time.Second)
	if done != 1 {
		t.Errorf("onComplete fired %d times, want 1", done)
	}

	stage.Unmount()
	assertReleased(t, ctx, stage)
}

func TestLoadingStageHeartPulses(t *testing.T) {
	ctx := newTestContext(t)
	stage := NewLoadingStage(ctx)
	if err := stage.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer stage.Unmount()

	advance(ctx, 2500*time.Millisecond)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < 120; i++ {
		advance(ctx, frame)
		v := stage.HeartScale()
		lo, hi = min(lo, v), max(hi, v)
	}
	if lo < 1-1e-9 || hi > ctx.Config.Loading.PulseScale+1e-9 {
		t.Errorf("pulse range [%v, %v] outside [1, %v]", lo, hi, ctx.Config.Loading.PulseScale)
	}
	if hi-lo < 0.1 {
		t.Errorf("pulse range [%v, %v] too flat", lo, hi)
	}
}

func TestHeroStageButton(t *testing.T) {
	ctx := newTestContext(t)
	stage := NewHeroStage(ctx)
	done := 0
	stage.SetOnComplete(func() { done++ })
	if err := stage.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	r, ok := stage.ButtonBounds()
	if !ok || r.Empty() {
		t.Fatalf("button bounds = %+v, %v", r, ok)
	}
	cx, cy := r.Center()

	// 按钮还没出现
	stage.Click(cx, cy)
	if stage.Opened() {
		t.Fatal("click before the button appears should be ignored")
	}

	advance(ctx, 2500*time.Millisecond)

	t.Run("悬停放大", func(t *testing.T) {
		ctx.Pointer.Move(cx, cy)
		if !stage.Hovered() {
			t.Fatal("pointer over button should hover")
		}
		advance(ctx, 500*time.Millisecond)
		if got := stage.ButtonScale(); math.Abs(got-ctx.Config.Hero.HoverScale) > 1e-9 {
			t.Errorf("hover scale = %v, want %v", got, ctx.Config.Hero.HoverScale)
		}
		ctx.Pointer.Leave()
		advance(ctx, 500*time.Millisecond)
		if stage.Hovered() {
			t.Error("hover should end when the pointer leaves")
		}
		if got := stage.ButtonScale(); math.Abs(got-1) > 1e-9 {
			t.Errorf("scale after leave = %v, want 1", got)
		}
	})

	t.Run("点击按钮外无效", func(t *testing.T) {
		stage.Click(r.X-10, r.Y-10)
		if stage.Opened() {
			t.Error("click outside the button opened the letter")
		}
	})

	stage.Click(cx, cy)
	if !stage.Opened() {
		t.Fatal("click on the button should open")
	}
	stage.Click(cx, cy)
	advance(ctx, 1500*time.Millisecond)
	if done != 1 {
		t.Errorf("done = %d, want 1", done)
	}

	stage.Unmount()
	assertReleased(t, ctx, stage)
}

func TestHeroStageParallax(t *testing.T) {
	ctx := newTestContext(t)
	stage := NewHeroStage(ctx)
	if err := stage.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer stage.Unmount()

	vp := ctx.Viewport()
	ctx.Pointer.Move(vp.Width, vp.Height/2)
	advance(ctx, 5*time.Second)

	x, y := stage.Parallax().Offset()
	want := 0.5 * ctx.Config.Hero.ParallaxGain
	if math.Abs(math.Abs(x)-want) > 1e-6 || math.Abs(y) > 1e-6 {
		t.Errorf("parallax offset = (%v, %v), want |x| = %v, y = 0", x, y, want)
	}

	// 指针移到一颗星上
	found := false
	stage.stars.Each(func(_ ecs.EntityID, p components.ParticleComponent) {
		if !found {
			ctx.Pointer.Move(p.X, p.Y)
			found = true
		}
	})
	if !found {
		t.Fatal("no stars")
	}

	dl := render.NewDrawList()
	stage.Draw(dl)
	if render.Count[render.Sprite](dl) < ctx.Config.Hero.FloatingDots {
		t.Errorf("sprites = %d, want at least %d dots", render.Count[render.Sprite](dl), ctx.Config.Hero.FloatingDots)
	}
	if render.Count[render.Line](dl) == 0 {
		t.Error("pointer on a star should draw constellation links")
	}
}

func TestLetterStageReveals(t *testing.T) {
	ctx := newTestContext(t)
	stage := NewLetterStage(ctx)
	done := 0
	stage.SetOnComplete(func() { done++ })
	if err := stage.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	total := len(ctx.Config.Letter.Paragraphs) + 2

	card, ok := stage.CardBounds()
	if !ok || card.W > letterMaxWidth {
		t.Fatalf("card bounds = %+v, %v", card, ok)
	}

	stage.Scroll(1e6)
	if ctx.Reveal.Scroll() <= 0 {
		t.Fatal("letter should be scrollable")
	}
	advance(ctx, 4*time.Second)
	if got := stage.Revealed(); got != total {
		t.Fatalf("revealed = %d, want %d", got, total)
	}
	if done != 1 {
		t.Fatalf("done = %d, want 1", done)
	}

	t.Run("往回滚动不会重复揭示", func(t *testing.T) {
		stage.Scroll(-1e6)
		stage.Scroll(1e6)
		advance(ctx, 4*time.Second)
		if got := stage.Revealed(); got != total {
			t.Errorf("revealed = %d, want %d", got, total)
		}
		if done != 1 {
			t.Errorf("done = %d, want 1", done)
		}
	})

	dl := render.NewDrawList()
	stage.Draw(dl)
	if got := render.Count[render.Text](dl); got < total {
		t.Errorf("texts = %d, want at least %d", got, total)
	}

	stage.Unmount()
	assertReleased(t, ctx, stage)
}

func TestLetterStageTiltDisabledOnTouch(t *testing.T) {
	ctx := newTestContext(t)
	ctx.TouchOnly = true
	stage := NewLetterStage(ctx)
	if err := stage.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer stage.Unmount()

	ctx.Pointer.Move(0, 0)
	advance(ctx, time.Second)
	if !stage.Tilt().Disabled() {
		t.Fatal("tilt should be disabled on touch devices")
	}
	if rx, ry := stage.Tilt().Angles(); rx != 0 || ry != 0 {
		t.Errorf("angles = (%v, %v), want 0", rx, ry)
	}
}

func TestUnmountReleasesEverything(t *testing.T) {
	tests := []struct {
		name  string
		stage func(*Context) Stage
	}{
		{"加载页", func(c *Context) Stage { return NewLoadingStage(c) }},
		{"首屏", func(c *Context) Stage { return NewHeroStage(c) }},
		{"信件页", func(c *Context) Stage { return NewLetterStage(c) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t)
			stage := tt.stage(ctx)
			done := 0
			stage.SetOnComplete(func() { done++ })
			if err := stage.Mount(); err != nil {
				t.Fatalf("Mount: %v", err)
			}
			advance(ctx, 1500*time.Millisecond)
			ctx.Pointer.Move(100, 100)
			advance(ctx, frame)

			stage.Unmount()
			stage.Unmount()
			assertReleased(t, ctx, stage.(interface{ LiveHandles() int }))

			before := done
			ctx.Pointer.Move(200, 200)
			advance(ctx, 20*time.Second)
			if done != before {
				t.Errorf("onComplete fired after unmount")
			}
			if n := ctx.Clock.Pending(); n != 0 {
				t.Errorf("clock pending after unmount = %d", n)
			}
		})
	}
}

func TestLetterStageUnmountResetsScroll(t *testing.T) {
	ctx := newTestContext(t)
	stage := NewLetterStage(ctx)
	if err := stage.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	advance(ctx, 100*time.Millisecond)
	stage.Scroll(1e6)
	limit := ctx.Reveal.Scroll()
	if limit <= 0 {
		t.Fatalf("scroll = %v, want > 0", limit)
	}

	stage.Unmount()
	if got := ctx.Reveal.Scroll(); got != 0 {
		t.Errorf("scroll after unmount = %v, want 0", got)
	}
	// 内容高度清零后不再有上限
	ctx.Reveal.SetScroll(limit + 500)
	if got := ctx.Reveal.Scroll(); got != limit+500 {
		t.Errorf("content height should be cleared, scroll = %v, want %v", got, limit+500)
	}
}

func TestRemountStartsFresh(t *testing.T) {
	ctx := newTestContext(t)
	stage := NewHeroStage(ctx)
	for i := 0; i < 2; i++ {
		if err := stage.Mount(); err != nil {
			t.Fatalf("Mount #%d: %v", i, err)
		}
		if stage.Opened() || stage.Completed() {
			t.Fatalf("mount #%d carried state from the previous mount", i)
		}
		advance(ctx, 2500*time.Millisecond)
		r, _ := stage.ButtonBounds()
		stage.Click(r.Center())
		advance(ctx, 1500*time.Millisecond)
		if !stage.Completed() {
			t.Fatalf("mount #%d did not complete", i)
		}
		stage.Unmount()
		assertReleased(t, ctx, stage)
	}
}

func TestStageFlow(t *testing.T) {
	ctx := newTestContext(t)
	sm := game.NewStageManager()
	finished := 0
	sm.OnFinished = func() { finished++ }
	Register(sm, ctx)

	if err := sm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := sm.Current().Name(); got != LoadingStageName {
		t.Fatalf("first stage = %q", got)
	}

	advance(ctx, 8*time.Second)
	hero, ok := sm.Current().(*HeroStage)
	if !ok {
		t.Fatalf("after loading current = %q, want hero", sm.Current().Name())
	}
	if n := len(sm.Mounted()); n != 1 {
		t.Fatalf("mounted = %d, want 1", n)
	}

	advance(ctx, 2500*time.Millisecond)
	r, _ := hero.ButtonBounds()
	sm.Click(r.Center())
	advance(ctx, 1500*time.Millisecond)
	if got := sm.Current().Name(); got != LetterStageName {
		t.Fatalf("after opening current = %q, want letter", got)
	}
	if n := ctx.Pointer.SubscriberCount(); n != 0 {
		t.Errorf("hero left %d pointer subscribers", n)
	}

	sm.Scroll(1e6)
	advance(ctx, 4*time.Second)
	if !sm.Finished() || finished != 1 {
		t.Fatalf("finished = %v (%d calls)", sm.Finished(), finished)
	}
	if got := sm.Current().Name(); got != LetterStageName {
		t.Errorf("last stage should stay mounted, current = %q", got)
	}

	dl := render.NewDrawList()
	sm.Draw(dl)
	if len(dl.Commands) == 0 {
		t.Error("letter should keep drawing after the flow finishes")
	}

	sm.Shutdown()
	if n := ctx.Clock.Pending(); n != 0 {
		t.Errorf("clock pending after shutdown = %d", n)
	}
}

func TestContextResize(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Resize(390, 844)
	if vp := ctx.Viewport(); vp.Width != 390 || vp.Height != 844 {
		t.Errorf("viewport = %+v", vp)
	}
	if h := ctx.Reveal.ViewportHeight(); h != 844 {
		t.Errorf("reveal viewport = %v", h)
	}

	stage := NewLetterStage(ctx)
	if err := stage.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer stage.Unmount()
	card, _ := stage.CardBounds()
	if card.W != 390-2*letterMargin {
		t.Errorf("card width on narrow screen = %v", card.W)
	}
}
