package main

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/scenes"
)

func newTestView(t *testing.T, stage string) (*view, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	v := newView(screen, config.Default(), 42, 1)
	if err := v.start(stage); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(v.stages.Shutdown)
	return v, screen
}

// advance 只推进时钟，不重绘
func advance(v *view, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += v.tick {
		v.ctx.Clock.Advance(v.tick)
	}
}

func screenText(screen tcell.SimulationScreen) string {
	cells, w, _ := screen.GetContents()
	var b strings.Builder
	for i, c := range cells {
		if len(c.Runes) > 0 {
			b.WriteRune(c.Runes[0])
		} else {
			b.WriteRune(' ')
		}
		if (i+1)%w == 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func TestViewViewport(t *testing.T) {
	v, _ := newTestView(t, "")
	vp := v.ctx.Viewport()
	if vp.Width != 640 || vp.Height != 384 {
		t.Errorf("viewport = %vx%v, want 640x384", vp.Width, vp.Height)
	}
}

func TestIsQuitKey(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
		want bool
	}{
		{"Esc", tcell.KeyEscape, 0, true},
		{"Ctrl-C", tcell.KeyCtrlC, 0, true},
		{"小写 q", tcell.KeyRune, 'q', true},
		{"大写 Q", tcell.KeyRune, 'Q', true},
		{"其他字符", tcell.KeyRune, 'x', false},
		{"回车", tcell.KeyEnter, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isQuitKey(tt.key, tt.r); got != tt.want {
				t.Errorf("isQuitKey(%v, %q) = %v, want %v", tt.key, tt.r, got, tt.want)
			}
		})
	}
}

func TestViewHandleQuit(t *testing.T) {
	v, _ := newTestView(t, "")
	if v.handle(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)) == false {
		t.Error("ordinary key should not quit")
	}
	if v.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("Esc should quit")
	}
}

func TestViewMouseOpensLetter(t *testing.T) {
	v, _ := newTestView(t, scenes.HeroStageName)
	advance(v, 2500*time.Millisecond)

	hero, ok := v.stages.Current().(*scenes.HeroStage)
	if !ok {
		t.Fatalf("current stage = %T, want *scenes.HeroStage", v.stages.Current())
	}
	r, ok := hero.ButtonBounds()
	if !ok {
		t.Fatal("button has no bounds")
	}
	cx, cy := r.Center()
	col, row := toCell(cx, cy)

	v.mouse(col, row, tcell.ButtonNone)
	if hero.Opened() {
		t.Fatal("moving without a press should not open")
	}
	v.mouse(col, row, tcell.Button1)
	if !hero.Opened() {
		t.Fatal("press over the button should open the letter")
	}
	// 按住不放不会重复点击
	v.mouse(col, row, tcell.Button1)
	if !v.pressed {
		t.Error("button should stay pressed")
	}
	v.mouse(col, row, tcell.ButtonNone)
	if v.pressed {
		t.Error("release should clear pressed")
	}
}

func TestViewWheelScrollsLetter(t *testing.T) {
	v, _ := newTestView(t, scenes.LetterStageName)
	advance(v, 100*time.Millisecond)

	v.mouse(10, 10, tcell.WheelDown)
	if got := v.ctx.Reveal.Scroll(); got != 60 {
		t.Errorf("scroll after wheel down = %v, want 60", got)
	}
	v.mouse(10, 10, tcell.WheelUp)
	if got := v.ctx.Reveal.Scroll(); got != 0 {
		t.Errorf("scroll after wheel up = %v, want 0", got)
	}
}

func TestViewFrameDrawsLoading(t *testing.T) {
	v, screen := newTestView(t, "")
	for elapsed := time.Duration(0); elapsed < 2500*time.Millisecond; elapsed += v.tick {
		v.frame()
	}
	text := screenText(screen)
	if !strings.Contains(text, "just for you") {
		t.Errorf("screen should show the subtitle:\n%s", text)
	}
	if !strings.ContainsRune(text, '♥') {
		t.Errorf("screen should show a heart:\n%s", text)
	}
}

func TestViewResize(t *testing.T) {
	v, screen := newTestView(t, scenes.LetterStageName)
	screen.SetSize(40, 30)
	v.handle(tcell.NewEventResize(40, 30))
	vp := v.ctx.Viewport()
	if vp.Width != 320 || vp.Height != 480 {
		t.Errorf("viewport after resize = %vx%v, want 320x480", vp.Width, vp.Height)
	}
	if got := v.ctx.Reveal.ViewportHeight(); got != 480 {
		t.Errorf("reveal viewport = %v, want 480", got)
	}
}
