package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/decker502/heartbloom/pkg/scenes"
)

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	if cfg.Seed == 0 {
		cfg.Seed = 7
	}
	a, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	t.Cleanup(a.Shutdown)
	return a
}

func TestNewAppStartsWithLoading(t *testing.T) {
	a := newTestApp(t, Config{})
	if got := a.Stages().Current().Name(); got != scenes.LoadingStageName {
		t.Errorf("first stage = %q, want loading", got)
	}
}

func TestNewAppStartAt(t *testing.T) {
	a := newTestApp(t, Config{StartAt: scenes.LetterStageName})
	if got := a.Stages().Current().Name(); got != scenes.LetterStageName {
		t.Errorf("stage = %q, want letter", got)
	}

	if _, err := NewApp(Config{StartAt: "credits", Seed: 1}); err == nil {
		t.Error("unknown stage should fail")
	}
}

func TestNewAppConfigFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("window:\n  tps: 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := newTestApp(t, Config{ConfigPath: good})
	if a.tick != 33333333 {
		t.Errorf("tick = %v, want 1/30s", a.tick)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("loading:\n  pulse_ease: wobble\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewApp(Config{ConfigPath: bad, Seed: 1}); err == nil {
		t.Error("invalid config should fail")
	}
	if _, err := NewApp(Config{ConfigPath: filepath.Join(dir, "missing.yaml"), Seed: 1}); err == nil {
		t.Error("missing config should fail")
	}
}

func TestApplyInput(t *testing.T) {
	a := newTestApp(t, Config{})

	a.applyInput(InputFrame{X: 320, Y: 180, HasPointer: true})
	st := a.ctx.Pointer.State()
	if !st.Valid || st.X != 320 || st.Y != 180 {
		t.Errorf("pointer state = %+v", st)
	}

	a.applyInput(InputFrame{})
	if a.ctx.Pointer.State().Valid {
		t.Error("no pointer in frame should leave the viewport")
	}
}

func TestStepDrivesStages(t *testing.T) {
	a := newTestApp(t, Config{Speed: 4})

	// 4 倍速下约 2 秒走完加载页
	for i := 0; i < 2*60; i++ {
		a.step()
	}
	hero, ok := a.Stages().Current().(*scenes.HeroStage)
	if !ok {
		t.Fatalf("current = %q, want hero", a.Stages().Current().Name())
	}

	for i := 0; i < 60; i++ {
		a.step()
	}
	r, _ := hero.ButtonBounds()
	x, y := r.Center()
	a.applyInput(InputFrame{X: x, Y: y, HasPointer: true, Clicked: true, ClickX: x, ClickY: y})
	for i := 0; i < 60; i++ {
		a.step()
	}
	if got := a.Stages().Current().Name(); got != scenes.LetterStageName {
		t.Fatalf("current = %q, want letter", got)
	}

	a.applyInput(InputFrame{ScrollDY: 1e6})
	for i := 0; i < 60; i++ {
		a.step()
	}
	if !a.Stages().Finished() {
		t.Error("flow should finish after scrolling through the letter")
	}
}

func TestLayoutResizes(t *testing.T) {
	a := newTestApp(t, Config{})
	w, h := a.Layout(390, 844)
	if w != 390 || h != 844 {
		t.Errorf("Layout = %dx%d", w, h)
	}
	if vp := a.ctx.Viewport(); vp.Width != 390 || vp.Height != 844 {
		t.Errorf("viewport = %+v", vp)
	}
	if w, h := a.Layout(0, 0); w != 390 || h != 844 {
		t.Errorf("zero size should keep the last layout, got %dx%d", w, h)
	}
}
