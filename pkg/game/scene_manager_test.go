package game

import (
	"errors"
	"testing"
	"time"

	"github.com/decker502/heartbloom/pkg/render"
)

// mockStage 在挂载时注册一个周期定时器，到期后发出完成信号
type mockStage struct {
	name       string
	clock      *Clock
	finishAt   time.Duration
	disposer   *Disposer
	onComplete func()
	mountErr   error
	ticks      int
	drawCalled bool
	clicks     int
	unmounts   int
}

func (m *mockStage) Name() string            { return m.name }
func (m *mockStage) SetOnComplete(fn func()) { m.onComplete = fn }
func (m *mockStage) Click(x, y float64)      { m.clicks++ }

func (m *mockStage) Mount() error {
	m.disposer = NewDisposer(m.name)
	if m.mountErr != nil {
		return m.mountErr
	}
	m.disposer.Track(m.clock.Every(10*time.Millisecond, func() { m.ticks++ }))
	if m.finishAt > 0 {
		m.disposer.Track(m.clock.AfterFunc(m.finishAt, func() { m.onComplete() }))
	}
	return nil
}

func (m *mockStage) Unmount() {
	m.unmounts++
	m.disposer.Dispose()
}

func (m *mockStage) Draw(dl *render.DrawList) {
	m.drawCalled = true
}

func TestStageManagerAdvancesInOrder(t *testing.T) {
	c := NewClock()
	sm := NewStageManager()
	var created []*mockStage
	factory := func(name string, finish time.Duration) StageFactory {
		return func() Stage {
			s := &mockStage{name: name, clock: c, finishAt: finish}
			created = append(created, s)
			return s
		}
	}
	sm.Register("loading", factory("loading", 100*time.Millisecond))
	sm.Register("hero", factory("hero", 200*time.Millisecond))
	sm.Register("letter", factory("letter", 50*time.Millisecond))

	finished := 0
	sm.OnFinished = func() { finished++ }

	if err := sm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sm.Current().Name() != "loading" {
		t.Fatalf("Current = %s, want loading", sm.Current().Name())
	}

	c.Advance(100 * time.Millisecond)
	if sm.Current().Name() != "hero" {
		t.Fatalf("after loading completes Current = %s, want hero", sm.Current().Name())
	}
	if created[0].unmounts != 1 || created[0].disposer.Live() != 0 {
		t.Error("loading stage was not torn down")
	}

	c.Advance(200 * time.Millisecond)
	c.Advance(50 * time.Millisecond)
	if sm.Current().Name() != "letter" {
		t.Fatalf("Current = %s, want letter", sm.Current().Name())
	}
	if !sm.Finished() || finished != 1 {
		t.Errorf("Finished = %v, OnFinished calls = %d", sm.Finished(), finished)
	}
	if len(sm.Mounted()) != 1 {
		t.Errorf("Mounted = %d stages, want 1", len(sm.Mounted()))
	}

	sm.Shutdown()
	if c.Pending() != 0 {
		t.Errorf("clock still has %d registrations after Shutdown", c.Pending())
	}
}

func TestStageManagerConcurrentStages(t *testing.T) {
	c := NewClock()
	sm := NewStageManager()
	a := &mockStage{name: "a", clock: c}
	b := &mockStage{name: "b", clock: c, finishAt: 30 * time.Millisecond}

	if err := sm.Mount(a); err != nil {
		t.Fatal(err)
	}
	if err := sm.Mount(b); err != nil {
		t.Fatal(err)
	}

	c.Advance(30 * time.Millisecond)
	if len(sm.Mounted()) != 1 || sm.Current() != a {
		t.Fatalf("b should be unmounted on completion, mounted = %d", len(sm.Mounted()))
	}
	before := a.ticks
	c.Advance(30 * time.Millisecond)
	if a.ticks != before+3 {
		t.Errorf("stage a was disturbed by b's teardown: ticks %d -> %d", before, a.ticks)
	}

	dl := render.NewDrawList()
	sm.Draw(dl)
	sm.Click(1, 2)
	if !a.drawCalled || a.clicks != 1 {
		t.Error("Draw/Click not forwarded to mounted stage")
	}
}

func TestStageManagerErrors(t *testing.T) {
	t.Run("未注册阶段", func(t *testing.T) {
		sm := NewStageManager()
		if err := sm.Start(); !errors.Is(err, ErrNoStages) {
			t.Errorf("Start error = %v, want ErrNoStages", err)
		}
	})

	t.Run("挂载失败时释放资源", func(t *testing.T) {
		c := NewClock()
		sm := NewStageManager()
		bad := &mockStage{name: "bad", clock: c, mountErr: errors.New("boom")}
		if err := sm.Mount(bad); err == nil {
			t.Fatal("expected mount error")
		}
		if bad.unmounts != 1 {
			t.Errorf("failed stage unmount count = %d, want 1", bad.unmounts)
		}
		if len(sm.Mounted()) != 0 {
			t.Error("failed stage should not be mounted")
		}
	})

	t.Run("没有挂载阶段时绘制", func(t *testing.T) {
		sm := NewStageManager()
		sm.Draw(render.NewDrawList())
		if sm.Current() != nil {
			t.Error("Current should be nil")
		}
	})
}
