// Package scenes 实现体验的三个阶段：Loading → Hero → Letter
//
// 每个阶段在 Mount 时创建自己的时间轴、粒子系统和输入订阅，并全部登记到阶段的
// Disposer；Unmount 之后时钟上不会残留该阶段的任何定时器或每帧回调。
package scenes

import (
	"math/rand"

	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/systems"
)

// Stage 阶段接口
type Stage = game.Stage

// 阶段名称，也是 StageManager 中的注册名
const (
	LoadingStageName = "loading"
	HeroStageName    = "hero"
	LetterStageName  = "letter"
)

// Context 所有阶段共享的运行环境
//
// 指针跟踪器和滚动揭示控制器在进程内唯一，阶段只订阅它们，不拥有它们。
type Context struct {
	Config   *config.ExperienceConfig
	Clock    *game.Clock
	Pointer  *systems.PointerTracker
	Reveal   *systems.ScrollRevealController
	Director *systems.TimelineDirector
	Rand     *rand.Rand
	// TouchOnly 触屏设备，阶段挂载时读取一次，关闭倾斜效果
	TouchOnly bool
}

// NewContext 按配置的窗口尺寸创建共享环境
func NewContext(cfg *config.ExperienceConfig, seed int64) *Context {
	if cfg == nil {
		cfg = config.Default()
	}
	w, h := float64(cfg.Window.Width), float64(cfg.Window.Height)
	clock := game.NewClock()
	return &Context{
		Config:   cfg,
		Clock:    clock,
		Pointer:  systems.NewPointerTracker(w, h),
		Reveal:   systems.NewScrollRevealController(h),
		Director: systems.NewTimelineDirector(clock),
		Rand:     rand.New(rand.NewSource(seed)),
	}
}

// Viewport 返回当前视口
func (c *Context) Viewport() game.Viewport {
	return c.Pointer.Viewport()
}

// Resize 视口尺寸变化
func (c *Context) Resize(width, height float64) {
	c.Pointer.Resize(width, height)
	c.Reveal.SetViewport(height)
}

// Register 按顺序注册三个阶段
func Register(sm *game.StageManager, ctx *Context) {
	sm.Register(LoadingStageName, func() game.Stage { return NewLoadingStage(ctx) })
	sm.Register(HeroStageName, func() game.Stage { return NewHeroStage(ctx) })
	sm.Register(LetterStageName, func() game.Stage { return NewLetterStage(ctx) })
}
