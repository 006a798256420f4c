// Package app 提供体验的 ebiten 宿主
//
// 该包把阶段管理、输入轮询和渲染适配器组装成 ebiten.Game，
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/render"
	"github.com/decker502/heartbloom/pkg/scenes"
	"github.com/decker502/heartbloom/pkg/utils"
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath YAML 配置文件路径，为空使用内置默认值
	ConfigPath string
	// StartAt 从指定阶段开始（"loading"、"hero"、"letter"），为空从头开始
	StartAt string
	// Speed 时间倍率，<=0 视为 1（调试用）
	Speed float64
	// Seed 粒子随机种子，0 使用当前时间
	Seed int64
}

// App 是体验的核心包装器，实现 ebiten.Game 接口
type App struct {
	cfg      *config.ExperienceConfig
	ctx      *scenes.Context
	stages   *game.StageManager
	drag     *DragManager
	renderer *Renderer
	drawList *render.DrawList

	width, height int
	tick          time.Duration
	speed         float64
	verbose       bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// LoadExperience 读取配置文件，路径为空时返回默认配置
func LoadExperience(path string) (*config.ExperienceConfig, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("配置加载失败: %w", err)
	}
	log.Printf("[Config] 加载配置文件: %s", path)
	return cfg, nil
}

// NewApp 创建并初始化应用，挂载第一个阶段
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	exp, err := LoadExperience(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}

	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ctx := scenes.NewContext(exp, seed)
	ctx.TouchOnly = utils.IsMobile()

	stages := game.NewStageManager()
	stages.OnFinished = func() { log.Printf("[App] 信件已全部展开") }
	scenes.Register(stages, ctx)

	speed := cfg.Speed
	if speed <= 0 {
		speed = 1
	}
	a := &App{
		cfg:      exp,
		ctx:      ctx,
		stages:   stages,
		drag:     NewDragManager(),
		renderer: renderer,
		drawList: render.NewDrawList(),
		width:    exp.Window.Width,
		height:   exp.Window.Height,
		tick:     time.Second / time.Duration(exp.Window.TPS),
		speed:    speed,
		verbose:  cfg.Verbose,
	}

	if cfg.StartAt != "" {
		log.Printf("[App] 从阶段 %s 开始", cfg.StartAt)
		err = stages.StartAt(cfg.StartAt)
	} else {
		err = stages.Start()
	}
	if err != nil {
		return nil, fmt.Errorf("阶段启动失败: %w", err)
	}
	log.Printf("[App] 启动完成: %dx%d, TPS=%d, 倍率 %.2f, 触屏=%v", a.width, a.height, exp.Window.TPS, speed, ctx.TouchOnly)
	return a, nil
}

// Update 更新逻辑
// 每个 tick 调用一次：先应用输入，再推进时钟
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.cfg.Window.Width, a.cfg.Window.Height)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", a.cfg.Window.Width, a.cfg.Window.Height)
			a.pendingWindowSizeReset = false
		}
	}

	if !utils.IsMobile() {
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			return ebiten.Termination
		}
		// F11 切换全屏
		if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
			a.toggleFullscreen()
		}
	}

	a.applyInput(PollInput(a.drag, a.width, a.height))
	a.step()
	return nil
}

func (a *App) toggleFullscreen() {
	if !ebiten.IsFullscreen() {
		ebiten.SetFullscreen(true)
		return
	}
	// 退出全屏
	ebiten.SetFullscreen(false)
	if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
		ebiten.RestoreWindow()
	}
	// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
	a.pendingWindowSizeReset = true
	a.windowSizeResetCountdown = 3
	log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
}

// applyInput 把一帧的输入交给指针跟踪器和阶段
func (a *App) applyInput(in InputFrame) {
	if in.HasPointer {
		a.ctx.Pointer.Move(in.X, in.Y)
	} else {
		a.ctx.Pointer.Leave()
	}
	if in.Clicked {
		a.stages.Click(in.ClickX, in.ClickY)
	}
	if in.ScrollDY != 0 {
		a.stages.Scroll(in.ScrollDY)
	}
}

// step 推进一个逻辑帧
func (a *App) step() {
	a.ctx.Clock.Advance(time.Duration(float64(a.tick) * a.speed))
}

// Draw 绘制画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.drawList.Reset()
	a.stages.Draw(a.drawList)
	a.renderer.Draw(screen, a.drawList)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 逻辑屏幕跟随窗口尺寸，尺寸变化时通知阶段重新排版
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 && (outsideWidth != a.width || outsideHeight != a.height) {
		a.width, a.height = outsideWidth, outsideHeight
		a.ctx.Resize(float64(outsideWidth), float64(outsideHeight))
	}
	return a.width, a.height
}

// Experience 返回生效的配置
func (a *App) Experience() *config.ExperienceConfig {
	return a.cfg
}

// Stages 返回阶段管理器
func (a *App) Stages() *game.StageManager {
	return a.stages
}

// Shutdown 卸载所有阶段
func (a *App) Shutdown() {
	a.stages.Shutdown()
	log.Printf("[App] 已退出")
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
