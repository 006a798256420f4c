package main

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/render"
	"github.com/decker502/heartbloom/pkg/scenes"
	"github.com/decker502/heartbloom/pkg/utils"
)

// errQuit 用户按下退出键
var errQuit = errors.New("quit")

// view 终端宿主：tcell 事件转成指针/点击/滚动，按固定帧率推进时钟并重绘
type view struct {
	ctx      *scenes.Context
	stages   *game.StageManager
	canvas   *canvas
	drawList *render.DrawList
	tick     time.Duration
	speed    float64
	pressed  bool
}

func newView(screen tcell.Screen, cfg *config.ExperienceConfig, seed int64, speed float64) *view {
	if speed <= 0 {
		speed = 1
	}
	v := &view{
		ctx:      scenes.NewContext(cfg, seed),
		stages:   game.NewStageManager(),
		canvas:   newCanvas(screen),
		drawList: render.NewDrawList(),
		tick:     time.Second / time.Duration(cfg.Window.TPS),
		speed:    speed,
	}
	v.stages.OnFinished = func() { log.Printf("[TermView] 信件已全部展开") }
	scenes.Register(v.stages, v.ctx)
	v.resize()
	return v
}

// start 挂载第一个阶段，stage 为空时从头开始
func (v *view) start(stage string) error {
	if stage != "" {
		return v.stages.StartAt(stage)
	}
	return v.stages.Start()
}

func (v *view) resize() {
	w, h := v.canvas.viewport()
	v.ctx.Resize(w, h)
}

func isQuitKey(k tcell.Key, r rune) bool {
	switch k {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return r == 'q' || r == 'Q'
	}
	return false
}

// handle 处理一个终端事件，返回 false 表示退出
func (v *view) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return !isQuitKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		v.canvas.screen.Sync()
		v.resize()
	case *tcell.EventMouse:
		x, y := ev.Position()
		v.mouse(x, y, ev.Buttons())
	}
	return true
}

// mouse 字符格坐标转成格子中心的像素坐标
func (v *view) mouse(col, row int, buttons tcell.ButtonMask) {
	x := (float64(col) + 0.5) * cellWidth
	y := (float64(row) + 0.5) * cellHeight
	v.ctx.Pointer.Move(x, y)

	down := buttons&tcell.Button1 != 0
	if down && !v.pressed {
		v.stages.Click(x, y)
	}
	v.pressed = down

	if buttons&tcell.WheelUp != 0 {
		v.stages.Scroll(-utils.WheelStep)
	}
	if buttons&tcell.WheelDown != 0 {
		v.stages.Scroll(utils.WheelStep)
	}
}

// frame 推进一帧并重绘
func (v *view) frame() {
	v.ctx.Clock.Advance(time.Duration(float64(v.tick) * v.speed))
	v.drawList.Reset()
	v.stages.Draw(v.drawList)
	v.canvas.Draw(v.drawList)
	v.canvas.screen.Show()
}

// run 事件泵和帧循环各占一个 goroutine，引擎只在帧循环里运行
func (v *view) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	events := make(chan tcell.Event, 64)
	fini := sync.OnceFunc(v.canvas.screen.Fini)
	defer fini()

	g.Go(func() error {
		for {
			// Fini 之后 PollEvent 返回 nil
			ev := v.canvas.screen.PollEvent()
			if ev == nil {
				return nil
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		defer fini()
		ticker := time.NewTicker(v.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev := <-events:
				if !v.handle(ev) {
					return errQuit
				}
			case <-ticker.C:
				v.frame()
			}
		}
	})

	err := g.Wait()
	v.stages.Shutdown()
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
