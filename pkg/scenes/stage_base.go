package scenes

import (
	"fmt"
	"log"
	"time"

	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/systems"
)

// baseStage 阶段的公共部分：名称、Disposer、一次性完成信号
//
// 所有通过 baseStage 创建的句柄都登记到当前挂载的 Disposer。
type baseStage struct {
	name       string
	ctx        *Context
	disposer   *game.Disposer
	onComplete func()
	mounted    bool
	completed  bool
}

func newBaseStage(name string, ctx *Context) baseStage {
	return baseStage{name: name, ctx: ctx}
}

// Name 阶段名称
func (b *baseStage) Name() string {
	return b.name
}

// SetOnComplete 设置完成回调
func (b *baseStage) SetOnComplete(fn func()) {
	b.onComplete = fn
}

// begin 开始一次挂载
func (b *baseStage) begin() {
	b.disposer = game.NewDisposer(b.name)
	b.mounted = true
	b.completed = false
}

// Unmount 释放本次挂载创建的全部句柄，可重复调用
func (b *baseStage) Unmount() {
	if b.disposer != nil {
		b.disposer.Dispose()
	}
	b.mounted = false
}

// Mounted 是否处于挂载状态
func (b *baseStage) Mounted() bool {
	return b.mounted
}

// Completed 本次挂载是否已经发出完成信号
func (b *baseStage) Completed() bool {
	return b.completed
}

// LiveHandles 仍然有效的句柄数量，卸载后为 0
func (b *baseStage) LiveHandles() int {
	if b.disposer == nil {
		return 0
	}
	return b.disposer.Live()
}

// complete 发出完成信号，每次挂载最多一次
func (b *baseStage) complete() {
	if !b.mounted || b.completed {
		return
	}
	b.completed = true
	log.Printf("[Stage] %s: 完成", b.name)
	if b.onComplete != nil {
		b.onComplete()
	}
}

func (b *baseStage) track(h game.Cancelable) {
	b.disposer.Track(h)
}

func (b *baseStage) onFrame(fn func(dt time.Duration)) *game.FrameCallback {
	f := b.ctx.Clock.OnFrame(fn)
	b.track(f)
	return f
}

func (b *baseStage) subscribePointer(fn func(systems.PointerState)) *systems.Subscription {
	sub := b.ctx.Pointer.Subscribe(fn)
	b.track(sub)
	return sub
}

// newParticles 创建并配置一个粒子系统，Layer 为图层名
func (b *baseStage) newParticles(name, layer string, interval time.Duration, maxConcurrent int, factory systems.ParticleFactory) (*systems.ParticleSystem, error) {
	ps := systems.NewParticleSystem(b.name+"."+name, b.ctx.Clock, b.ctx.Viewport, b.ctx.Rand)
	if err := ps.Configure(interval, maxConcurrent, factory); err != nil {
		return nil, err
	}
	ps.Layer = layer
	b.track(ps)
	return ps, nil
}

// newEmitter 按发射配置创建粒子系统
func (b *baseStage) newEmitter(name, layer string, cfg config.EmitterConfig, factory systems.ParticleFactory) (*systems.ParticleSystem, error) {
	return b.newParticles(name, layer, cfg.SpawnInterval(), cfg.MaxConcurrent, factory)
}

func (b *baseStage) newTimeline(steps []systems.TimelineStep, opts systems.TimelineOptions) (*systems.Timeline, error) {
	tl, err := b.ctx.Director.Build(steps, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.name, err)
	}
	b.track(tl)
	return tl, nil
}

func (b *baseStage) play(tl *systems.Timeline) {
	b.ctx.Director.Play(tl, systems.PlayOptions{})
}

func (b *baseStage) newTween(from, to float64, d time.Duration, ease string, opts systems.TweenOptions) (*systems.Tween, error) {
	tw, err := systems.NewTween(b.ctx.Clock, from, to, d, ease, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.name, err)
	}
	b.track(tw)
	return tw, nil
}
