package systems

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/decker502/heartbloom/pkg/components"
	"github.com/decker502/heartbloom/pkg/ecs"
	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/render"
)

// ErrInvalidSpawnConfig 发射参数不合法（间隔或上限非正数、工厂为空）
var ErrInvalidSpawnConfig = errors.New("invalid spawn config")

// ParticleFactory 每次发射调用一次，返回新粒子的初始状态
type ParticleFactory func(vp game.Viewport, rng *rand.Rand) components.ParticleComponent

// RetireHook 粒子退役时调用，每个粒子最多一次
type RetireHook func(id ecs.EntityID, p *components.ParticleComponent)

// ParticleStats 粒子系统统计
type ParticleStats struct {
	Live    int
	Spawned int
	Dropped int
	Retired int
}

// ParticleSystem 管理一组同类粒子：按节奏发射、每帧推进、按边界或寿命退役
//
// 粒子存放在 ecs.EntityManager 的槽位数组中，退役的槽位被清零后复用，
// 但 EntityID 带代数，不会被复用。
//
// 生命周期：
//   - Configure 设置发射间隔、同时存活上限和工厂
//   - Start 启动发射计时器并注册每帧回调，Stop 只停止发射
//   - Clear 立即退役所有粒子并停止发射
//   - Cancel 等同于 Clear 并注销每帧回调，之后系统不再响应 Start
type ParticleSystem struct {
	name     string
	clock    *game.Clock
	viewport func() game.Viewport
	rng      *rand.Rand

	particles *ecs.EntityManager[components.ParticleComponent]
	emitter   components.EmitterComponent
	factory   ParticleFactory

	spawnTimer *game.Timer
	frame      *game.FrameCallback
	cancelled  bool
	inTick     bool

	// Layer 绘制时使用的图层名
	Layer string
	// OnRetire 退役回调
	OnRetire RetireHook

	linkSource    *PointerTracker
	linkThreshold float64
	linkColor     string
}

// NewParticleSystem 创建粒子系统，viewport 提供当前视口尺寸（用于反射和越界判定）
func NewParticleSystem(name string, clock *game.Clock, viewport func() game.Viewport, rng *rand.Rand) *ParticleSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if viewport == nil {
		viewport = func() game.Viewport { return game.Viewport{} }
	}
	return &ParticleSystem{
		name:      name,
		clock:     clock,
		viewport:  viewport,
		rng:       rng,
		particles: ecs.NewEntityManager[components.ParticleComponent](32),
		Layer:     name,
	}
}

// Name 返回系统名称
func (ps *ParticleSystem) Name() string {
	return ps.name
}

// Configure 设置发射间隔、同时存活上限和粒子工厂
// 运行中重新配置会以新的间隔重启发射计时器
func (ps *ParticleSystem) Configure(spawnInterval time.Duration, maxConcurrent int, factory ParticleFactory) error {
	if spawnInterval <= 0 {
		return fmt.Errorf("%s: spawn interval %v: %w", ps.name, spawnInterval, ErrInvalidSpawnConfig)
	}
	if maxConcurrent <= 0 {
		return fmt.Errorf("%s: max concurrent %d: %w", ps.name, maxConcurrent, ErrInvalidSpawnConfig)
	}
	if factory == nil {
		return fmt.Errorf("%s: nil factory: %w", ps.name, ErrInvalidSpawnConfig)
	}

	ps.emitter.SpawnInterval = spawnInterval
	ps.emitter.SpawnMaxActive = maxConcurrent
	ps.factory = factory
	log.Printf("[ParticleSystem] %s: 配置 interval=%v max=%d", ps.name, spawnInterval, maxConcurrent)

	if ps.emitter.Active {
		ps.stopSpawning()
		ps.startSpawning()
	}
	return nil
}

// EnableLinks 开启星座连线：指针 threshold 像素范围内的粒子与指针连线
func (ps *ParticleSystem) EnableLinks(pointer *PointerTracker, threshold float64, color string) {
	ps.linkSource = pointer
	ps.linkThreshold = threshold
	ps.linkColor = color
}

// Start 启动发射节奏和每帧推进，重复调用无副作用
func (ps *ParticleSystem) Start() {
	if ps.cancelled || ps.factory == nil {
		return
	}
	if ps.frame == nil {
		ps.frame = ps.clock.OnFrame(ps.Tick)
	}
	if !ps.emitter.Active {
		ps.startSpawning()
		log.Printf("[ParticleSystem] %s: 开始发射", ps.name)
	}
}

func (ps *ParticleSystem) startSpawning() {
	ps.emitter.Active = true
	ps.spawnTimer = ps.clock.Every(ps.emitter.SpawnInterval, func() { ps.spawn() })
}

// Stop 停止发射，已有粒子继续运动直到退役
func (ps *ParticleSystem) Stop() {
	if ps.emitter.Active {
		ps.stopSpawning()
		log.Printf("[ParticleSystem] %s: 停止发射", ps.name)
	}
}

func (ps *ParticleSystem) stopSpawning() {
	ps.emitter.Active = false
	if ps.spawnTimer != nil {
		ps.spawnTimer.Cancel()
		ps.spawnTimer = nil
	}
}

// Spawning 发射计时器是否在运行
func (ps *ParticleSystem) Spawning() bool {
	return ps.emitter.Active
}

// spawn 生成一个粒子，达到上限时丢弃本次请求
func (ps *ParticleSystem) spawn() (ecs.EntityID, bool) {
	if ps.factory == nil || ps.cancelled {
		return ecs.InvalidEntity, false
	}
	if ps.particles.Len() >= ps.emitter.SpawnMaxActive {
		ps.emitter.TotalDropped++
		return ecs.InvalidEntity, false
	}
	p := ps.factory(ps.viewport(), ps.rng)
	p.Retired = false
	id := ps.particles.CreateEntity(p)
	ps.emitter.TotalLaunched++
	return id, true
}

// Burst 立即尝试生成 n 个粒子，返回实际生成的数量
func (ps *ParticleSystem) Burst(n int) int {
	spawned := 0
	for i := 0; i < n; i++ {
		if _, ok := ps.spawn(); ok {
			spawned++
		}
	}
	return spawned
}

// Prefill 生成 n 个粒子并把路径粒子随机推进到途中，用于一开始就铺满的静态粒子场
func (ps *ParticleSystem) Prefill(n int) int {
	spawned := 0
	vp := ps.viewport()
	for i := 0; i < n; i++ {
		id, ok := ps.spawn()
		if !ok {
			continue
		}
		spawned++
		p, _ := ps.particles.GetComponent(id)
		// 停在终点前，避免预填充的粒子立刻退役
		switch {
		case p.Motion == components.MotionPath && p.Travel > 0:
			stepParticle(p, ps.rng.Float64()*p.Travel*0.9, vp)
		case p.Lifetime > 0:
			stepParticle(p, ps.rng.Float64()*p.Lifetime*0.9, vp)
		}
	}
	return spawned
}

// Tick 推进所有存活粒子 dt，并回收需要退役的粒子
func (ps *ParticleSystem) Tick(dt time.Duration) {
	if ps.inTick {
		return
	}
	ps.inTick = true
	defer func() { ps.inTick = false }()

	seconds := dt.Seconds()
	vp := ps.viewport()
	ps.particles.Each(func(id ecs.EntityID, p *components.ParticleComponent) {
		if p.Retired {
			return
		}
		if stepParticle(p, seconds, vp) {
			ps.retire(id, p)
		}
	})
	ps.particles.RemoveMarkedEntities()
}

// retire 退役粒子：标记、回调、延迟释放槽位
func (ps *ParticleSystem) retire(id ecs.EntityID, p *components.ParticleComponent) {
	if p.Retired {
		return
	}
	p.Retired = true
	ps.emitter.TotalRetired++
	if ps.OnRetire != nil {
		ps.OnRetire(id, p)
	}
	ps.particles.DestroyEntity(id)
}

// Clear 立即退役所有粒子并停止发射
func (ps *ParticleSystem) Clear() {
	ps.stopSpawning()
	ps.particles.Each(func(id ecs.EntityID, p *components.ParticleComponent) {
		ps.retire(id, p)
	})
	n := ps.particles.RemoveMarkedEntities()
	if n > 0 {
		log.Printf("[ParticleSystem] %s: 清除 %d 个粒子", ps.name, n)
	}
}

// Cancel 清空粒子并注销所有时钟注册，实现 game.Cancelable
func (ps *ParticleSystem) Cancel() bool {
	if ps.cancelled {
		return false
	}
	ps.Clear()
	if ps.frame != nil {
		ps.frame.Cancel()
		ps.frame = nil
	}
	ps.cancelled = true
	return true
}

// Active 系统是否仍然可用
func (ps *ParticleSystem) Active() bool {
	return !ps.cancelled
}

// Live 返回存活粒子数量
func (ps *ParticleSystem) Live() int {
	return ps.particles.Len()
}

// Stats 返回统计信息
func (ps *ParticleSystem) Stats() ParticleStats {
	return ParticleStats{
		Live:    ps.particles.Len(),
		Spawned: ps.emitter.TotalLaunched,
		Dropped: ps.emitter.TotalDropped,
		Retired: ps.emitter.TotalRetired,
	}
}

// Each 遍历所有存活粒子（只读）
func (ps *ParticleSystem) Each(fn func(id ecs.EntityID, p components.ParticleComponent)) {
	ps.particles.Each(func(id ecs.EntityID, p *components.ParticleComponent) {
		if !p.Retired {
			fn(id, *p)
		}
	})
}

// Particle 按ID读取粒子快照，已退役的粒子返回 false
func (ps *ParticleSystem) Particle(id ecs.EntityID) (components.ParticleComponent, bool) {
	p, ok := ps.particles.GetComponent(id)
	if !ok || p.Retired {
		return components.ParticleComponent{}, false
	}
	return *p, true
}

// Draw 输出所有存活粒子的绘制指令，开启连线时附带连线指令
func (ps *ParticleSystem) Draw(dl *render.DrawList) {
	ps.particles.Each(func(_ ecs.EntityID, p *components.ParticleComponent) {
		if p.Retired {
			return
		}
		dl.AddSprite(render.Sprite{
			Layer:    ps.Layer,
			Glyph:    p.Glyph,
			X:        p.X,
			Y:        p.Y,
			Size:     p.Size,
			Opacity:  p.Opacity,
			Rotation: p.Rotation,
			Color:    p.Color,
		})
	})

	if ps.linkSource == nil {
		return
	}
	for _, link := range ps.Links(ps.linkSource.State(), ps.linkThreshold) {
		dl.AddLine(render.Line{
			Layer:   ps.Layer,
			X1:      link.X1,
			Y1:      link.Y1,
			X2:      link.X2,
			Y2:      link.Y2,
			Width:   1,
			Opacity: link.Opacity,
			Color:   ps.linkColor,
		})
	}
}
