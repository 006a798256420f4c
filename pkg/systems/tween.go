package systems

import (
	"fmt"
	"time"

	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/utils"
)

// RepeatForever 无限循环
const RepeatForever = -1

// TweenOptions 补间选项
type TweenOptions struct {
	// Repeat 额外重复次数，RepeatForever 表示无限
	Repeat int
	// Yoyo 每次重复时反向播放
	Yoyo bool
	// OnUpdate 每帧回调当前值
	OnUpdate func(v float64)
	// OnComplete 全部重复结束时调用（无限循环永不调用）
	OnComplete func()
}

// Tween 单个数值的补间，由每帧回调驱动，实现 game.Cancelable
//
// 用于时间轴之外的独立动画：加载爱心的呼吸脉动、按钮悬停缩放等。
type Tween struct {
	clock    *game.Clock
	from, to float64
	duration time.Duration
	ease     utils.EaseFunc
	opts     TweenOptions

	elapsed   time.Duration
	cycle     int
	reversed  bool
	value     float64
	frame     *game.FrameCallback
	cancelled bool
}

// NewTween 创建补间，不会自动开始
func NewTween(clock *game.Clock, from, to float64, duration time.Duration, easeID string, opts TweenOptions) (*Tween, error) {
	if duration < 0 {
		return nil, fmt.Errorf("tween duration %v: %w", duration, ErrInvalidDuration)
	}
	ease, err := utils.LookupEase(easeID)
	if err != nil {
		return nil, fmt.Errorf("tween: %w", err)
	}
	return &Tween{
		clock:    clock,
		from:     from,
		to:       to,
		duration: duration,
		ease:     ease,
		opts:     opts,
		value:    from,
	}, nil
}

// Start 从当前状态开始推进，重复调用无副作用
func (tw *Tween) Start() {
	if tw.cancelled || tw.frame != nil {
		return
	}
	tw.frame = tw.clock.OnFrame(tw.step)
}

// Retarget 从当前值出发补间到新目标（悬停进入/离开）
func (tw *Tween) Retarget(to float64, duration time.Duration) {
	if tw.cancelled {
		return
	}
	tw.from = tw.value
	tw.to = to
	tw.duration = duration
	tw.elapsed = 0
	tw.cycle = 0
	tw.reversed = false
	tw.Start()
}

func (tw *Tween) step(dt time.Duration) {
	tw.elapsed += dt
	for {
		if tw.duration <= 0 || tw.elapsed >= tw.duration {
			if tw.opts.Repeat != RepeatForever && tw.cycle >= tw.opts.Repeat {
				tw.set(tw.endValue())
				tw.stop()
				if tw.opts.OnComplete != nil {
					tw.opts.OnComplete()
				}
				return
			}
			if tw.duration <= 0 {
				tw.set(tw.endValue())
				tw.stop()
				return
			}
			tw.elapsed -= tw.duration
			tw.cycle++
			if tw.opts.Yoyo {
				tw.reversed = !tw.reversed
			}
			continue
		}
		break
	}

	x := float64(tw.elapsed) / float64(tw.duration)
	if tw.reversed {
		// 反向播放同一条缓动曲线
		x = 1 - x
	}
	tw.set(utils.Lerp(tw.from, tw.to, tw.ease(x)))
}

func (tw *Tween) endValue() float64 {
	if tw.reversed {
		return tw.from
	}
	return tw.to
}

func (tw *Tween) set(v float64) {
	tw.value = v
	if tw.opts.OnUpdate != nil {
		tw.opts.OnUpdate(v)
	}
}

func (tw *Tween) stop() {
	if tw.frame != nil {
		tw.frame.Cancel()
		tw.frame = nil
	}
}

// Value 返回当前值
func (tw *Tween) Value() float64 {
	return tw.value
}

// Running 是否正在推进
func (tw *Tween) Running() bool {
	return tw.frame != nil
}

// Cancel 停止补间并释放每帧回调
func (tw *Tween) Cancel() bool {
	if tw.cancelled {
		return false
	}
	tw.cancelled = true
	tw.stop()
	return true
}

// Active 补间是否还可用
func (tw *Tween) Active() bool {
	return !tw.cancelled
}
