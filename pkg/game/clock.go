package game

import (
	"container/heap"
	"time"
)

// Cancelable 可取消的资源句柄（定时器、帧回调、订阅、粒子系统等）
//
// Cancel 必须幂等：第一次调用释放资源并返回 true，之后返回 false。
type Cancelable interface {
	Cancel() bool
	Active() bool
}

// Clock 是宿主的时间源
//
// 所有回调都在调用 Advance 的 goroutine 上同步执行（单线程协作模型）：
//   - AfterFunc / Every 注册一次性或周期性定时器
//   - OnFrame 注册每帧回调
//
// Advance 先按 (到期时间, 注册顺序) 触发所有到期定时器，触发时 Now() 等于定时器的到期时间；
// 然后依次调用每帧回调。测试中直接手动推进时钟即可获得确定性结果。
type Clock struct {
	now    time.Duration
	seq    uint64
	timers timerQueue
	active map[uint64]*Timer
	frames []*FrameCallback
	nextID uint64
}

// NewClock 创建从 0 开始的时钟
func NewClock() *Clock {
	return &Clock{
		active: make(map[uint64]*Timer),
	}
}

// Now 返回时钟当前时间（自创建以来的累计时长）
func (c *Clock) Now() time.Duration {
	return c.now
}

// Timer 定时器句柄
type Timer struct {
	clock     *Clock
	id        uint64
	due       time.Duration
	seq       uint64
	interval  time.Duration
	fn        func()
	cancelled bool
	fired     bool
	index     int
}

// Cancel 取消定时器，已触发的一次性定时器或重复取消返回 false
func (t *Timer) Cancel() bool {
	if t == nil || t.cancelled || t.fired {
		return false
	}
	t.cancelled = true
	delete(t.clock.active, t.id)
	return true
}

// Active 定时器是否仍会触发
func (t *Timer) Active() bool {
	return t != nil && !t.cancelled && !t.fired
}

// FrameCallback 每帧回调句柄
type FrameCallback struct {
	clock     *Clock
	fn        func(dt time.Duration)
	cancelled bool
}

// Cancel 注销每帧回调
func (f *FrameCallback) Cancel() bool {
	if f == nil || f.cancelled {
		return false
	}
	f.cancelled = true
	return true
}

// Active 回调是否仍然注册
func (f *FrameCallback) Active() bool {
	return f != nil && !f.cancelled
}

// AfterFunc 在 d 之后调用一次 fn，d <= 0 时在下一次 Advance 中触发
func (c *Clock) AfterFunc(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	return c.schedule(c.now+d, 0, fn)
}

// Every 每隔 interval 调用一次 fn，第一次在 interval 之后
// interval 小于 1ms 时按 1ms 处理，避免单次 Advance 无限循环
func (c *Clock) Every(interval time.Duration, fn func()) *Timer {
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	return c.schedule(c.now+interval, interval, fn)
}

func (c *Clock) schedule(due, interval time.Duration, fn func()) *Timer {
	c.nextID++
	c.seq++
	t := &Timer{
		clock:    c,
		id:       c.nextID,
		due:      due,
		seq:      c.seq,
		interval: interval,
		fn:       fn,
	}
	heap.Push(&c.timers, t)
	c.active[t.id] = t
	return t
}

// OnFrame 注册每帧回调，回调参数为本帧时长
// 在 Advance 过程中注册的回调从下一帧开始执行
func (c *Clock) OnFrame(fn func(dt time.Duration)) *FrameCallback {
	f := &FrameCallback{clock: c, fn: fn}
	c.frames = append(c.frames, f)
	return f
}

// Advance 推进时钟 dt 并执行到期的定时器和每帧回调
func (c *Clock) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	target := c.now + dt

	// 本帧开始前的快照，定时器回调里注册的帧回调从下一帧开始
	frames := make([]*FrameCallback, len(c.frames))
	copy(frames, c.frames)

	for c.timers.Len() > 0 {
		next := c.timers[0]
		if next.due > target {
			break
		}
		heap.Pop(&c.timers)
		if next.cancelled {
			continue
		}

		c.now = next.due
		if next.interval > 0 {
			// 先重新入队，回调中取消自身也是安全的
			c.seq++
			next.due += next.interval
			next.seq = c.seq
			heap.Push(&c.timers, next)
		} else {
			next.fired = true
			delete(c.active, next.id)
		}
		next.fn()
	}
	c.now = target

	for _, f := range frames {
		if !f.cancelled {
			f.fn(dt)
		}
	}

	// 压缩已注销的帧回调
	live := c.frames[:0]
	for _, f := range c.frames {
		if !f.cancelled {
			live = append(live, f)
		}
	}
	for i := len(live); i < len(c.frames); i++ {
		c.frames[i] = nil
	}
	c.frames = live
}

// PendingTimers 返回仍然有效的定时器数量
func (c *Clock) PendingTimers() int {
	return len(c.active)
}

// FrameCallbacks 返回仍然注册的帧回调数量
func (c *Clock) FrameCallbacks() int {
	n := 0
	for _, f := range c.frames {
		if !f.cancelled {
			n++
		}
	}
	return n
}

// Pending 返回所有仍然有效的定时器和帧回调数量
func (c *Clock) Pending() int {
	return c.PendingTimers() + c.FrameCallbacks()
}

// timerQueue 按 (due, seq) 排序的小顶堆
type timerQueue []*Timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*Timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
