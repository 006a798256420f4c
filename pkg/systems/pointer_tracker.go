package systems

import (
	"log"

	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/utils"
)

// PointerState 指针状态快照，按值传递，读者拿到的永远是完整的一份
type PointerState struct {
	// 最后已知位置（视口像素）
	X, Y float64
	// 归一化偏移 x/w - 0.5，范围 [-0.5, 0.5]
	OffsetX, OffsetY float64
	// 是否收到过指针事件（指针离开窗口后为 false）
	Valid bool
}

// Subscription 订阅句柄，实现 game.Cancelable
type Subscription struct {
	release func()
	done    bool
}

// Cancel 退订，重复调用返回 false
func (s *Subscription) Cancel() bool {
	if s == nil || s.done {
		return false
	}
	s.done = true
	if s.release != nil {
		s.release()
	}
	return true
}

// Active 订阅是否仍然有效
func (s *Subscription) Active() bool {
	return s != nil && !s.done
}

// PointerTracker 进程内唯一的指针状态写入者
//
// 宿主在每帧推进时钟之前调用 Move/Resize，消费者在帧回调中通过 State 轮询，
// 也可以用 Subscribe 在指针变化时收到推送。
type PointerTracker struct {
	state    PointerState
	viewport game.Viewport

	subs   map[uint64]func(PointerState)
	order  []uint64
	nextID uint64
}

// NewPointerTracker 创建指针跟踪器
func NewPointerTracker(width, height float64) *PointerTracker {
	return &PointerTracker{
		viewport: game.Viewport{Width: width, Height: height},
		subs:     make(map[uint64]func(PointerState)),
	}
}

// Move 记录指针移动
func (pt *PointerTracker) Move(x, y float64) {
	pt.state.X = x
	pt.state.Y = y
	pt.state.Valid = true
	pt.normalize()
	pt.notify()
}

// Leave 指针离开视口，偏移归零
func (pt *PointerTracker) Leave() {
	if !pt.state.Valid {
		return
	}
	pt.state = PointerState{X: pt.state.X, Y: pt.state.Y}
	pt.notify()
}

// Resize 更新视口尺寸并重新计算归一化偏移
func (pt *PointerTracker) Resize(width, height float64) {
	if width == pt.viewport.Width && height == pt.viewport.Height {
		return
	}
	pt.viewport = game.Viewport{Width: width, Height: height}
	log.Printf("[PointerTracker] 视口尺寸: %.0fx%.0f", width, height)
	if pt.state.Valid {
		pt.normalize()
		pt.notify()
	}
}

func (pt *PointerTracker) normalize() {
	pt.state.OffsetX = normalizedOffset(pt.state.X, pt.viewport.Width)
	pt.state.OffsetY = normalizedOffset(pt.state.Y, pt.viewport.Height)
}

func normalizedOffset(pos, extent float64) float64 {
	if extent <= 0 {
		return 0
	}
	return utils.Clamp(pos/extent-0.5, -0.5, 0.5)
}

// State 返回当前指针状态的副本
func (pt *PointerTracker) State() PointerState {
	return pt.state
}

// Viewport 返回当前视口尺寸
func (pt *PointerTracker) Viewport() game.Viewport {
	return pt.viewport
}

// Subscribe 注册指针变化回调，按注册顺序调用
func (pt *PointerTracker) Subscribe(fn func(PointerState)) *Subscription {
	pt.nextID++
	id := pt.nextID
	pt.subs[id] = fn
	pt.order = append(pt.order, id)
	return &Subscription{release: func() { pt.unsubscribe(id) }}
}

func (pt *PointerTracker) unsubscribe(id uint64) {
	delete(pt.subs, id)
	for i, v := range pt.order {
		if v == id {
			pt.order = append(pt.order[:i], pt.order[i+1:]...)
			break
		}
	}
}

// SubscriberCount 返回当前订阅者数量
func (pt *PointerTracker) SubscriberCount() int {
	return len(pt.subs)
}

func (pt *PointerTracker) notify() {
	if len(pt.order) == 0 {
		return
	}
	ids := make([]uint64, len(pt.order))
	copy(ids, pt.order)
	state := pt.state
	for _, id := range ids {
		// 回调中退订的订阅者不再收到本次通知
		if fn, ok := pt.subs[id]; ok {
			fn(state)
		}
	}
}
