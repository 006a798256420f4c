package systems

import (
	"errors"
	"fmt"
	"log"

	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/utils"
)

// ErrInvalidThreshold 可见比例阈值必须在 [0, 1]
var ErrInvalidThreshold = errors.New("reveal threshold must be in [0, 1]")

// RevealState 元素的揭示状态
type RevealState int

const (
	// RevealPending 尚未达到阈值
	RevealPending RevealState = iota
	// RevealTriggered 已触发（终态）
	RevealTriggered
)

// RevealTarget 被观察的元素，Bounds 返回内容坐标系中的包围盒
// ok=false 或零尺寸表示尚不可测量，本次检查跳过该元素
type RevealTarget interface {
	Bounds() (game.Rect, bool)
}

// RevealFunc 把普通函数适配为 RevealTarget
type RevealFunc func() (game.Rect, bool)

// Bounds implements RevealTarget.
func (f RevealFunc) Bounds() (game.Rect, bool) { return f() }

type revealEntry struct {
	target    RevealTarget
	threshold float64
	onEnter   func()
	state     RevealState
	removed   bool
}

// ScrollRevealController 进程内唯一的滚动揭示控制器
//
// 每个元素只会从 Pending 转到 Triggered 一次，onEnter 最多调用一次，
// 向上滚动再滚回来也不会重复触发。
type ScrollRevealController struct {
	scrollY   float64
	viewportH float64
	contentH  float64
	entries   []*revealEntry
}

// NewScrollRevealController 创建控制器，viewportHeight 为可视区域高度
func NewScrollRevealController(viewportHeight float64) *ScrollRevealController {
	return &ScrollRevealController{viewportH: viewportHeight}
}

// Observe 观察元素，可见比例第一次达到 threshold 时调用 onEnter
func (sc *ScrollRevealController) Observe(target RevealTarget, threshold float64, onEnter func()) (*Subscription, error) {
	if target == nil {
		return nil, errors.New("nil reveal target")
	}
	if !(threshold >= 0 && threshold <= 1) {
		return nil, fmt.Errorf("threshold %v: %w", threshold, ErrInvalidThreshold)
	}
	e := &revealEntry{target: target, threshold: threshold, onEnter: onEnter}
	sc.entries = append(sc.entries, e)
	return &Subscription{release: func() { sc.remove(e) }}, nil
}

func (sc *ScrollRevealController) remove(e *revealEntry) {
	e.removed = true
	for i, v := range sc.entries {
		if v == e {
			sc.entries = append(sc.entries[:i], sc.entries[i+1:]...)
			return
		}
	}
}

// SetViewport 更新可视区域高度
func (sc *ScrollRevealController) SetViewport(height float64) {
	sc.viewportH = height
	sc.scrollY = sc.clampScroll(sc.scrollY)
}

// SetContentHeight 设置可滚动内容总高度，0 表示不限制
func (sc *ScrollRevealController) SetContentHeight(height float64) {
	sc.contentH = height
	sc.scrollY = sc.clampScroll(sc.scrollY)
}

// SetScroll 设置滚动位置并立即检查所有元素
func (sc *ScrollRevealController) SetScroll(y float64) {
	sc.scrollY = sc.clampScroll(y)
	sc.Update()
}

// ScrollBy 相对滚动
func (sc *ScrollRevealController) ScrollBy(dy float64) {
	sc.SetScroll(sc.scrollY + dy)
}

// Scroll 返回当前滚动位置
func (sc *ScrollRevealController) Scroll() float64 {
	return sc.scrollY
}

// ViewportHeight 返回可视区域高度
func (sc *ScrollRevealController) ViewportHeight() float64 {
	return sc.viewportH
}

func (sc *ScrollRevealController) clampScroll(y float64) float64 {
	maxScroll := 0.0
	if sc.contentH > sc.viewportH {
		maxScroll = sc.contentH - sc.viewportH
	}
	if sc.contentH <= 0 {
		// 未设置内容高度时只限制下界
		if y < 0 {
			return 0
		}
		return y
	}
	return utils.Clamp(y, 0, maxScroll)
}

// VisibleFraction 计算包围盒落在可视区域内的比例
func (sc *ScrollRevealController) VisibleFraction(r game.Rect) float64 {
	if r.Empty() || sc.viewportH <= 0 {
		return 0
	}
	top := max(r.Y, sc.scrollY)
	bottom := min(r.Y+r.H, sc.scrollY+sc.viewportH)
	if bottom <= top {
		return 0
	}
	return (bottom - top) / r.H
}

// Update 检查所有待触发元素
func (sc *ScrollRevealController) Update() {
	// 回调中可能新增或退订观察者
	entries := make([]*revealEntry, len(sc.entries))
	copy(entries, sc.entries)
	for _, e := range entries {
		if e.removed || e.state != RevealPending {
			continue
		}
		r, ok := e.target.Bounds()
		if !ok || r.Empty() {
			continue
		}
		frac := sc.VisibleFraction(r)
		if frac <= 0 || frac < e.threshold {
			continue
		}
		e.state = RevealTriggered
		log.Printf("[ScrollReveal] 元素进入视口: y=%.0f 可见比例 %.2f", r.Y, frac)
		if e.onEnter != nil {
			e.onEnter()
		}
	}
}

// Observed 返回观察中的元素数量
func (sc *ScrollRevealController) Observed() int {
	return len(sc.entries)
}

// PendingCount 返回尚未触发的元素数量
func (sc *ScrollRevealController) PendingCount() int {
	n := 0
	for _, e := range sc.entries {
		if e.state == RevealPending {
			n++
		}
	}
	return n
}
