package game

import "github.com/decker502/heartbloom/pkg/render"

// Stage 体验中的一个阶段（Loading、Hero、Letter）
//
// 生命周期：
//   - Mount 创建时间轴、粒子系统并订阅输入，所有句柄登记到阶段自己的 Disposer
//   - Unmount 释放所有句柄，之后不会再有任何回调触发
//   - 阶段的时间轴结束时调用 SetOnComplete 设置的回调，且只调用一次
type Stage interface {
	Name() string
	Mount() error
	Unmount()
	Draw(dl *render.DrawList)
	SetOnComplete(fn func())
}

// Clickable 是一个可选接口，接收指针点击（按钮等交互元素）
type Clickable interface {
	Click(x, y float64)
}

// Scrollable 是一个可选接口，接收滚轮滚动
type Scrollable interface {
	Scroll(dy float64)
}

// StageFactory 阶段工厂函数，每次调用都创建新的阶段实例
type StageFactory func() Stage
