package game

import "log"

// Disposer 记录一个场景挂载期间创建的所有资源句柄
//
// Dispose 只会执行一次：逆序取消所有句柄并调用清理函数，重复调用直接返回。
// Dispose 之后再登记的句柄会被立即取消，防止卸载后的回调继续注册资源。
type Disposer struct {
	name     string
	entries  []disposeEntry
	disposed bool
}

type disposeEntry struct {
	handle  Cancelable
	cleanup func()
}

// NewDisposer 创建 Disposer，name 仅用于日志
func NewDisposer(name string) *Disposer {
	return &Disposer{name: name}
}

// Track 登记一个可取消句柄，返回原句柄方便链式使用
func (d *Disposer) Track(h Cancelable) Cancelable {
	if h == nil {
		return nil
	}
	if d.disposed {
		h.Cancel()
		return h
	}
	d.entries = append(d.entries, disposeEntry{handle: h})
	return h
}

// Defer 登记一个清理函数
func (d *Disposer) Defer(fn func()) {
	if fn == nil {
		return
	}
	if d.disposed {
		fn()
		return
	}
	d.entries = append(d.entries, disposeEntry{cleanup: fn})
}

// Dispose 释放所有登记的资源，返回本次实际取消的句柄数量
func (d *Disposer) Dispose() int {
	if d.disposed {
		return 0
	}
	d.disposed = true

	cancelled := 0
	for i := len(d.entries) - 1; i >= 0; i-- {
		e := d.entries[i]
		if e.handle != nil && e.handle.Cancel() {
			cancelled++
		}
		if e.cleanup != nil {
			e.cleanup()
		}
	}
	d.entries = nil
	log.Printf("[Disposer] %s: 释放 %d 个句柄", d.name, cancelled)
	return cancelled
}

// Disposed 是否已经执行过 Dispose
func (d *Disposer) Disposed() bool {
	return d.disposed
}

// Live 返回仍然有效的句柄数量（卸载后应为 0）
func (d *Disposer) Live() int {
	n := 0
	for _, e := range d.entries {
		if e.handle != nil && e.handle.Active() {
			n++
		}
	}
	return n
}
