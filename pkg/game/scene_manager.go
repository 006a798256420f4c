package game

import (
	"errors"
	"fmt"
	"log"

	"github.com/decker502/heartbloom/pkg/render"
)

// ErrNoStages StageManager 没有注册任何阶段
var ErrNoStages = errors.New("no stages registered")

type stageEntry struct {
	name    string
	factory StageFactory
}

type mountedStage struct {
	stage Stage
	index int
}

// StageManager 按注册顺序推进阶段：当前阶段完成后卸载它并挂载下一个阶段
//
// 允许同时挂载多个阶段（Mount 手动挂载），各阶段之间互不影响。
type StageManager struct {
	entries  []stageEntry
	mounted  []*mountedStage
	finished bool
	// OnFinished 最后一个阶段完成时调用
	OnFinished func()
}

// NewStageManager creates and returns a new StageManager instance.
func NewStageManager() *StageManager {
	return &StageManager{}
}

// Register 按顺序注册阶段工厂
func (sm *StageManager) Register(name string, factory StageFactory) {
	sm.entries = append(sm.entries, stageEntry{name: name, factory: factory})
}

// Start 挂载第一个注册的阶段
func (sm *StageManager) Start() error {
	if len(sm.entries) == 0 {
		return ErrNoStages
	}
	return sm.mountIndex(0)
}

// StartAt 从指定名称的阶段开始（调试用）
func (sm *StageManager) StartAt(name string) error {
	for i, e := range sm.entries {
		if e.name == name {
			return sm.mountIndex(i)
		}
	}
	return fmt.Errorf("stage %q: %w", name, ErrNoStages)
}

func (sm *StageManager) mountIndex(i int) error {
	e := sm.entries[i]
	stage := e.factory()
	if stage == nil {
		return fmt.Errorf("stage %q factory returned nil", e.name)
	}
	return sm.mount(stage, i)
}

// Mount 手动挂载一个阶段（不参与顺序推进）
func (sm *StageManager) Mount(stage Stage) error {
	return sm.mount(stage, -1)
}

func (sm *StageManager) mount(stage Stage, index int) error {
	m := &mountedStage{stage: stage, index: index}
	stage.SetOnComplete(func() { sm.complete(m) })
	if err := stage.Mount(); err != nil {
		stage.Unmount()
		return fmt.Errorf("mount stage %q: %w", stage.Name(), err)
	}
	sm.mounted = append(sm.mounted, m)
	log.Printf("[StageManager] 挂载阶段: %s", stage.Name())
	return nil
}

// Unmount 卸载阶段并释放其所有资源
func (sm *StageManager) Unmount(stage Stage) bool {
	for i, m := range sm.mounted {
		if m.stage == stage {
			sm.mounted = append(sm.mounted[:i], sm.mounted[i+1:]...)
			stage.Unmount()
			log.Printf("[StageManager] 卸载阶段: %s", stage.Name())
			return true
		}
	}
	return false
}

func (sm *StageManager) complete(m *mountedStage) {
	log.Printf("[StageManager] 阶段完成: %s", m.stage.Name())
	if m.index < 0 {
		sm.Unmount(m.stage)
		return
	}

	next := m.index + 1
	if next >= len(sm.entries) {
		// 最后一个阶段保持挂载
		if !sm.finished {
			sm.finished = true
			log.Printf("[StageManager] 所有阶段已完成")
			if sm.OnFinished != nil {
				sm.OnFinished()
			}
		}
		return
	}

	sm.Unmount(m.stage)
	if err := sm.mountIndex(next); err != nil {
		log.Printf("[StageManager] 错误: %v", err)
	}
}

// Mounted 返回当前挂载的所有阶段（按挂载顺序）
func (sm *StageManager) Mounted() []Stage {
	result := make([]Stage, 0, len(sm.mounted))
	for _, m := range sm.mounted {
		result = append(result, m.stage)
	}
	return result
}

// Current 返回最后挂载的阶段，没有则返回 nil
func (sm *StageManager) Current() Stage {
	if len(sm.mounted) == 0 {
		return nil
	}
	return sm.mounted[len(sm.mounted)-1].stage
}

// Finished 最后一个阶段是否已经完成
func (sm *StageManager) Finished() bool {
	return sm.finished
}

// Draw 按挂载顺序绘制所有阶段
func (sm *StageManager) Draw(dl *render.DrawList) {
	for _, m := range sm.mounted {
		m.stage.Draw(dl)
	}
}

// Click 把点击转发给所有可点击的阶段
func (sm *StageManager) Click(x, y float64) {
	for _, s := range sm.Mounted() {
		if c, ok := s.(Clickable); ok {
			c.Click(x, y)
		}
	}
}

// Scroll 把滚动转发给所有可滚动的阶段
func (sm *StageManager) Scroll(dy float64) {
	for _, s := range sm.Mounted() {
		if c, ok := s.(Scrollable); ok {
			c.Scroll(dy)
		}
	}
}

// Shutdown 卸载所有阶段
func (sm *StageManager) Shutdown() {
	for len(sm.mounted) > 0 {
		sm.Unmount(sm.mounted[len(sm.mounted)-1].stage)
	}
}
