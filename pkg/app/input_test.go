package app

import "testing"

func TestDragManagerInitialState(t *testing.T) {
	dm := NewDragManager()
	if dm.GetState() != DragStateNone {
		t.Errorf("initial state = %v, want DragStateNone", dm.GetState())
	}
	if dm.IsDragging() {
		t.Error("new manager should not be dragging")
	}
	if dm.GetInfo().TouchID != -1 {
		t.Errorf("initial TouchID = %d, want -1", dm.GetInfo().TouchID)
	}
}

func TestDragManagerTouchScroll(t *testing.T) {
	dm := NewDragManager()
	dm.Apply(PointerSample{Pressed: true, JustPressed: true, X: 50, Y: 400, Touch: true, TouchID: 2})
	dm.Apply(PointerSample{Pressed: true, X: 52, Y: 340, Touch: true, TouchID: 2})
	if !dm.IsDragging() || !dm.IsTouchDrag() {
		t.Fatalf("state = %v, touch = %v, want dragging by touch", dm.GetState(), dm.IsTouchDrag())
	}
	// 手指上移 60 像素
	if _, dy := dm.FrameDelta(); dy != -60 {
		t.Errorf("frame dy = %d, want -60", dy)
	}

	dm.Reset()
	if dm.GetState() != DragStateNone || dm.IsTouchDrag() {
		t.Error("Reset should clear the drag")
	}
}

func TestDragManagerApply(t *testing.T) {
	dm := NewDragManager()

	// 触摸按下 -> 拖动 -> 释放 -> 下一帧重置
	frames := []struct {
		name      string
		sample    PointerSample
		wantState DragState
		wantDY    int
	}{
		{"按下", PointerSample{Pressed: true, JustPressed: true, X: 100, Y: 300, Touch: true, TouchID: 7}, DragStateStarted, 0},
		{"开始移动", PointerSample{Pressed: true, X: 100, Y: 280, Touch: true, TouchID: 7}, DragStateDragging, -20},
		{"继续移动", PointerSample{Pressed: true, X: 100, Y: 250, Touch: true, TouchID: 7}, DragStateDragging, -30},
		{"释放", PointerSample{Touch: true, TouchID: 7, X: 100, Y: 250}, DragStateEnded, 0},
		{"重置", PointerSample{}, DragStateNone, 0},
	}

	for _, f := range frames {
		dm.Apply(f.sample)
		if dm.GetState() != f.wantState {
			t.Fatalf("%s: state = %v, want %v", f.name, dm.GetState(), f.wantState)
		}
		if f.wantState == DragStateNone {
			continue
		}
		if _, dy := dm.FrameDelta(); dy != f.wantDY {
			t.Errorf("%s: frame dy = %d, want %d", f.name, dy, f.wantDY)
		}
	}
}

func TestDragManagerMouseDrag(t *testing.T) {
	dm := NewDragManager()
	dm.Apply(PointerSample{Pressed: true, JustPressed: true, X: 10, Y: 10, TouchID: 3})
	if dm.IsTouchDrag() {
		t.Error("mouse drag should not be a touch drag")
	}
	if dm.GetInfo().TouchID != -1 {
		t.Errorf("TouchID = %d, want -1 for mouse", dm.GetInfo().TouchID)
	}
	dm.Apply(PointerSample{Pressed: true, X: 40, Y: 50})
	if dx, dy := dm.GetDragDistance(); dx != 30 || dy != 40 {
		t.Errorf("drag distance = (%d, %d), want (30, 40)", dx, dy)
	}

	// 未按下时不会开始拖拽
	idle := NewDragManager()
	idle.Apply(PointerSample{Pressed: true, X: 5, Y: 5})
	if idle.GetState() != DragStateNone {
		t.Error("holding without a fresh press should not start a drag")
	}
}
