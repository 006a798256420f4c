package app

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/heartbloom/pkg/utils"
)

// InputFrame 一帧的输入快照
// 宿主在推进时钟之前把它应用到指针跟踪器和阶段
type InputFrame struct {
	// 指针位置（触摸优先）
	X, Y float64
	// HasPointer 指针在窗口内或有活动的触摸
	HasPointer bool
	// Touch 本帧指针来自触摸
	Touch bool
	// 是否有点击/触摸事件刚刚发生，以及位置
	Clicked        bool
	ClickX, ClickY float64
	// ScrollDY 滚轮和触摸拖拽产生的滚动量，向下为正
	ScrollDY float64
}

// PollInput 读取当前帧的鼠标、触摸和滚轮输入
// width、height 为逻辑屏幕尺寸，鼠标在范围外时视为离开窗口
func PollInput(dm *DragManager, width, height int) InputFrame {
	var f InputFrame
	dm.Update()

	touchIDs := ebiten.AppendTouchIDs(nil)
	if len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		f.X, f.Y = float64(x), float64(y)
		f.HasPointer = true
		f.Touch = true
	} else {
		x, y := ebiten.CursorPosition()
		f.X, f.Y = float64(x), float64(y)
		f.HasPointer = x >= 0 && y >= 0 && x < width && y < height
	}

	if ok, x, y := IsJustTouchedOrClicked(); ok {
		f.Clicked = true
		f.ClickX, f.ClickY = float64(x), float64(y)
	}

	_, wheelY := ebiten.Wheel()
	f.ScrollDY = -wheelY * utils.WheelStep
	if dm.IsDragging() && dm.IsTouchDrag() {
		// 手指上移时内容向下滚动
		_, dy := dm.FrameDelta()
		f.ScrollDY -= float64(dy)
	}
	return f
}

// IsJustTouchedOrClicked 检查是否刚刚发生点击或触摸
// 返回是否点击以及点击位置
func IsJustTouchedOrClicked() (bool, int, int) {
	// 检查触摸
	touchIDs := inpututil.AppendJustPressedTouchIDs(nil)
	if len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		return true, x, y
	}

	// 检查鼠标
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		return true, x, y
	}

	return false, 0, 0
}

// ============================================================================
// 拖拽状态管理器 - 触屏设备上用拖拽代替滚轮滚动信件
// ============================================================================

// DragState 拖拽状态
type DragState int

const (
	// DragStateNone 无拖拽
	DragStateNone DragState = iota
	// DragStateStarted 拖拽开始（刚按下）
	DragStateStarted
	// DragStateDragging 拖拽中（按住移动）
	DragStateDragging
	// DragStateEnded 拖拽结束（释放）
	DragStateEnded
)

// DragInfo 拖拽信息
type DragInfo struct {
	// State 当前拖拽状态
	State DragState
	// StartX, StartY 拖拽起始位置（屏幕坐标）
	StartX, StartY int
	// CurrentX, CurrentY 当前位置（屏幕坐标）
	CurrentX, CurrentY int
	// PrevX, PrevY 上一帧位置
	PrevX, PrevY int
	// TouchID 当前跟踪的触摸ID（-1表示鼠标）
	TouchID ebiten.TouchID
	// IsTouchInput 是否为触摸输入（区分触摸和鼠标）
	IsTouchInput bool
}

// PointerSample 一帧的指针采样，驱动拖拽状态机
type PointerSample struct {
	Pressed     bool
	JustPressed bool
	X, Y        int
	Touch       bool
	TouchID     ebiten.TouchID
}

// DragManager 拖拽管理器
// 跟踪触摸/鼠标的拖拽状态
type DragManager struct {
	info DragInfo
}

// NewDragManager 创建拖拽管理器
func NewDragManager() *DragManager {
	return &DragManager{
		info: DragInfo{
			State:   DragStateNone,
			TouchID: -1,
		},
	}
}

// Update 读取 ebiten 输入并推进拖拽状态（每帧调用一次）
func (dm *DragManager) Update() {
	dm.Apply(dm.sample())
}

// sample 采样当前帧的指针：跟踪中的触摸优先，其次新的触摸，最后鼠标
func (dm *DragManager) sample() PointerSample {
	if dm.info.IsTouchInput && dm.info.State != DragStateNone {
		for _, id := range ebiten.AppendTouchIDs(nil) {
			if id == dm.info.TouchID {
				x, y := ebiten.TouchPosition(id)
				return PointerSample{Pressed: true, X: x, Y: y, Touch: true, TouchID: id}
			}
		}
		return PointerSample{Touch: true, TouchID: dm.info.TouchID, X: dm.info.CurrentX, Y: dm.info.CurrentY}
	}

	if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
		x, y := ebiten.TouchPosition(ids[0])
		return PointerSample{Pressed: true, JustPressed: true, X: x, Y: y, Touch: true, TouchID: ids[0]}
	}

	x, y := ebiten.CursorPosition()
	return PointerSample{
		Pressed:     ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		JustPressed: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		X:           x,
		Y:           y,
		TouchID:     -1,
	}
}

// Apply 用一帧的采样推进拖拽状态机
func (dm *DragManager) Apply(s PointerSample) {
	switch dm.info.State {
	case DragStateNone:
		if s.JustPressed {
			id := s.TouchID
			if !s.Touch {
				id = -1
			}
			dm.info = DragInfo{
				State:        DragStateStarted,
				StartX:       s.X,
				StartY:       s.Y,
				CurrentX:     s.X,
				CurrentY:     s.Y,
				PrevX:        s.X,
				PrevY:        s.Y,
				TouchID:      id,
				IsTouchInput: s.Touch,
			}
		}

	case DragStateStarted:
		// 从开始状态转换到拖拽中
		dm.info.State = DragStateDragging
		dm.moveTo(s.X, s.Y)

	case DragStateDragging:
		if !s.Pressed {
			dm.info.State = DragStateEnded
			dm.info.PrevX, dm.info.PrevY = dm.info.CurrentX, dm.info.CurrentY
		} else {
			dm.moveTo(s.X, s.Y)
		}

	case DragStateEnded:
		// 结束状态只持续一帧，下一帧重置
		dm.Reset()
	}
}

func (dm *DragManager) moveTo(x, y int) {
	dm.info.PrevX, dm.info.PrevY = dm.info.CurrentX, dm.info.CurrentY
	dm.info.CurrentX, dm.info.CurrentY = x, y
}

// Reset 重置拖拽状态
func (dm *DragManager) Reset() {
	dm.info = DragInfo{
		State:   DragStateNone,
		TouchID: -1,
	}
}

// GetState 获取当前拖拽状态
func (dm *DragManager) GetState() DragState {
	return dm.info.State
}

// GetInfo 获取完整拖拽信息
func (dm *DragManager) GetInfo() DragInfo {
	return dm.info
}

// IsDragging 是否正在拖拽
func (dm *DragManager) IsDragging() bool {
	return dm.info.State == DragStateDragging
}

// GetDragDistance 获取拖拽距离（从起点到当前位置）
func (dm *DragManager) GetDragDistance() (dx, dy int) {
	return dm.info.CurrentX - dm.info.StartX, dm.info.CurrentY - dm.info.StartY
}

// FrameDelta 本帧的移动量
func (dm *DragManager) FrameDelta() (dx, dy int) {
	return dm.info.CurrentX - dm.info.PrevX, dm.info.CurrentY - dm.info.PrevY
}

// IsTouchDrag 是否为触摸拖拽
func (dm *DragManager) IsTouchDrag() bool {
	return dm.info.IsTouchInput
}
