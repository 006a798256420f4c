// Package render 定义核心向渲染表面输出的绘制指令
//
// 核心从不直接绘制像素：每帧场景把粒子、连线、文字和面板写入 DrawList，
// 由宿主的渲染适配器（ebiten 窗口、tcell 终端）负责落到屏幕上。
package render

import "math"

// Command 绘制指令
type Command interface {
	layer() string
}

// Sprite 单个粒子或图形
type Sprite struct {
	Layer    string
	Glyph    string
	X, Y     float64
	Size     float64
	Opacity  float64
	Rotation float64 // 角度
	Scale    float64
	Color    string
}

// Line 连线（星座效果）
type Line struct {
	Layer          string
	X1, Y1, X2, Y2 float64
	Width          float64
	Opacity        float64
	Color          string
}

// Text 文本块，X 为水平中心
type Text struct {
	Layer   string
	X, Y    float64
	Content string
	Size    float64
	Opacity float64
	Color   string
}

// Panel 矩形面板（卡片、按钮、遮罩）
type Panel struct {
	Layer      string
	X, Y, W, H float64
	Opacity    float64
	Color      string
	Border     string
}

func (s Sprite) layer() string { return s.Layer }
func (l Line) layer() string   { return l.Layer }
func (t Text) layer() string   { return t.Layer }
func (p Panel) layer() string  { return p.Layer }

// Transform 图层变换（视差平移、倾斜、缩放、整体透明度）
type Transform struct {
	OffsetX, OffsetY float64
	RotateX, RotateY float64 // 角度
	Scale            float64
	Opacity          float64
	// 缩放与倾斜的中心点
	OriginX, OriginY float64
}

// Identity 单位变换
func Identity() Transform {
	return Transform{Scale: 1, Opacity: 1}
}

// Apply 将变换作用到图层内的一个点
// 倾斜用透视近似：绕 Y 轴旋转压缩水平方向，绕 X 轴旋转压缩垂直方向
func (t Transform) Apply(x, y float64) (float64, float64) {
	scale := t.Scale
	if scale == 0 {
		scale = 1
	}
	dx := (x - t.OriginX) * scale * cosDeg(t.RotateY)
	dy := (y - t.OriginY) * scale * cosDeg(t.RotateX)
	return t.OriginX + dx + t.OffsetX, t.OriginY + dy + t.OffsetY
}

// DrawList 一帧的绘制指令，按写入顺序绘制
type DrawList struct {
	Background string
	Commands   []Command
	layers     map[string]Transform
}

// NewDrawList 创建空的绘制列表
func NewDrawList() *DrawList {
	return &DrawList{layers: make(map[string]Transform)}
}

// Reset 清空指令，复用底层数组
func (dl *DrawList) Reset() {
	for i := range dl.Commands {
		dl.Commands[i] = nil
	}
	dl.Commands = dl.Commands[:0]
	dl.Background = ""
	for k := range dl.layers {
		delete(dl.layers, k)
	}
}

// SetLayer 设置图层变换
func (dl *DrawList) SetLayer(name string, t Transform) {
	if dl.layers == nil {
		dl.layers = make(map[string]Transform)
	}
	dl.layers[name] = t
}

// Layer 返回图层变换，未设置的图层为单位变换
func (dl *DrawList) Layer(name string) Transform {
	if t, ok := dl.layers[name]; ok {
		return t
	}
	return Identity()
}

// LayerOf 返回指令所在图层的变换
func (dl *DrawList) LayerOf(c Command) Transform {
	return dl.Layer(c.layer())
}

// Add 追加一条指令
func (dl *DrawList) Add(c Command) {
	dl.Commands = append(dl.Commands, c)
}

// AddSprite 追加粒子指令
func (dl *DrawList) AddSprite(s Sprite) {
	if s.Scale == 0 {
		s.Scale = 1
	}
	dl.Add(s)
}

// AddLine 追加连线指令
func (dl *DrawList) AddLine(l Line) {
	dl.Add(l)
}

// AddText 追加文本指令
func (dl *DrawList) AddText(t Text) {
	dl.Add(t)
}

// AddPanel 追加面板指令
func (dl *DrawList) AddPanel(p Panel) {
	dl.Add(p)
}

// Count 返回某类指令数量，主要用于测试
func Count[T Command](dl *DrawList) int {
	n := 0
	for _, c := range dl.Commands {
		if _, ok := c.(T); ok {
			n++
		}
	}
	return n
}

func cosDeg(deg float64) float64 {
	return math.Cos(deg * math.Pi / 180)
}
