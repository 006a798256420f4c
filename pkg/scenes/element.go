package scenes

import (
	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/render"
	"github.com/decker502/heartbloom/pkg/utils"
)

// element 可动画的界面元素状态，由时间轴进度回调写入
type element struct {
	Opacity float64
	OffsetX float64
	OffsetY float64
	Scale   float64
}

func newElement() *element {
	return &element{Scale: 1}
}

// fadeUp 透明度 0→opacity，同时从下方 dy 像素处升到原位
func (e *element) fadeUp(dy, opacity float64) func(p float64) {
	return func(p float64) {
		e.Opacity = opacity * p
		e.OffsetY = dy * (1 - p)
	}
}

// alpha 夹紧到 [0, 1] 的透明度（回弹缓动会越过 1）
func (e *element) alpha() float64 {
	return utils.Clamp(e.Opacity, 0, 1)
}

// lineSpacing 行高相对字号
const lineSpacing = 1.5

// textBlock 换行后的文本块，X 为水平中心，Y 为顶部
type textBlock struct {
	lines []string
	size  float64
	x, y  float64
	width float64
}

// layoutText 按估算字宽把文本换行到 maxWidth 内
func layoutText(s string, size, maxWidth, centerX, top float64) textBlock {
	measure := utils.EstimateWidth(size)
	lines := utils.WrapText(s, measure, maxWidth)
	w := 0.0
	for _, l := range lines {
		w = max(w, measure(l))
	}
	return textBlock{lines: lines, size: size, x: centerX, y: top, width: w}
}

func (tb textBlock) lineHeight() float64 {
	return tb.size * lineSpacing
}

func (tb textBlock) height() float64 {
	return float64(len(tb.lines)) * tb.lineHeight()
}

func (tb textBlock) bottom() float64 {
	return tb.y + tb.height()
}

// bounds 文本块包围盒
func (tb textBlock) bounds() game.Rect {
	return game.Rect{X: tb.x - tb.width/2, Y: tb.y, W: tb.width, H: tb.height()}
}

// draw 输出每一行，dy 为额外的纵向平移（滚动）
func (tb textBlock) draw(dl *render.DrawList, layer string, el *element, dy float64, color string) {
	if el.alpha() <= 0 {
		return
	}
	for i, line := range tb.lines {
		dl.AddText(render.Text{
			Layer:   layer,
			X:       tb.x + el.OffsetX,
			Y:       tb.y + float64(i)*tb.lineHeight() + el.OffsetY + dy,
			Content: line,
			Size:    tb.size,
			Opacity: el.alpha(),
			Color:   color,
		})
	}
}
