package main

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/render"
	"github.com/decker502/heartbloom/pkg/utils"
)

// 一个终端字符格对应的像素尺寸
const (
	cellWidth  = 8.0
	cellHeight = 16.0
	// 低于该透明度的指令不输出
	minAlpha = 0.05
)

var glyphRunes = map[string]rune{
	"heart":  '♥',
	"bokeh":  'o',
	"petal":  '✿',
	"meteor": '*',
	"star":   '·',
	"dot":    '•',
}

// canvas 把 DrawList 落到 tcell 屏幕上，像素坐标按字符格取整
type canvas struct {
	screen tcell.Screen
	colors map[string]color.RGBA
	bg     color.RGBA
}

func newCanvas(screen tcell.Screen) *canvas {
	return &canvas{screen: screen, colors: make(map[string]color.RGBA)}
}

// viewport 屏幕对应的像素尺寸
func (c *canvas) viewport() (float64, float64) {
	w, h := c.screen.Size()
	return float64(w) * cellWidth, float64(h) * cellHeight
}

func toCell(x, y float64) (int, int) {
	return int(math.Floor(x / cellWidth)), int(math.Floor(y / cellHeight))
}

func (c *canvas) rgb(name string) color.RGBA {
	v, ok := c.colors[name]
	if !ok {
		v = config.MustColor(name)
		c.colors[name] = v
	}
	return v
}

// blend 按透明度把 fg 混合到 bg 上
func blend(fg, bg color.RGBA, alpha float64) tcell.Color {
	a := utils.Clamp(alpha, 0, 1)
	mix := func(f, b uint8) int32 {
		return int32(math.Round(float64(b) + (float64(f)-float64(b))*a))
	}
	return tcell.NewRGBColor(mix(fg.R, bg.R), mix(fg.G, bg.G), mix(fg.B, bg.B))
}

func toTcell(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func fromTcell(c tcell.Color) color.RGBA {
	r, g, b := c.RGB()
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}

// Draw 清屏并按写入顺序输出所有指令，调用方负责 Show
func (c *canvas) Draw(dl *render.DrawList) {
	c.bg = color.RGBA{A: 255}
	if dl.Background != "" {
		c.bg = c.rgb(dl.Background)
	}
	c.screen.Fill(' ', tcell.StyleDefault.Background(toTcell(c.bg)))

	for _, cmd := range dl.Commands {
		t := dl.LayerOf(cmd)
		switch v := cmd.(type) {
		case render.Sprite:
			c.drawSprite(v, t)
		case render.Line:
			c.drawLine(v, t)
		case render.Text:
			c.drawText(v, t)
		case render.Panel:
			c.drawPanel(v, t)
		}
	}
}

// cellBackground 读取格子当前背景色，保留面板底色
func (c *canvas) cellBackground(x, y int) color.RGBA {
	_, _, style, _ := c.screen.GetContent(x, y)
	_, bg, _ := style.Decompose()
	if bg == tcell.ColorDefault {
		return c.bg
	}
	return fromTcell(bg)
}

func (c *canvas) put(x, y int, r rune, fg color.RGBA, alpha float64) {
	w, h := c.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	bg := c.cellBackground(x, y)
	style := tcell.StyleDefault.Background(toTcell(bg)).Foreground(blend(fg, bg, alpha))
	c.screen.SetContent(x, y, r, nil, style)
}

func (c *canvas) drawSprite(s render.Sprite, t render.Transform) {
	alpha := s.Opacity * t.Opacity
	if alpha < minAlpha {
		return
	}
	r, ok := glyphRunes[s.Glyph]
	if !ok {
		r = '•'
	}
	x, y := toCell(t.Apply(s.X, s.Y))
	c.put(x, y, r, c.rgb(s.Color), alpha)
}

// drawLine Bresenham 画线
func (c *canvas) drawLine(l render.Line, t render.Transform) {
	alpha := l.Opacity * t.Opacity
	if alpha < minAlpha {
		return
	}
	x0, y0 := toCell(t.Apply(l.X1, l.Y1))
	x1, y1 := toCell(t.Apply(l.X2, l.Y2))
	fg := c.rgb(l.Color)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	for {
		c.put(x0, y0, '·', fg, alpha)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *canvas) drawText(tx render.Text, t render.Transform) {
	alpha := tx.Opacity * t.Opacity
	if alpha < minAlpha || tx.Content == "" {
		return
	}
	runes := []rune(tx.Content)
	cx, row := toCell(t.Apply(tx.X, tx.Y))
	start := cx - len(runes)/2
	fg := c.rgb(tx.Color)
	for i, r := range runes {
		c.put(start+i, row, r, fg, alpha)
	}
}

func (c *canvas) drawPanel(p render.Panel, t render.Transform) {
	alpha := p.Opacity * t.Opacity
	if alpha < minAlpha {
		return
	}
	x0, y0 := toCell(t.Apply(p.X, p.Y))
	x1, y1 := toCell(t.Apply(p.X+p.W, p.Y+p.H))
	if x1 <= x0 || y1 <= y0 {
		return
	}
	w, h := c.screen.Size()
	fill := c.rgb(p.Color)
	for y := max(y0, 0); y < min(y1, h); y++ {
		for x := max(x0, 0); x < min(x1, w); x++ {
			bg := blend(fill, c.cellBackground(x, y), alpha)
			c.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault.Background(bg))
		}
	}
	if p.Border == "" {
		return
	}
	border := c.rgb(p.Border)
	balpha := t.Opacity * 0.6
	for x := x0 + 1; x < x1-1; x++ {
		c.put(x, y0, '─', border, balpha)
		c.put(x, y1-1, '─', border, balpha)
	}
	for y := y0 + 1; y < y1-1; y++ {
		c.put(x0, y, '│', border, balpha)
		c.put(x1-1, y, '│', border, balpha)
	}
	c.put(x0, y0, '╭', border, balpha)
	c.put(x1-1, y0, '╮', border, balpha)
	c.put(x0, y1-1, '╰', border, balpha)
	c.put(x1-1, y1-1, '╯', border, balpha)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
