package app

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/render"
	"github.com/decker502/heartbloom/pkg/utils"
)

// ellipseSegments 椭圆近似的三角扇段数
const ellipseSegments = 20

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// Renderer 把 DrawList 落到 ebiten 屏幕上
type Renderer struct {
	source *text.GoTextFaceSource
	faces  map[float64]*text.GoTextFace
	colors map[string]color.NRGBA

	vertices []ebiten.Vertex
	indices  []uint16
}

// NewRenderer 加载内置的 Go Regular 字体
func NewRenderer() (*Renderer, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("无法创建字体源: %w", err)
	}
	return &Renderer{
		source: source,
		faces:  make(map[float64]*text.GoTextFace),
		colors: make(map[string]color.NRGBA),
	}, nil
}

// color 解析颜色名并乘上透明度，解析结果缓存
func (r *Renderer) color(name string, opacity float64) color.NRGBA {
	c, ok := r.colors[name]
	if !ok {
		rgba := config.MustColor(name)
		c = color.NRGBA{R: rgba.R, G: rgba.G, B: rgba.B, A: rgba.A}
		r.colors[name] = c
	}
	c.A = uint8(math.Round(float64(c.A) * utils.Clamp(opacity, 0, 1)))
	return c
}

func (r *Renderer) face(size float64) *text.GoTextFace {
	// 字号取整，避免缩放动画时无限增长缓存
	size = math.Max(1, math.Round(size))
	f, ok := r.faces[size]
	if !ok {
		f = &text.GoTextFace{
			Source:    r.source,
			Size:      size,
			Direction: text.DirectionLeftToRight,
		}
		r.faces[size] = f
	}
	return f
}

// Draw 按写入顺序绘制所有指令
func (r *Renderer) Draw(screen *ebiten.Image, dl *render.DrawList) {
	if dl.Background != "" {
		screen.Fill(r.color(dl.Background, 1))
	}
	for _, cmd := range dl.Commands {
		t := dl.LayerOf(cmd)
		switch c := cmd.(type) {
		case render.Sprite:
			r.drawSprite(screen, c, t)
		case render.Line:
			r.drawLine(screen, c, t)
		case render.Text:
			r.drawText(screen, c, t)
		case render.Panel:
			r.drawPanel(screen, c, t)
		}
	}
}

func layerScale(t render.Transform) float64 {
	if t.Scale == 0 {
		return 1
	}
	return t.Scale
}

func (r *Renderer) drawSprite(screen *ebiten.Image, s render.Sprite, t render.Transform) {
	alpha := s.Opacity * t.Opacity
	if alpha <= 0 {
		return
	}
	x, y := t.Apply(s.X, s.Y)
	size := s.Size * s.Scale * layerScale(t)
	if size <= 0 {
		return
	}
	clr := r.color(s.Color, alpha)
	rot := s.Rotation * math.Pi / 180

	switch s.Glyph {
	case "heart":
		r.fillHeart(screen, x, y, size, rot, clr)
	case "petal":
		r.fillEllipse(screen, x, y, size/2, size/4, rot, clr)
	case "meteor":
		// 拖尾指向右上方（流星向左下坠落）
		tail := size * 8
		vector.StrokeLine(screen, float32(x), float32(y), float32(x+tail), float32(y-tail/2), float32(math.Max(1, size/3)), clr, true)
		vector.DrawFilledCircle(screen, float32(x), float32(y), float32(size/2), clr, true)
	default:
		// bokeh、star、dot
		vector.DrawFilledCircle(screen, float32(x), float32(y), float32(size/2), clr, true)
	}
}

// fillHeart 两个圆加一个倒三角拼成的爱心
func (r *Renderer) fillHeart(screen *ebiten.Image, x, y, size, rot float64, clr color.NRGBA) {
	lobe := size / 4
	lx, ly := rotate(-lobe, -size/8, rot)
	rx, ry := rotate(lobe, -size/8, rot)
	r.fillEllipse(screen, x+lx, y+ly, lobe, lobe, 0, clr)
	r.fillEllipse(screen, x+rx, y+ry, lobe, lobe, 0, clr)

	ax, ay := rotate(-size/2+size/64, -size/16, rot)
	bx, by := rotate(size/2-size/64, -size/16, rot)
	cx, cy := rotate(0, size/2, rot)
	r.begin()
	r.vertex(x+ax, y+ay, clr)
	r.vertex(x+bx, y+by, clr)
	r.vertex(x+cx, y+cy, clr)
	r.indices = append(r.indices, 0, 1, 2)
	r.flush(screen)
}

// fillEllipse 三角扇填充旋转椭圆
func (r *Renderer) fillEllipse(screen *ebiten.Image, cx, cy, rx, ry, rot float64, clr color.NRGBA) {
	r.begin()
	r.vertex(cx, cy, clr)
	for i := 0; i <= ellipseSegments; i++ {
		a := 2 * math.Pi * float64(i) / ellipseSegments
		dx, dy := rotate(rx*math.Cos(a), ry*math.Sin(a), rot)
		r.vertex(cx+dx, cy+dy, clr)
		if i > 0 {
			n := uint16(i + 1)
			r.indices = append(r.indices, 0, n-1, n)
		}
	}
	r.flush(screen)
}

func (r *Renderer) begin() {
	r.vertices = r.vertices[:0]
	r.indices = r.indices[:0]
}

func (r *Renderer) vertex(x, y float64, clr color.NRGBA) {
	r.vertices = append(r.vertices, ebiten.Vertex{
		DstX:   float32(x),
		DstY:   float32(y),
		SrcX:   1,
		SrcY:   1,
		ColorR: float32(clr.R) / 255,
		ColorG: float32(clr.G) / 255,
		ColorB: float32(clr.B) / 255,
		ColorA: float32(clr.A) / 255,
	})
}

func (r *Renderer) flush(screen *ebiten.Image) {
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	screen.DrawTriangles(r.vertices, r.indices, whiteSubImage, op)
}

func (r *Renderer) drawLine(screen *ebiten.Image, l render.Line, t render.Transform) {
	alpha := l.Opacity * t.Opacity
	if alpha <= 0 {
		return
	}
	x1, y1 := t.Apply(l.X1, l.Y1)
	x2, y2 := t.Apply(l.X2, l.Y2)
	width := l.Width
	if width <= 0 {
		width = 1
	}
	vector.StrokeLine(screen, float32(x1), float32(y1), float32(x2), float32(y2), float32(width), r.color(l.Color, alpha), true)
}

func (r *Renderer) drawText(screen *ebiten.Image, tx render.Text, t render.Transform) {
	alpha := tx.Opacity * t.Opacity
	if alpha <= 0 || tx.Content == "" {
		return
	}
	x, y := t.Apply(tx.X, tx.Y)
	face := r.face(tx.Size * layerScale(t))
	w := text.Advance(tx.Content, face)

	op := &text.DrawOptions{}
	op.GeoM.Translate(x-w/2, y)
	op.ColorScale.ScaleWithColor(r.color(tx.Color, alpha))
	text.Draw(screen, tx.Content, face, op)
}

func (r *Renderer) drawPanel(screen *ebiten.Image, p render.Panel, t render.Transform) {
	alpha := p.Opacity * t.Opacity
	if alpha <= 0 {
		return
	}
	x1, y1 := t.Apply(p.X, p.Y)
	x2, y2 := t.Apply(p.X+p.W, p.Y+p.H)
	w, h := x2-x1, y2-y1
	if w <= 0 || h <= 0 {
		return
	}
	vector.DrawFilledRect(screen, float32(x1), float32(y1), float32(w), float32(h), r.color(p.Color, alpha), false)
	if p.Border != "" {
		vector.StrokeRect(screen, float32(x1), float32(y1), float32(w), float32(h), 1, r.color(p.Border, t.Opacity*0.6), false)
	}
}

func rotate(x, y, rad float64) (float64, float64) {
	if rad == 0 {
		return x, y
	}
	sin, cos := math.Sincos(rad)
	return x*cos - y*sin, x*sin + y*cos
}
