package game

// Viewport 视口尺寸（像素）
type Viewport struct {
	Width  float64
	Height float64
}

// Empty 视口尚未测量（任一边为 0）
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Rect 元素包围盒，坐标为视口像素
type Rect struct {
	X, Y, W, H float64
}

// Center 返回包围盒中心点
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Empty 零尺寸包围盒表示几何信息尚不可用
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains 点是否落在包围盒内
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}
