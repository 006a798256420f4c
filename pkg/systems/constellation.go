package systems

import (
	"math"

	"github.com/decker502/heartbloom/pkg/components"
	"github.com/decker502/heartbloom/pkg/ecs"
	"github.com/decker502/heartbloom/pkg/utils"
)

// Link 粒子与指针之间的连线
type Link struct {
	Particle       ecs.EntityID
	X1, Y1, X2, Y2 float64
	Distance       float64
	Opacity        float64
}

// LinkOpacity 连线透明度随距离线性衰减：1 - d/threshold，限制在 [0, 1]
func LinkOpacity(distance, threshold float64) float64 {
	if threshold <= 0 {
		return 0
	}
	return utils.Clamp(1-distance/threshold, 0, 1)
}

// Links 计算指针 threshold 范围内所有粒子的连线
// 指针状态无效时返回 nil
func (ps *ParticleSystem) Links(pointer PointerState, threshold float64) []Link {
	if !pointer.Valid || threshold <= 0 {
		return nil
	}
	var links []Link
	ps.particles.Each(func(id ecs.EntityID, p *components.ParticleComponent) {
		if p.Retired {
			return
		}
		d := math.Hypot(p.X-pointer.X, p.Y-pointer.Y)
		if d >= threshold {
			return
		}
		links = append(links, Link{
			Particle: id,
			X1:       p.X,
			Y1:       p.Y,
			X2:       pointer.X,
			Y2:       pointer.Y,
			Distance: d,
			Opacity:  LinkOpacity(d, threshold),
		})
	})
	return links
}
