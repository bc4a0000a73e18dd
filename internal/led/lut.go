package led

import (
	"github.com/coreman2200/scenereel/internal/layout"
	"github.com/coreman2200/scenereel/internal/render"
)

// BuildLUT returns the normalized [0,1]^3 position of every LED in wiring
// order, so shaders writing dst[i] light the physical LED i.
func BuildLUT(l layout.Layout) []render.Vec3 {
	out := make([]render.Vec3, l.Count())
	for i := range out {
		x, y, z := l.Coords(i)
		out[i] = render.Vec3{
			X: norm(x, l.Dim.X),
			Y: norm(y, l.Dim.Y),
			Z: norm(z, l.Dim.Z),
		}
	}
	return out
}

func norm(v, n int) float64 { return float64(v) / float64(max(1, n-1)) }
