package render

import (
	"math"

	"github.com/coreman2200/scenereel/internal/cloud"
)

// Voxelize bins the cloud into a dim grid. The cloud is scaled uniformly by
// its largest extent so proportions survive; points without color count as
// white.
func Voxelize(c *cloud.Cloud, dim Dimensions) []Occupancy {
	n := dim.Count()
	if c == nil || n <= 0 {
		return nil
	}
	lo, hi, ok := c.Bounds()
	if !ok {
		return make([]Occupancy, n)
	}
	extent := math.Max(hi.X-lo.X, math.Max(hi.Y-lo.Y, hi.Z-lo.Z))

	type acc struct {
		n       int
		r, g, b float64
	}
	sums := make([]acc, n)
	for i, p := range c.Points {
		x := bin(p.X-lo.X, extent, dim.X)
		y := bin(p.Y-lo.Y, extent, dim.Y)
		z := bin(p.Z-lo.Z, extent, dim.Z)
		s := &sums[x+y*dim.X+z*dim.X*dim.Y]
		s.n++
		if len(c.Colors) == len(c.Points) {
			col := c.Colors[i]
			s.r += float64(col.R)
			s.g += float64(col.G)
			s.b += float64(col.B)
		} else {
			s.r, s.g, s.b = s.r+1, s.g+1, s.b+1
		}
	}

	out := make([]Occupancy, n)
	for i, s := range sums {
		if s.n == 0 {
			continue
		}
		k := float64(s.n)
		out[i] = Occupancy{
			Points: s.n,
			Color:  Color{float32(s.r / k), float32(s.g / k), float32(s.b / k)},
		}
	}
	return out
}

func bin(offset, extent float64, cells int) int {
	if extent <= 0 {
		return 0
	}
	i := int(offset / extent * float64(cells))
	if i >= cells {
		return cells - 1
	}
	if i < 0 {
		return 0
	}
	return i
}

// HeightColor maps v in [0,1] onto a blue to red ramp through green.
func HeightColor(v float64) Color {
	v = math.Max(0, math.Min(1, v))
	phase := (1 - v) * 4 * math.Pi / 3
	return Color{
		R: float32(math.Max(0, math.Cos(phase))),
		G: float32(math.Max(0, math.Cos(phase-2*math.Pi/3))),
		B: float32(math.Max(0, math.Cos(phase-4*math.Pi/3))),
	}
}
