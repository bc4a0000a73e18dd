package points

import (
	"testing"

	"github.com/coreman2200/scenereel/internal/render"
)

func TestPointsTintAndNative(t *testing.T) {
	dim := render.Dimensions{X: 2, Y: 1, Z: 1}
	lut := []render.Vec3{{X: 0}, {X: 1}}
	res := &render.Resources{Voxels: []render.Occupancy{
		{Points: 3, Color: render.Color{R: 0.2, G: 0.4, B: 0.6}},
		{},
	}}
	p := New("points")
	dst := make([]render.Color, 2)

	p.Render(dst, lut, dim, 0, nil, res)
	if dst[0] != (render.Color{R: 0.2, G: 0.4, B: 0.6}) || dst[1] != (render.Color{}) {
		t.Fatalf("native: %#v", dst)
	}

	p.ApplyPreset("Blue", nil)
	p.Render(dst, lut, dim, 0, nil, res)
	if dst[0] != (render.Color{B: 1}) {
		t.Fatalf("tinted: %#v", dst[0])
	}
}
