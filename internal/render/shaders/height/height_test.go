package height

import (
	"testing"

	"github.com/coreman2200/scenereel/internal/render"
)

func TestHeightRamp(t *testing.T) {
	dim := render.Dimensions{X: 1, Y: 1, Z: 2}
	lut := []render.Vec3{{Z: 0}, {Z: 1}}
	res := &render.Resources{Voxels: []render.Occupancy{{Points: 1}, {Points: 1}}}
	dst := make([]render.Color, 2)

	New("height").Render(dst, lut, dim, 0, &render.Uniforms{}, res)
	if dst[0].B < 0.99 || dst[0].R > 0.01 {
		t.Fatalf("bottom should be blue, got %#v", dst[0])
	}
	if dst[1].R < 0.99 || dst[1].B > 0.01 {
		t.Fatalf("top should be red, got %#v", dst[1])
	}
}

func TestHeightPresetAxis(t *testing.T) {
	u := &render.Uniforms{}
	h := New("height")
	h.ApplyPreset("X", u)
	if u.Params["Axis"] != 0 {
		t.Fatalf("axis = %v", u.Params["Axis"])
	}
}
