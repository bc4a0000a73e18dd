package height

import (
	"math"

	"github.com/coreman2200/scenereel/internal/render"
)

// Height colors occupied voxels by their position along one axis.
// Params:
//   - "Axis"  (0=X,1=Y,2=Z; default 2)
//   - "Speed" (default 0): cycles the ramp over time
type Height struct {
	name string
}

func New(name string) *Height { return &Height{name: name} }

func (h *Height) Name() string { return h.name }

func (h *Height) Presets() []string { return []string{"X", "Y", "Z", "Cycle"} }

func (h *Height) ApplyPreset(name string, u *render.Uniforms) {
	if u == nil {
		return
	}
	if u.Params == nil {
		u.Params = map[string]float64{}
	}
	switch name {
	case "X":
		u.Params["Axis"] = 0
	case "Y":
		u.Params["Axis"] = 1
	case "Z":
		u.Params["Axis"] = 2
	case "Cycle":
		u.Params["Speed"] = 0.1
	}
}

func (h *Height) Render(dst []render.Color, pLUT []render.Vec3, dim render.Dimensions, t float64, u *render.Uniforms, r *render.Resources) {
	axis, speed := 2, 0.0
	if u != nil && u.Params != nil {
		if v, ok := u.Params["Axis"]; ok {
			axis = int(v)
		}
		speed = u.Params["Speed"]
	}
	for i := range dst {
		p := pLUT[i]
		if r.At(dim, p).Points == 0 {
			dst[i] = render.Color{}
			continue
		}
		var v float64
		switch axis {
		case 0:
			v = p.X
		case 1:
			v = p.Y
		default:
			v = p.Z
		}
		if speed != 0 {
			v = math.Mod(v+t*speed, 1)
		}
		dst[i] = render.HeightColor(v)
	}
}
