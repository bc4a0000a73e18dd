package points

import (
	"math"

	"github.com/coreman2200/scenereel/internal/render"
)

// Points lights every occupied voxel with the mean color of its points.
// A tint preset replaces the point colors; "PulseHz" modulates brightness.
type Points struct {
	name string
	tint *render.Color
}

func New(name string) *Points { return &Points{name: name} }

func (p *Points) Name() string { return p.name }

func (p *Points) Presets() []string { return []string{"Native", "Red", "Green", "Blue", "White"} }

func (p *Points) ApplyPreset(name string, _ *render.Uniforms) {
	switch name {
	case "Native":
		p.tint = nil
	case "Red":
		p.tint = &render.Color{R: 1}
	case "Green":
		p.tint = &render.Color{G: 1}
	case "Blue":
		p.tint = &render.Color{B: 1}
	case "White":
		p.tint = &render.Color{R: 1, G: 1, B: 1}
	}
}

func (p *Points) Render(dst []render.Color, pLUT []render.Vec3, dim render.Dimensions, t float64, u *render.Uniforms, r *render.Resources) {
	scale := float32(1.0)
	if u != nil && u.Params != nil {
		if hz, ok := u.Params["PulseHz"]; ok && hz > 0 {
			scale = float32(0.5 + 0.5*math.Sin(2*math.Pi*hz*t))
		}
	}
	for i := range dst {
		occ := r.At(dim, pLUT[i])
		if occ.Points == 0 {
			dst[i] = render.Color{}
			continue
		}
		c := occ.Color
		if p.tint != nil {
			c = *p.tint
		}
		dst[i] = render.Color{R: c.R * scale, G: c.G * scale, B: c.B * scale}
	}
}
