package render

import (
	"math"
	"slices"

	"github.com/coreman2200/scenereel/internal/cloud"
)

type Vec3 struct{ X, Y, Z float64 }
type Color struct{ R, G, B float32 }

type Dimensions struct{ X, Y, Z int }

func (d Dimensions) Count() int { return d.X * d.Y * d.Z }

type Uniforms struct {
	GlobalBrightness float64
	Params           map[string]float64
	Bools            map[string]bool
}

func (u *Uniforms) param(name string, def float64) float64 {
	if u == nil || u.Params == nil {
		return def
	}
	if v, ok := u.Params[name]; ok {
		return v
	}
	return def
}

// Occupancy is one logical voxel: how many points fell into it and their
// mean color.
type Occupancy struct {
	Points int
	Color  Color
}

// Resources is what shaders sample. Voxels is indexed x + y*X + z*X*Y.
type Resources struct {
	Cloud  *cloud.Cloud
	Voxels []Occupancy
}

// At returns the voxel under a normalized LUT position.
func (r *Resources) At(dim Dimensions, p Vec3) Occupancy {
	if r == nil || len(r.Voxels) == 0 {
		return Occupancy{}
	}
	x := cell(p.X, dim.X)
	y := cell(p.Y, dim.Y)
	z := cell(p.Z, dim.Z)
	return r.Voxels[x+y*dim.X+z*dim.X*dim.Y]
}

func cell(v float64, n int) int {
	i := int(math.Round(v * float64(n-1)))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Shader turns the attached cloud into voxel colors, one per LUT entry.
type Shader interface {
	Name() string
	Presets() []string
	ApplyPreset(name string, u *Uniforms)
	Render(dst []Color, pLUT []Vec3, dim Dimensions, t float64, u *Uniforms, r *Resources)
}

type Registry struct{ m map[string]Shader }

func NewRegistry(shaders ...Shader) *Registry {
	r := &Registry{m: map[string]Shader{}}
	for _, s := range shaders {
		r.Register(s)
	}
	return r
}

func (r *Registry) Register(s Shader) {
	if s == nil {
		return
	}
	r.m[s.Name()] = s
}

func (r *Registry) Get(name string) (Shader, bool) { s, ok := r.m[name]; return s, ok }

func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
