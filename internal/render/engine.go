package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/coreman2200/scenereel/internal/cloud"
)

var (
	ErrNothingAttached = errors.New("render: no cloud attached")
	ErrBadPayload      = errors.New("render: payload is not a cloud")
)

// Driver abstracts a frame output (LED strip, preview stream, console).
type Driver interface {
	Write([]Color) error
}

// CloudLoader fetches and decodes a cloud by path.
type CloudLoader interface {
	Load(ctx context.Context, path string) (*cloud.Cloud, error)
}

type Stats struct {
	RenderMS float64 `json:"render_ms"`
	PostMS   float64 `json:"post_ms"`
	TotalMS  float64 `json:"total_ms"`
	Frames   uint64  `json:"frames"`
}

// Engine displays one attached cloud at a time: it voxelizes it, shades it,
// post-processes the result and writes it to every driver. Load may be called
// from any goroutine.
type Engine struct {
	Dim    Dimensions
	LUT    []Vec3
	Loader CloudLoader

	// CaptureW x CaptureH is the CaptureImage size.
	CaptureW, CaptureH int

	mu      sync.Mutex
	drivers []Driver
	shader  Shader
	u       *Uniforms
	rsrc    Resources
	out     []Color
	post    PostPipeline
	t0      time.Time
	last    Stats
}

// NewEngine allocates buffers and returns an Engine with the default post
// pipeline.
func NewEngine(dim Dimensions, lut []Vec3, loader CloudLoader, sh Shader, u *Uniforms, drivers ...Driver) (*Engine, error) {
	n := dim.Count()
	if n <= 0 {
		return nil, errors.New("invalid dimensions")
	}
	if len(lut) != n {
		return nil, fmt.Errorf("lut has %d entries, want %d", len(lut), n)
	}
	if u == nil {
		u = &Uniforms{GlobalBrightness: 1}
	}
	return &Engine{
		Dim:      dim,
		LUT:      lut,
		Loader:   loader,
		CaptureW: 256,
		CaptureH: 256,
		drivers:  drivers,
		shader:   sh,
		u:        u,
		out:      make([]Color, n),
		post:     DefaultPost(),
		t0:       time.Now(),
	}, nil
}

func (e *Engine) AddDriver(d Driver) {
	e.mu.Lock()
	e.drivers = append(e.drivers, d)
	e.mu.Unlock()
}

func (e *Engine) SetPost(p PostPipeline) {
	e.mu.Lock()
	e.post = p
	e.mu.Unlock()
}

// Load fetches the cloud behind path. The result is what Attach expects.
func (e *Engine) Load(ctx context.Context, path string) (any, error) {
	if e.Loader == nil {
		return nil, errors.New("render: no loader")
	}
	c, err := e.Loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Attach makes payload the displayed cloud. Anything other than a
// *cloud.Cloud clears the stage.
func (e *Engine) Attach(payload any) {
	c, _ := payload.(*cloud.Cloud)
	e.mu.Lock()
	defer e.mu.Unlock()
	if c == nil {
		e.rsrc = Resources{}
		return
	}
	e.rsrc = Resources{Cloud: c, Voxels: Voxelize(c, e.Dim)}
}

func (e *Engine) Detach() {
	e.mu.Lock()
	e.rsrc = Resources{}
	e.mu.Unlock()
}

// Attached reports the displayed cloud, if any.
func (e *Engine) Attached() *cloud.Cloud {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rsrc.Cloud
}

// Render shades the attached cloud and writes the frame to every driver. An
// empty stage renders black. Driver errors are joined; every driver is
// still written.
func (e *Engine) Render() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	clear(e.out)
	if e.shader != nil && e.rsrc.Cloud != nil {
		e.shader.Render(e.out, e.LUT, e.Dim, time.Since(e.t0).Seconds(), e.u, &e.rsrc)
	}
	if b := e.u.GlobalBrightness; b > 0 && b != 1 {
		for i := range e.out {
			e.out[i] = scaled(e.out[i], float32(b))
		}
	}

	postStart := time.Now()
	e.post.apply(e.out, e.u)
	e.last.PostMS = ms(time.Since(postStart))

	var errs []error
	for _, d := range e.drivers {
		if err := d.Write(e.out); err != nil {
			errs = append(errs, err)
		}
	}
	e.last.RenderMS = ms(postStart.Sub(start))
	e.last.TotalMS = ms(time.Since(start))
	e.last.Frames++
	return errors.Join(errs...)
}

func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// CaptureImage draws the attached cloud seen from above (+Z toward the
// viewer). Each pixel keeps the highest point that lands on it; uncolored
// clouds are shaded by height.
func (e *Engine) CaptureImage() (image.Image, error) {
	e.mu.Lock()
	c := e.rsrc.Cloud
	w, h := e.CaptureW, e.CaptureH
	e.mu.Unlock()
	if c == nil {
		return nil, ErrNothingAttached
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("capture size %dx%d", w, h)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		if i%4 == 3 {
			img.Pix[i] = 0xff
		}
	}
	lo, hi, ok := c.Bounds()
	if !ok {
		return img, nil
	}
	span := math.Max(hi.X-lo.X, hi.Y-lo.Y)
	depth := make([]float64, w*h)
	for i := range depth {
		depth[i] = math.Inf(-1)
	}
	colored := len(c.Colors) == len(c.Points)
	for i, p := range c.Points {
		px := bin(p.X-lo.X, span, w)
		py := h - 1 - bin(p.Y-lo.Y, span, h)
		k := py*w + px
		if p.Z < depth[k] {
			continue
		}
		depth[k] = p.Z
		var col Color
		if colored {
			col = Color(c.Colors[i])
		} else {
			col = HeightColor(unit(p.Z, lo.Z, hi.Z))
		}
		img.SetRGBA(px, py, color.RGBA{to8(col.R), to8(col.G), to8(col.B), 0xff})
	}
	return img, nil
}

func unit(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}

func to8(x float32) uint8 { return uint8(clamp01(x)*255 + 0.5) }

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000.0 }

// SetRenderer switches the active shader. If preset != "", it is applied
// to the engine uniforms.
func (e *Engine) SetRenderer(name, preset string, reg *Registry) error {
	if reg == nil {
		return errors.New("registry is nil")
	}
	sh, ok := reg.Get(name)
	if !ok {
		return errors.New("shader not found: " + name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shader = sh
	if preset != "" {
		sh.ApplyPreset(preset, e.u)
	}
	return nil
}

// SetParam updates the engine uniforms.
func (e *Engine) SetParam(name string, v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.u.Params == nil {
		e.u.Params = map[string]float64{}
	}
	e.u.Params[name] = v
}
