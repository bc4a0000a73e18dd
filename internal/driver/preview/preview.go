package preview

import (
	"encoding/base64"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/coreman2200/scenereel/internal/render"
)

// Frame is what a preview client receives.
type Frame struct {
	X   int    `json:"x"`
	Y   int    `json:"y"`
	Z   int    `json:"z"`
	RGB string `json:"rgb"` // base64, 3 bytes per voxel in wiring order
}

// Emitter delivers preview frames to whoever is watching.
type Emitter interface {
	Emit(event string, payload any)
}

const Event = "preview:frame"

// Driver forwards rendered frames to an Emitter, at most once per throttle.
// A frame that arrives inside the window is held and emitted when the window
// closes, so the preview always ends on the latest frame.
type Driver struct {
	out      Emitter
	dim      render.Dimensions
	throttle time.Duration
	clk      clock.Clock
	lastEmit time.Time
	pending  []render.Color
	trailing *clock.Timer
	mu       sync.Mutex
}

func New(out Emitter, dim render.Dimensions, throttle time.Duration) *Driver {
	if throttle <= 0 {
		throttle = 50 * time.Millisecond // ~20 FPS to UI
	}
	return &Driver{out: out, dim: dim, throttle: throttle, clk: clock.New()}
}

// WithClock swaps the clock used for throttling.
func (d *Driver) WithClock(c clock.Clock) *Driver {
	d.clk = c
	return d
}

func clamp255(x float32) byte {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 255
	}
	return byte(x * 255.0)
}

func (d *Driver) Write(buf []render.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clk.Now()
	if !d.lastEmit.IsZero() && d.lastEmit.Add(d.throttle).After(now) {
		d.pending = append(d.pending[:0], buf...)
		if d.trailing == nil {
			d.trailing = d.clk.AfterFunc(d.lastEmit.Add(d.throttle).Sub(now), d.flush)
		}
		return nil
	}
	d.pending = d.pending[:0]
	d.emit(buf, now)
	return nil
}

func (d *Driver) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.trailing = nil
	if len(d.pending) == 0 {
		return
	}
	d.emit(d.pending, d.clk.Now())
	d.pending = d.pending[:0]
}

// emit must be called with d.mu held.
func (d *Driver) emit(buf []render.Color, now time.Time) {
	d.lastEmit = now
	rgb := make([]byte, len(buf)*3)
	for i := range buf {
		rgb[i*3+0] = clamp255(buf[i].R)
		rgb[i*3+1] = clamp255(buf[i].G)
		rgb[i*3+2] = clamp255(buf[i].B)
	}
	d.out.Emit(Event, Frame{
		X: d.dim.X, Y: d.dim.Y, Z: d.dim.Z,
		RGB: base64.StdEncoding.EncodeToString(rgb),
	})
}
