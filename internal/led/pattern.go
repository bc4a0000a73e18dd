package led

import (
	"errors"
	"fmt"

	"github.com/coreman2200/scenereel/internal/layout"
)

var ErrUnknownPattern = errors.New("unknown pattern")

// PatternKind names a wiring check pattern.
type PatternKind string

const (
	IndexSweep PatternKind = "index_sweep"  // one white LED walks the chain
	RGBTest    PatternKind = "rgb_channels" // whole cube red, green, then blue
	PlaneZ     PatternKind = "plane_z"      // one cyan panel at a time
)

func PatternKinds() []PatternKind { return []PatternKind{IndexSweep, RGBTest, PlaneZ} }

// Pattern steps through a wiring check, one frame per Step.
type Pattern struct {
	kind PatternKind
	step int
}

func NewPattern(kind PatternKind) (*Pattern, error) {
	switch kind {
	case IndexSweep, RGBTest, PlaneZ:
		return &Pattern{kind: kind}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, kind)
}

func (p *Pattern) Kind() PatternKind { return p.kind }

// Step fills rgb (3 bytes per LED, wiring order); returns false when complete.
func (p *Pattern) Step(l layout.Layout, rgb []byte) bool {
	n := l.Count()
	clear(rgb[:n*3])

	switch p.kind {
	case IndexSweep:
		if p.step >= n {
			return false
		}
		i := p.step
		rgb[i*3+0], rgb[i*3+1], rgb[i*3+2] = 255, 255, 255
	case RGBTest:
		if p.step >= 3 {
			return false
		}
		for i := 0; i < n; i++ {
			rgb[i*3+p.step] = 255
		}
	case PlaneZ:
		if p.step >= l.Dim.Z {
			return false
		}
		for y := 0; y < l.Dim.Y; y++ {
			for x := 0; x < l.Dim.X; x++ {
				i := l.Index(x, y, p.step)
				rgb[i*3+1], rgb[i*3+2] = 255, 255
			}
		}
	default:
		return false
	}
	p.step++
	return true
}
