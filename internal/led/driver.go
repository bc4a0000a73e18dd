package led

import (
	"fmt"
	"sync"

	"github.com/coreman2200/scenereel/internal/render"
)

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

// Sim is an in-memory Driver used when no hardware is attached.
type Sim struct {
	mu     sync.Mutex
	count  int
	frames int
	last   []byte
}

func NewSim(count int) *Sim { return &Sim{count: count} }

func (s *Sim) Write(rgb []byte) error {
	if len(rgb) != 3*s.count {
		return fmt.Errorf("sim: frame has %d bytes, want %d", len(rgb), 3*s.count)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	s.last = append(s.last[:0], rgb...)
	return nil
}

func (s *Sim) Close() error { return nil }

// Frames returns how many frames were written and a copy of the last one.
func (s *Sim) Frames() (int, []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames, append([]byte(nil), s.last...)
}

// Sink adapts a byte Driver to the render engine, applying brightness.
type Sink struct {
	Drv        Driver
	Brightness float64

	buf []byte
}

func (s *Sink) Write(buf []render.Color) error {
	if cap(s.buf) < 3*len(buf) {
		s.buf = make([]byte, 3*len(buf))
	}
	s.buf = s.buf[:3*len(buf)]
	k := float32(s.Brightness)
	if k <= 0 {
		k = 1
	}
	for i, c := range buf {
		s.buf[i*3+0] = to8(c.R * k)
		s.buf[i*3+1] = to8(c.G * k)
		s.buf[i*3+2] = to8(c.B * k)
	}
	return s.Drv.Write(s.buf)
}

func (s *Sink) Close() error { return s.Drv.Close() }

func to8(x float32) byte {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 255
	}
	return byte(x*255 + 0.5)
}
