// Package layout maps cube coordinates onto the LED wiring order.
package layout

import "fmt"

type Dim struct{ X, Y, Z int }

func (d Dim) Count() int { return d.X * d.Y * d.Z }

type Serpentine struct {
	XFlipEveryRow   bool
	YFlipEveryPanel bool
}

type Layout struct {
	Dim   Dim
	Order Serpentine
}

func New(d Dim, order Serpentine) (Layout, error) {
	if d.X <= 0 || d.Y <= 0 || d.Z <= 0 {
		return Layout{}, fmt.Errorf("layout: invalid dimensions %dx%dx%d", d.X, d.Y, d.Z)
	}
	return Layout{Dim: d, Order: order}, nil
}

// Index maps x,y,z -> linear LED index (0..N-1)
func (l Layout) Index(x, y, z int) int {
	yy := y
	if l.Order.YFlipEveryPanel && z%2 == 1 {
		yy = l.Dim.Y - 1 - y
	}
	// rows alternate in wiring order, so the flip follows the wired row
	xx := x
	if l.Order.XFlipEveryRow && yy%2 == 1 {
		xx = l.Dim.X - 1 - x
	}
	perPanel := l.Dim.X * l.Dim.Y
	return z*perPanel + yy*l.Dim.X + xx
}

func (l Layout) Count() int { return l.Dim.Count() }

// Coords is the inverse of Index.
func (l Layout) Coords(i int) (x, y, z int) {
	perPanel := l.Dim.X * l.Dim.Y
	z = i / perPanel
	yy := (i % perPanel) / l.Dim.X
	xx := i % l.Dim.X
	x = xx
	if l.Order.XFlipEveryRow && yy%2 == 1 {
		x = l.Dim.X - 1 - xx
	}
	y = yy
	if l.Order.YFlipEveryPanel && z%2 == 1 {
		y = l.Dim.Y - 1 - yy
	}
	return x, y, z
}
