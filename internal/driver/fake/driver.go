package fake

import (
	"fmt"
	"io"
	"os"

	"github.com/coreman2200/scenereel/internal/render"
)

// Driver prints a compact summary of each frame (lit voxels and average),
// useful for headless runs.
type Driver struct {
	Out   io.Writer
	Count int
}

func (d *Driver) Write(buf []render.Color) error {
	d.Count++
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	var r, g, b float64
	lit := 0
	for i := range buf {
		r += float64(buf[i].R)
		g += float64(buf[i].G)
		b += float64(buf[i].B)
		if buf[i] != (render.Color{}) {
			lit++
		}
	}
	n := float64(len(buf))
	if n == 0 {
		n = 1
	}
	_, err := fmt.Fprintf(out, "[frame %04d] lit=%d/%d avg=(%.2f,%.2f,%.2f)\n",
		d.Count, lit, len(buf), r/n, g/n, b/n)
	return err
}
