// Package cloud holds point-cloud payloads and the sources they are fetched from.
package cloud

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"
)

// ErrUnsupportedFormat is returned for payloads no decoder understands.
var ErrUnsupportedFormat = errors.New("cloud: unsupported format")

// Vec is a point in cloud space.
type Vec struct{ X, Y, Z float64 }

// RGB is a linear color in [0,1].
type RGB struct{ R, G, B float32 }

// Cloud is a decoded payload. Colors is either empty or parallel to Points.
type Cloud struct {
	Path   string
	Points []Vec
	Colors []RGB
}

// Len returns the number of points.
func (c *Cloud) Len() int { return len(c.Points) }

// Bounds returns the axis aligned box around the cloud. ok is false for an
// empty cloud.
func (c *Cloud) Bounds() (lo, hi Vec, ok bool) {
	if len(c.Points) == 0 {
		return Vec{}, Vec{}, false
	}
	lo = Vec{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = Vec{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range c.Points {
		lo.X, hi.X = math.Min(lo.X, p.X), math.Max(hi.X, p.X)
		lo.Y, hi.Y = math.Min(lo.Y, p.Y), math.Max(hi.Y, p.Y)
		lo.Z, hi.Z = math.Min(lo.Z, p.Z), math.Max(hi.Z, p.Z)
	}
	return lo, hi, true
}

// Decode picks a decoder from the extension of name.
func Decode(name string, r io.Reader) (*Cloud, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".xyz", ".txt":
		c, err := DecodeXYZ(r)
		if err != nil {
			return nil, err
		}
		c.Path = name
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// DecodeXYZ reads whitespace separated "x y z [r g b]" lines. Blank lines and
// lines starting with '#' are skipped. Colors above 1 are taken as 0..255.
func DecodeXYZ(r io.Reader) (*Cloud, error) {
	c := &Cloud{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 && len(fields) != 6 {
			return nil, fmt.Errorf("xyz line %d: want 3 or 6 fields, got %d", line, len(fields))
		}
		var v [6]float64
		for i, f := range fields {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("xyz line %d: %w", line, err)
			}
			v[i] = x
		}
		c.Points = append(c.Points, Vec{v[0], v[1], v[2]})
		if len(fields) == 6 {
			c.Colors = append(c.Colors, toRGB(v[3], v[4], v[5]))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("xyz: %w", err)
	}
	if len(c.Colors) != 0 && len(c.Colors) != len(c.Points) {
		return nil, fmt.Errorf("xyz: %d of %d points carry color", len(c.Colors), len(c.Points))
	}
	return c, nil
}

func toRGB(r, g, b float64) RGB {
	if r > 1 || g > 1 || b > 1 {
		r, g, b = r/255, g/255, b/255
	}
	return RGB{float32(r), float32(g), float32(b)}
}
