package led

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/scenereel/internal/layout"
)

func TestPatternsRunToCompletion(t *testing.T) {
	l, err := layout.New(layout.Dim{X: 2, Y: 2, Z: 3}, layout.Serpentine{XFlipEveryRow: true, YFlipEveryPanel: true})
	require.NoError(t, err)

	want := map[PatternKind]int{IndexSweep: 12, RGBTest: 3, PlaneZ: 3}
	for _, kind := range PatternKinds() {
		p, err := NewPattern(kind)
		require.NoError(t, err)
		rgb := make([]byte, l.Count()*3)
		steps := 0
		for p.Step(l, rgb) {
			steps++
		}
		assert.Equal(t, want[kind], steps, string(kind))
	}
}

func TestPlaneZLightsOnePanel(t *testing.T) {
	l, err := layout.New(layout.Dim{X: 2, Y: 2, Z: 2}, layout.Serpentine{})
	require.NoError(t, err)
	p, err := NewPattern(PlaneZ)
	require.NoError(t, err)

	rgb := make([]byte, l.Count()*3)
	require.True(t, p.Step(l, rgb))
	require.True(t, p.Step(l, rgb))
	for i := 0; i < l.Count(); i++ {
		lit := rgb[i*3+1] == 255
		assert.Equal(t, i >= 4, lit, "led %d", i)
	}
}

func TestUnknownPattern(t *testing.T) {
	_, err := NewPattern("disco")
	assert.ErrorIs(t, err, ErrUnknownPattern)
}
