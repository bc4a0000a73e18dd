package sequence

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRebasesAndDerivesDurations(t *testing.T) {
	in := []Frame{
		{Timestamp: 5, Path: "b"},
		{Timestamp: 3, Path: "a"},
		{Timestamp: 9, Path: "c"},
	}
	out := Normalize(in)

	require.Len(t, out, 3)
	assert.Equal(t, []string{"a", "b", "c"}, framePaths(out))
	assert.Equal(t, []float64{0, 2, 6}, []float64{out[0].Timestamp, out[1].Timestamp, out[2].Timestamp})
	assert.Equal(t, []float64{2, 4, 1.0}, []float64{out[0].Duration, out[1].Duration, out[2].Duration})

	// input untouched
	assert.Equal(t, 5.0, in[0].Timestamp)
	assert.Equal(t, 0.0, in[0].Duration)
}

func TestNormalizeKeepsOrderOfEqualTimestamps(t *testing.T) {
	out := Normalize([]Frame{
		{Timestamp: 2, Path: "first-at-2"},
		{Timestamp: 1, Path: "at-1"},
		{Timestamp: 2, Path: "second-at-2"},
	})
	assert.Equal(t, []string{"at-1", "first-at-2", "second-at-2"}, framePaths(out))
	assert.Equal(t, 1.0, out[0].Duration)
	assert.Equal(t, 0.0, out[1].Duration)
	assert.Equal(t, LastFrameDuration, out[2].Duration)
}

func TestNormalizeSingleAndEmpty(t *testing.T) {
	assert.Nil(t, Normalize(nil))

	out := Normalize([]Frame{{Timestamp: 42, Path: "only"}})
	require.Len(t, out, 1)
	assert.Equal(t, 0.0, out[0].Timestamp)
	assert.Equal(t, LastFrameDuration, out[0].Duration)
}

func TestNormalizeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 1; n <= 40; n++ {
		in := make([]Frame, n)
		for i := range in {
			in[i] = Frame{Timestamp: float64(rng.Intn(50)) + rng.Float64()*10 - 20}
		}
		out := Normalize(in)
		require.Len(t, out, n)
		assert.Equal(t, 0.0, out[0].Timestamp)
		for i := 0; i < n-1; i++ {
			assert.LessOrEqual(t, out[i].Timestamp, out[i+1].Timestamp)
			assert.InDelta(t, out[i+1].Timestamp-out[i].Timestamp, out[i].Duration, 1e-9)
			assert.GreaterOrEqual(t, out[i].Duration, 0.0)
		}
		assert.Equal(t, LastFrameDuration, out[n-1].Duration)
	}
}
