package sequence

import (
	"cmp"
	"slices"
)

// Normalize returns the frames sorted chronologically, rebased so the first
// frame sits at t=0, with each Duration set to the gap to its successor. The
// last frame gets LastFrameDuration. Frames with equal timestamps keep their
// input order. The input slice is not modified.
func Normalize(frames []Frame) []Frame {
	if len(frames) == 0 {
		return nil
	}
	out := slices.Clone(frames)
	slices.SortStableFunc(out, func(a, b Frame) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})

	offset := out[0].Timestamp
	for i := range out {
		out[i].Timestamp -= offset
	}
	last := len(out) - 1
	for i := 0; i < last; i++ {
		out[i].Duration = out[i+1].Timestamp - out[i].Timestamp
	}
	out[last].Duration = LastFrameDuration
	return out
}
