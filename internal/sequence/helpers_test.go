package sequence

import (
	"context"
	"image"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

type loadResult struct {
	payload any
	err     error
}

// fakeRenderer hands out loads only when the test resolves them, so tests
// decide completion order.
type fakeRenderer struct {
	mu       sync.Mutex
	gates    map[string]chan loadResult
	attached []any
	detaches int
	renders  int
	captures int
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{gates: map[string]chan loadResult{}}
}

func (r *fakeRenderer) gate(path string) chan loadResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gates[path]
	if !ok {
		g = make(chan loadResult, 1)
		r.gates[path] = g
	}
	return g
}

func (r *fakeRenderer) resolve(path string) { r.gate(path) <- loadResult{payload: "payload:" + path} }

func (r *fakeRenderer) fail(path string, err error) { r.gate(path) <- loadResult{err: err} }

func (r *fakeRenderer) Load(ctx context.Context, path string) (any, error) {
	select {
	case res := <-r.gate(path):
		return res.payload, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *fakeRenderer) Attach(payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attached = append(r.attached, payload)
}

func (r *fakeRenderer) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detaches++
}

func (r *fakeRenderer) Render() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders++
	return nil
}

func (r *fakeRenderer) CaptureImage() (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captures++
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func (r *fakeRenderer) lastAttached() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.attached) == 0 {
		return nil
	}
	return r.attached[len(r.attached)-1]
}

type statusLog struct {
	mu    sync.Mutex
	lines []string
}

func (s *statusLog) add(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, text)
}

func (s *statusLog) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func (s *statusLog) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) == 0 {
		return ""
	}
	return s.lines[len(s.lines)-1]
}

func (s *statusLog) contains(prefix string) bool {
	for _, l := range s.all() {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

func startPlayer(t *testing.T, r Renderer, hooks Hooks, clk clock.Clock) *Player {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPlayer(Config{Renderer: r, Hooks: hooks, Clock: clk})
	done := make(chan struct{})
	go func() {
		_ = p.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return p
}

func waitSnapshot(t *testing.T, p *Player, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	var s Snapshot
	require.Eventually(t, func() bool {
		s = p.Snapshot()
		return cond(s)
	}, 2*time.Second, 2*time.Millisecond)
	return s
}

func loaded(s Snapshot) bool { return s.Loaded }

func framePaths(frames []Frame) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.Path
	}
	return out
}

// loadResolved loads specs and resolves every path in order, waiting for the
// scene to complete.
func loadResolved(t *testing.T, p *Player, r *fakeRenderer, name string, specs []FrameSpec) Snapshot {
	t.Helper()
	require.NoError(t, p.LoadFrames(name, specs))
	for _, s := range specs {
		r.resolve(s.Path)
	}
	return waitSnapshot(t, p, loaded)
}
