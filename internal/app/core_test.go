package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/scenereel/internal/config"
	"github.com/coreman2200/scenereel/internal/led"
	"github.com/coreman2200/scenereel/internal/render"
	"github.com/coreman2200/scenereel/internal/scene"
	"github.com/coreman2200/scenereel/internal/sequence"
)

type countingDriver struct {
	mu sync.Mutex
	n  int
}

func (d *countingDriver) Write([]render.Color) error {
	d.mu.Lock()
	d.n++
	d.mu.Unlock()
	return nil
}

func (d *countingDriver) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.n
}

func writeFixture(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	frames := filepath.Join(dir, "frames")
	require.NoError(t, os.MkdirAll(filepath.Join(frames, "walk"), 0o755))
	for name, body := range map[string]string{
		"walk/a.xyz": "0 0 0\n1 1 1\n",
		"walk/b.xyz": "0 0 0 255 0 0\n",
		"walk/c.xyz": "0.5 0.5 0.5\n",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(frames, name), []byte(body), 0o644))
	}
	catalog := filepath.Join(dir, "scenes.json")
	require.NoError(t, os.WriteFile(catalog, []byte(`{
  "walk": {"name": "Walk", "frames": [
    {"timestamp": 2.0, "clouds": {"lidar": {"path": "walk/c.xyz"}}},
    {"timestamp": 0.5, "clouds": {"lidar": {"path": "walk/a.xyz"}}},
    {"timestamp": 1.0, "clouds": {"lidar": {"path": "walk/b.xyz"}}}
  ]}
}`), 0o644))

	cfg := config.Default()
	cfg.Scenes = catalog
	cfg.Frames.Root = frames
	cfg.Cube.Dim = config.Dim{X: 2, Y: 2, Z: 2}
	cfg.Capture = config.Capture{Width: 8, Height: 8}
	cfg.Upload.Dir = filepath.Join(dir, "captures")
	return cfg
}

func startCore(t *testing.T, cfg *config.Config, opts Options) *Core {
	t.Helper()
	c, err := New(cfg, zerolog.Nop(), opts)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return c
}

func TestCoreLoadsSceneEndToEnd(t *testing.T) {
	cfg := writeFixture(t)
	drv := &countingDriver{}
	var (
		mu       sync.Mutex
		statuses []string
	)
	c := startCore(t, cfg, Options{
		Drivers: []render.Driver{drv},
		OnStatus: func(s string) {
			mu.Lock()
			statuses = append(statuses, s)
			mu.Unlock()
		},
	})

	require.NoError(t, c.LoadScene("walk", ""))
	require.Eventually(t, func() bool { return c.Snapshot().Loaded }, 2*time.Second, 10*time.Millisecond)

	snap := c.Snapshot()
	require.Len(t, snap.Frames, 3)
	assert.Equal(t, "walk/a.xyz", snap.Frames[0].Path)
	assert.Equal(t, 0.0, snap.Frames[0].Timestamp)
	assert.InDelta(t, 0.5, snap.Frames[1].Timestamp, 1e-9)
	assert.InDelta(t, 1.5, snap.Frames[2].Timestamp, 1e-9)
	assert.InDelta(t, 0.5, snap.Frames[0].Duration, 1e-9)
	assert.InDelta(t, 1.0, snap.Frames[1].Duration, 1e-9)
	assert.Equal(t, sequence.LastFrameDuration, snap.Frames[2].Duration)
	assert.Equal(t, "Walk", snap.Scene)
	for _, f := range snap.Frames {
		assert.Equal(t, "Walk", f.Scene, "frames carry the display name")
	}
	assert.Equal(t, sequence.Paused, snap.State)
	assert.Equal(t, 1, drv.count(), "first frame shown once")

	assert.True(t, c.Next())
	assert.Equal(t, 1, c.Snapshot().Index)
	assert.True(t, c.Prev())
	assert.True(t, c.Prev())
	assert.Equal(t, 2, c.Snapshot().Index, "previous wraps to the last frame")

	// every displayed frame is captured and written to the upload dir
	require.Eventually(t, func() bool {
		entries, _ := os.ReadDir(cfg.Upload.Dir)
		return len(entries) == 4
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Contains(t, statuses, "Scene Walk loaded: 3 frames")
	mu.Unlock()

	require.NoError(t, c.Reset())
	assert.Equal(t, sequence.Idle, c.Snapshot().State)
}

func TestCoreUnknownSceneAndCloudType(t *testing.T) {
	cfg := writeFixture(t)
	c := startCore(t, cfg, Options{})

	assert.ErrorIs(t, c.LoadScene("nope", ""), scene.ErrUnknownScene)

	require.NoError(t, c.LoadScene("walk", "radar"))
	assert.Equal(t, sequence.Idle, c.Snapshot().State, "missing cloud type aborts the load")

	scenes := c.Scenes()
	require.Len(t, scenes, 1)
	assert.Equal(t, []string{"lidar"}, scenes[0].CloudTypes())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := writeFixture(t)
	cfg.Cube.Shader = "sparkles"
	_, err := New(cfg, zerolog.Nop(), Options{})
	assert.ErrorContains(t, err, "shader not found")

	cfg = writeFixture(t)
	cfg.MaxInflight = 0
	_, err = New(cfg, zerolog.Nop(), Options{})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestCoreRunsWiringPattern(t *testing.T) {
	c := startCore(t, writeFixture(t), Options{})
	sim := c.leds.(*led.Sim)

	assert.ErrorIs(t, c.RunPattern("disco"), led.ErrUnknownPattern)
	require.NoError(t, c.RunPattern(string(led.RGBTest)))
	require.Eventually(t, func() bool {
		n, _ := sim.Frames()
		return n == 3
	}, 2*time.Second, 10*time.Millisecond)

	_, last := sim.Frames()
	assert.Equal(t, []byte{0, 0, 255}, last[:3], "the last step is blue")
}
