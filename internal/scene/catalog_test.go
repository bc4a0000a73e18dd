package scene

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `{
  "walk": {
    "name": "Courtyard walk",
    "frames": [
      {"timestamp": 5, "clouds": {"lidar": {"path": "walk/5.xyz"}, "radar": "walk/5r.xyz"}},
      {"timestamp": 3, "clouds": {"lidar": {"path": "walk/3.xyz"}}}
    ]
  },
  "empty": {"frames": []},
  "atrium": {"name": "Atrium", "frames": [{"timestamp": 0, "clouds": {}}]}
}`

func TestParseKeepsDocumentOrder(t *testing.T) {
	c, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"walk", "empty", "atrium"}, c.IDs())

	walk, err := c.Get("walk")
	require.NoError(t, err)
	assert.Equal(t, "Courtyard walk", walk.Name)
	require.Len(t, walk.Frames, 2)
	assert.Equal(t, 5.0, walk.Frames[0].Timestamp)
	assert.Equal(t, "walk/5r.xyz", walk.Frames[0].Clouds["radar"])

	types, err := c.CloudTypes("walk")
	require.NoError(t, err)
	assert.Equal(t, []string{"lidar", "radar"}, types)

	empty, err := c.Get("empty")
	require.NoError(t, err)
	assert.Equal(t, "empty", empty.Name, "name falls back to the id")
	assert.Empty(t, empty.Frames)

	_, err = c.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownScene)
}

func TestParseRejectsMalformed(t *testing.T) {
	for name, in := range map[string]string{
		"not json":      `{"a":`,
		"array root":    `[]`,
		"frames object": `{"a": {"frames": {}}}`,
		"bad timestamp": `{"a": {"frames": [{"timestamp": "1"}]}}`,
		"no path":       `{"a": {"frames": [{"timestamp": 1, "clouds": {"lidar": {}}}]}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(in))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestWatcherReloadsAndKeepsOldOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": {"frames": []}}`), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	store := NewStore(c)

	var reloads, failures atomic.Int32
	w := NewWatcher(path, store, zerolog.Nop())
	w.OnReload = func(_ *Catalog, err error) {
		if err != nil {
			failures.Add(1)
			return
		}
		reloads.Add(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// the watch is registered asynchronously; keep rewriting until seen
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(`{"a": {"frames": []}, "b": {"frames": []}}`), 0o644)
		return store.Load().Len() == 2
	}, 2*time.Second, 50*time.Millisecond)

	before := failures.Load()
	require.NoError(t, os.WriteFile(path, []byte(`{"a":`), 0o644))
	require.Eventually(t, func() bool { return failures.Load() > before }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, store.Load().IDs())
	assert.Positive(t, reloads.Load())
}
