package cloud

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# two points
0 0 0 255 0 0
1 2 3 0 0 255
`

func TestDecodeXYZ(t *testing.T) {
	c, err := DecodeXYZ(strings.NewReader(sample))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	assert.Equal(t, Vec{1, 2, 3}, c.Points[1])
	assert.Equal(t, RGB{1, 0, 0}, c.Colors[0])

	lo, hi, ok := c.Bounds()
	require.True(t, ok)
	assert.Equal(t, Vec{0, 0, 0}, lo)
	assert.Equal(t, Vec{1, 2, 3}, hi)
}

func TestDecodeXYZRejectsBadLines(t *testing.T) {
	_, err := DecodeXYZ(strings.NewReader("1 2\n"))
	assert.ErrorContains(t, err, "line 1")

	_, err = DecodeXYZ(strings.NewReader("1 2 3\n4 5 6 1 1 1\n"))
	assert.Error(t, err)
}

func TestDecodeUnsupported(t *testing.T) {
	_, err := Decode("frame.pcd", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDirLoader(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scene"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "scene", "f0.xyz"), []byte(sample), 0o644))

	l := Loader{Src: Dir(root)}
	c, err := l.Load(context.Background(), "scene/f0.xyz")
	require.NoError(t, err)
	assert.Equal(t, "scene/f0.xyz", c.Path)
	assert.Equal(t, 2, c.Len())

	// cleaned paths stay inside the root
	_, err = l.Load(context.Background(), "../../etc/passwd.xyz")
	assert.Error(t, err)
}

func TestHTTPLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clouds/f0.xyz" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	src, err := NewHTTP(srv.URL+"/clouds/", srv.Client())
	require.NoError(t, err)
	l := Loader{Src: src}

	c, err := l.Load(context.Background(), "f0.xyz")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, err = l.Load(context.Background(), "missing.xyz")
	assert.ErrorContains(t, err, "404")
}
