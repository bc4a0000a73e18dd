package cloud

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Source opens the raw bytes behind a frame path.
type Source interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Dir serves paths relative to a root directory.
type Dir string

func (d Dir) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := filepath.Clean("/" + filepath.FromSlash(p))
	full := filepath.Join(string(d), clean)
	rel, err := filepath.Rel(string(d), full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("path %q escapes %s", p, string(d))
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("open cloud: %w", err)
	}
	return f, nil
}

// HTTP fetches paths relative to a base URL.
type HTTP struct {
	Base   *url.URL
	Client *http.Client
}

// NewHTTP parses base and returns an HTTP source using client, or
// http.DefaultClient when nil.
func NewHTTP(base string, client *http.Client) (*HTTP, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{Base: u, Client: client}, nil
}

func (h *HTTP) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	ref, err := url.Parse(strings.TrimPrefix(p, "/"))
	if err != nil {
		return nil, fmt.Errorf("cloud path: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.Base.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch cloud: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch cloud %s: %s", p, resp.Status)
	}
	return resp.Body, nil
}

// Loader decodes clouds read from a Source.
type Loader struct {
	Src Source
}

func (l Loader) Load(ctx context.Context, p string) (*Cloud, error) {
	rc, err := l.Src.Open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	c, err := Decode(p, rc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	return c, nil
}
