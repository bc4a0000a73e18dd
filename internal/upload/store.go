package upload

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DirStore writes captures as <scene>-<index>-<id>.png under Dir.
type DirStore struct {
	Dir string
}

func (d DirStore) Put(_ context.Context, c Capture, data []byte) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s-%04d-%s.png", safeName(c.Scene), c.Index, c.ID)
	full := filepath.Join(d.Dir, name)
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return full, nil
}

func safeName(s string) string {
	if s == "" {
		return "scene"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}

// HTTPStore POSTs each capture as image/png to URL.
type HTTPStore struct {
	URL    string
	Client *http.Client
}

func (h HTTPStore) Put(ctx context.Context, c Capture, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("X-Frame-Id", c.ID)
	req.Header.Set("X-Frame-Scene", c.Scene)
	req.Header.Set("X-Frame-Index", strconv.Itoa(c.Index))
	req.Header.Set("X-Frame-Timestamp", strconv.FormatFloat(c.Timestamp, 'f', -1, 64))
	req.Header.Set("X-Frame-Path", c.Path)

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("upload %s: %s", h.URL, resp.Status)
	}
	if loc := resp.Header.Get("Location"); loc != "" {
		return loc, nil
	}
	return h.URL, nil
}
