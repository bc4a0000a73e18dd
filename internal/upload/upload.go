// Package upload ships captured frame images off the player loop.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Capture is one rendered frame image and where it came from.
type Capture struct {
	ID        string
	Image     image.Image
	Index     int
	Timestamp float64
	Path      string
	Scene     string
}

// Store persists an encoded capture and returns where it went.
type Store interface {
	Put(ctx context.Context, c Capture, pngData []byte) (string, error)
}

// Uploader is a bounded queue drained by a single worker.
type Uploader struct {
	q       chan Capture
	store   Store
	log     zerolog.Logger
	sent    atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64
}

func New(store Store, size int, log zerolog.Logger) *Uploader {
	if size <= 0 {
		size = 16
	}
	return &Uploader{q: make(chan Capture, size), store: store, log: log}
}

// Enqueue never blocks; when the queue is full the capture is dropped.
// Its signature matches the player's post-render hook.
func (u *Uploader) Enqueue(img image.Image, index int, ts float64, path, scene string) {
	c := Capture{ID: uuid.NewString(), Image: img, Index: index, Timestamp: ts, Path: path, Scene: scene}
	select {
	case u.q <- c:
	default:
		u.dropped.Add(1)
		u.log.Warn().Str("scene", scene).Int("index", index).Msg("upload queue full, capture dropped")
	}
}

// Run uploads captures until ctx is done.
func (u *Uploader) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-u.q:
			u.upload(ctx, c)
		}
	}
}

func (u *Uploader) upload(ctx context.Context, c Capture) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.Image); err != nil {
		u.failed.Add(1)
		u.log.Error().Err(err).Str("id", c.ID).Msg("encode capture")
		return
	}
	where, err := u.store.Put(ctx, c, buf.Bytes())
	if err != nil {
		u.failed.Add(1)
		u.log.Warn().Err(err).Str("id", c.ID).Str("scene", c.Scene).Int("index", c.Index).Msg("upload capture")
		return
	}
	u.sent.Add(1)
	u.log.Debug().Str("id", c.ID).Str("to", where).Msg("capture uploaded")
}

type Stats struct {
	Sent    uint64 `json:"sent"`
	Dropped uint64 `json:"dropped"`
	Failed  uint64 `json:"failed"`
}

func (u *Uploader) Stats() Stats {
	return Stats{Sent: u.sent.Load(), Dropped: u.dropped.Load(), Failed: u.failed.Load()}
}

func (s Stats) String() string {
	return fmt.Sprintf("sent=%d dropped=%d failed=%d", s.Sent, s.Dropped, s.Failed)
}
