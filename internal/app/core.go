package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/coreman2200/scenereel/internal/scene"
	"github.com/coreman2200/scenereel/internal/sequence"
)

// Run drives the player, the uploader and the catalog watcher until ctx is
// done or one of them fails. The LED driver is closed on the way out.
func (c *Core) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.Player.Run(ctx) })
	if c.Uploader != nil {
		g.Go(func() error { return c.Uploader.Run(ctx) })
	}
	if c.Watcher != nil {
		g.Go(func() error { return c.Watcher.Run(ctx) })
	}
	err := g.Wait()
	c.StopPattern()
	if cerr := c.leds.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// LoadScene loads a catalog scene by id. Frames, status lines and captures
// carry the scene's display name. An empty cloudType falls back to the
// configured one, then to the first type of the first frame.
func (c *Core) LoadScene(id, cloudType string) error {
	s, err := c.Catalog.Load().Get(id)
	if err != nil {
		return err
	}
	if cloudType == "" {
		cloudType = c.cfg.CloudType
	}
	c.StopPattern()
	c.log.Info().Str("scene", id).Str("type", cloudType).Int("frames", len(s.Frames)).Msg("load scene")
	return c.Player.LoadScene(s.Name, s.Frames, cloudType)
}

func (c *Core) LoadFrame(path string) error {
	c.log.Info().Str("path", path).Msg("load single frame")
	c.StopPattern()
	return c.Player.LoadSingleFrame(path)
}

func (c *Core) Play() bool  { return c.Player.Play() }
func (c *Core) Pause() bool { return c.Player.Pause() }
func (c *Core) Next() bool  { return c.Player.NextFrame() }
func (c *Core) Prev() bool  { return c.Player.PreviousFrame() }

func (c *Core) Reset() error { return c.Player.Reset() }

func (c *Core) Snapshot() sequence.Snapshot { return c.Player.Snapshot() }

func (c *Core) Scenes() []scene.Scene {
	cat := c.Catalog.Load()
	ids := cat.IDs()
	out := make([]scene.Scene, 0, len(ids))
	for _, id := range ids {
		if s, err := cat.Get(id); err == nil {
			out = append(out, s)
		}
	}
	return out
}
