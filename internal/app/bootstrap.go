package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/coreman2200/scenereel/internal/cloud"
	"github.com/coreman2200/scenereel/internal/config"
	diag "github.com/coreman2200/scenereel/internal/diagnostics"
	"github.com/coreman2200/scenereel/internal/driver/preview"
	"github.com/coreman2200/scenereel/internal/layout"
	"github.com/coreman2200/scenereel/internal/led"
	"github.com/coreman2200/scenereel/internal/render"
	"github.com/coreman2200/scenereel/internal/scene"
	"github.com/coreman2200/scenereel/internal/sequence"
	"github.com/coreman2200/scenereel/internal/upload"
	"github.com/coreman2200/scenereel/internal/ws"
)

// Options tunes New beyond what the config file covers.
type Options struct {
	// Drivers receive every rendered frame next to the LED sink.
	Drivers []render.Driver
	// OnStatus mirrors player status lines, e.g. to a console.
	OnStatus func(text string)
	// Clock drives playback timers; the wall clock when nil.
	Clock clock.Clock
}

// Core is the wired application: catalog, renderer, LEDs, player, hub and
// uploader.
type Core struct {
	cfg *config.Config
	log zerolog.Logger

	Catalog  *scene.Store
	Watcher  *scene.Watcher
	Registry *render.Registry
	Engine   *render.Engine
	Player   *sequence.Player
	Hub      *ws.Hub
	Uploader *upload.Uploader

	leds    led.Driver
	lay     layout.Layout
	pattern patternRun
}

func New(cfg *config.Config, log zerolog.Logger, opts Options) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Core{cfg: cfg, log: log}

	// 1) Catalog
	cat, err := scene.LoadFile(cfg.Scenes)
	if err != nil {
		return nil, err
	}
	c.Catalog = scene.NewStore(cat)

	// 2) Frame source
	var src cloud.Source = cloud.Dir(cfg.Frames.Root)
	if cfg.Frames.BaseURL != "" {
		h, err := cloud.NewHTTP(cfg.Frames.BaseURL, nil)
		if err != nil {
			return nil, err
		}
		src = h
	}

	// 3) LUT from the physical layout
	d := cfg.Cube.Dim
	lay, err := layout.New(layout.Dim{X: d.X, Y: d.Y, Z: d.Z}, layout.Serpentine{
		XFlipEveryRow:   cfg.Cube.XFlipEveryRow,
		YFlipEveryPanel: cfg.Cube.YFlipEveryPanel,
	})
	if err != nil {
		return nil, err
	}
	c.lay = lay
	dim := render.Dimensions{X: d.X, Y: d.Y, Z: d.Z}

	// 4) Engine
	c.Registry = render.NewRegistry()
	registerDefaultShaders(c.Registry)
	eng, err := render.NewEngine(dim, led.BuildLUT(lay), cloud.Loader{Src: src}, nil,
		&render.Uniforms{GlobalBrightness: 1}, opts.Drivers...)
	if err != nil {
		return nil, err
	}
	if err := eng.SetRenderer(cfg.Cube.Shader, cfg.Cube.Preset, c.Registry); err != nil {
		return nil, err
	}
	applyPostDefaults(eng, cfg.Cube.BudgetmA, cfg.Cube.WhiteCap)
	eng.CaptureW, eng.CaptureH = cfg.Capture.Width, cfg.Capture.Height
	c.Engine = eng

	// 5) LED output
	switch strings.ToLower(cfg.Cube.Driver) {
	case "spi":
		c.leds, err = led.OpenNRZ(cfg.Cube.SPI.Dev, lay.Count(), cfg.Cube.ColorOrder, cfg.Cube.SPI.SpeedHz)
		if err != nil {
			return nil, fmt.Errorf("open led driver: %w", err)
		}
	default:
		c.leds = led.NewSim(lay.Count())
	}
	eng.AddDriver(&led.Sink{Drv: c.leds, Brightness: cfg.Cube.Brightness})

	// 6) Hub and preview stream
	c.Hub = ws.NewHub(c, log.With().Str("component", "ws").Logger())
	eng.AddDriver(preview.New(c.Hub, dim, time.Duration(cfg.Preview.ThrottleMs)*time.Millisecond))

	// 7) Uploads
	var store upload.Store
	switch {
	case cfg.Upload.URL != "":
		store = upload.HTTPStore{URL: cfg.Upload.URL}
	case cfg.Upload.Dir != "":
		store = upload.DirStore{Dir: cfg.Upload.Dir}
	}
	if store != nil {
		c.Uploader = upload.New(store, cfg.Upload.Queue, log.With().Str("component", "upload").Logger())
	}

	// 8) Player wiring (hooks → hub, uploader)
	hooks := sequence.Hooks{
		Status: func(text string) {
			c.Hub.Status(diag.Status(text))
			if opts.OnStatus != nil {
				opts.OnStatus(text)
			}
		},
		LoadFailed: func(path string, err error) {
			c.Hub.Status(diag.LoadFailed(path, err))
		},
	}
	if c.Uploader != nil {
		hooks.PostRender = c.Uploader.Enqueue
	}
	c.Player = sequence.NewPlayer(sequence.Config{
		Renderer:    eng,
		Hooks:       hooks,
		Clock:       opts.Clock,
		Logger:      &log,
		MaxInflight: cfg.MaxInflight,
	})

	// 9) Catalog hot reload
	if cfg.WatchScenes {
		c.Watcher = scene.NewWatcher(cfg.Scenes, c.Catalog, log.With().Str("component", "catalog").Logger())
		c.Watcher.OnReload = c.catalogReloaded
	}

	c.Hub.Extra = c.health
	return c, nil
}

func (c *Core) catalogReloaded(cat *scene.Catalog, err error) {
	d := diag.Diagnostic{Severity: diag.Info, Code: diag.CodeCatalogReload, Summary: "Scene catalog reloaded", At: time.Now()}
	if err != nil {
		d.Severity = diag.Warn
		d.Summary = "Scene catalog reload failed; previous catalog kept"
		d.Detail = err.Error()
	} else {
		d.Evidence = map[string]any{"scenes": cat.IDs()}
	}
	c.Hub.Status(d)
}

func (c *Core) health() map[string]any {
	out := map[string]any{
		"render": c.Engine.Stats(),
		"scenes": c.Catalog.Load().Len(),
		"driver": c.cfg.Cube.Driver,
	}
	if c.Uploader != nil {
		out["uploads"] = c.Uploader.Stats()
	}
	return out
}
