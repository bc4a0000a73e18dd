package sequence

import (
	"context"
	"errors"
	"path"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/coreman2200/scenereel/internal/loop"
)

// Config carries the Player's collaborators.
type Config struct {
	Renderer Renderer
	Hooks    Hooks
	// Clock arms playback timers. Defaults to the wall clock.
	Clock  clock.Clock
	Logger *zerolog.Logger
	// MaxInflight bounds concurrent frame loads. Defaults to 8.
	MaxInflight int64
	// QueueSize is the depth of the loop's task queue. Defaults to 64.
	QueueSize int
}

// Player owns a scene's frames and drives their playback. All state below is
// touched only from the loop goroutine.
type Player struct {
	loop  *loop.Loop
	rdr   Renderer
	hooks Hooks
	clk   clock.Clock
	log   zerolog.Logger
	sem   *semaphore.Weighted

	runCtx context.Context
	// active mirrors session for loader goroutines that want to skip work
	// for a superseded scene before touching I/O.
	active atomic.Uint64

	session   uint64
	scene     string
	expected  int
	pending   []Frame
	frames    []Frame
	loaded    bool
	index     int
	displayed bool

	playing  bool
	timer    *clock.Timer
	timerSeq uint64
}

// NewPlayer constructs an idle Player. Run must be active before any command
// is issued.
func NewPlayer(cfg Config) *Player {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.MaxInflight <= 0 {
		cfg.MaxInflight = 8
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	lg := zerolog.Nop()
	if cfg.Logger != nil {
		lg = cfg.Logger.With().Str("component", "player").Logger()
	}
	return &Player{
		loop:   loop.New(cfg.QueueSize),
		rdr:    cfg.Renderer,
		hooks:  cfg.Hooks,
		clk:    cfg.Clock,
		log:    lg,
		sem:    semaphore.NewWeighted(cfg.MaxInflight),
		runCtx: context.Background(),
		index:  -1,
	}
}

// Run drives the Player until ctx is cancelled. Cancelling also aborts frame
// loads that are still in flight.
func (p *Player) Run(ctx context.Context) error {
	p.runCtx = ctx
	err := p.loop.Run(ctx)
	p.stopTimer()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (p *Player) do(fn func()) error {
	return p.loop.Do(context.Background(), fn)
}

// LoadFrames starts a new session for the named scene and loads specs. Any
// scene that was loading or playing is abandoned.
func (p *Player) LoadFrames(name string, specs []FrameSpec) error {
	return p.do(func() { p.loadFrames(name, specs) })
}

// LoadScene selects each frame's cloud of the given type and loads the
// result. An empty cloudType picks the first type of the first frame.
func (p *Player) LoadScene(name string, frames []SceneFrame, cloudType string) error {
	return p.do(func() { p.loadScene(name, frames, cloudType) })
}

// LoadSingleFrame loads a lone cloud as a one-frame scene.
func (p *Player) LoadSingleFrame(framePath string) error {
	return p.do(func() {
		p.loadFrames(path.Base(framePath), []FrameSpec{{Timestamp: 0, Path: framePath}})
	})
}

// Reset abandons the current scene and returns to Idle.
func (p *Player) Reset() error {
	return p.do(func() {
		p.beginSession("")
		p.status(MsgReset)
	})
}

// Play starts playback, or pauses it when already playing. It returns the
// resulting playing state.
func (p *Player) Play() bool {
	var playing bool
	if err := p.do(func() { playing = p.play() }); err != nil {
		return false
	}
	return playing
}

// Pause stops playback. It reports whether playback was running.
func (p *Player) Pause() bool {
	var was bool
	if err := p.do(func() { was = p.pause() }); err != nil {
		return false
	}
	return was
}

// NextFrame displays the following frame, wrapping to the first. It returns
// false when nothing is loaded.
func (p *Player) NextFrame() bool {
	var ok bool
	if err := p.do(func() { ok = p.step(1) }); err != nil {
		return false
	}
	return ok
}

// PreviousFrame displays the preceding frame, wrapping to the last.
func (p *Player) PreviousFrame() bool {
	var ok bool
	if err := p.do(func() { ok = p.step(-1) }); err != nil {
		return false
	}
	return ok
}

// Snapshot returns a copy of the current state.
func (p *Player) Snapshot() Snapshot {
	var s Snapshot
	_ = p.do(func() { s = p.snapshot() })
	return s
}

func (p *Player) state() PlayerState {
	switch {
	case !p.loaded:
		return Idle
	case p.playing:
		return Playing
	default:
		return Paused
	}
}

func (p *Player) snapshot() Snapshot {
	frames := make([]Frame, len(p.frames))
	copy(frames, p.frames)
	return Snapshot{
		State:      p.state(),
		Session:    p.session,
		Scene:      p.scene,
		Loaded:     p.loaded,
		Playing:    p.playing,
		Index:      p.index,
		TimerArmed: p.timer != nil,
		Expected:   p.expected,
		Received:   len(p.pending),
		Frames:     frames,
	}
}

func (p *Player) status(text string) {
	p.log.Debug().Str("status", text).Msg("status")
	if p.hooks.Status != nil {
		p.hooks.Status(text)
	}
}
