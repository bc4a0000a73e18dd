package sequence

import (
	"context"
	"fmt"
	"sort"
)

// frameMeta travels with a load request and comes back with its result.
type frameMeta struct {
	session   uint64
	index     int
	timestamp float64
	path      string
	scene     string
	numFrames int
}

// beginSession invalidates everything issued so far and clears the stage.
func (p *Player) beginSession(name string) uint64 {
	p.session++
	p.active.Store(p.session)
	p.stopPlayback()
	p.pending = nil
	p.frames = nil
	p.loaded = false
	p.index = -1
	p.expected = 0
	p.scene = name
	if p.displayed {
		p.rdr.Detach()
		p.displayed = false
	}
	return p.session
}

func (p *Player) loadFrames(name string, specs []FrameSpec) {
	session := p.beginSession(name)
	if len(specs) == 0 {
		p.status(MsgNoFrames)
		return
	}
	p.expected = len(specs)
	p.log.Info().Uint64("session", session).Str("scene", name).Int("frames", len(specs)).Msg("loading scene")
	p.status(fmt.Sprintf("Loading %s (%d frames)...", name, len(specs)))

	ctx := p.runCtx
	for i, s := range specs {
		go p.fetch(ctx, frameMeta{
			session:   session,
			index:     i,
			timestamp: s.Timestamp,
			path:      s.Path,
			scene:     name,
			numFrames: len(specs),
		})
	}
}

func (p *Player) loadScene(name string, frames []SceneFrame, cloudType string) {
	if len(frames) == 0 {
		p.loadFrames(name, nil)
		return
	}
	if cloudType == "" {
		cloudType = firstCloudType(frames[0])
	}
	specs := make([]FrameSpec, 0, len(frames))
	for i, f := range frames {
		if len(f.Clouds) == 0 {
			p.beginSession(name)
			p.status(fmt.Sprintf("No clouds in frame %d.", i))
			return
		}
		cloudPath, ok := f.Clouds[cloudType]
		if !ok {
			p.beginSession(name)
			p.status(fmt.Sprintf("No %s cloud in frame %d.", cloudType, i))
			return
		}
		specs = append(specs, FrameSpec{Timestamp: f.Timestamp, Path: cloudPath})
	}
	p.loadFrames(name, specs)
}

// fetch runs on its own goroutine and hands the result back to the loop.
// In-flight loads are never aborted when a newer session starts; their
// results are dropped by the accumulator instead.
func (p *Player) fetch(ctx context.Context, meta frameMeta) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return
	}
	if p.active.Load() != meta.session {
		// Superseded while queued behind the semaphore; skip the I/O.
		p.sem.Release(1)
		return
	}
	payload, err := p.rdr.Load(ctx, meta.path)
	p.sem.Release(1)

	p.loop.Submit(func() {
		if err != nil {
			p.onFrameFailed(meta, err)
			return
		}
		p.onFrameLoaded(meta.session, payload, meta)
	})
}

func firstCloudType(f SceneFrame) string {
	types := make([]string, 0, len(f.Clouds))
	for k := range f.Clouds {
		types = append(types, k)
	}
	sort.Strings(types)
	if len(types) == 0 {
		return ""
	}
	return types[0]
}
