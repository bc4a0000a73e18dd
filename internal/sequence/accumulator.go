package sequence

import "fmt"

func (p *Player) onFrameLoaded(session uint64, payload any, meta frameMeta) {
	if session != p.session {
		p.log.Debug().Uint64("session", session).Uint64("active", p.session).Str("path", meta.path).Msg("stale frame dropped")
		return
	}
	p.pending = append(p.pending, Frame{
		Timestamp: meta.timestamp,
		Path:      meta.path,
		Scene:     meta.scene,
		Payload:   payload,
	})
	p.status(fmt.Sprintf("Loaded %d of %d frames", len(p.pending), meta.numFrames))
	if len(p.pending) < meta.numFrames {
		return
	}

	p.frames = Normalize(p.pending)
	p.pending = nil
	p.loaded = true
	p.log.Info().Uint64("session", session).Str("scene", meta.scene).Int("frames", len(p.frames)).Msg("scene loaded")
	p.status(fmt.Sprintf("Scene %s loaded: %d frames", meta.scene, len(p.frames)))
	p.show(0)
}

func (p *Player) onFrameFailed(meta frameMeta, err error) {
	if meta.session != p.session {
		return
	}
	p.log.Warn().Err(err).Uint64("session", meta.session).Str("path", meta.path).Msg("frame load failed")
	p.status(fmt.Sprintf("Failed to load %s: %v", meta.path, err))
	if p.hooks.LoadFailed != nil {
		p.hooks.LoadFailed(meta.path, err)
	}
}
