package sequence

import (
	"fmt"
	"time"
)

func (p *Player) play() bool {
	if p.playing {
		p.pause()
		return false
	}
	if !p.loaded || len(p.frames) < 2 {
		return false
	}
	p.playing = true
	p.status("Playing.")
	p.arm()
	return true
}

func (p *Player) pause() bool {
	if !p.playing {
		return false
	}
	p.stopPlayback()
	p.status("Paused.")
	return true
}

// step moves the current index by delta with wrap-around and displays it.
func (p *Player) step(delta int) bool {
	if !p.loaded {
		return false
	}
	n := len(p.frames)
	p.show(((p.index+delta)%n + n) % n)
	return true
}

// show displays frame i and hands a capture to the post-render hook.
func (p *Player) show(i int) {
	f := p.frames[i]
	if p.displayed {
		p.rdr.Detach()
	}
	p.rdr.Attach(f.Payload)
	p.displayed = true
	p.index = i

	if err := p.rdr.Render(); err != nil {
		p.log.Warn().Err(err).Int("index", i).Msg("render failed")
	}
	p.status(fmt.Sprintf("Frame %d/%d t=%.3fs", i+1, len(p.frames), f.Timestamp))

	if p.hooks.PostRender == nil {
		return
	}
	img, err := p.rdr.CaptureImage()
	if err != nil {
		p.log.Warn().Err(err).Int("index", i).Msg("capture failed")
		return
	}
	p.hooks.PostRender(img, i, f.Timestamp, f.Path, f.Scene)
}

// arm schedules the advance past the current frame. Each timer carries a
// sequence number; only the newest one may advance playback.
func (p *Player) arm() {
	p.stopTimer()
	p.timerSeq++
	seq := p.timerSeq
	d := time.Duration(p.frames[p.index].Duration * float64(time.Second))
	p.timer = p.clk.AfterFunc(d, func() {
		p.loop.Submit(func() { p.onTimer(seq) })
	})
}

func (p *Player) onTimer(seq uint64) {
	if !p.playing || seq != p.timerSeq {
		return
	}
	p.timer = nil
	p.step(1)
	p.arm()
}

func (p *Player) stopPlayback() {
	p.playing = false
	p.stopTimer()
}

func (p *Player) stopTimer() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.timerSeq++
}
