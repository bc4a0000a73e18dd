package app

import (
	"context"
	"sync"
	"time"

	diag "github.com/coreman2200/scenereel/internal/diagnostics"
	"github.com/coreman2200/scenereel/internal/led"
)

const patternStep = 100 * time.Millisecond

type patternRun struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

// RunPattern resets the player and steps a wiring check pattern straight
// to the LEDs. A pattern already running is replaced.
func (c *Core) RunPattern(name string) error {
	p, err := led.NewPattern(led.PatternKind(name))
	if err != nil {
		return err
	}
	if err := c.Player.Reset(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.pattern.mu.Lock()
	if c.pattern.cancel != nil {
		c.pattern.cancel()
	}
	c.pattern.cancel = cancel
	c.pattern.mu.Unlock()

	c.Hub.Status(diag.Diagnostic{Severity: diag.Info, Code: diag.CodeTestRunning, Summary: "Running test", Detail: name, At: time.Now()})
	go c.stepPattern(ctx, p)
	return nil
}

// StopPattern cancels a running pattern, if any.
func (c *Core) StopPattern() {
	c.pattern.mu.Lock()
	defer c.pattern.mu.Unlock()
	if c.pattern.cancel != nil {
		c.pattern.cancel()
		c.pattern.cancel = nil
	}
}

func (c *Core) stepPattern(ctx context.Context, p *led.Pattern) {
	rgb := make([]byte, c.lay.Count()*3)
	tick := time.NewTicker(patternStep)
	defer tick.Stop()
	for p.Step(c.lay, rgb) {
		if err := c.leds.Write(rgb); err != nil {
			c.log.Warn().Err(err).Str("pattern", string(p.Kind())).Msg("pattern write")
		}
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
	}
	c.Hub.Status(diag.Diagnostic{Severity: diag.Info, Code: diag.CodeTestDone, Summary: "Test complete", Detail: string(p.Kind()), At: time.Now()})
}
