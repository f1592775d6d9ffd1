package crawler

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/IliaW/lead-hunter/config"
)

// Pacer enforces a uniform random pause between consecutive fetches and the one backoff
// pause shared by every pipeline.
type Pacer struct {
	minDelay time.Duration
	maxDelay time.Duration
	backoff  time.Duration
	sleep    func(time.Duration)
	started  bool
}

func NewPacer(cfg *config.PacingConfig) *Pacer {
	return &Pacer{
		minDelay: cfg.MinDelay,
		maxDelay: cfg.MaxDelay,
		backoff:  cfg.Backoff,
		sleep:    time.Sleep,
	}
}

// Wait pauses before every fetch except the first one of a run.
func (p *Pacer) Wait() {
	if !p.started {
		p.started = true
		return
	}
	p.sleep(p.Delay())
}

func (p *Pacer) Delay() time.Duration {
	if p.maxDelay <= p.minDelay {
		return p.minDelay
	}
	return p.minDelay + rand.N(p.maxDelay-p.minDelay+1)
}

func (p *Pacer) Backoff() {
	if p.backoff <= 0 {
		return
	}
	slog.Info("backing off.", slog.Duration("pause", p.backoff))
	p.sleep(p.backoff)
}
