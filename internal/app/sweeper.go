package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultSweepInterval  = time.Minute
	DefaultSessionTimeout = 30 * time.Minute
)

// Sweeper periodically expires idle sessions.
type Sweeper struct {
	Orch     *Orchestrator
	Interval time.Duration
	Timeout  time.Duration
}

// Run blocks until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Str("module", "app.sweeper").Dur("interval", interval).Dur("timeout", s.timeout()).Msg("sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.sweeper").Msg("sweeper stopped")
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Sweeper) Sweep() int {
	n := s.Orch.ExpireIdle(s.timeout())
	if n > 0 {
		log.Info().Str("module", "app.sweeper").Int("expired", n).Int("active", s.Orch.ActiveSessions()).Msg("sweep done")
	}
	return n
}

func (s *Sweeper) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultSessionTimeout
	}
	return s.Timeout
}
