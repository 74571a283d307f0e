package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/agendaav/room-booking/internal/core/ports"
)

const purgeTimeout = time.Minute

// Scheduler runs housekeeping jobs on cron schedules.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		log:  log.With().Str("component", "jobs").Logger(),
	}
}

// AddPurge registers a job that drops revocation records of expired tokens.
// spec accepts standard five-field expressions and descriptors like @hourly.
func (s *Scheduler) AddPurge(spec string, purger ports.RevocationPurger) error {
	_, err := s.cron.AddFunc(spec, func() { s.purge(purger) })
	if err != nil {
		return fmt.Errorf("schedule purge %q: %w", spec, err)
	}
	s.log.Info().Str("schedule", spec).Msg("revoked token purge scheduled")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) purge(purger ports.RevocationPurger) {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	n, err := purger.PurgeExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("revoked token purge failed")
		return
	}
	s.log.Info().Int64("purged", n).Msg("revoked token purge finished")
}
