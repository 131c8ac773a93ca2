package state

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweep cadence and retention windows for the shared maps.
const (
	chatSweepSpec    = "@every 2h"
	trackerSweepSpec = "@every 30m"

	chatMaxAge     = 24 * time.Hour
	responseMaxAge = time.Hour
	sentMaxAge     = 10 * time.Minute
)

// Sweeper runs the periodic evictions: stale chats every two hours, tracker
// maps every thirty minutes.
type Sweeper struct {
	store     *Store
	guard     *Guard
	responses *ResponseTracker
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewSweeper wires the sweeps but does not start them.
func NewSweeper(log *slog.Logger, store *Store, guard *Guard, responses *ResponseTracker) *Sweeper {
	return &Sweeper{
		store:     store,
		guard:     guard,
		responses: responses,
		cron:      cron.New(),
		logger:    log.With(slog.String("service", "sweeper")),
	}
}

// Start registers and starts the cron jobs.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(chatSweepSpec, s.sweepChats); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(trackerSweepSpec, s.sweepTrackers); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron scheduler and waits for running jobs.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweepChats() {
	removed := s.store.EvictOlderThan(chatMaxAge)
	if removed > 0 {
		s.logger.Info("evicted stale chats", slog.Int("count", removed))
	}
}

func (s *Sweeper) sweepTrackers() {
	s.responses.Sweep(responseMaxAge)
	s.guard.Sweep(sentMaxAge)
	s.logger.Debug("swept trackers")
}
