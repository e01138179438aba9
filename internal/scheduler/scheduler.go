// Package scheduler runs the periodic lifecycle jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Eursukkul/eventsphere/internal/logging"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const jobTimeout = 4 * time.Minute

type Jobs interface {
	SweepCompleted(ctx context.Context) (int, error)
	SendReminders(ctx context.Context, window time.Duration) (int, error)
}

type Config struct {
	SweepSchedule    string
	ReminderSchedule string
	ReminderWindow   time.Duration
}

type Scheduler struct {
	cron *cron.Cron
	jobs Jobs
	cfg  Config
	log  *zerolog.Logger
}

// New registers both jobs. An empty schedule disables that job.
func New(jobs Jobs, cfg Config) (*Scheduler, error) {
	log := logging.With("scheduler")
	clog := cronLogger{log: log}
	s := &Scheduler{
		cron: cron.New(cron.WithLogger(clog), cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog))),
		jobs: jobs,
		cfg:  cfg,
		log:  log,
	}

	if cfg.SweepSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.SweepSchedule, s.sweep); err != nil {
			return nil, fmt.Errorf("schedule sweep %q: %w", cfg.SweepSchedule, err)
		}
	}
	if cfg.ReminderSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.ReminderSchedule, s.remind); err != nil {
			return nil, fmt.Errorf("schedule reminders %q: %w", cfg.ReminderSchedule, err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.log.Info().
		Str("sweep", s.cfg.SweepSchedule).
		Str("reminders", s.cfg.ReminderSchedule).
		Dur("reminder_window", s.cfg.ReminderWindow).
		Msg("scheduler started")
	s.cron.Start()
}

// Stop prevents new runs and returns a context done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.jobs.SweepCompleted(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("lifecycle sweep failed")
		return
	}
	if n > 0 {
		s.log.Info().Int("completed", n).Msg("lifecycle sweep")
	}
}

func (s *Scheduler) remind() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.jobs.SendReminders(ctx, s.cfg.ReminderWindow)
	if err != nil {
		s.log.Error().Err(err).Msg("reminder job failed")
		return
	}
	if n > 0 {
		s.log.Info().Int("events", n).Msg("reminders sent")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log *zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
