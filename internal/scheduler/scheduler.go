// Package scheduler runs the timed work of live games: the AI kickoff
// after a match starts, periodic AI sweeps, and the time-limit expiry.
// Jobs are tagged with their game id and dropped when the game ends.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/gasgrid/internal/game"
	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/game/events"
)

const (
	tagKickoff = "kickoff"
	tagSweep   = "sweep"
	tagExpiry  = "expiry"
)

// Runner is the part of the engine the scheduler drives
type Runner interface {
	RunAISweep(ctx context.Context, gameID string) (game.SweepResult, error)
	EndGame(ctx context.Context, gameID, reason string) (game.EndResult, error)
}

// Config controls job timing
type Config struct {
	KickoffDelay  time.Duration
	SweepInterval time.Duration
	// SweepHumanGames keeps sweeping games without bots so stalled turns
	// can be skipped
	SweepHumanGames bool
}

// DefaultConfig returns the reference timings
func DefaultConfig() Config {
	return Config{
		KickoffDelay:  3 * time.Second,
		SweepInterval: 5 * time.Second,
	}
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock sets the clock used for job timing
func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger sets the base logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// Scheduler owns a gocron scheduler and subscribes to game lifecycle events
type Scheduler struct {
	cron   gocron.Scheduler
	runner Runner
	cfg    Config
	clock  clockwork.Clock
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

var _ events.Subscriber = (*Scheduler)(nil)

// New creates a scheduler. Call Start to begin running jobs.
func New(runner Runner, cfg Config, opts ...Option) (*Scheduler, error) {
	if cfg.KickoffDelay < 0 || cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("scheduler: invalid timings kickoff=%s sweep=%s", cfg.KickoffDelay, cfg.SweepInterval)
	}
	s := &Scheduler{
		runner: runner,
		cfg:    cfg,
		clock:  clockwork.NewRealClock(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "Scheduler").Logger()

	cron, err := gocron.NewScheduler(
		gocron.WithClock(s.clock),
		gocron.WithLogger(newCronLogger(s.logger)),
		gocron.WithStopTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	s.cron = cron
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s, nil
}

// Start begins running scheduled jobs. It does not block.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().
		Dur("kickoff_delay", s.cfg.KickoffDelay).
		Dur("sweep_interval", s.cfg.SweepInterval).
		Msg("Scheduler started")
}

// Shutdown cancels running jobs and stops the scheduler
func (s *Scheduler) Shutdown() error {
	s.cancel()
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}
	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// ID implements events.Subscriber
func (s *Scheduler) ID() string { return "scheduler" }

// InterestedIn implements events.Subscriber
func (s *Scheduler) InterestedIn(eventType string) bool {
	return eventType == events.TypeGameStarted || eventType == events.TypeGameEnded
}

// HandleEvent implements events.Subscriber
func (s *Scheduler) HandleEvent(e events.Event) {
	switch ev := e.(type) {
	case *events.GameStartedEvent:
		if err := s.ScheduleGame(ev.GameID(), ev.HasBots, ev.EndsAt()); err != nil {
			s.logger.Error().Err(err).Str("game_id", ev.GameID()).Msg("Failed to schedule game")
		}
	case *events.GameEndedEvent:
		s.CancelGame(ev.GameID())
	}
}

// ScheduleGame registers the jobs of a freshly started game. The expiry
// job always runs; kickoff and sweeps run only when there is AI work.
func (s *Scheduler) ScheduleGame(gameID string, hasBots bool, endsAt time.Time) error {
	if gameID == "" {
		return core.ErrMissingField.WithMessagef("game id is required")
	}
	now := s.clock.Now()
	logger := s.logger.With().Str("game_id", gameID).Logger()

	expiry := gocron.OneTimeJobStartImmediately()
	if endsAt.After(now) {
		expiry = gocron.OneTimeJobStartDateTime(endsAt)
	}
	if _, err := s.cron.NewJob(
		gocron.OneTimeJob(expiry),
		gocron.NewTask(s.expire, gameID),
		gocron.WithName("expiry:"+gameID),
		gocron.WithTags(gameID, tagExpiry),
		gocron.WithContext(s.ctx),
	); err != nil {
		return fmt.Errorf("schedule expiry: %w", err)
	}

	if !hasBots && !s.cfg.SweepHumanGames {
		logger.Debug().Time("ends_at", endsAt).Msg("Scheduled expiry only")
		return nil
	}

	if hasBots {
		kickoff := gocron.OneTimeJobStartImmediately()
		if s.cfg.KickoffDelay > 0 {
			kickoff = gocron.OneTimeJobStartDateTime(now.Add(s.cfg.KickoffDelay))
		}
		if _, err := s.cron.NewJob(
			gocron.OneTimeJob(kickoff),
			gocron.NewTask(s.sweep, gameID),
			gocron.WithName("kickoff:"+gameID),
			gocron.WithTags(gameID, tagKickoff),
			gocron.WithContext(s.ctx),
		); err != nil {
			s.CancelGame(gameID)
			return fmt.Errorf("schedule kickoff: %w", err)
		}
	}

	if _, err := s.cron.NewJob(
		gocron.DurationJob(s.cfg.SweepInterval),
		gocron.NewTask(s.sweep, gameID),
		gocron.WithName("sweep:"+gameID),
		gocron.WithTags(gameID, tagSweep),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithContext(s.ctx),
	); err != nil {
		s.CancelGame(gameID)
		return fmt.Errorf("schedule sweep: %w", err)
	}

	logger.Debug().
		Bool("has_bots", hasBots).
		Time("ends_at", endsAt).
		Msg("Scheduled game jobs")
	return nil
}

// CancelGame drops every job of a game
func (s *Scheduler) CancelGame(gameID string) {
	s.cron.RemoveByTags(gameID)
	s.logger.Debug().Str("game_id", gameID).Msg("Removed game jobs")
}

// Jobs returns the tags of the job kinds scheduled for a game
func (s *Scheduler) Jobs(gameID string) []string {
	var kinds []string
	for _, j := range s.cron.Jobs() {
		tags := j.Tags()
		if len(tags) == 2 && tags[0] == gameID {
			kinds = append(kinds, tags[1])
		}
	}
	return kinds
}

func (s *Scheduler) sweep(ctx context.Context, gameID string) {
	res, err := s.runner.RunAISweep(ctx, gameID)
	if err != nil {
		if errors.Is(err, core.ErrGameNotFound) {
			s.CancelGame(gameID)
			return
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Warn().Err(err).Str("game_id", gameID).Msg("AI sweep failed")
		return
	}
	if res.ActionsPerformed > 0 || res.TurnSkipped {
		s.logger.Debug().
			Str("game_id", gameID).
			Int("actions", res.ActionsPerformed).
			Bool("turn_skipped", res.TurnSkipped).
			Msg("AI sweep completed")
	}
}

func (s *Scheduler) expire(ctx context.Context, gameID string) {
	res, err := s.runner.EndGame(ctx, gameID, game.ReasonTimeExpired)
	if err != nil {
		s.logger.Error().Err(err).Str("game_id", gameID).Msg("Failed to end expired game")
		return
	}
	if !res.NoOp {
		s.logger.Info().
			Str("game_id", gameID).
			Str("winner_id", res.WinnerID).
			Msg("Game time expired")
	}
}
