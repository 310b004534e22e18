package game

import (
	"context"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/gasgrid/internal/game/ai"
	"github.com/mitchelldurbincs/gasgrid/internal/game/combat"
	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/game/events"
	"github.com/mitchelldurbincs/gasgrid/internal/game/ledger"
	"github.com/mitchelldurbincs/gasgrid/internal/game/rules"
	"github.com/mitchelldurbincs/gasgrid/internal/game/turn"
	"github.com/mitchelldurbincs/gasgrid/internal/store"
)

// Engine validates and applies actions against games held in a store.
// It keeps no per-game state of its own; every operation runs inside one
// store transaction, so any number of engines may share a store.
type Engine struct {
	store     store.Store
	clock     clockwork.Clock
	rng       core.Rand
	publisher events.Publisher
	logger    zerolog.Logger

	mech atomic.Pointer[mechanics]
}

// mechanics is the rule-derived machinery. It is replaced as a whole when
// the rules change so one action never sees a mix of old and new numbers.
type mechanics struct {
	rules    core.Rules
	aiConfig ai.Config
	resolver combat.Resolver
	ledger   ledger.Ledger
	cooldown turn.Cooldown
	moves    *rules.LegalMoveCalculator
	win      *rules.WinConditionChecker
	policy   *ai.Policy
}

// Option configures an Engine
type Option func(*engineOptions)

type engineOptions struct {
	clock     clockwork.Clock
	rng       core.Rand
	publisher events.Publisher
	logger    zerolog.Logger
	rules     core.Rules
	aiConfig  ai.Config
}

// WithClock sets the clock every timestamp and cooldown is measured against
func WithClock(c clockwork.Clock) Option {
	return func(o *engineOptions) { o.clock = c }
}

// WithRand sets the source for map seeds and AI choices
func WithRand(r core.Rand) Option {
	return func(o *engineOptions) { o.rng = r }
}

// WithPublisher sets where committed changes are announced
func WithPublisher(p events.Publisher) Option {
	return func(o *engineOptions) { o.publisher = p }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *engineOptions) { o.logger = l }
}

func WithRules(r core.Rules) Option {
	return func(o *engineOptions) { o.rules = r }
}

func WithAIConfig(c ai.Config) Option {
	return func(o *engineOptions) { o.aiConfig = c }
}

// NewEngine creates an engine over s. Unset options fall back to the real
// clock, a time-seeded generator, a no-op publisher and the default rules.
func NewEngine(s store.Store, opts ...Option) *Engine {
	o := engineOptions{
		clock:     clockwork.NewRealClock(),
		publisher: events.NopPublisher{},
		logger:    zerolog.Nop(),
		rules:     core.DefaultRules(),
		aiConfig:  ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = core.NewLockedRand(o.clock.Now().UnixNano())
	}

	e := &Engine{
		store:     s,
		clock:     o.clock,
		rng:       o.rng,
		publisher: o.publisher,
		logger:    o.logger.With().Str("component", "GameEngine").Logger(),
	}
	e.mech.Store(e.buildMechanics(o.rules, o.aiConfig))
	return e
}

func (e *Engine) buildMechanics(r core.Rules, cfg ai.Config) *mechanics {
	return &mechanics{
		rules:    r,
		aiConfig: cfg,
		resolver: combat.NewResolver(r),
		ledger:   ledger.New(r),
		cooldown: turn.NewCooldown(r),
		moves:    rules.NewLegalMoveCalculator(),
		win:      rules.NewWinConditionChecker(e.logger, r.DominanceThreshold),
		policy:   ai.NewPolicy(cfg, r.MaxGas, e.rng, e.logger),
	}
}

// Rules returns the rules currently in force
func (e *Engine) Rules() core.Rules { return e.mech.Load().rules }

// SetRules replaces the rules for every subsequent operation
func (e *Engine) SetRules(r core.Rules) {
	cur := e.mech.Load()
	e.mech.Store(e.buildMechanics(r, cur.aiConfig))
	e.logger.Info().Msg("Game rules reloaded")
}

// SetAIConfig replaces the bot tuning for every subsequent sweep
func (e *Engine) SetAIConfig(cfg ai.Config) {
	cur := e.mech.Load()
	e.mech.Store(e.buildMechanics(cur.rules, cfg))
	e.logger.Info().Msg("AI config reloaded")
}

// Clock returns the engine's clock
func (e *Engine) Clock() clockwork.Clock { return e.clock }

// update runs fn in a store transaction, classifying unknown failures as transient
func (e *Engine) update(ctx context.Context, gameID string, fn func(tx store.Tx) error) error {
	return core.AsTransient(e.store.Update(ctx, gameID, fn))
}

func (e *Engine) view(ctx context.Context, gameID string, fn func(tx store.Tx) error) error {
	return core.AsTransient(e.store.View(ctx, gameID, fn))
}

// logFailure logs err at a level matching its kind
func (e *Engine) logFailure(err error, gameID, op string) {
	var ev *zerolog.Event
	switch core.KindOf(err) {
	case core.KindValidation, core.KindRuleViolation, core.KindNotFound:
		ev = e.logger.Debug()
	case core.KindTransient:
		ev = e.logger.Warn()
	default:
		ev = e.logger.Error()
	}
	ev.Err(err).Str("game_id", gameID).Str("op", op).Str("code", core.CodeOf(err)).Msg("Operation failed")
}
