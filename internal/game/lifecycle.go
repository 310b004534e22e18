package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/game/events"
	"github.com/mitchelldurbincs/gasgrid/internal/game/rules"
	"github.com/mitchelldurbincs/gasgrid/internal/game/states"
	"github.com/mitchelldurbincs/gasgrid/internal/store"
)

// End reasons recorded on completed games
const (
	ReasonDominance   = "dominance"
	ReasonTimeExpired = "time_expired"
	ReasonAbandoned   = "abandoned"
)

// GameConfig sizes a new game. Zero fields take the engine's rules.
type GameConfig struct {
	Width      int
	Height     int
	MaxPlayers int
	Duration   time.Duration
}

// JoinResult reports the effect of a join
type JoinResult struct {
	GameStarted   bool
	AlreadyJoined bool
	TurnOrder     int
}

// EndResult is the final standing of a game. NoOp is set when the game had
// already completed before the call.
type EndResult struct {
	WinnerID  string
	Standings []core.MatchResult
	NoOp      bool
}

// CreateGame creates a pending game waiting for players
func (e *Engine) CreateGame(ctx context.Context, cfg GameConfig) (*core.Game, error) {
	r := e.mech.Load().rules
	if cfg.Width == 0 {
		cfg.Width = r.BoardWidth
	}
	if cfg.Height == 0 {
		cfg.Height = r.BoardHeight
	}
	if cfg.MaxPlayers == 0 {
		cfg.MaxPlayers = r.MaxPlayers
	}
	if cfg.Duration == 0 {
		cfg.Duration = r.Duration
	}
	if cfg.Width < 2 || cfg.Height < 2 {
		return nil, core.ErrInvalidCoordinates.WithMessagef("board %dx%d is too small", cfg.Width, cfg.Height)
	}
	if cfg.MaxPlayers < 1 {
		return nil, core.ErrMissingField.WithMessagef("max players must be positive")
	}
	if cfg.Duration < 0 {
		return nil, core.ErrMissingField.WithMessagef("duration must be positive")
	}

	now := e.clock.Now()
	g := &core.Game{
		ID:         uuid.NewString(),
		Status:     core.StatusPending,
		Width:      cfg.Width,
		Height:     cfg.Height,
		MaxPlayers: cfg.MaxPlayers,
		Duration:   cfg.Duration,
		CreatedAt:  now,
	}
	if err := e.store.CreateGame(ctx, g); err != nil {
		err = core.AsTransient(err)
		e.logFailure(err, g.ID, "create_game")
		return nil, err
	}

	e.logger.Info().
		Str("game_id", g.ID).
		Int("width", g.Width).
		Int("height", g.Height).
		Int("max_players", g.MaxPlayers).
		Dur("duration", g.Duration).
		Msg("Game created")
	e.publisher.Publish(events.NewGameCreatedEvent(g, now))
	return g, nil
}

// RegisterPlayer creates or updates a player identity
func (e *Engine) RegisterPlayer(ctx context.Context, id, displayName string, isBot bool) (*core.Player, error) {
	if id == "" {
		return nil, core.ErrMissingField.WithMessagef("player id is required")
	}
	if displayName == "" {
		displayName = id
	}
	p := &core.Player{ID: id, DisplayName: displayName, IsBot: isBot, CreatedAt: e.clock.Now()}
	if err := e.store.SavePlayer(ctx, p); err != nil {
		return nil, core.AsTransient(err)
	}
	return p, nil
}

// ProvisionBot registers a new computer-controlled player with a readable id
func (e *Engine) ProvisionBot(ctx context.Context, name string) (*core.Player, error) {
	handle := slug.Make(name)
	if handle == "" {
		handle = "bot"
	}
	if name == "" {
		name = handle
	}
	id := fmt.Sprintf("bot-%s-%s", handle, uuid.NewString()[:8])
	return e.RegisterPlayer(ctx, id, name, true)
}

// JoinGame seats a player. Joining again is a no-op that reports the current
// status. Filling the last seat generates the map and starts the game.
func (e *Engine) JoinGame(ctx context.Context, gameID, playerID string) (JoinResult, error) {
	if gameID == "" || playerID == "" {
		return JoinResult{}, core.ErrMissingField.WithMessagef("game id and player id are required")
	}
	player, err := e.store.GetPlayer(ctx, playerID)
	if err != nil {
		return JoinResult{}, core.AsTransient(err)
	}

	m := e.mech.Load()
	now := e.clock.Now()
	var (
		out     JoinResult
		joined  *core.PlayerState
		started *events.GameStartedEvent
	)
	err = e.update(ctx, gameID, func(tx store.Tx) error {
		snap, err := loadSnapshot(tx)
		if err != nil {
			return err
		}
		if ps := snap.player(playerID); ps != nil {
			out = JoinResult{
				GameStarted:   snap.game.Status == core.StatusActive,
				AlreadyJoined: true,
				TurnOrder:     ps.TurnOrder,
			}
			return nil
		}
		if !states.CanAddPlayers(snap.game.Status) {
			return core.ErrGameNotJoinable.WithMessagef("game is %s", snap.game.Status)
		}
		if len(snap.players) >= snap.game.MaxPlayers {
			return core.ErrGameFull
		}

		ps := &core.PlayerState{
			GameID:      gameID,
			PlayerID:    playerID,
			Gas:         m.rules.StartingGas,
			TurnOrder:   len(snap.players),
			JoinedAt:    now,
			DisplayName: player.DisplayName,
			IsBot:       player.IsBot,
		}
		if err := tx.AddPlayerState(ps); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return core.ErrInvariant.Wrap(err)
			}
			return err
		}
		snap.players = append(snap.players, ps)
		joined = ps.Clone()
		out.TurnOrder = ps.TurnOrder

		if len(snap.players) < snap.game.MaxPlayers {
			return nil
		}
		if err := newMatchInitializer(m, e.rng, e.logger).Start(snap, now); err != nil {
			return err
		}
		if err := tx.SaveTiles(snap.tiles); err != nil {
			return err
		}
		if err := snap.flush(tx); err != nil {
			return err
		}
		out.GameStarted = true
		started = events.NewGameStartedEvent(snap.game, len(snap.players), snap.hasBots(), now)
		return nil
	})
	if err != nil {
		e.logFailure(err, gameID, "join_game")
		return JoinResult{}, err
	}

	if joined != nil {
		e.logger.Info().
			Str("game_id", gameID).
			Str("player_id", playerID).
			Int("turn_order", joined.TurnOrder).
			Bool("bot", joined.IsBot).
			Msg("Player joined")
		e.publisher.Publish(events.NewPlayerJoinedEvent(gameID, joined, now))
	}
	if started != nil {
		e.publisher.Publish(started)
	}
	return out, nil
}

// EndGame completes a game and writes its standings. A game that already
// completed returns its stored standings with NoOp set.
func (e *Engine) EndGame(ctx context.Context, gameID, reason string) (EndResult, error) {
	if reason == "" {
		reason = ReasonTimeExpired
	}
	m := e.mech.Load()
	now := e.clock.Now()

	var (
		out   EndResult
		ended *events.GameEndedEvent
	)
	err := e.update(ctx, gameID, func(tx store.Tx) error {
		snap, err := loadSnapshot(tx)
		if err != nil {
			return err
		}
		if states.IsTerminal(snap.game.Status) {
			results, err := tx.Results()
			if err != nil {
				return err
			}
			out = EndResult{Standings: results, NoOp: true}
			return nil
		}

		standings, err := concludeGame(snap, m.win, reason, now)
		if err != nil {
			return err
		}
		if err := tx.AddResults(standings); err != nil {
			return err
		}
		if err := snap.flush(tx); err != nil {
			return err
		}
		out = EndResult{Standings: standings}
		ended = events.NewGameEndedEvent(snap.game.Clone(), standings, snap.state().Tiles, now)
		return nil
	})
	if err != nil {
		e.logFailure(err, gameID, "end_game")
		return EndResult{}, err
	}
	if len(out.Standings) > 0 {
		out.WinnerID = out.Standings[0].PlayerID
	}

	if ended != nil {
		e.logger.Info().
			Str("game_id", gameID).
			Str("reason", reason).
			Str("winner", out.WinnerID).
			Msg("Game ended")
		e.publisher.Publish(ended)
	}
	return out, nil
}

// GetResults returns the stored standings in placement order
func (e *Engine) GetResults(ctx context.Context, gameID string) ([]core.MatchResult, error) {
	var out []core.MatchResult
	err := e.view(ctx, gameID, func(tx store.Tx) error {
		var err error
		out, err = tx.Results()
		return err
	})
	return out, err
}

// concludeGame moves the snapshot's game to completed and ranks its players
func concludeGame(snap *snapshot, win *rules.WinConditionChecker, reason string, now time.Time) ([]core.MatchResult, error) {
	if _, err := states.TransitionTo(snap.game, core.StatusCompleted, now, reason); err != nil {
		return nil, err
	}
	snap.touchGame()
	standings := win.Standings(snap.game.ID, snap.players, now)
	if standings == nil {
		standings = []core.MatchResult{}
	}
	return standings, nil
}
