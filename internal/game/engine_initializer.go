package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/game/mapgen"
	"github.com/mitchelldurbincs/gasgrid/internal/game/states"
	"github.com/mitchelldurbincs/gasgrid/internal/game/turn"
)

// MatchInitializer turns a full pending game into an active one
type MatchInitializer struct {
	m      *mechanics
	rng    core.Rand
	logger zerolog.Logger
}

func newMatchInitializer(m *mechanics, rng core.Rand, logger zerolog.Logger) *MatchInitializer {
	return &MatchInitializer{
		m:      m,
		rng:    rng,
		logger: logger.With().Str("component", "MatchInitializer").Logger(),
	}
}

// Start draws a map seed, lays out the board, hands out starting territory and
// flips the game to active with the first player in turn order to move.
// The caller persists snap.tiles in full.
func (mi *MatchInitializer) Start(snap *snapshot, now time.Time) error {
	g := snap.game
	ordered := turn.Order(snap.players)
	if len(ordered) == 0 {
		return core.ErrEmptyTurnOrder
	}
	ids := make([]string, len(ordered))
	for i, ps := range ordered {
		ids[i] = ps.PlayerID
	}

	g.Seed = mi.rng.Int63()
	cfg := mapgen.DefaultMapConfig(mi.m.rules)
	cfg.Width, cfg.Height = g.Width, g.Height
	gen := mapgen.NewGenerator(cfg, rand.New(rand.NewSource(g.Seed)))
	tiles, placements, err := gen.GenerateMap(g.ID, ids)
	if err != nil {
		return fmt.Errorf("map generation failed: %w", err)
	}

	snap.tiles = tiles
	snap.board = core.NewBoard(g.Width, g.Height, tiles)
	for _, p := range placements {
		ps := snap.player(p.PlayerID)
		ps.TerritoryCount = len(p.Coords)
		ps.LastRegenAt = now
		snap.touchPlayer(ps.PlayerID)
		mi.logger.Debug().
			Str("game_id", g.ID).
			Str("player_id", p.PlayerID).
			Str("affinity", string(p.Affinity)).
			Int("tiles", len(p.Coords)).
			Msg("Starting territory placed")
	}

	g.CurrentTurnPlayerID = ordered[0].PlayerID
	if _, err := states.TransitionTo(g, core.StatusActive, now, "all seats filled"); err != nil {
		return err
	}
	snap.touchGame()

	mi.logger.Info().
		Str("game_id", g.ID).
		Int64("seed", g.Seed).
		Int("players", len(ordered)).
		Int("width", g.Width).
		Int("height", g.Height).
		Str("first_turn", g.CurrentTurnPlayerID).
		Msg("Game started")
	return verifyTerritory(snap)
}
