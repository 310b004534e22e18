package game

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/game/ledger"
)

// ProductionManager applies gas production to the players of a snapshot:
// lazy periodic regeneration and the per-action vent bonus.
type ProductionManager struct {
	ledger ledger.Ledger
	logger zerolog.Logger
}

func newProductionManager(l ledger.Ledger, logger zerolog.Logger) *ProductionManager {
	return &ProductionManager{
		ledger: l,
		logger: logger.With().Str("component", "ProductionManager").Logger(),
	}
}

// Regenerate applies pending cycles to one player and marks it for saving
// when its state moved.
func (pm *ProductionManager) Regenerate(snap *snapshot, ps *core.PlayerState, now time.Time) int {
	before := ps.LastRegenAt
	added := pm.ledger.Regenerate(ps, snap.board.VentsOwnedBy(ps.PlayerID), now)
	if added > 0 || !ps.LastRegenAt.Equal(before) {
		snap.touchPlayer(ps.PlayerID)
	}
	if added > 0 {
		pm.logger.Debug().
			Str("game_id", snap.game.ID).
			Str("player_id", ps.PlayerID).
			Int("added", added).
			Int("gas", ps.Gas).
			Msg("Gas regenerated")
	}
	return added
}

// RegenerateAll applies pending cycles to every participant
func (pm *ProductionManager) RegenerateAll(snap *snapshot, now time.Time) int {
	total := 0
	for _, ps := range snap.players {
		total += pm.Regenerate(snap, ps, now)
	}
	return total
}

// VentBonus grants the per-action bonus for the vents the player holds
func (pm *ProductionManager) VentBonus(snap *snapshot, ps *core.PlayerState) int {
	added := pm.ledger.VentBonus(ps, snap.board.VentsOwnedBy(ps.PlayerID))
	if added > 0 {
		snap.touchPlayer(ps.PlayerID)
	}
	return added
}
