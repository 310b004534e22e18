package rules

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

// Reward is the payout attached to a final placement
type Reward struct {
	Tokens int
	XP     int
}

var placementRewards = []Reward{
	{Tokens: 50, XP: 50},
	{Tokens: 30, XP: 30},
	{Tokens: 15, XP: 20},
}

var participationReward = Reward{Tokens: 5, XP: 10}

// RewardFor returns the reward for a 1-based placement
func RewardFor(placement int) Reward {
	if placement >= 1 && placement <= len(placementRewards) {
		return placementRewards[placement-1]
	}
	return participationReward
}

// WinConditionChecker handles game over detection and final standings
type WinConditionChecker struct {
	logger    zerolog.Logger
	threshold int
}

// NewWinConditionChecker creates a new win condition checker for a dominance threshold
func NewWinConditionChecker(logger zerolog.Logger, threshold int) *WinConditionChecker {
	return &WinConditionChecker{
		logger:    logger.With().Str("component", "WinConditionChecker").Logger(),
		threshold: threshold,
	}
}

// CheckDominance reports whether the actor has reached the dominance threshold
func (wc *WinConditionChecker) CheckDominance(actor *core.PlayerState) bool {
	won := wc.threshold > 0 && actor.TerritoryCount >= wc.threshold
	if won {
		wc.logger.Info().
			Str("game_id", actor.GameID).
			Str("player_id", actor.PlayerID).
			Int("territory", actor.TerritoryCount).
			Msg("Dominance threshold reached")
	}
	return won
}

// Rank orders players by territory then gas, both descending. Turn order breaks
// the remaining ties so the ranking is stable across stores.
func Rank(players []*core.PlayerState) []*core.PlayerState {
	out := append([]*core.PlayerState(nil), players...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TerritoryCount != b.TerritoryCount {
			return a.TerritoryCount > b.TerritoryCount
		}
		if a.Gas != b.Gas {
			return a.Gas > b.Gas
		}
		return a.TurnOrder < b.TurnOrder
	})
	return out
}

// Standings ranks the players and builds one match result per player
func (wc *WinConditionChecker) Standings(gameID string, players []*core.PlayerState, now time.Time) []core.MatchResult {
	ranked := Rank(players)
	results := make([]core.MatchResult, len(ranked))
	for i, ps := range ranked {
		r := RewardFor(i + 1)
		results[i] = core.MatchResult{
			GameID:         gameID,
			PlayerID:       ps.PlayerID,
			Placement:      i + 1,
			TerritoryCount: ps.TerritoryCount,
			Gas:            ps.Gas,
			Tokens:         r.Tokens,
			XP:             r.XP,
			CreatedAt:      now,
		}
	}
	wc.logger.Debug().Str("game_id", gameID).Int("players", len(results)).Msg("Standings computed")
	return results
}
