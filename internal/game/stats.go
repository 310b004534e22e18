package game

import "github.com/mitchelldurbincs/gasgrid/internal/game/core"

// PlayerStats summarises one participant's position on the board
type PlayerStats struct {
	PlayerID  string
	Territory int
	Vents     int
	Gas       int
	Defended  int // tiles with a stored defense bonus
}

// Stats summarises a game for the simulator and debug logs
type Stats struct {
	Owned     int
	Unclaimed int
	Players   []PlayerStats
}

// ComputeStats derives per-player statistics from the tiles, not from the
// stored territory counts.
func ComputeStats(gs *GameState) Stats {
	board := gs.Board()
	st := Stats{Players: make([]PlayerStats, 0, len(gs.Players))}
	for _, t := range board.T {
		if t == nil {
			continue
		}
		if t.IsOwned() {
			st.Owned++
		} else {
			st.Unclaimed++
		}
	}
	for _, ps := range gs.Players {
		p := PlayerStats{
			PlayerID:  ps.PlayerID,
			Territory: board.CountOwnedBy(ps.PlayerID),
			Vents:     board.VentsOwnedBy(ps.PlayerID),
			Gas:       ps.Gas,
		}
		for _, t := range board.OwnedBy(ps.PlayerID) {
			if t.DefenseBonus > 0 {
				p.Defended++
			}
		}
		st.Players = append(st.Players, p)
	}
	return st
}

// verifyTerritory checks that every stored territory count matches the tiles
// and that no tile belongs to someone who is not seated.
func verifyTerritory(snap *snapshot) error {
	counts := make(map[string]int, len(snap.players))
	for _, t := range snap.board.T {
		if t != nil && t.IsOwned() {
			counts[t.OwnerID]++
		}
	}
	seated := 0
	for _, ps := range snap.players {
		if counts[ps.PlayerID] != ps.TerritoryCount {
			return core.ErrInvariant.WithMessagef("player %s territory %d but owns %d tiles",
				ps.PlayerID, ps.TerritoryCount, counts[ps.PlayerID])
		}
		seated += counts[ps.PlayerID]
	}
	if owned := snap.board.OwnedCount(); owned != seated {
		return core.ErrInvariant.WithMessagef("%d owned tiles but participants hold %d", owned, seated)
	}
	return nil
}
