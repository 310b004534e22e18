package core

import "time"

// Game is one match instance
type Game struct {
	ID         string
	Status     GameStatus
	Seed       int64
	Width      int
	Height     int
	MaxPlayers int
	Duration   time.Duration

	// CurrentTurnPlayerID is empty until the game starts
	CurrentTurnPlayerID string
	TurnStartedAt       time.Time

	CreatedAt time.Time
	StartedAt time.Time
	EndedAt   time.Time
	EndReason string
}

// Clone returns a copy of the game
func (g *Game) Clone() *Game {
	cp := *g
	return &cp
}

// Player is a participant identity, human or bot
type Player struct {
	ID          string
	DisplayName string
	IsBot       bool
	CreatedAt   time.Time
}

// PlayerState is the per-game state of one player.
// DisplayName and IsBot are read-only copies of the Player row.
type PlayerState struct {
	GameID         string
	PlayerID       string
	Gas            int
	TerritoryCount int
	LastActionAt   time.Time // zero when the player has not acted
	LastRegenAt    time.Time
	TurnOrder      int
	JoinedAt       time.Time

	DisplayName string
	IsBot       bool
}

// Clone returns a copy of the player state
func (p *PlayerState) Clone() *PlayerState {
	cp := *p
	return &cp
}

// Tile is one cell of a game's grid
type Tile struct {
	GameID           string
	X, Y             int
	OwnerID          string // empty when unclaimed
	GasType          GasType
	DefenseBonus     int
	DefenseExpiresAt time.Time
	IsVent           bool
}

func (t *Tile) Coord() Coordinate      { return Coordinate{X: t.X, Y: t.Y} }
func (t *Tile) IsOwned() bool          { return t.OwnerID != "" }
func (t *Tile) OwnedBy(id string) bool { return t.OwnerID != "" && t.OwnerID == id }

// ActiveDefenseBonus returns the stored bonus only while it has not expired
func (t *Tile) ActiveDefenseBonus(now time.Time) int {
	if t.DefenseBonus <= 0 || !t.DefenseExpiresAt.After(now) {
		return 0
	}
	return t.DefenseBonus
}

// Clone returns a copy of the tile
func (t *Tile) Clone() *Tile {
	cp := *t
	return &cp
}

// ActionRecord is an append-only audit entry
type ActionRecord struct {
	ID        string
	GameID    string
	PlayerID  string
	Kind      ActionType
	X, Y      int
	GasSpent  int
	Outcome   Outcome
	Captured  int // tiles changing hands, splash included
	CreatedAt time.Time
}

// MatchResult is the final standing of one player in a completed game
type MatchResult struct {
	GameID         string
	PlayerID       string
	Placement      int
	TerritoryCount int
	Gas            int
	Tokens         int
	XP             int
	CreatedAt      time.Time
}
