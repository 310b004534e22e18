package events

import (
	"time"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

// Event type constants
const (
	TypeGameCreated    = "game.created"
	TypeGameStarted    = "game.started"
	TypeGameEnded      = "game.ended"
	TypePlayerJoined   = "player.joined"
	TypeActionResolved = "action.resolved"
	TypeActionRejected = "action.rejected"
	TypeTilesCaptured  = "tiles.captured"
	TypeTurnAdvanced   = "turn.advanced"
)

func base(eventType, gameID string, at time.Time) BaseEvent {
	return BaseEvent{EventType: eventType, Time: at, Game: gameID}
}

// GameCreatedEvent is published when a pending game is created
type GameCreatedEvent struct {
	BaseEvent
	MaxPlayers int
	MapWidth   int
	MapHeight  int
}

func NewGameCreatedEvent(g *core.Game, at time.Time) *GameCreatedEvent {
	return &GameCreatedEvent{
		BaseEvent:  base(TypeGameCreated, g.ID, at),
		MaxPlayers: g.MaxPlayers,
		MapWidth:   g.Width,
		MapHeight:  g.Height,
	}
}

// GameStartedEvent is published once the last seat is filled and the map exists
type GameStartedEvent struct {
	BaseEvent
	NumPlayers int
	MapWidth   int
	MapHeight  int
	HasBots    bool
	Duration   time.Duration
}

// NewGameStartedEvent creates a new GameStartedEvent
func NewGameStartedEvent(g *core.Game, numPlayers int, hasBots bool, at time.Time) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent:  base(TypeGameStarted, g.ID, at),
		NumPlayers: numPlayers,
		MapWidth:   g.Width,
		MapHeight:  g.Height,
		HasBots:    hasBots,
		Duration:   g.Duration,
	}
}

// EndsAt is when the time-expiry trigger fires
func (e *GameStartedEvent) EndsAt() time.Time {
	return e.Time.Add(e.Duration)
}

// GameEndedEvent is published after the match results are committed
type GameEndedEvent struct {
	BaseEvent
	Reason    string
	WinnerID  string
	Duration  time.Duration
	Standings []core.MatchResult
	Tiles     []*core.Tile
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(g *core.Game, standings []core.MatchResult, tiles []*core.Tile, at time.Time) *GameEndedEvent {
	e := &GameEndedEvent{
		BaseEvent: base(TypeGameEnded, g.ID, at),
		Reason:    g.EndReason,
		Standings: standings,
		Tiles:     tiles,
	}
	if !g.StartedAt.IsZero() {
		e.Duration = at.Sub(g.StartedAt)
	}
	if len(standings) > 0 {
		e.WinnerID = standings[0].PlayerID
	}
	return e
}

// PlayerJoinedEvent is published when a player takes a seat
type PlayerJoinedEvent struct {
	BaseEvent
	PlayerID  string
	TurnOrder int
	IsBot     bool
}

func NewPlayerJoinedEvent(gameID string, ps *core.PlayerState, at time.Time) *PlayerJoinedEvent {
	return &PlayerJoinedEvent{
		BaseEvent: base(TypePlayerJoined, gameID, at),
		PlayerID:  ps.PlayerID,
		TurnOrder: ps.TurnOrder,
		IsBot:     ps.IsBot,
	}
}

// ActionResolvedEvent is published for every accepted action, successful or not
type ActionResolvedEvent struct {
	BaseEvent
	PlayerID     string
	Action       core.ActionType
	Target       core.Coordinate
	GasSpent     int
	GasRemaining int
	Outcome      core.Outcome
}

// NewActionResolvedEvent creates a new ActionResolvedEvent
func NewActionResolvedEvent(rec *core.ActionRecord, gasRemaining int) *ActionResolvedEvent {
	return &ActionResolvedEvent{
		BaseEvent:    base(TypeActionResolved, rec.GameID, rec.CreatedAt),
		PlayerID:     rec.PlayerID,
		Action:       rec.Kind,
		Target:       core.Coordinate{X: rec.X, Y: rec.Y},
		GasSpent:     rec.GasSpent,
		GasRemaining: gasRemaining,
		Outcome:      rec.Outcome,
	}
}

// ActionRejectedEvent is published when validation or a rule check refuses an action
type ActionRejectedEvent struct {
	BaseEvent
	PlayerID string
	Action   core.ActionType
	Target   core.Coordinate
	Reason   string
}

// NewActionRejectedEvent creates a new ActionRejectedEvent
func NewActionRejectedEvent(gameID, playerID string, action core.ActionType, target core.Coordinate, reason string, at time.Time) *ActionRejectedEvent {
	return &ActionRejectedEvent{
		BaseEvent: base(TypeActionRejected, gameID, at),
		PlayerID:  playerID,
		Action:    action,
		Target:    target,
		Reason:    reason,
	}
}

// Capture is one tile changing hands. PreviousOwnerID is empty for a claim.
type Capture struct {
	Coord           core.Coordinate
	PreviousOwnerID string
}

// TilesCapturedEvent is published when one action changes the owner of tiles
type TilesCapturedEvent struct {
	BaseEvent
	PlayerID string
	Captures []Capture
}

// NewTilesCapturedEvent creates a new TilesCapturedEvent
func NewTilesCapturedEvent(gameID, playerID string, captures []Capture, at time.Time) *TilesCapturedEvent {
	return &TilesCapturedEvent{
		BaseEvent: base(TypeTilesCaptured, gameID, at),
		PlayerID:  playerID,
		Captures:  captures,
	}
}

// TurnAdvancedEvent is published when the current-turn pointer moves
type TurnAdvancedEvent struct {
	BaseEvent
	FromPlayerID string
	ToPlayerID   string
	Skipped      bool
}

func NewTurnAdvancedEvent(gameID, from, to string, skipped bool, at time.Time) *TurnAdvancedEvent {
	return &TurnAdvancedEvent{
		BaseEvent:    base(TypeTurnAdvanced, gameID, at),
		FromPlayerID: from,
		ToPlayerID:   to,
		Skipped:      skipped,
	}
}
