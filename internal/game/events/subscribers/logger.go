package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/gasgrid/internal/game/events"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	// If no filter is set, interested in all events
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Time("timestamp", event.Timestamp()).
		Logger()

	// Create the base event log
	var logEvent *zerolog.Event
	switch ls.logLevel {
	case zerolog.DebugLevel:
		logEvent = eventLogger.Debug()
	case zerolog.InfoLevel:
		logEvent = eventLogger.Info()
	case zerolog.WarnLevel:
		logEvent = eventLogger.Warn()
	case zerolog.ErrorLevel:
		logEvent = eventLogger.Error()
	default:
		logEvent = eventLogger.Info()
	}

	switch e := event.(type) {
	case *events.GameCreatedEvent:
		logEvent.
			Int("max_players", e.MaxPlayers).
			Int("map_width", e.MapWidth).
			Int("map_height", e.MapHeight)

	case *events.GameStartedEvent:
		logEvent.
			Int("num_players", e.NumPlayers).
			Int("map_width", e.MapWidth).
			Int("map_height", e.MapHeight).
			Bool("has_bots", e.HasBots).
			Dur("duration", e.Duration)

	case *events.GameEndedEvent:
		logEvent.
			Str("reason", e.Reason).
			Str("winner", e.WinnerID).
			Dur("duration", e.Duration).
			Int("players", len(e.Standings))

	case *events.PlayerJoinedEvent:
		logEvent.
			Str("player_id", e.PlayerID).
			Int("turn_order", e.TurnOrder).
			Bool("bot", e.IsBot)

	case *events.ActionResolvedEvent:
		logEvent.
			Str("player_id", e.PlayerID).
			Str("action_type", e.Action.String()).
			Int("x", e.Target.X).
			Int("y", e.Target.Y).
			Int("gas_spent", e.GasSpent).
			Int("gas_remaining", e.GasRemaining).
			Str("outcome", string(e.Outcome))

	case *events.ActionRejectedEvent:
		logEvent.
			Str("player_id", e.PlayerID).
			Str("action_type", e.Action.String()).
			Int("x", e.Target.X).
			Int("y", e.Target.Y).
			Str("reason", e.Reason)

	case *events.TilesCapturedEvent:
		logEvent.
			Str("player_id", e.PlayerID).
			Int("tiles", len(e.Captures))

	case *events.TurnAdvancedEvent:
		logEvent.
			Str("from", e.FromPlayerID).
			Str("to", e.ToPlayerID).
			Bool("skipped", e.Skipped)
	}

	// In dev mode, also log the full event as JSON
	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	// Send the log
	logEvent.Msg("Game event")
}
