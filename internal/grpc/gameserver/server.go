package gameserver

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/gasgrid/internal/game"
	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	gamev1 "github.com/mitchelldurbincs/gasgrid/pkg/api/game/v1"
)

// Engine is the part of the game engine the server exposes
type Engine interface {
	CreateGame(ctx context.Context, cfg game.GameConfig) (*core.Game, error)
	RegisterPlayer(ctx context.Context, id, displayName string, isBot bool) (*core.Player, error)
	ProvisionBot(ctx context.Context, name string) (*core.Player, error)
	JoinGame(ctx context.Context, gameID, playerID string) (game.JoinResult, error)
	SubmitAction(ctx context.Context, req game.ActionRequest) (game.ActionResult, error)
	GetGameState(ctx context.Context, gameID string) (*game.GameState, error)
	RunAISweep(ctx context.Context, gameID string) (game.SweepResult, error)
	EndGame(ctx context.Context, gameID, reason string) (game.EndResult, error)
	RecentActions(ctx context.Context, gameID string, limit int) ([]*core.ActionRecord, error)
	GetResults(ctx context.Context, gameID string) ([]core.MatchResult, error)
	Clock() clockwork.Clock
}

// Server implements the GameService gRPC server
type Server struct {
	engine      Engine
	idempotency *IdempotencyManager
}

// NewServer creates a new game server. A zero idempotencyTTL uses the default.
func NewServer(engine Engine, idempotencyTTL time.Duration) *Server {
	return &Server{
		engine:      engine,
		idempotency: NewIdempotencyManager(idempotencyTTL, engine.Clock()),
	}
}

// CreateGame creates a pending game
func (s *Server) CreateGame(ctx context.Context, req *gamev1.CreateGameRequest) (*gamev1.CreateGameResponse, error) {
	g, err := s.engine.CreateGame(ctx, req.ToGameConfig())
	if err != nil {
		return nil, toStatus(err)
	}

	log.Info().
		Str("game_id", g.ID).
		Int("width", g.Width).
		Int("height", g.Height).
		Int("max_players", g.MaxPlayers).
		Msg("Creating new game")

	return &gamev1.CreateGameResponse{Game: gamev1.FromGame(g)}, nil
}

// RegisterPlayer creates a human or bot identity
func (s *Server) RegisterPlayer(ctx context.Context, req *gamev1.RegisterPlayerRequest) (*gamev1.RegisterPlayerResponse, error) {
	var (
		p   *core.Player
		err error
	)
	if req.Bot && req.PlayerID == "" {
		p, err = s.engine.ProvisionBot(ctx, req.DisplayName)
	} else {
		p, err = s.engine.RegisterPlayer(ctx, req.PlayerID, req.DisplayName, req.Bot)
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return &gamev1.RegisterPlayerResponse{PlayerID: p.ID, DisplayName: p.DisplayName, IsBot: p.IsBot}, nil
}

// JoinGame seats a player, registering unknown ids as humans first
func (s *Server) JoinGame(ctx context.Context, req *gamev1.JoinGameRequest) (*gamev1.JoinGameResponse, error) {
	log.Info().
		Str("game_id", req.GameID).
		Str("player_id", req.PlayerID).
		Msg("Player joining game")

	res, err := s.engine.JoinGame(ctx, req.GameID, req.PlayerID)
	if errors.Is(err, core.ErrPlayerNotFound) {
		if _, err = s.engine.RegisterPlayer(ctx, req.PlayerID, req.PlayerID, false); err != nil {
			return nil, toStatus(err)
		}
		res, err = s.engine.JoinGame(ctx, req.GameID, req.PlayerID)
	}
	if err != nil {
		return nil, toStatus(err)
	}

	if res.GameStarted && !res.AlreadyJoined {
		log.Info().Str("game_id", req.GameID).Msg("Game started")
	}
	return &gamev1.JoinGameResponse{
		GameStarted:   res.GameStarted,
		AlreadyJoined: res.AlreadyJoined,
		TurnOrder:     res.TurnOrder,
	}, nil
}

// SubmitAction applies one action. Rejections by the rules come back in the
// response with a reason code; only infrastructure failures become statuses.
func (s *Server) SubmitAction(ctx context.Context, req *gamev1.SubmitActionRequest) (*gamev1.SubmitActionResponse, error) {
	cached, finish, err := s.idempotency.Begin(ctx, req.GameID, req.PlayerID, req.IdempotencyKey)
	if err != nil {
		return nil, toStatus(err)
	}
	if cached != nil {
		log.Debug().
			Str("game_id", req.GameID).
			Str("player_id", req.PlayerID).
			Str("idempotency_key", req.IdempotencyKey).
			Msg("Returning cached response for idempotent request")
		return cached, nil
	}
	defer finish(nil)

	res, err := s.engine.SubmitAction(ctx, req.ToActionRequest())
	var resp gamev1.SubmitActionResponse
	switch {
	case err == nil:
		resp = gamev1.FromActionResult(res)
	case inBand(err):
		resp = gamev1.Rejection(err)
	default:
		log.Error().Err(err).
			Str("game_id", req.GameID).
			Str("player_id", req.PlayerID).
			Msg("Action failed")
		return nil, toStatus(err)
	}

	finish(&resp)
	return &resp, nil
}

// GetGameState returns the current snapshot of a game
func (s *Server) GetGameState(ctx context.Context, req *gamev1.GetGameStateRequest) (*gamev1.GetGameStateResponse, error) {
	gs, err := s.engine.GetGameState(ctx, req.GameID)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := gamev1.FromGameState(gs, s.engine.Clock().Now())
	return &resp, nil
}

// RunAISweep lets every eligible bot in the game act once
func (s *Server) RunAISweep(ctx context.Context, req *gamev1.RunAISweepRequest) (*gamev1.RunAISweepResponse, error) {
	res, err := s.engine.RunAISweep(ctx, req.GameID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &gamev1.RunAISweepResponse{ActionsPerformed: res.ActionsPerformed, TurnSkipped: res.TurnSkipped}, nil
}

// EndGame completes a game. Ending a completed game returns its standings.
func (s *Server) EndGame(ctx context.Context, req *gamev1.EndGameRequest) (*gamev1.EndGameResponse, error) {
	res, err := s.engine.EndGame(ctx, req.GameID, req.Reason)
	if err != nil {
		return nil, toStatus(err)
	}
	if !res.NoOp {
		log.Info().
			Str("game_id", req.GameID).
			Str("winner_id", res.WinnerID).
			Msg("Game ended")
	}
	return &gamev1.EndGameResponse{
		NoOp:      res.NoOp,
		WinnerID:  res.WinnerID,
		Standings: gamev1.FromStandings(res.Standings),
	}, nil
}

// RecentActions returns the newest entries of the action log
func (s *Server) RecentActions(ctx context.Context, req *gamev1.RecentActionsRequest) (*gamev1.RecentActionsResponse, error) {
	records, err := s.engine.RecentActions(ctx, req.GameID, req.Limit)
	if err != nil {
		return nil, toStatus(err)
	}
	return &gamev1.RecentActionsResponse{Actions: gamev1.FromActions(records)}, nil
}

// GetResults returns the standings of a completed game
func (s *Server) GetResults(ctx context.Context, req *gamev1.GetResultsRequest) (*gamev1.GetResultsResponse, error) {
	results, err := s.engine.GetResults(ctx, req.GameID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &gamev1.GetResultsResponse{Standings: gamev1.FromStandings(results)}, nil
}
