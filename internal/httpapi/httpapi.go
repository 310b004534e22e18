// Package httpapi exposes the game engine as a JSON HTTP API
package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/gasgrid/internal/game"
	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	gamev1 "github.com/mitchelldurbincs/gasgrid/pkg/api/game/v1"
)

// Engine is the part of the game engine served over HTTP
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

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

type handler struct {
	engine Engine
	logger zerolog.Logger
}

// New builds the fiber app with every route registered
func New(engine Engine, cfg Config, logger zerolog.Logger) *fiber.App {
	logger = logger.With().Str("component", "HTTPAPI").Logger()
	h := &handler{engine: engine, logger: logger}

	app := fiber.New(fiber.Config{
		AppName:               "gasgrid",
		DisableStartupMessage: true,
		ErrorHandler:          h.errorHandler,
	})
	app.Use(recover.New())
	app.Use(h.requestLogger)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	limiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, engine.Clock().Now)
	api := app.Group("/v1", limiter.Middleware())

	api.Post("/players", h.registerPlayer)
	api.Post("/games", h.createGame)
	api.Get("/games/:id", h.getGameState)
	api.Post("/games/:id/join", h.joinGame)
	api.Post("/games/:id/actions", h.submitAction)
	api.Get("/games/:id/actions", h.recentActions)
	api.Post("/games/:id/sweep", h.runAISweep)
	api.Post("/games/:id/end", h.endGame)
	api.Get("/games/:id/results", h.getResults)

	return app
}

// statusFor maps an engine error classification onto an HTTP status
func statusFor(err error) int {
	switch core.KindOf(err) {
	case core.KindValidation:
		return fiber.StatusBadRequest
	case core.KindRuleViolation:
		return fiber.StatusConflict
	case core.KindNotFound:
		return fiber.StatusNotFound
	case core.KindTransient:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *handler) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(gamev1.ErrorResponse{Code: "http_error", Kind: "http", Message: fe.Message})
	}
	code := statusFor(err)
	body := gamev1.ErrorBody(err)
	if code == fiber.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
		body.Message = "internal error"
	}
	return c.Status(code).JSON(body)
}

func (h *handler) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		// run the error handler now so the logged status is final
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			return herr
		}
	}
	h.logger.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("HTTP request")
	return nil
}

func bind(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return core.ErrMalformedRequest.WithMessagef("malformed request body: %v", err)
	}
	return nil
}

func (h *handler) registerPlayer(c *fiber.Ctx) error {
	var req gamev1.RegisterPlayerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	var (
		p   *core.Player
		err error
	)
	if req.Bot && req.PlayerID == "" {
		p, err = h.engine.ProvisionBot(c.UserContext(), req.DisplayName)
	} else {
		p, err = h.engine.RegisterPlayer(c.UserContext(), req.PlayerID, req.DisplayName, req.Bot)
	}
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(gamev1.RegisterPlayerResponse{
		PlayerID: p.ID, DisplayName: p.DisplayName, IsBot: p.IsBot,
	})
}

func (h *handler) createGame(c *fiber.Ctx) error {
	var req gamev1.CreateGameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	g, err := h.engine.CreateGame(c.UserContext(), req.ToGameConfig())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(gamev1.CreateGameResponse{Game: gamev1.FromGame(g)})
}

func (h *handler) getGameState(c *fiber.Ctx) error {
	gs, err := h.engine.GetGameState(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(gamev1.FromGameState(gs, h.engine.Clock().Now()))
}

func (h *handler) joinGame(c *fiber.Ctx) error {
	var req gamev1.JoinGameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()
	res, err := h.engine.JoinGame(ctx, c.Params("id"), req.PlayerID)
	if errors.Is(err, core.ErrPlayerNotFound) {
		if _, err = h.engine.RegisterPlayer(ctx, req.PlayerID, req.PlayerID, false); err != nil {
			return err
		}
		res, err = h.engine.JoinGame(ctx, c.Params("id"), req.PlayerID)
	}
	if err != nil {
		return err
	}
	return c.JSON(gamev1.JoinGameResponse{
		GameStarted:   res.GameStarted,
		AlreadyJoined: res.AlreadyJoined,
		TurnOrder:     res.TurnOrder,
	})
}

// submitAction answers rejections with the action response body so clients
// always get success, message and a reason code.
func (h *handler) submitAction(c *fiber.Ctx) error {
	var req gamev1.SubmitActionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.GameID = c.Params("id")

	res, err := h.engine.SubmitAction(c.UserContext(), req.ToActionRequest())
	if err != nil {
		switch core.KindOf(err) {
		case core.KindValidation, core.KindRuleViolation:
			return c.Status(statusFor(err)).JSON(gamev1.Rejection(err))
		}
		return err
	}
	return c.JSON(gamev1.FromActionResult(res))
}

func (h *handler) recentActions(c *fiber.Ctx) error {
	records, err := h.engine.RecentActions(c.UserContext(), c.Params("id"), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(gamev1.RecentActionsResponse{Actions: gamev1.FromActions(records)})
}

func (h *handler) runAISweep(c *fiber.Ctx) error {
	res, err := h.engine.RunAISweep(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(gamev1.RunAISweepResponse{ActionsPerformed: res.ActionsPerformed, TurnSkipped: res.TurnSkipped})
}

func (h *handler) endGame(c *fiber.Ctx) error {
	var req gamev1.EndGameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.engine.EndGame(c.UserContext(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(gamev1.EndGameResponse{
		NoOp:      res.NoOp,
		WinnerID:  res.WinnerID,
		Standings: gamev1.FromStandings(res.Standings),
	})
}

func (h *handler) getResults(c *fiber.Ctx) error {
	results, err := h.engine.GetResults(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(gamev1.GetResultsResponse{Standings: gamev1.FromStandings(results)})
}
