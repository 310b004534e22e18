package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/gasgrid/internal/game"
	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/store/memory"
	"github.com/mitchelldurbincs/gasgrid/internal/testutil"
	gamev1 "github.com/mitchelldurbincs/gasgrid/pkg/api/game/v1"
)

func setupApp(t *testing.T, cfg Config) (*fiber.App, *memory.Store) {
	t.Helper()
	st := memory.New()
	engine := game.NewEngine(st,
		game.WithClock(testutil.NewFakeClock()),
		game.WithRand(testutil.NewTestRNG(1)),
		game.WithLogger(testutil.NopLogger()),
	)
	if cfg.RateLimitRPS == 0 {
		cfg = Config{RateLimitRPS: 100, RateLimitBurst: 100}
	}
	return New(engine, cfg, testutil.NopLogger()), st
}

func do(t *testing.T, app *fiber.App, method, path string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func seedDuel(t *testing.T, st *memory.Store) {
	testutil.SeedActiveGame(t, st, testutil.ActiveGame{
		ID: "g1",
		Seats: []testutil.Seat{
			{ID: "alice", Gas: 100, Owned: []core.Coordinate{{X: 4, Y: 4}, {X: 5, Y: 4}}},
			{ID: "bob", Gas: 100, Owned: []core.Coordinate{{X: 10, Y: 6}}},
		},
	})
}

func TestHealthz(t *testing.T) {
	app, _ := setupApp(t, Config{})
	var body map[string]string
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/healthz", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestGameLifecycleOverHTTP(t *testing.T) {
	app, _ := setupApp(t, Config{})

	var created gamev1.CreateGameResponse
	require.Equal(t, http.StatusCreated, do(t, app, http.MethodPost, "/v1/games",
		gamev1.CreateGameRequest{MaxPlayers: 2, DurationSeconds: 300}, &created))
	assert.Equal(t, "pending", created.Game.Status)
	assert.Equal(t, 300, created.Game.DurationSeconds)
	path := "/v1/games/" + created.Game.ID

	var bot gamev1.RegisterPlayerResponse
	require.Equal(t, http.StatusCreated, do(t, app, http.MethodPost, "/v1/players",
		gamev1.RegisterPlayerRequest{DisplayName: "Chlorine", Bot: true}, &bot))
	assert.True(t, bot.IsBot)

	var join gamev1.JoinGameResponse
	require.Equal(t, http.StatusOK, do(t, app, http.MethodPost, path+"/join", gamev1.JoinGameRequest{PlayerID: "alice"}, &join))
	assert.False(t, join.GameStarted)
	require.Equal(t, http.StatusOK, do(t, app, http.MethodPost, path+"/join", gamev1.JoinGameRequest{PlayerID: bot.PlayerID}, &join))
	assert.True(t, join.GameStarted)

	var state gamev1.GetGameStateResponse
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, path, nil, &state))
	assert.Equal(t, "active", state.Game.Status)
	assert.Len(t, state.Players, 2)
	assert.Len(t, state.Tiles, state.Game.Width*state.Game.Height)

	var ended gamev1.EndGameResponse
	require.Equal(t, http.StatusOK, do(t, app, http.MethodPost, path+"/end", gamev1.EndGameRequest{Reason: game.ReasonAbandoned}, &ended))
	assert.False(t, ended.NoOp)
	assert.Len(t, ended.Standings, 2)

	var results gamev1.GetResultsResponse
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, path+"/results", nil, &results))
	assert.Equal(t, ended.Standings, results.Standings)
}

func TestSubmitActionOverHTTP(t *testing.T) {
	app, st := setupApp(t, Config{})
	seedDuel(t, st)

	var resp gamev1.SubmitActionResponse
	require.Equal(t, http.StatusOK, do(t, app, http.MethodPost, "/v1/games/g1/actions",
		gamev1.SubmitActionRequest{PlayerID: "alice", Action: "defend", X: 4, Y: 4, GasSpent: 10}, &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 90, resp.GasRemaining)
	assert.Equal(t, "bob", resp.NextPlayerID)

	testCases := []struct {
		name   string
		req    gamev1.SubmitActionRequest
		status int
		code   string
	}{
		{"out of turn", gamev1.SubmitActionRequest{PlayerID: "alice", Action: "defend", X: 4, Y: 4, GasSpent: 10}, http.StatusConflict, "not_your_turn"},
		{"zero gas", gamev1.SubmitActionRequest{PlayerID: "bob", Action: "defend", X: 10, Y: 6}, http.StatusBadRequest, "invalid_gas"},
		{"not adjacent", gamev1.SubmitActionRequest{PlayerID: "bob", Action: "emit", X: 0, Y: 0, GasSpent: 10}, http.StatusConflict, "not_adjacent"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var rejected gamev1.SubmitActionResponse
			assert.Equal(t, tc.status, do(t, app, http.MethodPost, "/v1/games/g1/actions", tc.req, &rejected))
			assert.False(t, rejected.Success)
			assert.Equal(t, tc.code, rejected.Code)
		})
	}

	var log gamev1.RecentActionsResponse
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/v1/games/g1/actions?limit=5", nil, &log))
	require.Len(t, log.Actions, 1)
	assert.Equal(t, "defended", log.Actions[0].Outcome)
	assert.Equal(t, "alice", log.Actions[0].PlayerID)
}

func TestErrorStatuses(t *testing.T) {
	app, _ := setupApp(t, Config{})

	var body gamev1.ErrorResponse
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/v1/games/missing", nil, &body))
	assert.Equal(t, "game_not_found", body.Code)
	assert.Equal(t, "NotFoundError", body.Kind)

	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodPost, "/v1/games/missing/sweep", nil, &body))

	req := httptest.NewRequest(http.MethodPost, "/v1/games", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	app, _ := setupApp(t, Config{RateLimitRPS: 1, RateLimitBurst: 2})

	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/v1/games/x", nil, nil))
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/v1/games/x", nil, nil))

	var body gamev1.ErrorResponse
	assert.Equal(t, http.StatusTooManyRequests, do(t, app, http.MethodGet, "/v1/games/x", nil, &body))
	assert.Equal(t, "rate_limited", body.Code)

	// health checks are not limited
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/healthz", nil, nil))
}

func TestRateLimiter_RefillsAndEvicts(t *testing.T) {
	now := testutil.Epoch
	rl := NewRateLimiter(1, 1, func() time.Time { return now })

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "buckets are per client")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("a"))

	now = now.Add(limiterIdle + time.Second)
	rl.Allow("c")
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.clients, 1, "idle clients are evicted")
}
