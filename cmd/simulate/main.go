package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/gasgrid/internal/config"
	"github.com/mitchelldurbincs/gasgrid/internal/game"
	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/store/memory"
)

// idleStep moves the simulated clock forward when no bot could act
const idleStep = time.Second

func main() {
	configPath := flag.String("config", "", "Path to config file")
	bots := flag.Int("bots", 3, "Number of bots")
	width := flag.Int("width", 0, "Board width (0 to use config default)")
	height := flag.Int("height", 0, "Board height (0 to use config default)")
	minutes := flag.Int("minutes", 0, "Match length in simulated minutes (0 to use config default)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	every := flag.Int("every", 10, "Print the board every N actions")
	color := flag.Bool("color", true, "Use ANSI colors")
	verbose := flag.Bool("v", false, "Log engine activity")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()

	fmt.Printf("Game seed: %d\n", *seed)
	clock := clockwork.NewFakeClock()
	engine := game.NewEngine(memory.New(),
		game.WithClock(clock),
		game.WithRand(core.NewLockedRand(*seed)),
		game.WithLogger(log.Logger),
		game.WithRules(cfg.Game.Rules()),
		game.WithAIConfig(cfg.AI.Policy()),
	)

	if err := run(context.Background(), engine, clock, *bots, *width, *height, *minutes, *every, *color); err != nil {
		log.Fatal().Err(err).Msg("Simulation failed")
	}
}

func run(ctx context.Context, engine *game.Engine, clock *clockwork.FakeClock, bots, width, height, minutes, every int, color bool) error {
	g, err := engine.CreateGame(ctx, game.GameConfig{
		Width:      width,
		Height:     height,
		MaxPlayers: bots,
		Duration:   time.Duration(minutes) * time.Minute,
	})
	if err != nil {
		return err
	}
	for i := 0; i < bots; i++ {
		p, err := engine.ProvisionBot(ctx, fmt.Sprintf("Bot %d", i+1))
		if err != nil {
			return err
		}
		if _, err := engine.JoinGame(ctx, g.ID, p.ID); err != nil {
			return err
		}
	}

	gs, err := engine.GetGameState(ctx, g.ID)
	if err != nil {
		return err
	}
	endsAt := gs.Game.StartedAt.Add(gs.Game.Duration)
	fmt.Printf("Initial board:\n%s\n", game.RenderBoard(gs, clock.Now(), color))

	actions := 0
	for {
		delay, ok, err := engine.NextSweepDelay(ctx, g.ID)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		clock.Advance(delay)
		if !clock.Now().Before(endsAt) {
			if _, err := engine.EndGame(ctx, g.ID, game.ReasonTimeExpired); err != nil {
				return err
			}
			break
		}

		res, err := engine.RunAISweep(ctx, g.ID)
		if err != nil {
			return err
		}
		if res.ActionsPerformed == 0 && !res.TurnSkipped {
			clock.Advance(idleStep)
			continue
		}
		actions += res.ActionsPerformed

		if every > 0 && actions%every == 0 {
			if gs, err = engine.GetGameState(ctx, g.ID); err != nil {
				return err
			}
			elapsed := clock.Since(gs.Game.StartedAt).Truncate(time.Second)
			fmt.Printf("After %d actions (%s):\n%s\n", actions, elapsed, game.RenderBoard(gs, clock.Now(), color))
		}
	}

	gs, err = engine.GetGameState(ctx, g.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Final board (%s after %d actions):\n%s\n", gs.Game.EndReason, actions, game.RenderBoard(gs, clock.Now(), color))

	stats := game.ComputeStats(gs)
	fmt.Printf("Owned %d, unclaimed %d\n", stats.Owned, stats.Unclaimed)
	for _, ps := range stats.Players {
		fmt.Printf("  %-24s territory=%-3d vents=%-2d gas=%-3d defended=%d\n", ps.PlayerID, ps.Territory, ps.Vents, ps.Gas, ps.Defended)
	}

	results, err := engine.GetResults(ctx, g.ID)
	if err != nil {
		return err
	}
	fmt.Println("Standings:")
	for _, r := range results {
		fmt.Printf("  #%d %-24s tiles=%-3d tokens=%-2d xp=%d\n", r.Placement, r.PlayerID, r.TerritoryCount, r.Tokens, r.XP)
	}
	return nil
}
