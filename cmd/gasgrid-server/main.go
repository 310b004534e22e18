package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/mitchelldurbincs/gasgrid/internal/archive"
	"github.com/mitchelldurbincs/gasgrid/internal/config"
	"github.com/mitchelldurbincs/gasgrid/internal/game"
	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/game/events"
	"github.com/mitchelldurbincs/gasgrid/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/gasgrid/internal/grpc/gameserver"
	"github.com/mitchelldurbincs/gasgrid/internal/httpapi"
	"github.com/mitchelldurbincs/gasgrid/internal/monitoring"
	"github.com/mitchelldurbincs/gasgrid/internal/scheduler"
	"github.com/mitchelldurbincs/gasgrid/internal/store"
	gamev1 "github.com/mitchelldurbincs/gasgrid/pkg/api/game/v1"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	env := flag.String("env", os.Getenv("APP_ENV"), "Environment overlay (loads config.<env>.yaml)")
	port := flag.Int("port", -1, "The gRPC port (-1 to use config default)")
	httpPort := flag.Int("http-port", -1, "The HTTP port (-1 to use config default, 0 to disable)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	enableReflection := flag.Bool("enable-reflection", false, "Enable gRPC reflection for debugging")
	watch := flag.Bool("watch-config", false, "Reload game rules when the config file changes")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to read .env file")
	}

	// Initialize configuration
	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(*env); err != nil {
		log.Fatal().Err(err).Str("env", *env).Msg("Failed to load environment config")
	}
	cfg := config.Get()

	if *port == -1 {
		*port = cfg.Server.GRPCPort
	}
	if *httpPort == -1 {
		*httpPort = cfg.Server.HTTPPort
	}
	if *logLevel == "" {
		*logLevel = cfg.Server.LogLevel
	}
	setupLogging(*logLevel, cfg.Server.LogFormat)

	goroutines := monitoring.NewGoroutineMonitor(log.Logger)
	goroutines.Start()
	defer goroutines.Stop()

	st, err := openStore(cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	bus := events.NewEventBus()
	bus.Subscribe(subscribers.NewLoggerSubscriber("event-log", log.Logger, zerolog.DebugLevel))

	engine := game.NewEngine(st,
		game.WithPublisher(bus),
		game.WithLogger(log.Logger),
		game.WithRules(cfg.Game.Rules()),
		game.WithAIConfig(cfg.AI.Policy()),
		game.WithRand(core.NewLockedRand(time.Now().UnixNano())),
	)

	sched, err := scheduler.New(engine, cfg.AI.Scheduler(), scheduler.WithLogger(log.Logger))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	bus.Subscribe(sched)
	sched.Start()
	if err := resumeActiveGames(context.Background(), st, engine, sched); err != nil {
		log.Fatal().Err(err).Msg("Failed to resume active games")
	}

	var archiver *archive.Archiver
	if cfg.Archive.Enabled {
		archiver = setupArchive(cfg.Archive)
		bus.Subscribe(archiver)
	}

	if *watch {
		config.WatchConfig(func(c *config.Config, err error) {
			if err != nil {
				log.Error().Err(err).Msg("Ignoring invalid config change")
				return
			}
			engine.SetRules(c.Game.Rules())
			engine.SetAIConfig(c.AI.Policy())
			log.Info().Str("file", config.ConfigFilePath()).Msg("Game rules reloaded")
		})
	}

	log.Info().
		Int("port", *port).
		Int("http_port", *httpPort).
		Str("store", cfg.Store.Driver).
		Bool("archive", cfg.Archive.Enabled).
		Msg("Starting gasgrid server")

	// Create listener
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.GRPCHost, *port))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to listen")
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			loggingInterceptor,
			recoveryInterceptor,
		),
	)
	gameserver.RegisterGameServiceServer(grpcServer, gameserver.NewServer(engine, cfg.Server.IdempotencyTTL))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(gamev1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	if *enableReflection {
		reflection.Register(grpcServer)
		log.Info().Msg("gRPC reflection enabled")
	}

	go func() {
		log.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve")
		}
	}()

	app := httpapi.New(engine, httpapi.Config{
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	}, log.Logger)
	if *httpPort > 0 {
		go func() {
			addr := fmt.Sprintf("%s:%d", cfg.Server.GRPCHost, *httpPort)
			log.Info().Str("address", addr).Msg("HTTP server listening")
			if err := app.Listen(addr); err != nil {
				log.Fatal().Err(err).Msg("Failed to serve HTTP")
			}
		}()
	}

	// Wait for shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(gamev1.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	// Give ongoing requests time to complete
	time.Sleep(cfg.Server.GracefulShutdownDelay)

	log.Info().Msg("Gracefully stopping servers")
	grpcServer.GracefulStop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
	if err := sched.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Scheduler shutdown failed")
	}
	if archiver != nil {
		archiver.Close()
	}
	log.Info().Msg("Server shutdown complete")
}

func setupArchive(c config.ArchiveConfig) *archive.Archiver {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client, err := archive.NewS3Client(ctx, c.S3())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create archive client")
	}
	a, err := archive.New(client, c.S3(), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create archiver")
	}
	log.Info().Str("bucket", c.Bucket).Msg("Match archive enabled")
	return a
}

// resumeActiveGames re-arms the sweep and expiry jobs of games that were
// running when the process last stopped
func resumeActiveGames(ctx context.Context, st store.Store, engine *game.Engine, sched *scheduler.Scheduler) error {
	active, err := st.ListGames(ctx, core.StatusActive)
	if err != nil {
		return err
	}
	for _, g := range active {
		gs, err := engine.GetGameState(ctx, g.ID)
		if err != nil {
			return err
		}
		hasBots := false
		for _, ps := range gs.Players {
			hasBots = hasBots || ps.IsBot
		}
		if err := sched.ScheduleGame(g.ID, hasBots, g.StartedAt.Add(g.Duration)); err != nil {
			return err
		}
		log.Info().Str("game_id", g.ID).Bool("bots", hasBots).Msg("Resumed active game")
	}
	return nil
}
