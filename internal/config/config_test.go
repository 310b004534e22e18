package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/gasgrid/internal/game/ai"
	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/scheduler"
)

func reset() {
	mu.Lock()
	cfg, v = nil, nil
	mu.Unlock()
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestInit(t *testing.T) {
	configFile := writeConfig(t, t.TempDir(), "config.yaml", `
game:
  max_gas: 300
  regen_interval: 45s
  allow_clock_skew: false
ai:
  sweep_interval: 2s
  defend_chance: 0.25
store:
  driver: sqlite
  sqlite_path: /tmp/gas.db
server:
  grpc_port: 9000
`)
	reset()
	require.NoError(t, Init(configFile))

	c := Get()
	assert.Equal(t, 300, c.Game.MaxGas)
	assert.Equal(t, 45*time.Second, c.Game.RegenInterval)
	assert.False(t, c.Game.AllowClockSkew)
	assert.Equal(t, 2*time.Second, c.AI.SweepInterval)
	assert.Equal(t, 0.25, c.AI.DefendChance)
	assert.Equal(t, DriverSQLite, c.Store.Driver)
	assert.Equal(t, "/tmp/gas.db", c.Store.SQLitePath)
	assert.Equal(t, 9000, c.Server.GRPCPort)
	assert.Equal(t, configFile, ConfigFilePath())

	// untouched keys keep their defaults
	assert.Equal(t, 12, c.Game.BoardWidth)
	assert.Equal(t, 8*time.Second, c.Game.BotCooldown)
}

func TestInitWithDefaults(t *testing.T) {
	reset()
	require.NoError(t, Init("/non/existent/path/config.yaml"))

	c := Get()
	assert.Equal(t, core.DefaultRules(), c.Game.Rules())
	assert.Equal(t, ai.DefaultConfig(), c.AI.Policy())
	assert.Equal(t, scheduler.DefaultConfig(), c.AI.Scheduler())
	assert.Equal(t, DriverMemory, c.Store.Driver)
	assert.Equal(t, 50051, c.Server.GRPCPort)
	assert.Equal(t, 8080, c.Server.HTTPPort)
	assert.False(t, c.Archive.Enabled)
	assert.Equal(t, time.Duration(0), c.Game.TurnTimeout, "stalled-turn skipping is off by default")
}

func TestInit_MalformedFile(t *testing.T) {
	configFile := writeConfig(t, t.TempDir(), "config.yaml", "game: [unterminated")
	reset()
	assert.Error(t, Init(configFile))
}

func TestEnvironmentVariables(t *testing.T) {
	reset()
	t.Setenv("GASGRID_GAME_DOMINANCE_THRESHOLD", "25")
	t.Setenv("GASGRID_GAME_HUMAN_COOLDOWN", "3s")
	t.Setenv("GASGRID_SERVER_GRPC_PORT", "9090")

	require.NoError(t, Init(""))

	c := Get()
	assert.Equal(t, 25, c.Game.DominanceThreshold)
	assert.Equal(t, 3*time.Second, c.Game.HumanCooldown)
	assert.Equal(t, 9090, c.Server.GRPCPort)
}

func TestSet(t *testing.T) {
	reset()
	require.NoError(t, Init(""))

	require.NoError(t, Set("game.vent_action_bonus", 9))
	assert.Equal(t, 9, Get().Game.VentActionBonus)

	err := Set("store.driver", "mongo")
	assert.ErrorContains(t, err, "unknown store.driver")
	assert.Equal(t, DriverMemory, Get().Store.Driver, "rejected values leave the old config in place")
}

func TestLoadEnvironmentConfig(t *testing.T) {
	tmpDir := t.TempDir()
	baseConfig := writeConfig(t, tmpDir, "config.yaml", `
game:
  max_players: 2
server:
  grpc_port: 50051
`)
	writeConfig(t, tmpDir, "config.prod.yaml", `
game:
  max_players: 6
server:
  grpc_port: 8081
  log_format: json
`)

	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer func() { _ = os.Chdir(oldWd) }()

	reset()
	require.NoError(t, Init(baseConfig))
	assert.Equal(t, 2, Get().Game.MaxPlayers)

	require.NoError(t, LoadEnvironmentConfig("prod"))
	c := Get()
	assert.Equal(t, 6, c.Game.MaxPlayers)
	assert.Equal(t, 8081, c.Server.GRPCPort)
	assert.Equal(t, "json", c.Server.LogFormat)

	require.NoError(t, LoadEnvironmentConfig("staging"), "a missing overlay is ignored")
	require.NoError(t, LoadEnvironmentConfig(""))
}

func TestValidate(t *testing.T) {
	reset()
	require.NoError(t, Init(""))
	base := *Get()

	testCases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"tiny board", func(c *Config) { c.Game.BoardWidth = 1 }},
		{"zero duration", func(c *Config) { c.Game.Duration = 0 }},
		{"starting gas above cap", func(c *Config) { c.Game.StartingGas = c.Game.MaxGas + 1 }},
		{"zero regen interval", func(c *Config) { c.Game.RegenInterval = 0 }},
		{"negative cooldown", func(c *Config) { c.Game.BotCooldown = -time.Second }},
		{"zero power per gas", func(c *Config) { c.Game.PowerPerGas = 0 }},
		{"board too crowded", func(c *Config) { c.Game.MaxPlayers = 40 }},
		{"negative turn timeout", func(c *Config) { c.Game.TurnTimeout = -time.Second }},
		{"zero sweep interval", func(c *Config) { c.AI.SweepInterval = 0 }},
		{"chance above one", func(c *Config) { c.AI.BombOnEnemyChance = 1.5 }},
		{"zero bot cost", func(c *Config) { c.AI.EmitCost = 0 }},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = DriverPostgres }},
		{"bad port", func(c *Config) { c.Server.GRPCPort = 70000 }},
		{"bad log format", func(c *Config) { c.Server.LogFormat = "xml" }},
		{"no rate limit", func(c *Config) { c.Server.RateLimitRPS = 0 }},
		{"archive without bucket", func(c *Config) { c.Archive.Enabled = true }},
	}

	require.NoError(t, Validate(&base))
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mutate(&c)
			assert.Error(t, Validate(&c))
		})
	}
}

func TestWatchConfig(t *testing.T) {
	dir := t.TempDir()
	configFile := writeConfig(t, dir, "config.yaml", "game:\n  max_gas: 250\n")
	reset()
	require.NoError(t, Init(configFile))

	changed := make(chan *Config, 16)
	WatchConfig(func(c *Config, err error) {
		if err != nil {
			return
		}
		select {
		case changed <- c:
		default:
		}
	})

	// give the watcher time to register before rewriting the file
	time.Sleep(100 * time.Millisecond)
	writeConfig(t, dir, "config.yaml", "game:\n  max_gas: 275\n")

	// a truncating write may surface an intermediate empty file first
	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changed:
			if c.Game.MaxGas == 275 {
				return
			}
		case <-deadline:
			t.Fatal("config change not observed")
		}
	}
}

func TestArchiveS3(t *testing.T) {
	a := ArchiveConfig{Enabled: true, Bucket: "b", Endpoint: "http://minio:9000", Region: "us-east-1", Timeout: time.Second}
	s3 := a.S3()
	assert.Equal(t, "b", s3.Bucket)
	assert.Equal(t, "http://minio:9000", s3.Endpoint)
	assert.Equal(t, time.Second, s3.Timeout)
}
