package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/gasgrid/internal/archive"
	"github.com/mitchelldurbincs/gasgrid/internal/game/ai"
	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
	"github.com/mitchelldurbincs/gasgrid/internal/scheduler"
)

// EnvPrefix is prepended to every environment override, e.g.
// GASGRID_GAME_MAX_GAS=300
const EnvPrefix = "GASGRID"

// Store drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Log formats
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config holds all configuration for the application
type Config struct {
	Game    GameConfig    `mapstructure:"game"`
	AI      AIConfig      `mapstructure:"ai"`
	Store   StoreConfig   `mapstructure:"store"`
	Server  ServerConfig  `mapstructure:"server"`
	Archive ArchiveConfig `mapstructure:"archive"`
}

// GameConfig holds the rule numbers of the engine
type GameConfig struct {
	BoardWidth  int           `mapstructure:"board_width"`
	BoardHeight int           `mapstructure:"board_height"`
	MaxPlayers  int           `mapstructure:"max_players"`
	Duration    time.Duration `mapstructure:"duration"`

	StartingGas     int           `mapstructure:"starting_gas"`
	MaxGas          int           `mapstructure:"max_gas"`
	RegenInterval   time.Duration `mapstructure:"regen_interval"`
	RegenBase       int           `mapstructure:"regen_base"`
	RegenPerVent    int           `mapstructure:"regen_per_vent"`
	VentActionBonus int           `mapstructure:"vent_action_bonus"`

	HumanCooldown       time.Duration `mapstructure:"human_cooldown"`
	BotCooldown         time.Duration `mapstructure:"bot_cooldown"`
	CooldownHealCeiling time.Duration `mapstructure:"cooldown_heal_ceiling"`
	AllowClockSkew      bool          `mapstructure:"allow_clock_skew"`

	DefendBonus    int           `mapstructure:"defend_bonus"`
	DefendDuration time.Duration `mapstructure:"defend_duration"`
	BaseDefense    float64       `mapstructure:"base_defense"`
	PowerPerGas    float64       `mapstructure:"power_per_gas"`

	DominanceThreshold int `mapstructure:"dominance_threshold"`
	VentCount          int `mapstructure:"vent_count"`
	StartingTiles      int `mapstructure:"starting_tiles"`

	TurnTimeout time.Duration `mapstructure:"turn_timeout"`
}

// AIConfig holds bot heuristics and scheduling
type AIConfig struct {
	KickoffDelay    time.Duration `mapstructure:"kickoff_delay"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	SweepHumanGames bool          `mapstructure:"sweep_human_games"`

	EmitCost              int     `mapstructure:"emit_cost"`
	BombCost              int     `mapstructure:"bomb_cost"`
	DefendCost            int     `mapstructure:"defend_cost"`
	EnemyDefenseThreshold int     `mapstructure:"enemy_defense_threshold"`
	WeakDefenseThreshold  int     `mapstructure:"weak_defense_threshold"`
	DefendChance          float64 `mapstructure:"defend_chance"`
	BombOnEnemyChance     float64 `mapstructure:"bomb_on_enemy_chance"`
	MaxExpandBomb         float64 `mapstructure:"max_expand_bomb"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	DSN        string `mapstructure:"dsn"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// ServerConfig holds the network and logging settings of the server binary
type ServerConfig struct {
	GRPCHost              string        `mapstructure:"grpc_host"`
	GRPCPort              int           `mapstructure:"grpc_port"`
	HTTPPort              int           `mapstructure:"http_port"`
	LogLevel              string        `mapstructure:"log_level"`
	LogFormat             string        `mapstructure:"log_format"`
	GracefulShutdownDelay time.Duration `mapstructure:"graceful_shutdown_delay"`
	RateLimitRPS          float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst        int           `mapstructure:"rate_limit_burst"`
	IdempotencyTTL        time.Duration `mapstructure:"idempotency_ttl"`
}

// ArchiveConfig describes the match archive bucket
type ArchiveConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Bucket    string        `mapstructure:"bucket"`
	Endpoint  string        `mapstructure:"endpoint"`
	Region    string        `mapstructure:"region"`
	AccessKey string        `mapstructure:"access_key"`
	Secret    string        `mapstructure:"secret"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

var (
	mu  sync.RWMutex
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	r := core.DefaultRules()
	v.SetDefault("game.board_width", r.BoardWidth)
	v.SetDefault("game.board_height", r.BoardHeight)
	v.SetDefault("game.max_players", r.MaxPlayers)
	v.SetDefault("game.duration", r.Duration)
	v.SetDefault("game.starting_gas", r.StartingGas)
	v.SetDefault("game.max_gas", r.MaxGas)
	v.SetDefault("game.regen_interval", r.RegenInterval)
	v.SetDefault("game.regen_base", r.RegenBase)
	v.SetDefault("game.regen_per_vent", r.RegenPerVent)
	v.SetDefault("game.vent_action_bonus", r.VentActionBonus)
	v.SetDefault("game.human_cooldown", r.HumanCooldown)
	v.SetDefault("game.bot_cooldown", r.BotCooldown)
	v.SetDefault("game.cooldown_heal_ceiling", r.CooldownHealCeiling)
	v.SetDefault("game.allow_clock_skew", r.AllowClockSkew)
	v.SetDefault("game.defend_bonus", r.DefendBonus)
	v.SetDefault("game.defend_duration", r.DefendDuration)
	v.SetDefault("game.base_defense", r.BaseDefense)
	v.SetDefault("game.power_per_gas", r.PowerPerGas)
	v.SetDefault("game.dominance_threshold", r.DominanceThreshold)
	v.SetDefault("game.vent_count", r.VentCount)
	v.SetDefault("game.starting_tiles", r.StartingTiles)
	v.SetDefault("game.turn_timeout", r.TurnTimeout)

	a := ai.DefaultConfig()
	s := scheduler.DefaultConfig()
	v.SetDefault("ai.kickoff_delay", s.KickoffDelay)
	v.SetDefault("ai.sweep_interval", s.SweepInterval)
	v.SetDefault("ai.sweep_human_games", s.SweepHumanGames)
	v.SetDefault("ai.emit_cost", a.EmitCost)
	v.SetDefault("ai.bomb_cost", a.BombCost)
	v.SetDefault("ai.defend_cost", a.DefendCost)
	v.SetDefault("ai.enemy_defense_threshold", a.EnemyDefenseThreshold)
	v.SetDefault("ai.weak_defense_threshold", a.WeakDefenseThreshold)
	v.SetDefault("ai.defend_chance", a.DefendChance)
	v.SetDefault("ai.bomb_on_enemy_chance", a.BombOnEnemyChance)
	v.SetDefault("ai.max_expand_bomb", a.MaxExpandBomb)

	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.sqlite_path", "gasgrid.db")

	v.SetDefault("server.grpc_host", "0.0.0.0")
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", LogFormatConsole)
	v.SetDefault("server.graceful_shutdown_delay", 5*time.Second)
	v.SetDefault("server.rate_limit_rps", 10.0)
	v.SetDefault("server.rate_limit_burst", 20)
	v.SetDefault("server.idempotency_ttl", 5*time.Minute)

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.region", "auto")
	v.SetDefault("archive.access_key", "")
	v.SetDefault("archive.secret", "")
	v.SetDefault("archive.timeout", 30*time.Second)
}

// Init initializes the configuration
func Init(configPath string) error {
	nv := viper.New()
	setViperDefaults(nv)

	if configPath != "" {
		nv.SetConfigFile(configPath)
	} else {
		nv.SetConfigName("config")
		nv.SetConfigType("yaml")
		nv.AddConfigPath(".")
		nv.AddConfigPath("./config")
		nv.AddConfigPath("/etc/gasgrid")
	}

	nv.SetEnvPrefix(EnvPrefix)
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	if err := nv.ReadInConfig(); err != nil {
		// a missing file falls back to defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	c, err := decode(nv)
	if err != nil {
		return err
	}

	mu.Lock()
	v, cfg = nv, c
	mu.Unlock()
	return nil
}

func decode(v *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

// Get returns the current configuration, initializing defaults on first use
func Get() *Config {
	mu.RLock()
	c := cfg
	mu.RUnlock()
	if c == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
		mu.RLock()
		c = cfg
		mu.RUnlock()
	}
	return c
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig merges config.<env>.yaml over the loaded config
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}
	nv := GetViper()

	envFile := fmt.Sprintf("config.%s.yaml", env)
	nv.SetConfigFile(envFile)
	if err := nv.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}
	return reload(nv)
}

// Set allows runtime config updates. Invalid values are rejected and the
// previous configuration stays in effect.
func Set(key string, value interface{}) error {
	nv := GetViper()
	nv.Set(key, value)
	return reload(nv)
}

func reload(nv *viper.Viper) error {
	c, err := decode(nv)
	if err != nil {
		return err
	}
	mu.Lock()
	cfg = c
	mu.Unlock()
	return nil
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return GetViper().ConfigFileUsed()
}

// WatchConfig enables hot reloading of the config file. onChange receives
// the new configuration, or the error that kept the old one in place.
func WatchConfig(onChange func(*Config, error)) {
	nv := GetViper()
	nv.OnConfigChange(func(e fsnotify.Event) {
		err := reload(nv)
		if onChange != nil {
			onChange(Get(), err)
		}
	})
	nv.WatchConfig()
}

// Rules converts the game section to engine rules
func (g GameConfig) Rules() core.Rules {
	return core.Rules{
		BoardWidth:          g.BoardWidth,
		BoardHeight:         g.BoardHeight,
		MaxPlayers:          g.MaxPlayers,
		Duration:            g.Duration,
		StartingGas:         g.StartingGas,
		MaxGas:              g.MaxGas,
		RegenInterval:       g.RegenInterval,
		RegenBase:           g.RegenBase,
		RegenPerVent:        g.RegenPerVent,
		VentActionBonus:     g.VentActionBonus,
		HumanCooldown:       g.HumanCooldown,
		BotCooldown:         g.BotCooldown,
		CooldownHealCeiling: g.CooldownHealCeiling,
		AllowClockSkew:      g.AllowClockSkew,
		DefendBonus:         g.DefendBonus,
		DefendDuration:      g.DefendDuration,
		BaseDefense:         g.BaseDefense,
		PowerPerGas:         g.PowerPerGas,
		DominanceThreshold:  g.DominanceThreshold,
		VentCount:           g.VentCount,
		StartingTiles:       g.StartingTiles,
		TurnTimeout:         g.TurnTimeout,
	}
}

// Policy converts the ai section to bot heuristics
func (a AIConfig) Policy() ai.Config {
	return ai.Config{
		EmitCost:              a.EmitCost,
		BombCost:              a.BombCost,
		DefendCost:            a.DefendCost,
		EnemyDefenseThreshold: a.EnemyDefenseThreshold,
		WeakDefenseThreshold:  a.WeakDefenseThreshold,
		DefendChance:          a.DefendChance,
		BombOnEnemyChance:     a.BombOnEnemyChance,
		MaxExpandBomb:         a.MaxExpandBomb,
	}
}

// Scheduler converts the ai section to scheduler timings
func (a AIConfig) Scheduler() scheduler.Config {
	return scheduler.Config{
		KickoffDelay:    a.KickoffDelay,
		SweepInterval:   a.SweepInterval,
		SweepHumanGames: a.SweepHumanGames,
	}
}

// S3 converts the archive section to the archiver's settings
func (a ArchiveConfig) S3() archive.Config {
	return archive.Config{
		Bucket:    a.Bucket,
		Endpoint:  a.Endpoint,
		Region:    a.Region,
		AccessKey: a.AccessKey,
		Secret:    a.Secret,
		Timeout:   a.Timeout,
	}
}

// Validate validates the configuration values
func Validate(c *Config) error {
	g := c.Game
	if g.BoardWidth < 2 || g.BoardHeight < 2 {
		return fmt.Errorf("game board must be at least 2x2")
	}
	if g.MaxPlayers < 1 {
		return fmt.Errorf("game.max_players must be positive")
	}
	if g.Duration <= 0 {
		return fmt.Errorf("game.duration must be positive")
	}
	if g.StartingGas < 0 || g.MaxGas <= 0 || g.StartingGas > g.MaxGas {
		return fmt.Errorf("game.starting_gas must be between 0 and game.max_gas")
	}
	if g.RegenInterval <= 0 {
		return fmt.Errorf("game.regen_interval must be positive")
	}
	if g.RegenBase < 0 || g.RegenPerVent < 0 || g.VentActionBonus < 0 {
		return fmt.Errorf("game regen amounts must be non-negative")
	}
	if g.HumanCooldown < 0 || g.BotCooldown < 0 {
		return fmt.Errorf("game cooldowns must be non-negative")
	}
	if g.CooldownHealCeiling <= 0 {
		return fmt.Errorf("game.cooldown_heal_ceiling must be positive")
	}
	if g.DefendBonus < 0 || g.DefendDuration <= 0 {
		return fmt.Errorf("game.defend_bonus must be non-negative and game.defend_duration positive")
	}
	if g.BaseDefense < 0 || g.PowerPerGas <= 0 {
		return fmt.Errorf("game.power_per_gas must be positive")
	}
	if g.DominanceThreshold < 0 {
		return fmt.Errorf("game.dominance_threshold must be non-negative")
	}
	if g.VentCount < 0 || g.StartingTiles < 1 {
		return fmt.Errorf("game.starting_tiles must be positive")
	}
	if g.StartingTiles*g.MaxPlayers+g.VentCount > g.BoardWidth*g.BoardHeight {
		return fmt.Errorf("board %dx%d cannot fit %d players and %d vents",
			g.BoardWidth, g.BoardHeight, g.MaxPlayers, g.VentCount)
	}
	if g.TurnTimeout < 0 {
		return fmt.Errorf("game.turn_timeout must be non-negative")
	}

	a := c.AI
	if a.KickoffDelay < 0 || a.SweepInterval <= 0 {
		return fmt.Errorf("ai.sweep_interval must be positive")
	}
	if a.EmitCost <= 0 || a.BombCost <= 0 || a.DefendCost <= 0 {
		return fmt.Errorf("ai action costs must be positive")
	}
	for name, p := range map[string]float64{
		"ai.defend_chance":        a.DefendChance,
		"ai.bomb_on_enemy_chance": a.BombOnEnemyChance,
		"ai.max_expand_bomb":      a.MaxExpandBomb,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}

	s := c.Server
	if s.GRPCPort <= 0 || s.GRPCPort > 65535 {
		return fmt.Errorf("server.grpc_port must be between 1 and 65535")
	}
	if s.HTTPPort < 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be between 0 and 65535")
	}
	switch s.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("server.log_format must be console or json")
	}
	if s.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.graceful_shutdown_delay must be non-negative")
	}
	if s.RateLimitRPS <= 0 || s.RateLimitBurst < 1 {
		return fmt.Errorf("server rate limit must be positive")
	}

	if c.Archive.Enabled && c.Archive.Bucket == "" {
		return fmt.Errorf("archive.bucket is required when the archive is enabled")
	}
	return nil
}
