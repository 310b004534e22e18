package core

import "time"

// Rules holds every tunable number the engine uses.
// DefaultRules matches the reference configuration.
type Rules struct {
	BoardWidth  int
	BoardHeight int
	MaxPlayers  int
	Duration    time.Duration

	StartingGas     int
	MaxGas          int
	RegenInterval   time.Duration
	RegenBase       int
	RegenPerVent    int
	VentActionBonus int

	HumanCooldown       time.Duration
	BotCooldown         time.Duration
	CooldownHealCeiling time.Duration
	// AllowClockSkew lets a negative elapsed time satisfy the cooldown
	AllowClockSkew bool

	DefendBonus    int
	DefendDuration time.Duration
	BaseDefense    float64
	PowerPerGas    float64

	DominanceThreshold int
	VentCount          int
	StartingTiles      int

	// TurnTimeout of zero disables stalled-turn skipping
	TurnTimeout time.Duration
}

// DefaultRules returns the reference rule set
func DefaultRules() Rules {
	return Rules{
		BoardWidth:  12,
		BoardHeight: 8,
		MaxPlayers:  4,
		Duration:    15 * time.Minute,

		StartingGas:     100,
		MaxGas:          200,
		RegenInterval:   30 * time.Second,
		RegenBase:       3,
		RegenPerVent:    2,
		VentActionBonus: 5,

		HumanCooldown:       5 * time.Second,
		BotCooldown:         8 * time.Second,
		CooldownHealCeiling: time.Hour,
		AllowClockSkew:      true,

		DefendBonus:    50,
		DefendDuration: 60 * time.Second,
		BaseDefense:    50,
		PowerPerGas:    5,

		DominanceThreshold: 40,
		VentCount:          5,
		StartingTiles:      3,
	}
}

// CooldownFor returns the cooldown that applies to a human or bot player
func (r Rules) CooldownFor(isBot bool) time.Duration {
	if isBot {
		return r.BotCooldown
	}
	return r.HumanCooldown
}
