package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS players (
	id TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	is_bot INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	seed INTEGER NOT NULL,
	width INTEGER NOT NULL,
	height INTEGER NOT NULL,
	max_players INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	current_turn_player_id TEXT NOT NULL DEFAULT '',
	turn_started_at INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	started_at INTEGER NOT NULL DEFAULT 0,
	ended_at INTEGER NOT NULL DEFAULT 0,
	end_reason TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS player_states (
	game_id TEXT NOT NULL REFERENCES games(id),
	player_id TEXT NOT NULL REFERENCES players(id),
	gas INTEGER NOT NULL,
	territory_count INTEGER NOT NULL,
	last_action_at INTEGER NOT NULL DEFAULT 0,
	last_regen_at INTEGER NOT NULL DEFAULT 0,
	turn_order INTEGER NOT NULL,
	joined_at INTEGER NOT NULL,
	PRIMARY KEY (game_id, player_id)
);

CREATE TABLE IF NOT EXISTS tiles (
	game_id TEXT NOT NULL REFERENCES games(id),
	x INTEGER NOT NULL,
	y INTEGER NOT NULL,
	owner_id TEXT NOT NULL DEFAULT '',
	gas_type TEXT NOT NULL DEFAULT '',
	defense_bonus INTEGER NOT NULL DEFAULT 0,
	defense_expires_at INTEGER NOT NULL DEFAULT 0,
	is_vent INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (game_id, x, y)
);

CREATE TABLE IF NOT EXISTS actions (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	game_id TEXT NOT NULL REFERENCES games(id),
	player_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	x INTEGER NOT NULL,
	y INTEGER NOT NULL,
	gas_spent INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	captured INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS match_results (
	game_id TEXT NOT NULL REFERENCES games(id),
	player_id TEXT NOT NULL,
	placement INTEGER NOT NULL,
	territory_count INTEGER NOT NULL,
	gas INTEGER NOT NULL,
	tokens INTEGER NOT NULL,
	xp INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (game_id, player_id)
);

CREATE INDEX IF NOT EXISTS idx_actions_game ON actions(game_id, seq);
CREATE INDEX IF NOT EXISTS idx_games_status ON games(status);
`
