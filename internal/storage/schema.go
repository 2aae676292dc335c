package storage

import "time"

// Schema defines the database structure for game, move and decision records
const Schema = `
CREATE TABLE IF NOT EXISTS games (
    game_id TEXT PRIMARY KEY,
    initial_fen TEXT NOT NULL,
    player_color TEXT NOT NULL,
    difficulty TEXT NOT NULL,
    remote_enabled INTEGER NOT NULL DEFAULT 0,
    start_time_utc TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS moves (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    game_id TEXT NOT NULL,
    move_number INTEGER NOT NULL,
    move_uci TEXT NOT NULL,
    fen_after_move TEXT NOT NULL,
    player_color TEXT NOT NULL,
    move_time_utc TIMESTAMP NOT NULL,
    FOREIGN KEY (game_id) REFERENCES games(game_id)
);

CREATE TABLE IF NOT EXISTS decisions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    game_id TEXT NOT NULL,
    move_number INTEGER NOT NULL,
    move_uci TEXT NOT NULL,
    source TEXT NOT NULL,
    attempts INTEGER NOT NULL DEFAULT 0,
    score INTEGER NOT NULL DEFAULT 0,
    depth INTEGER NOT NULL DEFAULT 0,
    decided_at_utc TIMESTAMP NOT NULL,
    FOREIGN KEY (game_id) REFERENCES games(game_id)
);

CREATE INDEX IF NOT EXISTS idx_moves_game ON moves(game_id, move_number);
CREATE INDEX IF NOT EXISTS idx_decisions_game ON decisions(game_id, move_number);
`

// GameRecord represents a game entry in the database
type GameRecord struct {
	GameID       string
	InitialFEN   string
	PlayerColor  string
	Difficulty   string
	Remote       bool
	StartTimeUTC time.Time
}

// MoveRecord represents a move entry in the database
type MoveRecord struct {
	GameID       string
	MoveNumber   int
	MoveUCI      string
	FENAfterMove string
	PlayerColor  string
	MoveTimeUTC  time.Time
}

// DecisionRecord captures provenance of an opponent move for observability
type DecisionRecord struct {
	GameID       string
	MoveNumber   int
	MoveUCI      string
	Source       string // "local" or "remote"
	Attempts     int
	Score        int
	Depth        int
	DecidedAtUTC time.Time
}
