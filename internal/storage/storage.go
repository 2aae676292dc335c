package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store handles SQLite database operations with async writes
type Store struct {
	db           *sql.DB
	path         string
	writeChan    chan func(*sql.Tx) error
	healthStatus atomic.Bool
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewStore creates a new storage instance with async writer
func NewStore(dataSourceName string, devMode bool) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode in development for better concurrency
	if devMode {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithCancel(context.Background())

	s := &Store{
		db:        db,
		path:      dataSourceName,
		writeChan: make(chan func(*sql.Tx) error, 1000),
		ctx:       ctx,
		cancel:    cancel,
	}

	s.healthStatus.Store(true)

	s.wg.Add(1)
	go s.writerLoop()

	return s, nil
}

// writerLoop processes async write operations
func (s *Store) writerLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			// Drain remaining writes with timeout
			deadline := time.After(2 * time.Second)
			for {
				select {
				case fn := <-s.writeChan:
					if s.healthStatus.Load() {
						s.executeWrite(fn)
					}
				case <-deadline:
					return
				default:
					return
				}
			}

		case fn := <-s.writeChan:
			// Skip if already degraded
			if !s.healthStatus.Load() {
				continue
			}
			s.executeWrite(fn)
		}
	}
}

// executeWrite runs a transactional write operation
func (s *Store) executeWrite(fn func(*sql.Tx) error) {
	tx, err := s.db.Begin()
	if err != nil {
		log.Printf("Storage degraded: failed to begin transaction: %v", err)
		s.healthStatus.Store(false)
		return
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		log.Printf("Storage degraded: write operation failed: %v", err)
		s.healthStatus.Store(false)
		return
	}

	if err := tx.Commit(); err != nil {
		log.Printf("Storage degraded: failed to commit: %v", err)
		s.healthStatus.Store(false)
	}
}

// enqueueWrite submits an async write, dropping it if the queue is full or
// storage is degraded.
func (s *Store) enqueueWrite(what string, fn func(*sql.Tx) error) {
	if !s.healthStatus.Load() {
		return
	}

	select {
	case s.writeChan <- fn:
	default:
		log.Printf("Storage write queue full, dropping %s", what)
	}
}

// RecordNewGame asynchronously records a new game
func (s *Store) RecordNewGame(record GameRecord) {
	s.enqueueWrite("game record", func(tx *sql.Tx) error {
		query := `INSERT INTO games (
			game_id, initial_fen, player_color, difficulty, remote_enabled, start_time_utc
		) VALUES (?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.InitialFEN, record.PlayerColor,
			record.Difficulty, record.Remote, record.StartTimeUTC,
		)
		return err
	})
}

// RecordMove asynchronously records a move
func (s *Store) RecordMove(record MoveRecord) {
	s.enqueueWrite("move record", func(tx *sql.Tx) error {
		query := `INSERT INTO moves (
			game_id, move_number, move_uci, fen_after_move, player_color, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.MoveNumber, record.MoveUCI,
			record.FENAfterMove, record.PlayerColor, record.MoveTimeUTC,
		)
		return err
	})
}

// RecordDecision asynchronously records the provenance of an opponent move
func (s *Store) RecordDecision(record DecisionRecord) {
	s.enqueueWrite("decision record", func(tx *sql.Tx) error {
		query := `INSERT INTO decisions (
			game_id, move_number, move_uci, source, attempts, score, depth, decided_at_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.MoveNumber, record.MoveUCI, record.Source,
			record.Attempts, record.Score, record.Depth, record.DecidedAtUTC,
		)
		return err
	})
}

// DeleteUndoneMoves asynchronously deletes moves after undo
func (s *Store) DeleteUndoneMoves(gameID string, afterMoveNumber int) {
	s.enqueueWrite("undo operation", func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM moves WHERE game_id = ? AND move_number > ?`,
			gameID, afterMoveNumber); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM decisions WHERE game_id = ? AND move_number > ?`,
			gameID, afterMoveNumber)
		return err
	})
}

// QueryGames returns stored games, optionally filtered by game ID prefix
func (s *Store) QueryGames(gameID string) ([]GameRecord, error) {
	query := `SELECT game_id, initial_fen, player_color, difficulty, remote_enabled, start_time_utc
		FROM games`
	args := []any{}

	if gameID != "" && gameID != "*" {
		query += ` WHERE game_id LIKE ?`
		args = append(args, gameID+"%")
	}
	query += ` ORDER BY start_time_utc DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		if err := rows.Scan(&g.GameID, &g.InitialFEN, &g.PlayerColor,
			&g.Difficulty, &g.Remote, &g.StartTimeUTC); err != nil {
			return nil, fmt.Errorf("scan game row: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// IsHealthy returns the current health status
func (s *Store) IsHealthy() bool {
	return s.healthStatus.Load()
}

// Close gracefully closes the database connection
func (s *Store) Close() error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		// Writer finished cleanly
	case <-time.After(2 * time.Second):
		log.Printf("Warning: storage writer shutdown timeout, some writes may be lost")
	}

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitDB creates the database schema
func (s *Store) InitDB() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return tx.Commit()
}

// DeleteDB removes the database file
func (s *Store) DeleteDB() error {
	s.cancel()
	if s.db != nil {
		s.db.Close()
	}
	return os.Remove(s.path)
}
