// Package service is a pure state manager for opponent game sessions with
// optional persistence.
package service

import (
	"fmt"
	"sync"
	"time"

	"chessmind/internal/core"
	"chessmind/internal/game"
	"chessmind/internal/storage"

	"github.com/google/uuid"
)

type Service struct {
	games map[string]*game.Game
	mu    sync.RWMutex
	store *storage.Store // nil if persistence disabled
}

// New creates a new service instance with optional storage
func New(store *storage.Store) *Service {
	return &Service{
		games: make(map[string]*game.Game),
		store: store,
	}
}

// CreateGame registers a new session
func (s *Service) CreateGame(id string, playerColor core.Color, difficulty core.Difficulty, remote bool, initialFEN string, startingTurn core.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[id]; exists {
		return fmt.Errorf("game %s already exists", id)
	}

	s.games[id] = game.New(initialFEN, playerColor, difficulty, remote, startingTurn)

	if s.store != nil {
		s.store.RecordNewGame(storage.GameRecord{
			GameID:       id,
			InitialFEN:   initialFEN,
			PlayerColor:  playerColor.String(),
			Difficulty:   difficulty.String(),
			Remote:       remote,
			StartTimeUTC: time.Now().UTC(),
		})
	}

	return nil
}

// GetGame retrieves a game by ID
func (s *Service) GetGame(gameID string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("game not found: %s", gameID)
	}
	return g, nil
}

// GenerateGameID creates a new unique game ID
func (s *Service) GenerateGameID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Ensure UUID uniqueness (handle potential conflicts)
	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// ApplyMove adds a validated move to the game history and bumps the epoch
func (s *Service) ApplyMove(gameID, moveUCI, newFEN string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("game not found: %s", gameID)
	}

	currentTurn := g.NextTurn()
	nextTurn := core.OppositeColor(currentTurn)

	g.AddSnapshot(newFEN, moveUCI, nextTurn)

	if s.store != nil {
		s.store.RecordMove(storage.MoveRecord{
			GameID:       gameID,
			MoveNumber:   len(g.Moves()),
			MoveUCI:      moveUCI,
			FENAfterMove: newFEN,
			PlayerColor:  currentTurn.String(),
			MoveTimeUTC:  time.Now().UTC(),
		})
	}

	return nil
}

// SetLastMoveResult stores move metadata and persists opponent decision
// provenance when present
func (s *Service) SetLastMoveResult(gameID string, result *game.MoveResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("game not found: %s", gameID)
	}

	g.SetLastResult(result)

	if s.store != nil && result != nil && result.Source != 0 {
		s.store.RecordDecision(storage.DecisionRecord{
			GameID:       gameID,
			MoveNumber:   len(g.Moves()),
			MoveUCI:      result.Move,
			Source:       result.Source.String(),
			Attempts:     result.Attempts,
			Score:        result.Score,
			Depth:        result.Depth,
			DecidedAtUTC: time.Now().UTC(),
		})
	}
	return nil
}

// UpdateGameState sets the game's end state (checkmate, stalemate, etc)
func (s *Service) UpdateGameState(gameID string, state core.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("game not found: %s", gameID)
	}

	g.SetState(state)
	return nil
}

// Configure updates difficulty and the remote flag mid-game
func (s *Service) Configure(gameID string, difficulty *core.Difficulty, remote *bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("game not found: %s", gameID)
	}

	if difficulty != nil {
		g.SetDifficulty(*difficulty)
	}
	if remote != nil {
		g.SetRemote(*remote)
	}
	return nil
}

// AppendChat adds a message to the game transcript
func (s *Service) AppendChat(gameID string, msg core.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("game not found: %s", gameID)
	}

	g.AppendChat(msg)
	return nil
}

// UndoMoves removes the specified number of moves from game history
func (s *Service) UndoMoves(gameID string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("game not found: %s", gameID)
	}

	originalMoveCount := len(g.Moves())

	if err := g.UndoMoves(count); err != nil {
		return err
	}

	if s.store != nil {
		s.store.DeleteUndoneMoves(gameID, originalMoveCount-count)
	}

	return nil
}

// DeleteGame removes a game from memory
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[gameID]; !ok {
		return fmt.Errorf("game not found: %s", gameID)
	}

	delete(s.games, gameID)
	return nil
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// Close cleans up resources
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.games = make(map[string]*game.Game)

	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
