// Package session holds the interactive client's mutable state.
package session

import (
	"chessmind/internal/client/api"
	"chessmind/internal/core"
)

type Session struct {
	APIBaseURL  string
	Client      *api.Client
	CurrentGame string
	PlayerColor string
	GameState   *core.GameResponse
	Verbose     bool
}

// Update refreshes the cached game state after an API call.
func (s *Session) Update(resp *core.GameResponse) {
	if resp == nil {
		return
	}
	s.GameState = resp
	s.CurrentGame = resp.GameID
	s.PlayerColor = resp.PlayerColor
}

// Clear drops the active game context.
func (s *Session) Clear() {
	s.CurrentGame = ""
	s.PlayerColor = ""
	s.GameState = nil
}
