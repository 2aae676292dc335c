package game

import (
	"fmt"

	"chessmind/internal/core"
)

type Snapshot struct {
	FEN          string     // Board state at this point
	PreviousMove string     // Move that created this position (empty for initial)
	NextTurn     core.Color // Whose turn it is at this position
}

// MoveResult tracks the outcome and provenance of the last move.
type MoveResult struct {
	Move        string
	PlayerColor core.Color
	Source      core.Source // unset for human moves
	Score       int
	Depth       int
	Attempts    int // remote attempts used, 0 for local
}

// Game is one human-versus-opponent session. The epoch counts position
// changes; async decisions computed against an older epoch are stale and
// must be discarded.
type Game struct {
	snapshots   []Snapshot
	playerColor core.Color // the human side
	difficulty  core.Difficulty
	remote      bool
	state       core.State
	lastResult  *MoveResult
	transcript  []core.ChatMessage
	epoch       uint64
}

func New(initialFEN string, playerColor core.Color, difficulty core.Difficulty, remote bool, startingTurn core.Color) *Game {
	return &Game{
		snapshots: []Snapshot{
			{
				FEN:          initialFEN,
				PreviousMove: "",
				NextTurn:     startingTurn,
			},
		},
		playerColor: playerColor,
		difficulty:  difficulty,
		remote:      remote,
		state:       core.StateOngoing,
	}
}

func (g *Game) CurrentSnapshot() Snapshot {
	return g.snapshots[len(g.snapshots)-1]
}

func (g *Game) CurrentFEN() string {
	return g.CurrentSnapshot().FEN
}

func (g *Game) InitialFEN() string {
	return g.snapshots[0].FEN
}

func (g *Game) NextTurn() core.Color {
	return g.CurrentSnapshot().NextTurn
}

// IsPlayerTurn reports whether the human moves next.
func (g *Game) IsPlayerTurn() bool {
	return g.NextTurn() == g.playerColor
}

func (g *Game) PlayerColor() core.Color {
	return g.playerColor
}

func (g *Game) Difficulty() core.Difficulty {
	return g.difficulty
}

func (g *Game) SetDifficulty(d core.Difficulty) {
	g.difficulty = d
}

func (g *Game) Remote() bool {
	return g.remote
}

func (g *Game) SetRemote(enabled bool) {
	g.remote = enabled
}

// Epoch identifies the current position generation.
func (g *Game) Epoch() uint64 {
	return g.epoch
}

func (g *Game) AddSnapshot(fen string, move string, nextTurn core.Color) {
	g.snapshots = append(g.snapshots, Snapshot{
		FEN:          fen,
		PreviousMove: move,
		NextTurn:     nextTurn,
	})
	g.epoch++
}

func (g *Game) UndoMoves(count int) error {
	if count < 1 {
		return fmt.Errorf("invalid undo count: %d", count)
	}

	availableMoves := len(g.snapshots) - 1
	if availableMoves < count {
		return fmt.Errorf("cannot undo %d moves: only %d moves available", count, availableMoves)
	}

	g.snapshots = g.snapshots[:len(g.snapshots)-count]
	g.state = core.StateOngoing
	g.lastResult = nil
	g.epoch++
	return nil
}

// FENHistory lists every board state since the initial position, oldest
// first, current position last.
func (g *Game) FENHistory() []string {
	out := make([]string, len(g.snapshots))
	for i, s := range g.snapshots {
		out[i] = s.FEN
	}
	return out
}

func (g *Game) Moves() []string {
	moves := []string{}
	for i := 1; i < len(g.snapshots); i++ {
		if g.snapshots[i].PreviousMove != "" {
			moves = append(moves, g.snapshots[i].PreviousMove)
		}
	}
	return moves
}

func (g *Game) State() core.State {
	return g.state
}

func (g *Game) SetState(s core.State) {
	g.state = s
}

func (g *Game) SetLastResult(result *MoveResult) {
	g.lastResult = result
}

func (g *Game) LastResult() *MoveResult {
	return g.lastResult
}

func (g *Game) AppendChat(msg core.ChatMessage) {
	g.transcript = append(g.transcript, msg)
}

func (g *Game) Transcript() []core.ChatMessage {
	out := make([]core.ChatMessage, len(g.transcript))
	copy(out, g.transcript)
	return out
}
