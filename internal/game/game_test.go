package game

import (
	"testing"

	"chessmind/internal/core"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func newTestGame() *Game {
	return New(startFEN, core.ColorWhite, core.DifficultyIntermediate, false, core.ColorWhite)
}

func TestNewGameDefaults(t *testing.T) {
	g := newTestGame()

	if g.CurrentFEN() != startFEN {
		t.Fatalf("current FEN = %q", g.CurrentFEN())
	}
	if g.State() != core.StateOngoing {
		t.Fatalf("state = %v, want ongoing", g.State())
	}
	if !g.IsPlayerTurn() {
		t.Fatal("white player should move first")
	}
	if g.Epoch() != 0 {
		t.Fatalf("fresh game epoch = %d, want 0", g.Epoch())
	}
	if len(g.Moves()) != 0 {
		t.Fatalf("fresh game has %d moves", len(g.Moves()))
	}
}

func TestAddSnapshotBumpsEpoch(t *testing.T) {
	g := newTestGame()

	g.AddSnapshot("fen-after-e2e4", "e2e4", core.ColorBlack)
	if g.Epoch() != 1 {
		t.Fatalf("epoch after one move = %d, want 1", g.Epoch())
	}
	if g.IsPlayerTurn() {
		t.Fatal("black to move, not the player")
	}

	g.AddSnapshot("fen-after-e7e5", "e7e5", core.ColorWhite)
	if g.Epoch() != 2 {
		t.Fatalf("epoch after two moves = %d, want 2", g.Epoch())
	}

	moves := g.Moves()
	if len(moves) != 2 || moves[0] != "e2e4" || moves[1] != "e7e5" {
		t.Fatalf("moves = %v", moves)
	}
}

func TestUndoMoves(t *testing.T) {
	g := newTestGame()
	g.AddSnapshot("fen1", "e2e4", core.ColorBlack)
	g.AddSnapshot("fen2", "e7e5", core.ColorWhite)
	g.SetState(core.StateStalemate)
	g.SetLastResult(&MoveResult{Move: "e7e5", PlayerColor: core.ColorBlack})

	epochBefore := g.Epoch()
	if err := g.UndoMoves(1); err != nil {
		t.Fatalf("UndoMoves(1) failed: %v", err)
	}

	if g.CurrentFEN() != "fen1" {
		t.Fatalf("FEN after undo = %q, want fen1", g.CurrentFEN())
	}
	if g.Epoch() != epochBefore+1 {
		t.Fatalf("undo must bump the epoch: %d -> %d", epochBefore, g.Epoch())
	}
	if g.State() != core.StateOngoing {
		t.Fatalf("state after undo = %v, want ongoing", g.State())
	}
	if g.LastResult() != nil {
		t.Fatal("last result must be cleared by undo")
	}
}

func TestUndoMovesBounds(t *testing.T) {
	g := newTestGame()
	g.AddSnapshot("fen1", "e2e4", core.ColorBlack)

	if err := g.UndoMoves(0); err == nil {
		t.Fatal("UndoMoves(0) should fail")
	}
	if err := g.UndoMoves(2); err == nil {
		t.Fatal("undoing more moves than played should fail")
	}
	if err := g.UndoMoves(1); err != nil {
		t.Fatalf("UndoMoves(1) failed: %v", err)
	}
	if g.CurrentFEN() != startFEN {
		t.Fatalf("FEN after full undo = %q", g.CurrentFEN())
	}
}

func TestTranscriptIsCopied(t *testing.T) {
	g := newTestGame()
	g.AppendChat(core.ChatMessage{Role: "player", Content: "good luck"})
	g.AppendChat(core.ChatMessage{Role: "opponent", Content: "you too"})

	transcript := g.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(transcript))
	}

	transcript[0].Content = "mutated"
	if g.Transcript()[0].Content != "good luck" {
		t.Fatal("transcript must be insulated from caller mutation")
	}
}
