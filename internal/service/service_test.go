package service

import (
	"testing"

	"chessmind/internal/core"
	"chessmind/internal/game"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func newTestService() *Service {
	return New(nil)
}

func createGame(t *testing.T, s *Service) string {
	t.Helper()
	id := s.GenerateGameID()
	if err := s.CreateGame(id, core.ColorWhite, core.DifficultyIntermediate, false, startFEN, core.ColorWhite); err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	return id
}

func TestCreateAndGetGame(t *testing.T) {
	s := newTestService()
	id := createGame(t, s)

	g, err := s.GetGame(id)
	if err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}
	if g.CurrentFEN() != startFEN {
		t.Fatalf("FEN = %q", g.CurrentFEN())
	}

	if err := s.CreateGame(id, core.ColorWhite, core.DifficultyMaster, false, startFEN, core.ColorWhite); err == nil {
		t.Fatal("duplicate game ID accepted")
	}

	if _, err := s.GetGame("missing"); err == nil {
		t.Fatal("missing game returned without error")
	}
}

func TestGenerateGameIDIsUnique(t *testing.T) {
	s := newTestService()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := s.GenerateGameID()
		if seen[id] {
			t.Fatalf("duplicate game ID: %s", id)
		}
		seen[id] = true
	}
}

func TestApplyMoveAdvancesTurn(t *testing.T) {
	s := newTestService()
	id := createGame(t, s)

	if err := s.ApplyMove(id, "e2e4", "fen-after-e2e4"); err != nil {
		t.Fatalf("ApplyMove failed: %v", err)
	}

	g, _ := s.GetGame(id)
	if g.NextTurn() != core.ColorBlack {
		t.Fatalf("turn = %v, want black", g.NextTurn())
	}
	if g.Epoch() != 1 {
		t.Fatalf("epoch = %d, want 1", g.Epoch())
	}
	if moves := g.Moves(); len(moves) != 1 || moves[0] != "e2e4" {
		t.Fatalf("moves = %v", moves)
	}
}

func TestUndoMoves(t *testing.T) {
	s := newTestService()
	id := createGame(t, s)
	s.ApplyMove(id, "e2e4", "fen1")
	s.ApplyMove(id, "e7e5", "fen2")

	if err := s.UndoMoves(id, 2); err != nil {
		t.Fatalf("UndoMoves failed: %v", err)
	}

	g, _ := s.GetGame(id)
	if g.CurrentFEN() != startFEN {
		t.Fatalf("FEN after undo = %q", g.CurrentFEN())
	}

	if err := s.UndoMoves(id, 1); err == nil {
		t.Fatal("undo past the initial position accepted")
	}
}

func TestConfigure(t *testing.T) {
	s := newTestService()
	id := createGame(t, s)

	d := core.DifficultyMaster
	remote := true
	if err := s.Configure(id, &d, &remote); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	g, _ := s.GetGame(id)
	if g.Difficulty() != core.DifficultyMaster || !g.Remote() {
		t.Fatalf("settings = (%v, %v)", g.Difficulty(), g.Remote())
	}

	// Partial update leaves the other setting untouched
	d2 := core.DifficultyBeginner
	if err := s.Configure(id, &d2, nil); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	g, _ = s.GetGame(id)
	if !g.Remote() {
		t.Fatal("remote flag lost on partial update")
	}
}

func TestSetLastMoveResult(t *testing.T) {
	s := newTestService()
	id := createGame(t, s)

	result := &game.MoveResult{
		Move:        "g8f6",
		PlayerColor: core.ColorBlack,
		Source:      core.SourceRemote,
		Attempts:    2,
	}
	if err := s.SetLastMoveResult(id, result); err != nil {
		t.Fatalf("SetLastMoveResult failed: %v", err)
	}

	g, _ := s.GetGame(id)
	if got := g.LastResult(); got == nil || got.Move != "g8f6" || got.Attempts != 2 {
		t.Fatalf("last result = %+v", got)
	}
}

func TestDeleteGame(t *testing.T) {
	s := newTestService()
	id := createGame(t, s)

	if err := s.DeleteGame(id); err != nil {
		t.Fatalf("DeleteGame failed: %v", err)
	}
	if _, err := s.GetGame(id); err == nil {
		t.Fatal("deleted game still retrievable")
	}
	if err := s.DeleteGame(id); err == nil {
		t.Fatal("double delete accepted")
	}
}

func TestStorageHealthWithoutStore(t *testing.T) {
	s := newTestService()
	if got := s.GetStorageHealth(); got != "disabled" {
		t.Fatalf("health = %q, want disabled", got)
	}
}
