package opponent

import (
	"context"
	"errors"
	"testing"

	"chessmind/internal/board"
	"chessmind/internal/core"
	"chessmind/internal/relay"
	"chessmind/internal/remote"
)

func mustParse(t *testing.T, fen string) *board.Position {
	t.Helper()
	p, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q) failed: %v", fen, err)
	}
	return p
}

type stubRelay struct {
	result string
	err    error
	calls  int
}

func (s *stubRelay) Generate(_ context.Context, _ relay.Request) (relay.Response, error) {
	s.calls++
	if s.err != nil {
		return relay.Response{}, s.err
	}
	return relay.Response{Result: s.result, Success: true}, nil
}

func TestTerminalPositionReturnsNoLegalMoves(t *testing.T) {
	s := NewSeededSelector(nil, 1)
	mated := mustParse(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")

	_, err := s.SelectMove(context.Background(), mated, core.DifficultyMaster, false)
	if !errors.Is(err, core.ErrNoLegalMoves) {
		t.Fatalf("error = %v, want ErrNoLegalMoves", err)
	}
}

func TestForcedMoveBypassesEverything(t *testing.T) {
	// White king h1 in check from the unprotected queen on g2; Kxg2 is the
	// only legal move.
	forced := mustParse(t, "7k/8/8/8/8/8/6q1/7K w - - 0 1")
	if n := len(forced.LegalMoves()); n != 1 {
		t.Fatalf("fixture has %d legal moves, want 1", n)
	}

	// A remote source that would crash the test if consulted
	failing := remote.New(&stubRelay{err: errors.New("must not be called")})

	for _, d := range []core.Difficulty{
		core.DifficultyBeginner,
		core.DifficultyIntermediate,
		core.DifficultyAdvanced,
		core.DifficultyMaster,
	} {
		for seed := int64(0); seed < 5; seed++ {
			s := NewSeededSelector(failing, seed)
			dec, err := s.SelectMove(context.Background(), forced, d, true)
			if err != nil {
				t.Fatalf("%s seed %d: SelectMove failed: %v", d, seed, err)
			}
			if dec.Move.UCI() != "h1g2" {
				t.Fatalf("%s seed %d: move = %s, want h1g2", d, seed, dec.Move.UCI())
			}
			if dec.Source != core.SourceLocal {
				t.Fatalf("%s seed %d: source = %v, want local", d, seed, dec.Source)
			}
		}
	}
}

func TestMasterFindsMateInOne(t *testing.T) {
	p := mustParse(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")

	for seed := int64(0); seed < 3; seed++ {
		s := NewSeededSelector(nil, seed)
		dec, err := s.SelectMove(context.Background(), p, core.DifficultyMaster, false)
		if err != nil {
			t.Fatalf("seed %d: SelectMove failed: %v", seed, err)
		}
		if dec.Move.UCI() != "a1a8" {
			t.Fatalf("seed %d: move = %s, want mating move a1a8", seed, dec.Move.UCI())
		}
		if dec.Depth != 4 {
			t.Fatalf("seed %d: depth = %d, want 4", seed, dec.Depth)
		}
	}
}

func TestMasterIsDeterministic(t *testing.T) {
	p := mustParse(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")

	s1 := NewSeededSelector(nil, 1)
	s2 := NewSeededSelector(nil, 999)

	d1, err := s1.SelectMove(context.Background(), p, core.DifficultyMaster, false)
	if err != nil {
		t.Fatalf("SelectMove failed: %v", err)
	}
	d2, err := s2.SelectMove(context.Background(), p, core.DifficultyMaster, false)
	if err != nil {
		t.Fatalf("SelectMove failed: %v", err)
	}

	if d1.Move != d2.Move {
		t.Fatalf("master chose %s and %s under different seeds, want identical", d1.Move, d2.Move)
	}
}

func TestSelectedMoveIsAlwaysLegal(t *testing.T) {
	p := mustParse(t, board.StartingFEN)

	for _, d := range []core.Difficulty{core.DifficultyBeginner, core.DifficultyIntermediate} {
		for seed := int64(0); seed < 10; seed++ {
			s := NewSeededSelector(nil, seed)
			dec, err := s.SelectMove(context.Background(), p, d, false)
			if err != nil {
				t.Fatalf("%s seed %d: SelectMove failed: %v", d, seed, err)
			}
			if !p.IsLegal(dec.Move) {
				t.Fatalf("%s seed %d: selected illegal move %s", d, seed, dec.Move.UCI())
			}
		}
	}
}

func TestRemoteDecisionUsed(t *testing.T) {
	adapter := remote.New(&stubRelay{result: "Move: e2e4"})
	s := NewSeededSelector(adapter, 1)

	dec, err := s.SelectMove(context.Background(), mustParse(t, board.StartingFEN), core.DifficultyMaster, true)
	if err != nil {
		t.Fatalf("SelectMove failed: %v", err)
	}
	if dec.Source != core.SourceRemote {
		t.Fatalf("source = %v, want remote", dec.Source)
	}
	if dec.Move.UCI() != "e2e4" {
		t.Fatalf("move = %s, want e2e4", dec.Move.UCI())
	}
	if dec.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", dec.Attempts)
	}
}

func TestRemoteFailureFallsBackToLocal(t *testing.T) {
	stub := &stubRelay{err: core.ErrTransport}
	s := NewSeededSelector(remote.New(stub), 1)

	dec, err := s.SelectMove(context.Background(), mustParse(t, board.StartingFEN), core.DifficultyMaster, true)
	if err != nil {
		t.Fatalf("fallback must not surface the remote error, got %v", err)
	}
	if dec.Source != core.SourceLocal {
		t.Fatalf("source = %v, want local after fallback", dec.Source)
	}
	if stub.calls == 0 {
		t.Fatal("remote source was never consulted")
	}
}

func TestRemoteDisabledSkipsAdapter(t *testing.T) {
	stub := &stubRelay{result: "Move: e2e4"}
	s := NewSeededSelector(remote.New(stub), 1)

	dec, err := s.SelectMove(context.Background(), mustParse(t, board.StartingFEN), core.DifficultyMaster, false)
	if err != nil {
		t.Fatalf("SelectMove failed: %v", err)
	}
	if dec.Source != core.SourceLocal {
		t.Fatalf("source = %v, want local", dec.Source)
	}
	if stub.calls != 0 {
		t.Fatalf("remote consulted %d times with remote disabled", stub.calls)
	}
}
