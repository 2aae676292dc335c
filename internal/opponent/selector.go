// Package opponent picks the engine's move for a position, either from the
// remote decision source or from local alpha-beta search, with silent
// fallback from remote to local.
package opponent

import (
	"context"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"chessmind/internal/board"
	"chessmind/internal/core"
	"chessmind/internal/policy"
	"chessmind/internal/remote"
	"chessmind/internal/search"
)

// Decision is a selected move plus provenance for observability.
type Decision struct {
	Move     board.Move
	Source   core.Source
	Score    int // root search score in centipawns, local decisions only
	Depth    int
	Attempts int // remote attempts used, 0 for local
}

type Selector struct {
	adapter *remote.Adapter // nil disables the remote path entirely

	mu  sync.Mutex // rand.Rand is not safe for concurrent use
	rng *rand.Rand
}

func NewSelector(adapter *remote.Adapter) *Selector {
	return &Selector{
		adapter: adapter,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSeededSelector fixes the randomization source for deterministic play.
func NewSeededSelector(adapter *remote.Adapter, seed int64) *Selector {
	return &Selector{
		adapter: adapter,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// SelectMove returns a move for the side to move in pos, or
// core.ErrNoLegalMoves when the position is terminal. remoteEnabled is read
// once here; remote failures are never surfaced, only logged before falling
// back to local search.
func (s *Selector) SelectMove(ctx context.Context, pos *board.Position, difficulty core.Difficulty, remoteEnabled bool) (*Decision, error) {
	legal := pos.LegalMoves()
	if len(legal) == 0 {
		return nil, core.ErrNoLegalMoves
	}

	// A forced move leaves nothing to decide; neither randomness nor the
	// remote source may override it.
	if len(legal) == 1 {
		return &Decision{Move: legal[0], Source: core.SourceLocal}, nil
	}

	if remoteEnabled && s.adapter != nil {
		res, err := s.adapter.Decide(ctx, remote.Request{
			Position:   pos,
			Difficulty: difficulty,
			Task:       core.TaskMove,
		})
		if err == nil {
			return &Decision{Move: res.Move, Source: core.SourceRemote, Attempts: res.Attempts}, nil
		}
		log.Printf("Remote decision failed, falling back to local search: %v", err)
	}

	return s.selectLocal(pos, difficulty, legal), nil
}

// selectLocal scores every root move with alpha-beta at depth-1 and picks the
// argmax for white / argmin for black. Evaluation noise is injected once per
// root move, never inside the recursive search, so pruning stays sound.
func (s *Selector) selectLocal(pos *board.Position, difficulty core.Difficulty, legal []board.Move) *Decision {
	settings := policy.For(difficulty)

	if settings.RandomMoveChance > 0 && s.randFloat() < settings.RandomMoveChance {
		pick := legal[s.randIntn(len(legal))]
		return &Decision{Move: pick, Source: core.SourceLocal}
	}

	maximizing := pos.Turn() == core.ColorWhite

	var best board.Move
	var bestRaw int
	bestScore := math.Inf(1)
	if maximizing {
		bestScore = math.Inf(-1)
	}

	for i, m := range legal {
		next, _ := pos.Apply(m)
		raw := search.Search(next, settings.Depth-1, -search.Infinity, search.Infinity,
			next.Turn() == core.ColorWhite)

		score := float64(raw)
		if settings.NoiseScale > 0 {
			score += (s.randFloat()*2 - 1) * settings.NoiseScale * 10
		}

		// Strict comparisons keep ties on the first move in the oracle's
		// enumeration order.
		if i == 0 || (maximizing && score > bestScore) || (!maximizing && score < bestScore) {
			best, bestScore, bestRaw = m, score, raw
		}
	}

	return &Decision{Move: best, Source: core.SourceLocal, Score: bestRaw, Depth: settings.Depth}
}

func (s *Selector) randFloat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Selector) randIntn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
