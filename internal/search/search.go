// Package search implements depth-limited minimax with alpha-beta pruning
// over the rules oracle, bottomed out by the static evaluator.
package search

import (
	"chessmind/internal/board"
	"chessmind/internal/eval"
)

// Infinity bounds the alpha-beta window. Strictly larger than any score the
// evaluator can produce, including the mate sentinel.
const Infinity = 1 << 30

// Search returns the minimax value of p searched to the given depth.
// maximizing must be true when the side to move in p is white, matching the
// evaluator's sign convention. No move ordering and no transposition caching;
// positions are immutable so sibling branches never observe each other.
func Search(p *board.Position, depth, alpha, beta int, maximizing bool) int {
	if depth <= 0 || p.IsTerminal() {
		return eval.Evaluate(p)
	}

	moves := p.LegalMoves()
	if len(moves) == 0 {
		return eval.Evaluate(p)
	}

	if maximizing {
		best := -Infinity
		for _, m := range moves {
			next, _ := p.Apply(m)
			score := Search(next, depth-1, alpha, beta, false)
			if score > best {
				best = score
			}
			if best > alpha {
				alpha = best
			}
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := Infinity
	for _, m := range moves {
		next, _ := p.Apply(m)
		score := Search(next, depth-1, alpha, beta, true)
		if score < best {
			best = score
		}
		if best < beta {
			beta = best
		}
		if beta <= alpha {
			break
		}
	}
	return best
}
