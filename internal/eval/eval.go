// Package eval scores positions in centipawns, positive favoring white.
package eval

import (
	"chessmind/internal/board"
	"chessmind/internal/core"
)

// MateScore is the sentinel magnitude for checkmate. It dominates any sum of
// material and positional terms.
const MateScore = 100000

// Evaluate maps a position to a signed centipawn score. Pure and
// deterministic: repeated calls on the same position return the same score.
func Evaluate(p *board.Position) int {
	if p.IsCheckmate() {
		// The side to move is mated; the sentinel favors the other side.
		if p.Turn() == core.ColorWhite {
			return -MateScore
		}
		return MateScore
	}
	if p.IsDraw() {
		return 0
	}

	score := 0
	for sq := board.Square(0); sq < 64; sq++ {
		kind, color, ok := p.PieceAt(sq)
		if !ok {
			continue
		}
		white := color == core.ColorWhite
		value := pieceValues[kind] + squareBonus(kind, sq, white)
		if white {
			score += value
		} else {
			score -= value
		}
	}
	return score
}
