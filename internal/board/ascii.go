package board

import (
	"fmt"
	"strings"

	"chessmind/internal/core"
)

var fenLetters = map[PieceKind]byte{
	Pawn:   'p',
	Knight: 'n',
	Bishop: 'b',
	Rook:   'r',
	Queen:  'q',
	King:   'k',
}

// ToASCII creates an ASCII representation of the board, rank 8 first.
func (p *Position) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for rank := 7; rank >= 0; rank-- {
		sb.WriteString(fmt.Sprintf("%d ", rank+1))
		for file := 0; file < 8; file++ {
			kind, color, ok := p.PieceAt(SquareAt(file, rank))
			if !ok {
				sb.WriteString(". ")
				continue
			}
			letter := fenLetters[kind]
			if color == core.ColorWhite {
				letter -= 'a' - 'A'
			}
			sb.WriteString(fmt.Sprintf("%c ", letter))
		}
		sb.WriteString(fmt.Sprintf(" %d\n", rank+1))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
