package board

import (
	"fmt"
	"strings"
)

// Square indexes the board a1=0 .. h8=63, rank-major.
type Square int8

func SquareAt(file, rank int) Square {
	return Square(rank*8 + file)
}

func (s Square) File() int { return int(s) % 8 }
func (s Square) Rank() int { return int(s) / 8 }

func (s Square) Valid() bool { return s >= 0 && s < 64 }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+s.File(), '1'+s.Rank())
}

func parseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, fmt.Errorf("invalid square: %q", s)
	}
	return SquareAt(int(s[0]-'a'), int(s[1]-'1')), nil
}

type PieceKind int

const (
	NoPiece PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

// promotion letters per UCI: q, r, b, n
func (k PieceKind) promoLetter() byte {
	switch k {
	case Queen:
		return 'q'
	case Rook:
		return 'r'
	case Bishop:
		return 'b'
	case Knight:
		return 'n'
	default:
		return 0
	}
}

func promoKind(c byte) (PieceKind, bool) {
	switch c {
	case 'q':
		return Queen, true
	case 'r':
		return Rook, true
	case 'b':
		return Bishop, true
	case 'n':
		return Knight, true
	default:
		return NoPiece, false
	}
}

// Move is an immutable from/to pair with an optional promotion piece.
type Move struct {
	From      Square
	To        Square
	Promotion PieceKind // NoPiece when absent
}

// ParseUCI parses strict long algebraic notation: [a-h][1-8][a-h][1-8][qrbn]?
func ParseUCI(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 4 || len(s) > 5 {
		return Move{}, fmt.Errorf("invalid move format: %q", s)
	}

	from, err := parseSquare(s[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %w", s, err)
	}
	to, err := parseSquare(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %w", s, err)
	}

	m := Move{From: from, To: to}
	if len(s) == 5 {
		kind, ok := promoKind(s[4])
		if !ok {
			return Move{}, fmt.Errorf("invalid promotion piece: %q", s[4])
		}
		m.Promotion = kind
	}
	return m, nil
}

// UCI renders the move in long algebraic notation, e.g. "e2e4" or "a7a8q".
func (m Move) UCI() string {
	if b := m.Promotion.promoLetter(); b != 0 {
		return m.From.String() + m.To.String() + string(b)
	}
	return m.From.String() + m.To.String()
}

func (m Move) String() string {
	return m.UCI()
}
