package board

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"chessmind/internal/core"
)

const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position wraps the rules library state. Values are immutable: Apply returns
// a new Position and never mutates the receiver, so recursive search branches
// cannot leak state into siblings.
type Position struct {
	pos   *chess.Position
	check bool // side to move is in check
}

func ParseFEN(fen string) (*Position, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return nil, fmt.Errorf("empty FEN")
	}
	pos := &chess.Position{}
	if err := pos.UnmarshalText([]byte(fen)); err != nil {
		return nil, fmt.Errorf("invalid FEN %q: %w", fen, err)
	}
	return &Position{pos: pos, check: sideToMoveInCheck(pos)}, nil
}

// FEN serializes the position back to its exchange format.
func (p *Position) FEN() string {
	return p.pos.String()
}

func (p *Position) Turn() core.Color {
	if p.pos.Turn() == chess.White {
		return core.ColorWhite
	}
	return core.ColorBlack
}

// LegalMoves enumerates legal moves in the rules library's stable order.
func (p *Position) LegalMoves() []Move {
	valid := p.pos.ValidMoves()
	moves := make([]Move, 0, len(valid))
	for _, m := range valid {
		moves = append(moves, fromLibMove(m))
	}
	return moves
}

func (p *Position) IsLegal(m Move) bool {
	for _, vm := range p.pos.ValidMoves() {
		if fromLibMove(vm) == m {
			return true
		}
	}
	return false
}

// Apply returns the position after m, or ErrIllegalMove if the rules
// library does not list m among the legal moves. The check state of the
// resulting position comes from the library's move tag.
func (p *Position) Apply(m Move) (*Position, error) {
	for _, vm := range p.pos.ValidMoves() {
		if fromLibMove(vm) == m {
			return &Position{pos: p.pos.Update(vm), check: vm.HasTag(chess.Check)}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", core.ErrIllegalMove, m.UCI(), p.FEN())
}

func (p *Position) IsCheck() bool {
	return p.check
}

// sideToMoveInCheck derives the check state through the rules library.
// Checkmate answers it directly; otherwise the side to move is in check
// exactly when, with the turn handed to the opponent, some reply lands on
// the king's square.
func sideToMoveInCheck(pos *chess.Position) bool {
	if pos.Status() == chess.Checkmate {
		return true
	}

	kingSq := chess.Square(0)
	found := false
	for sq := 0; sq < 64; sq++ {
		piece := pos.Board().Piece(chess.Square(sq))
		if piece != chess.NoPiece && piece.Type() == chess.King && piece.Color() == pos.Turn() {
			kingSq = chess.Square(sq)
			found = true
			break
		}
	}
	if !found {
		return false
	}

	parts := strings.Fields(pos.String())
	if len(parts) != 6 {
		return false
	}
	if parts[1] == "w" {
		parts[1] = "b"
	} else {
		parts[1] = "w"
	}
	parts[3] = "-" // the en passant square belongs to the original mover

	flipped := &chess.Position{}
	if err := flipped.UnmarshalText([]byte(strings.Join(parts, " "))); err != nil {
		return false
	}
	for _, m := range flipped.ValidMoves() {
		if m.S2() == kingSq {
			return true
		}
	}
	return false
}

func (p *Position) IsCheckmate() bool {
	return p.pos.Status() == chess.Checkmate
}

func (p *Position) IsStalemate() bool {
	return p.pos.Status() == chess.Stalemate
}

// IsDraw covers stalemate, dead material and the fifty-move rule.
// Repetition draws need game history and are decided above the position level.
func (p *Position) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.insufficientMaterial() {
		return true
	}
	return p.pos.HalfMoveClock() >= 100
}

// IsTerminal reports whether the position has no continuation to search.
func (p *Position) IsTerminal() bool {
	return p.pos.Status() != chess.NoMethod ||
		p.insufficientMaterial() ||
		p.pos.HalfMoveClock() >= 100
}

// insufficientMaterial reports the dead positions no sequence of legal moves
// can win: bare kings, a lone minor piece, or bishops all on one square color.
func (p *Position) insufficientMaterial() bool {
	knights := 0
	bishops := 0
	bishopShade := -1
	sameShade := true
	for sq := 0; sq < 64; sq++ {
		piece := p.pos.Board().Piece(chess.Square(sq))
		switch {
		case piece == chess.NoPiece || piece.Type() == chess.King:
		case piece.Type() == chess.Knight:
			knights++
		case piece.Type() == chess.Bishop:
			bishops++
			shade := (sq/8 + sq%8) % 2
			if bishopShade == -1 {
				bishopShade = shade
			} else if shade != bishopShade {
				sameShade = false
			}
		default:
			return false // a pawn, rook or queen can still mate
		}
	}

	switch {
	case knights == 0 && bishops == 0:
		return true
	case knights == 1 && bishops == 0:
		return true
	case knights == 0 && bishops > 0:
		return sameShade
	}
	return false
}

// PieceAt reports the piece on sq, if any.
func (p *Position) PieceAt(sq Square) (PieceKind, core.Color, bool) {
	piece := p.pos.Board().Piece(chess.Square(sq))
	if piece == chess.NoPiece {
		return NoPiece, 0, false
	}
	color := core.ColorWhite
	if piece.Color() == chess.Black {
		color = core.ColorBlack
	}
	return fromLibPieceType(piece.Type()), color, true
}

func fromLibMove(m *chess.Move) Move {
	return Move{
		From:      Square(m.S1()),
		To:        Square(m.S2()),
		Promotion: fromLibPieceType(m.Promo()),
	}
}

func fromLibPieceType(t chess.PieceType) PieceKind {
	switch t {
	case chess.Pawn:
		return Pawn
	case chess.Knight:
		return Knight
	case chess.Bishop:
		return Bishop
	case chess.Rook:
		return Rook
	case chess.Queen:
		return Queen
	case chess.King:
		return King
	default:
		return NoPiece
	}
}
