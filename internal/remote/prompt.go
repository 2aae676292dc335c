package remote

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"chessmind/internal/core"
)

// Move token grammar for the generated text. The labeled form wins when
// present; otherwise the first bare token anywhere in the text is taken.
var (
	labeledMovePattern = regexp.MustCompile(`(?i)move:\s*([a-h][1-8][a-h][1-8][qrbn]?)`)
	bareMovePattern    = regexp.MustCompile(`(?i)\b([a-h][1-8][a-h][1-8][qrbn]?)\b`)
)

// extractMoveToken pulls a move-shaped token out of free text, lowercased.
// Anything that does not match the grammar is rejected, never guessed at.
func extractMoveToken(text string) (string, error) {
	if m := labeledMovePattern.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1]), nil
	}
	if m := bareMovePattern.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1]), nil
	}
	return "", core.ErrMalformedResponse
}

// sanitize makes untrusted text safe to embed in an outbound instruction:
// control characters stripped, newlines collapsed to spaces, backslashes and
// quotes escaped.
func sanitize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			sb.WriteByte(' ')
		case unicode.IsControl(r):
			// dropped
		case r == '\\':
			sb.WriteString(`\\`)
		case r == '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

const moveFormatRule = `Reply with exactly one line of the form "Move: e2e4" ` +
	`using long algebraic notation (from-square, to-square, optional promotion piece q, r, b or n).`

func buildInstruction(req Request) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are a chess opponent playing at %s strength. ", req.Difficulty)
	fmt.Fprintf(&sb, "The current position in FEN is %q. ", req.Position.FEN())
	if req.Position.IsCheck() {
		sb.WriteString("The side to move is in check. ")
	}

	switch req.Task {
	case core.TaskMove:
		fmt.Fprintf(&sb, "It is your turn as %s. Choose a legal move. %s",
			colorName(req.Position.Turn()), moveFormatRule)
	case core.TaskAnalysis:
		sb.WriteString("Give a short assessment of the position: material balance, " +
			"threats, and a plan for the side to move. Plain text, a few sentences.")
	case core.TaskChat:
		sb.WriteString("You are chatting with your human opponent during the game. ")
		for _, msg := range req.History {
			fmt.Fprintf(&sb, "%s: \"%s\" ", roleLabel(msg.Role), sanitize(msg.Content))
		}
		fmt.Fprintf(&sb, "Player: \"%s\" Respond in character, briefly.", sanitize(req.UserMessage))
	}

	return sb.String()
}

// correctiveInstruction augments the base instruction after a failed attempt,
// naming the previous invalid token and restating the required format.
func correctiveInstruction(base, lastToken string, lastErr error) string {
	var reason string
	switch {
	case errors.Is(lastErr, core.ErrIllegalMove):
		reason = fmt.Sprintf("Your previous answer %q is not a legal move in this position.", lastToken)
	case errors.Is(lastErr, core.ErrMalformedResponse):
		reason = "Your previous answer contained no move in the required format."
	default:
		reason = "Your previous answer could not be used."
	}
	return base + " " + reason + " " + moveFormatRule
}

func roleLabel(role string) string {
	if role == "opponent" {
		return "Opponent"
	}
	return "Player"
}

func colorName(c core.Color) string {
	if c == core.ColorWhite {
		return "white"
	}
	return "black"
}

// temperatureFor loosens generation for weaker difficulty levels.
func temperatureFor(req Request) float64 {
	if req.Task != core.TaskMove {
		return 0.7
	}
	switch req.Difficulty {
	case core.DifficultyBeginner:
		return 0.9
	case core.DifficultyIntermediate:
		return 0.7
	case core.DifficultyAdvanced:
		return 0.5
	default:
		return 0.3
	}
}
