package core

type State int

const (
	StateOngoing State = iota
	StatePending // Opponent is deciding a move
	StateStuck   // Decision path failed and could not recover
	StateWhiteWins
	StateBlackWins
	StateDraw
	StateStalemate
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateStuck:
		return "stuck"
	case StateWhiteWins:
		return "white wins"
	case StateBlackWins:
		return "black wins"
	case StateDraw:
		return "draw"
	case StateStalemate:
		return "stalemate"
	case StateOngoing:
		return "ongoing"
	default:
		return "unknown"
	}
}

type Color byte

const (
	ColorWhite Color = 'w'
	ColorBlack Color = 'b'
)

func (c Color) String() string {
	return string(c)
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// Difficulty selects a row of the opponent's fixed strength table.
type Difficulty int

const (
	DifficultyBeginner Difficulty = iota + 1
	DifficultyIntermediate
	DifficultyAdvanced
	DifficultyMaster
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyBeginner:
		return "beginner"
	case DifficultyIntermediate:
		return "intermediate"
	case DifficultyAdvanced:
		return "advanced"
	case DifficultyMaster:
		return "master"
	default:
		return "unknown"
	}
}

func ParseDifficulty(s string) (Difficulty, bool) {
	switch s {
	case "beginner":
		return DifficultyBeginner, true
	case "intermediate":
		return DifficultyIntermediate, true
	case "advanced":
		return DifficultyAdvanced, true
	case "master":
		return DifficultyMaster, true
	default:
		return 0, false
	}
}

// TaskKind distinguishes what the remote decision source is asked to produce.
type TaskKind int

const (
	TaskMove TaskKind = iota + 1
	TaskAnalysis
	TaskChat
)

func (t TaskKind) String() string {
	switch t {
	case TaskMove:
		return "move"
	case TaskAnalysis:
		return "analysis"
	case TaskChat:
		return "chat"
	default:
		return "unknown"
	}
}

// Source records which decision path produced a move.
type Source int

const (
	SourceLocal Source = iota + 1
	SourceRemote
)

func (s Source) String() string {
	if s == SourceRemote {
		return "remote"
	}
	return "local"
}

// ChatMessage is one entry of a game's conversation transcript.
type ChatMessage struct {
	Role    string `json:"role"` // "player" or "opponent"
	Content string `json:"content"`
}
