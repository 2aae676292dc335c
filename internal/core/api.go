package core

// Request types

type CreateGameRequest struct {
	Difficulty  string `json:"difficulty" validate:"required,oneof=beginner intermediate advanced master"`
	PlayerColor string `json:"playerColor,omitempty" validate:"omitempty,oneof=w b"`
	FEN         string `json:"fen,omitempty" validate:"omitempty,max=100"`
	Remote      bool   `json:"remote,omitempty"`
}

type MoveRequest struct {
	Move string `json:"move" validate:"required,min=4,max=5"` // UCI: e2e4, a7a8q
}

type UndoRequest struct {
	Count int `json:"count" validate:"required,min=1,max=300"`
}

type ChatRequest struct {
	Message string `json:"message" validate:"required,min=1,max=2000"`
}

type ConfigureRequest struct {
	Difficulty string `json:"difficulty,omitempty" validate:"omitempty,oneof=beginner intermediate advanced master"`
	Remote     *bool  `json:"remote,omitempty"`
}

// Response types

type GameResponse struct {
	GameID      string    `json:"gameId"`
	FEN         string    `json:"fen"`
	Turn        string    `json:"turn"`
	State       string    `json:"state"`
	Difficulty  string    `json:"difficulty"`
	PlayerColor string    `json:"playerColor"`
	Remote      bool      `json:"remote"`
	Moves       []string  `json:"moves"`
	LastMove    *MoveInfo `json:"lastMove,omitempty"`
}

type MoveInfo struct {
	Move        string `json:"move"`
	PlayerColor string `json:"playerColor"`
	Source      string `json:"source,omitempty"` // "local" or "remote"
	Score       int    `json:"score,omitempty"`
	Depth       int    `json:"depth,omitempty"`
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type ChatResponse struct {
	Reply      string        `json:"reply"`
	Transcript []ChatMessage `json:"transcript"`
}

type AnalysisResponse struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
