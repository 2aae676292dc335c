package core

import "errors"

// Decision error taxonomy. IllegalMove, MalformedResponse and Transport
// failures are recovered inside the remote adapter via retry, then escalated
// to RetryExhausted, which the orchestrator converts into silent local
// fallback. NoLegalMoves is a normal terminal signal, not a failure.
var (
	ErrIllegalMove       = errors.New("move is not legal for position")
	ErrNoLegalMoves      = errors.New("no legal moves available")
	ErrMalformedResponse = errors.New("no move token in response")
	ErrTransport         = errors.New("transport relay failure")
	ErrRetryExhausted    = errors.New("retry limit reached without a valid result")
)

// API error codes
const (
	CodeGameNotFound      = "GAME_NOT_FOUND"
	CodeInvalidMove       = "INVALID_MOVE"
	CodeNotPlayerTurn     = "NOT_PLAYER_TURN"
	CodeGameOver          = "GAME_OVER"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeInvalidContent    = "INVALID_CONTENT_TYPE"
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeInvalidFEN        = "INVALID_FEN"
	CodeRemoteDisabled    = "REMOTE_DISABLED"
	CodeInternalError     = "INTERNAL_ERROR"
)
