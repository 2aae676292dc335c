// Package processor coordinates game state, the decision queue and the
// remote adapter behind the transport layers.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode"

	"chessmind/internal/board"
	"chessmind/internal/core"
	"chessmind/internal/eval"
	"chessmind/internal/game"
	"chessmind/internal/opponent"
	"chessmind/internal/remote"
	"chessmind/internal/service"
)

// FEN validation regex
var fenPattern = regexp.MustCompile(`^[rnbqkpRNBQKP1-8/]+ [wb] [KQkq-]+ [a-h1-8-]+ \d+ \d+$`)

// Response wraps every processor result with metadata
type Response struct {
	Success bool                `json:"success"`
	Pending bool                `json:"pending,omitempty"` // An opponent decision is in flight
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

type Processor struct {
	svc     *service.Service
	queue   *opponent.Queue
	adapter *remote.Adapter // nil when no relay is configured
}

func New(svc *service.Service, selector *opponent.Selector, adapter *remote.Adapter, workers int) *Processor {
	return &Processor{
		svc:     svc,
		queue:   opponent.NewQueue(selector, workers),
		adapter: adapter,
	}
}

// isFENSafe checks for control characters and the FEN shape before the
// string reaches the rules library.
func isFENSafe(fen string) bool {
	for _, r := range fen {
		if unicode.IsControl(r) && r != ' ' {
			return false
		}
	}
	return fenPattern.MatchString(fen)
}

// CreateGame starts a session, triggering the first opponent decision when
// the human plays black.
func (p *Processor) CreateGame(req core.CreateGameRequest) Response {
	difficulty, ok := core.ParseDifficulty(req.Difficulty)
	if !ok {
		return p.errorResponse("unknown difficulty", core.CodeInvalidRequest)
	}

	playerColor := core.ColorWhite
	if req.PlayerColor == "b" {
		playerColor = core.ColorBlack
	}

	initialFEN := board.StartingFEN
	if req.FEN != "" {
		if !isFENSafe(req.FEN) {
			return p.errorResponse("invalid FEN format or characters", core.CodeInvalidFEN)
		}
		initialFEN = req.FEN
	}

	pos, err := board.ParseFEN(initialFEN)
	if err != nil {
		return p.errorResponse(fmt.Sprintf("invalid FEN: %v", err), core.CodeInvalidFEN)
	}
	initialFEN = pos.FEN() // canonical form

	gameID := p.svc.GenerateGameID()
	if err := p.svc.CreateGame(gameID, playerColor, difficulty, req.Remote, initialFEN, pos.Turn()); err != nil {
		return p.errorResponse(fmt.Sprintf("failed to create game: %v", err), core.CodeInternalError)
	}

	// The initial FEN may already be a finished game
	p.checkGameEnd(gameID, initialFEN, core.OppositeColor(pos.Turn()))

	g, err := p.svc.GetGame(gameID)
	if err != nil {
		return p.errorResponse("game creation failed", core.CodeInternalError)
	}

	pending := false
	if g.State() == core.StateOngoing && !g.IsPlayerTurn() {
		p.triggerOpponentMove(gameID, g)
		pending = true
	}

	g, _ = p.svc.GetGame(gameID)
	return Response{Success: true, Pending: pending, Data: p.buildGameResponse(gameID, g)}
}

// GetGame retrieves current game state
func (p *Processor) GetGame(gameID string) Response {
	g, err := p.svc.GetGame(gameID)
	if err != nil {
		return p.errorResponse("game not found", core.CodeGameNotFound)
	}
	return Response{
		Success: true,
		Pending: g.State() == core.StatePending,
		Data:    p.buildGameResponse(gameID, g),
	}
}

// MakeMove applies a human move and queues the opponent's reply.
func (p *Processor) MakeMove(gameID string, req core.MoveRequest) Response {
	g, err := p.svc.GetGame(gameID)
	if err != nil {
		return p.errorResponse("game not found", core.CodeGameNotFound)
	}

	switch g.State() {
	case core.StatePending:
		return p.errorResponse("opponent move in progress", core.CodeInvalidRequest)
	case core.StateStuck:
		return p.errorResponse("game is stuck due to a decision error", core.CodeGameOver)
	case core.StateWhiteWins, core.StateBlackWins, core.StateDraw, core.StateStalemate:
		return p.errorResponse(fmt.Sprintf("game is over: %s", g.State()), core.CodeGameOver)
	case core.StateOngoing:
		// fallthrough below
	default:
		return p.errorResponse("game is in invalid state", core.CodeInvalidRequest)
	}

	if !g.IsPlayerTurn() {
		return p.errorResponse("not your turn", core.CodeNotPlayerTurn)
	}

	moveStr := strings.ToLower(strings.TrimSpace(req.Move))
	move, err := board.ParseUCI(moveStr)
	if err != nil {
		return p.errorResponse("invalid move format", core.CodeInvalidMove)
	}

	pos, err := board.ParseFEN(g.CurrentFEN())
	if err != nil {
		return p.errorResponse("stored position is corrupt", core.CodeInternalError)
	}

	currentColor := g.NextTurn()
	next, err := pos.Apply(move)
	if err != nil {
		return p.errorResponse("illegal move", core.CodeInvalidMove)
	}
	newFEN := next.FEN()

	if err := p.svc.ApplyMove(gameID, move.UCI(), newFEN); err != nil {
		return p.errorResponse(fmt.Sprintf("failed to apply move: %v", err), core.CodeInternalError)
	}
	p.svc.SetLastMoveResult(gameID, &game.MoveResult{
		Move:        move.UCI(),
		PlayerColor: currentColor,
	})

	p.checkGameEnd(gameID, newFEN, currentColor)

	g, _ = p.svc.GetGame(gameID)
	pending := false
	if g.State() == core.StateOngoing {
		p.triggerOpponentMove(gameID, g)
		pending = true
	}

	g, _ = p.svc.GetGame(gameID)
	return Response{Success: true, Pending: pending, Data: p.buildGameResponse(gameID, g)}
}

// Undo reverts moves and invalidates any in-flight decision via the epoch bump.
func (p *Processor) Undo(gameID string, req core.UndoRequest) Response {
	g, err := p.svc.GetGame(gameID)
	if err != nil {
		return p.errorResponse("game not found", core.CodeGameNotFound)
	}

	if g.State() == core.StateStuck {
		return p.errorResponse("cannot undo in stuck game", core.CodeInvalidRequest)
	}

	count := req.Count
	if count < 1 {
		count = 1
	}

	if err := p.svc.UndoMoves(gameID, count); err != nil {
		return p.errorResponse(err.Error(), core.CodeInvalidRequest)
	}
	p.svc.UpdateGameState(gameID, core.StateOngoing)

	g, _ = p.svc.GetGame(gameID)
	return Response{Success: true, Data: p.buildGameResponse(gameID, g)}
}

// Configure changes difficulty or the remote flag mid-game.
func (p *Processor) Configure(gameID string, req core.ConfigureRequest) Response {
	g, err := p.svc.GetGame(gameID)
	if err != nil {
		return p.errorResponse("game not found", core.CodeGameNotFound)
	}
	if g.State() == core.StatePending {
		return p.errorResponse("cannot reconfigure while the opponent is deciding", core.CodeInvalidRequest)
	}

	var difficulty *core.Difficulty
	if req.Difficulty != "" {
		d, ok := core.ParseDifficulty(req.Difficulty)
		if !ok {
			return p.errorResponse("unknown difficulty", core.CodeInvalidRequest)
		}
		difficulty = &d
	}

	if err := p.svc.Configure(gameID, difficulty, req.Remote); err != nil {
		return p.errorResponse(err.Error(), core.CodeInternalError)
	}

	g, _ = p.svc.GetGame(gameID)
	return Response{Success: true, Data: p.buildGameResponse(gameID, g)}
}

// DeleteGame removes a game
func (p *Processor) DeleteGame(gameID string) Response {
	g, err := p.svc.GetGame(gameID)
	if err != nil {
		return p.errorResponse("game not found", core.CodeGameNotFound)
	}
	if g.State() == core.StatePending {
		return p.errorResponse("cannot delete game while the opponent is deciding", core.CodeInvalidRequest)
	}

	if err := p.svc.DeleteGame(gameID); err != nil {
		return p.errorResponse("game not found", core.CodeGameNotFound)
	}
	return Response{Success: true}
}

// GetBoard returns an ASCII board rendering
func (p *Processor) GetBoard(gameID string) Response {
	g, err := p.svc.GetGame(gameID)
	if err != nil {
		return p.errorResponse("game not found", core.CodeGameNotFound)
	}

	pos, err := board.ParseFEN(g.CurrentFEN())
	if err != nil {
		return p.errorResponse("error parsing FEN", core.CodeInvalidFEN)
	}

	return Response{Success: true, Data: core.BoardResponse{
		FEN:   g.CurrentFEN(),
		Board: pos.ToASCII(),
	}}
}

// Chat runs one conversational exchange through the remote adapter.
func (p *Processor) Chat(ctx context.Context, gameID string, req core.ChatRequest) Response {
	g, err := p.svc.GetGame(gameID)
	if err != nil {
		return p.errorResponse("game not found", core.CodeGameNotFound)
	}
	if p.adapter == nil || !g.Remote() {
		return p.errorResponse("remote decisions are disabled for this game", core.CodeRemoteDisabled)
	}

	pos, err := board.ParseFEN(g.CurrentFEN())
	if err != nil {
		return p.errorResponse("stored position is corrupt", core.CodeInternalError)
	}

	res, err := p.adapter.Decide(ctx, remote.Request{
		Position:    pos,
		Difficulty:  g.Difficulty(),
		Task:        core.TaskChat,
		UserMessage: req.Message,
		History:     g.Transcript(),
	})
	if err != nil {
		return p.errorResponse(fmt.Sprintf("chat unavailable: %v", err), core.CodeInternalError)
	}

	p.svc.AppendChat(gameID, core.ChatMessage{Role: "player", Content: req.Message})
	p.svc.AppendChat(gameID, core.ChatMessage{Role: "opponent", Content: res.Text})

	g, _ = p.svc.GetGame(gameID)
	return Response{Success: true, Data: core.ChatResponse{
		Reply:      res.Text,
		Transcript: g.Transcript(),
	}}
}

// Analyze describes the current position, remotely when enabled, otherwise
// from the static evaluator.
func (p *Processor) Analyze(ctx context.Context, gameID string) Response {
	g, err := p.svc.GetGame(gameID)
	if err != nil {
		return p.errorResponse("game not found", core.CodeGameNotFound)
	}

	pos, err := board.ParseFEN(g.CurrentFEN())
	if err != nil {
		return p.errorResponse("stored position is corrupt", core.CodeInternalError)
	}

	if p.adapter != nil && g.Remote() {
		res, err := p.adapter.Decide(ctx, remote.Request{
			Position:   pos,
			Difficulty: g.Difficulty(),
			Task:       core.TaskAnalysis,
		})
		if err == nil {
			return Response{Success: true, Data: core.AnalysisResponse{
				Text:   res.Text,
				Source: core.SourceRemote.String(),
			}}
		}
		log.Printf("Remote analysis failed, using static evaluation: %v", err)
	}

	score := eval.Evaluate(pos)
	text := fmt.Sprintf("Static evaluation: %+.2f pawns (positive favors white). %d legal moves for %s.",
		float64(score)/100, len(pos.LegalMoves()), g.NextTurn())
	return Response{Success: true, Data: core.AnalysisResponse{
		Text:   text,
		Source: core.SourceLocal.String(),
	}}
}

// triggerOpponentMove marks the game pending and queues an async decision.
func (p *Processor) triggerOpponentMove(gameID string, g *game.Game) {
	fen := g.CurrentFEN()
	epoch := g.Epoch()
	color := g.NextTurn()
	difficulty := g.Difficulty()
	remoteEnabled := g.Remote()

	p.svc.UpdateGameState(gameID, core.StatePending)

	err := p.queue.SubmitAsync(gameID, epoch, fen, difficulty, remoteEnabled, func(result opponent.TaskResult) {
		current, err := p.svc.GetGame(gameID)
		if err != nil {
			return // Game was deleted
		}

		// The position changed under us (undo, reset); the decision was
		// computed for a stale epoch and must not be applied.
		if current.Epoch() != result.Epoch {
			log.Printf("Discarding stale decision for game %s (epoch %d != %d)",
				gameID, result.Epoch, current.Epoch())
			return
		}
		if current.State() != core.StatePending {
			return
		}

		if result.Err != nil {
			if errors.Is(result.Err, core.ErrNoLegalMoves) {
				// Terminal position reached before the decision ran
				p.svc.UpdateGameState(gameID, core.StateOngoing)
				p.checkGameEnd(gameID, fen, core.OppositeColor(color))
				return
			}
			log.Printf("Decision error for game %s: %v", gameID, result.Err)
			p.svc.UpdateGameState(gameID, core.StateStuck)
			return
		}

		decision := result.Decision
		pos, err := board.ParseFEN(fen)
		if err != nil {
			p.svc.UpdateGameState(gameID, core.StateStuck)
			return
		}
		next, err := pos.Apply(decision.Move)
		if err != nil {
			log.Printf("Decision produced illegal move for game %s: %v", gameID, err)
			p.svc.UpdateGameState(gameID, core.StateStuck)
			return
		}
		newFEN := next.FEN()

		p.svc.ApplyMove(gameID, decision.Move.UCI(), newFEN)
		p.svc.SetLastMoveResult(gameID, &game.MoveResult{
			Move:        decision.Move.UCI(),
			PlayerColor: color,
			Source:      decision.Source,
			Score:       decision.Score,
			Depth:       decision.Depth,
			Attempts:    decision.Attempts,
		})

		p.svc.UpdateGameState(gameID, core.StateOngoing)
		p.checkGameEnd(gameID, newFEN, color)
	})
	if err != nil {
		log.Printf("Failed to queue decision for game %s: %v", gameID, err)
		p.svc.UpdateGameState(gameID, core.StateStuck)
	}
}

// checkGameEnd determines if the game has ended after a move by lastMoveBy.
func (p *Processor) checkGameEnd(gameID, fen string, lastMoveBy core.Color) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return
	}

	switch {
	case pos.IsCheckmate():
		if lastMoveBy == core.ColorWhite {
			p.svc.UpdateGameState(gameID, core.StateWhiteWins)
		} else {
			p.svc.UpdateGameState(gameID, core.StateBlackWins)
		}
	case pos.IsStalemate():
		p.svc.UpdateGameState(gameID, core.StateStalemate)
	case pos.IsDraw():
		p.svc.UpdateGameState(gameID, core.StateDraw)
	default:
		if p.isThreefoldRepetition(gameID, fen) {
			p.svc.UpdateGameState(gameID, core.StateDraw)
		}
	}
}

// repetitionKey drops the move counters so positions compare on piece
// placement, side to move, castling rights and en passant square.
func repetitionKey(fen string) string {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return fen
	}
	return strings.Join(parts[:4], " ")
}

// isThreefoldRepetition counts how often the current position occurred in
// the game history. The position the oracle cannot see repetition for lives
// in the snapshot list, so the check happens here.
func (p *Processor) isThreefoldRepetition(gameID, fen string) bool {
	g, err := p.svc.GetGame(gameID)
	if err != nil {
		return false
	}

	key := repetitionKey(fen)
	count := 0
	for _, past := range g.FENHistory() {
		if repetitionKey(past) == key {
			count++
		}
	}
	return count >= 3
}

// buildGameResponse constructs the standard game response
func (p *Processor) buildGameResponse(gameID string, g *game.Game) core.GameResponse {
	resp := core.GameResponse{
		GameID:      gameID,
		FEN:         g.CurrentFEN(),
		Turn:        g.NextTurn().String(),
		State:       g.State().String(),
		Difficulty:  g.Difficulty().String(),
		PlayerColor: g.PlayerColor().String(),
		Remote:      g.Remote(),
		Moves:       g.Moves(),
	}

	if result := g.LastResult(); result != nil {
		resp.LastMove = &core.MoveInfo{
			Move:        result.Move,
			PlayerColor: result.PlayerColor.String(),
			Score:       result.Score,
			Depth:       result.Depth,
		}
		if result.Source != 0 {
			resp.LastMove.Source = result.Source.String()
		}
	}

	return resp
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) Response {
	return Response{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

// Close shuts the decision queue down
func (p *Processor) Close() error {
	return p.queue.Shutdown(5 * time.Second)
}
