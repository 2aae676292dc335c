// Package remote consumes move decisions from a hosted text-generation model
// through the transport relay. Responses are untrusted free text: a move
// token is extracted, re-validated against the rules oracle, and rejected
// answers are retried with corrective feedback up to a fixed bound.
package remote

import (
	"context"
	"fmt"

	"chessmind/internal/board"
	"chessmind/internal/core"
	"chessmind/internal/relay"
)

// MaxRetries bounds total attempts per decision, first try included.
const MaxRetries = 3

// Request describes one decision to obtain from the remote source.
type Request struct {
	Position    *board.Position
	Difficulty  core.Difficulty
	Task        core.TaskKind
	UserMessage string             // chat only
	History     []core.ChatMessage // chat only
}

// Result is a validated remote decision. Move is set for TaskMove; Text
// carries the raw response for analysis and chat, passed through opaque.
type Result struct {
	Move     board.Move
	Text     string
	Attempts int
}

// retryState tracks one bounded retry loop.
type retryState struct {
	attempt   int
	lastToken string
	lastErr   error
}

type Adapter struct {
	relay      relay.Client
	maxRetries int
}

func New(rc relay.Client) *Adapter {
	return &Adapter{relay: rc, maxRetries: MaxRetries}
}

// Decide runs one decision request against the relay. Retries are sequential
// and bounded; exhaustion surfaces as core.ErrRetryExhausted wrapping the
// last failure.
func (a *Adapter) Decide(ctx context.Context, req Request) (*Result, error) {
	switch req.Task {
	case core.TaskMove:
		return a.decideMove(ctx, req)
	case core.TaskAnalysis, core.TaskChat:
		return a.generateText(ctx, req)
	default:
		return nil, fmt.Errorf("unknown task kind: %v", req.Task)
	}
}

func (a *Adapter) decideMove(ctx context.Context, req Request) (*Result, error) {
	base := buildInstruction(req)

	var state retryState
	for state.attempt = 1; state.attempt <= a.maxRetries; state.attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrTransport, err)
		}

		instruction := base
		if state.lastErr != nil {
			instruction = correctiveInstruction(base, state.lastToken, state.lastErr)
		}

		resp, err := a.relay.Generate(ctx, relay.Request{
			Instruction: instruction,
			Temperature: temperatureFor(req),
			Task:        req.Task.String(),
			Position:    req.Position.FEN(),
		})
		if err != nil {
			state.lastToken, state.lastErr = "", err
			continue
		}

		token, err := extractMoveToken(resp.Result)
		if err != nil {
			state.lastToken, state.lastErr = "", err
			continue
		}

		move, err := board.ParseUCI(token)
		if err != nil {
			state.lastToken, state.lastErr = token, core.ErrMalformedResponse
			continue
		}

		// Legality is checked against the oracle, never assumed. A legal move
		// by definition resolves any check against the side to move.
		if !req.Position.IsLegal(move) {
			state.lastToken = token
			state.lastErr = fmt.Errorf("%w: %s", core.ErrIllegalMove, token)
			continue
		}

		return &Result{Move: move, Text: resp.Result, Attempts: state.attempt}, nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", core.ErrRetryExhausted, a.maxRetries, state.lastErr)
}

// generateText serves analysis and chat. No move validation applies; only
// transport failures are retried. The response text stays opaque to the core.
func (a *Adapter) generateText(ctx context.Context, req Request) (*Result, error) {
	var state retryState
	for state.attempt = 1; state.attempt <= a.maxRetries; state.attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrTransport, err)
		}

		resp, err := a.relay.Generate(ctx, relay.Request{
			Instruction: buildInstruction(req),
			Temperature: temperatureFor(req),
			Task:        req.Task.String(),
			Position:    req.Position.FEN(),
			UserMessage: sanitize(req.UserMessage),
		})
		if err != nil {
			state.lastErr = err
			continue
		}
		return &Result{Text: resp.Result, Attempts: state.attempt}, nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", core.ErrRetryExhausted, a.maxRetries, state.lastErr)
}
