package remote

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chessmind/internal/board"
	"chessmind/internal/core"
	"chessmind/internal/relay"
)

// fakeRelay replays a script of canned responses and records every request.
type fakeRelay struct {
	script []scriptStep
	calls  []relay.Request
}

type scriptStep struct {
	resp relay.Response
	err  error
}

func (f *fakeRelay) Generate(_ context.Context, req relay.Request) (relay.Response, error) {
	i := len(f.calls)
	f.calls = append(f.calls, req)
	if i >= len(f.script) {
		return relay.Response{}, errors.New("fake relay script exhausted")
	}
	return f.script[i].resp, f.script[i].err
}

func reply(text string) scriptStep {
	return scriptStep{resp: relay.Response{Result: text, Success: true}}
}

func transportFailure() scriptStep {
	return scriptStep{err: core.ErrTransport}
}

func startPosition(t *testing.T) *board.Position {
	t.Helper()
	p, err := board.ParseFEN(board.StartingFEN)
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}
	return p
}

func TestDecideMoveFirstAttempt(t *testing.T) {
	fake := &fakeRelay{script: []scriptStep{
		reply("A solid opening. Move: e2e4"),
	}}
	a := New(fake)

	res, err := a.Decide(context.Background(), Request{
		Position:   startPosition(t),
		Difficulty: core.DifficultyMaster,
		Task:       core.TaskMove,
	})
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if res.Move.UCI() != "e2e4" {
		t.Fatalf("move = %s, want e2e4", res.Move.UCI())
	}
	if res.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", res.Attempts)
	}
}

func TestDecideMoveRetriesIllegalWithFeedback(t *testing.T) {
	fake := &fakeRelay{script: []scriptStep{
		reply("Move: e2e5"), // move-shaped but illegal
		reply("Move: d2d4"),
	}}
	a := New(fake)

	res, err := a.Decide(context.Background(), Request{
		Position:   startPosition(t),
		Difficulty: core.DifficultyAdvanced,
		Task:       core.TaskMove,
	})
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if res.Move.UCI() != "d2d4" {
		t.Fatalf("move = %s, want d2d4", res.Move.UCI())
	}
	if res.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2", res.Attempts)
	}

	// The retry instruction must name the rejected token and restate the format
	second := fake.calls[1].Instruction
	if !strings.Contains(second, `"e2e5"`) {
		t.Errorf("corrective instruction does not name the invalid token: %q", second)
	}
	if !strings.Contains(second, "not a legal move") {
		t.Errorf("corrective instruction missing legality feedback: %q", second)
	}
	if !strings.Contains(second, "Move: e2e4") {
		t.Errorf("corrective instruction missing format rule: %q", second)
	}
}

func TestDecideMoveRetriesMalformedResponse(t *testing.T) {
	fake := &fakeRelay{script: []scriptStep{
		reply("I resign, you play too well."),
		reply("Move: g1f3"),
	}}
	a := New(fake)

	res, err := a.Decide(context.Background(), Request{
		Position:   startPosition(t),
		Difficulty: core.DifficultyIntermediate,
		Task:       core.TaskMove,
	})
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if res.Move.UCI() != "g1f3" {
		t.Fatalf("move = %s, want g1f3", res.Move.UCI())
	}

	second := fake.calls[1].Instruction
	if !strings.Contains(second, "no move in the required format") {
		t.Errorf("corrective instruction missing format feedback: %q", second)
	}
}

func TestDecideMoveExhaustsRetries(t *testing.T) {
	fake := &fakeRelay{script: []scriptStep{
		reply("no move here"),
		reply("still no move"),
		reply("nothing"),
	}}
	a := New(fake)

	_, err := a.Decide(context.Background(), Request{
		Position:   startPosition(t),
		Difficulty: core.DifficultyMaster,
		Task:       core.TaskMove,
	})
	if !errors.Is(err, core.ErrRetryExhausted) {
		t.Fatalf("error = %v, want ErrRetryExhausted", err)
	}
	if len(fake.calls) != MaxRetries {
		t.Fatalf("relay called %d times, want %d", len(fake.calls), MaxRetries)
	}
}

func TestDecideMoveRetriesTransportFailure(t *testing.T) {
	fake := &fakeRelay{script: []scriptStep{
		transportFailure(),
		reply("Move: e2e4"),
	}}
	a := New(fake)

	res, err := a.Decide(context.Background(), Request{
		Position:   startPosition(t),
		Difficulty: core.DifficultyMaster,
		Task:       core.TaskMove,
	})
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if res.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2", res.Attempts)
	}
}

func TestDecideMoveRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeRelay{script: []scriptStep{reply("Move: e2e4")}}
	a := New(fake)

	_, err := a.Decide(ctx, Request{
		Position:   startPosition(t),
		Difficulty: core.DifficultyMaster,
		Task:       core.TaskMove,
	})
	if !errors.Is(err, core.ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("relay called %d times after cancellation, want 0", len(fake.calls))
	}
}

func TestChatPassesTextThrough(t *testing.T) {
	fake := &fakeRelay{script: []scriptStep{
		reply("A fine game so far!"),
	}}
	a := New(fake)

	res, err := a.Decide(context.Background(), Request{
		Position:    startPosition(t),
		Difficulty:  core.DifficultyBeginner,
		Task:        core.TaskChat,
		UserMessage: "how am I\ndoing \"so far\"?",
		History: []core.ChatMessage{
			{Role: "player", Content: "hello"},
			{Role: "opponent", Content: "hello to you"},
		},
	})
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if res.Text != "A fine game so far!" {
		t.Fatalf("text = %q", res.Text)
	}

	// Untrusted text must be sanitized before leaving the process
	sent := fake.calls[0].UserMessage
	if strings.ContainsAny(sent, "\n\r") {
		t.Errorf("user message contains raw newlines: %q", sent)
	}
	if !strings.Contains(sent, `\"so far\"`) {
		t.Errorf("quotes not escaped in user message: %q", sent)
	}
	if !strings.Contains(fake.calls[0].Instruction, "Opponent:") {
		t.Errorf("instruction missing transcript: %q", fake.calls[0].Instruction)
	}
}

func TestAnalysisDoesNotValidateMoves(t *testing.T) {
	fake := &fakeRelay{script: []scriptStep{
		reply("White is slightly better due to the bishop pair."),
	}}
	a := New(fake)

	res, err := a.Decide(context.Background(), Request{
		Position:   startPosition(t),
		Difficulty: core.DifficultyMaster,
		Task:       core.TaskAnalysis,
	})
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if !strings.Contains(res.Text, "bishop pair") {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestExtractMoveToken(t *testing.T) {
	tests := []struct {
		text    string
		want    string
		wantErr bool
	}{
		{text: "Move: e2e4", want: "e2e4"},
		{text: "MOVE: E2E4", want: "e2e4"},
		{text: "I think e7e5 is tempting.\nMove: d2d4", want: "d2d4"}, // labeled wins
		{text: "I will play g1f3 here", want: "g1f3"},                 // bare fallback
		{text: "promotion! a7a8q wins", want: "a7a8q"},
		{text: "", wantErr: true},
		{text: "I resign", wantErr: true},
		{text: "pawn to e4", wantErr: true},
	}

	for _, tt := range tests {
		got, err := extractMoveToken(tt.text)
		if tt.wantErr {
			if !errors.Is(err, core.ErrMalformedResponse) {
				t.Errorf("extractMoveToken(%q) error = %v, want ErrMalformedResponse", tt.text, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("extractMoveToken(%q) failed: %v", tt.text, err)
			continue
		}
		if got != tt.want {
			t.Errorf("extractMoveToken(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"line\none\r\nline two", "line one line two"},
		{"tab\tseparated", "tab separated"},
		{`say "hi"`, `say \"hi\"`},
		{`back\slash`, `back\\slash`},
		{"bell\x07char", "bellchar"},
		{"  collapsed   spaces  ", "collapsed spaces"},
	}

	for _, tt := range tests {
		if got := sanitize(tt.input); got != tt.want {
			t.Errorf("sanitize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
