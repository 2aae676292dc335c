// Package main implements the interactive terminal client for the opponent
// daemon's REST API.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"chessmind/internal/client/api"
	"chessmind/internal/client/commands"
	"chessmind/internal/client/display"
	"chessmind/internal/client/session"

	"github.com/chzyer/readline"
)

func main() {
	apiURL := flag.String("api-url", "http://localhost:8080", "Opponent daemon base URL")
	flag.Parse()

	s := &session.Session{
		APIBaseURL: *apiURL,
		Client:     api.New(*apiURL),
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chessmind"),
		HistoryFile:     ".chessmind_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sChess Opponent Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		// Check for verbose flag
		if strings.HasSuffix(line, " -v") {
			s.Verbose = true
			line = strings.TrimSuffix(line, " -v")
		} else {
			s.Verbose = false
		}

		registry.Execute(line)
	}
}

func buildPrompt(s *session.Session) string {
	promptStr := "chessmind"

	if s.CurrentGame != "" {
		promptStr += fmt.Sprintf("%s [%s%s%s]", display.Yellow, display.White, s.CurrentGame[:8], display.Yellow)
	}

	if s.GameState != nil {
		promptStr += fmt.Sprintf(" - Turn:%s", display.ColorForTurn(s.GameState.Turn))
		if s.GameState.State != "ongoing" {
			promptStr += fmt.Sprintf(" (%s)", s.GameState.State)
		}
	}

	return display.Prompt(promptStr)
}
