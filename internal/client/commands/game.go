package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"chessmind/internal/client/display"
	"chessmind/internal/client/session"
	"chessmind/internal/core"
)

// Opponent decisions may run the full remote retry loop before falling back.
const opponentWait = 3 * time.Minute

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Create a new game",
		Usage:       "new [difficulty] [w|b] [remote] [fen ...]",
		Handler:     newGameHandler,
	})

	r.Register(&Command{
		Name:        "join",
		ShortName:   "j",
		Description: "Join/set current game ID",
		Usage:       "join <gameId>",
		Handler:     joinGameHandler,
	})

	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Make a move and wait for the opponent reply",
		Usage:       "move <uci-move>",
		Handler:     moveHandler,
	})

	r.Register(&Command{
		Name:        "undo",
		ShortName:   "u",
		Description: "Undo moves",
		Usage:       "undo [count]",
		Handler:     undoHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "b",
		Description: "Show board and game state",
		Usage:       "show",
		Handler:     showBoardHandler,
	})

	r.Register(&Command{
		Name:        "state",
		ShortName:   "s",
		Description: "Show current game state",
		Usage:       "state",
		Handler:     gameStateHandler,
	})

	r.Register(&Command{
		Name:        "level",
		ShortName:   "l",
		Description: "Change difficulty",
		Usage:       "level <beginner|intermediate|advanced|master>",
		Handler:     levelHandler,
	})

	r.Register(&Command{
		Name:        "remote",
		ShortName:   "r",
		Description: "Toggle remote decisions",
		Usage:       "remote <on|off>",
		Handler:     remoteHandler,
	})

	r.Register(&Command{
		Name:        "delete",
		ShortName:   "d",
		Description: "Delete a game",
		Usage:       "delete [gameId]",
		Handler:     deleteGameHandler,
	})

	r.Register(&Command{
		Name:        "chat",
		ShortName:   "c",
		Description: "Talk to the opponent",
		Usage:       "chat <message>",
		Handler:     chatHandler,
	})

	r.Register(&Command{
		Name:        "analyze",
		ShortName:   "a",
		Description: "Ask for a position assessment",
		Usage:       "analyze",
		Handler:     analyzeHandler,
	})
}

func newGameHandler(s *session.Session, args []string) error {
	req := &core.CreateGameRequest{
		Difficulty:  "intermediate",
		PlayerColor: "w",
	}

	var fenParts []string
	for _, arg := range args {
		switch arg {
		case "beginner", "intermediate", "advanced", "master":
			req.Difficulty = arg
		case "w", "b":
			req.PlayerColor = arg
		case "remote":
			req.Remote = true
		default:
			fenParts = append(fenParts, arg)
		}
	}
	if len(fenParts) > 0 {
		req.FEN = strings.Join(fenParts, " ")
	}

	resp, pending, err := s.Client.CreateGame(req)
	if err != nil {
		return err
	}
	s.Update(resp)

	fmt.Printf("%sGame created: %s%s\n", display.Green, resp.GameID, display.Reset)
	fmt.Printf("Difficulty: %s, you play %s\n", resp.Difficulty, display.ColorForTurn(resp.PlayerColor))

	if pending {
		return awaitOpponent(s)
	}
	return showBoardHandler(s, nil)
}

func joinGameHandler(s *session.Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: join <gameId>")
	}

	resp, _, err := s.Client.GetGame(args[0])
	if err != nil {
		return err
	}
	s.Update(resp)

	fmt.Printf("%sJoined game: %s%s\n", display.Green, resp.GameID, display.Reset)
	return showBoardHandler(s, nil)
}

func moveHandler(s *session.Session, args []string) error {
	if s.CurrentGame == "" {
		return fmt.Errorf("no active game, use 'new' first")
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: move <uci-move>")
	}

	resp, pending, err := s.Client.MakeMove(s.CurrentGame, args[0])
	if err != nil {
		return err
	}
	s.Update(resp)

	if pending {
		return awaitOpponent(s)
	}
	return finishTurn(s)
}

// awaitOpponent polls until the queued decision lands, then shows it.
func awaitOpponent(s *session.Session) error {
	fmt.Printf("%sOpponent is thinking...%s\n", display.Yellow, display.Reset)

	resp, err := s.Client.WaitForOpponent(s.CurrentGame, opponentWait)
	if err != nil {
		return err
	}
	s.Update(resp)

	if resp.LastMove != nil && resp.LastMove.Source != "" {
		line := fmt.Sprintf("Opponent (%s): %s", resp.LastMove.Source, resp.LastMove.Move)
		if s.Verbose && resp.LastMove.Source == "local" {
			line += fmt.Sprintf(" (depth=%d, score=%d)", resp.LastMove.Depth, resp.LastMove.Score)
		}
		fmt.Printf("%s%s%s\n", display.Magenta, line, display.Reset)
	}

	return finishTurn(s)
}

func finishTurn(s *session.Session) error {
	if err := showBoardHandler(s, nil); err != nil {
		return err
	}

	if s.GameState != nil && s.GameState.State != "ongoing" && s.GameState.State != "pending" {
		fmt.Printf("\n%sGame over: %s%s\n", display.Yellow, s.GameState.State, display.Reset)
	}
	return nil
}

func undoHandler(s *session.Session, args []string) error {
	if s.CurrentGame == "" {
		return fmt.Errorf("no active game")
	}

	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid undo count, usage: undo [count]")
		}
		count = n
	}

	resp, err := s.Client.UndoMoves(s.CurrentGame, count)
	if err != nil {
		return err
	}
	s.Update(resp)

	if count == 1 {
		fmt.Println("Move undone")
	} else {
		fmt.Printf("%d moves undone\n", count)
	}
	return showBoardHandler(s, nil)
}

func showBoardHandler(s *session.Session, args []string) error {
	if s.CurrentGame == "" {
		return fmt.Errorf("no active game")
	}

	board, err := s.Client.GetBoard(s.CurrentGame)
	if err != nil {
		return err
	}

	fmt.Println()
	display.RenderBoard(board.Board)

	if s.GameState != nil {
		fmt.Printf("\nTurn: %s  State: %s\n", display.ColorForTurn(s.GameState.Turn), s.GameState.State)
	}
	return nil
}

func gameStateHandler(s *session.Session, args []string) error {
	if s.CurrentGame == "" {
		return fmt.Errorf("no active game")
	}

	resp, pending, err := s.Client.GetGame(s.CurrentGame)
	if err != nil {
		return err
	}
	s.Update(resp)

	fmt.Printf("\nGame:       %s\n", resp.GameID)
	fmt.Printf("FEN:        %s\n", resp.FEN)
	fmt.Printf("Turn:       %s\n", display.ColorForTurn(resp.Turn))
	fmt.Printf("State:      %s (pending=%v)\n", resp.State, pending)
	fmt.Printf("Difficulty: %s\n", resp.Difficulty)
	fmt.Printf("You play:   %s\n", display.ColorForTurn(resp.PlayerColor))
	fmt.Printf("Remote:     %v\n", resp.Remote)
	if len(resp.Moves) > 0 {
		fmt.Printf("Moves:      %s\n", strings.Join(resp.Moves, " "))
	}
	return nil
}

func levelHandler(s *session.Session, args []string) error {
	if s.CurrentGame == "" {
		return fmt.Errorf("no active game")
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: level <beginner|intermediate|advanced|master>")
	}

	resp, err := s.Client.Configure(s.CurrentGame, &core.ConfigureRequest{Difficulty: args[0]})
	if err != nil {
		return err
	}
	s.Update(resp)

	fmt.Printf("Difficulty set to %s%s%s\n", display.Green, resp.Difficulty, display.Reset)
	return nil
}

func remoteHandler(s *session.Session, args []string) error {
	if s.CurrentGame == "" {
		return fmt.Errorf("no active game")
	}
	if len(args) < 1 || (args[0] != "on" && args[0] != "off") {
		return fmt.Errorf("usage: remote <on|off>")
	}

	enabled := args[0] == "on"
	resp, err := s.Client.Configure(s.CurrentGame, &core.ConfigureRequest{Remote: &enabled})
	if err != nil {
		return err
	}
	s.Update(resp)

	fmt.Printf("Remote decisions: %s%v%s\n", display.Green, resp.Remote, display.Reset)
	return nil
}

func deleteGameHandler(s *session.Session, args []string) error {
	gameID := s.CurrentGame
	if len(args) > 0 {
		gameID = args[0]
	}
	if gameID == "" {
		return fmt.Errorf("no game to delete")
	}

	if err := s.Client.DeleteGame(gameID); err != nil {
		return err
	}

	fmt.Printf("%sGame deleted: %s%s\n", display.Green, gameID, display.Reset)
	if gameID == s.CurrentGame {
		s.Clear()
	}
	return nil
}

func chatHandler(s *session.Session, args []string) error {
	if s.CurrentGame == "" {
		return fmt.Errorf("no active game")
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: chat <message>")
	}

	resp, err := s.Client.Chat(s.CurrentGame, strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Printf("%sOpponent:%s %s\n", display.Magenta, display.Reset, resp.Reply)
	return nil
}

func analyzeHandler(s *session.Session, args []string) error {
	if s.CurrentGame == "" {
		return fmt.Errorf("no active game")
	}

	resp, err := s.Client.Analyze(s.CurrentGame)
	if err != nil {
		return err
	}

	fmt.Printf("%sAnalysis (%s):%s %s\n", display.Cyan, resp.Source, display.Reset, resp.Text)
	return nil
}
