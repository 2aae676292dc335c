// Package commands implements the interactive client's command set.
package commands

import (
	"fmt"
	"os"
	"strings"

	"chessmind/internal/client/display"
	"chessmind/internal/client/session"
)

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(*session.Session, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	session  *session.Session
	commands map[string]*Command
}

func NewRegistry(s *session.Session) *Registry {
	r := &Registry{
		session:  s,
		commands: make(map[string]*Command),
	}

	r.registerGameCommands()
	r.registerUtilCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Handler:     exitHandler,
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

func (r *Registry) Execute(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmdName := parts[0]
	args := parts[1:]

	cmd, exists := r.commands[cmdName]
	if !exists {
		// Bare UCI input plays as a move
		if looksLikeMove(cmdName) && len(args) == 0 {
			cmd = r.commands["move"]
			args = []string{cmdName}
		} else {
			fmt.Printf("%sUnknown command: %s%s\n", display.Red, cmdName, display.Reset)
			fmt.Printf("Type 'help' for available commands\n")
			return
		}
	}

	r.session.Client.SetVerbose(r.session.Verbose)

	if err := cmd.Handler(r.session, args); err != nil {
		fmt.Printf("%sError: %s%s\n", display.Red, err.Error(), display.Reset)
	}
}

func looksLikeMove(s string) bool {
	if len(s) != 4 && len(s) != 5 {
		return false
	}
	valid := func(f, rk byte) bool {
		return f >= 'a' && f <= 'h' && rk >= '1' && rk <= '8'
	}
	if !valid(s[0], s[1]) || !valid(s[2], s[3]) {
		return false
	}
	if len(s) == 5 {
		switch s[4] {
		case 'q', 'r', 'b', 'n':
		default:
			return false
		}
	}
	return true
}

func (r *Registry) helpHandler(s *session.Session, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Printf("\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			fmt.Printf("Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Printf("Usage: %s\n", cmd.Usage)
		return nil
	}

	fmt.Printf("\n%sAvailable Commands:%s\n\n", display.Cyan, display.Reset)

	printGroup := func(title string, names []string) {
		fmt.Printf("%s%s:%s\n", display.Yellow, title, display.Reset)
		for _, name := range names {
			if cmd, exists := r.commands[name]; exists {
				shortPart := ""
				if cmd.ShortName != "" {
					shortPart = fmt.Sprintf("[%s%s%s] ", display.Cyan, cmd.ShortName, display.Reset)
				}
				fmt.Printf("  %s%-10s %s\n", shortPart, cmd.Name, cmd.Description)
			}
		}
	}

	printGroup("Game Commands", []string{"new", "join", "move", "undo", "show", "state", "level", "remote", "delete"})
	fmt.Println()
	printGroup("Opponent Commands", []string{"chat", "analyze"})
	fmt.Println()
	printGroup("Utility Commands", []string{"health", "url", "help", "exit"})

	fmt.Printf("\nA bare UCI move (e2e4, a7a8q) plays it directly\n")
	fmt.Printf("Type 'help <command>' for detailed usage\n")
	return nil
}

func exitHandler(s *session.Session, args []string) error {
	fmt.Printf("%sGoodbye!%s\n", display.Cyan, display.Reset)
	os.Exit(0)
	return nil
}
