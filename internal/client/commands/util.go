package commands

import (
	"fmt"

	"chessmind/internal/client/display"
	"chessmind/internal/client/session"
)

func (r *Registry) registerUtilCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Description: "Check server health",
		Usage:       "health",
		Handler:     healthHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Show or set the API base URL",
		Usage:       "url [new-url]",
		Handler:     urlHandler,
	})
}

func healthHandler(s *session.Session, args []string) error {
	resp, err := s.Client.Health()
	if err != nil {
		return err
	}

	fmt.Printf("Status: %s%s%s  Storage: %s\n", display.Green, resp.Status, display.Reset, resp.Storage)
	return nil
}

func urlHandler(s *session.Session, args []string) error {
	if len(args) == 0 {
		fmt.Printf("API: %s\n", s.APIBaseURL)
		return nil
	}

	s.APIBaseURL = args[0]
	s.Client.SetBaseURL(args[0])
	fmt.Printf("API set to: %s%s%s\n", display.Green, args[0], display.Reset)
	return nil
}
