package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/studyboost/internal/auth"
	"github.com/sadopc/studyboost/internal/config"
	"github.com/sadopc/studyboost/internal/logging"
	"github.com/sadopc/studyboost/internal/store"
	"github.com/sadopc/studyboost/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := logging.Setup(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	s, err := store.New(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	authSvc := auth.New(s, cfg.StateDir)
	authSvc.Subscribe(func(u *store.User) {
		if u != nil {
			log.Printf("signed in: %s", u.Email)
		} else {
			log.Print("signed out")
		}
	})

	app := tui.NewApp(cfg, s, authSvc)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithReportFocus())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
