package main

import (
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"callprof/internal/report"
	"callprof/internal/ui"
)

// runWatchUI renders the live view until the workload finishes or the user
// quits.
func runWatchUI(title string, source ui.SnapshotFunc, opts report.Options, refresh time.Duration, done <-chan struct{}) error {
	model := ui.NewWatchModel(title, source, opts, refresh, done)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, err := program.Run()
	return err
}
