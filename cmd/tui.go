package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/kiosk/internal/shared"
	"github.com/desertthunder/kiosk/internal/tasks"
	"github.com/desertthunder/kiosk/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the dashboard with a playback poller feeding the Now Playing screen.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	logPath := r.config.Kiosk.LogFile
	if logPath == "" {
		logPath = "./tmp/kiosk.log"
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLevel(r.config.Kiosk.LogLevel))
	if err := r.SetLogger(fileLogger); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interval := r.config.Kiosk.PollInterval.Or(tasks.DefaultPollInterval)
	poller := tasks.NewPoller(r.player, r.auth, interval, shared.WithLogger(fileLogger, "component", "poller"))

	model := ui.NewModel(ctx, ui.Opts{
		Player:  r.player,
		Auth:    r.auth,
		Updates: poller.Start(ctx),
		Clock:   r.clock,
		OpenURL: r.openURL,
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
