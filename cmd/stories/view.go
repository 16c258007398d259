package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/abelbrown/stories/internal/config"
	"github.com/abelbrown/stories/internal/feed"
	"github.com/abelbrown/stories/internal/fetch"
	"github.com/abelbrown/stories/internal/ledger"
	"github.com/abelbrown/stories/internal/logging"
	"github.com/abelbrown/stories/internal/otel"
	"github.com/abelbrown/stories/internal/ui"
)

func newViewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Open the stories carousel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, ctx)
		},
	}
}

func runView(cmd *cobra.Command, cctx *commandContext) error {
	if !isTerminal(os.Stdout) {
		return errors.New("stdout is not a terminal; use 'stories validate' or 'stories ledger show' for scripted use")
	}

	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}

	// One active viewer per data directory.
	lock := flock.New(config.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another stories viewer is already running")
	}
	defer lock.Unlock()

	if err := logging.Init(config.LogDir()); err != nil {
		return err
	}
	defer logging.Close()

	events, err := os.OpenFile(config.EventLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer events.Close()

	log := otel.NewLogger(events)
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	log.SetRingBuffer(ring)
	defer log.Close()
	log.Info(otel.KindStartup, "main", "stories "+logging.Version)
	logging.Info("session", "id", log.SessionID(), "events", config.EventLogPath())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	slot, _, closer, err := cctx.openSlot(ctx)
	if err != nil {
		logging.Error("ledger unavailable", "err", err)
		return err
	}
	defer closer.Close()

	src, err := cctx.source("")
	if err != nil {
		return err
	}
	logging.Info("source", "name", src.Name(), "ledger", cfg.Ledger.Backend)

	led := ledger.New(slot, cfg.Ledger.Key, log)
	cursor := feed.New(fetch.NewRepository(src, log), log, feed.WithPrefetchDistance(cfg.Feed.PrefetchDistance))

	app := ui.NewApp(ui.AppConfig{
		LoadInitial: func() tea.Cmd {
			return func() tea.Msg {
				cursor.LoadInitialPage(ctx)
				return ui.UsersLoaded{Users: cursor.Users(), Err: cursor.ErrorMessage()}
			}
		},
		LoadNext: func(index int) tea.Cmd {
			return func() tea.Msg {
				loaded := cursor.LoadNextPageIfNeeded(ctx, index)
				return ui.PageLoaded{Users: cursor.Users(), Loaded: loaded}
			}
		},
		Ledger:        led,
		Log:           log,
		Ring:          ring,
		StoryDuration: cfg.StoryDuration(),
	})

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := program.Run()

	log.Info(otel.KindShutdown, "main", "")
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		logging.Error("program exited", "err", runErr)
		return runErr
	}
	if dropped := log.Dropped(); dropped > 0 {
		logging.Warn("events dropped", "count", dropped)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
