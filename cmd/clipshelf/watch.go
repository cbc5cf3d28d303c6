package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipshelf/internal/history"
	"go.klb.dev/clipshelf/internal/notify"
	"go.klb.dev/clipshelf/internal/presenter"
)

func newWatchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Save every clipboard change in the background",
		Long: `Runs in the foreground and saves each new clipboard text to the list,
exactly as "save" would. Stop it with Ctrl-C or SIGTERM; pending changes are
written before exit.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runWatch(cmd, v) },
	}
	addStoreFlags(cmd)
	return cmd
}

func runWatch(cmd *cobra.Command, v *viper.Viper) error {
	closeLog, err := setupLogging(v, cmd.ErrOrStderr(), "info")
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := clipboardBackend(v)
	if err != nil {
		return err
	}
	a, err := openApp(v, notify.Log{}, backend)
	if err != nil {
		return err
	}

	slog.Info("watching clipboard",
		"backend", backend.Name(),
		"store", a.store.Path(),
		"items", a.list.Len(),
	)

	changes, err := a.store.Watch(ctx)
	if err != nil {
		slog.Warn("not watching settings file", "err", err)
	}
	watchClipboard(ctx, a.p, backend.Watch(ctx), changes)

	slog.Info("shutting down")
	return a.Close()
}

// watchClipboard saves each text received on clips until ctx is done or clips
// is closed. A signal on changes reloads the list first, so edits made by
// other clipshelf processes are not overwritten.
func watchClipboard(ctx context.Context, p *presenter.Presenter, clips <-chan string, changes <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			reload(p)
		case text, ok := <-clips:
			if !ok {
				return
			}
			// A change that arrived together with this text is applied first.
			select {
			case _, ok := <-changes:
				if ok {
					reload(p)
				} else {
					changes = nil
				}
			default:
			}
			if err := p.SaveText(text); err != nil && !errors.Is(err, history.ErrEmptyInput) {
				slog.Warn("save failed", "err", err)
			}
		}
	}
}

func reload(p *presenter.Presenter) {
	if err := p.Reload(); err != nil {
		slog.Warn("reload failed", "err", err)
	}
}
