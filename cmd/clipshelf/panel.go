package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipshelf/internal/tui"
)

func newPanelCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Open the interactive clipboard manager",
		Long: `Starts the full-screen manager. From the home screen press "s" to save
the clipboard or "o" to open the list; in the list, enter copies the
selected item back to the clipboard and "d" deletes it. Clicking outside the
list closes it.

Logs are discarded unless --log-file is set, since the terminal is in use.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runPanel(cmd, v) },
	}
	cmd.Flags().Bool("open", false, "open the list immediately")
	addStoreFlags(cmd)
	return cmd
}

func runPanel(cmd *cobra.Command, v *viper.Viper) error {
	closeLog, err := setupLogging(v, io.Discard, "info")
	if err != nil {
		return err
	}
	defer closeLog()

	backend, err := clipboardBackend(v)
	if err != nil {
		return err
	}
	n := tui.NewNotifier()
	a, err := openApp(v, n, backend)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("closing store", "err", err)
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	changes, err := a.store.Watch(ctx)
	if err != nil {
		slog.Warn("not watching settings file", "err", err)
		changes = nil
	}

	return tui.Run(a.p, n, tui.Options{
		ClipboardTimeout: a.timeout,
		Changes:          changes,
		OpenPanel:        v.GetBool("open"),
	})
}
