package main

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipshelf/internal/clip"
	"go.klb.dev/clipshelf/internal/notify"
)

func newCopyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "copy <n>",
		Short: "Copy saved item n back to the clipboard",
		Long: `Writes the full text of item n (as numbered by "list") to the system
clipboard. The saved list is not reordered.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, args []string) error { return runCopy(cmd, v, args[0]) },
	}
	addStoreFlags(cmd)
	return cmd
}

func runCopy(cmd *cobra.Command, v *viper.Viper, arg string) error {
	closeLog, err := setupLogging(v, cmd.ErrOrStderr(), "warn")
	if err != nil {
		return err
	}
	defer closeLog()

	index, err := parseIndex(arg)
	if err != nil {
		return err
	}

	backend, err := copyBackend(v)
	if err != nil {
		return err
	}
	a, err := openApp(v, notify.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr()), backend)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
	defer cancel()
	copyErr := a.p.Copy(ctx, index)
	if err := a.Close(); err != nil {
		return err
	}
	return copyErr
}

// copyBackend prefers the command-line tools on X11 and Wayland when the
// backend is auto: an X selection is owned by a process and disappears when
// it exits, while xclip and wl-copy keep serving it after we are gone.
func copyBackend(v *viper.Viper) (clip.Backend, error) {
	kind, err := clip.ParseKind(v.GetString("backend"))
	if err != nil {
		return nil, err
	}
	if kind == clip.KindAuto && runtime.GOOS != "darwin" && runtime.GOOS != "windows" {
		b, cerr := clip.New(clip.KindCommand)
		if cerr == nil {
			return b, nil
		}
		slog.Debug("command clipboard unavailable for copy", "err", cerr)
	}
	return clipboardBackend(v)
}
