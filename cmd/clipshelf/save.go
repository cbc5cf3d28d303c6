package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipshelf/internal/notify"
)

func newSaveCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the current clipboard content",
		Long: `Reads the system clipboard and puts its text at the top of the saved list.
Text that is already saved is moved to the top instead of being added twice.
Suitable for binding to a hotkey.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runSave(cmd, v) },
	}
	addStoreFlags(cmd)
	return cmd
}

func runSave(cmd *cobra.Command, v *viper.Viper) error {
	closeLog, err := setupLogging(v, cmd.ErrOrStderr(), "warn")
	if err != nil {
		return err
	}
	defer closeLog()

	backend, err := clipboardBackend(v)
	if err != nil {
		return err
	}
	a, err := openApp(v, notify.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr()), backend)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
	defer cancel()
	saveErr := a.p.SaveFromClipboard(ctx)
	if err := a.Close(); err != nil {
		return err
	}
	return saveErr
}
