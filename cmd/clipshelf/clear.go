package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipshelf/internal/clip"
	"go.klb.dev/clipshelf/internal/notify"
)

func newClearCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "clear",
		Short:   "Delete every saved item",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runClear(cmd, v) },
	}
	addStoreFlags(cmd)
	return cmd
}

func runClear(cmd *cobra.Command, v *viper.Viper) error {
	closeLog, err := setupLogging(v, cmd.ErrOrStderr(), "warn")
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := openApp(v, notify.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr()), clip.Headless())
	if err != nil {
		return err
	}
	a.p.Clear()
	return a.Close()
}
