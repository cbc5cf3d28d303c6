package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipshelf/internal/clip"
	"go.klb.dev/clipshelf/internal/notify"
)

func newRmCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "rm <n>",
		Aliases: []string{"delete"},
		Short:   "Delete saved item n",
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, args []string) error { return runRm(cmd, v, args[0]) },
	}
	addStoreFlags(cmd)
	return cmd
}

func runRm(cmd *cobra.Command, v *viper.Viper, arg string) error {
	closeLog, err := setupLogging(v, cmd.ErrOrStderr(), "warn")
	if err != nil {
		return err
	}
	defer closeLog()

	index, err := parseIndex(arg)
	if err != nil {
		return err
	}
	a, err := openApp(v, notify.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr()), clip.Headless())
	if err != nil {
		return err
	}
	rmErr := a.p.Delete(index)
	if err := a.Close(); err != nil {
		return err
	}
	return rmErr
}
