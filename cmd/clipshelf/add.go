package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipshelf/internal/clip"
	"go.klb.dev/clipshelf/internal/notify"
)

func newAddCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Save text from the arguments or stdin",
		Long: `Saves literal text without touching the system clipboard. With no
arguments the text is read from stdin:

  git log -1 --format=%H | clipshelf add`,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, args []string) error { return runAdd(cmd, v, args) },
	}
	addStoreFlags(cmd)
	return cmd
}

func runAdd(cmd *cobra.Command, v *viper.Viper, args []string) error {
	closeLog, err := setupLogging(v, cmd.ErrOrStderr(), "warn")
	if err != nil {
		return err
	}
	defer closeLog()

	text, err := readText(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := openApp(v, notify.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr()), clip.Headless())
	if err != nil {
		return err
	}
	addErr := a.p.SaveText(text)
	if err := a.Close(); err != nil {
		return err
	}
	return addErr
}
