package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipshelf/internal/clip"
	"go.klb.dev/clipshelf/internal/notify"
)

func newCapacityCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "capacity [n]",
		Short: "Show or change how many items are kept",
		Long: `Without an argument prints the current capacity. With one, sets it;
when the list holds more items than the new capacity the oldest are dropped.`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, args []string) error { return runCapacity(cmd, v, args) },
	}
	addStoreFlags(cmd)
	return cmd
}

func runCapacity(cmd *cobra.Command, v *viper.Viper, args []string) error {
	closeLog, err := setupLogging(v, cmd.ErrOrStderr(), "warn")
	if err != nil {
		return err
	}
	defer closeLog()

	var n int
	if len(args) == 1 {
		if n, err = strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("invalid capacity %q", args[0])
		}
	}

	a, err := openApp(v, notify.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr()), clip.Headless())
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), a.list.Capacity())
		return a.Close()
	}

	setErr := a.p.SetCapacity(n)
	if err := a.Close(); err != nil {
		return err
	}
	return setErr
}
