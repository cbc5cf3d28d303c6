package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipshelf/internal/clip"
	"go.klb.dev/clipshelf/internal/notify"
	"go.klb.dev/clipshelf/internal/presenter"
)

func newListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved items, most recent first",
		Long: `Prints the saved items with the numbers "copy" and "rm" expect.
Each item is shown as a preview of its first 50 characters; --full prints
the whole text and --json the stored record.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runList(cmd, v) },
	}
	cmd.Flags().Bool("full", false, "print full item text instead of previews")
	cmd.Flags().Bool("json", false, "print the saved list as JSON")
	addStoreFlags(cmd)
	return cmd
}

func runList(cmd *cobra.Command, v *viper.Viper) error {
	closeLog, err := setupLogging(v, cmd.ErrOrStderr(), "warn")
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := openApp(v, notify.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr()), clip.Headless())
	if err != nil {
		return err
	}

	var printErr error
	if v.GetBool("json") {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		printErr = enc.Encode(a.list.Snapshot())
	} else {
		printErr = printView(cmd.OutOrStdout(), a.p.Render(), v.GetBool("full"))
	}
	if err := a.Close(); err != nil {
		return err
	}
	return printErr
}

func printView(out io.Writer, view presenter.View, full bool) error {
	if view.Empty {
		_, err := fmt.Fprintln(out, view.Message)
		return err
	}
	tw := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	for _, r := range view.Rows {
		text := r.Preview
		if full {
			text = r.Text
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\n", r.Index+1, text)
	}
	_, _ = fmt.Fprintf(tw, "\t(%d/%d)\n", len(view.Rows), view.Capacity)
	return tw.Flush()
}
