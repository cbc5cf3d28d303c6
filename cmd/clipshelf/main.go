// clipshelf: save clipboard snapshots and bring them back later.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/clipshelf/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "clipshelf",
		Short: "Save clipboard snapshots and copy them back later",
		Long: `clipshelf keeps a short, most-recently-used list of clipboard snapshots.
Saving text that is already on the list moves it to the top instead of
duplicating it; once the list is full the oldest entry is dropped.

Use "clipshelf panel" for the interactive manager, or the one-shot commands
(save, add, list, copy, rm, clear, capacity) from scripts and key bindings.
"clipshelf watch" saves every clipboard change in the background.

Config file search order (first found wins):
  /etc/clipshelf/clipshelf.toml
  $HOME/.config/clipshelf/clipshelf.toml
  path supplied via --config

All flags can be set via CLIPSHELF_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newPanelCmd(),
		newSaveCmd(),
		newAddCmd(),
		newListCmd(),
		newCopyCmd(),
		newRmCmd(),
		newClearCmd(),
		newCapacityCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clipshelf %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
// fallback is the level used when --log-level is empty.
func resolveLogging(w io.Writer, formatStr, levelStr, fallback string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		level = logging.ParseLevel(fallback)
	}
	logging.Setup(w, format, level)
}
