// Command elementsize serves remote element size tracking and replays
// size-tracking scenarios locally.
package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/elementsize/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		var coded *errors.Error
		if stderrors.As(err, &coded) {
			fmt.Fprint(os.Stderr, coded.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "elementsize",
		Short: "Track rendered element sizes",
		Long: `elementsize tracks the rendered size of UI elements.

  serve     accept browser clients over WebSocket and track the
            nodes they measure
  simulate  replay a resize scenario against an in-memory document
  inspect   print an archived session timeline`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		serveCmd(),
		simulateCmd(),
		inspectCmd(),
		versionCmd(),
	)
	return cmd
}
