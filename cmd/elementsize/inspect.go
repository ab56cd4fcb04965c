package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/elementsize/pkg/archive"
)

func inspectCmd() *cobra.Command {
	var node string

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print an archived session timeline",
		Long: `Inspect prints a timeline written by serve with archive.dir set.

Examples:
  elementsize inspect timelines/3f2a....json
  elementsize inspect timelines/3f2a....json --node=header`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := archive.NewDiskStore(filepath.Dir(args[0]))
			if err != nil {
				return err
			}
			tl, err := store.Load(cmd.Context(), filepath.Base(args[0]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "session %s  %s  %d samples\n",
				tl.SessionID, tl.Started.Format(time.RFC3339), len(tl.Samples))
			for _, s := range tl.Samples {
				if node != "" && s.Node != node {
					continue
				}
				size := "none"
				if sz := s.Size(); sz != nil {
					size = sz.String()
				}
				fmt.Fprintf(out, "%10s  %-16s %s\n", s.At.Sub(tl.Started).Round(time.Millisecond), s.Node, size)
			}
			if tl.Dropped > 0 {
				fmt.Fprintf(out, "(%d samples dropped)\n", tl.Dropped)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&node, "node", "n", "", "Only print samples for this node")
	return cmd
}
