package cli

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/comalice/boundsx"
	"github.com/comalice/boundsx/internal/production"
)

func newInspectCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect <dump>",
		Short: "Show a saved engine state dump",
		Long:  `Show a state dump written by simulate --dump as a summary, a Graphviz DOT graph, or indented JSON.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			state, err := production.LoadDumpFile(args[0])
			if err != nil {
				return err
			}
			logger.Debug("loaded dump", "path", args[0], "generation", state.Generation, "tags", len(state.Tags))

			out := cmd.OutOrStdout()
			v := &production.DefaultVisualizer{}
			switch format {
			case "summary":
				printSummary(cmd, state)
			case "dot":
				fmt.Fprint(out, v.ExportDOT(state))
			case "json":
				data, err := v.ExportJSON(state)
				if err != nil {
					return fmt.Errorf("json marshal: %w", err)
				}
				fmt.Fprintln(out, string(data))
			default:
				return fmt.Errorf("unknown format %q (want summary, dot or json)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "summary", "output format: summary, dot, json")
	return cmd
}

func printSummary(cmd *cobra.Command, state boundsx.State) {
	out := cmd.OutOrStdout()
	printKeyValue(out, "generation", strconv.FormatUint(state.Generation, 10))
	printKeyValue(out, "tags", strconv.Itoa(len(state.Tags)))
	printKeyValue(out, "presence", strconv.Itoa(len(state.Presence)))
	for _, td := range state.Tags {
		printTitle(out, "%s", td.Tag)
		for _, s := range td.Snapshots {
			b := s.Snapshot.Bounds
			printDetail(out, "snapshot %s  %gx%g @ (%g, %g)", s.Screen.ScreenKey, b.Width, b.Height, b.PageX, b.PageY)
		}
		for i, l := range td.Links {
			dst := "pending"
			if l.Destination != nil {
				dst = string(l.Destination.Screen.ScreenKey)
			}
			printDetail(out, "link #%d %s %s %s", i, l.Source.Screen.ScreenKey, iconArrow, dst)
		}
	}
	for _, group := range slices.Sorted(maps.Keys(state.Groups)) {
		printKeyValue(out, "group "+group, state.Groups[group])
	}
}
