package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"docrank/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent collection runs",
	RunE:  runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	if a.history == nil {
		return errors.New("run history is disabled: set history.path in the config")
	}

	runs, err := a.history.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	return writeRuns(cmd.OutOrStdout(), a.history.Path(), runs)
}

func writeRuns(w io.Writer, path string, runs []history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintf(w, "No runs recorded in %s\n", path)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tCOLLECTION\tMODE\tSECTIONS\tDURATION\tPERSONA\tRUN ID")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime), r.Collection, r.Mode, r.Sections,
			r.Duration.Round(time.Millisecond), r.Persona, r.ID)
	}
	return tw.Flush()
}
