package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docrank/internal/report"
	"docrank/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse report.json",
	Short: "Browse a written report interactively",
	Args:  cobra.ExactArgs(1),
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(_ *cobra.Command, args []string) error {
	out, err := report.ReadOutput(args[0])
	if err != nil {
		return err
	}
	if err := report.ValidateOutput(out); err != nil {
		return fmt.Errorf("invalid report %s: %w", args[0], err)
	}
	p := tea.NewProgram(tui.New(out), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
