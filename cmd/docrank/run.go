package main

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [collection...]",
	Short: "Process document collections",
	Long: "Processes each collection directory (the configured collections when none are given), " +
		"reading its input JSON and writing the ranked output JSON next to it.",
	RunE: runCollections,
}

var runRoot string

func init() {
	runCmd.Flags().StringVar(&runRoot, "root", "", "Directory containing the collections (default current directory)")
	rootCmd.AddCommand(runCmd)
}

func runCollections(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	names := args
	if len(names) == 0 {
		names = a.cfg.Collections
	}
	_, err = a.svc.ProcessAll(cmd.Context(), runRoot, names)
	return err
}
