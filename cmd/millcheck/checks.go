package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/millcheck/internal/analysis"
)

var checksCmd = &cobra.Command{
	Use:   "checks",
	Short: "List the available checks and whether each is enabled",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range analysis.RegisteredChecks() {
			state := "enabled"
			if !cfg.Enabled(name) {
				state = "disabled"
			}
			fmt.Printf("%-18s %s\n", name, state)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checksCmd)
}
