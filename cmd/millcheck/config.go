package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/millcheck/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the analysis configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file populated with the default thresholds",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults := config.Default()
		if len(args) == 1 {
			if err := defaults.SaveTo(args[0]); err != nil {
				return err
			}
			fmt.Println("wrote", args[0])
			return nil
		}
		if err := defaults.Save(); err != nil {
			return err
		}
		fmt.Println("wrote", filepath.Join(config.ConfigDir(), "config.yaml"))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
