package main

import (
	"github.com/spf13/cobra"

	"github.com/Faultbox/millcheck/internal/config"
	"github.com/Faultbox/millcheck/internal/logger"
)

var (
	cfgPath     string
	debugMode   bool
	logFilePath string

	// cfg is loaded once in the persistent pre-run and shared by every
	// subcommand.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "millcheck",
	Short: "CNC manufacturability analysis for STL models",
	Long: `millcheck loads a triangle mesh and runs geometric manufacturability
checks against it: undercuts, enclosed internal volumes, small features,
steep walls, narrow channels and deep pockets. The output is a JSON
report with per-check findings, recommendations and an aggregate 0-100
machinability score.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if debugMode {
			level = "debug"
		}
		file := cfg.Logging.LogFile
		if logFilePath != "" {
			file = logFilePath
		}
		return logger.Init(level, file)
	},
}

// Execute runs the root command and flushes the logger before exiting.
func Execute() {
	err := rootCmd.Execute()
	logger.Sync()
	cobra.CheckErr(err)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default: ./millcheck.yaml, then the user config dir)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFilePath, "log-file", "", "also log to this file, with rotation")
}
