package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/millcheck/internal/analysis"
	"github.com/Faultbox/millcheck/internal/config"
	"github.com/Faultbox/millcheck/internal/logger"
	"github.com/Faultbox/millcheck/internal/mesh"
)

var (
	outputPath string
	pretty     bool
	overrides  []string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <model.stl>",
	Short: "Run the manufacturability checks against an STL model",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the JSON report to a file instead of stdout")
	analyzeCmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON report")
	analyzeCmd.Flags().StringArrayVar(&overrides, "set", nil, "override a config key for this run (key=value, repeatable)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	events, err := applyOverrides(cfg, overrides)
	if err != nil {
		return err
	}

	m, err := mesh.LoadSTL(args[0])
	if err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}

	rep, err := analysis.New(cfg).Analyze(cmd.Context(), m)
	if err != nil {
		return err
	}
	rep.ConfigEvents = events

	return writeReport(rep)
}

// applyOverrides merges --set pairs over the loaded configuration. Only
// unknown-key events are surfaced; defaulted keys are expected when the
// caller overrides a handful of values.
func applyOverrides(cfg *config.Config, pairs []string) ([]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	values := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, raw, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("override %q: want key=value", p)
		}
		values[key] = parseScalar(raw)
	}

	events, err := cfg.ApplyMap(values)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range events {
		if e.Kind != config.EventUnknownKey {
			continue
		}
		logger.Sugar.Warnw("ignoring unknown config key", "key", e.Key)
		out = append(out, e.String())
	}
	return out, nil
}

func parseScalar(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func writeReport(rep *analysis.Report) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(rep, "", "  ")
	} else {
		data, err = json.Marshal(rep)
	}
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if outputPath == "" || outputPath == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}
