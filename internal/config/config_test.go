package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.MinToolDiameter != 3.0 {
		t.Errorf("expected min tool diameter 3.0, got %f", cfg.MinToolDiameter)
	}
	if cfg.MinChannelWidth != 2.0 {
		t.Errorf("expected min channel width 2.0, got %f", cfg.MinChannelWidth)
	}
	if cfg.SteepAngleThreshold != 80.0 {
		t.Errorf("expected steep angle threshold 80.0, got %f", cfg.SteepAngleThreshold)
	}
	if cfg.DeepPocketThreshold != 30.0 {
		t.Errorf("expected deep pocket threshold 30.0, got %f", cfg.DeepPocketThreshold)
	}
	if cfg.MinDepth != 5.0 {
		t.Errorf("expected min depth 5.0, got %f", cfg.MinDepth)
	}
	if !cfg.UseContextAware {
		t.Error("expected context-aware analysis on by default")
	}
	if cfg.CheckTimeout != 30*time.Second {
		t.Errorf("expected check timeout 30s, got %v", cfg.CheckTimeout)
	}

	for _, name := range CheckNames {
		if !cfg.Enabled(name) {
			t.Errorf("expected check %q enabled by default", name)
		}
	}
	if cfg.Enabled("no_such_check") {
		t.Error("unknown check should not be enabled")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
min_tool_diameter: 6.0
steep_angle_threshold: 75.0
checks:
  deep_pockets: false
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatal(err)
	}

	// File values win.
	if cfg.MinToolDiameter != 6.0 {
		t.Errorf("expected min tool diameter 6.0, got %f", cfg.MinToolDiameter)
	}
	if cfg.SteepAngleThreshold != 75.0 {
		t.Errorf("expected steep angle threshold 75.0, got %f", cfg.SteepAngleThreshold)
	}
	if cfg.Enabled(CheckDeepPockets) {
		t.Error("deep_pockets should be disabled by the file")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}

	// Untouched keys keep their defaults, including other check flags.
	if cfg.MinChannelWidth != 2.0 {
		t.Errorf("expected default min channel width, got %f", cfg.MinChannelWidth)
	}
	if !cfg.Enabled(CheckUndercuts) {
		t.Error("undercuts should remain enabled")
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	if err == nil {
		_ = cfg
		t.Fatal("expected error for explicit missing file")
	}
}

func TestFromMapEmpty(t *testing.T) {
	cfg, events, err := FromMap(map[string]any{})
	if err != nil {
		t.Fatal(err)
	}

	// Every required key must be auto-filled and reported.
	def := Default()
	if cfg.MinToolDiameter != def.MinToolDiameter || cfg.UseContextAware != def.UseContextAware {
		t.Error("empty map should yield defaults")
	}
	wantEvents := 6 + len(CheckNames) // five thresholds + use_context_aware + check flags
	if len(events) != wantEvents {
		t.Errorf("got %d events, want %d", len(events), wantEvents)
	}
	for _, e := range events {
		if e.Kind != EventDefaulted {
			t.Errorf("event %v should be EventDefaulted", e)
		}
	}
}

func TestFromMapPartialOverride(t *testing.T) {
	cfg, events, err := FromMap(map[string]any{
		"min_channel_width": 4.5,
		"deep_pockets":      false,
		"use_context_aware": false,
	})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.MinChannelWidth != 4.5 {
		t.Errorf("expected min channel width 4.5, got %f", cfg.MinChannelWidth)
	}
	if cfg.Enabled(CheckDeepPockets) {
		t.Error("deep_pockets should be disabled")
	}
	if cfg.UseContextAware {
		t.Error("use_context_aware should be off")
	}
	if cfg.MinToolDiameter != 3.0 {
		t.Errorf("unsupplied key should keep default, got %f", cfg.MinToolDiameter)
	}

	for _, e := range events {
		if e.Kind == EventDefaulted {
			switch e.Key {
			case "min_channel_width", "deep_pockets", "use_context_aware":
				t.Errorf("supplied key %q reported as defaulted", e.Key)
			}
		}
	}
}

func TestFromMapUnknownKey(t *testing.T) {
	_, events, err := FromMap(map[string]any{"spindle_speed": 12000})
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range events {
		if e.Kind == EventUnknownKey && e.Key == "spindle_speed" {
			found = true
		}
	}
	if !found {
		t.Error("expected an unknown-key event for spindle_speed")
	}
}

func TestFromMapIntCoercion(t *testing.T) {
	cfg, _, err := FromMap(map[string]any{"min_depth": 8})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MinDepth != 8.0 {
		t.Errorf("expected min depth 8.0, got %f", cfg.MinDepth)
	}
}

func TestFromMapTypeMismatch(t *testing.T) {
	if _, _, err := FromMap(map[string]any{"min_depth": "deep"}); err == nil {
		t.Error("expected error for string threshold")
	}
	if _, _, err := FromMap(map[string]any{"undercuts": 1}); err == nil {
		t.Error("expected error for non-bool check flag")
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.Checks[CheckUndercuts] = false
	clone.MinDepth = 99

	if !cfg.Enabled(CheckUndercuts) || cfg.MinDepth != 5.0 {
		t.Error("mutating a clone must not touch the original")
	}
}

func TestSaveAndReload(t *testing.T) {
	cfg := Default()
	cfg.DeepPocketThreshold = 42.0
	cfg.Checks[CheckSmallFeatures] = false

	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.DeepPocketThreshold != 42.0 {
		t.Errorf("expected deep pocket threshold 42.0, got %f", loaded.DeepPocketThreshold)
	}
	if loaded.Enabled(CheckSmallFeatures) {
		t.Error("small_features should stay disabled after reload")
	}
}

func TestApplyMapPreservesLoadedValues(t *testing.T) {
	cfg := Default()
	cfg.MinToolDiameter = 6.0 // pretend this came from a config file

	events, err := cfg.ApplyMap(map[string]any{"min_depth": 2.0})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.MinDepth != 2.0 {
		t.Errorf("expected min depth 2.0, got %f", cfg.MinDepth)
	}
	if cfg.MinToolDiameter != 6.0 {
		t.Errorf("ApplyMap reset min tool diameter to %f", cfg.MinToolDiameter)
	}
	for _, e := range events {
		if e.Kind == EventUnknownKey {
			t.Errorf("unexpected unknown-key event %v", e)
		}
	}
}
