package config

import (
	"fmt"
)

// EventKind classifies a configuration merge event.
type EventKind int

const (
	// EventDefaulted marks a required key the caller did not supply;
	// the default value was used. Informational, never fatal.
	EventDefaulted EventKind = iota
	// EventUnknownKey marks a supplied key that no threshold matches;
	// the value was ignored.
	EventUnknownKey
)

// Event records one non-fatal observation made while merging a partial
// configuration over the defaults.
type Event struct {
	Kind EventKind
	Key  string
}

func (e Event) String() string {
	switch e.Kind {
	case EventDefaulted:
		return fmt.Sprintf("config: %q not supplied, using default", e.Key)
	case EventUnknownKey:
		return fmt.Sprintf("config: unknown key %q ignored", e.Key)
	default:
		return fmt.Sprintf("config: event on %q", e.Key)
	}
}

// FromMap builds a Config by merging a flat partial mapping over the
// defaults. Supplied values win; every required key missing from the map
// is filled from Default and reported as an EventDefaulted event; unknown
// keys are ignored with an EventUnknownKey event. Type mismatches are
// errors.
func FromMap(values map[string]any) (*Config, []Event, error) {
	cfg := Default()
	events, err := cfg.ApplyMap(values)
	if err != nil {
		return nil, nil, err
	}
	return cfg, events, nil
}

// ApplyMap merges a flat partial mapping over the receiver in place,
// with the same key handling and events as FromMap.
func (cfg *Config) ApplyMap(values map[string]any) ([]Event, error) {
	var events []Event

	seen := make(map[string]bool, len(values))
	take := func(key string, apply func(v any) error) error {
		v, ok := values[key]
		if !ok {
			events = append(events, Event{Kind: EventDefaulted, Key: key})
			return nil
		}
		seen[key] = true
		if err := apply(v); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
		return nil
	}

	floatKeys := []struct {
		key string
		dst *float64
	}{
		{"min_tool_diameter", &cfg.MinToolDiameter},
		{"min_channel_width", &cfg.MinChannelWidth},
		{"steep_angle_threshold", &cfg.SteepAngleThreshold},
		{"deep_pocket_threshold", &cfg.DeepPocketThreshold},
		{"min_depth", &cfg.MinDepth},
	}
	for _, fk := range floatKeys {
		dst := fk.dst
		if err := take(fk.key, func(v any) error {
			f, err := toFloat(v)
			if err != nil {
				return err
			}
			*dst = f
			return nil
		}); err != nil {
			return nil, err
		}
	}

	if err := take("use_context_aware", func(v any) error {
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
		cfg.UseContextAware = b
		return nil
	}); err != nil {
		return nil, err
	}

	for _, name := range CheckNames {
		name := name
		if err := take(name, func(v any) error {
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("expected bool, got %T", v)
			}
			cfg.Checks[name] = b
			return nil
		}); err != nil {
			return nil, err
		}
	}

	for key := range values {
		if !seen[key] {
			events = append(events, Event{Kind: EventUnknownKey, Key: key})
		}
	}
	return events, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
