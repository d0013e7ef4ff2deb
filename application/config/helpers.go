package config

import (
	"fmt"

	"github.com/divvi-xyz/divvi-sdk/go/domain/errors"
)

// Overrides holds explicit values keyed by YAML field name, typically
// collected from command line flags.
type Overrides = map[string]any

// GetString extracts a string from overrides, returning (value, found).
func GetString(o Overrides, key string) (string, bool) {
	v, ok := o[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt extracts an int from overrides, handling int, int64, and float64.
func GetInt(o Overrides, key string) (int, bool) {
	v, ok := o[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func applyOverrides(cfg *Config, o Overrides) error {
	for key := range o {
		switch key {
		case "referral_url":
			s, err := mustGetString(o, key)
			if err != nil {
				return err
			}
			cfg.ReferralURL = s
		case "attribution_event_url":
			s, err := mustGetString(o, key)
			if err != nil {
				return err
			}
			cfg.AttributionEventURL = s
		case "log_level":
			s, err := mustGetString(o, key)
			if err != nil {
				return err
			}
			cfg.LogLevel = s
		case "timeout_ms":
			n, ok := GetInt(o, key)
			if !ok {
				return &errors.ConfigError{
					Field: key,
					Err:   fmt.Errorf("required int field '%s' is missing or not a number", key),
				}
			}
			cfg.TimeoutMs = n
		default:
			return &errors.ConfigError{Field: key, Err: fmt.Errorf("unknown setting")}
		}
	}
	return nil
}

func mustGetString(o Overrides, key string) (string, error) {
	s, ok := GetString(o, key)
	if !ok {
		return "", &errors.ConfigError{
			Field: key,
			Err:   fmt.Errorf("required string field '%s' is missing or not a string", key),
		}
	}
	return s, nil
}
