// Package config loads SDK and CLI settings.
//
// Sources apply in order: defaults, YAML file, environment, explicit
// overrides. The result is validated once all sources are merged.
package config

import (
	stdErrors "errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/divvi-xyz/divvi-sdk/go/application/referral"
	"github.com/divvi-xyz/divvi-sdk/go/domain/errors"
	"github.com/divvi-xyz/divvi-sdk/go/domain/ports"
	"github.com/divvi-xyz/divvi-sdk/go/infrastructure/parser"
	sdklog "github.com/divvi-xyz/divvi-sdk/go/log"
)

// Environment variables read by Load.
const (
	EnvReferralURL         = "DIVVI_BASE_URL"
	EnvAttributionEventURL = "DIVVI_ATTRIBUTION_EVENT_URL"
	EnvLogLevel            = "DIVVI_LOG_LEVEL"
)

// Config holds endpoint and logging settings.
type Config struct {
	ReferralURL         string `yaml:"referral_url" validate:"required,url"`
	AttributionEventURL string `yaml:"attribution_event_url" validate:"required,url"`
	LogLevel            string `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	// TimeoutMs bounds each HTTP request made by the CLI. Zero means no timeout.
	TimeoutMs int `yaml:"timeout_ms" validate:"gte=0"`
}

// Default returns the production settings.
func Default() Config {
	return Config{
		ReferralURL:         referral.DefaultReferralURL,
		AttributionEventURL: referral.DefaultAttributionEventURL,
		LogLevel:            "info",
	}
}

// Timeout returns TimeoutMs as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() slog.Level {
	lvl, _ := sdklog.ParseLevel(c.LogLevel)
	return lvl
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field and reports the first failure as a ConfigError.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stdErrors.As(err, &verrs) || len(verrs) == 0 {
		return &errors.ConfigError{Err: err}
	}
	fe := verrs[0]
	return &errors.ConfigError{
		Field: fe.Field(),
		Err:   fmt.Errorf("value %v does not satisfy %q", fe.Value(), fe.Tag()),
	}
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

type loadConfig struct {
	parser    ports.ConfigParser
	lookupEnv func(string) (string, bool)
	readFile  func(string) ([]byte, error)
	overrides Overrides
}

func defaultLoadConfig() loadConfig {
	return loadConfig{
		parser:    parser.NewStrictYamlConfigParser(),
		lookupEnv: os.LookupEnv,
		readFile:  os.ReadFile,
	}
}

// WithParser replaces the config file parser.
func WithParser(p ports.ConfigParser) LoadOption {
	return func(c *loadConfig) {
		c.parser = p
	}
}

// WithLookupEnv replaces the environment lookup.
func WithLookupEnv(fn func(string) (string, bool)) LoadOption {
	return func(c *loadConfig) {
		c.lookupEnv = fn
	}
}

// WithReadFile replaces the file reader.
func WithReadFile(fn func(string) ([]byte, error)) LoadOption {
	return func(c *loadConfig) {
		c.readFile = fn
	}
}

// WithOverrides applies values keyed by YAML field name after every other source.
func WithOverrides(o Overrides) LoadOption {
	return func(c *loadConfig) {
		c.overrides = o
	}
}

// Load merges all sources into a validated Config. An empty path skips the file.
func Load(path string, opts ...LoadOption) (*Config, error) {
	lc := defaultLoadConfig()
	for _, opt := range opts {
		opt(&lc)
	}

	cfg := Default()
	if path != "" {
		data, err := lc.readFile(path)
		if err != nil {
			return nil, &errors.ConfigError{Err: fmt.Errorf("read %s: %w", path, err)}
		}
		if err := lc.parser.Parse(data, &cfg); err != nil {
			return nil, &errors.ConfigError{Err: fmt.Errorf("%s: %w", path, err)}
		}
	}

	applyEnv(&cfg, lc.lookupEnv)

	if err := applyOverrides(&cfg, lc.overrides); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvReferralURL); ok && v != "" {
		cfg.ReferralURL = v
	}
	if v, ok := lookup(EnvAttributionEventURL); ok && v != "" {
		cfg.AttributionEventURL = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
}
