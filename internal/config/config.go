package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Edge weights shown by the dot report and neighbourhood output.
const (
	WeightsCount    = "count"
	WeightsDistance = "distance"
)

// ErrInvalid is returned by Load when a configured value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all runtime configuration for an analysis run.
// Values are populated from .fulcrum.yaml, FULCRUM_* env vars, and CLI flags.
type Config struct {
	Repo             string   `mapstructure:"repo"`
	Since            string   `mapstructure:"since"`
	MergesOnly       bool     `mapstructure:"merges_only"`
	Include          []string `mapstructure:"include"`
	Exclude          []string `mapstructure:"exclude"`
	ChangesFile      string   `mapstructure:"changes_file"`
	MaxChangeSetSize int      `mapstructure:"max_changeset_size"`
	ApplyDeletions   bool     `mapstructure:"apply_deletions"`
	Workers          int      `mapstructure:"workers"`
	Shards           int      `mapstructure:"shards"`
	Report           string   `mapstructure:"report"`
	Weights          string   `mapstructure:"weights"`
	Top              int      `mapstructure:"top"`
	Alpha            float64  `mapstructure:"alpha"`
	TelemetryPath    string   `mapstructure:"telemetry_path"`
	Verbose          bool     `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags, and validates the
// result.
func Load() (Config, error) {
	viper.SetDefault("repo", ".")
	viper.SetDefault("since", "")
	viper.SetDefault("merges_only", false)
	viper.SetDefault("include", []string{})
	viper.SetDefault("exclude", []string{})
	viper.SetDefault("changes_file", "")
	viper.SetDefault("max_changeset_size", 40)
	viper.SetDefault("apply_deletions", true)
	viper.SetDefault("workers", 0)
	viper.SetDefault("shards", 0)
	viper.SetDefault("report", "csv")
	viper.SetDefault("weights", WeightsCount)
	viper.SetDefault("top", 0)
	viper.SetDefault("alpha", 0.6)
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks numeric ranges, the weights choice and the since date.
func (c Config) Validate() error {
	switch {
	case c.MaxChangeSetSize < 0:
		return fmt.Errorf("%w: max_changeset_size %d is negative", ErrInvalid, c.MaxChangeSetSize)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d is negative", ErrInvalid, c.Workers)
	case c.Shards < 0:
		return fmt.Errorf("%w: shards %d is negative", ErrInvalid, c.Shards)
	case c.Top < 0:
		return fmt.Errorf("%w: top %d is negative", ErrInvalid, c.Top)
	case c.Alpha < 0 || c.Alpha > 1:
		return fmt.Errorf("%w: alpha %v outside [0, 1]", ErrInvalid, c.Alpha)
	case c.Weights != WeightsCount && c.Weights != WeightsDistance:
		return fmt.Errorf("%w: weights %q must be %q or %q", ErrInvalid, c.Weights, WeightsCount, WeightsDistance)
	}
	if _, err := c.SinceTime(); err != nil {
		return err
	}
	return nil
}

// SinceTime parses Since as a date (2006-01-02) or an RFC 3339 timestamp.
// An empty value yields the zero time, meaning all history.
func (c Config) SinceTime() (time.Time, error) {
	if c.Since == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, c.Since); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: since %q is not a date (YYYY-MM-DD) or RFC 3339 time", ErrInvalid, c.Since)
}
