package config

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Repo", cfg.Repo, "."},
		{"Since", cfg.Since, ""},
		{"MergesOnly", cfg.MergesOnly, false},
		{"ChangesFile", cfg.ChangesFile, ""},
		{"MaxChangeSetSize", cfg.MaxChangeSetSize, 40},
		{"ApplyDeletions", cfg.ApplyDeletions, true},
		{"Workers", cfg.Workers, 0},
		{"Shards", cfg.Shards, 0},
		{"Report", cfg.Report, "csv"},
		{"Weights", cfg.Weights, "count"},
		{"Top", cfg.Top, 0},
		{"Alpha", cfg.Alpha, 0.6},
		{"TelemetryPath", cfg.TelemetryPath, ""},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
	if len(cfg.Include) != 0 || len(cfg.Exclude) != 0 {
		t.Errorf("default filters = %v / %v, want empty", cfg.Include, cfg.Exclude)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "repo",
			envKey: "FULCRUM_REPO",
			envVal: "/src/project",
			field:  func(c Config) any { return c.Repo },
			want:   "/src/project",
		},
		{
			name:   "max_changeset_size",
			envKey: "FULCRUM_MAX_CHANGESET_SIZE",
			envVal: "25",
			field:  func(c Config) any { return c.MaxChangeSetSize },
			want:   25,
		},
		{
			name:   "apply_deletions",
			envKey: "FULCRUM_APPLY_DELETIONS",
			envVal: "false",
			field:  func(c Config) any { return c.ApplyDeletions },
			want:   false,
		},
		{
			name:   "workers",
			envKey: "FULCRUM_WORKERS",
			envVal: "3",
			field:  func(c Config) any { return c.Workers },
			want:   3,
		},
		{
			name:   "alpha",
			envKey: "FULCRUM_ALPHA",
			envVal: "0.25",
			field:  func(c Config) any { return c.Alpha },
			want:   0.25,
		},
		{
			name:   "report",
			envKey: "FULCRUM_REPORT",
			envVal: "json",
			field:  func(c Config) any { return c.Report },
			want:   "json",
		},
		{
			name:   "verbose",
			envKey: "FULCRUM_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Verbose },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			// Set env prefix so FULCRUM_* env vars map to config keys.
			viper.SetEnvPrefix("FULCRUM")
			viper.AutomaticEnv()

			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_PatternLists(t *testing.T) {
	resetViper()
	viper.Set("include", []string{`\.go$`, `\.proto$`})
	viper.Set("exclude", []string{`^vendor/`})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{`\.go$`, `\.proto$`}, cfg.Include); diff != "" {
		t.Errorf("Include mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{`^vendor/`}, cfg.Exclude); diff != "" {
		t.Errorf("Exclude mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		key string
		val any
	}{
		{"max_changeset_size", -1},
		{"workers", -2},
		{"shards", -1},
		{"top", -5},
		{"alpha", 1.5},
		{"weights", "hops"},
		{"since", "last tuesday"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			resetViper()
			viper.Set(tt.key, tt.val)
			if _, err := Load(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Load() with %s=%v = %v, want ErrInvalid", tt.key, tt.val, err)
			}
		})
	}
}

func TestSinceTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		since string
		want  time.Time
	}{
		{"", time.Time{}},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-03-01T12:30:00Z", time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := Config{Since: tt.since}.SinceTime()
		if err != nil {
			t.Errorf("SinceTime(%q): %v", tt.since, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("SinceTime(%q) = %v, want %v", tt.since, got, tt.want)
		}
	}
}
