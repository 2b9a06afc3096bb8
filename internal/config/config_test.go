//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package config_test

import (
	"testing"

	"github.com/joe/treesync/internal/config"
	"github.com/joe/treesync/internal/taxonomy"
)

func TestConfigDescription(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}

	if cfg.Description() == "" {
		t.Error("Description() should not be empty")
	}
}

func TestConfigVersion(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}

	if cfg.Version() == "" {
		t.Error("Version() should not be empty")
	}
}

func TestModeDefaultsToCompare(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}
	if cfg.Mode() != taxonomy.Compare {
		t.Errorf("Mode() = %v, want Compare", cfg.Mode())
	}
}

func TestModeSelectsCopyAndCull(t *testing.T) {
	t.Parallel()

	if got := (config.Config{Copy: true}).Mode(); got != taxonomy.Copy {
		t.Errorf("Mode() with Copy = %v, want Copy", got)
	}

	if got := (config.Config{Cull: true}).Mode(); got != taxonomy.Cull {
		t.Errorf("Mode() with Cull = %v, want Cull", got)
	}
}

func TestColorEnabledExplicitOverridesTerminal(t *testing.T) {
	t.Parallel()

	on := config.Config{ColorOn: true}
	if !on.ColorEnabled(false) {
		t.Error("--color-on should force color on even when stdout is not a terminal")
	}

	off := config.Config{ColorOff: true}
	if off.ColorEnabled(true) {
		t.Error("--color-off should force color off even when stdout is a terminal")
	}

	neither := config.Config{}
	if !neither.ColorEnabled(true) {
		t.Error("with no explicit flag, color should follow the terminal detection")
	}

	if neither.ColorEnabled(false) {
		t.Error("with no explicit flag, a non-terminal should mean no color")
	}
}

func TestValidatePathsRejectsMissingPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.Config
	}{
		{name: "missing source path", cfg: config.Config{SourcePath: "", DestPath: "/some/dest"}},
		{name: "missing dest path", cfg: config.Config{SourcePath: "/some/source", DestPath: ""}},
		{name: "nonexistent source directory", cfg: config.Config{SourcePath: "/this/does/not/exist", DestPath: "/tmp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := tt.cfg.ValidatePaths(); err == nil {
				t.Error("expected ValidatePaths to return an error")
			}
		})
	}
}

func TestPostProcessConfigRejectsConflictingModeFlags(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{SourcePath: t.TempDir(), DestPath: t.TempDir(), Copy: true, Cull: true}

	if _, err := config.PostProcessConfig(cfg); err == nil {
		t.Error("expected an error when both --copy and --cull are given")
	}
}

func TestPostProcessConfigRejectsConflictingColorFlags(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{SourcePath: t.TempDir(), DestPath: t.TempDir(), ColorOn: true, ColorOff: true}

	if _, err := config.PostProcessConfig(cfg); err == nil {
		t.Error("expected an error when both --color-on and --color-off are given")
	}
}

func TestPostProcessConfigAcceptsValidConfig(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{SourcePath: t.TempDir(), DestPath: t.TempDir(), Copy: true}

	got, err := config.PostProcessConfig(cfg)
	if err != nil {
		t.Fatalf("PostProcessConfig returned an error: %v", err)
	}

	if got.Mode() != taxonomy.Copy {
		t.Errorf("Mode() = %v, want Copy", got.Mode())
	}
}

func TestToPipelineConfigCarriesFlagsThrough(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		SourcePath:   "/src",
		DestPath:     "/dst",
		Copy:         true,
		DryRun:       true,
		Include:      []string{"*.txt"},
		Exclude:      []string{"*.tmp"},
		ShowRelative: true,
	}

	pc := cfg.ToPipelineConfig(true)

	if pc.SourceRoot != "/src" || pc.DestRoot != "/dst" {
		t.Errorf("ToPipelineConfig did not carry the roots through: %+v", pc)
	}

	if pc.Mode != taxonomy.Copy {
		t.Errorf("ToPipelineConfig.Mode = %v, want Copy", pc.Mode)
	}

	if !pc.DryRun {
		t.Error("ToPipelineConfig should carry DryRun through")
	}

	if pc.ShowAbsolute {
		t.Error("ToPipelineConfig.ShowAbsolute should be false when --show-relative was given")
	}

	if len(pc.Include) != 1 || len(pc.Exclude) != 1 {
		t.Errorf("ToPipelineConfig did not carry Include/Exclude through: %+v", pc)
	}
}
