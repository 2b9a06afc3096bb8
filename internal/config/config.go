// Package config handles application configuration and command-line
// argument parsing: the CLI's flag surface and its translation into a
// pipeline.Config the engine itself has no notion of flags or argv for.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexflint/go-arg"

	"github.com/joe/treesync/internal/pipeline"
	"github.com/joe/treesync/internal/taxonomy"
)

// Config holds the parsed command-line configuration, before translation
// into a pipeline.Config.
type Config struct {
	SourcePath string `arg:"positional,required" help:"Source directory path"`
	DestPath   string `arg:"positional,required" help:"Destination directory path"`

	Compare bool `arg:"--compare" help:"Report differences only (default mode)"`
	Copy    bool `arg:"--copy" help:"Copy missing/mismatched entries from source to destination"`
	Cull    bool `arg:"--cull" help:"Remove entries from destination that are absent from source"`

	DryRun       bool `arg:"--dry-run" help:"Perform all checks; suppress mutation"`
	Background   bool `arg:"--background" help:"Halve worker counts"`
	SkipFileRead bool `arg:"--skip-file-read" help:"Treat same-size files as identical without reading them"`

	ShowRelative bool `arg:"--show-relative" help:"Display paths relative to each tree's root"`
	ShowAbsolute bool `arg:"--show-absolute" help:"Display absolute paths (default)"`

	Verbose bool `arg:"--verbose" help:"Increase event volume (e.g. BigDir warnings)"`
	Quiet   bool `arg:"--quiet" help:"Suppress Copied/Deleted/Mismatch events on console"`

	IgnoreExtra    bool `arg:"--ignore-extra" help:"Suppress Extra mismatch events"`
	IgnoreAccess   bool `arg:"--ignore-access" help:"Suppress access-denied-class errors"`
	IgnoreUnknown  bool `arg:"--ignore-unknown" help:"Suppress unsupported-entry-type warnings"`
	IgnoreWarnings bool `arg:"--ignore-warnings" help:"Suppress all warning events"`
	IgnoreAll      bool `arg:"--ignore-all" help:"Suppress every mismatch/warning event"`

	ColorOn  bool `arg:"--color-on" help:"Force ANSI color on"`
	ColorOff bool `arg:"--color-off" help:"Force ANSI color off"`

	Include []string `arg:"--include,separate" help:"Only consider entries whose relative path matches this glob (repeatable, OR'd)"`
	Exclude []string `arg:"--exclude,separate" help:"Skip entries whose relative path matches this glob (repeatable, OR'd; applied after --include)"`

	Dashboard bool   `arg:"--dashboard" help:"Launch the terminal status dashboard instead of plain console output"`
	LogDir    string `arg:"--log-dir" help:"Directory for the log file (default: current working directory)"`
}

// Description returns the program description for go-arg.
func (Config) Description() string {
	return "Compares, copies or culls one directory tree against another"
}

// Version returns the version string for go-arg.
func (Config) Version() string {
	return "treesync 1.0.0"
}

// ParseFlags parses command-line flags and returns a validated Config.
func ParseFlags() (*Config, error) {
	cfg := &Config{}

	arg.MustParse(cfg)

	return PostProcessConfig(cfg)
}

// PostProcessConfig normalizes a parsed Config's paths, resolves the
// mode, and validates it.
func PostProcessConfig(cfg *Config) (*Config, error) {
	cfg.SourcePath = normalizePath(cfg.SourcePath)
	cfg.DestPath = normalizePath(cfg.DestPath)

	if err := cfg.ValidatePaths(); err != nil {
		return nil, err
	}

	if err := cfg.validateMode(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalizePath strips surrounding whitespace and quote characters,
// appends a path separator to a bare Windows drive letter (e.g. "C:"),
// and makes the result absolute.
func normalizePath(raw string) string {
	trimmed := strings.Trim(raw, " \t\"'")

	if len(trimmed) == 2 && trimmed[1] == ':' {
		trimmed += string(os.PathSeparator)
	}

	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return trimmed
	}

	return abs
}

// validateMode reports an error if more than one mode flag was given.
func (cfg *Config) validateMode() error {
	count := 0
	for _, b := range []bool{cfg.Compare, cfg.Copy, cfg.Cull} {
		if b {
			count++
		}
	}

	if count > 1 {
		return fmt.Errorf("only one of --compare, --copy, --cull may be given")
	}

	if cfg.ColorOn && cfg.ColorOff {
		return fmt.Errorf("only one of --color-on, --color-off may be given")
	}

	if cfg.ShowRelative && cfg.ShowAbsolute {
		return fmt.Errorf("only one of --show-relative, --show-absolute may be given")
	}

	return nil
}

// Mode resolves the selected taxonomy.Mode, defaulting to Compare.
func (cfg Config) Mode() taxonomy.Mode {
	switch {
	case cfg.Copy:
		return taxonomy.Copy
	case cfg.Cull:
		return taxonomy.Cull
	default:
		return taxonomy.Compare
	}
}

// ColorEnabled resolves the effective color setting: explicit
// --color-on/--color-off wins; otherwise color is on whenever stdout is
// a terminal, which the caller (cmd/treesync) determines and passes in
// as isTerminal.
func (cfg *Config) ColorEnabled(isTerminal bool) bool {
	switch {
	case cfg.ColorOn:
		return true
	case cfg.ColorOff:
		return false
	default:
		return isTerminal
	}
}

// ToPipelineConfig translates the parsed CLI flags into a
// pipeline.Config. colorEnabled is the already-resolved color decision
// (see ColorEnabled).
func (cfg *Config) ToPipelineConfig(colorEnabled bool) pipeline.Config {
	return pipeline.Config{
		SourceRoot: cfg.SourcePath,
		DestRoot:   cfg.DestPath,

		Mode: cfg.Mode(),

		DryRun:       cfg.DryRun,
		Background:   cfg.Background,
		SkipFileRead: cfg.SkipFileRead,

		ShowAbsolute: !cfg.ShowRelative,

		Verbose: cfg.Verbose,
		Quiet:   cfg.Quiet,

		IgnoreExtra:    cfg.IgnoreExtra,
		IgnoreAccess:   cfg.IgnoreAccess,
		IgnoreUnknown:  cfg.IgnoreUnknown,
		IgnoreWarnings: cfg.IgnoreWarnings,
		IgnoreAll:      cfg.IgnoreAll,
		ColorEnabled:   colorEnabled,

		Include: cfg.Include,
		Exclude: cfg.Exclude,
		LogDir:  cfg.LogDir,
	}
}

// ValidatePaths validates that source and destination paths are valid,
// existing directories.
func (cfg *Config) ValidatePaths() error {
	if cfg.SourcePath == "" {
		return fmt.Errorf("source path is required")
	}

	if cfg.DestPath == "" {
		return fmt.Errorf("destination path is required")
	}

	if err := validateDir("source", cfg.SourcePath); err != nil {
		return err
	}

	return validateDir("destination", cfg.DestPath)
}

func validateDir(label, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s path does not exist: %s", label, path)
	}

	if err != nil {
		return fmt.Errorf("cannot access %s path: %w", label, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s path is not a directory: %s", label, path)
	}

	return nil
}
