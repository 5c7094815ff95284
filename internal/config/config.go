// Package config defines singlefile's run configuration and its JSON
// config-file loading and flag-merging rules.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// HistoryConfig represents the optional run-history store configuration.
type HistoryConfig struct {
	// Enabled turns on recording of scan runs to the history database.
	Enabled bool `json:"enabled"`

	// DBPath is the path to the SQLite history database.
	DBPath string `json:"db_path"`
}

// Config represents singlefile configuration options. Values come from
// defaults, then an optional JSON config file, then CLI flags (highest
// precedence).
type Config struct {
	// Paths are the root paths to scan (files or directories).
	Paths []string `json:"paths"`

	// OutputFile is where artifacts are written. When multiple formats are
	// requested, each format replaces the suffix with its own extension.
	OutputFile string `json:"output_file"`

	// Formats is a comma-separated list of output format names, or the
	// "default" sentinel to resolve by the output file's extension.
	Formats string `json:"formats"`

	// Depth bounds directory recursion (0 = unlimited).
	Depth int `json:"depth"`

	// AbsolutePaths renders display paths as absolute instead of
	// relative-with-"./".
	AbsolutePaths bool `json:"absolute_paths"`

	// IgnoreErrors makes per-file I/O errors non-fatal (tolerant mode).
	IgnoreErrors bool `json:"ignore_errors"`

	// ForceBinaryContent stores base64 raw bytes for binary files instead
	// of the skip placeholder.
	ForceBinaryContent bool `json:"force_binary_content"`

	// ExcludeDirs / ExcludeFiles are regex patterns rejecting entries.
	ExcludeDirs  []string `json:"exclude_dirs"`
	ExcludeFiles []string `json:"exclude_files"`

	// IncludeDirs / IncludeFiles, when set, require entries to match.
	IncludeDirs  []string `json:"include_dirs"`
	IncludeFiles []string `json:"include_files"`

	// Extensions is an allow-list of file extensions (without dot);
	// ExcludeExtensions is the corresponding deny-list.
	Extensions        []string `json:"extensions"`
	ExcludeExtensions []string `json:"exclude_extensions"`

	// MetadataAdd / MetadataRemove adjust the effective metadata field set.
	MetadataAdd    []string `json:"metadata_add"`
	MetadataRemove []string `json:"metadata_remove"`

	// Workers is the number of concurrent metadata assembly workers.
	Workers int `json:"workers"`

	// DisabledPlugins lists output plugin names removed before the run.
	DisabledPlugins []string `json:"disabled_plugins"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error).
	LogLevel string `json:"log_level"`

	// LogDir, when non-empty, enables per-run file logging in that
	// directory.
	LogDir string `json:"log_dir"`

	// JSON output plugin options.
	JSONPretty   bool `json:"json_pretty"`
	JSONContent  bool `json:"json_content"`
	JSONMetadata bool `json:"json_metadata"`

	// Markdown output plugin options.
	MarkdownTOC    bool `json:"md_toc"`
	MarkdownStats  bool `json:"md_stats"`
	MarkdownSyntax bool `json:"md_syntax"`

	// History contains run-history store configuration.
	History HistoryConfig `json:"history"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Paths:      []string{"."},
		OutputFile: "output",
		Formats:    "default",
		Depth:      0, // Unlimited
		Workers:    1,
		LogLevel:   "info",
		// JSON artifacts carry content, a metadata header and indentation
		// unless explicitly switched off.
		JSONPretty:   true,
		JSONContent:  true,
		JSONMetadata: true,
		History: HistoryConfig{
			Enabled: false,
			DBPath:  filepath.Join(".singlefile", "history.db"),
		},
	}
}

// LoadConfig loads configuration from the specified JSON file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
// Keys absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist, return defaults (not an error)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal over the defaults so absent keys merge cleanly.
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .singlefile/config.json in the
// specified directory. If the directory or file doesn't exist, returns
// default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".singlefile", "config.json"))
}

// FlagOverrides carries CLI flag values to merge into a Config. Nil fields
// mean "flag not set"; non-nil values override the config file.
type FlagOverrides struct {
	Paths              *[]string
	OutputFile         *string
	Formats            *string
	Depth              *int
	AbsolutePaths      *bool
	IgnoreErrors       *bool
	ForceBinaryContent *bool
	ExcludeDirs        *[]string
	ExcludeFiles       *[]string
	IncludeDirs        *[]string
	IncludeFiles       *[]string
	Extensions         *[]string
	ExcludeExtensions  *[]string
	MetadataAdd        *[]string
	MetadataRemove     *[]string
	Workers            *int
	DisabledPlugins    *[]string
	LogLevel           *string
	LogDir             *string
	JSONPretty         *bool
	JSONContent        *bool
	JSONMetadata       *bool
	MarkdownTOC        *bool
	MarkdownStats      *bool
	MarkdownSyntax     *bool
}

// MergeWithFlags merges CLI flags into the configuration. Non-nil values
// override configuration values, so flags take precedence over the config
// file.
func (c *Config) MergeWithFlags(o FlagOverrides) {
	if o.Paths != nil {
		c.Paths = *o.Paths
	}
	if o.OutputFile != nil {
		c.OutputFile = *o.OutputFile
	}
	if o.Formats != nil {
		c.Formats = *o.Formats
	}
	if o.Depth != nil {
		c.Depth = *o.Depth
	}
	if o.AbsolutePaths != nil {
		c.AbsolutePaths = *o.AbsolutePaths
	}
	if o.IgnoreErrors != nil {
		c.IgnoreErrors = *o.IgnoreErrors
	}
	if o.ForceBinaryContent != nil {
		c.ForceBinaryContent = *o.ForceBinaryContent
	}
	if o.ExcludeDirs != nil {
		c.ExcludeDirs = *o.ExcludeDirs
	}
	if o.ExcludeFiles != nil {
		c.ExcludeFiles = *o.ExcludeFiles
	}
	if o.IncludeDirs != nil {
		c.IncludeDirs = *o.IncludeDirs
	}
	if o.IncludeFiles != nil {
		c.IncludeFiles = *o.IncludeFiles
	}
	if o.Extensions != nil {
		c.Extensions = *o.Extensions
	}
	if o.ExcludeExtensions != nil {
		c.ExcludeExtensions = *o.ExcludeExtensions
	}
	if o.MetadataAdd != nil {
		c.MetadataAdd = *o.MetadataAdd
	}
	if o.MetadataRemove != nil {
		c.MetadataRemove = *o.MetadataRemove
	}
	if o.Workers != nil {
		c.Workers = *o.Workers
	}
	if o.DisabledPlugins != nil {
		c.DisabledPlugins = *o.DisabledPlugins
	}
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
	if o.LogDir != nil {
		c.LogDir = *o.LogDir
	}
	if o.JSONPretty != nil {
		c.JSONPretty = *o.JSONPretty
	}
	if o.JSONContent != nil {
		c.JSONContent = *o.JSONContent
	}
	if o.JSONMetadata != nil {
		c.JSONMetadata = *o.JSONMetadata
	}
	if o.MarkdownTOC != nil {
		c.MarkdownTOC = *o.MarkdownTOC
	}
	if o.MarkdownStats != nil {
		c.MarkdownStats = *o.MarkdownStats
	}
	if o.MarkdownSyntax != nil {
		c.MarkdownSyntax = *o.MarkdownSyntax
	}
}

// PrimaryRoot returns the first configured root path, the base that
// relative display paths are computed against.
func (c *Config) PrimaryRoot() string {
	if len(c.Paths) == 0 {
		return "."
	}
	return c.Paths[0]
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	if len(c.Paths) == 0 {
		return fmt.Errorf("at least one scan path is required")
	}

	if c.OutputFile == "" {
		return fmt.Errorf("output_file cannot be empty")
	}

	if c.Depth < 0 {
		return fmt.Errorf("depth must be >= 0, got %d", c.Depth)
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}
