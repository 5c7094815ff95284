package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/singlefile/internal/analyzer"
	"github.com/harrison/singlefile/internal/config"
	"github.com/harrison/singlefile/internal/history"
	"github.com/harrison/singlefile/internal/logger"
	"github.com/harrison/singlefile/internal/output"
)

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [path]...",
		Short: "Scan roots and render flattened output artifacts",
		Long: `Scan walks the given root paths (default: current directory), assembles
per-file metadata and content, and writes one artifact per requested
output format.

Configuration is loaded from .singlefile/config.json if present.
CLI flags override configuration file settings.

Examples:
  # Flatten the current directory to output.txt
  singlefile scan -o output.txt

  # Scan a project, JSON and Markdown artifacts side by side
  singlefile scan ./project -o report.txt -f json,markdown

  # Only Python and Go sources, two levels deep
  singlefile scan ./src --extensions py,go --depth 2

  # Keep going past unreadable files, embed binary content
  singlefile scan ./data --ignore-errors --force-binary-content

  # Trim and extend the metadata fields
  singlefile scan --metadata-remove modified --metadata-add md5 -o out.json`,
		RunE: runScan,
	}

	cmd.Flags().StringP("output", "o", "", "Output file path (format resolution uses its extension)")
	cmd.Flags().StringP("formats", "f", "", "Comma-separated output formats (default: resolve by output extension)")
	cmd.Flags().String("config", "", "Path to config file (default: .singlefile/config.json)")
	cmd.Flags().Int("depth", 0, "Maximum directory depth (0 = unlimited)")
	cmd.Flags().Bool("absolute-paths", false, "Render absolute instead of relative display paths")
	cmd.Flags().Bool("ignore-errors", false, "Skip unreadable files instead of aborting")
	cmd.Flags().Bool("force-binary-content", false, "Embed base64 content for binary files")
	cmd.Flags().StringSlice("exclude-dirs", nil, "Regex patterns excluding directory names")
	cmd.Flags().StringSlice("exclude-files", nil, "Regex patterns excluding file names")
	cmd.Flags().StringSlice("include-dirs", nil, "Regex patterns directory names must match")
	cmd.Flags().StringSlice("include-files", nil, "Regex patterns file names must match")
	cmd.Flags().StringSlice("extensions", nil, "Extension allow-list (without dot)")
	cmd.Flags().StringSlice("exclude-extensions", nil, "Extension deny-list (without dot)")
	cmd.Flags().StringSlice("metadata-add", nil, "Metadata fields to add (e.g. md5, size_human)")
	cmd.Flags().StringSlice("metadata-remove", nil, "Metadata fields to remove")
	cmd.Flags().Int("workers", 1, "Concurrent metadata assembly workers")
	cmd.Flags().StringSlice("disable-plugin", nil, "Output plugin names to disable for this run")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for per-run log files")
	cmd.Flags().Bool("json-compact", false, "Minified JSON output (no indentation)")
	cmd.Flags().Bool("json-no-content", false, "Exclude file contents from JSON output")
	cmd.Flags().Bool("json-no-metadata", false, "Exclude the run metadata header from JSON output")
	cmd.Flags().Bool("md-toc", false, "Include a table of contents in Markdown output")
	cmd.Flags().Bool("md-stats", false, "Include codebase statistics in Markdown output")
	cmd.Flags().Bool("md-syntax", false, "Tag Markdown code fences with language hints")
	cmd.Flags().Bool("history", false, "Record this run in the history database")
	cmd.Flags().String("history-db", "", "Path to the history database")

	return cmd
}

// runScan implements the scan command logic
func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadScanConfig(cmd)
	if err != nil {
		return err
	}

	overrides := buildOverrides(cmd)
	if len(args) > 0 {
		paths := args
		overrides.Paths = &paths
	}
	cfg.MergeWithFlags(overrides)

	if cmd.Flags().Changed("history") {
		cfg.History.Enabled, _ = cmd.Flags().GetBool("history")
	}
	if cmd.Flags().Changed("history-db") {
		cfg.History.DBPath, _ = cmd.Flags().GetString("history-db")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	console := logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)
	var log logger.Logger = console
	var fileLog *logger.FileLogger
	if cfg.LogDir != "" {
		fileLog, err = logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to set up file logging: %w", err)
		}
		defer fileLog.Close()
		log = logger.NewMultiLogger(console, fileLog)
	}

	a := analyzer.New(cfg, log)
	for _, reg := range output.Registrations() {
		if err := a.Registry().Register(reg); err != nil {
			return fmt.Errorf("failed to register output plugin: %w", err)
		}
	}
	for _, name := range cfg.DisabledPlugins {
		a.DisablePlugin(name)
	}

	started := time.Now()
	runErr := a.Run(cmd.Context())
	duration := time.Since(started)

	stats := a.Statistics()
	console.LogScanSummary(stats.TotalFiles, stats.TotalSize, len(a.Artifacts()), duration)
	if fileLog != nil {
		fileLog.LogScanSummary(stats.TotalFiles, stats.TotalSize, len(a.Artifacts()), duration)
	}

	if cfg.History.Enabled {
		if err := recordRunHistory(cmd.Context(), cfg, a, started); err != nil {
			// History is an audit log; a failed write never fails the scan.
			log.LogWarn(fmt.Sprintf("failed to record run history: %v", err))
		}
	}

	return runErr
}

// loadScanConfig loads configuration from an explicit --config path or the
// default .singlefile/config.json in the working directory.
func loadScanConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// buildOverrides collects changed flags into a FlagOverrides so unset flags
// never clobber config-file values.
func buildOverrides(cmd *cobra.Command) config.FlagOverrides {
	o := config.FlagOverrides{}

	stringFlag := func(name string, dst **string) {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetString(name)
			*dst = &v
		}
	}
	intFlag := func(name string, dst **int) {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetInt(name)
			*dst = &v
		}
	}
	boolFlag := func(name string, dst **bool) {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetBool(name)
			*dst = &v
		}
	}
	// Inverted flags: --json-no-content means JSONContent=false.
	invertedBoolFlag := func(name string, dst **bool) {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetBool(name)
			inverted := !v
			*dst = &inverted
		}
	}
	sliceFlag := func(name string, dst **[]string) {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetStringSlice(name)
			*dst = &v
		}
	}

	stringFlag("output", &o.OutputFile)
	stringFlag("formats", &o.Formats)
	intFlag("depth", &o.Depth)
	boolFlag("absolute-paths", &o.AbsolutePaths)
	boolFlag("ignore-errors", &o.IgnoreErrors)
	boolFlag("force-binary-content", &o.ForceBinaryContent)
	sliceFlag("exclude-dirs", &o.ExcludeDirs)
	sliceFlag("exclude-files", &o.ExcludeFiles)
	sliceFlag("include-dirs", &o.IncludeDirs)
	sliceFlag("include-files", &o.IncludeFiles)
	sliceFlag("extensions", &o.Extensions)
	sliceFlag("exclude-extensions", &o.ExcludeExtensions)
	sliceFlag("metadata-add", &o.MetadataAdd)
	sliceFlag("metadata-remove", &o.MetadataRemove)
	intFlag("workers", &o.Workers)
	sliceFlag("disable-plugin", &o.DisabledPlugins)
	stringFlag("log-level", &o.LogLevel)
	stringFlag("log-dir", &o.LogDir)
	invertedBoolFlag("json-compact", &o.JSONPretty)
	invertedBoolFlag("json-no-content", &o.JSONContent)
	invertedBoolFlag("json-no-metadata", &o.JSONMetadata)
	boolFlag("md-toc", &o.MarkdownTOC)
	boolFlag("md-stats", &o.MarkdownStats)
	boolFlag("md-syntax", &o.MarkdownSyntax)

	return o
}

// recordRunHistory writes one completed run to the history store.
func recordRunHistory(ctx context.Context, cfg *config.Config, a *analyzer.Analyzer, started time.Time) error {
	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	stats := a.Statistics()
	return store.RecordRun(ctx, &history.RunRecord{
		ID:         a.RunID(),
		StartedAt:  started,
		FinishedAt: time.Now(),
		Roots:      cfg.Paths,
		Formats:    cfg.Formats,
		TotalFiles: stats.TotalFiles,
		TotalSize:  stats.TotalSize,
		Artifacts:  a.Artifacts(),
	})
}
