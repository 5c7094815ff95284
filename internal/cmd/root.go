package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for singlefile
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "singlefile",
		Short: "Flatten a codebase into single-file artifacts",
		Long: `Singlefile walks one or more root paths, gathers per-file metadata and
content, and renders the result as one artifact per requested output
format (flattened text, JSON, YAML, Markdown or HTML).

File selection is driven by built-in deny lists plus user-supplied
regex and extension filters. Binary files are detected and skipped or
base64-embedded on request.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewFormatsCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
