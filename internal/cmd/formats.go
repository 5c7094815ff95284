package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/singlefile/internal/analyzer"
	"github.com/harrison/singlefile/internal/output"
)

// NewFormatsCommand creates the formats command
func NewFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the available output formats",
		Long: `Formats lists every registered output plugin with the filename
extensions it claims. The extensions drive implicit format resolution:
with no --formats value, the output file's extension selects the plugin.`,
		RunE: runFormats,
	}
}

// runFormats implements the formats command logic
func runFormats(cmd *cobra.Command, args []string) error {
	registry := analyzer.NewRegistry()
	for _, reg := range output.Registrations() {
		if err := registry.Register(reg); err != nil {
			return fmt.Errorf("failed to register output plugin: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Available output formats:\n\n")
	for _, reg := range registry.Formats() {
		fmt.Fprintf(out, "  %-10s %s\n", reg.FormatName, strings.Join(reg.Extensions, ", "))
	}
	return nil
}
