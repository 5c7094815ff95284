package output

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/harrison/singlefile/internal/analyzer"
	"github.com/harrison/singlefile/internal/metadata"
)

// markdownGenerator flattens the codebase into a single Markdown document:
// an optional table of contents, optional statistics, a directory structure
// code block and every file's content framed by BEGIN/END headings.
type markdownGenerator struct {
	a *analyzer.Analyzer
}

func markdownRegistration() analyzer.Registration {
	return analyzer.Registration{
		FormatName: "markdown",
		Extensions: []string{".md", ".markdown"},
		New: func(a *analyzer.Analyzer) analyzer.Generator {
			return &markdownGenerator{a: a}
		},
	}
}

func (g *markdownGenerator) GenerateOutput(targetPath string) error {
	return writeArtifact(targetPath, []byte(g.buildDocument()))
}

// buildDocument renders the full Markdown document. The HTML renderer also
// feeds this through a Markdown-to-HTML conversion.
func (g *markdownGenerator) buildDocument() string {
	cfg := g.a.Config()
	records := sortedRecords(g.a)
	fields := metadata.EffectiveFields(cfg.MetadataAdd, cfg.MetadataRemove)

	var lines []string
	lines = append(lines,
		"# Flattened Codebase",
		fmt.Sprintf("_Generated on %s_", time.Now().Format("2006-01-02 15:04:05")),
		"",
		"## Scan Metadata",
		fmt.Sprintf("- **run_id:** %s", g.a.RunID()),
		fmt.Sprintf("- **paths:** %s", strings.Join(cfg.Paths, ", ")),
		"",
	)

	if cfg.MarkdownStats {
		lines = append(lines, g.statisticsSection()...)
	}

	if cfg.MarkdownTOC && len(records) > 0 {
		lines = append(lines, "## Table of Contents")
		for _, rec := range records {
			lines = append(lines, fmt.Sprintf("- [%s](#%s)", rec.DisplayPath, anchorFor(rec.DisplayPath)))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "## Directory Structure", "```")
	lines = append(lines, strings.TrimRight(g.directoryStructure(records), "\n"))
	lines = append(lines, "```", "")

	lines = append(lines, "## Flattened File Contents", "")
	for _, rec := range records {
		lines = append(lines, g.fileSection(rec, fields)...)
	}

	return strings.Join(lines, "\n")
}

// statisticsSection renders the optional codebase statistics block.
func (g *markdownGenerator) statisticsSection() []string {
	stats := g.a.Statistics()

	lines := []string{
		"## Codebase Statistics",
		fmt.Sprintf("- **Total Files:** %d", stats.TotalFiles),
		fmt.Sprintf("- **Total Size:** %s", metadata.FormatSize(stats.TotalSize)),
	}

	if len(stats.Extensions) > 0 {
		lines = append(lines, "- **Extensions Distribution:**")
		exts := make([]string, 0, len(stats.Extensions))
		for ext := range stats.Extensions {
			exts = append(exts, ext)
		}
		sort.Strings(exts)
		for _, ext := range exts {
			label := ext
			if label == "" {
				label = "[no extension]"
			}
			lines = append(lines, fmt.Sprintf("  - %s: %d", label, stats.Extensions[ext]))
		}
	}
	return append(lines, "")
}

// directoryStructure renders one tree per directory root.
func (g *markdownGenerator) directoryStructure(records []*metadata.FileRecord) string {
	var sb strings.Builder
	for _, root := range g.a.Config().Paths {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		under := recordsUnder(abs, records)
		if len(under) == 0 {
			continue
		}
		sb.WriteString(buildTree(filepath.Base(abs), abs, under).String())
	}
	if sb.Len() == 0 {
		sb.WriteString("(no files)\n")
	}
	return sb.String()
}

// fileSection renders one file: BEGIN heading with anchor, metadata
// bullets, fenced content, END heading.
func (g *markdownGenerator) fileSection(rec *metadata.FileRecord, fields metadata.FieldSet) []string {
	cfg := g.a.Config()

	lines := []string{
		fmt.Sprintf("### %s BEGIN ### <a name=%q></a>", rec.DisplayPath, anchorFor(rec.DisplayPath)),
	}

	var meta []string
	if fields.Has("size") {
		meta = append(meta, fmt.Sprintf("- **size**: %d", rec.Size))
	}
	if fields.Has("modified") {
		meta = append(meta, fmt.Sprintf("- **modified**: %s", rec.Modified.Format("2006-01-02 15:04:05")))
	}
	if fields.Has("extension") && rec.Extension != "" {
		meta = append(meta, fmt.Sprintf("- **extension**: %s", rec.Extension))
	}
	if !rec.IsBinary {
		meta = append(meta, fmt.Sprintf("- **line_count**: %d", rec.LineCount))
	} else {
		meta = append(meta, "- **is_binary**: true")
	}
	extraNames := make([]string, 0, len(rec.Extra))
	for name := range rec.Extra {
		extraNames = append(extraNames, name)
	}
	sort.Strings(extraNames)
	for _, name := range extraNames {
		meta = append(meta, fmt.Sprintf("- **%s**: %s", name, rec.Extra[name]))
	}
	if len(meta) > 0 {
		lines = append(lines, "**Metadata:**")
		lines = append(lines, meta...)
		lines = append(lines, "")
	}

	fence := "```"
	if cfg.MarkdownSyntax && !rec.IsBinary {
		fence += languageHint(rec.Extension)
	}
	lines = append(lines, fence, strings.TrimRight(rec.Content, " \t\r\n"), "```")

	lines = append(lines, fmt.Sprintf("### %s END ###", rec.DisplayPath), "")
	return lines
}

// languageHints maps file extensions to fenced code block language tags.
var languageHints = map[string]string{
	"py":   "python",
	"go":   "go",
	"js":   "javascript",
	"jsx":  "jsx",
	"ts":   "typescript",
	"tsx":  "tsx",
	"rb":   "ruby",
	"rs":   "rust",
	"c":    "c",
	"h":    "c",
	"cpp":  "cpp",
	"hpp":  "cpp",
	"cs":   "csharp",
	"java": "java",
	"kt":   "kotlin",
	"sh":   "bash",
	"bash": "bash",
	"zsh":  "bash",
	"ps1":  "powershell",
	"html": "html",
	"htm":  "html",
	"css":  "css",
	"scss": "scss",
	"json": "json",
	"yaml": "yaml",
	"yml":  "yaml",
	"toml": "toml",
	"xml":  "xml",
	"sql":  "sql",
	"md":   "markdown",
	"txt":  "text",
}

// languageHint returns the fence language tag for an extension, falling
// back to the extension itself.
func languageHint(ext string) string {
	if hint, ok := languageHints[ext]; ok {
		return hint
	}
	return ext
}

var anchorPattern = regexp.MustCompile(`[^a-z0-9]+`)

// anchorFor derives a stable heading anchor from a display path.
func anchorFor(displayPath string) string {
	anchor := anchorPattern.ReplaceAllString(strings.ToLower(displayPath), "-")
	return strings.Trim(anchor, "-")
}
