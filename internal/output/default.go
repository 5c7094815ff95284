package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/singlefile/internal/analyzer"
	"github.com/harrison/singlefile/internal/metadata"
)

// defaultGenerator renders the flattened-text format: a folder structure
// header per directory root followed by each file's content framed by
// BEGIN/END markers.
type defaultGenerator struct {
	a *analyzer.Analyzer
}

func defaultRegistration() analyzer.Registration {
	return analyzer.Registration{
		FormatName: "default",
		Extensions: []string{".txt"},
		New: func(a *analyzer.Analyzer) analyzer.Generator {
			return &defaultGenerator{a: a}
		},
	}
}

func (g *defaultGenerator) GenerateOutput(targetPath string) error {
	var sb strings.Builder
	records := sortedRecords(g.a)

	for _, root := range g.a.Config().Paths {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("failed to resolve root %s: %w", root, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			// Missing roots were already reported during collection.
			continue
		}

		if info.IsDir() {
			g.writeDirectorySection(&sb, abs, records)
			continue
		}
		// File roots are flattened directly, without a structure header.
		for _, rec := range records {
			if rec.Path == abs {
				writeFramed(&sb, rec)
				break
			}
		}
	}

	return writeArtifact(targetPath, []byte(sb.String()))
}

// writeDirectorySection writes one directory root: its folder structure,
// then every non-binary file's framed content between FLATTENED CONTENT
// markers.
func (g *defaultGenerator) writeDirectorySection(sb *strings.Builder, absRoot string, records []*metadata.FileRecord) {
	display := g.a.DisplayPath(absRoot)
	under := recordsUnder(absRoot, records)

	sb.WriteString(buildTree(filepath.Base(absRoot), absRoot, under).String())

	fmt.Fprintf(sb, "\n### %s FLATTENED CONTENT ###\n", display)
	for _, rec := range under {
		if rec.IsBinary {
			continue
		}
		writeFramed(sb, rec)
	}
	fmt.Fprintf(sb, "\n### %s FLATTENED CONTENT ###\n\n", display)
}

// writeFramed writes one file's content between its BEGIN and END markers,
// with trailing whitespace trimmed so the END marker always sits on the
// next line.
func writeFramed(sb *strings.Builder, rec *metadata.FileRecord) {
	fmt.Fprintf(sb, "\n### %s BEGIN ###\n", rec.DisplayPath)
	sb.WriteString(strings.TrimRight(rec.Content, " \t\r\n"))
	fmt.Fprintf(sb, "\n### %s END ###\n", rec.DisplayPath)
}
