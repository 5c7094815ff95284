package output

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/harrison/singlefile/internal/analyzer"
)

// yamlGenerator renders the structured document as YAML. It always carries
// the metadata header and file content; the field set still governs which
// stock fields each file entry shows.
type yamlGenerator struct {
	a *analyzer.Analyzer
}

func yamlRegistration() analyzer.Registration {
	return analyzer.Registration{
		FormatName: "yaml",
		Extensions: []string{".yaml", ".yml"},
		New: func(a *analyzer.Analyzer) analyzer.Generator {
			return &yamlGenerator{a: a}
		},
	}
}

func (g *yamlGenerator) GenerateOutput(targetPath string) error {
	doc := buildDocument(g.a, true, true)

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML output: %w", err)
	}

	return writeArtifact(targetPath, data)
}
