package output

import (
	"encoding/json"
	"fmt"

	"github.com/harrison/singlefile/internal/analyzer"
)

// jsonGenerator renders the structured document as JSON. Indentation, the
// metadata header and file content are each switchable through the run
// configuration.
type jsonGenerator struct {
	a *analyzer.Analyzer
}

func jsonRegistration() analyzer.Registration {
	return analyzer.Registration{
		FormatName: "json",
		Extensions: []string{".json"},
		New: func(a *analyzer.Analyzer) analyzer.Generator {
			return &jsonGenerator{a: a}
		},
	}
}

func (g *jsonGenerator) GenerateOutput(targetPath string) error {
	cfg := g.a.Config()
	doc := buildDocument(g.a, cfg.JSONMetadata, cfg.JSONContent)

	var (
		data []byte
		err  error
	)
	if cfg.JSONPretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal JSON output: %w", err)
	}

	return writeArtifact(targetPath, append(data, '\n'))
}
