package output

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"

	"github.com/harrison/singlefile/internal/analyzer"
)

// htmlGenerator converts the Markdown document to a standalone HTML page.
type htmlGenerator struct {
	a        *analyzer.Analyzer
	markdown goldmark.Markdown
}

func htmlRegistration() analyzer.Registration {
	return analyzer.Registration{
		FormatName: "html",
		Extensions: []string{".html", ".htm"},
		New: func(a *analyzer.Analyzer) analyzer.Generator {
			return &htmlGenerator{a: a, markdown: goldmark.New()}
		},
	}
}

const htmlShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Flattened Codebase</title>
<style>
body { font-family: sans-serif; max-width: 60em; margin: 2em auto; padding: 0 1em; }
pre { background: #f6f8fa; padding: 1em; overflow-x: auto; }
code { font-family: monospace; }
</style>
</head>
<body>
%s</body>
</html>
`

func (g *htmlGenerator) GenerateOutput(targetPath string) error {
	source := (&markdownGenerator{a: g.a}).buildDocument()

	var body bytes.Buffer
	if err := g.markdown.Convert([]byte(source), &body); err != nil {
		return fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	page := fmt.Sprintf(htmlShell, body.String())
	return writeArtifact(targetPath, []byte(page))
}
