package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/harrison/singlefile/internal/analyzer"
	"github.com/harrison/singlefile/internal/config"
	"github.com/harrison/singlefile/internal/logger"
)

// fixture builds an analyzer over a small tree with one nested text file,
// one root-level text file and one binary file.
func fixture(t *testing.T, mutate func(cfg *config.Config)) *analyzer.Analyzer {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "app.py"), []byte("print('hi')\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("# readme\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blob.bin"), []byte("\x00\x01\x02"), 0644))

	cfg := config.DefaultConfig()
	cfg.Paths = []string{dir}
	if mutate != nil {
		mutate(cfg)
	}

	a := analyzer.New(cfg, logger.NewConsoleLogger(nil, "info"))
	for _, name := range []string{"blob.bin", "readme.md", filepath.Join("src", "app.py")} {
		_, err := a.AnalyzeFile(filepath.Join(dir, name))
		require.NoError(t, err)
	}
	return a
}

func generate(t *testing.T, a *analyzer.Analyzer, format, target string) string {
	t.Helper()
	for _, reg := range Registrations() {
		if reg.FormatName == format {
			require.NoError(t, reg.New(a).GenerateOutput(target))
			data, err := os.ReadFile(target)
			require.NoError(t, err)
			return string(data)
		}
	}
	t.Fatalf("no registration for format %q", format)
	return ""
}

func TestRegistrations(t *testing.T) {
	regs := Registrations()
	require.Len(t, regs, 5)

	byName := make(map[string][]string)
	for _, reg := range regs {
		byName[reg.FormatName] = reg.Extensions
	}
	assert.Equal(t, []string{".txt"}, byName["default"])
	assert.Equal(t, []string{".json"}, byName["json"])
	assert.Equal(t, []string{".yaml", ".yml"}, byName["yaml"])
	assert.Equal(t, []string{".md", ".markdown"}, byName["markdown"])
	assert.Equal(t, []string{".html", ".htm"}, byName["html"])
}

func TestDefaultOutput(t *testing.T) {
	a := fixture(t, nil)
	out := generate(t, a, "default", filepath.Join(t.TempDir(), "out.txt"))

	// Folder structure header lists directories before files.
	assert.Contains(t, out, "    src/\n")
	assert.Contains(t, out, "        app.py\n")
	assert.Contains(t, out, "    readme.md\n")

	assert.Contains(t, out, "### . FLATTENED CONTENT ###")
	assert.Contains(t, out, "### ./src/app.py BEGIN ###\nprint('hi')\n### ./src/app.py END ###")
	assert.Contains(t, out, "### ./readme.md BEGIN ###")

	// Binary files appear in the structure but their content is skipped.
	assert.Contains(t, out, "    blob.bin\n")
	assert.NotContains(t, out, "### ./blob.bin BEGIN ###")
}

func TestDefaultOutputSortedByDisplayPath(t *testing.T) {
	a := fixture(t, nil)
	out := generate(t, a, "default", filepath.Join(t.TempDir(), "out.txt"))

	readme := strings.Index(out, "### ./readme.md BEGIN ###")
	app := strings.Index(out, "### ./src/app.py BEGIN ###")
	require.True(t, readme >= 0 && app >= 0)
	assert.Less(t, readme, app, "content sections are ordered by display path")
}

func TestDefaultOutputFileRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "only.txt")
	require.NoError(t, os.WriteFile(file, []byte("solo\n"), 0644))

	cfg := config.DefaultConfig()
	cfg.Paths = []string{file}
	a := analyzer.New(cfg, logger.NewConsoleLogger(nil, "info"))
	_, err := a.AnalyzeFile(file)
	require.NoError(t, err)

	out := generate(t, a, "default", filepath.Join(t.TempDir(), "out.txt"))
	assert.Contains(t, out, "BEGIN ###\nsolo\n")
	assert.NotContains(t, out, "FLATTENED CONTENT")
}

func TestJSONOutput(t *testing.T) {
	a := fixture(t, nil)
	out := generate(t, a, "json", filepath.Join(t.TempDir(), "out.json"))

	var doc struct {
		Metadata *struct {
			RunID string `json:"run_id"`
		} `json:"metadata"`
		Statistics struct {
			Summary struct {
				TotalFiles int `json:"total_files"`
			} `json:"summary"`
			Extensions map[string]int `json:"extensions"`
		} `json:"statistics"`
		Codebase []map[string]interface{} `json:"codebase"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	require.NotNil(t, doc.Metadata)
	assert.Equal(t, a.RunID(), doc.Metadata.RunID)
	assert.Equal(t, 3, doc.Statistics.Summary.TotalFiles)
	assert.Equal(t, 1, doc.Statistics.Extensions["py"])

	require.Len(t, doc.Codebase, 3)
	first := doc.Codebase[0]
	assert.Equal(t, "./blob.bin", first["filepath"])
	assert.Equal(t, true, first["is_binary"])
	_, hasContent := first["content"]
	assert.False(t, hasContent, "binary content omitted unless forced")

	last := doc.Codebase[2]
	assert.Equal(t, "./src/app.py", last["filepath"])
	assert.Equal(t, "print('hi')\n", last["content"])
	assert.Equal(t, float64(1), last["line_count"])
	_, hasBinary := last["is_binary"]
	assert.False(t, hasBinary, "is_binary appears only when true")
}

func TestJSONOutputFieldRemoval(t *testing.T) {
	a := fixture(t, func(cfg *config.Config) {
		cfg.MetadataRemove = []string{"size", "modified"}
	})
	out := generate(t, a, "json", filepath.Join(t.TempDir(), "out.json"))

	var doc struct {
		Codebase []map[string]interface{} `json:"codebase"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	for _, entry := range doc.Codebase {
		_, hasSize := entry["size"]
		_, hasModified := entry["modified"]
		assert.False(t, hasSize)
		assert.False(t, hasModified)
		assert.Contains(t, entry, "filepath")
	}
}

func TestJSONOutputSwitches(t *testing.T) {
	a := fixture(t, func(cfg *config.Config) {
		cfg.JSONPretty = false
		cfg.JSONContent = false
		cfg.JSONMetadata = false
	})
	out := generate(t, a, "json", filepath.Join(t.TempDir(), "out.json"))

	assert.False(t, strings.Contains(out, "\n  "), "compact output has no indentation")
	assert.NotContains(t, out, `"metadata"`)

	var doc struct {
		Codebase []map[string]interface{} `json:"codebase"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	for _, entry := range doc.Codebase {
		assert.NotContains(t, entry, "content")
		assert.NotContains(t, entry, "line_count")
	}
}

func TestJSONOutputFieldPlugin(t *testing.T) {
	a := fixture(t, func(cfg *config.Config) {
		cfg.MetadataAdd = []string{"size_human"}
	})
	out := generate(t, a, "json", filepath.Join(t.TempDir(), "out.json"))

	var doc struct {
		Codebase []map[string]interface{} `json:"codebase"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc.Codebase[0], "size_human")
}

func TestYAMLOutput(t *testing.T) {
	a := fixture(t, nil)
	out := generate(t, a, "yaml", filepath.Join(t.TempDir(), "out.yaml"))

	var doc struct {
		Metadata struct {
			RunID string `yaml:"run_id"`
		} `yaml:"metadata"`
		Statistics struct {
			Summary struct {
				TotalFiles int `yaml:"total_files"`
			} `yaml:"summary"`
		} `yaml:"statistics"`
		Codebase []map[string]interface{} `yaml:"codebase"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))

	assert.Equal(t, a.RunID(), doc.Metadata.RunID)
	assert.Equal(t, 3, doc.Statistics.Summary.TotalFiles)
	require.Len(t, doc.Codebase, 3)
	assert.Equal(t, "./blob.bin", doc.Codebase[0]["filepath"])
}

func TestMarkdownOutput(t *testing.T) {
	a := fixture(t, func(cfg *config.Config) {
		cfg.MarkdownTOC = true
		cfg.MarkdownStats = true
		cfg.MarkdownSyntax = true
	})
	out := generate(t, a, "markdown", filepath.Join(t.TempDir(), "out.md"))

	assert.Contains(t, out, "# Flattened Codebase")
	assert.Contains(t, out, "## Table of Contents")
	assert.Contains(t, out, "- [./src/app.py](#src-app-py)")
	assert.Contains(t, out, "## Codebase Statistics")
	assert.Contains(t, out, "- **Total Files:** 3")
	assert.Contains(t, out, "## Directory Structure")
	assert.Contains(t, out, "### ./src/app.py BEGIN ###")
	assert.Contains(t, out, "```python\nprint('hi')\n```")
	assert.Contains(t, out, "### ./src/app.py END ###")
}

func TestMarkdownOutputMinimal(t *testing.T) {
	a := fixture(t, nil)
	out := generate(t, a, "markdown", filepath.Join(t.TempDir(), "out.md"))

	assert.NotContains(t, out, "## Table of Contents")
	assert.NotContains(t, out, "## Codebase Statistics")
	// Without the syntax switch, fences carry no language tag.
	assert.Contains(t, out, "```\nprint('hi')\n```")
}

func TestHTMLOutput(t *testing.T) {
	a := fixture(t, nil)
	out := generate(t, a, "html", filepath.Join(t.TempDir(), "out.html"))

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "Flattened Codebase")
	assert.Contains(t, out, "</html>")
}

func TestBuildTree(t *testing.T) {
	a := fixture(t, nil)
	root, err := filepath.Abs(a.Config().Paths[0])
	require.NoError(t, err)

	tree := buildTree("project", root, sortedRecords(a))
	rendered := tree.String()

	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	assert.Equal(t, "project/", lines[0])
	// Subdirectories render before files at the same level.
	assert.Equal(t, "    src/", lines[1])
	assert.Equal(t, "        app.py", lines[2])
	assert.Equal(t, "    blob.bin", lines[3])
	assert.Equal(t, "    readme.md", lines[4])
}

func TestAnchorFor(t *testing.T) {
	assert.Equal(t, "src-app-py", anchorFor("./src/app.py"))
	assert.Equal(t, "a-b", anchorFor("A b"))
	assert.Equal(t, "", anchorFor("./"))
}
