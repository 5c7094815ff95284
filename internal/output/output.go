// Package output implements the built-in artifact renderers: the default
// flattened-text format, JSON, YAML, Markdown and HTML. Each renderer reads
// the analyzer's gathered records and statistics and writes one artifact
// through the lock-guarded atomic writer.
package output

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/harrison/singlefile/internal/analyzer"
	"github.com/harrison/singlefile/internal/filelock"
	"github.com/harrison/singlefile/internal/metadata"
)

// Registrations returns the built-in plugin registrations in their startup
// registration order.
func Registrations() []analyzer.Registration {
	return []analyzer.Registration{
		defaultRegistration(),
		jsonRegistration(),
		yamlRegistration(),
		markdownRegistration(),
		htmlRegistration(),
	}
}

// writeArtifact writes rendered bytes through the lock-guarded atomic
// writer so concurrent invocations never publish a partial artifact.
func writeArtifact(path string, data []byte) error {
	return filelock.LockAndWrite(path, data)
}

// sortedRecords returns the analyzer's records ordered by display path.
// Artifact content is sorted so it never leaks collection order.
func sortedRecords(a *analyzer.Analyzer) []*metadata.FileRecord {
	records := a.Files()
	sort.Slice(records, func(i, j int) bool {
		return records[i].DisplayPath < records[j].DisplayPath
	})
	return records
}

// recordsUnder filters records to those inside the given absolute
// directory, preserving their order.
func recordsUnder(absDir string, records []*metadata.FileRecord) []*metadata.FileRecord {
	prefix := absDir + string(filepath.Separator)
	var under []*metadata.FileRecord
	for _, rec := range records {
		if strings.HasPrefix(rec.Path, prefix) {
			under = append(under, rec)
		}
	}
	return under
}

// treeNode is one directory level of the rendered folder structure.
type treeNode struct {
	name  string
	dirs  map[string]*treeNode
	files []string
}

func newTreeNode(name string) *treeNode {
	return &treeNode{name: name, dirs: make(map[string]*treeNode)}
}

// buildTree folds the given records into a directory tree keyed by their
// path components below root.
func buildTree(rootName, root string, records []*metadata.FileRecord) *treeNode {
	tree := newTreeNode(rootName)
	for _, rec := range records {
		rel, err := filepath.Rel(root, rec.Path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		node := tree
		for _, dir := range parts[:len(parts)-1] {
			child, ok := node.dirs[dir]
			if !ok {
				child = newTreeNode(dir)
				node.dirs[dir] = child
			}
			node = child
		}
		node.files = append(node.files, parts[len(parts)-1])
	}
	return tree
}

// render writes the tree with four-space indentation, subdirectories
// before files, both sorted by name.
func (n *treeNode) render(sb *strings.Builder, level int) {
	indent := strings.Repeat("    ", level)
	sb.WriteString(indent)
	sb.WriteString(n.name)
	sb.WriteString("/\n")

	dirNames := make([]string, 0, len(n.dirs))
	for name := range n.dirs {
		dirNames = append(dirNames, name)
	}
	sort.Strings(dirNames)
	for _, name := range dirNames {
		n.dirs[name].render(sb, level+1)
	}

	files := append([]string(nil), n.files...)
	sort.Strings(files)
	for _, f := range files {
		sb.WriteString(indent)
		sb.WriteString("    ")
		sb.WriteString(f)
		sb.WriteString("\n")
	}
}

// String renders the tree from the root level.
func (n *treeNode) String() string {
	var sb strings.Builder
	n.render(&sb, 0)
	return sb.String()
}
