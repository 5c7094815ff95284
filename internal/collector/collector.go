// Package collector walks root paths and produces the ordered sequence of
// admitted files for a scan.
//
// Traversal is depth-first with lexicographically sorted children. At each
// level, admitted subdirectories are fully explored before any file sibling
// is yielded, so a deeper file always precedes its parent's file siblings in
// the output sequence.
package collector

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/harrison/singlefile/internal/logger"
	"github.com/harrison/singlefile/internal/matcher"
)

// RootKind classifies a scan root before traversal. A file root is forced
// into the scan without filtering; a missing root is a configuration error.
type RootKind int

const (
	// DirectoryRoot is an existing directory to be walked.
	DirectoryRoot RootKind = iota
	// FileRoot is an existing regular file, included without filtering.
	FileRoot
	// MissingRoot does not exist on the filesystem.
	MissingRoot
)

// String returns a human-readable name for the root kind.
func (k RootKind) String() string {
	switch k {
	case DirectoryRoot:
		return "directory"
	case FileRoot:
		return "file"
	case MissingRoot:
		return "missing"
	default:
		return "unknown"
	}
}

// ClassifyRoot stats the given path and reports what kind of root it is.
// A stat failure other than "does not exist" is returned alongside
// MissingRoot.
func ClassifyRoot(path string) (RootKind, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return MissingRoot, nil
		}
		return MissingRoot, fmt.Errorf("failed to stat root %s: %w", path, err)
	}
	if info.IsDir() {
		return DirectoryRoot, nil
	}
	return FileRoot, nil
}

// Collector walks directory roots applying a matcher and a depth bound.
type Collector struct {
	matcher      *matcher.Matcher
	maxDepth     int // 0 = unlimited; N > 0 blocks descent once depth >= N
	ignoreErrors bool
	log          logger.Logger
}

// New creates a Collector. maxDepth 0 means unlimited depth. When
// ignoreErrors is true, non-permission listing errors are logged and the
// affected directory contributes no children; when false they abort the walk.
// Permission errors are always non-fatal.
func New(m *matcher.Matcher, maxDepth int, ignoreErrors bool, log logger.Logger) *Collector {
	return &Collector{
		matcher:      m,
		maxDepth:     maxDepth,
		ignoreErrors: ignoreErrors,
		log:          log,
	}
}

// Collect returns the ordered sequence of admitted absolute file paths under
// root. A FileRoot bypasses all filtering (forced inclusion). A MissingRoot
// is an error.
func (c *Collector) Collect(root string) ([]string, error) {
	kind, err := ClassifyRoot(root)
	if err != nil {
		return nil, err
	}

	switch kind {
	case MissingRoot:
		return nil, fmt.Errorf("root path does not exist: %s", root)
	case FileRoot:
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %s: %w", root, err)
		}
		return []string{abs}, nil
	}

	var files []string
	if err := c.walk(root, 0, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// walk recursively collects admitted files under dir. depth is the depth of
// dir itself relative to the root (root = 0).
func (c *Collector) walk(dir string, depth int, out *[]string) error {
	if c.maxDepth > 0 && depth >= c.maxDepth {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			c.warnf("permission denied accessing %s", dir)
			return nil
		}
		if c.ignoreErrors {
			c.warnf("error reading %s: %v", dir, err)
			return nil
		}
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	// os.ReadDir sorts by name already; keep an explicit sort so the
	// ordering contract does not depend on that implementation detail.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	// Subdirectories first, then file siblings.
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if !c.matcher.ShouldInclude(entry.Name(), true) {
			continue
		}
		if err := c.walk(filepath.Join(dir, entry.Name()), depth+1, out); err != nil {
			return err
		}
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !c.matcher.ShouldInclude(entry.Name(), false) {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(dir, entry.Name()))
		if err != nil {
			if c.ignoreErrors {
				c.warnf("failed to resolve path %s: %v", entry.Name(), err)
				continue
			}
			return fmt.Errorf("failed to resolve path %s: %w", entry.Name(), err)
		}
		*out = append(*out, abs)
	}

	return nil
}

func (c *Collector) warnf(format string, args ...interface{}) {
	if c.log != nil {
		c.log.LogWarn(fmt.Sprintf(format, args...))
	}
}
