package metadata

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
)

// DefaultFields is the base metadata field set every run starts from.
func DefaultFields() []string {
	return []string{"path", "size", "modified", "extension"}
}

// FieldSet is the effective set of metadata field names for a run.
type FieldSet map[string]bool

// EffectiveFields derives the field set for a run: start from the defaults,
// apply removals, then apply additions. The order matters: a key named in
// both lists ends up present, because the addition restores it after the
// removal.
func EffectiveFields(add, remove []string) FieldSet {
	fields := make(FieldSet)
	for _, f := range DefaultFields() {
		fields[f] = true
	}
	for _, f := range remove {
		delete(fields, f)
	}
	for _, f := range add {
		fields[f] = true
	}
	return fields
}

// Has reports whether the field name is in the effective set.
func (fs FieldSet) Has(name string) bool {
	return fs[name]
}

// Names returns the field names in sorted order.
func (fs FieldSet) Names() []string {
	names := make([]string, 0, len(fs))
	for name := range fs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldPlugin computes one extension metadata field for a record. A plugin
// fires only when its field name is in the run's effective field set; its
// result lands in the record's Extra map under that name.
type FieldPlugin struct {
	Name    string
	Compute func(rec *FileRecord) (string, error)
}

// fieldPlugins returns the built-in extension field plugins.
func fieldPlugins() []FieldPlugin {
	return []FieldPlugin{
		{
			Name: "md5",
			Compute: func(rec *FileRecord) (string, error) {
				data, err := os.ReadFile(rec.Path)
				if err != nil {
					return "", fmt.Errorf("failed to read %s for hashing: %w", rec.Path, err)
				}
				sum := md5.Sum(data)
				return hex.EncodeToString(sum[:]), nil
			},
		},
		{
			Name: "size_human",
			Compute: func(rec *FileRecord) (string, error) {
				return FormatSize(rec.Size), nil
			},
		},
	}
}

// FormatSize renders a byte count as a human-readable string with one
// decimal place, e.g. "1.5 MB".
func FormatSize(byteCount int64) string {
	size := float64(byteCount)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f PB", size)
}
