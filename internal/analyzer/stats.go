package analyzer

import (
	"sort"
	"time"

	"github.com/harrison/singlefile/internal/metadata"
)

// topListLimit bounds the largest-files and recently-modified lists.
const topListLimit = 10

// FileSizeEntry is one row of the largest-files list.
type FileSizeEntry struct {
	Path string
	Size int64
}

// FileTimeEntry is one row of the recently-modified list.
type FileTimeEntry struct {
	Path     string
	Modified time.Time
}

// Stats aggregates run statistics. It is owned and mutated exclusively by
// the Analyzer; output plugins are read-only consumers.
type Stats struct {
	// TotalFiles counts newly analyzed files (cache hits do not re-count).
	TotalFiles int
	// TotalSize is the byte total across analyzed files.
	TotalSize int64
	// Extensions maps extension (without dot, "" for none) to file count.
	Extensions map[string]int
	// LargestFiles holds up to 10 files sorted by size descending.
	LargestFiles []FileSizeEntry
	// RecentlyModified holds up to 10 files sorted by modification time
	// descending.
	RecentlyModified []FileTimeEntry
}

// NewStats returns empty statistics.
func NewStats() *Stats {
	return &Stats{
		Extensions: make(map[string]int),
	}
}

// Record folds one newly analyzed file into the statistics. The bounded
// lists are re-sorted and truncated after each insertion; ties break on
// path so ordering never depends on insertion order.
func (s *Stats) Record(rec *metadata.FileRecord) {
	s.TotalFiles++
	s.TotalSize += rec.Size
	s.Extensions[rec.Extension]++

	s.LargestFiles = append(s.LargestFiles, FileSizeEntry{Path: rec.Path, Size: rec.Size})
	sort.Slice(s.LargestFiles, func(i, j int) bool {
		if s.LargestFiles[i].Size != s.LargestFiles[j].Size {
			return s.LargestFiles[i].Size > s.LargestFiles[j].Size
		}
		return s.LargestFiles[i].Path < s.LargestFiles[j].Path
	})
	if len(s.LargestFiles) > topListLimit {
		s.LargestFiles = s.LargestFiles[:topListLimit]
	}

	s.RecentlyModified = append(s.RecentlyModified, FileTimeEntry{Path: rec.Path, Modified: rec.Modified})
	sort.Slice(s.RecentlyModified, func(i, j int) bool {
		if !s.RecentlyModified[i].Modified.Equal(s.RecentlyModified[j].Modified) {
			return s.RecentlyModified[i].Modified.After(s.RecentlyModified[j].Modified)
		}
		return s.RecentlyModified[i].Path < s.RecentlyModified[j].Path
	})
	if len(s.RecentlyModified) > topListLimit {
		s.RecentlyModified = s.RecentlyModified[:topListLimit]
	}
}
