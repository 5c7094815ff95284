package output

import (
	"time"

	"github.com/harrison/singlefile/internal/analyzer"
	"github.com/harrison/singlefile/internal/metadata"
)

// document is the structured form of a run shared by the JSON and YAML
// renderers.
type document struct {
	Metadata   *documentMetadata        `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Statistics documentStatistics       `json:"statistics" yaml:"statistics"`
	Codebase   []map[string]interface{} `json:"codebase" yaml:"codebase"`
}

type documentMetadata struct {
	GeneratedAt   string   `json:"generated_at" yaml:"generated_at"`
	RunID         string   `json:"run_id" yaml:"run_id"`
	AnalyzedPaths []string `json:"analyzed_paths" yaml:"analyzed_paths"`
	Formats       string   `json:"formats" yaml:"formats"`
}

type documentStatistics struct {
	Summary       documentSummary     `json:"summary" yaml:"summary"`
	Extensions    map[string]int      `json:"extensions" yaml:"extensions"`
	LargestFiles  []documentSizeEntry `json:"largest_files" yaml:"largest_files"`
	RecentChanges []documentTimeEntry `json:"recent_changes" yaml:"recent_changes"`
}

type documentSummary struct {
	TotalFiles int   `json:"total_files" yaml:"total_files"`
	TotalBytes int64 `json:"total_bytes" yaml:"total_bytes"`
}

type documentSizeEntry struct {
	Filepath string `json:"filepath" yaml:"filepath"`
	Bytes    int64  `json:"bytes" yaml:"bytes"`
}

type documentTimeEntry struct {
	Filepath string `json:"filepath" yaml:"filepath"`
	Modified string `json:"modified" yaml:"modified"`
}

// buildDocument assembles the structured document from the analyzer's
// state. includeMetadata controls the run-metadata header; includeContent
// controls whether file entries carry content and line counts.
func buildDocument(a *analyzer.Analyzer, includeMetadata, includeContent bool) *document {
	cfg := a.Config()
	stats := a.Statistics()

	doc := &document{
		Statistics: documentStatistics{
			Summary: documentSummary{
				TotalFiles: stats.TotalFiles,
				TotalBytes: stats.TotalSize,
			},
			Extensions: stats.Extensions,
		},
	}

	if includeMetadata {
		doc.Metadata = &documentMetadata{
			GeneratedAt:   time.Now().Format(time.RFC3339),
			RunID:         a.RunID(),
			AnalyzedPaths: cfg.Paths,
			Formats:       cfg.Formats,
		}
	}

	for _, entry := range stats.LargestFiles {
		doc.Statistics.LargestFiles = append(doc.Statistics.LargestFiles, documentSizeEntry{
			Filepath: a.DisplayPath(entry.Path),
			Bytes:    entry.Size,
		})
	}
	for _, entry := range stats.RecentlyModified {
		doc.Statistics.RecentChanges = append(doc.Statistics.RecentChanges, documentTimeEntry{
			Filepath: a.DisplayPath(entry.Path),
			Modified: entry.Modified.Format(time.RFC3339),
		})
	}

	fields := metadata.EffectiveFields(cfg.MetadataAdd, cfg.MetadataRemove)
	for _, rec := range sortedRecords(a) {
		doc.Codebase = append(doc.Codebase, buildFileEntry(rec, fields, includeContent, cfg.ForceBinaryContent))
	}
	return doc
}

// buildFileEntry renders one record as a key-value entry. Stock fields are
// gated by the effective field set; plugin fields in Extra are present only
// when their plugin fired. is_binary appears only when true.
func buildFileEntry(rec *metadata.FileRecord, fields metadata.FieldSet, includeContent, forceBinary bool) map[string]interface{} {
	entry := make(map[string]interface{})

	if fields.Has("path") {
		entry["filepath"] = rec.DisplayPath
	}
	if fields.Has("size") {
		entry["size"] = rec.Size
	}
	if fields.Has("modified") {
		entry["modified"] = rec.Modified.Format(time.RFC3339)
	}
	if fields.Has("extension") {
		entry["extension"] = rec.Extension
	}
	if rec.IsBinary {
		entry["is_binary"] = true
	}

	if includeContent {
		switch {
		case !rec.IsBinary:
			entry["content"] = rec.Content
			entry["line_count"] = rec.LineCount
		case forceBinary:
			// Base64 raw bytes, or the read-failure placeholder.
			entry["content"] = rec.Content
		}
	}

	for name, value := range rec.Extra {
		entry[name] = value
	}
	return entry
}
