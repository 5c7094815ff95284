// Package metadata turns one file into a FileRecord: stat data, binary
// detection, content resolution through an ordered encoding chain, and a
// configurable set of metadata fields.
package metadata

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/singlefile/internal/logger"
)

const (
	// BinaryPlaceholder is stored as content for binary files when raw
	// content is not forced.
	BinaryPlaceholder = "**binary data found: skipped**"
	// BinaryReadFailure is stored when forced binary content cannot be read.
	BinaryReadFailure = "**failed to read binary data**"

	// binarySniffLen is how many leading bytes are inspected for NUL bytes.
	binarySniffLen = 1024
)

// FileRecord is the per-file metadata and content record. Records are
// immutable once cached by the analyzer.
type FileRecord struct {
	// Path is the resolved absolute path, the record's unique key.
	Path string
	// DisplayPath is the relative-with-"./" or absolute rendering of Path.
	DisplayPath string
	// Size in bytes.
	Size int64
	// Modified is the file's modification time.
	Modified time.Time
	// Extension is lowercase without the leading dot; "" if none.
	Extension string
	// IsBinary reports the NUL-byte heuristic's verdict.
	IsBinary bool
	// Content holds decoded text, a binary placeholder, or base64 raw
	// bytes when binary content is forced.
	Content string
	// LineCount is meaningful only for non-binary content.
	LineCount int
	// Encoding names the decoder that produced Content (text files only).
	Encoding string
	// LossyDecode is true when no attempted encoding accepted the bytes
	// and the replacement fallback was used.
	LossyDecode bool
	// Extra holds extension fields attached by field plugins (md5,
	// size_human) that made it into the effective field set.
	Extra map[string]string
}

// Options configures an Assembler.
type Options struct {
	// ForceBinaryContent stores base64 raw bytes for binary files instead
	// of the placeholder.
	ForceBinaryContent bool
	// AbsolutePaths renders DisplayPath as the absolute path.
	AbsolutePaths bool
	// BaseRoot is the primary scan root DisplayPath is made relative to.
	BaseRoot string
	// Fields is the effective metadata field set for the run.
	Fields FieldSet
}

// Assembler produces FileRecords. It is a pure function of file content and
// configuration; it keeps no state between calls.
type Assembler struct {
	opts    Options
	plugins []FieldPlugin
	log     logger.Logger
}

// NewAssembler creates an Assembler with the built-in field plugins.
func NewAssembler(opts Options, log logger.Logger) *Assembler {
	if opts.Fields == nil {
		opts.Fields = EffectiveFields(nil, nil)
	}
	return &Assembler{
		opts:    opts,
		plugins: fieldPlugins(),
		log:     log,
	}
}

// Assemble stats and reads the file at path and returns its FileRecord.
// Any I/O error is returned to the caller; the analyzer decides whether it
// aborts the run or skips the file.
func (a *Assembler) Assemble(path string) (*FileRecord, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", abs, err)
	}

	rec := &FileRecord{
		Path:        abs,
		DisplayPath: FormatDisplayPath(abs, a.opts.BaseRoot, a.opts.AbsolutePaths),
		Size:        info.Size(),
		Modified:    info.ModTime(),
		Extension:   extensionOf(filepath.Base(abs)),
		Extra:       make(map[string]string),
	}

	isBinary, err := a.detectBinary(abs)
	if err != nil {
		// Undeterminable files are treated as text, matching the
		// detection heuristic's lenient posture.
		a.warnf("could not determine if %s is binary: %v", abs, err)
	}
	rec.IsBinary = isBinary

	if isBinary {
		if a.opts.ForceBinaryContent {
			raw, err := os.ReadFile(abs)
			if err != nil {
				a.warnf("failed to read binary content of %s: %v", abs, err)
				rec.Content = BinaryReadFailure
			} else {
				rec.Content = base64.StdEncoding.EncodeToString(raw)
			}
		} else {
			rec.Content = BinaryPlaceholder
		}
	} else {
		raw, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", abs, err)
		}
		text, encName, lossy := DecodeText(raw)
		if lossy {
			a.warnf("replaced invalid characters while decoding %s", abs)
		}
		rec.Content = text
		rec.Encoding = encName
		rec.LossyDecode = lossy
		rec.LineCount = CountLines(text)
	}

	for _, plugin := range a.plugins {
		if !a.opts.Fields.Has(plugin.Name) {
			continue
		}
		value, err := plugin.Compute(rec)
		if err != nil {
			a.warnf("field plugin %q failed for %s: %v", plugin.Name, abs, err)
			continue
		}
		rec.Extra[plugin.Name] = value
	}

	return rec, nil
}

// detectBinary reads up to the first 1024 bytes and reports whether a NUL
// byte is present. This is a crude heuristic; exotic encodings can be
// misclassified.
func (a *Assembler) detectBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, binarySniffLen)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false, err
	}

	for _, b := range buf[:n] {
		if b == 0 {
			return true, nil
		}
	}
	return false, nil
}

// FormatDisplayPath renders path for output. With forceAbsolute it is the
// absolute path. Otherwise it is relative to base with a leading "./", or
// the absolute path when it cannot be made relative (outside base).
func FormatDisplayPath(path, base string, forceAbsolute bool) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if forceAbsolute || base == "" {
		return abs
	}

	absBase, err := filepath.Abs(base)
	if err != nil {
		return abs
	}

	rel, err := filepath.Rel(absBase, abs)
	if err != nil {
		return abs
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "..") {
		return abs
	}
	if rel == "." {
		return rel
	}
	return "./" + rel
}

// extensionOf returns the lowercase extension of name without the leading
// dot, or "" when name has none. Dotfiles have no extension.
func extensionOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

func (a *Assembler) warnf(format string, args ...interface{}) {
	if a.log != nil {
		a.log.LogWarn(fmt.Sprintf(format, args...))
	}
}
