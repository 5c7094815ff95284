// Package analyzer orchestrates a scan run: it walks the configured roots,
// assembles and caches per-file metadata, aggregates statistics, and
// resolves requested output formats to registered plugins.
package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/harrison/singlefile/internal/collector"
	"github.com/harrison/singlefile/internal/config"
	"github.com/harrison/singlefile/internal/logger"
	"github.com/harrison/singlefile/internal/matcher"
	"github.com/harrison/singlefile/internal/metadata"
)

// Analyzer owns the FileRecord cache, the run statistics, the plugin
// registry and the format-resolution algorithm. Every run starts from an
// empty cache and empty statistics; nothing persists across runs.
type Analyzer struct {
	cfg       *config.Config
	log       logger.Logger
	matcher   *matcher.Matcher
	collector *collector.Collector
	assembler *metadata.Assembler
	registry  *Registry
	runID     string
	baseRoot  string

	mu       sync.Mutex
	cache    map[string]*metadata.FileRecord
	order    []string // cache keys in insertion order
	inflight map[string]*inflightCall
	stats    *Stats

	artifacts []string
}

// inflightCall tracks one in-progress assembly so concurrent AnalyzeFile
// calls for the same path run the assembler at most once.
type inflightCall struct {
	done chan struct{}
	rec  *metadata.FileRecord
	err  error
}

// New creates an Analyzer for the given configuration. The plugin registry
// starts empty; the caller registers output plugins before Run.
func New(cfg *config.Config, log logger.Logger) *Analyzer {
	baseRoot, err := filepath.Abs(cfg.PrimaryRoot())
	if err != nil {
		baseRoot = cfg.PrimaryRoot()
	}
	// A file root anchors display paths at its parent directory.
	if info, statErr := os.Stat(baseRoot); statErr == nil && !info.IsDir() {
		baseRoot = filepath.Dir(baseRoot)
	}

	m := matcher.New(matcher.Options{
		ExcludeDirs:       cfg.ExcludeDirs,
		ExcludeFiles:      cfg.ExcludeFiles,
		IncludeDirs:       cfg.IncludeDirs,
		IncludeFiles:      cfg.IncludeFiles,
		Extensions:        cfg.Extensions,
		ExcludeExtensions: cfg.ExcludeExtensions,
	}, log)

	fields := metadata.EffectiveFields(cfg.MetadataAdd, cfg.MetadataRemove)

	return &Analyzer{
		cfg:     cfg,
		log:     log,
		matcher: m,
		collector: collector.New(m, cfg.Depth, cfg.IgnoreErrors, log),
		assembler: metadata.NewAssembler(metadata.Options{
			ForceBinaryContent: cfg.ForceBinaryContent,
			AbsolutePaths:      cfg.AbsolutePaths,
			BaseRoot:           baseRoot,
			Fields:             fields,
		}, log),
		registry: NewRegistry(),
		runID:    uuid.NewString(),
		baseRoot: baseRoot,
		cache:    make(map[string]*metadata.FileRecord),
		inflight: make(map[string]*inflightCall),
		stats:    NewStats(),
	}
}

// RunID returns the unique identifier of this run.
func (a *Analyzer) RunID() string { return a.runID }

// Config returns the resolved run configuration. Plugins treat it as
// read-only.
func (a *Analyzer) Config() *config.Config { return a.cfg }

// Registry returns the plugin registry for pre-run population.
func (a *Analyzer) Registry() *Registry { return a.registry }

// DisablePlugin removes a registered plugin by format name.
func (a *Analyzer) DisablePlugin(name string) {
	a.registry.Remove(name)
}

// DisplayPath renders an absolute path as its display form: relative to the
// primary root with a leading "./", or absolute per configuration.
func (a *Analyzer) DisplayPath(path string) string {
	return metadata.FormatDisplayPath(path, a.baseRoot, a.cfg.AbsolutePaths)
}

// Files returns the cached records in insertion order. The returned slice
// is a snapshot; the records themselves are shared and must not be mutated.
func (a *Analyzer) Files() []*metadata.FileRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	records := make([]*metadata.FileRecord, 0, len(a.order))
	for _, path := range a.order {
		records = append(records, a.cache[path])
	}
	return records
}

// Statistics returns the aggregate run statistics. Plugins treat the result
// as read-only.
func (a *Analyzer) Statistics() *Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Artifacts returns the paths of artifacts written so far in this run.
func (a *Analyzer) Artifacts() []string {
	return append([]string(nil), a.artifacts...)
}

// AnalyzeFile assembles and caches the record for one file. Re-analyzing a
// cached path returns the existing record without re-running the assembler
// or re-updating statistics; concurrent calls for the same path assemble at
// most once.
func (a *Analyzer) AnalyzeFile(path string) (*metadata.FileRecord, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	a.mu.Lock()
	if rec, ok := a.cache[abs]; ok {
		a.mu.Unlock()
		return rec, nil
	}
	if call, ok := a.inflight[abs]; ok {
		a.mu.Unlock()
		<-call.done
		return call.rec, call.err
	}
	call := &inflightCall{done: make(chan struct{})}
	a.inflight[abs] = call
	a.mu.Unlock()

	rec, err := a.assembler.Assemble(abs)

	a.mu.Lock()
	if err == nil {
		a.insertLocked(rec)
	}
	call.rec, call.err = rec, err
	delete(a.inflight, abs)
	a.mu.Unlock()
	close(call.done)

	return rec, err
}

// insertLocked adds a record to the cache and folds it into the statistics.
// The cache is append-only; an existing entry is never replaced or
// re-counted. Caller holds a.mu.
func (a *Analyzer) insertLocked(rec *metadata.FileRecord) {
	if _, exists := a.cache[rec.Path]; exists {
		return
	}
	a.cache[rec.Path] = rec
	a.order = append(a.order, rec.Path)
	a.stats.Record(rec)
}

// Run drives a full scan: collect admitted files under every root, assemble
// their records, resolve the requested formats, and render each artifact.
// Per-format rendering failures are logged and isolated; the run fails if
// no artifact at all was produced.
func (a *Analyzer) Run(ctx context.Context) error {
	collected, err := a.collectAll()
	if err != nil {
		return err
	}
	a.infof("collected %d file(s)", len(collected))

	if err := a.assembleAll(ctx, collected); err != nil {
		return err
	}

	resolved, err := a.ResolveFormats(a.cfg.Formats, a.cfg.OutputFile)
	if err != nil {
		return err
	}

	for _, res := range resolved {
		gen := res.Registration.New(a)
		if err := gen.GenerateOutput(res.TargetPath); err != nil {
			a.errorf("error generating %s output: %v", res.Registration.FormatName, err)
			continue
		}
		a.artifacts = append(a.artifacts, res.TargetPath)
		a.infof("generated %s output at %s", res.Registration.FormatName, res.TargetPath)
	}

	if len(a.artifacts) == 0 {
		return fmt.Errorf("no output artifacts were produced")
	}
	return nil
}

// collectAll gathers admitted file paths from every configured root,
// deduplicated while preserving first-seen order.
func (a *Analyzer) collectAll() ([]string, error) {
	var collected []string
	seen := make(map[string]bool)

	for _, root := range a.cfg.Paths {
		paths, err := a.collector.Collect(root)
		if err != nil {
			if a.cfg.IgnoreErrors {
				a.warnf("skipping root %s: %v", root, err)
				continue
			}
			return nil, err
		}
		for _, p := range paths {
			if seen[p] {
				continue
			}
			seen[p] = true
			collected = append(collected, p)
		}
	}
	return collected, nil
}

// assembleAll produces records for the collected paths, sequentially or via
// a bounded worker pool. Results are committed to the cache and statistics
// in collected order, so neither output ordering nor statistics depend on
// worker scheduling.
func (a *Analyzer) assembleAll(ctx context.Context, paths []string) error {
	if a.cfg.Workers <= 1 {
		for _, p := range paths {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := a.AnalyzeFile(p); err != nil {
				if !a.cfg.IgnoreErrors {
					return err
				}
				a.warnf("could not analyze %s: %v", p, err)
			}
		}
		return nil
	}

	type result struct {
		path string
		rec  *metadata.FileRecord
		err  error
	}

	jobs := make(chan string)
	results := make(chan result, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < a.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{path: p, err: err}
					continue
				}
				rec, err := a.assembler.Assemble(p)
				results <- result{path: p, rec: rec, err: err}
			}
		}()
	}

	go func() {
		for _, p := range paths {
			jobs <- p
		}
		close(jobs)
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	byPath := make(map[string]result, len(paths))
	for r := range results {
		byPath[r.path] = r
	}

	// Commit in collected order regardless of completion order.
	for _, p := range paths {
		r := byPath[p]
		if r.err != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !a.cfg.IgnoreErrors {
				return r.err
			}
			a.warnf("could not analyze %s: %v", p, r.err)
			continue
		}
		a.mu.Lock()
		a.insertLocked(r.rec)
		a.mu.Unlock()
	}
	return nil
}

// ResolvedFormat pairs a plugin registration with the artifact path it will
// write.
type ResolvedFormat struct {
	Registration Registration
	TargetPath   string
}

// ResolveFormats maps the requested formats value and output path to the
// plugins that will render artifacts.
//
// With no requested formats (empty or the "default" sentinel), the output
// path's extension selects the plugin: zero candidates or a missing
// extension is a NoPluginForExtensionError, more than one candidate is an
// AmbiguousFormatError. Both are fatal, they indicate a configuration
// problem.
//
// With an explicit comma-separated format list, unknown names are logged
// and skipped (partial success is allowed), and each plugin's target path
// is the output path with its suffix replaced by the plugin's first
// declared extension so multiple formats never collide.
func (a *Analyzer) ResolveFormats(formats, outputPath string) ([]ResolvedFormat, error) {
	trimmed := strings.ToLower(strings.TrimSpace(formats))

	if trimmed == "" || trimmed == "default" {
		ext := strings.ToLower(filepath.Ext(outputPath))
		if ext == "" {
			return nil, &NoPluginForExtensionError{Extension: ext}
		}
		candidates := a.registry.ByExtension(ext)
		if len(candidates) == 0 {
			return nil, &NoPluginForExtensionError{Extension: ext}
		}
		if len(candidates) > 1 {
			names := make([]string, 0, len(candidates))
			for _, c := range candidates {
				names = append(names, c.FormatName)
			}
			return nil, &AmbiguousFormatError{Extension: ext, Formats: names}
		}
		return []ResolvedFormat{{Registration: candidates[0], TargetPath: outputPath}}, nil
	}

	var resolved []ResolvedFormat
	for _, name := range strings.Split(trimmed, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		reg, ok := a.registry.Get(name)
		if !ok {
			a.warnf("no plugin found for format %q", name)
			continue
		}
		target := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + reg.Extensions[0]
		resolved = append(resolved, ResolvedFormat{Registration: reg, TargetPath: target})
	}
	return resolved, nil
}

func (a *Analyzer) infof(format string, args ...interface{}) {
	if a.log != nil {
		a.log.LogInfo(fmt.Sprintf(format, args...))
	}
}

func (a *Analyzer) warnf(format string, args ...interface{}) {
	if a.log != nil {
		a.log.LogWarn(fmt.Sprintf(format, args...))
	}
}

func (a *Analyzer) errorf(format string, args ...interface{}) {
	if a.log != nil {
		a.log.LogError(fmt.Sprintf(format, args...))
	}
}
