// Package matcher decides whether filesystem entries participate in a scan.
//
// A Matcher evaluates one entry name at a time against built-in deny lists,
// user-supplied regex exclude/include lists, and extension allow/deny lists.
// Deny rules always win over include rules, so version-control and cache
// directories stay excluded even under an include-everything pattern.
package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/harrison/singlefile/internal/logger"
)

// defaultDirDenyPatterns returns a fresh copy of the built-in directory deny
// list: version-control directories, tool caches, dependency directories and
// any dot-directory. Callers receive their own slice so one run can never
// mutate another run's defaults.
func defaultDirDenyPatterns() []string {
	return []string{
		`^\.git$`,
		`^\.svn$`,
		`^\.hg$`,
		`^__pycache__$`,
		`^\.pytest_cache$`,
		`^node_modules$`,
		`^\..*$`,
	}
}

// defaultFileDenyPatterns returns a fresh copy of the built-in file deny
// list: compiled bytecode, editor backups and OS metadata files.
func defaultFileDenyPatterns() []string {
	return []string{
		`.*\.pyc$`,
		`.*\.pyo$`,
		`.*\.pyd$`,
		`.*~$`,
		`\.DS_Store$`,
		`Thumbs\.db$`,
	}
}

// Options carries the user-supplied pattern lists for a Matcher.
// All pattern lists hold regular expressions matched anywhere in the entry
// name (re.search semantics, not full-string anchoring).
type Options struct {
	// ExcludeDirs are regex patterns rejecting directory names.
	ExcludeDirs []string
	// ExcludeFiles are regex patterns rejecting file names.
	ExcludeFiles []string
	// IncludeDirs, when non-empty, requires directory names to match at
	// least one pattern.
	IncludeDirs []string
	// IncludeFiles, when non-empty, requires file names to match at least
	// one pattern.
	IncludeFiles []string
	// Extensions, when non-empty, is an allow-list of file extensions
	// (without leading dot).
	Extensions []string
	// ExcludeExtensions is a deny-list of file extensions (without leading
	// dot).
	ExcludeExtensions []string
}

// Matcher evaluates entries against the configured rule sets.
// The zero value is not usable; construct with New.
type Matcher struct {
	dirDeny  []*regexp.Regexp // built-in directory deny patterns
	fileDeny []*regexp.Regexp // built-in file deny patterns

	excludeDirs  []*regexp.Regexp
	excludeFiles []*regexp.Regexp
	includeDirs  []*regexp.Regexp
	includeFiles []*regexp.Regexp

	// include lists configured at all (distinct from "all patterns malformed")
	includeDirsSet  bool
	includeFilesSet bool

	extAllow map[string]bool
	extDeny  map[string]bool

	log logger.Logger
}

// New builds a Matcher from the given options. Built-in deny patterns are
// compiled from fresh copies of the defaults. Malformed user patterns are
// logged as warnings and skipped; they never fail construction.
func New(opts Options, log logger.Logger) *Matcher {
	m := &Matcher{
		dirDeny:         mustCompileAll(defaultDirDenyPatterns()),
		fileDeny:        mustCompileAll(defaultFileDenyPatterns()),
		includeDirsSet:  len(opts.IncludeDirs) > 0,
		includeFilesSet: len(opts.IncludeFiles) > 0,
		log:             log,
	}

	m.excludeDirs = m.compileUserPatterns(opts.ExcludeDirs)
	m.excludeFiles = m.compileUserPatterns(opts.ExcludeFiles)
	m.includeDirs = m.compileUserPatterns(opts.IncludeDirs)
	m.includeFiles = m.compileUserPatterns(opts.IncludeFiles)

	if len(opts.Extensions) > 0 {
		m.extAllow = normalizeExtensions(opts.Extensions)
	}
	if len(opts.ExcludeExtensions) > 0 {
		m.extDeny = normalizeExtensions(opts.ExcludeExtensions)
	}

	return m
}

// mustCompileAll compiles the built-in patterns, which are constants and
// always valid.
func mustCompileAll(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// compileUserPatterns compiles user-supplied patterns, logging and skipping
// any that fail to compile. A malformed pattern degrades to "never matches".
func (m *Matcher) compileUserPatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			if m.log != nil {
				m.log.LogWarn(fmt.Sprintf("invalid regex pattern %q: %v", p, err))
			}
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}

// normalizeExtensions lowercases extensions and strips leading dots so
// "py", ".py" and ".PY" all mean the same thing.
func normalizeExtensions(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		ext = strings.TrimPrefix(ext, ".")
		if ext == "" {
			continue
		}
		set[strings.ToLower(ext)] = true
	}
	return set
}

// ShouldInclude reports whether the entry with the given name should
// participate in the scan. Rules are evaluated in fixed precedence order;
// the first deny match rejects immediately:
//
//  1. built-in deny patterns (directory or file set per isDir)
//  2. user exclude patterns for the same category
//  3. files only: extension allow-list membership
//  4. files only: extension deny-list membership
//  5. include patterns for the category, when configured, must match
func (m *Matcher) ShouldInclude(name string, isDir bool) bool {
	deny := m.fileDeny
	userExclude := m.excludeFiles
	if isDir {
		deny = m.dirDeny
		userExclude = m.excludeDirs
	}

	for _, re := range deny {
		if re.MatchString(name) {
			m.debugf("excluding %s %q: built-in pattern %q", categoryOf(isDir), name, re.String())
			return false
		}
	}

	for _, re := range userExclude {
		if re.MatchString(name) {
			m.debugf("excluding %s %q: exclude pattern %q", categoryOf(isDir), name, re.String())
			return false
		}
	}

	if !isDir {
		ext := extensionOf(name)
		if m.extAllow != nil && !m.extAllow[ext] {
			m.debugf("excluding file %q: extension %q not in allow-list", name, ext)
			return false
		}
		if m.extDeny != nil && m.extDeny[ext] {
			m.debugf("excluding file %q: extension %q is denied", name, ext)
			return false
		}
	}

	if isDir && m.includeDirsSet {
		if !matchesAny(m.includeDirs, name) {
			m.debugf("excluding directory %q: no include pattern matched", name)
			return false
		}
	}
	if !isDir && m.includeFilesSet {
		if !matchesAny(m.includeFiles, name) {
			m.debugf("excluding file %q: no include pattern matched", name)
			return false
		}
	}

	return true
}

// matchesAny reports whether name matches at least one pattern.
func matchesAny(patterns []*regexp.Regexp, name string) bool {
	for _, re := range patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// extensionOf returns the lowercase extension of name without the leading
// dot, or "" when name has none. A leading dot alone (dotfile) is not an
// extension.
func extensionOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

func categoryOf(isDir bool) string {
	if isDir {
		return "directory"
	}
	return "file"
}

func (m *Matcher) debugf(format string, args ...interface{}) {
	if m.log != nil {
		m.log.LogDebug(fmt.Sprintf(format, args...))
	}
}
