package analyzer

import (
	"fmt"
	"strings"
)

// UnknownFormatError reports a requested format name with no registered
// plugin. In the explicit-formats path this is logged and skipped; callers
// resolving implicitly treat it as fatal.
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("no plugin registered for format %q", e.Format)
}

// NoPluginForExtensionError reports an output-path extension no registered
// plugin can produce.
type NoPluginForExtensionError struct {
	Extension string
}

func (e *NoPluginForExtensionError) Error() string {
	if e.Extension == "" {
		return "output path has no extension and no format was requested"
	}
	return fmt.Sprintf("no plugin available to handle the %q extension", e.Extension)
}

// AmbiguousFormatError reports an output-path extension claimed by more than
// one plugin, with no explicit format request to disambiguate.
type AmbiguousFormatError struct {
	Extension string
	Formats   []string
}

func (e *AmbiguousFormatError) Error() string {
	return fmt.Sprintf("multiple plugins (%s) can handle the %q extension, specify a format explicitly",
		strings.Join(e.Formats, ", "), e.Extension)
}
