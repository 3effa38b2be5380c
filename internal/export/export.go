// Package export renders a backlog snapshot as a Markdown report, a CSV
// sheet with one row per work item, or indented JSON, and writes the result
// to a timestamped file in the exports directory.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mesh-intelligence/sprintplan/internal/atomicfile"
	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

// Format names an export rendering.
type Format string

// Supported formats.
const (
	Markdown Format = "markdown"
	CSV      Format = "csv"
	JSON     Format = "json"
)

// ErrUnknownFormat is returned for a format name that is not supported.
var ErrUnknownFormat = errors.New("unknown export format")

// fileTimeLayout stamps export file names: backlog_YYYYMMDD_HHMMSS.ext.
const fileTimeLayout = "20060102_150405"

// ParseFormat maps a user-supplied name to a Format. "md" is accepted for
// Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return Markdown, nil
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return "md"
	case CSV:
		return "csv"
	case JSON:
		return "json"
	default:
		return ""
	}
}

// FileName returns the export file name for f generated at t.
func FileName(f Format, t time.Time) string {
	return fmt.Sprintf("backlog_%s.%s", t.Format(fileTimeLayout), f.Extension())
}

// Render writes b to w in format f. generated is printed in the Markdown
// header.
func Render(w io.Writer, f Format, b *types.Backlog, generated time.Time) error {
	switch f {
	case Markdown:
		return WriteMarkdown(w, b, generated)
	case CSV:
		return WriteCSV(w, b)
	case JSON:
		return WriteJSON(w, b)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// WriteFile renders b into dir and returns the path written. The directory
// is created if needed and the file appears atomically.
func WriteFile(dir string, f Format, b *types.Backlog, now time.Time) (string, error) {
	if f.Extension() == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create exports dir: %w", err)
	}

	path := filepath.Join(dir, FileName(f, now))
	err := atomicfile.Write(path, 0o644, func(w io.Writer) error {
		return Render(w, f, b, now)
	})
	if err != nil {
		return "", fmt.Errorf("write export %s: %w", path, err)
	}
	return path, nil
}
