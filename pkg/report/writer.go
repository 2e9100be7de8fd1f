package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/user/replaycap/pkg/ports"
)

// Writer renders summaries through a Formatter and writes them out.
type Writer struct {
	formatter Formatter
	fs        ports.FileSystem
}

// NewWriter creates a Writer that renders with the given Formatter and
// writes through the given filesystem.
func NewWriter(formatter Formatter, fs ports.FileSystem) *Writer {
	return &Writer{formatter: formatter, fs: fs}
}

// Write renders the summary and writes it to path, creating parent
// directories as needed.
func (w *Writer) Write(path string, summary *Summary) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := w.fs.MkdirAll(dir); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := w.fs.WriteFile(path, []byte(w.formatter.Format(summary))); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Fprint renders the summary to an arbitrary writer, for showing a
// report on a terminal instead of saving it.
func (w *Writer) Fprint(out io.Writer, summary *Summary) error {
	_, err := io.WriteString(out, w.formatter.Format(summary))
	return err
}
