package report

import (
	"encoding/json"
	"io"

	"github.com/linkpatrol/linkpatrol/internal/model"
)

// JSONWriter outputs finished crawl reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
//  1. It's part of the standard library (no extra dependencies)
//  2. It's sufficient for our needs
//  3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the crawl report in JSON format, wrapped with the
// broken-link count for quick access.
func (w *JSONWriter) Write(crawl *model.CrawlReport) (int, error) {
	wrapped := struct {
		*model.CrawlReport
		BrokenCount int `json:"broken_count"`
	}{
		CrawlReport: crawl,
		BrokenCount: crawl.BrokenCount(),
	}

	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(wrapped, "", "  ")
	} else {
		data, err = json.Marshal(wrapped)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for better terminal output.
	data = append(data, '\n')

	return w.output.Write(data)
}
