package report

import (
	"fmt"
	"io"

	"github.com/linkpatrol/linkpatrol/internal/model"
)

// Report line glyphs. The summary line always carries the success glyph,
// whether or not any broken links were found.
const (
	glyphOK     = "✅"
	glyphBroken = "❌"
)

// TextReporter emits the line-oriented broken link report:
//
//	Broken Link Report for <baseURL>
//
//	✅  [200] <url>
//	❌  [404] <url> (linked from: <referrer>)
//	✅ Scan completed. <n> pages visited.
//
// The "(linked from: ...)" suffix appears only on broken lines and only
// when the referrer is known.
type TextReporter struct {
	baseWriter
}

// NewTextReporter creates a TextReporter writing to output.
func NewTextReporter(output io.Writer) *TextReporter {
	return &TextReporter{baseWriter: newBaseWriter(output)}
}

// WriteHeader writes the report header and its trailing blank line.
func (t *TextReporter) WriteHeader(baseURL string) error {
	_, err := fmt.Fprintf(t.output, "Broken Link Report for %s\n\n", baseURL)
	return err
}

// WriteOutcome writes one outcome line.
func (t *TextReporter) WriteOutcome(o model.Outcome) error {
	if !o.Broken() {
		_, err := fmt.Fprintf(t.output, "%s  [%s] %s\n", glyphOK, o.StatusLabel(), o.Target)
		return err
	}
	if o.Referrer == "" {
		_, err := fmt.Fprintf(t.output, "%s  [%s] %s\n", glyphBroken, o.StatusLabel(), o.Target)
		return err
	}
	_, err := fmt.Fprintf(t.output, "%s  [%s] %s (linked from: %s)\n",
		glyphBroken, o.StatusLabel(), o.Target, o.Referrer)
	return err
}

// WriteSummary writes the trailing summary line.
func (t *TextReporter) WriteSummary(visited int) error {
	_, err := fmt.Fprintf(t.output, "%s Scan completed. %d pages visited.\n", glyphOK, visited)
	return err
}

// WriteFatal writes the single failure line that replaces the summary
// when the crawl aborts.
func (t *TextReporter) WriteFatal(ferr error) error {
	_, err := fmt.Fprintf(t.output, "%s Scan failed: %v\n", glyphBroken, ferr)
	return err
}

// Write replays a finished crawl report through the text format.
// This makes the default format usable as a post-run Writer for
// file output alongside the JSON and Markdown writers.
func (t *TextReporter) Write(crawl *model.CrawlReport) (int, error) {
	cw := &countingWriter{w: t.output}
	replay := NewTextReporter(cw)

	if err := replay.WriteHeader(crawl.BaseURL); err != nil {
		return cw.n, err
	}
	for i := range crawl.Outcomes {
		if err := replay.WriteOutcome(crawl.Outcomes[i]); err != nil {
			return cw.n, err
		}
	}
	if crawl.Aborted() {
		err := replay.WriteFatal(fmt.Errorf("%s", crawl.Fatal))
		return cw.n, err
	}
	err := replay.WriteSummary(crawl.PagesVisited)
	return cw.n, err
}

// countingWriter counts bytes passed through to the underlying writer.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
