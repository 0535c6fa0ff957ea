package report

import (
	"io"

	"github.com/linkpatrol/linkpatrol/internal/model"
)

// Reporter receives the live report lines of a crawl, in order: one
// header, one line per fetch outcome, and exactly one of summary or
// fatal as the final line.
//
// Design decision: We use a line-oriented interface rather than handing
// writers a finished report because the crawl log is streamed while the
// crawl runs, and every sink must observe the identical sequence.
type Reporter interface {
	// WriteHeader emits the report header once, at crawl start.
	WriteHeader(baseURL string) error

	// WriteOutcome emits one line for a fetch outcome.
	WriteOutcome(o model.Outcome) error

	// WriteSummary emits the trailing summary line on normal completion.
	WriteSummary(visited int) error

	// WriteFatal emits the single failure line when the crawl aborts.
	// Summary and fatal are mutually exclusive.
	WriteFatal(err error) error
}

// Writer renders a finished crawl report in some format.
// Implementations exist for text replay, JSON, and Markdown.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(crawl *model.CrawlReport) (int, error)
}

// MultiReporter delivers every line to multiple Reporters in the same
// order, e.g. console plus a persisted log file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Reporter interface carries outcomes,
// not raw bytes.
type MultiReporter struct {
	reporters []Reporter
}

// NewMultiReporter creates a Reporter that fans out to all given Reporters.
func NewMultiReporter(reporters ...Reporter) *MultiReporter {
	return &MultiReporter{reporters: reporters}
}

// WriteHeader emits the header on every sink. Stops on first error.
func (m *MultiReporter) WriteHeader(baseURL string) error {
	for _, r := range m.reporters {
		if err := r.WriteHeader(baseURL); err != nil {
			return err
		}
	}
	return nil
}

// WriteOutcome emits the outcome line on every sink. Stops on first error.
func (m *MultiReporter) WriteOutcome(o model.Outcome) error {
	for _, r := range m.reporters {
		if err := r.WriteOutcome(o); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary emits the summary line on every sink. Stops on first error.
func (m *MultiReporter) WriteSummary(visited int) error {
	for _, r := range m.reporters {
		if err := r.WriteSummary(visited); err != nil {
			return err
		}
	}
	return nil
}

// WriteFatal emits the fatal line on every sink. Stops on first error.
func (m *MultiReporter) WriteFatal(err error) error {
	for _, r := range m.reporters {
		if werr := r.WriteFatal(err); werr != nil {
			return werr
		}
	}
	return nil
}

// baseWriter provides the shared output destination for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
