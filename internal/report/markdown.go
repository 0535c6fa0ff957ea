package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/linkpatrol/linkpatrol/internal/model"
)

// MarkdownWriter outputs finished crawl reports in Markdown format.
// This format is designed for documentation and sharing, e.g. pasting a
// link-health report into an issue.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
//  1. Type-safe markdown generation
//  2. Support for tables, lists, and code blocks
//  3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the crawl report in Markdown format.
func (w *MarkdownWriter) Write(crawl *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, crawl)
	w.writeAlert(md, crawl)
	w.writeBrokenLinks(md, crawl)
	w.writeOutcomes(md, crawl)

	return len(md.String()), md.Build()
}

// writeHeader writes the report title and the crawl info table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, crawl *model.CrawlReport) {
	md.H1("Broken Link Report")
	md.PlainText("")

	status := "✅ Complete"
	if crawl.Aborted() {
		status = "❌ Aborted - " + crawl.Fatal
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Base URL", "`" + crawl.BaseURL + "`"},
			{"Scan Date", crawl.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Visited", strconv.Itoa(crawl.PagesVisited)},
			{"Broken Links", strconv.Itoa(crawl.BrokenCount())},
			{"Duration", crawl.Duration.String()},
			{"Status", status},
		},
	})
	md.PlainText("")
}

// writeAlert writes a GitHub alert matching the overall result.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, crawl *model.CrawlReport) {
	switch {
	case crawl.Aborted():
		md.Cautionf("Scan aborted before completion: %s", crawl.Fatal)
	case crawl.BrokenCount() > 0:
		md.Warningf("%d broken link(s) found across %d pages.",
			crawl.BrokenCount(), crawl.PagesVisited)
	default:
		md.Tip("No broken links found.")
	}
	md.PlainText("")
}

// writeBrokenLinks writes the broken links table.
func (w *MarkdownWriter) writeBrokenLinks(md *markdown.Markdown, crawl *model.CrawlReport) {
	md.H2("Broken Links")
	md.PlainText("")

	broken := crawl.BrokenOutcomes()
	if len(broken) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(broken))
	for i := range broken {
		referrer := broken[i].Referrer
		if referrer == "" {
			referrer = "-"
		}
		rows[i] = []string{broken[i].StatusLabel(), broken[i].Target, referrer}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Status", "URL", "Linked From"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeOutcomes writes the full per-page outcome table.
func (w *MarkdownWriter) writeOutcomes(md *markdown.Markdown, crawl *model.CrawlReport) {
	md.H2("All Pages")
	md.PlainText("")

	rows := make([][]string, len(crawl.Outcomes))
	for i := range crawl.Outcomes {
		o := &crawl.Outcomes[i]
		glyph := glyphOK
		if o.Broken() {
			glyph = glyphBroken
		}
		rows[i] = []string{glyph, o.StatusLabel(), o.Target}
	}

	md.Table(markdown.TableSet{
		Header: []string{"", "Status", "URL"},
		Rows:   rows,
	})
	md.PlainText("")

	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by linkpatrol*")
}
