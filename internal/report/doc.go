// Package report provides report generation and output functionality.
//
// Two output models coexist:
//   - Reporter: the line-oriented live report streamed while the crawl
//     runs. TextReporter implements the broken-link line format and
//     MultiReporter fans every line out to several sinks in order.
//   - Writer: post-run renderers for a finished CrawlReport
//     (TextReporter replay, JSONWriter, MarkdownWriter).
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
package report
