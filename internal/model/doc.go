// Package model defines the core data structures used throughout linkpatrol.
//
// This package contains the following main types:
//   - WorkItem: One pending fetch in the crawl queue
//   - Outcome: The result of fetching a single URL
//   - CrawlReport: The collected result of one crawl run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, report, database) need to use these
// types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
