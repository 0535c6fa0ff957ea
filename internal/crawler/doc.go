// Package crawler implements the breadth-first, same-origin crawl core.
//
// # Architecture
//
// The package is built from four pieces that mirror the crawl data flow:
//
//   - Normalize / SameOrigin: canonicalize hrefs and gate them to the
//     crawl origin
//   - Extractor: HTML link extraction on top of golang.org/x/net/html
//   - Fetcher: one GET per work item, classified into a responded or
//     transport-failure Outcome
//   - Engine: the round-based scheduler owning the queue and the
//     visited/queued membership sets
//
// # Concurrency model
//
// The Engine is not a free-running worker pool. It runs rounds of at
// most C concurrent fetches and waits for each round to drain before
// touching the queue again. Membership checks and insertions happen
// serially between rounds, which makes the visited-set insertion
// happen-before every fetch dispatched for that URL without any locks.
//
// # Usage
//
//	fetcher := crawler.NewFetcher(&http.Client{Timeout: 10 * time.Second})
//	engine, err := crawler.NewEngine("https://example.com/", fetcher, reporter,
//		crawler.WithConcurrency(4))
//	if err != nil { ... }
//	crawl, err := engine.Run(ctx)
package crawler
