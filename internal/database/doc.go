// Package database provides SQLite-based storage for linkpatrol.
//
// This package implements the CrawlDB, which stores:
//   - Scan records summarizing each completed crawl
//   - Per-URL outcomes for historical comparison between scans
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
