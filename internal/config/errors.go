package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoTarget is returned when no base URL is specified.
	ErrNoTarget = errors.New("no target specified: provide a base URL to crawl")

	// ErrInvalidConcurrency is returned when the concurrency bound is
	// below 1. The bound is the only admission-control mechanism, so a
	// non-positive value would stall the crawl entirely.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be at least 1")

	// ErrInvalidTimeout is returned when the per-fetch timeout is not
	// positive. A zero timeout would cause immediate fetch failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is
	// negative. Use 0 to keep the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
