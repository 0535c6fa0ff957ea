package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultConcurrency is the number of fetches dispatched per crawl
	// round. Four concurrent requests keep the crawl fast without
	// hammering small sites.
	DefaultConcurrency = 4

	// DefaultTimeout bounds each individual fetch. It is the only
	// timeout in the system; no deadline governs the crawl as a whole.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// AppName is the application name used for XDG directory paths.
	AppName = "linkpatrol"
)

// Config holds all configuration options for a linkpatrol run.
// This struct is designed to be populated from CLI flags and passed
// through the application via dependency injection rather than global
// state.
type Config struct {
	// Target is the base URL the crawl starts from. Required, absolute.
	Target string

	// Concurrency is the number of concurrent fetches per crawl round.
	// Must be at least 1.
	Concurrency int

	// Timeout is the per-fetch timeout. Applies to individual requests,
	// never to the crawl as a whole.
	Timeout time.Duration

	// UserAgents is the User-Agent pool rotated across requests.
	// Empty means the built-in defaults.
	UserAgents []string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Zero means DefaultMaxBodySize.
	MaxBodySize int64

	// LogFile, when set, duplicates the live text report into this file
	// in addition to the console, line for line in the same order.
	LogFile string

	// JSONReport enables JSON report output after the crawl.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output after the crawl.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the post-run report.
	// When empty, the post-run report goes to stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches for .linkpatrol in the current directory and
	// then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site settings loaded from the config file.
	SiteConfigs *File

	// SaveToDB indicates whether to record the run in the crawl
	// history database.
	SaveToDB bool

	// DBDir is the directory holding the SQLite history database.
	DBDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (concurrency,
// timeout). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Concurrency: DefaultConcurrency,
		Timeout:     DefaultTimeout,
		MaxBodySize: DefaultMaxBodySize,
		SaveToDB:    true,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for linkpatrol.
// On Linux: ~/.local/share/linkpatrol
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid, returning the first
// sentinel error that applies. Called once after CLI parsing, before
// any crawling begins.
func (c *Config) Validate() error {
	if c.Target == "" {
		return ErrNoTarget
	}
	if c.Concurrency < 1 {
		return ErrInvalidConcurrency
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
