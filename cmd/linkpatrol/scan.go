package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/linkpatrol/linkpatrol/internal/config"
	"github.com/linkpatrol/linkpatrol/internal/crawler"
	"github.com/linkpatrol/linkpatrol/internal/database"
	"github.com/linkpatrol/linkpatrol/internal/log"
	"github.com/linkpatrol/linkpatrol/internal/model"
	"github.com/linkpatrol/linkpatrol/internal/report"
	"github.com/linkpatrol/linkpatrol/internal/useragent"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <base-url>",
		Short: "Crawl a website and report broken internal links",
		Long: `Scan crawls a website breadth-first starting from the base URL.

Only pages on the starting host are fetched; links to other hosts are
ignored. Each internal link is checked exactly once and reported live:
a working page prints its status code with a success mark, a broken
page (4xx, 5xx, or no response at all) prints a failure mark and the
page that linked to it.

Examples:
  # Scan a site with default settings
  linkpatrol scan https://example.com

  # Crawl 8 pages at a time with a 5 second per-request timeout
  linkpatrol scan -C 8 -t 5s https://example.com

  # Duplicate the live report into a file
  linkpatrol scan --log scan.txt https://example.com

  # Write a JSON report to a file after the scan
  linkpatrol scan --json -o report.json https://example.com

  # Use a custom configuration file
  linkpatrol scan -c myconfig.yaml https://example.com

Configuration file (.linkpatrol) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      concurrency: 2`,
		Args: cobra.ExactArgs(1),
		RunE: runScanCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("concurrency", "C", config.DefaultConcurrency,
		"Number of pages fetched concurrently per crawl round")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each individual request")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linkpatrol in current or home directory)")

	// Report flags
	cmd.Flags().String("log", "",
		"Duplicate the live report into the specified file")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report after the scan (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report after the scan (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the post-scan report to the specified file path")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not record this scan in the history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with secret masking
	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runScan(ctx, cmd, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Target = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.LogFile, err = cmd.Flags().GetString("log")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// runScan executes the crawl and handles reporting and persistence.
func runScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	base, err := url.Parse(cfg.Target)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", cfg.Target, err)
	}

	siteConfig := cfg.SiteConfigs.SiteConfigFor(base.Host)

	// Site-specific settings override global ones.
	concurrency := cfg.Concurrency
	if siteConfig.Concurrency > 0 && !cmd.Flags().Changed("concurrency") {
		concurrency = siteConfig.Concurrency
	}
	agents := cfg.UserAgents
	if len(siteConfig.UserAgents) > 0 {
		agents = siteConfig.UserAgents
	}

	logger.Info("starting scan",
		"target", cfg.Target,
		"concurrency", concurrency,
		"timeout", cfg.Timeout,
		"saveToDB", cfg.SaveToDB,
	)

	fetcherOpts := []crawler.FetcherOption{
		crawler.WithUserAgents(useragent.NewRotator(agents...)),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	}
	if siteConfig.Cookie != "" {
		fetcherOpts = append(fetcherOpts, crawler.WithCookie(siteConfig.Cookie))
	}
	if len(siteConfig.Headers) > 0 {
		fetcherOpts = append(fetcherOpts, crawler.WithHeaders(siteConfig.Headers))
	}
	fetcher := crawler.NewFetcher(&http.Client{Timeout: cfg.Timeout}, fetcherOpts...)

	// The live report always goes to the console; --log duplicates it
	// line for line into a file.
	reporters := []report.Reporter{report.NewTextReporter(cmd.OutOrStdout())}
	if cfg.LogFile != "" {
		logFile, err := createOutputFile(cfg.LogFile)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		defer logFile.Close()
		reporters = append(reporters, report.NewTextReporter(logFile))
	}

	engine, err := crawler.NewEngine(cfg.Target, fetcher,
		report.NewMultiReporter(reporters...),
		crawler.WithConcurrency(concurrency),
		crawler.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	crawl, runErr := engine.Run(ctx)

	// The crawl result is persisted and reported even when the crawl
	// aborted, so a partial scan still shows up in the history.
	if cfg.SaveToDB {
		if err := saveScan(ctx, cfg, crawl, logger); err != nil {
			logger.Error("failed to save scan", "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}

	// --output without a format flag writes the text report to the file.
	if cfg.JSONReport || cfg.MarkdownReport || cfg.ReportFile != "" {
		if err := outputReport(cmd, cfg, crawl); err != nil {
			return fmt.Errorf("report output failed: %w", err)
		}
	}

	return nil
}

// outputReport writes the post-scan report in the requested format.
func outputReport(cmd *cobra.Command, cfg *config.Config, crawl *model.CrawlReport) error {
	output := cmd.OutOrStdout()
	if cfg.ReportFile != "" {
		f, err := createOutputFile(cfg.ReportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		output = f
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewTextReporter(output)
	}

	_, err := writer.Write(crawl)
	return err
}

// createOutputFile creates a report output file, making parent
// directories as needed. Files are owner-readable only: reports may
// reveal internal URLs.
func createOutputFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
}

// saveScan records the crawl in the history database.
func saveScan(ctx context.Context, cfg *config.Config, crawl *model.CrawlReport, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Use a fresh context so a cancelled crawl can still be recorded.
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	scanID, err := db.SaveReport(ctx, crawl)
	if err != nil {
		return err
	}

	logger.Info("scan saved", "id", scanID, "dir", cfg.DBDir)
	return nil
}
