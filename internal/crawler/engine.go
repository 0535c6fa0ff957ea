package crawler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linkpatrol/linkpatrol/internal/model"
	"github.com/linkpatrol/linkpatrol/internal/report"
)

// DefaultConcurrency is the default number of fetches per crawl round.
const DefaultConcurrency = 4

// Engine drives a breadth-first, same-origin crawl to exhaustion.
// Each Engine owns its queue and membership state and is built fresh
// per crawl, so independent crawls never share mutable state.
//
// The engine proceeds in discrete rounds of at most C fetches: it pops
// a batch off the FIFO queue, marks every accepted item visited before
// any fetch is dispatched, fans the batch out concurrently, waits for
// the whole round, then extracts links, enqueues the unseen ones, and
// flushes one report line per item in dequeue order. All queue and set
// mutations happen between rounds on the single engine goroutine, so
// none of them need locking.
type Engine struct {
	// base is the parsed crawl base URL.
	base *url.URL

	// seed is the normalized form of the base URL.
	seed string

	// fetcher retrieves pages.
	fetcher *Fetcher

	// extractor pulls same-origin links out of fetched bodies.
	extractor *Extractor

	// reporter receives the ordered report lines.
	reporter report.Reporter

	// logger is used for structured progress logging.
	logger *slog.Logger

	// concurrency is the round size C.
	concurrency int

	// queue is the FIFO of pending work items.
	queue []model.WorkItem

	// visited holds the keys of URLs already dispatched for fetching.
	// It grows monotonically and is the sole dedup gate at dequeue time.
	visited map[string]bool

	// queued holds the keys of URLs currently sitting in the queue.
	// An entry is superseded, not removed, once its item is dequeued.
	queued map[string]bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithConcurrency sets the round size. Values below 1 are ignored.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n >= 1 {
			e.concurrency = n
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine that crawls from baseURL, fetching with
// fetcher and delivering report lines to reporter.
func NewEngine(baseURL string, fetcher *Fetcher, reporter report.Reporter, opts ...EngineOption) (*Engine, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: must be absolute", baseURL)
	}

	seed, err := Normalize(base, base.String())
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	extractor, err := NewExtractor(base.String())
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	e := &Engine{
		base:        base,
		seed:        seed,
		fetcher:     fetcher,
		extractor:   extractor,
		reporter:    reporter,
		concurrency: DefaultConcurrency,
		queue:       make([]model.WorkItem, 0),
		visited:     make(map[string]bool),
		queued:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e, nil
}

// Run crawls until the queue is empty and every in-flight round has
// completed. It returns the collected report; the error is non-nil only
// for engine-level fatal faults, which abort the crawl after a single
// fatal report line. Per-fetch failures never abort anything.
func (e *Engine) Run(ctx context.Context) (*model.CrawlReport, error) {
	crawl := model.NewCrawlReport(e.seed)
	start := time.Now()

	if err := e.reporter.WriteHeader(e.seed); err != nil {
		return e.abort(crawl, start, fmt.Errorf("report sink failed: %w", err))
	}

	e.queue = append(e.queue, model.WorkItem{Target: e.seed})
	e.queued[Key(e.seed)] = true

	for len(e.queue) > 0 {
		select {
		case <-ctx.Done():
			return e.abort(crawl, start, ctx.Err())
		default:
		}

		batch := e.nextBatch()
		if len(batch) == 0 {
			continue
		}

		e.logger.Debug("dispatching round",
			"size", len(batch),
			"queued", len(e.queue),
			"visited", len(e.visited),
		)

		outcomes := e.dispatch(ctx, batch)

		// Extraction and enqueueing for the whole round happen before
		// any of the round's report lines are flushed, so the log always
		// reflects completed discovery for every page it mentions.
		for i := range outcomes {
			e.discover(&outcomes[i])
		}

		for i := range outcomes {
			if err := e.reporter.WriteOutcome(outcomes[i]); err != nil {
				return e.abort(crawl, start, fmt.Errorf("report sink failed: %w", err))
			}
			crawl.Add(outcomes[i])
		}
	}

	crawl.PagesVisited = len(e.visited)
	crawl.Duration = time.Since(start)

	if err := e.reporter.WriteSummary(crawl.PagesVisited); err != nil {
		crawl.Fatal = err.Error()
		return crawl, fmt.Errorf("report sink failed: %w", err)
	}

	e.logger.Info("crawl finished",
		"base", e.seed,
		"pages", crawl.PagesVisited,
		"broken", crawl.BrokenCount(),
		"elapsed", crawl.Duration,
	)

	return crawl, nil
}

// nextBatch pops up to C items off the queue head, discarding any whose
// target is already visited. Accepted targets are marked visited here,
// synchronously, before any fetch is dispatched; that ordering is what
// guarantees at-most-once dispatch per normalized URL.
func (e *Engine) nextBatch() []model.WorkItem {
	batch := make([]model.WorkItem, 0, e.concurrency)
	for len(batch) < e.concurrency && len(e.queue) > 0 {
		item := e.queue[0]
		e.queue = e.queue[1:]

		key := Key(item.Target)
		if e.visited[key] {
			continue
		}
		e.visited[key] = true
		batch = append(batch, item)
	}
	return batch
}

// dispatch fans the batch out concurrently and waits for every fetch to
// finish. Outcomes are returned in batch (dequeue) order regardless of
// completion order.
func (e *Engine) dispatch(ctx context.Context, batch []model.WorkItem) []model.Outcome {
	outcomes := make([]model.Outcome, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, item := range batch {
		g.Go(func() error {
			outcomes[i] = e.fetcher.Fetch(gctx, item)
			return nil
		})
	}
	// Fetch never returns an error; Wait is purely the round barrier.
	_ = g.Wait() //nolint:errcheck // fetch outcomes carry their own failures

	return outcomes
}

// discover extracts links from a responded outcome and appends the
// unseen ones to the queue tail with this page as their referrer.
func (e *Engine) discover(o *model.Outcome) {
	if !o.Responded || len(o.Body) == 0 {
		return
	}

	links, err := e.extractor.Extract(bytes.NewReader(o.Body))
	if err != nil {
		e.logger.Debug("unparsable page body", "url", o.Target, "error", err)
		return
	}

	for _, link := range links {
		key := Key(link)
		if e.visited[key] || e.queued[key] {
			continue
		}
		e.queued[key] = true
		e.queue = append(e.queue, model.WorkItem{Target: link, Referrer: o.Target})
	}
}

// abort records an engine-level fault, emits the single fatal report
// line in place of the summary, and surfaces the error to the caller.
func (e *Engine) abort(crawl *model.CrawlReport, start time.Time, err error) (*model.CrawlReport, error) {
	crawl.PagesVisited = len(e.visited)
	crawl.Duration = time.Since(start)
	crawl.Fatal = err.Error()

	e.logger.Error("crawl aborted", "base", e.seed, "error", err)

	// Best effort: the sink itself may be what failed.
	_ = e.reporter.WriteFatal(err) //nolint:errcheck

	return crawl, err
}
