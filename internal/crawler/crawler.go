package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"reviewharvest/internal/extract"
	"reviewharvest/internal/metrics"
)

// Config holds the settings for a crawl session.
type Config struct {
	UserAgent string
	// Delay is the politeness pause enforced between successive fetches.
	Delay time.Duration
	// MaxPages bounds the pagination walk. The listing terminates by
	// omitting the next-page link, but a buggy or adversarial page could
	// keep emitting one.
	MaxPages int
}

// Controller walks the paginated listing sequentially: fetch, extract,
// store every record, then follow the next-page link until none remains.
type Controller struct {
	fetcher Fetcher
	sink    Sink
	limiter *rate.Limiter
	cfg     Config
	logger  *zap.Logger
}

// New constructs a Controller.
func New(fetcher Fetcher, sink Sink, cfg Config, logger *zap.Logger) *Controller {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 200
	}
	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}
	return &Controller{
		fetcher: fetcher,
		sink:    sink,
		limiter: rate.NewLimiter(limit, 1),
		cfg:     cfg,
		logger:  logger,
	}
}

// Run crawls from seedURL until the listing has no next-page link. Every
// record on a page is stored before the following page is fetched. Fetch,
// extraction, and store failures abort the crawl; rows already committed
// stay committed.
func (c *Controller) Run(ctx context.Context, seedURL string) error {
	visited := newVisitTracker()
	pageURL := seedURL
	for page := 0; pageURL != ""; page++ {
		if page >= c.cfg.MaxPages {
			c.logger.Warn("max page cap reached, stopping crawl",
				zap.Int("max_pages", c.cfg.MaxPages))
			break
		}
		if !visited.MarkIfNew(pageURL) {
			c.logger.Warn("pagination loop detected, stopping crawl",
				zap.String("url", pageURL))
			break
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("politeness wait: %w", err)
		}

		next, err := c.processPage(ctx, pageURL)
		if err != nil {
			return fmt.Errorf("page %q: %w", pageURL, err)
		}
		pageURL = next
	}
	return nil
}

func (c *Controller) processPage(ctx context.Context, pageURL string) (string, error) {
	headers := http.Header{}
	if c.cfg.UserAgent != "" {
		headers.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.fetcher.Fetch(ctx, FetchRequest{URL: pageURL, Headers: headers})
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch: unexpected status %d", resp.StatusCode)
	}
	metrics.ObservePageFetched(resp.Duration)

	result, err := extract.Page(resp.Body)
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}
	if result.Skipped > 0 {
		metrics.ObserveReviewsSkipped(result.Skipped)
		c.logger.Warn("skipped malformed review blocks",
			zap.Int("skipped", result.Skipped),
			zap.String("url", pageURL))
	}

	for _, raw := range result.Reviews {
		if err := c.sink.Store(ctx, raw); err != nil {
			metrics.ObserveStoreFailure()
			return "", fmt.Errorf("store review: %w", err)
		}
		metrics.ObserveReviewStored()
	}
	c.logger.Info("page processed",
		zap.String("url", pageURL),
		zap.Int("reviews", len(result.Reviews)),
		zap.Bool("has_next", result.NextPage != ""))

	if result.NextPage == "" {
		return "", nil
	}
	next, err := resolveNext(resp.URL, pageURL, result.NextPage)
	if err != nil {
		return "", fmt.Errorf("resolve next page: %w", err)
	}
	return next, nil
}

// resolveNext resolves the next-page href against the fetched page URL,
// falling back to the requested URL when the fetcher does not report one.
func resolveNext(respURL, requestURL, href string) (string, error) {
	baseRaw := respURL
	if baseRaw == "" {
		baseRaw = requestURL
	}
	base, err := url.Parse(baseRaw)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", baseRaw, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}
