package fetcher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ChromeFetcher renders pages in headless Chrome. Every call launches its own
// browser and tears it down before returning, so calls share nothing.
type ChromeFetcher struct {
	headless    bool
	browserPath string
	logger      *zap.Logger
}

func NewChromeFetcher(cfg *Config, logger *zap.Logger) *ChromeFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeFetcher{
		headless:    cfg.Headless,
		browserPath: cfg.BrowserPath,
		logger:      logger,
	}
}

func (c *ChromeFetcher) allocatorOptions(userAgent string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.WindowSize(1920, 1080),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	if c.browserPath != "" {
		opts = append(opts, chromedp.ExecPath(c.browserPath))
	}
	return opts
}

// Fetch navigates to url and waits for the main frame to reach network idle
// before snapshotting the DOM. The timeout covers navigation and the wait,
// not the browser launch.
func (c *ChromeFetcher) Fetch(ctx context.Context, url, userAgent string, timeout time.Duration) (*goquery.Document, error) {
	timeout = effectiveTimeout(timeout)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, c.allocatorOptions(userAgent)...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {}),
	)
	defer browserCancel()

	if err := chromedp.Run(browserCtx); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("launch browser: %w", err)}
	}
	mainFrame := cdp.FrameID(chromedp.FromContext(browserCtx).Target.TargetID)

	runCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	// Lifecycle events replayed when they get enabled belong to about:blank;
	// only events after armed is set describe our navigation.
	var armed, navigating atomic.Bool
	idle := make(chan struct{})
	var once sync.Once
	chromedp.ListenTarget(runCtx, func(ev interface{}) {
		e, ok := ev.(*page.EventLifecycleEvent)
		if !ok || !armed.Load() || e.FrameID != mainFrame {
			return
		}
		switch e.Name {
		case "init":
			navigating.Store(true)
		case "networkIdle":
			if navigating.Load() {
				once.Do(func() { close(idle) })
			}
		}
	})

	start := time.Now()
	c.logger.Debug("Rendering page", zap.String("url", url))

	var html string
	err := chromedp.Run(runCtx,
		page.Enable(),
		page.SetLifecycleEventsEnabled(true),
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": "en-US,en;q=0.9",
		}),
		chromedp.ActionFunc(func(context.Context) error {
			armed.Store(true)
			return nil
		}),
		chromedp.Navigate(url),
		chromedp.ActionFunc(func(ctx context.Context) error {
			select {
			case <-idle:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		c.logger.Debug("Render failed", zap.String("url", url), zap.Error(err))
		if runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, &TimeoutError{URL: url, Timeout: timeout, Err: err}
		}
		return nil, classify(url, timeout, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}

	c.logger.Debug("Rendered page",
		zap.String("url", url),
		zap.Duration("time", time.Since(start)),
		zap.Int("html_len", len(html)))
	return doc, nil
}
