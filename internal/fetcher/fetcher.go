package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single fetch when the caller passes zero
const DefaultTimeout = 10 * time.Second

// Backend names accepted by New
const (
	BackendChrome       = "chrome"
	BackendHTTP         = "http"
	BackendFlareSolverr = "flaresolverr"
)

// Fetcher retrieves one page and returns it as a parsed document.
// Implementations hold no state between calls.
type Fetcher interface {
	Fetch(ctx context.Context, url, userAgent string, timeout time.Duration) (*goquery.Document, error)
}

// Func adapts a plain function to Fetcher
type Func func(ctx context.Context, url, userAgent string, timeout time.Duration) (*goquery.Document, error)

func (f Func) Fetch(ctx context.Context, url, userAgent string, timeout time.Duration) (*goquery.Document, error) {
	return f(ctx, url, userAgent, timeout)
}

// Config selects and tunes a backend
type Config struct {
	Backend         string
	Headless        bool
	BrowserPath     string
	FlareSolverrURL string
}

// New builds the fetcher named by cfg.Backend
func New(cfg *Config, logger *zap.Logger) (Fetcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("fetcher")
	switch strings.ToLower(cfg.Backend) {
	case "", BackendChrome:
		return NewChromeFetcher(cfg, logger), nil
	case BackendHTTP:
		return NewHTTPFetcher(logger), nil
	case BackendFlareSolverr:
		if cfg.FlareSolverrURL == "" {
			return nil, fmt.Errorf("flaresolverr backend needs an endpoint")
		}
		return NewFlareSolverrFetcher(cfg.FlareSolverrURL, logger), nil
	default:
		return nil, fmt.Errorf("unknown fetch backend %q", cfg.Backend)
	}
}

func effectiveTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultTimeout
	}
	return timeout
}

// challengeTitles are the page titles anti-bot interstitials serve
var challengeTitles = []string{"just a moment", "checking your browser", "verify you are human", "attention required"}

// challengeMarkers only occur in interstitial markup, never in listings
const challengeMarkers = `#challenge-form, #cf-challenge-running, #challenge-running, #cf-wrapper, script[src*="/cdn-cgi/challenge-platform/"]`

// isChallengePage matches on document structure, so page text that merely
// mentions one of the phrases is not mistaken for a block.
func isChallengePage(doc *goquery.Document) bool {
	title := strings.ToLower(strings.TrimSpace(doc.Find("title").First().Text()))
	for _, t := range challengeTitles {
		if strings.HasPrefix(title, t) {
			return true
		}
	}
	return doc.Find(challengeMarkers).Length() > 0
}
