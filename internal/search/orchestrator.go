package search

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/zilezarach/torscrape-api/internal/fetcher"
	"github.com/zilezarach/torscrape-api/internal/indexers"
	"github.com/zilezarach/torscrape-api/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DefaultUserAgent is sent when the caller declares none
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36"

// DefaultDetailConcurrency caps simultaneous detail page fetches per search
const DefaultDetailConcurrency = 5

var (
	// ErrEmptyQuery is returned before any I/O when the query is blank
	ErrEmptyQuery = errors.New("empty query")
	// ErrNoResults means the list page was fetched but yielded no rows
	ErrNoResults = errors.New("no results")
)

// Request is one search as it arrives from a caller. Page is deliberately
// untyped; the adapter decides how to read it.
type Request struct {
	Query     string
	Category  string
	Page      any
	UserAgent string
}

// Options tunes an Orchestrator
type Options struct {
	Timeout           time.Duration
	DetailConcurrency int
}

// Orchestrator drives an adapter through list fetch, scrape and detail
// fetches. It keeps no per-request state and is safe for concurrent use.
type Orchestrator struct {
	fetcher     fetcher.Fetcher
	timeout     time.Duration
	detailLimit int64
	logger      *zap.Logger
}

func New(f fetcher.Fetcher, opts Options, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = fetcher.DefaultTimeout
	}
	if opts.DetailConcurrency <= 0 {
		opts.DetailConcurrency = DefaultDetailConcurrency
	}
	return &Orchestrator{
		fetcher:     f,
		timeout:     opts.Timeout,
		detailLimit: int64(opts.DetailConcurrency),
		logger:      logger.Named("search"),
	}
}

// Search runs one search. Errors are ErrEmptyQuery, ErrNoResults, or the
// *fetcher.TimeoutError / *fetcher.FetchError of the list page fetch.
func (o *Orchestrator) Search(ctx context.Context, adapter indexers.Adapter, req Request) ([]models.TorrentResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		o.logger.Warn("Empty query received", zap.String("site", adapter.Name()))
		return nil, ErrEmptyQuery
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	page := adapter.ValidatePage(req.Page)
	searchURL := adapter.BuildSearchURL(query, req.Category, page)

	o.logger.Info("Fetching search page",
		zap.String("site", adapter.Name()),
		zap.String("query", query),
		zap.Int("page", page),
		zap.String("url", searchURL))

	doc, err := o.fetcher.Fetch(ctx, searchURL, userAgent, o.timeout)
	if err != nil {
		o.logger.Error("Search page fetch failed",
			zap.String("site", adapter.Name()),
			zap.String("url", searchURL),
			zap.Error(err))
		return nil, err
	}

	results := adapter.ScrapeListPage(ctx, doc, o.detailFetcher(userAgent), userAgent)
	if len(results) == 0 {
		o.logger.Info("No data found",
			zap.String("site", adapter.Name()),
			zap.String("query", query),
			zap.Int("page", page))
		return nil, ErrNoResults
	}

	o.logger.Info("Search complete",
		zap.String("site", adapter.Name()),
		zap.String("query", query),
		zap.Int("page", page),
		zap.Int("results", len(results)))
	return results, nil
}

// detailFetcher binds the user agent and timeout and gates concurrent
// fetches behind a per-search semaphore.
func (o *Orchestrator) detailFetcher(userAgent string) indexers.DocumentFunc {
	sem := semaphore.NewWeighted(o.detailLimit)
	return func(ctx context.Context, url string) (*goquery.Document, error) {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, &fetcher.FetchError{URL: url, Err: err}
		}
		defer sem.Release(1)
		return o.fetcher.Fetch(ctx, url, userAgent, o.timeout)
	}
}

// Outcome is either a result list or an error envelope, never both
type Outcome struct {
	Results []models.TorrentResult
	Error   *models.ErrorEnvelope
}

// Payload is the value to serialize for the caller
func (o Outcome) Payload() any {
	if o.Error != nil {
		return o.Error
	}
	return o.Results
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Payload())
}

// RunSearch is Search with every failure folded into an ErrorEnvelope
func (o *Orchestrator) RunSearch(ctx context.Context, adapter indexers.Adapter, req Request) Outcome {
	results, err := o.Search(ctx, adapter, req)
	if err != nil {
		return Outcome{Error: Envelope(err)}
	}
	return Outcome{Results: results}
}

// Envelope maps a Search error to the message callers see
func Envelope(err error) *models.ErrorEnvelope {
	switch {
	case errors.Is(err, ErrEmptyQuery):
		return &models.ErrorEnvelope{Message: "Empty Request"}
	case errors.Is(err, ErrNoResults):
		return &models.ErrorEnvelope{Message: "No data found"}
	case fetcher.IsTimeout(err):
		return &models.ErrorEnvelope{Message: "Timeout error: " + err.Error()}
	default:
		return &models.ErrorEnvelope{Message: "Error occurred: " + err.Error()}
	}
}
