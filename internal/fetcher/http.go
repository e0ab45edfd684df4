package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// maxBodyBytes caps how much of a response body is read
const maxBodyBytes = 8 << 20

// HTTPFetcher issues a plain GET per call. It does not run scripts, so it
// suits sources that render server side.
type HTTPFetcher struct {
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPFetcher(logger *zap.Logger) *HTTPFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPFetcher{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		logger: logger,
	}
}

func (h *HTTPFetcher) Fetch(ctx context.Context, url, userAgent string, timeout time.Duration) (*goquery.Document, error) {
	timeout = effectiveTimeout(timeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	h.logger.Debug("Fetching page", zap.String("url", url))
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, classify(url, timeout, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classify(url, timeout, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}
	if isChallengePage(doc) {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: errors.New("blocked by anti-bot challenge page")}
	}

	h.logger.Debug("Fetched page",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("body_length", len(body)))
	return doc, nil
}
