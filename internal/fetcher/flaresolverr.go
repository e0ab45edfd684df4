package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// FlareSolverrFetcher delegates rendering to a FlareSolverr service, which
// runs its own browser and clears challenge pages before answering.
type FlareSolverrFetcher struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

type flareSolverrRequest struct {
	Cmd        string `json:"cmd"`
	URL        string `json:"url"`
	MaxTimeout int64  `json:"maxTimeout"`
	UserAgent  string `json:"userAgent,omitempty"`
}

type flareSolverrResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Solution struct {
		URL       string `json:"url"`
		Status    int    `json:"status"`
		UserAgent string `json:"userAgent"`
		Response  string `json:"response"`
	} `json:"solution"`
}

func NewFlareSolverrFetcher(endpoint string, logger *zap.Logger) *FlareSolverrFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlareSolverrFetcher{
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
}

func (f *FlareSolverrFetcher) Fetch(ctx context.Context, url, userAgent string, timeout time.Duration) (*goquery.Document, error) {
	timeout = effectiveTimeout(timeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	jsonData, err := json.Marshal(flareSolverrRequest{
		Cmd:        "request.get",
		URL:        url,
		MaxTimeout: timeout.Milliseconds(),
		UserAgent:  userAgent,
	})
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint+"/v1", bytes.NewReader(jsonData))
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	f.logger.Debug("Solving page via FlareSolverr", zap.String("url", url))
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, classify(url, timeout, fmt.Errorf("flaresolverr request failed: %w", err))
	}
	defer resp.Body.Close()

	var fsResp flareSolverrResponse
	if err := json.NewDecoder(resp.Body).Decode(&fsResp); err != nil {
		return nil, classify(url, timeout, fmt.Errorf("decode failed: %w", err))
	}

	if fsResp.Status != "ok" {
		msgErr := fmt.Errorf("flaresolverr error: %s", fsResp.Message)
		if strings.Contains(strings.ToLower(fsResp.Message), "timeout") {
			return nil, &TimeoutError{URL: url, Timeout: timeout, Err: msgErr}
		}
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: msgErr}
	}

	if code := fsResp.Solution.Status; code != 0 && (code < 200 || code > 299) {
		return nil, &FetchError{URL: url, StatusCode: code, Err: errors.New("upstream returned an error page")}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fsResp.Solution.Response))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}

	f.logger.Debug("Solved page",
		zap.String("url", url),
		zap.Int("html_len", len(fsResp.Solution.Response)))
	return doc, nil
}
