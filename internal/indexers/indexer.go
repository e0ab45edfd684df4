package indexers

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/zilezarach/torscrape-api/internal/models"
)

// DocumentFunc fetches a secondary page for an adapter. The orchestrator
// binds it to the caller's user agent and timeout.
type DocumentFunc func(ctx context.Context, url string) (*goquery.Document, error)

// Adapter is everything source specific about one torrent site.
// Implementations are immutable after construction and safe for concurrent
// use.
type Adapter interface {
	Name() string
	// BuildSearchURL is pure; category may be empty.
	BuildSearchURL(query, category string, page int) string
	// ValidatePage maps any raw page value to a usable page number.
	ValidatePage(raw any) int
	// ScrapeListPage never fails. A missing results container yields an
	// empty slice, and row level problems are contained to their row.
	ScrapeListPage(ctx context.Context, doc *goquery.Document, fetch DocumentFunc, userAgent string) []models.TorrentResult
}
