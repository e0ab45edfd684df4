package piratebay

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/zilezarach/torscrape-api/internal/extract"
	"github.com/zilezarach/torscrape-api/internal/indexers"
	"github.com/zilezarach/torscrape-api/internal/models"
	"go.uber.org/zap"
)

// BaseURL is the Pirate Bay host searched by default
const BaseURL = "https://thepiratebay.org"

const (
	pageFloor     = 0
	entrySelector = "li.list-entry"
)

const (
	keyUploader = "uploader"
	keyCategory = "category"
)

// DetailKeys is the fixed otherDetails key set of every Pirate Bay result
var DetailKeys = []string{keyUploader, keyCategory}

// Indexer scrapes The Pirate Bay, whose listing carries every field on the
// results page itself. No detail pages are fetched.
type Indexer struct {
	baseURL string
	logger  *zap.Logger
}

var _ indexers.Adapter = (*Indexer)(nil)

func NewIndexer(baseURL string, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Indexer{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Named("piratebay"),
	}
}

func (idx *Indexer) Name() string {
	return "piratebay"
}

// BuildSearchURL targets search.php. A non-empty category is sent as the cat
// parameter; without one the audio filter applies.
func (idx *Indexer) BuildSearchURL(query, category string, page int) string {
	searchURL := fmt.Sprintf("%s/search.php?q=%s&audio=on&search=Pirate+Search&page=%d&orderby=",
		idx.baseURL,
		url.QueryEscape(query),
		page,
	)
	if category = strings.TrimSpace(category); category != "" {
		searchURL += "&cat=" + url.QueryEscape(category)
	}
	return searchURL
}

// ValidatePage returns raw as a page number of at least 0, falling back to 0
func (idx *Indexer) ValidatePage(raw any) int {
	page, ok := indexers.CoercePage(raw, pageFloor)
	if !ok {
		idx.logger.Warn("Invalid page number, falling back", zap.Any("page", raw), zap.Int("fallback", pageFloor))
	}
	return page
}

func (idx *Indexer) ScrapeListPage(_ context.Context, doc *goquery.Document, _ indexers.DocumentFunc, _ string) []models.TorrentResult {
	results := make([]models.TorrentResult, 0)
	if doc == nil {
		return results
	}

	entries := doc.Find(entrySelector)
	if entries.Length() == 0 {
		idx.logger.Warn("No list entries found in the HTML")
		return results
	}

	entries.Each(func(_ int, entry *goquery.Selection) {
		results = append(results, parseEntry(entry))
	})
	return results
}

// parseEntry reads each field with its own lookup so one missing span only
// blanks that field.
func parseEntry(entry *goquery.Selection) models.TorrentResult {
	icons := entry.Find("span.item-icons")

	return models.TorrentResult{
		Name:     extract.FirstText(entry, "span.item-title", models.NotAvailable),
		Magnet:   extract.FirstAttr(icons, `a[href^="magnet:"]`, "href", models.NotAvailable),
		Seeders:  extract.FirstText(entry, "span.item-seed", models.NotAvailable),
		Leechers: extract.FirstText(entry, "span.item-leech", models.NotAvailable),
		Size:     extract.FirstText(entry, "span.item-size", models.NotAvailable),
		Date:     extract.FirstText(entry, "span.item-uploaded", models.NotAvailable),
		Images:   models.Images{},
		OtherDetails: map[string]string{
			keyUploader: extract.FirstText(entry, "span.item-user", models.MissingDetail),
			keyCategory: extract.FirstText(entry, "span.item-type", models.MissingDetail),
		},
	}
}
