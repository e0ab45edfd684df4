package x1337

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
	"golang.org/x/sync/errgroup"
)

// BaseURL is the 1337x mirror searched by default
const BaseURL = "https://www.1377x.to"

const (
	pageFloor            = 1
	resultsTableSelector = "table.table-list.table.table-responsive.table-striped"
	minColumns           = 5
	maxDetailWorkers     = 20
)

// otherDetails keys, in the order the detail page lists them
const (
	keyCategory     = "category"
	keyType         = "type"
	keyLanguage     = "language"
	keyUploader     = "uploader"
	keyDownloads    = "downloads"
	keyDateUploaded = "dateUploaded"
)

// DetailKeys is the fixed otherDetails key set of every 1337x result
var DetailKeys = []string{keyCategory, keyType, keyLanguage, keyUploader, keyDownloads, keyDateUploaded}

// Indexer scrapes 1337x: a results table whose rows link to detail pages
// carrying the magnet, screenshots and extended metadata.
type Indexer struct {
	baseURL string
	logger  *zap.Logger
}

var _ indexers.Adapter = (*Indexer)(nil)

// NewIndexer returns a 1337x adapter rooted at baseURL, or BaseURL when empty
func NewIndexer(baseURL string, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Indexer{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Named("1337x"),
	}
}

func (idx *Indexer) Name() string {
	return "1337x"
}

// BuildSearchURL builds /category-search/{query}/{category}/{page}/
func (idx *Indexer) BuildSearchURL(query, category string, page int) string {
	return fmt.Sprintf("%s/category-search/%s/%s/%d/",
		idx.baseURL,
		url.PathEscape(query),
		searchSegment(category),
		page,
	)
}

// ValidatePage returns raw as a page number of at least 1, falling back to 1
func (idx *Indexer) ValidatePage(raw any) int {
	page, ok := indexers.CoercePage(raw, pageFloor)
	if !ok {
		idx.logger.Warn("Invalid page number, falling back", zap.Any("page", raw), zap.Int("fallback", pageFloor))
	}
	return page
}

type listRow struct {
	name      string
	seeders   string
	leechers  string
	date      string
	size      string
	detailURL string
}

func (idx *Indexer) ScrapeListPage(ctx context.Context, doc *goquery.Document, fetch indexers.DocumentFunc, userAgent string) []models.TorrentResult {
	if doc == nil {
		return make([]models.TorrentResult, 0)
	}

	table := doc.Find(resultsTableSelector).First()
	if table.Length() == 0 {
		idx.logger.Warn("No results table found in the HTML")
		return make([]models.TorrentResult, 0)
	}

	trs := table.Find("tr")
	if trs.Length() <= 1 {
		idx.logger.Warn("Results table has no data rows")
		return make([]models.TorrentResult, 0)
	}

	rows := make([]listRow, 0, trs.Length()-1)
	trs.Slice(1, goquery.ToEnd).Each(func(i int, s *goquery.Selection) {
		row, err := idx.parseRow(s)
		if err != nil {
			idx.logger.Warn("Skipping row", zap.Int("row", i+1), zap.Error(err))
			return
		}
		rows = append(rows, row)
	})

	idx.logger.Debug("Fetching detail pages", zap.Int("count", len(rows)))

	// Each goroutine owns results[i], so list order is kept without locking.
	results := make([]models.TorrentResult, len(rows))
	var g errgroup.Group
	g.SetLimit(maxDetailWorkers)
	for i, row := range rows {
		g.Go(func() error {
			results[i] = idx.buildResult(ctx, row, fetch)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (idx *Indexer) parseRow(s *goquery.Selection) (listRow, error) {
	columns := s.Find("td")
	if columns.Length() < minColumns {
		return listRow{}, fmt.Errorf("%w: expected at least %d columns, got %d",
			indexers.ErrMalformedRow, minColumns, columns.Length())
	}

	nameCell := columns.Eq(0)
	name := extract.Text(nameCell, models.NotAvailable)

	links := nameCell.Find("a")
	if links.Length() < 2 {
		return listRow{}, fmt.Errorf("%w: no detail link for %q", indexers.ErrMalformedRow, name)
	}
	href, _ := links.Eq(1).Attr("href")
	if strings.TrimSpace(href) == "" {
		return listRow{}, fmt.Errorf("%w: empty detail link for %q", indexers.ErrMalformedRow, name)
	}
	detailURL, err := idx.resolve(href)
	if err != nil {
		return listRow{}, fmt.Errorf("%w: bad detail link %q: %v", indexers.ErrMalformedRow, href, err)
	}

	return listRow{
		name:      name,
		seeders:   extract.Text(columns.Eq(1), models.NotAvailable),
		leechers:  extract.Text(columns.Eq(2), models.NotAvailable),
		date:      extract.Text(columns.Eq(3), models.NotAvailable),
		size:      extract.Text(columns.Eq(4), models.NotAvailable),
		detailURL: detailURL,
	}, nil
}

func (idx *Indexer) resolve(href string) (string, error) {
	base, err := url.Parse(idx.baseURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// buildResult fills in the detail page fields of row. A failed fetch leaves
// them at their sentinels.
func (idx *Indexer) buildResult(ctx context.Context, row listRow, fetch indexers.DocumentFunc) models.TorrentResult {
	result := models.TorrentResult{
		Name:         row.name,
		Magnet:       models.NotAvailable,
		Seeders:      row.seeders,
		Leechers:     row.leechers,
		Size:         row.size,
		Date:         row.date,
		Images:       models.Images{},
		OtherDetails: models.DetailKeys(DetailKeys...),
	}

	if fetch == nil {
		return result
	}
	doc, err := fetch(ctx, row.detailURL)
	if err != nil {
		idx.logger.Warn("Failed to fetch detail page",
			zap.String("url", row.detailURL),
			zap.Error(err))
		return result
	}

	detail := parseDetailPage(doc)
	result.Magnet = detail.magnet
	result.Images = detail.images
	for k, v := range detail.details {
		result.OtherDetails[k] = v
	}

	idx.logger.Debug("Scraped row", zap.String("name", row.name))
	return result
}
