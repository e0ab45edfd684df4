package x1337

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/zilezarach/torscrape-api/internal/extract"
	"github.com/zilezarach/torscrape-api/internal/models"
)

const (
	infoGroupMin  = 5
	statsGroupMin = 3
)

type detailPage struct {
	magnet  string
	images  models.Images
	details map[string]string
}

// parseDetailPage reads magnet, screenshots and the two ul.list span groups.
// Each group fills its keys only when it is long enough; otherwise every key
// it owns stays N/A.
func parseDetailPage(doc *goquery.Document) detailPage {
	page := detailPage{
		magnet:  models.NotAvailable,
		images:  models.Images{},
		details: models.DetailKeys(DetailKeys...),
	}
	if doc == nil {
		return page
	}
	root := doc.Selection

	page.magnet = detailMagnet(root)
	page.images = models.Images(extract.AllAttr(root, "img.img-responsive", "src"))

	lists := root.Find("ul.list")
	if lists.Length() < 3 {
		return page
	}

	info := extract.AllText(lists.Eq(1), "span")
	if len(info) >= infoGroupMin {
		page.details[keyCategory] = info[0]
		page.details[keyType] = info[1]
		page.details[keyLanguage] = info[2]
		page.details[keyUploader] = info[4]
	}

	stats := extract.AllText(lists.Eq(2), "span")
	if len(stats) >= statsGroupMin {
		page.details[keyDownloads] = stats[0]
		page.details[keyDateUploaded] = stats[2]
	}

	return page
}

func detailMagnet(root *goquery.Selection) string {
	labelled := extract.FirstWhere(root, "a[href]", func(s *goquery.Selection) bool {
		return strings.Contains(strings.TrimSpace(s.Text()), "Magnet Download")
	})
	if href, ok := labelled.Attr("href"); ok && strings.TrimSpace(href) != "" {
		return href
	}
	return extract.FirstAttr(root, `a[href^="magnet:"]`, "href", models.NotAvailable)
}
