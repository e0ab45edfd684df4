package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `<html><body>
<div class="entry">
  <span class="title">  Ubuntu 24.04  </span>
  <span class="blank">   </span>
  <a class="dl" href="magnet:?xt=urn:btih:abc">Magnet Download</a>
  <a class="dl" href="/torrent/1/">Torrent</a>
  <img class="shot" src="https://img/1.jpg">
  <img class="shot">
  <img class="shot" src="https://img/2.jpg">
  <ul><li> a </li><li>b</li></ul>
</div>
</body></html>`

func doc(t *testing.T) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(fixture))
	require.NoError(t, err)
	return d
}

func TestFirstText(t *testing.T) {
	d := doc(t)
	assert.Equal(t, "Ubuntu 24.04", FirstText(d.Selection, "span.title", "Na"))
	assert.Equal(t, "Na", FirstText(d.Selection, "span.blank", "Na"))
	assert.Equal(t, "Na", FirstText(d.Selection, "span.missing", "Na"))
	assert.Equal(t, "Na", FirstText(nil, "span.title", "Na"))
}

func TestFirstAttr(t *testing.T) {
	d := doc(t)
	assert.Equal(t, "magnet:?xt=urn:btih:abc", FirstAttr(d.Selection, "a.dl", "href", "Na"))
	assert.Equal(t, "Na", FirstAttr(d.Selection, "a.dl", "title", "Na"))
	assert.Equal(t, "Na", FirstAttr(d.Selection, "a.none", "href", "Na"))
}

func TestAllAttr_SkipsMissingAndKeepsOrder(t *testing.T) {
	d := doc(t)
	assert.Equal(t, []string{"https://img/1.jpg", "https://img/2.jpg"}, AllAttr(d.Selection, "img.shot", "src"))

	empty := AllAttr(d.Selection, "img.none", "src")
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestAllText(t *testing.T) {
	d := doc(t)
	assert.Equal(t, []string{"a", "b"}, AllText(d.Selection, "ul li"))
	assert.NotNil(t, AllText(nil, "li"))
}

func TestFirstWhere(t *testing.T) {
	d := doc(t)
	got := FirstWhere(d.Selection, "a", func(s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "Torrent")
	})
	href, ok := got.Attr("href")
	assert.True(t, ok)
	assert.Equal(t, "/torrent/1/", href)

	none := FirstWhere(d.Selection, "a", func(*goquery.Selection) bool { return false })
	require.NotNil(t, none)
	assert.Equal(t, 0, none.Length())
	assert.Equal(t, 0, FirstWhere(nil, "a", func(*goquery.Selection) bool { return true }).Length())
}
