package scrape

import (
	"testing"
	"time"

	"github.com/jonathan/news-digest/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `
<html><body>
  <article>
    <a class="title-link" href="/cyprus/2026/02/17/budget/"><h2>Budget passes</h2></a>
    <div class="abstract"> House approves the budget. </div>
    <time datetime="2026-02-17T11:31:00+02:00">17.02.2026</time>
    <div class="authors">By Jane Doe</div>
    <img src="/img/budget.jpg">
  </article>
  <article>
    <a class="title-link" href="https://cm.example/cyprus/strike/" title="Strike called"></a>
    <span class="thumb" style="background-image: url('https://cdn.example/strike.jpg')"></span>
  </article>
  <article><h2>No link here</h2></article>
</body></html>`

func TestParseListing(t *testing.T) {
	cfg := &types.ScraperConfig{
		ItemSelector:     "article",
		LinkSelector:     "a.title-link",
		TitleSelector:    "h2",
		AbstractSelector: "div.abstract",
		TimeSelector:     "time",
		TimeAttr:         "datetime",
		AuthorSelector:   "div.authors",
		ImageSelector:    "img, span.thumb",
	}

	got, err := ParseListing(listingHTML, cfg, "https://cm.example/category/cyprus/", time.Now())
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "https://cm.example/cyprus/2026/02/17/budget/", first.URL)
	assert.Equal(t, "Budget passes", first.TitleText())
	assert.Equal(t, "House approves the budget.", first.AbstractText())
	assert.Equal(t, "2026-02-17T11:31:00+02:00", first.DatetimeText())
	require.NotNil(t, first.Author)
	assert.Equal(t, "Jane Doe", *first.Author)
	require.NotNil(t, first.ImageURL)
	assert.Equal(t, "https://cm.example/img/budget.jpg", *first.ImageURL)

	second := got[1]
	assert.Equal(t, "Strike called", second.TitleText())
	assert.Nil(t, second.Abstract)
	assert.Nil(t, second.Datetime)
	require.NotNil(t, second.ImageURL)
	assert.Equal(t, "https://cdn.example/strike.jpg", *second.ImageURL)
}

func TestParseListing_ItemIsLink(t *testing.T) {
	html := `<div class="cards"><a class="card" href="/a"><h3>A</h3><div class="time">17.02.2026 13:31</div></a></div>`
	cfg := &types.ScraperConfig{
		ItemSelector:  "a.card",
		TitleSelector: "h3",
		TimeSelector:  "div.time",
		DateFormat:    DateDotted,
	}

	got, err := ParseListing(html, cfg, "https://p.example", time.Now())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://p.example/a", got[0].URL)
	assert.Equal(t, "2026-02-17T13:31:00", got[0].DatetimeText())
}
