package scrape

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/news-digest/internal/articles"
	"github.com/jonathan/news-digest/internal/types"
)

var backgroundImageRe = regexp.MustCompile(`background-image:\s*url\(['"]?(.*?)['"]?\)`)

// ParseListing extracts articles from one listing page. Items without a link
// are skipped; relative links and images are resolved against baseURL.
func ParseListing(html string, cfg *types.ScraperConfig, baseURL string, now time.Time) ([]types.Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var out []types.Article
	doc.Find(cfg.ItemSelector).Each(func(_ int, item *goquery.Selection) {
		link := item
		if cfg.LinkSelector != "" {
			link = item.Find(cfg.LinkSelector).First()
		}
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}

		a := types.Article{URL: articles.ResolveURL(baseURL, href)}
		a.Title = types.StringPtr(titleOf(item, link, cfg))
		a.Abstract = types.StringPtr(textOf(item, cfg.AbstractSelector))
		a.Author = types.StringPtr(authorOf(item, cfg.AuthorSelector))
		a.Datetime = datetimeOf(item, cfg, now)
		if img := imageOf(item, cfg.ImageSelector); img != "" {
			a.ImageURL = types.StringPtr(articles.ResolveURL(baseURL, img))
		}
		out = append(out, a)
	})
	return out, nil
}

func textOf(item *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(item.Find(selector).First().Text())
}

func titleOf(item, link *goquery.Selection, cfg *types.ScraperConfig) string {
	if t := textOf(item, cfg.TitleSelector); t != "" {
		return t
	}
	if t, ok := link.Attr("title"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	return strings.TrimSpace(link.Text())
}

func authorOf(item *goquery.Selection, selector string) string {
	author := textOf(item, selector)
	author = strings.TrimSpace(strings.TrimPrefix(author, "By"))
	return author
}

func datetimeOf(item *goquery.Selection, cfg *types.ScraperConfig, now time.Time) *string {
	if cfg.TimeSelector == "" {
		return nil
	}
	node := item.Find(cfg.TimeSelector).First()
	if node.Length() == 0 {
		return nil
	}

	raw := strings.TrimSpace(node.Text())
	if cfg.TimeAttr != "" {
		raw, _ = node.Attr(cfg.TimeAttr)
	}
	parsed, ok := ParseDate(cfg.DateFormat, raw, now)
	if !ok {
		return nil
	}
	return &parsed
}

func imageOf(item *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	node := item.Find(selector).First()
	for _, attr := range []string{"src", "data-src"} {
		if v, ok := node.Attr(attr); ok && v != "" {
			return v
		}
	}
	if style, ok := node.Attr("style"); ok {
		if m := backgroundImageRe.FindStringSubmatch(style); m != nil {
			return m[1]
		}
	}
	return ""
}
