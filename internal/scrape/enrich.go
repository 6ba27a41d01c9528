package scrape

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"

	"github.com/jonathan/news-digest/internal/fetch"
	"github.com/jonathan/news-digest/internal/logging"
	"github.com/jonathan/news-digest/internal/types"
)

const maxAbstractRunes = 300

// Excerpt derives a short abstract from an article page: the readability
// excerpt when there is one, otherwise the start of the main text.
func Excerpt(html, pageURL string) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), parsedURL)
	if err == nil {
		if ex := strings.TrimSpace(article.Excerpt); ex != "" {
			return truncateRunes(ex, maxAbstractRunes), nil
		}
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return truncateRunes(strings.Join(strings.Fields(text), " "), maxAbstractRunes), nil
		}
	}

	text, err := fetch.ExtractMainText(html, fetch.ArticleSelectors())
	if err != nil {
		return "", err
	}
	return truncateRunes(strings.Join(strings.Fields(text), " "), maxAbstractRunes), nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

// EnrichAbstracts fills in missing abstracts by fetching each article page.
// Failures leave the abstract empty.
func EnrichAbstracts(ctx context.Context, list []types.Article, fetchPage func(ctx context.Context, url string) (string, error), logger *slog.Logger) int {
	logger = logging.OrDiscard(logger)

	filled := 0
	for i := range list {
		if list[i].AbstractText() != "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		html, err := fetchPage(ctx, list[i].URL)
		if err != nil {
			logger.Debug("abstract fetch failed", "url", list[i].URL, "error", err)
			continue
		}
		ex, err := Excerpt(html, list[i].URL)
		if err != nil || ex == "" {
			continue
		}
		list[i].Abstract = types.StringPtr(ex)
		filled++
	}
	return filled
}
