package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/news-digest/internal/fetch"
	"github.com/jonathan/news-digest/internal/logging"
	"github.com/jonathan/news-digest/internal/types"
)

const (
	pagePlaceholder = "{page}"
	// DefaultMaxPages caps paged listings and "load more" rounds.
	DefaultMaxPages = 10
)

// Scraper returns the articles of one source that are not in known.
type Scraper interface {
	Scrape(ctx context.Context, known map[string]bool) ([]types.Article, error)
}

// Deps carries what scrapers need from the outside world.
type Deps struct {
	// Fetch returns the HTML at url. Nil means fetch.URL with default options.
	Fetch func(ctx context.Context, url string) (string, error)
	// Render returns the HTML of url after Chrome has run its scripts.
	// Nil means fetch.Render.
	Render  func(ctx context.Context, url string, opts fetch.BrowserOptions) (string, error)
	Browser fetch.BrowserOptions
	Now     func() time.Time
	Logger  *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Fetch == nil {
		d.Fetch = httpFetch
	}
	if d.Render == nil {
		d.Render = fetch.Render
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Browser.Timeout == 0 {
		d.Browser = fetch.DefaultBrowserOptions()
	}
	d.Logger = logging.OrDiscard(d.Logger)
	return d
}

func httpFetch(ctx context.Context, url string) (string, error) {
	res, err := fetch.URL(ctx, url, nil)
	if err != nil {
		return "", err
	}
	return res.HTML, nil
}

// New builds the scraper configured for src.
func New(src types.ArticleSource, deps Deps) (Scraper, error) {
	if src.Scraper == nil {
		return nil, &ScrapeError{Source: src.Name, Message: "no scraper configured"}
	}
	if err := checkDateFormat(src.Scraper.DateFormat); err != nil {
		return nil, &ScrapeError{Source: src.Name, Message: "invalid scraper config", Cause: err}
	}

	deps = deps.withDefaults()
	switch src.Scraper.Kind {
	case "", types.ScraperListing:
		return &ListingScraper{source: src, deps: deps}, nil
	case types.ScraperBrowser:
		return &BrowserScraper{source: src, deps: deps}, nil
	default:
		return nil, &ScrapeError{Source: src.Name, Message: fmt.Sprintf("unknown scraper kind %q", src.Scraper.Kind)}
	}
}

func checkDateFormat(format string) error {
	switch format {
	case "", DateISO, DateGreek, DateRussian, DateEnglish, DateTurkish, DateDotted, DateAny:
		return nil
	}
	return fmt.Errorf("date format %q is not one of %s", format, describeFormats())
}

func maxPages(cfg *types.ScraperConfig) int {
	if cfg.MaxPages > 0 {
		return cfg.MaxPages
	}
	return DefaultMaxPages
}

func baseFor(src types.ArticleSource, pageURL string) string {
	if src.BaseURL != "" {
		return src.BaseURL
	}
	return pageURL
}

// ListingScraper reads server-rendered listing pages. A listing URL with a
// "{page}" placeholder is paged from 1 until a page is empty, a known article
// appears, or the page cap is reached.
type ListingScraper struct {
	source types.ArticleSource
	deps   Deps
}

// Scrape implements Scraper.
func (s *ListingScraper) Scrape(ctx context.Context, known map[string]bool) ([]types.Article, error) {
	cfg := s.source.Scraper
	logger := s.deps.Logger.With("source", s.source.Name)

	seen := map[string]bool{}
	var out []types.Article
	var lastErr error

	for _, listing := range cfg.ListingURLs {
		paged := strings.Contains(listing, pagePlaceholder)
		pages := 1
		if paged {
			pages = maxPages(cfg)
		}

	pageLoop:
		for page := 1; page <= pages; page++ {
			pageURL := strings.ReplaceAll(listing, pagePlaceholder, strconv.Itoa(page))
			logger.Debug("fetching listing", "url", pageURL)

			html, err := s.deps.Fetch(ctx, pageURL)
			if err != nil {
				logger.Warn("listing fetch failed", "url", pageURL, "error", err)
				lastErr = err
				break
			}

			items, err := ParseListing(html, cfg, baseFor(s.source, pageURL), s.deps.Now())
			if err != nil {
				lastErr = err
				break
			}
			if len(items) == 0 {
				break
			}

			for _, a := range items {
				if known[a.URL] {
					if paged {
						break pageLoop
					}
					continue
				}
				if seen[a.URL] {
					continue
				}
				seen[a.URL] = true
				out = append(out, a)
			}
		}
	}

	if len(out) == 0 && lastErr != nil {
		return nil, &ScrapeError{Source: s.source.Name, Message: "no listing could be read", Cause: lastErr}
	}
	return out, nil
}
