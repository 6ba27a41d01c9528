package scrape

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/news-digest/internal/fetch"
	"github.com/jonathan/news-digest/internal/types"
)

// BrowserScraper renders listings in Chrome. Listings without cookie or
// "load more" selectors are rendered once each; the others keep one browser
// session and click "load more" until a round adds nothing new.
type BrowserScraper struct {
	source types.ArticleSource
	deps   Deps
}

// Scrape implements Scraper.
func (s *BrowserScraper) Scrape(ctx context.Context, known map[string]bool) ([]types.Article, error) {
	cfg := s.source.Scraper
	if cfg.CookieSelector == "" && cfg.LoadMoreSelector == "" {
		return s.renderEach(ctx, known)
	}

	opts := s.deps.Browser
	logger := s.deps.Logger.With("source", s.source.Name)

	browserCtx, cancel := fetch.NewBrowserContext(ctx, opts)
	defer cancel()

	budget := opts.Timeout * time.Duration(len(cfg.ListingURLs)*(maxPages(cfg)+1))
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, budget)
	defer cancelTimeout()

	seen := map[string]bool{}
	var out []types.Article

	for _, listing := range cfg.ListingURLs {
		logger.Info("navigating", "url", listing)
		if err := chromedp.Run(browserCtx,
			chromedp.Navigate(listing),
			chromedp.WaitReady("body"),
			chromedp.Sleep(opts.Settle),
		); err != nil {
			return out, &ScrapeError{Source: s.source.Name, Message: "failed to load listing", Cause: err}
		}

		if cfg.CookieSelector != "" {
			if clicked, _ := clickIfPresent(browserCtx, cfg.CookieSelector); clicked {
				logger.Debug("dismissed cookie banner")
				_ = chromedp.Run(browserCtx, chromedp.Sleep(time.Second))
			}
		}

		for round := 0; ; round++ {
			var html string
			if err := chromedp.Run(browserCtx, chromedp.OuterHTML("html", &html)); err != nil {
				return out, &ScrapeError{Source: s.source.Name, Message: "failed to read page", Cause: err}
			}

			items, err := ParseListing(html, cfg, baseFor(s.source, listing), s.deps.Now())
			if err != nil {
				return out, &ScrapeError{Source: s.source.Name, Message: "failed to parse page", Cause: err}
			}

			added := 0
			for _, a := range items {
				if known[a.URL] || seen[a.URL] {
					continue
				}
				seen[a.URL] = true
				out = append(out, a)
				added++
			}
			logger.Debug("listing round", "round", round+1, "items", len(items), "new", added)

			if added == 0 || cfg.LoadMoreSelector == "" || round+1 >= maxPages(cfg) {
				break
			}
			clicked, err := clickIfPresent(browserCtx, cfg.LoadMoreSelector)
			if err != nil || !clicked {
				break
			}
			_ = chromedp.Run(browserCtx, chromedp.Sleep(opts.Settle))
		}
	}
	return out, nil
}

func (s *BrowserScraper) renderEach(ctx context.Context, known map[string]bool) ([]types.Article, error) {
	cfg := s.source.Scraper
	logger := s.deps.Logger.With("source", s.source.Name)

	seen := map[string]bool{}
	var out []types.Article
	var lastErr error

	for _, listing := range cfg.ListingURLs {
		logger.Info("rendering", "url", listing)
		html, err := s.deps.Render(ctx, listing, s.deps.Browser)
		if err != nil {
			logger.Warn("listing render failed", "url", listing, "error", err)
			lastErr = err
			continue
		}

		items, err := ParseListing(html, cfg, baseFor(s.source, listing), s.deps.Now())
		if err != nil {
			lastErr = err
			continue
		}
		for _, a := range items {
			if known[a.URL] || seen[a.URL] {
				continue
			}
			seen[a.URL] = true
			out = append(out, a)
		}
	}

	if len(out) == 0 && lastErr != nil {
		return nil, &ScrapeError{Source: s.source.Name, Message: "no listing could be rendered", Cause: lastErr}
	}
	return out, nil
}

// clickIfPresent clicks the first node matching selector, if any.
func clickIfPresent(ctx context.Context, selector string) (bool, error) {
	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes(selector, &nodes, chromedp.AtLeast(0))); err != nil {
		return false, err
	}
	if len(nodes) == 0 {
		return false, nil
	}
	if err := chromedp.Run(ctx, chromedp.MouseClickNode(nodes[0])); err != nil {
		return false, err
	}
	return true, nil
}
