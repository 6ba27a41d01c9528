package scrape

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/news-digest/internal/articles"
	"github.com/jonathan/news-digest/internal/logging"
	"github.com/jonathan/news-digest/internal/types"
)

// Result summarizes the refresh of one source.
type Result struct {
	Source string
	Added  int
	Total  int
	Err    error
}

// RefreshOptions controls a refresh run.
type RefreshOptions struct {
	// Concurrency bounds how many sources are scraped at once. Zero means one.
	Concurrency int
	Deps        Deps
	// NewScraper overrides scraper construction, mainly for tests.
	NewScraper func(src types.ArticleSource, deps Deps) (Scraper, error)
}

// Refresh scrapes every source that has a scraper configured and prepends
// new articles to its file. A failing source is logged and reported in its
// Result; it never stops the others. Results follow the order of sources.
func Refresh(ctx context.Context, sources []types.ArticleSource, opts RefreshOptions) []Result {
	deps := opts.Deps.withDefaults()
	logger := logging.OrDiscard(deps.Logger)
	build := opts.NewScraper
	if build == nil {
		build = New
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = 1
	}

	results := make([]Result, len(sources))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, src := range sources {
		results[i].Source = src.Name
		if src.Scraper == nil {
			logger.Debug("source has no scraper, skipping", "source", src.Name)
			continue
		}
		g.Go(func() error {
			results[i] = refreshOne(ctx, src, deps, build, logger)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func refreshOne(ctx context.Context, src types.ArticleSource, deps Deps, build func(types.ArticleSource, Deps) (Scraper, error), logger *slog.Logger) Result {
	res := Result{Source: src.Name}

	existing, err := articles.Load(src.File, src.BaseURL, logger)
	if err != nil {
		res.Err = err
		logger.Warn("failed to load existing articles", "source", src.Name, "error", err)
		return res
	}

	scraper, err := build(src, deps)
	if err != nil {
		res.Err = err
		logger.Warn("failed to build scraper", "source", src.Name, "error", err)
		return res
	}

	fresh, err := scraper.Scrape(ctx, articles.KnownURLs(existing))
	if err != nil {
		res.Err = err
		logger.Warn("failed to refresh source", "source", src.Name, "error", err)
		if len(fresh) == 0 {
			return res
		}
	}

	if src.Scraper.EnrichAbstract && len(fresh) > 0 {
		n := EnrichAbstracts(ctx, fresh, deps.Fetch, logger)
		logger.Debug("enriched abstracts", "source", src.Name, "filled", n)
	}

	merged, added := articles.Merge(fresh, existing)
	res.Added, res.Total = added, len(merged)
	if added == 0 {
		logger.Info("no new articles", "source", src.Name, "total", res.Total)
		return res
	}

	if err := articles.Save(src.File, merged); err != nil {
		res.Err = err
		logger.Warn("failed to save articles", "source", src.Name, "error", err)
		return res
	}
	logger.Info("refreshed source", "source", src.Name, "new", added, "total", res.Total)
	return res
}
