package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/news-digest/internal/fetch"
	"github.com/jonathan/news-digest/internal/observability"
	"github.com/jonathan/news-digest/internal/scrape"
)

var refreshArticlesCmd = &cobra.Command{
	Use:   "refresh-articles",
	Short: "Scrape the article sources of the selected languages",
	Long:  "Fetches each configured listing, stops at the first known article and prepends new articles to the source's JSON file. A failing source is reported and does not stop the others.",
	Args:  cobra.NoArgs,
	RunE:  runRefreshArticles,
}

func init() {
	rootCmd.AddCommand(refreshArticlesCmd)
}

func runRefreshArticles(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	results := refreshSources(cmd.Context(), s)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if len(results) > 0 && failed == len(results) {
		return fmt.Errorf("all %d sources failed to refresh", failed)
	}
	return nil
}

// refreshSources scrapes every source of the selected languages and prints a
// summary table.
func refreshSources(ctx context.Context, s *settings) []scrape.Result {
	sources := s.langs.AllSources()
	if len(sources) == 0 {
		fmt.Printf("No article sources configured.\n")
		return nil
	}

	browser := fetch.DefaultBrowserOptions()
	browser.Headless = s.cfg.HeadlessBrowser()
	browser.Logger = s.logger

	fmt.Printf("Refreshing %d article sources...\n", len(sources))
	results := scrape.Refresh(ctx, sources, scrape.RefreshOptions{
		Concurrency: s.cfg.ScrapeConcurrency,
		Deps: scrape.Deps{
			Browser: browser,
			Logger:  s.logger,
		},
	})

	observability.NewPrinter(os.Stdout).PrintRefreshResults(results)
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("⚠️ Failed to refresh %s: %v\n", r.Source, r.Err)
		}
	}
	return results
}
