package linking

import (
	"log/slog"
	"time"

	"github.com/araddon/dateparse"

	"github.com/jonathan/news-digest/internal/articles"
	"github.com/jonathan/news-digest/internal/logging"
	"github.com/jonathan/news-digest/internal/types"
)

// SourceArticles pairs a source with the articles stored for it.
type SourceArticles struct {
	Source   types.ArticleSource
	Articles []types.Article
}

// LoadSources reads every source file. Missing or unreadable files yield an
// empty article list for that source.
func LoadSources(sources []types.ArticleSource, logger *slog.Logger) []SourceArticles {
	logger = logging.OrDiscard(logger)

	out := make([]SourceArticles, 0, len(sources))
	for _, src := range sources {
		list, err := articles.Load(src.File, src.BaseURL, logger)
		if err != nil {
			logger.Warn("skipping article source", "source", src.Name, "error", err)
		}
		out = append(out, SourceArticles{Source: src, Articles: list})
	}
	return out
}

// SelectCandidates keeps articles published within one day of day, inclusive
// on both sides, tagged with their source. Articles without a parseable
// datetime are skipped. Source order and in-file order are preserved.
func SelectCandidates(sets []SourceArticles, day time.Time) []types.Candidate {
	start := civil(day.AddDate(0, 0, -1))
	end := civil(day.AddDate(0, 0, 1))

	var out []types.Candidate
	for _, set := range sets {
		for _, a := range set.Articles {
			published, ok := ParseDatetime(a.DatetimeText())
			if !ok {
				continue
			}
			d := civil(published)
			if d.Before(start) || d.After(end) {
				continue
			}
			out = append(out, types.Candidate{
				Title:    a.TitleText(),
				Abstract: a.AbstractText(),
				URL:      a.URL,
				Tag:      set.Source.Tag,
			})
		}
	}
	return out
}

// ParseDatetime parses a stored article datetime in whatever format the
// scraper left it. The wall-clock reading is kept; any offset is not converted.
func ParseDatetime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
