package sections

import (
	"log/slog"

	"github.com/jonathan/news-digest/internal/logging"
)

// Merge unions the sections of every partial summary. Bullets keep first-seen
// order and exact duplicates are dropped. Canonical sections come first in
// CanonicalOrder; any other section follows in first-seen order and is
// reported to logger so nothing is lost silently.
func Merge(partials []string, logger *slog.Logger) string {
	logger = logging.OrDiscard(logger)

	var merged []Section
	index := map[string]int{}
	for _, partial := range partials {
		for _, s := range Parse(partial) {
			idx, ok := index[s.Name]
			if !ok {
				idx = len(merged)
				index[s.Name] = idx
				merged = append(merged, Section{Name: s.Name})
			}
			merged[idx].Bullets = append(merged[idx].Bullets, s.Bullets...)
		}
	}
	for i := range merged {
		merged[i].Bullets = dedupe(merged[i].Bullets)
	}

	canonical := make(map[string]bool, len(CanonicalOrder))
	ordered := make([]Section, 0, len(merged))
	for _, name := range CanonicalOrder {
		canonical[name] = true
		if idx, ok := index[name]; ok {
			ordered = append(ordered, merged[idx])
		}
	}
	for _, s := range merged {
		if canonical[s.Name] || len(s.Bullets) == 0 {
			continue
		}
		logger.Warn("unexpected section", "section", s.Name, "bullets", len(s.Bullets))
		ordered = append(ordered, s)
	}

	return Render(ordered)
}
