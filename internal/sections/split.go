package sections

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/jonathan/news-digest/internal/logging"
)

var headerRe = regexp.MustCompile(`(?m)^### [^\n]+`)

// TopStoriesMarkers are the lead-section headers per language.
var TopStoriesMarkers = []string{
	"### Top stories",
	"### Κύριες Ειδήσεις",
	"### Главные новости",
	"### Головні новини",
	"### כותרות ראשיות",
}

// Split separates the leading top-stories section from the rest of the body.
// When the first section is not a top-stories section, top is empty and the
// whole input is returned as the remainder.
func Split(markdown string, logger *slog.Logger) (top, remainder string) {
	blocks := Blocks(markdown)
	if len(blocks) > 0 && isTopStories(blocks[0]) {
		return blocks[0], strings.TrimSpace(strings.Join(blocks[1:], "\n"))
	}

	logging.OrDiscard(logger).Warn("no top stories section found, using entire summary")
	return "", markdown
}

// Blocks returns each "### header" with its trimmed body, in order.
// Text before the first header is not part of any block.
func Blocks(markdown string) []string {
	locs := headerRe.FindAllStringIndex(markdown, -1)
	out := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(markdown)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		header := strings.TrimSpace(markdown[loc[0]:loc[1]])
		body := strings.TrimSpace(markdown[loc[1]:end])
		out = append(out, strings.TrimSpace(header+"\n"+body))
	}
	return out
}

func isTopStories(block string) bool {
	for _, m := range TopStoriesMarkers {
		if strings.HasPrefix(block, m) {
			return true
		}
	}
	return false
}

var (
	summaryLineRe   = regexp.MustCompile(`(?m)^\s*SUMMARY:\s*$`)
	summaryInlineRe = regexp.MustCompile(`\bSUMMARY:\s*`)
)

// StripSummaryMarker removes "SUMMARY:" labels that models echo back from prompts.
func StripSummaryMarker(text string) string {
	if text == "" {
		return text
	}
	cleaned := summaryLineRe.ReplaceAllString(text, "")
	cleaned = summaryInlineRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
