package summarize

import (
	"context"
	"log/slog"

	"github.com/jonathan/news-digest/internal/llm"
	"github.com/jonathan/news-digest/internal/logging"
	"github.com/jonathan/news-digest/internal/sections"
)

const cleanupTemperature = 0.2

// Cleanup sends the merged remainder through the deduplication prompt and
// returns the model's rewrite. Structural drift is logged, never rejected.
func Cleanup(ctx context.Context, client llm.Client, tier llm.ModelTier, dedupPrompt, remainder string, logger *slog.Logger) (string, llm.Usage, error) {
	logger = logging.OrDiscard(logger)

	resp, err := client.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			llm.User(dedupPrompt + "\n\nSUMMARY:\n" + remainder + "\n"),
		},
		Temperature: cleanupTemperature,
		Tier:        tier,
	})
	if err != nil {
		return "", llm.Usage{}, &SummaryError{Step: "cleanup", Message: "model call failed", Cause: err}
	}

	cleaned := llm.CleanMarkdownBlock(resp.Text)
	for _, w := range sections.Validate(remainder, cleaned) {
		logger.Warn("cleanup changed structure", "detail", w)
	}
	return cleaned, resp.Usage, nil
}
