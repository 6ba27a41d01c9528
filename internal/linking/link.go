package linking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jonathan/news-digest/internal/llm"
	"github.com/jonathan/news-digest/internal/logging"
	"github.com/jonathan/news-digest/internal/prompts"
	"github.com/jonathan/news-digest/internal/types"
)

const linkTemperature = 0.3

// LinkError represents a failed link request
type LinkError struct {
	Message string
	Cause   error
}

func (e *LinkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("link error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("link error: %s", e.Message)
}

func (e *LinkError) Unwrap() error {
	return e.Cause
}

// Linker asks the model to append source links to bullets it can match.
type Linker struct {
	client llm.Client
	prompt string
	tier   llm.ModelTier
	logger *slog.Logger
}

// NewLinker creates a Linker from the link prompt template.
func NewLinker(client llm.Client, linkPrompt string, tier llm.ModelTier, logger *slog.Logger) *Linker {
	if tier == "" {
		tier = llm.TierStandard
	}
	return &Linker{client: client, prompt: linkPrompt, tier: tier, logger: logging.OrDiscard(logger)}
}

// Link returns body with links added. With no candidates the body is
// returned as is and no request is made.
func (l *Linker) Link(ctx context.Context, body string, candidates []types.Candidate, sources []types.ArticleSource) (string, llm.Usage, error) {
	if len(candidates) == 0 {
		l.logger.Info("no article metadata found, skipping link injection")
		return body, llm.Usage{}, nil
	}

	payload, err := encodeCandidates(candidates)
	if err != nil {
		return "", llm.Usage{}, &LinkError{Message: "failed to encode candidates", Cause: err}
	}

	prompt := prompts.Format(l.prompt, map[string]string{
		prompts.KeyTagExamples: BuildTagExamples(sources),
	})
	user := prompt + "\n\nSUMMARY:\n" + body + "\n\nARTICLES:\n" + payload + "\n"

	l.logger.Info("linking articles", "candidates", len(candidates))
	resp, err := l.client.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			llm.System(SystemMessage(sources)),
			llm.User(user),
		},
		Temperature: linkTemperature,
		Tier:        l.tier,
	})
	if err != nil {
		return "", llm.Usage{}, &LinkError{Message: "model call failed", Cause: err}
	}
	return llm.CleanMarkdownBlock(resp.Text), resp.Usage, nil
}

func encodeCandidates(candidates []types.Candidate) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(candidates); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
