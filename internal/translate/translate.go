// Package translate rewrites an English digest into another language.
package translate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonathan/news-digest/internal/llm"
	"github.com/jonathan/news-digest/internal/logging"
	"github.com/jonathan/news-digest/internal/prompts"
	"github.com/jonathan/news-digest/internal/sections"
)

const translateTemperature = 0.2

// TranslationError represents a failed translation request
type TranslationError struct {
	Lang    string
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("translate to %s: %s: %v", e.Lang, e.Message, e.Cause)
	}
	return fmt.Sprintf("translate to %s: %s", e.Lang, e.Message)
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// Translator sends digests through the language's translation prompt.
type Translator struct {
	client llm.Client
	tier   llm.ModelTier
	logger *slog.Logger
	// Detect identifies the language of the output. Nil disables the check.
	Detect func(text string) (string, bool)
}

// NewTranslator creates a Translator that verifies output with lingua.
func NewTranslator(client llm.Client, tier llm.ModelTier, logger *slog.Logger) *Translator {
	if tier == "" {
		tier = llm.TierLite
	}
	return &Translator{
		client: client,
		tier:   tier,
		logger: logging.OrDiscard(logger),
		Detect: DetectLanguage,
	}
}

// Translate returns body translated into lang. The language-specific prompt
// is used when one exists, the generic prompt otherwise.
func (t *Translator) Translate(ctx context.Context, body, lang string) (string, llm.Usage, error) {
	prompt, err := prompts.TranslatePrompt(lang)
	if err != nil {
		return "", llm.Usage{}, &TranslationError{Lang: lang, Message: "no translation prompt", Cause: err}
	}

	resp, err := t.client.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			llm.System(prompt),
			llm.User(body),
		},
		Temperature: translateTemperature,
		Tier:        t.tier,
	})
	if err != nil {
		return "", llm.Usage{}, &TranslationError{Lang: lang, Message: "model call failed", Cause: err}
	}

	translated := llm.CleanMarkdownBlock(resp.Text)
	t.check(body, translated, lang)
	return translated, resp.Usage, nil
}

func (t *Translator) check(body, translated, lang string) {
	for _, w := range sections.Validate(body, translated) {
		t.logger.Warn("translation changed structure", "lang", lang, "detail", w)
	}

	if t.Detect == nil || !Supported(lang) {
		return
	}
	if got, ok := t.Detect(translated); ok && got != lang {
		t.logger.Warn("translation language mismatch", "want", lang, "got", got)
	}
}
