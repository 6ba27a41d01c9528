package summarize

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jonathan/news-digest/internal/chunking"
	"github.com/jonathan/news-digest/internal/llm"
	"github.com/jonathan/news-digest/internal/logging"
	"github.com/jonathan/news-digest/internal/prompts"
	"github.com/jonathan/news-digest/internal/sections"
	"github.com/jonathan/news-digest/internal/tokens"
)

const (
	// DefaultHeadlineCap is the maximum number of headline bullets kept.
	DefaultHeadlineCap = 10
	// DefaultChunkSleep is the pause between consecutive chunk calls.
	DefaultChunkSleep = 20 * time.Second

	chunkTemperature = 0.0
)

// Options tunes chunking and pacing.
type Options struct {
	MaxChunkTokens int
	Separator      string
	OverlapWords   int
	HeadlineCap    int
	ChunkSleep     time.Duration
	Tier           llm.ModelTier
	// Sleeper waits between chunk calls. Nil means a context-aware timer.
	Sleeper func(ctx context.Context, d time.Duration) error
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		MaxChunkTokens: chunking.DefaultMaxTokens,
		Separator:      chunking.DefaultSeparator,
		OverlapWords:   chunking.DefaultOverlapWords,
		HeadlineCap:    DefaultHeadlineCap,
		ChunkSleep:     DefaultChunkSleep,
		Tier:           llm.TierStandard,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxChunkTokens <= 0 {
		o.MaxChunkTokens = d.MaxChunkTokens
	}
	if o.Separator == "" {
		o.Separator = d.Separator
	}
	if o.OverlapWords <= 0 {
		o.OverlapWords = d.OverlapWords
	}
	if o.HeadlineCap <= 0 {
		o.HeadlineCap = d.HeadlineCap
	}
	if o.Tier == "" {
		o.Tier = d.Tier
	}
	if o.Sleeper == nil {
		o.Sleeper = sleepContext
	}
	return o
}

// Summarizer runs the headline pass and the per-chunk passes over a transcript.
type Summarizer struct {
	client  llm.Client
	prompts prompts.Set
	counter tokens.Counter
	opts    Options
	logger  *slog.Logger
}

// New creates a Summarizer. A nil counter falls back to word counting.
func New(client llm.Client, set prompts.Set, counter tokens.Counter, opts Options, logger *slog.Logger) *Summarizer {
	if counter == nil {
		counter = tokens.Words
	}
	return &Summarizer{
		client:  client,
		prompts: set,
		counter: counter,
		opts:    opts.withDefaults(),
		logger:  logging.OrDiscard(logger),
	}
}

// Summarize chunks the transcript, summarizes every chunk plus a headline pass
// over the first one, and merges the results. Usage covers every call made.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (string, llm.Usage, error) {
	var total llm.Usage

	chunks := chunking.Chunk(transcript, s.opts.MaxChunkTokens, s.opts.Separator, s.counter)
	if len(chunks) == 0 {
		return "", total, &SummaryError{Step: "chunk", Message: "transcript is empty"}
	}
	s.logger.Info("transcript chunked", "chunks", len(chunks), "max_tokens", s.opts.MaxChunkTokens)
	for i, c := range chunks {
		// a single paragraph over the limit is sent as is
		if n := s.counter.Count(c); n > s.opts.MaxChunkTokens {
			s.logger.Warn("chunk exceeds token limit", "chunk", i, "tokens", n, "max_tokens", s.opts.MaxChunkTokens)
		}
	}

	headlines, usage, err := s.Headlines(ctx, chunks[0])
	if err != nil {
		return "", total, err
	}
	total = total.Add(usage)

	var partials []string
	for i := range chunks {
		summary, usage, err := s.SummarizeChunk(ctx, chunks, i, partials)
		if err != nil {
			return "", total, err
		}
		total = total.Add(usage)
		partials = append(partials, summary)

		if i < len(chunks)-1 && s.opts.ChunkSleep > 0 {
			s.logger.Debug("pausing before next chunk", "sleep", s.opts.ChunkSleep)
			if err := s.opts.Sleeper(ctx, s.opts.ChunkSleep); err != nil {
				return "", total, err
			}
		}
	}

	merged := sections.Merge(append([]string{headlines}, partials...), s.logger)
	return merged, total, nil
}

// Headlines asks for the top-stories section from the opening chunk and caps it.
func (s *Summarizer) Headlines(ctx context.Context, chunk string) (string, llm.Usage, error) {
	s.logger.Info("summarizing headlines", "tokens", s.counter.Count(chunk))

	text, usage, err := s.chat(ctx, "headlines", s.prompts.HeadlineSystem, chunk)
	if err != nil {
		return "", usage, err
	}
	return LimitHeadlines(text, s.opts.HeadlineCap), usage, nil
}

// SummarizeChunk summarizes chunks[i]. previous holds the summaries of chunks
// 0..i-1 and is folded into the follow-up system prompt; the payload for i>0
// is prefixed with the overlap of the previous raw chunk.
func (s *Summarizer) SummarizeChunk(ctx context.Context, chunks []string, i int, previous []string) (string, llm.Usage, error) {
	system := s.prompts.FirstChunkSystem
	if i > 0 {
		system = prompts.Format(s.prompts.FollowupChunkSystem, map[string]string{
			prompts.KeyPreviousSummary: strings.Join(previous, ""),
		})
	}
	payload := chunking.Payload(chunks, i, s.opts.OverlapWords)

	s.logger.Info("summarizing chunk", "chunk", i+1, "of", len(chunks), "tokens", s.counter.Count(payload))
	return s.chat(ctx, "chunk", system, payload)
}

func (s *Summarizer) chat(ctx context.Context, step, system, payload string) (string, llm.Usage, error) {
	resp, err := s.client.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			llm.System(system),
			llm.User(s.prompts.User),
			llm.User(payload),
		},
		Temperature: chunkTemperature,
		Tier:        s.opts.Tier,
	})
	if err != nil {
		return "", llm.Usage{}, &SummaryError{Step: step, Message: "model call failed", Cause: err}
	}
	return llm.CleanMarkdownBlock(resp.Text), resp.Usage, nil
}

// LimitHeadlines keeps at most maxCount bullet lines ("- " or "• ") and every
// non-bullet line, preserving their order.
func LimitHeadlines(text string, maxCount int) string {
	if maxCount <= 0 {
		maxCount = DefaultHeadlineCap
	}

	var kept []string
	bullets := 0
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if sections.IsBullet(strings.TrimSpace(line)) {
			if bullets >= maxCount {
				continue
			}
			bullets++
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
