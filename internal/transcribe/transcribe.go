// Package transcribe turns the day's audio segments into a Greek transcript.
package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/news-digest/internal/articles"
	"github.com/jonathan/news-digest/internal/logging"
)

const (
	DefaultModel    = "gpt-4o-transcribe"
	DefaultRetries  = 3
	DefaultMinChars = 200

	TextFile = "transcript_gr.txt"
	JSONFile = "transcript_gr.json"
)

// Transcriber converts one audio upload to text. *llm.OpenAIClient satisfies it.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, model string) (string, error)
}

// TranscriptionError wraps a failed transcription run.
type TranscriptionError struct {
	Segment string
	Message string
	Cause   error
}

func (e *TranscriptionError) Error() string {
	prefix := "transcription error"
	if e.Segment != "" {
		prefix = fmt.Sprintf("transcription error (%s)", filepath.Base(e.Segment))
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Cause
}

// Options controls retry behaviour.
type Options struct {
	Model    string
	Retries  int
	MinChars int
}

func (o Options) withDefaults() Options {
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.Retries <= 0 {
		o.Retries = DefaultRetries
	}
	if o.MinChars <= 0 {
		o.MinChars = DefaultMinChars
	}
	return o
}

// Segment is one entry of the JSON sidecar.
type Segment struct {
	File     string `json:"file"`
	Text     string `json:"text"`
	Attempts int    `json:"attempts"`
}

// Service transcribes segment files.
type Service struct {
	client Transcriber
	opts   Options
	logger *slog.Logger
}

// New creates a Service.
func New(client Transcriber, opts Options, logger *slog.Logger) *Service {
	return &Service{client: client, opts: opts.withDefaults(), logger: logging.OrDiscard(logger)}
}

// Segment transcribes a single file. Short results are retried and the
// longest one is kept; each attempt re-opens the file.
func (s *Service) Segment(ctx context.Context, path string) (Segment, error) {
	best := Segment{File: filepath.Base(path)}
	bestLen := -1
	var lastErr error

	for attempt := 1; attempt <= s.opts.Retries; attempt++ {
		best.Attempts = attempt
		text, err := s.once(ctx, path)
		if err != nil {
			lastErr = err
			s.logger.Warn("transcription attempt failed", "file", best.File, "attempt", attempt, "error", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		n := utf8.RuneCountInString(strings.TrimSpace(text))
		if n > bestLen {
			best.Text = text
			bestLen = n
		}
		if n >= s.opts.MinChars {
			return best, nil
		}
		s.logger.Warn("transcript possibly truncated, retrying", "file", best.File, "attempt", attempt, "chars", n)
	}

	if bestLen < 0 {
		return best, &TranscriptionError{Segment: path, Message: "all attempts failed", Cause: lastErr}
	}
	s.logger.Warn("retries exhausted, keeping longest result", "file", best.File, "chars", bestLen, "min_chars", s.opts.MinChars)
	return best, nil
}

func (s *Service) once(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return s.client.Transcribe(ctx, f, s.opts.Model)
}

// Day transcribes segments in order and writes the joined text to txtPath
// and the per-segment results to jsonPath.
func (s *Service) Day(ctx context.Context, segments []string, txtPath, jsonPath string) (string, error) {
	if len(segments) == 0 {
		return "", &TranscriptionError{Message: "no audio segments found"}
	}

	results := make([]Segment, 0, len(segments))
	texts := make([]string, 0, len(segments))
	for _, path := range segments {
		s.logger.Info("transcribing", "file", filepath.Base(path))
		seg, err := s.Segment(ctx, path)
		if err != nil {
			return "", err
		}
		results = append(results, seg)
		texts = append(texts, seg.Text)
	}

	transcript := strings.Join(texts, "\n\n")
	if err := articles.WriteFileAtomic(txtPath, []byte(transcript)); err != nil {
		return "", &TranscriptionError{Message: "failed to write transcript", Cause: err}
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", &TranscriptionError{Message: "failed to encode transcript json", Cause: err}
	}
	if err := articles.WriteFileAtomic(jsonPath, data); err != nil {
		return "", &TranscriptionError{Message: "failed to write transcript json", Cause: err}
	}

	s.logger.Info("transcript saved", "path", txtPath, "segments", len(results))
	return transcript, nil
}
