package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/news-digest/internal/articles"
	"github.com/jonathan/news-digest/internal/config"
	"github.com/jonathan/news-digest/internal/cover"
	"github.com/jonathan/news-digest/internal/days"
	"github.com/jonathan/news-digest/internal/heading"
	"github.com/jonathan/news-digest/internal/linking"
	"github.com/jonathan/news-digest/internal/llm"
	"github.com/jonathan/news-digest/internal/media"
	"github.com/jonathan/news-digest/internal/prompts"
	"github.com/jonathan/news-digest/internal/publish"
	"github.com/jonathan/news-digest/internal/sections"
	"github.com/jonathan/news-digest/internal/summarize"
	"github.com/jonathan/news-digest/internal/transcribe"
)

// transcriptStage makes sure the day's transcript exists, downloading and
// transcribing the broadcast when needed. Each step is skipped when its
// output is already on disk.
func (r *Runner) transcriptStage(ctx context.Context, day time.Time, lang *config.Language) error {
	if lang.IsTranslation() {
		return fmt.Errorf("source language %s has no digest for this day", lang.SourceLanguage())
	}

	layout := r.opts.Layout
	txt := layout.TextFile(day, transcribe.TextFile)
	if days.Exists(txt) {
		r.logger.Info("transcript exists, skipping download and transcription", "path", txt)
		return nil
	}
	if r.deps.Media == nil || r.deps.Transcriber == nil {
		return errors.New("no transcript on disk and no media or transcription backend configured")
	}

	video := layout.MediaFile(day, media.VideoFile)
	if days.Exists(video) {
		r.logger.Info("video exists", "path", video)
	} else {
		urls := media.VideoURLs(r.opts.VideoBaseURL, r.opts.VideoTemplates, day)
		if err := r.deps.Media.FetchVideo(ctx, urls, video); err != nil {
			return err
		}
	}

	audio := layout.MediaFile(day, media.AudioFile)
	if media.SegmentsComplete(layout.MediaDir(day)) {
		r.logger.Info("audio segments exist", "dir", layout.MediaDir(day))
	} else {
		prefix := filepath.Join(layout.MediaDir(day), media.SegmentPrefix)
		if err := r.deps.Media.ExtractAudio(ctx, video, audio, prefix); err != nil {
			return err
		}
	}

	svc := transcribe.New(r.deps.Transcriber, r.opts.Transcribe, r.logger)
	_, err := svc.Day(ctx, media.Segments(layout.MediaDir(day)), txt, layout.TextFile(day, transcribe.JSONFile))
	return err
}

// summaryStage writes summary_without_links: the localized heading followed
// by either the chunked summary of the transcript or a translation of the
// source language's digest.
func (r *Runner) summaryStage(ctx context.Context, day time.Time, code string, lang *config.Language) (llm.Usage, error) {
	var body string
	var usage llm.Usage
	var err error

	if lang.IsTranslation() {
		body, usage, err = r.translateSource(ctx, day, code, lang)
	} else {
		body, usage, err = r.summarizeTranscript(ctx, day, code)
	}
	if err != nil {
		return usage, err
	}

	out := r.opts.Layout.TextFile(day, lang.SummaryWithoutLinksFilename)
	content := r.heading(day, code) + "\n\n" + strings.TrimSpace(body)
	if err := articles.WriteFileAtomic(out, []byte(content)); err != nil {
		return usage, fmt.Errorf("failed to write %s: %w", out, err)
	}
	r.logger.Info("summary written", "lang", code, "path", out, "tokens", usage.Total())
	return usage, nil
}

func (r *Runner) summarizeTranscript(ctx context.Context, day time.Time, code string) (string, llm.Usage, error) {
	data, err := os.ReadFile(r.opts.Layout.TextFile(day, transcribe.TextFile))
	if err != nil {
		return "", llm.Usage{}, fmt.Errorf("failed to read transcript: %w", err)
	}
	set, err := prompts.LoadSet(code, day)
	if err != nil {
		return "", llm.Usage{}, err
	}
	s := summarize.New(r.deps.Chat, set, r.deps.Counter, r.opts.Summarize, r.logger.With("lang", code))
	return s.Summarize(ctx, string(data))
}

// translateSource translates the source language's final digest. When the
// target has article sources of its own the source links are dropped first so
// the link stage can attach local outlets; otherwise they are carried over.
func (r *Runner) translateSource(ctx context.Context, day time.Time, code string, lang *config.Language) (string, llm.Usage, error) {
	srcCode := lang.SourceLanguage()
	src, ok := r.opts.Languages[srcCode]
	if !ok {
		return "", llm.Usage{}, fmt.Errorf("source language %s is not configured", srcCode)
	}

	data, err := os.ReadFile(r.opts.Layout.TextFile(day, src.SummaryFilename))
	if err != nil {
		return "", llm.Usage{}, fmt.Errorf("failed to read %s digest: %w", srcCode, err)
	}

	body := strings.TrimSpace(heading.StripFor(string(data), day, srcCode))
	if len(lang.ArticleSources) > 0 {
		body = linking.Unlink(body)
	}
	return r.translator.Translate(ctx, body, code)
}

// linkStage deduplicates the non-top sections, links them to the language's
// articles and writes the final digest. Translations skip the cleanup pass;
// their source was already cleaned.
func (r *Runner) linkStage(ctx context.Context, day time.Time, code string, lang *config.Language) (llm.Usage, error) {
	var usage llm.Usage
	logger := r.logger.With("lang", code)

	data, err := os.ReadFile(r.opts.Layout.TextFile(day, lang.SummaryWithoutLinksFilename))
	if err != nil {
		return usage, fmt.Errorf("failed to read summary without links: %w", err)
	}
	body := strings.TrimSpace(heading.StripFor(string(data), day, code))

	set, err := prompts.LoadSet(code, day)
	if err != nil {
		return usage, err
	}

	top, remainder := sections.Split(body, logger)

	if !lang.IsTranslation() {
		cleaned, u, err := summarize.Cleanup(ctx, r.deps.Chat, llm.TierStandard, set.Deduplication, remainder, logger)
		usage = usage.Add(u)
		if err != nil {
			return usage, err
		}
		remainder = cleaned
	}

	linked := remainder
	if !lang.IsTranslation() || len(lang.ArticleSources) > 0 {
		candidates := linking.SelectCandidates(linking.LoadSources(lang.ArticleSources, logger), day)
		logger.Info("article candidates selected", "count", len(candidates))

		linker := linking.NewLinker(r.deps.Chat, set.Link, llm.TierStandard, logger)
		var u llm.Usage
		linked, u, err = linker.Link(ctx, remainder, candidates, lang.ArticleSources)
		usage = usage.Add(u)
		if err != nil {
			return usage, err
		}
	}

	final := sections.StripSummaryMarker(r.heading(day, code) + "\n\n" + top + "\n\n" + linked)
	out := r.opts.Layout.TextFile(day, lang.SummaryFilename)
	if err := articles.WriteFileAtomic(out, []byte(final)); err != nil {
		return usage, fmt.Errorf("failed to write %s: %w", out, err)
	}
	logger.Info("digest written", "path", out, "tokens", usage.Total(), "cost_usd", llm.EstimateCost(usage))

	if r.opts.Verbose {
		r.deps.Printer.PrintDigestPreview(code, final)
	}
	return usage, nil
}

// coverStage never fails: a missing cover only leaves the post without one.
func (r *Runner) coverStage(ctx context.Context, day time.Time, lang *config.Language) {
	data, err := os.ReadFile(r.opts.Layout.TextFile(day, lang.SummaryFilename))
	if err != nil {
		r.logger.Warn("cannot read digest for cover generation", "error", err)
		return
	}
	cover.Generate(ctx, r.deps.Images, day, string(data), r.opts.Layout.TextDir(day), r.opts.Cover, r.logger)
}

// Publish posts the final digest for (day, code) and writes the flag file
// when the post went out. Drafts leave no flag.
func (r *Runner) Publish(ctx context.Context, day time.Time, code string) (publish.Result, error) {
	lang, ok := r.opts.Languages[code]
	if !ok {
		return publish.Result{}, fmt.Errorf("unknown language %q", code)
	}
	if r.deps.Publisher == nil {
		return publish.Result{}, errors.New("no publisher configured")
	}
	if lang.SubstackURL == "" {
		return publish.Result{}, fmt.Errorf("language %s has no substack_url", code)
	}

	path := r.opts.Layout.TextFile(day, lang.SummaryFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		return publish.Result{}, fmt.Errorf("no digest to publish at %s: %w", path, err)
	}

	res, err := r.deps.Publisher.Publish(ctx, publish.Post{
		Markdown:    string(data),
		EditorURL:   lang.SubstackURL,
		SessionFile: lang.SubstackSessionFile,
		Publish:     r.opts.Publish,
	})
	if err != nil {
		return res, err
	}

	if !res.Published {
		r.logger.Info("draft saved", "lang", code, "title", res.Title)
		return res, nil
	}
	flag := r.opts.Layout.TextFile(day, lang.FlagFilename)
	if err := publish.WriteFlag(flag, res, r.deps.Now()); err != nil {
		return res, err
	}
	r.logger.Info("published", "lang", code, "title", res.Title, "url", res.URL)
	return res, nil
}

func (r *Runner) heading(day time.Time, code string) string {
	return r.opts.Heading.Generate(day, code, r.deps.Now())
}
