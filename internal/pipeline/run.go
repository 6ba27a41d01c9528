// Package pipeline provides the day-level orchestration of the digest: every
// enabled (day, language) pair is driven through its stages until it is
// published or a stage fails.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/news-digest/internal/config"
	"github.com/jonathan/news-digest/internal/cover"
	"github.com/jonathan/news-digest/internal/days"
	"github.com/jonathan/news-digest/internal/heading"
	"github.com/jonathan/news-digest/internal/ledger"
	"github.com/jonathan/news-digest/internal/llm"
	"github.com/jonathan/news-digest/internal/logging"
	"github.com/jonathan/news-digest/internal/manifest"
	"github.com/jonathan/news-digest/internal/observability"
	"github.com/jonathan/news-digest/internal/publish"
	"github.com/jonathan/news-digest/internal/summarize"
	"github.com/jonathan/news-digest/internal/tokens"
	"github.com/jonathan/news-digest/internal/transcribe"
	"github.com/jonathan/news-digest/internal/translate"
)

// ProgressEvent represents a progress update during a day run
type ProgressEvent struct {
	Day     string `json:"day"`
	Lang    string `json:"lang,omitempty"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// MediaSource downloads the broadcast and cuts it into audio segments.
// *media.Processor satisfies it.
type MediaSource interface {
	FetchVideo(ctx context.Context, urls []string, dest string) error
	ExtractAudio(ctx context.Context, video, audio, segmentPrefix string) error
}

// Publisher posts a digest. *publish.SubstackPublisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, post publish.Post) (publish.Result, error)
}

// Deps are the collaborators a Runner talks to. Only Chat is required; a nil
// Images skips covers and a nil Publisher stops before publishing.
type Deps struct {
	Chat        llm.Client
	Images      cover.ImageGenerator
	Transcriber transcribe.Transcriber
	Media       MediaSource
	Publisher   Publisher
	Counter     tokens.Counter
	Ledger      *ledger.Ledger
	Printer     *observability.Printer
	Out         io.Writer
	Logger      *slog.Logger
	Now         func() time.Time
}

// Options holds configuration for running the pipeline
type Options struct {
	Layout         days.Layout
	Languages      config.Languages
	Heading        heading.Generator
	Summarize      summarize.Options
	Transcribe     transcribe.Options
	Cover          cover.Options
	VideoBaseURL   string
	VideoTemplates []string
	// Publish sends posts to subscribers; false leaves a draft.
	Publish     bool
	SkipCover   bool
	SkipPublish bool
	Verbose     bool
	OnProgress  ProgressCallback
}

// LangResult is the outcome for one language of a day run.
type LangResult struct {
	Lang  string
	Stage manifest.Stage
	Usage llm.Usage
	Err   error
}

// Report collects the per-language outcomes of a day run.
type Report struct {
	Day   time.Time
	Langs []LangResult
}

// Usage sums token usage across languages.
func (r *Report) Usage() llm.Usage {
	var total llm.Usage
	for _, l := range r.Langs {
		total = total.Add(l.Usage)
	}
	return total
}

// Err joins the per-language failures, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, l := range r.Langs {
		if l.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.Lang, l.Err))
		}
	}
	return errors.Join(errs...)
}

// Runner drives (day, language) pairs through their stages.
type Runner struct {
	deps       Deps
	opts       Options
	logger     *slog.Logger
	translator *translate.Translator
}

// New validates deps and fills defaults.
func New(deps Deps, opts Options) (*Runner, error) {
	if deps.Chat == nil {
		return nil, errors.New("pipeline: a chat client is required")
	}
	if opts.Layout.Root == "" {
		return nil, errors.New("pipeline: a summaries root is required")
	}
	logger := logging.OrDiscard(deps.Logger)
	if deps.Counter == nil {
		deps.Counter = tokens.Words
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Ledger == nil {
		deps.Ledger = ledger.New(logger)
	}
	if deps.Printer == nil {
		deps.Printer = observability.NewPrinter(deps.Out)
	}
	if opts.Heading.Location == nil {
		opts.Heading.Location = time.UTC
	}
	return &Runner{
		deps:       deps,
		opts:       opts,
		logger:     logger,
		translator: translate.NewTranslator(deps.Chat, llm.TierLite, logger),
	}, nil
}

// emitProgress calls the progress callback if configured
func (r *Runner) emitProgress(day time.Time, lang string, stage manifest.Stage, message string) {
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(ProgressEvent{
			Day:     day.Format(days.Format),
			Lang:    lang,
			Stage:   string(stage),
			Message: message,
		})
	}
}

func (r *Runner) manifestPath(day time.Time) string {
	return filepath.Join(r.opts.Layout.DayDir(day), manifest.FileName)
}

// RunDay processes every enabled language for day, sources before their
// translations. A failing language is recorded in the manifest and the report
// and does not stop the others; only setup errors and cancellation are
// returned.
func (r *Runner) RunDay(ctx context.Context, day time.Time) (*Report, error) {
	if err := r.opts.Layout.MakeFolders(day); err != nil {
		return nil, fmt.Errorf("failed to create folders for %s: %w", day.Format(days.Format), err)
	}

	m := manifest.Load(r.manifestPath(day), day.Format(days.Format))
	report := &Report{Day: day}

	for _, code := range r.opts.Languages.Ordered() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := r.runLanguage(ctx, m, day, code)
		if res.Err != nil {
			r.logger.Error("language failed", "day", day.Format(days.Format), "lang", code, "stage", res.Stage, "error", res.Err)
			fmt.Fprintf(r.deps.Out, "⚠️ [%s] failed at %s: %v\n", code, res.Stage, res.Err)
		}
		if r.opts.Verbose && res.Usage.Total() > 0 {
			r.deps.Printer.PrintUsage(code, r.deps.Chat.GetModel(llm.TierStandard), res.Usage)
		}
		report.Langs = append(report.Langs, res)
	}

	if err := m.Save(); err != nil {
		r.logger.Warn("failed to save manifest", "error", err)
	}
	return report, ctx.Err()
}

func (r *Runner) runLanguage(ctx context.Context, m *manifest.Manifest, day time.Time, code string) LangResult {
	lang := r.opts.Languages[code]
	withCover := r.coverWanted(lang)
	stage := m.Reconcile(code, r.artifacts(day, code, lang, withCover))
	res := LangResult{Lang: code, Stage: stage}

	if stage == manifest.Done {
		r.logger.Info("language already done", "lang", code)
		return res
	}

	steps := stepsFor(withCover)
	for stage != manifest.Done {
		if reason := r.stopReason(stage, lang); reason != "" {
			r.logger.Info("stopping before stage", "lang", code, "stage", stage, "reason", reason)
			r.deps.Ledger.Skip(ctx, ledger.StepInfo{Label: stageLabel(stage), Day: day.Format(days.Format), Lang: code})
			break
		}

		message := r.describe(stage, lang)
		fmt.Fprintf(r.deps.Out, "[%s] Step %d/%d: %s...\n", code, stepIndex(steps, stage), len(steps), message)
		r.emitProgress(day, code, stage, message)

		var next manifest.Stage
		var usage llm.Usage
		err := r.deps.Ledger.Step(ctx, ledger.StepInfo{Label: stageLabel(stage), Day: day.Format(days.Format), Lang: code},
			func(ctx context.Context) (int, error) {
				var err error
				next, usage, err = r.runStage(ctx, day, code, lang, stage, withCover)
				return int(usage.Total()), err
			})
		res.Usage = res.Usage.Add(usage)
		if err != nil {
			m.Fail(code, err)
			r.saveManifest(m)
			res.Err = &StageError{Lang: code, Stage: stage, Cause: err}
			break
		}
		if next == stage {
			break
		}

		m.Set(code, next, "")
		r.saveManifest(m)
		stage = next
	}

	res.Stage = stage
	return res
}

func (r *Runner) saveManifest(m *manifest.Manifest) {
	if err := m.Save(); err != nil {
		r.logger.Warn("failed to save manifest", "error", err)
	}
}

func (r *Runner) runStage(ctx context.Context, day time.Time, code string, lang *config.Language, stage manifest.Stage, withCover bool) (manifest.Stage, llm.Usage, error) {
	var usage llm.Usage
	var err error

	switch stage {
	case manifest.NeedsTranscript:
		err = r.transcriptStage(ctx, day, lang)
	case manifest.NeedsSummary:
		usage, err = r.summaryStage(ctx, day, code, lang)
	case manifest.NeedsLinkedOutput:
		usage, err = r.linkStage(ctx, day, code, lang)
	case manifest.NeedsCover:
		r.coverStage(ctx, day, lang)
	case manifest.NeedsPublish:
		var res publish.Result
		res, err = r.Publish(ctx, day, code)
		if err == nil && !res.Published {
			return stage, usage, nil
		}
	default:
		err = fmt.Errorf("unknown stage %q", stage)
	}
	if err != nil {
		return stage, usage, err
	}
	return stage.Next(withCover), usage, nil
}

// artifacts lists the files that evidence each stage for one language.
func (r *Runner) artifacts(day time.Time, code string, lang *config.Language, withCover bool) manifest.Artifacts {
	text := func(name string) string { return r.opts.Layout.TextFile(day, name) }

	a := manifest.Artifacts{
		Input:               text(transcribe.TextFile),
		SummaryWithoutLinks: text(lang.SummaryWithoutLinksFilename),
		Summary:             text(lang.SummaryFilename),
		Flag:                text(lang.FlagFilename),
	}
	if lang.IsTranslation() {
		a.Input = ""
		if src, ok := r.opts.Languages[lang.SourceLanguage()]; ok {
			a.Input = text(src.SummaryFilename)
		}
	}
	if withCover {
		a.Cover = text(cover.FileName)
	}
	return a
}

// coverWanted is true for languages summarized from the transcript when an
// image backend is available.
func (r *Runner) coverWanted(lang *config.Language) bool {
	return lang.IsTranscript() && r.deps.Images != nil
}

// stopReason explains why the run must halt before stage, or returns "".
func (r *Runner) stopReason(stage manifest.Stage, lang *config.Language) string {
	switch stage {
	case manifest.NeedsCover:
		if r.opts.SkipCover {
			return "cover skipped"
		}
	case manifest.NeedsPublish:
		switch {
		case r.opts.SkipPublish:
			return "publishing skipped"
		case r.deps.Publisher == nil:
			return "no publisher configured"
		case lang.SubstackURL == "":
			return "no substack_url configured"
		}
	}
	return ""
}

func (r *Runner) describe(stage manifest.Stage, lang *config.Language) string {
	switch stage {
	case manifest.NeedsTranscript:
		return "Preparing transcript"
	case manifest.NeedsSummary:
		if lang.IsTranslation() {
			return "Translating digest from " + lang.SourceLanguage()
		}
		return "Summarizing transcript"
	case manifest.NeedsLinkedOutput:
		return "Linking articles"
	case manifest.NeedsCover:
		return "Generating cover image"
	case manifest.NeedsPublish:
		if r.opts.Publish {
			return "Publishing to Substack"
		}
		return "Saving Substack draft"
	}
	return string(stage)
}

func stepsFor(withCover bool) []manifest.Stage {
	steps := []manifest.Stage{manifest.NeedsTranscript, manifest.NeedsSummary, manifest.NeedsLinkedOutput}
	if withCover {
		steps = append(steps, manifest.NeedsCover)
	}
	return append(steps, manifest.NeedsPublish)
}

func stepIndex(steps []manifest.Stage, stage manifest.Stage) int {
	for i, s := range steps {
		if s == stage {
			return i + 1
		}
	}
	return 0
}

// stageLabel names the ledger step, e.g. NEEDS_LINKED_OUTPUT -> linked_output.
func stageLabel(stage manifest.Stage) string {
	return strings.ToLower(strings.TrimPrefix(string(stage), "NEEDS_"))
}
