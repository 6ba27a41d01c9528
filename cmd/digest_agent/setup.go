package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/news-digest/internal/config"
	"github.com/jonathan/news-digest/internal/cover"
	"github.com/jonathan/news-digest/internal/days"
	"github.com/jonathan/news-digest/internal/heading"
	"github.com/jonathan/news-digest/internal/ledger"
	"github.com/jonathan/news-digest/internal/llm"
	"github.com/jonathan/news-digest/internal/logging"
	"github.com/jonathan/news-digest/internal/media"
	"github.com/jonathan/news-digest/internal/observability"
	"github.com/jonathan/news-digest/internal/pipeline"
	"github.com/jonathan/news-digest/internal/publish"
	"github.com/jonathan/news-digest/internal/summarize"
	"github.com/jonathan/news-digest/internal/tokens"
	"github.com/jonathan/news-digest/internal/transcribe"
)

var (
	flagConfig        string
	flagLanguages     string
	flagLangs         []string
	flagProvider      string
	flagAPIKey        string
	flagDataRoot      string
	flagSummariesRoot string
	flagLedgerDSN     string
	flagLogLevel      string
	flagVerbose       bool
)

func init() {
	pf := rootCmd.PersistentFlags()

	// Config file flag (processed first)
	pf.StringVar(&flagConfig, "config", "", "Path to a JSON or YAML config file (values can be overridden by other flags)")
	pf.StringVar(&flagLanguages, "languages", "", "Path to languages.json (default config/languages.json)")
	pf.StringSliceVar(&flagLangs, "lang", nil, "Languages to process, e.g. --lang en,el (default: every enabled language)")

	pf.StringVar(&flagProvider, "provider", "", "Chat provider: openai, gemini or anthropic")
	pf.StringVar(&flagAPIKey, "api-key", "", "Chat provider API key (defaults to the provider's env var, e.g. OPENAI_API_KEY)")

	pf.StringVar(&flagDataRoot, "data-root", "", "Folder with scraped article JSON files")
	pf.StringVar(&flagSummariesRoot, "summaries-root", "", "Folder holding the per-day output folders")
	pf.StringVar(&flagLedgerDSN, "ledger-dsn", "", "Step ledger database, sqlite://path or postgres://... (optional)")

	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Print usage, digest previews and step timings")
}

// settings is the resolved configuration shared by all commands.
type settings struct {
	cfg    config.Config
	langs  config.Languages
	loc    *time.Location
	logger *slog.Logger
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

// loadSettings loads the config file, applies flag overrides and defaults,
// and loads the language configuration.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if flagConfig != "" {
		loadedCfg, err := config.LoadConfig(flagConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if flagChanged(cmd, "languages") {
		cfg.Languages = flagLanguages
	}
	if flagChanged(cmd, "provider") {
		cfg.Provider = flagProvider
	}
	if flagChanged(cmd, "api-key") {
		cfg.APIKey = flagAPIKey
	}
	if flagChanged(cmd, "data-root") {
		cfg.DataRoot = flagDataRoot
	}
	if flagChanged(cmd, "summaries-root") {
		cfg.SummariesRoot = flagSummariesRoot
	}
	if flagChanged(cmd, "ledger-dsn") {
		cfg.LedgerDSN = flagLedgerDSN
	}
	if flagChanged(cmd, "log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if flagChanged(cmd, "verbose") {
		cfg.Verbose = flagVerbose
	}

	// Step 3: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return buildSettings(cfg, flagLangs)
}

func buildSettings(cfg config.Config, codes []string) (*settings, error) {
	logger := logging.New(cfg.LogLevel, os.Stderr)

	loc, err := days.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}

	langs, err := config.LoadLanguages(cfg.Languages)
	if err != nil {
		return nil, err
	}
	langs.ResolvePaths(cfg.DataRoot, filepath.Dir(cfg.Languages))

	langs, err = langs.Restrict(codes)
	if err != nil {
		return nil, err
	}

	return &settings{cfg: cfg, langs: langs, loc: loc, logger: logger}, nil
}

// resolveDay parses the optional YYYY-MM-DD argument, defaulting to
// yesterday in the configured timezone and cutoff hour.
func (s *settings) resolveDay(args []string, now time.Time) (time.Time, error) {
	if len(args) > 0 && args[0] != "" {
		return days.Parse(args[0])
	}
	return days.Default(now, s.loc, s.cfg.Cutoff()), nil
}

// llmConfig applies the per-tier model overrides to the provider defaults.
func llmConfig(cfg config.Config) *llm.Config {
	return llm.ConfigFor(cfg.Provider).WithModels(cfg.Models)
}

func newChatClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	c := llmConfig(cfg)
	env := llm.APIKeyEnv(c.Provider)

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(env)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable or --api-key flag is required", env)
	}
	return llm.NewClient(ctx, c, apiKey)
}

// newOpenAIClient returns the client used for transcription and cover
// images, or nil when no OpenAI key is available.
func newOpenAIClient(cfg config.Config, logger *slog.Logger) *llm.OpenAIClient {
	apiKey := os.Getenv(llm.APIKeyEnv(llm.ProviderOpenAI))
	if apiKey == "" && llm.Provider(cfg.Provider) == llm.ProviderOpenAI {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		logger.Warn("OPENAI_API_KEY not set, transcription and cover images are disabled")
		return nil
	}
	client, err := llm.NewOpenAIClient(llm.DefaultOpenAIConfig(), apiKey)
	if err != nil {
		logger.Warn("failed to create OpenAI client", "error", err)
		return nil
	}
	return client
}

// newCounter returns the tokenizer of the summarization model, falling back
// to word counts when the encoding cannot be loaded.
func newCounter(cfg config.Config, logger *slog.Logger) tokens.Counter {
	model := llmConfig(cfg).GetModel(llm.TierStandard)
	counter, err := tokens.ForModel(model)
	if err != nil {
		logger.Warn("tokenizer unavailable, counting words instead", "model", model, "error", err)
		return tokens.Words
	}
	return counter
}

// openLedger records steps to timings.log and, when configured, to the
// ledger database.
func openLedger(ctx context.Context, cfg config.Config, logger *slog.Logger) *ledger.Ledger {
	recorders := []ledger.Recorder{
		ledger.NewJSONLRecorder(filepath.Join(cfg.SummariesRoot, ledger.TimingsFile)),
	}
	if cfg.LedgerDSN != "" {
		rec, err := ledger.OpenSQL(ctx, cfg.LedgerDSN)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to ledger database: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
		} else {
			recorders = append(recorders, rec)
		}
	}
	return ledger.New(logger, recorders...)
}

// runnerOptions are the per-command switches of a pipeline run.
type runnerOptions struct {
	Publish     bool
	SkipCover   bool
	SkipPublish bool
}

// app bundles a configured runner with what must be closed after it.
type app struct {
	runner  *pipeline.Runner
	ledger  *ledger.Ledger
	printer *observability.Printer
	closers []func() error
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c()
	}
}

func newApp(ctx context.Context, s *settings, ro runnerOptions) (*app, error) {
	cfg := s.cfg

	chat, err := newChatClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{
		ledger:  openLedger(ctx, cfg, s.logger),
		printer: observability.NewPrinter(os.Stdout),
		closers: []func() error{chat.Close},
	}
	a.closers = append(a.closers, a.ledger.Close)

	deps := pipeline.Deps{
		Chat:      chat,
		Media:     media.NewProcessor(s.logger),
		Publisher: publish.NewSubstackPublisher(cfg.PublishHeadless, s.logger),
		Counter:   newCounter(cfg, s.logger),
		Ledger:    a.ledger,
		Printer:   a.printer,
		Out:       os.Stdout,
		Logger:    s.logger,
	}
	if oa := newOpenAIClient(cfg, s.logger); oa != nil {
		deps.Transcriber = oa
		deps.Images = oa
		a.closers = append(a.closers, oa.Close)
	}

	coverOpts := cover.DefaultOptions()
	coverOpts.Model = cfg.ImageModel

	opts := pipeline.Options{
		Layout:    days.Layout{Root: cfg.SummariesRoot},
		Languages: s.langs,
		Heading:   heading.Generator{Location: s.loc, CutoffHour: cfg.Cutoff()},
		Summarize: summarize.Options{
			MaxChunkTokens: cfg.ChunkTokens,
			OverlapWords:   cfg.OverlapWords,
			HeadlineCap:    cfg.HeadlineCap,
			ChunkSleep:     cfg.ChunkSleepDuration(),
		},
		Transcribe: transcribe.Options{
			Model:    cfg.TranscriptionModel,
			Retries:  cfg.TranscriptionRetries,
			MinChars: cfg.TranscriptionMinChars,
		},
		Cover:          coverOpts,
		VideoBaseURL:   cfg.VideoBaseURL,
		VideoTemplates: cfg.VideoTemplates,
		Publish:        ro.Publish,
		SkipCover:      ro.SkipCover,
		SkipPublish:    ro.SkipPublish,
		Verbose:        cfg.Verbose,
	}

	runner, err := pipeline.New(deps, opts)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.runner = runner
	return a, nil
}
