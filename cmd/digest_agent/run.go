package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/news-digest/internal/days"
	"github.com/jonathan/news-digest/internal/llm"
	"github.com/jonathan/news-digest/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run [YYYY-MM-DD]",
	Short: "Run the full digest pipeline for one day",
	Long: `Runs every pending stage for each enabled language: download -> transcribe -> summarize (or translate) -> link -> cover -> publish.

The day defaults to yesterday in the configured timezone. Configuration can be loaded from a JSON or YAML file using --config. Command-line arguments override config file values.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDigestCmd,
}

var (
	runDraft     bool
	runRefresh   bool
	runSkipCover bool
	runNoPublish bool
)

func init() {
	runCommand.Flags().BoolVar(&runDraft, "draft", false, "Save Substack drafts instead of publishing")
	runCommand.Flags().BoolVar(&runRefresh, "refresh-articles", false, "Scrape article sources before linking")
	runCommand.Flags().BoolVar(&runSkipCover, "skip-cover", false, "Stop before generating the cover image")
	runCommand.Flags().BoolVar(&runNoPublish, "no-publish", false, "Stop before publishing")

	rootCmd.AddCommand(runCommand)
}

func runDigestCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	day, err := s.resolveDay(args, time.Now())
	if err != nil {
		return err
	}

	if runRefresh {
		refreshSources(ctx, s)
	}

	return runDay(cmd, s, day, runnerOptions{
		Publish:     !runDraft,
		SkipCover:   runSkipCover,
		SkipPublish: runNoPublish,
	})
}

// runDay executes the pipeline for day and prints the outcome per language.
func runDay(cmd *cobra.Command, s *settings, day time.Time, ro runnerOptions) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, s, ro)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Processing %s for languages: %s\n", day.Format(days.Format), strings.Join(s.langs.Ordered(), ", "))

	report, err := a.runner.RunDay(ctx, day)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	printReport(report)
	if s.cfg.Verbose {
		a.printer.PrintTimings(a.ledger.Entries())
	}
	return report.Err()
}

func printReport(report *pipeline.Report) {
	fmt.Printf("\n")
	for _, l := range report.Langs {
		switch {
		case l.Err != nil:
			fmt.Printf("❌ %s: failed at %s\n", l.Lang, l.Stage)
		default:
			fmt.Printf("✅ %s: %s\n", l.Lang, l.Stage)
		}
	}
	usage := report.Usage()
	fmt.Printf("Tokens used: %d (prompt %d, completion %d), estimated cost $%.4f\n",
		usage.Total(), usage.PromptTokens, usage.CompletionTokens, llm.EstimateCost(usage))
}
