package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/news-digest/internal/days"
)

var publishCmd = &cobra.Command{
	Use:   "publish YYYY-MM-DD --lang en",
	Short: "Publish an existing digest to Substack",
	Long:  "Posts the finished digest of one language to its Substack editor using the stored browser session, and writes the flag file once the post is live.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPublish,
}

var publishDraft bool

func init() {
	publishCmd.Flags().BoolVar(&publishDraft, "draft", false, "Leave the post as a draft")

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	if len(flagLangs) != 1 {
		return fmt.Errorf("publish needs exactly one --lang")
	}
	lang := flagLangs[0]

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	day, err := s.resolveDay(args, time.Now())
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), s, runnerOptions{Publish: !publishDraft})
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Publishing %s digest for %s...\n", lang, day.Format(days.Format))
	res, err := a.runner.Publish(cmd.Context(), day, lang)
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	if res.Published {
		fmt.Printf("✅ Published %q %s\n", res.Title, res.URL)
	} else {
		fmt.Printf("📝 Draft saved: %q\n", res.Title)
	}
	return nil
}
